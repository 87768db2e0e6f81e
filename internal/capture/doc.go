// Package capture is the frame sampling loop of a scanner station.
//
// A Loop opens a frame Source once, then samples one frame per tick,
// decodes it synchronously and hands any decoded text to its handler. There
// is no frame queue and no parallel decoding: a tick that arrives while a
// frame is still being decoded is dropped by the ticker. The loop only
// returns when its context is cancelled, or immediately when the source
// cannot be opened.
//
// Sources are a V4L2 camera (Linux) opened with OpenCamera, or a directory
// of PNG/JPEG images replayed with OpenDir. QR decoding uses gozxing.
package capture
