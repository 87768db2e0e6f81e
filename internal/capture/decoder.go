package capture

import (
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Point is a position in frame coordinates.
type Point struct {
	X, Y float64
}

// Decoded is one QR code found in a frame.
type Decoded struct {
	// Text is the decoded payload.
	Text string
	// Points are the finder pattern positions reported by the decoder.
	Points []Point
}

// Decoder finds a QR code in a frame. ok is false when the frame carries
// no readable code; that is not an error.
type Decoder interface {
	Decode(img image.Image) (res Decoded, ok bool)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(img image.Image) (Decoded, bool)

// Decode implements Decoder.
func (f DecoderFunc) Decode(img image.Image) (Decoded, bool) {
	return f(img)
}

// QRDecoder decodes QR codes with gozxing.
type QRDecoder struct {
	reader gozxing.Reader
	hints  map[gozxing.DecodeHintType]interface{}
}

// NewQRDecoder creates a QRDecoder. tryHarder trades CPU for better
// detection of small or skewed codes.
func NewQRDecoder(tryHarder bool) *QRDecoder {
	hints := map[gozxing.DecodeHintType]interface{}{}
	if tryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	return &QRDecoder{reader: qrcode.NewQRCodeReader(), hints: hints}
}

// Decode implements Decoder. A gozxing reader is not safe for concurrent
// use; the capture loop only calls it from one goroutine.
func (d *QRDecoder) Decode(img image.Image) (Decoded, bool) {
	if img == nil {
		return Decoded{}, false
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return Decoded{}, false
	}
	result, err := d.reader.Decode(bmp, d.hints)
	if err != nil || result == nil {
		return Decoded{}, false
	}

	points := make([]Point, 0, len(result.GetResultPoints()))
	for _, p := range result.GetResultPoints() {
		points = append(points, Point{X: p.GetX(), Y: p.GetY()})
	}
	return Decoded{Text: result.GetText(), Points: points}, true
}
