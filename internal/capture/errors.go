package capture

import "errors"

var (
	// ErrCameraUnavailable is returned by Loop.Run when the frame source
	// cannot be opened. It is terminal for the station.
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrNoCamera is returned when no video device matches the request.
	ErrNoCamera = errors.New("no video device found")

	// ErrUnsupportedPlatform is returned by OpenCamera outside Linux.
	ErrUnsupportedPlatform = errors.New("camera capture is only supported on linux")

	// ErrNoFrame is returned by Source.Frame when no frame is buffered.
	ErrNoFrame = errors.New("no frame available")

	// ErrUnsupportedFormat is returned when a camera offers neither MJPEG
	// nor YUYV frames.
	ErrUnsupportedFormat = errors.New("camera offers no supported pixel format")
)
