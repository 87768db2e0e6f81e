package capture

import "context"

// CameraOptions selects and configures a video device.
type CameraOptions struct {
	// Device is an explicit device path such as /dev/video0. When empty
	// the device is chosen by Facing.
	Device string

	// Facing is "environment" (rear camera) or "user" (front camera).
	Facing string

	// Width and Height are the requested frame size. Zero uses 1280x720.
	Width, Height uint32
}

func (o CameraOptions) size() (uint32, uint32) {
	w, h := o.Width, o.Height
	if w == 0 || h == 0 {
		w, h = 1280, 720
	}
	return w, h
}

// CameraOpener returns an Opener for OpenCamera(opts).
func CameraOpener(opts CameraOptions) Opener {
	return func(ctx context.Context) (Source, error) {
		return OpenCamera(ctx, opts)
	}
}
