//go:build !linux

package capture

import "context"

// OpenCamera is not available on this platform. Use a frames directory.
func OpenCamera(context.Context, CameraOptions) (Source, error) {
	return nil, ErrUnsupportedPlatform
}
