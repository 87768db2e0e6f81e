//go:build linux

package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blackjack/webcam"
)

// V4L2 fourcc codes.
const (
	pixelFormatMJPEG webcam.PixelFormat = 0x47504A4D // 'MJPG'
	pixelFormatYUYV  webcam.PixelFormat = 0x56595559 // 'YUYV'
)

// sysfsVideo is where V4L2 devices publish their names.
const sysfsVideo = "/sys/class/video4linux"

// Camera is a V4L2 frame source.
type Camera struct {
	mu     sync.Mutex
	cam    *webcam.Webcam
	path   string
	format webcam.PixelFormat
	width  uint32
	height uint32
}

// OpenCamera opens and starts streaming from a V4L2 device. MJPEG is
// preferred, YUYV is the fallback.
func OpenCamera(_ context.Context, opts CameraOptions) (Source, error) {
	path := opts.Device
	if path == "" {
		path = pickDevice(listDevices(), opts.Facing)
		if path == "" {
			return nil, ErrNoCamera
		}
	}

	cam, err := webcam.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	formats := cam.GetSupportedFormats()
	var format webcam.PixelFormat
	switch {
	case formats[pixelFormatMJPEG] != "":
		format = pixelFormatMJPEG
	case formats[pixelFormatYUYV] != "":
		format = pixelFormatYUYV
	default:
		_ = cam.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	w, h := opts.size()
	format, w, h, err = cam.SetImageFormat(format, w, h)
	if err != nil {
		_ = cam.Close()
		return nil, fmt.Errorf("failed to set image format on %s: %w", path, err)
	}
	if err := cam.StartStreaming(); err != nil {
		_ = cam.Close()
		return nil, fmt.Errorf("failed to start streaming on %s: %w", path, err)
	}

	return &Camera{cam: cam, path: path, format: format, width: w, height: h}, nil
}

// Path returns the device path in use.
func (c *Camera) Path() string {
	return c.path
}

// Ready implements Source by polling the device without waiting.
func (c *Camera) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cam.WaitForFrame(0) == nil
}

// Frame implements Source.
func (c *Camera) Frame() (image.Image, error) {
	c.mu.Lock()
	raw, err := c.cam.ReadFrame()
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrNoFrame
	}

	switch c.format {
	case pixelFormatMJPEG:
		return jpeg.Decode(bytes.NewReader(raw))
	case pixelFormatYUYV:
		return yuyvToImage(raw, int(c.width), int(c.height))
	default:
		return nil, ErrUnsupportedFormat
	}
}

// Close implements Source.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return errors.Join(c.cam.StopStreaming(), c.cam.Close())
}

// listDevices maps /dev/videoN paths to their V4L2 names.
func listDevices() map[string]string {
	out := make(map[string]string)
	entries, err := os.ReadDir(sysfsVideo)
	if err != nil {
		return out
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "video") {
			continue
		}
		name, err := os.ReadFile(filepath.Join(sysfsVideo, e.Name(), "name")) //nolint:gosec // fixed sysfs path
		if err != nil {
			continue
		}
		out[filepath.Join("/dev", e.Name())] = strings.TrimSpace(string(name))
	}
	return out
}

// yuyvToImage converts a packed YUYV 4:2:2 frame.
func yuyvToImage(raw []byte, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 || len(raw) < width*height*2 {
		return nil, fmt.Errorf("short YUYV frame: %d bytes for %dx%d", len(raw), width, height)
	}
	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio422)
	for y := 0; y < height; y++ {
		row := raw[y*width*2 : (y+1)*width*2]
		for x := 0; x+1 < width; x += 2 {
			i := x * 2
			img.Y[y*img.YStride+x] = row[i]
			img.Y[y*img.YStride+x+1] = row[i+2]
			ci := y*img.CStride + x/2
			img.Cb[ci] = row[i+1]
			img.Cr[ci] = row[i+3]
		}
	}
	return img, nil
}
