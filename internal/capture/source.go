package capture

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG frames
	_ "image/png"  // register PNG frames
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Source produces video frames.
type Source interface {
	// Ready reports whether a frame is buffered and can be read without
	// waiting.
	Ready() bool
	// Frame returns the current frame.
	Frame() (image.Image, error)
	// Close releases the device.
	Close() error
}

// Exhauster is implemented by finite sources such as DirSource.
type Exhauster interface {
	Exhausted() bool
}

// Opener acquires a Source. It is called once per Loop.Run.
type Opener func(ctx context.Context) (Source, error)

// frameExtensions are the image files DirSource replays.
var frameExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// DirSource replays image files from a directory in lexical order, one
// file per frame.
type DirSource struct {
	mu    sync.Mutex
	files []string
	next  int
}

// OpenDir lists the frames of dir. A directory without frames is an error,
// since it can never produce a scan.
func OpenDir(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frames directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if frameExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no PNG or JPEG files in %s", ErrNoFrame, dir)
	}
	sort.Strings(files)
	return &DirSource{files: files}, nil
}

// DirOpener returns an Opener for OpenDir(dir).
func DirOpener(dir string) Opener {
	return func(context.Context) (Source, error) {
		return OpenDir(dir)
	}
}

// Ready implements Source.
func (s *DirSource) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next < len(s.files)
}

// Frame implements Source. Each call consumes one file.
func (s *DirSource) Frame() (image.Image, error) {
	s.mu.Lock()
	if s.next >= len(s.files) {
		s.mu.Unlock()
		return nil, ErrNoFrame
	}
	path := s.files[s.next]
	s.next++
	s.mu.Unlock()

	f, err := os.Open(path) //nolint:gosec // frames directory is chosen by the operator
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Exhausted implements Exhauster.
func (s *DirSource) Exhausted() bool {
	return !s.Ready()
}

// Len returns the number of frames in the directory.
func (s *DirSource) Len() int {
	return len(s.files)
}

// Close implements Source.
func (s *DirSource) Close() error {
	return nil
}
