package device

import (
	"fmt"
	"io"
	"os"
)

// RawSource reads a plain image file or block device
type RawSource struct {
	f    *os.File
	size int64
}

// OpenRaw opens path read-only
func OpenRaw(path string) (*RawSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	// Block devices report a zero Stat size; seeking to the end works for both.
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		size = -1
	}

	adviseSequential(f)

	return &RawSource{f: f, size: size}, nil
}

// ReadAt implements io.ReaderAt
func (r *RawSource) ReadAt(p []byte, off int64) (int, error) {
	return r.f.ReadAt(p, off)
}

// Size returns the device size, or -1 if it could not be determined
func (r *RawSource) Size() int64 {
	return r.size
}

// Close releases the file handle
func (r *RawSource) Close() error {
	return r.f.Close()
}

var _ Source = (*RawSource)(nil)
