package device

import (
	"fmt"
	"os"
	"path/filepath"

	extent "github.com/aarsakian/VMDK_Reader/extent"
)

// VMDKSource reads the virtual disk behind a sparse VMDK descriptor
type VMDKSource struct {
	extents extent.Extents
	dir     string
	size    int64
}

// OpenVMDK processes the extents referenced by the descriptor at path
func OpenVMDK(path string) (src *VMDKSource, err error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			src, err = nil, fmt.Errorf("process vmdk extents %s: %v", path, r)
		}
	}()

	extents := extent.ProcessExtents(path)
	return &VMDKSource{
		extents: extents,
		dir:     filepath.Dir(path),
		size:    extents.GetHDSize(),
	}, nil
}

// ReadAt implements io.ReaderAt over the virtual disk
func (v *VMDKSource) ReadAt(p []byte, off int64) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("vmdk read at %d: %v", off, r)
		}
	}()
	return clampRead(p, off, v.size, func(off, length int64) []byte {
		return v.extents.RetrieveData(v.dir, off, length)
	})
}

// Size returns the virtual disk capacity
func (v *VMDKSource) Size() int64 {
	return v.size
}

// Close is a no-op; extents are opened per read by the library
func (v *VMDKSource) Close() error {
	return nil
}

var _ Source = (*VMDKSource)(nil)
