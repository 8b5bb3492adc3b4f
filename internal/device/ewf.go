package device

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ewfLib "github.com/aarsakian/EWF_Reader/ewf"
)

// EWFSource reads the media stream of a (possibly segmented) EWF/E01 image
type EWFSource struct {
	img  ewfLib.EWF_Image
	size int64
}

// OpenEWF parses the evidence segments that belong to path
func OpenEWF(path string) (src *EWFSource, err error) {
	segments, err := evidenceSegments(path)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			src, err = nil, fmt.Errorf("parse ewf evidence %s: %v", path, r)
		}
	}()

	var img ewfLib.EWF_Image
	img.ParseEvidence(segments)

	return &EWFSource{
		img:  img,
		size: int64(img.Chuncksize) * int64(img.NofChunks),
	}, nil
}

// ReadAt implements io.ReaderAt over the decompressed media
func (e *EWFSource) ReadAt(p []byte, off int64) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("ewf read at %d: %v", off, r)
		}
	}()
	return clampRead(p, off, e.size, func(off, length int64) []byte {
		return e.img.RetrieveData(off, length)
	})
}

// Size returns the media size (chunk size times chunk count)
func (e *EWFSource) Size() int64 {
	return e.size
}

// Close is a no-op; the reader library owns its segment handles
func (e *EWFSource) Close() error {
	return nil
}

// evidenceSegments returns path plus its sibling segments (.E02, .E03, ...)
// in order.
func evidenceSegments(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(path, filepath.Ext(path))
	matches, err := filepath.Glob(base + ".[Ee]??")
	if err != nil {
		return nil, fmt.Errorf("glob segments: %w", err)
	}
	if len(matches) == 0 {
		return []string{path}, nil
	}
	sort.Strings(matches)
	return matches, nil
}

var _ Source = (*EWFSource)(nil)
