// Package device opens block devices and disk images as read-only,
// random-access byte sources.
package device

import (
	"io"
	"path/filepath"
	"strings"
)

// Source is a read-only view over a device or image. ReadAt follows the
// io.ReaderAt contract: a short read at the end of the source returns io.EOF.
type Source interface {
	io.ReaderAt
	io.Closer

	// Size returns the logical size in bytes, or -1 when unknown
	Size() int64
}

// Kind identifies the container format of a source
type Kind int

const (
	KindRaw Kind = iota
	KindEWF
	KindVMDK
)

// String returns the format name
func (k Kind) String() string {
	switch k {
	case KindEWF:
		return "ewf"
	case KindVMDK:
		return "vmdk"
	default:
		return "raw"
	}
}

// KindOf picks the reader for path from its extension
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".e01":
		return KindEWF
	case ".vmdk":
		return KindVMDK
	default:
		return KindRaw
	}
}

// Open opens path read-only with the reader matching its format
func Open(path string) (Source, error) {
	switch KindOf(path) {
	case KindEWF:
		return OpenEWF(path)
	case KindVMDK:
		return OpenVMDK(path)
	default:
		return OpenRaw(path)
	}
}

// clampRead copies the part of the [off, off+len(p)) range that lies inside
// a source of the given size using fetch, and reports io.EOF on a short read.
func clampRead(p []byte, off, size int64, fetch func(off, length int64) []byte) (int, error) {
	if off < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	if off >= size {
		return 0, io.EOF
	}
	want := int64(len(p))
	if remain := size - off; want > remain {
		want = remain
	}
	n := copy(p, fetch(off, want))
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
