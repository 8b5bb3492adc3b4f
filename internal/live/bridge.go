// Package live mirrors the files still visible on an image's live
// filesystem next to the carved results.
package live

import (
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lumipallolabs/rex/internal/logging"
)

// Mounter attaches an image read-only and detaches it again
type Mounter interface {
	// Mount attaches image at a fresh mount point and returns it
	Mount(image string) (string, error)
	// Unmount detaches a mount point returned by Mount and removes it
	Unmount(mountPoint string) error
}

// MountError is a failure to mount or unmount the image. It never affects
// carving results.
type MountError struct {
	Op    string
	Image string
	Err   error
}

// Error implements the error interface
func (e *MountError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Image, e.Err)
}

// Unwrap returns the underlying error
func (e *MountError) Unwrap() error {
	return e.Err
}

// MirrorOptions tune Mirror
type MirrorOptions struct {
	// Exclude holds doublestar globs matched against slash-separated paths
	// relative to the mount point
	Exclude []string
}

// Stats summarizes a mirror pass
type Stats struct {
	Files   int64
	Dirs    int64
	Bytes   int64
	Skipped int64 // excluded, nested mounts and non-regular files
	Failed  int64
}

// ValidateExcludes reports the first malformed glob
func ValidateExcludes(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

// Mirror mounts image with m, copies every regular file it can see into
// dest preserving relative paths, and unmounts it again. Existing files in
// dest with the same name are overwritten.
func Mirror(m Mounter, image, dest string, opts MirrorOptions) (stats Stats, err error) {
	if err := ValidateExcludes(opts.Exclude); err != nil {
		return Stats{}, err
	}

	mountPoint, err := m.Mount(image)
	if err != nil {
		return Stats{}, asMountError("mount", image, err)
	}
	logging.Live.Printf("mounted %s at %s", image, mountPoint)

	defer func() {
		if uerr := m.Unmount(mountPoint); uerr != nil {
			logging.Live.Printf("unmount %s: %v", mountPoint, uerr)
			if err == nil {
				err = asMountError("unmount", image, uerr)
			}
			return
		}
		logging.Live.Printf("unmounted %s", mountPoint)
	}()

	return copyTree(mountPoint, dest, opts.Exclude)
}

func asMountError(op, image string, err error) error {
	var me *MountError
	if errors.As(err, &me) {
		return me
	}
	return &MountError{Op: op, Image: image, Err: err}
}
