//go:build !linux && !darwin

package live

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrUnsupported is returned by the mounter on platforms without a
// read-only image attach command
var ErrUnsupported = errors.New("live mount not supported")

type unsupportedMounter struct{}

// NewMounter returns the mounter for the running platform
func NewMounter() Mounter {
	return unsupportedMounter{}
}

func (unsupportedMounter) Mount(image string) (string, error) {
	return "", fmt.Errorf("%w on %s", ErrUnsupported, runtime.GOOS)
}

func (unsupportedMounter) Unmount(string) error {
	return nil
}
