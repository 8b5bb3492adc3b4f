//go:build linux

package live

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// loopMounter attaches images through a read-only loop mount
type loopMounter struct{}

// NewMounter returns the mounter for the running platform
func NewMounter() Mounter {
	return loopMounter{}
}

func (loopMounter) Mount(image string) (string, error) {
	dir, err := os.MkdirTemp("", "rex-mount-")
	if err != nil {
		return "", err
	}
	out, err := exec.Command("mount", "-o", "loop,ro", image, dir).CombinedOutput()
	if err != nil {
		os.Remove(dir)
		return "", fmt.Errorf("mount -o loop,ro: %w: %s", err, bytes.TrimSpace(out))
	}
	return dir, nil
}

func (loopMounter) Unmount(mountPoint string) error {
	if err := unix.Unmount(mountPoint, 0); err != nil {
		return fmt.Errorf("umount %s: %w", mountPoint, err)
	}
	return os.Remove(mountPoint)
}
