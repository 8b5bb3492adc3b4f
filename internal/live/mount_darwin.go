//go:build darwin

package live

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
)

// hdiutilMounter attaches disk images with hdiutil
type hdiutilMounter struct{}

// NewMounter returns the mounter for the running platform
func NewMounter() Mounter {
	return hdiutilMounter{}
}

func (hdiutilMounter) Mount(image string) (string, error) {
	dir, err := os.MkdirTemp("", "rex-mount-")
	if err != nil {
		return "", err
	}
	out, err := exec.Command("hdiutil", "attach", "-readonly", "-nobrowse", "-mountpoint", dir, image).CombinedOutput()
	if err != nil {
		os.Remove(dir)
		return "", fmt.Errorf("hdiutil attach: %w: %s", err, bytes.TrimSpace(out))
	}
	return dir, nil
}

func (hdiutilMounter) Unmount(mountPoint string) error {
	out, err := exec.Command("hdiutil", "detach", mountPoint).CombinedOutput()
	if err != nil {
		return fmt.Errorf("hdiutil detach: %w: %s", err, bytes.TrimSpace(out))
	}
	return os.Remove(mountPoint)
}
