//go:build !windows

package live

import (
	"io/fs"
	"syscall"
)

// deviceOf returns the device id of path, or 0 if it cannot be read
func deviceOf(path string) uint64 {
	var stat syscall.Stat_t
	if err := syscall.Stat(path, &stat); err != nil {
		return 0
	}
	return uint64(stat.Dev)
}

// onOtherDevice reports whether the directory d lives on a different
// filesystem than the mount root
func onOtherDevice(d fs.DirEntry, rootDev uint64) bool {
	info, err := d.Info()
	if err != nil {
		return false
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}
	return uint64(stat.Dev) != rootDev
}
