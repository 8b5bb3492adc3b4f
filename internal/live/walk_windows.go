//go:build windows

package live

import "io/fs"

func deviceOf(path string) uint64 {
	return 0
}

// onOtherDevice is always false; Windows volumes do not nest under a
// mount point the way unix filesystems do
func onOtherDevice(d fs.DirEntry, rootDev uint64) bool {
	return false
}
