//go:build linux

package platform

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const cloneAvailable = true

// cloneFile creates or truncates dst and issues FICLONE so that dst shares
// srcFd's extents.
//
//nolint:gosec // G115: fd values are small non-negative integers
func cloneFile(srcFd *os.File, dst string) (CloneMethod, error) {
	dstFd, err := os.Create(dst)
	if err != nil {
		return NoClone, fmt.Errorf("create destination: %w", err)
	}

	if err := unix.IoctlFileClone(int(dstFd.Fd()), int(srcFd.Fd())); err != nil {
		dstFd.Close()
		return NoClone, newCloneError("ficlone", srcFd.Name(), dst, err)
	}

	if err := dstFd.Close(); err != nil {
		return Ficlone, fmt.Errorf("close %s: %w", dst, err)
	}
	return Ficlone, nil
}
