//go:build darwin

package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

const cloneAvailable = true

// cloneFile clones srcFd's file to dst with clonefile(2). clonefile creates
// dst itself and fails with EEXIST, so an existing dst is removed first.
func cloneFile(srcFd *os.File, dst string) (CloneMethod, error) {
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return NoClone, fmt.Errorf("remove existing destination: %w", err)
	}

	if err := unix.Clonefile(srcFd.Name(), dst, 0); err != nil {
		return NoClone, newCloneError("clonefile", srcFd.Name(), dst, err)
	}
	return Clonefile, nil
}
