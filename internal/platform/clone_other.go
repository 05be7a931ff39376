//go:build !linux && !darwin

package platform

import "os"

const cloneAvailable = false

// cloneFile is never reached on platforms without a clone syscall; Reflink
// rejects the request before touching the filesystem.
func cloneFile(srcFd *os.File, dst string) (CloneMethod, error) {
	return NoClone, newCloneError("clone", srcFd.Name(), dst, errUnsupportedPlatform)
}
