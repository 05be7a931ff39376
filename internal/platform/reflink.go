package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// CloneMethod identifies which syscall produced a clone.
type CloneMethod int

const (
	NoClone   CloneMethod = iota
	Ficlone                // Linux FICLONE ioctl
	Clonefile              // macOS clonefile(2)
)

func (m CloneMethod) String() string {
	switch m {
	case NoClone:
		return "none"
	case Ficlone:
		return "ficlone"
	case Clonefile:
		return "clonefile"
	default:
		return "unknown"
	}
}

// CloneSupported reports whether this build has a clone syscall at all.
// A true result says nothing about the filesystem under a given path.
func CloneSupported() bool {
	return cloneAvailable
}

// Reflink makes dst a copy-on-write clone of src. Missing parent directories
// of dst are created, and an existing dst is truncated. When the clone call
// itself fails, the empty dst is left behind: there is no rollback.
//
// Clone failures are returned as *CloneError.
func Reflink(src, dst string) (CloneMethod, error) {
	if !cloneAvailable {
		return NoClone, newCloneError("clone", src, dst, errUnsupportedPlatform)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return NoClone, fmt.Errorf("create parent dir for %s: %w", dst, err)
	}

	srcFd, err := os.Open(src)
	if err != nil {
		return NoClone, fmt.Errorf("open source: %w", err)
	}
	defer srcFd.Close()

	return cloneFile(srcFd, dst)
}
