//go:build linux || darwin

package platform

import (
	"errors"

	"golang.org/x/sys/unix"
)

func classify(err error) CloneErrorKind {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		if errors.Is(err, errors.ErrUnsupported) {
			return CloneUnsupported
		}
		return CloneIO
	}

	// ENOTSUP and EOPNOTSUPP share a value on Linux, so they cannot both be
	// switch cases.
	if errno == unix.ENOTSUP || errno == unix.EOPNOTSUPP {
		return CloneUnsupported
	}

	switch errno {
	// FICLONE reports EINVAL when the filesystem refuses the pair (e.g. btrfs
	// nodatacow mismatch), and ENOTTY on kernels without the ioctl.
	case unix.ENOSYS, unix.ENOTTY, unix.EINVAL:
		return CloneUnsupported
	case unix.EXDEV:
		return CloneCrossDevice
	case unix.EPERM, unix.EACCES, unix.EROFS:
		return ClonePermission
	default:
		return CloneIO
	}
}
