package platform

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrCloneNotSupported matches clone failures caused by the filesystem
	// (or the platform) lacking copy-on-write support.
	ErrCloneNotSupported = errors.New("copy-on-write clone is not supported")

	// ErrCrossDevice matches clone failures where source and destination
	// live on different filesystems.
	ErrCrossDevice = errors.New("clone across filesystems")

	errUnsupportedPlatform = fmt.Errorf("no clone syscall on this platform: %w", errors.ErrUnsupported)
)

// CloneErrorKind classifies a failed clone syscall.
type CloneErrorKind int

const (
	CloneIO CloneErrorKind = iota
	CloneUnsupported
	CloneCrossDevice
	ClonePermission
)

func (k CloneErrorKind) String() string {
	switch k {
	case CloneIO:
		return "io"
	case CloneUnsupported:
		return "unsupported"
	case CloneCrossDevice:
		return "cross-device"
	case ClonePermission:
		return "permission"
	default:
		return "unknown"
	}
}

// CloneError reports a failed clone syscall. Every error returned by the
// syscall layer is mapped to one of the CloneErrorKind values.
type CloneError struct {
	Err  error
	Op   string
	Src  string
	Dst  string
	Kind CloneErrorKind
}

func newCloneError(op, src, dst string, err error) *CloneError {
	return &CloneError{
		Op:   op,
		Src:  src,
		Dst:  dst,
		Kind: classify(err),
		Err:  err,
	}
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("%s %s -> %s (%s): %v", e.Op, e.Src, e.Dst, e.Kind, e.Err)
}

func (e *CloneError) Unwrap() error { return e.Err }

// Is lets errors.Is match the package sentinels and fs.ErrPermission by kind.
func (e *CloneError) Is(target error) bool {
	switch target {
	case ErrCloneNotSupported:
		return e.Kind == CloneUnsupported
	case ErrCrossDevice:
		return e.Kind == CloneCrossDevice
	case fs.ErrPermission:
		return e.Kind == ClonePermission
	}
	return false
}
