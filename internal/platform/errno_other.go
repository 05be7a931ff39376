//go:build !linux && !darwin

package platform

import "errors"

func classify(err error) CloneErrorKind {
	if errors.Is(err, errors.ErrUnsupported) {
		return CloneUnsupported
	}
	return CloneIO
}
