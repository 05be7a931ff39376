package engine

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultCompareBuffer is the per-file read buffer used by ByteVerifier.
const DefaultCompareBuffer = 128 << 10

// Verifier confirms that two files hold the same bytes. Callers only ask
// about files whose sizes are already known to be equal.
type Verifier interface {
	Same(a, b string) (bool, error)
}

// VerifyMode selects how move candidates are confirmed.
type VerifyMode int

const (
	VerifyBytes VerifyMode = iota
	VerifyHash
	VerifyNone
)

var verifyModeNames = [...]string{
	VerifyBytes: "bytes",
	VerifyHash:  "hash",
	VerifyNone:  "none",
}

func (m VerifyMode) String() string {
	if m >= 0 && int(m) < len(verifyModeNames) {
		return verifyModeNames[m]
	}
	return "unknown"
}

// ParseVerifyMode parses "bytes", "hash" or "none".
func ParseVerifyMode(s string) (VerifyMode, error) {
	for i, name := range verifyModeNames {
		if strings.EqualFold(s, name) {
			return VerifyMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown verify mode %q (want bytes, hash or none)", s)
}

// NewVerifier returns the verifier for m, or nil for VerifyNone.
func NewVerifier(m VerifyMode) Verifier {
	switch m {
	case VerifyHash:
		return NewHashVerifier()
	case VerifyNone:
		return nil
	default:
		return ByteVerifier{}
	}
}

// ByteVerifier compares two files by reading both in lock-step.
type ByteVerifier struct {
	BufferSize int
}

// Same reports whether a and b have identical contents.
func (v ByteVerifier) Same(a, b string) (bool, error) {
	size := v.BufferSize
	if size <= 0 {
		size = DefaultCompareBuffer
	}

	fa, err := os.Open(a)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", a, err)
	}
	defer fa.Close()

	fb, err := os.Open(b)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", b, err)
	}
	defer fb.Close()

	same, err := sameContent(bufio.NewReaderSize(fa, size), bufio.NewReaderSize(fb, size))
	if err != nil {
		return false, fmt.Errorf("compare %s with %s: %w", a, b, err)
	}
	return same, nil
}

// sameContent advances both readers by the shorter of their buffered
// lengths until a mismatch or a shared EOF. EOF on only one side means the
// sizes differed, which callers rule out, so it panics.
func sameContent(ra, rb *bufio.Reader) (bool, error) {
	for {
		pa, err := buffered(ra)
		if err != nil {
			return false, err
		}
		pb, err := buffered(rb)
		if err != nil {
			return false, err
		}

		switch {
		case len(pa) == 0 && len(pb) == 0:
			return true, nil
		case len(pa) == 0 || len(pb) == 0:
			panic("compare: one file ended before the other")
		}

		n := min(len(pa), len(pb))
		if !bytes.Equal(pa[:n], pb[:n]) {
			return false, nil
		}
		_, _ = ra.Discard(n)
		_, _ = rb.Discard(n)
	}
}

// buffered returns the reader's buffered bytes, filling the buffer first if
// it is empty. It returns nil at EOF.
func buffered(r *bufio.Reader) ([]byte, error) {
	if _, err := r.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return r.Peek(r.Buffered())
}
