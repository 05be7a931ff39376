package engine

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// HashFile computes the BLAKE3 hash of the file at path, returning the hex-encoded digest.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashVerifier compares files by BLAKE3 digest and remembers every digest it
// computes, so a base file offered as a candidate for many targets is read
// once.
type HashVerifier struct {
	digests map[string]string
	reads   int
}

// NewHashVerifier creates an empty HashVerifier.
func NewHashVerifier() *HashVerifier {
	return &HashVerifier{digests: make(map[string]string)}
}

// Same reports whether a and b hash to the same digest.
func (v *HashVerifier) Same(a, b string) (bool, error) {
	da, err := v.digest(a)
	if err != nil {
		return false, err
	}
	db, err := v.digest(b)
	if err != nil {
		return false, err
	}
	return da == db, nil
}

// Reads returns how many files have been hashed.
func (v *HashVerifier) Reads() int { return v.reads }

func (v *HashVerifier) digest(path string) (string, error) {
	if d, ok := v.digests[path]; ok {
		return d, nil
	}
	d, err := HashFile(path)
	if err != nil {
		return "", err
	}
	v.digests[path] = d
	v.reads++
	return d, nil
}
