package security

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
)

// ChecksumReader wraps a reader and accumulates a SHA-256 digest of
// everything read through it.
type ChecksumReader struct {
	r io.Reader
	h hash.Hash
}

// NewChecksumReader returns a reader that hashes as it is consumed.
func NewChecksumReader(r io.Reader) *ChecksumReader {
	h := sha256.New()
	return &ChecksumReader{r: io.TeeReader(r, h), h: h}
}

func (c *ChecksumReader) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

// Checksum returns the hex digest of the bytes read so far.
func (c *ChecksumReader) Checksum() string {
	return hex.EncodeToString(c.h.Sum(nil))
}

// Checksum computes the hex SHA-256 digest of r's full contents.
func Checksum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to compute checksum: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
