// Package checksum computes SHA-256 digests of streamed content.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// Writer counts and hashes everything written through it to the
// underlying writer.
type Writer struct {
	w    io.Writer
	h    hash.Hash
	size int64
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, h: sha256.New()}
}

func (c *Writer) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.h.Write(p[:n])
	c.size += int64(n)
	return n, err
}

// Size returns the number of bytes written so far.
func (c *Writer) Size() int64 { return c.size }

// Sum returns the hex-encoded digest of the bytes written so far.
func (c *Writer) Sum() string {
	return hex.EncodeToString(c.h.Sum(nil))
}
