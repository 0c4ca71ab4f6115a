package core

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// Hash is a hex-encoded SHA-256 content fingerprint
type Hash string

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, enough for log lines
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Hasher accumulates content incrementally and yields a Hash
type Hasher struct {
	h hash.Hash
}

// NewHasher starts an incremental SHA-256 hash
func NewHasher() *Hasher {
	return &Hasher{h: sha256.New()}
}

// WriteString feeds s followed by a unit separator so field boundaries stay unambiguous
func (h *Hasher) WriteString(s string) {
	io.WriteString(h.h, s)
	h.h.Write([]byte{0x1f})
}

// Sum returns the accumulated hash
func (h *Hasher) Sum() Hash {
	return Hash(hex.EncodeToString(h.h.Sum(nil)))
}
