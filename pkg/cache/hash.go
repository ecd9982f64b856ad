package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"io"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Hasher accumulates the inputs of a scene into one content hash. Parts are
// length-prefixed so ("ab","c") and ("a","bc") differ.
type Hasher struct {
	h hash.Hash
}

// NewHasher returns an empty hasher.
func NewHasher() *Hasher { return &Hasher{h: sha256.New()} }

// Bytes adds a raw part, such as an encoded photo.
func (s *Hasher) Bytes(b []byte) *Hasher {
	fmt.Fprintf(s.h, "%d:", len(b))
	s.h.Write(b)
	return s
}

// JSON adds the JSON encoding of v.
func (s *Hasher) JSON(v any) *Hasher {
	data, _ := json.Marshal(v)
	return s.Bytes(data)
}

// Reader adds everything r yields.
func (s *Hasher) Reader(r io.Reader) (*Hasher, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return s, err
	}
	return s.Bytes(data), nil
}

// Sum returns the hex digest.
func (s *Hasher) Sum() string { return hex.EncodeToString(s.h.Sum(nil)) }
