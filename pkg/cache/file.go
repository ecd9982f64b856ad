package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// entryMagic starts every cache file. It is followed by the expiry as
// big-endian Unix nanoseconds (0 for none) and then the raw payload, so PNG
// exports are stored as-is.
var entryMagic = []byte("PFC1")

const (
	entryExt    = ".entry"
	headerSize  = 4 + 8
	dirPerm     = 0o755
	tempPattern = ".tmp-*"
)

// FileCache stores entries as files under a directory. It backs the CLI,
// where one user renders on one machine.
type FileCache struct {
	dir string
}

// NewFileCache creates the directory if needed and returns a cache over it.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// DefaultDir returns the per-user cache directory, e.g.
// ~/.cache/printframe on Linux.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "printframe"), nil
}

func (c *FileCache) Dir() string { return c.dir }

// Get reads key. Expired and unreadable entries are removed and reported as
// misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	data, expires, ok := decodeEntry(raw)
	if !ok || (!expires.IsZero() && time.Now().After(expires)) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

// Set writes key through a temporary file and a rename, so concurrent
// readers see the old entry or the new one but never a partial write.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	path := c.path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return err
	}
	_, err = tmp.Write(encodeEntry(data, expires))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes every entry and reports how many there were.
func (c *FileCache) Clear() (int, error) {
	n := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != entryExt {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		n++
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	return n, err
}

func (c *FileCache) Close() error { return nil }

// path fans entries out over 256 subdirectories keyed by the first byte of
// the key hash.
func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+entryExt)
}

func encodeEntry(data []byte, expires time.Time) []byte {
	buf := make([]byte, headerSize, headerSize+len(data))
	copy(buf, entryMagic)
	if !expires.IsZero() {
		binary.BigEndian.PutUint64(buf[4:], uint64(expires.UnixNano()))
	}
	return append(buf, data...)
}

func decodeEntry(raw []byte) (data []byte, expires time.Time, ok bool) {
	if len(raw) < headerSize || !bytes.Equal(raw[:4], entryMagic) {
		return nil, time.Time{}, false
	}
	if ns := binary.BigEndian.Uint64(raw[4:headerSize]); ns != 0 {
		expires = time.Unix(0, int64(ns))
	}
	return raw[headerSize:], expires, true
}

var _ Cache = (*FileCache)(nil)
