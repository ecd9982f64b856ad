package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/printframe/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return a nil miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = %v, %v", hit, err)
	}

	png := []byte("\x89PNG fake")
	if err := c.Set(ctx, "export:abc", png, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, hit, err := c.Get(ctx, "export:abc")
	if err != nil || !hit || string(got) != string(png) {
		t.Fatalf("Get = %q, %v, %v", got, hit, err)
	}

	if err := c.Delete(ctx, "export:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "export:abc"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "export:abc"); err != nil {
		t.Errorf("deleting a missing entry should succeed: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry file not removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("k")
	os.MkdirAll(filepath.Dir(path), 0755)
	os.WriteFile(path, []byte("{not an entry"), 0644)

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		c.Set(ctx, k, []byte(k), 0)
	}
	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Fatalf("Clear() = %d, %v, want 3", n, err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
}

func TestEntryEncoding(t *testing.T) {
	expires := time.Unix(1700000000, 5)
	tests := []struct {
		name    string
		expires time.Time
		data    []byte
	}{
		{"no expiry", time.Time{}, []byte("\x89PNG")},
		{"expiry", expires, []byte("\x89PNG")},
		{"empty payload", expires, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, got, ok := decodeEntry(encodeEntry(tt.data, tt.expires))
			if !ok || string(data) != string(tt.data) || !got.Equal(tt.expires) {
				t.Errorf("decode = %q, %v, %v", data, got, ok)
			}
		})
	}
	if _, _, ok := decodeEntry([]byte("PFC1")); ok {
		t.Error("truncated header accepted")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestHasherLengthPrefix(t *testing.T) {
	a := NewHasher().Bytes([]byte("ab")).Bytes([]byte("c")).Sum()
	b := NewHasher().Bytes([]byte("a")).Bytes([]byte("bc")).Sum()
	if a == b {
		t.Error("part boundaries should affect the hash")
	}
	c := NewHasher().JSON(map[string]int{"dpi": 300}).Sum()
	d := NewHasher().JSON(map[string]int{"dpi": 300}).Sum()
	if c != d {
		t.Error("JSON parts should hash deterministically")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	ek1 := k.ExportKey("scene1", ExportKeyOpts{WidthCm: 20, DPI: 300})
	ek2 := k.ExportKey("scene1", ExportKeyOpts{WidthCm: 20, DPI: 600})
	ek3 := k.ExportKey("scene2", ExportKeyOpts{WidthCm: 20, DPI: 300})
	if ek1 == ek2 || ek1 == ek3 {
		t.Error("export keys should depend on scene hash and options")
	}
	if ek1[:7] != "export:" {
		t.Errorf("ExportKey prefix: %s", ek1)
	}

	lk1 := k.LayoutKey(LayoutKeyOpts{Template: "grid", Count: 4, AspectRatio: 1})
	lk2 := k.LayoutKey(LayoutKeyOpts{Template: "grid", Count: 5, AspectRatio: 1})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "v2:")
	key := scoped.ExportKey("scene", ExportKeyOpts{DPI: 300})
	if key[:3] != "v2:" || key[3:] != NewDefaultKeyer().ExportKey("scene", ExportKeyOpts{DPI: 300}) {
		t.Errorf("ScopedKeyer ExportKey unexpected: %s", key)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if got := nilInner.LayoutKey(LayoutKeyOpts{}); got[:2] != "p:" {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

func TestRedisUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedisCache(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestInstrumented(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	fc, _ := NewFileCache(t.TempDir())
	c := NewInstrumented(fc, "export")

	c.Get(ctx, "k")
	c.Set(ctx, "k", []byte("v"), 0)
	c.Get(ctx, "k")

	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 {
		t.Errorf("hits=%d misses=%d sets=%d, want 1/1/1", hooks.hits, hooks.misses, hooks.sets)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error should unwrap to ErrUnavailable")
	}
	if IsRetryable(ErrNotFound) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	retryDelay = time.Millisecond
	defer func() { retryDelay = 200 * time.Millisecond }()
	ctx := context.Background()

	calls := 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err=%v calls=%d", err, calls)
	}

	calls = 0
	err := RetryWithBackoff(ctx, func() error { calls++; return ErrNotFound })
	if err != ErrNotFound || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error { calls++; return Retryable(ErrUnavailable) })
	if !IsRetryable(err) || calls != 3 {
		t.Errorf("exhausted: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
