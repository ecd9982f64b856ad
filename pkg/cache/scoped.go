package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments or
// schema versions can share one backend without colliding.
//
// Example usage:
//
//	// Keys of the v2 renderer never hit entries written by v1.
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v2:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ExportKey generates a prefixed export key.
func (k *ScopedKeyer) ExportKey(sceneHash string, opts ExportKeyOpts) string {
	return k.prefix + k.inner.ExportKey(sceneHash, opts)
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(opts)
}
