package cache

// ScopedKeyer wraps a Keyer with a prefix so several projects or tool
// versions can share one backend without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
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

// MaterialKey generates a prefixed key for lowered material graphs.
func (k *ScopedKeyer) MaterialKey(materialHash, manifestDigest string, opts MaterialKeyOpts) string {
	return k.prefix + k.inner.MaterialKey(materialHash, manifestDigest, opts)
}
