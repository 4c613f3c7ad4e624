package cache

// ScopedKeyer wraps a Keyer with a prefix so several consumers can share one
// backend without colliding, for example the CLI and the HTTP service on
// the same Redis instance:
//
//	serverKeyer := NewScopedKeyer(NewDefaultKeyer(), "server:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey returns the prefixed layout key.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// DebugKey returns the prefixed debug key.
func (k *ScopedKeyer) DebugKey(graphHash string, opts DebugKeyOpts) string {
	return k.prefix + k.inner.DebugKey(graphHash, opts)
}
