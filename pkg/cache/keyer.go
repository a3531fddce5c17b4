package cache

import (
	"slices"
	"strings"
)

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey returns the key for a raw repository response.
	HTTPKey(namespace, url string) string
	// ResultKey returns the key for a rendered resolution result.
	ResultKey(root string, opts ResultKeyOpts) string
}

// ResultKeyOpts are the inputs that change a resolution result besides the root.
type ResultKeyOpts struct {
	Repository string
	Exclude    []string
	Optional   []string
	Format     string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key layout.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<url>". URLs are kept readable so that
// entries can be inspected in a shared backend.
func (DefaultKeyer) HTTPKey(namespace, url string) string {
	return "http:" + namespace + ":" + url
}

// ResultKey hashes the root and options. Pattern lists are sorted first so
// that "-e a -e b" and "-e b -e a" share an entry.
func (DefaultKeyer) ResultKey(root string, opts ResultKeyOpts) string {
	exclude := sortedCopy(opts.Exclude)
	optional := sortedCopy(opts.Optional)
	return hashKey("result", root, strings.TrimRight(opts.Repository, "/"), exclude, optional, opts.Format)
}

func sortedCopy(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}

// ScopedKeyer wraps a Keyer with a prefix so that several tools or
// environments can share one backend without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "mavenclosure:")
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

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, url string) string {
	return k.prefix + k.inner.HTTPKey(namespace, url)
}

// ResultKey generates a prefixed key for result caching.
func (k *ScopedKeyer) ResultKey(root string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(root, opts)
}
