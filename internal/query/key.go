package query

import "strings"

// Key identifies one logical resource in the cache: an ordered tuple of
// domain, resource kind and parameters. Two queries with identical keys share
// one cached result and one staleness timer.
type Key struct {
	Domain   string
	Resource string
	Params   []string
}

// NewKey builds a cache key. Parameter order is significant.
func NewKey(domain, resource string, params ...string) Key {
	return Key{Domain: domain, Resource: resource, Params: params}
}

// String returns the canonical form, e.g. "agent:users:page=2:page_size=20".
func (k Key) String() string {
	parts := make([]string, 0, 2+len(k.Params))
	parts = append(parts, k.Domain, k.Resource)
	parts = append(parts, k.Params...)
	return strings.Join(parts, ":")
}
