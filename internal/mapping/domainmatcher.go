package mapping

import (
	"strings"

	"github.com/go-osm/osm2pgsql/internal/element"
)

// DomainMatcher checks whether a tag key is a domain-qualified name
// tag for the given domain, e.g. "bridge:name" or "bridge:name:en" for
// domain "bridge" (the bridge's own name, distinct from the name of
// the highway running over it; spec.md §4.4, grounded on
// domain-matcher.hpp).
type DomainMatcher struct {
	domain string
}

// NewDomainMatcher creates a matcher for the given domain prefix (e.g.
// "bridge", "tunnel").
func NewDomainMatcher(domain string) *DomainMatcher {
	return &DomainMatcher{domain: domain}
}

// Match reports whether t's key is "<domain>:name" or
// "<domain>:name:<lang>", and if so returns the key with the domain
// prefix stripped ("name" or "name:<lang>").
func (m *DomainMatcher) Match(t element.Tag) (string, bool) {
	prefix := m.domain + ":name"
	if !strings.HasPrefix(t.Key, prefix) {
		return "", false
	}
	rest := t.Key[len(prefix):]
	if rest == "" || rest[0] == ':' {
		// Strip only the domain prefix and its separator, keeping
		// "name" or "name:lang" (matches domain-matcher.hpp's
		// `t.key() + m_len + 1`).
		return t.Key[len(m.domain)+1:], true
	}
	return "", false
}

// FilterDomainTags returns the subset of tags that are domain name
// tags for m, keyed by their stripped name ("name", "name:en", ...).
func (m *DomainMatcher) FilterDomainTags(tags *element.TagList) map[string]string {
	out := make(map[string]string)
	if tags == nil {
		return out
	}
	for _, t := range tags.All() {
		if stripped, ok := m.Match(t); ok {
			out[stripped] = t.Value
		}
	}
	return out
}
