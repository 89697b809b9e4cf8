// Package mapping implements tag classification: the rule-based
// TagFilter (spec.md §4.4) and the DomainMatcher helper it composes
// with, plus primitive classification (point/line/polygon).
package mapping

import (
	"strings"

	"github.com/go-osm/osm2pgsql/internal/element"
)

// MatchKind selects how a Rule's Key/Value are compared against a tag.
type MatchKind int

const (
	// MatchKey matches any tag whose key equals Key, any value.
	MatchKey MatchKind = iota
	// MatchKeyValue matches only when both Key and Value are equal.
	MatchKeyValue
	// MatchPrefix matches any tag whose key starts with Key.
	MatchPrefix
	// MatchWildcard matches Key against the tag's key using '*' (any
	// run of characters) and '?' (any single character) globbing.
	MatchWildcard
)

// Rule is one entry in a TagFilter's ordered rule list (spec.md §4.4:
// "first matching rule wins").
type Rule struct {
	Kind  MatchKind
	Key   string
	Value string // only consulted for MatchKeyValue
	// Result is the classification label returned when this rule
	// matches (e.g. "polygon", "linestring", or a custom tag class).
	Result string
}

func (r Rule) matches(t element.Tag) bool {
	switch r.Kind {
	case MatchKey:
		return t.Key == r.Key
	case MatchKeyValue:
		return t.Key == r.Key && t.Value == r.Value
	case MatchPrefix:
		return strings.HasPrefix(t.Key, r.Key)
	case MatchWildcard:
		return wildcardMatch(r.Key, t.Key)
	default:
		return false
	}
}

// TagFilter evaluates an ordered list of rules against a tag list: the
// first rule whose pattern matches any tag wins (spec.md §4.4). If no
// rule matches, DefaultResult is returned.
type TagFilter struct {
	rules         []Rule
	DefaultResult string
}

// NewTagFilter creates an empty filter with the given default result.
func NewTagFilter(defaultResult string) *TagFilter {
	return &TagFilter{DefaultResult: defaultResult}
}

// AddRule appends a rule to the end of the filter's ordered list.
// Earlier rules take precedence (first-match-wins), mirroring
// osmium::TagsFilterBase::add_rule's append-and-scan-in-order
// semantics.
func (f *TagFilter) AddRule(r Rule) *TagFilter {
	f.rules = append(f.rules, r)
	return f
}

// Classify takes the rules in order, testing each rule against every
// tag in tag-list order, and returns the Result of the first rule
// that matches any tag. Matches the teacher's linear "first rule that matches sets
// the result" evaluation, adapted to scan across a whole tag list
// rather than a single tag.
func (f *TagFilter) Classify(tags *element.TagList) string {
	if tags == nil {
		return f.DefaultResult
	}
	for _, rule := range f.rules {
		for _, t := range tags.All() {
			if rule.matches(t) {
				return rule.Result
			}
		}
	}
	return f.DefaultResult
}

// Matches reports whether any rule in the filter matches any tag in
// tags, without needing the matched Result value.
func (f *TagFilter) Matches(tags *element.TagList) bool {
	if tags == nil {
		return false
	}
	for _, rule := range f.rules {
		for _, t := range tags.All() {
			if rule.matches(t) {
				return true
			}
		}
	}
	return false
}

// wildcardMatch implements '*'/'?' globbing against a literal string.
// Deliberately hand-rolled rather than path.Match: path.Match treats
// '/' specially (path-separator awareness) which tag keys have no
// notion of, and path.Match also supports '[...]' character classes
// that spec.md's wildcard rules do not call for.
func wildcardMatch(pattern, s string) bool {
	return wildcardMatchRec(pattern, s)
}

func wildcardMatchRec(pattern, s string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			// Collapse consecutive '*' and try every split point.
			for len(pattern) > 0 && pattern[0] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if wildcardMatchRec(pattern, s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			pattern = pattern[1:]
			s = s[1:]
		default:
			if len(s) == 0 || s[0] != pattern[0] {
				return false
			}
			pattern = pattern[1:]
			s = s[1:]
		}
	}
	return len(s) == 0
}
