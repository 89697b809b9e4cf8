package mapping

import (
	"testing"

	"github.com/go-osm/osm2pgsql/internal/element"
)

func tl(pairs ...string) *element.TagList {
	t := element.NewTagList()
	for i := 0; i+1 < len(pairs); i += 2 {
		t.Set(pairs[i], pairs[i+1])
	}
	return t
}

func TestTagFilterFirstMatchWins(t *testing.T) {
	f := NewTagFilter("none")
	f.AddRule(Rule{Kind: MatchKeyValue, Key: "highway", Value: "motorway", Result: "skip"})
	f.AddRule(Rule{Kind: MatchKey, Key: "highway", Result: "line"})

	got := f.Classify(tl("highway", "motorway"))
	if got != "skip" {
		t.Errorf("Classify = %q, want %q (first rule must win)", got, "skip")
	}

	got = f.Classify(tl("highway", "residential"))
	if got != "line" {
		t.Errorf("Classify = %q, want %q", got, "line")
	}
}

func TestTagFilterPrefixAndWildcard(t *testing.T) {
	f := NewTagFilter("")
	f.AddRule(Rule{Kind: MatchPrefix, Key: "addr:", Result: "address"})
	f.AddRule(Rule{Kind: MatchWildcard, Key: "name:*", Result: "localized-name"})

	if got := f.Classify(tl("addr:housenumber", "12")); got != "address" {
		t.Errorf("Classify(addr:housenumber) = %q, want address", got)
	}
	if got := f.Classify(tl("name:en", "Foo")); got != "localized-name" {
		t.Errorf("Classify(name:en) = %q, want localized-name", got)
	}
	if got := f.Classify(tl("name", "Foo")); got != "" {
		t.Errorf("Classify(name) = %q, want default \"\" (no trailing segment for wildcard '*')", got)
	}
}

func TestTagFilterNoMatchReturnsDefault(t *testing.T) {
	f := NewTagFilter("default")
	f.AddRule(Rule{Kind: MatchKey, Key: "highway", Result: "line"})
	if got := f.Classify(tl("building", "yes")); got != "default" {
		t.Errorf("Classify = %q, want default", got)
	}
}

func TestWildcardMatchBasics(t *testing.T) {
	cases := []struct {
		pattern, s string
		want       bool
	}{
		{"*", "anything", true},
		{"name:*", "name:en", true},
		{"name:*", "name", false},
		{"nam?", "name", true},
		{"nam?", "na", false},
		{"*:name", "bridge:name", true},
		{"*:name", "bridge:name:en", false},
	}
	for _, c := range cases {
		if got := wildcardMatch(c.pattern, c.s); got != c.want {
			t.Errorf("wildcardMatch(%q, %q) = %v, want %v", c.pattern, c.s, got, c.want)
		}
	}
}

func TestDomainMatcher(t *testing.T) {
	m := NewDomainMatcher("bridge")

	if key, ok := m.Match(element.Tag{Key: "bridge:name", Value: "Golden Gate"}); !ok || key != "name" {
		t.Errorf("Match(bridge:name) = %q, %v, want name, true", key, ok)
	}
	if key, ok := m.Match(element.Tag{Key: "bridge:name:en", Value: "Golden Gate"}); !ok || key != "name:en" {
		t.Errorf("Match(bridge:name:en) = %q, %v, want name:en, true", key, ok)
	}
	if _, ok := m.Match(element.Tag{Key: "bridge:name_extra", Value: "x"}); ok {
		t.Errorf("Match(bridge:name_extra) should not match (no ':' or end after name)")
	}
	if _, ok := m.Match(element.Tag{Key: "name", Value: "x"}); ok {
		t.Errorf("Match(name) should not match: wrong domain")
	}
}

func TestDomainMatcherFilterDomainTags(t *testing.T) {
	m := NewDomainMatcher("bridge")
	tags := tl("bridge:name", "Golden Gate", "bridge:name:en", "Golden Gate Bridge", "highway", "primary")
	got := m.FilterDomainTags(tags)
	if got["name"] != "Golden Gate" || got["name:en"] != "Golden Gate Bridge" {
		t.Errorf("FilterDomainTags = %v", got)
	}
	if _, ok := got["highway"]; ok {
		t.Errorf("FilterDomainTags should not include unrelated tags")
	}
}

func TestIsPointCandidate(t *testing.T) {
	n := &element.Node{Tags: tl("amenity", "cafe")}
	if !IsPointCandidate(n) {
		t.Errorf("expected point candidate")
	}
	n2 := &element.Node{Tags: tl("created_by", "JOSM")}
	if IsPointCandidate(n2) {
		t.Errorf("metadata-only tags should not qualify as point candidate")
	}
	n3 := &element.Node{Tags: nil}
	if IsPointCandidate(n3) {
		t.Errorf("untagged node should not qualify as point candidate")
	}
}

func TestClassifyWay(t *testing.T) {
	areaFilter := DefaultAreaFilter()

	open := &element.Way{Nodes: []element.ID{1, 2, 3}, Tags: tl("building", "yes")}
	if got := ClassifyWay(open, areaFilter); got != KindLine {
		t.Errorf("open way should always be a line, got %v", got)
	}

	closedArea := &element.Way{Nodes: []element.ID{1, 2, 3, 1}, Tags: tl("building", "yes")}
	if got := ClassifyWay(closedArea, areaFilter); got != KindPolygon {
		t.Errorf("closed building way should be a polygon, got %v", got)
	}

	closedLine := &element.Way{Nodes: []element.ID{1, 2, 3, 1}, Tags: tl("highway", "residential")}
	if got := ClassifyWay(closedLine, areaFilter); got != KindLine {
		t.Errorf("closed highway way with no area tag should be a line, got %v", got)
	}

	explicitNonArea := &element.Way{Nodes: []element.ID{1, 2, 3, 1}, Tags: tl("building", "yes", "area", "no")}
	if got := ClassifyWay(explicitNonArea, areaFilter); got != KindLine {
		t.Errorf("area=no should override building=yes, got %v", got)
	}
}

func TestClassifyRelation(t *testing.T) {
	mp := &element.Relation{Tags: tl("type", "multipolygon")}
	if got := ClassifyRelation(mp); got != KindMultipolygon {
		t.Errorf("expected KindMultipolygon, got %v", got)
	}
	other := &element.Relation{Tags: tl("type", "route")}
	if got := ClassifyRelation(other); got != KindNone {
		t.Errorf("expected KindNone, got %v", got)
	}
}
