package mapping

import "github.com/go-osm/osm2pgsql/internal/element"

// metadataKeys are tag keys that do not count toward a node's "has at
// least one non-metadata tag" point-candidacy test (spec.md §4.4).
var metadataKeys = map[string]bool{
	"created_by": true,
	"source":     true,
}

// IsPointCandidate reports whether a node qualifies as a point feature:
// at least one tag that is not purely metadata.
func IsPointCandidate(n *element.Node) bool {
	if n.Tags == nil {
		return false
	}
	for _, t := range n.Tags.All() {
		if !metadataKeys[t.Key] {
			return true
		}
	}
	return false
}

// PrimitiveKind is the geometric classification assigned to a
// primitive before AreaAssembler/GeometryFactory runs.
type PrimitiveKind int

const (
	KindNone PrimitiveKind = iota
	KindPoint
	KindLine
	KindPolygon
	KindMultipolygon
)

// ClassifyWay decides whether a closed way is a polygon candidate
// (area filter marks it so) or a plain line; an open way, or a way of
// exactly two nodes, is always a line (spec.md §4.4, §8).
func ClassifyWay(w *element.Way, areaFilter *TagFilter) PrimitiveKind {
	if !w.IsClosed() || len(w.Nodes) <= 2 {
		return KindLine
	}
	if areaFilter != nil && areaFilter.Classify(w.Tags) == "polygon" {
		return KindPolygon
	}
	return KindLine
}

// ClassifyRelation reports whether a relation is a multipolygon
// candidate.
func ClassifyRelation(r *element.Relation) PrimitiveKind {
	if r.IsMultipolygon() {
		return KindMultipolygon
	}
	return KindNone
}

// DefaultAreaFilter builds the conventional "area=yes override,
// otherwise common polygon-shaped keys" TagFilter used when no
// site-specific configuration overrides it. Grounded on the
// first-match-wins rule ordering from tags_filter.hpp: explicit
// area=no/area=yes overrides are listed before the broader key-only
// rules they take precedence over.
func DefaultAreaFilter() *TagFilter {
	f := NewTagFilter("")
	f.AddRule(Rule{Kind: MatchKeyValue, Key: "area", Value: "no", Result: ""})
	f.AddRule(Rule{Kind: MatchKeyValue, Key: "area", Value: "yes", Result: "polygon"})
	for _, key := range []string{"building", "landuse", "natural", "leisure", "amenity", "boundary"} {
		f.AddRule(Rule{Kind: MatchKey, Key: key, Result: "polygon"})
	}
	return f
}
