package geom

import "sort"

// SortSegments orders segs in place per the strict weak order defined
// by Less (spec.md §4.3.2). After sorting, intersection detection can
// scan forward and stop once a candidate's A.x exceeds the current
// segment's B.x.
func SortSegments(segs []*Segment) {
	sort.Slice(segs, func(i, j int) bool { return Less(segs[i], segs[j]) })
}
