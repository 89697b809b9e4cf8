package geom

import "github.com/go-osm/osm2pgsql/internal/element"

// vec is a 2D integer vector over the fixed-point coordinate space,
// used for the cross-product arithmetic in intersection detection.
// Mirrors node_ref_segment.hpp's internal `vec` helper.
type vec struct{ X, Y int64 }

func locVec(l element.Location) vec { return vec{X: int64(l.Lon), Y: int64(l.Lat)} }

func (v vec) sub(o vec) vec { return vec{X: v.X - o.X, Y: v.Y - o.Y} }

// cross is the 2D cross product (z-component), used both as the
// ring-winding determinant and as the collinearity test below.
func (v vec) cross(o vec) int64 { return v.X*o.Y - v.Y*o.X }

// Problem records a non-fatal geometry issue found while assembling
// one ring or relation (spec.md §4.3.8).
type Problem struct {
	Kind string // "SelfIntersection" or "OrientationMismatch"
	At   element.Location
}

// Intersect computes the intersection point of s1 and s2. The crossing
// and range tests use int64 cross products; the crossing point itself
// is interpolated in float64 and truncated to the fixed-point grid, so
// the computation is not integer-only. Touching at a shared
// endpoint is not an intersection. Collinear overlapping segments
// return the smaller of the endpoints lying in the overlap.
func Intersect(s1, s2 *Segment) (element.Location, bool) {
	p0, p1 := locVec(s1.A), locVec(s1.B)
	q0, q1 := locVec(s2.A), locVec(s2.B)

	if (p0 == q0 && p1 == q1) || (p0 == q1 && p1 == q0) {
		return element.Location{}, false
	}

	pd := p1.sub(p0)
	qd := q1.sub(q0)
	d := pd.cross(qd)

	if d != 0 {
		if p0 == q0 || p0 == q1 || p1 == q0 || p1 == q1 {
			return element.Location{}, false // touching at an endpoint
		}

		na := qd.cross(p0.sub(q0))
		nb := pd.cross(p0.sub(q0))

		inRange := (d > 0 && na >= 0 && na <= d && nb >= 0 && nb <= d) ||
			(d < 0 && na <= 0 && na >= d && nb <= 0 && nb >= d)
		if !inRange {
			return element.Location{}, false
		}

		ua := float64(na) / float64(d)
		ix := float64(p0.X) + ua*float64(pd.X)
		iy := float64(p0.Y) + ua*float64(pd.Y)
		return element.Location{Lon: int32(ix), Lat: int32(iy)}, true
	}

	// Collinear: only an intersection if the two segments actually lie
	// on the same infinite line.
	if pd.cross(q0.sub(p0)) != 0 {
		return element.Location{}, false
	}

	type segLoc struct {
		seg int
		loc element.Location
	}
	sl := [4]segLoc{
		{0, s1.A}, {0, s1.B}, {1, s2.A}, {1, s2.B},
	}
	// Insertion sort over 4 elements by Location.Less, stable enough to
	// match std::sort's tie behavior on this tiny fixed array.
	for i := 1; i < 4; i++ {
		for j := i; j > 0 && sl[j].loc.Less(sl[j-1].loc); j-- {
			sl[j], sl[j-1] = sl[j-1], sl[j]
		}
	}

	if sl[1].loc == sl[2].loc {
		return element.Location{}, false
	}
	if sl[0].seg != sl[1].seg {
		if sl[0].loc == sl[1].loc {
			return sl[2].loc, true
		}
		return sl[1].loc, true
	}
	return element.Location{}, false
}

// DetectIntersections scans sorted segments for pairwise
// intersections, relying on the sort order to stop each inner scan
// early once the candidate's A.x exceeds the current segment's B.x
// (spec.md §4.3.2's stated purpose for the ordering).
func DetectIntersections(segs []*Segment) []Problem {
	var problems []Problem
	for i := 0; i < len(segs); i++ {
		for j := i + 1; j < len(segs); j++ {
			if segs[j].A.Lon > segs[i].B.Lon {
				break
			}
			if !yRangeOverlap(segs[i], segs[j]) {
				continue
			}
			if loc, ok := Intersect(segs[i], segs[j]); ok {
				problems = append(problems, Problem{Kind: "SelfIntersection", At: loc})
			}
		}
	}
	return problems
}

func yRangeOverlap(s1, s2 *Segment) bool {
	min1, max1 := minMax(s1.A.Lat, s1.B.Lat)
	min2, max2 := minMax(s2.A.Lat, s2.B.Lat)
	return !(min1 > max2 || min2 > max1)
}

func minMax(a, b int32) (int32, int32) {
	if a < b {
		return a, b
	}
	return b, a
}
