package geom

import "github.com/go-osm/osm2pgsql/internal/element"

// Ring is a closed sequence of segments forming one simple polygon
// boundary (spec.md §4.3.4). Points are listed start-to-stop in walk
// order, closed (first == last).
type Ring struct {
	Segments []*Segment
	Points   []element.Location

	// Signed area (sum of det(start, stop) across segments, spec.md
	// §4.3.5). Positive/negative encodes winding; magnitude is twice
	// the geometric area.
	SignedArea int64

	Outer bool

	// Inners holds the rings nested directly inside this one, once
	// polygon grouping (§4.3.6) has run. Only meaningful on outer
	// rings.
	Inners []*Ring
}

// endpointIndex speeds up "find an unplaced segment touching this
// point" during the greedy ring walk.
type endpointIndex map[element.Location][]*Segment

func buildEndpointIndex(segs []*Segment) endpointIndex {
	idx := make(endpointIndex, len(segs)*2)
	for _, s := range segs {
		idx[s.A] = append(idx[s.A], s)
		idx[s.B] = append(idx[s.B], s)
	}
	return idx
}

func (idx endpointIndex) findUnplaced(at element.Location, exclude *Segment) *Segment {
	for _, s := range idx[at] {
		if s == exclude || s.Ring != -1 {
			continue
		}
		return s
	}
	return nil
}

// BuildRingsResult carries the output of ring construction.
type BuildRingsResult struct {
	Rings     []*Ring
	OpenRings int
}

// BuildRings walks segs in sorted order, greedily chaining unplaced
// segments that share an endpoint until the chain closes, per spec.md
// §4.3.4. Segments left over after the chain under construction get
// tried again as the start of a new chain on a later outer-loop pass.
func BuildRings(segs []*Segment) BuildRingsResult {
	idx := buildEndpointIndex(segs)
	var result BuildRingsResult
	// released holds segments already given back by an earlier open
	// chain, so retrying them does not count the same open ring twice.
	released := make(map[*Segment]bool)

	for _, start := range segs {
		if start.Ring != -1 {
			continue
		}

		chain := []*Segment{start}
		start.Ring = -2 // tentatively claimed, not yet committed to a ring index
		current := start
		originStart := start.Start()

		closed := false
		for {
			stop := current.Stop()
			if len(chain) > 1 && stop == originStart {
				closed = true
				break
			}
			next := idx.findUnplaced(stop, current)
			if next == nil {
				break
			}
			if next.A != stop {
				next.Reverse = true
			} else {
				next.Reverse = false
			}
			next.Ring = -2
			chain = append(chain, next)
			current = next
		}

		// A single-segment "ring" (start meets itself only via a
		// zero-length chain) can't close; require >= 3 distinct points.
		points := chainPoints(chain)
		if closed && len(distinctPoints(points)) >= 3 {
			ring := &Ring{Segments: chain, Points: points}
			ringIdx := len(result.Rings)
			for _, s := range chain {
				s.Ring = ringIdx
			}
			result.Rings = append(result.Rings, ring)
		} else {
			fresh := false
			for _, s := range chain {
				if !released[s] {
					fresh = true
				}
				released[s] = true
				s.Ring = -1 // release back to the unplaced pool; spec.md §4.3.8 discards this chain
				// Undo direction bookkeeping too: a released segment
				// may be picked up as the start of a later chain, and
				// Start()/Stop() must read as the original A->B until
				// it is actually placed into a ring again.
				s.Reverse = false
				s.DirectionDone = false
			}
			if fresh {
				result.OpenRings++
			}
		}
	}

	return result
}

func chainPoints(chain []*Segment) []element.Location {
	pts := make([]element.Location, 0, len(chain)+1)
	for i, s := range chain {
		if i == 0 {
			pts = append(pts, s.Start())
		}
		pts = append(pts, s.Stop())
	}
	return pts
}

func distinctPoints(pts []element.Location) []element.Location {
	seen := make(map[element.Location]bool, len(pts))
	out := pts[:0:0]
	for _, p := range pts {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
