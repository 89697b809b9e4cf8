package geom

import (
	"github.com/go-osm/osm2pgsql/internal/cache"
	"github.com/go-osm/osm2pgsql/internal/element"
)

// State is a step in the per-assembly state machine from spec.md
// §4.3.7.
type State int

const (
	StateReady State = iota
	StateSegmented
	StateSorted
	StateIntersected
	StateRinged
	StateDirected
	StateEmitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateSegmented:
		return "SEGMENTED"
	case StateSorted:
		return "SORTED"
	case StateIntersected:
		return "INTERSECTED"
	case StateRinged:
		return "RINGED"
	case StateDirected:
		return "DIRECTED"
	case StateEmitted:
		return "EMITTED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Stats accumulates the non-fatal problem counters spec.md §4.3.8 and
// §7 attribute to assembly runs. The Assembler adds to it on every
// call and never clears it; the caller resets it.
type Stats struct {
	InvalidLocations  int
	DuplicateNodes    int
	DuplicateSegments int
	SelfIntersections int
	OpenRings         int
	OrientationMismatches int
	NoWayInRelation   int
}

// Options configures an Assembler's policy choices (spec.md §6).
type Options struct {
	IgnoreInvalidLocations bool
	CreateEmptyAreas       bool
	KeepTypeTag            bool
}

// Assembler reconstructs oriented multipolygons from ways/relations.
// Each call to AssembleWay/AssembleRelation starts from READY and runs
// the READY->...->EMITTED (or FAILED) state machine once, leaving the
// assembler in EMITTED or FAILED until the next call; the core is single-threaded cooperative per spec.md §5, so
// an Assembler must not be shared across concurrent goroutines.
type Assembler struct {
	store *cache.NodeStore
	opts  Options

	state State
	Stats Stats
}

// NewAssembler creates an Assembler reading node locations from store.
func NewAssembler(store *cache.NodeStore, opts Options) *Assembler {
	return &Assembler{store: store, opts: opts, state: StateReady}
}

// State returns the assembler's current state (useful for tests and
// diagnostics; normal callers only care about the Result).
func (a *Assembler) State() State { return a.state }

// Result is zero or one assembled MultiPolygon plus the tags it
// should be emitted with.
type Result struct {
	Polygons []*Ring // each entry is an outer ring with Inners populated
	Tags     *element.TagList
	// EmptyArea is true when geometry assembly failed but
	// CreateEmptyAreas allowed the tags-only row through (spec.md
	// §4.3.8).
	EmptyArea bool
}

// AssembleWay builds a MultiPolygon from a single closed, area-tagged
// way (spec.md §4.3, case (i)).
func (a *Assembler) AssembleWay(w *element.Way, tags *element.TagList) (*Result, error) {
	a.state = StateReady
	if len(w.Nodes) < 2 {
		a.state = StateFailed
		return a.emptyOrNil(tags), nil
	}

	extract := ExtractSegmentsFromWay(w, element.RoleOuter, a.store)
	a.state = StateSegmented
	a.Stats.InvalidLocations += extract.InvalidLocations
	if extract.DuplicateNodes {
		a.Stats.DuplicateNodes++
	}
	if !a.opts.IgnoreInvalidLocations && extract.InvalidLocations > 0 {
		a.state = StateFailed
		return a.emptyOrNil(tags), nil
	}

	return a.finishAssembly(extract.Segments, tags)
}

// AssembleRelation builds a MultiPolygon from a multipolygon
// relation's way members (spec.md §4.3, case (ii)). members supplies
// each member way alongside its declared role, in relation member
// order.
func (a *Assembler) AssembleRelation(r *element.Relation, members []*element.Way, roles []element.Role, tags *element.TagList) (*Result, error) {
	a.state = StateReady
	if len(members) == 0 {
		a.Stats.NoWayInRelation++
		a.state = StateFailed
		return a.emptyOrNil(tags), nil
	}

	var segs []*Segment
	invalid := 0
	for i, w := range members {
		role := element.RoleOuter
		if i < len(roles) {
			role = roles[i]
		}
		extract := ExtractSegmentsFromWay(w, role, a.store)
		invalid += extract.InvalidLocations
		a.Stats.InvalidLocations += extract.InvalidLocations
		if extract.DuplicateNodes {
			a.Stats.DuplicateNodes++
		}
		segs = append(segs, extract.Segments...)
	}
	a.state = StateSegmented

	if !a.opts.IgnoreInvalidLocations && invalid > 0 {
		a.state = StateFailed
		return a.emptyOrNil(tags), nil
	}

	outTags := tags
	if !a.opts.KeepTypeTag && outTags != nil {
		clone := element.NewTagList()
		for _, t := range outTags.All() {
			if t.Key != "type" {
				clone.Set(t.Key, t.Value)
			}
		}
		outTags = clone
	}

	return a.finishAssembly(segs, outTags)
}

func (a *Assembler) finishAssembly(segs []*Segment, tags *element.TagList) (*Result, error) {
	if len(segs) == 0 {
		a.state = StateFailed
		return a.emptyOrNil(tags), nil
	}

	segs, dupes := DedupSegments(segs)
	a.Stats.DuplicateSegments += dupes
	if len(segs) == 0 {
		a.state = StateFailed
		return a.emptyOrNil(tags), nil
	}

	SortSegments(segs)
	a.state = StateSorted

	problems := DetectIntersections(segs)
	if len(problems) > 0 {
		a.Stats.SelfIntersections += len(problems)
		a.state = StateIntersected
	}

	built := BuildRings(segs)
	a.Stats.OpenRings += built.OpenRings
	if len(built.Rings) == 0 {
		a.state = StateFailed
		return a.emptyOrNil(tags), nil
	}
	a.state = StateRinged

	orientationProblems := AssignWindingAndNesting(built.Rings)
	a.Stats.OrientationMismatches += len(orientationProblems)
	a.state = StateDirected

	outers := GroupPolygons(built.Rings)
	if len(outers) == 0 {
		a.state = StateFailed
		return a.emptyOrNil(tags), nil
	}

	a.state = StateEmitted
	return &Result{Polygons: outers, Tags: tags}, nil
}

func (a *Assembler) emptyOrNil(tags *element.TagList) *Result {
	if a.opts.CreateEmptyAreas {
		return &Result{Tags: tags, EmptyArea: true}
	}
	return nil
}
