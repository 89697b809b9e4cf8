package geom

import (
	"testing"

	"github.com/go-osm/osm2pgsql/internal/cache"
	"github.com/go-osm/osm2pgsql/internal/element"
)

func newTestStore(t *testing.T, locs map[element.ID]element.Location) *cache.NodeStore {
	t.Helper()
	s := cache.New(cache.Options{Strategy: cache.StrategyOptimized, BudgetBytes: 16 * 1024 * 1024})
	for id, loc := range locs {
		if err := s.Set(id, loc); err != nil {
			t.Fatalf("Set(%d): %v", id, err)
		}
	}
	return s
}

func square(t *testing.T) (*cache.NodeStore, *element.Way) {
	store := newTestStore(t, map[element.ID]element.Location{
		1: {Lon: 0, Lat: 0},
		2: {Lon: 10, Lat: 0},
		3: {Lon: 10, Lat: 10},
		4: {Lon: 0, Lat: 10},
	})
	w := &element.Way{ID: 100, Nodes: []element.ID{1, 2, 3, 4, 1}}
	return store, w
}

func TestExtractSegmentsFromWayBasic(t *testing.T) {
	store, w := square(t)
	res := ExtractSegmentsFromWay(w, element.RoleOuter, store)
	if len(res.Segments) != 4 {
		t.Fatalf("got %d segments, want 4", len(res.Segments))
	}
	if res.InvalidLocations != 0 {
		t.Errorf("InvalidLocations = %d, want 0", res.InvalidLocations)
	}
	for _, s := range res.Segments {
		if !s.A.Less(s.B) && s.A != s.B {
			t.Errorf("segment not normalized: A=%v B=%v", s.A, s.B)
		}
	}
}

func TestExtractSegmentsDropsZeroLength(t *testing.T) {
	store := newTestStore(t, map[element.ID]element.Location{
		1: {Lon: 0, Lat: 0},
		2: {Lon: 0, Lat: 0},
		3: {Lon: 10, Lat: 10},
	})
	w := &element.Way{ID: 1, Nodes: []element.ID{1, 2, 3}}
	res := ExtractSegmentsFromWay(w, element.RoleOuter, store)
	if len(res.Segments) != 1 {
		t.Fatalf("got %d segments, want 1 (zero-length 1->2 dropped)", len(res.Segments))
	}
}

func TestExtractSegmentsInvalidLocation(t *testing.T) {
	store := newTestStore(t, map[element.ID]element.Location{
		1: {Lon: 0, Lat: 0},
	})
	w := &element.Way{ID: 1, Nodes: []element.ID{1, 2}} // node 2 never set
	res := ExtractSegmentsFromWay(w, element.RoleOuter, store)
	if res.InvalidLocations != 1 {
		t.Errorf("InvalidLocations = %d, want 1", res.InvalidLocations)
	}
	if len(res.Segments) != 0 {
		t.Errorf("expected no segments when an endpoint is unresolved")
	}
}

func TestDedupSegmentsCollapsesUnorderedPairDuplicates(t *testing.T) {
	a := element.Location{Lon: 0, Lat: 0}
	b := element.Location{Lon: 10, Lat: 0}
	segs := []*Segment{
		{A: a, B: b, WayID: 1, Ring: -1},
		{A: a, B: b, WayID: 2, Ring: -1}, // duplicate of the above
		{A: b, B: element.Location{Lon: 10, Lat: 10}, WayID: 1, Ring: -1},
	}
	out, dupes := DedupSegments(segs)
	if dupes != 1 {
		t.Fatalf("dupes = %d, want 1", dupes)
	}
	if len(out) != 2 {
		t.Fatalf("got %d segments after dedup, want 2", len(out))
	}
}

func TestDedupSegmentsNoDuplicatesUnchanged(t *testing.T) {
	store, w := square(t)
	res := ExtractSegmentsFromWay(w, element.RoleOuter, store)
	out, dupes := DedupSegments(res.Segments)
	if dupes != 0 {
		t.Errorf("dupes = %d, want 0", dupes)
	}
	if len(out) != len(res.Segments) {
		t.Errorf("got %d segments, want %d (no duplicates to collapse)", len(out), len(res.Segments))
	}
}

func TestSortSegmentsStrictWeakOrder(t *testing.T) {
	store, w := square(t)
	res := ExtractSegmentsFromWay(w, element.RoleOuter, store)
	SortSegments(res.Segments)
	for i := 1; i < len(res.Segments); i++ {
		if Less(res.Segments[i], res.Segments[i-1]) {
			t.Errorf("segments not sorted at index %d", i)
		}
	}
}
