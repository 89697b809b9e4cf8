package stats

import (
	"strings"
	"sync"
	"testing"
)

func TestCountersAddAndSnapshot(t *testing.T) {
	var c Counters
	c.AddNodes(3)
	c.AddWays(2)
	c.AddRelations(1)
	c.AddShortWays(1)
	c.AddInvalidLocations(4)
	c.AddDuplicateNodes(1)
	c.AddDuplicateWays(1)
	c.AddDuplicateSegments(1)
	c.AddOpenRings(1)
	c.AddSelfIntersections(1)
	c.AddNoWayInMPRelation(1)
	c.AddOrientationMismatch(1)
	c.AddCapacityExceeded(1)

	s := c.Snapshot()
	want := Snapshot{
		Nodes: 3, Ways: 2, Relations: 1,
		ShortWays: 1, InvalidLocations: 4, DuplicateNodes: 1, DuplicateWays: 1,
		DuplicateSegments: 1,
		OpenRings: 1, SelfIntersections: 1, NoWayInMPRelation: 1, OrientationMismatch: 1,
		CapacityExceeded: 1,
	}
	if s != want {
		t.Errorf("Snapshot() = %+v, want %+v", s, want)
	}
}

func TestCountersConcurrentAdds(t *testing.T) {
	var c Counters
	var wg sync.WaitGroup
	const goroutines = 50
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			c.AddNodes(1)
			c.AddInvalidLocations(2)
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	if s.Nodes != goroutines {
		t.Errorf("Nodes = %d, want %d", s.Nodes, goroutines)
	}
	if s.InvalidLocations != 2*goroutines {
		t.Errorf("InvalidLocations = %d, want %d", s.InvalidLocations, 2*goroutines)
	}
}

func TestWriteSummaryContainsAllCounters(t *testing.T) {
	var c Counters
	c.AddNodes(10)
	c.AddOpenRings(2)

	var buf strings.Builder
	c.WriteSummary(&buf)
	out := buf.String()

	for _, want := range []string{
		"nodes:", "ways:", "relations:",
		"short_ways:", "invalid_locations:", "duplicate_nodes:", "duplicate_ways:",
		"duplicate_segments:", "open_rings:", "self_intersections:", "no_way_in_mp_relation:",
		"orientation_mismatches:", "capacity_exceeded:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q; got:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "10") {
		t.Errorf("summary missing nodes value; got:\n%s", out)
	}
}
