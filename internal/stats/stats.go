// Package stats accumulates the run-wide counters spec.md §7/§8
// attribute to a complete import, and prints the final summary
// report. Grounded on original_source/src/debug-output.cpp's
// log_debug-based summary pattern (structured, one line per counter)
// and the counter names assembler.hpp's Assembler/stats() type
// exposes (short_ways, duplicate_nodes, invalid_locations,
// no_way_in_mp_relation, ...), extended with the geometry-specific
// counters (self_intersections, open_rings) spec.md §4.3.8 and §7
// name directly.
package stats

import (
	"fmt"
	"io"
	"sync/atomic"
)

// Counters is the set of run-wide statistics spec.md §7's error kinds
// and §8's summary require. All fields are updated with sync/atomic,
// so the Add* methods and Snapshot are safe to call from several
// goroutines at once.
type Counters struct {
	Nodes     int64
	Ways      int64
	Relations int64

	ShortWays           int64
	InvalidLocations    int64
	DuplicateNodes      int64
	DuplicateWays       int64
	DuplicateSegments   int64
	OpenRings           int64
	SelfIntersections   int64
	NoWayInMPRelation   int64
	OrientationMismatch int64
	CapacityExceeded    int64
}

// AddNodes atomically increments Nodes by n.
func (c *Counters) AddNodes(n int64) { atomic.AddInt64(&c.Nodes, n) }

// AddWays atomically increments Ways by n.
func (c *Counters) AddWays(n int64) { atomic.AddInt64(&c.Ways, n) }

// AddRelations atomically increments Relations by n.
func (c *Counters) AddRelations(n int64) { atomic.AddInt64(&c.Relations, n) }

// AddShortWays atomically increments ShortWays by n.
func (c *Counters) AddShortWays(n int64) { atomic.AddInt64(&c.ShortWays, n) }

// AddInvalidLocations atomically increments InvalidLocations by n.
func (c *Counters) AddInvalidLocations(n int64) { atomic.AddInt64(&c.InvalidLocations, n) }

// AddDuplicateNodes atomically increments DuplicateNodes by n.
func (c *Counters) AddDuplicateNodes(n int64) { atomic.AddInt64(&c.DuplicateNodes, n) }

// AddDuplicateWays atomically increments DuplicateWays by n.
func (c *Counters) AddDuplicateWays(n int64) { atomic.AddInt64(&c.DuplicateWays, n) }

// AddDuplicateSegments atomically increments DuplicateSegments by n.
func (c *Counters) AddDuplicateSegments(n int64) { atomic.AddInt64(&c.DuplicateSegments, n) }

// AddOpenRings atomically increments OpenRings by n.
func (c *Counters) AddOpenRings(n int64) { atomic.AddInt64(&c.OpenRings, n) }

// AddSelfIntersections atomically increments SelfIntersections by n.
func (c *Counters) AddSelfIntersections(n int64) { atomic.AddInt64(&c.SelfIntersections, n) }

// AddNoWayInMPRelation atomically increments NoWayInMPRelation by n.
func (c *Counters) AddNoWayInMPRelation(n int64) { atomic.AddInt64(&c.NoWayInMPRelation, n) }

// AddOrientationMismatch atomically increments OrientationMismatch by n.
func (c *Counters) AddOrientationMismatch(n int64) { atomic.AddInt64(&c.OrientationMismatch, n) }

// AddCapacityExceeded atomically increments CapacityExceeded by n.
func (c *Counters) AddCapacityExceeded(n int64) { atomic.AddInt64(&c.CapacityExceeded, n) }

// Snapshot is a point-in-time, non-atomic copy of Counters suitable
// for printing or comparing in tests.
type Snapshot struct {
	Nodes, Ways, Relations                                              int64
	ShortWays, InvalidLocations, DuplicateNodes, DuplicateWays          int64
	DuplicateSegments                                                   int64
	OpenRings, SelfIntersections, NoWayInMPRelation, OrientationMismatch int64
	CapacityExceeded                                                    int64
}

// Snapshot reads every counter with atomic.LoadInt64.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Nodes:               atomic.LoadInt64(&c.Nodes),
		Ways:                atomic.LoadInt64(&c.Ways),
		Relations:           atomic.LoadInt64(&c.Relations),
		ShortWays:           atomic.LoadInt64(&c.ShortWays),
		InvalidLocations:    atomic.LoadInt64(&c.InvalidLocations),
		DuplicateNodes:      atomic.LoadInt64(&c.DuplicateNodes),
		DuplicateWays:       atomic.LoadInt64(&c.DuplicateWays),
		DuplicateSegments:   atomic.LoadInt64(&c.DuplicateSegments),
		OpenRings:           atomic.LoadInt64(&c.OpenRings),
		SelfIntersections:   atomic.LoadInt64(&c.SelfIntersections),
		NoWayInMPRelation:   atomic.LoadInt64(&c.NoWayInMPRelation),
		OrientationMismatch: atomic.LoadInt64(&c.OrientationMismatch),
		CapacityExceeded:    atomic.LoadInt64(&c.CapacityExceeded),
	}
}

// WriteSummary prints the final run report, one counter per line,
// matching debug-output.cpp's structured one-line-per-counter style.
func (c *Counters) WriteSummary(w io.Writer) {
	s := c.Snapshot()
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  nodes:                  %d\n", s.Nodes)
	fmt.Fprintf(w, "  ways:                   %d\n", s.Ways)
	fmt.Fprintf(w, "  relations:              %d\n", s.Relations)
	fmt.Fprintf(w, "  short_ways:             %d\n", s.ShortWays)
	fmt.Fprintf(w, "  invalid_locations:      %d\n", s.InvalidLocations)
	fmt.Fprintf(w, "  duplicate_nodes:        %d\n", s.DuplicateNodes)
	fmt.Fprintf(w, "  duplicate_ways:         %d\n", s.DuplicateWays)
	fmt.Fprintf(w, "  duplicate_segments:     %d\n", s.DuplicateSegments)
	fmt.Fprintf(w, "  open_rings:             %d\n", s.OpenRings)
	fmt.Fprintf(w, "  self_intersections:     %d\n", s.SelfIntersections)
	fmt.Fprintf(w, "  no_way_in_mp_relation:  %d\n", s.NoWayInMPRelation)
	fmt.Fprintf(w, "  orientation_mismatches: %d\n", s.OrientationMismatch)
	fmt.Fprintf(w, "  capacity_exceeded:      %d\n", s.CapacityExceeded)
}
