package decoder

import (
	"log"

	"github.com/go-osm/osm2pgsql/internal/element"
)

// OrderChecker enforces spec.md §6's decoder contract ("nodes then
// ways then relations, each kind in ascending id order") by watching
// the stream and warning once on the first violation, exactly as
// original_source/src/check-order.cpp's check_order_t does (one
// warning total per run, not one per offending id).
type OrderChecker struct {
	maxNodeID, maxWayID, maxRelationID    element.ID
	haveNodeID, haveWayID, haveRelationID bool
	sawWay, sawRelation                   bool
	warned                                bool

	// Warn receives the formatted warning message, defaulting to
	// log.Print via NewOrderChecker.
	Warn func(string)
}

// NewOrderChecker creates an OrderChecker that logs via log.Printf.
func NewOrderChecker() *OrderChecker {
	return &OrderChecker{Warn: func(msg string) { log.Print(msg) }}
}

func (c *OrderChecker) warn(msg string) {
	if c.warned {
		return
	}
	c.warned = true
	if c.Warn != nil {
		c.Warn("WARNING: " + msg + ": unordered input files are not fully supported; sort input first")
	}
}

// Node records a node id in stream order.
func (c *OrderChecker) Node(id element.ID) {
	if c.warned {
		return
	}
	if c.sawWay {
		c.warn("found a node after a way")
	}
	if c.sawRelation {
		c.warn("found a node after a relation")
	}
	if c.haveNodeID && id == c.maxNodeID {
		c.warn("node id twice in input")
	}
	if c.haveNodeID && id < c.maxNodeID {
		c.warn("node ids out of order")
	}
	c.maxNodeID, c.haveNodeID = id, true
}

// Way records a way id in stream order.
func (c *OrderChecker) Way(id element.ID) {
	if c.warned {
		return
	}
	c.sawWay = true
	if c.sawRelation {
		c.warn("found a way after a relation")
	}
	if c.haveWayID && id == c.maxWayID {
		c.warn("way id twice in input")
	}
	if c.haveWayID && id < c.maxWayID {
		c.warn("way ids out of order")
	}
	c.maxWayID, c.haveWayID = id, true
}

// Relation records a relation id in stream order.
func (c *OrderChecker) Relation(id element.ID) {
	if c.warned {
		return
	}
	c.sawRelation = true
	if c.haveRelationID && id == c.maxRelationID {
		c.warn("relation id twice in input")
	}
	if c.haveRelationID && id < c.maxRelationID {
		c.warn("relation ids out of order")
	}
	c.maxRelationID, c.haveRelationID = id, true
}

// Warned reports whether a violation has already been reported.
func (c *OrderChecker) Warned() bool { return c.warned }
