package cache

import (
	"sync"

	"github.com/go-osm/osm2pgsql/internal/element"
)

// WayRecord is the persisted shape of a way: its node-id sequence and
// tags, enough to reconstruct member geometries during relation
// assembly without re-reading the input (spec.md §4.2).
type WayRecord struct {
	Nodes []element.ID
	Tags  *element.TagList
}

// WayStore conservatively persists every way seen during the way
// pass so that a later multipolygon relation can look its members up
// without re-reading the input stream. Read-only once the way phase
// ends (spec.md §3 invariant 2 analog for ways).
type WayStore struct {
	mu      sync.RWMutex
	records map[element.ID]*WayRecord

	maxRecords int // 0 = unbounded
}

// NewWayStore creates a WayStore. maxRecords bounds how many ways are
// retained; 0 means store all ways seen (the simplest conservative
// policy spec.md §4.2 allows: "implementations may store all ways
// under a bounded budget").
func NewWayStore(maxRecords int) *WayStore {
	return &WayStore{
		records:    make(map[element.ID]*WayRecord),
		maxRecords: maxRecords,
	}
}

// Put stores a way's node list and tags, reporting whether id was
// already present (spec.md §6: "Duplicates within a kind are a
// warning, not an error"). Safe to call concurrently from multiple
// way-pass workers.
func (s *WayStore) Put(id element.ID, w *element.Way) (duplicate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.records[id]
	if s.maxRecords > 0 && len(s.records) >= s.maxRecords && !exists {
		return false // budget exhausted: this way silently won't be available to relations
	}
	s.records[id] = &WayRecord{Nodes: w.Nodes, Tags: w.Tags}
	return exists
}

// Get returns the stored way, or ErrNotFound if it was never
// persisted (e.g. the conservative budget dropped it).
func (s *WayStore) Get(id element.ID) (*WayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, &ErrNotFound{WayID: int64(id)}
	}
	return rec, nil
}

// Len returns the number of ways currently persisted.
func (s *WayStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
