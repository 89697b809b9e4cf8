// Package cache implements the memory-bounded NodeStore and the
// conservative WayStore described in spec.md §4.1 and §4.2.
//
// NodeStore models spec.md's "sum type {Dense(...)|Sparse(...)|Both}"
// design note as a single struct with both components present but
// individually nil-able, and a priority queue (blockHeap) ordered by
// fill count alone, kept apart from the block-index map, matching the
// note's description of the eviction heap as a separate data
// structure.
package cache

import (
	"container/heap"
	"log"
	"sort"
	"sync/atomic"

	"github.com/go-osm/osm2pgsql/internal/element"
)

// Strategy selects which allocation strategy(ies) NodeStore uses.
type Strategy int

const (
	// StrategyDense uses only the two-level radix; ids are never
	// spilled to a fallback and capacity enforcement applies directly.
	StrategyDense Strategy = iota
	// StrategySparse uses only the append-only sorted array; Set
	// requires strictly increasing ids.
	StrategySparse
	// StrategyOptimized (spec.md's "optimized" = Dense | Sparse
	// combined) is the default: Dense absorbs writes, evicted blocks
	// spill into Sparse.
	StrategyOptimized
)

const (
	blockBits = 13
	blockSize = 1 << blockBits // 2^13 slots per block, spec.md §4.1
	blockMask = blockSize - 1

	// bytesPerSlot approximates one dense slot's resident cost: two
	// int32 coordinates plus the occupancy bit, rounded up.
	bytesPerSlot = 9
	blockSizeBytes = blockSize * bytesPerSlot
)

// Options configures a NodeStore.
type Options struct {
	// Strategy selects Dense, Sparse, or Optimized (combined).
	Strategy Strategy
	// BudgetBytes is the configured cache budget B (spec.md §6,
	// cache_size_mb converted to bytes).
	BudgetBytes int64
	// Lossy, if true, silently drops data on capacity exhaustion
	// instead of failing (spec.md §6, lossy_cache).
	Lossy bool
}

// NodeStore maps node ids to locations under a bounded memory budget,
// combining a dense radix with an optional sparse fallback and a
// fill-count eviction heap (spec.md §4.1).
type NodeStore struct {
	opts Options

	// dense
	blocks   map[int64]*denseBlock
	heap     blockHeap
	maxBlocks int

	// sparse: append-only, strictly increasing by id
	sparseIDs  []int64
	sparseLocs []element.Location

	lastSetID     int64
	haveLastSetID bool
	warnedOnce    bool

	lookups int64
	hits    int64
}

// New creates a NodeStore under the given options.
func New(opts Options) *NodeStore {
	maxBlocks := 1
	if opts.BudgetBytes > 0 {
		maxBlocks = int(opts.BudgetBytes / blockSizeBytes)
		if maxBlocks < 1 {
			maxBlocks = 1
		}
	}
	return &NodeStore{
		opts:      opts,
		blocks:    make(map[int64]*denseBlock),
		maxBlocks: maxBlocks,
	}
}

func (s *NodeStore) usesDense() bool {
	return s.opts.Strategy == StrategyDense || s.opts.Strategy == StrategyOptimized
}

func (s *NodeStore) usesSparse() bool {
	return s.opts.Strategy == StrategySparse || s.opts.Strategy == StrategyOptimized
}

// Set inserts (id, loc) into the store. See spec.md §4.1 for the full
// failure-mode contract.
func (s *NodeStore) Set(id element.ID, loc element.Location) error {
	if err := element.CheckNodeID(id); err != nil {
		return err
	}
	v := int64(id)

	if s.opts.Strategy == StrategySparse {
		return s.setSparse(v, loc)
	}

	// Dense / Optimized: out-of-order writes into an already
	// materialized block are tolerated (warn once, drop), per
	// spec.md §9's Open Question; this store always uses that
	// legacy behavior and has no mode that aborts instead.
	outOfOrder := s.haveLastSetID && v < s.lastSetID

	blockNum := v >> blockBits
	idx := int(v & blockMask)

	block, ok := s.blocks[blockNum]
	if !ok {
		// A write that materializes a brand-new block is accepted
		// even if out of order: only writes into an *existing*
		// block are subject to the tolerate-or-drop rule below, since
		// a new block has no "current insertion point" yet.
		var err error
		block, err = s.materializeBlock(blockNum)
		if err != nil {
			return err
		}
	} else if outOfOrder {
		if !s.warnedOnce {
			s.warnedOnce = true
			log.Printf("cache: out-of-order node id %d (previous %d) in already-materialized block; dropping", v, s.lastSetID)
		}
		// Tolerated: the bit is dropped (spec.md §4.1).
		return nil
	}

	wasNew := block.set(idx, loc)
	if wasNew {
		s.heap.percolate(block)
	}
	if !s.haveLastSetID || v > s.lastSetID {
		s.lastSetID = v
		s.haveLastSetID = true
	}
	return nil
}

// materializeBlock implements spec.md §4.1 Phase 1 / Phase 2: append
// while the queue has room, otherwise evict the least-populated block
// (the heap head) to make room for the new one.
func (s *NodeStore) materializeBlock(blockNum int64) (*denseBlock, error) {
	if len(s.heap) >= s.maxBlocks && len(s.heap) > 0 {
		evicted := heap.Pop(&s.heap).(*denseBlock)
		if !s.usesSparse() && !s.opts.Lossy {
			// No sparse fallback to absorb the evicted data: this
			// would be a silent data loss, which the non-lossy policy
			// must refuse.
			heap.Push(&s.heap, evicted) // restore before failing
			return nil, &ErrCapacityExceeded{BudgetBytes: s.opts.BudgetBytes}
		}
		if s.usesSparse() {
			s.spillToSparse(evicted)
		}
		delete(s.blocks, evicted.blockNum)
	}

	block := newDenseBlock(blockNum, blockSize)
	s.blocks[blockNum] = block
	heap.Push(&s.heap, block)
	return block, nil
}

// spillToSparse re-inserts every still-valid slot of an evicted dense
// block into the sparse array, preserving that data at lower memory
// cost (spec.md §4.1).
func (s *NodeStore) spillToSparse(b *denseBlock) {
	base := b.blockNum << blockBits
	type pair struct {
		id  int64
		loc element.Location
	}
	var pending []pair
	for i, occ := range b.occupied {
		if occ {
			pending = append(pending, pair{id: base + int64(i), loc: b.locations[i]})
		}
	}
	if len(pending) == 0 {
		return
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].id < pending[j].id })
	for _, p := range pending {
		s.appendSparse(p.id, p.loc)
	}
}

// setSparse implements pure StrategySparse Set: strictly increasing
// ids only.
func (s *NodeStore) setSparse(id int64, loc element.Location) error {
	if len(s.sparseIDs) > 0 && id <= s.sparseIDs[len(s.sparseIDs)-1] {
		return &ErrOutOfOrder{ID: id, Previous: s.sparseIDs[len(s.sparseIDs)-1]}
	}
	s.appendSparse(id, loc)
	return nil
}

// appendSparse appends in increasing order without the strict
// ordering failure (used for eviction spill, which by construction
// is id-ascending within each spill batch but may interleave with
// ids already appended by earlier direct sparse writes or spills).
func (s *NodeStore) appendSparse(id int64, loc element.Location) {
	if n := len(s.sparseIDs); n > 0 && id <= s.sparseIDs[n-1] {
		// Out-of-order relative to the existing sparse tail (can
		// happen if sparse already holds ids from a later block that
		// was evicted earlier); insert in sorted position instead of
		// appending, keeping the invariant required by binary search.
		i := sort.Search(n, func(i int) bool { return s.sparseIDs[i] >= id })
		if i < n && s.sparseIDs[i] == id {
			s.sparseLocs[i] = loc
			return
		}
		s.sparseIDs = append(s.sparseIDs, 0)
		s.sparseLocs = append(s.sparseLocs, element.Location{})
		copy(s.sparseIDs[i+1:], s.sparseIDs[i:n])
		copy(s.sparseLocs[i+1:], s.sparseLocs[i:n])
		s.sparseIDs[i] = id
		s.sparseLocs[i] = loc
		return
	}
	s.sparseIDs = append(s.sparseIDs, id)
	s.sparseLocs = append(s.sparseLocs, loc)
}

// Get returns the stored location for id, or element.UndefinedLocation
// if absent. Never fails (spec.md §4.1).
func (s *NodeStore) Get(id element.ID) element.Location {
	atomic.AddInt64(&s.lookups, 1)
	v := int64(id)

	if s.usesDense() {
		blockNum := v >> blockBits
		idx := int(v & blockMask)
		if block, ok := s.blocks[blockNum]; ok {
			if loc, ok := block.get(idx); ok {
				atomic.AddInt64(&s.hits, 1)
				return loc
			}
		}
	}

	if s.usesSparse() {
		i := sort.Search(len(s.sparseIDs), func(i int) bool { return s.sparseIDs[i] >= v })
		if i < len(s.sparseIDs) && s.sparseIDs[i] == v {
			atomic.AddInt64(&s.hits, 1)
			return s.sparseLocs[i]
		}
	}

	return element.UndefinedLocation
}

// Stats reports observability counters (spec.md §4.1, "Read path").
type Stats struct {
	Lookups    int64
	Hits       int64
	DenseBlocks int
	SparseSize int
}

// Stats returns the current lookup/hit counters.
func (s *NodeStore) Stats() Stats {
	return Stats{
		Lookups:     atomic.LoadInt64(&s.lookups),
		Hits:        atomic.LoadInt64(&s.hits),
		DenseBlocks: len(s.blocks),
		SparseSize:  len(s.sparseIDs),
	}
}
