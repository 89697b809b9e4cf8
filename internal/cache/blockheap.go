package cache

import (
	"container/heap"

	"github.com/go-osm/osm2pgsql/internal/element"
)

// denseBlock is one materialized slab of the dense radix: blockSize
// contiguous id slots, indexed by the id's low bits. Fill count is the
// eviction key (spec.md §4.1, "Fill count").
type denseBlock struct {
	blockNum  int64
	locations []element.Location
	occupied  []bool
	fillCount int
	heapIndex int // maintained by blockHeap, required by container/heap
}

func newDenseBlock(blockNum int64, size int) *denseBlock {
	return &denseBlock{
		blockNum:  blockNum,
		locations: make([]element.Location, size),
		occupied:  make([]bool, size),
		heapIndex: -1,
	}
}

// set writes loc at the block-local slot idx. Returns true if this
// slot was previously unoccupied (i.e. fillCount should increase).
func (b *denseBlock) set(idx int, loc element.Location) bool {
	wasNew := !b.occupied[idx]
	b.occupied[idx] = true
	b.locations[idx] = loc
	if wasNew {
		b.fillCount++
	}
	return wasNew
}

func (b *denseBlock) get(idx int) (element.Location, bool) {
	if !b.occupied[idx] {
		return element.Location{}, false
	}
	return b.locations[idx], true
}

// blockHeap is a container/heap.Interface min-heap over denseBlock,
// ordered by fillCount ascending: the head is always the
// least-populated ("active") block, the eviction candidate described
// in spec.md §4.1 Phase 2.
type blockHeap []*denseBlock

func (h blockHeap) Len() int { return len(h) }

func (h blockHeap) Less(i, j int) bool { return h[i].fillCount < h[j].fillCount }

func (h blockHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *blockHeap) Push(x any) {
	b := x.(*denseBlock)
	b.heapIndex = len(*h)
	*h = append(*h, b)
}

func (h *blockHeap) Pop() any {
	old := *h
	n := len(old)
	b := old[n-1]
	old[n-1] = nil
	b.heapIndex = -1
	*h = old[:n-1]
	return b
}

// percolate restores heap order after a block's fillCount changes
// in-place (a new slot was filled within an already-queued block).
func (h *blockHeap) percolate(b *denseBlock) {
	if b.heapIndex >= 0 {
		heap.Fix(h, b.heapIndex)
	}
}
