package cache

import "fmt"

// ErrOutOfOrder reports a node id presented to Set that is smaller
// than a previously-set id, in a mode where strict ordering is
// required (spec.md §4.1, sparse-only mode).
type ErrOutOfOrder struct {
	ID, Previous int64
}

func (e *ErrOutOfOrder) Error() string {
	return fmt.Sprintf("node id %d is out of order (previous id %d)", e.ID, e.Previous)
}

// ErrCapacityExceeded reports that the configured cache budget was
// exhausted and the active policy is not lossy (spec.md §4.1).
type ErrCapacityExceeded struct {
	BudgetBytes int64
}

func (e *ErrCapacityExceeded) Error() string {
	return fmt.Sprintf("node cache capacity exceeded (budget %d bytes) and lossy_cache=false", e.BudgetBytes)
}

// ErrNotFound reports a WayStore miss for a way that was never
// persisted (spec.md §4.2).
type ErrNotFound struct {
	WayID int64
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("way %d not found in way store", e.WayID)
}
