package executor

import (
	"sync/atomic"

	"graphd/core"
)

// MemoryTracker bounds how many bytes of intermediate dataset memory one
// query may hold at once, grounded on the atomic running-total counters
// in datalog/storage/database.go, generalized from a store-wide byte
// counter to a per-query budget enforced at every operator boundary.
type MemoryTracker struct {
	limit int64
	used  atomic.Int64
}

// NewMemoryTracker returns a tracker allowing up to limitBytes of
// concurrently-held dataset memory. limitBytes<=0 disables the limit.
func NewMemoryTracker(limitBytes int64) *MemoryTracker {
	return &MemoryTracker{limit: limitBytes}
}

// Reserve accounts for n additional bytes, failing with a
// core.MEMORY_EXCEEDED status if the limit would be exceeded.
func (m *MemoryTracker) Reserve(n int64) error {
	if m == nil || m.limit <= 0 {
		if m != nil {
			m.used.Add(n)
		}
		return nil
	}
	if m.used.Add(n) > m.limit {
		used := m.used.Load()
		m.used.Add(-n)
		return core.NewStatus(core.MEMORY_EXCEEDED, "memory limit exceeded: %d/%d bytes", used, m.limit)
	}
	return nil
}

// Release returns n bytes previously Reserved.
func (m *MemoryTracker) Release(n int64) {
	if m != nil {
		m.used.Add(-n)
	}
}

// Used returns the currently reserved byte count.
func (m *MemoryTracker) Used() int64 {
	if m == nil {
		return 0
	}
	return m.used.Load()
}

// EstimateDataSet returns a rough byte estimate for accounting purposes:
// row count times column count times a fixed per-cell estimate, which is
// cheap to compute and stable enough to bound runaway intermediate
// results without requiring exact per-Value sizing.
func EstimateDataSet(ds *core.DataSet) int64 {
	if ds == nil {
		return 0
	}
	const perCell = 32
	return int64(len(ds.Rows)) * int64(len(ds.ColNames)) * perCell
}
