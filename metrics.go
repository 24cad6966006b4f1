package vmm

import "sync/atomic"

// Operation and error counters for the allocation orchestrator.
var (
	reserveCount     uint64
	allocCount       uint64
	allocPhysCount   uint64
	allocContigCount uint64
	mapOperations    uint64
	unmapOperations  uint64
	rollbackCount    uint64

	invalidArgsErrors uint64
	outOfRangeErrors  uint64
	noMemoryErrors    uint64
	genericErrors     uint64
)

// Metrics provides access to orchestrator-level counters. It is intended
// for diagnostics, not for driving allocation decisions.
type Metrics struct {
	ReserveCalls        uint64 `json:"reserve_calls"`
	AllocCalls          uint64 `json:"alloc_calls"`
	AllocPhysicalCalls  uint64 `json:"alloc_physical_calls"`
	AllocContiguousCall uint64 `json:"alloc_contiguous_calls"`
	MapOperations       uint64 `json:"map_operations"`
	UnmapOperations     uint64 `json:"unmap_operations"`
	Rollbacks           uint64 `json:"rollbacks"`
	InvalidArgsErrors   uint64 `json:"invalid_args_errors"`
	OutOfRangeErrors    uint64 `json:"out_of_range_errors"`
	NoMemoryErrors      uint64 `json:"no_memory_errors"`
	GenericErrors       uint64 `json:"generic_errors"`
}

// GetMetrics returns a snapshot of the current counters. Each counter is
// read atomically on its own; the set is not read as a single unit.
func GetMetrics() Metrics {
	return Metrics{
		ReserveCalls:        atomic.LoadUint64(&reserveCount),
		AllocCalls:          atomic.LoadUint64(&allocCount),
		AllocPhysicalCalls:  atomic.LoadUint64(&allocPhysCount),
		AllocContiguousCall: atomic.LoadUint64(&allocContigCount),
		MapOperations:       atomic.LoadUint64(&mapOperations),
		UnmapOperations:     atomic.LoadUint64(&unmapOperations),
		Rollbacks:           atomic.LoadUint64(&rollbackCount),
		InvalidArgsErrors:   atomic.LoadUint64(&invalidArgsErrors),
		OutOfRangeErrors:    atomic.LoadUint64(&outOfRangeErrors),
		NoMemoryErrors:      atomic.LoadUint64(&noMemoryErrors),
		GenericErrors:       atomic.LoadUint64(&genericErrors),
	}
}

// ResetMetrics clears all counters. Intended for tests.
func ResetMetrics() {
	atomic.StoreUint64(&reserveCount, 0)
	atomic.StoreUint64(&allocCount, 0)
	atomic.StoreUint64(&allocPhysCount, 0)
	atomic.StoreUint64(&allocContigCount, 0)
	atomic.StoreUint64(&mapOperations, 0)
	atomic.StoreUint64(&unmapOperations, 0)
	atomic.StoreUint64(&rollbackCount, 0)
	atomic.StoreUint64(&invalidArgsErrors, 0)
	atomic.StoreUint64(&outOfRangeErrors, 0)
	atomic.StoreUint64(&noMemoryErrors, 0)
	atomic.StoreUint64(&genericErrors, 0)
}

func recordReserve()         { atomic.AddUint64(&reserveCount, 1) }
func recordAlloc()           { atomic.AddUint64(&allocCount, 1) }
func recordAllocPhysical()   { atomic.AddUint64(&allocPhysCount, 1) }
func recordAllocContiguous() { atomic.AddUint64(&allocContigCount, 1) }
func recordMapOperation()    { atomic.AddUint64(&mapOperations, 1) }
func recordUnmapOperation()  { atomic.AddUint64(&unmapOperations, 1) }
func recordRollback()        { atomic.AddUint64(&rollbackCount, 1) }

func recordError(code Code) {
	switch code {
	case CodeInvalidArgs:
		atomic.AddUint64(&invalidArgsErrors, 1)
	case CodeOutOfRange:
		atomic.AddUint64(&outOfRangeErrors, 1)
	case CodeNoMemory:
		atomic.AddUint64(&noMemoryErrors, 1)
	case CodeGeneric:
		atomic.AddUint64(&genericErrors, 1)
	}
}
