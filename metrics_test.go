package vmm

import "testing"

func TestMetricsResetAndRecord(t *testing.T) {
	ResetMetrics()
	defer ResetMetrics()

	recordReserve()
	recordAlloc()
	recordAlloc()
	recordAllocPhysical()
	recordAllocContiguous()
	recordMapOperation()
	recordUnmapOperation()
	recordRollback()
	recordError(CodeInvalidArgs)
	recordError(CodeOutOfRange)
	recordError(CodeNoMemory)
	recordError(CodeGeneric)

	m := GetMetrics()
	want := Metrics{
		ReserveCalls:        1,
		AllocCalls:          2,
		AllocPhysicalCalls:  1,
		AllocContiguousCall: 1,
		MapOperations:       1,
		UnmapOperations:     1,
		Rollbacks:           1,
		InvalidArgsErrors:   1,
		OutOfRangeErrors:    1,
		NoMemoryErrors:      1,
		GenericErrors:       1,
	}
	if m != want {
		t.Errorf("GetMetrics() = %+v, want %+v", m, want)
	}

	ResetMetrics()
	if m := GetMetrics(); m != (Metrics{}) {
		t.Errorf("GetMetrics() after reset = %+v, want zero value", m)
	}
}

func TestNewErrorRecordsMetric(t *testing.T) {
	ResetMetrics()
	defer ResetMetrics()

	_ = newError(CodeNoMemory, "Alloc", "pmm exhausted", nil)
	if got := GetMetrics().NoMemoryErrors; got != 1 {
		t.Errorf("NoMemoryErrors = %d, want 1", got)
	}
}
