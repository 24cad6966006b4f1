package vmm_test

import (
	"testing"

	vmm "github.com/blacktop/go-vmm"
	"github.com/blacktop/go-vmm/internal/simhw"
)

const (
	testAspaceBase = 0x10000000
	testAspaceSize = 0x00100000
)

// newScenarioAspace builds a fresh aspace matching the kernel aspace's bounds,
// and wires fresh simulated pmm/MMU backends as the package-level collaborators.
func newScenarioAspace(t *testing.T, pages int, allowContig bool) (*vmm.AddressSpace, *simhw.PMM, *simhw.MMU) {
	t.Helper()
	as, err := vmm.NewAddressSpace("scenario", testAspaceBase, testAspaceSize)
	if err != nil {
		t.Fatalf("NewAddressSpace: %v", err)
	}
	pmm := simhw.NewPMM(0x40000000, pages)
	pmm.AllowContiguous = allowContig
	mmu := simhw.NewMMU()
	vmm.SetPageAllocator(pmm)
	vmm.SetMMU(mmu)
	return as, pmm, mmu
}

// Scenario 1: an empty address space places the first allocation at its base.
func TestScenarioEmptyAspaceFirstFit(t *testing.T) {
	as, _, mmu := newScenarioAspace(t, 16, true)

	var ptr uint64
	if err := vmm.Alloc(as, "first", vmm.PageSize, &ptr, 0, 0, 0); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if ptr != testAspaceBase {
		t.Errorf("ptr = %#x, want %#x", ptr, uint64(testAspaceBase))
	}
	if mmu.MappedPageCount() != 1 {
		t.Errorf("mapped pages = %d, want 1", mmu.MappedPageCount())
	}
}

// Scenario 2: a second dynamic allocation lands in the gap after the first.
func TestScenarioGapSelectionAfterOneRegion(t *testing.T) {
	as, _, _ := newScenarioAspace(t, 16, true)

	var first, second uint64
	if err := vmm.Alloc(as, "first", vmm.PageSize, &first, 0, 0, 0); err != nil {
		t.Fatalf("Alloc(first): %v", err)
	}
	if err := vmm.Alloc(as, "second", vmm.PageSize, &second, 0, 0, 0); err != nil {
		t.Fatalf("Alloc(second): %v", err)
	}
	if second != first+vmm.PageSize {
		t.Errorf("second = %#x, want %#x", second, first+vmm.PageSize)
	}
}

// Scenario 3: an alignment requirement pushes the next placement past an
// existing region instead of into an unaligned gap right after it.
func TestScenarioAlignmentPushesPastRegion(t *testing.T) {
	as, _, _ := newScenarioAspace(t, 32, true)

	var first uint64
	if err := vmm.Alloc(as, "first", vmm.PageSize, &first, 0, 0, 0); err != nil {
		t.Fatalf("Alloc(first): %v", err)
	}

	var aligned uint64
	const alignPow2 = 16 // 0x10000-byte alignment
	if err := vmm.Alloc(as, "aligned", vmm.PageSize, &aligned, alignPow2, 0, 0); err != nil {
		t.Fatalf("Alloc(aligned): %v", err)
	}
	if aligned%(1<<alignPow2) != 0 {
		t.Errorf("aligned = %#x is not aligned to %#x", aligned, uint64(1)<<alignPow2)
	}
	if aligned <= first {
		t.Errorf("aligned placement %#x did not move past the first region at %#x", aligned, first)
	}
}

// Scenario 4: a fixed placement that overlaps an existing region fails with
// CodeNoMemory and leaves the store untouched.
func TestScenarioFixedOverlapFails(t *testing.T) {
	as, pmm, _ := newScenarioAspace(t, 16, true)

	var ptr uint64 = testAspaceBase
	if err := vmm.Alloc(as, "first", vmm.PageSize, &ptr, 0, vmm.VallocSpecific, 0); err != nil {
		t.Fatalf("Alloc(first): %v", err)
	}

	before := pmm.FreeCount()
	ptr = testAspaceBase // deliberately overlapping
	err := vmm.Alloc(as, "overlap", vmm.PageSize, &ptr, 0, vmm.VallocSpecific, 0)
	if err == nil {
		t.Fatal("expected overlap to fail")
	}
	var vmmErr *vmm.Error
	if !asVMMError(err, &vmmErr) || vmmErr.Code != vmm.CodeNoMemory {
		t.Errorf("err = %v, want CodeNoMemory", err)
	}
	if pmm.FreeCount() != before {
		t.Errorf("free pages changed after a rejected fixed placement: before=%d after=%d", before, pmm.FreeCount())
	}
	if len(as.Regions()) != 1 {
		t.Errorf("region store mutated by a rejected placement: %d regions", len(as.Regions()))
	}
}

// Scenario 5: a contiguous allocation request that cannot be satisfied (the
// pool has 4 free pages, none of them adjacent) fails with CodeNoMemory and
// restores every page it provisionally touched.
func TestScenarioContiguousExhaustionRestoresFreeCount(t *testing.T) {
	as, pmm, _ := newScenarioAspace(t, 4, false) // AllowContiguous=false simulates fragmentation
	before := pmm.FreeCount()

	var ptr uint64
	err := vmm.AllocContiguous(as, "contig", 4*vmm.PageSize, &ptr, 0, 0, 0)
	if err == nil {
		t.Fatal("expected contiguous allocation to fail")
	}
	var vmmErr *vmm.Error
	if !asVMMError(err, &vmmErr) || vmmErr.Code != vmm.CodeNoMemory {
		t.Errorf("err = %v, want CodeNoMemory", err)
	}
	if pmm.FreeCount() != before {
		t.Errorf("free pages = %d after failed alloc, want %d restored", pmm.FreeCount(), before)
	}
	if len(as.Regions()) != 0 {
		t.Errorf("a failed contiguous alloc must not leave a region behind")
	}
}

// Scenario 6: reserving a fixed range and then letting the allocator place
// around it must never overlap the reservation.
func TestScenarioReserveThenAllocateAround(t *testing.T) {
	as, _, _ := newScenarioAspace(t, 16, true)

	reserved := uint64(testAspaceBase)
	if err := vmm.ReserveSpace(as, "boot", vmm.PageSize, reserved); err != nil {
		t.Fatalf("ReserveSpace: %v", err)
	}

	var allocated uint64
	if err := vmm.Alloc(as, "around", vmm.PageSize, &allocated, 0, 0, 0); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if allocated == reserved {
		t.Errorf("dynamic allocation landed on the reserved range")
	}
	if allocated < reserved+vmm.PageSize {
		t.Errorf("dynamic allocation at %#x overlaps the reservation ending at %#x", allocated, reserved+vmm.PageSize)
	}
}

// P5: every page backing a non-reserved region is actually mapped.
func TestPropertyMappingCoverage(t *testing.T) {
	as, _, mmu := newScenarioAspace(t, 8, true)

	var ptr uint64
	const n = 3
	if err := vmm.Alloc(as, "multi", n*vmm.PageSize, &ptr, 0, 0, 0); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	for i := 0; i < n; i++ {
		if _, ok := mmu.FlagsAt(ptr + uint64(i)*vmm.PageSize); !ok {
			t.Errorf("page %d of the allocation is not mapped", i)
		}
	}
	if mmu.MappedPageCount() != n {
		t.Errorf("mapped page count = %d, want %d", mmu.MappedPageCount(), n)
	}
}

// P6: a failure partway through Alloc's per-page mapping loop rolls back
// every page it had already mapped, plus the region and the pmm pages.
func TestPropertyRollbackOnPartialMapFailure(t *testing.T) {
	as, pmm, mmu := newScenarioAspace(t, 8, true)
	before := pmm.FreeCount()

	const n = 4
	failAfter := 2
	mapped := 0
	mmu.FailMap = func(va uint64, pa vmm.PhysAddr, pageCount int) bool {
		mapped++
		return mapped > failAfter
	}

	var ptr uint64
	err := vmm.Alloc(as, "rollback", n*vmm.PageSize, &ptr, 0, 0, 0)
	if err == nil {
		t.Fatal("expected the alloc to fail")
	}
	var vmmErr *vmm.Error
	if !asVMMError(err, &vmmErr) || vmmErr.Code != vmm.CodeNoMemory {
		t.Errorf("err = %v, want CodeNoMemory", err)
	}
	if mmu.MappedPageCount() != 0 {
		t.Errorf("mapped pages after rollback = %d, want 0", mmu.MappedPageCount())
	}
	if pmm.FreeCount() != before {
		t.Errorf("free pages after rollback = %d, want %d", pmm.FreeCount(), before)
	}
	if len(as.Regions()) != 0 {
		t.Errorf("region left behind after rollback")
	}
}

// P7: reserving the same already-reserved range twice is rejected as an
// overlap, not silently accepted — ReserveSpace is not itself idempotent,
// but calling it once per distinct range never corrupts the store.
func TestPropertyReserveOverlapRejected(t *testing.T) {
	as, _, _ := newScenarioAspace(t, 4, true)

	if err := vmm.ReserveSpace(as, "a", vmm.PageSize, testAspaceBase); err != nil {
		t.Fatalf("first ReserveSpace: %v", err)
	}
	err := vmm.ReserveSpace(as, "b", vmm.PageSize, testAspaceBase)
	if err == nil {
		t.Fatal("expected the second reservation of the same range to fail")
	}
	if len(as.Regions()) != 1 {
		t.Errorf("region count = %d, want 1", len(as.Regions()))
	}
}

func TestReserveSpaceRejectsMisalignedAndOutOfRange(t *testing.T) {
	as, _, _ := newScenarioAspace(t, 4, true)

	if err := vmm.ReserveSpace(as, "misaligned", vmm.PageSize, testAspaceBase+1); err == nil {
		t.Error("expected an alignment error")
	}
	if err := vmm.ReserveSpace(as, "outside", vmm.PageSize, testAspaceBase+testAspaceSize); err == nil {
		t.Error("expected an out-of-range error")
	}
}

func TestAllocPhysicalMapsAtRequestedAddress(t *testing.T) {
	as, _, mmu := newScenarioAspace(t, 4, true)

	ptr := uint64(testAspaceBase)
	err := vmm.AllocPhysical(as, "mmio", vmm.PageSize, &ptr, 0xFEE00000, vmm.VallocSpecific, 0)
	if err != nil {
		t.Fatalf("AllocPhysical: %v", err)
	}
	pa, _, ok := mustQuery(mmu, ptr)
	if !ok || pa != 0xFEE00000 {
		t.Errorf("mapping at %#x = (%#x, %v), want (0xFEE00000, true)", ptr, pa, ok)
	}
}

func mustQuery(mmu *simhw.MMU, va uint64) (vmm.PhysAddr, vmm.ArchMMUFlags, bool) {
	flags, ok := mmu.FlagsAt(va)
	if !ok {
		return 0, 0, false
	}
	pa, _, err := mmu.Query(va)
	if err != nil {
		return 0, flags, false
	}
	return pa, flags, true
}

func asVMMError(err error, out **vmm.Error) bool {
	e, ok := err.(*vmm.Error)
	if ok {
		*out = e
	}
	return ok
}
