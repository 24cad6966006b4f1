package vmm

// AllocFlags are caller-facing placement flags for the allocation entry
// points.
type AllocFlags uint32

const (
	// VallocSpecific tells the orchestrator to place the region at the
	// caller-supplied *ptr rather than searching for a free gap.
	VallocSpecific AllocFlags = 1 << iota
)

// ReserveSpace records an externally established mapping for bookkeeping.
// va and size must already be page-aligned. The MMU is queried for the
// attributes currently in effect at va and those are stored on the
// resulting RESERVED region, which owns no pages.
func ReserveSpace(as *AddressSpace, name string, size, va uint64) error {
	recordReserve()

	if as == nil {
		return newError(CodeInvalidArgs, "ReserveSpace", "aspace is nil", nil)
	}
	if size == 0 {
		return nil
	}
	if !isPageAligned(va) || !isPageAligned(size) {
		return newError(CodeInvalidArgs, "ReserveSpace", "va and size must be page-aligned", nil)
	}
	if !as.Contains(va) {
		return newError(CodeOutOfRange, "ReserveSpace", "va is outside the address space", nil)
	}

	size = trim(as.base, as.size, va, size)

	var archFlags ArchMMUFlags
	if mmuDriver != nil {
		// Best effort: the original implementation ignores this query's
		// return value too. A failed query just leaves archFlags at its
		// zero value rather than aborting the reservation.
		if _, flags, err := mmuDriver.Query(va); err == nil {
			archFlags = flags
		}
	}

	r := newRegion(name, va, size, RegionReserved, archFlags)
	if err := as.placeFixed(r); err != nil {
		return err
	}
	return nil
}

// AllocPhysical maps a caller-supplied physical address range (e.g. device
// MMIO) into aspace. pa and size must already be page-aligned; no pmm
// interaction is involved.
func AllocPhysical(as *AddressSpace, name string, size uint64, ptr *uint64, pa PhysAddr, flags AllocFlags, archMMUFlags ArchMMUFlags) error {
	recordAllocPhysical()

	if as == nil {
		return newError(CodeInvalidArgs, "AllocPhysical", "aspace is nil", nil)
	}
	if !isPageAligned(uint64(pa)) || !isPageAligned(size) {
		return newError(CodeInvalidArgs, "AllocPhysical", "pa and size must be page-aligned", nil)
	}
	if size == 0 {
		return nil
	}

	var va uint64
	if flags&VallocSpecific != 0 {
		if ptr == nil {
			return newError(CodeInvalidArgs, "AllocPhysical", "VALLOC_SPECIFIC requires a non-nil ptr", nil)
		}
		va = *ptr
	}

	r := newRegion(name, va, size, RegionPhysical, archMMUFlags)

	var placeErr *Error
	if flags&VallocSpecific != 0 {
		placeErr = as.placeFixed(r)
	} else {
		placeErr = as.placeDynamic(r, size, 0)
	}
	if placeErr != nil {
		return placeErr
	}

	pageCount := int(size / PageSize)
	if mmuDriver != nil {
		if err := mmuDriver.Map(r.Base(), pa, pageCount, archMMUFlags); err != nil {
			recordRollback()
			as.removeRegion(r)
			return newError(CodeNoMemory, "AllocPhysical", "MMU mapping failed", err)
		}
		recordMapOperation()
	}

	if ptr != nil {
		*ptr = r.Base()
	}
	return nil
}

// AllocContiguous allocates a physically contiguous run of pages from the
// pmm, since contiguity is the scarce resource, then maps them at a
// resolved virtual base.
func AllocContiguous(as *AddressSpace, name string, size uint64, ptr *uint64, alignPow2 uint8, flags AllocFlags, archMMUFlags ArchMMUFlags) error {
	recordAllocContiguous()

	if as == nil {
		return newError(CodeInvalidArgs, "AllocContiguous", "aspace is nil", nil)
	}

	size = alignUp(size, PageSize)
	if size == 0 {
		return newError(CodeInvalidArgs, "AllocContiguous", "size must be non-zero", nil)
	}

	var va uint64
	if flags&VallocSpecific != 0 {
		if ptr == nil {
			return newError(CodeInvalidArgs, "AllocContiguous", "VALLOC_SPECIFIC requires a non-nil ptr", nil)
		}
		va = *ptr
	}

	if pageAllocator == nil {
		return newError(CodeNoMemory, "AllocContiguous", "no page allocator configured", nil)
	}

	wantPages := int(size / PageSize)
	pa, pages, err := pageAllocator.AllocContiguous(wantPages, alignPow2)
	if err != nil || len(pages) < wantPages {
		pageAllocator.Free(pages)
		return newError(CodeNoMemory, "AllocContiguous", "pmm could not satisfy a contiguous run", err)
	}

	r := newRegion(name, va, size, RegionPhysical, archMMUFlags)

	var placeErr *Error
	if flags&VallocSpecific != 0 {
		placeErr = as.placeFixed(r)
	} else {
		placeErr = as.placeDynamic(r, size, alignPow2)
	}
	if placeErr != nil {
		recordRollback()
		pageAllocator.Free(pages)
		return placeErr
	}

	if mmuDriver != nil {
		if err := mmuDriver.Map(r.Base(), pa, wantPages, archMMUFlags); err != nil {
			recordRollback()
			as.removeRegion(r)
			pageAllocator.Free(pages)
			return newError(CodeNoMemory, "AllocContiguous", "MMU mapping failed", err)
		}
		recordMapOperation()
	}

	r.attachPages(pages)
	if ptr != nil {
		*ptr = r.Base()
	}
	return nil
}

// Alloc allocates size bytes backed by (possibly scattered) physical
// pages from the pmm and maps each page individually.
func Alloc(as *AddressSpace, name string, size uint64, ptr *uint64, alignPow2 uint8, flags AllocFlags, archMMUFlags ArchMMUFlags) error {
	recordAlloc()

	if as == nil {
		return newError(CodeInvalidArgs, "Alloc", "aspace is nil", nil)
	}

	size = alignUp(size, PageSize)
	if size == 0 {
		return newError(CodeInvalidArgs, "Alloc", "size must be non-zero", nil)
	}

	var va uint64
	if flags&VallocSpecific != 0 {
		if ptr == nil {
			return newError(CodeInvalidArgs, "Alloc", "VALLOC_SPECIFIC requires a non-nil ptr", nil)
		}
		va = *ptr
	}

	if pageAllocator == nil {
		return newError(CodeNoMemory, "Alloc", "no page allocator configured", nil)
	}

	wantPages := int(size / PageSize)
	pages, err := pageAllocator.AllocPages(wantPages)
	if err != nil || len(pages) < wantPages {
		pageAllocator.Free(pages)
		return newError(CodeNoMemory, "Alloc", "pmm could not satisfy the request", err)
	}

	r := newRegion(name, va, size, RegionPhysical, archMMUFlags)

	var placeErr *Error
	if flags&VallocSpecific != 0 {
		placeErr = as.placeFixed(r)
	} else {
		placeErr = as.placeDynamic(r, size, alignPow2)
	}
	if placeErr != nil {
		recordRollback()
		pageAllocator.Free(pages)
		return placeErr
	}

	if mmuDriver != nil {
		base := r.Base()
		for i, p := range pages {
			pa, err := pageAllocator.PageToAddress(p)
			if err == nil {
				err = mmuDriver.Map(base+uint64(i)*PageSize, pa, 1, archMMUFlags)
			}
			if err != nil {
				recordRollback()
				rollbackPartialMap(base, i)
				as.removeRegion(r)
				pageAllocator.Free(pages)
				return newError(CodeNoMemory, "Alloc", "MMU mapping failed", err)
			}
			recordMapOperation()
		}
	}

	r.attachPages(pages)
	if ptr != nil {
		*ptr = r.Base()
	}
	return nil
}

// rollbackPartialMap unmaps the first n pages already installed starting
// at base, best effort, during rollback of a failed Alloc.
func rollbackPartialMap(base uint64, n int) {
	for i := 0; i < n; i++ {
		mmuDriver.Unmap(base+uint64(i)*PageSize, 1)
		recordUnmapOperation()
	}
}
