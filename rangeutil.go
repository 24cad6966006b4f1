package vmm

// PageSize is the fixed page size used by this VMM.
const PageSize = 4096

// pageShift is log2(PageSize), used to promote alignment requests.
const pageShift = 12

// maxNameLen bounds address-space and region names; longer names are
// truncated rather than rejected.
const maxNameLen = 32

// isPageAligned reports whether x is a multiple of PageSize.
func isPageAligned(x uint64) bool {
	return x&(PageSize-1) == 0
}

// alignUp rounds x up to the next multiple of align, which must be a power
// of two. Callers that chase this value through further arithmetic must
// re-check containment afterward: on overflow the result silently wraps,
// exactly as unsigned arithmetic does in the original C implementation this
// is ported from.
func alignUp(x, align uint64) uint64 {
	if align == 0 {
		return x
	}
	return (x + align - 1) &^ (align - 1)
}

// contains reports whether va lies within the inclusive range
// [base, base+size-1]. size is assumed non-zero (the caller of contains
// always has a non-degenerate aspace).
func contains(base, size, va uint64) bool {
	end := base + size - 1
	return va >= base && va <= end
}

// spaceAfter returns how many bytes remain from spot to the inclusive end
// address, or 0 if spot is past end. It never adds spot to anything, so it
// cannot overflow even when end is the top of the address width.
func spaceAfter(end, spot uint64) uint64 {
	if spot > end {
		return 0
	}
	return end - spot + 1
}

// regionFits reports whether a region of the given size, starting at va,
// fits entirely within [base, base+size-1] without its end wrapping the
// address width. A size of zero always fits (degenerate case).
func regionFits(aspBase, aspSize, va, size uint64) bool {
	if size == 0 {
		return true
	}
	if !contains(aspBase, aspSize, va) {
		return false
	}
	end := va + size - 1
	if end < va {
		// end wrapped around the address width
		return false
	}
	aspEnd := aspBase + aspSize - 1
	return end <= aspEnd
}

// trim clamps size so that [va, va+size-1] fits inside the aspace,
// computed purely by subtraction from the aspace's total length so it can
// never read past aspBase+aspSize-1 regardless of how size overflows.
// va must already satisfy contains(aspBase, aspSize, va).
func trim(aspBase, aspSize, va, size uint64) uint64 {
	if size == 0 {
		return 0
	}
	offset := va - aspBase
	remaining := aspSize - offset
	if size > remaining {
		return remaining
	}
	return size
}
