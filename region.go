package vmm

// RegionFlags categorizes a region's ownership semantics.
type RegionFlags uint32

const (
	// RegionReserved marks a pre-existing external mapping recorded for
	// bookkeeping only; the VMM does not own its pages.
	RegionReserved RegionFlags = 1 << iota
	// RegionPhysical means the VMM owns backing pages or an explicit
	// physical mapping.
	RegionPhysical
)

// ArchMMUFlags is an opaque attribute set forwarded verbatim to the MMU
// driver (cacheability, permissions, etc).
type ArchMMUFlags uint32

// Region is a named, page-aligned, non-overlapping sub-range of an address
// space, optionally backed by physical pages and an MMU mapping. Callers
// only ever see a *Region returned from AddressSpace.Regions, a read-only
// snapshot of state this package continues to own.
type Region struct {
	name         string
	base         uint64
	size         uint64
	flags        RegionFlags
	archMMUFlags ArchMMUFlags
	pages        []Page
}

func newRegion(name string, base, size uint64, flags RegionFlags, archMMUFlags ArchMMUFlags) *Region {
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return &Region{
		name:         name,
		base:         base,
		size:         size,
		flags:        flags,
		archMMUFlags: archMMUFlags,
	}
}

// Base returns the region's inclusive start address.
func (r *Region) Base() uint64 { return r.base }

// Size returns the region's length in bytes.
func (r *Region) Size() uint64 { return r.size }

// End returns the region's inclusive end address.
func (r *Region) End() uint64 { return r.base + r.size - 1 }

// Name returns the region's (possibly truncated) name.
func (r *Region) Name() string { return r.name }

// Flags returns the region's category flags.
func (r *Region) Flags() RegionFlags { return r.flags }

// ArchMMUFlags returns the opaque attribute set forwarded to the MMU driver.
func (r *Region) ArchMMUFlags() ArchMMUFlags { return r.archMMUFlags }

// IsReserved reports whether this region only records a pre-existing
// mapping.
func (r *Region) IsReserved() bool { return r.flags&RegionReserved != 0 }

// IsPhysical reports whether this region is backed by VMM-owned pages or
// an explicit physical mapping.
func (r *Region) IsPhysical() bool { return r.flags&RegionPhysical != 0 }

// PageCount returns the number of physical pages currently attached to
// this region.
func (r *Region) PageCount() int { return len(r.pages) }

// Pages returns a copy of the region's attached page list. The page list
// itself is private to the region; callers must not mutate the pages
// through any other path.
func (r *Region) Pages() []Page {
	out := make([]Page, len(r.pages))
	copy(out, r.pages)
	return out
}

// attachPages transfers ownership of pages into the region, asserting the
// count-to-size invariant (I4) along the way.
func (r *Region) attachPages(pages []Page) {
	if uint64(len(pages)) != r.size/PageSize {
		invariantViolation("region %q: attaching %d pages but size implies %d", r.name, len(pages), r.size/PageSize)
	}
	r.pages = pages
}
