package vmm

// MMU is the architectural page-table manipulator, external to this
// package's core and consumed only through this interface.
type MMU interface {
	// Map installs a mapping for pageCount consecutive pages starting at
	// va, backed by physical memory starting at pa, with flags.
	Map(va uint64, pa PhysAddr, pageCount int, flags ArchMMUFlags) error
	// Unmap removes the mapping for pageCount consecutive pages starting
	// at va.
	Unmap(va uint64, pageCount int) error
	// Query reports the current mapping attributes at va, used by
	// ReserveSpace to record an externally established mapping's flags.
	Query(va uint64) (pa PhysAddr, flags ArchMMUFlags, err error)
}

var mmuDriver MMU

// SetMMU registers the MMU driver the orchestrator will use to install and
// remove mappings. It must be called before Init.
func SetMMU(m MMU) {
	mmuDriver = m
}
