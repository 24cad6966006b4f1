package vmm

import "sync"

// AddressSpace is a named, bounded virtual range owning an ordered,
// non-overlapping collection of regions. It is guarded by its own mutex:
// all mutation of its region store, and all reads that must see a
// consistent snapshot, hold that lock for the duration of the call.
type AddressSpace struct {
	mu sync.Mutex

	name  string
	base  uint64
	size  uint64
	flags uint32

	store *regionStore
}

// NewAddressSpace creates a new address space with the given bounds and
// registers it in the process-wide aspace registry. base+size-1 must not
// wrap the address width (invariant I6).
func NewAddressSpace(name string, base, size uint64) (*AddressSpace, error) {
	as, err := newAddressSpaceLocked(name, base, size)
	if err != nil {
		return nil, err
	}
	registerAspace(as)
	return as, nil
}

func newAddressSpaceLocked(name string, base, size uint64) (*AddressSpace, error) {
	if size == 0 {
		return nil, newError(CodeInvalidArgs, "NewAddressSpace", "size must be non-zero", nil)
	}
	end := base + size - 1
	if end < base {
		return nil, newError(CodeInvalidArgs, "NewAddressSpace", "base+size-1 wraps the address width", nil)
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return &AddressSpace{
		name:  name,
		base:  base,
		size:  size,
		store: newRegionStore(base, size),
	}, nil
}

// Name returns the address space's (possibly truncated) name.
func (as *AddressSpace) Name() string { return as.name }

// Base returns the address space's inclusive virtual start.
func (as *AddressSpace) Base() uint64 { return as.base }

// Size returns the address space's length in bytes.
func (as *AddressSpace) Size() uint64 { return as.size }

// End returns the address space's inclusive virtual end.
func (as *AddressSpace) End() uint64 { return as.base + as.size - 1 }

// Contains reports whether va lies within this address space.
func (as *AddressSpace) Contains(va uint64) bool {
	return contains(as.base, as.size, va)
}

// Regions returns a point-in-time, lock-consistent snapshot of the
// address space's regions, ordered ascending by base.
func (as *AddressSpace) Regions() []*Region {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.store.snapshot()
}

// placeFixed inserts r at its already-chosen base under the aspace lock.
func (as *AddressSpace) placeFixed(r *Region) *Error {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.store.addRegion(r)
}

// placeDynamic finds a free, aligned gap for r and inserts it there,
// mutating r.base on success.
func (as *AddressSpace) placeDynamic(r *Region, size uint64, alignPow2 uint8) *Error {
	as.mu.Lock()
	defer as.mu.Unlock()

	spot, ok := as.store.findSpot(size, alignPow2)
	if !ok {
		return newError(CodeNoMemory, "placeDynamic", "no free aligned gap of sufficient size", nil)
	}
	r.base = spot
	if err := as.store.addRegion(r); err != nil {
		invariantViolation("findSpot returned a spot that addRegion then rejected: %v", err)
	}
	return nil
}

// removeRegion deletes r from the aspace under lock. Used for rollback.
func (as *AddressSpace) removeRegion(r *Region) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.store.removeRegion(r)
}

// --- process-wide registry ---

const (
	// KernelAspaceBase and KernelAspaceSize are the kernel address
	// space's compile-time bounds.
	KernelAspaceBase = 0x10000000
	KernelAspaceSize = 0x00100000
)

var (
	registryMu     sync.Mutex
	aspaceRegistry []*AddressSpace
	kernelAspace   *AddressSpace
)

func registerAspace(as *AddressSpace) {
	registryMu.Lock()
	defer registryMu.Unlock()
	aspaceRegistry = append(aspaceRegistry, as)
}

// Init performs process-wide VMM initialization: it creates the kernel
// address space from the compile-time constants and registers it.
// Idempotent: a second call is a no-op returning the existing kernel
// aspace's error state (nil, since the first call already succeeded).
func Init() error {
	registryMu.Lock()
	defer registryMu.Unlock()

	if kernelAspace != nil {
		return nil
	}

	as, err := newAddressSpaceLocked("kernel", KernelAspaceBase, KernelAspaceSize)
	if err != nil {
		return err
	}
	kernelAspace = as
	aspaceRegistry = append(aspaceRegistry, as)
	return nil
}

// KernelAddressSpace returns the process-wide kernel address space. It
// panics if Init has not been called: calling any VMM operation before
// initialization is a programming bug, not a recoverable condition.
func KernelAddressSpace() *AddressSpace {
	registryMu.Lock()
	defer registryMu.Unlock()
	if kernelAspace == nil {
		invariantViolation("KernelAddressSpace called before Init")
	}
	return kernelAspace
}

// Aspaces returns a snapshot of every registered address space, in
// registration order, for diagnostics.
func Aspaces() []*AddressSpace {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]*AddressSpace, len(aspaceRegistry))
	copy(out, aspaceRegistry)
	return out
}

// resetRegistryForTest clears the process-wide registry. Test-only.
func resetRegistryForTest() {
	registryMu.Lock()
	defer registryMu.Unlock()
	aspaceRegistry = nil
	kernelAspace = nil
}
