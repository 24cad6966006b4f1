// Package vmm implements a virtual memory manager for a small kernel.
//
// It tracks virtual address spaces, carves them into named, page-aligned
// regions, couples each region with a set of backing physical page frames,
// and installs corresponding mappings into an architectural MMU. The
// physical page allocator and the MMU driver are external collaborators,
// consumed here only through the PageAllocator and MMU interfaces.
//
// # Basic Usage
//
// Wire in a physical page allocator and an MMU driver, then initialize the
// kernel address space:
//
//	vmm.SetPageAllocator(pmm)
//	vmm.SetMMU(mmuDriver)
//	if err := vmm.Init(); err != nil {
//		log.Fatal("failed to initialize vmm:", err)
//	}
//
// Allocate a region backed by scattered physical pages:
//
//	as := vmm.KernelAddressSpace()
//	var ptr uint64
//	err := vmm.Alloc(as, "heap", 0x4000, &ptr, 0, 0, 0)
//	if err != nil {
//		log.Fatal("alloc failed:", err)
//	}
//
// Map a device's physical address range directly:
//
//	err = vmm.AllocPhysical(as, "uart0", 0x1000, &ptr, 0x09000000, 0, uncachedDeviceFlags)
//
// # Error Handling
//
// All recoverable errors are returned as *vmm.Error values carrying one of
// the Code* sentinels (CodeInvalidArgs, CodeOutOfRange, CodeNoMemory,
// CodeGeneric) and are comparable with errors.Is. Broken invariants (bugs
// in the VMM itself, not caller mistakes) panic instead of returning an
// error.
//
// # Resource Management
//
// Every allocation entry point rolls back everything it has acquired —
// freed physical pages, unmapped MMU entries, and the discarded region
// object — before returning an error. No partial state is ever published
// to a caller.
//
// # Concurrency
//
// Each address space is guarded by its own mutex; operations on different
// address spaces proceed independently. The package makes no attempt to
// serialize calls into the injected PageAllocator or MMU beyond what those
// implementations require themselves.
package vmm
