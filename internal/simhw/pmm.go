// Package simhw provides in-process simulations of the physical page
// allocator and the MMU driver, the two collaborators the vmm package
// consumes only through interfaces. They exist so the orchestrator and the
// diagnostics CLI can run end to end without a real kernel underneath.
package simhw

import (
	"fmt"
	"sync"

	"github.com/blacktop/go-vmm"
)

// PMM is a software simulation of a physical page allocator. It models
// physical memory as a fixed pool of page-sized frames starting at
// baseAddr; the AllowContiguous switch simulates fragmentation.
type PMM struct {
	mu sync.Mutex

	baseAddr   uint64
	totalPages int
	free       []vmm.Page // free frame numbers, ascending
	allocated  map[vmm.Page]bool

	// AllowContiguous, when false, makes AllocContiguous always report
	// zero pages regardless of free count — used to simulate a pool with
	// no contiguous run of the requested length.
	AllowContiguous bool
}

// NewPMM creates a simulated pmm with totalPages frames available,
// addressed starting at baseAddr.
func NewPMM(baseAddr uint64, totalPages int) *PMM {
	free := make([]vmm.Page, totalPages)
	for i := range free {
		free[i] = vmm.Page(i)
	}
	return &PMM{
		baseAddr:        baseAddr,
		totalPages:      totalPages,
		free:            free,
		allocated:       make(map[vmm.Page]bool),
		AllowContiguous: true,
	}
}

// FreeCount returns the number of frames currently available.
func (p *PMM) FreeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// AllocPages implements vmm.PageAllocator.
func (p *PMM) AllocPages(n int) ([]vmm.Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n > len(p.free) {
		n = len(p.free)
	}
	out := make([]vmm.Page, n)
	copy(out, p.free[:n])
	p.free = p.free[n:]
	for _, pg := range out {
		p.allocated[pg] = true
	}
	return out, nil
}

// AllocContiguous implements vmm.PageAllocator. It looks for a run of n
// ascending consecutive frame numbers among the free list.
func (p *PMM) AllocContiguous(n int, alignPow2 uint8) (vmm.PhysAddr, []vmm.Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.AllowContiguous || n <= 0 {
		return 0, nil, nil
	}

	for start := 0; start+n <= len(p.free); start++ {
		run := true
		for i := 1; i < n; i++ {
			if p.free[start+i] != p.free[start]+vmm.Page(i) {
				run = false
				break
			}
		}
		if !run {
			continue
		}
		out := make([]vmm.Page, n)
		copy(out, p.free[start:start+n])
		p.free = append(p.free[:start], p.free[start+n:]...)
		for _, pg := range out {
			p.allocated[pg] = true
		}
		pa, _ := p.PageToAddress(out[0])
		return pa, out, nil
	}
	return 0, nil, nil
}

// Free implements vmm.PageAllocator.
func (p *PMM) Free(pages []vmm.Page) error {
	if len(pages) == 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pg := range pages {
		delete(p.allocated, pg)
		i := 0
		for i < len(p.free) && p.free[i] < pg {
			i++
		}
		p.free = append(p.free, 0)
		copy(p.free[i+1:], p.free[i:])
		p.free[i] = pg
	}
	return nil
}

// PageToAddress implements vmm.PageAllocator.
func (p *PMM) PageToAddress(pg vmm.Page) (vmm.PhysAddr, error) {
	if int(pg) >= p.totalPages {
		return 0, fmt.Errorf("simhw: page %d out of range", pg)
	}
	return vmm.PhysAddr(p.baseAddr + uint64(pg)*vmm.PageSize), nil
}
