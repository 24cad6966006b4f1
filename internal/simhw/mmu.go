package simhw

import (
	"fmt"
	"sync"

	"github.com/blacktop/go-vmm"
)

// mapping records one mapped page.
type mapping struct {
	pa    vmm.PhysAddr
	flags vmm.ArchMMUFlags
}

// MMU is a software simulation of an architectural MMU driver. It records
// mappings in a map keyed by page-aligned virtual address rather than
// touching real page tables.
type MMU struct {
	mu       sync.Mutex
	mappings map[uint64]mapping

	// FailMap, when non-nil, is consulted before every Map call; if it
	// returns true the call fails with a simulated driver error and
	// installs nothing.
	FailMap func(va uint64, pa vmm.PhysAddr, pageCount int) bool
}

// NewMMU creates an empty simulated MMU.
func NewMMU() *MMU {
	return &MMU{mappings: make(map[uint64]mapping)}
}

// Map implements vmm.MMU.
func (m *MMU) Map(va uint64, pa vmm.PhysAddr, pageCount int, flags vmm.ArchMMUFlags) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailMap != nil && m.FailMap(va, pa, pageCount) {
		return fmt.Errorf("simhw: simulated map failure at 0x%x", va)
	}

	for i := 0; i < pageCount; i++ {
		addr := va + uint64(i)*vmm.PageSize
		m.mappings[addr] = mapping{pa: pa + vmm.PhysAddr(i)*vmm.PageSize, flags: flags}
	}
	return nil
}

// Unmap implements vmm.MMU.
func (m *MMU) Unmap(va uint64, pageCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < pageCount; i++ {
		delete(m.mappings, va+uint64(i)*vmm.PageSize)
	}
	return nil
}

// Query implements vmm.MMU.
func (m *MMU) Query(va uint64) (vmm.PhysAddr, vmm.ArchMMUFlags, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mp, ok := m.mappings[va]
	if !ok {
		return 0, 0, fmt.Errorf("simhw: no mapping at 0x%x", va)
	}
	return mp.pa, mp.flags, nil
}

// MappedPageCount returns the number of pages currently recorded as
// mapped, for test assertions (P5/P6c).
func (m *MMU) MappedPageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.mappings)
}

// FlagsAt returns the recorded flags for the page mapped at va, and
// whether a mapping exists there at all. va must be the page-aligned start
// of the page; an unaligned va reports no mapping.
func (m *MMU) FlagsAt(va uint64) (vmm.ArchMMUFlags, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mp, ok := m.mappings[va]
	return mp.flags, ok
}
