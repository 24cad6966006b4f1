package vmm

import (
	"fmt"
	"io"
	"strconv"
)

// DumpRegion writes a single-line description of r to w.
func DumpRegion(w io.Writer, r *Region) {
	fmt.Fprintf(w, "\tregion %p: name %q range 0x%x-0x%x size 0x%x flags 0x%x mmu_flags 0x%x pages %d\n",
		r, r.Name(), r.Base(), r.End(), r.Size(), r.Flags(), r.ArchMMUFlags(), r.PageCount())
}

// DumpAddressSpace writes a description of as and all of its regions to w.
func DumpAddressSpace(w io.Writer, as *AddressSpace) {
	fmt.Fprintf(w, "aspace %p: name %q range 0x%x-0x%x size 0x%x\n",
		as, as.Name(), as.Base(), as.End(), as.Size())
	fmt.Fprintln(w, "regions:")
	for _, r := range as.Regions() {
		DumpRegion(w, r)
	}
}

const usageString = `usage:
  aspaces
  alloc <size> <align_pow2>
  alloc_physical <paddr> <size>
  alloc_contig <size> <align_pow2>
`

// RunCommand implements the interactive diagnostics command surface
// (aspaces / alloc / alloc_physical / alloc_contig) against the kernel
// address space. Usage errors print the usage string to w and return a
// CodeGeneric error; all other errors are passed through from the
// corresponding orchestrator call.
func RunCommand(w io.Writer, args []string) error {
	if len(args) < 1 {
		fmt.Fprint(w, usageString)
		return newError(CodeGeneric, "RunCommand", "not enough arguments", nil)
	}

	switch args[0] {
	case "aspaces":
		for _, as := range Aspaces() {
			DumpAddressSpace(w, as)
		}
		return nil

	case "alloc":
		if len(args) < 3 {
			fmt.Fprint(w, usageString)
			return newError(CodeGeneric, "RunCommand", "not enough arguments", nil)
		}
		size, alignPow2, err := parseSizeAlign(args[1], args[2])
		if err != nil {
			fmt.Fprint(w, usageString)
			return newError(CodeGeneric, "RunCommand", "invalid numeric argument", err)
		}
		ptr := uint64(0x99)
		runErr := Alloc(KernelAddressSpace(), "alloc test", size, &ptr, alignPow2, 0, 0)
		fmt.Fprintf(w, "alloc returns %v, ptr 0x%x\n", runErr, ptr)
		return runErr

	case "alloc_physical":
		if len(args) < 3 {
			fmt.Fprint(w, usageString)
			return newError(CodeGeneric, "RunCommand", "not enough arguments", nil)
		}
		paddr, err := strconv.ParseUint(args[1], 0, 64)
		if err != nil {
			fmt.Fprint(w, usageString)
			return newError(CodeGeneric, "RunCommand", "invalid paddr", err)
		}
		size, err := strconv.ParseUint(args[2], 0, 64)
		if err != nil {
			fmt.Fprint(w, usageString)
			return newError(CodeGeneric, "RunCommand", "invalid size", err)
		}
		ptr := uint64(0x99)
		runErr := AllocPhysical(KernelAddressSpace(), "physical test", size, &ptr, PhysAddr(paddr), 0, 0)
		fmt.Fprintf(w, "alloc_physical returns %v, ptr 0x%x\n", runErr, ptr)
		return runErr

	case "alloc_contig":
		if len(args) < 3 {
			fmt.Fprint(w, usageString)
			return newError(CodeGeneric, "RunCommand", "not enough arguments", nil)
		}
		size, alignPow2, err := parseSizeAlign(args[1], args[2])
		if err != nil {
			fmt.Fprint(w, usageString)
			return newError(CodeGeneric, "RunCommand", "invalid numeric argument", err)
		}
		ptr := uint64(0x99)
		runErr := AllocContiguous(KernelAddressSpace(), "contig test", size, &ptr, alignPow2, 0, 0)
		fmt.Fprintf(w, "alloc_contig returns %v, ptr 0x%x\n", runErr, ptr)
		return runErr

	default:
		fmt.Fprint(w, usageString)
		return newError(CodeGeneric, "RunCommand", "unknown command", nil)
	}
}

func parseSizeAlign(sizeStr, alignStr string) (size uint64, alignPow2 uint8, err error) {
	size, err = strconv.ParseUint(sizeStr, 0, 64)
	if err != nil {
		return 0, 0, err
	}
	align, err := strconv.ParseUint(alignStr, 0, 8)
	if err != nil {
		return 0, 0, err
	}
	return size, uint8(align), nil
}
