/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"github.com/blacktop/go-vmm"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(allocPhysicalCmd)
}

var allocPhysicalCmd = &cobra.Command{
	Use:   "alloc-physical <paddr> <size>",
	Short: "Map a caller-supplied physical address range (e.g. device MMIO) into the kernel address space",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pa, err := parseUint(args[0])
		if err != nil {
			return err
		}
		size, err := parseUint(args[1])
		if err != nil {
			return err
		}

		ptr := uint64(placeholderPtr)
		err = vmm.AllocPhysical(vmm.KernelAddressSpace(), "vmmctl alloc-physical", size, &ptr, vmm.PhysAddr(pa), 0, 0)
		printResult("alloc-physical", err, ptr)
		return err
	},
}
