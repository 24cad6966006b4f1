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

var allocContigAlignPow2 uint8

func init() {
	rootCmd.AddCommand(allocContigCmd)
	allocContigCmd.Flags().Uint8VarP(&allocContigAlignPow2, "align", "a", 0, "log2 alignment of the placement (0 = page-aligned)")
}

var allocContigCmd = &cobra.Command{
	Use:   "alloc-contig <size>",
	Short: "Allocate size bytes backed by a single physically contiguous run of pages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := parseUint(args[0])
		if err != nil {
			return err
		}

		ptr := uint64(placeholderPtr)
		err = vmm.AllocContiguous(vmm.KernelAddressSpace(), "vmmctl alloc-contig", size, &ptr, allocContigAlignPow2, 0, 0)
		printResult("alloc-contig", err, ptr)
		return err
	},
}
