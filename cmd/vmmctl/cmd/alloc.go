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
	"fmt"

	"github.com/blacktop/go-vmm"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var allocAlignPow2 uint8

func init() {
	rootCmd.AddCommand(allocCmd)
	allocCmd.Flags().Uint8VarP(&allocAlignPow2, "align", "a", 0, "log2 alignment of the placement (0 = page-aligned)")
}

var allocCmd = &cobra.Command{
	Use:   "alloc <size>",
	Short: "Allocate size bytes of scattered physical pages in the kernel address space",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := parseUint(args[0])
		if err != nil {
			return err
		}

		ptr := uint64(placeholderPtr)
		err = vmm.Alloc(vmm.KernelAddressSpace(), "vmmctl alloc", size, &ptr, allocAlignPow2, 0, 0)
		printResult("alloc", err, ptr)
		return err
	},
}

// placeholderPtr mirrors the original debug command's practice of seeding
// *ptr with an obviously-bogus value before the call, so a caller can tell
// "the orchestrator never touched this" from "it resolved to address 0".
const placeholderPtr = 0x99

func printResult(cmdName string, err error, ptr uint64) {
	if err != nil {
		color.New(color.FgRed).Printf("%s failed: %v\n", cmdName, err)
		return
	}
	fmt.Printf("%s placed at 0x%x (placeholder was 0x%x)\n", cmdName, ptr, uint64(placeholderPtr))
}

func parseUint(s string) (uint64, error) {
	var v uint64
	if _, err := fmt.Sscanf(s, "0x%x", &v); err == nil {
		return v, nil
	}
	if _, err := fmt.Sscanf(s, "%d", &v); err == nil {
		return v, nil
	}
	return 0, fmt.Errorf("vmmctl: %q is not a valid unsigned integer", s)
}
