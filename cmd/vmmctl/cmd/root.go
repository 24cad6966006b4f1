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
	"os"

	"github.com/blacktop/go-vmm"
	"github.com/blacktop/go-vmm/internal/simhw"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// simPages is the number of simulated physical frames the demo pmm is
// seeded with. Large enough that none of the example scenarios exhaust it
// by accident.
const simPages = 4096

var noColor bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colorized output")
}

var rootCmd = &cobra.Command{
	Use:   "vmmctl",
	Short: "Drive the kernel virtual memory manager from a host process",
	Long: `vmmctl hosts the vmm package's address-space/region/allocation logic
outside of a real kernel, backed by a simulated physical page allocator and
MMU driver, so its command surface can be exercised interactively or from
shell scripts.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		vmm.SetPageAllocator(simhw.NewPMM(0x40000000, simPages))
		vmm.SetMMU(simhw.NewMMU())
		return vmm.Init()
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// colorEnabled reports whether ANSI color output should be emitted: off
// when --no-color was passed, and off when stdout is not a terminal.
func colorEnabled() bool {
	if noColor {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
