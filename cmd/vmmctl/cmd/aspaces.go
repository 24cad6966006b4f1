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
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(aspacesCmd)
}

var aspacesCmd = &cobra.Command{
	Use:   "aspaces",
	Short: "List every registered address space and its regions",
	RunE: func(cmd *cobra.Command, args []string) error {
		flagName := color.New(color.FgYellow)
		flagReserved := color.New(color.FgCyan)
		flagPhysical := color.New(color.FgGreen)
		if !colorEnabled() {
			color.NoColor = true
		}

		for _, as := range vmm.Aspaces() {
			fmt.Printf("aspace %q range 0x%x-0x%x size 0x%x\n", as.Name(), as.Base(), as.End(), as.Size())
			for _, r := range as.Regions() {
				kind := flagPhysical.Sprint("PHYSICAL")
				if r.IsReserved() {
					kind = flagReserved.Sprint("RESERVED")
				}
				fmt.Fprintf(os.Stdout, "  region %s range 0x%x-0x%x size 0x%x pages %d\n",
					flagName.Sprint(r.Name()), r.Base(), r.End(), r.Size(), r.PageCount())
				fmt.Printf("    kind %s\n", kind)
			}
		}
		return nil
	},
}
