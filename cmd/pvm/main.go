// Command pvm is the host CLI for the packed-image stack machine: it loads
// an image file, wires up the standard built-in table, and drives the VM
// to completion (or a fixed step budget), per SPEC_FULL.md §4.13.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
