// Command searchflow runs an interactive profile search on the terminal and
// manages the snapshots it leaves behind.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
