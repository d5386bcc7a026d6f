// Command vortexd runs the volumetric display's ingest and page-flip core.
package main

import (
	"fmt"
	"os"

	"github.com/LuPow132/Volumetric-Interactive-Display-2025/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
