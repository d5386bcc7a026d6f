// Package cmd wires the vortexd binary's command-line surface. The
// ingest core itself takes no process inputs beyond the shared region
// and the listening socket; this package is packaging around that core
// in sharedframe, frameslot, ingest and rasterizer.
package cmd

import (
	"github.com/spf13/cobra"
)

var configPathFlag string

var rootCmd = &cobra.Command{
	Use:   "vortexd",
	Short: "Ingest and page-flip core for the volumetric display driver",
	Long: `vortexd accepts point-cloud frames from remote producers over TCP,
decompresses and validates them, rasterizes them into the shared voxel
frame buffer, and flips the page for the hardware driver to scan out.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "path to a vortexd.toml config file (optional)")
	addServeCommand(rootCmd)
}

// Execute runs the vortexd command tree.
func Execute() error {
	return rootCmd.Execute()
}
