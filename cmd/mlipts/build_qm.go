package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildQMCmd = &cobra.Command{
	Use:   "build-qm",
	Short: "Build single-point calculations for the filtered snapshots",
	Long: `Filters the MD snapshots and builds one VASP single point per survivor,
copying the QM base calculation and writing the snapshot as its POSCAR.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w, err := loadWorkflow()
		if err != nil {
			fatal("Failed to load the workflow", err)
		}
		dirs, err := w.BuildQM()
		if err != nil {
			fatal("Failed to build the QM calculations", err)
		}
		fmt.Printf("Built %d QM calculations:\n", len(dirs))
		for _, d := range dirs {
			fmt.Println("  " + d)
		}
	},
}

func init() {
	rootCmd.AddCommand(buildQMCmd)
}
