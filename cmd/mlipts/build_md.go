package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildMDCmd = &cobra.Command{
	Use:   "build-md",
	Short: "Build the MD calculation directories",
	Long: `Copies the MD base calculation once per point of the sample space and
substitutes the marked variables in each input.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w, err := loadWorkflow()
		if err != nil {
			fatal("Failed to load the workflow", err)
		}
		dirs, err := w.BuildMD()
		if err != nil {
			fatal("Failed to build the MD calculations", err)
		}
		fmt.Printf("Built %d MD calculations:\n", len(dirs))
		for _, d := range dirs {
			fmt.Println("  " + d)
		}
	},
}

func init() {
	rootCmd.AddCommand(buildMDCmd)
}
