package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wdavie/mlipts/workflow"
)

var filterOut string

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter the MD snapshots by structural similarity",
	Long: `Reads every snapshot of every finished MD calculation, drops the ones
the configured similarity measure finds redundant, and reports the
survivors. With --out the survivors are also written as extended-XYZ.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w, err := loadWorkflow()
		if err != nil {
			fatal("Failed to load the workflow", err)
		}
		cands, err := w.FilterConfigs()
		if err != nil {
			fatal("Failed to filter the snapshots", err)
		}
		fmt.Printf("Kept %d snapshots:\n", len(cands))
		for _, c := range cands {
			fmt.Printf("  %s step %d\n", c.Dir, c.Conf.Step)
		}
		if filterOut == "" {
			return
		}
		if err := workflow.WriteSelection(cands, filterOut); err != nil {
			fatal("Failed to write the selection", err)
		}
		fmt.Println("Wrote " + filterOut)
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().StringVar(&filterOut, "out", "", "Write the kept snapshots to this extended-XYZ file")
}
