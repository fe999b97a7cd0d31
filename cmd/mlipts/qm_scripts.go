package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	qmSubmit     bool
	qmPartitions int
)

var qmScriptsCmd = &cobra.Command{
	Use:   "qm-scripts",
	Short: "Write the QM submission scripts",
	Long: `Splits the built QM calculations into partitions and writes one
scheduler script per partition, so the single points queue as a few
medium jobs instead of one huge or hundreds of tiny ones. With --submit
the scripts are handed to the scheduler.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w, err := loadWorkflow()
		if err != nil {
			fatal("Failed to load the workflow", err)
		}
		if qmPartitions > 0 {
			w.Config().QM.Partitions = qmPartitions
		}
		scripts, ids, err := w.QMScripts(context.Background(), qmSubmit)
		if err != nil {
			fatal("Failed to write the QM scripts", err)
		}
		for _, s := range scripts {
			fmt.Println("Wrote " + s)
		}
		for _, id := range ids {
			fmt.Println("Submitted batch job " + id)
		}
	},
}

func init() {
	rootCmd.AddCommand(qmScriptsCmd)
	qmScriptsCmd.Flags().BoolVar(&qmSubmit, "submit", false, "Submit the scripts after writing them")
	qmScriptsCmd.Flags().IntVar(&qmPartitions, "partitions", 0, "Override the configured number of partitions")
}
