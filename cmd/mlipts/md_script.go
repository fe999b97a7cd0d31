package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var mdSubmit bool

var mdScriptCmd = &cobra.Command{
	Use:   "md-script",
	Short: "Write the MD submission script",
	Long: `Writes the scheduler script that runs every built MD calculation in
one job, and with --submit hands it to the scheduler.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w, err := loadWorkflow()
		if err != nil {
			fatal("Failed to load the workflow", err)
		}
		script, ids, err := w.MDScript(context.Background(), mdSubmit)
		if err != nil {
			fatal("Failed to write the MD script", err)
		}
		fmt.Println("Wrote " + script)
		for _, id := range ids {
			fmt.Println("Submitted batch job " + id)
		}
	},
}

func init() {
	rootCmd.AddCommand(mdScriptCmd)
	mdScriptCmd.Flags().BoolVar(&mdSubmit, "submit", false, "Submit the script after writing it")
}
