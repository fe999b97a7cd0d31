package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var collectWatch bool

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Harvest finished QM calculations into the training set",
	Long: `Walks the QM tree, appends every finished and converged calculation to
the training set, and reports what was skipped and why. With --watch it
stays running and collects calculations as they finish, until interrupted.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w, err := loadWorkflow()
		if err != nil {
			fatal("Failed to load the workflow", err)
		}
		if collectWatch {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if _, err := w.Collect(ctx, true); err != nil {
				fatal("The watch ended with an error", err)
			}
			return
		}
		report, err := w.Collect(context.Background(), false)
		if err != nil {
			fatal("Failed to collect the calculations", err)
		}
		fmt.Println(report)
		for _, s := range report.Skipped {
			fmt.Printf("  skipped %s: %s\n", s.Dir, s.Reason)
		}
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().BoolVar(&collectWatch, "watch", false, "Keep collecting as calculations finish")
}
