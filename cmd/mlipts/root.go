package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wdavie/mlipts/workflow"
)

var (
	cfgPath string
	verbose bool

	logger *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mlipts",
	Short: "Active-learning workflows for machine-learned interatomic potentials",
	Long: `mlipts builds, dispatches and harvests the calculations of an
active-learning cycle: LAMMPS molecular dynamics over a sample space,
similarity filtering of the sampled snapshots, VASP single points to label
the survivors, and an extended-XYZ training set collecting the results.

Every stage reads the same workflow file and derives its inputs from the
directory layout, so stages can run days apart or again after a failure.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadWorkflow reads the configured workflow file and wraps it for staging.
func loadWorkflow() (*workflow.Workflow, error) {
	cfg, err := workflow.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return workflow.New(cfg, logger), nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "workflow.yaml", "Workflow configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}
