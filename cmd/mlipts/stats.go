package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wdavie/mlipts/analysis"
)

var statsPlot string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the training set",
	Long: `Prints summary statistics of the energies and per-atom force norms in
the training set. With --plot the energy distribution is also saved as a
histogram.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w, err := loadWorkflow()
		if err != nil {
			fatal("Failed to load the workflow", err)
		}
		path := w.Config().Dataset
		energies, err := analysis.Energies(path)
		if err != nil {
			fatal("Failed to read the training set", err)
		}
		es, err := analysis.Summarize(energies)
		if err != nil {
			fatal("Failed to summarize the energies", err)
		}
		fmt.Println("energies (eV):   " + es.String())
		norms, err := analysis.ForceNorms(path)
		if err != nil {
			fatal("Failed to read the forces", err)
		}
		if fs, err := analysis.Summarize(norms); err == nil {
			fmt.Println("|force| (eV/A):  " + fs.String())
		}
		if statsPlot == "" {
			return
		}
		if err := analysis.EnergyHist(energies, path, statsPlot); err != nil {
			fatal("Failed to plot the energies", err)
		}
		fmt.Println("Wrote " + statsPlot)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsPlot, "plot", "", "Save an energy histogram to this PNG file")
}
