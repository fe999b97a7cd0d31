package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Bins picks a histogram bin count for values by the Freedman-Diaconis
// rule, falling back to sqrt(n) when the interquartile range vanishes.
func Bins(values []float64) int {
	n := len(values)
	if n < 2 {
		return 1
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	iqr := stat.Quantile(0.75, stat.Empirical, sorted, nil) - stat.Quantile(0.25, stat.Empirical, sorted, nil)
	span := sorted[n-1] - sorted[0]
	if iqr <= 0 || span <= 0 {
		return int(math.Ceil(math.Sqrt(float64(n))))
	}
	bins := int(math.Ceil(span / (2 * iqr / math.Cbrt(float64(n)))))
	if bins > n {
		bins = n
	}
	return bins
}

// Histogram plots values as a histogram and saves it as a PNG at out.
func Histogram(values []float64, title, xlabel, out string) error {
	if len(values) == 0 {
		return Error{message: "no values to plot", deco: []string{"Histogram"}}
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "count"
	p.Add(plotter.NewGrid())
	h, err := plotter.NewHist(plotter.Values(values), Bins(values))
	if err != nil {
		return Error{"cannot build the histogram", err.Error(), []string{"Histogram"}}
	}
	p.Add(h)
	if err := p.Save(5*vg.Inch, 5*vg.Inch, out); err != nil {
		return Error{"cannot save the plot", err.Error(), []string{"Histogram"}}
	}
	return nil
}

// EnergyHist plots the energy distribution of a training set.
func EnergyHist(energies []float64, title, out string) error {
	return Histogram(energies, title, "energy (eV)", out)
}

// ForceHist plots the per-atom force norm distribution of a training set.
func ForceHist(norms []float64, title, out string) error {
	return Histogram(norms, title, "|F| (eV/A)", out)
}
