package analysis

import (
	"fmt"
	"math"

	"github.com/wdavie/mlipts"
	"github.com/wdavie/mlipts/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Energies returns the total energy of every labelled frame in the training
// set at path. Frames without an energy are passed over.
func Energies(path string, opts ...*mlipts.XYZOptions) ([]float64, error) {
	var energies []float64
	_, err := dataset.Scan(path, func(conf *mlipts.Config) error {
		if conf.HasEnergy {
			energies = append(energies, conf.Energy)
		}
		return nil
	}, opts...)
	if err != nil {
		return nil, errDecorate(err, "Energies")
	}
	return energies, nil
}

// ForceNorms returns the Euclidean norm of the force on every atom of every
// labelled frame in the training set at path, for spotting outliers that
// would skew a fit.
func ForceNorms(path string, opts ...*mlipts.XYZOptions) ([]float64, error) {
	var norms []float64
	_, err := dataset.Scan(path, func(conf *mlipts.Config) error {
		if conf.Forces == nil {
			return nil
		}
		for i := 0; i < conf.Len(); i++ {
			f := conf.Forces.RawRowView(i)
			norms = append(norms, math.Sqrt(f[0]*f[0]+f[1]*f[1]+f[2]*f[2]))
		}
		return nil
	}, opts...)
	if err != nil {
		return nil, errDecorate(err, "ForceNorms")
	}
	return norms, nil
}

// Summary describes a sample of scalar values.
type Summary struct {
	N    int
	Mean float64
	Std  float64 //sample standard deviation, 0 for a single value
	Min  float64
	Max  float64
}

// Summarize returns the summary statistics of values.
func Summarize(values []float64) (*Summary, error) {
	if len(values) == 0 {
		return nil, Error{message: "no values to summarize"}
	}
	s := &Summary{
		N:    len(values),
		Mean: stat.Mean(values, nil),
		Min:  floats.Min(values),
		Max:  floats.Max(values),
	}
	if s.N > 1 {
		s.Std = stat.StdDev(values, nil)
	}
	return s, nil
}

func (S *Summary) String() string {
	return fmt.Sprintf("n %d  mean %.6f  std %.6f  min %.6f  max %.6f",
		S.N, S.Mean, S.Std, S.Min, S.Max)
}
