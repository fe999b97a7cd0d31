package similarity

import (
	"math"

	"github.com/wdavie/mlipts"
	"gonum.org/v1/gonum/mat"
)

// AMD computes the average minimum distance vector of a configuration, the
// cheaper invariant of the same authors: entry i is the weighted mean of the
// distance to the (i+1)-th nearest neighbour over all atoms. Two AMDs are
// compared with AMDDistance.
func AMD(conf *mlipts.Config, k int) ([]float64, error) {
	pdd, err := PDD(conf, k)
	if err != nil {
		return nil, errDecorate(err, "AMD")
	}
	return AMDFromPDD(pdd), nil
}

// AMDFromPDD reduces an already computed distance distribution to its AMD
// vector. The PDD weights sum to 1, so the weighted column sums are means.
func AMDFromPDD(pdd *mat.Dense) []float64 {
	rows, cols := pdd.Dims()
	amd := make([]float64, cols-1)
	for i := 0; i < rows; i++ {
		w := pdd.At(i, 0)
		for j := 1; j < cols; j++ {
			amd[j-1] += w * pdd.At(i, j)
		}
	}
	return amd
}

// AMDDistance is the Chebyshev distance between two AMD vectors of the
// same length.
func AMDDistance(a, b []float64) float64 {
	var max float64
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > max {
			max = d
		}
	}
	return max
}
