package similarity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// EMD computes the earth mover's distance between two pointwise distance
// distributions, the measure Widdowson and Kurlin define between PDDs: the
// distributions are weighted point sets, the ground distance between two
// rows is the Chebyshev distance of their neighbour columns, and the EMD is
// the cheapest transport plan moving one set of weights onto the other.
//
// Both arguments must come from PDD calls with the same k. The transport
// plan is solved as a linear program in standard form; one of the marginal
// constraints is implied by the others and is dropped to keep the
// constraint matrix full rank.
func EMD(a, b *mat.Dense) (float64, error) {
	m, ka := a.Dims()
	n, kb := b.Dims()
	if ka != kb {
		return 0, Error{"distributions have different numbers of neighbours", fmt.Sprintf("%d and %d", ka-1, kb-1), []string{"EMD"}}
	}
	if m == 0 || n == 0 {
		return 0, Error{"empty distribution", "", []string{"EMD"}}
	}
	//cost of moving weight between every pair of environments
	cost := make([]float64, m*n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			cost[i*n+j] = chebyshev(a.RawRowView(i)[1:], b.RawRowView(j)[1:])
		}
	}
	//equality constraints: every row of a ships out exactly its weight,
	//every row of b but the last receives exactly its weight
	rows := m + n - 1
	A := mat.NewDense(rows, m*n, nil)
	bvec := make([]float64, rows)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			A.Set(i, i*n+j, 1)
		}
		bvec[i] = a.At(i, 0)
	}
	for j := 0; j < n-1; j++ {
		for i := 0; i < m; i++ {
			A.Set(m+j, i*n+j, 1)
		}
		bvec[m+j] = b.At(j, 0)
	}
	opt, _, err := lp.Simplex(cost, A, bvec, 0, nil)
	if err != nil {
		return 0, Error{"transport problem failed", err.Error(), []string{"EMD"}}
	}
	return opt, nil
}

func chebyshev(a, b []float64) float64 {
	var max float64
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > max {
			max = d
		}
	}
	return max
}
