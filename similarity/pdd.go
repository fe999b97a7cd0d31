package similarity

import (
	"math"
	"sort"

	"github.com/wdavie/mlipts"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// roundDecimals is the precision at which environments are considered equal
// when collapsing PDD rows, following Widdowson and Kurlin's reference
// choice of 3 decimal places.
const roundDecimals = 3

// PDD computes the pointwise distance distribution of a periodic
// configuration, after Widdowson and Kurlin (arXiv:2108.04798): for every
// atom, the sorted distances to its k nearest neighbours over the infinite
// periodic packing. Rows describing identical environments, compared after
// rounding, are collapsed into one row weighted by their multiplicity.
//
// The result has one row per distinct environment and k+1 columns: the
// weight first, then the k neighbour distances in increasing order. Rows
// are in lexicographic order. Weights sum to 1.
func PDD(conf *mlipts.Config, k int) (*mat.Dense, error) {
	if k < 1 {
		return nil, Error{"need at least one neighbour", "", []string{"PDD"}}
	}
	if conf == nil || conf.Len() == 0 {
		return nil, Error{"empty configuration", "", []string{"PDD"}}
	}
	if conf.Cell == nil {
		return nil, Error{"configuration has no cell, the PDD is defined for periodic structures", "", []string{"PDD"}}
	}
	if math.Abs(mat.Det(conf.Cell)) < 1e-10 {
		return nil, Error{"cell is singular", "", []string{"PDD"}}
	}
	natoms := conf.Len()
	//the periodic packing grows shell by shell until the neighbour
	//distances stop changing
	var packing []kdtree.Point
	shell := 0
	for len(packing) < k+1 {
		packing = append(packing, imageShell(conf, shell)...)
		shell++
	}
	dists := nearestDists(packing, conf, k)
	for {
		packing = append(packing, imageShell(conf, shell)...)
		shell++
		next := nearestDists(packing, conf, k)
		if distsEqual(dists, next) {
			break
		}
		dists = next
	}
	for i := range dists {
		for j := range dists[i] {
			dists[i][j] = round(dists[i][j])
		}
	}
	return collapse(dists, natoms, k), nil
}

// PDDs computes the distribution of every configuration with the same k.
func PDDs(configs []*mlipts.Config, k int) ([]*mat.Dense, error) {
	out := make([]*mat.Dense, 0, len(configs))
	for _, conf := range configs {
		pdd, err := PDD(conf, k)
		if err != nil {
			return nil, errDecorate(err, "PDDs")
		}
		out = append(out, pdd)
	}
	return out, nil
}

// imageShell returns the periodic images of the motif whose lattice offsets
// (i,j,l) have max(|i|,|j|,|l|) equal to shell. Shell 0 is the motif itself.
func imageShell(conf *mlipts.Config, shell int) []kdtree.Point {
	var points []kdtree.Point
	natoms := conf.Len()
	for i := -shell; i <= shell; i++ {
		for j := -shell; j <= shell; j++ {
			for l := -shell; l <= shell; l++ {
				if max3(abs(i), abs(j), abs(l)) != shell {
					continue
				}
				for n := 0; n < natoms; n++ {
					p := make(kdtree.Point, 3)
					for d := 0; d < 3; d++ {
						p[d] = conf.Coords.At(n, d) +
							float64(i)*conf.Cell.At(0, d) +
							float64(j)*conf.Cell.At(1, d) +
							float64(l)*conf.Cell.At(2, d)
					}
					points = append(points, p)
				}
			}
		}
	}
	return points
}

// nearestDists queries, for every motif atom, its k+1 nearest points in the
// packing (the closest is the atom itself at distance 0) and returns the
// distances sorted in increasing order.
func nearestDists(packing []kdtree.Point, conf *mlipts.Config, k int) [][]float64 {
	tree := kdtree.New(kdtree.Points(packing), false)
	out := make([][]float64, conf.Len())
	for n := 0; n < conf.Len(); n++ {
		q := kdtree.Point{conf.Coords.At(n, 0), conf.Coords.At(n, 1), conf.Coords.At(n, 2)}
		keeper := kdtree.NewNKeeper(k + 1)
		tree.NearestSet(keeper, q)
		dists := make([]float64, 0, k+1)
		for _, c := range keeper.Heap {
			//the keeper holds squared Euclidean distances
			dists = append(dists, math.Sqrt(c.Dist))
		}
		sort.Float64s(dists)
		out[n] = dists
	}
	return out
}

// collapse merges duplicate rows of the rounded distance matrix, assigning
// each survivor the fraction of atoms it stands for, and returns the rows
// in lexicographic order with the weight in column 0. The self-distance the
// first column held is zero everywhere, so overwriting it loses nothing.
func collapse(dists [][]float64, natoms, k int) *mat.Dense {
	order := make([]int, len(dists))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return lessRow(dists[order[a]], dists[order[b]]) })
	type wrow struct {
		row   []float64
		count int
	}
	var merged []wrow
	for _, idx := range order {
		r := dists[idx]
		if len(merged) > 0 && equalRow(merged[len(merged)-1].row, r) {
			merged[len(merged)-1].count++
			continue
		}
		merged = append(merged, wrow{r, 1})
	}
	out := mat.NewDense(len(merged), k+1, nil)
	for i, m := range merged {
		out.Set(i, 0, float64(m.count)/float64(natoms))
		for j := 1; j <= k; j++ {
			out.Set(i, j, m.row[j])
		}
	}
	return out
}

func distsEqual(a, b [][]float64) bool {
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func lessRow(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func equalRow(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func round(x float64) float64 {
	shift := math.Pow(10, roundDecimals)
	return math.Round(x*shift) / shift
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

func max3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
