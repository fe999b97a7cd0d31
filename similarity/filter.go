package similarity

import (
	"github.com/wdavie/mlipts"
)

// Filter drops near-duplicate configurations: for every pair whose PDDs sit
// within tol of each other under the earth mover's distance, the later one
// goes. It returns the survivors and their indices into the input, in the
// original order. k is the number of neighbours the distributions consider.
//
// The scan is greedy over ordered pairs, so the first configuration of any
// cluster of near-duplicates is the one kept.
func Filter(configs []*mlipts.Config, k int, tol float64) ([]*mlipts.Config, []int, error) {
	pdds, err := PDDs(configs, k)
	if err != nil {
		return nil, nil, errDecorate(err, "Filter")
	}
	removed := make(map[int]bool)
	for i := 0; i < len(pdds); i++ {
		if removed[i] {
			continue
		}
		for j := i + 1; j < len(pdds); j++ {
			if removed[j] {
				continue
			}
			emd, err := EMD(pdds[i], pdds[j])
			if err != nil {
				return nil, nil, errDecorate(err, "Filter")
			}
			if emd <= tol {
				removed[j] = true
			}
		}
	}
	return survivors(configs, removed)
}

// FilterAMD is the cheap variant of Filter: configurations are compared by
// the Chebyshev distance of their AMD vectors instead of the full transport
// problem. The AMD distance lower-bounds the EMD, so at the same tolerance
// this filter drops everything Filter drops, and possibly more.
func FilterAMD(configs []*mlipts.Config, k int, tol float64) ([]*mlipts.Config, []int, error) {
	amds := make([][]float64, 0, len(configs))
	for _, conf := range configs {
		amd, err := AMD(conf, k)
		if err != nil {
			return nil, nil, errDecorate(err, "FilterAMD")
		}
		amds = append(amds, amd)
	}
	removed := make(map[int]bool)
	for i := 0; i < len(amds); i++ {
		if removed[i] {
			continue
		}
		for j := i + 1; j < len(amds); j++ {
			if removed[j] {
				continue
			}
			if AMDDistance(amds[i], amds[j]) <= tol {
				removed[j] = true
			}
		}
	}
	return survivors(configs, removed)
}

func survivors(configs []*mlipts.Config, removed map[int]bool) ([]*mlipts.Config, []int, error) {
	kept := make([]*mlipts.Config, 0, len(configs)-len(removed))
	inds := make([]int, 0, len(configs)-len(removed))
	for i, conf := range configs {
		if removed[i] {
			continue
		}
		kept = append(kept, conf)
		inds = append(inds, i)
	}
	return kept, inds, nil
}
