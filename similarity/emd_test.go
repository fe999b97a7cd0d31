package similarity

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestEMDIdentical(Te *testing.T) {
	conf := cubeConf(Te, 2.0)
	a, err := PDD(conf, 3)
	if err != nil {
		Te.Fatal(err)
	}
	b, err := PDD(conf.Copy(), 3)
	if err != nil {
		Te.Fatal(err)
	}
	emd, err := EMD(a, b)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(emd) > 1e-9 {
		Te.Errorf("identical structures should have zero distance, got %v", emd)
	}
}

func TestEMDScaledCell(Te *testing.T) {
	//simple cubic at 2.0 vs 2.2 A: every neighbour distance moves by 0.2,
	//so the transport cost is exactly 0.2
	a, err := PDD(cubeConf(Te, 2.0), 2)
	if err != nil {
		Te.Fatal(err)
	}
	b, err := PDD(cubeConf(Te, 2.2), 2)
	if err != nil {
		Te.Fatal(err)
	}
	emd, err := EMD(a, b)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(emd-0.2) > 1e-6 {
		Te.Errorf("got EMD %v, want 0.2", emd)
	}
}

func TestEMDSplitWeights(Te *testing.T) {
	//moving a (1/3, 4 A) environment onto a uniform 1 A one costs 3 for
	//a third of the weight: EMD = 1/3 * 3 = 1
	a, err := PDD(lineConf(Te), 1)
	if err != nil {
		Te.Fatal(err)
	}
	b := mat.NewDense(1, 2, []float64{1.0, 1.0})
	emd, err := EMD(a, b)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(emd-1.0) > 1e-6 {
		Te.Errorf("got EMD %v, want 1.0", emd)
	}
}

func TestEMDMismatch(Te *testing.T) {
	a := mat.NewDense(1, 3, []float64{1, 2, 2})
	b := mat.NewDense(1, 2, []float64{1, 2})
	if _, err := EMD(a, b); err == nil {
		Te.Errorf("distributions with different k should not compare")
	}
}
