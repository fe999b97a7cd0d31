package analysis

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/wdavie/mlipts"
	"github.com/wdavie/mlipts/dataset"
	"gonum.org/v1/gonum/mat"
)

// writeSet builds a small labelled training set and returns its path.
func writeSet(Te *testing.T, energies []float64) string {
	Te.Helper()
	path := filepath.Join(Te.TempDir(), dataset.DefaultPath)
	app := dataset.NewAppender(path)
	cell := mat.NewDense(3, 3, []float64{5.4, 0, 0, 0, 5.4, 0, 0, 0, 5.4})
	for _, e := range energies {
		coords := mat.NewDense(2, 3, []float64{0, 0, 0, 2.7, 2.7, 2.7})
		conf, err := mlipts.NewConfig([]string{"O", "Pu"}, coords, cell)
		if err != nil {
			Te.Fatal(err)
		}
		conf.Forces = mat.NewDense(2, 3, []float64{3, 4, 0, 0, 0, 2})
		conf.Energy = e
		conf.HasEnergy = true
		if err := app.Append(conf); err != nil {
			Te.Fatal(err)
		}
	}
	return path
}

func TestEnergies(Te *testing.T) {
	want := []float64{-27.2, -27.5, -26.9}
	path := writeSet(Te, want)
	got, err := Energies(path)
	if err != nil {
		Te.Fatal(err)
	}
	if len(got) != len(want) {
		Te.Fatalf("got %d energies, wanted %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			Te.Errorf("energy %d: got %f, wanted %f", i, got[i], want[i])
		}
	}
}

func TestForceNorms(Te *testing.T) {
	path := writeSet(Te, []float64{-27.2})
	norms, err := ForceNorms(path)
	if err != nil {
		Te.Fatal(err)
	}
	want := []float64{5, 2}
	if len(norms) != len(want) {
		Te.Fatalf("got %d norms, wanted %d", len(norms), len(want))
	}
	for i := range want {
		if math.Abs(norms[i]-want[i]) > 1e-8 {
			Te.Errorf("norm %d: got %f, wanted %f", i, norms[i], want[i])
		}
	}
}

func TestSummarize(Te *testing.T) {
	s, err := Summarize([]float64{1, 2, 3, 4})
	if err != nil {
		Te.Fatal(err)
	}
	if s.N != 4 || math.Abs(s.Mean-2.5) > 1e-9 || math.Abs(s.Min-1) > 1e-9 || math.Abs(s.Max-4) > 1e-9 {
		Te.Errorf("summary: %s", s)
	}
	if math.Abs(s.Std-math.Sqrt(5.0/3.0)) > 1e-9 {
		Te.Errorf("std: got %f", s.Std)
	}
	one, err := Summarize([]float64{7})
	if err != nil || one.Std != 0 {
		Te.Errorf("single value: %v %v", one, err)
	}
	if _, err := Summarize(nil); err == nil {
		Te.Error("an empty sample should not summarize")
	}
}

func TestBins(Te *testing.T) {
	if b := Bins([]float64{5}); b != 1 {
		Te.Errorf("one value: %d bins", b)
	}
	flat := make([]float64, 9)
	for i := range flat {
		flat[i] = 2.5
	}
	if b := Bins(flat); b != 3 {
		Te.Errorf("flat sample of 9 should fall back to sqrt bins, got %d", b)
	}
	var spread []float64
	for i := 0; i < 16; i++ {
		spread = append(spread, float64(i))
	}
	if b := Bins(spread); b < 2 || b > 16 {
		Te.Errorf("uniform spread: %d bins", b)
	}
}

func TestEnergyHist(Te *testing.T) {
	energies := []float64{-27.2, -27.5, -26.9, -27.1, -27.3, -27.0}
	out := filepath.Join(Te.TempDir(), "energies.png")
	if err := EnergyHist(energies, "PuO2 training set", out); err != nil {
		Te.Fatal(err)
	}
	info, err := os.Stat(out)
	if err != nil {
		Te.Fatal(err)
	}
	if info.Size() == 0 {
		Te.Error("the plot file is empty")
	}
	if err := EnergyHist(nil, "empty", out); err == nil {
		Te.Error("plotting nothing should fail")
	}
}
