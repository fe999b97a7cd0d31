package mlipts

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

//puoTest returns a small Pu-O configuration with the species interleaved,
//so sorting actually has something to do.
func puoTest() *Config {
	cell := mat.NewDense(3, 3, []float64{5.4, 0, 0, 0, 5.4, 0, 0, 0, 5.4})
	coords := mat.NewDense(4, 3, []float64{
		0.0, 0.0, 0.0,
		1.35, 1.35, 1.35,
		2.7, 2.7, 0.0,
		4.05, 4.05, 1.35,
	})
	conf, err := NewConfig([]string{"Pu", "O", "Pu", "O"}, coords, cell)
	if err != nil {
		panic(err.Error())
	}
	return conf
}

func TestSpecies(Te *testing.T) {
	conf := puoTest()
	syms, counts := conf.Species()
	if len(syms) != 2 || syms[0] != "Pu" || syms[1] != "O" {
		Te.Errorf("wrong species order: %v", syms)
	}
	if counts[0] != 2 || counts[1] != 2 {
		Te.Errorf("wrong species counts: %v", counts)
	}
	if conf.GroupedBySpecies() {
		Te.Error("interleaved species reported as grouped")
	}
}

func TestSortBySpecies(Te *testing.T) {
	conf := puoTest()
	conf.Forces = mat.NewDense(4, 3, []float64{
		1, 0, 0,
		2, 0, 0,
		3, 0, 0,
		4, 0, 0,
	})
	conf.SortBySpecies()
	if !conf.GroupedBySpecies() {
		Te.Fatalf("still ungrouped after sorting: %v", conf.Symbols)
	}
	want := []string{"Pu", "Pu", "O", "O"}
	for i, s := range want {
		if conf.Symbols[i] != s {
			Te.Errorf("atom %d: got %s, want %s", i, conf.Symbols[i], s)
		}
	}
	//stability: the two Pu atoms keep their MD order, so their x
	//coordinates and force markers stay sorted
	if conf.Coords.At(0, 0) != 0.0 || conf.Coords.At(1, 0) != 2.7 {
		Te.Error("Pu atoms reordered within their block")
	}
	if conf.Forces.At(2, 0) != 2 || conf.Forces.At(3, 0) != 4 {
		Te.Error("forces did not follow their atoms")
	}
}

func TestFrac(Te *testing.T) {
	conf := puoTest()
	frac, err := conf.Frac()
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(frac.At(1, 0)-0.25) > 1e-12 {
		Te.Errorf("fractional coordinate: got %v, want 0.25", frac.At(1, 0))
	}
	back := FracToCart(frac, conf.Cell)
	for i := 0; i < conf.Len(); i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(back.At(i, j)-conf.Coords.At(i, j)) > 1e-10 {
				Te.Fatalf("roundtrip mismatch at %d,%d", i, j)
			}
		}
	}
}

func TestCheck(Te *testing.T) {
	conf := puoTest()
	if err := conf.Check(); err != nil {
		Te.Error(err)
	}
	bad := conf.Copy()
	bad.Symbols = bad.Symbols[:3]
	if err := bad.Check(); err == nil {
		Te.Error("expected an error for a 3-symbol, 4-row config")
	}
	bad2 := conf.Copy()
	bad2.Forces = mat.NewDense(2, 3, nil)
	if err := bad2.Check(); err == nil {
		Te.Error("expected an error for mismatched forces")
	}
}

func TestMasses(Te *testing.T) {
	conf := puoTest()
	m, err := conf.Masses()
	if err != nil {
		Te.Fatal(err)
	}
	if m[0] != 244.0 || m[1] != 15.999 {
		Te.Errorf("wrong masses: %v", m)
	}
	conf.Symbols[0] = "Xx"
	if _, err := conf.Masses(); err == nil {
		Te.Error("expected an error for an unknown element")
	}
}

func TestCellVolume(Te *testing.T) {
	conf := puoTest()
	v := CellVolume(conf.Cell)
	if math.Abs(v-5.4*5.4*5.4) > 1e-9 {
		Te.Errorf("volume: got %v", v)
	}
}
