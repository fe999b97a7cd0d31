package vasp

import (
	"compress/gzip"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wdavie/mlipts"
)

func TestReadOUTCAR(Te *testing.T) {
	res, err := ReadOUTCAR("test/vasp_step_50")
	if err != nil {
		Te.Fatal(err)
	}
	if !res.Finished || !res.Converged {
		Te.Errorf("run should be finished and converged: %+v", res)
	}
	if !res.HasEnergy || math.Abs(res.Energy-(-27.168102)) > 1e-6 {
		Te.Errorf("got energy %v", res.Energy)
	}
	want := []string{"O", "O", "Pu", "Pu"}
	if len(res.Symbols) != len(want) {
		Te.Fatalf("got %d symbols: %v", len(res.Symbols), res.Symbols)
	}
	for i, s := range want {
		if res.Symbols[i] != s {
			Te.Errorf("symbol %d: got %s, want %s", i, res.Symbols[i], s)
		}
	}
	if math.Abs(res.Cell.At(2, 2)-5.4) > 1e-8 {
		Te.Errorf("got cell %v", res.Cell)
	}
	if math.Abs(res.Positions.At(0, 0)-1.35) > 1e-8 {
		Te.Errorf("got positions %v", res.Positions)
	}
	if math.Abs(res.Forces.At(0, 1)-(-0.0034)) > 1e-8 {
		Te.Errorf("got forces %v", res.Forces)
	}
	conf, err := res.Config()
	if err != nil {
		Te.Fatal(err)
	}
	if conf.Len() != 4 || !conf.HasEnergy || !conf.GroupedBySpecies() {
		Te.Errorf("bad configuration from result: %+v", conf)
	}
}

func TestHarvest(Te *testing.T) {
	conf, err := Harvest("test/vasp_step_50")
	if err != nil {
		Te.Fatal(err)
	}
	if conf.Len() != 4 {
		Te.Errorf("got %d atoms", conf.Len())
	}
	cases := []struct {
		dir  string
		code string
	}{
		{"test/unconverged", mlipts.ErrUnconverged},
		{"test/running", mlipts.ErrNotFinished},
		{Te.TempDir(), mlipts.ErrNoOutput},
	}
	for _, c := range cases {
		_, err := Harvest(c.dir)
		if err == nil {
			Te.Fatalf("%s: harvest should fail", c.dir)
		}
		var cerr mlipts.CalcError
		if !errors.As(err, &cerr) {
			Te.Fatalf("%s: error is not a CalcError: %v", c.dir, err)
		}
		if cerr.Code() != c.code {
			Te.Errorf("%s: got code %s, want %s", c.dir, cerr.Code(), c.code)
		}
		if mlipts.IsCritical(err) {
			Te.Errorf("%s: a skippable calculation should not be critical", c.dir)
		}
	}
}

func TestFinished(Te *testing.T) {
	if !Finished("test/vasp_step_50") {
		Te.Errorf("finished run reported as still going")
	}
	if Finished("test/running") {
		Te.Errorf("running calculation reported as finished")
	}
	if Finished(Te.TempDir()) {
		Te.Errorf("empty directory reported as finished")
	}
}

func TestReadOUTCARCompressed(Te *testing.T) {
	raw, err := os.ReadFile("test/vasp_step_50/OUTCAR")
	if err != nil {
		Te.Fatal(err)
	}
	dir := Te.TempDir()
	f, err := os.Create(filepath.Join(dir, "OUTCAR.gz"))
	if err != nil {
		Te.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write(raw); err != nil {
		Te.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		Te.Fatal(err)
	}
	f.Close()
	res, err := ReadOUTCAR(dir)
	if err != nil {
		Te.Fatal(err)
	}
	if !res.Finished || math.Abs(res.Energy-(-27.168102)) > 1e-6 {
		Te.Errorf("compressed OUTCAR parsed wrong: %+v", res)
	}
}

func TestParseOUTCARErrors(Te *testing.T) {
	mismatch := "   VRHFIN =O: s2p4\n   ions per type =   2   2\n"
	if _, err := parseOUTCAR(strings.NewReader(mismatch), "test"); err == nil {
		Te.Errorf("species/counts mismatch should not parse")
	}
	shortTable := `   VRHFIN =O: s2p4
   VRHFIN =Pu: 6s6p5f6d7s
   ions per type =   2   2
 POSITION                                       TOTAL-FORCE (eV/Angst)
 -----------------------------------------------------------------------------------
      1.35000      1.35000      1.35000         0.012000     -0.003400      0.000140
      0.00000      0.00000      0.00000         0.000000      0.000000      0.001100
 -----------------------------------------------------------------------------------
`
	if _, err := parseOUTCAR(strings.NewReader(shortTable), "test"); err == nil {
		Te.Errorf("force table with missing ions should not parse")
	}
}
