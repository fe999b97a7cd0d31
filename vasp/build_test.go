package vasp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wdavie/mlipts"
	"gonum.org/v1/gonum/mat"
)

// an interleaved PuO cell, 2 Pu and 2 O in a 5.4 A cubic box
func puoConf(Te *testing.T) *mlipts.Config {
	symbols := []string{"Pu", "O", "Pu", "O"}
	coords := mat.NewDense(4, 3, []float64{
		0.0, 0.0, 0.0,
		1.35, 1.35, 1.35,
		2.7, 2.7, 0.0,
		4.05, 4.05, 1.35,
	})
	cell := mat.NewDense(3, 3, []float64{5.4, 0, 0, 0, 5.4, 0, 0, 0, 5.4})
	conf, err := mlipts.NewConfig(symbols, coords, cell)
	if err != nil {
		Te.Fatal(err)
	}
	return conf
}

func TestPOSCARString(Te *testing.T) {
	conf := puoConf(Te)
	if _, err := POSCARString(conf); err == nil {
		Te.Errorf("ungrouped configuration should not render to POSCAR")
	}
	conf.SortBySpecies()
	s, err := POSCARString(conf)
	if err != nil {
		Te.Fatal(err)
	}
	lines := strings.Split(s, "\n")
	if lines[0] != "System" || lines[1] != " 1.0" {
		Te.Errorf("bad POSCAR header: %q %q", lines[0], lines[1])
	}
	if !strings.Contains(lines[2], "5.40000000") {
		Te.Errorf("bad cell row: %q", lines[2])
	}
	if lines[5] != " Pu O" {
		Te.Errorf("bad species line: %q", lines[5])
	}
	if lines[6] != " 2 2" {
		Te.Errorf("bad counts line: %q", lines[6])
	}
	if lines[7] != "Direct" {
		Te.Errorf("bad coordinates mode line: %q", lines[7])
	}
	//sorted order is Pu (0,0,0), Pu (2.7,2.7,0), O, O
	if !strings.Contains(lines[9], "0.50000000") {
		Te.Errorf("bad second Pu row: %q", lines[9])
	}
	if !strings.Contains(lines[10], "0.25000000") {
		Te.Errorf("bad first O row: %q", lines[10])
	}
	conf.Cell = nil
	if _, err := POSCARString(conf); err == nil {
		Te.Errorf("aperiodic configuration should not render to POSCAR")
	}
}

func TestCheckBase(Te *testing.T) {
	if err := CheckBase("test/QM_base"); err != nil {
		Te.Error(err)
	}
	if err := CheckBase(Te.TempDir()); err == nil {
		Te.Errorf("empty base should not pass the check")
	}
	bad := Te.TempDir()
	for _, name := range []string{"INCAR", "KPOINTS", "POTCAR", "POSCAR"} {
		if err := os.WriteFile(filepath.Join(bad, name), []byte("x\n"), 0644); err != nil {
			Te.Fatal(err)
		}
	}
	err := CheckBase(bad)
	if err == nil {
		Te.Fatalf("base with a POSCAR should not pass the check")
	}
	if !strings.Contains(err.Error(), "POSCAR") {
		Te.Errorf("error should name the offending POSCAR: %v", err)
	}
}

func TestBuildCalc(Te *testing.T) {
	outdir := Te.TempDir()
	conf := puoConf(Te)
	dir, err := BuildCalc("test/QM_base", conf, "vasp_step_50", outdir)
	if err != nil {
		Te.Fatal(err)
	}
	if dir != filepath.Join(outdir, "vasp_step_50") {
		Te.Errorf("got directory %s", dir)
	}
	for _, name := range []string{"INCAR", "KPOINTS", "POTCAR", "POSCAR"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			Te.Errorf("missing %s in built calculation: %v", name, err)
		}
	}
	poscar, err := os.ReadFile(filepath.Join(dir, "POSCAR"))
	if err != nil {
		Te.Fatal(err)
	}
	if !strings.Contains(string(poscar), " Pu O") {
		Te.Errorf("POSCAR not grouped by species:\n%s", poscar)
	}
	//the caller's configuration must keep its atom order
	if conf.Symbols[0] != "Pu" || conf.Symbols[1] != "O" {
		Te.Errorf("BuildCalc reordered the caller's atoms: %v", conf.Symbols)
	}
}

func TestBuildForConfigs(Te *testing.T) {
	conf := puoConf(Te)
	dup := conf.Copy()
	conf.Step = 50
	dup.Step = 50
	_, err := BuildForConfigs("test/QM_base", []*mlipts.Config{conf, dup}, Te.TempDir())
	if err == nil {
		Te.Errorf("duplicate timesteps should not build")
	}
	if _, err := BuildForConfigs("test/QM_base", nil, Te.TempDir()); err == nil {
		Te.Errorf("an empty batch should not build")
	}
}

func TestBuildFromDump(Te *testing.T) {
	outdir := Te.TempDir()
	dirs, err := BuildFromDump("test/QM_base", "test/MD_run", []string{"O", "Pu"}, outdir)
	if err != nil {
		Te.Fatal(err)
	}
	want := []string{
		filepath.Join(outdir, "vasp_step_0"),
		filepath.Join(outdir, "vasp_step_50"),
	}
	if len(dirs) != len(want) {
		Te.Fatalf("got %d directories, want %d: %v", len(dirs), len(want), dirs)
	}
	for i, d := range want {
		if dirs[i] != d {
			Te.Errorf("directory %d: got %s, want %s", i, dirs[i], d)
		}
	}
	poscar, err := os.ReadFile(filepath.Join(dirs[0], "POSCAR"))
	if err != nil {
		Te.Fatal(err)
	}
	s := string(poscar)
	if !strings.Contains(s, " O Pu") || !strings.Contains(s, " 2 2") {
		Te.Errorf("unexpected POSCAR from dump snapshot:\n%s", s)
	}
	if !strings.Contains(s, "0.25000000") {
		Te.Errorf("fractional coordinates look wrong:\n%s", s)
	}
}
