package lammps

import (
	"compress/gzip"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var puoTypes = []string{"O", "Pu"}

func TestReadDump(Te *testing.T) {
	confs, err := ReadDump("test", puoTypes)
	if err != nil {
		Te.Fatal(err)
	}
	if len(confs) != 2 {
		Te.Fatalf("got %d snapshots, want 2", len(confs))
	}
	first := confs[0]
	if first.Step != 0 || confs[1].Step != 50 {
		Te.Errorf("steps: %d, %d", first.Step, confs[1].Step)
	}
	//atoms sorted by type, then id: O (ids 2, 4) before Pu (ids 1, 3)
	want := []string{"O", "O", "Pu", "Pu"}
	for i, s := range want {
		if first.Symbols[i] != s {
			Te.Fatalf("symbols not type-sorted: %v", first.Symbols)
		}
	}
	if !first.GroupedBySpecies() {
		Te.Error("snapshot should come back grouped")
	}
	if math.Abs(first.Coords.At(0, 0)-1.35) > 1e-12 {
		Te.Errorf("first atom should be O at 1.35, got %v", first.Coords.At(0, 0))
	}
	if math.Abs(first.Coords.At(2, 0)-0.0) > 1e-12 {
		Te.Errorf("third atom should be Pu at 0.0, got %v", first.Coords.At(2, 0))
	}
	if math.Abs(first.Cell.At(1, 1)-5.4) > 1e-9 {
		Te.Errorf("cell: %v", first.Cell.At(1, 1))
	}
	if !first.PBC[0] || !first.PBC[1] || !first.PBC[2] {
		Te.Error("dump snapshots are periodic")
	}
}

func TestReadDumpScaled(Te *testing.T) {
	dump := `ITEM: TIMESTEP
100
ITEM: NUMBER OF ATOMS
2
ITEM: BOX BOUNDS pp pp pp
0.0 4.0
0.0 8.0
0.0 2.0
ITEM: ATOMS id type xs ys zs
1 1 0.5 0.25 0.5
2 2 0.0 0.5 0.0
`
	path := filepath.Join(Te.TempDir(), "md.scaled")
	if err := os.WriteFile(path, []byte(dump), 0644); err != nil {
		Te.Fatal(err)
	}
	confs, err := ReadDumpFile(path, puoTypes)
	if err != nil {
		Te.Fatal(err)
	}
	c := confs[0]
	if math.Abs(c.Coords.At(0, 0)-2.0) > 1e-12 || math.Abs(c.Coords.At(0, 1)-2.0) > 1e-12 || math.Abs(c.Coords.At(0, 2)-1.0) > 1e-12 {
		Te.Errorf("scaled coordinates not unscaled: %v %v %v", c.Coords.At(0, 0), c.Coords.At(0, 1), c.Coords.At(0, 2))
	}
}

func TestReadDumpCompressed(Te *testing.T) {
	raw, err := os.ReadFile("test/md.nvt")
	if err != nil {
		Te.Fatal(err)
	}
	path := filepath.Join(Te.TempDir(), "md.nvt.gz")
	f, err := os.Create(path)
	if err != nil {
		Te.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write(raw); err != nil {
		Te.Fatal(err)
	}
	zw.Close()
	f.Close()
	confs, err := ReadDumpFile(path, puoTypes)
	if err != nil {
		Te.Fatal(err)
	}
	if len(confs) != 2 || confs[1].Step != 50 {
		Te.Errorf("gzipped dump misread: %d snapshots", len(confs))
	}
}

func TestReadDumpErrors(Te *testing.T) {
	//unknown type number
	_, err := ReadDump("test", []string{"O"})
	if err == nil {
		Te.Error("expected an error for a type outside the declared list")
	}
	//triclinic box
	tric := `ITEM: TIMESTEP
0
ITEM: NUMBER OF ATOMS
1
ITEM: BOX BOUNDS xy xz yz pp pp pp
0.0 4.0 0.1
0.0 4.0 0.0
0.0 4.0 0.0
ITEM: ATOMS id type x y z
1 1 0.0 0.0 0.0
`
	path := filepath.Join(Te.TempDir(), "md.tric")
	if err := os.WriteFile(path, []byte(tric), 0644); err != nil {
		Te.Fatal(err)
	}
	if _, err := ReadDumpFile(path, puoTypes); err == nil {
		Te.Error("expected an error for a triclinic box")
	} else if !strings.Contains(err.Error(), "triclinic") {
		Te.Errorf("wrong error: %v", err)
	}
	//truncated mid-snapshot
	trunc := "ITEM: TIMESTEP\n0\nITEM: NUMBER OF ATOMS\n4\n"
	path = filepath.Join(Te.TempDir(), "md.trunc")
	if err := os.WriteFile(path, []byte(trunc), 0644); err != nil {
		Te.Fatal(err)
	}
	if _, err := ReadDumpFile(path, puoTypes); err == nil {
		Te.Error("expected an error for a truncated dump")
	}
	//no dump at all: non-critical, the run just is not done
	dir := Te.TempDir()
	_, err = ReadDump(dir, puoTypes)
	if err == nil {
		Te.Fatal("expected an error for a directory without a dump")
	}
}

func TestFindDumpCriticality(Te *testing.T) {
	dir := Te.TempDir()
	_, err := FindDump(dir)
	if err == nil {
		Te.Fatal("expected an error")
	}
	cerr, ok := err.(Error)
	if !ok {
		Te.Fatalf("error has type %T, want lammps.Error", err)
	}
	if cerr.Critical() {
		Te.Error("a missing dump should not be critical")
	}
	//two dumps are ambiguous, and that is critical
	for _, name := range []string{"md.a", "md.b"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0644); err != nil {
			Te.Fatal(err)
		}
	}
	_, err = FindDump(dir)
	if err == nil {
		Te.Fatal("expected an error for two dumps")
	}
	if cerr, ok := err.(Error); !ok || !cerr.Critical() {
		Te.Error("ambiguous dumps should be critical")
	}
}
