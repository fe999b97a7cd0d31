/*
 * dump.go, part of mlipts.
 *
 *
 * Copyright 2025 William Davie <wdavie{at}uclDOTacDOTuk>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 * mlipts is developed at the Department of Physics and Astronomy,
 * University College London.
 *
 */

package lammps

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/wdavie/mlipts"
	"gonum.org/v1/gonum/mat"
)

// ReadDump locates the md.* dump file of an MD calculation directory and
// parses every snapshot in it. types maps the 1-based LAMMPS atom types to
// chemical symbols.
func ReadDump(dir string, types []string) ([]*mlipts.Config, error) {
	path, err := FindDump(dir)
	if err != nil {
		return nil, errDecorate(err, "ReadDump")
	}
	confs, err := ReadDumpFile(path, types)
	if err != nil {
		return nil, errDecorate(err, "ReadDump")
	}
	return confs, nil
}

// FindDump returns the single md.* dump file in dir. A missing dump is a
// non-critical error: the MD run has not produced it yet.
func FindDump(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", Error{"cannot read the calculation directory", mlipts.ErrBadInput, dir, err.Error(), []string{"FindDump"}, true}
	}
	var dumps []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "md.") {
			dumps = append(dumps, e.Name())
		}
	}
	if len(dumps) == 0 {
		return "", Error{"no md.* dump file", mlipts.ErrNoOutput, dir, "", []string{"FindDump"}, false}
	}
	if len(dumps) > 1 {
		return "", Error{fmt.Sprintf("%d md.* dump files, want one", len(dumps)), mlipts.ErrBadInput, dir, strings.Join(dumps, " "), []string{"FindDump"}, true}
	}
	return filepath.Join(dir, dumps[0]), nil
}

// ReadDumpFile parses a LAMMPS text dump, plain or compressed (.gz, .zst),
// into one configuration per snapshot. Atoms come back sorted by type, then
// id, which is the grouping VASP wants downstream. Only orthorhombic boxes
// are supported.
func ReadDumpFile(path string, types []string) ([]*mlipts.Config, error) {
	r, err := mlipts.DecompressingReader(path)
	if err != nil {
		return nil, Error{"cannot open the dump", mlipts.ErrNoOutput, path, err.Error(), []string{"ReadDumpFile"}, false}
	}
	defer r.Close()
	confs, err := parseDump(r, types, path)
	if err != nil {
		return nil, errDecorate(err, "ReadDumpFile")
	}
	return confs, nil
}

func parseDump(r io.Reader, types []string, path string) ([]*mlipts.Config, error) {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var confs []*mlipts.Config
	for {
		conf, err := parseSnapshot(scan, types, path)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		confs = append(confs, conf)
	}
	if len(confs) == 0 {
		return nil, Error{"dump holds no snapshots", mlipts.ErrTruncated, path, "", []string{"parseDump"}, false}
	}
	return confs, nil
}

// parseSnapshot reads one TIMESTEP/NUMBER OF ATOMS/BOX BOUNDS/ATOMS record.
// It returns io.EOF cleanly when the dump ends between snapshots.
func parseSnapshot(scan *bufio.Scanner, types []string, path string) (*mlipts.Config, error) {
	line, ok := nextLine(scan)
	if !ok {
		return nil, io.EOF
	}
	if !strings.HasPrefix(line, "ITEM: TIMESTEP") {
		return nil, Error{fmt.Sprintf("expected ITEM: TIMESTEP, got %q", line), mlipts.ErrTruncated, path, "", []string{"parseSnapshot"}, false}
	}
	step, err := intLine(scan)
	if err != nil {
		return nil, Error{"cannot read the timestep", mlipts.ErrTruncated, path, err.Error(), []string{"parseSnapshot"}, false}
	}
	line, ok = nextLine(scan)
	if !ok || !strings.HasPrefix(line, "ITEM: NUMBER OF ATOMS") {
		return nil, Error{"expected ITEM: NUMBER OF ATOMS", mlipts.ErrTruncated, path, line, []string{"parseSnapshot"}, false}
	}
	natoms, err := intLine(scan)
	if err != nil || natoms <= 0 {
		return nil, Error{"cannot read the atom count", mlipts.ErrTruncated, path, line, []string{"parseSnapshot"}, false}
	}
	line, ok = nextLine(scan)
	if !ok || !strings.HasPrefix(line, "ITEM: BOX BOUNDS") {
		return nil, Error{"expected ITEM: BOX BOUNDS", mlipts.ErrTruncated, path, line, []string{"parseSnapshot"}, false}
	}
	if strings.Contains(line, "xy") || strings.Contains(line, "xz") || strings.Contains(line, "yz") {
		return nil, Error{"triclinic boxes are not supported", mlipts.ErrBadInput, path, line, []string{"parseSnapshot"}, true}
	}
	var length [3]float64
	for i := 0; i < 3; i++ {
		bounds, ok := nextLine(scan)
		if !ok {
			return nil, Error{"dump ends inside BOX BOUNDS", mlipts.ErrTruncated, path, "", []string{"parseSnapshot"}, false}
		}
		f := strings.Fields(bounds)
		if len(f) < 2 {
			return nil, Error{fmt.Sprintf("malformed box bounds line %q", bounds), mlipts.ErrTruncated, path, "", []string{"parseSnapshot"}, false}
		}
		lo, err1 := strconv.ParseFloat(f[0], 64)
		hi, err2 := strconv.ParseFloat(f[1], 64)
		if err1 != nil || err2 != nil {
			return nil, Error{fmt.Sprintf("malformed box bounds line %q", bounds), mlipts.ErrTruncated, path, "", []string{"parseSnapshot"}, false}
		}
		length[i] = hi - lo
	}
	line, ok = nextLine(scan)
	if !ok || !strings.HasPrefix(line, "ITEM: ATOMS") {
		return nil, Error{"expected ITEM: ATOMS", mlipts.ErrTruncated, path, line, []string{"parseSnapshot"}, false}
	}
	cols, err := atomColumns(line)
	if err != nil {
		return nil, errDecorate(err, "parseSnapshot")
	}
	ids := make([]int, natoms)
	typeNum := make([]int, natoms)
	pos := make([][3]float64, natoms)
	for i := 0; i < natoms; i++ {
		atom, ok := nextLine(scan)
		if !ok {
			return nil, Error{fmt.Sprintf("dump ends at atom %d of %d", i, natoms), mlipts.ErrTruncated, path, "", []string{"parseSnapshot"}, false}
		}
		f := strings.Fields(atom)
		if len(f) < cols.min() {
			return nil, Error{fmt.Sprintf("atom line %q has too few columns", atom), mlipts.ErrTruncated, path, "", []string{"parseSnapshot"}, false}
		}
		ids[i] = i
		if cols.id >= 0 {
			if v, err := strconv.Atoi(f[cols.id]); err == nil {
				ids[i] = v
			}
		}
		t, err := strconv.Atoi(f[cols.typ])
		if err != nil {
			return nil, Error{fmt.Sprintf("bad atom type %q", f[cols.typ]), mlipts.ErrTruncated, path, "", []string{"parseSnapshot"}, false}
		}
		typeNum[i] = t
		for j, c := range [3]int{cols.x, cols.y, cols.z} {
			v, err := strconv.ParseFloat(f[c], 64)
			if err != nil {
				return nil, Error{fmt.Sprintf("bad coordinate %q", f[c]), mlipts.ErrTruncated, path, "", []string{"parseSnapshot"}, false}
			}
			if cols.scaled {
				v *= length[j]
			}
			pos[i][j] = v
		}
	}
	perm := make([]int, natoms)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		if typeNum[perm[a]] != typeNum[perm[b]] {
			return typeNum[perm[a]] < typeNum[perm[b]]
		}
		return ids[perm[a]] < ids[perm[b]]
	})
	symbols := make([]string, natoms)
	coords := mat.NewDense(natoms, 3, nil)
	for to, from := range perm {
		t := typeNum[from]
		if t < 1 || t > len(types) {
			return nil, Error{fmt.Sprintf("atom type %d outside the %d declared types", t, len(types)), mlipts.ErrBadInput, path, "", []string{"parseSnapshot"}, true}
		}
		symbols[to] = types[t-1]
		coords.SetRow(to, pos[from][:])
	}
	cell := mat.NewDense(3, 3, []float64{
		length[0], 0, 0,
		0, length[1], 0,
		0, 0, length[2],
	})
	conf, err := mlipts.NewConfig(symbols, coords, cell)
	if err != nil {
		return nil, errDecorate(err, "parseSnapshot")
	}
	conf.Step = step
	return conf, nil
}

// dumpColumns is the column layout announced by an ITEM: ATOMS header.
type dumpColumns struct {
	id, typ, x, y, z int
	scaled           bool
}

func (d *dumpColumns) min() int {
	m := d.typ
	for _, c := range []int{d.id, d.x, d.y, d.z} {
		if c > m {
			m = c
		}
	}
	return m + 1
}

func atomColumns(header string) (*dumpColumns, error) {
	cols := strings.Fields(header)[2:] //after "ITEM: ATOMS"
	d := &dumpColumns{id: -1, typ: -1, x: -1, y: -1, z: -1}
	for i, c := range cols {
		switch c {
		case "id":
			d.id = i
		case "type":
			d.typ = i
		case "x", "xu":
			d.x = i
		case "y", "yu":
			d.y = i
		case "z", "zu":
			d.z = i
		case "xs":
			d.x = i
			d.scaled = true
		case "ys":
			d.y = i
			d.scaled = true
		case "zs":
			d.z = i
			d.scaled = true
		}
	}
	if d.typ < 0 || d.x < 0 || d.y < 0 || d.z < 0 {
		return nil, Error{fmt.Sprintf("dump columns %q lack type or coordinates", strings.Join(cols, " ")), mlipts.ErrBadInput, "", "", []string{"atomColumns"}, true}
	}
	return d, nil
}

func nextLine(scan *bufio.Scanner) (string, bool) {
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line != "" {
			return line, true
		}
	}
	return "", false
}

func intLine(scan *bufio.Scanner) (int, error) {
	line, ok := nextLine(scan)
	if !ok {
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.Atoi(strings.Fields(line)[0])
}
