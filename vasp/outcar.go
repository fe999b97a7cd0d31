/*
 * outcar.go, part of mlipts.
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

package vasp

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wdavie/mlipts"
	"gonum.org/v1/gonum/mat"
)

// OUTCARName is the file the parser looks for in a calculation directory.
// Compressed variants (OUTCAR.gz, OUTCAR.zst) are also accepted.
const OUTCARName = "OUTCAR"

// The strings that mark the OUTCAR records we harvest.
const (
	markerSpecies   = "VRHFIN ="
	markerCounts    = "ions per type"
	markerLattice   = "direct lattice vectors"
	markerForces    = "TOTAL-FORCE"
	markerEnergy    = "free  energy   TOTEN"
	markerLoopEnd   = "aborting loop"
	markerConverged = "because EDIFF is reached"
	markerFinished  = "General timing and accounting"
)

// Result holds everything harvested from one OUTCAR. Cell, Positions and
// Forces refer to the last ionic step printed; Energy is the last
// free-energy TOTEN. Symbols has one entry per atom, grouped by species in
// POSCAR order.
type Result struct {
	Symbols   []string
	Cell      *mat.Dense
	Positions *mat.Dense
	Forces    *mat.Dense
	Energy    float64
	HasEnergy bool
	Converged bool
	Finished  bool
}

// Config assembles the result into a labelled configuration. It fails if
// the OUTCAR lacked any of the cell, the positions or the species records.
func (R *Result) Config() (*mlipts.Config, error) {
	if R.Cell == nil || R.Positions == nil || len(R.Symbols) == 0 {
		return nil, Error{"result lacks cell, positions or species", mlipts.ErrTruncated, "", "", []string{"Config"}, true}
	}
	conf, err := mlipts.NewConfig(R.Symbols, R.Positions, R.Cell)
	if err != nil {
		return nil, errDecorate(err, "Config")
	}
	conf.Forces = R.Forces
	conf.Energy = R.Energy
	conf.HasEnergy = R.HasEnergy
	if err := conf.Check(); err != nil {
		return nil, errDecorate(err, "Config")
	}
	return conf, nil
}

// ReadOUTCAR finds and parses the OUTCAR of a calculation directory. A
// missing OUTCAR is a non-critical error with code mlipts.ErrNoOutput, as it
// normally just means the calculation has not run yet.
func ReadOUTCAR(dir string) (*Result, error) {
	name, err := findOUTCAR(dir)
	if err != nil {
		return nil, errDecorate(err, "ReadOUTCAR")
	}
	res, err := ReadOUTCARFile(name)
	if err != nil {
		return nil, errDecorate(err, "ReadOUTCAR")
	}
	return res, nil
}

// ReadOUTCARFile parses the OUTCAR file name, decompressing it if its suffix
// asks for that.
func ReadOUTCARFile(name string) (*Result, error) {
	r, err := mlipts.DecompressingReader(name)
	if err != nil {
		return nil, Error{"cannot open the OUTCAR", mlipts.ErrNoOutput, name, err.Error(), []string{"ReadOUTCARFile"}, false}
	}
	defer r.Close()
	res, err := parseOUTCAR(r, name)
	if err != nil {
		return nil, errDecorate(err, "ReadOUTCARFile")
	}
	return res, nil
}

// Harvest reads the calculation in dir and returns its labelled
// configuration. Calculations that are missing, still running or
// unconverged produce non-critical errors, so a caller harvesting a batch
// can skip them and keep going.
func Harvest(dir string) (*mlipts.Config, error) {
	res, err := ReadOUTCAR(dir)
	if err != nil {
		return nil, errDecorate(err, "Harvest")
	}
	if !res.Finished {
		return nil, Error{"run has not terminated", mlipts.ErrNotFinished, dir, "", []string{"Harvest"}, false}
	}
	if !res.Converged {
		return nil, Error{"electronic minimisation did not converge", mlipts.ErrUnconverged, dir, "", []string{"Harvest"}, false}
	}
	conf, err := res.Config()
	if err != nil {
		return nil, errDecorate(err, "Harvest")
	}
	return conf, nil
}

// Finished reports whether the calculation in dir has written its final
// timing report. It reads the OUTCAR backwards without parsing it, so it is
// cheap enough to poll on a running batch. Compressed OUTCARs are not
// polled, only finished runs get compressed.
func Finished(dir string) bool {
	return searchBackwards(markerFinished, filepath.Join(dir, OUTCARName)) != ""
}

func findOUTCAR(dir string) (string, error) {
	for _, suffix := range []string{"", ".gz", ".zst"} {
		name := filepath.Join(dir, OUTCARName+suffix)
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", Error{"no OUTCAR in directory", mlipts.ErrNoOutput, dir, "", []string{"findOUTCAR"}, false}
}

func parseOUTCAR(r io.Reader, path string) (*Result, error) {
	res := new(Result)
	var species []string
	var counts []int
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.Contains(line, markerSpecies):
			after := line[strings.Index(line, markerSpecies)+len(markerSpecies):]
			sym, _, found := strings.Cut(after, ":")
			if !found {
				continue
			}
			//some VASP builds echo the pseudopotential blocks twice, and a
			//POTCAR never repeats an element, so duplicates can be dropped
			if s := strings.TrimSpace(sym); !contains(species, s) {
				species = append(species, s)
			}
		case strings.Contains(line, markerCounts):
			_, after, found := strings.Cut(line, "=")
			if !found {
				continue
			}
			counts = counts[:0]
			for _, field := range strings.Fields(after) {
				n, err := strconv.Atoi(field)
				if err != nil {
					return nil, Error{"malformed ions-per-type record", mlipts.ErrTruncated, path, line, []string{"parseOUTCAR"}, true}
				}
				counts = append(counts, n)
			}
		case strings.Contains(line, markerLattice):
			if cell := readLattice(scanner); cell != nil {
				res.Cell = cell
			}
		case strings.Contains(line, markerForces) && strings.Contains(line, "POSITION"):
			pos, forces := readForceBlock(scanner)
			if pos != nil {
				res.Positions = pos
				res.Forces = forces
			}
		case strings.Contains(line, markerEnergy):
			if e, ok := energyField(line); ok {
				res.Energy = e
				res.HasEnergy = true
			}
		case strings.Contains(line, markerLoopEnd):
			res.Converged = strings.Contains(line, markerConverged)
		case strings.Contains(line, markerFinished):
			res.Finished = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, Error{err.Error(), mlipts.ErrTruncated, path, "", []string{"parseOUTCAR"}, true}
	}
	if len(species) != len(counts) {
		return nil, Error{"species and ions-per-type records disagree", mlipts.ErrTruncated, path, "", []string{"parseOUTCAR"}, true}
	}
	for i, sym := range species {
		for j := 0; j < counts[i]; j++ {
			res.Symbols = append(res.Symbols, sym)
		}
	}
	if res.Positions != nil && len(res.Symbols) != rows(res.Positions) {
		return nil, Error{"force table does not match the ion count", mlipts.ErrTruncated, path, "", []string{"parseOUTCAR"}, true}
	}
	return res, nil
}

// readLattice reads the 3 cell rows following a direct-lattice header. Each
// row carries the direct vector and then the reciprocal one; only the first
// 3 columns matter. An incomplete block, as seen while the file is still
// being written, is discarded by returning nil.
func readLattice(scanner *bufio.Scanner) *mat.Dense {
	cell := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		if !scanner.Scan() {
			return nil
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return nil
		}
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil
			}
			cell.Set(i, j, v)
		}
	}
	return cell
}

// readForceBlock reads the position/force table that follows its header: a
// dashed rule, one row of 6 floats per atom, and a closing dashed rule. A
// block cut short by the end of the file is discarded, the run is simply
// not done writing it.
func readForceBlock(scanner *bufio.Scanner) (pos, forces *mat.Dense) {
	if !scanner.Scan() { //the opening dashes
		return nil, nil
	}
	var posData, forceData []float64
	n := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "---") {
			if n == 0 {
				return nil, nil
			}
			return mat.NewDense(n, 3, posData), mat.NewDense(n, 3, forceData)
		}
		fields := strings.Fields(line)
		if len(fields) < 6 {
			return nil, nil
		}
		row := make([]float64, 6)
		for i := 0; i < 6; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, nil
			}
			row[i] = v
		}
		posData = append(posData, row[0], row[1], row[2])
		forceData = append(forceData, row[3], row[4], row[5])
		n++
	}
	return nil, nil
}

// energyField pulls the value out of a "free  energy   TOTEN  =  x eV" line.
func energyField(line string) (float64, bool) {
	fields := strings.Fields(line)
	for i, f := range fields {
		if f == "=" && i+1 < len(fields) {
			e, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return 0, false
			}
			return e, true
		}
	}
	return 0, false
}

func rows(m *mat.Dense) int {
	r, _ := m.Dims()
	return r
}

func contains(container []string, test string) bool {
	for _, s := range container {
		if s == test {
			return true
		}
	}
	return false
}

// searchBackwards scans a file from the end, one line at a time, and returns
// the first line found that contains str, or an empty string. Adapted for
// OUTCARs, where the interesting markers sit at the bottom of files that can
// be hundreds of MB long.
func searchBackwards(str, filename string) string {
	var ini int64 = 0
	var end int64 = 0
	buf := make([]byte, 1)
	f, err := os.Open(filename)
	if err != nil {
		return ""
	}
	defer f.Close()
	var i int64 = 1
	for ; ; i++ {
		if _, err := f.Seek(-1*i, 2); err != nil {
			return ""
		}
		if _, err := f.Read(buf); err != nil {
			return ""
		}
		if buf[0] == byte('\n') && end == 0 {
			end = i
		} else if buf[0] == byte('\n') && ini == 0 {
			ini = i
			f.Seek(-1*ini, 2)
			bufF := make([]byte, ini-end)
			f.Read(bufF)
			if strings.Contains(string(bufF), str) {
				return string(bufF)
			}
			end = 0
			ini = 0
		}
	}
}
