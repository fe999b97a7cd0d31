/*
 * xyz.go, part of mlipts.
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

package mlipts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// XYZOptions sets the property key names used in the comment line of
// extended-XYZ frames. Training sets labelled by different codes keep their
// labels apart by key name (say, energy_xtb vs energy).
type XYZOptions struct {
	EnergyKey string
	ForcesKey string
}

// DefaultXYZOptions returns the key names used by MACE and friends: "energy"
// and "forces".
func DefaultXYZOptions() *XYZOptions {
	return &XYZOptions{EnergyKey: "energy", ForcesKey: "forces"}
}

// WriteXYZ writes conf to w as one extended-XYZ frame: the atom count, a
// comment line with Lattice, Properties, the energy (if the configuration
// has one) and pbc, and one line per atom with the symbol, the Cartesian
// position and, if present, the force.
func WriteXYZ(w io.Writer, conf *Config, opts ...*XYZOptions) error {
	o := DefaultXYZOptions()
	if len(opts) > 0 && opts[0] != nil {
		o = opts[0]
	}
	if err := conf.Check(); err != nil {
		return errDecorate(err, "WriteXYZ")
	}
	if _, err := fmt.Fprintf(w, "%d\n%s\n", conf.Len(), xyzComment(conf, o)); err != nil {
		return CError{err.Error(), []string{"WriteXYZ"}}
	}
	for i, sym := range conf.Symbols {
		fmt.Fprintf(w, "%-2s %15.8f %15.8f %15.8f", sym,
			conf.Coords.At(i, 0), conf.Coords.At(i, 1), conf.Coords.At(i, 2))
		if conf.Forces != nil {
			fmt.Fprintf(w, " %15.8f %15.8f %15.8f",
				conf.Forces.At(i, 0), conf.Forces.At(i, 1), conf.Forces.At(i, 2))
		}
		if _, err := fmt.Fprint(w, "\n"); err != nil {
			return CError{err.Error(), []string{"WriteXYZ"}}
		}
	}
	return nil
}

func xyzComment(conf *Config, o *XYZOptions) string {
	var b strings.Builder
	if conf.Cell != nil {
		c := conf.Cell
		fmt.Fprintf(&b, "Lattice=\"%.8f %.8f %.8f %.8f %.8f %.8f %.8f %.8f %.8f\" ",
			c.At(0, 0), c.At(0, 1), c.At(0, 2),
			c.At(1, 0), c.At(1, 1), c.At(1, 2),
			c.At(2, 0), c.At(2, 1), c.At(2, 2))
	}
	b.WriteString("Properties=species:S:1:pos:R:3")
	if conf.Forces != nil {
		b.WriteString(":" + o.ForcesKey + ":R:3")
	}
	if conf.HasEnergy {
		fmt.Fprintf(&b, " %s=%.8f", o.EnergyKey, conf.Energy)
	}
	pbc := [3]string{"F", "F", "F"}
	for i, p := range conf.PBC {
		if p {
			pbc[i] = "T"
		}
	}
	fmt.Fprintf(&b, " pbc=\"%s %s %s\"", pbc[0], pbc[1], pbc[2])
	return b.String()
}

// XYZScanner reads XYZ or extended-XYZ frames one at a time, so sets too
// large to hold in memory can be streamed.
type XYZScanner struct {
	buf  *bufio.Reader
	opts *XYZOptions
}

// NewXYZScanner returns a scanner over the frames of r.
func NewXYZScanner(r io.Reader, opts ...*XYZOptions) *XYZScanner {
	o := DefaultXYZOptions()
	if len(opts) > 0 && opts[0] != nil {
		o = opts[0]
	}
	return &XYZScanner{buf: bufio.NewReader(r), opts: o}
}

// Next returns the next frame, or io.EOF when the stream ends cleanly
// between frames.
func (X *XYZScanner) Next() (*Config, error) {
	conf, err := readXYZFrame(X.buf, X.opts)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, errDecorate(err, "Next")
	}
	return conf, nil
}

// ReadXYZ reads every frame from an XYZ or extended-XYZ stream. Plain XYZ
// frames (no Properties in the comment line) are read as aperiodic, unlabelled
// configurations. Forces are recognised under the ForcesKey name or the plain
// "forces" key, and likewise for the energy.
func ReadXYZ(r io.Reader, opts ...*XYZOptions) ([]*Config, error) {
	scanner := NewXYZScanner(r, opts...)
	var configs []*Config
	for {
		conf, err := scanner.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errDecorate(err, "ReadXYZ")
		}
		configs = append(configs, conf)
	}
	if len(configs) == 0 {
		return nil, CError{"empty XYZ stream", []string{"ReadXYZ"}}
	}
	return configs, nil
}

// ReadXYZFile reads every frame of the XYZ or extended-XYZ file xyzname.
func ReadXYZFile(xyzname string, opts ...*XYZOptions) ([]*Config, error) {
	f, err := os.Open(xyzname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	confs, err := ReadXYZ(f, opts...)
	if err != nil {
		return nil, errDecorate(err, "ReadXYZFile: "+xyzname)
	}
	return confs, nil
}

// readXYZFrame reads one frame, returning io.EOF cleanly when the stream ends
// between frames and an error when it ends inside one.
func readXYZFrame(buf *bufio.Reader, o *XYZOptions) (*Config, error) {
	line, err := buf.ReadString('\n')
	for err == nil && strings.TrimSpace(line) == "" {
		line, err = buf.ReadString('\n')
	}
	if strings.TrimSpace(line) == "" {
		return nil, io.EOF //only blanks left
	}
	natoms, err2 := strconv.Atoi(strings.TrimSpace(line))
	if err2 != nil {
		return nil, CError{fmt.Sprintf("malformed atom count line %q", strings.TrimSpace(line)), []string{"readXYZFrame"}}
	}
	if natoms <= 0 {
		return nil, CError{fmt.Sprintf("nonsensical atom count %d", natoms), []string{"readXYZFrame"}}
	}
	comment, err := buf.ReadString('\n')
	if err != nil && comment == "" {
		return nil, CError{"stream ends before the comment line", []string{"readXYZFrame"}}
	}
	lay, err := parseXYZComment(strings.TrimRight(comment, "\n"), o)
	if err != nil {
		return nil, errDecorate(err, "readXYZFrame")
	}
	conf := &Config{
		Symbols:   make([]string, natoms),
		Coords:    mat.NewDense(natoms, 3, nil),
		Cell:      lay.cell,
		Energy:    lay.energy,
		HasEnergy: lay.hasEnergy,
		PBC:       lay.pbc,
	}
	if lay.forcesCol >= 0 {
		conf.Forces = mat.NewDense(natoms, 3, nil)
	}
	for i := 0; i < natoms; i++ {
		line, err := buf.ReadString('\n')
		if err != nil && line == "" {
			return nil, CError{fmt.Sprintf("stream ends at atom %d of %d", i, natoms), []string{"readXYZFrame"}}
		}
		fields := strings.Fields(line)
		if len(fields) < lay.minFields() {
			return nil, CError{fmt.Sprintf("atom line %d has %d fields, want at least %d", i, len(fields), lay.minFields()), []string{"readXYZFrame"}}
		}
		conf.Symbols[i] = fields[lay.symCol]
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[lay.posCol+j], 64)
			if err != nil {
				return nil, CError{fmt.Sprintf("atom line %d: bad coordinate %q", i, fields[lay.posCol+j]), []string{"readXYZFrame"}}
			}
			conf.Coords.Set(i, j, v)
		}
		if lay.forcesCol >= 0 {
			for j := 0; j < 3; j++ {
				v, err := strconv.ParseFloat(fields[lay.forcesCol+j], 64)
				if err != nil {
					return nil, CError{fmt.Sprintf("atom line %d: bad force %q", i, fields[lay.forcesCol+j]), []string{"readXYZFrame"}}
				}
				conf.Forces.Set(i, j, v)
			}
		}
	}
	return conf, nil
}

// xyzLayout is the column and metadata layout extracted from a comment line.
type xyzLayout struct {
	symCol    int
	posCol    int
	forcesCol int //-1 when the frame carries no forces
	cell      *mat.Dense
	energy    float64
	hasEnergy bool
	pbc       [3]bool
}

func (l *xyzLayout) minFields() int {
	min := l.posCol + 3
	if l.forcesCol >= 0 && l.forcesCol+3 > min {
		min = l.forcesCol + 3
	}
	if l.symCol+1 > min {
		min = l.symCol + 1
	}
	return min
}

func parseXYZComment(comment string, o *XYZOptions) (*xyzLayout, error) {
	kv := splitKeyValues(comment)
	lay := &xyzLayout{symCol: 0, posCol: 1, forcesCol: -1}
	if lat, ok := kv["Lattice"]; ok {
		f := strings.Fields(lat)
		if len(f) != 9 {
			return nil, CError{fmt.Sprintf("Lattice needs 9 components, got %d", len(f)), []string{"parseXYZComment"}}
		}
		vals := make([]float64, 9)
		for i, s := range f {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, CError{fmt.Sprintf("bad Lattice component %q", s), []string{"parseXYZComment"}}
			}
			vals[i] = v
		}
		lay.cell = mat.NewDense(3, 3, vals)
		lay.pbc = [3]bool{true, true, true}
	}
	if props, ok := kv["Properties"]; ok {
		if err := lay.parseProperties(props, o); err != nil {
			return nil, errDecorate(err, "parseXYZComment")
		}
	}
	for _, key := range []string{o.EnergyKey, "energy"} {
		if e, ok := kv[key]; ok {
			v, err := strconv.ParseFloat(e, 64)
			if err != nil {
				return nil, CError{fmt.Sprintf("bad %s value %q", key, e), []string{"parseXYZComment"}}
			}
			lay.energy = v
			lay.hasEnergy = true
			break
		}
	}
	if p, ok := kv["pbc"]; ok {
		f := strings.Fields(p)
		for i := 0; i < 3 && i < len(f); i++ {
			lay.pbc[i] = strings.EqualFold(f[i], "T") || strings.EqualFold(f[i], "true")
		}
	}
	return lay, nil
}

// parseProperties walks the colon-separated name:type:ncols triplets of an
// extended-XYZ Properties value, accumulating column offsets.
func (l *xyzLayout) parseProperties(props string, o *XYZOptions) error {
	fields := strings.Split(props, ":")
	if len(fields)%3 != 0 {
		return CError{fmt.Sprintf("malformed Properties %q", props), []string{"parseProperties"}}
	}
	col := 0
	l.symCol, l.posCol = -1, -1
	for i := 0; i < len(fields); i += 3 {
		name, typ := fields[i], fields[i+1]
		ncols, err := strconv.Atoi(fields[i+2])
		if err != nil || ncols < 1 {
			return CError{fmt.Sprintf("malformed Properties column count %q", fields[i+2]), []string{"parseProperties"}}
		}
		switch {
		case name == "species" && typ == "S":
			l.symCol = col
		case name == "pos" && typ == "R" && ncols == 3:
			l.posCol = col
		case (name == o.ForcesKey || name == "forces") && typ == "R" && ncols == 3:
			l.forcesCol = col
		}
		col += ncols
	}
	if l.symCol < 0 || l.posCol < 0 {
		return CError{fmt.Sprintf("Properties %q lack species or pos", props), []string{"parseProperties"}}
	}
	return nil
}

// splitKeyValues tokenizes an extended-XYZ comment line into key=value pairs,
// honouring double quotes around values. Bare words are ignored.
func splitKeyValues(line string) map[string]string {
	kv := make(map[string]string)
	i := 0
	n := len(line)
	for i < n {
		for i < n && line[i] == ' ' {
			i++
		}
		start := i
		for i < n && line[i] != '=' && line[i] != ' ' {
			i++
		}
		if i >= n || line[i] != '=' {
			continue //a bare word, skip it
		}
		key := line[start:i]
		i++ //skip '='
		var val string
		if i < n && line[i] == '"' {
			i++
			vstart := i
			for i < n && line[i] != '"' {
				i++
			}
			val = line[vstart:i]
			if i < n {
				i++ //closing quote
			}
		} else {
			vstart := i
			for i < n && line[i] != ' ' {
				i++
			}
			val = line[vstart:i]
		}
		kv[key] = val
	}
	return kv
}
