/*
 * poscar.go, part of mlipts.
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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wdavie/mlipts"
)

// POSCARString renders conf as a POSCAR in the "Direct" (fractional
// coordinates) format. The atoms must be grouped by species, with all atoms
// of each element contiguous, as the POSCAR format stores only one count per
// element. Call Config.SortBySpecies first if needed.
func POSCARString(conf *mlipts.Config) (string, error) {
	if conf.Cell == nil {
		return "", Error{"configuration has no cell", mlipts.ErrBadInput, "", "", []string{"POSCARString"}, true}
	}
	if !conf.GroupedBySpecies() {
		return "", Error{"atoms are not grouped by species", mlipts.ErrBadInput, "", "", []string{"POSCARString"}, true}
	}
	frac, err := conf.Frac()
	if err != nil {
		return "", errDecorate(err, "POSCARString")
	}
	species, counts := conf.Species()
	var b strings.Builder
	b.WriteString("System\n 1.0\n")
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, "   %13.8f %13.8f %13.8f\n", conf.Cell.At(i, 0), conf.Cell.At(i, 1), conf.Cell.At(i, 2))
	}
	for _, s := range species {
		fmt.Fprintf(&b, " %s", s)
	}
	b.WriteString("\n")
	for _, n := range counts {
		fmt.Fprintf(&b, " %d", n)
	}
	b.WriteString("\nDirect\n")
	for i := 0; i < conf.Len(); i++ {
		fmt.Fprintf(&b, "   %13.8f %13.8f %13.8f\n", frac.At(i, 0), frac.At(i, 1), frac.At(i, 2))
	}
	return b.String(), nil
}

// WritePOSCAR writes conf to w in the POSCAR format, under the same
// conditions as POSCARString.
func WritePOSCAR(w io.Writer, conf *mlipts.Config) error {
	s, err := POSCARString(conf)
	if err != nil {
		return errDecorate(err, "WritePOSCAR")
	}
	_, err = io.WriteString(w, s)
	if err != nil {
		return Error{err.Error(), mlipts.ErrBadInput, "", "", []string{"WritePOSCAR"}, true}
	}
	return nil
}

// WritePOSCARFile writes conf to the file name in the POSCAR format.
func WritePOSCARFile(name string, conf *mlipts.Config) error {
	f, err := os.Create(name)
	if err != nil {
		return Error{err.Error(), mlipts.ErrBadInput, name, "", []string{"WritePOSCARFile"}, true}
	}
	defer f.Close()
	err = WritePOSCAR(f, conf)
	if err != nil {
		return errDecorate(err, "WritePOSCARFile")
	}
	return nil
}
