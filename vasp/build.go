/*
 * build.go, part of mlipts.
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
	"os"
	"path/filepath"

	"github.com/wdavie/mlipts"
	"github.com/wdavie/mlipts/lammps"
)

// RequiredFiles are the inputs a base directory must provide for every
// calculation. The POSCAR is excluded as it is written per snapshot.
var RequiredFiles = []string{"INCAR", "KPOINTS", "POTCAR"}

// CheckBase verifies that base holds the files in RequiredFiles and no
// POSCAR. A POSCAR in the base would silently override the per-snapshot
// geometry, so its presence is an error.
func CheckBase(base string) error {
	for _, name := range RequiredFiles {
		if _, err := os.Stat(filepath.Join(base, name)); err != nil {
			return Error{"base directory lacks " + name, mlipts.ErrBadInput, base, "", []string{"CheckBase"}, true}
		}
	}
	if _, err := os.Stat(filepath.Join(base, "POSCAR")); err == nil {
		return Error{"base directory contains a POSCAR, which would override the built geometries", mlipts.ErrBadInput, base, "", []string{"CheckBase"}, true}
	}
	return nil
}

// BuildCalc builds a single calculation directory outdir/name: the contents
// of base plus a POSCAR for conf. Atoms are sorted by species first, so the
// caller's configuration is not modified. It returns the path of the new
// directory.
func BuildCalc(base string, conf *mlipts.Config, name, outdir string) (string, error) {
	if err := CheckBase(base); err != nil {
		return "", errDecorate(err, "BuildCalc")
	}
	dir := filepath.Join(outdir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", Error{err.Error(), mlipts.ErrBadInput, dir, "", []string{"BuildCalc"}, true}
	}
	if err := mlipts.CopyDirContents(base, dir); err != nil {
		return "", errDecorate(err, "BuildCalc")
	}
	sorted := conf.Copy()
	sorted.SortBySpecies()
	if err := WritePOSCARFile(filepath.Join(dir, "POSCAR"), sorted); err != nil {
		return "", errDecorate(err, "BuildCalc")
	}
	return dir, nil
}

// BuildForConfigs builds one calculation per configuration under outdir,
// named vasp_step_<step> after each configuration's MD timestep. The steps
// must be distinct within one call, which holds for the snapshots of a
// single trajectory.
func BuildForConfigs(base string, confs []*mlipts.Config, outdir string) ([]string, error) {
	if len(confs) == 0 {
		return nil, Error{"no configurations to build", mlipts.ErrBadInput, outdir, "", []string{"BuildForConfigs"}, true}
	}
	seen := make(map[int]bool, len(confs))
	dirs := make([]string, 0, len(confs))
	for _, conf := range confs {
		if seen[conf.Step] {
			return nil, Error{"duplicate timestep among configurations", mlipts.ErrBadInput, outdir, fmt.Sprintf("step %d", conf.Step), []string{"BuildForConfigs"}, true}
		}
		seen[conf.Step] = true
		dir, err := BuildCalc(base, conf, fmt.Sprintf("vasp_step_%d", conf.Step), outdir)
		if err != nil {
			return nil, errDecorate(err, "BuildForConfigs")
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

// BuildFromDump reads the trajectory of the MD directory mdDir and builds
// one calculation per snapshot under outdir. types maps LAMMPS atom type
// numbers to element symbols, as in lammps.ReadDump.
func BuildFromDump(base, mdDir string, types []string, outdir string) ([]string, error) {
	confs, err := lammps.ReadDump(mdDir, types)
	if err != nil {
		return nil, errDecorate(err, "BuildFromDump")
	}
	dirs, err := BuildForConfigs(base, confs, outdir)
	if err != nil {
		return nil, errDecorate(err, "BuildFromDump")
	}
	return dirs, nil
}
