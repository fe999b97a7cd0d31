/*
 * errors.go, part of mlipts.
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
	"fmt"

	"github.com/wdavie/mlipts"
)

// Error is the concrete error type for LAMMPS operations. It fulfills
// mlipts.Error and mlipts.CalcError.
type Error struct {
	message  string //human-readable description
	code     string //one of the mlipts.Err* codes
	path     string //the directory or file involved, or empty
	extra    string //any additional information
	deco     []string
	critical bool
}

func (err Error) Error() string {
	s := fmt.Sprintf("lammps %s: %s", err.path, err.message)
	if err.extra != "" {
		s = s + ": " + err.extra
	}
	return s
}

// Decorate adds new information to the error
func (err Error) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and tries to alter the receiver,
	//it should work, since err.deco is a slice, and hence a pointer itself.
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// Critical returns true unless the error only means that one calculation
// has nothing to harvest yet.
func (err Error) Critical() bool { return err.critical }

// Path returns the calculation directory or file the error refers to.
func (err Error) Path() string { return err.path }

// Code returns the machine-checkable reason for the error.
func (err Error) Code() string { return err.code }

// errDecorate asserts that err implements mlipts.Error and decorates it with
// the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(mlipts.Error)
	err2.Decorate(caller)
	return err2
}
