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

package mlipts

import "errors"

// Error is the interface for errors that all packages in this library implement. The Decorate
// method allows to add and retrieve info from the error, without changing its type or wrapping
// it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //Decorate adds information when the error is passed up, and returns the current decoration slice. An empty string only returns the slice. The slice should contain the functions in the calling stack, each optionally followed by extra info as in "FunctionName: Extra info".
}

// CalcError is the interface for errors produced while building, running or harvesting
// an external calculation. Path points at the offending calculation directory or file.
// Code is a short, stable identifier that callers can dispatch on.
type CalcError interface {
	Error
	Critical() bool
	Path() string
	Code() string
}

// Codes for CalcError implementations. Non-critical codes mark calculations
// that a collection pass reports and skips, instead of aborting on.
const (
	ErrNoOutput    = "no-output"    //the calculation has not produced its output file
	ErrNotFinished = "not-finished" //the output exists but the run has not terminated
	ErrUnconverged = "unconverged"  //the electronic minimisation did not converge
	ErrTruncated   = "truncated"    //the output ends mid-record
	ErrBadInput    = "bad-input"    //a base or generated input is missing or malformed
	ErrBadTime     = "bad-time"     //a walltime does not have the HH:MM:SS format
)

// IsCritical returns false only for errors that implement CalcError and report
// themselves non-critical, i.e. failures of a single calculation that a batch
// operation can skip. Everything else, nil excluded, is critical.
func IsCritical(err error) bool {
	if err == nil {
		return false
	}
	var c CalcError
	if errors.As(err, &c) {
		return c.Critical()
	}
	return true
}

// CError is the concrete error type of the root package. It implements Error.
type CError struct {
	msg  string
	deco []string
}

func (err CError) Error() string { return err.msg }

// Decorate adds new information to the error
func (err CError) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and tries to alter the receiver,
	//it should work, since err.deco is a slice, and hence a pointer itself.
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// errDecorate asserts that err implements Error and decorates it with the
// caller's name before returning it. Panics on any other error type.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}
