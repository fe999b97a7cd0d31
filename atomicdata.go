/*
 * atomicdata.go, part of mlipts.
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

import "fmt"

//A map for assigning mass to elements.
//Only elements reasonably common in materials work are present,
//plus the early actinides.
var symbolMass = map[string]float64{
	"H":  1.008,
	"He": 4.0026,
	"Li": 6.94,
	"Be": 9.012,
	"B":  10.81,
	"C":  12.011,
	"N":  14.007,
	"O":  15.999,
	"F":  18.998,
	"Ne": 20.180,
	"Na": 22.990,
	"Mg": 24.305,
	"Al": 26.982,
	"Si": 28.085,
	"P":  30.974,
	"S":  32.06,
	"Cl": 35.45,
	"Ar": 39.95,
	"K":  39.098,
	"Ca": 40.078,
	"Ti": 47.867,
	"V":  50.942,
	"Cr": 51.996,
	"Mn": 54.938,
	"Fe": 55.845,
	"Co": 58.933,
	"Ni": 58.693,
	"Cu": 63.546,
	"Zn": 65.38,
	"Ga": 69.723,
	"Ge": 72.630,
	"As": 74.922,
	"Se": 78.971,
	"Br": 79.904,
	"Kr": 83.798,
	"Sr": 87.62,
	"Y":  88.906,
	"Zr": 91.224,
	"Nb": 92.906,
	"Mo": 95.95,
	"Ru": 101.07,
	"Rh": 102.91,
	"Pd": 106.42,
	"Ag": 107.87,
	"Cd": 112.41,
	"In": 114.82,
	"Sn": 118.71,
	"Sb": 121.76,
	"Te": 127.60,
	"I":  126.90,
	"Xe": 131.29,
	"Cs": 132.91,
	"Ba": 137.33,
	"Hf": 178.49,
	"Ta": 180.95,
	"W":  183.84,
	"Re": 186.21,
	"Os": 190.23,
	"Ir": 192.22,
	"Pt": 195.08,
	"Au": 196.97,
	"Hg": 200.59,
	"Pb": 207.2,
	"Bi": 208.98,
	"Th": 232.04,
	"U":  238.03,
	"Pu": 244.0,
}

//A map for assigning atomic numbers to elements.
//Covers the same set as symbolMass.
var symbolNumber = map[string]int{
	"H":  1,
	"He": 2,
	"Li": 3,
	"Be": 4,
	"B":  5,
	"C":  6,
	"N":  7,
	"O":  8,
	"F":  9,
	"Ne": 10,
	"Na": 11,
	"Mg": 12,
	"Al": 13,
	"Si": 14,
	"P":  15,
	"S":  16,
	"Cl": 17,
	"Ar": 18,
	"K":  19,
	"Ca": 20,
	"Ti": 22,
	"V":  23,
	"Cr": 24,
	"Mn": 25,
	"Fe": 26,
	"Co": 27,
	"Ni": 28,
	"Cu": 29,
	"Zn": 30,
	"Ga": 31,
	"Ge": 32,
	"As": 33,
	"Se": 34,
	"Br": 35,
	"Kr": 36,
	"Sr": 38,
	"Y":  39,
	"Zr": 40,
	"Nb": 41,
	"Mo": 42,
	"Ru": 44,
	"Rh": 45,
	"Pd": 46,
	"Ag": 47,
	"Cd": 48,
	"In": 49,
	"Sn": 50,
	"Sb": 51,
	"Te": 52,
	"I":  53,
	"Xe": 54,
	"Cs": 55,
	"Ba": 56,
	"Hf": 72,
	"Ta": 73,
	"W":  74,
	"Re": 75,
	"Os": 76,
	"Ir": 77,
	"Pt": 78,
	"Au": 79,
	"Hg": 80,
	"Pb": 82,
	"Bi": 83,
	"Th": 90,
	"U":  92,
	"Pu": 94,
}

// KnownElement returns whether sym is a chemical symbol this library has data
// for. Useful to validate user-supplied atom type lists before they reach a
// generated input.
func KnownElement(sym string) bool {
	_, ok := symbolMass[sym]
	return ok
}

// AtomicMass returns the mass of the element sym, in Da.
func AtomicMass(sym string) (float64, error) {
	m, ok := symbolMass[sym]
	if !ok {
		return 0, CError{fmt.Sprintf("no mass for element %q", sym), []string{"AtomicMass"}}
	}
	return m, nil
}

// AtomicNumber returns the atomic number of the element sym.
func AtomicNumber(sym string) (int, error) {
	z, ok := symbolNumber[sym]
	if !ok {
		return 0, CError{fmt.Sprintf("no atomic number for element %q", sym), []string{"AtomicNumber"}}
	}
	return z, nil
}
