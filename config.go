/*
 * config.go, part of mlipts.
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
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Config is a single atomic configuration: chemical symbols, lattice vectors
// and Cartesian coordinates, plus the total energy and per-atom forces once
// some code has labelled it.
type Config struct {
	Symbols   []string
	Cell      *mat.Dense //3x3 lattice vectors, one per row. nil for aperiodic systems.
	Coords    *mat.Dense //Nx3 Cartesian coordinates, in A.
	Forces    *mat.Dense //Nx3 forces, in eV/A. nil until labelled.
	Energy    float64    //total energy in eV. Meaningless unless HasEnergy.
	HasEnergy bool
	PBC       [3]bool
	Step      int //MD timestep this configuration was extracted from, if any.
}

// NewConfig builds a configuration from symbols, Nx3 Cartesian coordinates and
// an optional 3x3 cell (nil for aperiodic systems). A non-nil cell sets
// periodicity in the three directions.
func NewConfig(symbols []string, coords, cell *mat.Dense) (*Config, error) {
	c := &Config{Symbols: symbols, Coords: coords, Cell: cell}
	if cell != nil {
		c.PBC = [3]bool{true, true, true}
	}
	if err := c.Check(); err != nil {
		return nil, errDecorate(err, "NewConfig")
	}
	return c, nil
}

// Check verifies that the configuration is self-consistent: the coordinate
// and force matrices match the number of atoms and have 3 columns, and the
// cell, if present, is 3x3.
func (C *Config) Check() error {
	if len(C.Symbols) == 0 {
		return CError{"config has no atoms", []string{"Check"}}
	}
	if C.Coords == nil {
		return CError{"config has no coordinates", []string{"Check"}}
	}
	r, c := C.Coords.Dims()
	if r != len(C.Symbols) || c != 3 {
		return CError{fmt.Sprintf("inconsistent coordinates: %d atoms but a %dx%d coordinate matrix", len(C.Symbols), r, c), []string{"Check"}}
	}
	if C.Forces != nil {
		fr, fc := C.Forces.Dims()
		if fr != r || fc != 3 {
			return CError{fmt.Sprintf("inconsistent forces: %d atoms but a %dx%d force matrix", r, fr, fc), []string{"Check"}}
		}
	}
	if C.Cell != nil {
		cr, cc := C.Cell.Dims()
		if cr != 3 || cc != 3 {
			return CError{fmt.Sprintf("cell must be 3x3, got %dx%d", cr, cc), []string{"Check"}}
		}
	}
	return nil
}

// Len returns the number of atoms in the configuration.
func (C *Config) Len() int {
	return len(C.Symbols)
}

// Species returns the distinct chemical symbols in order of first appearance,
// and the number of atoms of each.
func (C *Config) Species() ([]string, []int) {
	var order []string
	counts := make(map[string]int)
	for _, s := range C.Symbols {
		if counts[s] == 0 {
			order = append(order, s)
		}
		counts[s]++
	}
	n := make([]int, len(order))
	for i, s := range order {
		n[i] = counts[s]
	}
	return order, n
}

// GroupedBySpecies returns whether the atoms of each species form a single
// contiguous block, as VASP requires.
func (C *Config) GroupedBySpecies() bool {
	seen := make(map[string]bool)
	for i, s := range C.Symbols {
		if i > 0 && s != C.Symbols[i-1] && seen[s] {
			return false
		}
		seen[s] = true
	}
	return true
}

// SortBySpecies stably reorders the atoms so that each species forms one
// contiguous block, blocks in order of first appearance. The relative order
// within a block is preserved.
func (C *Config) SortBySpecies() {
	order, _ := C.Species()
	rank := make(map[string]int, len(order))
	for i, s := range order {
		rank[s] = i
	}
	perm := make([]int, C.Len())
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		return rank[C.Symbols[perm[i]]] < rank[C.Symbols[perm[j]]]
	})
	C.permute(perm)
}

// permute reorders atoms so position i holds what was at perm[i].
func (C *Config) permute(perm []int) {
	n := C.Len()
	syms := make([]string, n)
	coords := mat.NewDense(n, 3, nil)
	var forces *mat.Dense
	if C.Forces != nil {
		forces = mat.NewDense(n, 3, nil)
	}
	for to, from := range perm {
		syms[to] = C.Symbols[from]
		coords.SetRow(to, C.Coords.RawRowView(from))
		if forces != nil {
			forces.SetRow(to, C.Forces.RawRowView(from))
		}
	}
	C.Symbols = syms
	C.Coords = coords
	if forces != nil {
		C.Forces = forces
	}
}

// Frac returns the coordinates in the fractional (direct) basis of the cell.
func (C *Config) Frac() (*mat.Dense, error) {
	if C.Cell == nil {
		return nil, CError{"config has no cell", []string{"Frac"}}
	}
	f, err := CartToFrac(C.Coords, C.Cell)
	if err != nil {
		return nil, errDecorate(err, "Frac")
	}
	return f, nil
}

// Masses returns a slice with the mass of each atom, in Da.
func (C *Config) Masses() ([]float64, error) {
	m := make([]float64, len(C.Symbols))
	for i, s := range C.Symbols {
		mass, ok := symbolMass[s]
		if !ok {
			return nil, CError{fmt.Sprintf("no mass for element %q", s), []string{"Masses"}}
		}
		m[i] = mass
	}
	return m, nil
}

// Copy returns a deep copy of the configuration.
func (C *Config) Copy() *Config {
	n := new(Config)
	n.Symbols = append([]string{}, C.Symbols...)
	if C.Coords != nil {
		n.Coords = mat.DenseCopyOf(C.Coords)
	}
	if C.Forces != nil {
		n.Forces = mat.DenseCopyOf(C.Forces)
	}
	if C.Cell != nil {
		n.Cell = mat.DenseCopyOf(C.Cell)
	}
	n.Energy = C.Energy
	n.HasEnergy = C.HasEnergy
	n.PBC = C.PBC
	n.Step = C.Step
	return n
}

// CartToFrac converts Nx3 Cartesian coordinates to fractional coordinates in
// the basis of cell (3x3, one lattice vector per row).
func CartToFrac(cart, cell *mat.Dense) (*mat.Dense, error) {
	var inv mat.Dense
	if err := inv.Inverse(cell); err != nil {
		return nil, CError{"singular cell: " + err.Error(), []string{"CartToFrac"}}
	}
	r, _ := cart.Dims()
	frac := mat.NewDense(r, 3, nil)
	frac.Mul(cart, &inv)
	return frac, nil
}

// FracToCart converts Nx3 fractional coordinates to Cartesian ones.
func FracToCart(frac, cell *mat.Dense) *mat.Dense {
	r, _ := frac.Dims()
	cart := mat.NewDense(r, 3, nil)
	cart.Mul(frac, cell)
	return cart
}

// CellVolume returns the volume of the cell, in A^3.
func CellVolume(cell *mat.Dense) float64 {
	return math.Abs(mat.Det(cell))
}
