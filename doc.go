/*
 * doc.go, part of mlipts.
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
 * mlipts is developed at the Department of Physics and Astronomy,
 * University College London.
 *
 */

/*Package mlipts is the root package of the mlipts library, a toolkit that automates the
generation of training data for machine-learned interatomic potentials (MLIPs) by driving
external molecular-dynamics and quantum-mechanical codes.


	**mlipts Capabilities**


    Builds LAMMPS calculation directories from a base calculation and a sample
	space of input variables, one directory per parameter combination.

    Parses LAMMPS text dumps (plain, gzip or zstd compressed) into atomic
	configurations.

    Selects structurally-distinct configurations with pointwise distance
	distributions compared by the earth mover's distance, so near-duplicate
	structures never reach the QM code.

    Builds VASP calculation directories (POSCAR generation included) for the
	selected configurations, and reads energies, forces and convergence state
	back from OUTCAR files.

    Writes Slurm submission scripts for both stages, with a built-in ARCHER2
	profile, and optionally dispatches them with sbatch.

    Appends labelled configurations to an extended-XYZ training set of the kind
	consumed by MACE and similar potentials, skipping and reporting calculations
	that failed or did not converge.

    Summarises and plots the energy distribution of the accumulated training set.


The LAMMPS and VASP binaries, and the Slurm scheduler, must be obtained and licensed
independently; this library only prepares their inputs, invokes them, and harvests
their outputs.

The root package provides the Config type, an atomic configuration with optional
energy/force labels, the extended-XYZ codec for it, and the error interfaces shared
by every subpackage.*/
package mlipts
