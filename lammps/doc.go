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
 *
 * */

//Package lammps prepares and harvests LAMMPS molecular-dynamics calculations:
//it expands a base calculation over a sample space of input variables, one
//directory per parameter combination, generates the shell loop that runs them,
//and parses the resulting text dumps into atomic configurations. The LAMMPS
//binary itself is an external collaborator.

package lammps
