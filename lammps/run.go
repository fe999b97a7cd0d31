/*
 * run.go, part of mlipts.
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
	"strings"
)

// RunCommand returns the shell fragment that visits every directory of dirs
// in turn and runs cmdline on the calculation inside, reading inputName and
// logging to the matching out.* file. The paths in dirs must be valid from
// wherever the enclosing script will run, normally the working directory the
// job was submitted from.
func RunCommand(dirs []string, cmdline, inputName string) string {
	logName := "out." + strings.TrimPrefix(inputName, "in.")
	var b strings.Builder
	fmt.Fprintf(&b, "directories=\"%s\"\n", strings.Join(dirs, " "))
	b.WriteString("for i in $directories; do\n")
	b.WriteString("cd $i\n")
	fmt.Fprintf(&b, "%s -i %s -l %s\n", cmdline, inputName, logName)
	b.WriteString("cd -\n")
	b.WriteString("done\n")
	return b.String()
}
