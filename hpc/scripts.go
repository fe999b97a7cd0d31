package hpc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wdavie/mlipts"
	"github.com/wdavie/mlipts/lammps"
)

// Conventional script locations and names within a workflow tree.
const (
	MDScriptName   = "submit_lammps_calcs"
	QMScriptPrefix = "submit_vasp_"
)

// Script assembles a submission script: the machine header, a blank line and
// the body that does the work.
func Script(p Profile, j Job, body string) (string, error) {
	header, err := p.Header(j)
	if err != nil {
		return "", errDecorate(err, "Script")
	}
	return header + "\n" + body, nil
}

// WriteScript assembles a script and writes it to name, marked executable.
func WriteScript(name string, p Profile, j Job, body string) error {
	s, err := Script(p, j, body)
	if err != nil {
		return errDecorate(err, "WriteScript")
	}
	if err := os.WriteFile(name, []byte(s), 0755); err != nil {
		return Error{"cannot write the script", mlipts.ErrBadInput, name, err.Error(), []string{"WriteScript"}, true}
	}
	return nil
}

// Partition splits dirs into n batches whose sizes differ by at most one,
// keeping the original order. One batch becomes one submission, so n trades
// queue slots against per-job walltime.
func Partition(dirs []string, n int) ([][]string, error) {
	if n < 1 {
		return nil, Error{"need at least one partition", mlipts.ErrBadInput, "", fmt.Sprintf("%d", n), []string{"Partition"}, true}
	}
	if n > len(dirs) {
		return nil, Error{fmt.Sprintf("cannot split %d directories into %d partitions", len(dirs), n), mlipts.ErrBadInput, "", "", []string{"Partition"}, true}
	}
	size := len(dirs) / n
	rem := len(dirs) % n
	out := make([][]string, 0, n)
	start := 0
	for i := 0; i < n; i++ {
		s := size
		if i < rem {
			s++
		}
		out = append(out, dirs[start:start+s])
		start += s
	}
	return out, nil
}

// RunLoop returns the shell fragment that visits each directory in turn and
// runs cmdline inside it. The VASP flavour: the command reads the fixed
// input names, so nothing is appended to it.
func RunLoop(dirs []string, cmdline string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "directories=\"%s\"\n", strings.Join(dirs, " "))
	b.WriteString("for i in $directories; do\n")
	b.WriteString("cd $i\n")
	b.WriteString(cmdline + "\n")
	b.WriteString("cd -\n")
	b.WriteString("done\n")
	return b.String()
}

// WriteMDScript writes a single submission script to path that runs cmdline
// on every MD directory of dirs. The input file name is taken from the first
// directory, all of them were built from the same base.
func WriteMDScript(path string, p Profile, j Job, dirs []string, cmdline string) error {
	if len(dirs) == 0 {
		return Error{"no MD directories to run", mlipts.ErrBadInput, path, "", []string{"WriteMDScript"}, true}
	}
	input, _, err := lammps.ScanBase(dirs[0])
	if err != nil {
		return errDecorate(err, "WriteMDScript")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Error{"cannot create the script directory", mlipts.ErrBadInput, dir, err.Error(), []string{"WriteMDScript"}, true}
		}
	}
	body := lammps.RunCommand(dirs, cmdline, input)
	if err := WriteScript(path, p, j, body); err != nil {
		return errDecorate(err, "WriteMDScript")
	}
	return nil
}

// WriteQMScripts partitions calcDirs into n submission scripts named
// submit_vasp_0 to submit_vasp_<n-1> under dir, each running cmdline in its
// share of the calculations. It returns the script paths.
func WriteQMScripts(dir string, p Profile, j Job, calcDirs []string, cmdline string, n int) ([]string, error) {
	chunks, err := Partition(calcDirs, n)
	if err != nil {
		return nil, errDecorate(err, "WriteQMScripts")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, Error{"cannot create the script directory", mlipts.ErrBadInput, dir, err.Error(), []string{"WriteQMScripts"}, true}
	}
	scripts := make([]string, 0, n)
	for i, chunk := range chunks {
		name := filepath.Join(dir, fmt.Sprintf("%s%d", QMScriptPrefix, i))
		if err := WriteScript(name, p, j, RunLoop(chunk, cmdline)); err != nil {
			return nil, errDecorate(err, "WriteQMScripts")
		}
		scripts = append(scripts, name)
	}
	return scripts, nil
}
