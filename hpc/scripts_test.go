package hpc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPartition(Te *testing.T) {
	dirs := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	chunks, err := Partition(dirs, 3)
	if err != nil {
		Te.Fatal(err)
	}
	sizes := []int{4, 3, 3}
	if len(chunks) != len(sizes) {
		Te.Fatalf("got %d chunks", len(chunks))
	}
	flat := []string{}
	for i, c := range chunks {
		if len(c) != sizes[i] {
			Te.Errorf("chunk %d: got %d items, want %d", i, len(c), sizes[i])
		}
		flat = append(flat, c...)
	}
	for i, d := range dirs {
		if flat[i] != d {
			Te.Fatalf("partitioning reordered the directories: %v", chunks)
		}
	}
	if _, err := Partition(dirs, 0); err == nil {
		Te.Errorf("zero partitions should fail")
	}
	if _, err := Partition(dirs, 11); err == nil {
		Te.Errorf("more partitions than directories should fail")
	}
	all, err := Partition(dirs[:5], 5)
	if err != nil {
		Te.Fatal(err)
	}
	for i, c := range all {
		if len(c) != 1 {
			Te.Errorf("chunk %d: got %d items, want 1", i, len(c))
		}
	}
}

func TestRunLoop(Te *testing.T) {
	body := RunLoop([]string{"QM/vasp_step_0", "QM/vasp_step_50"}, "srun vasp_std")
	want := []string{
		`directories="QM/vasp_step_0 QM/vasp_step_50"`,
		"for i in $directories; do",
		"cd $i",
		"srun vasp_std",
		"cd -",
		"done",
	}
	for _, w := range want {
		if !strings.Contains(body, w) {
			Te.Errorf("body lacks %q:\n%s", w, body)
		}
	}
}

// builds a pair of fake MD calculation directories with the usual contents
func fakeMDDirs(Te *testing.T) []string {
	root := Te.TempDir()
	dirs := []string{}
	for _, name := range []string{"lammps_TEMP_300", "lammps_TEMP_600"} {
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			Te.Fatal(err)
		}
		for _, f := range []string{"in.puo", "puo.dat"} {
			if err := os.WriteFile(filepath.Join(dir, f), []byte("# placeholder\n"), 0644); err != nil {
				Te.Fatal(err)
			}
		}
		dirs = append(dirs, dir)
	}
	return dirs
}

func TestWriteMDScript(Te *testing.T) {
	dirs := fakeMDDirs(Te)
	path := filepath.Join(Te.TempDir(), "MD_scripts", MDScriptName)
	j := Job{Name: "lammps_batch", Nodes: 1, TasksPerNode: 128, Time: "00:10:00"}
	if err := WriteMDScript(path, Archer2{}, j, dirs, "srun lmp"); err != nil {
		Te.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		Te.Fatal(err)
	}
	if info.Mode()&0111 == 0 {
		Te.Errorf("script is not executable: %v", info.Mode())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		Te.Fatal(err)
	}
	s := string(raw)
	for _, w := range []string{"--qos=short", "directories=", "srun lmp -i in.puo -l out.puo"} {
		if !strings.Contains(s, w) {
			Te.Errorf("script lacks %q:\n%s", w, s)
		}
	}
	if err := WriteMDScript(path, Archer2{}, j, nil, "srun lmp"); err == nil {
		Te.Errorf("no directories should mean no script")
	}
}

func TestWriteQMScripts(Te *testing.T) {
	outdir := filepath.Join(Te.TempDir(), "QM_scripts")
	dirs := []string{"q/vasp_step_0", "q/vasp_step_50", "q/vasp_step_100"}
	j := Job{Name: "vasp_batch", Nodes: 1, TasksPerNode: 128, Time: "04:00:00"}
	scripts, err := WriteQMScripts(outdir, Archer2{}, j, dirs, "srun vasp_std", 2)
	if err != nil {
		Te.Fatal(err)
	}
	want := []string{
		filepath.Join(outdir, "submit_vasp_0"),
		filepath.Join(outdir, "submit_vasp_1"),
	}
	if len(scripts) != len(want) {
		Te.Fatalf("got %d scripts: %v", len(scripts), scripts)
	}
	for i, w := range want {
		if scripts[i] != w {
			Te.Errorf("script %d: got %s, want %s", i, scripts[i], w)
		}
	}
	raw, err := os.ReadFile(scripts[0])
	if err != nil {
		Te.Fatal(err)
	}
	first := string(raw)
	if !strings.Contains(first, `directories="q/vasp_step_0 q/vasp_step_50"`) {
		Te.Errorf("first script should carry the first two calculations:\n%s", first)
	}
	if !strings.Contains(first, "--qos=standard") {
		Te.Errorf("a four hour job should queue on the standard QOS:\n%s", first)
	}
	raw, err = os.ReadFile(scripts[1])
	if err != nil {
		Te.Fatal(err)
	}
	if !strings.Contains(string(raw), `directories="q/vasp_step_100"`) {
		Te.Errorf("second script should carry the remainder:\n%s", raw)
	}
}
