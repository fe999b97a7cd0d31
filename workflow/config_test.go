package workflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(Te *testing.T, text string) string {
	Te.Helper()
	path := filepath.Join(Te.TempDir(), "workflow.yaml")
	require.NoError(Te, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestLoad(Te *testing.T) {
	path := writeYAML(Te, `
atom_types: [O, Pu]
md:
  command: "srun lmp"
  variables:
    "£TEMP": [100, 200, 300]
    "£PRESS": [0.0, 6.241e-7]
qm:
  command: "srun vasp_std"
  partitions: 4
hpc:
  profile: archer2
  account: e05-power
  nodes: 2
  ranks: 128
  time: "04:00:00"
filter:
  method: emd
  tolerance: 0.05
  neighbours: 20
dataset: training_data.xyz
`)
	cfg, err := Load(path)
	require.NoError(Te, err)
	assert.Equal(Te, []string{"O", "Pu"}, cfg.AtomTypes)
	//unset keys fall back to the layout conventions
	assert.Equal(Te, "MD_base", cfg.MD.Base)
	assert.Equal(Te, "MD_calculations", cfg.MD.Outdir)
	assert.Equal(Te, "MD_scripts", cfg.MD.Scripts)
	assert.Equal(Te, "lammps", cfg.MD.Label)
	assert.Equal(Te, "QM_base", cfg.QM.Base)
	assert.Equal(Te, 4, cfg.QM.Partitions)
	assert.Equal(Te, "training_data.xyz", cfg.Dataset)
	//numbers in the sample space come back as the text LAMMPS will see
	vars := cfg.MD.VarStrings()
	assert.Equal(Te, []string{"100", "200", "300"}, vars["£TEMP"])
	assert.Equal(Te, []string{"0.0", "6.241e-7"}, vars["£PRESS"])
	j := cfg.Job("anything")
	assert.Equal(Te, 2, j.Nodes)
	assert.Equal(Te, 128, j.TasksPerNode)
	assert.Equal(Te, 1, j.CPUsPerTask)
	assert.Equal(Te, "04:00:00", j.Time)
	assert.Equal(Te, "e05-power", j.Account)
}

func TestLoadMinimal(Te *testing.T) {
	cfg, err := Load(writeYAML(Te, "atom_types: [O, Pu]\n"))
	require.NoError(Te, err)
	assert.Equal(Te, "emd", cfg.Filter.Method)
	assert.Equal(Te, 20, cfg.Filter.Neighbours)
	assert.Equal(Te, "archer2", cfg.HPC.Profile)
	assert.Equal(Te, 1, cfg.QM.Partitions)
	assert.Equal(Te, "training_data.xyz", cfg.Dataset)
	j := cfg.Job("x")
	assert.Equal(Te, 1, j.Nodes)
	assert.Equal(Te, "00:20:00", j.Time)
}

func TestLoadRejectsUnknownKeys(Te *testing.T) {
	_, err := Load(writeYAML(Te, "atom_typos: [O, Pu]\n"))
	assert.Error(Te, err)
	_, err = Load(writeYAML(Te, "atom_types: [O]\nmd:\n  comand: lmp\n"))
	assert.Error(Te, err)
}

func TestLoadMissingFile(Te *testing.T) {
	_, err := Load(filepath.Join(Te.TempDir(), "nope.yaml"))
	assert.Error(Te, err)
}

func baseConfig() *Config {
	c := &Config{AtomTypes: []string{"O", "Pu"}}
	c.SetDefaults()
	return c
}

func TestCheckRejects(Te *testing.T) {
	cases := []struct {
		name string
		mod  func(*Config)
	}{
		{"no atom types", func(c *Config) { c.AtomTypes = nil }},
		{"unknown element", func(c *Config) { c.AtomTypes = []string{"Xx"} }},
		{"unknown profile", func(c *Config) { c.HPC.Profile = "summit" }},
		{"bad walltime", func(c *Config) { c.HPC.Time = "90 minutes" }},
		{"bad filter method", func(c *Config) { c.Filter.Method = "random" }},
		{"negative tolerance", func(c *Config) { c.Filter.Tolerance = -0.1 }},
		{"no neighbours", func(c *Config) { c.Filter.Neighbours = -1 }},
		{"no partitions", func(c *Config) { c.QM.Partitions = -2 }},
	}
	for _, tc := range cases {
		c := baseConfig()
		tc.mod(c)
		assert.Error(Te, c.Check(), tc.name)
	}
	assert.NoError(Te, baseConfig().Check())
}

func TestValueRejectsNonScalars(Te *testing.T) {
	_, err := Load(writeYAML(Te, `
atom_types: [O]
md:
  variables:
    "£TEMP": [[100, 200]]
`))
	assert.Error(Te, err)
}
