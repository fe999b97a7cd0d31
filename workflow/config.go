package workflow

import (
	"fmt"
	"os"

	"github.com/wdavie/mlipts"
	"github.com/wdavie/mlipts/hpc"
	"gopkg.in/yaml.v3"
)

// Value is one sample-space value. LAMMPS inputs take values as text, so
// numbers and strings in the YAML all read back as text.
type Value string

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: sample-space values must be scalars", node.Line)
	}
	*v = Value(node.Value)
	return nil
}

// MDConfig drives the molecular-dynamics stage.
type MDConfig struct {
	Base      string             `yaml:"base"`    //base calculation directory
	Outdir    string             `yaml:"outdir"`  //where the generated calculations go
	Scripts   string             `yaml:"scripts"` //where the submission script goes
	Label     string             `yaml:"label"`   //prefix for generated directory names
	Command   string             `yaml:"command"` //how to start LAMMPS, e.g. "srun lmp"
	Variables map[string][]Value `yaml:"variables"`
}

// VarStrings returns the sample space in the form the input builder takes.
func (m *MDConfig) VarStrings() map[string][]string {
	vars := make(map[string][]string, len(m.Variables))
	for k, vals := range m.Variables {
		s := make([]string, len(vals))
		for i, v := range vals {
			s[i] = string(v)
		}
		vars[k] = s
	}
	return vars
}

// QMConfig drives the single-point labelling stage.
type QMConfig struct {
	Base       string `yaml:"base"`
	Outdir     string `yaml:"outdir"`
	Scripts    string `yaml:"scripts"`
	Command    string `yaml:"command"` //how to start VASP, e.g. "srun vasp_std"
	Partitions int    `yaml:"partitions"`
}

// HPCConfig describes the machine jobs are submitted to.
type HPCConfig struct {
	Profile string `yaml:"profile"` //archer2 or generic
	Account string `yaml:"account"`
	Nodes   int    `yaml:"nodes"`
	Ranks   int    `yaml:"ranks"` //MPI ranks per node
	CPUs    int    `yaml:"cpus"`  //cpus per rank
	Time    string `yaml:"time"`  //walltime, HH:MM:SS
}

// FilterConfig controls the similarity filter between MD and QM.
type FilterConfig struct {
	Method     string  `yaml:"method"` //emd, amd or none
	Tolerance  float64 `yaml:"tolerance"`
	Neighbours int     `yaml:"neighbours"` //k nearest neighbours in the distance distributions
}

// Config is a whole active-learning workflow, normally read from a YAML
// file. The zero value of every field has a working default, so a minimal
// file only names the atom types and the commands.
type Config struct {
	AtomTypes []string     `yaml:"atom_types"` //dump type index -> chemical symbol, 1-based
	MD        MDConfig     `yaml:"md"`
	QM        QMConfig     `yaml:"qm"`
	HPC       HPCConfig    `yaml:"hpc"`
	Filter    FilterConfig `yaml:"filter"`
	Dataset   string       `yaml:"dataset"` //the training set file
}

// SetDefaults fills empty fields with the layout conventions of a workflow
// tree.
func (c *Config) SetDefaults() {
	if c.MD.Base == "" {
		c.MD.Base = "MD_base"
	}
	if c.MD.Outdir == "" {
		c.MD.Outdir = "MD_calculations"
	}
	if c.MD.Scripts == "" {
		c.MD.Scripts = "MD_scripts"
	}
	if c.MD.Label == "" {
		c.MD.Label = "lammps"
	}
	if c.QM.Base == "" {
		c.QM.Base = "QM_base"
	}
	if c.QM.Outdir == "" {
		c.QM.Outdir = "QM_calculations"
	}
	if c.QM.Scripts == "" {
		c.QM.Scripts = "QM_scripts"
	}
	if c.QM.Partitions == 0 {
		c.QM.Partitions = 1
	}
	if c.HPC.Profile == "" {
		c.HPC.Profile = "archer2"
	}
	if c.Filter.Method == "" {
		c.Filter.Method = "emd"
	}
	if c.Filter.Neighbours == 0 {
		c.Filter.Neighbours = 20
	}
	if c.Dataset == "" {
		c.Dataset = "training_data.xyz"
	}
}

// Check validates the configuration: known atom types, a resolvable machine
// profile, a well-formed job and a known filter method.
func (c *Config) Check() error {
	if len(c.AtomTypes) == 0 {
		return Error{message: "no atom types given", deco: []string{"Check"}}
	}
	for _, sym := range c.AtomTypes {
		if !mlipts.KnownElement(sym) {
			return Error{message: fmt.Sprintf("unknown element %q in atom_types", sym), deco: []string{"Check"}}
		}
	}
	if _, err := c.Profile(); err != nil {
		return errDecorate(err, "Check")
	}
	if err := c.Job("check").Check(); err != nil {
		return errDecorate(err, "Check")
	}
	switch c.Filter.Method {
	case "emd", "amd", "none":
	default:
		return Error{message: fmt.Sprintf("unknown filter method %q, want emd, amd or none", c.Filter.Method), deco: []string{"Check"}}
	}
	if c.Filter.Tolerance < 0 {
		return Error{message: "the filter tolerance cannot be negative", deco: []string{"Check"}}
	}
	if c.Filter.Neighbours < 1 {
		return Error{message: "the filter needs at least one neighbour", deco: []string{"Check"}}
	}
	if c.QM.Partitions < 1 {
		return Error{message: "there must be at least one QM partition", deco: []string{"Check"}}
	}
	return nil
}

// Profile returns the scheduler profile of the configured machine.
func (c *Config) Profile() (hpc.Profile, error) {
	p, err := hpc.ProfileByName(c.HPC.Profile)
	if err != nil {
		return nil, errDecorate(err, "Profile")
	}
	return p, nil
}

// Job returns a scheduler job named name with the configured resources.
func (c *Config) Job(name string) hpc.Job {
	j := hpc.Job{
		Name:         name,
		Nodes:        c.HPC.Nodes,
		TasksPerNode: c.HPC.Ranks,
		CPUsPerTask:  c.HPC.CPUs,
		Time:         c.HPC.Time,
		Account:      c.HPC.Account,
	}
	j.SetDefaults()
	return j
}

// Load reads, defaults and validates a workflow configuration. Keys the
// schema does not know are an error, a typo in a workflow file should not
// silently fall back to a default.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Error{"cannot open the workflow file", path, err.Error(), []string{"Load"}}
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	c := new(Config)
	if err := dec.Decode(c); err != nil {
		return nil, Error{"cannot parse the workflow file", path, err.Error(), []string{"Load"}}
	}
	c.SetDefaults()
	if err := c.Check(); err != nil {
		return nil, errDecorate(err, "Load")
	}
	return c, nil
}
