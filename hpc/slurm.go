package hpc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wdavie/mlipts"
)

var timeRE = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)

// Job describes one batch submission. Fields a Profile computes for itself,
// like the Archer2 QOS, are ignored by that profile even if set.
type Job struct {
	Name         string   //--job-name
	Nodes        int      //--nodes
	TasksPerNode int      //--ntasks-per-node, MPI ranks per node
	CPUsPerTask  int      //--cpus-per-task
	Time         string   //walltime, HH:MM:SS
	Account      string   //--account
	Partition    string   //--partition, Generic profile only
	QOS          string   //--qos, Generic profile only
	Extra        []string //verbatim extra #SBATCH directives, without the prefix
}

// SetDefaults fills the zero fields every machine agrees on. The walltime
// default is short on purpose, asking for too little fails faster than
// queueing for too much.
func (J *Job) SetDefaults() {
	if J.Name == "" {
		J.Name = "mlipts"
	}
	if J.Nodes == 0 {
		J.Nodes = 1
	}
	if J.TasksPerNode == 0 {
		J.TasksPerNode = 1
	}
	if J.CPUsPerTask == 0 {
		J.CPUsPerTask = 1
	}
	if J.Time == "" {
		J.Time = "00:20:00"
	}
}

// Check validates the job. The walltime must have the zero-padded HH:MM:SS
// form the schedulers expect, hours above 99 have no place in this workflow.
func (J Job) Check() error {
	if !timeRE.MatchString(J.Time) {
		return Error{"walltime must have the format HH:MM:SS", mlipts.ErrBadTime, "", J.Time, []string{"Check"}, true}
	}
	if J.Nodes < 1 || J.TasksPerNode < 1 || J.CPUsPerTask < 1 {
		return Error{"nodes, tasks per node and cpus per task must be positive", mlipts.ErrBadInput, "", "", []string{"Check"}, true}
	}
	return nil
}

// Duration returns the walltime as a time.Duration.
func (J Job) Duration() (time.Duration, error) {
	if err := J.Check(); err != nil {
		return 0, errDecorate(err, "Duration")
	}
	parts := strings.Split(J.Time, ":")
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	s, _ := strconv.Atoi(parts[2])
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second, nil
}

// timeParts returns the walltime hours and minutes. Call Check first.
func (J Job) timeParts() (hours, minutes int) {
	parts := strings.Split(J.Time, ":")
	hours, _ = strconv.Atoi(parts[0])
	minutes, _ = strconv.Atoi(parts[1])
	return hours, minutes
}

// A Profile renders the batch-scheduler header for a machine. Headers start
// with the shebang line and end with a newline, so a script is the header,
// a blank line and the body.
type Profile interface {
	Header(Job) (string, error)
}

// ProfileByName maps a configuration name to a machine profile. An empty
// name means Generic.
func ProfileByName(name string) (Profile, error) {
	switch strings.ToLower(name) {
	case "archer2":
		return Archer2{}, nil
	case "", "generic":
		return Generic{}, nil
	}
	return nil, Error{"unknown machine profile", mlipts.ErrBadInput, "", name, []string{"ProfileByName"}, true}
}

// Archer2 renders headers for the UK national supercomputer. Everything runs
// on the standard partition; jobs of twenty minutes or less go to the short
// QOS, which queues much faster.
type Archer2 struct {
	DefaultAccount string //used when the Job carries no account; e89-camm if empty
}

func (A Archer2) Header(j Job) (string, error) {
	j.SetDefaults()
	if err := j.Check(); err != nil {
		return "", errDecorate(err, "Archer2.Header")
	}
	account := j.Account
	if account == "" {
		account = A.DefaultAccount
	}
	if account == "" {
		account = "e89-camm"
	}
	hours, minutes := j.timeParts()
	qos := "standard"
	if hours == 0 && minutes <= 20 {
		qos = "short"
	}
	var b strings.Builder
	b.WriteString("#!/bin/bash\n\n")
	fmt.Fprintf(&b, "#SBATCH --job-name=%s\n", j.Name)
	fmt.Fprintf(&b, "#SBATCH --nodes=%d\n", j.Nodes)
	fmt.Fprintf(&b, "#SBATCH --ntasks-per-node=%d\n", j.TasksPerNode)
	fmt.Fprintf(&b, "#SBATCH --cpus-per-task=%d\n", j.CPUsPerTask)
	fmt.Fprintf(&b, "#SBATCH --time=%s\n", j.Time)
	b.WriteString("\n")
	fmt.Fprintf(&b, "#SBATCH --account=%s\n", account)
	b.WriteString("#SBATCH --partition=standard\n")
	fmt.Fprintf(&b, "#SBATCH --qos=%s\n", qos)
	writeExtra(&b, j.Extra)
	return b.String(), nil
}

// Generic renders a plain Slurm header from whatever the Job carries,
// for machines without a dedicated profile. Empty fields are left out.
type Generic struct{}

func (G Generic) Header(j Job) (string, error) {
	j.SetDefaults()
	if err := j.Check(); err != nil {
		return "", errDecorate(err, "Generic.Header")
	}
	var b strings.Builder
	b.WriteString("#!/bin/bash\n\n")
	fmt.Fprintf(&b, "#SBATCH --job-name=%s\n", j.Name)
	fmt.Fprintf(&b, "#SBATCH --nodes=%d\n", j.Nodes)
	fmt.Fprintf(&b, "#SBATCH --ntasks-per-node=%d\n", j.TasksPerNode)
	fmt.Fprintf(&b, "#SBATCH --cpus-per-task=%d\n", j.CPUsPerTask)
	fmt.Fprintf(&b, "#SBATCH --time=%s\n", j.Time)
	if j.Account != "" {
		fmt.Fprintf(&b, "#SBATCH --account=%s\n", j.Account)
	}
	if j.Partition != "" {
		fmt.Fprintf(&b, "#SBATCH --partition=%s\n", j.Partition)
	}
	if j.QOS != "" {
		fmt.Fprintf(&b, "#SBATCH --qos=%s\n", j.QOS)
	}
	writeExtra(&b, j.Extra)
	return b.String(), nil
}

func writeExtra(b *strings.Builder, extra []string) {
	for _, line := range extra {
		fmt.Fprintf(b, "#SBATCH %s\n", line)
	}
}
