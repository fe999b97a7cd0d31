package hpc

import (
	"context"
	"os/exec"
	"strings"

	"github.com/wdavie/mlipts"
)

// Submitter hands finished scripts to the batch scheduler. The zero value
// is not usable, get one from NewSubmitter.
type Submitter struct {
	Cmd string //the submission command, normally sbatch
}

// NewSubmitter returns a Submitter that calls sbatch.
func NewSubmitter() *Submitter {
	return &Submitter{Cmd: "sbatch"}
}

// Submit hands one script to the scheduler and returns the job ID parsed
// from its "Submitted batch job <id>" reply. The context bounds the
// submission call itself, not the job.
func (S *Submitter) Submit(ctx context.Context, script string) (string, error) {
	out, err := exec.CommandContext(ctx, S.Cmd, script).CombinedOutput()
	if err != nil {
		return "", Error{"submission failed", mlipts.ErrBadInput, script, strings.TrimSpace(string(out)) + " " + err.Error(), []string{"Submit"}, true}
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "Submitted batch job") {
			fields := strings.Fields(line)
			return fields[len(fields)-1], nil
		}
	}
	return "", Error{"no job ID in the scheduler reply", mlipts.ErrBadInput, script, strings.TrimSpace(string(out)), []string{"Submit"}, true}
}

// SubmitAll submits every script in order and returns their job IDs. It
// stops at the first failure, returning the IDs submitted so far along with
// the error.
func (S *Submitter) SubmitAll(ctx context.Context, scripts []string) ([]string, error) {
	ids := make([]string, 0, len(scripts))
	for _, script := range scripts {
		id, err := S.Submit(ctx, script)
		if err != nil {
			return ids, errDecorate(err, "SubmitAll")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
