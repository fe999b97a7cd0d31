package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/wdavie/mlipts"
	"github.com/wdavie/mlipts/dataset"
	"github.com/wdavie/mlipts/hpc"
	"github.com/wdavie/mlipts/lammps"
	"github.com/wdavie/mlipts/similarity"
	"github.com/wdavie/mlipts/vasp"
)

// Workflow runs the stages of an active-learning cycle over one directory
// tree. It keeps no state of its own between calls, what a stage needs it
// derives from the layout, so stages can run in separate invocations, on
// separate days, or again after a crash.
type Workflow struct {
	cfg *Config
	log *zap.Logger
}

// New returns a workflow over cfg. A nil logger mutes the progress reports.
func New(cfg *Config, log *zap.Logger) *Workflow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Workflow{cfg: cfg, log: log}
}

// Config returns the configuration the workflow runs on.
func (W *Workflow) Config() *Config {
	return W.cfg
}

// BuildMD generates the MD calculation directories from the base
// calculation and the sample space, and returns their paths.
func (W *Workflow) BuildMD() ([]string, error) {
	b := lammps.NewBuilder()
	b.Label = W.cfg.MD.Label
	dirs, err := b.BuildCalculations(W.cfg.MD.Base, W.cfg.MD.VarStrings(), W.cfg.MD.Outdir)
	if err != nil {
		return nil, errDecorate(err, "BuildMD")
	}
	for _, d := range dirs {
		W.log.Info("built MD calculation", zap.String("dir", d))
	}
	return dirs, nil
}

// mdDirs returns every MD calculation directory, built or already run.
func (W *Workflow) mdDirs() ([]string, error) {
	entries, err := os.ReadDir(W.cfg.MD.Outdir)
	if err != nil {
		return nil, Error{"cannot read the MD tree", W.cfg.MD.Outdir, err.Error(), []string{"mdDirs"}}
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(W.cfg.MD.Outdir, e.Name()))
		}
	}
	return dirs, nil
}

// ActiveMD returns the MD calculations that have produced a dump, the ones
// with snapshots to harvest.
func (W *Workflow) ActiveMD() ([]string, error) {
	dirs, err := W.mdDirs()
	if err != nil {
		return nil, errDecorate(err, "ActiveMD")
	}
	var active []string
	for _, dir := range dirs {
		if _, err := lammps.FindDump(dir); err == nil {
			active = append(active, dir)
		}
	}
	return active, nil
}

// MDScript writes the submission script that runs every MD calculation, and
// optionally submits it. It returns the script path and, when submitted,
// the job id.
func (W *Workflow) MDScript(ctx context.Context, submit bool) (string, []string, error) {
	if W.cfg.MD.Command == "" {
		return "", nil, Error{message: "no MD command configured", deco: []string{"MDScript"}}
	}
	dirs, err := W.mdDirs()
	if err != nil {
		return "", nil, errDecorate(err, "MDScript")
	}
	if len(dirs) == 0 {
		return "", nil, Error{"no MD calculations to run, build them first", W.cfg.MD.Outdir, "", []string{"MDScript"}}
	}
	p, err := W.cfg.Profile()
	if err != nil {
		return "", nil, errDecorate(err, "MDScript")
	}
	script := filepath.Join(W.cfg.MD.Scripts, hpc.MDScriptName)
	if err := hpc.WriteMDScript(script, p, W.cfg.Job(W.cfg.MD.Label+"_md"), dirs, W.cfg.MD.Command); err != nil {
		return "", nil, errDecorate(err, "MDScript")
	}
	W.log.Info("wrote MD submission script", zap.String("script", script), zap.Int("calculations", len(dirs)))
	if !submit {
		return script, nil, nil
	}
	ids, err := hpc.NewSubmitter().SubmitAll(ctx, []string{script})
	if err != nil {
		return script, ids, errDecorate(err, "MDScript")
	}
	W.log.Info("submitted MD job", zap.Strings("ids", ids))
	return script, ids, nil
}

// Candidate is one MD snapshot offered for labelling, with the calculation
// it came from.
type Candidate struct {
	Conf *mlipts.Config
	Dir  string
}

// FilterConfigs reads every snapshot of every active MD calculation and
// passes them through the configured similarity filter. With the method
// "none" all snapshots survive.
func (W *Workflow) FilterConfigs() ([]Candidate, error) {
	active, err := W.ActiveMD()
	if err != nil {
		return nil, errDecorate(err, "FilterConfigs")
	}
	var all []Candidate
	var confs []*mlipts.Config
	for _, dir := range active {
		cs, err := lammps.ReadDump(dir, W.cfg.AtomTypes)
		if err != nil {
			return nil, errDecorate(err, "FilterConfigs")
		}
		for _, c := range cs {
			all = append(all, Candidate{Conf: c, Dir: dir})
			confs = append(confs, c)
		}
	}
	if len(all) == 0 {
		return nil, Error{"no MD snapshots found, run the MD first", W.cfg.MD.Outdir, "", []string{"FilterConfigs"}}
	}
	var kept []int
	switch W.cfg.Filter.Method {
	case "none":
		W.log.Info("similarity filter off", zap.Int("snapshots", len(all)))
		return all, nil
	case "amd":
		_, kept, err = similarity.FilterAMD(confs, W.cfg.Filter.Neighbours, W.cfg.Filter.Tolerance)
	default:
		_, kept, err = similarity.Filter(confs, W.cfg.Filter.Neighbours, W.cfg.Filter.Tolerance)
	}
	if err != nil {
		return nil, errDecorate(err, "FilterConfigs")
	}
	out := make([]Candidate, 0, len(kept))
	for _, i := range kept {
		out = append(out, all[i])
	}
	W.log.Info("filtered snapshots", zap.String("method", W.cfg.Filter.Method),
		zap.Int("in", len(all)), zap.Int("kept", len(out)))
	return out, nil
}

// BuildQM filters the MD snapshots and builds one single-point calculation
// for each survivor, under <qm outdir>/<md calculation>/vasp_step_<t>.
func (W *Workflow) BuildQM() ([]string, error) {
	kept, err := W.FilterConfigs()
	if err != nil {
		return nil, errDecorate(err, "BuildQM")
	}
	var made []string
	for _, cand := range kept {
		outdir := filepath.Join(W.cfg.QM.Outdir, filepath.Base(cand.Dir))
		name := fmt.Sprintf("vasp_step_%d", cand.Conf.Step)
		dir, err := vasp.BuildCalc(W.cfg.QM.Base, cand.Conf, name, outdir)
		if err != nil {
			return made, errDecorate(err, "BuildQM")
		}
		W.log.Info("built QM calculation", zap.String("dir", dir))
		made = append(made, dir)
	}
	return made, nil
}

// QMScripts writes the partitioned submission scripts covering every QM
// calculation, and optionally submits them. It returns the script paths
// and, when submitted, the job ids.
func (W *Workflow) QMScripts(ctx context.Context, submit bool) ([]string, []string, error) {
	if W.cfg.QM.Command == "" {
		return nil, nil, Error{message: "no QM command configured", deco: []string{"QMScripts"}}
	}
	calcs, err := dataset.FindCalcs(W.cfg.QM.Outdir)
	if err != nil {
		return nil, nil, errDecorate(err, "QMScripts")
	}
	if len(calcs) == 0 {
		return nil, nil, Error{"no QM calculations to run, build them first", W.cfg.QM.Outdir, "", []string{"QMScripts"}}
	}
	p, err := W.cfg.Profile()
	if err != nil {
		return nil, nil, errDecorate(err, "QMScripts")
	}
	scripts, err := hpc.WriteQMScripts(W.cfg.QM.Scripts, p, W.cfg.Job("vasp_qm"), calcs, W.cfg.QM.Command, W.cfg.QM.Partitions)
	if err != nil {
		return nil, nil, errDecorate(err, "QMScripts")
	}
	W.log.Info("wrote QM submission scripts", zap.Int("scripts", len(scripts)), zap.Int("calculations", len(calcs)))
	if !submit {
		return scripts, nil, nil
	}
	ids, err := hpc.NewSubmitter().SubmitAll(ctx, scripts)
	if err != nil {
		return scripts, ids, errDecorate(err, "QMScripts")
	}
	W.log.Info("submitted QM jobs", zap.Strings("ids", ids))
	return scripts, ids, nil
}

// Collect harvests finished QM calculations into the training set. In watch
// mode it keeps collecting as calculations land until ctx is done, and the
// report is nil; otherwise it makes one pass and reports what it did.
func (W *Workflow) Collect(ctx context.Context, watch bool) (*dataset.Report, error) {
	if !watch {
		report, err := dataset.CollectVASP(W.cfg.QM.Outdir, W.cfg.Dataset)
		if report != nil {
			for _, s := range report.Skipped {
				W.log.Warn("skipped calculation", zap.String("dir", s.Dir), zap.String("reason", s.Reason))
			}
			W.log.Info("collection pass done",
				zap.Int("appended", len(report.Appended)), zap.Int("skipped", len(report.Skipped)))
		}
		if err != nil {
			return report, errDecorate(err, "Collect")
		}
		return report, nil
	}
	wctx, stop := context.WithCancel(ctx)
	defer stop()
	events := make(chan dataset.Event, 16)
	go func() {
		for {
			select {
			case ev := <-events:
				if ev.Appended {
					W.log.Info("appended calculation", zap.String("dir", ev.Dir))
				} else {
					W.log.Warn("skipped calculation", zap.String("dir", ev.Dir), zap.String("reason", ev.Reason))
				}
			case <-wctx.Done():
				return
			}
		}
	}()
	W.log.Info("watching for finished calculations", zap.String("root", W.cfg.QM.Outdir))
	if err := dataset.Watch(wctx, W.cfg.QM.Outdir, W.cfg.Dataset, events); err != nil {
		return nil, errDecorate(err, "Collect")
	}
	return nil, nil
}

// WriteSelection writes candidate snapshots to path as extended-XYZ frames,
// compressed if the suffix says so.
func WriteSelection(cands []Candidate, path string) error {
	if len(cands) == 0 {
		return Error{"nothing to write", path, "", []string{"WriteSelection"}}
	}
	f, err := os.Create(path)
	if err != nil {
		return Error{"cannot create the selection file", path, err.Error(), []string{"WriteSelection"}}
	}
	w, err := mlipts.CompressingWriter(path, f)
	if err != nil {
		f.Close()
		return errDecorate(err, "WriteSelection")
	}
	for _, cand := range cands {
		if err := mlipts.WriteXYZ(w, cand.Conf); err != nil {
			w.Close()
			return errDecorate(err, "WriteSelection")
		}
	}
	if err := w.Close(); err != nil {
		return Error{"cannot flush the selection file", path, err.Error(), []string{"WriteSelection"}}
	}
	return nil
}
