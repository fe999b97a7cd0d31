package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/wdavie/mlipts"
	"github.com/wdavie/mlipts/vasp"
)

// DefaultPath is the conventional training-set location in a workflow tree.
const DefaultPath = "training_data.xyz"

// calcPattern matches VASP calculation directories at any depth.
const calcPattern = "**/vasp_step_*"

// Appender adds labelled configurations to a training set, one extended-XYZ
// frame per call. A .gz or .zst suffix on Path makes every frame a
// self-contained compressed unit, which decoders read back as one stream,
// so compressed sets can keep growing in place.
type Appender struct {
	Path    string
	Options *mlipts.XYZOptions //nil means the default energy/forces keys
}

// NewAppender returns an Appender on path. An optional XYZOptions sets the
// energy and forces key names, for training codes fed with relabelled keys.
func NewAppender(path string, opts ...*mlipts.XYZOptions) *Appender {
	A := &Appender{Path: path}
	if len(opts) > 0 && opts[0] != nil {
		A.Options = opts[0]
	}
	return A
}

// Append writes conf at the end of the set, creating the file if needed.
func (A *Appender) Append(conf *mlipts.Config) error {
	f, err := os.OpenFile(A.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return Error{"cannot open the training set", A.Path, err.Error(), []string{"Append"}}
	}
	w, err := mlipts.CompressingWriter(A.Path, f)
	if err != nil {
		f.Close()
		return errDecorate(err, "Append")
	}
	if err := mlipts.WriteXYZ(w, conf, A.Options); err != nil {
		w.Close()
		return errDecorate(err, "Append")
	}
	if err := w.Close(); err != nil {
		return Error{"cannot flush the training set", A.Path, err.Error(), []string{"Append"}}
	}
	return nil
}

// Scan streams the frames of a training set through fn, stopping at the
// first error fn returns. It returns the number of frames fn saw.
func Scan(path string, fn func(*mlipts.Config) error, opts ...*mlipts.XYZOptions) (int, error) {
	r, err := mlipts.DecompressingReader(path)
	if err != nil {
		return 0, Error{"cannot open the training set", path, err.Error(), []string{"Scan"}}
	}
	defer r.Close()
	scanner := mlipts.NewXYZScanner(r, opts...)
	n := 0
	for {
		conf, err := scanner.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, errDecorate(err, "Scan")
		}
		n++
		if err := fn(conf); err != nil {
			return n, err
		}
	}
}

// SkippedCalc records one calculation a collection pass left out and the
// stable reason code (mlipts.Err*) it was skipped for.
type SkippedCalc struct {
	Dir    string
	Reason string
}

// Report sums up a collection pass. Skips are normal: calculations still
// queued or running are picked up by a later pass.
type Report struct {
	Appended []string //directories harvested into the set, in walk order
	Skipped  []SkippedCalc
}

func (R *Report) String() string {
	return fmt.Sprintf("appended %d calculations, skipped %d", len(R.Appended), len(R.Skipped))
}

// FindCalcs returns the VASP calculation directories under root at any
// depth, in lexical order.
func FindCalcs(root string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), calcPattern)
	if err != nil {
		return nil, Error{"cannot search for calculations", root, err.Error(), []string{"FindCalcs"}}
	}
	var dirs []string
	for _, m := range matches {
		full := filepath.Join(root, m)
		info, err := os.Stat(full)
		if err != nil || !info.IsDir() {
			continue
		}
		dirs = append(dirs, full)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// CollectVASP harvests every calculation under root into the training set at
// dbPath. Calculations that are missing their output, still running or
// unconverged are skipped and reported, not fatal; anything else stops the
// pass. Finding nothing under root is a valid, empty report.
func CollectVASP(root, dbPath string, opts ...*mlipts.XYZOptions) (*Report, error) {
	dirs, err := FindCalcs(root)
	if err != nil {
		return nil, errDecorate(err, "CollectVASP")
	}
	appender := NewAppender(dbPath, opts...)
	report := new(Report)
	for _, dir := range dirs {
		conf, err := vasp.Harvest(dir)
		if err != nil {
			if mlipts.IsCritical(err) {
				return report, errDecorate(err, "CollectVASP")
			}
			report.Skipped = append(report.Skipped, SkippedCalc{Dir: dir, Reason: reason(err)})
			continue
		}
		if err := appender.Append(conf); err != nil {
			return report, errDecorate(err, "CollectVASP")
		}
		report.Appended = append(report.Appended, dir)
	}
	return report, nil
}
