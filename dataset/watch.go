package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/wdavie/mlipts"
	"github.com/wdavie/mlipts/vasp"
)

// debounce is how long the watcher lets a directory settle before reading
// it. OUTCARs are written in many small bursts.
const debounce = 500 * time.Millisecond

// Event reports the fate of one watched calculation.
type Event struct {
	Dir      string
	Appended bool
	Reason   string //the skip reason when not appended
}

// Watch collects calculations into the training set as they finish, instead
// of in one pass at the end. It sweeps root for calculations that already
// finished, then follows filesystem events until ctx is done, appending each
// calculation at most once. Events may be nil if the caller does not want
// the per-calculation reports.
//
// Calculations that are not done yet simply stay pending; unconverged ones
// are reported once and never retried. A critical error ends the watch.
func Watch(ctx context.Context, root, dbPath string, events chan<- Event, opts ...*mlipts.XYZOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return Error{"cannot start the filesystem watcher", root, err.Error(), []string{"Watch"}}
	}
	defer watcher.Close()
	if err := addRecursive(watcher, root); err != nil {
		return Error{"cannot watch the calculation tree", root, err.Error(), []string{"Watch"}}
	}
	appender := NewAppender(dbPath, opts...)
	seen := make(map[string]bool)
	dirs, err := FindCalcs(root)
	if err != nil {
		return errDecorate(err, "Watch")
	}
	for _, dir := range dirs {
		if err := collectOnce(ctx, appender, dir, seen, events); err != nil {
			return errDecorate(err, "Watch")
		}
	}
	pending := make(map[string]bool)
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return Error{"the filesystem watcher closed unexpectedly", root, "", []string{"Watch"}}
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				//calculation trees appear while we watch; files may land
				//before the new directory is watched, so sweep it too
				if err := addRecursive(watcher, ev.Name); err != nil {
					continue
				}
				if isCalcDir(ev.Name) {
					pending[ev.Name] = true
				}
				if inside, err := FindCalcs(ev.Name); err == nil {
					for _, dir := range inside {
						pending[dir] = true
					}
				}
				resetTimer(timer)
				continue
			}
			if dir := filepath.Dir(ev.Name); isCalcDir(dir) && !seen[dir] {
				pending[dir] = true
				resetTimer(timer)
			}
		case <-watcher.Errors:
			//overflow and the like; transient, keep watching
		case <-timer.C:
			for dir := range pending {
				delete(pending, dir)
				if seen[dir] || !vasp.Finished(dir) {
					continue
				}
				if err := collectOnce(ctx, appender, dir, seen, events); err != nil {
					return errDecorate(err, "Watch")
				}
			}
		}
	}
}

// collectOnce harvests one calculation if it has reached a terminal state,
// marking it seen and emitting the outcome. Calculations still on their way
// are left alone for a later try. Only critical errors are returned.
func collectOnce(ctx context.Context, appender *Appender, dir string, seen map[string]bool, events chan<- Event) error {
	conf, err := vasp.Harvest(dir)
	if err != nil {
		if mlipts.IsCritical(err) {
			return err
		}
		if code := reason(err); code == mlipts.ErrUnconverged {
			seen[dir] = true
			emit(ctx, events, Event{Dir: dir, Reason: code})
		}
		return nil
	}
	if err := appender.Append(conf); err != nil {
		return err
	}
	seen[dir] = true
	emit(ctx, events, Event{Dir: dir, Appended: true})
	return nil
}

func emit(ctx context.Context, events chan<- Event, ev Event) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

func isCalcDir(dir string) bool {
	return strings.HasPrefix(filepath.Base(dir), "vasp_step_")
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := watcher.Add(path); err != nil {
				return err
			}
		}
		return nil
	})
}

// resetTimer pushes the debounce deadline out, draining a fire that raced
// the reset.
func resetTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(debounce)
}
