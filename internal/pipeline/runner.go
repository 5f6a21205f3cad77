package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/ppiankov/claimflow/internal/workflow"
)

// Runner executes stages sequentially over a locked run directory. The first
// failing stage aborts the run; completed stages are skipped on rerun.
type Runner struct {
	layout workflow.Layout
	stages []Stage
	log    *zap.SugaredLogger

	// Force reruns stages whose outputs exist. From starts the run at the
	// named stage; Only restricts the run to it.
	Force bool
	From  string
	Only  string
}

// NewRunner creates a runner for the given stage sequence.
func NewRunner(layout workflow.Layout, stages []Stage, log *zap.SugaredLogger) *Runner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{layout: layout, stages: stages, log: log}
}

// Run executes the stage sequence. It holds the run-directory lock for the
// whole run; a second concurrent run fails immediately.
func (r *Runner) Run(ctx context.Context) error {
	for _, dir := range []string{r.layout.ArtifactsDir(), r.layout.LogsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "create run directory %s", dir)
		}
	}

	lock := flock.New(r.layout.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return errors.Wrap(err, "acquire run lock")
	}
	if !locked {
		return errors.Newf("run directory %s is locked by another run", r.layout.RunDir)
	}
	defer lock.Unlock()

	state, err := LoadState(r.layout.StatePath())
	if err != nil {
		return err
	}

	started := r.From == ""
	for _, stage := range r.stages {
		name := stage.Name()
		if !started {
			if name != r.From {
				r.log.Debugw("stage before start point", "stage", name)
				continue
			}
			started = true
		}
		if r.Only != "" && name != r.Only {
			continue
		}

		// The previous run's "done" record stays in place for a skip.
		if r.shouldSkip(stage, state) {
			r.log.Infow("stage outputs present, skipping", "stage", name)
			continue
		}

		r.log.Infow("running stage", "stage", name)
		startedAt := time.Now()
		runErr := stage.Run(ctx)
		if runErr != nil {
			state.Record(name, StatusFailed, startedAt, runErr)
			if saveErr := state.Save(r.layout.StatePath()); saveErr != nil {
				r.log.Errorw("failed to save run state", "error", saveErr)
			}
			return errors.Wrapf(runErr, "stage %s failed, aborting run", name)
		}

		state.Record(name, StatusDone, startedAt, nil)
		if err := state.Save(r.layout.StatePath()); err != nil {
			return err
		}
		r.log.Infow("stage complete", "stage", name,
			"duration", time.Since(startedAt).Round(time.Millisecond))
	}
	return nil
}

// shouldSkip reports whether a stage already produced its outputs.
func (r *Runner) shouldSkip(stage Stage, state *RunState) bool {
	if r.Force {
		return false
	}
	if !state.Done(stage.Name()) {
		return false
	}
	outputs := stage.Outputs()
	if len(outputs) == 0 {
		return false
	}
	for _, output := range outputs {
		if _, err := os.Stat(output); err != nil {
			return false
		}
	}
	return true
}
