// Package pipeline executes the claim-extraction stage sequence over a locked
// run directory.
package pipeline

import (
	"encoding/json"
	"os"
	"time"

	"github.com/cockroachdb/errors"
)

// Stage status values recorded in state.json.
const (
	StatusDone   = "done"
	StatusFailed = "failed"
)

// StageState records one stage's outcome.
type StageState struct {
	Status    string        `json:"status"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// RunState is the persisted per-run stage ledger.
type RunState struct {
	Stages    map[string]*StageState `json:"stages"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// LoadState reads state.json, returning an empty state when absent.
func LoadState(path string) (*RunState, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &RunState{Stages: make(map[string]*StageState)}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read run state")
	}
	var state RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrapf(err, "unmarshal run state %s", path)
	}
	if state.Stages == nil {
		state.Stages = make(map[string]*StageState)
	}
	return &state, nil
}

// Save writes the state atomically via a temp file rename.
func (s *RunState) Save(path string) error {
	s.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal run state")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(err, "write run state")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "rename run state")
	}
	return nil
}

// Done reports whether a stage completed successfully in an earlier run.
func (s *RunState) Done(stage string) bool {
	state, ok := s.Stages[stage]
	return ok && state.Status == StatusDone
}

// Record stores a stage outcome.
func (s *RunState) Record(stage, status string, startedAt time.Time, err error) {
	state := &StageState{
		Status:    status,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
	}
	if err != nil {
		state.Error = err.Error()
	}
	s.Stages[stage] = state
}
