package pipeline

import "context"

// Stage is one step of the pipeline. Outputs name the artifacts the stage
// produces; when they all exist the runner may skip the stage.
type Stage interface {
	Name() string
	Outputs() []string
	Run(ctx context.Context) error
}

// FuncStage adapts a function to the Stage interface; the internal stages
// (detection, extraction, linking, merging, export) are built this way.
type FuncStage struct {
	StageName    string
	StageOutputs []string
	RunFunc      func(ctx context.Context) error
}

func (s *FuncStage) Name() string      { return s.StageName }
func (s *FuncStage) Outputs() []string { return s.StageOutputs }

func (s *FuncStage) Run(ctx context.Context) error { return s.RunFunc(ctx) }
