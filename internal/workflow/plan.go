package workflow

import "path/filepath"

// Stage names, in pipeline order.
const (
	StageIngest = "ingest"
	StageDetect = "detect"
	StageAMR    = "amr"
	StageSRL    = "srl"
	StageLink   = "link"
	StageMerge  = "merge"
	StageExport = "export"
)

// StageOrder is the canonical stage sequence.
var StageOrder = []string{
	StageIngest, StageDetect, StageAMR, StageSRL, StageLink, StageMerge, StageExport,
}

// Layout is the on-disk layout of one pipeline run.
type Layout struct {
	RunDir string
}

// NewLayout describes the run directory for a named run.
func NewLayout(runsDir, name string) Layout {
	return Layout{RunDir: filepath.Join(runsDir, name)}
}

func (l Layout) ArtifactsDir() string { return filepath.Join(l.RunDir, "artifacts") }
func (l Layout) LogsDir() string      { return filepath.Join(l.RunDir, "logs") }
func (l Layout) StatePath() string    { return filepath.Join(l.RunDir, "state.json") }
func (l Layout) LockPath() string     { return filepath.Join(l.RunDir, ".lock") }

// DocsDir holds the per-document ingestion artifacts.
func (l Layout) DocsDir() string { return filepath.Join(l.ArtifactsDir(), "docs") }

// AMRDir holds the external parser's output.
func (l Layout) AMRDir() string { return filepath.Join(l.ArtifactsDir(), "amr") }

// External-tool handoff files. Claim sentences go out tokenized, one per
// line, and the tools write their annotations back under the run.
func (l Layout) ClaimSentences() string { return filepath.Join(l.ArtifactsDir(), "sentences.txt") }
func (l Layout) AMROutput() string      { return filepath.Join(l.AMRDir(), "claims.amr") }
func (l Layout) SRLOutput() string      { return filepath.Join(l.ArtifactsDir(), "srl.json") }

// Per-stage claim files. Each stage reads its predecessor's file and writes
// its own, so a rerun can restart mid-sequence.
func (l Layout) DetectedClaims() string { return filepath.Join(l.ArtifactsDir(), "claims_detected.json") }
func (l Layout) ExtractedClaims() string {
	return filepath.Join(l.ArtifactsDir(), "claims_extracted.json")
}
func (l Layout) LinkedClaims() string { return filepath.Join(l.ArtifactsDir(), "claims_linked.json") }
func (l Layout) MergedClaims() string { return filepath.Join(l.ArtifactsDir(), "claims_merged.json") }
func (l Layout) FinalClaims() string  { return filepath.Join(l.ArtifactsDir(), "claims.json") }

// StageSpec pairs a stage with the artifact it must produce; a present output
// lets the runner skip the stage.
type StageSpec struct {
	Name   string
	Input  string
	Output string
}

// Plan returns the stage sequence with per-stage inputs and outputs for this
// layout. corpusDir is the source document directory; edlPath the upstream
// EDL export (empty to skip merging).
func (l Layout) Plan(corpusDir, edlPath string) []StageSpec {
	return []StageSpec{
		{Name: StageIngest, Input: corpusDir, Output: l.DocsDir()},
		{Name: StageDetect, Input: l.DocsDir(), Output: l.DetectedClaims()},
		{Name: StageAMR, Input: l.DetectedClaims(), Output: l.ExtractedClaims()},
		{Name: StageSRL, Input: l.ClaimSentences(), Output: l.SRLOutput()},
		{Name: StageLink, Input: l.ExtractedClaims(), Output: l.LinkedClaims()},
		{Name: StageMerge, Input: edlPath, Output: l.MergedClaims()},
		{Name: StageExport, Input: l.MergedClaims(), Output: l.FinalClaims()},
	}
}
