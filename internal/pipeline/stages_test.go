package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/claimflow/internal/export"
	"github.com/ppiankov/claimflow/internal/model"
	"github.com/ppiankov/claimflow/internal/workflow"
)

const stageTestDoc = "Doctors say that hydroxychloroquine cures COVID-19. Nothing else here.\n"

// A parse for the claim sentence, in the order detection emits claims.
const stageTestAMR = `# ::tok Doctors say that hydroxychloroquine cures COVID-19 .
# ::node n1 say-01 1-2
# ::node n2 cure-01 4-5
# ::node n3 doctor 0-1
# ::node n4 hydroxychloroquine 3-4
# ::root n1 say-01
# ::edge say-01 ARG0 doctor n1 n3
# ::edge say-01 ARG1 cure-01 n1 n2
# ::edge cure-01 ARG0 hydroxychloroquine n2 n4
`

func writeStageTestResources(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"qe_master.json":         `[]`,
		"pb_to_qnode_master.json": `{}`,
		"pb_to_qnode_overlay.json": `{
			"cure-01": [{
				"qnode": "Q99999",
				"name": "cure",
				"definition": "restore to health",
				"args": {}
			}]
		}`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
	return dir
}

func stageTestConfig(t *testing.T, runsDir, resourcesDir string) *model.Config {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Paths.RunsDir = runsDir
	cfg.Paths.ResourcesDir = resourcesDir
	cfg.Cache.Enabled = false
	cfg.Linker.Endpoint = ""
	cfg.Detection.Domain = "covid"
	// No external tools; the stages use pre-existing artifacts.
	cfg.Tools.AMRParser.Command = ""
	cfg.Tools.SRL.Command = ""
	return cfg
}

func TestStageBuilder_FullOfflineRun(t *testing.T) {
	corpus := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(corpus, "d1.txt"), []byte(stageTestDoc), 0644))

	runsDir := t.TempDir()
	cfg := stageTestConfig(t, runsDir, writeStageTestResources(t))
	layout := workflow.NewLayout(runsDir, "offline-test")

	// The parse normally comes from the external parser; seed it directly.
	require.NoError(t, os.MkdirAll(layout.AMRDir(), 0755))
	require.NoError(t, os.WriteFile(layout.AMROutput(), []byte(stageTestAMR), 0644))

	builder := NewStageBuilder(cfg, layout, nil)
	builder.CorpusDir = corpus

	runner := NewRunner(layout, builder.Stages(), nil)
	require.NoError(t, runner.Run(context.Background()))

	claims, err := export.ReadClaims(layout.FinalClaims())
	require.NoError(t, err)
	require.Len(t, claims, 1)

	claim := claims[0]
	assert.Equal(t, "d1", claim.DocID)
	assert.Contains(t, claim.ClaimText, "cures COVID-19")
	assert.Equal(t, "Cure for the virus", claim.Topic)
	assert.Equal(t, "X cures COVID-19", claim.ClaimTemplate)

	require.Len(t, claim.ClaimSemantics, 1)
	require.NotNil(t, claim.ClaimSemantics[0].Event)
	assert.Equal(t, "Q99999", claim.ClaimSemantics[0].Event.QnodeID)
	assert.Equal(t, "cure", claim.ClaimSemantics[0].Event.Text)

	state, err := LoadState(layout.StatePath())
	require.NoError(t, err)
	for _, stage := range workflow.StageOrder {
		assert.True(t, state.Done(stage), "expected stage %s done", stage)
	}
}

func TestStageBuilder_RerunSkipsEverything(t *testing.T) {
	corpus := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(corpus, "d1.txt"), []byte(stageTestDoc), 0644))

	runsDir := t.TempDir()
	cfg := stageTestConfig(t, runsDir, writeStageTestResources(t))
	layout := workflow.NewLayout(runsDir, "rerun-test")

	require.NoError(t, os.MkdirAll(layout.AMRDir(), 0755))
	require.NoError(t, os.WriteFile(layout.AMROutput(), []byte(stageTestAMR), 0644))

	builder := NewStageBuilder(cfg, layout, nil)
	builder.CorpusDir = corpus
	require.NoError(t, NewRunner(layout, builder.Stages(), nil).Run(context.Background()))

	before, err := os.Stat(layout.FinalClaims())
	require.NoError(t, err)

	// Second run: every output is present, so nothing is rewritten.
	require.NoError(t, NewRunner(layout, builder.Stages(), nil).Run(context.Background()))
	after, err := os.Stat(layout.FinalClaims())
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestStageBuilder_LinkSeesRoleLabels(t *testing.T) {
	runsDir := t.TempDir()
	cfg := stageTestConfig(t, runsDir, t.TempDir())
	layout := workflow.NewLayout(runsDir, "srl-test")
	require.NoError(t, os.MkdirAll(layout.ArtifactsDir(), 0755))

	srl := `{"claim_id": "c1", "verb": "cure", "labels": {"ARG1": "COVID-19"}}
`
	require.NoError(t, os.WriteFile(layout.SRLOutput(), []byte(srl), 0644))

	builder := NewStageBuilder(cfg, layout, nil)
	claims := []*model.Claim{{ClaimID: "c1"}, {ClaimID: "c2"}}
	require.NoError(t, builder.attachRoleLabels(claims))

	label := claims[0].Theory(model.TheorySRL)
	require.NotNil(t, label)
	assert.Equal(t, "cure", label.(*model.SRLabel).Verb)
	assert.Nil(t, claims[1].Theory(model.TheorySRL))
}

func TestStageBuilder_IngestFailsOnEmptyCorpus(t *testing.T) {
	runsDir := t.TempDir()
	cfg := stageTestConfig(t, runsDir, t.TempDir())
	layout := workflow.NewLayout(runsDir, "empty-test")

	builder := NewStageBuilder(cfg, layout, nil)
	builder.CorpusDir = t.TempDir()

	err := NewRunner(layout, builder.Stages(), nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest")
}
