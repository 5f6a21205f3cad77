package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/claimflow/internal/model"
)

func TestExternalStage_Run(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.txt")
	output := filepath.Join(dir, "output.txt")
	require.NoError(t, os.WriteFile(input, []byte("claim text\n"), 0644))

	stage := NewExternalStage("copy", model.ToolsConfig{}, model.ToolConfig{
		Command: `sh -c "cp {input} {output}"`,
		Timeout: 10 * time.Second,
	}, input, output, "", dir, nil)

	require.NoError(t, stage.Run(context.Background()))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "claim text\n", string(data))
	assert.FileExists(t, filepath.Join(dir, "copy.log"))
}

func TestExternalStage_FailureCarriesStderr(t *testing.T) {
	dir := t.TempDir()
	stage := NewExternalStage("broken", model.ToolsConfig{}, model.ToolConfig{
		Command: `sh -c "echo boom-message >&2; exit 3"`,
	}, "", "", "", dir, nil)

	err := stage.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom-message")
	assert.Contains(t, err.Error(), "broken")
}

func TestExternalStage_Timeout(t *testing.T) {
	dir := t.TempDir()
	stage := NewExternalStage("slow", model.ToolsConfig{}, model.ToolConfig{
		Command: "sleep 5",
		Timeout: 50 * time.Millisecond,
	}, "", "", "", dir, nil)

	err := stage.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestExternalStage_CondaWrapping(t *testing.T) {
	stage := NewExternalStage("amr", model.ToolsConfig{CondaPath: "/opt/conda"}, model.ToolConfig{
		Command:  "python parse.py --in {input} --out {output} --checkpoint {model}",
		CondaEnv: "transition-amr-parser",
	}, "/in.txt", "/out.amr", "/ckpt.pt", t.TempDir(), nil)

	argv, err := stage.buildArgv()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/opt/conda/bin/conda", "run", "-n", "transition-amr-parser",
		"python", "parse.py", "--in", "/in.txt", "--out", "/out.amr", "--checkpoint", "/ckpt.pt",
	}, argv)
}

func TestExternalStage_BadTemplate(t *testing.T) {
	stage := NewExternalStage("bad", model.ToolsConfig{}, model.ToolConfig{
		Command: `sh -c "unterminated`,
	}, "", "", "", t.TempDir(), nil)

	_, err := stage.buildArgv()
	require.Error(t, err)
}
