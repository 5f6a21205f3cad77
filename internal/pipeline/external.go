package pipeline

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/ppiankov/claimflow/internal/model"
)

// stderrTailBytes bounds how much captured stderr a failure message carries.
const stderrTailBytes = 2048

// ExternalStage runs an external tool (AMR parser, semantic role labeler,
// tagger) as a subprocess built from its command template.
type ExternalStage struct {
	name   string
	tool   model.ToolConfig
	tools  model.ToolsConfig
	input  string
	output string
	model  string
	logDir string
	log    *zap.SugaredLogger
}

// NewExternalStage creates an external stage. model may be empty when the
// tool's template has no {model} placeholder.
func NewExternalStage(name string, tools model.ToolsConfig, tool model.ToolConfig, input, output, modelPath, logDir string, log *zap.SugaredLogger) *ExternalStage {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ExternalStage{
		name:   name,
		tool:   tool,
		tools:  tools,
		input:  input,
		output: output,
		model:  modelPath,
		logDir: logDir,
		log:    log,
	}
}

func (s *ExternalStage) Name() string      { return s.name }
func (s *ExternalStage) Outputs() []string { return []string{s.output} }

// Run substitutes the template placeholders, wraps the command in the tool's
// conda environment when one is named, and executes it with output captured
// to the stage log.
func (s *ExternalStage) Run(ctx context.Context) error {
	argv, err := s.buildArgv()
	if err != nil {
		return err
	}

	if s.tool.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.tool.Timeout)
		defer cancel()
	}

	logPath := filepath.Join(s.logDir, s.name+".log")
	logFile, err := os.Create(logPath)
	if err != nil {
		return errors.Wrapf(err, "create stage log %s", logPath)
	}
	defer logFile.Close()

	var stderrTail tailBuffer

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = s.buildEnv()
	cmd.Stdout = logFile
	cmd.Stderr = io.MultiWriter(logFile, &stderrTail)

	s.log.Infow("running external stage", "stage", s.name, "command", strings.Join(argv, " "))
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.Newf("stage %s timed out after %s", s.name, s.tool.Timeout)
		}
		return errors.Wrapf(err, "stage %s failed (log: %s): %s", s.name, logPath, stderrTail.String())
	}
	return nil
}

func (s *ExternalStage) buildArgv() ([]string, error) {
	command := s.tool.Command
	command = strings.ReplaceAll(command, "{input}", s.input)
	command = strings.ReplaceAll(command, "{output}", s.output)
	command = strings.ReplaceAll(command, "{model}", s.model)

	argv, err := shellquote.Split(command)
	if err != nil {
		return nil, errors.Wrapf(err, "parse command template for stage %s", s.name)
	}
	if len(argv) == 0 {
		return nil, errors.Newf("empty command template for stage %s", s.name)
	}

	if s.tool.CondaEnv != "" {
		conda := "conda"
		if s.tools.CondaPath != "" {
			conda = filepath.Join(s.tools.CondaPath, "bin", "conda")
		}
		argv = append([]string{conda, "run", "-n", s.tool.CondaEnv}, argv...)
	}
	return argv, nil
}

func (s *ExternalStage) buildEnv() []string {
	env := os.Environ()
	if s.tools.CondaPath != "" {
		env = append(env, "CONDA_PATH="+s.tools.CondaPath)
	}
	if s.tools.CUDADevice != "" && s.tools.CUDADevice != "cpu" {
		env = append(env, "CUDA_VISIBLE_DEVICES="+s.tools.CUDADevice)
	}
	return env
}

// tailBuffer keeps the last stderrTailBytes written to it.
type tailBuffer struct {
	data []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	if len(b.data) > stderrTailBytes {
		b.data = b.data[len(b.data)-stderrTailBytes:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return strings.TrimSpace(string(b.data))
}
