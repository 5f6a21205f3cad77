package provision

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ppiankov/claimflow/internal/model"
)

// Check is one environment check result.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Doctor inspects the host for everything the external stages need.
type Doctor struct {
	tools model.ToolsConfig

	// Injected for tests.
	lookPath func(string) (string, error)
	runCmd   func(ctx context.Context, name string, args ...string) (string, error)
}

// NewDoctor creates a doctor for the configured tools.
func NewDoctor(tools model.ToolsConfig) *Doctor {
	return &Doctor{
		tools:    tools,
		lookPath: exec.LookPath,
		runCmd: func(ctx context.Context, name string, args ...string) (string, error) {
			out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
			return string(out), err
		},
	}
}

// Checks runs every environment check and returns the report. Findings are
// informational; callers decide which failures are fatal for their stages.
func (d *Doctor) Checks(ctx context.Context) []Check {
	checks := []Check{d.checkConda(ctx)}
	checks = append(checks, d.checkCondaEnvs(ctx)...)
	checks = append(checks, d.checkJava(ctx), d.checkCUDA())
	return checks
}

func (d *Doctor) condaBinary() string {
	if d.tools.CondaPath != "" {
		return filepath.Join(d.tools.CondaPath, "bin", "conda")
	}
	return "conda"
}

func (d *Doctor) checkConda(ctx context.Context) Check {
	conda := d.condaBinary()
	if _, err := d.lookPath(conda); err != nil {
		return Check{Name: "conda", Detail: fmt.Sprintf("%s not found (set CONDA_PATH)", conda)}
	}
	out, err := d.runCmd(ctx, conda, "--version")
	if err != nil {
		return Check{Name: "conda", Detail: fmt.Sprintf("%s --version failed: %v", conda, err)}
	}
	return Check{Name: "conda", OK: true, Detail: strings.TrimSpace(out)}
}

// checkCondaEnvs verifies the tool-named conda environments exist.
func (d *Doctor) checkCondaEnvs(ctx context.Context) []Check {
	names := make([]string, 0, 3)
	for _, tool := range []model.ToolConfig{d.tools.AMRParser, d.tools.SRL, d.tools.Tagger} {
		if tool.CondaEnv != "" && !contains(names, tool.CondaEnv) {
			names = append(names, tool.CondaEnv)
		}
	}
	if len(names) == 0 {
		return nil
	}

	out, err := d.runCmd(ctx, d.condaBinary(), "env", "list")
	checks := make([]Check, 0, len(names))
	for _, name := range names {
		check := Check{Name: "conda env " + name}
		switch {
		case err != nil:
			check.Detail = fmt.Sprintf("conda env list failed: %v", err)
		case envListed(out, name):
			check.OK = true
			check.Detail = "present"
		default:
			check.Detail = "not found"
		}
		checks = append(checks, check)
	}
	return checks
}

// checkJava looks for the Java 8 runtime the entity aligner requires.
func (d *Doctor) checkJava(ctx context.Context) Check {
	if _, err := d.lookPath("java"); err != nil {
		return Check{Name: "java 8", Detail: "java not found"}
	}
	out, err := d.runCmd(ctx, "java", "-version")
	if err != nil {
		return Check{Name: "java 8", Detail: fmt.Sprintf("java -version failed: %v", err)}
	}
	if !strings.Contains(out, "1.8") {
		return Check{Name: "java 8", Detail: "java found but not version 1.8: " + firstLine(out)}
	}
	return Check{Name: "java 8", OK: true, Detail: firstLine(out)}
}

func (d *Doctor) checkCUDA() Check {
	if d.tools.CUDADevice == "" || d.tools.CUDADevice == "cpu" {
		return Check{Name: "cuda", OK: true, Detail: "not requested (cpu)"}
	}
	if _, err := d.lookPath("nvidia-smi"); err != nil {
		return Check{Name: "cuda", Detail: "cuda device requested but nvidia-smi not found"}
	}
	return Check{Name: "cuda", OK: true, Detail: "nvidia-smi present"}
}

func envListed(envList, name string) bool {
	for _, line := range strings.Split(envList, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == name {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
