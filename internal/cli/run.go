package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimflow/internal/pipeline"
	"github.com/ppiankov/claimflow/internal/workflow"
)

var (
	runCorpus  string
	runEDL     string
	runParams  string
	runForce   bool
	runFrom    string
	runOnly    string
	runTimeout time.Duration
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Execute the full claim pipeline for a named run",
	Long: `Run executes every pipeline stage in order for one named run:
ingest, detect, amr, srl, link, merge, export.

Artifacts, logs, and stage state live under <runs_dir>/<name>/. A rerun
skips stages whose outputs are already present; --force reruns everything,
and --from / --only select a subsequence.

Example:
  claimflow run covid-news --corpus ./corpus --edl ./merged.cs
  claimflow run covid-news --params run.toml
  claimflow run covid-news --corpus ./corpus --from link
  claimflow run covid-news --corpus ./corpus --only detect --force`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runCorpus, "corpus", "", "source document directory")
	runCmd.Flags().StringVar(&runEDL, "edl", "", "upstream EDL export to merge entities from")
	runCmd.Flags().StringVar(&runParams, "params", "", "workflow parameter file (TOML)")
	runCmd.Flags().BoolVar(&runForce, "force", false, "rerun stages whose outputs are already present")
	runCmd.Flags().StringVar(&runFrom, "from", "", "start at this stage")
	runCmd.Flags().StringVar(&runOnly, "only", "", "run only this stage")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "overall run timeout (0 = none)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	corpus, edl := runCorpus, runEDL
	if runParams != "" {
		params, err := workflow.LoadParams(runParams)
		if err != nil {
			return err
		}
		if corpus == "" {
			corpus = params.GetDefault("corpus", "")
		}
		if edl == "" {
			edl = params.GetDefault("edl", "")
		}
		if dir, ok := params.Get("runs_dir"); ok {
			cfg.Paths.RunsDir = dir
		}
		if dir, ok := params.Get("resources_dir"); ok {
			cfg.Paths.ResourcesDir = dir
		}
		if domain, ok := params.Get("domain"); ok {
			cfg.Detection.Domain = domain
		}
	}
	if corpus == "" {
		return fmt.Errorf("no corpus directory: pass --corpus or set corpus in the parameter file")
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	if runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	layout := workflow.NewLayout(cfg.Paths.RunsDir, name)
	builder := pipeline.NewStageBuilder(cfg, layout, log)
	builder.CorpusDir = corpus
	builder.EDLPath = edl

	runner := pipeline.NewRunner(layout, builder.Stages(), log)
	runner.Force = runForce
	runner.From = runFrom
	runner.Only = runOnly

	fmt.Fprintf(os.Stderr, "⚙️  Running pipeline %q in %s\n", name, layout.RunDir)
	start := time.Now()
	if err := runner.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "✗ Run failed after %s\n", time.Since(start).Round(time.Second))
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ Run complete in %s\n", time.Since(start).Round(time.Second))
	fmt.Fprintf(os.Stderr, "✓ Claims: %s\n", layout.FinalClaims())
	return nil
}
