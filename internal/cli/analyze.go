package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimflow/internal/analyze"
	"github.com/ppiankov/claimflow/internal/export"
)

var (
	analyzeOutDir    string
	analyzeSpotCheck bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <claims file>",
	Short: "Summarize a claims file and write topic distributions",
	Long: `Analyze prints coverage statistics for a claims file: claims per topic
and subtopic, X variable and claimer qnode coverage, semantic argument
counts, and entity reuse across claims.

With --output, topic and subtopic distributions are written as CSV.
With --spot-check, each linked qnode is shown for a manual 1/0 review
and the resulting accuracy is reported.

Example:
  claimflow analyze claims.json
  claimflow analyze claims.json --output ./analysis
  claimflow analyze claims.json --spot-check`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		claims, err := export.ReadClaims(args[0])
		if err != nil {
			return err
		}

		stats := analyze.Analyze(claims)
		stats.WriteSummary(os.Stdout)

		if analyzeOutDir != "" {
			if err := os.MkdirAll(analyzeOutDir, 0755); err != nil {
				return err
			}
			if err := stats.WriteDistributions(analyzeOutDir); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "✓ Distributions written to %s\n", analyzeOutDir)
		}

		if analyzeSpotCheck {
			result, err := analyze.SpotCheck(claims, os.Stdin, os.Stdout)
			if err != nil {
				return err
			}
			fmt.Printf("\nSpot check: %d/%d good (%.2f)\n", result.Good, result.Total, result.Accuracy())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeOutDir, "output", "", "directory for distribution CSVs")
	analyzeCmd.Flags().BoolVar(&analyzeSpotCheck, "spot-check", false, "interactively review linked qnodes")
}
