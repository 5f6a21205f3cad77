package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimflow/internal/amr"
	"github.com/ppiankov/claimflow/internal/detect"
	"github.com/ppiankov/claimflow/internal/export"
	"github.com/ppiankov/claimflow/internal/extract"
	"github.com/ppiankov/claimflow/internal/ingest"
	"github.com/ppiankov/claimflow/internal/merge"
	"github.com/ppiankov/claimflow/internal/model"
)

// Stage commands operate on explicit files, outside any run directory. They
// exist for debugging single stages and for corpora processed elsewhere.
var (
	stageInput  string
	stageOutput string
	stageClaims string
	stageAMR    string
	stageDocs   string
	stageEDL    string
	stageTopics string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Tokenize a corpus directory into document artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ingester := ingest.NewCorpusIngester(cfg.Concurrency.IngestWorkers, log)
		written, errs := ingester.IngestDir(cmd.Context(), stageInput, stageOutput)
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "✗ %v\n", e)
		}
		if len(written) == 0 {
			return fmt.Errorf("no documents ingested from %s", stageInput)
		}
		fmt.Fprintf(os.Stderr, "✓ Ingested %d documents into %s\n", len(written), stageOutput)
		return nil
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect topic-relevant claims in ingested documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		docs, err := ingest.LoadDocuments(stageInput)
		if err != nil {
			return err
		}
		list, err := topicListFor(cfg)
		if err != nil {
			return err
		}

		claims := detect.NewDetector(list, cfg.Detection.MaxTokens, log).DetectAll(docs)
		if err := export.WriteClaims(claims, stageOutput); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Detected %d claims in %d documents\n", len(claims), len(docs))
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:     "amr",
	Aliases: []string{"extract"},
	Short:   "Identify X variables and claimers from AMR parses",
	Long: `Amr reads detected claims and their AMR parses, identifies each claim's
X variable and claimer, and writes the enriched claims.

Example:
  claimflow amr --claims claims_detected.json --amr claims.amr --docs docs/ --output claims_extracted.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		claims, err := export.ReadClaims(stageClaims)
		if err != nil {
			return err
		}
		annotations, err := amr.ParseFile(stageAMR)
		if err != nil {
			return err
		}
		docs, err := loadDocIndex(stageDocs)
		if err != nil {
			return err
		}

		covid := cfg.Detection.Domain == "covid"
		found := 0
		for i, claim := range claims {
			ann := extract.PairAnnotation(claims, annotations, i)
			if ann == nil {
				continue
			}
			extract.AttachTokenOffsets(claim, docs)
			ents, pos := extract.SentenceLabels(claim, docs)
			if covid {
				claim.XVariable = extract.IdentifyXVariableCovid(ann.Graph, ann.Alignments, claim, ingest.Tokenize)
			} else {
				claim.XVariable = extract.IdentifyXVariable(ann.Graph, ann.Alignments, claim, ents, pos, ingest.Tokenize)
			}
			claim.Claimer = extract.IdentifyClaimer(claim, ann.Graph.Tokens, ann.Graph, ann.Alignments, pos, ingest.Tokenize)
			if claim.XVariable != nil || claim.Claimer != nil {
				found++
			}
		}

		if err := export.WriteClaims(claims, stageOutput); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Extracted mentions for %d/%d claims\n", found, len(claims))
		return nil
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge entity mentions from an EDL export into claims",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		claims, err := export.ReadClaims(stageClaims)
		if err != nil {
			return err
		}
		store, err := ingest.ParseEDL(stageEDL)
		if err != nil {
			return err
		}

		matched := merge.NewMerger(store, 3, log).MergeClaims(claims)
		if err := export.WriteClaims(claims, stageOutput); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Matched %d mentions across %d claims (%d entities)\n", matched, len(claims), store.Len())
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the final claims file",
	RunE: func(cmd *cobra.Command, args []string) error {
		claims, err := export.ReadClaims(stageClaims)
		if err != nil {
			return err
		}
		if err := export.WriteClaims(claims, stageOutput); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Exported %d claims to %s\n", len(claims), stageOutput)
		return nil
	},
}

func topicListFor(cfg *model.Config) (*detect.TopicList, error) {
	if stageTopics != "" {
		return detect.LoadTopicList(stageTopics)
	}
	if cfg.Detection.TopicsFile != "" {
		return detect.LoadTopicList(cfg.Detection.TopicsFile)
	}
	return detect.DefaultTopicList()
}

func loadDocIndex(dir string) (map[string]*model.Document, error) {
	docs, err := ingest.LoadDocuments(dir)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Document, len(docs))
	for _, doc := range docs {
		byID[doc.DocID] = doc
	}
	return byID, nil
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(exportCmd)

	ingestCmd.Flags().StringVar(&stageInput, "input", "", "corpus directory")
	ingestCmd.Flags().StringVar(&stageOutput, "output", "", "document artifact directory")
	_ = ingestCmd.MarkFlagRequired("input")
	_ = ingestCmd.MarkFlagRequired("output")

	detectCmd.Flags().StringVar(&stageInput, "input", "", "document artifact directory")
	detectCmd.Flags().StringVar(&stageOutput, "output", "", "detected claims file")
	detectCmd.Flags().StringVar(&stageTopics, "topics", "", "topic template file (default: built-in list)")
	_ = detectCmd.MarkFlagRequired("input")
	_ = detectCmd.MarkFlagRequired("output")

	extractCmd.Flags().StringVar(&stageClaims, "claims", "", "detected claims file")
	extractCmd.Flags().StringVar(&stageAMR, "amr", "", "AMR parse file")
	extractCmd.Flags().StringVar(&stageDocs, "docs", "", "document artifact directory")
	extractCmd.Flags().StringVar(&stageOutput, "output", "", "extracted claims file")
	_ = extractCmd.MarkFlagRequired("claims")
	_ = extractCmd.MarkFlagRequired("amr")
	_ = extractCmd.MarkFlagRequired("docs")
	_ = extractCmd.MarkFlagRequired("output")

	mergeCmd.Flags().StringVar(&stageClaims, "claims", "", "linked claims file")
	mergeCmd.Flags().StringVar(&stageEDL, "edl", "", "EDL export (merged.cs)")
	mergeCmd.Flags().StringVar(&stageOutput, "output", "", "merged claims file")
	_ = mergeCmd.MarkFlagRequired("claims")
	_ = mergeCmd.MarkFlagRequired("edl")
	_ = mergeCmd.MarkFlagRequired("output")

	exportCmd.Flags().StringVar(&stageClaims, "claims", "", "claims file to finalize")
	exportCmd.Flags().StringVar(&stageOutput, "output", "", "final claims file")
	_ = exportCmd.MarkFlagRequired("claims")
	_ = exportCmd.MarkFlagRequired("output")
}
