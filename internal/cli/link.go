package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimflow/internal/amr"
	"github.com/ppiankov/claimflow/internal/cache"
	"github.com/ppiankov/claimflow/internal/export"
	"github.com/ppiankov/claimflow/internal/extract"
	"github.com/ppiankov/claimflow/internal/ingest"
	"github.com/ppiankov/claimflow/internal/wikidata"
	"github.com/ppiankov/claimflow/internal/worker"
)

var (
	linkResources string
	linkOffline   bool
)

// linkCmd represents the link command
var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link claim events and arguments to Wikidata qnodes",
	Long: `Link resolves each claim's event frame against the qnode tables and, when
a candidate service is configured, its X variable, claimer, and arguments
against Wikidata.

Example:
  claimflow link --claims claims_extracted.json --amr claims.amr --docs docs/ --output claims_linked.json
  claimflow link --claims claims_extracted.json --amr claims.amr --docs docs/ --output claims_linked.json --offline`,
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

		if linkResources != "" {
			cfg.Paths.ResourcesDir = linkResources
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

		tables, err := wikidata.LoadTables(cfg.Paths.ResourcesDir)
		if err != nil {
			return err
		}
		linker := wikidata.NewEventLinker(tables)

		var client *wikidata.Client
		if !linkOffline && cfg.Linker.Endpoint != "" {
			limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
			var queries wikidata.QueryCache
			if cfg.Cache.Enabled {
				queries = cache.NewQueries(cfg.Cache.Dir, cfg.Cache.MemoryTTL, cfg.Cache.DiskTTL)
			}
			client, err = wikidata.NewClient(cfg.Linker, limiter, queries)
			if err != nil {
				return err
			}
		}

		builder := wikidata.NewSemanticsBuilder(linker, client, ingest.Tokenize, log)
		linked := 0
		for i, claim := range claims {
			extract.AttachTokenOffsets(claim, docs)
			if err := builder.LinkClaimMentions(cmd.Context(), claim); err != nil {
				return fmt.Errorf("link claim %s: %w", claim.ClaimID, err)
			}
			ann := extract.PairAnnotation(claims, annotations, i)
			if ann == nil {
				continue
			}
			semantics, err := builder.Build(cmd.Context(), claim, ann.Graph, ann.Alignments)
			if err != nil {
				return fmt.Errorf("build semantics for claim %s: %w", claim.ClaimID, err)
			}
			if semantics != nil {
				claim.ClaimSemantics = append(claim.ClaimSemantics, semantics)
				linked++
			}
		}

		if err := export.WriteClaims(claims, stageOutput); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Linked %d/%d claims to event qnodes\n", linked, len(claims))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(linkCmd)

	linkCmd.Flags().StringVar(&stageClaims, "claims", "", "extracted claims file")
	linkCmd.Flags().StringVar(&stageAMR, "amr", "", "AMR parse file")
	linkCmd.Flags().StringVar(&stageDocs, "docs", "", "document artifact directory")
	linkCmd.Flags().StringVar(&stageOutput, "output", "", "linked claims file")
	linkCmd.Flags().StringVar(&linkResources, "resources", "", "qnode table directory (default: configured resources dir)")
	linkCmd.Flags().BoolVar(&linkOffline, "offline", false, "skip the candidate service, table lookups only")
	_ = linkCmd.MarkFlagRequired("claims")
	_ = linkCmd.MarkFlagRequired("amr")
	_ = linkCmd.MarkFlagRequired("docs")
	_ = linkCmd.MarkFlagRequired("output")
}
