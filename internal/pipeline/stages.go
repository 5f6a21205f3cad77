package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ppiankov/claimflow/internal/amr"
	"github.com/ppiankov/claimflow/internal/cache"
	"github.com/ppiankov/claimflow/internal/detect"
	"github.com/ppiankov/claimflow/internal/export"
	"github.com/ppiankov/claimflow/internal/extract"
	"github.com/ppiankov/claimflow/internal/ingest"
	"github.com/ppiankov/claimflow/internal/merge"
	"github.com/ppiankov/claimflow/internal/model"
	"github.com/ppiankov/claimflow/internal/wikidata"
	"github.com/ppiankov/claimflow/internal/worker"
	"github.com/ppiankov/claimflow/internal/workflow"
)

// mergeMinOverlap is the minimum character overlap for matching a claim
// mention to an EDL mention when the spans do not line up exactly.
const mergeMinOverlap = 3

// StageBuilder assembles the stage sequence for one run.
type StageBuilder struct {
	cfg    *model.Config
	layout workflow.Layout
	log    *zap.SugaredLogger

	// CorpusDir is the source document directory for the ingest stage.
	CorpusDir string
	// EDLPath is the upstream entity export; empty skips entity merging.
	EDLPath string
}

// NewStageBuilder creates a builder for the layout.
func NewStageBuilder(cfg *model.Config, layout workflow.Layout, log *zap.SugaredLogger) *StageBuilder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &StageBuilder{cfg: cfg, layout: layout, log: log}
}

// Stages returns the full stage sequence in pipeline order.
func (b *StageBuilder) Stages() []Stage {
	return []Stage{
		&FuncStage{StageName: workflow.StageIngest, StageOutputs: []string{b.layout.DocsDir()}, RunFunc: b.runIngest},
		&FuncStage{StageName: workflow.StageDetect, StageOutputs: []string{b.layout.DetectedClaims(), b.layout.ClaimSentences()}, RunFunc: b.runDetect},
		&FuncStage{StageName: workflow.StageAMR, StageOutputs: []string{b.layout.ExtractedClaims()}, RunFunc: b.runAMR},
		&FuncStage{StageName: workflow.StageSRL, StageOutputs: []string{b.layout.SRLOutput()}, RunFunc: b.runSRL},
		&FuncStage{StageName: workflow.StageLink, StageOutputs: []string{b.layout.LinkedClaims()}, RunFunc: b.runLink},
		&FuncStage{StageName: workflow.StageMerge, StageOutputs: []string{b.layout.MergedClaims()}, RunFunc: b.runMerge},
		&FuncStage{StageName: workflow.StageExport, StageOutputs: []string{b.layout.FinalClaims()}, RunFunc: b.runExport},
	}
}

func (b *StageBuilder) runIngest(ctx context.Context) error {
	ingester := ingest.NewCorpusIngester(b.cfg.Concurrency.IngestWorkers, b.log)
	written, errs := ingester.IngestDir(ctx, b.CorpusDir, b.layout.DocsDir())
	for _, err := range errs {
		b.log.Warnw("document skipped", "error", err)
	}
	if len(written) == 0 {
		if len(errs) > 0 {
			return errors.Wrap(errs[0], "no documents ingested")
		}
		return errors.Newf("no documents ingested from %s", b.CorpusDir)
	}
	b.log.Infow("corpus ingested", "documents", len(written), "skipped", len(errs))

	// The tagger annotates the document artifacts in place with POS and
	// entity labels; the general-domain X-variable rules depend on them.
	if b.cfg.Tools.Tagger.Command != "" {
		tagger := NewExternalStage("tagger", b.cfg.Tools, b.cfg.Tools.Tagger,
			b.layout.DocsDir(), b.layout.DocsDir(), "", b.layout.LogsDir(), b.log)
		if err := tagger.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (b *StageBuilder) runDetect(ctx context.Context) error {
	docs, err := ingest.LoadDocuments(b.layout.DocsDir())
	if err != nil {
		return err
	}

	list, err := b.topicList()
	if err != nil {
		return err
	}

	detector := detect.NewDetector(list, b.cfg.Detection.MaxTokens, b.log)
	claims := detector.DetectAll(docs)
	b.log.Infow("claims detected", "documents", len(docs), "claims", len(claims))

	if err := export.WriteClaims(claims, b.layout.DetectedClaims()); err != nil {
		return err
	}
	return b.writeClaimSentences(claims)
}

func (b *StageBuilder) topicList() (*detect.TopicList, error) {
	if b.cfg.Detection.TopicsFile != "" {
		return detect.LoadTopicList(b.cfg.Detection.TopicsFile)
	}
	return detect.DefaultTopicList()
}

// writeClaimSentences emits one tokenized claim sentence per line for the
// external parsers. Line order matches claim order in the detected-claims
// file; the extraction stages rely on that to pair annotations back up.
func (b *StageBuilder) writeClaimSentences(claims []*model.Claim) error {
	var sb strings.Builder
	for _, claim := range claims {
		sb.WriteString(strings.Join(ingest.Tokenize(claim.ClaimSentence), " "))
		sb.WriteByte('\n')
	}
	return os.WriteFile(b.layout.ClaimSentences(), []byte(sb.String()), 0644)
}

// runAMR parses every claim sentence with the external AMR parser, then runs
// X-variable and claimer extraction over the resulting graphs. With no parser
// configured the stage expects a pre-existing parse under the run.
func (b *StageBuilder) runAMR(ctx context.Context) error {
	if b.cfg.Tools.AMRParser.Command != "" {
		if err := os.MkdirAll(b.layout.AMRDir(), 0755); err != nil {
			return err
		}
		parser := NewExternalStage(workflow.StageAMR, b.cfg.Tools, b.cfg.Tools.AMRParser,
			b.layout.ClaimSentences(), b.layout.AMROutput(), b.amrCheckpoint(), b.layout.LogsDir(), b.log)
		if err := parser.Run(ctx); err != nil {
			return err
		}
	}

	claims, err := export.ReadClaims(b.layout.DetectedClaims())
	if err != nil {
		return err
	}
	annotations, err := amr.ParseFile(b.layout.AMROutput())
	if err != nil {
		return err
	}
	docs, err := b.loadDocIndex()
	if err != nil {
		return err
	}

	covid := b.cfg.Detection.Domain == "covid"
	extracted := 0
	for i, claim := range claims {
		ann := extract.PairAnnotation(claims, annotations, i)
		if ann == nil {
			b.log.Warnw("claim has no parse", "claim_id", claim.ClaimID)
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
			extracted++
		}
	}
	b.log.Infow("semantic extraction complete", "claims", len(claims), "with_mentions", extracted)

	return export.WriteClaims(claims, b.layout.ExtractedClaims())
}

func (b *StageBuilder) amrCheckpoint() string {
	return filepath.Join(b.cfg.Paths.ResourcesDir, "amr", "model.pt")
}

// runSRL labels the claim sentences with the external semantic-role tool and
// verifies its output parses against the claim set.
func (b *StageBuilder) runSRL(ctx context.Context) error {
	if b.cfg.Tools.SRL.Command != "" {
		srl := NewExternalStage(workflow.StageSRL, b.cfg.Tools, b.cfg.Tools.SRL,
			b.layout.ClaimSentences(), b.layout.SRLOutput(), "", b.layout.LogsDir(), b.log)
		if err := srl.Run(ctx); err != nil {
			return err
		}
	}
	if _, err := os.Stat(b.layout.SRLOutput()); os.IsNotExist(err) {
		b.log.Infow("no srl output, skipping")
		return os.WriteFile(b.layout.SRLOutput(), []byte("[]\n"), 0644)
	}

	labels, err := ingest.ParseSRLOutput(b.layout.SRLOutput())
	if err != nil {
		return err
	}
	claims, err := export.ReadClaims(b.layout.ExtractedClaims())
	if err != nil {
		return err
	}
	missing := ingest.AttachSRL(claims, labels, b.log)
	b.log.Infow("srl labels ingested", "labels", len(labels), "unlabeled_claims", missing)
	return nil
}

// attachRoleLabels rebuilds the claims' role-label annotations from the SRL
// stage artifact. The claim files carry no annotations between stages, so any
// stage that wants the labels reads them back from srl.json.
func (b *StageBuilder) attachRoleLabels(claims []*model.Claim) error {
	if _, err := os.Stat(b.layout.SRLOutput()); os.IsNotExist(err) {
		return nil
	}
	labels, err := ingest.ParseSRLOutput(b.layout.SRLOutput())
	if err != nil {
		return err
	}
	missing := ingest.AttachSRL(claims, labels, b.log)
	b.log.Debugw("role labels reattached", "labels", len(labels), "unlabeled_claims", missing)
	return nil
}

func (b *StageBuilder) runLink(ctx context.Context) error {
	claims, err := export.ReadClaims(b.layout.ExtractedClaims())
	if err != nil {
		return err
	}
	if err := b.attachRoleLabels(claims); err != nil {
		return err
	}
	annotations, err := amr.ParseFile(b.layout.AMROutput())
	if err != nil {
		return err
	}
	docs, err := b.loadDocIndex()
	if err != nil {
		return err
	}

	tables, err := wikidata.LoadTables(b.cfg.Paths.ResourcesDir)
	if err != nil {
		return err
	}
	linker := wikidata.NewEventLinker(tables)

	client, err := b.qnodeClient()
	if err != nil {
		return err
	}
	builder := wikidata.NewSemanticsBuilder(linker, client, ingest.Tokenize, b.log)

	linked := 0
	for i, claim := range claims {
		extract.AttachTokenOffsets(claim, docs)
		if err := builder.LinkClaimMentions(ctx, claim); err != nil {
			return errors.Wrapf(err, "link claim %s", claim.ClaimID)
		}
		ann := extract.PairAnnotation(claims, annotations, i)
		if ann == nil {
			continue
		}
		semantics, err := builder.Build(ctx, claim, ann.Graph, ann.Alignments)
		if err != nil {
			return errors.Wrapf(err, "build semantics for claim %s", claim.ClaimID)
		}
		if semantics != nil {
			claim.ClaimSemantics = append(claim.ClaimSemantics, semantics)
			linked++
		}
	}
	b.log.Infow("claims linked", "claims", len(claims), "with_semantics", linked)

	return export.WriteClaims(claims, b.layout.LinkedClaims())
}

// qnodeClient builds the candidate-service client, or nil when no endpoint is
// configured so linking degrades to table lookups only.
func (b *StageBuilder) qnodeClient() (*wikidata.Client, error) {
	if b.cfg.Linker.Endpoint == "" {
		return nil, nil
	}
	limiter := worker.NewLimiter(b.cfg.RateLimiting.RequestsPerSecond, b.cfg.RateLimiting.BurstSize)
	var queries wikidata.QueryCache
	if b.cfg.Cache.Enabled {
		queries = cache.NewQueries(b.cfg.Cache.Dir, b.cfg.Cache.MemoryTTL, b.cfg.Cache.DiskTTL)
	}
	return wikidata.NewClient(b.cfg.Linker, limiter, queries)
}

func (b *StageBuilder) runMerge(ctx context.Context) error {
	claims, err := export.ReadClaims(b.layout.LinkedClaims())
	if err != nil {
		return err
	}

	if b.EDLPath == "" {
		b.log.Infow("no entity export, claims pass through unmerged")
		return export.WriteClaims(claims, b.layout.MergedClaims())
	}

	store, err := ingest.ParseEDL(b.EDLPath)
	if err != nil {
		return err
	}
	merger := merge.NewMerger(store, mergeMinOverlap, b.log)
	matched := merger.MergeClaims(claims)
	b.log.Infow("entities merged", "claims", len(claims), "mentions_matched", matched)

	return export.WriteClaims(claims, b.layout.MergedClaims())
}

func (b *StageBuilder) runExport(ctx context.Context) error {
	claims, err := export.ReadClaims(b.layout.MergedClaims())
	if err != nil {
		return err
	}
	if err := export.WriteClaims(claims, b.layout.FinalClaims()); err != nil {
		return err
	}
	b.log.Infow("claims exported", "claims", len(claims), "path", b.layout.FinalClaims())
	return nil
}

func (b *StageBuilder) loadDocIndex() (map[string]*model.Document, error) {
	docs, err := ingest.LoadDocuments(b.layout.DocsDir())
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Document, len(docs))
	for _, doc := range docs {
		byID[doc.DocID] = doc
	}
	return byID, nil
}

