package detect

import (
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/claimflow/internal/model"
)

// Detector matches document sentences against a topic list's templates.
type Detector struct {
	list      *TopicList
	maxTokens int
	log       *zap.SugaredLogger

	// patterns pre-split into lowercase term sets, indexed as templates.
	patterns [][][]string
}

// NewDetector creates a detector. Sentences longer than maxTokens are skipped
// (0 disables the limit).
func NewDetector(list *TopicList, maxTokens int, log *zap.SugaredLogger) *Detector {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	d := &Detector{list: list, maxTokens: maxTokens, log: log}
	for _, tmpl := range list.Templates {
		var sets [][]string
		for _, pattern := range tmpl.Patterns {
			sets = append(sets, strings.Fields(strings.ToLower(pattern)))
		}
		d.patterns = append(d.patterns, sets)
	}
	return d
}

// DetectDocument returns one claim per claim-bearing sentence. A sentence
// yields at most one claim; the first matching template wins, and identical
// claim text within a document is reported once.
func (d *Detector) DetectDocument(doc *model.Document) []*model.Claim {
	var claims []*model.Claim
	seen := make(map[string]bool)

	for i := range doc.Sentences {
		sent := &doc.Sentences[i]
		if d.maxTokens > 0 && len(sent.Tokens) > d.maxTokens {
			d.log.Debugw("skipping long sentence", "doc_id", doc.DocID,
				"sentence", sent.Index, "tokens", len(sent.Tokens))
			continue
		}
		if seen[sent.Text] {
			continue
		}

		tmpl := d.match(sent)
		if tmpl == nil {
			continue
		}
		seen[sent.Text] = true

		claim := &model.Claim{
			ClaimID:       model.NewID(),
			DocID:         doc.DocID,
			ClaimText:     sent.Text,
			ClaimSentence: sent.Text,
			ClaimSpan:     &model.Span{Start: sent.Start, End: sent.End},
			ClaimTemplate: tmpl.Template,
			Topic:         tmpl.Topic,
			Subtopic:      tmpl.Subtopic,
		}
		claim.AddTheory(model.TheoryTokenOffsets, doc.TokenOffsetsFor(sent))
		claims = append(claims, claim)
		d.log.Debugw("detected claim", "doc_id", doc.DocID, "claim_id", claim.ClaimID,
			"template", tmpl.Template)
	}
	return claims
}

// DetectAll runs detection over every document.
func (d *Detector) DetectAll(docs []*model.Document) []*model.Claim {
	var claims []*model.Claim
	for _, doc := range docs {
		claims = append(claims, d.DetectDocument(doc)...)
	}
	return claims
}

func (d *Detector) match(sent *model.Sentence) *Template {
	have := make(map[string]bool, len(sent.Tokens))
	for _, tok := range sent.Tokens {
		have[strings.ToLower(tok.Text)] = true
	}

	for i := range d.list.Templates {
		for _, terms := range d.patterns[i] {
			if containsAll(have, terms) {
				return &d.list.Templates[i]
			}
		}
	}
	return nil
}

func containsAll(have map[string]bool, terms []string) bool {
	for _, term := range terms {
		if !have[term] {
			return false
		}
	}
	return true
}
