// Package merge attaches entities from the upstream EDL output to the
// mentions extracted by the claim pipeline.
package merge

import (
	"go.uber.org/zap"

	"github.com/ppiankov/claimflow/internal/model"
)

// Merger matches claim mentions against an EDL mention store by span.
type Merger struct {
	store      *model.MentionStore
	minOverlap int
	log        *zap.SugaredLogger
}

// NewMerger creates a merger. minOverlap is the smallest span overlap (in
// characters) accepted when no exact span match exists.
func NewMerger(store *model.MentionStore, minOverlap int, log *zap.SugaredLogger) *Merger {
	if minOverlap <= 0 {
		minOverlap = 1
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Merger{store: store, minOverlap: minOverlap, log: log}
}

// MergeClaims attaches entities to every claim's mentions and returns the
// number of mentions matched.
func (m *Merger) MergeClaims(claims []*model.Claim) int {
	matched := 0
	for _, claim := range claims {
		matched += m.mergeClaim(claim)
	}
	return matched
}

func (m *Merger) mergeClaim(claim *model.Claim) int {
	matched := 0
	if m.attach(claim.XVariable) {
		matched++
	}
	if m.attach(claim.Claimer) {
		matched++
	}
	for _, semantics := range claim.ClaimSemantics {
		if semantics.Event != nil && m.attach(&semantics.Event.Mention) {
			matched++
		}
		for _, arg := range semantics.Args {
			if arg != nil && m.attach(&arg.Mention) {
				matched++
			}
		}
	}
	if matched > 0 {
		m.log.Debugw("merged entities", "claim_id", claim.ClaimID, "matched", matched)
	}
	return matched
}

// attach finds the EDL mention covering the claim mention's span, first by
// exact span, then by best overlap.
func (m *Merger) attach(mention *model.Mention) bool {
	if mention == nil || mention.Span == nil || mention.DocID == "" {
		return false
	}
	found := m.store.Lookup(mention.DocID, *mention.Span)
	if found == nil {
		found = m.store.BestOverlap(mention.DocID, *mention.Span, m.minOverlap)
	}
	if found == nil {
		return false
	}
	mention.Entity = found.ParentEntity
	return true
}
