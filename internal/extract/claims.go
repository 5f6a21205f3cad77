package extract

import (
	"github.com/ppiankov/claimflow/internal/amr"
	"github.com/ppiankov/claimflow/internal/model"
)

// PairAnnotation matches the i-th claim to its parse. An annotation whose id
// names the claim wins; otherwise line order pairs them positionally.
func PairAnnotation(claims []*model.Claim, annotations []*amr.Annotation, i int) *amr.Annotation {
	for _, ann := range annotations {
		if ann.Graph.ID != "" && ann.Graph.ID == claims[i].ClaimID {
			return ann
		}
	}
	if i < len(annotations) {
		return annotations[i]
	}
	return nil
}

// AttachTokenOffsets restores the claim's token-offset table from its source
// document. Stage annotations are not serialized, so each stage that needs
// document-relative spans rebuilds the table.
func AttachTokenOffsets(claim *model.Claim, docs map[string]*model.Document) {
	sent := ClaimSentence(claim, docs)
	if sent == nil {
		return
	}
	doc := docs[claim.DocID]
	claim.AddTheory(model.TheoryTokenOffsets, doc.TokenOffsetsFor(sent))
}

// SentenceLabels returns the entity and part-of-speech maps for the claim's
// source sentence, when the tagged document is available.
func SentenceLabels(claim *model.Claim, docs map[string]*model.Document) (map[string]string, map[string]string) {
	sent := ClaimSentence(claim, docs)
	if sent == nil {
		return nil, nil
	}
	doc := docs[claim.DocID]
	return doc.EntityLabels(sent), doc.POSLabels(sent)
}

// ClaimSentence finds the document sentence a claim's span falls inside.
func ClaimSentence(claim *model.Claim, docs map[string]*model.Document) *model.Sentence {
	doc := docs[claim.DocID]
	if doc == nil || claim.ClaimSpan == nil {
		return nil
	}
	for i := range doc.Sentences {
		s := &doc.Sentences[i]
		if claim.ClaimSpan.Start >= s.Start && claim.ClaimSpan.End <= s.End {
			return s
		}
	}
	return nil
}
