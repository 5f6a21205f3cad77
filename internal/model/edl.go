package model

import "fmt"

// EDLEntity is an entity from the upstream Entity Discovery and Linking output.
type EDLEntity struct {
	EntID   string `json:"ent_id"`
	EntType string `json:"ent_type"`
}

// EDLMention is a single entity mention from the EDL output.
type EDLMention struct {
	DocID        string     `json:"doc_id"`
	Text         string     `json:"text"`
	MentionType  string     `json:"mention_type"`
	Span         Span       `json:"span"`
	ParentEntity *EDLEntity `json:"parent_entity"`
}

// MentionStore holds EDL mentions keyed by document id, then by span.
type MentionStore struct {
	Docs map[string]map[string]*EDLMention `json:"docs"`
}

// NewMentionStore creates an empty mention store.
func NewMentionStore() *MentionStore {
	return &MentionStore{Docs: make(map[string]map[string]*EDLMention)}
}

func spanKey(s Span) string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Add records a mention under its document and span.
func (m *MentionStore) Add(mention *EDLMention) {
	doc := m.Docs[mention.DocID]
	if doc == nil {
		doc = make(map[string]*EDLMention)
		m.Docs[mention.DocID] = doc
	}
	doc[spanKey(mention.Span)] = mention
}

// Lookup returns the mention at exactly the given doc/span, or nil.
func (m *MentionStore) Lookup(docID string, span Span) *EDLMention {
	doc := m.Docs[docID]
	if doc == nil {
		return nil
	}
	return doc[spanKey(span)]
}

// BestOverlap returns the mention in docID with the largest span overlap of at
// least minOverlap positions, or nil.
func (m *MentionStore) BestOverlap(docID string, span Span, minOverlap int) *EDLMention {
	var best *EDLMention
	bestOverlap := minOverlap - 1
	for _, mention := range m.Docs[docID] {
		if ov := mention.Span.Overlap(span); ov > bestOverlap {
			best = mention
			bestOverlap = ov
		}
	}
	return best
}

// Len returns the total number of mentions across all documents.
func (m *MentionStore) Len() int {
	n := 0
	for _, doc := range m.Docs {
		n += len(doc)
	}
	return n
}
