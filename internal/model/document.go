package model

// Token is a single token with its character offsets in the document text.
// POS and entity labels are filled in when an external tagger's output is
// ingested; they are empty otherwise.
type Token struct {
	Text     string `json:"text"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	POS      string `json:"pos,omitempty"`
	EntLabel string `json:"ent_label,omitempty"`
}

// Sentence is a sentence of the source document with its tokens.
type Sentence struct {
	Index  int     `json:"index"`
	Text   string  `json:"text"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Tokens []Token `json:"tokens"`
}

// Document is the tokenized-document artifact written by the ingestion stage,
// one per source file.
type Document struct {
	DocID     string     `json:"doc_id"`
	Text      string     `json:"text"`
	Sentences []Sentence `json:"sentences"`
}

// TokenOffsetsFor builds the token→offsets table for one sentence.
func (d *Document) TokenOffsetsFor(s *Sentence) TokenOffsets {
	offsets := make(TokenOffsets, len(s.Tokens))
	for _, tok := range s.Tokens {
		offsets[tok.Text] = append(offsets[tok.Text], Span{Start: tok.Start, End: tok.End})
	}
	return offsets
}

// EntityLabels returns a token-text to entity-label map for a sentence, used by
// the general-domain X-variable rules.
func (d *Document) EntityLabels(s *Sentence) map[string]string {
	labels := make(map[string]string)
	for _, tok := range s.Tokens {
		if tok.EntLabel != "" {
			labels[tok.Text] = tok.EntLabel
		}
	}
	return labels
}

// POSLabels returns a token-text to part-of-speech map for a sentence.
func (d *Document) POSLabels(s *Sentence) map[string]string {
	labels := make(map[string]string)
	for _, tok := range s.Tokens {
		if tok.POS != "" {
			labels[tok.Text] = tok.POS
		}
	}
	return labels
}

// SRLabel is a semantic-role labeling result for one claim sentence, ingested
// from the external SRL tool's output.
type SRLabel struct {
	LabelID string            `json:"label_id"`
	Verb    string            `json:"verb"`
	Labels  map[string]string `json:"labels"`
}
