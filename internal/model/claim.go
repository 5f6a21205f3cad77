package model

import (
	"strings"

	"github.com/google/uuid"
)

// Theory names attached to claims by pipeline stages.
const (
	TheoryTokenOffsets = "token_offset"
	TheoryAMR          = "amr"
	TheoryAlignments   = "alignments"
	TheorySRL          = "srl"
)

// NewID creates a short mention/claim identifier (first 8 characters of a UUID).
func NewID() string {
	return uuid.NewString()[:8]
}

// Span is a half-open [Start, End) character or token range within a document.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlap returns the number of positions shared by two spans.
func (s Span) Overlap(o Span) int {
	lo, hi := s.Start, s.End
	if o.Start > lo {
		lo = o.Start
	}
	if o.End < hi {
		hi = o.End
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// Qnode is a Wikidata entity reference produced by the linking stage.
type Qnode struct {
	QnodeID     string  `json:"qnode_id"`
	Label       string  `json:"label"`
	Description string  `json:"description,omitempty"`
	Score       float64 `json:"score,omitempty"`
	FromQuery   string  `json:"from_query,omitempty"`
}

// Mention is a text span referring to a claimer, X-variable, or semantic argument.
type Mention struct {
	MentionID string     `json:"mention_id"`
	Text      string     `json:"text"`
	DocID     string     `json:"doc_id,omitempty"`
	Span      *Span      `json:"span,omitempty"`
	Entity    *EDLEntity `json:"entity,omitempty"`
}

// QnodeMention is a mention resolved against Wikidata (claim events and arguments).
type QnodeMention struct {
	Mention
	QnodeID     string `json:"qnode_id,omitempty"`
	Description string `json:"description,omitempty"`
	FromQuery   string `json:"from_query,omitempty"`
}

// ClaimSemantics pairs an event Qnode with its role-labeled arguments.
type ClaimSemantics struct {
	Event *QnodeMention            `json:"event,omitempty"`
	Args  map[string]*QnodeMention `json:"args,omitempty"`
}

// TokenOffsets maps sentence tokens to the character spans where they occur.
// A token may occur more than once in a sentence.
type TokenOffsets map[string][]Span

// Claim is a claim record as documented for the AIDA program.
// Theories carry per-stage annotations and are never serialized.
type Claim struct {
	ClaimID       string `json:"claim_id"`
	DocID         string `json:"doc_id"`
	ClaimText     string `json:"claim_text"`
	ClaimSentence string `json:"claim_sentence"`
	ClaimSpan     *Span  `json:"claim_span,omitempty"`
	ClaimTemplate string `json:"claim_template,omitempty"`
	Topic         string `json:"topic,omitempty"`
	Subtopic      string `json:"subtopic,omitempty"`

	XVariable              *Mention `json:"x_variable,omitempty"`
	XVariableIdentityQnode *Qnode   `json:"x_variable_identity_qnode,omitempty"`
	XVariableTypeQnode     *Qnode   `json:"x_variable_type_qnode,omitempty"`

	Claimer              *Mention `json:"claimer,omitempty"`
	ClaimerIdentityQnode *Qnode   `json:"claimer_identity_qnode,omitempty"`
	ClaimerTypeQnode     *Qnode   `json:"claimer_type_qnode,omitempty"`

	ClaimDateTime      string `json:"claim_date_time,omitempty"`
	ClaimLocation      string `json:"claim_location,omitempty"`
	ClaimLocationQnode *Qnode `json:"claim_location_qnode,omitempty"`

	ClaimSemantics []*ClaimSemantics `json:"claim_semantics,omitempty"`

	theories map[string]interface{}
}

// AddTheory attaches a named stage annotation to the claim.
func (c *Claim) AddTheory(name string, theory interface{}) {
	if c.theories == nil {
		c.theories = make(map[string]interface{})
	}
	c.theories[name] = theory
}

// Theory returns a previously attached annotation, or nil.
func (c *Claim) Theory(name string) interface{} {
	if c.theories == nil {
		return nil
	}
	return c.theories[name]
}

// Tokenizer splits text into tokens. Stage code passes the same tokenizer that
// produced the claim's token-offset table.
type Tokenizer func(text string) []string

// OffsetsForText recovers the character offsets of text within the claim
// sentence using the token-offset theory. For multi-token text, the first
// properly ordered combination of a first-token start and a last-token end
// wins; later occurrences of the first token are tried first.
func (c *Claim) OffsetsForText(text string, tokenize Tokenizer) *Span {
	if text == "" {
		return nil
	}
	offsets, ok := c.Theory(TheoryTokenOffsets).(TokenOffsets)
	if !ok || len(offsets) == 0 {
		return nil
	}
	tokens := tokenize(strings.TrimSpace(text))
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) == 1 {
		spans := offsets[tokens[0]]
		if len(spans) == 0 {
			return nil
		}
		s := spans[0]
		return &s
	}
	first := offsets[tokens[0]]
	last := offsets[tokens[len(tokens)-1]]
	if len(first) == 0 || len(last) == 0 {
		return nil
	}
	for i := len(first) - 1; i >= 0; i-- {
		for _, lastSpan := range last {
			if first[i].Start < lastSpan.End {
				return &Span{Start: first[i].Start, End: lastSpan.End}
			}
		}
	}
	return nil
}
