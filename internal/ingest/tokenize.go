// Package ingest turns source corpora and upstream tool outputs into the
// pipeline's document and mention-store artifacts.
package ingest

import (
	"strings"
	"unicode"

	"github.com/ppiankov/claimflow/internal/model"
)

// TokenizeText splits text into tokens with character offsets. Word tokens
// keep internal hyphens and apostrophes ("COVID-19", "don't"); everything
// else becomes single-character punctuation tokens.
func TokenizeText(text string) []model.Token {
	var tokens []model.Token
	start := -1

	flush := func(end int) {
		if start >= 0 {
			tokens = append(tokens, model.Token{Text: text[start:end], Start: start, End: end})
			start = -1
		}
	}

	for i, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if start < 0 {
				start = i
			}
		case (r == '-' || r == '\'') && start >= 0:
			// Keep word-internal hyphens and apostrophes.
		case unicode.IsSpace(r):
			flush(i)
		default:
			flush(i)
			end := i + len(string(r))
			tokens = append(tokens, model.Token{Text: text[i:end], Start: i, End: end})
		}
	}
	flush(len(text))

	// A trailing hyphen or apostrophe was kept speculatively; split it off.
	for i, tok := range tokens {
		trimmed := strings.TrimRight(tok.Text, "-'")
		if trimmed != tok.Text && trimmed != "" {
			tokens[i].Text = trimmed
			tokens[i].End = tok.Start + len(trimmed)
		}
	}
	return tokens
}

// Tokenize adapts TokenizeText to the plain token-string form used by claim
// theories.
func Tokenize(text string) []string {
	toks := TokenizeText(text)
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

// SplitSentences splits document text into sentences with character offsets.
// A sentence ends at '.', '!', or '?' followed by whitespace; newlines also
// terminate sentences so that headline-style lines stand alone.
func SplitSentences(text string) []model.Sentence {
	var sentences []model.Sentence
	start := 0

	emit := func(end int) {
		raw := text[start:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			offset := start + strings.Index(raw, trimmed)
			sentences = append(sentences, model.Sentence{
				Index: len(sentences),
				Text:  trimmed,
				Start: offset,
				End:   offset + len(trimmed),
			})
		}
		start = end
	}

	runes := []rune(text)
	bytePos := 0
	for i, r := range runes {
		width := len(string(r))
		if r == '\n' {
			emit(bytePos)
			emit(bytePos + width)
		} else if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				emit(bytePos + width)
			}
		}
		bytePos += width
	}
	if start < len(text) {
		emit(len(text))
	}

	for i := range sentences {
		sent := &sentences[i]
		toks := TokenizeText(text[sent.Start:sent.End])
		for j := range toks {
			toks[j].Start += sent.Start
			toks[j].End += sent.Start
		}
		sent.Tokens = toks
	}
	return sentences
}

// BuildDocument tokenizes document text into the ingestion artifact.
func BuildDocument(docID, text string) *model.Document {
	return &model.Document{
		DocID:     docID,
		Text:      text,
		Sentences: SplitSentences(text),
	}
}
