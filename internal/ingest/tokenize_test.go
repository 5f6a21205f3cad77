package ingest

import (
	"testing"

	"github.com/ppiankov/claimflow/internal/model"
)

func TestTokenizeText(t *testing.T) {
	text := "The doctor said: masks don't stop COVID-19."
	tokens := TokenizeText(text)

	want := []model.Token{
		{Text: "The", Start: 0, End: 3},
		{Text: "doctor", Start: 4, End: 10},
		{Text: "said", Start: 11, End: 15},
		{Text: ":", Start: 15, End: 16},
		{Text: "masks", Start: 17, End: 22},
		{Text: "don't", Start: 23, End: 28},
		{Text: "stop", Start: 29, End: 33},
		{Text: "COVID-19", Start: 34, End: 42},
		{Text: ".", Start: 42, End: 43},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, tok := range tokens {
		if tok != want[i] {
			t.Errorf("token %d: expected %+v, got %+v", i, want[i], tok)
		}
	}

	for _, tok := range tokens {
		if text[tok.Start:tok.End] != tok.Text {
			t.Errorf("token %q offsets %d-%d do not match source slice %q",
				tok.Text, tok.Start, tok.End, text[tok.Start:tok.End])
		}
	}
}

func TestTokenizeText_TrailingHyphen(t *testing.T) {
	tokens := TokenizeText("well- known")
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d: %v", len(tokens), tokens)
	}
	if tokens[0].Text != "well" || tokens[0].End != 4 {
		t.Errorf("expected trailing hyphen split off, got %+v", tokens[0])
	}
}

func TestSplitSentences(t *testing.T) {
	text := "First sentence. Second one!\nHeadline line"
	sentences := SplitSentences(text)

	if len(sentences) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %v", len(sentences), sentences)
	}

	wantTexts := []string{"First sentence.", "Second one!", "Headline line"}
	for i, sent := range sentences {
		if sent.Text != wantTexts[i] {
			t.Errorf("sentence %d: expected %q, got %q", i, wantTexts[i], sent.Text)
		}
		if sent.Index != i {
			t.Errorf("sentence %d: expected index %d, got %d", i, i, sent.Index)
		}
		if text[sent.Start:sent.End] != sent.Text {
			t.Errorf("sentence %d offsets %d-%d do not match source slice %q",
				i, sent.Start, sent.End, text[sent.Start:sent.End])
		}
	}
}

func TestSplitSentences_TokenOffsetsAreDocumentRelative(t *testing.T) {
	text := "One two. Three four."
	sentences := SplitSentences(text)
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(sentences))
	}

	for _, sent := range sentences {
		for _, tok := range sent.Tokens {
			if text[tok.Start:tok.End] != tok.Text {
				t.Errorf("token %q offsets %d-%d do not match document slice %q",
					tok.Text, tok.Start, tok.End, text[tok.Start:tok.End])
			}
		}
	}
	if got := sentences[1].Tokens[0].Text; got != "Three" {
		t.Errorf("expected second sentence to start at %q, got %q", "Three", got)
	}
}

func TestSplitSentences_AbbreviationMidToken(t *testing.T) {
	// A period not followed by whitespace does not end the sentence.
	sentences := SplitSentences("Version 1.5 works fine. Done.")
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[0].Text != "Version 1.5 works fine." {
		t.Errorf("unexpected first sentence: %q", sentences[0].Text)
	}
}

func TestBuildDocument(t *testing.T) {
	doc := BuildDocument("DOC1", "Masks work. Vaccines too.")
	if doc.DocID != "DOC1" {
		t.Errorf("expected doc id DOC1, got %q", doc.DocID)
	}
	if len(doc.Sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(doc.Sentences))
	}

	offsets := doc.TokenOffsetsFor(&doc.Sentences[0])
	spans, ok := offsets["Masks"]
	if !ok || len(spans) != 1 {
		t.Fatalf("expected one span for %q, got %v", "Masks", spans)
	}
	if spans[0] != (model.Span{Start: 0, End: 5}) {
		t.Errorf("expected span 0-5, got %+v", spans[0])
	}
}
