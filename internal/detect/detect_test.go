package detect

import (
	"testing"

	"github.com/ppiankov/claimflow/internal/ingest"
	"github.com/ppiankov/claimflow/internal/model"
)

func testList(t *testing.T) *TopicList {
	t.Helper()
	list, err := DefaultTopicList()
	if err != nil {
		t.Fatalf("failed to load default topic list: %v", err)
	}
	return list
}

func TestDefaultTopicList(t *testing.T) {
	list := testList(t)
	if len(list.Templates) == 0 {
		t.Fatal("expected embedded templates")
	}
	for _, tmpl := range list.Templates {
		if tmpl.Topic == "" || tmpl.Template == "" {
			t.Errorf("incomplete template: %+v", tmpl)
		}
	}
}

func TestDetector_DetectDocument(t *testing.T) {
	doc := ingest.BuildDocument("DOC1",
		"The weather was mild in March. They say the virus is a hoax. Nothing else happened.")

	detector := NewDetector(testList(t), 0, nil)
	claims := detector.DetectDocument(doc)
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}

	claim := claims[0]
	if claim.DocID != "DOC1" {
		t.Errorf("expected doc id DOC1, got %q", claim.DocID)
	}
	if claim.ClaimText != "They say the virus is a hoax." {
		t.Errorf("unexpected claim text: %q", claim.ClaimText)
	}
	if claim.ClaimTemplate == "" || claim.Topic == "" {
		t.Errorf("expected template and topic set, got %+v", claim)
	}
	if claim.ClaimSpan == nil {
		t.Fatal("expected claim span")
	}
	if doc.Text[claim.ClaimSpan.Start:claim.ClaimSpan.End] != claim.ClaimText {
		t.Errorf("claim span does not cover claim text")
	}
	if claim.Theory(model.TheoryTokenOffsets) == nil {
		t.Error("expected token-offset theory attached")
	}
}

func TestDetector_CaseInsensitive(t *testing.T) {
	doc := ingest.BuildDocument("DOC1", "COVID-19 STARTED in Wuhan.")
	claims := NewDetector(testList(t), 0, nil).DetectDocument(doc)
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}
	if claims[0].ClaimTemplate != "The COVID-19 pandemic started in location-X" {
		t.Errorf("unexpected template: %q", claims[0].ClaimTemplate)
	}
}

func TestDetector_DeduplicatesRepeatedText(t *testing.T) {
	doc := ingest.BuildDocument("DOC1",
		"The virus is a hoax.\nThe virus is a hoax.")
	claims := NewDetector(testList(t), 0, nil).DetectDocument(doc)
	if len(claims) != 1 {
		t.Fatalf("expected repeated sentence reported once, got %d claims", len(claims))
	}
}

func TestDetector_MaxTokens(t *testing.T) {
	doc := ingest.BuildDocument("DOC1", "The virus is a hoax.")
	claims := NewDetector(testList(t), 3, nil).DetectDocument(doc)
	if len(claims) != 0 {
		t.Fatalf("expected long sentence skipped, got %d claims", len(claims))
	}
}

func TestDetector_DetectAll(t *testing.T) {
	docs := []*model.Document{
		ingest.BuildDocument("DOC1", "The virus is a hoax."),
		ingest.BuildDocument("DOC2", "Hydroxychloroquine treats the disease."),
		ingest.BuildDocument("DOC3", "No claims here."),
	}
	claims := NewDetector(testList(t), 0, nil).DetectAll(docs)
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims across corpus, got %d", len(claims))
	}
}
