package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/claimflow/internal/model"

	"go.uber.org/zap"
)

type srlRecord struct {
	ClaimID string            `json:"claim_id"`
	Verb    string            `json:"verb"`
	Labels  map[string]string `json:"labels"`
}

// ParseSRLOutput reads the semantic role labeler's output into labels keyed
// by claim id. The labeler emits one JSON record per claim, either line by
// line as it labels or collected into a single array; both shapes parse.
func ParseSRLOutput(path string) (map[string]*model.SRLabel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read SRL output: %w", err)
	}

	var records []srlRecord
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		// An empty file means no claims were labeled.
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("unmarshal SRL output %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		for {
			var rec srlRecord
			if err := dec.Decode(&rec); errors.Is(err, io.EOF) {
				break
			} else if err != nil {
				return nil, fmt.Errorf("unmarshal SRL output %s: %w", path, err)
			}
			records = append(records, rec)
		}
	}

	labels := make(map[string]*model.SRLabel, len(records))
	for _, rec := range records {
		if rec.ClaimID == "" {
			continue
		}
		labels[rec.ClaimID] = &model.SRLabel{
			LabelID: model.NewID(),
			Verb:    rec.Verb,
			Labels:  rec.Labels,
		}
	}
	return labels, nil
}

// AttachSRL records each claim's role labels as a theory. Claims without a
// label are left untouched and counted.
func AttachSRL(claims []*model.Claim, labels map[string]*model.SRLabel, log *zap.SugaredLogger) int {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	missing := 0
	for _, claim := range claims {
		label, ok := labels[claim.ClaimID]
		if !ok {
			missing++
			continue
		}
		claim.AddTheory(model.TheorySRL, label)
		log.Debugw("attached role labels", "claim_id", claim.ClaimID, "verb", label.Verb)
	}
	return missing
}
