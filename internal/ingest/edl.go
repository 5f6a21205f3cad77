package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ppiankov/claimflow/internal/model"
)

// ParseEDL reads an upstream Entity Discovery and Linking export (the
// tab-separated merged.cs format) into a mention store. Three-column lines
// declare entities, five-column lines declare mentions; everything else is
// skipped.
func ParseEDL(path string) (*model.MentionStore, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open EDL export: %w", err)
	}
	defer file.Close()

	store := model.NewMentionStore()
	entities := make(map[string]*model.EDLEntity)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Split(scanner.Text(), "\t")
		switch len(fields) {
		case 3:
			// Freebase link rows share the column count; skip them.
			if fields[1] == "link" {
				continue
			}
			entID := lastIDSegment(fields[0])
			entities[entID] = &model.EDLEntity{EntID: entID, EntType: fields[2]}
		case 5:
			mention, err := parseMentionLine(fields, entities)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			store.Add(mention)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan EDL export: %w", err)
	}
	return store, nil
}

func parseMentionLine(fields []string, entities map[string]*model.EDLEntity) (*model.EDLMention, error) {
	entID := lastIDSegment(fields[0])
	parent, ok := entities[entID]
	if !ok {
		return nil, fmt.Errorf("mention references unknown entity %q", entID)
	}

	docAndSpan := strings.SplitN(fields[3], ":", 2)
	if len(docAndSpan) != 2 {
		return nil, fmt.Errorf("malformed provenance %q", fields[3])
	}
	span, err := parseSpan(docAndSpan[1])
	if err != nil {
		return nil, err
	}

	return &model.EDLMention{
		DocID:        docAndSpan[0],
		Text:         fields[2],
		MentionType:  fields[1],
		Span:         span,
		ParentEntity: parent,
	}, nil
}

func lastIDSegment(raw string) string {
	parts := strings.Split(raw, "_")
	return parts[len(parts)-1]
}

func parseSpan(raw string) (model.Span, error) {
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return model.Span{}, fmt.Errorf("malformed span %q", raw)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return model.Span{}, fmt.Errorf("malformed span %q: %w", raw, err)
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return model.Span{}, fmt.Errorf("malformed span %q: %w", raw, err)
	}
	return model.Span{Start: start, End: end}, nil
}

// WriteMentionStore serializes the store as a JSON artifact.
func WriteMentionStore(store *model.MentionStore, path string) error {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal mention store: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write mention store: %w", err)
	}
	return nil
}

// LoadMentionStore reads a mention store artifact back.
func LoadMentionStore(path string) (*model.MentionStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mention store: %w", err)
	}
	var store model.MentionStore
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("unmarshal mention store: %w", err)
	}
	return &store, nil
}
