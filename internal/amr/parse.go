package amr

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Alignment maps one graph node to the source token indices it covers.
type Alignment struct {
	Node   string
	Tokens []int
}

// Annotation is one parsed graph together with its token alignments.
type Annotation struct {
	Graph      *Graph
	Alignments []Alignment
}

// ParseFile reads every annotation block from an AMR output file.
func ParseFile(path string) ([]*Annotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open amr file: %w", err)
	}
	defer func() { _ = f.Close() }()

	annotations, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return annotations, nil
}

// Parse reads annotation blocks separated by blank lines. Each block carries
// JAMR-style metadata lines:
//
//	# ::id <doc id>
//	# ::tok <token> <token> ...
//	# ::node <id> <label> [<start>-<end>]
//	# ::root <id> <label>
//	# ::edge <parent label> <role> <child label> <parent id> <child id>
//	# ::alignments <start>-<end>|<node>(+<node>)* ...
//
// The PENMAN body following the metadata is not needed by any stage and is
// skipped.
func Parse(r io.Reader) ([]*Annotation, error) {
	var annotations []*Annotation
	current := newBlock()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t")
		if strings.TrimSpace(line) == "" {
			if !current.empty() {
				annotations = append(annotations, current.finish())
				current = newBlock()
			}
			continue
		}
		if !strings.HasPrefix(line, "# ::") {
			continue
		}
		if err := current.addMeta(line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if !current.empty() {
		annotations = append(annotations, current.finish())
	}
	return annotations, nil
}

type block struct {
	ann *Annotation
}

func newBlock() *block {
	return &block{ann: &Annotation{Graph: NewGraph()}}
}

func (b *block) empty() bool {
	g := b.ann.Graph
	return g.ID == "" && len(g.Tokens) == 0 && len(g.Nodes()) == 0
}

func (b *block) finish() *Annotation {
	return b.ann
}

func (b *block) addMeta(line string) error {
	rest := strings.TrimPrefix(line, "# ::")
	key, value, _ := strings.Cut(rest, " ")
	g := b.ann.Graph

	switch key {
	case "id":
		g.ID = strings.Fields(value)[0]
	case "tok", "snt-tok":
		g.Tokens = strings.Fields(value)
	case "node":
		fields := strings.Fields(value)
		if len(fields) < 2 {
			return fmt.Errorf("malformed node line %q", line)
		}
		g.AddNode(fields[0], fields[1])
		// A trailing start-end range is a JAMR node alignment.
		if len(fields) >= 3 {
			if tokens, err := parseTokenRange(fields[2]); err == nil {
				b.ann.Alignments = append(b.ann.Alignments, Alignment{Node: fields[0], Tokens: tokens})
			}
		}
	case "root":
		fields := strings.Fields(value)
		if len(fields) < 1 {
			return fmt.Errorf("malformed root line %q", line)
		}
		g.Root = fields[0]
		if len(fields) >= 2 {
			g.AddNode(fields[0], fields[1])
		}
	case "edge":
		fields := strings.Fields(value)
		if len(fields) < 5 {
			return fmt.Errorf("malformed edge line %q", line)
		}
		role := fields[1]
		if !strings.HasPrefix(role, ":") {
			role = ":" + role
		}
		parent, child := fields[3], fields[4]
		g.AddNode(parent, fields[0])
		g.AddNode(child, fields[2])
		g.Edges = append(g.Edges, Edge{Parent: parent, Role: role, Child: child})
	case "alignments":
		for _, pair := range strings.Fields(value) {
			rangePart, nodesPart, ok := strings.Cut(pair, "|")
			if !ok {
				continue
			}
			tokens, err := parseTokenRange(rangePart)
			if err != nil {
				return fmt.Errorf("malformed alignment %q: %w", pair, err)
			}
			for _, node := range strings.Split(nodesPart, "+") {
				b.ann.Alignments = append(b.ann.Alignments, Alignment{Node: node, Tokens: tokens})
			}
		}
	}
	return nil
}

// parseTokenRange parses a half-open "start-end" token range into indices.
func parseTokenRange(s string) ([]int, error) {
	startStr, endStr, ok := strings.Cut(s, "-")
	if !ok {
		return nil, fmt.Errorf("not a range: %q", s)
	}
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return nil, err
	}
	end, err := strconv.Atoi(endStr)
	if err != nil {
		return nil, err
	}
	if end < start {
		return nil, fmt.Errorf("inverted range: %q", s)
	}
	tokens := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		tokens = append(tokens, i)
	}
	return tokens, nil
}
