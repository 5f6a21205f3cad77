package amr

import (
	"sort"
	"strings"
	"unicode"
)

// NodeTokens builds the node → source-token-string table used by the
// extraction stages. Token indices outside the sentence and punctuation-only
// tokens are ignored; a node aligned to several tokens joins them in token
// order.
func NodeTokens(g *Graph, alignments []Alignment) map[string]string {
	byNode := make(map[string][]int)
	for _, a := range alignments {
		for _, idx := range a.Tokens {
			if idx < 0 || idx >= len(g.Tokens) {
				continue
			}
			if isPunct(g.Tokens[idx]) {
				continue
			}
			byNode[a.Node] = append(byNode[a.Node], idx)
		}
	}

	result := make(map[string]string, len(byNode))
	for node, idxs := range byNode {
		sort.Ints(idxs)
		parts := make([]string, 0, len(idxs))
		for _, idx := range idxs {
			parts = append(parts, g.Tokens[idx])
		}
		result[node] = strings.Join(parts, " ")
	}
	return result
}

// TokenIndices maps each sentence token to the positions where it occurs.
func TokenIndices(tokens []string) map[string][]int {
	indices := make(map[string][]int, len(tokens))
	for i, tok := range tokens {
		indices[tok] = append(indices[tok], i)
	}
	return indices
}

func isPunct(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}
