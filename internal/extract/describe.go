// Package extract identifies claimers and X-variables in claim AMR graphs.
package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/claimflow/internal/amr"
)

// propbankPattern matches PropBank frame labels such as "drink-01" or
// "have-name-91".
var propbankPattern = regexp.MustCompile(`^[a-z]+(?:-[a-z]+)*-[0-9]{2}$`)

// IsPropbankFrame reports whether a node label is a PropBank frame.
func IsPropbankFrame(label string) bool {
	return propbankPattern.MatchString(label)
}

// StripSense removes a PropBank sense suffix: "origin-01" → "origin".
func StripSense(label string) string {
	if idx := strings.LastIndex(label, "-"); idx > 0 {
		suffix := label[idx+1:]
		if len(suffix) == 2 && suffix[0] >= '0' && suffix[0] <= '9' && suffix[1] >= '0' && suffix[1] <= '9' {
			return label[:idx]
		}
	}
	return label
}

// FullNameValue joins the :name operands of a named node into its full name.
// Returns "" when the node has no :name edge or the name nodes are unaligned.
func FullNameValue(mapping map[string]map[string][]string, nodeTokens map[string]string, node string) string {
	nameNodes := mapping[node][":name"]
	if len(nameNodes) == 0 {
		return ""
	}
	parts := make([]string, 0, len(nameNodes))
	for _, n := range nameNodes {
		if s := nodeTokens[n]; s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// FullDescription returns the focus node's source text with its modifiers, in
// the order <ARG1-of> <consist-of> <mod>* <focus> <op1> <ARG1>.
//
// PropBank-frame focus nodes descend into their :ARG1 argument instead of
// collecting modifiers. Duplicate tokens are dropped since they are usually an
// artifact of a cyclic graph. With ignoreFocus set, the focus node's own
// tokens are left out and only the modifiers are kept.
func FullDescription(g *amr.Graph, mapping map[string]map[string][]string, nodeTokens map[string]string, focus string, ignoreFocus bool) string {
	var parts []string
	focusString := nodeTokens[focus]

	if IsPropbankFrame(g.NodeLabel(focus)) {
		for role, children := range mapping[focus] {
			// Only ARG1 to avoid dragging in extraneous arguments.
			if role != ":ARG1" || len(children) == 0 {
				continue
			}
			if descr := FullDescription(g, mapping, nodeTokens, children[0], false); descr != "" {
				parts = append(parts, descr)
			}
			break
		}
		if focusString != "" && !contains(parts, focusString) {
			parts = append([]string{focusString}, parts...)
		}
		return strings.Join(parts, " ")
	}

	prepend := func(role string) {
		children := mapping[focus][role]
		if len(children) == 0 {
			return
		}
		if s := nodeTokens[children[0]]; s != "" && !contains(parts, s) {
			parts = append([]string{s}, parts...)
		}
	}

	for _, mod := range mapping[focus][":mod"] {
		if s := nodeTokens[mod]; s != "" {
			parts = append([]string{s}, parts...)
		}
	}
	// :consist-of and :ARG1-of modifiers precede :mods in word order.
	prepend(":consist-of")
	prepend(":ARG1-of")

	ops := mapping[focus][":op1"]
	if len(ops) > 0 && len(parts) == 0 {
		if !ignoreFocus && focusString != "" {
			parts = append(parts, focusString)
		}
		if s := nodeTokens[ops[0]]; s != "" {
			parts = append(parts, s)
		}
	} else if !ignoreFocus && focusString != "" && !contains(parts, focusString) {
		parts = append(parts, focusString)
	}
	return strings.Join(parts, " ")
}

func contains(parts []string, s string) bool {
	for _, p := range parts {
		if p == s {
			return true
		}
	}
	return false
}

// stopWords are trimmed from the edges of extracted mention text.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "to": true, "for": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"that": true, "this": true, "like": true, "as": true, "at": true,
}

// TrimStopWords removes stop words from the beginning and end of a mention.
func TrimStopWords(text string) string {
	tokens := strings.Fields(text)
	for len(tokens) > 0 && stopWords[strings.ToLower(tokens[0])] {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && stopWords[strings.ToLower(tokens[len(tokens)-1])] {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// TrimStopWordTail drops the final token when the extracted string ends in a
// stop word, which happens when an alignment bleeds into function words.
func TrimStopWordTail(text string) string {
	tokens := strings.Fields(text)
	if len(tokens) >= 2 && stopWords[strings.ToLower(tokens[len(tokens)-1])] {
		return tokens[0]
	}
	return text
}
