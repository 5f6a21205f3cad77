package extract

import (
	"strings"

	"github.com/ppiankov/claimflow/internal/amr"
	"github.com/ppiankov/claimflow/internal/model"
)

var (
	// Template variables naming a place, from the COVID topic list.
	placeVariables = []string{"facility", "location", "place"}
	placeTypes     = map[string]bool{"city": true, "state": true, "country": true, "continent": true}
)

// IdentifyXVariableCovid identifies the X variable of a claim using the
// claim's template, for the COVID domain topic list. Rules are ordered from
// most to least specific; the first match wins.
func IdentifyXVariableCovid(g *amr.Graph, alignments []amr.Alignment, claim *model.Claim, tokenize model.Tokenizer) *model.Mention {
	template := claim.ClaimTemplate
	if template == "" || g == nil {
		return nil
	}

	mapping := g.EdgeMapping()
	nodeTokens := amr.NodeTokens(g, alignments)
	mention := func(text string) *model.Mention { return newMention(text, claim, tokenize) }
	describe := func(node string, ignoreFocus bool) string {
		return FullDescription(g, mapping, nodeTokens, node, ignoreFocus)
	}

	// "location-X" templates: locate a place.
	if hasPlaceVariable(template) {
		for _, e := range g.Edges {
			if e.Role == ":location" || e.Role == ":source" || placeTypes[g.NodeLabel(e.Child)] {
				if name := FullNameValue(mapping, nodeTokens, e.Child); name != "" {
					return mention(name)
				}
				return mention(describe(e.Child, false))
			}
		}
	}

	// "person-X" templates: locate a person.
	if strings.Contains(template, "person-X") {
		for _, e := range g.Edges {
			if g.NodeLabel(e.Child) == "person" {
				if name := FullNameValue(mapping, nodeTokens, e.Child); name != "" {
					return mention(name)
				}
				return mention(g.NodeLabel(e.Child))
			}
		}
	}

	// "... is X": X is usually the root of the claim graph.
	if strings.HasSuffix(template, "is X") {
		return mention(describe(g.Root, false))
	}

	// "X was the target ...": find the ARG1 of target-01.
	if strings.HasPrefix(template, "X was the target") {
		for _, e := range g.Edges {
			if g.NodeLabel(e.Parent) == "target-01" && e.Role == ":ARG1" {
				if name := FullNameValue(mapping, nodeTokens, e.Child); name != "" {
					return mention(name)
				}
				return mention(describe(e.Child, true))
			}
		}
	}

	// "X negative effect ...": the mods of affect-01.
	if strings.Contains(template, "X negative effect") {
		for _, e := range g.Edges {
			if g.NodeLabel(e.Parent) == "affect-01" {
				return mention(describe(e.Parent, true))
			}
		}
	}

	// "Government-X": the GPE of a government-organization node is not a mod,
	// so append "government" when that token occurs in the sentence. A
	// government node ends the search even when its place name is missing.
	if strings.Contains(template, "Government-X") {
		if m, matched := governmentXVariable(g, mapping, nodeTokens, mention); matched {
			return m
		}
	}

	// "date-X" templates: the date-entity.
	if strings.Contains(template, "date-X") {
		for _, id := range g.OrderedNodeIDs() {
			if g.NodeLabel(id) == "date-entity" {
				return mention(describe(id, false))
			}
		}
	}

	// "Treatment-X" templates.
	if strings.Contains(template, "Treatment-X") || strings.Contains(template, "effective treatment") {
		for _, e := range g.Edges {
			if isTreatmentEdge(g.NodeLabel(e.Parent), e.Role) {
				return mention(describe(e.Child, false))
			}
		}
	}

	// "medication X": safe medication being unsafe; look for safe-01.
	if strings.Contains(template, "medication X") {
		for _, e := range g.Edges {
			if g.NodeLabel(e.Parent) == "safe-01" && e.Role == ":ARG1" {
				return mention(describe(e.Child, false))
			}
		}
	}

	// "Animal-X": the one animal template describes an animal involved in the
	// origin of the virus, so try ARG1 of the root.
	if strings.Contains(template, "Animal-X") {
		if args := mapping[g.Root][":ARG1"]; len(args) > 0 {
			return mention(describe(args[0], false))
		}
	}

	// Remaining templates: a leading X implies the agent role, a trailing X
	// the patient role, both on the root.
	if strings.HasPrefix(template, "X") {
		agentRole := ":ARG0"
		if template == "X cures COVID-19" {
			agentRole = ":ARG3" // the "agent" of cure-01
		}
		for _, e := range g.Edges {
			if e.Parent == g.Root && e.Role == agentRole {
				if name := FullNameValue(mapping, nodeTokens, e.Child); name != "" {
					return mention(name)
				}
				return mention(describe(e.Child, false))
			}
		}
	}
	if strings.HasSuffix(template, "X") {
		for _, e := range g.Edges {
			if e.Parent == g.Root && e.Role == ":ARG1" {
				if name := FullNameValue(mapping, nodeTokens, e.Child); name != "" {
					return mention(name)
				}
				return mention(describe(e.Child, false))
			}
		}
	}
	return nil
}

// IdentifyXVariable identifies the X variable without templates, using entity
// and part-of-speech annotations from the ingested document as clues. This is
// the general-domain alternative to the template rules.
func IdentifyXVariable(g *amr.Graph, alignments []amr.Alignment, claim *model.Claim, claimEnts, claimPOS map[string]string, tokenize model.Tokenizer) *model.Mention {
	if g == nil {
		return nil
	}
	mapping := g.EdgeMapping()
	nodeTokens := amr.NodeTokens(g, alignments)
	mention := func(text string) *model.Mention { return newMention(text, claim, tokenize) }
	describe := func(node string, ignoreFocus bool) string {
		return FullDescription(g, mapping, nodeTokens, node, ignoreFocus)
	}

	for _, label := range claimEnts {
		if label == "NORP" {
			// A nationality may hint at the variable.
			for _, e := range g.Edges {
				parentLabel := g.NodeLabel(e.Parent)
				childLabel := g.NodeLabel(e.Child)
				if parentLabel == "government-organization" {
					m, _ := governmentXVariable(g, mapping, nodeTokens, mention)
					return m
				}
				if placeTypes[parentLabel] {
					return mention(describe(e.Parent, false))
				}
				if placeTypes[childLabel] {
					// A nationality used as a mod points at its parent.
					if claimPOS[nodeTokens[e.Child]] == "ADJ" {
						return mention(describe(e.Parent, false))
					}
					return mention(describe(e.Child, false))
				}
			}
		}
		if label == "PERSON" || label == "ORG" {
			for _, e := range g.Edges {
				childLabel := g.NodeLabel(e.Child)
				if childLabel == "person" || childLabel == "organization" {
					if name := FullNameValue(mapping, nodeTokens, e.Child); name != "" {
						return mention(name)
					}
					return mention(childLabel)
				}
			}
		}
	}

	// No entity clue: look for a location, then a date.
	for _, e := range g.Edges {
		if e.Role == ":location" || e.Role == ":source" || placeTypes[g.NodeLabel(e.Child)] {
			if name := FullNameValue(mapping, nodeTokens, e.Child); name != "" {
				return mention(name)
			}
			return mention(describe(e.Child, false))
		}
		if g.NodeLabel(e.Parent) == "date-entity" {
			return mention(describe(e.Parent, false))
		}
	}
	return nil
}

func hasPlaceVariable(template string) bool {
	for _, v := range placeVariables {
		if strings.Contains(template, v+"-X") {
			return true
		}
	}
	return false
}

// isTreatmentEdge covers the treatment template rules, including the common
// mislabeling of the treatment as the ARG1 "patient" of treat-03.
func isTreatmentEdge(parentLabel, role string) bool {
	switch {
	case parentLabel == "treat-03" && (role == ":ARG1" || role == ":ARG3"):
		return true
	case parentLabel == "approve-01" && role == ":ARG1":
		return true
	case parentLabel == "prevent-01" && role == ":ARG0":
		return true
	case parentLabel == "shorten-01" && role == ":ARG0":
		return true
	}
	return false
}

// governmentXVariable resolves a government-organization node to "<GPE>
// government", trying up to two steps down for the place name. It also covers
// a place name standing in for its government as the first GPE agent. The
// flag reports that a government node was found; once one is, the search ends
// even when no place name resolves, so the mention may still be nil.
func governmentXVariable(g *amr.Graph, mapping map[string]map[string][]string, nodeTokens map[string]string, mention func(string) *model.Mention) (*model.Mention, bool) {
	addGovToken := false
	for _, tok := range g.Tokens {
		if tok == "government" {
			addGovToken = true
			break
		}
	}
	for _, e := range g.Edges {
		if g.NodeLabel(e.Parent) == "government-organization" {
			var fullName string
			if placeTypes[g.NodeLabel(e.Child)] {
				fullName = FullNameValue(mapping, nodeTokens, e.Child)
			} else {
				for _, values := range mapping[e.Child] {
					for _, value := range values {
						if placeTypes[g.NodeLabel(value)] {
							fullName = FullNameValue(mapping, nodeTokens, value)
						}
					}
				}
			}
			if fullName != "" && addGovToken {
				return mention(fullName + " government"), true
			}
			return mention(fullName), true
		}
		if e.Role == ":ARG0" && placeTypes[g.NodeLabel(e.Child)] {
			return mention(FullNameValue(mapping, nodeTokens, e.Child)), true
		}
	}
	return nil, false
}

func newMention(text string, claim *model.Claim, tokenize model.Tokenizer) *model.Mention {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return &model.Mention{
		MentionID: model.NewID(),
		Text:      text,
		DocID:     claim.DocID,
		Span:      claim.OffsetsForText(text, tokenize),
	}
}
