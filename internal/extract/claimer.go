package extract

import (
	"strings"

	"github.com/ppiankov/claimflow/internal/amr"
	"github.com/ppiankov/claimflow/internal/model"
)

// IdentifyClaimer locates the claimer of a claim within the sentence's AMR
// graph.
//
// Finding the claim node:
//  1. Match claim tokens against graph node labels (sense numbers stripped,
//     nominal and verbal lemmas tried) and walk up to a statement node.
//  2. Failing that, take the first statement node anywhere in the graph.
//
// The claimer is the :ARG0 argument of the claim node: full name for
// person/organization nodes, full description otherwise, with any trailing
// speech verb and edge stop words removed.
func IdentifyClaimer(claim *model.Claim, claimTokens []string, g *amr.Graph, alignments []amr.Alignment, posLabels map[string]string, tokenize model.Tokenizer) *model.Mention {
	if g == nil {
		return nil
	}

	claimNode := FindClaimNode(claimTokens, g)
	if claimNode == "" {
		return nil
	}
	text := claimerText(g, alignments, claimNode, posLabels)
	if text == "" {
		return nil
	}
	text = TrimStopWords(text)
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

// FindClaimNode returns the statement node governing the claim, or "".
func FindClaimNode(claimTokens []string, g *amr.Graph) string {
	for _, token := range claimTokens {
		token = strings.ToLower(token)
		for node, label := range g.Nodes() {
			label = StripSense(label)
			// Hope that at least one nominal or verbal lemma matches.
			if LemmaNoun(token) == label || LemmaVerb(token) == label {
				if claimNode := climbToStatementNode(g, node, nil); claimNode != "" {
					return claimNode
				}
			}
		}
	}
	// No token match. Happens for roughly half of the claims; fall back to the
	// first statement node in the graph.
	return firstStatementNode(g)
}

// climbToStatementNode walks up from a node inside the claim until a
// statement or reasoning event node is found.
func climbToStatementNode(g *amr.Graph, node string, checked map[string]bool) string {
	if checked == nil {
		checked = make(map[string]bool)
	}
	for _, parent := range g.Parents(node) {
		if checked[parent] {
			continue
		}
		if IsStatementLabel(g.NodeLabel(parent)) {
			return parent
		}
		checked[parent] = true
		if found := climbToStatementNode(g, parent, checked); found != "" {
			return found
		}
	}
	return ""
}

func firstStatementNode(g *amr.Graph) string {
	for _, label := range g.OrderedNodeLabels() {
		if IsStatementLabel(label) {
			return g.NodeForLabel(label)
		}
	}
	return ""
}

// claimerText extracts the :ARG0 argument text of the claim node.
func claimerText(g *amr.Graph, alignments []amr.Alignment, claimNode string, posLabels map[string]string) string {
	mapping := g.EdgeMapping()
	nodeTokens := amr.NodeTokens(g, alignments)

	claimerNodes := mapping[claimNode][":ARG0"]
	if len(claimerNodes) == 0 {
		return ""
	}
	claimerNode := claimerNodes[0]

	var text string
	switch g.NodeLabel(claimerNode) {
	case "person", "organization":
		text = FullNameValue(mapping, nodeTokens, claimerNode)
	default:
		text = FullDescription(g, mapping, nodeTokens, claimerNode, false)
	}
	return removeSpeechTag(text, posLabels)
}

// removeSpeechTag strips a trailing speech verb from the claimer text:
// "he wrote" → "he".
func removeSpeechTag(claimer string, posLabels map[string]string) string {
	if claimer == "" {
		return ""
	}
	tokens := strings.Fields(claimer)
	if len(tokens) < 2 || len(posLabels) == 0 {
		return claimer
	}
	last := tokens[len(tokens)-1]
	if pos := posLabels[last]; pos == "VERB" || pos == "AUX" {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}
