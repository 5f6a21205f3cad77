package wikidata

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/claimflow/internal/amr"
	"github.com/ppiankov/claimflow/internal/model"
)

// Argument tokens ending in one of these are truncated to their first token.
var argStopTails = map[string]bool{
	"and": true, "or": true, "the": true, "a": true,
	"is": true, "are": true, "like": true, "in": true,
}

// validArgRole reports whether an edge role names an argument worth labeling.
func validArgRole(role string) bool {
	return strings.Contains(role, "ARG") ||
		strings.Contains(role, "time") ||
		strings.Contains(role, "location") ||
		strings.Contains(role, "direction")
}

// frameNetRole converts a PropBank role label to its FrameNet slot name
// (":ARG1" becomes "A1", ":location" becomes "loc", ":time" stays "time").
func frameNetRole(role string) string {
	formatted := strings.ReplaceAll(role, ":", "")
	formatted = strings.ReplaceAll(formatted, "-of", "")
	if strings.HasPrefix(formatted, "A") {
		return strings.ReplaceAll(formatted, "RG", "")
	}
	if formatted == "location" || formatted == "direction" {
		return formatted[:3]
	}
	return formatted
}

// LabeledArgs collects the event node's arguments whose FrameNet slot the
// event Qnode declares, keyed by the slot's text role. Argument text comes
// from the node's aligned tokens, falling back to the node label with its
// sense number stripped.
func LabeledArgs(g *amr.Graph, alignments []amr.Alignment, eventNode string, specs map[string]*ArgSpec) map[string]string {
	nodeTokens := amr.NodeTokens(g, alignments)
	labeled := make(map[string]string)

	for _, edge := range g.EdgesForNode(eventNode) {
		if !validArgRole(edge.Role) {
			continue
		}
		argNode := amr.ArgumentOfEdge(eventNode, edge)
		if argNode == "" {
			continue
		}
		spec := specs[frameNetRole(edge.Role)]
		if spec == nil {
			continue
		}

		text := nodeTokens[argNode]
		if text == "" {
			label := g.NodeLabel(argNode)
			if i := strings.LastIndex(label, "-"); i >= 0 {
				label = label[:i]
			}
			text = label
		} else if fields := strings.Fields(text); len(fields) > 1 && argStopTails[fields[len(fields)-1]] {
			text = fields[0]
		}
		if text != "" {
			labeled[spec.TextRole] = text
		}
	}
	return labeled
}

// SemanticsBuilder assembles claim semantics from a claim's graph using the
// event linker and the candidate client.
type SemanticsBuilder struct {
	linker   *EventLinker
	client   *Client
	tokenize model.Tokenizer
	log      *zap.SugaredLogger
}

// NewSemanticsBuilder creates a builder. client may be nil to skip argument
// Qnode lookup.
func NewSemanticsBuilder(linker *EventLinker, client *Client, tokenize model.Tokenizer, log *zap.SugaredLogger) *SemanticsBuilder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &SemanticsBuilder{linker: linker, client: client, tokenize: tokenize, log: log}
}

// Build resolves the claim's event and its arguments against Wikidata.
// Returns nil when the graph has no PropBank frame.
func (b *SemanticsBuilder) Build(ctx context.Context, claim *model.Claim, g *amr.Graph, alignments []amr.Alignment) (*model.ClaimSemantics, error) {
	best := b.linker.BestEvent(g)
	if best == nil {
		b.log.Debugw("no event qnode for claim", "claim_id", claim.ClaimID)
		return nil, nil
	}

	event := &model.QnodeMention{
		Mention: model.Mention{
			MentionID: model.NewID(),
			Text:      best.Name,
			DocID:     claim.DocID,
		},
		QnodeID:     best.Qnode,
		Description: best.Definition,
		FromQuery:   best.PB,
	}

	args := make(map[string]*model.QnodeMention)
	if len(best.Args) > 0 {
		eventNode := g.NodeForLabel(best.PB)
		if eventNode != "" {
			for role, text := range LabeledArgs(g, alignments, eventNode, best.Args) {
				arg, err := b.linkArg(ctx, claim, role, text)
				if err != nil {
					return nil, err
				}
				args[role] = arg
			}
		}
	}

	return &model.ClaimSemantics{Event: event, Args: args}, nil
}

// linkArg resolves one argument's text to a Qnode. Hyphenated texts are node
// labels rather than surface text and are recorded without a lookup.
func (b *SemanticsBuilder) linkArg(ctx context.Context, claim *model.Claim, role, text string) (*model.QnodeMention, error) {
	arg := &model.QnodeMention{
		Mention: model.Mention{
			MentionID: model.NewID(),
			Text:      text,
			DocID:     claim.DocID,
			Span:      claim.OffsetsForText(text, b.tokenize),
		},
	}
	if b.client == nil || strings.Contains(text, "-") {
		return arg, nil
	}

	best, err := b.client.Best(ctx, text)
	if err != nil {
		return nil, err
	}
	if best != nil {
		arg.Text = best.Label
		arg.QnodeID = best.QnodeID
		arg.Description = best.Description
		arg.FromQuery = text
	}
	b.log.Debugw("linked argument", "claim_id", claim.ClaimID, "role", role, "text", text)
	return arg, nil
}

// LinkClaimMentions resolves the claim's X variable and claimer mentions to
// Qnodes via the candidate service.
func (b *SemanticsBuilder) LinkClaimMentions(ctx context.Context, claim *model.Claim) error {
	if b.client == nil {
		return nil
	}
	if claim.XVariable != nil && claim.XVariableTypeQnode == nil {
		best, err := b.client.Best(ctx, claim.XVariable.Text)
		if err != nil {
			return err
		}
		claim.XVariableTypeQnode = best
	}
	if claim.Claimer != nil && claim.ClaimerIdentityQnode == nil {
		best, err := b.client.Best(ctx, claim.Claimer.Text)
		if err != nil {
			return err
		}
		claim.ClaimerIdentityQnode = best
	}
	return nil
}
