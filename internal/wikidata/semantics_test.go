package wikidata

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/claimflow/internal/amr"
	"github.com/ppiankov/claimflow/internal/model"
)

func fieldsTokenizer(text string) []string { return strings.Fields(text) }

func TestFrameNetRole(t *testing.T) {
	cases := []struct {
		role string
		want string
	}{
		{":ARG0", "A0"},
		{":ARG1-of", "A1"},
		{":location", "loc"},
		{":direction", "dir"},
		{":time", "time"},
	}
	for _, tc := range cases {
		if got := frameNetRole(tc.role); got != tc.want {
			t.Errorf("frameNetRole(%q) = %q, want %q", tc.role, got, tc.want)
		}
	}
}

func TestValidArgRole(t *testing.T) {
	assert.True(t, validArgRole(":ARG0"))
	assert.True(t, validArgRole(":time"))
	assert.True(t, validArgRole(":location"))
	assert.False(t, validArgRole(":mod"))
	assert.False(t, validArgRole(":name"))
}

// treatGraph builds "The doctor treats the patient" rooted at treat-03.
func treatGraph() (*amr.Graph, []amr.Alignment) {
	g := amr.NewGraph()
	g.AddNode("t", "treat-03")
	g.AddNode("d", "doctor")
	g.AddNode("p", "patient")
	g.AddNode("m", "modifier-node")
	g.Root = "t"
	g.Tokens = []string{"The", "doctor", "treats", "the", "patient"}
	g.Edges = []amr.Edge{
		{Parent: "t", Role: ":ARG0", Child: "d"},
		{Parent: "t", Role: ":ARG1", Child: "p"},
		{Parent: "t", Role: ":mod", Child: "m"},
	}
	alignments := []amr.Alignment{
		{Node: "d", Tokens: []int{1}},
		{Node: "p", Tokens: []int{4}},
	}
	return g, alignments
}

func TestLabeledArgs(t *testing.T) {
	g, alignments := treatGraph()
	specs := map[string]*ArgSpec{
		"A0": {TextRole: "healer"},
		"A1": {TextRole: "patient"},
	}

	args := LabeledArgs(g, alignments, "t", specs)
	assert.Equal(t, map[string]string{
		"healer":  "doctor",
		"patient": "patient",
	}, args)
}

func TestLabeledArgs_UnalignedNodeFallsBackToLabel(t *testing.T) {
	g, _ := treatGraph()
	specs := map[string]*ArgSpec{"A0": {TextRole: "healer"}}

	args := LabeledArgs(g, nil, "t", specs)
	// "doctor" has no sense suffix; the label is used whole.
	assert.Equal(t, "doctor", args["healer"])
}

func TestLabeledArgs_StopWordTailTruncates(t *testing.T) {
	g := amr.NewGraph()
	g.AddNode("t", "treat-03")
	g.AddNode("d", "drug")
	g.Root = "t"
	g.Tokens = []string{"The", "drug", "and"}
	g.Edges = []amr.Edge{{Parent: "t", Role: ":ARG0", Child: "d"}}
	alignments := []amr.Alignment{{Node: "d", Tokens: []int{1, 2}}}

	args := LabeledArgs(g, alignments, "t", map[string]*ArgSpec{"A0": {TextRole: "agent"}})
	assert.Equal(t, "drug", args["agent"])
}

func TestSemanticsBuilder_Build(t *testing.T) {
	g, alignments := treatGraph()
	tables := &Tables{
		Overlay: Table{"treat-03": {{
			Qnode:      "Q10",
			Name:       "treat",
			Definition: "apply care",
			Args: map[string]*ArgSpec{
				"A0": {TextRole: "healer"},
			},
		}}},
	}

	claim := &model.Claim{ClaimID: "c1", DocID: "DOC1", ClaimSentence: "The doctor treats the patient"}
	claim.AddTheory(model.TheoryTokenOffsets, model.TokenOffsets{
		"doctor": {{Start: 4, End: 10}},
	})

	builder := NewSemanticsBuilder(NewEventLinker(tables), nil, fieldsTokenizer, nil)
	semantics, err := builder.Build(context.Background(), claim, g, alignments)
	require.NoError(t, err)
	require.NotNil(t, semantics)

	require.NotNil(t, semantics.Event)
	assert.Equal(t, "Q10", semantics.Event.QnodeID)
	assert.Equal(t, "treat", semantics.Event.Text)
	assert.Equal(t, "treat-03", semantics.Event.FromQuery)

	healer := semantics.Args["healer"]
	require.NotNil(t, healer)
	assert.Equal(t, "doctor", healer.Text)
	require.NotNil(t, healer.Span)
	assert.Equal(t, 4, healer.Span.Start)
}

func TestSemanticsBuilder_NoFrames(t *testing.T) {
	g := amr.NewGraph()
	g.AddNode("d", "doctor")
	g.Root = "d"

	builder := NewSemanticsBuilder(NewEventLinker(&Tables{}), nil, fieldsTokenizer, nil)
	semantics, err := builder.Build(context.Background(), &model.Claim{}, g, nil)
	require.NoError(t, err)
	assert.Nil(t, semantics)
}
