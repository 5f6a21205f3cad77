package analyze

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/claimflow/internal/model"
)

func testClaims() []*model.Claim {
	fauci := &model.EDLEntity{EntID: "0000001", EntType: "PER"}
	return []*model.Claim{
		{
			ClaimID: "c1", Topic: "Cure for the virus", Subtopic: "Treatments",
			ClaimSentence: "Fauci said the drug cures the disease.",
			XVariable: &model.Mention{
				MentionID: "m1", Text: "the drug",
				Entity: &model.EDLEntity{EntID: "0000002", EntType: "MISC"},
			},
			XVariableTypeQnode: &model.Qnode{QnodeID: "Q1", Label: "drug"},
			Claimer:            &model.Mention{MentionID: "m2", Text: "Fauci", Entity: fauci},
			ClaimSemantics: []*model.ClaimSemantics{{
				Event: &model.QnodeMention{Mention: model.Mention{MentionID: "e1", Text: "cure"}, QnodeID: "Q2"},
				Args: map[string]*model.QnodeMention{
					"patient": {Mention: model.Mention{MentionID: "a1", Text: "disease", Entity: fauci}},
				},
			}},
		},
		{
			ClaimID: "c2", Topic: "Cure for the virus", Subtopic: "Prevention",
			ClaimSentence: "Vitamins prevent infection.",
		},
		{
			ClaimID: "c3", Topic: "Origin of the virus", Subtopic: "Treatments",
			ClaimSentence: "It began in a lab.",
			Claimer:       &model.Mention{MentionID: "m3", Text: "they"},
		},
	}
}

func TestAnalyze(t *testing.T) {
	stats := Analyze(testClaims())

	assert.Equal(t, 3, stats.NumClaims)
	assert.Equal(t, 2, stats.TopicCounts["Cure for the virus"])
	assert.Equal(t, 1, stats.TopicCounts["Origin of the virus"])
	assert.Equal(t, 2, stats.SubtopicCounts["Treatments"])

	assert.Equal(t, 1, stats.NumXVariables)
	assert.Equal(t, 1, stats.NumXTypeQnodes)
	assert.Equal(t, 0, stats.NumXIdentityQnodes)
	assert.Equal(t, 2, stats.NumClaimers)
	assert.Equal(t, 1, stats.NumSemanticArgs)

	// Fauci backs both the claimer mention and a semantic argument.
	assert.Equal(t, 2, stats.EntityMentions["0000001"])
	assert.Equal(t, 3, stats.MentionsWithEntities())
	assert.Equal(t, 1, stats.EntitiesWithMultipleMentions())
}

func TestWriteDistributions(t *testing.T) {
	dir := t.TempDir()
	stats := Analyze(testClaims())
	require.NoError(t, stats.WriteDistributions(dir))

	data, err := os.ReadFile(filepath.Join(dir, "topic_distribution.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Cure for the virus,2", lines[0])
	assert.Equal(t, "Origin of the virus,1", lines[1])

	assert.FileExists(t, filepath.Join(dir, "subtopic_distribution.csv"))
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	Analyze(testClaims()).WriteSummary(&buf)

	out := buf.String()
	assert.Contains(t, out, "Num of claims: 3")
	assert.Contains(t, out, "% claims with identified claimers: 0.67")
	assert.Contains(t, out, "# of entities found: 2")
	assert.Contains(t, out, "# of entities with more than one mention: 1")
}

func TestWriteSummary_NoClaims(t *testing.T) {
	var buf bytes.Buffer
	Analyze(nil).WriteSummary(&buf)
	assert.Contains(t, buf.String(), "% X variables found: n/a")
}

func TestSpotCheck(t *testing.T) {
	claims := testClaims()

	// c1 has an X-variable qnode and an event qnode; answer yes then no.
	in := strings.NewReader("1\n0\n")
	var out bytes.Buffer
	result, err := SpotCheck(claims, in, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Good)
	assert.InDelta(t, 0.5, result.Accuracy(), 1e-9)
}

func TestSpotCheck_InvalidThenValidInput(t *testing.T) {
	claims := []*model.Claim{{
		ClaimSentence:      "Some sentence.",
		XVariableTypeQnode: &model.Qnode{QnodeID: "Q1", Label: "x"},
	}}

	in := strings.NewReader("maybe\n1\n")
	var out bytes.Buffer
	result, err := SpotCheck(claims, in, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Good)
	assert.Contains(t, out.String(), "Invalid input")
}

func TestSpotCheck_EOFEndsReview(t *testing.T) {
	claims := testClaims()
	result, err := SpotCheck(claims, strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
}
