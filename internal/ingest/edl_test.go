package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/claimflow/internal/model"
)

const edlSample = ":Entity_EDL_0000001\tcanonical\tPER\n" +
	":Entity_EDL_0000001\tlink\tFreebase:m.0abc\n" +
	":Entity_EDL_0000002\tcanonical\tGPE\n" +
	":Entity_EDL_0000001\tmention\tAnthony Fauci\tDOC1:100-113\t1.0\n" +
	":Entity_EDL_0000001\tmention\tFauci\tDOC2:55-60\t0.9\n" +
	":Entity_EDL_0000002\tmention\tWuhan\tDOC1:10-15\t1.0\n"

func writeEDL(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "merged.cs")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseEDL(t *testing.T) {
	store, err := ParseEDL(writeEDL(t, edlSample))
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())

	mention := store.Lookup("DOC1", model.Span{Start: 100, End: 113})
	require.NotNil(t, mention)
	assert.Equal(t, "Anthony Fauci", mention.Text)
	assert.Equal(t, "mention", mention.MentionType)
	require.NotNil(t, mention.ParentEntity)
	assert.Equal(t, "0000001", mention.ParentEntity.EntID)
	assert.Equal(t, "PER", mention.ParentEntity.EntType)

	// Mentions of the same entity share the parent record.
	other := store.Lookup("DOC2", model.Span{Start: 55, End: 60})
	require.NotNil(t, other)
	assert.Same(t, mention.ParentEntity, other.ParentEntity)
}

func TestParseEDL_SkipsLinkRows(t *testing.T) {
	// A link row must not overwrite the entity's type.
	store, err := ParseEDL(writeEDL(t, edlSample))
	require.NoError(t, err)

	wuhan := store.Lookup("DOC1", model.Span{Start: 10, End: 15})
	require.NotNil(t, wuhan)
	assert.Equal(t, "GPE", wuhan.ParentEntity.EntType)
}

func TestParseEDL_UnknownEntity(t *testing.T) {
	_, err := ParseEDL(writeEDL(t, ":Entity_EDL_9\tmention\tX\tDOC1:0-1\t1.0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entity")
}

func TestParseEDL_MalformedSpan(t *testing.T) {
	content := ":Entity_EDL_1\tcanonical\tPER\n" +
		":Entity_EDL_1\tmention\tX\tDOC1:oops\t1.0\n"
	_, err := ParseEDL(writeEDL(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestMentionStoreRoundTrip(t *testing.T) {
	store, err := ParseEDL(writeEDL(t, edlSample))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mentions.json")
	require.NoError(t, WriteMentionStore(store, path))

	loaded, err := LoadMentionStore(path)
	require.NoError(t, err)
	assert.Equal(t, store.Len(), loaded.Len())

	mention := loaded.Lookup("DOC1", model.Span{Start: 100, End: 113})
	require.NotNil(t, mention)
	assert.Equal(t, "Anthony Fauci", mention.Text)
}

func TestMentionStore_BestOverlap(t *testing.T) {
	store, err := ParseEDL(writeEDL(t, edlSample))
	require.NoError(t, err)

	// 100-113 overlaps 105-120 by 8 positions.
	best := store.BestOverlap("DOC1", model.Span{Start: 105, End: 120}, 5)
	require.NotNil(t, best)
	assert.Equal(t, "Anthony Fauci", best.Text)

	assert.Nil(t, store.BestOverlap("DOC1", model.Span{Start: 200, End: 210}, 1))
}
