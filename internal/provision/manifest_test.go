package provision

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `{
		"resources": [
			{"name": "qnodes/qe_master.json", "url": "https://example.org/qe_master.json", "sha256": "abc123"},
			{"name": "aligner", "url": "https://example.org/aligner.zip", "dir": true}
		]
	}`)

	manifest, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, manifest.Resources, 2)
	assert.Equal(t, "qnodes/qe_master.json", manifest.Resources[0].Name)
	assert.True(t, manifest.Resources[1].Dir)
}

func TestLoadManifest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing url",
			body: `{"resources": [{"name": "topics.yaml"}]}`,
			want: "missing a name or url",
		},
		{
			name: "duplicate name",
			body: `{"resources": [
				{"name": "topics.yaml", "url": "https://example.org/a"},
				{"name": "topics.yaml", "url": "https://example.org/b"}
			]}`,
			want: "declared twice",
		},
		{
			name: "dir with checksum",
			body: `{"resources": [{"name": "aligner", "url": "https://example.org/a.zip", "dir": true, "sha256": "abc"}]}`,
			want: "cannot carry a checksum",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadManifest(writeManifest(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadManifest_MissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestFileSHA256(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("claim text"), 0644))

	want := sha256.Sum256([]byte("claim text"))
	sum, err := fileSHA256(path)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(want[:]), sum)
}
