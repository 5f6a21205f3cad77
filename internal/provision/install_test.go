package provision

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestInstaller_FetchesLocalFile(t *testing.T) {
	src := writeSource(t, "topics.yaml", "templates:\n")
	resources := t.TempDir()

	installer := NewInstaller(resources, nil)
	err := installer.Install(context.Background(), &Manifest{Resources: []Resource{
		{Name: "topics/topics.yaml", URL: src},
	}})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(resources, "topics", "topics.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "templates:\n", string(data))
}

func TestInstaller_SkipsPresentResource(t *testing.T) {
	resources := t.TempDir()
	dest := filepath.Join(resources, "topics.yaml")
	require.NoError(t, os.WriteFile(dest, []byte("already here"), 0644))

	// The URL is unreachable; a fetch attempt would fail.
	installer := NewInstaller(resources, nil)
	err := installer.Install(context.Background(), &Manifest{Resources: []Resource{
		{Name: "topics.yaml", URL: filepath.Join(t.TempDir(), "absent")},
	}})
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "already here", string(data))
}

func TestInstaller_ChecksumMismatchRefetches(t *testing.T) {
	src := writeSource(t, "table.json", "{}")
	sum, err := fileSHA256(src)
	require.NoError(t, err)

	resources := t.TempDir()
	dest := filepath.Join(resources, "table.json")
	require.NoError(t, os.WriteFile(dest, []byte("stale contents"), 0644))

	installer := NewInstaller(resources, nil)
	err = installer.Install(context.Background(), &Manifest{Resources: []Resource{
		{Name: "table.json", URL: src, SHA256: sum},
	}})
	require.NoError(t, err)

	got, err := fileSHA256(dest)
	require.NoError(t, err)
	assert.Equal(t, sum, got)
}

func TestInstaller_FetchFailureAborts(t *testing.T) {
	resources := t.TempDir()
	installer := NewInstaller(resources, nil)

	err := installer.Install(context.Background(), &Manifest{Resources: []Resource{
		{Name: "missing.json", URL: filepath.Join(t.TempDir(), "no-such-file")},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.json")
}
