package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteResult(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(filepath.Join(dir, "results"), nil)

	path, err := store.WriteResult("job-1", `{"combined_text": "hello"}`)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "results", "job-1.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"combined_text": "hello"}`, string(data))
}

func TestWriteBinaryArtifact(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, nil)

	path, err := store.WriteBinaryArtifact("job-1", ".docx", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "job-1.docx"), path)

	// A missing dot on the suffix is tolerated.
	path, err = store.WriteBinaryArtifact("job-1", "xlsx", []byte{4})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "job-1.xlsx"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, data)
}
