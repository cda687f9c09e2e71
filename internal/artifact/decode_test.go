package artifact

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/ocr-jobs/constants"
)

func TestDecodeVariants(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("hello"))

	assert.Equal(t, []byte{1, 2, 3}, Decode([]byte{1, 2, 3}), "raw bytes pass through")
	assert.Equal(t, []byte("hello"), Decode(encoded), "bare strings decode as base64")
	assert.Equal(t, []byte("not-base64!!"), Decode("not-base64!!"),
		"invalid base64 falls back to the literal bytes")

	assert.Equal(t, []byte("hi"), Decode(map[string]any{"content": "aGk=", "encoding": "base64"}))
	assert.Equal(t, []byte("plain"), Decode(map[string]any{"content": "plain", "encoding": "utf-8"}))
	assert.Equal(t, []byte("hi"), Decode(map[string]any{"content": "aGk="}), "encoding defaults to base64")

	assert.Nil(t, Decode(nil))
	assert.Nil(t, Decode(42))
	assert.Nil(t, Decode(map[string]any{"encoding": "base64"}), "missing content")
	assert.Nil(t, Decode(map[string]any{"content": "x", "encoding": "hex"}), "unknown encoding")
}

func TestExtractFromResponseFirstKindWins(t *testing.T) {
	topLevel := base64.StdEncoding.EncodeToString([]byte("top"))
	nested := base64.StdEncoding.EncodeToString([]byte("nested"))

	raw := map[string]any{
		"docx": topLevel,
		"artifacts": map[string]any{
			"docx": nested,
			"xlsx": nested,
		},
	}
	out := ExtractFromResponse(raw)
	require.Len(t, out, 2)

	byKind := map[constants.ArtifactKind][]byte{}
	for _, e := range out {
		byKind[e.Kind] = e.Data
	}
	assert.Equal(t, []byte("top"), byKind[constants.ArtifactDocx], "top-level beats nested")
	assert.Equal(t, []byte("nested"), byKind[constants.ArtifactXlsx])
}

func TestExtractFromResponseIgnoresUnknownKeys(t *testing.T) {
	raw := map[string]any{"text": "hello", "pdf": "aGk="}
	assert.Empty(t, ExtractFromResponse(raw))
	assert.Empty(t, ExtractFromResponse(nil))
}
