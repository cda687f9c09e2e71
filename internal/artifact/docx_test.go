package artifact

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocxIsValidArchive(t *testing.T) {
	data, err := BuildDocx([]string{"Trang một\n\nĐoạn hai", "Trang hai"})
	require.NoError(t, err)
	assert.Equal(t, []byte("PK"), data[:2], "docx starts with the zip magic")

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var document string
	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		raw, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		document = string(raw)
	}
	require.NotEmpty(t, document, "archive must contain word/document.xml")
	assert.Contains(t, document, "Trang một")
	assert.Contains(t, document, "Đoạn hai")
	assert.Contains(t, document, `<w:br w:type="page"/>`, "second page starts with a page break")
}

func TestBuildDocxEscapesMarkup(t *testing.T) {
	data, err := BuildDocx([]string{`a < b & "c"`})
	require.NoError(t, err)

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		raw, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Contains(t, string(raw), "a &lt; b &amp; &quot;c&quot;")
	}
}

func TestBuildDocxEmptyPages(t *testing.T) {
	data, err := BuildDocx([]string{"", "   "})
	require.NoError(t, err)
	_, err = zip.NewReader(bytes.NewReader(data), int64(len(data)))
	assert.NoError(t, err, "still a readable archive with an empty body")
}
