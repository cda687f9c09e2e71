package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRasterizer struct{ images [][]byte }

func (s staticRasterizer) Convert(context.Context, string) ([][]byte, error) {
	return s.images, nil
}

func TestRunOnPDF(t *testing.T) {
	var got struct {
		Language string   `json:"language"`
		Pages    []string `json:"pages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"pages": []map[string]any{
				{"text": "trang một", "confidence": 0.92},
				{"text": "trang hai", "confidence": nil},
			},
		})
	}))
	defer srv.Close()

	r := NewRemoteRecognizer(RemoteConfig{ServiceURL: srv.URL, Language: "vi"}, nil)
	pages, err := r.RunOnPDF(context.Background(), "in.pdf",
		staticRasterizer{images: [][]byte{{0xFF, 0xD8}, {0x89, 0x50}}})
	require.NoError(t, err)

	assert.Equal(t, "vi", got.Language)
	require.Len(t, got.Pages, 2)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8}), got.Pages[0])

	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].Index)
	assert.Equal(t, "trang một", pages[0].Text)
	require.NotNil(t, pages[0].Confidence)
	assert.InDelta(t, 0.92, *pages[0].Confidence, 1e-9)
	assert.Nil(t, pages[1].Confidence)
}

func TestRunOnPDFServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewRemoteRecognizer(RemoteConfig{ServiceURL: srv.URL, Language: "vi"}, nil)
	_, err := r.RunOnPDF(context.Background(), "in.pdf", staticRasterizer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
