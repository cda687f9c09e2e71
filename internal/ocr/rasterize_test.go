package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortExtractedImagesNumericPageOrder(t *testing.T) {
	names := []string{
		"scan_10_Im0.png",
		"scan_2_Im0.png",
		"scan_1_Im0.png",
		"scan_11_Im0.jpg",
	}
	sortExtractedImages(names)
	assert.Equal(t, []string{
		"scan_1_Im0.png",
		"scan_2_Im0.png",
		"scan_10_Im0.png",
		"scan_11_Im0.jpg",
	}, names)
}

func TestSortExtractedImagesResourceTieBreak(t *testing.T) {
	names := []string{"scan_3_Im1.png", "scan_3_Im0.png"}
	sortExtractedImages(names)
	assert.Equal(t, []string{"scan_3_Im0.png", "scan_3_Im1.png"}, names)
}

func TestSortExtractedImagesUnrecognizedNamesSortLast(t *testing.T) {
	names := []string{"readme.txt", "scan_2_Im0.png", "scan_1_Im0.png"}
	sortExtractedImages(names)
	assert.Equal(t, []string{"scan_1_Im0.png", "scan_2_Im0.png", "readme.txt"}, names)
}

func TestImageOrdinal(t *testing.T) {
	page, resource, ok := imageOrdinal("invoice_12_Im3.png")
	assert.True(t, ok)
	assert.Equal(t, 12, page)
	assert.Equal(t, "Im3", resource)

	_, _, ok = imageOrdinal("no-ordinals.png")
	assert.False(t, ok)
}
