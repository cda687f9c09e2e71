package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// EmbeddedImageRasterizer extracts the page images embedded in a scanned PDF.
// Scanner output carries exactly one full-page image per page, so extraction
// is equivalent to rasterization without a renderer. PDFs with vector-only
// pages yield no image for those pages.
type EmbeddedImageRasterizer struct{}

func (EmbeddedImageRasterizer) Convert(ctx context.Context, path string) ([][]byte, error) {
	tmpDir, err := os.MkdirTemp("", "ocrjobs_raster_*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	if err := api.ExtractImagesFile(path, tmpDir, nil, cfg); err != nil {
		return nil, fmt.Errorf("extract page images: %w", err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("read temp dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sortExtractedImages(names)

	images := make([][]byte, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(tmpDir, name))
		if err != nil {
			return nil, fmt.Errorf("read extracted image %s: %w", name, err)
		}
		images = append(images, data)
	}
	return images, nil
}

// pdfcpu names extracted files <base>_<page>_<resource>.<ext> without
// zero-padding the page number, so a lexical sort would put page 10 before
// page 2.
var extractedImageName = regexp.MustCompile(`_(\d+)_([^_.]+)\.[^.]+$`)

func sortExtractedImages(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		pi, ri, oki := imageOrdinal(names[i])
		pj, rj, okj := imageOrdinal(names[j])
		if oki && okj {
			if pi != pj {
				return pi < pj
			}
			return ri < rj
		}
		if oki != okj {
			return oki
		}
		return names[i] < names[j]
	})
}

func imageOrdinal(name string) (page int, resource string, ok bool) {
	m := extractedImageName.FindStringSubmatch(name)
	if m == nil {
		return 0, "", false
	}
	page, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return page, m[2], true
}
