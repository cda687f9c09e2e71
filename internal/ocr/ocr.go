package ocr

import "context"

// Page is a single recognized page. Produced once by the OCR collaborator,
// immutable afterward.
type Page struct {
	Index      int
	Text       string
	Confidence *float64
	Boxes      [][]int
}

// Rasterizer turns a PDF into one encoded image per page.
type Rasterizer interface {
	Convert(ctx context.Context, path string) ([][]byte, error)
}

// Recognizer is the external OCR engine. Implementations rasterize via the
// supplied Rasterizer and return pages in index order.
type Recognizer interface {
	RunOnPDF(ctx context.Context, path string, rasterizer Rasterizer) ([]Page, error)
}
