package pdfflatten

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/gen2brain/go-fitz"
)

// Document is an open handle to a paged document.
//
// A handle carries internal read-position state and is not safe for
// concurrent RenderPage calls; callers must serialize access per handle.
// Distinct handles are independent and may be used concurrently.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int

	// RenderPage renders one page to an opaque RGB raster at the given DPI.
	// pageIndex must be in [0, PageCount).
	RenderPage(pageIndex int, dpi float64) (*image.RGBA, error)

	// Close releases the handle. The document must not be used after Close.
	Close() error
}

// DocumentSource opens paged documents. It abstracts the rendering backend
// to allow different engines (and fakes in tests).
type DocumentSource interface {
	Open(path string) (Document, error)
}

// Compile-time interface checks.
var (
	_ Document       = (*fitzDocument)(nil)
	_ DocumentSource = (*fitzSource)(nil)
)

// fitzSource opens PDF documents through MuPDF (go-fitz).
type fitzSource struct{}

// NewFitzSource returns the default MuPDF-backed document source.
func NewFitzSource() DocumentSource {
	return &fitzSource{}
}

// Open opens the PDF at path.
func (s *fitzSource) Open(path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentOpen, path, err)
	}
	return &fitzDocument{doc: doc}, nil
}

// fitzDocument wraps a MuPDF document handle.
type fitzDocument struct {
	doc    *fitz.Document
	closed bool
}

// PageCount returns the number of pages.
func (d *fitzDocument) PageCount() int {
	if d.closed {
		return 0
	}
	return d.doc.NumPage()
}

// RenderPage renders the page at pageIndex to an RGB raster at dpi.
func (d *fitzDocument) RenderPage(pageIndex int, dpi float64) (*image.RGBA, error) {
	if d.closed {
		return nil, ErrDocumentClosed
	}
	if pageIndex < 0 || pageIndex >= d.doc.NumPage() {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, pageIndex, d.doc.NumPage())
	}
	img, err := d.doc.ImageDPI(pageIndex, dpi)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrPageRender, pageIndex, err)
	}
	return ensureRGBA(img), nil
}

// ensureRGBA returns img as an *image.RGBA, converting only when the
// decoder handed back another pixel layout.
func ensureRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// Close releases the MuPDF handle. Closing twice is a no-op.
func (d *fitzDocument) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.doc.Close()
}
