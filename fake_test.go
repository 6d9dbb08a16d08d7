package pdfflatten

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"
)

// Fake page geometry in points (US Letter).
const (
	fakePageWidthPt  = 612
	fakePageHeightPt = 792
)

// fakeDocument renders solid white pages. It counts renders so tests can
// assert cache hits and double-close behavior.
type fakeDocument struct {
	pages   int
	widthPt float64

	mu      sync.Mutex
	renders int
	closed  bool
}

var _ Document = (*fakeDocument)(nil)

func (d *fakeDocument) PageCount() int {
	return d.pages
}

func (d *fakeDocument) RenderPage(pageIndex int, dpi float64) (*image.RGBA, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrDocumentClosed
	}
	if pageIndex < 0 || pageIndex >= d.pages {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, pageIndex, d.pages)
	}
	d.renders++

	scale := dpi / baseDPI
	widthPt := d.widthPt
	if widthPt == 0 {
		widthPt = fakePageWidthPt
	}
	w := int(math.Round(widthPt * scale))
	h := int(math.Round(fakePageHeightPt * scale))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img, nil
}

func (d *fakeDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDocument) renderCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.renders
}

// fakeSource opens fakeDocuments and remembers them for inspection.
// Paths listed in failPaths fail to open.
type fakeSource struct {
	pages   int
	widthPt float64

	mu        sync.Mutex
	opened    []*fakeDocument
	failPaths map[string]bool
}

var _ DocumentSource = (*fakeSource)(nil)

func (s *fakeSource) Open(path string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failPaths[path] {
		return nil, fmt.Errorf("%w: %s", ErrDocumentOpen, path)
	}
	doc := &fakeDocument{pages: s.pages, widthPt: s.widthPt}
	s.opened = append(s.opened, doc)
	return doc, nil
}

func (s *fakeSource) lastOpened() *fakeDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.opened) == 0 {
		return nil
	}
	return s.opened[len(s.opened)-1]
}
