package pdfflatten

import (
	"image"
	"math"
)

// Rendering scale bounds.
const (
	// baseDPI is the resolution at which a page renders at scale 1.0.
	baseDPI = 72.0

	// minRenderScale floors the scale factor so degenerate DPI settings
	// cannot produce an empty or invalid raster.
	minRenderScale = 0.25
)

// renderScale converts a DPI setting to a rasterization scale factor.
func renderScale(dpi int) float64 {
	return math.Max(minRenderScale, float64(dpi)/baseDPI)
}

// renderPage rasterizes one page of doc at the given DPI. The effective
// resolution is clamped so the scale factor never falls below minRenderScale.
// Out-of-range page indices are the caller's responsibility to clamp;
// the document returns ErrPageOutOfRange otherwise.
func renderPage(doc Document, pageIndex, dpi int) (*image.RGBA, error) {
	return doc.RenderPage(pageIndex, renderScale(dpi)*baseDPI)
}
