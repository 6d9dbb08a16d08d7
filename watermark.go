package pdfflatten

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// Watermark layout constants.
const (
	// minFontPx floors the computed font size.
	minFontPx = 4

	// watermarkAngleDeg is the counterclockwise rotation applied when
	// Rotate45 is set.
	watermarkAngleDeg = 45.0

	// tileStaggerDivisor sets the horizontal shift of every other tile row
	// as a fraction of the horizontal step. Cosmetic, safe to tune.
	tileStaggerDivisor = 2

	// watermarkGray is the fill level of the mark (light gray).
	watermarkGray = 180
)

// safeWatermark applies the watermark and never fails: any panic out of the
// compositing path is caught, logged, and the original raster returned.
// A watermark failure must degrade gracefully, not abort a batch run or
// crash a live preview.
func safeWatermark(logger *slog.Logger, base *image.RGBA, spec WatermarkSpec, tiled, rotate45 bool) (out *image.RGBA) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("watermark compositing failed, using original raster", "reason", r)
			out = base
		}
	}()
	return applyWatermark(base, spec, tiled, rotate45)
}

// applyWatermark draws the mark either tiled or single centered onto a
// transparent overlay, optionally rotates the overlay, and alpha-composites
// it over base. An empty text is a no-op returning base unchanged.
func applyWatermark(base *image.RGBA, spec WatermarkSpec, tiled, rotate45 bool) *image.RGBA {
	if spec.Text == "" {
		return base
	}

	b := base.Bounds()
	width, height := b.Dx(), b.Dy()

	// Font size scales with page width, not DPI, so the visual proportion
	// of the mark is stable across rendering resolutions.
	fontPx := max(minFontPx, int(math.Round(float64(width)*spec.SizePct/100)))
	face := loadFace(fontPx)
	defer face.Close()

	overlay := image.NewRGBA(image.Rect(0, 0, width, height))
	fill := color.NRGBA{
		R: watermarkGray,
		G: watermarkGray,
		B: watermarkGray,
		A: clampOpacity(spec.Opacity),
	}
	drawer := &font.Drawer{
		Dst:  overlay,
		Src:  image.NewUniform(fill),
		Face: face,
	}

	bounds, _ := font.BoundString(face, spec.Text)
	tw := max(1, (bounds.Max.X - bounds.Min.X).Ceil())
	th := max(1, (bounds.Max.Y - bounds.Min.Y).Ceil())

	// drawAt places the text's bounding box with its top-left corner at (x, y).
	drawAt := func(x, y int) {
		drawer.Dot = fixed.Point26_6{
			X: fixed.I(x) - bounds.Min.X,
			Y: fixed.I(y) - bounds.Min.Y,
		}
		drawer.DrawString(spec.Text)
	}

	padPx := int(math.Round(float64(fontPx) * spec.TilePaddingPct / 100))
	stepX := max(1, tw+padPx)
	stepY := max(1, th+padPx)

	if tiled {
		// Start one full step before the origin and end one full step past
		// the far edge: a 45 degree rotation shifts content by up to half
		// the diagonal, and the overshoot keeps the edges covered.
		startX, startY := -stepX, -stepY
		endX, endY := width+stepX, height+stepY
		stagger := stepX / tileStaggerDivisor

		row := 0
		for y := startY; y < endY; y += stepY {
			x := startX
			if row%2 == 1 {
				x -= stagger
			}
			for ; x < endX; x += stepX {
				drawAt(x, y)
			}
			row++
		}
	} else {
		// Single centered. The mark may overflow the canvas; overflow is
		// clipped at composite time.
		drawAt((width-tw)/2, (height-th)/2)
	}

	if rotate45 {
		overlay = rotateOverlay(overlay, width, height)
	}

	return alphaComposite(base, overlay)
}

// clampOpacity clamps an opacity setting into [MinOpacity, MaxOpacity].
func clampOpacity(opacity int) uint8 {
	return uint8(min(max(opacity, MinOpacity), MaxOpacity))
}

// rotateOverlay rotates the overlay by watermarkAngleDeg with bounding-box
// expansion, then pastes the result centered into a fresh transparent canvas
// of width x height, so compositing never handles a size mismatch.
func rotateOverlay(overlay *image.RGBA, width, height int) *image.RGBA {
	rotated := rotateExpand(overlay, watermarkAngleDeg)
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	rb := rotated.Bounds()
	offset := image.Pt((width-rb.Dx())/2, (height-rb.Dy())/2)
	draw.Draw(canvas, rb.Add(offset), rotated, rb.Min, draw.Over)
	return canvas
}

// rotateExpand rotates src counterclockwise by deg degrees onto a canvas
// expanded to the rotated bounding box.
func rotateExpand(src *image.RGBA, deg float64) *image.RGBA {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)

	sb := src.Bounds()
	w, h := float64(sb.Dx()), float64(sb.Dy())
	rw := int(math.Ceil(w*math.Abs(cos) + h*math.Abs(sin)))
	rh := int(math.Ceil(w*math.Abs(sin) + h*math.Abs(cos)))
	dst := image.NewRGBA(image.Rect(0, 0, rw, rh))

	// Affine map from source to destination: rotate about the source
	// center, then move that center onto the destination center. Image y
	// grows downward, so a visually counterclockwise rotation uses
	// [cos sin; -sin cos].
	cx, cy := w/2, h/2
	dcx, dcy := float64(rw)/2, float64(rh)/2
	m := f64.Aff3{
		cos, sin, dcx - cos*cx - sin*cy,
		-sin, cos, dcy + sin*cx - cos*cy,
	}
	xdraw.BiLinear.Transform(dst, m, src, sb, xdraw.Over, nil)
	return dst
}

// alphaComposite blends overlay over base and returns an opaque raster
// anchored at the origin.
func alphaComposite(base, overlay *image.RGBA) *image.RGBA {
	b := base.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), base, b.Min, draw.Src)
	draw.Draw(out, out.Bounds(), overlay, overlay.Bounds().Min, draw.Over)
	return out
}
