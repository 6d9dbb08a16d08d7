package pdfflatten

import (
	"fmt"
	"log/slog"
	"strings"
)

// Export format constants.
const (
	FormatPDF  = "pdf"
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// Opacity bounds for watermark blending.
const (
	MinOpacity = 0
	MaxOpacity = 255
)

// JPEG quality bounds.
const (
	MinJPEGQuality = 1
	MaxJPEGQuality = 100
)

// Default parameter values, matching the interactive controls.
const (
	DefaultDPI            = 150
	DefaultJPEGQuality    = 85
	DefaultWatermarkText  = "CONFIDENTIAL"
	DefaultSizePct        = 10.0
	DefaultOpacity        = 120
	DefaultTilePaddingPct = 50.0
)

// WatermarkSpec describes the text mark stamped onto each page.
// An empty Text disables watermarking entirely.
type WatermarkSpec struct {
	Text           string  // mark text (empty = no watermark)
	SizePct        float64 // font size as % of page width (resolution independent)
	Opacity        int     // 0..255, clamped at composite time
	TilePaddingPct float64 // spacing between tile repeats, relative to font size
}

// Validate checks that the watermark spec is renderable.
// Out-of-range opacity is not an error: the compositor clamps it.
func (w WatermarkSpec) Validate() error {
	if w.Text != "" && w.SizePct <= 0 {
		return fmt.Errorf("%w: size %.2f%% (must be > 0)", ErrInvalidWatermarkSize, w.SizePct)
	}
	return nil
}

// FlattenOptions fully determines the output of a flatten run: two runs with
// identical options over identical input produce equivalent rasters.
type FlattenOptions struct {
	DPI         int           // rendering resolution
	JPEGQuality int           // 1..100, clamped at encode time
	Format      string        // "pdf", "png", "jpeg"
	Watermark   WatermarkSpec // watermark parameters
	Tiled       bool          // repeat the mark across the page
	Rotate45    bool          // rotate the watermark layer by 45 degrees
}

// DefaultOptions returns flatten options with default values.
func DefaultOptions() FlattenOptions {
	return FlattenOptions{
		DPI:         DefaultDPI,
		JPEGQuality: DefaultJPEGQuality,
		Format:      FormatPDF,
		Watermark: WatermarkSpec{
			Text:           DefaultWatermarkText,
			SizePct:        DefaultSizePct,
			Opacity:        DefaultOpacity,
			TilePaddingPct: DefaultTilePaddingPct,
		},
		Tiled: true,
	}
}

// Validate checks that options are usable for a flatten run.
func (o FlattenOptions) Validate() error {
	if o.DPI <= 0 {
		return fmt.Errorf("%w: %d (must be positive)", ErrInvalidDPI, o.DPI)
	}
	if !isValidFormat(o.Format) {
		return fmt.Errorf("%w: %q (must be pdf, png, or jpeg)", ErrInvalidFormat, o.Format)
	}
	return o.Watermark.Validate()
}

// isValidFormat checks if format is a known export format (case-insensitive).
func isValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case FormatPDF, FormatPNG, FormatJPEG:
		return true
	}
	return false
}

// ProgressFunc receives per-page progress as (done, total).
// Implementations must be fast; they run on the pipeline goroutine.
type ProgressFunc func(done, total int)

// FileProgressFunc receives per-file progress as (done, total) over a queue.
type FileProgressFunc func(done, total int)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	logger *slog.Logger
}

// WithDocumentSource sets the backend used to open documents.
// Primarily useful for tests; the default opens PDFs through MuPDF.
func WithDocumentSource(src DocumentSource) Option {
	return func(c *Converter) {
		c.source = src
	}
}

// WithLogger sets the logger used for degrade-to-noop events
// (watermark fallbacks, skipped progress ticks). Defaults to a silent logger.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("pdfflatten: WithLogger requires a non-nil logger")
	}
	return func(c *Converter) {
		c.cfg.logger = l
	}
}
