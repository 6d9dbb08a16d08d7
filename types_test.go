package pdfflatten

// Notes:
// - WatermarkSpec: size must be positive when text is set
// - FlattenOptions: DPI and format validation, defaults round-trip
// - isValidFormat: case-insensitive matching

import (
	"errors"
	"testing"
)

func TestWatermarkSpec_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		spec    WatermarkSpec
		wantErr error
	}{
		{
			name:    "empty text skips size check",
			spec:    WatermarkSpec{Text: "", SizePct: 0},
			wantErr: nil,
		},
		{
			name:    "valid spec",
			spec:    WatermarkSpec{Text: "DRAFT", SizePct: 10, Opacity: 120, TilePaddingPct: 50},
			wantErr: nil,
		},
		{
			name:    "zero size with text",
			spec:    WatermarkSpec{Text: "DRAFT", SizePct: 0},
			wantErr: ErrInvalidWatermarkSize,
		},
		{
			name:    "negative size with text",
			spec:    WatermarkSpec{Text: "DRAFT", SizePct: -1},
			wantErr: ErrInvalidWatermarkSize,
		},
		{
			name: "out of range opacity is not an error",
			spec: WatermarkSpec{Text: "DRAFT", SizePct: 10, Opacity: 999},
			// clamped at composite time instead
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.spec.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFlattenOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*FlattenOptions)
		wantErr error
	}{
		{
			name:    "defaults are valid",
			mutate:  func(o *FlattenOptions) {},
			wantErr: nil,
		},
		{
			name:    "zero dpi",
			mutate:  func(o *FlattenOptions) { o.DPI = 0 },
			wantErr: ErrInvalidDPI,
		},
		{
			name:    "negative dpi",
			mutate:  func(o *FlattenOptions) { o.DPI = -150 },
			wantErr: ErrInvalidDPI,
		},
		{
			name:    "unknown format",
			mutate:  func(o *FlattenOptions) { o.Format = "tiff" },
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "uppercase format accepted",
			mutate:  func(o *FlattenOptions) { o.Format = "PNG" },
			wantErr: nil,
		},
		{
			name:    "invalid watermark size",
			mutate:  func(o *FlattenOptions) { o.Watermark.SizePct = 0 },
			wantErr: ErrInvalidWatermarkSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := DefaultOptions()
			tt.mutate(&opts)

			err := opts.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()

	if opts.DPI != DefaultDPI {
		t.Errorf("DPI = %d, want %d", opts.DPI, DefaultDPI)
	}
	if opts.Format != FormatPDF {
		t.Errorf("Format = %q, want %q", opts.Format, FormatPDF)
	}
	if !opts.Tiled {
		t.Error("Tiled = false, want true")
	}
	if opts.Rotate45 {
		t.Error("Rotate45 = true, want false")
	}
	if opts.Watermark.Text != DefaultWatermarkText {
		t.Errorf("Watermark.Text = %q, want %q", opts.Watermark.Text, DefaultWatermarkText)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("DefaultOptions().Validate() = %v, want nil", err)
	}
}

func TestIsValidFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   bool
	}{
		{"pdf", true},
		{"png", true},
		{"jpeg", true},
		{"JPEG", true},
		{"Pdf", true},
		{"", false},
		{"jpg", false},
		{"tiff", false},
	}

	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			t.Parallel()

			if got := isValidFormat(tt.format); got != tt.want {
				t.Errorf("isValidFormat(%q) = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}
