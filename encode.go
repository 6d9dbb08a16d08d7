package pdfflatten

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// encodeImage serializes img to the given format. JPEG quality is clamped
// to [MinJPEGQuality, MaxJPEGQuality]; PNG always uses maximal lossless
// compression and ignores quality.
func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch strings.ToLower(format) {
	case FormatJPEG:
		q := min(max(quality, MinJPEGQuality), MaxJPEGQuality)
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, fmt.Errorf("%w: jpeg: %v", ErrEncode, err)
		}
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("%w: png: %v", ErrEncode, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}

	return buf.Bytes(), nil
}

// assembleDocument writes a PDF with one page per raster, each page sized
// exactly to its raster's pixel dimensions and filled by the raster as a
// JPEG-compressed image stream. Page order follows raster order.
func assembleDocument(w io.Writer, rasters []*image.RGBA, quality int) error {
	imgs := make([]io.Reader, 0, len(rasters))
	for i, raster := range rasters {
		data, err := encodeImage(raster, FormatJPEG, quality)
		if err != nil {
			return fmt.Errorf("%w: page %d: %v", ErrAssemble, i+1, err)
		}
		imgs = append(imgs, bytes.NewReader(data))
	}

	// The default import configuration sizes every page to its image.
	imp := pdfcpu.DefaultImportConfig()
	if err := api.ImportImages(nil, w, imgs, imp, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("%w: %v", ErrAssemble, err)
	}
	return nil
}
