// Package pdfflatten converts paged PDF documents into rasterized,
// watermarked output: a single reassembled PDF or a set of per-page images.
//
// # Quick Start
//
// Create a converter and flatten a document:
//
//	conv := pdfflatten.New()
//
//	outputs, err := conv.Flatten(ctx, "report.pdf", "out/", pdfflatten.DefaultOptions(), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Document mode writes out/report_flattened.pdf; image modes write
// out/report_001.png, out/report_002.png, and so on.
//
// # Pipeline
//
// Each page passes through three stages:
//
//  1. Rasterization via MuPDF (go-fitz) at the configured DPI
//  2. Watermark compositing (tiled or centered, optionally rotated 45
//     degrees), which never fails: internal errors degrade to the
//     unwatermarked raster
//  3. Encoding to JPEG/PNG, or reassembly into a PDF whose pages match the
//     raster dimensions exactly (pdfcpu)
//
// # Live Preview
//
// Previewer serves a debounced, cached preview of the same transformation
// for interactive parameter tuning:
//
//	pv := pdfflatten.NewPreviewer()
//	defer pv.Close()
//
//	if err := pv.Load("report.pdf"); err != nil {
//	    log.Fatal(err)
//	}
//	pv.Request(opts) // debounced; result arrives on pv.Updates()
//
// Preview artifacts live in a temp directory and are reclaimed by a
// background janitor once they age out.
//
// # Configuration
//
// Use functional options to customize behavior:
//
//	conv := pdfflatten.New(
//	    pdfflatten.WithLogger(slog.Default()),
//	)
//
// The library is silent by default and reports failures as errors; only
// deliberately swallowed failures (watermark fallbacks, progress sink
// panics) are logged, at debug level.
package pdfflatten
