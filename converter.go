package pdfflatten

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-pdfflatten/internal/fileutil"
)

// File permission constants.
const (
	outputDirPerm  = 0o750 // rwxr-x---: owner full, group read+execute
	outputFilePerm = 0o644 // rw-r--r--: owner read+write, others read
)

// Converter drives the rasterize-composite-encode pipeline over whole
// documents. A Converter is safe for concurrent use: every Flatten call
// opens its own document handle.
type Converter struct {
	cfg    converterConfig
	source DocumentSource
}

// New creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithLogger, WithDocumentSource).
func New(opts ...Option) *Converter {
	c := &Converter{
		cfg: converterConfig{logger: slog.New(slog.DiscardHandler)},
	}

	for _, opt := range opts {
		opt(c)
	}

	// Create document source if not injected (e.g., by tests)
	if c.source == nil {
		c.source = NewFitzSource()
	}

	return c
}

// Flatten rasterizes every page of the input at opts.DPI, composites the
// watermark, and writes the result into outDir: a single reassembled PDF
// named {stem}_flattened.pdf, or one image per page named {stem}_{NNN}.{ext}
// with 1-based zero-padded numbering. It returns the output paths in page
// order. progress may be nil.
func (c *Converter) Flatten(ctx context.Context, inputPath, outDir string, opts FlattenOptions, progress ProgressFunc) (outputs []string, err error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	doc, err := c.source.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	total := doc.PageCount()
	rasters := make([]*image.RGBA, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raster, err := renderPage(doc, i, opts.DPI)
		if err != nil {
			return nil, err
		}
		raster = safeWatermark(c.cfg.logger, raster, opts.Watermark, opts.Tiled, opts.Rotate45)
		rasters = append(rasters, raster)

		c.notifyProgress(progress, i+1, total)
	}

	if err := os.MkdirAll(outDir, outputDirPerm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	stem := fileutil.Stem(inputPath)
	format := strings.ToLower(opts.Format)

	if format == FormatPDF {
		outPath := filepath.Join(outDir, stem+"_flattened.pdf")
		if err := writeDocument(outPath, rasters, opts.JPEGQuality); err != nil {
			return nil, err
		}
		return []string{outPath}, nil
	}

	outputs = make([]string, 0, len(rasters))
	for i, raster := range rasters {
		data, err := encodeImage(raster, format, opts.JPEGQuality)
		if err != nil {
			return nil, err
		}
		outPath := filepath.Join(outDir, fmt.Sprintf("%s_%03d.%s", stem, i+1, format))
		if err := os.WriteFile(outPath, data, outputFilePerm); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		outputs = append(outputs, outPath)
	}
	return outputs, nil
}

// writeDocument assembles rasters into a single PDF at outPath.
func writeDocument(outPath string, rasters []*image.RGBA, quality int) (err error) {
	f, err := os.Create(outPath) // #nosec G304 -- caller-supplied output dir
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %v", ErrWriteOutput, cerr)
		}
	}()

	return assembleDocument(f, rasters, quality)
}

// FileResult holds the outcome of one input in a queue run.
type FileResult struct {
	InputPath string
	Outputs   []string
	Err       error
}

// FlattenAll processes a queue of inputs sequentially, one result per input.
// One file's failure never halts the queue: errors are recorded per result.
// fileProgress receives (files_done, files_total) after each file; both
// progress sinks may be nil.
func (c *Converter) FlattenAll(ctx context.Context, inputs []string, outDir string, opts FlattenOptions, pageProgress ProgressFunc, fileProgress FileProgressFunc) []FileResult {
	results := make([]FileResult, len(inputs))
	total := len(inputs)

	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			results[i] = FileResult{InputPath: input, Err: err}
			continue
		}

		outputs, err := c.Flatten(ctx, input, outDir, opts, pageProgress)
		results[i] = FileResult{InputPath: input, Outputs: outputs, Err: err}

		c.notifyProgress(ProgressFunc(fileProgress), i+1, total)
	}
	return results
}

// notifyProgress invokes a progress sink. Progress reporting must never
// abort processing, so a panicking sink is swallowed and logged.
func (c *Converter) notifyProgress(fn ProgressFunc, done, total int) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.cfg.logger.Debug("progress callback failed, tick skipped", "reason", r)
		}
	}()
	fn(done, total)
}
