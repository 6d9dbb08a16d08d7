package pdfflatten

// Notes:
// - Flatten: output naming for document and per-image modes, page progress,
//   document lifecycle (handle closed before return)
// - progress sink failures are swallowed
// - FlattenAll: per-file error isolation, file progress
// - invalid options rejected before any document is opened

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// newTestConverter returns a Converter over a fake source with n pages.
func newTestConverter(n int) (*Converter, *fakeSource) {
	src := &fakeSource{pages: n}
	return New(WithDocumentSource(src)), src
}

// testOptions returns cheap-to-render options for pipeline tests.
func testOptions(format string) FlattenOptions {
	opts := DefaultOptions()
	opts.DPI = 36 // quarter scale keeps rasters small
	opts.Format = format
	opts.Watermark.Text = "" // pipeline tests don't need the mark
	return opts
}

func TestFlatten_DocumentMode(t *testing.T) {
	t.Parallel()

	conv, src := newTestConverter(3)
	outDir := t.TempDir()

	outputs, err := conv.Flatten(context.Background(), "/in/report.pdf", outDir, testOptions(FormatPDF), nil)
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}

	want := []string{filepath.Join(outDir, "report_flattened.pdf")}
	if len(outputs) != 1 || outputs[0] != want[0] {
		t.Errorf("outputs = %v, want %v", outputs, want)
	}

	info, err := os.Stat(outputs[0])
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output document is empty")
	}

	if doc := src.lastOpened(); doc == nil || !doc.closed {
		t.Error("input document should be closed after Flatten")
	}
}

func TestFlatten_ImageMode(t *testing.T) {
	t.Parallel()

	conv, _ := newTestConverter(3)
	outDir := t.TempDir()

	outputs, err := conv.Flatten(context.Background(), "/in/scan.pdf", outDir, testOptions(FormatPNG), nil)
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}

	want := []string{
		filepath.Join(outDir, "scan_001.png"),
		filepath.Join(outDir, "scan_002.png"),
		filepath.Join(outDir, "scan_003.png"),
	}
	if len(outputs) != len(want) {
		t.Fatalf("got %d outputs, want %d", len(outputs), len(want))
	}
	for i, out := range outputs {
		if out != want[i] {
			t.Errorf("outputs[%d] = %q, want %q", i, out, want[i])
		}

		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("reading %s: %v", out, err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("decoding %s: %v", out, err)
		}
		if img.Bounds().Dx() == 0 {
			t.Errorf("%s has empty bounds", out)
		}
	}
}

func TestFlatten_EmptyWatermarkMatchesPlainRender(t *testing.T) {
	t.Parallel()

	conv, _ := newTestConverter(1)
	outDir := t.TempDir()

	outputs, err := conv.Flatten(context.Background(), "/in/p.pdf", outDir, testOptions(FormatPNG), nil)
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}

	// The compositor no-op path must leave pixels untouched: the output
	// equals a direct render of the same fake page.
	doc := &fakeDocument{pages: 1}
	plain, err := renderPage(doc, 0, 36)
	if err != nil {
		t.Fatalf("renderPage() error = %v", err)
	}

	data, err := os.ReadFile(outputs[0])
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}

	if img.Bounds().Dx() != plain.Bounds().Dx() || img.Bounds().Dy() != plain.Bounds().Dy() {
		t.Fatalf("bounds = %v, want %v", img.Bounds(), plain.Bounds())
	}
	for y := 0; y < plain.Bounds().Dy(); y += 11 {
		for x := 0; x < plain.Bounds().Dx(); x += 11 {
			pr, pg, pb, _ := plain.At(x, y).RGBA()
			or, og, ob, _ := img.At(x, y).RGBA()
			if pr != or || pg != og || pb != ob {
				t.Fatalf("pixel (%d,%d) differs from plain render", x, y)
			}
		}
	}
}

func TestFlatten_PageProgress(t *testing.T) {
	t.Parallel()

	conv, _ := newTestConverter(3)

	var ticks [][2]int
	progress := func(done, total int) {
		ticks = append(ticks, [2]int{done, total})
	}

	if _, err := conv.Flatten(context.Background(), "/in/x.pdf", t.TempDir(), testOptions(FormatPNG), progress); err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}

	want := [][2]int{{1, 3}, {2, 3}, {3, 3}}
	if len(ticks) != len(want) {
		t.Fatalf("got %d ticks, want %d", len(ticks), len(want))
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Errorf("tick %d = %v, want %v", i, ticks[i], want[i])
		}
	}
}

func TestFlatten_PanickingProgressSinkIsSwallowed(t *testing.T) {
	t.Parallel()

	conv, _ := newTestConverter(2)

	progress := func(done, total int) {
		panic("sink exploded")
	}

	outputs, err := conv.Flatten(context.Background(), "/in/x.pdf", t.TempDir(), testOptions(FormatPNG), progress)
	if err != nil {
		t.Fatalf("Flatten() error = %v, progress failures must not abort", err)
	}
	if len(outputs) != 2 {
		t.Errorf("got %d outputs, want 2", len(outputs))
	}
}

func TestFlatten_InvalidOptions(t *testing.T) {
	t.Parallel()

	src := &fakeSource{pages: 1}
	conv := New(WithDocumentSource(src))

	opts := testOptions(FormatPNG)
	opts.DPI = 0

	if _, err := conv.Flatten(context.Background(), "/in/x.pdf", t.TempDir(), opts, nil); !errors.Is(err, ErrInvalidDPI) {
		t.Errorf("Flatten() error = %v, want ErrInvalidDPI", err)
	}
	if len(src.opened) != 0 {
		t.Error("no document should be opened for invalid options")
	}
}

func TestFlatten_OpenFailure(t *testing.T) {
	t.Parallel()

	src := &fakeSource{pages: 1, failPaths: map[string]bool{"/in/broken.pdf": true}}
	conv := New(WithDocumentSource(src))

	if _, err := conv.Flatten(context.Background(), "/in/broken.pdf", t.TempDir(), testOptions(FormatPNG), nil); !errors.Is(err, ErrDocumentOpen) {
		t.Errorf("Flatten() error = %v, want ErrDocumentOpen", err)
	}
}

func TestFlatten_CancelledContext(t *testing.T) {
	t.Parallel()

	conv, _ := newTestConverter(3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := conv.Flatten(ctx, "/in/x.pdf", t.TempDir(), testOptions(FormatPNG), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Flatten() error = %v, want context.Canceled", err)
	}
}

func TestFlattenAll_IsolatesFailures(t *testing.T) {
	t.Parallel()

	src := &fakeSource{pages: 2, failPaths: map[string]bool{"/in/bad.pdf": true}}
	conv := New(WithDocumentSource(src))
	outDir := t.TempDir()

	var fileTicks [][2]int
	fileProgress := func(done, total int) {
		fileTicks = append(fileTicks, [2]int{done, total})
	}

	inputs := []string{"/in/a.pdf", "/in/bad.pdf", "/in/c.pdf"}
	results := conv.FlattenAll(context.Background(), inputs, outDir, testOptions(FormatPNG), nil, fileProgress)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("results[0].Err = %v, want nil", results[0].Err)
	}
	if !errors.Is(results[1].Err, ErrDocumentOpen) {
		t.Errorf("results[1].Err = %v, want ErrDocumentOpen", results[1].Err)
	}
	if results[2].Err != nil {
		t.Errorf("results[2].Err = %v, sibling failure must not leak", results[2].Err)
	}
	if len(results[2].Outputs) != 2 {
		t.Errorf("results[2] has %d outputs, want 2", len(results[2].Outputs))
	}

	want := [][2]int{{1, 3}, {2, 3}, {3, 3}}
	if fmt.Sprint(fileTicks) != fmt.Sprint(want) {
		t.Errorf("file progress = %v, want %v", fileTicks, want)
	}
}
