package pdfflatten

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nfnt/resize"
	gocache "github.com/patrickmn/go-cache"

	"github.com/alnah/go-pdfflatten/internal/fileutil"
)

// Preview rendering constants.
const (
	// previewMaxWidth caps the artifact width for display. Downscaling
	// happens after watermarking so the mark proportions reflect the true
	// composited page.
	previewMaxWidth = 1000

	// previewJPEGQuality is the fixed encode quality for preview artifacts.
	previewJPEGQuality = 70

	// defaultDebounce is the quiet period before a parameter edit triggers
	// a recompute.
	defaultDebounce = 200 * time.Millisecond

	// artifactPrefix names preview artifacts in the artifact directory.
	artifactPrefix = "preview-"

	// updateBuffer bounds the updates channel; stale updates are dropped
	// rather than blocking the render goroutine.
	updateBuffer = 16
)

// PreviewUpdate is delivered on the updates channel after a debounced
// recompute completes.
type PreviewUpdate struct {
	Path string
	Err  error
}

// Previewer serves parameter-driven page previews backed by a TTL cache of
// encoded artifacts. It owns its document handle exclusively; a handle is
// never shared with a batch run, because a handle is not safe for
// concurrent rasterization.
type Previewer struct {
	source   DocumentSource
	logger   *slog.Logger
	dir      string
	debounce time.Duration
	cache    *gocache.Cache
	sweeper  *Sweeper
	updates  chan PreviewUpdate

	mu        sync.Mutex
	doc       Document
	docPath   string
	pageIndex int
	pending   *time.Timer
}

// PreviewerOption configures a Previewer.
type PreviewerOption func(*Previewer)

// WithPreviewSource sets the backend used to open documents.
func WithPreviewSource(src DocumentSource) PreviewerOption {
	return func(p *Previewer) {
		p.source = src
	}
}

// WithPreviewLogger sets the logger for degrade-to-noop events.
func WithPreviewLogger(l *slog.Logger) PreviewerOption {
	if l == nil {
		panic("pdfflatten: WithPreviewLogger requires a non-nil logger")
	}
	return func(p *Previewer) {
		p.logger = l
	}
}

// WithArtifactDir sets the directory preview artifacts are written to.
// Defaults to a fixed subdirectory of the system temp dir.
func WithArtifactDir(dir string) PreviewerOption {
	return func(p *Previewer) {
		p.dir = dir
	}
}

// WithDebounce sets the debounce quiet period for Request.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithDebounce(d time.Duration) PreviewerOption {
	if d <= 0 {
		panic("pdfflatten: WithDebounce duration must be positive")
	}
	return func(p *Previewer) {
		p.debounce = d
	}
}

// NewPreviewer creates a Previewer and starts its artifact janitor.
// Call Close to release the document handle and stop the janitor.
func NewPreviewer(opts ...PreviewerOption) *Previewer {
	p := &Previewer{
		logger:   slog.New(slog.DiscardHandler),
		dir:      filepath.Join(os.TempDir(), "pdfflatten-preview"),
		debounce: defaultDebounce,
		updates:  make(chan PreviewUpdate, updateBuffer),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.source == nil {
		p.source = NewFitzSource()
	}

	// Logical entries age out of the store on the same horizon as the
	// files the janitor reclaims.
	p.cache = gocache.New(artifactMaxAge, artifactMaxAge)
	p.sweeper = NewSweeper(p.dir, artifactMaxAge, artifactSweepInterval, p.logger)
	p.sweeper.Start()

	return p
}

// Load opens the document at path for previewing, replacing and closing any
// previously loaded document. The page index resets and the cache is
// invalidated; stale artifacts are left to the janitor.
func (p *Previewer) Load(path string) error {
	doc, err := p.source.Open(path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.cancelPendingLocked()
	if p.doc != nil {
		if cerr := p.doc.Close(); cerr != nil {
			p.logger.Debug("closing previous preview document failed", "error", cerr)
		}
	}
	p.doc = doc
	p.docPath = path
	p.pageIndex = 0
	p.mu.Unlock()

	p.cache.Flush()
	return nil
}

// Close releases the document handle and stops the debounce timer and the
// artifact janitor.
func (p *Previewer) Close() error {
	p.mu.Lock()
	p.cancelPendingLocked()
	doc := p.doc
	p.doc = nil
	p.docPath = ""
	p.mu.Unlock()

	p.sweeper.Stop()
	if doc != nil {
		return doc.Close()
	}
	return nil
}

// Updates returns the channel on which debounced recompute results arrive.
func (p *Previewer) Updates() <-chan PreviewUpdate {
	return p.updates
}

// PageIndex returns the current preview page index.
func (p *Previewer) PageIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pageIndex
}

// PageCount returns the page count of the loaded document, or 0 if none.
func (p *Previewer) PageCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc == nil {
		return 0
	}
	return p.doc.PageCount()
}

// NextPage advances the preview page, clamped at the last page.
func (p *Previewer) NextPage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc != nil && p.pageIndex < p.doc.PageCount()-1 {
		p.pageIndex++
	}
}

// PrevPage steps the preview page back, clamped at the first page.
func (p *Previewer) PrevPage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pageIndex > 0 {
		p.pageIndex--
	}
}

// Render computes (or fetches from cache) the preview artifact for the
// current page under opts and returns its path. The full parameter tuple
// forms the cache key; a hit returns the stored path without rendering.
func (p *Previewer) Render(opts FlattenOptions) (string, error) {
	p.mu.Lock()

	if p.doc == nil {
		p.mu.Unlock()
		return "", ErrNoDocument
	}

	// Navigation past either end clamps rather than erroring.
	if last := p.doc.PageCount() - 1; p.pageIndex > last {
		p.pageIndex = last
	}
	if p.pageIndex < 0 {
		p.pageIndex = 0
	}
	pageIndex := p.pageIndex

	key := previewKey(pageIndex, opts)
	if cached, ok := p.cache.Get(key); ok {
		path := cached.(string)
		if fileutil.FileExists(path) {
			p.mu.Unlock()
			return path, nil
		}
		// Janitor got there first; fall through to a fresh render.
		p.cache.Delete(key)
	}

	// Rasterize and composite under the lock: the handle must not see
	// concurrent render calls.
	raster, err := renderPage(p.doc, pageIndex, opts.DPI)
	if err != nil {
		p.mu.Unlock()
		return "", err
	}
	raster = safeWatermark(p.logger, raster, opts.Watermark, opts.Tiled, opts.Rotate45)
	p.mu.Unlock()

	var display image.Image = raster
	if raster.Bounds().Dx() > previewMaxWidth {
		display = resize.Resize(previewMaxWidth, 0, raster, resize.Lanczos3)
	}

	data, err := encodeImage(display, FormatJPEG, previewJPEGQuality)
	if err != nil {
		return "", err
	}

	path, err := p.writeArtifact(data)
	if err != nil {
		return "", err
	}

	p.cache.SetDefault(key, path)
	return path, nil
}

// Request schedules a debounced recompute with opts. Scheduling replaces
// and cancels any pending request (last write wins); only a countdown that
// elapses uninterrupted triggers a render. The result arrives on Updates.
// An in-flight render is never cancelled; it runs to completion.
func (p *Previewer) Request(opts FlattenOptions) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancelPendingLocked()
	p.pending = time.AfterFunc(p.debounce, func() {
		path, err := p.Render(opts)
		p.deliver(PreviewUpdate{Path: path, Err: err})
	})
}

// Invalidate clears the key-to-path mapping immediately. Artifact files are
// left on disk for the janitor to reclaim.
func (p *Previewer) Invalidate() {
	p.cache.Flush()
}

// cancelPendingLocked stops any pending debounce timer. Callers hold mu.
func (p *Previewer) cancelPendingLocked() {
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}
}

// deliver hands an update to the consumer without ever blocking the render
// goroutine.
func (p *Previewer) deliver(u PreviewUpdate) {
	select {
	case p.updates <- u:
	default:
		p.logger.Debug("preview update dropped, consumer not keeping up")
	}
}

// writeArtifact persists an encoded preview into the artifact directory.
func (p *Previewer) writeArtifact(data []byte) (string, error) {
	if err := os.MkdirAll(p.dir, outputDirPerm); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	f, err := os.CreateTemp(p.dir, artifactPrefix+"*.jpg")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return path, nil
}

// previewKey builds the cache key from the full parameter tuple. Float
// parameters are rounded to 3 decimals so jittery slider values coalesce.
func previewKey(pageIndex int, opts FlattenOptions) string {
	w := opts.Watermark
	return fmt.Sprintf("%d|%s|%.3f|%d|%.3f|%t|%t|%d",
		pageIndex, w.Text, w.SizePct, w.Opacity, w.TilePaddingPct,
		opts.Tiled, opts.Rotate45, opts.DPI)
}
