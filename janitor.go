package pdfflatten

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Artifact eviction horizon.
const (
	// artifactMaxAge is how old an artifact may grow before the janitor
	// removes it.
	artifactMaxAge = 5 * time.Minute

	// artifactSweepInterval is how often the janitor scans the artifact
	// directory.
	artifactSweepInterval = 5 * time.Minute
)

// Sweeper periodically removes aged preview artifacts from a directory.
//
// The sweeper holds no ownership of the preview cache's logical entries: it
// treats the directory as an eventually consistent garbage domain where
// files appear and vanish concurrently. A stale artifact is garbage whether
// or not a live cache entry still points at it.
type Sweeper struct {
	dir      string
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger

	stop      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
}

// NewSweeper creates a Sweeper over dir. A nil logger means silent.
func NewSweeper(dir string, maxAge, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sweeper{
		dir:      dir,
		maxAge:   maxAge,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background sweep loop. Call Stop to end it.
// Repeated calls are no-ops.
func (s *Sweeper) Start() {
	s.startOnce.Do(func() {
		s.started.Store(true)
		go s.run()
	})
}

// Stop ends the sweep loop and waits for it to exit. Safe to call
// repeatedly, and before Start: with no loop running there is nothing
// to wait for.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.started.Load() {
		<-s.done
	}
}

func (s *Sweeper) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep(time.Now())
		}
	}
}

// sweep removes artifacts older than maxAge and reports how many went.
// Files deleted concurrently by others are not errors.
func (s *Sweeper) sweep(now time.Time) int {
	matches, err := filepath.Glob(filepath.Join(s.dir, artifactPrefix+"*.jpg"))
	if err != nil {
		s.logger.Debug("artifact scan failed", "dir", s.dir, "error", err)
		return 0
	}

	removed := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue // already gone
		}
		if now.Sub(info.ModTime()) <= s.maxAge {
			continue
		}
		if err := os.Remove(path); err != nil {
			if !os.IsNotExist(err) {
				s.logger.Debug("artifact removal failed", "path", path, "error", err)
			}
			continue
		}
		removed++
	}
	return removed
}
