package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	pdfflatten "github.com/alnah/go-pdfflatten"
	"github.com/alnah/go-pdfflatten/internal/config"
)

// Worker sizing constants.
const (
	// minWorkers ensures at least one worker is available.
	minWorkers = 1

	// maxWorkers caps parallel files; each worker holds a full page set of
	// rasters in memory.
	maxWorkers = 8

	// cpuDivisor leaves headroom for MuPDF's internal work.
	cpuDivisor = 2
)

// resolveWorkerCount returns the number of parallel file workers.
// Explicit > 0 wins; otherwise half the CPUs, clamped to [min, max].
func resolveWorkerCount(workers int) int {
	if workers > 0 {
		return workers
	}
	return min(max(runtime.GOMAXPROCS(0)/cpuDivisor, minWorkers), maxWorkers)
}

// fileResult holds the outcome of a single file conversion.
type fileResult struct {
	inputPath string
	outputs   []string
	err       error
	duration  time.Duration
}

// progressMsg reports one finished file from a worker to the printer.
type progressMsg struct {
	done  int
	total int
	path  string
	err   error
}

// run executes a full batch over the discovered inputs.
func run(flags *cliFlags, stderr io.Writer) error {
	var cfg *config.Config
	if flags.config != "" {
		loaded, err := config.Load(flags.config)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	params := resolveParams(flags, cfg)
	if err := params.options.Validate(); err != nil {
		return err
	}

	inputs, err := discoverInputs(flags.inputs)
	if err != nil {
		return err
	}

	conv := pdfflatten.New()
	results := convertBatch(context.Background(), conv, inputs, params, resolveWorkerCount(flags.workers), stderr, flags.verbose)

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(stderr, "error: %s: %v\n", r.inputPath, r.err)
			continue
		}
		if flags.verbose {
			fmt.Fprintf(stderr, "%s -> %d output(s) in %s\n", r.inputPath, len(r.outputs), r.duration.Round(time.Millisecond))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(results))
	}
	fmt.Fprintf(stderr, "Processed %d file(s) into %s\n", len(results), params.outDir)
	return nil
}

// convertBatch processes files concurrently with a bounded worker pool.
// Files are independent document handles, so parallel processing is safe;
// progress flows back through a channel, never by shared mutation.
func convertBatch(ctx context.Context, conv *pdfflatten.Converter, inputs []string, params runParams, workers int, stderr io.Writer, verbose bool) []fileResult {
	if workers > len(inputs) {
		workers = len(inputs)
	}

	results := make([]fileResult, len(inputs))
	jobs := make(chan int, len(inputs))
	progress := make(chan progressMsg, len(inputs))

	var wg sync.WaitGroup
	var done int
	var doneMu sync.Mutex

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				start := time.Now()
				outputs, err := conv.Flatten(ctx, inputs[idx], params.outDir, params.options, nil)
				results[idx] = fileResult{
					inputPath: inputs[idx],
					outputs:   outputs,
					err:       err,
					duration:  time.Since(start),
				}

				doneMu.Lock()
				done++
				n := done
				doneMu.Unlock()
				progress <- progressMsg{done: n, total: len(inputs), path: inputs[idx], err: err}
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	// Print progress from a single goroutine while workers run.
	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		for msg := range progress {
			if verbose || msg.err != nil {
				status := "ok"
				if msg.err != nil {
					status = "failed"
				}
				fmt.Fprintf(stderr, "[%d/%d] %s: %s\n", msg.done, msg.total, msg.path, status)
			}
		}
	}()

	wg.Wait()
	close(progress)
	<-printerDone

	return results
}
