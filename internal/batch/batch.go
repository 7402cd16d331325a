// Package batch runs the processing pipeline over a set of input files
// with a bounded worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clearcast-audio/clearcast/internal/audio"
	"github.com/clearcast-audio/clearcast/internal/config"
	"github.com/clearcast-audio/clearcast/internal/dsp"
	"github.com/clearcast-audio/clearcast/internal/encode"
)

// FileResult is the outcome of one file's run.
type FileResult struct {
	Input    string
	Output   string
	Err      error
	Skipped  bool // output already existed
	Duration time.Duration
	Report   *dsp.Report
}

// Notifier receives progress callbacks during a run. Callbacks arrive from
// worker goroutines; implementations must be safe for concurrent use.
type Notifier interface {
	FileStarted(index int, path string)
	FileFinished(index int, result FileResult)
}

// nopNotifier is used when the caller wants no progress reporting.
type nopNotifier struct{}

func (nopNotifier) FileStarted(int, string)      {}
func (nopNotifier) FileFinished(int, FileResult) {}

// Runner processes batches against one configuration.
type Runner struct {
	Config  *config.Config
	Preset  string
	Jobs    int           // worker pool size, minimum 1
	Timeout time.Duration // per-file limit, 0 = none
	Force   bool          // reprocess even when the output exists
	Logger  *slog.Logger
	Notify  Notifier
}

// Run processes every file and returns per-file results in input order.
// Configuration problems are fatal and abort before any file is touched;
// after that point each file fails or succeeds on its own. Cancelling ctx
// stops new work and abandons files mid-flight without leaving partial
// outputs behind.
func (r *Runner) Run(ctx context.Context, files []string) ([]FileResult, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}
	notify := r.Notify
	if notify == nil {
		notify = nopNotifier{}
	}

	// Fail fast on anything that would fail every file identically.
	if err := config.Validate(r.Config); err != nil {
		return nil, err
	}
	if _, err := config.Resolve(r.Config, r.Preset); err != nil {
		return nil, err
	}
	encoder, err := encode.For(outputFormat(r.Config))
	if err != nil {
		return nil, err
	}
	if dir := r.Config.Output.Directory; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	jobs := r.Jobs
	if jobs < 1 {
		jobs = 1
	}

	// Keep the caller's context separate from the group's: the group
	// context is cancelled as soon as Wait returns, so its Err() says
	// nothing about whether the run itself was interrupted.
	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, input := range files {
		i, input := i, input
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{Input: input, Err: err}
				return nil
			}

			notify.FileStarted(i, input)
			start := time.Now()
			res := r.processFile(gctx, input, encoder)
			res.Duration = time.Since(start)
			results[i] = res
			notify.FileFinished(i, res)

			switch {
			case res.Skipped:
				logger.Info("skipped, output exists", "input", input, "output", res.Output)
			case res.Err != nil:
				logger.Error("file failed", "input", input, "error", res.Err)
			default:
				logger.Info("file done",
					"input", input,
					"output", res.Output,
					"duration", res.Duration.Round(time.Millisecond))
			}
			// Per-file errors stay in the result; only cancellation stops
			// the group.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// processFile runs decode, pipeline, and encode for one input.
func (r *Runner) processFile(ctx context.Context, input string, encoder encode.Encoder) FileResult {
	output := r.OutputPath(input)
	res := FileResult{Input: input, Output: output}

	if !r.Force {
		if _, err := os.Stat(output); err == nil {
			res.Skipped = true
			return res
		}
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	done := make(chan FileResult, 1)
	go func() {
		buf, err := audio.Open(input)
		if err != nil {
			done <- FileResult{Input: input, Output: output, Err: err}
			return
		}
		out, report, err := dsp.Process(buf, r.Config, r.Preset)
		if err != nil {
			done <- FileResult{Input: input, Output: output, Err: err}
			return
		}
		err = writeAtomic(ctx, output, encoder, out)
		done <- FileResult{Input: input, Output: output, Report: report, Err: err}
	}()

	select {
	case res = <-done:
		return res
	case <-ctx.Done():
		// The worker goroutine is abandoned; writeAtomic's temp-and-rename
		// ensures the final output path never holds a partial file.
		res.Err = ctx.Err()
		return res
	}
}

// writeAtomic encodes into a temp file beside the target and renames it into
// place, so readers and reruns never observe a half-written output. A worker
// abandoned by timeout or cancellation may still be encoding when its file
// has already been reported failed; the context check before the rename
// keeps that worker from publishing an output for a failed file.
func writeAtomic(ctx context.Context, path string, encoder encode.Encoder, buf *audio.Buffer) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpPath := tmp.Name()

	if err := encoder.Encode(tmp, buf); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := ctx.Err(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}

// OutputPath derives the output file path: {directory}/{basename}{suffix}.{ext},
// where the extension comes from the encoder format in use.
func (r *Runner) OutputPath(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name := base + r.Config.Output.Suffix + "." + outputFormat(r.Config)
	dir := r.Config.Output.Directory
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, name)
}

// outputFormat picks the container: the encoder block's format when output
// compression is on, the plain output format otherwise.
func outputFormat(cfg *config.Config) string {
	if cfg.Compression.Enabled {
		return cfg.Compression.Format
	}
	return cfg.Output.Format
}

// Expand resolves the CLI's file and directory arguments into a flat list
// of supported audio files. Directories are scanned one level deep.
func Expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if !audio.Supported(p) {
				return nil, fmt.Errorf("unsupported input format: %s", p)
			}
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if full := filepath.Join(p, e.Name()); audio.Supported(full) {
				files = append(files, full)
			}
		}
	}
	if len(files) == 0 {
		return nil, errors.New("no supported audio files found")
	}
	return files, nil
}
