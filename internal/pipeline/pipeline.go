// Package pipeline runs resample → indicators → save for every instrument of a
// source with a pool of workers, then writes the run report, manifest and metrics.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"monthly-ohlcv/internal/indicator"
	"monthly-ohlcv/internal/model"
	"monthly-ohlcv/internal/resample"
	"monthly-ohlcv/internal/saver"
	"monthly-ohlcv/internal/slogx"
	"monthly-ohlcv/internal/source"
)

// ErrRowCountMismatch aborts a run whose instrument does not have the expected number of months.
var ErrRowCountMismatch = errors.New("row count mismatch")

const defaultHeartbeat = 30 * time.Second

// Options controls one pipeline run.
type Options struct {
	OutputDir string
	Workers   int
	// ExpectMonths > 0 asserts every instrument yields exactly that many
	// monthly rows; a violation cancels the whole run.
	ExpectMonths int
	// Instruments restricts the run to these ids when non-empty.
	Instruments []string
	// MetricsPath, when set, receives a Prometheus text-format snapshot.
	MetricsPath       string
	HeartbeatInterval time.Duration
	// LogOutput receives the workers' fan-in log lines (default stderr).
	LogOutput io.Writer
}

// Job is one instrument to process.
type Job struct {
	Ticker string
}

// JobResult is sent by workers for fan-in
type JobResult struct {
	Ok        bool
	Ticker    string
	Reason    string
	Malformed bool
	Abort     bool
	// Skipped marks an instrument not processed because the run was cancelled.
	Skipped   bool
	DailyRows int
	Months    int
	LastMonth time.Time
	Path      string
	Duration  time.Duration
}

// Failure names one failed instrument.
type Failure struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// Summary describes a finished run. Every listed instrument ends up in
// exactly one of Succeeded or Failures; instruments left unprocessed by a
// cancel or abort are failures with a "skipped: ..." reason.
type Summary struct {
	RunID     string
	Total     int
	Succeeded []string
	Failures  []Failure
	Rows      int
}

// Run processes every instrument of src and writes one file per instrument
// with s into opts.OutputDir. Per-instrument failures (including malformed
// input) are recorded in the summary and do not stop the run. A row-count
// violation or a cancelled ctx stops it and is returned as the error.
func Run(ctx context.Context, opts Options, src source.DataSource, s saver.RowSaver) (Summary, error) {
	sum := Summary{RunID: uuid.NewString()}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = defaultHeartbeat
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	ids, err := src.Instruments(ctx)
	if err != nil {
		return sum, fmt.Errorf("list instruments from %s: %w", src.GetName(), err)
	}
	ids = source.FilterInstruments(ids, opts.Instruments)
	sum.Total = len(ids)
	if len(ids) == 0 {
		slog.Info("no instruments to process, skip", "source", src.GetName())
		return sum, nil
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return sum, fmt.Errorf("create output dir: %w", err)
	}
	slog.Info("run start", "run_id", sum.RunID, "source", src.GetName(), "instruments", len(ids), "workers", opts.Workers, "format", s.Extension())

	logs := make(chan string, 2048)
	logger := slogx.NewChanLogger(logs).With("run_id", sum.RunID)
	errs := make(chan errorEntry, 64)
	var logWg, errWg sync.WaitGroup
	logWg.Add(1)
	go func() {
		defer logWg.Done()
		runLogWriter(opts.LogOutput, logs)
	}()
	errWg.Add(1)
	go func() {
		defer errWg.Done()
		runErrorHandler(errs, logger)
	}()

	manifestUpdates := make(chan ManifestUpdate, len(ids))
	var manifestWg sync.WaitGroup
	manifestWg.Add(1)
	go func() {
		defer manifestWg.Done()
		RunManifestWriter(ManifestPath(opts.OutputDir), manifestUpdates)
	}()

	m := newMetrics()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pending := make(chan Job, len(ids))
	for _, id := range ids {
		pending <- Job{Ticker: id}
	}
	close(pending)

	results := make(chan JobResult, len(ids))
	var mu sync.Mutex
	var success, failed int
	var abortReason string
	var resWg sync.WaitGroup
	resWg.Add(1)
	go func() {
		defer resWg.Done()
		for r := range results {
			m.observe(r)
			mu.Lock()
			if r.Ok {
				success++
				sum.Succeeded = append(sum.Succeeded, r.Ticker)
				sum.Rows += r.Months
			} else {
				failed++
				sum.Failures = append(sum.Failures, Failure{Ticker: r.Ticker, Reason: r.Reason})
				if r.Abort && abortReason == "" {
					abortReason = r.Reason
				}
			}
			mu.Unlock()
		}
	}()

	hbCtx, hbCancel := context.WithCancel(runCtx)
	var hbWg sync.WaitGroup
	hbWg.Add(1)
	go func() {
		defer hbWg.Done()
		runHeartbeat(hbCtx, opts.HeartbeatInterval, len(ids), &mu, &success, &failed, logger)
	}()

	var aborted atomic.Bool
	skipped := func(id string) JobResult {
		reason := "skipped: run cancelled"
		if aborted.Load() {
			reason = "skipped: run aborted"
		}
		return JobResult{Ticker: id, Reason: reason, Skipped: true}
	}

	var wg sync.WaitGroup
	wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-runCtx.Done():
					return
				case job, ok := <-pending:
					if !ok {
						return
					}
					if runCtx.Err() != nil {
						results <- skipped(job.Ticker)
						return
					}
					r := processInstrument(runCtx, job.Ticker, opts, src, s)
					switch {
					case r.Ok:
						logger.Info("instrument ok", "ticker", r.Ticker, "daily_rows", r.DailyRows, "months", r.Months, "path", r.Path)
						manifestUpdates <- ManifestUpdate{Ticker: r.Ticker, Entry: ManifestEntry{
							RunID:    sum.RunID,
							MonthEnd: r.LastMonth.Format(saver.DateLayout),
							Rows:     r.Months,
							File:     filepath.Base(r.Path),
						}}
					case r.Skipped:
						r = skipped(r.Ticker)
					default:
						select {
						case errs <- errorEntry{Ticker: r.Ticker, Reason: r.Reason, Malformed: r.Malformed}:
						default:
							logger.Error("instrument fail", "ticker", r.Ticker, "reason", r.Reason)
						}
					}
					if r.Abort {
						aborted.Store(true)
						cancel()
					}
					results <- r
				}
			}
		}()
	}
	wg.Wait()
	// jobs never picked up after a cancel or abort
	for job := range pending {
		results <- skipped(job.Ticker)
	}
	close(results)
	resWg.Wait()
	hbCancel()
	hbWg.Wait()
	close(manifestUpdates)
	manifestWg.Wait()

	sort.Strings(sum.Succeeded)
	sort.Slice(sum.Failures, func(i, j int) bool { return sum.Failures[i].Ticker < sum.Failures[j].Ticker })
	logger.Info("summary", "total", len(ids), "success", success, "failed", failed, "rows", sum.Rows)
	if len(sum.Failures) > 0 {
		logger.Info("summary failed", "count", len(sum.Failures), "reasons", joinFailedReasons(sum.Failures))
	}
	close(errs)
	errWg.Wait()
	close(logs)
	logWg.Wait()

	if err := writeRunReport(opts.OutputDir, sum); err != nil {
		slog.Warn("could not write run report", "error", err)
	}
	if opts.MetricsPath != "" {
		if err := m.writeTextfile(opts.MetricsPath); err != nil {
			slog.Warn("could not write metrics", "path", opts.MetricsPath, "error", err)
		}
	}

	switch {
	case abortReason != "":
		return sum, fmt.Errorf("%w: %s", ErrRowCountMismatch, abortReason)
	case ctx.Err() != nil:
		return sum, ctx.Err()
	}
	slog.Info("run done", "run_id", sum.RunID, "success", len(sum.Succeeded), "failed", len(sum.Failures))
	return sum, nil
}

// processInstrument loads, resamples, annotates and saves one instrument.
func processInstrument(ctx context.Context, id string, opts Options, src source.DataSource, s saver.RowSaver) JobResult {
	start := time.Now()
	res := JobResult{Ticker: id}
	fail := func(err error) JobResult {
		res.Reason = err.Error()
		res.Malformed = errors.Is(err, model.ErrMalformedInput)
		res.Skipped = ctx.Err() != nil && errors.Is(err, ctx.Err())
		res.Duration = time.Since(start)
		return res
	}

	daily, err := src.DailyBars(ctx, id)
	if err != nil {
		return fail(err)
	}
	res.DailyRows = len(daily)
	if len(daily) == 0 {
		return fail(errors.New("no data"))
	}

	monthly, err := resample.Monthly(daily)
	if err != nil {
		return fail(err)
	}
	rows := indicator.AddIndicators(id, monthly)
	res.Months = len(rows)

	if opts.ExpectMonths > 0 && len(rows) != opts.ExpectMonths {
		res.Abort = true
		return fail(fmt.Errorf("%s has %d months, want %d", id, len(rows), opts.ExpectMonths))
	}

	path := saver.ResultPath(opts.OutputDir, id, s)
	if err := s.Save(rows, path); err != nil {
		return fail(fmt.Errorf("save %s: %w", path, err))
	}
	res.Ok = true
	res.Path = path
	res.LastMonth = rows[len(rows)-1].MonthEnd
	res.Duration = time.Since(start)
	return res
}
