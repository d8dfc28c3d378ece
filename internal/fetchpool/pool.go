// Package fetchpool runs the bounded concurrent segment fetch described in
// spec.md §4.6/§5: a worker pool sized min(maxThreads, len(segments)),
// retrying transient failures with full-jitter exponential backoff, and
// cancelling cleanly on the first fatal failure.
package fetchpool

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tunein/hls-downloader/hlserr"
	"github.com/tunein/hls-downloader/internal/fetcher"
	"github.com/tunein/hls-downloader/internal/logging"
	"github.com/tunein/hls-downloader/internal/m3u8"
	"github.com/tunein/hls-downloader/internal/progress"
)

// State is a FetchJob's lifecycle stage.
type State int

const (
	Pending State = iota
	Running
	Done
	Failed
)

// Job tracks one segment's fetch.
type Job struct {
	Index    int
	URI      string
	TempPath string
	State    State
	Bytes    int64
	Err      error
}

const (
	maxRetries   = 3
	backoffBase  = 200 * time.Millisecond
	backoffRatio = 2
)

// Plan builds the per-index temp-file jobs for a segment plan.
func Plan(outputDir, base string, plan *m3u8.Plan) []*Job {
	jobs := make([]*Job, len(plan.Segments))
	for i, seg := range plan.Segments {
		jobs[i] = &Job{
			Index:    seg.Index,
			URI:      seg.URI,
			TempPath: filepath.Join(outputDir, fmt.Sprintf("%s.%d.part", base, seg.Index)),
		}
	}
	return jobs
}

// Run executes all jobs with at most maxThreads in flight. On the first
// fatal failure, remaining work is cancelled and every temp file — the
// failed job's and any in-flight ones aborted mid-transfer — is removed
// before the error is returned.
func Run(ctx context.Context, jobs []*Job, f fetcher.Fetcher, maxThreads int, reporter *progress.Reporter, log *logging.Logger) error {
	if len(jobs) == 0 {
		return nil
	}

	limit := maxThreads
	if limit > len(jobs) {
		limit = len(jobs)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var completed int64
	total := int64(len(jobs))

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			job.State = Running
			err := fetchOneWithRetry(gctx, job, f, log)
			if err != nil {
				job.State = Failed
				job.Err = err
				os.Remove(job.TempPath)
				return err
			}
			job.State = Done
			done := atomic.AddInt64(&completed, 1)
			if reporter != nil {
				reporter.Report(progress.Download, int(done*100/total))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		cleanup(jobs)
		return err
	}
	return nil
}

func cleanup(jobs []*Job) {
	for _, job := range jobs {
		os.Remove(job.TempPath)
	}
}

func fetchOneWithRetry(ctx context.Context, job *Job, f fetcher.Fetcher, log *logging.Logger) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return hlserr.New(hlserr.Cancelled, "fetch cancelled", ctx.Err())
		}

		if attempt > 0 {
			wait := fullJitterBackoff(attempt)
			log.Debug("retrying segment", logging.Fields{"index": job.Index, "uri": job.URI, "attempt": attempt, "wait_ms": wait.Milliseconds()})
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return hlserr.New(hlserr.Cancelled, "fetch cancelled during backoff", ctx.Err())
			}
		}

		n, err := fetchOnce(ctx, job, f)
		if err == nil {
			job.Bytes = n
			return nil
		}
		lastErr = err
		log.Warn("segment fetch attempt failed", logging.Fields{"index": job.Index, "uri": job.URI, "attempt": attempt, "error": err.Error()})
	}

	return hlserr.WithFields(hlserr.SegmentFetchFailed,
		fmt.Sprintf("segment %d exhausted retries", job.Index), lastErr,
		map[string]any{"index": job.Index, "uri": job.URI})
}

func fetchOnce(ctx context.Context, job *Job, f fetcher.Fetcher) (int64, error) {
	resp, err := f.Get(ctx, job.URI, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(job.TempPath)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	n, err := io.Copy(out, &ctxReader{ctx: ctx, r: resp.Body})
	if err != nil {
		os.Remove(job.TempPath)
		return 0, err
	}
	return n, nil
}

// fullJitterBackoff computes a delay in [0, base*ratio^(attempt-1)],
// spec.md §4.6's "base 200ms, factor 2, full jitter".
func fullJitterBackoff(attempt int) time.Duration {
	max := backoffBase
	for i := 1; i < attempt; i++ {
		max *= backoffRatio
	}
	return time.Duration(rand.Int64N(int64(max) + 1))
}

// ctxReader aborts at the next I/O suspension point once ctx is done,
// satisfying the prompt-cancellation requirement in spec.md §5.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
