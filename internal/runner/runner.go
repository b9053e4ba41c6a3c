package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/torosent/jolt/internal/histogram"
	"github.com/torosent/jolt/internal/httpclient"
)

// Result captures the outcome of a completed run.
type Result struct {
	Success   int64
	Failure   int64
	Elapsed   time.Duration
	Histogram *histogram.Histogram // latencies of successful requests
}

// Total returns the number of attempted requests.
func (r Result) Total() int64 {
	return r.Success + r.Failure
}

// Runner drives a fixed pool of workers against a single target.
type Runner struct {
	opt      Options
	template *httpclient.RequestTemplate
}

// New validates the options and prepares the request template. Method and
// header errors are reported here, before any request is sent.
func New(opt Options) (*Runner, error) {
	opt.normalize()

	switch {
	case opt.Total > 0 && opt.Duration > 0:
		return nil, errors.New("total requests and duration are mutually exclusive")
	case opt.Total == 0 && opt.Duration == 0:
		return nil, errors.New("either total requests or duration is required")
	}

	template, err := httpclient.NewRequestTemplate(opt.URL, opt.Method, opt.Headers, opt.Body)
	if err != nil {
		return nil, fmt.Errorf("prepare request: %w", err)
	}

	return &Runner{opt: opt, template: template}, nil
}

// Template returns the prepared request template.
func (r *Runner) Template() *httpclient.RequestTemplate {
	return r.template
}

// Run executes the benchmark and blocks until every worker has returned.
// Cancelling ctx ends the run early and the partial result is returned. A
// worker failure aborts the run and no result is produced.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	counters := &Counters{}
	exec := &Executor{
		client:    r.opt.Client,
		template:  r.template,
		counters:  counters,
		tracer:    r.opt.Tracer,
		propagate: r.opt.Propagate,
		logger:    r.opt.FailureLogger,
	}

	merged, err := histogram.New()
	if err != nil {
		return Result{}, fmt.Errorf("allocate histogram: %w", err)
	}
	var mu sync.Mutex
	merge := func(h *histogram.Histogram) error {
		mu.Lock()
		defer mu.Unlock()
		return merged.Merge(h)
	}

	var limiter *rate.Limiter
	if r.opt.Rate > 0 {
		limiter = r.opt.LimiterFactory(r.opt.Rate)
	}

	durationMode := r.opt.Duration > 0
	var stop atomic.Bool
	var counts []int
	if !durationMode {
		counts = Partition(r.opt.Total, r.opt.Concurrency)
	}

	g, gctx := errgroup.WithContext(ctx)
	done, finish := context.WithCancel(gctx)
	defer finish()
	reqCtx := context.WithoutCancel(ctx)

	start := time.Now()
	for i := 0; i < r.opt.Concurrency; i++ {
		w := &worker{id: i, exec: exec, limiter: limiter, merge: merge}
		if durationMode {
			w.stop = &stop
		} else {
			w.count = counts[i]
		}
		g.Go(func() error {
			return w.run(reqCtx, done)
		})
	}

	if durationMode {
		timer := time.NewTimer(r.opt.Duration)
		select {
		case <-timer.C:
		case <-gctx.Done():
			timer.Stop()
		}
		stop.Store(true)
		finish()
	}

	err = g.Wait()
	elapsed := time.Since(start)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Success:   counters.Success(),
		Failure:   counters.Failure(),
		Elapsed:   elapsed,
		Histogram: merged,
	}, nil
}
