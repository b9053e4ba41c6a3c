package runner

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/torosent/jolt/internal/histogram"
)

// WorkerError reports a worker that could not finish its share of the run.
type WorkerError struct {
	Worker int
	Err    error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d: %v", e.Worker, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }

type worker struct {
	id      int
	count   int          // requests to send in count mode
	stop    *atomic.Bool // set when a duration-mode run ends, nil in count mode
	exec    *Executor
	limiter *rate.Limiter
	merge   func(*histogram.Histogram) error
}

// run executes the worker loop. Requests use reqCtx, which is never
// cancelled, so an in-flight request is bounded only by the client timeout.
// done ends the loop between requests.
func (w *worker) run(reqCtx, done context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &WorkerError{Worker: w.id, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	hist, err := histogram.New()
	if err != nil {
		return &WorkerError{Worker: w.id, Err: fmt.Errorf("allocate histogram: %w", err)}
	}
	if w.stop != nil {
		for !w.stop.Load() && done.Err() == nil {
			if !w.wait(done) {
				break
			}
			_ = w.exec.Execute(reqCtx, hist)
		}
	} else {
		for i := 0; i < w.count && done.Err() == nil; i++ {
			if !w.wait(done) {
				break
			}
			_ = w.exec.Execute(reqCtx, hist)
		}
	}

	if err := w.merge(hist); err != nil {
		return &WorkerError{Worker: w.id, Err: fmt.Errorf("merge histogram: %w", err)}
	}
	return nil
}

func (w *worker) wait(done context.Context) bool {
	if w.limiter == nil {
		return true
	}
	return w.limiter.Wait(done) == nil
}
