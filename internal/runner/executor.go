package runner

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/jolt/internal/histogram"
	"github.com/torosent/jolt/internal/httpclient"
	"github.com/torosent/jolt/internal/tracing"
)

// HTTPError reports a response outside the 2xx range.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("HTTP %s", e.Status)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// FailureLogger logs failed requests.
type FailureLogger interface {
	LogFailure(err error)
}

type multiFailureLogger []FailureLogger

func (m multiFailureLogger) LogFailure(err error) {
	for _, l := range m {
		l.LogFailure(err)
	}
}

// MultiFailureLogger returns a logger that forwards to every non-nil logger.
func MultiFailureLogger(loggers ...FailureLogger) FailureLogger {
	var m multiFailureLogger
	for _, l := range loggers {
		if l != nil {
			m = append(m, l)
		}
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	}
	return m
}

// Counters holds the outcome totals shared by all workers of a run.
type Counters struct {
	success atomic.Int64
	failure atomic.Int64
}

// Success returns the number of 2xx responses.
func (c *Counters) Success() int64 { return c.success.Load() }

// Failure returns the number of failed requests.
func (c *Counters) Failure() int64 { return c.failure.Load() }

// Executor issues single requests built from a template and classifies the
// outcome. It is shared by every worker.
type Executor struct {
	client    *http.Client
	template  *httpclient.RequestTemplate
	counters  *Counters
	tracer    trace.Tracer
	propagate bool
	logger    FailureLogger
}

// Execute sends one request. A 2xx response counts as a success and its
// latency, measured until the response headers arrive, goes into hist.
// Anything else counts as a failure and is returned.
func (e *Executor) Execute(ctx context.Context, hist *histogram.Histogram) error {
	ctx, span := tracing.StartRequestSpan(ctx, e.tracer, e.template.Method(), e.template.URL())

	req, err := e.template.Build(ctx)
	if err != nil {
		return e.fail(span, 0, err)
	}
	if e.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return e.fail(span, 0, err)
	}

	// Drain so the connection goes back to the pool.
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return e.fail(span, resp.StatusCode, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status})
	}

	e.counters.success.Add(1)
	tracing.EndSpan(span, resp.StatusCode, nil)
	return hist.RecordDuration(latency)
}

func (e *Executor) fail(span trace.Span, statusCode int, err error) error {
	e.counters.failure.Add(1)
	tracing.EndSpan(span, statusCode, err)
	if e.logger != nil {
		e.logger.LogFailure(err)
	}
	return err
}
