package runner

import (
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"

	"github.com/torosent/jolt/internal/httpclient"
)

// DefaultTimeout bounds a single request when Options.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// Options configure the Runner.
type Options struct {
	URL     string
	Method  string
	Headers []string              // "Name: Value" entries
	Body    httpclient.BodySource // optional

	Concurrency int           // number of worker goroutines
	Total       int           // requests to execute in count mode
	Duration    time.Duration // wall-clock length of a duration-mode run
	Timeout     time.Duration // per-request timeout
	Rate        int           // requests per second cap across all workers (0 means unlimited)

	Client         *http.Client                // optional, built from Concurrency and Timeout when nil
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
	Tracer         trace.Tracer                // optional, no-op when nil
	Propagate      bool                        // inject W3C trace headers
	FailureLogger  FailureLogger               // optional, called for every failed request
}

func (o *Options) normalize() {
	if strings.TrimSpace(o.Method) == "" {
		o.Method = http.MethodGet
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.Total < 0 {
		o.Total = 0
	}
	if o.Duration < 0 {
		o.Duration = 0
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Rate < 0 {
		o.Rate = 0
	}
	if o.Client == nil {
		o.Client = httpclient.NewClient(o.Concurrency, o.Timeout)
	}
	if o.Tracer == nil {
		o.Tracer = noop.NewTracerProvider().Tracer("jolt")
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}
