package runner

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestOptionsNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    Options
		validate func(*testing.T, Options)
	}{
		{
			name:  "defaults",
			input: Options{},
			validate: func(t *testing.T, o Options) {
				if o.Method != "GET" {
					t.Errorf("Method = %q, want GET", o.Method)
				}
				if o.Concurrency != 1 {
					t.Errorf("Concurrency = %d, want 1", o.Concurrency)
				}
				if o.Timeout != DefaultTimeout {
					t.Errorf("Timeout = %s, want %s", o.Timeout, DefaultTimeout)
				}
				if o.Client == nil {
					t.Error("Client should not be nil")
				} else if o.Client.Timeout != DefaultTimeout {
					t.Errorf("Client.Timeout = %s, want %s", o.Client.Timeout, DefaultTimeout)
				}
				if o.Tracer == nil {
					t.Error("Tracer should not be nil")
				}
				if o.LimiterFactory == nil {
					t.Error("LimiterFactory should not be nil")
				}
			},
		},
		{
			name: "negative values corrected",
			input: Options{
				Concurrency: -5,
				Total:       -10,
				Duration:    -time.Second,
				Rate:        -1,
			},
			validate: func(t *testing.T, o Options) {
				if o.Concurrency != 1 {
					t.Errorf("Concurrency = %d, want 1", o.Concurrency)
				}
				if o.Total != 0 {
					t.Errorf("Total = %d, want 0", o.Total)
				}
				if o.Duration != 0 {
					t.Errorf("Duration = %s, want 0", o.Duration)
				}
				if o.Rate != 0 {
					t.Errorf("Rate = %d, want 0", o.Rate)
				}
			},
		},
		{
			name:  "blank method defaults to GET",
			input: Options{Method: "  "},
			validate: func(t *testing.T, o Options) {
				if o.Method != "GET" {
					t.Errorf("Method = %q, want GET", o.Method)
				}
			},
		},
		{
			name: "preserve valid values",
			input: Options{
				Method:      "delete",
				Concurrency: 10,
				Total:       100,
				Rate:        50,
				Timeout:     2 * time.Second,
			},
			validate: func(t *testing.T, o Options) {
				if o.Method != "delete" {
					t.Errorf("Method = %q, want delete", o.Method)
				}
				if o.Concurrency != 10 || o.Total != 100 || o.Rate != 50 {
					t.Errorf("values changed: %+v", o)
				}
				if o.Client.Timeout != 2*time.Second {
					t.Errorf("Client.Timeout = %s, want 2s", o.Client.Timeout)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := tt.input
			opt.normalize()
			tt.validate(t, opt)
		})
	}
}

func TestDefaultLimiterFactory(t *testing.T) {
	opt := Options{}
	opt.normalize()

	limiter := opt.LimiterFactory(100)
	if limiter.Limit() != rate.Limit(100) {
		t.Errorf("Limit() = %v, want 100", limiter.Limit())
	}
	if limiter.Burst() != 100 {
		t.Errorf("Burst() = %d, want 100", limiter.Burst())
	}
}

type countingLogger struct{ n int }

func (c *countingLogger) LogFailure(error) { c.n++ }

func TestMultiFailureLogger(t *testing.T) {
	if MultiFailureLogger() != nil {
		t.Error("MultiFailureLogger() with no loggers should be nil")
	}
	single := &countingLogger{}
	if MultiFailureLogger(nil, single) != FailureLogger(single) {
		t.Error("a single logger should be returned unwrapped")
	}

	a, b := &countingLogger{}, &countingLogger{}
	MultiFailureLogger(a, nil, b).LogFailure(errors.New("boom"))
	if a.n != 1 || b.n != 1 {
		t.Errorf("counts = %d, %d; want 1, 1", a.n, b.n)
	}
}
