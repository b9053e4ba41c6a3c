package config_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/torosent/jolt/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		TargetURL:   "http://localhost:8080/health",
		Method:      "GET",
		Concurrency: 4,
		Total:       100,
		Percentile:  99,
		Format:      config.FormatText,
		Timeout:     30 * time.Second,
		Tracing:     config.TracingConfig{SampleRate: 1},
	}
}

func TestValidateAcceptsCountMode(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateAcceptsDurationMode(t *testing.T) {
	cfg := validConfig()
	cfg.Total = 0
	cfg.Duration = 5 * time.Second
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateIssues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"missing url", func(c *config.Config) { c.TargetURL = "" }, "url is required"},
		{"relative url", func(c *config.Config) { c.TargetURL = "/relative" }, "url must be an absolute URL"},
		{"zero concurrency", func(c *config.Config) { c.Concurrency = 0 }, "concurrency must be >= 1"},
		{"no stopping condition", func(c *config.Config) { c.Total = 0 }, "one of requests (-n) or duration (-t) is required"},
		{"both stopping conditions", func(c *config.Config) { c.Duration = time.Second }, "mutually exclusive"},
		{"negative requests", func(c *config.Config) { c.Total = -1; c.Duration = time.Second }, "requests must be >= 0"},
		{"percentile above 100", func(c *config.Config) { c.Percentile = 101 }, "percentile must be <= 100"},
		{"negative percentile", func(c *config.Config) { c.Percentile = -1 }, "percentile must be >= 0"},
		{"unknown format", func(c *config.Config) { c.Format = "xml" }, "format must be one of"},
		{"zero timeout", func(c *config.Config) { c.Timeout = 0 }, "timeout must be > 0"},
		{"negative rate", func(c *config.Config) { c.Rate = -5 }, "rate must be >= 0"},
		{"body and body file", func(c *config.Config) { c.Body = "{}"; c.BodyFile = "body.json" }, "body and body-file are mutually exclusive"},
		{"same output files", func(c *config.Config) { c.OutputFile = "out"; c.HTMLOutput = "out" }, "must be different files"},
		{"sample rate", func(c *config.Config) { c.Tracing.SampleRate = 2 }, "sample rate must be between 0 and 1"},
		{"tracing protocol", func(c *config.Config) { c.Tracing.Protocol = "udp" }, "tracing protocol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.want)
			}
			var verr config.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want ValidationError", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestValidationErrorCollectsAllIssues(t *testing.T) {
	cfg := validConfig()
	cfg.TargetURL = ""
	cfg.Concurrency = 0
	cfg.Total = 0

	err := cfg.Validate()
	var verr config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want ValidationError", err)
	}
	if got := len(verr.Issues()); got != 3 {
		t.Fatalf("Issues() = %v, want 3 issues", verr.Issues())
	}
}

func TestWarnings(t *testing.T) {
	cfg := validConfig()
	if w := cfg.Warnings(); len(w) != 0 {
		t.Fatalf("Warnings() = %v, want none", w)
	}

	cfg.Concurrency = 600
	cfg.Total = 10
	cfg.Rate = 2000
	w := cfg.Warnings()
	if len(w) != 3 {
		t.Fatalf("Warnings() = %v, want 3", w)
	}
	if !strings.Contains(w[2], "590 workers will stay idle") {
		t.Errorf("idle warning = %q", w[2])
	}
}

func TestTracingConfigPropagation(t *testing.T) {
	var tc config.TracingConfig
	if tc.Enabled() || tc.ShouldPropagate() {
		t.Fatal("empty tracing config should be disabled")
	}
	tc.Endpoint = "localhost:4317"
	if !tc.Enabled() || !tc.ShouldPropagate() {
		t.Fatal("tracing with endpoint should be enabled and propagate")
	}
	off := false
	tc.Propagate = &off
	if tc.ShouldPropagate() {
		t.Fatal("explicit propagate=false should win")
	}
}
