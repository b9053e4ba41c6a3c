package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Format selects how the final report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Config holds the parameters of a single benchmark run. It is built once
// before the run and treated as read-only afterwards.
type Config struct {
	TargetURL   string        `mapstructure:"url" validate:"required,url"`
	Method      string        `mapstructure:"method" validate:"required"`
	Body        string        `mapstructure:"body"`
	BodyFile    string        `mapstructure:"body_file"`
	Headers     []string      `mapstructure:"-"` // "Name: Value" entries, parsed by the runner
	Concurrency int           `mapstructure:"concurrency" validate:"min=1"`
	Total       int           `mapstructure:"requests" validate:"min=0"`
	Duration    time.Duration `mapstructure:"duration"`
	Percentile  int           `mapstructure:"percentile" validate:"min=0,max=100"`
	Format      Format        `mapstructure:"format" validate:"oneof=text json yaml"`
	OutputFile  string        `mapstructure:"output"`
	HTMLOutput  string        `mapstructure:"html_output"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Rate        int           `mapstructure:"rate" validate:"min=0"`
	Thresholds  []string      `mapstructure:"thresholds"`
	LogErrors   bool          `mapstructure:"log_errors"`
	NoColor     bool          `mapstructure:"no_color"`
	ConfigFile  string        `mapstructure:"-"`
	EnvFile     string        `mapstructure:"-"`
	Tracing     TracingConfig `mapstructure:"tracing"`
}

// TracingConfig configures OpenTelemetry export of per-request spans.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" (default) or "http"
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	ServiceName string  `mapstructure:"service_name"`
	Propagate   *bool   `mapstructure:"propagate"`
}

// Enabled reports whether spans should be exported.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate reports whether W3C trace headers are injected into
// outgoing requests. Propagation follows Enabled unless set explicitly.
func (t TracingConfig) ShouldPropagate() bool {
	if t.Propagate != nil {
		return *t.Propagate
	}
	return t.Enabled()
}

// CountMode reports whether the run stops after a fixed number of requests.
func (c Config) CountMode() bool {
	return c.Total > 0
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	var issues []string

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			issues = append(issues, describeFieldError(fe))
		}
	}

	switch {
	case c.Total > 0 && c.Duration > 0:
		issues = append(issues, "requests and duration are mutually exclusive")
	case c.Total <= 0 && c.Duration <= 0:
		issues = append(issues, "one of requests (-n) or duration (-t) is required")
	}
	if c.Duration < 0 {
		issues = append(issues, "duration must be > 0")
	}
	if c.Timeout <= 0 {
		issues = append(issues, "timeout must be > 0")
	}
	if c.Body != "" && strings.TrimSpace(c.BodyFile) != "" {
		issues = append(issues, "body and body-file are mutually exclusive")
	}
	if c.OutputFile != "" && c.OutputFile == c.HTMLOutput {
		issues = append(issues, "output and html-output must be different files")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing sample rate must be between 0 and 1, got %g", c.Tracing.SampleRate))
	}
	if p := strings.ToLower(c.Tracing.Protocol); p != "" && p != "grpc" && p != "http" {
		issues = append(issues, fmt.Sprintf("tracing protocol must be 'grpc' or 'http', got %q", c.Tracing.Protocol))
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// Warnings returns advisories about settings that are legal but risky.
func (c Config) Warnings() []string {
	var warnings []string
	if c.Rate > 1000 {
		warnings = append(warnings, fmt.Sprintf("High rate limit configured (%d RPS). Ensure you have authorization to test the target system.", c.Rate))
	}
	if c.Concurrency > 500 {
		warnings = append(warnings, fmt.Sprintf("High concurrency configured (%d workers). Ensure you have authorization to test the target system.", c.Concurrency))
	}
	if c.Total > 0 && c.Concurrency > c.Total {
		warnings = append(warnings, fmt.Sprintf("Concurrency (%d) exceeds requests (%d); %d workers will stay idle.", c.Concurrency, c.Total, c.Concurrency-c.Total))
	}
	return warnings
}

func describeFieldError(fe validator.FieldError) string {
	name := fieldLabels[fe.Field()]
	if name == "" {
		name = strings.ToLower(fe.Field())
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required (use --help for usage information)", name)
	case "url":
		return fmt.Sprintf("%s must be an absolute URL, got %q", name, fe.Value())
	case "min":
		return fmt.Sprintf("%s must be >= %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be <= %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", name, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %q validation", name, fe.Tag())
	}
}

var fieldLabels = map[string]string{
	"TargetURL":   "url",
	"Method":      "method",
	"Concurrency": "concurrency",
	"Total":       "requests",
	"Percentile":  "percentile",
	"Format":      "format",
	"Rate":        "rate",
}
