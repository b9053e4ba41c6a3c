package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const usageLine = "jolt -u <URL> (-n <REQUESTS> | -t <DURATION>) [flags]"

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           usageLine,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Request flags
	flags.StringP("url", "u", "", "URL to test")
	flags.StringP("method", "X", "GET", "HTTP method to use")
	flags.StringP("body", "d", "", "Request body to send")
	flags.String("body-file", "", "Path to file containing the request body")
	flags.StringArrayP("header", "H", nil, "Request header in 'Name: Value' form (repeatable)")

	// Load control flags
	flags.IntP("requests", "n", 0, "Number of requests to send")
	flags.DurationP("duration", "t", 0, "Duration of the test (e.g. 30s, 1m)")
	flags.IntP("concurrency", "c", 1, "Number of concurrent workers")
	flags.Duration("timeout", 30*time.Second, "Per-request timeout")
	flags.Int("rate", 0, "Fixed requests per second cap across all workers (0 means unlimited)")

	// Output flags
	flags.IntP("percentile", "p", 99, "Percentile to report")
	flags.BoolP("json", "j", false, "Output JSON format (same as --format json)")
	flags.String("format", string(FormatText), "Report format: text, json or yaml")
	flags.StringP("output", "o", "", "Write the latency frequency table to this file")
	flags.String("html-output", "", "Write a standalone HTML report to this file")
	flags.StringArray("threshold", nil, "Pass/fail assertion (repeatable, e.g. 'latency:p95 < 500')")
	flags.Bool("log-errors", false, "Log each failed request to stderr")
	flags.Bool("no-color", false, "Disable colored output")

	// Configuration sources
	flags.String("config", "", "Path to configuration file (YAML, JSON or TOML)")
	flags.String("env-file", "", "Path to a dotenv file with JOLT_* variables")

	// Tracing flags
	flags.String("tracing-endpoint", "", "OTLP collector endpoint (enables tracing)")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Float64("tracing-sample-rate", 1.0, "Fraction of requests to trace (0.0-1.0)")
	flags.String("tracing-service-name", "", "Service name reported to the collector (default jolt)")
	flags.Bool("tracing-propagate", false, "Inject W3C trace context headers (defaults to on when tracing is enabled)")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "A simple HTTP benchmarking tool.\n\nUsage: %s\n\nFlags:\n", usageLine)
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the environment and the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	str := func(name string, dst *string) {
		if err != nil || !fs.Changed(name) {
			return
		}
		*dst, err = fs.GetString(name)
	}
	num := func(name string, dst *int) {
		if err != nil || !fs.Changed(name) {
			return
		}
		*dst, err = fs.GetInt(name)
	}
	dur := func(name string, dst *time.Duration) {
		if err != nil || !fs.Changed(name) {
			return
		}
		*dst, err = fs.GetDuration(name)
	}
	flag := func(name string, dst *bool) {
		if err != nil || !fs.Changed(name) {
			return
		}
		*dst, err = fs.GetBool(name)
	}
	list := func(name string, dst *[]string) {
		if err != nil || !fs.Changed(name) {
			return
		}
		*dst, err = fs.GetStringArray(name)
	}

	str("url", &cfg.TargetURL)
	str("method", &cfg.Method)
	if fs.Changed("body") {
		str("body", &cfg.Body)
		cfg.BodyFile = ""
	}
	if fs.Changed("body-file") {
		str("body-file", &cfg.BodyFile)
		cfg.Body = ""
	}
	list("header", &cfg.Headers)
	num("requests", &cfg.Total)
	dur("duration", &cfg.Duration)
	// A stopping condition given on the command line replaces the one from
	// the config file instead of conflicting with it.
	if fs.Changed("requests") && !fs.Changed("duration") {
		cfg.Duration = 0
	}
	if fs.Changed("duration") && !fs.Changed("requests") {
		cfg.Total = 0
	}
	num("concurrency", &cfg.Concurrency)
	dur("timeout", &cfg.Timeout)
	num("rate", &cfg.Rate)
	num("percentile", &cfg.Percentile)

	var format string
	str("format", &format)
	if format != "" {
		cfg.Format = Format(strings.ToLower(strings.TrimSpace(format)))
	}
	var asJSON bool
	flag("json", &asJSON)
	if asJSON {
		cfg.Format = FormatJSON
	}

	str("output", &cfg.OutputFile)
	str("html-output", &cfg.HTMLOutput)
	list("threshold", &cfg.Thresholds)
	flag("log-errors", &cfg.LogErrors)
	flag("no-color", &cfg.NoColor)

	str("tracing-endpoint", &cfg.Tracing.Endpoint)
	str("tracing-protocol", &cfg.Tracing.Protocol)
	flag("tracing-insecure", &cfg.Tracing.Insecure)
	if err == nil && fs.Changed("tracing-sample-rate") {
		cfg.Tracing.SampleRate, err = fs.GetFloat64("tracing-sample-rate")
	}
	str("tracing-service-name", &cfg.Tracing.ServiceName)
	if err == nil && fs.Changed("tracing-propagate") {
		var propagate bool
		propagate, err = fs.GetBool("tracing-propagate")
		cfg.Tracing.Propagate = &propagate
	}

	return err
}
