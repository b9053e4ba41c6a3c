package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/torosent/jolt/internal/config"
	"github.com/torosent/jolt/internal/httpclient"
	"github.com/torosent/jolt/internal/metrics"
	"github.com/torosent/jolt/internal/output"
	"github.com/torosent/jolt/internal/runner"
	"github.com/torosent/jolt/internal/threshold"
	"github.com/torosent/jolt/internal/tracing"
)

const tracingShutdownTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := config.NewLoader().Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := output.NewLogger(stderr, cfg.NoColor)
	for _, warning := range cfg.Warnings() {
		logger.Warnf("%s", warning)
	}

	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	body, err := httpclient.NewBodySource(cfg.Body, cfg.BodyFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("tracing shutdown: %v", err)
		}
	}()

	failures := metrics.NewFailureTracker()
	var failureLogger runner.FailureLogger = failures
	if cfg.LogErrors {
		failureLogger = runner.MultiFailureLogger(failures, logger)
	}

	r, err := runner.New(runner.Options{
		URL:           cfg.TargetURL,
		Method:        cfg.Method,
		Headers:       cfg.Headers,
		Body:          body,
		Concurrency:   cfg.Concurrency,
		Total:         cfg.Total,
		Duration:      cfg.Duration,
		Timeout:       cfg.Timeout,
		Rate:          cfg.Rate,
		Tracer:        provider.Tracer(),
		Propagate:     provider.ShouldPropagate(),
		FailureLogger: failureLogger,
	})
	if err != nil {
		return err
	}

	// Only a duration run can be cut short; count mode always sends every request.
	runCtx := ctx
	if !cfg.CountMode() {
		var stop context.CancelFunc
		runCtx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	result, err := r.Run(runCtx)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	stats := metrics.Summarize(result, cfg.Percentile)
	stats.Failures = failures.Buckets()

	report := output.NewReport(output.RunInfo{
		RunID:          ulid.Make().String(),
		URL:            cfg.TargetURL,
		Method:         r.Template().Method(),
		Concurrency:    cfg.Concurrency,
		TargetRequests: cfg.Total,
		TargetDuration: cfg.Duration,
	}, stats)
	results := threshold.NewEvaluator(thresholds).Evaluate(stats)
	report = report.WithThresholds(results)

	if err := output.Print(stdout, cfg.Format, report, output.SchemeFor(stdout, cfg.NoColor)); err != nil {
		return err
	}

	entries := result.Histogram.Entries()
	if cfg.OutputFile != "" {
		if err := output.WriteLatencyFile(cfg.OutputFile, report, entries); err != nil {
			return err
		}
		logger.Infof("Benchmark result saved to: %s", cfg.OutputFile)
	}
	if cfg.HTMLOutput != "" {
		if err := output.WriteHTMLReport(cfg.HTMLOutput, report, entries); err != nil {
			return err
		}
		logger.Infof("HTML report saved to: %s", cfg.HTMLOutput)
	}

	if !threshold.AllPassed(results) {
		failed := 0
		for _, res := range results {
			if !res.Pass {
				failed++
			}
		}
		return fmt.Errorf("%d of %d thresholds failed", failed, len(results))
	}
	return nil
}
