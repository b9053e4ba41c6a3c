// Package threshold evaluates pass/fail assertions against run statistics.
package threshold

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/torosent/jolt/internal/metrics"
)

const (
	MetricLatency  = "latency"
	MetricFailures = "failures"
	MetricRequests = "requests"
)

var (
	pattern      = regexp.MustCompile(`^([a-z_]+):([a-z0-9]+)\s*([<>=!]+)\s*([0-9]*\.?[0-9]+)$`)
	knownMetrics = []string{MetricLatency, MetricFailures, MetricRequests}
	aggregates   = []string{"p50", "p90", "p95", "p99", "avg", "mean", "min", "max", "rate", "count"}
	operators    = []string{"<", "<=", ">", ">=", "=="}
)

// Threshold is a single assertion such as "latency:p95 < 500".
type Threshold struct {
	Metric    string  // latency, failures or requests
	Aggregate string  // p95, avg, max, rate, count, ...
	Operator  string  // <, <=, >, >=, ==
	Value     float64 // latency values are milliseconds
	Raw       string
}

// Result is the outcome of evaluating one threshold.
type Result struct {
	Threshold Threshold
	Actual    float64
	Pass      bool
	Message   string
}

// Evaluator checks a fixed set of thresholds.
type Evaluator struct {
	thresholds []Threshold
}

func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate checks every threshold against stats.
func (e *Evaluator) Evaluate(stats metrics.Stats) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}
	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		results = append(results, evaluateOne(t, stats))
	}
	return results
}

// AllPassed reports whether no result failed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}

func evaluateOne(t Threshold, stats metrics.Stats) Result {
	actual, err := metricValue(t, stats)
	if err != nil {
		return Result{Threshold: t, Message: fmt.Sprintf("error: %v", err)}
	}

	pass := compare(actual, t.Operator, t.Value)
	status := "✓"
	if !pass {
		status = "✗"
	}
	return Result{
		Threshold: t,
		Actual:    actual,
		Pass:      pass,
		Message:   fmt.Sprintf("%s %s: %.2f %s %.2f", status, t.Raw, actual, t.Operator, t.Value),
	}
}

// Parse parses a threshold string. Supported forms:
//
//	latency:p95 < 500      latency percentile (p50, p90, p95, p99) in ms
//	latency:avg <= 200     mean latency in ms (also min, max)
//	failures:rate < 0.01   failed fraction of all requests
//	failures:count == 0    number of failed requests
//	requests:rate > 100    requests per second
//	requests:count >= 1000 number of attempted requests
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected metric:aggregate operator value, e.g. 'latency:p95 < 500')", s)
	}
	metric, aggregate, operator, raw := m[1], m[2], m[3], m[4]

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", raw, err)
	}
	if !slices.Contains(knownMetrics, metric) {
		return Threshold{}, fmt.Errorf("unsupported metric: %q (supported: %s)", metric, strings.Join(knownMetrics, ", "))
	}
	if !slices.Contains(aggregates, aggregate) {
		return Threshold{}, fmt.Errorf("unsupported aggregate: %q (supported: %s)", aggregate, strings.Join(aggregates, ", "))
	}
	if !slices.Contains(operators, operator) {
		return Threshold{}, fmt.Errorf("unsupported operator: %q (supported: %s)", operator, strings.Join(operators, ", "))
	}

	t := Threshold{Metric: metric, Aggregate: aggregate, Operator: operator, Value: value, Raw: s}
	// Reject combinations such as latency:count at parse time.
	if _, err := metricValue(t, metrics.Stats{}); err != nil {
		return Threshold{}, err
	}
	return t, nil
}

// ParseMultiple parses every entry and reports all failures together.
func ParseMultiple(entries []string) ([]Threshold, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(entries))
	var errs []string
	for i, s := range entries {
		t, err := Parse(s)
		if err != nil {
			errs = append(errs, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(errs, "; "))
	}
	return result, nil
}

func metricValue(t Threshold, stats metrics.Stats) (float64, error) {
	switch t.Metric {
	case MetricLatency:
		switch t.Aggregate {
		case "p50":
			return float64(stats.P50Ms), nil
		case "p90":
			return float64(stats.P90Ms), nil
		case "p95":
			return float64(stats.P95Ms), nil
		case "p99":
			return float64(stats.P99Ms), nil
		case "avg", "mean":
			return stats.MeanMs, nil
		case "min":
			return float64(stats.MinMs), nil
		case "max":
			return float64(stats.MaxMs), nil
		}
	case MetricFailures:
		switch t.Aggregate {
		case "count":
			return float64(stats.Failure), nil
		case "rate":
			return stats.FailureRate(), nil
		}
	case MetricRequests:
		switch t.Aggregate {
		case "count":
			return float64(stats.Total), nil
		case "rate":
			return stats.RequestsPerSec, nil
		}
	default:
		return 0, fmt.Errorf("unknown metric: %s", t.Metric)
	}
	return 0, fmt.Errorf("unsupported aggregate %q for %s", t.Aggregate, t.Metric)
}

func compare(actual float64, operator string, expected float64) bool {
	const epsilon = 1e-9

	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected || math.Abs(actual-expected) < epsilon
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected || math.Abs(actual-expected) < epsilon
	case "==":
		return math.Abs(actual-expected) < epsilon
	default:
		return false
	}
}
