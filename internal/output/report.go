package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/torosent/jolt/internal/config"
	"github.com/torosent/jolt/internal/metrics"
	"github.com/torosent/jolt/internal/threshold"
)

const (
	reportTitle  = "================ Jolt Benchmark Result ================"
	reportFooter = "======================================================="
)

// RunInfo describes the run a report belongs to.
type RunInfo struct {
	RunID          string
	URL            string
	Method         string
	Concurrency    int
	TargetRequests int
	TargetDuration time.Duration
}

// Report is the final summary of a run as written to stdout.
type Report struct {
	RunID            string                  `json:"run_id" yaml:"run_id"`
	URL              string                  `json:"url" yaml:"url"`
	Method           string                  `json:"method" yaml:"method"`
	Requests         int64                   `json:"requests" yaml:"requests"`
	Concurrency      int                     `json:"concurrency" yaml:"concurrency"`
	DurationSec      float64                 `json:"duration_sec" yaml:"duration_sec"`
	Success          int64                   `json:"success" yaml:"success"`
	Failures         int64                   `json:"failures" yaml:"failures"`
	RPS              float64                 `json:"rps" yaml:"rps"`
	Latency          Latency                 `json:"latency_ms" yaml:"latency_ms"`
	FailureBreakdown []metrics.FailureBucket `json:"failure_breakdown,omitempty" yaml:"failure_breakdown,omitempty"`
	Thresholds       []ThresholdResult       `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`

	Info  RunInfo       `json:"-" yaml:"-"`
	Stats metrics.Stats `json:"-" yaml:"-"`
}

// Latency holds the latency summary in milliseconds. The configured
// percentile is encoded under the key "latency_p<N>".
type Latency struct {
	Min        int64
	Max        int64
	Mean       float64
	Percentile int
	Value      int64
}

func (l Latency) percentileKey() string {
	return "latency_p" + strconv.Itoa(l.Percentile)
}

func (l Latency) MarshalJSON() ([]byte, error) {
	mean, err := json.Marshal(l.Mean)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, `{"min":%d,"max":%d,"mean":%s,%q:%d}`,
		l.Min, l.Max, mean, l.percentileKey(), l.Value), nil
}

func (l Latency) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key, value string) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value},
		)
	}
	add("min", strconv.FormatInt(l.Min, 10))
	add("max", strconv.FormatInt(l.Max, 10))
	add("mean", strconv.FormatFloat(l.Mean, 'f', -1, 64))
	add(l.percentileKey(), strconv.FormatInt(l.Value, 10))
	return node, nil
}

// ThresholdResult is the serialized outcome of one threshold.
type ThresholdResult struct {
	Threshold string  `json:"threshold" yaml:"threshold"`
	Actual    float64 `json:"actual" yaml:"actual"`
	Pass      bool    `json:"pass" yaml:"pass"`

	message string
}

// NewReport builds a report from the run summary.
func NewReport(info RunInfo, stats metrics.Stats) Report {
	return Report{
		RunID:       info.RunID,
		URL:         info.URL,
		Method:      info.Method,
		Requests:    stats.Total,
		Concurrency: info.Concurrency,
		DurationSec: round3(stats.Elapsed.Seconds()),
		Success:     stats.Success,
		Failures:    stats.Failure,
		RPS:         round3(stats.RequestsPerSec),
		Latency: Latency{
			Min:        stats.MinMs,
			Max:        stats.MaxMs,
			Mean:       round3(stats.MeanMs),
			Percentile: stats.Percentile,
			Value:      stats.PercentileMs,
		},
		FailureBreakdown: stats.Failures,
		Info:             info,
		Stats:            stats,
	}
}

// WithThresholds attaches threshold results to the report.
func (r Report) WithThresholds(results []threshold.Result) Report {
	if len(results) == 0 {
		return r
	}
	r.Thresholds = make([]ThresholdResult, len(results))
	for i, res := range results {
		r.Thresholds[i] = ThresholdResult{
			Threshold: res.Threshold.Raw,
			Actual:    round3(res.Actual),
			Pass:      res.Pass,
			message:   res.Message,
		}
	}
	return r
}

// Print writes the report in the requested format.
func Print(w io.Writer, format config.Format, r Report, colors *ColorScheme) error {
	switch format {
	case config.FormatJSON:
		return PrintJSONReport(w, r)
	case config.FormatYAML:
		return PrintYAMLReport(w, r)
	case config.FormatText, "":
		return PrintReport(w, r, colors)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// PrintReport writes the human-readable report.
func PrintReport(w io.Writer, r Report, colors *ColorScheme) error {
	if colors == nil {
		colors = NoColorScheme()
	}
	line := func(label string, value any) {
		fmt.Fprintf(w, "%s %v\n", colors.Label.Sprintf("%-19s", label+":"), value)
	}
	failed := fmt.Sprint(r.Failures)
	if r.Failures > 0 {
		failed = colors.Error.Sprint(failed)
	}

	fmt.Fprintln(w, colors.Title.Sprint(reportTitle))
	line("Target URL", r.URL)
	line("Method", r.Method)
	line("Total Requests", r.Requests)
	line("Concurrency", r.Concurrency)
	line("Success", colors.Success.Sprint(r.Success))
	line("Failed", failed)
	line("Total Time", r.Stats.Elapsed.Round(time.Millisecond))
	line("Requests/sec", colors.Value.Sprintf("%.3f", r.Stats.RequestsPerSec))
	line("Fastest", fmt.Sprintf("%d ms", r.Latency.Min))
	line("Slowest", fmt.Sprintf("%d ms", r.Latency.Max))
	line("Average", fmt.Sprintf("%.0f ms", r.Stats.MeanMs))
	line(fmt.Sprintf("Latency_p%d", r.Latency.Percentile), colors.Value.Sprintf("%d ms", r.Latency.Value))

	if len(r.FailureBreakdown) > 0 {
		fmt.Fprintln(w, "\nFailures:")
		for _, b := range r.FailureBreakdown {
			fmt.Fprintf(w, "  %-24s %d\n", b.Cause, b.Count)
		}
	}

	if len(r.Thresholds) > 0 {
		passed := 0
		for _, t := range r.Thresholds {
			if t.Pass {
				passed++
			}
		}
		fmt.Fprintf(w, "\nThresholds: %d/%d passed\n", passed, len(r.Thresholds))
		for _, t := range r.Thresholds {
			c := colors.Success
			if !t.Pass {
				c = colors.Error
			}
			fmt.Fprintf(w, "  %s\n", c.Sprint(t.message))
		}
	}

	_, err := fmt.Fprintf(w, "%s\n\n", colors.Title.Sprint(reportFooter))
	return err
}

// PrintJSONReport writes the report as indented JSON.
func PrintJSONReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// PrintYAMLReport writes the report as YAML.
func PrintYAMLReport(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
