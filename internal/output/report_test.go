package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/torosent/jolt/internal/config"
	"github.com/torosent/jolt/internal/metrics"
	"github.com/torosent/jolt/internal/threshold"
)

func sampleReport() Report {
	info := RunInfo{
		RunID:          "01J9Z5Y8W3Q4X2V7T6S5R4P3N2",
		URL:            "http://localhost:8080/api",
		Method:         "POST",
		Concurrency:    10,
		TargetRequests: 1000,
	}
	stats := metrics.Stats{
		Total:          1000,
		Success:        990,
		Failure:        10,
		Elapsed:        2*time.Second + 345678*time.Microsecond,
		RequestsPerSec: 426.43567,
		MinMs:          3,
		MaxMs:          250,
		MeanMs:         21.23456,
		P50Ms:          18,
		P90Ms:          40,
		P95Ms:          55,
		P99Ms:          120,
		Percentile:     95,
		PercentileMs:   55,
		Failures:       []metrics.FailureBucket{{Cause: "HTTP 503", Count: 7}, {Cause: "Timeout", Count: 3}},
	}
	return NewReport(info, stats)
}

func TestNewReportRoundsValues(t *testing.T) {
	r := sampleReport()

	if r.DurationSec != 2.346 {
		t.Errorf("DurationSec = %v, want 2.346", r.DurationSec)
	}
	if r.RPS != 426.436 {
		t.Errorf("RPS = %v, want 426.436", r.RPS)
	}
	if r.Latency.Mean != 21.235 {
		t.Errorf("Latency.Mean = %v, want 21.235", r.Latency.Mean)
	}
}

func TestPrintJSONReport(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSONReport(&buf, sampleReport()); err != nil {
		t.Fatalf("PrintJSONReport() error = %v", err)
	}
	out := buf.String()
	if !gjson.Valid(out) {
		t.Fatalf("invalid JSON: %s", out)
	}

	checks := map[string]string{
		"run_id":                    "01J9Z5Y8W3Q4X2V7T6S5R4P3N2",
		"url":                       "http://localhost:8080/api",
		"method":                    "POST",
		"requests":                  "1000",
		"concurrency":               "10",
		"duration_sec":              "2.346",
		"success":                   "990",
		"failures":                  "10",
		"rps":                       "426.436",
		"latency_ms.min":            "3",
		"latency_ms.max":            "250",
		"latency_ms.mean":           "21.235",
		"latency_ms.latency_p95":    "55",
		"failure_breakdown.0.cause": "HTTP 503",
		"failure_breakdown.#":       "2",
	}
	for path, want := range checks {
		if got := gjson.Get(out, path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
	if gjson.Get(out, "thresholds").Exists() {
		t.Error("thresholds should be omitted when none are configured")
	}

	// Latency keys keep their order.
	keys := []string{}
	gjson.Get(out, "latency_ms").ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	if strings.Join(keys, ",") != "min,max,mean,latency_p95" {
		t.Errorf("latency_ms keys = %v", keys)
	}
}

func TestPrintJSONReportWithThresholds(t *testing.T) {
	th, err := threshold.Parse("latency:p99 < 100")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	r := sampleReport()
	r = r.WithThresholds(threshold.NewEvaluator([]threshold.Threshold{th}).Evaluate(r.Stats))

	var buf bytes.Buffer
	if err := PrintJSONReport(&buf, r); err != nil {
		t.Fatalf("PrintJSONReport() error = %v", err)
	}
	out := buf.String()
	if got := gjson.Get(out, "thresholds.0.threshold").String(); got != "latency:p99 < 100" {
		t.Errorf("thresholds.0.threshold = %q", got)
	}
	if gjson.Get(out, "thresholds.0.pass").Bool() {
		t.Error("thresholds.0.pass = true, want false")
	}
	if got := gjson.Get(out, "thresholds.0.actual").Float(); got != 120 {
		t.Errorf("thresholds.0.actual = %v, want 120", got)
	}
}

func TestPrintYAMLReport(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintYAMLReport(&buf, sampleReport()); err != nil {
		t.Fatalf("PrintYAMLReport() error = %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v\n%s", err, buf.String())
	}
	if decoded["run_id"] != "01J9Z5Y8W3Q4X2V7T6S5R4P3N2" {
		t.Errorf("run_id = %v", decoded["run_id"])
	}
	if decoded["requests"] != 1000 {
		t.Errorf("requests = %v (%T)", decoded["requests"], decoded["requests"])
	}
	latency, ok := decoded["latency_ms"].(map[string]any)
	if !ok {
		t.Fatalf("latency_ms = %T, want mapping", decoded["latency_ms"])
	}
	if latency["latency_p95"] != 55 {
		t.Errorf("latency_p95 = %v", latency["latency_p95"])
	}
	if latency["mean"] != 21.235 {
		t.Errorf("mean = %v", latency["mean"])
	}
	if _, ok := decoded["Info"]; ok {
		t.Error("run info must not be serialized")
	}
}

func TestPrintReportText(t *testing.T) {
	th, _ := threshold.Parse("failures:count == 10")
	r := sampleReport()
	r = r.WithThresholds(threshold.NewEvaluator([]threshold.Threshold{th}).Evaluate(r.Stats))

	var buf bytes.Buffer
	if err := PrintReport(&buf, r, NoColorScheme()); err != nil {
		t.Fatalf("PrintReport() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Jolt Benchmark Result",
		"Target URL:         http://localhost:8080/api",
		"Method:             POST",
		"Total Requests:     1000",
		"Concurrency:        10",
		"Success:            990",
		"Failed:             10",
		"Total Time:         2.346s",
		"Requests/sec:       426.436",
		"Fastest:            3 ms",
		"Slowest:            250 ms",
		"Average:            21 ms",
		"Latency_p95:        55 ms",
		"HTTP 503",
		"Thresholds: 1/1 passed",
		"✓ failures:count == 10",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("no-color report contains escape sequences")
	}
}

func TestPrintDispatchesByFormat(t *testing.T) {
	r := sampleReport()
	tests := []struct {
		format config.Format
		check  func(string) bool
	}{
		{config.FormatJSON, func(s string) bool { return gjson.Valid(s) }},
		{config.FormatYAML, func(s string) bool { return strings.HasPrefix(s, "run_id: ") }},
		{config.FormatText, func(s string) bool { return strings.Contains(s, "Latency_p95") }},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := Print(&buf, tt.format, r, nil); err != nil {
			t.Fatalf("Print(%s) error = %v", tt.format, err)
		}
		if !tt.check(buf.String()) {
			t.Errorf("Print(%s) produced unexpected output:\n%s", tt.format, buf.String())
		}
	}

	if err := Print(&bytes.Buffer{}, "xml", r, nil); err == nil {
		t.Error("Print(xml) error = nil, want error")
	}
}
