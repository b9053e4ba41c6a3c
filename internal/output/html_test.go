package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/torosent/jolt/internal/histogram"
	"github.com/torosent/jolt/internal/threshold"
)

func TestGenerateHTMLReport(t *testing.T) {
	th, _ := threshold.Parse("latency:p99 < 100")
	r := sampleReport()
	r = r.WithThresholds(threshold.NewEvaluator([]threshold.Threshold{th}).Evaluate(r.Stats))
	entries := []histogram.Entry{{Value: 3, Count: 10}, {Value: 18, Count: 900}}

	var buf bytes.Buffer
	if err := GenerateHTMLReport(&buf, r, entries); err != nil {
		t.Fatalf("GenerateHTMLReport() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"jolt benchmark report",
		"http://localhost:8080/api",
		"01J9Z5Y8W3Q4X2V7T6S5R4P3N2",
		"<th>P95</th>",
		"HTTP 503",
		"Thresholds (0/1 passed)",
		"✗ FAIL",
		`id="distribution"`,
		"[[3,18],[10,900]]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML report missing %q", want)
		}
	}
}

func TestGenerateHTMLReportWithoutData(t *testing.T) {
	r := NewReport(RunInfo{URL: "http://example.com", Method: "GET"}, sampleReport().Stats)
	r.FailureBreakdown = nil

	var buf bytes.Buffer
	if err := GenerateHTMLReport(&buf, r, nil); err != nil {
		t.Fatalf("GenerateHTMLReport() error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, `id="distribution"`) {
		t.Error("distribution chart rendered without data")
	}
	if strings.Contains(out, "Thresholds (") {
		t.Error("threshold section rendered without thresholds")
	}
	if strings.Contains(out, "<h2>Failures</h2>") {
		t.Error("failure section rendered without failures")
	}
}

func TestWriteHTMLReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	if err := WriteHTMLReport(path, sampleReport(), nil); err != nil {
		t.Fatalf("WriteHTMLReport() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "<!DOCTYPE html>") {
		t.Errorf("unexpected content: %.40s", data)
	}

	if err := WriteHTMLReport(filepath.Join(t.TempDir(), "missing", "r.html"), sampleReport(), nil); err == nil {
		t.Error("WriteHTMLReport() into a missing directory: error = nil")
	}
}
