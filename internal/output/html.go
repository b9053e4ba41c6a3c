package output

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/torosent/jolt/internal/histogram"
)

type htmlReportData struct {
	GeneratedAt  string
	Report       Report
	Elapsed      string
	Passed       int
	Distribution [][]int64 // x: latency_ms, y: frequency
}

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"formatFloat": func(f float64) string {
		return fmt.Sprintf("%.2f", f)
	},
	"formatPercent": func(part, total int64) string {
		if total == 0 {
			return "0.0"
		}
		return fmt.Sprintf("%.1f", float64(part)/float64(total)*100)
	},
}).Parse(htmlTemplate))

// GenerateHTMLReport writes a standalone HTML page with the summary, the
// latency distribution chart, the failure breakdown and threshold results.
func GenerateHTMLReport(w io.Writer, r Report, entries []histogram.Entry) error {
	data := htmlReportData{
		GeneratedAt:  time.Now().Format(time.RFC3339),
		Report:       r,
		Elapsed:      r.Stats.Elapsed.Round(time.Millisecond).String(),
		Distribution: [][]int64{make([]int64, 0, len(entries)), make([]int64, 0, len(entries))},
	}
	for _, e := range entries {
		data.Distribution[0] = append(data.Distribution[0], e.Value)
		data.Distribution[1] = append(data.Distribution[1], e.Count)
	}
	for _, t := range r.Thresholds {
		if t.Pass {
			data.Passed++
		}
	}

	if err := htmlReport.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// WriteHTMLReport writes the HTML report to path.
func WriteHTMLReport(path string, r Report, entries []histogram.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create HTML report: %w", err)
	}
	if err := GenerateHTMLReport(f, r, entries); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>jolt benchmark report</title>
    <style>
        body { font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; background: #f4f5f7; color: #1f2933; margin: 0; padding: 24px; }
        main { max-width: 1200px; margin: 0 auto; background: #fff; border-radius: 8px; box-shadow: 0 2px 8px rgba(0,0,0,.08); }
        header { background: #1f2933; color: #fff; padding: 24px 32px; border-radius: 8px 8px 0 0; }
        header h1 { margin: 0 0 8px; font-size: 1.8rem; }
        header .meta { opacity: .85; font-size: .9rem; }
        section { padding: 24px 32px; }
        h2 { font-size: 1.3rem; border-bottom: 2px solid #e4e7eb; padding-bottom: 8px; }
        .cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 16px; }
        .card { background: #f8f9fa; border-left: 4px solid #3e4c59; border-radius: 6px; padding: 16px; }
        .card.ok { border-left-color: #10b981; }
        .card.bad { border-left-color: #ef4444; }
        .card .label { font-size: .8rem; text-transform: uppercase; color: #616e7c; }
        .card .value { font-size: 1.8rem; font-weight: bold; }
        .card .sub { font-size: .85rem; color: #616e7c; }
        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 10px; border-bottom: 1px solid #e4e7eb; }
        th { background: #f8f9fa; font-size: .85rem; text-transform: uppercase; color: #52606d; }
        .pass { color: #065f46; font-weight: 600; }
        .fail { color: #991b1b; font-weight: 600; }
        #distribution { width: 100%; height: 320px; }
    </style>
    <script src="https://cdn.jsdelivr.net/npm/uplot@1.6.24/dist/uPlot.iife.min.js"></script>
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/uplot@1.6.24/dist/uPlot.min.css">
</head>
<body>
<main>
    <header>
        <h1>jolt benchmark report</h1>
        <div class="meta">{{.Report.Method}} {{.Report.URL}}</div>
        <div class="meta">Run {{.Report.RunID}} | Generated {{.GeneratedAt}} | Duration {{.Elapsed}} | Concurrency {{.Report.Concurrency}}</div>
    </header>

    <section>
        <div class="cards">
            <div class="card"><div class="label">Total requests</div><div class="value">{{.Report.Requests}}</div></div>
            <div class="card ok"><div class="label">Success</div><div class="value">{{.Report.Success}}</div><div class="sub">{{formatPercent .Report.Success .Report.Requests}}%</div></div>
            <div class="card bad"><div class="label">Failed</div><div class="value">{{.Report.Failures}}</div><div class="sub">{{formatPercent .Report.Failures .Report.Requests}}%</div></div>
            <div class="card"><div class="label">Requests/sec</div><div class="value">{{formatFloat .Report.RPS}}</div></div>
        </div>
    </section>

    <section>
        <h2>Latency (ms)</h2>
        <table>
            <thead><tr><th>Min</th><th>Mean</th><th>P50</th><th>P90</th><th>P95</th><th>P99</th><th>P{{.Report.Latency.Percentile}}</th><th>Max</th></tr></thead>
            <tbody><tr>
                <td>{{.Report.Latency.Min}}</td>
                <td>{{formatFloat .Report.Latency.Mean}}</td>
                <td>{{.Report.Stats.P50Ms}}</td>
                <td>{{.Report.Stats.P90Ms}}</td>
                <td>{{.Report.Stats.P95Ms}}</td>
                <td>{{.Report.Stats.P99Ms}}</td>
                <td>{{.Report.Latency.Value}}</td>
                <td>{{.Report.Latency.Max}}</td>
            </tr></tbody>
        </table>
        {{if index .Distribution 0}}
        <h2>Latency distribution</h2>
        <div id="distribution"></div>
        {{end}}
    </section>

    {{if .Report.FailureBreakdown}}
    <section>
        <h2>Failures</h2>
        <table>
            <thead><tr><th>Cause</th><th>Count</th><th>Share</th></tr></thead>
            <tbody>
            {{range .Report.FailureBreakdown}}
                <tr><td>{{.Cause}}</td><td>{{.Count}}</td><td>{{formatPercent .Count $.Report.Failures}}%</td></tr>
            {{end}}
            </tbody>
        </table>
    </section>
    {{end}}

    {{if .Report.Thresholds}}
    <section>
        <h2>Thresholds ({{.Passed}}/{{len .Report.Thresholds}} passed)</h2>
        <table>
            <thead><tr><th>Threshold</th><th>Actual</th><th>Status</th></tr></thead>
            <tbody>
            {{range .Report.Thresholds}}
                <tr><td>{{.Threshold}}</td><td>{{formatFloat .Actual}}</td><td>{{if .Pass}}<span class="pass">✓ PASS</span>{{else}}<span class="fail">✗ FAIL</span>{{end}}</td></tr>
            {{end}}
            </tbody>
        </table>
    </section>
    {{end}}
</main>

{{if index .Distribution 0}}
<script>
    const distribution = {{.Distribution}};
    const el = document.getElementById('distribution');
    new uPlot({
        width: el.offsetWidth,
        height: 300,
        scales: { x: { time: false } },
        series: [
            { label: "Latency (ms)" },
            { label: "Requests", stroke: "#3e4c59", fill: "rgba(62, 76, 89, 0.15)", width: 2, paths: uPlot.paths.bars() }
        ],
        axes: [
            { label: "Latency (ms)" },
            { label: "Requests" }
        ]
    }, distribution, el);
</script>
{{end}}
</body>
</html>
`
