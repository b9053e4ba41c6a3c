package metrics

import (
	"time"

	"github.com/torosent/jolt/internal/runner"
)

// DefaultPercentile is reported when no percentile is configured.
const DefaultPercentile = 99

// Stats is the summary of a finished run. Latencies are whole milliseconds
// and cover successful requests only.
type Stats struct {
	Total          int64
	Success        int64
	Failure        int64
	Elapsed        time.Duration
	RequestsPerSec float64

	MinMs  int64
	MaxMs  int64
	MeanMs float64
	P50Ms  int64
	P90Ms  int64
	P95Ms  int64
	P99Ms  int64

	Percentile   int   // configured percentile
	PercentileMs int64 // latency at Percentile

	Failures []FailureBucket // optional breakdown by cause
}

// Summarize derives Stats from a run result.
func Summarize(res runner.Result, percentile int) Stats {
	if percentile < 0 || percentile > 100 {
		percentile = DefaultPercentile
	}

	stats := Stats{
		Total:      res.Total(),
		Success:    res.Success,
		Failure:    res.Failure,
		Elapsed:    res.Elapsed,
		Percentile: percentile,
	}
	if res.Elapsed > 0 {
		stats.RequestsPerSec = float64(stats.Total) / res.Elapsed.Seconds()
	}

	h := res.Histogram
	if h == nil || h.TotalCount() == 0 {
		return stats
	}
	stats.MinMs = h.Min()
	stats.MaxMs = h.Max()
	stats.MeanMs = h.Mean()
	stats.P50Ms = h.ValueAtPercentile(50)
	stats.P90Ms = h.ValueAtPercentile(90)
	stats.P95Ms = h.ValueAtPercentile(95)
	stats.P99Ms = h.ValueAtPercentile(99)
	stats.PercentileMs = h.ValueAtPercentile(float64(percentile))
	return stats
}

// FailureRate returns failures as a fraction of attempted requests.
func (s Stats) FailureRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Failure) / float64(s.Total)
}
