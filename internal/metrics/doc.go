// Package metrics turns a finished run into the numbers jolt reports:
// throughput, latency percentiles and a breakdown of failures by cause.
//
// [Summarize] reads the merged latency histogram of a [runner.Result]. The
// [FailureTracker] plugs into the runner as a failure logger and groups
// failed requests into buckets such as "HTTP 503" or "Timeout".
package metrics
