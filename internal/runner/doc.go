// Package runner is the benchmark engine of jolt.
//
// A [Runner] owns a fixed pool of workers that share one HTTP client, one
// request template and a pair of atomic outcome counters. Each worker sends
// its requests sequentially and keeps a private latency histogram, merged
// into the run histogram once when the worker exits.
//
// # Stopping conditions
//
// In count mode the total is split with [Partition] and every worker sends
// exactly its share. In duration mode the runner sleeps for the configured
// duration and then raises a stop flag; workers check it before each request
// and never interrupt one in flight, so a run can overshoot by up to one
// request timeout.
//
// # Usage
//
//	r, err := runner.New(runner.Options{
//		URL:         "http://localhost:8080/",
//		Method:      "GET",
//		Concurrency: 10,
//		Total:       1000,
//	})
//	if err != nil {
//		return err
//	}
//	result, err := r.Run(ctx)
//
// Only 2xx responses count as successes and only their latencies are
// recorded. Non-2xx responses, transport errors and timeouts count as
// failures and are passed to the optional [FailureLogger]. Requests are
// never retried.
package runner
