package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/torosent/jolt/internal/histogram"
)

// WriteLatencyFile writes the run summary as '#' comment lines followed by
// the latency_ms,frequency table. The file is replaced atomically while an
// advisory lock on "<path>.lock" is held, so concurrent runs writing the same
// path never interleave.
func WriteLatencyFile(path string, r Report, entries []histogram.Entry) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock output file: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := writeLatencyTable(bw, r, entries); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write output file: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write output file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace output file: %w", err)
	}
	return nil
}

func writeLatencyTable(w io.Writer, r Report, entries []histogram.Entry) error {
	s := r.Stats
	lines := []string{
		"# jolt benchmark result",
		fmt.Sprintf("# run_id: %s", r.RunID),
		fmt.Sprintf("# url: %s", r.URL),
		fmt.Sprintf("# method: %s", r.Method),
		fmt.Sprintf("# total_requests: %d", s.Total),
		fmt.Sprintf("# success: %d", s.Success),
		fmt.Sprintf("# failures: %d", s.Failure),
		fmt.Sprintf("# duration_sec: %.6f", s.Elapsed.Seconds()),
		fmt.Sprintf("# rps: %.2f", s.RequestsPerSec),
		fmt.Sprintf("# latency_min_ms: %d", s.MinMs),
		fmt.Sprintf("# latency_max_ms: %d", s.MaxMs),
		fmt.Sprintf("# latency_mean_ms: %.2f", s.MeanMs),
		fmt.Sprintf("# latency_p%d_ms: %d", s.Percentile, s.PercentileMs),
		fmt.Sprintf("# latency_p99_ms: %d", s.P99Ms),
	}
	switch {
	case r.Info.TargetRequests > 0:
		lines = append(lines, fmt.Sprintf("# target_requests: %d", r.Info.TargetRequests))
	case r.Info.TargetDuration > 0:
		lines = append(lines, fmt.Sprintf("# target_duration_sec: %.6f", r.Info.TargetDuration.Seconds()))
	}
	lines = append(lines, "#", "latency_ms,frequency")

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%d,%d\n", e.Value, e.Count); err != nil {
			return err
		}
	}
	return nil
}
