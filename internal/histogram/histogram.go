// Package histogram records request latencies in milliseconds with bounded
// relative error.
//
// A Histogram is not safe for concurrent use. Each worker owns one and merges
// it into a shared instance when it finishes; callers guard the shared
// instance themselves.
package histogram

import (
	"errors"
	"fmt"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// MaxValue is the largest recordable latency (one hour in milliseconds).
	MaxValue int64 = 3_600_000
	// SignificantFigures is the default precision of recorded values.
	SignificantFigures = 3
)

// Histogram is a latency distribution in milliseconds.
type Histogram struct {
	h *hdrhistogram.Histogram
}

// Entry is one recorded value and how many times it was observed.
type Entry struct {
	Value int64 `json:"latency_ms" yaml:"latency_ms"`
	Count int64 `json:"frequency" yaml:"frequency"`
}

// New returns an empty histogram tracking 1..MaxValue ms with the default precision.
func New() (*Histogram, error) {
	return NewWithMax(MaxValue, SignificantFigures)
}

// NewWithMax returns an empty histogram tracking 1..max ms with sigFigs
// significant decimal digits.
func NewWithMax(max int64, sigFigs int) (*Histogram, error) {
	if sigFigs < 1 || sigFigs > 5 {
		return nil, fmt.Errorf("significant figures must be between 1 and 5, got %d", sigFigs)
	}
	if max < 2 {
		return nil, fmt.Errorf("max trackable value must be >= 2, got %d", max)
	}
	return &Histogram{h: hdrhistogram.New(1, max, sigFigs)}, nil
}

// Record adds a latency in milliseconds. Values above the trackable maximum
// are clamped to it.
func (h *Histogram) Record(ms int64) error {
	if ms < 0 {
		return fmt.Errorf("latency must be >= 0, got %d", ms)
	}
	if highest := h.h.HighestTrackableValue(); ms > highest {
		ms = highest
	}
	return h.h.RecordValue(ms)
}

// RecordDuration records d truncated to whole milliseconds.
func (h *Histogram) RecordDuration(d time.Duration) error {
	return h.Record(d.Milliseconds())
}

// Merge adds every recorded value of other into h.
func (h *Histogram) Merge(other *Histogram) error {
	if other == nil {
		return errors.New("cannot merge nil histogram")
	}
	if dropped := h.h.Merge(other.h); dropped > 0 {
		return fmt.Errorf("merge dropped %d values outside the trackable range", dropped)
	}
	return nil
}

// TotalCount returns the number of recorded values.
func (h *Histogram) TotalCount() int64 { return h.h.TotalCount() }

// Min returns the smallest recorded value, or 0 when empty.
func (h *Histogram) Min() int64 {
	if h.h.TotalCount() == 0 {
		return 0
	}
	return h.h.Min()
}

// Max returns the largest recorded value, or 0 when empty.
func (h *Histogram) Max() int64 {
	if h.h.TotalCount() == 0 {
		return 0
	}
	return h.h.Max()
}

// Mean returns the arithmetic mean of recorded values, or 0 when empty.
func (h *Histogram) Mean() float64 {
	if h.h.TotalCount() == 0 {
		return 0
	}
	return h.h.Mean()
}

// ValueAtPercentile returns the value at percentile p in [0, 100], or 0 when empty.
func (h *Histogram) ValueAtPercentile(p float64) int64 {
	if h.h.TotalCount() == 0 {
		return 0
	}
	if p <= 0 {
		return h.Min()
	}
	if p > 100 {
		p = 100
	}
	return h.h.ValueAtQuantile(p)
}

// Entries returns the recorded values with their frequencies in ascending
// value order. Values within the same equivalence range are reported as the
// highest value equivalent to them, so an exact value below 2048 ms at the
// default precision comes back unchanged.
func (h *Histogram) Entries() []Entry {
	if h.h.TotalCount() == 0 {
		return nil
	}
	var entries []Entry
	for _, bar := range h.h.Distribution() {
		if bar.Count == 0 {
			continue
		}
		entries = append(entries, Entry{Value: bar.To, Count: bar.Count})
	}
	return entries
}
