package testdoubles

import (
	"maps"
	"sync"
	"time"

	"github.com/campusops/library-circulation/journal"
)

// MetricRecord is one captured metric call.
type MetricRecord struct {
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
}

// MetricsSpy implements journal.MetricsCollector.
type MetricsSpy struct {
	mu        sync.Mutex
	durations []MetricRecord
	counters  []MetricRecord
	values    []MetricRecord
}

func NewMetricsSpy() *MetricsSpy {
	return &MetricsSpy{}
}

func (s *MetricsSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durations = append(s.durations, MetricRecord{Metric: metric, Duration: duration, Labels: maps.Clone(labels)})
}

func (s *MetricsSpy) IncrementCounter(metric string, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters = append(s.counters, MetricRecord{Metric: metric, Labels: maps.Clone(labels)})
}

func (s *MetricsSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = append(s.values, MetricRecord{Metric: metric, Value: value, Labels: maps.Clone(labels)})
}

// CounterCount counts increments of metric whose labels contain all of want.
func (s *MetricsSpy) CounterCount(metric string, want map[string]string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return countMatching(s.counters, metric, want)
}

// DurationCount counts durations recorded for metric whose labels contain all of want.
func (s *MetricsSpy) DurationCount(metric string, want map[string]string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return countMatching(s.durations, metric, want)
}

// Values returns a copy of all RecordValue calls.
func (s *MetricsSpy) Values() []MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]MetricRecord(nil), s.values...)
}

func countMatching(records []MetricRecord, metric string, want map[string]string) int {
	n := 0

	for _, r := range records {
		if r.Metric != metric {
			continue
		}

		matches := true
		for k, v := range want {
			if r.Labels[k] != v {
				matches = false

				break
			}
		}

		if matches {
			n++
		}
	}

	return n
}

var _ journal.MetricsCollector = (*MetricsSpy)(nil)
