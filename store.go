package main

import (
	"strings"
	"sync"
)

// LogStats holds cumulative counts of classified log entries. Counts cover
// the whole process lifetime and keep growing after buffer eviction.
type LogStats struct {
	TotalEntries uint64 `json:"total_entries"`
	ErrorCount   uint64 `json:"error_count"`
	WarningCount uint64 `json:"warning_count"`
	InfoCount    uint64 `json:"info_count"`
	DebugCount   uint64 `json:"debug_count"`
	UnknownCount uint64 `json:"unknown_count"`
}

// CollectorStore is the single shared mutable state of the collector: a
// bounded FIFO buffer of metric samples, a bounded FIFO buffer of log
// entries and the cumulative per-level counters. It is safe for any number
// of concurrent readers and writers; pushes are O(1) and snapshot reads
// return copies so callers never observe a half-written record.
type CollectorStore struct {
	metrics    []MetricSample
	metricNext int // ring write position once the buffer is full
	maxMetrics int

	logs    []LogEntry
	logNext int
	maxLogs int

	stats LogStats

	mu sync.RWMutex
}

// NewCollectorStore creates a store with the given buffer capacities.
// Both capacities must be positive; Config.Validate enforces that before
// the store is ever constructed.
func NewCollectorStore(maxMetrics, maxLogs int) *CollectorStore {
	return &CollectorStore{
		metrics:    make([]MetricSample, 0, maxMetrics),
		maxMetrics: maxMetrics,
		logs:       make([]LogEntry, 0, maxLogs),
		maxLogs:    maxLogs,
	}
}

// PushMetric appends a sample, evicting the oldest one when full
func (s *CollectorStore) PushMetric(sample MetricSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.metrics) < s.maxMetrics {
		s.metrics = append(s.metrics, sample)
		return
	}

	s.metrics[s.metricNext] = sample
	s.metricNext = (s.metricNext + 1) % s.maxMetrics
}

// PushLogEntry appends an entry, evicting the oldest one when full, and
// bumps the lifetime counter for its level
func (s *CollectorStore) PushLogEntry(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.logs) < s.maxLogs {
		s.logs = append(s.logs, entry)
	} else {
		s.logs[s.logNext] = entry
		s.logNext = (s.logNext + 1) % s.maxLogs
	}

	s.stats.TotalEntries++
	switch entry.Level {
	case LevelError:
		s.stats.ErrorCount++
	case LevelWarning:
		s.stats.WarningCount++
	case LevelInfo:
		s.stats.InfoCount++
	case LevelDebug:
		s.stats.DebugCount++
	default:
		s.stats.UnknownCount++
	}
}

// SnapshotMetrics returns the retained samples in insertion order. A
// positive limit restricts the result to the most recent limit samples.
func (s *CollectorStore) SnapshotMetrics(limit int) []MetricSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := make([]MetricSample, 0, len(s.metrics))
	ordered = append(ordered, s.metrics[s.metricNext:]...)
	ordered = append(ordered, s.metrics[:s.metricNext]...)

	if limit > 0 && limit < len(ordered) {
		ordered = ordered[len(ordered)-limit:]
	}
	return ordered
}

// SnapshotLogs returns the retained entries in insertion order. A non-empty
// level keeps only entries of exactly that severity (case-insensitive); a
// positive limit then restricts to the most recent limit entries. Filter
// first, limit second, so "last 10 errors" means what it says.
func (s *CollectorStore) SnapshotLogs(limit int, level string) []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := make([]LogEntry, 0, len(s.logs))
	ordered = append(ordered, s.logs[s.logNext:]...)
	ordered = append(ordered, s.logs[:s.logNext]...)

	if level != "" {
		filtered := ordered[:0]
		for _, entry := range ordered {
			if strings.EqualFold(entry.Level, level) {
				filtered = append(filtered, entry)
			}
		}
		ordered = filtered
	}

	if limit > 0 && limit < len(ordered) {
		ordered = ordered[len(ordered)-limit:]
	}
	return ordered
}

// Counters returns a copy of the cumulative level counters
func (s *CollectorStore) Counters() LogStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.stats
}

// MetricCount returns the number of samples currently retained
func (s *CollectorStore) MetricCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.metrics)
}

// LogCount returns the number of entries currently retained
func (s *CollectorStore) LogCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.logs)
}
