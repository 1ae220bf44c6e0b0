package main

import (
	"fmt"
	"time"
)

// Log severity levels as reported in LogEntry.Level
const (
	LevelError   = "ERROR"
	LevelWarning = "WARNING"
	LevelInfo    = "INFO"
	LevelDebug   = "DEBUG"
	LevelUnknown = "UNKNOWN"
)

// CPUStats holds CPU usage at sample time
type CPUStats struct {
	Percent float64 `json:"percent"`
	Count   int     `json:"count"`
}

// MemoryStats holds virtual memory usage at sample time
type MemoryStats struct {
	Percent    float64 `json:"percent"`
	UsedBytes  uint64  `json:"used_bytes"`
	TotalBytes uint64  `json:"total_bytes"`
}

// DiskStats holds disk usage for the monitored mount point
type DiskStats struct {
	Percent    float64 `json:"percent"`
	UsedBytes  uint64  `json:"used_bytes"`
	TotalBytes uint64  `json:"total_bytes"`
}

// NetworkStats holds the OS network counters as observed at sample time.
// These are monotonic totals since boot, not deltas between samples.
type NetworkStats struct {
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
}

// MetricSample is a single point-in-time capture of system resource usage.
// Samples are immutable once created; the store evicts whole records only.
type MetricSample struct {
	Timestamp time.Time    `json:"timestamp"`
	CPU       CPUStats     `json:"cpu"`
	Memory    MemoryStats  `json:"memory"`
	Disk      DiskStats    `json:"disk"`
	Processes int          `json:"processes"`
	Network   NetworkStats `json:"network"`
}

// String returns a compact one-line representation of a sample
func (m MetricSample) String() string {
	return fmt.Sprintf("[%s] CPU: %5.1f%% | Memory: %5.1f%% | Disk: %5.1f%% | Processes: %d",
		m.Timestamp.Format("2006-01-02 15:04:05"), m.CPU.Percent, m.Memory.Percent, m.Disk.Percent, m.Processes)
}

// LogEntry is a single ingested log line with its classified severity.
// Entries are immutable once created.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	File      string    `json:"file"`
	FullPath  string    `json:"full_path"`
	Message   string    `json:"message"`
	Level     string    `json:"level"`
}

// String returns a compact one-line representation of an entry
func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Level, e.File, e.Message)
}
