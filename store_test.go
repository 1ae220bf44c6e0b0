package main

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry(message, level string) LogEntry {
	return LogEntry{
		Timestamp: time.Now(),
		File:      "test.log",
		FullPath:  "/var/log/test.log",
		Message:   message,
		Level:     level,
	}
}

func TestStoreMetricEviction(t *testing.T) {
	store := NewCollectorStore(3, 10)

	// Push A, B, C, D into a buffer of 3: the snapshot must be [B, C, D].
	for i, pct := range []float64{1, 2, 3, 4} {
		store.PushMetric(MetricSample{
			Timestamp: time.Now(),
			CPU:       CPUStats{Percent: pct, Count: i},
		})
	}

	got := store.SnapshotMetrics(0)
	require.Len(t, got, 3)
	assert.Equal(t, 2.0, got[0].CPU.Percent)
	assert.Equal(t, 3.0, got[1].CPU.Percent)
	assert.Equal(t, 4.0, got[2].CPU.Percent)
}

func TestStoreMetricLimit(t *testing.T) {
	store := NewCollectorStore(10, 10)
	for i := 0; i < 5; i++ {
		store.PushMetric(MetricSample{CPU: CPUStats{Percent: float64(i)}})
	}

	got := store.SnapshotMetrics(2)
	require.Len(t, got, 2)
	assert.Equal(t, 3.0, got[0].CPU.Percent)
	assert.Equal(t, 4.0, got[1].CPU.Percent)

	assert.Len(t, store.SnapshotMetrics(100), 5)
}

func TestStoreLogEvictionKeepsInsertionOrder(t *testing.T) {
	store := NewCollectorStore(10, 3)

	for i := 0; i < 7; i++ {
		store.PushLogEntry(testEntry(fmt.Sprintf("line %d", i), LevelInfo))
	}

	got := store.SnapshotLogs(0, "")
	require.Len(t, got, 3)
	assert.Equal(t, "line 4", got[0].Message)
	assert.Equal(t, "line 5", got[1].Message)
	assert.Equal(t, "line 6", got[2].Message)
}

func TestStoreCountersSurviveEviction(t *testing.T) {
	store := NewCollectorStore(10, 2)

	store.PushLogEntry(testEntry("e1", LevelError))
	store.PushLogEntry(testEntry("e2", LevelError))
	store.PushLogEntry(testEntry("w1", LevelWarning))
	store.PushLogEntry(testEntry("i1", LevelInfo))
	store.PushLogEntry(testEntry("d1", LevelDebug))
	store.PushLogEntry(testEntry("u1", LevelUnknown))

	assert.Equal(t, 2, store.LogCount())

	counters := store.Counters()
	assert.Equal(t, uint64(6), counters.TotalEntries)
	assert.Equal(t, uint64(2), counters.ErrorCount)
	assert.Equal(t, uint64(1), counters.WarningCount)
	assert.Equal(t, uint64(1), counters.InfoCount)
	assert.Equal(t, uint64(1), counters.DebugCount)
	assert.Equal(t, uint64(1), counters.UnknownCount)
}

func TestStoreLogFilterAndLimitCompose(t *testing.T) {
	store := NewCollectorStore(10, 20)

	for i := 0; i < 4; i++ {
		store.PushLogEntry(testEntry(fmt.Sprintf("error %d", i), LevelError))
		store.PushLogEntry(testEntry(fmt.Sprintf("info %d", i), LevelInfo))
	}

	// Filter first, then keep the most recent limit entries of that level.
	got := store.SnapshotLogs(2, LevelError)
	require.Len(t, got, 2)
	assert.Equal(t, "error 2", got[0].Message)
	assert.Equal(t, "error 3", got[1].Message)

	// Level matching is case-insensitive.
	assert.Len(t, store.SnapshotLogs(0, "error"), 4)
	assert.Empty(t, store.SnapshotLogs(0, "WARNING"))
}

func TestStoreConcurrentReadersNeverSeeTornRecords(t *testing.T) {
	store := NewCollectorStore(50, 50)
	const writers = 4
	const readers = 4
	const pushes = 500

	var wg sync.WaitGroup

	// Every pushed record encodes one value in all fields; a torn read
	// would show a record where the fields disagree.
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 1; i <= pushes; i++ {
				v := float64(i)
				store.PushMetric(MetricSample{
					Timestamp: time.Now(),
					CPU:       CPUStats{Percent: v, Count: i},
					Memory:    MemoryStats{Percent: v, UsedBytes: uint64(i), TotalBytes: uint64(i)},
					Disk:      DiskStats{Percent: v, UsedBytes: uint64(i), TotalBytes: uint64(i)},
					Processes: i,
					Network:   NetworkStats{BytesSent: uint64(i), BytesRecv: uint64(i), PacketsSent: uint64(i), PacketsRecv: uint64(i)},
				})
				store.PushLogEntry(testEntry(fmt.Sprintf("msg %d", i), LevelInfo))
			}
		}()
	}

	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < pushes; i++ {
				for _, sample := range store.SnapshotMetrics(0) {
					v := sample.CPU.Percent
					assert.Equal(t, v, sample.Memory.Percent)
					assert.Equal(t, v, sample.Disk.Percent)
					assert.Equal(t, uint64(sample.Processes), sample.Network.BytesSent)
					assert.Equal(t, sample.Processes, sample.CPU.Count)
					assert.False(t, sample.Timestamp.IsZero())
				}
				for _, entry := range store.SnapshotLogs(0, "") {
					assert.NotEmpty(t, entry.Message)
					assert.Equal(t, LevelInfo, entry.Level)
				}
				_ = store.Counters()
			}
		}()
	}

	wg.Wait()

	counters := store.Counters()
	assert.Equal(t, uint64(writers*pushes), counters.TotalEntries)
	assert.Equal(t, uint64(writers*pushes), counters.InfoCount)
}

func TestStoreCountersNeverDecrease(t *testing.T) {
	store := NewCollectorStore(10, 5)

	var prev uint64
	for i := 0; i < 25; i++ {
		store.PushLogEntry(testEntry("x error y", LevelError))
		counters := store.Counters()
		assert.GreaterOrEqual(t, counters.ErrorCount, prev)
		prev = counters.ErrorCount
	}
	assert.Equal(t, uint64(25), prev)
}
