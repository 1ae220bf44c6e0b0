package main

import (
	"fmt"
	"log"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// MetricSampler captures a MetricSample on a fixed interval and pushes it
// into the store. All OS queries run on the sampler's own goroutine; the
// only shared-state interaction is the O(1) push. A failed sample is logged
// and skipped, the next scheduled tick proceeds normally.
type MetricSampler struct {
	store     *CollectorStore
	heartbeat *Heartbeat

	interval  time.Duration
	cpuWindow time.Duration
	diskPath  string
	verbose   bool

	// probe is the sampling function; swapped out in tests
	probe func() (MetricSample, error)

	stop chan struct{}
	done chan struct{}
}

// NewMetricSampler creates a sampler that writes to store and marks
// heartbeat on every completed tick
func NewMetricSampler(cfg Config, store *CollectorStore, heartbeat *Heartbeat, verbose bool) *MetricSampler {
	s := &MetricSampler{
		store:     store,
		heartbeat: heartbeat,
		interval:  cfg.SampleInterval(),
		cpuWindow: cfg.CPUWindow(),
		diskPath:  cfg.Metrics.DiskPath,
		verbose:   verbose,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	s.probe = s.collect
	return s
}

// Start launches the background sampling loop
func (s *MetricSampler) Start() {
	go s.run()
}

// Stop signals the loop to cease and waits for the in-flight sample to
// finish. No further ticks are scheduled afterwards.
func (s *MetricSampler) Stop() {
	close(s.stop)
	<-s.done
}

// Current performs an on-demand sample without touching the store. Used by
// the /metrics?current=true read path; note it blocks for the configured
// CPU window.
func (s *MetricSampler) Current() (MetricSample, error) {
	return s.probe()
}

func (s *MetricSampler) run() {
	defer close(s.done)

	// time.Ticker keeps the wall-clock schedule: ticks missed while a slow
	// sample was in flight are dropped, the next receive fires immediately
	// instead of stacking.
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		sample, err := s.probe()
		if err != nil {
			log.Printf("Metric sample skipped: %v", err)
		} else {
			s.store.PushMetric(sample)
			if s.verbose {
				log.Println(sample.String())
			}
		}
		s.heartbeat.Mark()

		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}
	}
}

// collect queries the OS for one full sample. CPU, memory, disk and process
// queries must all succeed; network counter failures degrade to zeros, the
// way the rest of the sample is still worth keeping.
func (s *MetricSampler) collect() (MetricSample, error) {
	cpuPercents, err := cpu.Percent(s.cpuWindow, false)
	if err != nil {
		return MetricSample{}, fmt.Errorf("cpu percent: %w", err)
	}
	cpuPercent := 0.0
	if len(cpuPercents) > 0 {
		cpuPercent = cpuPercents[0]
	}

	cpuCount, err := cpu.Counts(true)
	if err != nil {
		return MetricSample{}, fmt.Errorf("cpu count: %w", err)
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return MetricSample{}, fmt.Errorf("virtual memory: %w", err)
	}

	du, err := disk.Usage(s.diskPath)
	if err != nil {
		return MetricSample{}, fmt.Errorf("disk usage %s: %w", s.diskPath, err)
	}

	pids, err := process.Pids()
	if err != nil {
		return MetricSample{}, fmt.Errorf("process list: %w", err)
	}

	var network NetworkStats
	if counters, err := net.IOCounters(false); err == nil && len(counters) > 0 {
		network = NetworkStats{
			BytesSent:   counters[0].BytesSent,
			BytesRecv:   counters[0].BytesRecv,
			PacketsSent: counters[0].PacketsSent,
			PacketsRecv: counters[0].PacketsRecv,
		}
	}

	return MetricSample{
		Timestamp: time.Now(),
		CPU:       CPUStats{Percent: cpuPercent, Count: cpuCount},
		Memory:    MemoryStats{Percent: vm.UsedPercent, UsedBytes: vm.Used, TotalBytes: vm.Total},
		Disk:      DiskStats{Percent: du.UsedPercent, UsedBytes: du.Used, TotalBytes: du.Total},
		Processes: len(pids),
		Network:   network,
	}, nil
}
