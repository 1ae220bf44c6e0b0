package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcStats describes the collector's own resource footprint, reported in
// the /status payload so the process watching everything else can be
// watched too.
type ProcStats struct {
	HeapAllocMB  float64 `json:"heap_alloc_mb"`
	HeapSysMB    float64 `json:"heap_sys_mb"`
	NumGoroutine int     `json:"goroutines"`
	RSSMB        float64 `json:"rss_mb"`
	VMSMB        float64 `json:"vms_mb"`
}

// CollectProcStats gathers runtime and OS-level memory usage for this
// process. OS-level figures may be missing on exotic platforms; the runtime
// part is returned regardless.
func CollectProcStats() (*ProcStats, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := &ProcStats{
		HeapAllocMB:  float64(m.Alloc) / 1024 / 1024,
		HeapSysMB:    float64(m.Sys) / 1024 / 1024,
		NumGoroutine: runtime.NumGoroutine(),
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return stats, err
	}
	memInfo, err := proc.MemoryInfo()
	if err != nil {
		return stats, err
	}

	stats.RSSMB = float64(memInfo.RSS) / 1024 / 1024
	stats.VMSMB = float64(memInfo.VMS) / 1024 / 1024
	return stats, nil
}

// String returns a one-line summary for the shutdown report
func (p *ProcStats) String() string {
	return fmt.Sprintf("RSS=%.1fMB HeapAlloc=%.1fMB Goroutines=%d", p.RSSMB, p.HeapAllocMB, p.NumGoroutine)
}
