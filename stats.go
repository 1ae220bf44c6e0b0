package main

import "time"

// healthGraceTicks is how many missed intervals a component may accumulate
// before its liveness flag turns false.
const healthGraceTicks = 3

// Statistics derives summary figures and component health flags from the
// collector state. It holds no state of its own and is safe to call
// concurrently with collection.
type Statistics struct {
	store     *CollectorStore
	samplerHB *Heartbeat
	tailerHB  *Heartbeat

	sampleInterval time.Duration
	pollInterval   time.Duration
}

// NewStatistics wires the aggregator to the store and the component heartbeats
func NewStatistics(store *CollectorStore, samplerHB, tailerHB *Heartbeat, sampleInterval, pollInterval time.Duration) *Statistics {
	return &Statistics{
		store:          store,
		samplerHB:      samplerHB,
		tailerHB:       tailerHB,
		sampleInterval: sampleInterval,
		pollInterval:   pollInterval,
	}
}

// Summarize returns the cumulative log counters. The figures come from the
// store's lifetime counters, not from scanning the buffer, so they remain
// meaningful after eviction.
func (st *Statistics) Summarize() LogStats {
	return st.store.Counters()
}

// SamplerAlive reports whether the metric sampler ticked recently
func (st *Statistics) SamplerAlive() bool {
	return st.samplerHB.AliveWithin(healthGraceTicks * st.sampleInterval)
}

// TailerAlive reports whether the log tailer completed a watch cycle recently
func (st *Statistics) TailerAlive() bool {
	return st.tailerHB.AliveWithin(healthGraceTicks * st.pollInterval)
}
