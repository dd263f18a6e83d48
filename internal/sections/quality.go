package sections

import (
	"sync"
	"time"
)

// ConnectionQuality buckets the observed provider latency into the three
// gating levels used by the loader.
type ConnectionQuality string

const (
	QualityFast    ConnectionQuality = "fast"
	QualitySlow    ConnectionQuality = "slow"
	QualityMinimal ConnectionQuality = "minimal"
)

const (
	qualityWindowSize = 8

	fastLatencyCeiling = 300 * time.Millisecond
	slowLatencyCeiling = 1500 * time.Millisecond
)

// QualityMeter derives a connection quality from a rolling window of
// observed provider round-trip latencies. With no samples it reports fast,
// so a cold start never withholds sections.
type QualityMeter struct {
	mu      sync.Mutex
	samples []time.Duration
	next    int
	filled  bool
}

func NewQualityMeter() *QualityMeter {
	return &QualityMeter{samples: make([]time.Duration, qualityWindowSize)}
}

// Record adds one latency observation to the window.
func (m *QualityMeter) Record(d time.Duration) {
	if d < 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.samples[m.next] = d
	m.next++
	if m.next == len(m.samples) {
		m.next = 0
		m.filled = true
	}
}

// Current reports the quality implied by the mean latency of the window.
func (m *QualityMeter) Current() ConnectionQuality {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.next
	if m.filled {
		n = len(m.samples)
	}
	if n == 0 {
		return QualityFast
	}

	var total time.Duration
	for i := 0; i < n; i++ {
		total += m.samples[i]
	}
	mean := total / time.Duration(n)

	switch {
	case mean < fastLatencyCeiling:
		return QualityFast
	case mean < slowLatencyCeiling:
		return QualitySlow
	default:
		return QualityMinimal
	}
}
