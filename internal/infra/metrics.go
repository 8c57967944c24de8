package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	checksRun         atomic.Uint64
	fetchErrors       atomic.Uint64
	snapshotsSaved    atomic.Uint64
	alertsSent        atomic.Uint64
	autoComparesFired atomic.Uint64
	dispatchErrors    atomic.Uint64

	subscribers atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordCheck records one completed check cycle.
func (m *Metrics) RecordCheck() {
	m.checksRun.Add(1)
}

// RecordFetchError records a failed fetch batch.
func (m *Metrics) RecordFetchError() {
	m.fetchErrors.Add(1)
}

// RecordSnapshotsSaved records n persisted snapshot rows.
func (m *Metrics) RecordSnapshotsSaved(n int) {
	m.snapshotsSaved.Add(uint64(n))
}

// RecordAlertSent records one divergence alert delivery.
func (m *Metrics) RecordAlertSent() {
	m.alertsSent.Add(1)
}

// RecordAutoCompare records one fired per-chat comparison.
func (m *Metrics) RecordAutoCompare() {
	m.autoComparesFired.Add(1)
}

// RecordDispatchError records a failed delivery to one recipient.
func (m *Metrics) RecordDispatchError() {
	m.dispatchErrors.Add(1)
}

// SetSubscribers sets the current alert subscriber count.
func (m *Metrics) SetSubscribers(count int32) {
	m.subscribers.Store(count)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	ChecksRun         uint64
	FetchErrors       uint64
	SnapshotsSaved    uint64
	AlertsSent        uint64
	AutoComparesFired uint64
	DispatchErrors    uint64
	Subscribers       int32
	Timestamp         time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ChecksRun:         m.checksRun.Load(),
		FetchErrors:       m.fetchErrors.Load(),
		SnapshotsSaved:    m.snapshotsSaved.Load(),
		AlertsSent:        m.alertsSent.Load(),
		AutoComparesFired: m.autoComparesFired.Load(),
		DispatchErrors:    m.dispatchErrors.Load(),
		Subscribers:       m.subscribers.Load(),
		Timestamp:         time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.checksRun.Store(0)
	m.fetchErrors.Store(0)
	m.snapshotsSaved.Store(0)
	m.alertsSent.Store(0)
	m.autoComparesFired.Store(0)
	m.dispatchErrors.Store(0)
	m.subscribers.Store(0)
}
