// Package metrics provides lightweight, lock-free counters for OpenKit's
// background tasks and façade-level session lifecycle, adapted from
// metrics.Metrics's atomic-counter style.
//
// A nil *Metrics is valid and discards every call, mirroring logger.Logger's
// nil-receiver convention, so every collaborator can take a *Metrics as an
// injected, optional dependency without a separate "enabled" flag.
package metrics

import "sync/atomic"

// Metrics aggregates counters across one OpenKit instance's background
// tasks: sessions created/ended by the façade, status/beacon requests
// dispatched by the sender (C9), requests that failed at the transport or
// server level, and records removed by the evictor (C5).
type Metrics struct {
	SessionsCreated uint64
	SessionsEnded   uint64

	StatusRequestsSent uint64
	BeaconRequestsSent uint64
	RequestsFailed     uint64

	RecordsEvicted uint64
}

// New creates an empty Metrics instance.
func New() *Metrics { return &Metrics{} }

func (m *Metrics) IncrementSessionsCreated() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.SessionsCreated, 1)
}

func (m *Metrics) IncrementSessionsEnded() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.SessionsEnded, 1)
}

func (m *Metrics) IncrementStatusRequestsSent() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.StatusRequestsSent, 1)
}

func (m *Metrics) IncrementBeaconRequestsSent() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.BeaconRequestsSent, 1)
}

func (m *Metrics) IncrementRequestsFailed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.RequestsFailed, 1)
}

// AddRecordsEvicted adds n (which may be 0) to the evicted-record counter.
func (m *Metrics) AddRecordsEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	atomic.AddUint64(&m.RecordsEvicted, uint64(n))
}

// Snapshot is a point-in-time copy of every counter, safe to read without
// further synchronization. As with metrics.Metrics.Snapshot, the individual
// atomic loads are not taken under one lock, so the copy may be very
// slightly inconsistent at nanosecond granularity — acceptable for
// monitoring purposes.
type Snapshot struct {
	SessionsCreated    uint64
	SessionsEnded      uint64
	StatusRequestsSent uint64
	BeaconRequestsSent uint64
	RequestsFailed     uint64
	RecordsEvicted     uint64
}

// Snapshot returns a Snapshot of a nil Metrics's zero counters, so callers
// never need to nil-check before reading.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		SessionsCreated:    atomic.LoadUint64(&m.SessionsCreated),
		SessionsEnded:      atomic.LoadUint64(&m.SessionsEnded),
		StatusRequestsSent: atomic.LoadUint64(&m.StatusRequestsSent),
		BeaconRequestsSent: atomic.LoadUint64(&m.BeaconRequestsSent),
		RequestsFailed:     atomic.LoadUint64(&m.RequestsFailed),
		RecordsEvicted:     atomic.LoadUint64(&m.RecordsEvicted),
	}
}
