// Package eviction implements the two beacon cache eviction strategies:
// age-based and space-based. Both are stateless with respect to the cache
// itself — they only consult configuration and invoke cache operations.
package eviction

import (
	"github.com/Dynatrace/openkit-go/cache"
	"github.com/Dynatrace/openkit-go/internal/metrics"
	"github.com/Dynatrace/openkit-go/logger"
)

// Clock returns the current time in milliseconds since the epoch, injected
// so tests can control the passage of time.
type Clock func() int64

// IsAlive reports whether the caller should keep making progress; eviction
// loops check this between sessions so a shutdown request stops them
// promptly.
type IsAlive func() bool

// TimeStrategy evicts records older than MaxRecordAgeMs, checked no more
// often than once every MaxRecordAgeMs.
//
// Grounded on proxy.ProxyManager's mutex-guarded rotation index style: a
// pair of fields (lastRunMs, ranOnce) is the only mutable state, touched
// under plain field access since Execute is only ever invoked from the evictor's single
// background goroutine (see package evictor).
type TimeStrategy struct {
	MaxRecordAgeMs int64
	Now            Clock
	Alive          IsAlive

	// Metrics is optional; a nil value discards every call.
	Metrics *metrics.Metrics

	lastRunMs int64
	ranOnce   bool
}

// NewTimeStrategy constructs a TimeStrategy. maxRecordAgeMs <= 0 disables it.
func NewTimeStrategy(maxRecordAgeMs int64, now Clock, alive IsAlive) *TimeStrategy {
	return &TimeStrategy{MaxRecordAgeMs: maxRecordAgeMs, Now: now, Alive: alive}
}

// Disabled reports whether this strategy is a no-op.
func (s *TimeStrategy) Disabled() bool { return s.MaxRecordAgeMs <= 0 }

// ShouldRun reports whether enough wall-clock time has passed since the last
// run to justify another pass.
func (s *TimeStrategy) ShouldRun() bool {
	if !s.ranOnce {
		return true
	}
	return s.Now()-s.lastRunMs >= s.MaxRecordAgeMs
}

// Execute runs one pass of age-based eviction across every session the cache
// currently knows about.
func (s *TimeStrategy) Execute(c *cache.BeaconCache, log *logger.Logger) {
	if s.Disabled() {
		log.Info("eviction: time strategy disabled (max record age <= 0)")
		return
	}
	if !s.ShouldRun() {
		return
	}

	now := s.Now()
	cutoff := now - s.MaxRecordAgeMs
	for _, id := range c.GetBeaconIDs() {
		if s.Alive != nil && !s.Alive() {
			break
		}
		removed := c.EvictByAge(id, cutoff)
		if removed > 0 {
			log.Debugf("eviction: time strategy removed %d record(s) from session %d", removed, id)
			s.Metrics.AddRecordsEvicted(removed)
		}
	}
	s.lastRunMs = now
	s.ranOnce = true
}
