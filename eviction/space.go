package eviction

import (
	"github.com/Dynatrace/openkit-go/cache"
	"github.com/Dynatrace/openkit-go/internal/metrics"
	"github.com/Dynatrace/openkit-go/logger"
)

// SpaceStrategy evicts one record at a time, round-robin across sessions,
// whenever the cache's total byte count exceeds UpperBoundBytes, until it
// falls back to LowerBoundBytes.
//
// The round-robin "one record per session id" loop is grounded on
// proxy.ProxyManager.GetNextProxy's index-rotation idea, generalized from
// rotating proxy strings to rotating session ids: instead of a persistent
// index into a fixed slice, each pass snapshots the current session id set
// and walks it once per inner iteration, which gives the same
// "don't-starve-one-session" guarantee against a set that can change between
// passes.
type SpaceStrategy struct {
	LowerBoundBytes int64
	UpperBoundBytes int64

	// Metrics is optional; a nil value discards every call.
	Metrics *metrics.Metrics
}

// NewSpaceStrategy constructs a SpaceStrategy. Disabled if either bound is
// <= 0 or upper < lower.
func NewSpaceStrategy(lowerBoundBytes, upperBoundBytes int64) *SpaceStrategy {
	return &SpaceStrategy{LowerBoundBytes: lowerBoundBytes, UpperBoundBytes: upperBoundBytes}
}

// Disabled reports whether this strategy is a no-op.
func (s *SpaceStrategy) Disabled() bool {
	return s.LowerBoundBytes <= 0 || s.UpperBoundBytes <= 0 || s.UpperBoundBytes < s.LowerBoundBytes
}

// ShouldRun reports whether the cache is currently over its upper bound.
func (s *SpaceStrategy) ShouldRun(c *cache.BeaconCache) bool {
	if s.Disabled() {
		return false
	}
	return c.TotalBytes() > s.UpperBoundBytes
}

// Execute runs round-robin single-record eviction until the cache falls back
// to the lower bound or alive reports false.
func (s *SpaceStrategy) Execute(c *cache.BeaconCache, alive IsAlive, log *logger.Logger) {
	if s.Disabled() {
		return
	}
	removedPerSession := map[int64]int{}

	for c.TotalBytes() > s.LowerBoundBytes {
		if alive != nil && !alive() {
			break
		}
		ids := c.GetBeaconIDs()
		if len(ids) == 0 {
			break
		}
		progressed := false
		for _, id := range ids {
			if alive != nil && !alive() {
				break
			}
			if c.TotalBytes() <= s.LowerBoundBytes {
				break
			}
			if removed := c.EvictByNumber(id, 1); removed > 0 {
				removedPerSession[id] += removed
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	for id, n := range removedPerSession {
		log.Debugf("eviction: space strategy removed %d record(s) from session %d", n, id)
		s.Metrics.AddRecordsEvicted(n)
	}
}
