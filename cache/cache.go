// Package cache implements the beacon cache: an in-memory, per-session
// buffer of serialized event and action records awaiting transmission.
//
// Entry creation and lookup are grounded on session.SessionManager's
// map[int]*Session guarded by a sync.RWMutex, generalized here to
// map[int64]*entry. A per-entry mutex (see entry.go) guards each session's
// four record sequences and byte counter independently so that sending one
// session's chunk never blocks another session's producers.
package cache

import (
	"sync"
	"sync/atomic"
)

// Observer is notified after a cache mutation that a consumer might care
// about (an evictor waking up to check its thresholds). Observers are
// invoked outside any entry lock to avoid reentrancy deadlocks.
type Observer interface {
	OnBeaconCacheUpdated()
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func()

// OnBeaconCacheUpdated implements Observer.
func (f ObserverFunc) OnBeaconCacheUpdated() { f() }

// BeaconCache is the central per-session record store described above.
type BeaconCache struct {
	mu      sync.RWMutex
	entries map[int64]*entry

	totalBytes int64

	obsMu     sync.Mutex
	observers []Observer
}

// New creates an empty BeaconCache.
func New() *BeaconCache {
	return &BeaconCache{entries: make(map[int64]*entry)}
}

// AddObserver registers o to be notified after every cache mutation that
// originates from AddEvent/AddAction/ResetChunkedData.
func (c *BeaconCache) AddObserver(o Observer) {
	c.obsMu.Lock()
	c.observers = append(c.observers, o)
	c.obsMu.Unlock()
}

func (c *BeaconCache) notifyObservers() {
	c.obsMu.Lock()
	obs := make([]Observer, len(c.observers))
	copy(obs, c.observers)
	c.obsMu.Unlock()

	for _, o := range obs {
		o.OnBeaconCacheUpdated()
	}
}

func (c *BeaconCache) getOrCreateEntry(sessionID int64) *entry {
	c.mu.RLock()
	e, ok := c.entries[sessionID]
	c.mu.RUnlock()
	if ok {
		return e
	}

	c.mu.Lock()
	e, ok = c.entries[sessionID]
	if !ok {
		e = newEntry()
		c.entries[sessionID] = e
	}
	c.mu.Unlock()
	return e
}

// AddEvent appends a new event record for sessionID and signals observers
// exactly once.
func (c *BeaconCache) AddEvent(sessionID int64, ts int64, data string) {
	r := record{ts: ts, data: data}
	e := c.getOrCreateEntry(sessionID)
	e.addEvent(r)
	atomic.AddInt64(&c.totalBytes, r.byteSize())
	c.notifyObservers()
}

// AddAction appends a new action record for sessionID and signals observers
// exactly once.
func (c *BeaconCache) AddAction(sessionID int64, ts int64, data string) {
	r := record{ts: ts, data: data}
	e := c.getOrCreateEntry(sessionID)
	e.addAction(r)
	atomic.AddInt64(&c.totalBytes, r.byteSize())
	c.notifyObservers()
}

// DeleteEntry removes sessionID's entry entirely. Does NOT signal observers.
func (c *BeaconCache) DeleteEntry(sessionID int64) {
	c.mu.Lock()
	e, ok := c.entries[sessionID]
	if ok {
		delete(c.entries, sessionID)
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	e.mu.Lock()
	removed := e.totalBytes
	e.mu.Unlock()
	atomic.AddInt64(&c.totalBytes, -removed)
}

// GetNextChunk builds the next send chunk for sessionID. See entry.nextChunk
// for the exact construction rule.
func (c *BeaconCache) GetNextChunk(sessionID int64, prefix string, maxBytes int, separator string) string {
	e, ok := c.lookup(sessionID)
	if !ok {
		return ""
	}
	return e.nextChunk(prefix, maxBytes, separator)
}

// RemoveChunkedData discards sessionID's being-sent buffers (successful
// transmission path).
func (c *BeaconCache) RemoveChunkedData(sessionID int64) {
	e, ok := c.lookup(sessionID)
	if !ok {
		return
	}
	before := e.snapshotBytes()
	e.removeChunkedData()
	after := e.snapshotBytes()
	atomic.AddInt64(&c.totalBytes, after-before)
}

// ResetChunkedData restores sessionID's being-sent buffers to the head of
// their sequences (failed transmission path) and signals observers.
func (c *BeaconCache) ResetChunkedData(sessionID int64) {
	e, ok := c.lookup(sessionID)
	if !ok {
		return
	}
	before := e.snapshotBytes()
	e.resetChunkedData()
	after := e.snapshotBytes()
	atomic.AddInt64(&c.totalBytes, after-before)
	c.notifyObservers()
}

// EvictByAge drops records with ts < minTSExclusive from sessionID's front
// sequences, returning the count removed.
func (c *BeaconCache) EvictByAge(sessionID int64, minTSExclusive int64) int {
	e, ok := c.lookup(sessionID)
	if !ok {
		return 0
	}
	before := e.snapshotBytes()
	removed := e.evictByAge(minTSExclusive)
	after := e.snapshotBytes()
	atomic.AddInt64(&c.totalBytes, after-before)
	return removed
}

// EvictByNumber removes up to n records total from sessionID's front
// sequences, returning the count removed.
func (c *BeaconCache) EvictByNumber(sessionID int64, n int) int {
	e, ok := c.lookup(sessionID)
	if !ok {
		return 0
	}
	before := e.snapshotBytes()
	removed := e.evictByNumber(n)
	after := e.snapshotBytes()
	atomic.AddInt64(&c.totalBytes, after-before)
	return removed
}

// GetBeaconIDs returns a snapshot of session ids with non-empty entries.
func (c *BeaconCache) GetBeaconIDs() []int64 {
	c.mu.RLock()
	ids := make([]int64, 0, len(c.entries))
	entries := make([]*entry, 0, len(c.entries))
	for id, e := range c.entries {
		ids = append(ids, id)
		entries = append(entries, e)
	}
	c.mu.RUnlock()

	out := ids[:0]
	for i, id := range ids {
		if !entries[i].isEmpty() {
			out = append(out, id)
		}
	}
	return out
}

// IsEmpty reports whether sessionID has no pending events or actions.
func (c *BeaconCache) IsEmpty(sessionID int64) bool {
	e, ok := c.lookup(sessionID)
	if !ok {
		return true
	}
	return e.isEmpty()
}

// TotalBytes returns the cache-wide byte total across all entries.
func (c *BeaconCache) TotalBytes() int64 {
	return atomic.LoadInt64(&c.totalBytes)
}

func (c *BeaconCache) lookup(sessionID int64) (*entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[sessionID]
	c.mu.RUnlock()
	return e, ok
}

func (e *entry) snapshotBytes() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalBytes
}
