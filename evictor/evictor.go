// Package evictor runs the beacon cache's two eviction strategies on a
// single background worker, woken by cache mutations rather than polling.
//
// The stopCh+sync.Once/atomic-flag background-loop shape is grounded on
// token.HeartbeatManager's Start/Stop/loop: an idempotent Start launches
// exactly one goroutine, Stop closes a channel to unblock it, and both are
// safe to call repeatedly. The wakeup mechanism itself is generalized from a
// ticker to a buffered signal channel so that multiple cache-mutation
// notifications arriving between two wakeups coalesce into a single pass
// (edge-triggered), matching the "one signal per cache mutation, multiple
// signals fuse into one wakeup" requirement.
package evictor

import (
	"sync"
	"sync/atomic"

	"github.com/Dynatrace/openkit-go/cache"
	"github.com/Dynatrace/openkit-go/eviction"
	"github.com/Dynatrace/openkit-go/logger"
)

// Metrics-aware strategies are wired by the caller directly onto
// eviction.TimeStrategy.Metrics/eviction.SpaceStrategy.Metrics before
// passing them to New; the Evictor itself stays metrics-agnostic.

// Evictor is the single background worker that keeps the beacon cache within
// its configured age and size bounds.
type Evictor struct {
	cache *cache.BeaconCache
	time  *eviction.TimeStrategy
	space *eviction.SpaceStrategy
	log   *logger.Logger

	signalCh chan struct{}
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  atomic.Bool
}

// New constructs an Evictor over c using the given strategies. Either
// strategy may be nil/disabled.
func New(c *cache.BeaconCache, timeStrategy *eviction.TimeStrategy, spaceStrategy *eviction.SpaceStrategy, log *logger.Logger) *Evictor {
	return &Evictor{
		cache: c,
		time:  timeStrategy,
		space: spaceStrategy,
		log:   log,
	}
}

// Start launches the background worker and registers it as a cache observer.
// Starting an already-running evictor is a no-op that returns false.
func (e *Evictor) Start() bool {
	if !e.running.CompareAndSwap(false, true) {
		return false
	}
	e.signalCh = make(chan struct{}, 1)
	e.stopCh = make(chan struct{})
	e.cache.AddObserver(e)

	e.wg.Add(1)
	go e.loop()
	return true
}

// Stop signals the worker to exit and waits for it to do so. Stopping a
// not-running evictor is a no-op that returns false.
func (e *Evictor) Stop() bool {
	if !e.running.CompareAndSwap(true, false) {
		return false
	}
	close(e.stopCh)
	e.wg.Wait()
	return true
}

// OnBeaconCacheUpdated implements cache.Observer. It is edge-triggered: a
// full signal channel means a wakeup is already pending, so the send is
// dropped rather than blocking.
func (e *Evictor) OnBeaconCacheUpdated() {
	select {
	case e.signalCh <- struct{}{}:
	default:
	}
}

func (e *Evictor) loop() {
	defer e.wg.Done()
	for {
		select {
		case <-e.stopCh:
			return
		case <-e.signalCh:
			e.runOnePass()
		}
	}
}

func (e *Evictor) runOnePass() {
	alive := func() bool { return e.running.Load() }
	if e.time != nil {
		e.time.Execute(e.cache, e.log)
	}
	if e.space != nil && e.space.ShouldRun(e.cache) {
		e.space.Execute(e.cache, alive, e.log)
	}
}
