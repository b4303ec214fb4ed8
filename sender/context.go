// Package sender implements the sending state machine (spec C8) and the
// background SenderTask that drives it (spec C9): the single component that
// turns accumulated cache.BeaconCache records into HTTP requests against the
// collector endpoint.
//
// The driving loop shape (ticker/stopCh select, a cancellable single-shot
// sleep) is grounded on token.TokenRefreshManager.StartAutoRefresh; the
// control-goroutine-plus-stop-channel lifecycle is grounded on
// scheduler.Scheduler.Start/Stop.
package sender

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Dynatrace/openkit-go/beacon"
	"github.com/Dynatrace/openkit-go/cache"
	"github.com/Dynatrace/openkit-go/httpclient"
	"github.com/Dynatrace/openkit-go/internal/metrics"
	"github.com/Dynatrace/openkit-go/logger"
	"github.com/Dynatrace/openkit-go/protocol"
)

// HTTPRequester is the narrow seam package sender needs from package
// httpclient, declared here at the point of use so tests can substitute a
// fake without starting a real server.
type HTTPRequester interface {
	StatusRequest(ctx context.Context, baseURL string, query url.Values) (*httpclient.Response, error)
	BeaconRequest(ctx context.Context, baseURL string, query url.Values, body string) (*httpclient.Response, error)
}

var _ HTTPRequester = (*httpclient.Client)(nil)

// SessionLifecycle mirrors spec §4.10's SessionWrapper states.
type SessionLifecycle int

const (
	SessionNew SessionLifecycle = iota
	SessionConfigured
	SessionFinished
	SessionFinishedConfigured
)

// SessionWrapper tracks one session's registration with the sender.
type SessionWrapper struct {
	ID     int64
	Beacon *beacon.Beacon

	mu    sync.Mutex
	state SessionLifecycle
}

func (w *SessionWrapper) State() SessionLifecycle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *SessionWrapper) setState(s SessionLifecycle) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// markConfigured advances New->Configured or Finished->FinishedConfigured.
func (w *SessionWrapper) markConfigured() {
	w.mu.Lock()
	if w.state == SessionFinished {
		w.state = SessionFinishedConfigured
	} else if w.state == SessionNew {
		w.state = SessionConfigured
	}
	w.mu.Unlock()
}

// markFinished advances Configured->FinishedConfigured or New->Finished.
func (w *SessionWrapper) markFinished() {
	w.mu.Lock()
	if w.state == SessionConfigured {
		w.state = SessionFinishedConfigured
	} else {
		w.state = SessionFinished
	}
	w.mu.Unlock()
}

// registry is the session-registry collaborator from spec §4.9/§5: a
// dedicated lock, with iteration always taking a snapshot first so I/O never
// runs while the lock is held.
type registry struct {
	mu       sync.RWMutex
	sessions map[int64]*SessionWrapper
}

func newRegistry() *registry {
	return &registry{sessions: map[int64]*SessionWrapper{}}
}

func (r *registry) add(w *SessionWrapper) {
	r.mu.Lock()
	r.sessions[w.ID] = w
	r.mu.Unlock()
}

func (r *registry) remove(id int64) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *registry) snapshot() []*SessionWrapper {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*SessionWrapper, 0, len(r.sessions))
	for _, w := range r.sessions {
		out = append(out, w)
	}
	return out
}

func (r *registry) byState(s SessionLifecycle) []*SessionWrapper {
	var out []*SessionWrapper
	for _, w := range r.snapshot() {
		if w.State() == s {
			out = append(out, w)
		}
	}
	return out
}

// Config parameterizes the sender's requests and pacing.
type Config struct {
	EndpointURL       string
	ApplicationID     string
	AgentVersion      string
	PlatformType      string
	SendIntervalMs    int64
	InitialRetryDelay time.Duration
}

// Context is the shared state every State.Execute call reads and mutates,
// grounded on the same "context object driving state transitions" shape
// documented in original_source's communication test doubles.
type Context struct {
	Client  HTTPRequester
	Cache   *cache.BeaconCache
	Cfg     Config
	Log     *logger.Logger
	Clock   func() int64
	Drift   *protocol.ConfigDriftDetector
	Metrics *metrics.Metrics

	registry *registry

	attrs atomic.Pointer[protocol.ResponseAttributes]

	stopCh        chan struct{}
	stopOnce      sync.Once
	initCompleted atomic.Bool
	initDone      chan struct{}
	initResult    atomic.Bool

	lastOpenSessionSendMs atomic.Int64
}

// NewContext constructs a fresh Context with default ResponseAttributes
// (capture on) and no registered sessions.
func NewContext(client HTTPRequester, c *cache.BeaconCache, cfg Config, log *logger.Logger, clock func() int64) *Context {
	ctx := &Context{
		Client:   client,
		Cache:    c,
		Cfg:      cfg,
		Log:      log,
		Clock:    clock,
		registry: newRegistry(),
		stopCh:   make(chan struct{}),
		initDone: make(chan struct{}),
	}
	defaults := protocol.DefaultResponseAttributes()
	ctx.attrs.Store(&defaults)
	return ctx
}

// Attributes returns a read-only snapshot of the current ResponseAttributes.
func (c *Context) Attributes() protocol.ResponseAttributes {
	return *c.attrs.Load()
}

// mergeAttributes applies next on top of the current snapshot using the
// was-set-field merge rule and replaces the pointer atomically
// (copy-on-write; see spec §5's "ResponseAttributes: read-mostly" policy).
func (c *Context) mergeAttributes(next protocol.ResponseAttributes) {
	merged := protocol.Merge(c.Attributes(), next)
	c.attrs.Store(&merged)
}

// RegisterSession adds a new session to the registry in state New.
func (c *Context) RegisterSession(w *SessionWrapper) { c.registry.add(w) }

// SessionFinished marks id Finished (or FinishedConfigured).
func (c *Context) SessionFinished(id int64) {
	for _, w := range c.registry.snapshot() {
		if w.ID == id {
			w.markFinished()
			return
		}
	}
}

// now returns the current time in milliseconds via Clock, or 0 if unset.
func (c *Context) now() int64 {
	if c.Clock == nil {
		return 0
	}
	return c.Clock()
}

// Shutdown signals every suspension point to unwind; idempotent.
func (c *Context) Shutdown() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// shuttingDown reports whether Shutdown has been called.
func (c *Context) shuttingDown() bool {
	select {
	case <-c.stopCh:
		return true
	default:
		return false
	}
}

// paceInterval returns send_interval_ms as a time.Duration, the pacing sleep
// used between iterations that found no new work to send.
func (c *Context) paceInterval() time.Duration {
	return time.Duration(c.Cfg.SendIntervalMs) * time.Millisecond
}

// sleep blocks for d or until Shutdown is called, whichever comes first. It
// returns false if the sleep was cut short by shutdown.
func (c *Context) sleep(d time.Duration) bool {
	if d <= 0 {
		return !c.shuttingDown()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-c.stopCh:
		return false
	}
}

// WaitForInit blocks until the Initial state completes (success or
// shutdown) or timeout elapses, returning whether initialization succeeded.
func (c *Context) WaitForInit(timeout time.Duration) bool {
	if timeout <= 0 {
		<-c.initDone
		return c.initResult.Load()
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-c.initDone:
		return c.initResult.Load()
	case <-timer.C:
		return false
	}
}

// IsInitialized reports whether the Initial state has completed
// successfully.
func (c *Context) IsInitialized() bool { return c.initCompleted.Load() }

func (c *Context) completeInit(success bool) {
	c.initResult.Store(success)
	c.initCompleted.Store(success)
	select {
	case <-c.initDone:
	default:
		close(c.initDone)
	}
}

// noteStatusRequest records one status-endpoint call's outcome in Metrics.
func (c *Context) noteStatusRequest(err error, resp *httpclient.Response) {
	c.Metrics.IncrementStatusRequestsSent()
	if err != nil || resp == nil || !resp.Success() {
		c.Metrics.IncrementRequestsFailed()
	}
}

// noteBeaconRequest records one beacon-upload call's outcome in Metrics.
func (c *Context) noteBeaconRequest(err error, resp *httpclient.Response) {
	c.Metrics.IncrementBeaconRequestsSent()
	if err != nil || resp == nil || !resp.Success() {
		c.Metrics.IncrementRequestsFailed()
	}
}

func (c *Context) statusQuery() url.Values {
	v := url.Values{}
	v.Set("type", "m")
	v.Set("app", c.Cfg.ApplicationID)
	v.Set("va", c.Cfg.AgentVersion)
	v.Set("pt", c.Cfg.PlatformType)
	v.Set("tt", "okc")
	return v
}
