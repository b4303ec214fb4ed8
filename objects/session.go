package objects

import "sync"

// SessionState mirrors the session lifecycle table: a session starts New,
// becomes Configured once a server response attaches configuration, and
// becomes Finished (or FinishedAndConfigured) once ended.
type SessionState int

const (
	SessionStateNew SessionState = iota
	SessionStateConfigured
	SessionStateFinished
	SessionStateFinishedAndConfigured
)

// Session is a logical visit: the root of an OpenKit instance's per-visit
// object graph. Its mutable fields (state, last user tag, end timestamp)
// are guarded by an RWMutex exactly as session.Session guards its own
// Headers/State/LastActivity; ID, StartTimeMs and ClientIP are fixed at
// construction and read without a lock.
type Session struct {
	compositeBase

	ID          int64
	StartTimeMs int64
	ClientIP    string

	beacon Beacon
	device DeviceInfo
	onEnd  func()

	mu          sync.RWMutex
	state       SessionState
	endTimeMs   int64
	lastUserTag string
}

// NewSession constructs a Session bound to beacon. onEnd, if non-nil, is
// invoked once when the session finishes, so the façade that created it can
// remove it from its own registry.
func NewSession(id int64, clientIP string, startTimeMs int64, beacon Beacon, device DeviceInfo, onEnd func()) *Session {
	s := &Session{
		ID:          id,
		StartTimeMs: startTimeMs,
		ClientIP:    clientIP,
		beacon:      beacon,
		device:      device,
		onEnd:       onEnd,
	}
	beacon.StartSession()
	return s
}

// State returns the session's current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ApplyConfiguration marks the session Configured (or FinishedAndConfigured
// if it has already ended).
func (s *Session) ApplyConfiguration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionStateFinished {
		s.state = SessionStateFinishedAndConfigured
	} else if s.state == SessionStateNew {
		s.state = SessionStateConfigured
	}
}

// IsEnded reports whether End has already been called.
func (s *Session) IsEnded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endTimeMs != 0
}

// EnterAction creates a new RootAction as a direct child of the session. A
// session that has already ended returns a NullAction (a no-op).
func (s *Session) EnterAction(name string, nowMs int64) ActionHandle {
	if s.IsEnded() || name == "" {
		return NullAction{}
	}
	a := newRootAction(s, name, nowMs)
	s.addChild(a)
	return a
}

// IdentifyUser records tag as the session's user identity and emits an
// identify-user record. An empty tag logs the user out; per the spec this
// still emits a record (with an empty tag) and clears the remembered tag.
func (s *Session) IdentifyUser(tag string) {
	if s.IsEnded() {
		return
	}
	s.mu.Lock()
	s.lastUserTag = tag
	s.mu.Unlock()
	s.beacon.IdentifyUser(tag)
}

// LastUserTag returns the most recently identified user tag, or an empty
// string after a logout. Sessions are never split in this module, so nothing
// re-applies it to a new session.
func (s *Session) LastUserTag() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUserTag
}

// TraceWebRequest creates a WebRequestTracer as a direct child of the
// session. Returns a no-op tracer if rawURL fails the scheme check or the
// session has ended.
func (s *Session) TraceWebRequest(rawURL string, nowMs int64) WebRequestTracerHandle {
	if s.IsEnded() {
		return NullWebRequestTracer{}
	}
	return newWebRequestTracer(s, s.beacon, rawURL, nowMs)
}

// ReportCrash emits a session-level crash record; it is not scoped to any
// action, per the spec's crash-reporting semantics.
func (s *Session) ReportCrash(name, reason, stacktrace string) {
	if s.IsEnded() || name == "" {
		return
	}
	s.beacon.ReportCrash(name, reason, stacktrace)
}

// SendEvent serializes and appends a custom event built from name and
// attrs via this package's reserved-key and finiteness rules (see
// buildEventPayload).
func (s *Session) SendEvent(name string, attrs map[string]any, nowMs int64) {
	if s.IsEnded() || name == "" {
		return
	}
	payload, ok := buildEventPayload("custom", name, s.device, attrs, nowMs)
	if !ok {
		return
	}
	s.beacon.SendEvent(payload)
}

// SendBizEvent is SendEvent's business-event counterpart.
func (s *Session) SendBizEvent(eventType string, attrs map[string]any, nowMs int64) {
	if s.IsEnded() || eventType == "" {
		return
	}
	payload, ok := buildEventPayload("biz", eventType, s.device, attrs, nowMs)
	if !ok {
		return
	}
	s.beacon.SendBizEvent(eventType, payload)
}

// End finalizes the session: closes all remaining open children in reverse
// insertion order, emits the session-end record, and invokes onEnd.
func (s *Session) End(nowMs int64) {
	s.mu.Lock()
	if s.endTimeMs != 0 {
		s.mu.Unlock()
		return
	}
	s.endTimeMs = nowMs
	if s.state == SessionStateConfigured {
		s.state = SessionStateFinishedAndConfigured
	} else {
		s.state = SessionStateFinished
	}
	s.mu.Unlock()

	s.closeChildren()
	s.beacon.EndSession()
	if s.onEnd != nil {
		s.onEnd()
	}
}

func (s *Session) closeForced() { s.End(0) }

// removeChildPublic lets an Action/Tracer remove itself from the session
// when it closes.
func (s *Session) removeChildPublic(c closable) { s.removeChild(c) }
