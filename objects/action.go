package objects

// ActionHandle is the public surface of both RootAction/Action and their
// no-op counterpart, so callers never need a type switch.
type ActionHandle interface {
	ReportValueInt(name string, value int64)
	ReportValueDouble(name string, value float64)
	ReportValueString(name string, value string)
	ReportEvent(name string)
	ReportError(name string, code int32)
	TraceWebRequest(rawURL string, nowMs int64) WebRequestTracerHandle
	EnterAction(name string, nowMs int64) ActionHandle
	Leave(nowMs int64)
	Cancel()
}

// NullAction is the no-op ActionHandle returned once a session has ended or
// nesting would exceed the two-level limit.
type NullAction struct{}

func (NullAction) ReportValueInt(string, int64)                          {}
func (NullAction) ReportValueDouble(string, float64)                     {}
func (NullAction) ReportValueString(string, string)                      {}
func (NullAction) ReportEvent(string)                                    {}
func (NullAction) ReportError(string, int32)                             {}
func (NullAction) TraceWebRequest(string, int64) WebRequestTracerHandle  { return NullWebRequestTracer{} }
func (NullAction) EnterAction(string, int64) ActionHandle                { return NullAction{} }
func (NullAction) Leave(int64)                                           {}
func (NullAction) Cancel()                                               {}

// action is the shared implementation behind RootAction and leaf Action.
// depth 0 is a RootAction (direct child of a session, may enter one more
// level); depth 1 is a leaf Action (enter_action on it is a no-op).
type action struct {
	compositeBase

	id             int64
	parentActionID int64
	name           string
	depth          int

	session *Session
	beacon  Beacon

	startSeq    int64
	startTimeMs int64

	closed   bool
	leftOnce bool

	remover func(closable)
}

func newRootAction(s *Session, name string, nowMs int64) *action {
	a := &action{
		id:          s.beacon.NextActionID(),
		name:        name,
		depth:       0,
		session:     s,
		beacon:      s.beacon,
		startSeq:    s.beacon.NextSequenceNumber(),
		startTimeMs: nowMs,
		remover:     s.removeChildPublic,
	}
	s.beacon.StartAction(a.id, 0, a.name, a.startSeq, a.startTimeMs)
	return a
}

// EnterAction creates a leaf Action as a child of a, unless a is already a
// leaf (depth >= 1) or has been left/cancelled, in which case it returns a
// NullAction — nesting beyond two levels is not permitted.
func (a *action) EnterAction(name string, nowMs int64) ActionHandle {
	if a.depth >= 1 || a.isClosed() || name == "" {
		return NullAction{}
	}
	child := &action{
		id:             a.beacon.NextActionID(),
		parentActionID: a.id,
		name:           name,
		depth:          a.depth + 1,
		session:        a.session,
		beacon:         a.beacon,
		startSeq:       a.beacon.NextSequenceNumber(),
		startTimeMs:    nowMs,
		remover:        a.removeChild,
	}
	a.beacon.StartAction(child.id, child.parentActionID, child.name, child.startSeq, child.startTimeMs)
	a.addChild(child)
	return child
}

func (a *action) isClosed() bool {
	a.compositeBase.mu.Lock()
	defer a.compositeBase.mu.Unlock()
	return a.closed
}

// reportIfOpen runs fn only if the action hasn't left or been cancelled yet;
// reports between leave and cancel are silently dropped per the spec.
func (a *action) reportIfOpen(fn func()) {
	if a.isClosed() {
		return
	}
	fn()
}

func (a *action) ReportValueInt(name string, value int64) {
	a.reportIfOpen(func() { a.beacon.ReportValueInt(a.id, name, value) })
}

func (a *action) ReportValueDouble(name string, value float64) {
	a.reportIfOpen(func() { a.beacon.ReportValueDouble(a.id, name, value) })
}

func (a *action) ReportValueString(name string, value string) {
	a.reportIfOpen(func() { a.beacon.ReportValueString(a.id, name, value) })
}

func (a *action) ReportEvent(name string) {
	a.reportIfOpen(func() { a.beacon.ReportNamedEvent(a.id, name) })
}

func (a *action) ReportError(name string, code int32) {
	a.reportIfOpen(func() { a.beacon.ReportError(a.id, name, code) })
}

func (a *action) TraceWebRequest(rawURL string, nowMs int64) WebRequestTracerHandle {
	if a.isClosed() {
		return NullWebRequestTracer{}
	}
	return newWebRequestTracerForAction(a, a.beacon, rawURL, nowMs)
}

// Leave finalizes the action: closes remaining children, emits the
// action-end record, and removes itself from its parent.
func (a *action) Leave(nowMs int64) {
	a.compositeBase.mu.Lock()
	if a.closed {
		a.compositeBase.mu.Unlock()
		return
	}
	a.closed = true
	a.leftOnce = true
	a.compositeBase.mu.Unlock()

	a.closeChildren()
	endSeq := a.beacon.NextSequenceNumber()
	a.beacon.EndAction(a.id, a.parentActionID, a.name, a.startSeq, endSeq, a.startTimeMs, nowMs)
	if a.remover != nil {
		a.remover(a)
	}
}

// Cancel discards the action and recursively cancels children; no end
// record is emitted.
func (a *action) Cancel() {
	a.compositeBase.mu.Lock()
	if a.closed {
		a.compositeBase.mu.Unlock()
		return
	}
	a.closed = true
	a.compositeBase.mu.Unlock()

	a.compositeBase.mu.Lock()
	remaining := a.children
	a.children = nil
	a.compositeBase.mu.Unlock()
	for i := len(remaining) - 1; i >= 0; i-- {
		if child, ok := remaining[i].(*action); ok {
			child.Cancel()
			continue
		}
		remaining[i].closeForced()
	}

	if a.remover != nil {
		a.remover(a)
	}
}

func (a *action) closeForced() { a.Leave(a.startTimeMs) }
