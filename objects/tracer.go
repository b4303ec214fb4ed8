package objects

import (
	"net/url"
	"regexp"
	"strconv"
	"sync"
)

// schemePattern matches the accepted URL scheme grammar: a letter followed
// by letters, digits, '+', '-' or '.', then "://".
var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+\-.]*://`)

// WebRequestTracerHandle is the public surface of both WebRequestTracer and
// its no-op counterpart.
type WebRequestTracerHandle interface {
	Start(nowMs int64)
	Stop(responseCode int32, bytesSent, bytesReceived int64, nowMs int64)
	Tag() string
}

// NullWebRequestTracer is returned for any URL that fails the scheme check.
type NullWebRequestTracer struct{}

func (NullWebRequestTracer) Start(int64)                    {}
func (NullWebRequestTracer) Stop(int32, int64, int64, int64) {}
func (NullWebRequestTracer) Tag() string                     { return "" }

// WebRequestTracer traces one outgoing HTTP request's lifetime and size.
// Its URL is reported with query and fragment stripped, per the tracing
// rules: accept only schemes matching [A-Za-z][A-Za-z0-9+\-.]*://.
type WebRequestTracer struct {
	url    string
	tag    string
	startSeq int64
	beacon   Beacon
	actionID int64

	mu     sync.Mutex
	closed bool
	remove func(closable)
}

func newWebRequestTracer(s *Session, beacon Beacon, rawURL string, nowMs int64) WebRequestTracerHandle {
	return buildTracer(s, beacon, 0, rawURL, nowMs, s.removeChildPublic)
}

func newWebRequestTracerForAction(a *action, beacon Beacon, rawURL string, nowMs int64) WebRequestTracerHandle {
	return buildTracer(a.session, beacon, a.id, rawURL, nowMs, a.removeChild)
}

func buildTracer(s *Session, beacon Beacon, actionID int64, rawURL string, nowMs int64, remove func(closable)) WebRequestTracerHandle {
	if !schemePattern.MatchString(rawURL) {
		return NullWebRequestTracer{}
	}
	cleaned := stripQueryAndFragment(rawURL)
	t := &WebRequestTracer{
		url:      cleaned,
		tag:      buildTag(beacon.ApplicationID(), beacon.DeviceID(), s.ID, beacon.NextSequenceNumber(), actionID),
		beacon:   beacon,
		actionID: actionID,
		remove:   remove,
	}
	s.addChild(t)
	return t
}

func stripQueryAndFragment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.Scheme + "://" + u.Host + u.Path
}

// buildTag builds the opaque tag string propagated to a traced server:
// OpenKit@app@visitor@session@seq@actionId. appID is carried verbatim and
// unescaped; OpenKit construction only checks that it is non-empty, so an
// '@' inside it is not rejected.
func buildTag(appID string, deviceID, sessionID, seq, actionID int64) string {
	return "OpenKit@" + appID +
		"@" + strconv.FormatInt(deviceID, 10) +
		"@" + strconv.FormatInt(sessionID, 10) +
		"@" + strconv.FormatInt(seq, 10) +
		"@" + strconv.FormatInt(actionID, 10)
}

// Tag returns the opaque string identifying this trace for propagation to
// the traced server.
func (t *WebRequestTracer) Tag() string { return t.tag }

// Start marks the beginning of the traced request.
func (t *WebRequestTracer) Start(nowMs int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.startSeq = t.beacon.NextSequenceNumber()
}

// Stop finalizes the tracer with its outcome and removes it from its parent.
func (t *WebRequestTracer) Stop(responseCode int32, bytesSent, bytesReceived int64, nowMs int64) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	endSeq := t.beacon.NextSequenceNumber()
	t.beacon.ReportWebRequest(t.actionID, t.url, t.startSeq, endSeq, bytesSent, bytesReceived, responseCode)
	if t.remove != nil {
		t.remove(t)
	}
}

func (t *WebRequestTracer) closeForced() { t.Stop(0, 0, 0, 0) }
