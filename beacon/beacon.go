// Package beacon implements the wire-format record serializer (spec C7):
// turning Session/Action/Tracer lifecycle calls into percent-encoded
// key=value records appended to a cache.BeaconCache entry.
//
// Event-type numbering and the documented-constants style for truncation
// limits (eventtype.go) are grounded stylistically on client.NewHTTPClient's
// numbered-rationale doc comments.
package beacon

import (
	"strconv"
	"sync/atomic"

	"github.com/Dynatrace/openkit-go/cache"
	"github.com/Dynatrace/openkit-go/jsonvalue"
	"github.com/Dynatrace/openkit-go/logger"
)

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// Clock returns the current wall-clock time in milliseconds. Records whose
// call site (package objects) does not carry an explicit timestamp — every
// instantaneous report and the session end record — are stamped using Clock
// at serialization time.
type Clock func() int64

// ActionIDSource hands out the process-wide monotonic action id sequence
// shared by every session under one OpenKit instance (the id space is not
// per-session).
type ActionIDSource struct {
	next int64
}

// NewActionIDSource returns an id source starting at 1.
func NewActionIDSource() *ActionIDSource { return &ActionIDSource{} }

// Next returns the next strictly monotonic action id.
func (s *ActionIDSource) Next() int64 { return atomic.AddInt64(&s.next, 1) }

// BasicData holds the per-session fields that prefix every chunk sent for a
// session, built once at beacon construction and never mutated afterward.
type BasicData struct {
	ApplicationID     string
	DeviceID          int64
	AgentVersion      string
	PlatformType      string
	VisitStoreVersion int
	ClientIP          string
}

// Beacon is the concrete serializer bound to one session. It satisfies
// objects.Beacon and additionally exposes Prefix/SessionID for package
// sender's chunk-building use.
type Beacon struct {
	sessionID   int64
	startTimeMs int64
	basic       BasicData

	cache    *cache.BeaconCache
	clock    Clock
	actionID *ActionIDSource
	log      *logger.Logger

	seq int64
}

// New constructs a Beacon that appends records for sessionID into c.
// actionIDs must be shared across every Beacon created by the same OpenKit
// instance so action ids are globally unique.
func New(sessionID int64, startTimeMs int64, basic BasicData, c *cache.BeaconCache, clock Clock, actionIDs *ActionIDSource, log *logger.Logger) *Beacon {
	return &Beacon{
		sessionID:   sessionID,
		startTimeMs: startTimeMs,
		basic:       basic,
		cache:       c,
		clock:       clock,
		actionID:    actionIDs,
		log:         log,
	}
}

// SessionID returns the owning session's id, used by package sender to
// address cache.BeaconCache operations.
func (b *Beacon) SessionID() int64 { return b.sessionID }

// ApplicationID returns the owning OpenKit instance's application id, used
// to build WebRequestTracer tags.
func (b *Beacon) ApplicationID() string { return b.basic.ApplicationID }

// DeviceID returns the owning OpenKit instance's visitor/device id, used to
// build WebRequestTracer tags.
func (b *Beacon) DeviceID() int64 { return b.basic.DeviceID }

// NextSequenceNumber returns the next strictly monotonic sequence number
// shared by this beacon's session and every action/tracer under it.
func (b *Beacon) NextSequenceNumber() int64 { return atomic.AddInt64(&b.seq, 1) }

// NextActionID delegates to the shared process-wide action id source.
func (b *Beacon) NextActionID() int64 { return b.actionID.Next() }

// SessionStartTimeMs returns the session's creation wall-clock time.
func (b *Beacon) SessionStartTimeMs() int64 { return b.startTimeMs }

func (b *Beacon) timeOffset(nowMs int64) int64 { return nowMs - b.startTimeMs }

func (b *Beacon) now() int64 {
	if b.clock == nil {
		return b.startTimeMs
	}
	return b.clock()
}

func (b *Beacon) appendEvent(data string)  { b.cache.AddEvent(b.sessionID, b.now(), data) }
func (b *Beacon) appendAction(data string) { b.cache.AddAction(b.sessionID, b.now(), data) }

func (b *Beacon) append(t EventType, data string) {
	if isActionSequence(t) {
		b.appendAction(data)
	} else {
		b.appendEvent(data)
	}
}

// StartSession appends the session's opening record.
func (b *Beacon) StartSession() {
	seq := b.NextSequenceNumber()
	rec := newRecordBuilder().
		addEventType(EventTypeSessionStart).
		addInt("s0", seq).
		addInt("s1", b.startTimeMs).
		String()
	b.appendEvent(rec)
}

// EndSession appends the session's closing record, stamped with the current
// time via Clock.
func (b *Beacon) EndSession() {
	seq := b.NextSequenceNumber()
	now := b.now()
	rec := newRecordBuilder().
		addEventType(EventTypeSessionEnd).
		addInt("s0", seq).
		addInt("t0", b.timeOffset(now)).
		String()
	b.appendEvent(rec)
}

// StartAction appends an action's opening half-record.
func (b *Beacon) StartAction(actionID, parentActionID int64, name string, startSeq int64, startTimeMs int64) {
	rec := newRecordBuilder().
		addEventType(EventTypeAction).
		add("na", truncateField(name)).
		addInt("ca", actionID).
		addInt("pa", parentActionID).
		addInt("s0", startSeq).
		addInt("t0", b.timeOffset(startTimeMs)).
		String()
	b.appendAction(rec)
}

// EndAction appends an action's record with both its start and end
// sequence/time information.
func (b *Beacon) EndAction(actionID, parentActionID int64, name string, startSeq, endSeq int64, startTimeMs, endTimeMs int64) {
	rec := newRecordBuilder().
		addEventType(EventTypeAction).
		add("na", truncateField(name)).
		addInt("ca", actionID).
		addInt("pa", parentActionID).
		addInt("s0", startSeq).
		addInt("t0", b.timeOffset(startTimeMs)).
		addInt("s1", endSeq).
		addInt("t1", b.timeOffset(endTimeMs)).
		String()
	b.appendAction(rec)
}

// ReportValueInt appends an integer value report scoped to actionID.
func (b *Beacon) ReportValueInt(actionID int64, name string, value int64) {
	b.reportValue(EventTypeValueInt, actionID, name, func(r *recordBuilder) {
		r.addInt("vl", value)
	})
}

// ReportValueDouble appends a floating-point value report.
func (b *Beacon) ReportValueDouble(actionID int64, name string, value float64) {
	b.reportValue(EventTypeValueDouble, actionID, name, func(r *recordBuilder) {
		r.add("vl", formatFloat(value))
	})
}

// ReportValueString appends a string value report, truncating the value to
// 250 bytes like the key.
func (b *Beacon) ReportValueString(actionID int64, name string, value string) {
	b.reportValue(EventTypeValueString, actionID, name, func(r *recordBuilder) {
		r.add("vl", truncateField(value))
	})
}

func (b *Beacon) reportValue(t EventType, actionID int64, name string, addValue func(*recordBuilder)) {
	seq := b.NextSequenceNumber()
	r := newRecordBuilder().
		addEventType(t).
		add("na", truncateField(name)).
		addInt("ca", actionID).
		addInt("s0", seq).
		addInt("t0", b.timeOffset(b.now()))
	addValue(r)
	b.append(t, r.String())
}

// ReportNamedEvent appends a named-event record.
func (b *Beacon) ReportNamedEvent(actionID int64, name string) {
	seq := b.NextSequenceNumber()
	rec := newRecordBuilder().
		addEventType(EventTypeNamedEvent).
		add("na", truncateField(name)).
		addInt("ca", actionID).
		addInt("s0", seq).
		addInt("t0", b.timeOffset(b.now())).
		String()
	b.appendEvent(rec)
}

// ReportError appends an error record.
func (b *Beacon) ReportError(actionID int64, name string, code int32) {
	seq := b.NextSequenceNumber()
	rec := newRecordBuilder().
		addEventType(EventTypeError).
		add("na", truncateField(name)).
		addInt("ca", actionID).
		addInt("s0", seq).
		addInt("t0", b.timeOffset(b.now())).
		addInt("ec", int64(code)).
		String()
	b.appendEvent(rec)
}

// ReportCrash appends a crash record; reason and stacktrace are truncated
// per the wire-format limits before encoding.
func (b *Beacon) ReportCrash(name, reason, stacktrace string) {
	seq := b.NextSequenceNumber()
	rec := newRecordBuilder().
		addEventType(EventTypeCrash).
		add("na", name).
		addInt("ca", 0).
		addInt("s0", seq).
		addInt("t0", b.timeOffset(b.now())).
		add("rs", truncateReason(reason)).
		add("st", truncateStacktrace(stacktrace)).
		String()
	b.appendEvent(rec)
}

// IdentifyUser appends a user-identification record.
func (b *Beacon) IdentifyUser(tag string) {
	seq := b.NextSequenceNumber()
	rec := newRecordBuilder().
		addEventType(EventTypeIdentifyUser).
		add("na", tag).
		addInt("s0", seq).
		addInt("t0", b.timeOffset(b.now())).
		String()
	b.appendEvent(rec)
}

// ReportWebRequest appends a completed web-request trace record.
func (b *Beacon) ReportWebRequest(actionID int64, url string, startSeq, endSeq int64, bytesSent, bytesReceived int64, responseCode int32) {
	rec := newRecordBuilder().
		addEventType(EventTypeWebRequest).
		add("na", url).
		addInt("ca", actionID).
		addInt("s0", startSeq).
		addInt("s1", endSeq).
		addInt("bs", bytesSent).
		addInt("br", bytesReceived).
		addInt("rc", int64(responseCode)).
		String()
	b.appendEvent(rec)
}

// SendEvent appends a custom-event record carrying payload as its "pl" JSON
// body.
func (b *Beacon) SendEvent(payload jsonvalue.Value) {
	b.sendBuiltEvent(EventTypeEvent, payload)
}

// SendBizEvent appends a business-event record. eventType is already baked
// into payload's "event.provider" field by package objects; it is unused
// here beyond matching objects.Beacon's signature.
func (b *Beacon) SendBizEvent(eventType string, payload jsonvalue.Value) {
	b.sendBuiltEvent(EventTypeBizEvent, payload)
}

func (b *Beacon) sendBuiltEvent(t EventType, payload jsonvalue.Value) {
	seq := b.NextSequenceNumber()
	rec := newRecordBuilder().
		addEventType(t).
		addInt("s0", seq).
		addInt("t0", b.timeOffset(b.now())).
		add("pl", jsonvalue.Write(payload)).
		String()
	b.appendEvent(rec)
}
