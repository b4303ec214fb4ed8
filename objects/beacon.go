package objects

import "github.com/Dynatrace/openkit-go/jsonvalue"

// Beacon is the subset of package beacon's serializer that the composite
// model needs in order to turn lifecycle mutations into wire records. The
// interface is declared here, at the point of use, rather than in package
// beacon, so that objects does not import beacon: beacon's serializer
// depends on objects' id/timestamp-generating rules only through this
// narrow seam.
type Beacon interface {
	// NextSequenceNumber returns the next strictly monotonic sequence number
	// for this beacon (shared by a session and all its actions/tracers).
	NextSequenceNumber() int64

	// NextActionID returns the next strictly monotonic action id for the
	// owning OpenKit instance.
	NextActionID() int64

	// SessionStartTimeMs is the wall-clock time (ms) the owning session was
	// created, used to compute time offsets in emitted records.
	SessionStartTimeMs() int64

	// ApplicationID and DeviceID identify the owning OpenKit instance and
	// visitor, used to build WebRequestTracer tags.
	ApplicationID() string
	DeviceID() int64

	StartSession()
	EndSession()

	StartAction(actionID, parentActionID int64, name string, startSeq int64, startTimeMs int64)
	EndAction(actionID, parentActionID int64, name string, startSeq, endSeq int64, startTimeMs, endTimeMs int64)

	ReportValueInt(actionID int64, name string, value int64)
	ReportValueDouble(actionID int64, name string, value float64)
	ReportValueString(actionID int64, name string, value string)
	ReportNamedEvent(actionID int64, name string)
	ReportError(actionID int64, name string, code int32)
	ReportCrash(name, reason, stacktrace string)

	IdentifyUser(tag string)

	ReportWebRequest(actionID int64, url string, startSeq, endSeq int64, bytesSent, bytesReceived int64, responseCode int32)

	// SendEvent and SendBizEvent serialize a pre-built JSON payload as a
	// custom/business event record.
	SendEvent(payload jsonvalue.Value)
	SendBizEvent(eventType string, payload jsonvalue.Value)
}
