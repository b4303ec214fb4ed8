package beacon

import "strings"

// EventType is the closed set of record kinds the wire format recognizes,
// carried in every record as the "et" key.
type EventType int

// The numeric values match the server-side protocol exactly; they are not
// Go-assigned and must never be renumbered.
const (
	// EventTypeAction marks an action's start/end pair.
	EventTypeAction EventType = 1

	// EventTypeNamedEvent marks a caller-reported named event within an
	// action (report_event).
	EventTypeNamedEvent EventType = 10

	// EventTypeValueString marks a string value report (report_value with a
	// string argument).
	EventTypeValueString EventType = 11

	// EventTypeValueInt marks an integer value report.
	EventTypeValueInt EventType = 12

	// EventTypeValueDouble marks a floating-point value report.
	EventTypeValueDouble EventType = 13

	// EventTypeSessionStart marks the first record of a session.
	EventTypeSessionStart EventType = 18

	// EventTypeSessionEnd marks the session's closing record.
	EventTypeSessionEnd EventType = 19

	// EventTypeWebRequest marks a completed traced web request.
	EventTypeWebRequest EventType = 30

	// EventTypeError marks a caller-reported error code.
	EventTypeError EventType = 40

	// EventTypeCrash marks a caller-reported crash report.
	EventTypeCrash EventType = 50

	// EventTypeIdentifyUser marks a user-identification record.
	EventTypeIdentifyUser EventType = 60

	// EventTypeEvent marks a caller-built custom event (send_event). The
	// wire spec leaves this numbering open ("EVENT=…"); 98 was chosen to
	// sit outside every other reserved value without colliding with a
	// future protocol extension in the 61-97 range.
	EventTypeEvent EventType = 98

	// EventTypeBizEvent marks a caller-built business event
	// (send_biz_event), numbered directly after EventTypeEvent for the same
	// reason.
	EventTypeBizEvent EventType = 99
)

// isActionSequence reports whether records of t belong in a session's
// "actions" sequence rather than its "events" sequence. Only the action
// start/end record itself is action-sequenced; everything else (value
// reports, named events, errors, crashes, web requests, session
// start/end, identify-user) is event-sequenced, since it is the action's
// *contents*, not the action span itself.
func isActionSequence(t EventType) bool {
	return t == EventTypeAction
}

// Truncation limits applied before a record is built. Sized to match the
// server's own accepted record limits; exceeding them wastes bandwidth on
// bytes the server discards anyway.
const (
	maxReasonLen      = 1000
	maxStacktraceLen  = 128000
	maxNameOrValueLen = 250
)

// truncateReason truncates s to maxReasonLen bytes.
func truncateReason(s string) string {
	return truncateBytes(s, maxReasonLen)
}

// truncateStacktrace truncates s to maxStacktraceLen bytes, then backs up to
// the last newline before the cut so no line is left partially printed.
func truncateStacktrace(s string) string {
	if len(s) <= maxStacktraceLen {
		return s
	}
	cut := s[:maxStacktraceLen]
	if idx := strings.LastIndexByte(cut, '\n'); idx >= 0 {
		return cut[:idx]
	}
	return cut
}

// truncateField truncates an action name, report key, or report value to
// maxNameOrValueLen bytes.
func truncateField(s string) string {
	return truncateBytes(s, maxNameOrValueLen)
}

func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
