// Package protocol decodes server responses into ResponseAttributes, either
// from the legacy "type=m&..." key-value wire format or from JSON, and
// merges a newly decoded response into the currently held attributes.
package protocol

import "strings"

// attributeField identifies one mergeable field of ResponseAttributes; used
// as a bit position in the was-set bitset.
type attributeField uint

const (
	fieldMaxBeaconSizeBytes attributeField = iota
	fieldMaxSessionDurationMs
	fieldMaxEventsPerSession
	fieldSessionTimeoutMs
	fieldSendIntervalMs
	fieldVisitStoreVersion
	fieldCapture
	fieldCaptureCrashes
	fieldCaptureErrors
	fieldTrafficControlPercentage
	fieldApplicationID
	fieldMultiplicity
	fieldServerID
	fieldStatus
	fieldTimestamp
)

// ResponseAttributes is the immutable record decoded from a server response.
type ResponseAttributes struct {
	MaxBeaconSizeBytes        int64
	MaxSessionDurationMs      int64
	MaxEventsPerSession       int64
	SessionTimeoutMs          int64
	SendIntervalMs            int64
	VisitStoreVersion         int64
	Capture                   bool
	CaptureCrashes            bool
	CaptureErrors             bool
	TrafficControlPercentage  int64
	ApplicationID             string
	Multiplicity              int64
	ServerID                  int64
	Status                    string
	TimestampMs               int64

	wasSet map[attributeField]bool
}

// DefaultResponseAttributes returns the baseline attributes a freshly
// constructed sender starts from: capturing is on and nothing has been
// asserted by a server yet, so a later merge always wins.
func DefaultResponseAttributes() ResponseAttributes {
	return ResponseAttributes{
		Capture:        true,
		CaptureCrashes: true,
		CaptureErrors:  true,
		wasSet:         map[attributeField]bool{},
	}
}

func (r *ResponseAttributes) set(f attributeField) {
	if r.wasSet == nil {
		r.wasSet = map[attributeField]bool{}
	}
	r.wasSet[f] = true
}

// isSet reports whether the given field was explicitly asserted by the
// response this ResponseAttributes was decoded from.
func (r ResponseAttributes) isSet(f attributeField) bool {
	return r.wasSet[f]
}

// Merge returns the result of overlaying next onto current: for every field
// whose was-set bit is set in next, next's value wins; otherwise current's
// value is kept. The was-set bitset of the result is the union of both.
func Merge(current, next ResponseAttributes) ResponseAttributes {
	merged := current
	merged.wasSet = unionSet(current.wasSet, next.wasSet)

	take := func(f attributeField, assign func()) {
		if next.isSet(f) {
			assign()
		}
	}
	take(fieldMaxBeaconSizeBytes, func() { merged.MaxBeaconSizeBytes = next.MaxBeaconSizeBytes })
	take(fieldMaxSessionDurationMs, func() { merged.MaxSessionDurationMs = next.MaxSessionDurationMs })
	take(fieldMaxEventsPerSession, func() { merged.MaxEventsPerSession = next.MaxEventsPerSession })
	take(fieldSessionTimeoutMs, func() { merged.SessionTimeoutMs = next.SessionTimeoutMs })
	take(fieldSendIntervalMs, func() { merged.SendIntervalMs = next.SendIntervalMs })
	take(fieldVisitStoreVersion, func() { merged.VisitStoreVersion = next.VisitStoreVersion })
	take(fieldCapture, func() { merged.Capture = next.Capture })
	take(fieldCaptureCrashes, func() { merged.CaptureCrashes = next.CaptureCrashes })
	take(fieldCaptureErrors, func() { merged.CaptureErrors = next.CaptureErrors })
	take(fieldTrafficControlPercentage, func() { merged.TrafficControlPercentage = next.TrafficControlPercentage })
	take(fieldApplicationID, func() { merged.ApplicationID = next.ApplicationID })
	take(fieldMultiplicity, func() { merged.Multiplicity = next.Multiplicity })
	take(fieldServerID, func() { merged.ServerID = next.ServerID })
	take(fieldStatus, func() { merged.Status = next.Status })
	take(fieldTimestamp, func() { merged.TimestampMs = next.TimestampMs })
	return merged
}

func unionSet(a, b map[attributeField]bool) map[attributeField]bool {
	out := make(map[attributeField]bool, len(a)+len(b))
	for k, v := range a {
		if v {
			out[k] = true
		}
	}
	for k, v := range b {
		if v {
			out[k] = true
		}
	}
	return out
}

// isLegacyResponse reports whether text is the legacy "type=m&..." key-value
// wire format rather than a JSON document.
func isLegacyResponse(text string) bool {
	return text == "type=m" || strings.HasPrefix(text, "type=m&")
}
