package protocol_test

import (
	"testing"

	"github.com/Dynatrace/openkit-go/protocol"
)

func TestParse_JSONFullMapping(t *testing.T) {
	text := `{
		"mobileAgentConfig": {
			"maxBeaconSizeKb": 150,
			"maxSessionDurationMins": 2,
			"maxEventsPerSession": 500,
			"sessionTimeoutSec": 600,
			"sendIntervalSec": 120,
			"visitStoreVersion": 2
		},
		"appConfig": {
			"capture": 1,
			"reportCrashes": 1,
			"reportErrors": 0,
			"trafficControlPercentage": 50,
			"applicationId": "app-1"
		},
		"dynamicConfig": {
			"multiplicity": 3,
			"serverId": 9,
			"status": "monitoring"
		},
		"timestamp": 1710000000000
	}`
	attrs, err := protocol.Parse(text, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attrs.MaxBeaconSizeBytes != 150*1024 {
		t.Errorf("MaxBeaconSizeBytes: got %d", attrs.MaxBeaconSizeBytes)
	}
	if attrs.MaxSessionDurationMs != 2*60000 {
		t.Errorf("MaxSessionDurationMs: got %d", attrs.MaxSessionDurationMs)
	}
	if attrs.MaxEventsPerSession != 500 {
		t.Errorf("MaxEventsPerSession: got %d", attrs.MaxEventsPerSession)
	}
	if attrs.SessionTimeoutMs != 600*1000 {
		t.Errorf("SessionTimeoutMs: got %d", attrs.SessionTimeoutMs)
	}
	if attrs.SendIntervalMs != 120*1000 {
		t.Errorf("SendIntervalMs: got %d", attrs.SendIntervalMs)
	}
	if attrs.VisitStoreVersion != 2 {
		t.Errorf("VisitStoreVersion: got %d", attrs.VisitStoreVersion)
	}
	if !attrs.Capture || !attrs.CaptureCrashes || attrs.CaptureErrors {
		t.Errorf("capture flags: got capture=%v crashes=%v errors=%v", attrs.Capture, attrs.CaptureCrashes, attrs.CaptureErrors)
	}
	if attrs.TrafficControlPercentage != 50 {
		t.Errorf("TrafficControlPercentage: got %d", attrs.TrafficControlPercentage)
	}
	if attrs.ApplicationID != "app-1" {
		t.Errorf("ApplicationID: got %q", attrs.ApplicationID)
	}
	if attrs.Multiplicity != 3 {
		t.Errorf("Multiplicity: got %d", attrs.Multiplicity)
	}
	if attrs.ServerID != 9 {
		t.Errorf("ServerID: got %d", attrs.ServerID)
	}
	if attrs.Status != "monitoring" {
		t.Errorf("Status: got %q", attrs.Status)
	}
	if attrs.TimestampMs != 1710000000000 {
		t.Errorf("TimestampMs: got %d", attrs.TimestampMs)
	}
}

func TestParse_JSONMissingFieldsLeaveDefaultsAndClearWasSetBits(t *testing.T) {
	base := protocol.DefaultResponseAttributes()
	next, err := protocol.Parse(`{"appConfig":{"capture":0}}`, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	merged := protocol.Merge(base, next)
	if merged.Capture {
		t.Error("expected capture=false from the response")
	}
	if merged.MaxBeaconSizeBytes != base.MaxBeaconSizeBytes {
		t.Errorf("expected unset field to keep its old value, got %d", merged.MaxBeaconSizeBytes)
	}
}

func TestParse_JSONRejectsNonObjectRoot(t *testing.T) {
	if _, err := protocol.Parse(`[1,2,3]`, nil, nil); err == nil {
		t.Error("expected error for a non-object JSON root")
	}
}

func TestParse_JSONRejectsMalformedText(t *testing.T) {
	if _, err := protocol.Parse(`{not json`, nil, nil); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
