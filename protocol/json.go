package protocol

import (
	"fmt"

	"github.com/Dynatrace/openkit-go/jsonvalue"
)

// parseJSON decodes the JSON response form: nested mobileAgentConfig/
// appConfig/dynamicConfig objects plus a root timestamp field.
func parseJSON(text string) (ResponseAttributes, error) {
	root, err := jsonvalue.NewParser(text).Parse()
	if err != nil {
		return ResponseAttributes{}, fmt.Errorf("protocol: decode json response: %w", err)
	}
	obj, ok := root.(*jsonvalue.Object)
	if !ok {
		return ResponseAttributes{}, fmt.Errorf("protocol: json response root is not an object")
	}

	attrs := DefaultResponseAttributes()

	if mac, ok := childObject(obj, "mobileAgentConfig"); ok {
		if v, ok := intField(mac, "maxBeaconSizeKb"); ok {
			attrs.MaxBeaconSizeBytes = v * 1024
			attrs.set(fieldMaxBeaconSizeBytes)
		}
		if v, ok := intField(mac, "maxSessionDurationMins"); ok {
			attrs.MaxSessionDurationMs = v * 60000
			attrs.set(fieldMaxSessionDurationMs)
		}
		if v, ok := intField(mac, "maxEventsPerSession"); ok {
			attrs.MaxEventsPerSession = v
			attrs.set(fieldMaxEventsPerSession)
		}
		if v, ok := intField(mac, "sessionTimeoutSec"); ok {
			attrs.SessionTimeoutMs = v * 1000
			attrs.set(fieldSessionTimeoutMs)
		}
		if v, ok := intField(mac, "sendIntervalSec"); ok {
			attrs.SendIntervalMs = v * 1000
			attrs.set(fieldSendIntervalMs)
		}
		if v, ok := intField(mac, "visitStoreVersion"); ok {
			attrs.VisitStoreVersion = v
			attrs.set(fieldVisitStoreVersion)
		}
	}

	if ac, ok := childObject(obj, "appConfig"); ok {
		if v, ok := intField(ac, "capture"); ok {
			attrs.Capture = v == 1
			attrs.set(fieldCapture)
		}
		if v, ok := intField(ac, "reportCrashes"); ok {
			attrs.CaptureCrashes = v != 0
			attrs.set(fieldCaptureCrashes)
		}
		if v, ok := intField(ac, "reportErrors"); ok {
			attrs.CaptureErrors = v != 0
			attrs.set(fieldCaptureErrors)
		}
		if v, ok := intField(ac, "trafficControlPercentage"); ok {
			attrs.TrafficControlPercentage = v
			attrs.set(fieldTrafficControlPercentage)
		}
		if v, ok := stringField(ac, "applicationId"); ok {
			attrs.ApplicationID = v
			attrs.set(fieldApplicationID)
		}
	}

	if dc, ok := childObject(obj, "dynamicConfig"); ok {
		if v, ok := intField(dc, "multiplicity"); ok {
			attrs.Multiplicity = v
			attrs.set(fieldMultiplicity)
		}
		if v, ok := intField(dc, "serverId"); ok {
			attrs.ServerID = v
			attrs.set(fieldServerID)
		}
		if v, ok := stringField(dc, "status"); ok {
			attrs.Status = v
			attrs.set(fieldStatus)
		}
	}

	if v, ok := intField(obj, "timestamp"); ok {
		attrs.TimestampMs = v
		attrs.set(fieldTimestamp)
	}

	return attrs, nil
}

func childObject(obj *jsonvalue.Object, key string) (*jsonvalue.Object, bool) {
	v, ok := obj.Get(key)
	if !ok {
		return nil, false
	}
	child, ok := v.(*jsonvalue.Object)
	return child, ok
}

func intField(obj *jsonvalue.Object, key string) (int64, bool) {
	v, ok := obj.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := v.(jsonvalue.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

func stringField(obj *jsonvalue.Object, key string) (string, bool) {
	v, ok := obj.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(jsonvalue.String)
	if !ok {
		return "", false
	}
	return string(s), true
}
