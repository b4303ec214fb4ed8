package objects

import (
	"math"
	"strings"

	"github.com/Dynatrace/openkit-go/jsonvalue"
)

// DeviceInfo carries the reserved event fields sourced from host
// configuration rather than from the caller's attribute map.
type DeviceInfo struct {
	AppVersion      string
	OSName          string
	Manufacturer    string
	ModelIdentifier string
}

var reservedEventKeys = map[string]bool{
	"event.kind":              true,
	"timestamp":               true,
	"event.provider":          true,
	"app.version":             true,
	"os.name":                 true,
	"device.manufacturer":     true,
	"device.model.identifier": true,
}

// allowedDtAgentKeys are the only "dt"/"dt."-prefixed keys a caller may
// supply; every other such key is reserved for the agent itself.
var allowedDtAgentKeys = map[string]bool{
	"dt.agent.version":         true,
	"dt.agent.technology_type": true,
	"dt.agent.flavor":          true,
}

func isReservedDtKey(key string) bool {
	if key == "dt" {
		return true
	}
	if !strings.HasPrefix(key, "dt.") {
		return false
	}
	return !allowedDtAgentKeys[key]
}

// buildEventPayload builds the JSON object for send_event/send_biz_event.
// Reserved keys in attrs are dropped silently; no warning is logged for
// them. A non-finite numeric value anywhere in attrs, including inside
// nested slices and maps, rejects the whole event (ok=false).
func buildEventPayload(kind, name string, device DeviceInfo, attrs map[string]any, nowMs int64) (jsonvalue.Value, bool) {
	obj := jsonvalue.NewObject()
	obj.Set("event.kind", jsonvalue.NewString(kind))
	obj.Set("timestamp", jsonvalue.NewNumberFromInt64(nowMs))
	obj.Set("event.provider", jsonvalue.NewString(name))
	obj.Set("app.version", jsonvalue.NewString(device.AppVersion))
	obj.Set("os.name", jsonvalue.NewString(device.OSName))
	obj.Set("device.manufacturer", jsonvalue.NewString(device.Manufacturer))
	obj.Set("device.model.identifier", jsonvalue.NewString(device.ModelIdentifier))

	for k, v := range attrs {
		if reservedEventKeys[k] || isReservedDtKey(k) {
			continue
		}
		val, ok := toJSONValue(v)
		if !ok {
			return nil, false
		}
		if !jsonvalue.IsFinite(val) {
			return nil, false
		}
		obj.Set(k, val)
	}
	return obj, true
}

// toJSONValue converts a Go value from a caller-supplied attribute map into
// a jsonvalue.Value, recursing through maps and slices.
func toJSONValue(v any) (jsonvalue.Value, bool) {
	switch tv := v.(type) {
	case nil:
		return jsonvalue.NewNull(), true
	case bool:
		return jsonvalue.NewBoolean(tv), true
	case string:
		return jsonvalue.NewString(tv), true
	case int:
		return jsonvalue.NewNumberFromInt64(int64(tv)), true
	case int64:
		return jsonvalue.NewNumberFromInt64(tv), true
	case float64:
		if math.IsNaN(tv) || math.IsInf(tv, 0) {
			return nil, false
		}
		return jsonvalue.NewNumberFromFloat64(tv), true
	case []any:
		arr := jsonvalue.NewArray()
		for _, item := range tv {
			iv, ok := toJSONValue(item)
			if !ok {
				return nil, false
			}
			arr.Items = append(arr.Items, iv)
		}
		return arr, true
	case map[string]any:
		obj := jsonvalue.NewObject()
		for k, item := range tv {
			iv, ok := toJSONValue(item)
			if !ok {
				return nil, false
			}
			obj.Set(k, iv)
		}
		return obj, true
	default:
		return nil, false
	}
}
