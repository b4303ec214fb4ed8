package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// parseLegacy decodes the "type=m&key=value&..." wire format. Unknown keys
// are ignored. A malformed value for bl, si, id, er or cr is an error; a
// malformed cp value means capture off, and bn is not parsed.
func parseLegacy(text string) (ResponseAttributes, error) {
	attrs := DefaultResponseAttributes()

	for _, pair := range strings.Split(text, "&") {
		if pair == "type=m" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		switch key {
		case "bl":
			kb, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return ResponseAttributes{}, fmt.Errorf("protocol: legacy field bl: %w", err)
			}
			attrs.MaxBeaconSizeBytes = kb * 1024
			attrs.set(fieldMaxBeaconSizeBytes)
		case "si":
			secs, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return ResponseAttributes{}, fmt.Errorf("protocol: legacy field si: %w", err)
			}
			attrs.SendIntervalMs = secs * 1000
			attrs.set(fieldSendIntervalMs)
		case "bn":
			// monitor name: carried for completeness but not part of
			// ResponseAttributes' mergeable field set.
		case "id":
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return ResponseAttributes{}, fmt.Errorf("protocol: legacy field id: %w", err)
			}
			attrs.ServerID = id
			attrs.set(fieldServerID)
		case "cp":
			capture, err := strconv.ParseInt(value, 10, 32)
			on := err == nil && capture == 1
			attrs.Capture = on
			attrs.set(fieldCapture)
		case "er":
			v, err := strconv.ParseInt(value, 10, 32)
			if err != nil {
				return ResponseAttributes{}, fmt.Errorf("protocol: legacy field er: %w", err)
			}
			attrs.CaptureErrors = v != 0
			attrs.set(fieldCaptureErrors)
		case "cr":
			v, err := strconv.ParseInt(value, 10, 32)
			if err != nil {
				return ResponseAttributes{}, fmt.Errorf("protocol: legacy field cr: %w", err)
			}
			attrs.CaptureCrashes = v != 0
			attrs.set(fieldCaptureCrashes)
		default:
			// unrecognized keys are ignored
		}
	}
	return attrs, nil
}
