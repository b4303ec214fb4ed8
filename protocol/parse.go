package protocol

import "github.com/Dynatrace/openkit-go/logger"

// Parse decodes text into ResponseAttributes, dispatching to the legacy
// key-value form or the JSON form depending on the text's shape. A nil
// logger discards the schema-drift diagnostic below.
func Parse(text string, drift *ConfigDriftDetector, log *logger.Logger) (ResponseAttributes, error) {
	if isLegacyResponse(text) {
		return parseLegacy(text)
	}
	attrs, err := parseJSON(text)
	if err != nil {
		return ResponseAttributes{}, err
	}
	if drift != nil {
		drift.observe(text, log)
	}
	return attrs, nil
}
