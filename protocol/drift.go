package protocol

import (
	"sort"
	"strings"
	"sync"

	"github.com/Dynatrace/openkit-go/jsonvalue"
	"github.com/Dynatrace/openkit-go/logger"
)

// ConfigDriftDetector is a passive diagnostic, adapted from the schema-
// snapshot mechanism in payload.Validator: on the first successfully parsed
// JSON response it records the set of keys present under mobileAgentConfig,
// appConfig and dynamicConfig as a baseline. On every later response it logs
// one DEBUG line listing any keys present that weren't in the baseline
// ("unannounced config keys"). It never rejects or alters parsing — callers
// always get back whatever Parse decoded regardless of what this reports.
type ConfigDriftDetector struct {
	mu       sync.Mutex
	baseline map[string]bool
}

// NewConfigDriftDetector creates a detector with no baseline yet.
func NewConfigDriftDetector() *ConfigDriftDetector {
	return &ConfigDriftDetector{}
}

func (d *ConfigDriftDetector) observe(text string, log *logger.Logger) {
	root, err := jsonvalue.NewParser(text).Parse()
	if err != nil {
		return
	}
	obj, ok := root.(*jsonvalue.Object)
	if !ok {
		return
	}

	current := map[string]bool{}
	for _, section := range []string{"mobileAgentConfig", "appConfig", "dynamicConfig"} {
		child, ok := childObject(obj, section)
		if !ok {
			continue
		}
		for _, k := range child.Keys() {
			current[section+"."+k] = true
		}
	}

	d.mu.Lock()
	if d.baseline == nil {
		d.baseline = current
		d.mu.Unlock()
		return
	}
	baseline := d.baseline
	d.mu.Unlock()

	var unannounced []string
	for k := range current {
		if !baseline[k] {
			unannounced = append(unannounced, k)
		}
	}
	if len(unannounced) == 0 {
		return
	}
	sort.Strings(unannounced)
	log.Debugf("protocol: unannounced config keys: %s", strings.Join(unannounced, ", "))
}
