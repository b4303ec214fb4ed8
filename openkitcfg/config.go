// Package openkitcfg provides the host-supplied Configuration that
// parameterizes one OpenKit instance, plus JSON-file loading with
// production-sensible defaults.
//
// Struct shape and loader grounded on config.Config/config.LoadConfig:
// DisallowUnknownFields() to catch config typos early, a DefaultConfig
// returning a fresh independent copy per call.
package openkitcfg

import (
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Dynatrace/openkit-go/logger"
)

// TrustMode controls server TLS certificate verification.
type TrustMode string

const (
	TrustStrict TrustMode = "Strict"
	TrustBlind  TrustMode = "Blind"
	TrustCustom TrustMode = "Custom"
)

// DataCollectionLevel controls how much behavioral data is captured.
type DataCollectionLevel string

const (
	DataCollectionOff          DataCollectionLevel = "Off"
	DataCollectionPerformance  DataCollectionLevel = "Performance"
	DataCollectionUserBehavior DataCollectionLevel = "UserBehavior"
)

// CrashReportingLevel controls whether crash reports are captured/sent.
type CrashReportingLevel string

const (
	CrashReportingOff    CrashReportingLevel = "Off"
	CrashReportingOptOut CrashReportingLevel = "OptOutCrashes"
	CrashReportingOptIn  CrashReportingLevel = "OptInCrashes"
)

// unset is the sentinel meaning "use the built-in default" for the
// beacon-cache bound fields, per spec §6 ("-1 means default").
const unset = -1

// Configuration is the full host-supplied configuration surface for one
// OpenKit instance (spec §6's "Configuration" external interface).
type Configuration struct {
	EndpointURL   string `json:"endpoint_url"`
	ApplicationID string `json:"application_id"`
	DeviceID      int64  `json:"device_id"`
	AgentVersion  string `json:"agent_version"`
	OSName        string `json:"os_name"`
	Manufacturer  string `json:"manufacturer"`
	ModelID       string `json:"model_id"`

	TrustMode TrustMode `json:"trust_mode"`

	MaxRecordAgeMs  int64 `json:"max_record_age_ms"`
	CacheLowerBytes int64 `json:"cache_lower"`
	CacheUpperBytes int64 `json:"cache_upper"`

	DataCollectionLevel DataCollectionLevel `json:"data_collection_level"`
	CrashReportingLevel CrashReportingLevel `json:"crash_reporting_level"`

	RequestTimeout time.Duration `json:"request_timeout"`

	// Logger, RequestIntercept and ResponseIntercept are Go-level
	// collaborators rather than JSON-serializable settings: left unset, New
	// supplies a LevelWarn logger and no interceptors.
	Logger            *logger.Logger      `json:"-"`
	RequestIntercept  func(*http.Request)  `json:"-"`
	ResponseIntercept func(*http.Response) `json:"-"`

	// CustomVerify is consulted only when TrustMode is TrustCustom.
	CustomVerify func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error `json:"-"`
}

// Default beacon-cache bounds, used when the corresponding field holds the
// -1 sentinel.
const (
	defaultMaxRecordAgeMs  = int64(2 * 60 * 60 * 1000) // 2 hours
	defaultCacheLowerBytes = int64(100 * 1024)          // 100 KiB
	defaultCacheUpperBytes = int64(80 * 1024 * 1024)    // 80 MiB
)

// DefaultConfiguration returns a Configuration pre-filled with
// production-sensible defaults. Every call returns a fresh independent copy;
// callers mutate the required fields (EndpointURL, ApplicationID, ...)
// before use.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		TrustMode:           TrustStrict,
		MaxRecordAgeMs:      unset,
		CacheLowerBytes:     unset,
		CacheUpperBytes:     unset,
		DataCollectionLevel: DataCollectionUserBehavior,
		CrashReportingLevel: CrashReportingOptIn,
		RequestTimeout:      30 * time.Second,
	}
}

// ResolvedMaxRecordAgeMs returns the effective max-record-age bound,
// substituting the built-in default for the -1 sentinel.
func (c *Configuration) ResolvedMaxRecordAgeMs() int64 {
	if c.MaxRecordAgeMs == unset {
		return defaultMaxRecordAgeMs
	}
	return c.MaxRecordAgeMs
}

// ResolvedCacheLowerBytes returns the effective cache lower bound.
func (c *Configuration) ResolvedCacheLowerBytes() int64 {
	if c.CacheLowerBytes == unset {
		return defaultCacheLowerBytes
	}
	return c.CacheLowerBytes
}

// ResolvedCacheUpperBytes returns the effective cache upper bound.
func (c *Configuration) ResolvedCacheUpperBytes() int64 {
	if c.CacheUpperBytes == unset {
		return defaultCacheUpperBytes
	}
	return c.CacheUpperBytes
}

// LoadConfiguration reads a JSON file at filename and deserializes it into a
// Configuration. Unknown fields are rejected to catch config typos early.
func LoadConfiguration(filename string) (*Configuration, error) {
	f, err := os.Open(filename) // #nosec G304 - filename is caller-provided config path
	if err != nil {
		return nil, fmt.Errorf("openkitcfg: open %q: %w", filename, err)
	}
	defer f.Close()

	cfg := DefaultConfiguration()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("openkitcfg: decode %q: %w", filename, err)
	}
	return cfg, nil
}
