// Package httpclient is the HTTP collaborator described in spec §6: it
// issues status and beacon-upload requests, gzip-compresses request bodies,
// and surfaces the Retry-After header and response body text for package
// protocol/sender to interpret.
//
// Transport tuning (connection pool sizing, timeouts, keep-alives) is
// grounded on client.NewHTTPClient, generalized here with an injectable
// TrustMode for TLS verification instead of that package's uTLS
// fingerprinting (see DESIGN.md for why the fingerprinting stack was
// dropped).
package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// TrustMode controls how server TLS certificates are verified.
type TrustMode int

const (
	// TrustStrict uses the platform's default certificate verification.
	TrustStrict TrustMode = iota
	// TrustBlind disables certificate verification entirely. Intended only
	// for talking to a self-hosted collector during development.
	TrustBlind
	// TrustCustom delegates verification to a caller-supplied callback.
	TrustCustom
)

// Config configures the HTTP collaborator.
type Config struct {
	Timeout           time.Duration
	TrustMode         TrustMode
	CustomVerify      func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error
	RequestIntercept  func(*http.Request)
	ResponseIntercept func(*http.Response)
}

// transportDefaults groups transport-layer knobs set once at construction
// time, sized for many concurrently sending sessions hitting one collector.
var transportDefaults = struct {
	maxIdleConns        int
	maxIdleConnsPerHost int
	maxConnsPerHost     int
}{
	maxIdleConns:        500,
	maxIdleConnsPerHost: 100,
	maxConnsPerHost:     200,
}

// Client is the HTTP collaborator bound to one OpenKit instance.
type Client struct {
	http *http.Client
	cfg  Config
}

// New constructs a Client. An error here means the TLS or cookie-jar setup
// itself failed; it is not a connectivity check.
func New(cfg Config) (*Client, error) {
	transport := &http.Transport{
		DisableKeepAlives:     false,
		MaxIdleConns:          transportDefaults.maxIdleConns,
		MaxIdleConnsPerHost:   transportDefaults.maxIdleConnsPerHost,
		MaxConnsPerHost:       transportDefaults.maxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	switch cfg.TrustMode {
	case TrustBlind:
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	case TrustCustom:
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify:    true,
			VerifyPeerCertificate: cfg.CustomVerify,
		}
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create cookie jar: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   timeout,
		},
		cfg: cfg,
	}, nil
}
