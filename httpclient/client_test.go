package httpclient

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestStatusRequest_ReturnsBodyAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "m" {
			t.Errorf("got query %v, want type=m", r.URL.Query())
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("type=m&cp=1"))
	}))
	defer srv.Close()

	c, err := New(Config{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	q := url.Values{"type": {"m"}}
	resp, err := c.StatusRequest(context.Background(), srv.URL, q)
	if err != nil {
		t.Fatalf("StatusRequest: %v", err)
	}
	if resp.StatusCode != 200 || resp.Body != "type=m&cp=1" {
		t.Errorf("got %+v, want 200/type=m&cp=1", resp)
	}
	if !resp.Success() {
		t.Error("expected Success() to be true for 200")
	}
}

func TestBeaconRequest_GzipCompressesBody(t *testing.T) {
	var gotEncoding string
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEncoding = r.Header.Get("Content-Encoding")
		gr, err := gzip.NewReader(r.Body)
		if err != nil {
			t.Fatalf("gzip.NewReader: %v", err)
		}
		raw, _ := io.ReadAll(gr)
		gotBody = string(raw)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.BeaconRequest(context.Background(), srv.URL, url.Values{}, "et=1&na=hi")
	if err != nil {
		t.Fatalf("BeaconRequest: %v", err)
	}
	if gotEncoding != "gzip" {
		t.Errorf("got Content-Encoding %q, want gzip", gotEncoding)
	}
	if gotBody != "et=1&na=hi" {
		t.Errorf("got body %q after decompression, want et=1&na=hi", gotBody)
	}
}

func TestDo_ParsesRetryAfterHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1234")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := c.StatusRequest(context.Background(), srv.URL, url.Values{})
	if err != nil {
		t.Fatalf("StatusRequest: %v", err)
	}
	if !resp.Throttled() {
		t.Error("expected Throttled() for 429")
	}
	if resp.RetryAfter != 1234*time.Second {
		t.Errorf("got %v, want 1234s", resp.RetryAfter)
	}
}

func TestDo_MissingRetryAfterDefaultsToTenMinutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := c.StatusRequest(context.Background(), srv.URL, url.Values{})
	if err != nil {
		t.Fatalf("StatusRequest: %v", err)
	}
	if resp.RetryAfter != defaultRetryAfter {
		t.Errorf("got %v, want default %v", resp.RetryAfter, defaultRetryAfter)
	}
}

func TestDo_InvokesRequestAndResponseIntercept(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	requestSeen := false
	responseSeen := false
	c, err := New(Config{
		RequestIntercept:  func(*http.Request) { requestSeen = true },
		ResponseIntercept: func(*http.Response) { responseSeen = true },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.StatusRequest(context.Background(), srv.URL, url.Values{}); err != nil {
		t.Fatalf("StatusRequest: %v", err)
	}
	if !requestSeen || !responseSeen {
		t.Errorf("got requestSeen=%v responseSeen=%v, want both true", requestSeen, responseSeen)
	}
}

func TestNew_TrustBlindSkipsCertificateVerification(t *testing.T) {
	c, err := New(Config{TrustMode: TrustBlind})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.http.Transport == nil {
		t.Fatal("expected a configured transport")
	}
	tr, ok := c.http.Transport.(*http.Transport)
	if !ok || tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify {
		t.Error("expected TrustBlind to set InsecureSkipVerify on the transport")
	}
}
