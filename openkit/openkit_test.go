package openkit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dynatrace/openkit-go/openkitcfg"
)

func testConfig(t *testing.T, endpoint string) Configuration {
	t.Helper()
	cfg := *openkitcfg.DefaultConfiguration()
	cfg.EndpointURL = endpoint
	cfg.ApplicationID = "app-under-test"
	cfg.AgentVersion = "1.0.0"
	return cfg
}

func TestNew_RejectsMissingEndpointURL(t *testing.T) {
	cfg := *openkitcfg.DefaultConfiguration()
	cfg.ApplicationID = "app"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected an error for a missing EndpointURL")
	}
}

func TestNew_RejectsMissingApplicationID(t *testing.T) {
	cfg := *openkitcfg.DefaultConfiguration()
	cfg.EndpointURL = "http://example.invalid/mbeacon/app"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected an error for a missing ApplicationID")
	}
}

func TestOpenKit_WaitForInitSucceedsWithCaptureOnServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"appConfig":{"capture":1}}`))
	}))
	defer srv.Close()

	k, err := New(testConfig(t, srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer k.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if !k.WaitForInit(ctx) {
		t.Fatal("expected WaitForInit to succeed against a capture-on server")
	}
	if !k.IsInitialized() {
		t.Error("expected IsInitialized to be true after WaitForInit succeeds")
	}
}

func TestOpenKit_CreateSessionDrivesActionAndEventLifecycle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"appConfig":{"capture":1}}`))
	}))
	defer srv.Close()

	k, err := New(testConfig(t, srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer k.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	k.WaitForInit(ctx)

	session := k.CreateSession("203.0.113.5")
	action := session.EnterAction("checkout")
	action.ReportValueInt("items", 3)
	child := action.EnterAction("payment", 0)
	child.ReportEvent("submitted")
	child.Leave(0)
	action.Leave(0)

	tracer := session.TraceWebRequest("https://example.com/api?secret=1")
	tracer.Start(0)
	tracer.Stop(200, 128, 4096, 0)

	session.IdentifyUser("user-42")
	session.SendEvent("cart_viewed", map[string]any{"items": int64(3)})
	session.End()
}

func TestOpenKit_CreateSessionReturnsNullSessionWhenCaptureDisabledByConfig(t *testing.T) {
	cfg := testConfig(t, "http://example.invalid/mbeacon/app")
	cfg.DataCollectionLevel = openkitcfg.DataCollectionOff
	k, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer k.Shutdown()

	session := k.CreateSession("203.0.113.5")
	if _, ok := session.(nullSession); !ok {
		t.Errorf("got %T, want nullSession when DataCollectionLevel is Off", session)
	}
}
