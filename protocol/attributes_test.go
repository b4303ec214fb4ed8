package protocol_test

import (
	"testing"

	"github.com/Dynatrace/openkit-go/protocol"
)

func TestDefaultResponseAttributes_CaptureIsOnByDefault(t *testing.T) {
	d := protocol.DefaultResponseAttributes()
	if !d.Capture || !d.CaptureCrashes || !d.CaptureErrors {
		t.Errorf("got %+v, want capture/crashes/errors all true by default", d)
	}
}

func TestMerge_OnlyTakesFieldsTheNewResponseAsserted(t *testing.T) {
	current := protocol.DefaultResponseAttributes()
	current.ServerID = 7

	text := `{"appConfig":{"capture":0}}`
	next, err := protocol.Parse(text, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	merged := protocol.Merge(current, next)
	if merged.Capture {
		t.Error("expected capture=false from the new response to win")
	}
	if merged.ServerID != 7 {
		t.Errorf("expected unrelated field ServerID to survive the merge, got %d", merged.ServerID)
	}
}

func TestMerge_UnionsWasSetAcrossMultipleMerges(t *testing.T) {
	a, err := protocol.Parse(`{"dynamicConfig":{"serverId":5}}`, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := protocol.Parse(`{"appConfig":{"capture":0}}`, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	merged := protocol.Merge(protocol.DefaultResponseAttributes(), a)
	merged = protocol.Merge(merged, b)

	if merged.ServerID != 5 {
		t.Errorf("expected ServerID from first merge to survive, got %d", merged.ServerID)
	}
	if merged.Capture {
		t.Error("expected capture from second merge to apply")
	}
}
