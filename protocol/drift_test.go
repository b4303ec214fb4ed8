package protocol_test

import (
	"testing"

	"github.com/Dynatrace/openkit-go/logger"
	"github.com/Dynatrace/openkit-go/protocol"
)

func TestConfigDriftDetector_FirstResponseEstablishesBaselineWithoutError(t *testing.T) {
	d := protocol.NewConfigDriftDetector()
	log := logger.New(logger.LevelDebug)
	if _, err := protocol.Parse(`{"appConfig":{"capture":1}}`, d, log); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfigDriftDetector_NeverAltersDecodedAttributes(t *testing.T) {
	d := protocol.NewConfigDriftDetector()
	text := `{"appConfig":{"capture":1}}`

	withoutDetector, err := protocol.Parse(text, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	withDetector, err := protocol.Parse(text, d, logger.New(logger.LevelDebug))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withoutDetector.Capture != withDetector.Capture {
		t.Error("expected the drift detector to leave decoded attributes unchanged")
	}
}

func TestConfigDriftDetector_SecondResponseWithNewKeyDoesNotError(t *testing.T) {
	d := protocol.NewConfigDriftDetector()
	log := logger.New(logger.LevelDebug)
	if _, err := protocol.Parse(`{"appConfig":{"capture":1}}`, d, log); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// appConfig now carries an extra key the baseline never saw; this is a
	// passive diagnostic and must not surface as an error.
	if _, err := protocol.Parse(`{"appConfig":{"capture":1,"newField":true}}`, d, log); err != nil {
		t.Fatalf("unexpected error after schema drift: %v", err)
	}
}

func TestConfigDriftDetector_NilLoggerIsSafe(t *testing.T) {
	d := protocol.NewConfigDriftDetector()
	if _, err := protocol.Parse(`{"appConfig":{"capture":1}}`, d, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := protocol.Parse(`{"appConfig":{"capture":1,"newField":true}}`, d, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
