package metrics_test

import (
	"sync"
	"testing"

	"github.com/Dynatrace/openkit-go/internal/metrics"
)

func TestIncrements(t *testing.T) {
	m := metrics.New()
	m.IncrementSessionsCreated()
	m.IncrementSessionsCreated()
	m.IncrementSessionsEnded()
	m.IncrementStatusRequestsSent()
	m.IncrementBeaconRequestsSent()
	m.IncrementRequestsFailed()
	m.AddRecordsEvicted(3)

	snap := m.Snapshot()
	if snap.SessionsCreated != 2 {
		t.Errorf("SessionsCreated: got %d, want 2", snap.SessionsCreated)
	}
	if snap.SessionsEnded != 1 {
		t.Errorf("SessionsEnded: got %d, want 1", snap.SessionsEnded)
	}
	if snap.StatusRequestsSent != 1 || snap.BeaconRequestsSent != 1 {
		t.Errorf("got status=%d beacon=%d, want 1/1", snap.StatusRequestsSent, snap.BeaconRequestsSent)
	}
	if snap.RequestsFailed != 1 {
		t.Errorf("RequestsFailed: got %d, want 1", snap.RequestsFailed)
	}
	if snap.RecordsEvicted != 3 {
		t.Errorf("RecordsEvicted: got %d, want 3", snap.RecordsEvicted)
	}
}

func TestConcurrentIncrements(t *testing.T) {
	m := metrics.New()
	const goroutines = 1000
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			m.IncrementSessionsCreated()
			m.IncrementStatusRequestsSent()
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.SessionsCreated != goroutines {
		t.Errorf("SessionsCreated: got %d, want %d", snap.SessionsCreated, goroutines)
	}
	if snap.StatusRequestsSent != goroutines {
		t.Errorf("StatusRequestsSent: got %d, want %d", snap.StatusRequestsSent, goroutines)
	}
}

func TestNilMetricsDiscardsEverything(t *testing.T) {
	var m *metrics.Metrics
	m.IncrementSessionsCreated()
	m.AddRecordsEvicted(5)
	if snap := m.Snapshot(); snap != (metrics.Snapshot{}) {
		t.Errorf("got %+v, want zero value from a nil *Metrics", snap)
	}
}
