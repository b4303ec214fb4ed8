package cache_test

import (
	"sort"
	"sync"
	"testing"

	"github.com/Dynatrace/openkit-go/cache"
)

func TestBeaconCache_AddEventThenIsEmpty(t *testing.T) {
	c := cache.New()
	if !c.IsEmpty(1) {
		t.Fatal("expected a never-touched session id to be empty")
	}
	c.AddEvent(1, 100, "ev=1")
	if c.IsEmpty(1) {
		t.Error("expected session to be non-empty after AddEvent")
	}
}

func TestBeaconCache_DeleteEntryAdjustsTotalBytesAndDoesNotNotify(t *testing.T) {
	c := cache.New()
	notified := 0
	c.AddObserver(cache.ObserverFunc(func() { notified++ }))

	c.AddEvent(1, 100, "abcd")
	before := notified
	if c.TotalBytes() != 13 {
		t.Fatalf("got total bytes %d, want 13", c.TotalBytes())
	}

	c.DeleteEntry(1)
	if notified != before {
		t.Errorf("expected DeleteEntry not to notify observers, notified went from %d to %d", before, notified)
	}
	if c.TotalBytes() != 0 {
		t.Errorf("got total bytes %d, want 0 after delete", c.TotalBytes())
	}
	if !c.IsEmpty(1) {
		t.Error("expected session to be empty after delete")
	}
}

func TestBeaconCache_AddEventNotifiesObserversExactlyOnce(t *testing.T) {
	c := cache.New()
	var mu sync.Mutex
	count := 0
	c.AddObserver(cache.ObserverFunc(func() {
		mu.Lock()
		count++
		mu.Unlock()
	}))
	c.AddEvent(1, 1, "a")
	mu.Lock()
	got := count
	mu.Unlock()
	if got != 1 {
		t.Errorf("got %d notifications, want 1", got)
	}
}

func TestBeaconCache_GetNextChunk_EventsBeforeActions(t *testing.T) {
	c := cache.New()
	c.AddAction(1, 1, "action1")
	c.AddEvent(1, 1, "event1")

	chunk := c.GetNextChunk(1, "pre?", 1000, "&")
	want := "pre?event1&action1"
	if chunk != want {
		t.Errorf("got %q, want %q", chunk, want)
	}
}

func TestBeaconCache_GetNextChunk_StopsBeforeExceedingMaxBytes(t *testing.T) {
	c := cache.New()
	c.AddEvent(1, 1, "aaaa")
	c.AddEvent(1, 2, "bbbb")

	// prefix(1) + "aaaa"(4) = 5 fits in 5; adding "&bbbb" would need 5 more.
	chunk := c.GetNextChunk(1, "p", 5, "&")
	if chunk != "paaaa" {
		t.Errorf("got %q, want %q", chunk, "paaaa")
	}
}

func TestBeaconCache_GetNextChunk_EmptyWhenNothingFits(t *testing.T) {
	c := cache.New()
	c.AddEvent(1, 1, "toolong")
	if chunk := c.GetNextChunk(1, "", 3, "&"); chunk != "" {
		t.Errorf("got %q, want empty string", chunk)
	}
}

func TestBeaconCache_RemoveChunkedDataDiscardsBeingSentBuffers(t *testing.T) {
	c := cache.New()
	c.AddEvent(1, 1, "a")
	c.GetNextChunk(1, "", 1000, "&")
	c.RemoveChunkedData(1)
	if !c.IsEmpty(1) {
		t.Error("expected session to be empty after a successful send")
	}
}

func TestBeaconCache_ResetChunkedDataRestoresRecordsAndNotifies(t *testing.T) {
	c := cache.New()
	notified := 0
	c.AddEvent(1, 1, "a")
	c.AddObserver(cache.ObserverFunc(func() { notified++ }))

	c.GetNextChunk(1, "", 1000, "&")
	if !c.IsEmpty(1) {
		t.Fatal("expected chunk to have moved the record into the being-sent buffer")
	}

	before := notified
	c.ResetChunkedData(1)
	if notified != before+1 {
		t.Errorf("expected ResetChunkedData to notify once, got %d new notifications", notified-before)
	}
	if c.IsEmpty(1) {
		t.Error("expected the record to be restored after a failed send")
	}
	if c.TotalBytes() != 10 {
		t.Errorf("got total bytes %d, want 10 after restore", c.TotalBytes())
	}
}

func TestBeaconCache_EvictByAgeRemovesOldestRecordsFirst(t *testing.T) {
	c := cache.New()
	c.AddEvent(1, 10, "old")
	c.AddEvent(1, 20, "mid")
	c.AddEvent(1, 30, "new")

	removed := c.EvictByAge(1, 20)
	if removed != 1 {
		t.Fatalf("got %d removed, want 1", removed)
	}
	chunk := c.GetNextChunk(1, "", 1000, "&")
	if chunk != "mid&new" {
		t.Errorf("got %q, want %q", chunk, "mid&new")
	}
}

func TestBeaconCache_EvictByNumberTakesEventsThenActions(t *testing.T) {
	c := cache.New()
	c.AddEvent(1, 1, "e1")
	c.AddAction(1, 1, "a1")

	removed := c.EvictByNumber(1, 2)
	if removed != 2 {
		t.Fatalf("got %d removed, want 2", removed)
	}
	if !c.IsEmpty(1) {
		t.Error("expected both records removed")
	}
}

func TestBeaconCache_GetBeaconIDsOnlyListsNonEmptySessions(t *testing.T) {
	c := cache.New()
	c.AddEvent(1, 1, "x")
	c.AddEvent(2, 1, "y")
	c.DeleteEntry(2)
	c.AddEvent(2, 1, "y") // recreate with data so it appears again
	c.EvictByNumber(3, 1) // touching a never-created session id is a no-op

	ids := c.GetBeaconIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("got %v, want [1 2]", ids)
	}
}

func TestBeaconCache_ConcurrentAddEventIsSafe(t *testing.T) {
	c := cache.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.AddEvent(int64(i%5), int64(i), "x")
		}(i)
	}
	wg.Wait()
	if c.TotalBytes() != 500 {
		t.Errorf("got total bytes %d, want 500", c.TotalBytes())
	}
}
