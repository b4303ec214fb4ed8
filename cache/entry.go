package cache

import "sync"

// record is a single payload appended to a cache entry's events or actions
// sequence.
type record struct {
	ts   int64
	data string
}

// byteSize is a record's cost against cache.total_bytes: the payload bytes
// plus an 8-byte timestamp plus 1.
func (r record) byteSize() int64 { return int64(len(r.data)) + 8 + 1 }

// entry holds the events and actions accumulated for one session. A single
// mutex guards all four sequences plus the byte counter so get_next_chunk and
// reset_chunked_data can move data between them atomically with respect to
// add_event/add_action.
type entry struct {
	mu sync.Mutex

	events            []record
	actions           []record
	eventsBeingSent   []record
	actionsBeingSent  []record
	markedForSending  bool

	totalBytes int64
}

func newEntry() *entry {
	return &entry{}
}

func (e *entry) addEvent(r record) {
	e.mu.Lock()
	e.events = append(e.events, r)
	e.totalBytes += r.byteSize()
	e.mu.Unlock()
}

func (e *entry) addAction(r record) {
	e.mu.Lock()
	e.actions = append(e.actions, r)
	e.totalBytes += r.byteSize()
	e.mu.Unlock()
}

// isEmpty reports whether both events and actions (not counting in-flight
// being-sent buffers) are empty.
func (e *entry) isEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events) == 0 && len(e.actions) == 0
}

// nextChunk builds prefix followed by a separator-delimited concatenation of
// record data, taking events first then actions, stopping before exceeding
// maxBytes. Selected records move into the being-sent buffers and the entry
// is flagged as having data in flight.
func (e *entry) nextChunk(prefix string, maxBytes int, separator string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	chunk := prefix
	budget := maxBytes - len(prefix)
	took := false

	take := func(src *[]record, dst *[]record) {
		for len(*src) > 0 {
			r := (*src)[0]
			cost := len(r.data)
			if took {
				cost += len(separator)
			}
			if cost > budget {
				return
			}
			if took {
				chunk += separator
			}
			chunk += r.data
			budget -= cost
			took = true
			*dst = append(*dst, r)
			*src = (*src)[1:]
		}
	}
	take(&e.events, &e.eventsBeingSent)
	take(&e.actions, &e.actionsBeingSent)

	if !took {
		return ""
	}
	e.markedForSending = true
	return chunk
}

// removeChunkedData discards the being-sent buffers after a successful send.
func (e *entry) removeChunkedData() {
	e.mu.Lock()
	e.totalBytes -= sumBytes(e.eventsBeingSent) + sumBytes(e.actionsBeingSent)
	e.eventsBeingSent = nil
	e.actionsBeingSent = nil
	e.markedForSending = false
	e.mu.Unlock()
}

// resetChunkedData moves the being-sent buffers back to the head of their
// respective sequences after a failed send, recomputing byte counts.
func (e *entry) resetChunkedData() {
	e.mu.Lock()
	e.events = append(e.eventsBeingSent, e.events...)
	e.actions = append(e.actionsBeingSent, e.actions...)
	e.eventsBeingSent = nil
	e.actionsBeingSent = nil
	e.markedForSending = false
	e.totalBytes = sumBytes(e.events) + sumBytes(e.actions)
	e.mu.Unlock()
}

func sumBytes(rs []record) int64 {
	var total int64
	for _, r := range rs {
		total += r.byteSize()
	}
	return total
}

// evictByAge drops all records with ts < cutoff from the front of events
// then actions, returning the number removed.
func (e *entry) evictByAge(cutoff int64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	removed := 0
	removed += e.evictFrontWhile(&e.events, func(r record) bool { return r.ts < cutoff })
	removed += e.evictFrontWhile(&e.actions, func(r record) bool { return r.ts < cutoff })
	return removed
}

// evictByNumber removes up to n records total, events first then actions,
// from the fronts.
func (e *entry) evictByNumber(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	removed := 0
	for removed < n && len(e.events) > 0 {
		e.removeFront(&e.events)
		removed++
	}
	for removed < n && len(e.actions) > 0 {
		e.removeFront(&e.actions)
		removed++
	}
	return removed
}

func (e *entry) evictFrontWhile(seq *[]record, pred func(record) bool) int {
	removed := 0
	for len(*seq) > 0 && pred((*seq)[0]) {
		e.removeFront(seq)
		removed++
	}
	return removed
}

func (e *entry) removeFront(seq *[]record) {
	r := (*seq)[0]
	*seq = (*seq)[1:]
	e.totalBytes -= r.byteSize()
}
