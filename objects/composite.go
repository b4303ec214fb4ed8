// Package objects implements the session/action/tracer composite model:
// Session, RootAction, Action (leaf), and WebRequestTracer, plus the
// parent/child composition rules and sequence/timestamp discipline that
// feed the beacon serializer (package beacon).
//
// Field mutability is grounded on session.Session (the teacher repo): fields
// fixed at construction (ids, start timestamp/sequence, parent) are read
// without a lock; fields that change over an object's life are guarded by a
// mutex: open children by compositeBase's sync.Mutex, and a Session's state
// and end timestamp by a sync.RWMutex as session.Session guards
// Headers/State/LastActivity.
package objects

import "sync"

// closable is anything a composite can own as an open child and later force
// closed.
type closable interface {
	// closeForced closes the child on its parent's behalf the same way a
	// caller-initiated Leave/Stop would, so an action still emits its end
	// record and a tracer its web-request record: used only when a parent
	// closes its remaining children.
	closeForced()
}

// compositeBase tracks a composite's open children and closes them in
// reverse insertion order, matching "closing a parent closes all remaining
// children in reverse insertion order."
type compositeBase struct {
	mu       sync.Mutex
	children []closable
}

// addChild registers child as open.
func (c *compositeBase) addChild(child closable) {
	c.mu.Lock()
	c.children = append(c.children, child)
	c.mu.Unlock()
}

// removeChild unregisters child; a no-op if it isn't present (already
// removed by its own close).
func (c *compositeBase) removeChild(child closable) {
	c.mu.Lock()
	for i, ch := range c.children {
		if ch == child {
			c.children = append(c.children[:i], c.children[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
}

// closeChildren force-closes every still-open child, most recently added
// first.
func (c *compositeBase) closeChildren() {
	c.mu.Lock()
	remaining := c.children
	c.children = nil
	c.mu.Unlock()

	for i := len(remaining) - 1; i >= 0; i-- {
		remaining[i].closeForced()
	}
}
