package sender

import (
	"sync"
	"sync/atomic"
)

// Task is the background SenderTask (spec C9): it owns a Context and drives
// the state machine from Initial to Terminal in its own goroutine. Start/Stop
// follow the same CAS-guarded idempotent lifecycle as evictor.Evictor.
type Task struct {
	ctx *Context

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewTask constructs a Task bound to ctx, starting from InitialState.
func NewTask(ctx *Context) *Task {
	return &Task{ctx: ctx}
}

// Start launches the state-machine loop in a background goroutine. Returns
// false if the task is already running.
func (t *Task) Start() bool {
	if !t.running.CompareAndSwap(false, true) {
		return false
	}
	t.wg.Add(1)
	go t.loop()
	return true
}

// Stop requests shutdown (driving the state machine through FlushSessions to
// Terminal) and blocks until the goroutine exits. Returns false if the task
// was not running.
func (t *Task) Stop() bool {
	if !t.running.CompareAndSwap(true, false) {
		return false
	}
	t.ctx.Shutdown()
	t.wg.Wait()
	return true
}

func (t *Task) loop() {
	defer t.wg.Done()
	var state State = NewInitialState()
	for {
		if _, terminal := state.(*TerminalState); terminal {
			return
		}
		state = state.Execute(t.ctx)
	}
}

// Context returns the task's shared Context, used by the façade to register
// sessions and query initialization state.
func (t *Task) Context() *Context { return t.ctx }
