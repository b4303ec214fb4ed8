package sender

import (
	stdcontext "context"
	"time"

	"github.com/Dynatrace/openkit-go/protocol"
)

// defaultInitialRetryDelay is S when Config.InitialRetryDelay is unset.
const defaultInitialRetryDelay = 1 * time.Second

// InitialState performs status requests with exponential backoff until it
// gets a usable response or shutdown is requested.
type InitialState struct {
	reinitCycle int
}

func NewInitialState() *InitialState { return &InitialState{} }

func (s *InitialState) Name() string { return "Initial" }

func (s *InitialState) Execute(ctx *Context) State {
	base := ctx.Cfg.InitialRetryDelay
	if base <= 0 {
		base = defaultInitialRetryDelay
	}

	for {
		for attempt := 0; attempt < maxInitialAttempts; attempt++ {
			if ctx.shuttingDown() {
				ctx.completeInit(false)
				return &TerminalState{}
			}

			resp, err := ctx.Client.StatusRequest(stdcontext.Background(), ctx.Cfg.EndpointURL, ctx.statusQuery())
			ctx.noteStatusRequest(err, resp)
			if err != nil || resp == nil {
				if !ctx.sleep(backoffDelay(base, attempt)) {
					ctx.completeInit(false)
					return &TerminalState{}
				}
				continue
			}

			if resp.Throttled() {
				if !ctx.sleep(resp.RetryAfter) {
					ctx.completeInit(false)
					return &TerminalState{}
				}
				attempt = -1 // retry the status request without counting this as a backoff attempt
				continue
			}

			if !resp.Success() {
				if !ctx.sleep(backoffDelay(base, attempt)) {
					ctx.completeInit(false)
					return &TerminalState{}
				}
				continue
			}

			attrs, perr := protocol.Parse(resp.Body, ctx.Drift, ctx.Log)
			if perr != nil {
				if ctx.Log != nil {
					ctx.Log.Warnf("sender: discarding malformed status response: %v", perr)
				}
				if !ctx.sleep(backoffDelay(base, attempt)) {
					ctx.completeInit(false)
					return &TerminalState{}
				}
				continue
			}

			ctx.mergeAttributes(attrs)
			ctx.completeInit(true)
			if ctx.Attributes().Capture {
				return &CaptureOnState{}
			}
			return &CaptureOffState{}
		}

		if !ctx.sleep(reinitDelay(s.reinitCycle)) {
			ctx.completeInit(false)
			return &TerminalState{}
		}
		s.reinitCycle++
	}
}
