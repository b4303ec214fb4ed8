package sender

import (
	stdcontext "context"
	"time"

	"github.com/Dynatrace/openkit-go/protocol"
)

// CaptureOffState sends only a periodic status request; finished sessions'
// captured data is discarded rather than sent. retryAfter, when set, is
// honored as a one-time extra sleep before the first status request (the
// 429 path into this state).
type CaptureOffState struct {
	retryAfter time.Duration
}

func (s *CaptureOffState) Name() string { return "CaptureOff" }

func (s *CaptureOffState) Execute(ctx *Context) State {
	if ctx.shuttingDown() {
		return &FlushSessionsState{}
	}

	if s.retryAfter > 0 {
		if !ctx.sleep(s.retryAfter) {
			return &FlushSessionsState{}
		}
		s.retryAfter = 0
	}

	// Finished sessions' data is discarded, not sent, while capture is off.
	for _, w := range ctx.registry.byState(SessionFinishedConfigured) {
		ctx.Cache.DeleteEntry(w.ID)
		ctx.registry.remove(w.ID)
	}

	resp, err := ctx.Client.StatusRequest(stdcontext.Background(), ctx.Cfg.EndpointURL, ctx.statusQuery())
	ctx.noteStatusRequest(err, resp)
	if err != nil || resp == nil {
		if !ctx.sleep(ctx.paceInterval()) {
			return &FlushSessionsState{}
		}
		return s
	}

	if resp.Throttled() {
		if !ctx.sleep(resp.RetryAfter) {
			return &FlushSessionsState{}
		}
		return s
	}

	if !resp.Success() {
		if !ctx.sleep(ctx.paceInterval()) {
			return &FlushSessionsState{}
		}
		return s
	}

	attrs, perr := protocol.Parse(resp.Body, ctx.Drift, ctx.Log)
	if perr != nil {
		if !ctx.sleep(ctx.paceInterval()) {
			return &FlushSessionsState{}
		}
		return s
	}
	ctx.mergeAttributes(attrs)

	if ctx.Attributes().Capture {
		return &CaptureOnState{}
	}
	if !ctx.sleep(ctx.paceInterval()) {
		return &FlushSessionsState{}
	}
	return s
}
