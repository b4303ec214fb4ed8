package sender

import (
	stdcontext "context"

	"github.com/Dynatrace/openkit-go/protocol"
)

// CaptureOnState is the productive cycle that opens new sessions, flushes
// finished sessions (evicting them afterward), and periodically flushes
// still-open sessions.
type CaptureOnState struct{}

func (s *CaptureOnState) Name() string { return "CaptureOn" }

func (s *CaptureOnState) Execute(ctx *Context) State {
	if ctx.shuttingDown() {
		return &FlushSessionsState{}
	}

	openNewSessions(ctx)
	next := sendFinishedSessions(ctx, true)
	if next != nil {
		return next
	}

	if shouldFlushOpenSessions(ctx) {
		next := sendOpenSessions(ctx)
		if next != nil {
			return next
		}
		ctx.lastOpenSessionSendMs.Store(ctx.now())
	}

	if !ctx.sleep(ctx.paceInterval()) {
		return &FlushSessionsState{}
	}
	return s
}

// openNewSessions sends one status/new-session request per New session to
// obtain its server id. Failure on one session does not stop the others.
func openNewSessions(ctx *Context) {
	for _, w := range ctx.registry.byState(SessionNew) {
		resp, err := ctx.Client.StatusRequest(stdcontext.Background(), ctx.Cfg.EndpointURL, ctx.statusQuery())
		ctx.noteStatusRequest(err, resp)
		if err != nil || resp == nil || !resp.Success() {
			continue
		}
		attrs, perr := protocol.Parse(resp.Body, ctx.Drift, ctx.Log)
		if perr != nil {
			continue
		}
		ctx.mergeAttributes(attrs)
		w.markConfigured()
	}
}

// sendFinishedSessions uploads each finished+configured session's
// accumulated chunk and, on success, evicts its cache entry. If evict is
// false the entry is left for FlushSessionsState's best-effort pass. A
// capture-off or throttling response short-circuits to the matching next
// state, clearing all captured data first.
func sendFinishedSessions(ctx *Context, evict bool) State {
	for _, w := range ctx.registry.byState(SessionFinishedConfigured) {
		next := sendChunk(ctx, w)
		if next != nil {
			return next
		}
		if evict && ctx.Cache.IsEmpty(w.ID) {
			ctx.Cache.DeleteEntry(w.ID)
			ctx.registry.remove(w.ID)
		}
	}
	return nil
}

// shouldFlushOpenSessions reports whether send_interval_ms has elapsed
// since the last open-session flush.
func shouldFlushOpenSessions(ctx *Context) bool {
	interval := ctx.Cfg.SendIntervalMs
	if interval <= 0 {
		return true
	}
	return ctx.now()-ctx.lastOpenSessionSendMs.Load() >= interval
}

// sendOpenSessions flushes every Configured (still-open) session's
// accumulated chunk without evicting its entry.
func sendOpenSessions(ctx *Context) State {
	for _, w := range ctx.registry.byState(SessionConfigured) {
		if next := sendChunk(ctx, w); next != nil {
			return next
		}
	}
	return nil
}

// sendChunk uploads one pending chunk for w. Returns a non-nil next state
// if the response demands a state transition (capture off, throttled).
func sendChunk(ctx *Context, w *SessionWrapper) State {
	chunk := ctx.Cache.GetNextChunk(w.ID, "", maxBeaconSizeBytes(ctx), "&")
	if chunk == "" {
		return nil
	}

	resp, err := ctx.Client.BeaconRequest(stdcontext.Background(), ctx.Cfg.EndpointURL, ctx.statusQuery(), chunk)
	ctx.noteBeaconRequest(err, resp)
	if err != nil || resp == nil {
		ctx.Cache.ResetChunkedData(w.ID)
		return nil
	}

	if resp.Throttled() {
		ctx.Cache.ResetChunkedData(w.ID)
		clearAllCapturedData(ctx)
		return &CaptureOffState{retryAfter: resp.RetryAfter}
	}

	if !resp.Success() {
		ctx.Cache.ResetChunkedData(w.ID)
		return nil
	}

	attrs, perr := protocol.Parse(resp.Body, ctx.Drift, ctx.Log)
	if perr == nil {
		ctx.mergeAttributes(attrs)
	}
	ctx.Cache.RemoveChunkedData(w.ID)

	if !ctx.Attributes().Capture {
		clearAllCapturedData(ctx)
		return &CaptureOffState{}
	}
	return nil
}

// clearAllCapturedData discards every session's accumulated records, used
// when transitioning away from CaptureOn due to capture=off or throttling.
func clearAllCapturedData(ctx *Context) {
	for _, id := range ctx.Cache.GetBeaconIDs() {
		ctx.Cache.DeleteEntry(id)
	}
}

// maxBeaconSizeBytes resolves the negotiated chunk size, defaulting to 150KB
// (the protocol's historical default) when the server has not yet asserted
// a value.
func maxBeaconSizeBytes(ctx *Context) int {
	attrs := ctx.Attributes()
	if attrs.MaxBeaconSizeBytes > 0 {
		return int(attrs.MaxBeaconSizeBytes)
	}
	return 150 * 1024
}
