package sender

// FlushSessionsState runs once on shutdown: a best-effort flush of every
// finished+configured session's accumulated chunk, then Terminal.
type FlushSessionsState struct{}

func (s *FlushSessionsState) Name() string { return "FlushSessions" }

func (s *FlushSessionsState) Execute(ctx *Context) State {
	for _, w := range ctx.registry.byState(SessionFinishedConfigured) {
		sendChunk(ctx, w)
		ctx.Cache.DeleteEntry(w.ID)
	}
	return &TerminalState{}
}
