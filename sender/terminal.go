package sender

// TerminalState is absorbing: Execute is a no-op that returns itself
// forever, letting SenderTask's loop exit.
type TerminalState struct{}

func (s *TerminalState) Name() string { return "Terminal" }

func (s *TerminalState) Execute(ctx *Context) State { return s }
