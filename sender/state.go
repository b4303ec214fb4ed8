package sender

// State is one node of the sending state machine's DAG (spec §4.8). Execute
// performs this state's work against ctx and returns the next state to run;
// a State that returns itself represents a productive cycle (CaptureOn,
// CaptureOff), and TerminalState returns itself forever as the absorbing
// state.
type State interface {
	Execute(ctx *Context) State
	Name() string
}
