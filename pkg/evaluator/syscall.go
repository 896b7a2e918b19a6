package evaluator

// SysCall is a request for an effect the evaluator cannot perform itself.
// The driver inspects the variant, performs the corresponding I/O or agent
// interaction, and resumes the originating state with a string result.
type SysCall interface {
	syscall() // sealed marker

	// CallKind returns the stable kind name of the call: "read", "write",
	// "tell", or "ask". Drivers use it for display and policy checks.
	CallKind() string
}

// ReadCall requests a line of external input. The supplied result becomes
// the value of the originating (read) expression.
type ReadCall struct{}

func (ReadCall) syscall()         {}
func (ReadCall) CallKind() string { return "read" }

// WriteCall requests that Text be emitted to the output stream. The
// resumption value is the empty string.
type WriteCall struct {
	Text string
}

func (WriteCall) syscall()         {}
func (WriteCall) CallKind() string { return "write" }

// TellCall requests that Text be appended to the external conversation
// log. The resumption value is the empty string.
type TellCall struct {
	Text string
}

func (TellCall) syscall()         {}
func (TellCall) CallKind() string { return "tell" }

// AskCall requests that Question be posed to the external agent. The
// supplied answer becomes the value of the originating (ask ...) expression.
type AskCall struct {
	Question string
}

func (AskCall) syscall()         {}
func (AskCall) CallKind() string { return "ask" }
