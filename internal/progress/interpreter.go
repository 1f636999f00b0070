package progress

import (
	"fmt"
	"io"
	"strings"
)

// Modes accepted by New.
const (
	ModeParse       = "parse"
	ModePassthrough = "passthrough"
)

// Interpreter consumes the progress channel of one pass at a time.
type Interpreter interface {
	// Begin prepares for a pass over totalFrames frames.
	Begin(totalFrames uint64, pass PassLabel)
	// Line handles one line. A *LineError means the line was skipped.
	Line(line string) error
	// End closes the pass.
	End()
	// Interrupt records that something else wrote to the display, so the
	// next redraw starts below it instead of over it.
	Interrupt()
}

// Options configures New.
type Options struct {
	Mode     string
	Out      io.Writer
	InPlace  bool
	BarWidth int
	// OnState, when set, observes every derived state in parse mode.
	OnState func(Sample, State)
}

// New returns the interpreter for opts.Mode.
func New(opts Options) (Interpreter, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Mode)) {
	case ModeParse, "":
		return NewTracker(NewRenderer(opts.Out, opts.InPlace, opts.BarWidth), opts.OnState), nil
	case ModePassthrough:
		return NewEcho(opts.Out), nil
	default:
		return nil, fmt.Errorf("progress mode: unsupported value %q", opts.Mode)
	}
}

// Tracker parses progress lines and redraws the status block per sample.
type Tracker struct {
	parser   Parser
	renderer *Renderer
	onState  func(Sample, State)
	total    uint64
	pass     PassLabel
	last     State
}

// NewTracker returns a parse-mode interpreter.
func NewTracker(renderer *Renderer, onState func(Sample, State)) *Tracker {
	return &Tracker{renderer: renderer, onState: onState}
}

func (t *Tracker) Begin(totalFrames uint64, pass PassLabel) {
	t.parser.Reset()
	t.total = totalFrames
	t.pass = pass
	t.last = State{Pass: pass}
}

func (t *Tracker) Line(line string) error {
	sample, ok, err := t.parser.Parse(line)
	if err != nil || !ok {
		return err
	}
	state := Derive(sample, t.total, t.pass)
	t.last = state
	if t.onState != nil {
		t.onState(sample, state)
	}
	return t.renderer.Draw(sample, t.total, state)
}

func (t *Tracker) End() {
	t.renderer.Break()
}

func (t *Tracker) Interrupt() {
	t.renderer.Break()
}

// Last returns the most recent derived state of the current pass.
func (t *Tracker) Last() State {
	return t.last
}

// Echo copies the progress stream verbatim.
type Echo struct {
	w io.Writer
}

// NewEcho returns a passthrough interpreter.
func NewEcho(w io.Writer) *Echo {
	return &Echo{w: w}
}

func (e *Echo) Begin(uint64, PassLabel) {}

func (e *Echo) Line(line string) error {
	_, err := io.WriteString(e.w, line+"\n")
	return err
}

func (e *Echo) End() {}

func (e *Echo) Interrupt() {}
