package encoding

import (
	"errors"
	"fmt"
)

// ShrinkFactor scales the video bitrate after an oversized attempt.
const ShrinkFactor = 0.95

// ErrAttemptsExhausted is returned when the attempt cap is hit while the
// output is still over budget.
var ErrAttemptsExhausted = errors.New("attempts exhausted")

// Phase is a step of the convergence loop.
type Phase int

const (
	PhaseInit Phase = iota
	PhasePass1
	PhasePass2
	PhaseMeasuring
	PhaseAccepted
	PhaseExhausted
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhasePass1:
		return "pass1"
	case PhasePass2:
		return "pass2"
	case PhaseMeasuring:
		return "measuring"
	case PhaseAccepted:
		return "accepted"
	case PhaseExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Terminal reports whether no further transitions apply.
func (p Phase) Terminal() bool {
	return p == PhaseAccepted || p == PhaseExhausted
}

// State is the loop position. Transitions return new values and never
// mutate the receiver.
type State struct {
	Phase       Phase
	Attempt     int
	TotalFrames uint64
	Bitrates    Bitrates
	// LastSize is the measured output of the most recent attempt.
	LastSize int64
}

// Start enters pass 1 of attempt 1.
func Start(totalFrames uint64, bitrates Bitrates) State {
	return State{
		Phase:       PhasePass1,
		Attempt:     1,
		TotalFrames: totalFrames,
		Bitrates:    bitrates,
	}
}

// Pass returns 1 or 2 while a pass is due, otherwise 0.
func (s State) Pass() int {
	switch s.Phase {
	case PhasePass1:
		return 1
	case PhasePass2:
		return 2
	default:
		return 0
	}
}

// PassDone advances pass 1 to pass 2 and pass 2 to measuring. Other phases
// are returned unchanged.
func (s State) PassDone() State {
	switch s.Phase {
	case PhasePass1:
		s.Phase = PhasePass2
	case PhasePass2:
		s.Phase = PhaseMeasuring
	}
	return s
}

// Measured applies the size check. An output strictly under budget is
// accepted. Otherwise the next attempt starts at ShrinkFactor times the
// video bitrate, unless maxAttempts (> 0) attempts have already run.
func (s State) Measured(sizeBytes, budgetBytes int64, maxAttempts int) (State, error) {
	if s.Phase != PhaseMeasuring {
		return s, fmt.Errorf("measure output in phase %s", s.Phase)
	}
	s.LastSize = sizeBytes
	if sizeBytes < budgetBytes {
		s.Phase = PhaseAccepted
		return s, nil
	}
	if maxAttempts > 0 && s.Attempt >= maxAttempts {
		s.Phase = PhaseExhausted
		return s, fmt.Errorf("%w: %d attempts, last output %d bytes against a %d byte budget",
			ErrAttemptsExhausted, s.Attempt, sizeBytes, budgetBytes)
	}
	s.Phase = PhasePass1
	s.Attempt++
	s.Bitrates.VideoKbps *= ShrinkFactor
	return s, nil
}
