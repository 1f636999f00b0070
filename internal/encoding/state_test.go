package encoding

import (
	"errors"
	"math"
	"testing"
)

func runAttempt(t *testing.T, s State) State {
	t.Helper()
	if s.Phase != PhasePass1 || s.Pass() != 1 {
		t.Fatalf("expected pass 1, got %s", s.Phase)
	}
	s = s.PassDone()
	if s.Phase != PhasePass2 || s.Pass() != 2 {
		t.Fatalf("expected pass 2, got %s", s.Phase)
	}
	s = s.PassDone()
	if s.Phase != PhaseMeasuring || s.Pass() != 0 {
		t.Fatalf("expected measuring, got %s", s.Phase)
	}
	return s
}

func TestStateAcceptsFirstAttemptUnderBudget(t *testing.T) {
	s := runAttempt(t, Start(1000, Bitrates{VideoKbps: 1808, AudioKbps: 240}))
	next, err := s.Measured(24_999_999, 25_000_000, 0)
	if err != nil {
		t.Fatalf("Measured returned error: %v", err)
	}
	if next.Phase != PhaseAccepted || next.Attempt != 1 {
		t.Fatalf("expected accepted on attempt 1, got %s attempt %d", next.Phase, next.Attempt)
	}
	if !next.Phase.Terminal() {
		t.Fatal("accepted must be terminal")
	}
}

func TestStateSizeEqualToBudgetRetries(t *testing.T) {
	s := runAttempt(t, Start(1000, Bitrates{VideoKbps: 1000, AudioKbps: 128}))
	next, err := s.Measured(25_000_000, 25_000_000, 0)
	if err != nil {
		t.Fatalf("Measured returned error: %v", err)
	}
	if next.Phase != PhasePass1 || next.Attempt != 2 {
		t.Fatalf("expected retry, got %s attempt %d", next.Phase, next.Attempt)
	}
}

func TestStateShrinkProgression(t *testing.T) {
	initial := Bitrates{VideoKbps: 2000, AudioKbps: 240}
	s := Start(500, initial)
	for i := 1; i <= 6; i++ {
		want := initial.VideoKbps * math.Pow(ShrinkFactor, float64(i-1))
		if math.Abs(s.Bitrates.VideoKbps-want) > 1e-9 {
			t.Fatalf("attempt %d video = %v, want %v", i, s.Bitrates.VideoKbps, want)
		}
		if s.Bitrates.AudioKbps != initial.AudioKbps {
			t.Fatalf("attempt %d audio changed to %v", i, s.Bitrates.AudioKbps)
		}
		if s.TotalFrames != 500 {
			t.Fatalf("total frames changed to %d", s.TotalFrames)
		}
		prev := s.Bitrates.VideoKbps
		var err error
		s, err = runAttempt(t, s).Measured(30_000_000, 25_000_000, 0)
		if err != nil {
			t.Fatalf("Measured returned error: %v", err)
		}
		if s.Bitrates.VideoKbps > prev {
			t.Fatalf("bitrate increased from %v to %v", prev, s.Bitrates.VideoKbps)
		}
		if s.Attempt != i+1 {
			t.Fatalf("attempt = %d, want %d", s.Attempt, i+1)
		}
	}
}

func TestStateExhaustsAtCap(t *testing.T) {
	s := Start(100, Bitrates{VideoKbps: 1000, AudioKbps: 100})
	var err error
	for i := 1; i < 3; i++ {
		s, err = runAttempt(t, s).Measured(2, 1, 3)
		if err != nil {
			t.Fatalf("attempt %d: unexpected error %v", i, err)
		}
	}
	final, err := runAttempt(t, s).Measured(2, 1, 3)
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("expected ErrAttemptsExhausted, got %v", err)
	}
	if final.Phase != PhaseExhausted || final.Attempt != 3 || final.LastSize != 2 {
		t.Fatalf("unexpected final state %+v", final)
	}
}

func TestStateMeasuredOutsideMeasuringPhase(t *testing.T) {
	s := Start(1, Bitrates{VideoKbps: 1})
	if _, err := s.Measured(0, 1, 0); err == nil {
		t.Fatal("expected error when measuring during pass 1")
	}
}

func TestPassDoneIgnoresTerminalPhases(t *testing.T) {
	s := State{Phase: PhaseAccepted, Attempt: 2}
	if got := s.PassDone(); got != s {
		t.Fatalf("PassDone changed terminal state: %+v", got)
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseMeasuring.String() != "measuring" || Phase(42).String() != "phase(42)" {
		t.Fatalf("unexpected phase names %q %q", PhaseMeasuring, Phase(42))
	}
}
