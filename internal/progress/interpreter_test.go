package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestNewSelectsInterpreter(t *testing.T) {
	var out bytes.Buffer
	tests := []struct {
		mode string
		want string
	}{
		{"", "*progress.Tracker"},
		{"parse", "*progress.Tracker"},
		{" Passthrough ", "*progress.Echo"},
	}
	for _, tt := range tests {
		interp, err := New(Options{Mode: tt.mode, Out: &out})
		if err != nil {
			t.Fatalf("New(%q) returned error: %v", tt.mode, err)
		}
		switch interp.(type) {
		case *Tracker:
			if tt.want != "*progress.Tracker" {
				t.Fatalf("New(%q) returned Tracker", tt.mode)
			}
		case *Echo:
			if tt.want != "*progress.Echo" {
				t.Fatalf("New(%q) returned Echo", tt.mode)
			}
		}
	}
	if _, err := New(Options{Mode: "json"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestTrackerDrawsPerSample(t *testing.T) {
	var out bytes.Buffer
	var observed []State
	tracker := NewTracker(NewRenderer(&out, false, 16), func(_ Sample, s State) {
		observed = append(observed, s)
	})

	tracker.Begin(1000, LabelFor(2, 1))
	for _, line := range []string{"frame=250", "fps=25.0", "bitrate=N/A", "fps=50", "frame=500", "progress=continue"} {
		if err := tracker.Line(line); err != nil {
			t.Fatalf("Line(%q) returned error: %v", line, err)
		}
	}
	tracker.End()

	if len(observed) != 2 {
		t.Fatalf("expected 2 states, got %d", len(observed))
	}
	if observed[1].Percent != 50 || observed[1].SecondsLeft != 10 {
		t.Fatalf("last state = %+v", observed[1])
	}
	if tracker.Last().Pass.String() != "3/4" {
		t.Fatalf("pass = %s, want 3/4", tracker.Last().Pass)
	}
	if got := strings.Count(out.String(), "time left pass"); got != 2 {
		t.Fatalf("expected two blocks, got %d", got)
	}
}

func TestTrackerInterruptStartsNewBlock(t *testing.T) {
	var out bytes.Buffer
	tracker := NewTracker(NewRenderer(&out, true, 16), nil)
	tracker.Begin(100, LabelFor(1, 1))
	feed := func(lines ...string) {
		for _, line := range lines {
			if err := tracker.Line(line); err != nil {
				t.Fatalf("Line(%q) returned error: %v", line, err)
			}
		}
	}

	feed("frame=10", "fps=5")
	feed("frame=20", "fps=5")
	if got := strings.Count(out.String(), cursorUp4); got != 1 {
		t.Fatalf("expected one rewind before interrupt, got %d", got)
	}
	tracker.Interrupt()
	feed("frame=30", "fps=5")
	if got := strings.Count(out.String(), cursorUp4); got != 1 {
		t.Fatalf("redraw after interrupt must not rewind, got %d rewinds", got)
	}
	if tracker.Last().Percent != 30 {
		t.Fatalf("last percent = %d, want 30", tracker.Last().Percent)
	}
}

func TestTrackerReportsMalformedLine(t *testing.T) {
	var out bytes.Buffer
	tracker := NewTracker(NewRenderer(&out, false, 16), nil)
	tracker.Begin(100, LabelFor(1, 1))

	if err := tracker.Line("frame=abc"); !errors.Is(err, ErrMalformedLine) {
		t.Fatalf("expected ErrMalformedLine, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("malformed line must not draw, got %q", out.String())
	}
}

func TestTrackerBeginClearsBuffer(t *testing.T) {
	var out bytes.Buffer
	tracker := NewTracker(NewRenderer(&out, false, 16), nil)
	tracker.Begin(100, LabelFor(1, 1))
	tracker.Line("frame=90")
	tracker.End()

	tracker.Begin(100, LabelFor(1, 2))
	tracker.Line("fps=30")
	if out.Len() != 0 {
		t.Fatalf("frame from previous pass leaked into new pass: %q", out.String())
	}
}

func TestEchoCopiesLines(t *testing.T) {
	var out bytes.Buffer
	echo := NewEcho(&out)
	echo.Begin(10, LabelFor(1, 1))
	for _, line := range []string{"frame=1", "fps=garbage", "progress=end"} {
		if err := echo.Line(line); err != nil {
			t.Fatalf("Line returned error: %v", err)
		}
	}
	echo.End()
	if out.String() != "frame=1\nfps=garbage\nprogress=end\n" {
		t.Fatalf("unexpected echo output %q", out.String())
	}
}
