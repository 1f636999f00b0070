package history

import "time"

// Status represents the lifecycle of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusAccepted  Status = "accepted"
	StatusFailed    Status = "failed"
	StatusExhausted Status = "exhausted"
)

// IsTerminal reports whether the run has finished.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusFailed || s == StatusExhausted
}

// Run is one invocation against one input file.
type Run struct {
	ID              string
	Input           string
	Output          string
	Codec           string
	BudgetBytes     int64
	TotalFrames     uint64
	DurationSeconds float64
	Status          Status
	FinalSize       int64
	ErrorMessage    string
	StartedAt       time.Time
	FinishedAt      time.Time
	Attempts        []Attempt
}

// Elapsed returns the wall time of a finished run, or zero while it runs.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Attempt is one two-pass encode at a fixed bitrate.
type Attempt struct {
	Index      int
	VideoKbps  float64
	AudioKbps  float64
	SizeBytes  int64
	Accepted   bool
	RecordedAt time.Time
}
