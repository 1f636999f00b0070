package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrAmbiguousID is returned when an id prefix matches more than one run.
var ErrAmbiguousID = errors.New("ambiguous run id")

const runColumns = "id, input_path, output_path, codec, budget_bytes, total_frames, duration_seconds, status, final_size, error_message, started_at, finished_at"

// BeginRun inserts run in the running state. An empty ID is replaced with a
// fresh UUID; the stored run is returned.
func (s *Store) BeginRun(ctx context.Context, run Run) (Run, error) {
	if strings.TrimSpace(run.ID) == "" {
		run.ID = uuid.NewString()
	}
	run.Status = StatusRunning
	run.StartedAt = time.Now().UTC()
	run.FinishedAt = time.Time{}
	run.Attempts = nil

	if _, err := s.exec(ctx,
		`INSERT INTO runs (
            id, input_path, output_path, codec, budget_bytes,
            total_frames, duration_seconds, status, started_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Input,
		run.Output,
		run.Codec,
		run.BudgetBytes,
		int64(run.TotalFrames),
		run.DurationSeconds,
		run.Status,
		formatTime(run.StartedAt),
	); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordAttempt appends a measured attempt to runID.
func (s *Store) RecordAttempt(ctx context.Context, runID string, attempt Attempt) error {
	if attempt.RecordedAt.IsZero() {
		attempt.RecordedAt = time.Now().UTC()
	}
	if _, err := s.exec(ctx,
		`INSERT INTO attempts (
            run_id, attempt_index, video_kbps, audio_kbps, size_bytes, accepted, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID,
		attempt.Index,
		attempt.VideoKbps,
		attempt.AudioKbps,
		attempt.SizeBytes,
		boolToInt(attempt.Accepted),
		formatTime(attempt.RecordedAt),
	); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// FinishRun marks runID terminal with status and the final output size.
// runErr, when set, is stored as the error message.
func (s *Store) FinishRun(ctx context.Context, runID string, status Status, finalSize int64, runErr error) error {
	if !status.IsTerminal() {
		return fmt.Errorf("finish run: status %q is not terminal", status)
	}
	var message any
	if runErr != nil {
		message = runErr.Error()
	}
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, final_size = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		status,
		finalSize,
		message,
		formatTime(time.Now().UTC()),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: %s not found", runID)
	}
	return nil
}

// Runs returns the most recent runs first, attempts included. A limit of
// zero or less returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	rows.Close()

	for i := range runs {
		attempts, err := s.attempts(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Attempts = attempts
	}
	return runs, nil
}

// Run returns the run whose id equals or uniquely starts with id, attempts
// included. A missing run yields nil without error.
func (s *Store) Run(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id = ? DESC LIMIT 2`,
		id, escapeLike(id)+"%", id,
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	switch {
	case len(matches) == 0:
		return nil, nil
	case len(matches) > 1 && matches[0].ID != id:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, id)
	}
	run := matches[0]
	attempts, err := s.attempts(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Attempts = attempts
	return &run, nil
}

func (s *Store) attempts(ctx context.Context, runID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT attempt_index, video_kbps, audio_kbps, size_bytes, accepted, recorded_at
         FROM attempts WHERE run_id = ? ORDER BY attempt_index`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var (
			attempt  Attempt
			accepted int
			recorded string
		)
		if err := rows.Scan(&attempt.Index, &attempt.VideoKbps, &attempt.AudioKbps, &attempt.SizeBytes, &accepted, &recorded); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempt.Accepted = accepted != 0
		attempt.RecordedAt = parseTime(recorded)
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run          Run
		totalFrames  int64
		status       string
		errorMessage sql.NullString
		startedRaw   string
		finishedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Input,
		&run.Output,
		&run.Codec,
		&run.BudgetBytes,
		&totalFrames,
		&run.DurationSeconds,
		&status,
		&run.FinalSize,
		&errorMessage,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Run{}, err
	}
	if totalFrames > 0 {
		run.TotalFrames = uint64(totalFrames)
	}
	run.Status = Status(status)
	run.ErrorMessage = errorMessage.String
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseTime(finishedRaw.String)
	}
	return run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
