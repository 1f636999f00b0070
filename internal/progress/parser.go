package progress

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedLine marks a recognized progress key carrying an unusable value.
var ErrMalformedLine = errors.New("malformed progress line")

// Sample is one complete progress observation.
type Sample struct {
	Frame uint64
	FPS   int
}

// LineError describes a progress line that was skipped.
type LineError struct {
	Line string
	Key  string
	Err  error
}

func (e *LineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s value in %q: %v", ErrMalformedLine, e.Key, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %s value in %q", ErrMalformedLine, e.Key, e.Line)
}

func (e *LineError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedLine}
	}
	return []error{ErrMalformedLine, e.Err}
}

// Parser accumulates frame and fps values across lines. The zero value is
// ready to use.
type Parser struct {
	frame uint64
	fps   int
}

// Parse consumes one line. It returns a sample once both frame and fps are
// non-zero, then clears both. Unrelated keys and lines without '=' are
// ignored. A recognized key with a bad value returns a *LineError and leaves
// the buffer untouched.
func (p *Parser) Parse(line string) (Sample, bool, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return Sample{}, false, nil
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	switch key {
	case "frame":
		frame, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return Sample{}, false, &LineError{Line: line, Key: key, Err: err}
		}
		p.frame = frame
	case "fps":
		fps, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return Sample{}, false, &LineError{Line: line, Key: key, Err: err}
		}
		if fps < 0 || math.IsNaN(fps) || math.IsInf(fps, 0) || fps > math.MaxInt32 {
			return Sample{}, false, &LineError{Line: line, Key: key}
		}
		p.fps = int(fps)
	default:
		return Sample{}, false, nil
	}

	if p.frame == 0 || p.fps == 0 {
		return Sample{}, false, nil
	}
	sample := Sample{Frame: p.frame, FPS: p.fps}
	p.Reset()
	return sample, true, nil
}

// Reset discards any buffered values.
func (p *Parser) Reset() {
	p.frame = 0
	p.fps = 0
}
