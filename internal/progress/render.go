package progress

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// DefaultBarWidth is the number of cells in the progress bar.
const DefaultBarWidth = 16

const (
	labelWidth = 16
	barFill    = "█"
	cursorUp4  = "\x1b[4F"
	clearEOL   = "\x1b[K"
)

// PassLabel numbers passes across the whole run: attempt 2 pass 1 is 3/4.
type PassLabel struct {
	Current int
	Total   int
}

// LabelFor returns the label for the 1-based attempt and pass (1 or 2).
func LabelFor(attempt, pass int) PassLabel {
	return PassLabel{Current: attempt*2 - (2 - pass), Total: attempt * 2}
}

func (l PassLabel) String() string {
	return fmt.Sprintf("%d/%d", l.Current, l.Total)
}

// State is what the display shows for one sample.
type State struct {
	Percent     int
	SecondsLeft uint64
	Pass        PassLabel
}

// Derive computes percent complete and the remaining seconds for the pass.
// Percent is clamped to 100; once frame reaches total, time left is zero.
func Derive(sample Sample, totalFrames uint64, pass PassLabel) State {
	state := State{Pass: pass}
	if totalFrames == 0 {
		return state
	}
	if sample.Frame >= totalFrames {
		state.Percent = 100
		return state
	}
	state.Percent = int(sample.Frame * 100 / totalFrames)
	if sample.FPS > 0 {
		state.SecondsLeft = (totalFrames - sample.Frame) / uint64(sample.FPS)
	}
	return state
}

// Bar returns width cells with floor(percent*width/100) of them filled.
func Bar(percent, width int) string {
	if width <= 0 {
		width = DefaultBarWidth
	}
	percent = max(0, min(percent, 100))
	filled := percent * width / 100
	return strings.Repeat(barFill, filled) + strings.Repeat(" ", width-filled)
}

// Renderer draws the four-line block. In place mode rewinds the cursor over
// the previous block before each redraw.
type Renderer struct {
	w        io.Writer
	inPlace  bool
	barWidth int
	drawn    bool
}

// NewRenderer returns a renderer writing to w.
func NewRenderer(w io.Writer, inPlace bool, barWidth int) *Renderer {
	if barWidth <= 0 {
		barWidth = DefaultBarWidth
	}
	return &Renderer{w: w, inPlace: inPlace, barWidth: barWidth}
}

// Draw writes the block for sample and state.
func (r *Renderer) Draw(sample Sample, totalFrames uint64, state State) error {
	var buf bytes.Buffer
	if r.inPlace && r.drawn {
		buf.WriteString(cursorUp4)
	}
	column := max(labelWidth, r.barWidth)
	lines := [4]string{
		fmt.Sprintf("%-*s| frame %d/%d", column, fmt.Sprintf("fps %d", sample.FPS), sample.Frame, totalFrames),
		fmt.Sprintf("%s%s| %d%%", Bar(state.Percent, r.barWidth), strings.Repeat(" ", column-r.barWidth), state.Percent),
		fmt.Sprintf("%-*s| %s", column, "pass", state.Pass),
		fmt.Sprintf("%-*s| %d seconds", column, "time left pass", state.SecondsLeft),
	}
	for _, line := range lines {
		buf.WriteString(line)
		if r.inPlace {
			buf.WriteString(clearEOL)
		}
		buf.WriteByte('\n')
	}
	if _, err := r.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("draw progress: %w", err)
	}
	r.drawn = true
	return nil
}

// Break leaves the current block on screen; the next Draw starts below it.
func (r *Renderer) Break() {
	r.drawn = false
}
