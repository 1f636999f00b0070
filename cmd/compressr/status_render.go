package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// checkStatus is the verdict column of a check line.
type checkStatus struct {
	tag   string
	color string
}

const ansiReset = "\x1b[0m"

var (
	statusOK    = checkStatus{tag: "OK", color: "\x1b[32m"}
	statusWarn  = checkStatus{tag: "WARN", color: "\x1b[33m"}
	statusError = checkStatus{tag: "ERROR", color: "\x1b[31m"}
)

func statusFor(passed bool) checkStatus {
	if passed {
		return statusOK
	}
	return statusError
}

const statusLabelWidth = 20

// renderStatusLine formats one check as "  Label:   [TAG] detail".
func renderStatusLine(label string, status checkStatus, detail string, colorize bool) string {
	var b strings.Builder
	if colorize {
		b.WriteString(status.color)
	}
	fmt.Fprintf(&b, "  %-*s [%s]", statusLabelWidth, label+":", status.tag)
	if detail != "" {
		b.WriteByte(' ')
		b.WriteString(detail)
	}
	if colorize {
		b.WriteString(ansiReset)
	}
	return b.String()
}

// isTerminal reports whether writer is an interactive terminal.
func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
