// Package ui provides terminal feedback for long-running CLI operations.
package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type Spinner struct {
	s   *spinner.Spinner
	msg string
}

// NewSpinner starts a spinner with the given message. When stderr is not a
// terminal (CI, piped output) it degrades to plain progress lines.
func NewSpinner(msg string) *Spinner {
	sp := &Spinner{msg: msg}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		sp.s = spinner.New(
			spinner.CharSets[14],
			200*time.Millisecond,
			spinner.WithHiddenCursor(true),
			spinner.WithWriter(os.Stderr),
			spinner.WithSuffix(" "+msg),
		)
		sp.s.Start()
	} else {
		fmt.Fprintf(os.Stderr, "› %s\n", msg)
	}
	return sp
}

// UpdateMessage replaces the spinner message.
// This function is safe to call on a nil Spinner.
func (sp *Spinner) UpdateMessage(msg string) {
	if sp == nil {
		return
	}
	sp.msg = msg
	if sp.s != nil {
		sp.s.Suffix = " " + msg
	} else {
		fmt.Fprintf(os.Stderr, "› %s\n", msg)
	}
}

// Success stops the spinner and prints a success message.
// This function is safe to call on a nil Spinner.
func (sp *Spinner) Success(msg ...string) {
	sp.finish(color.HiGreenString("✓"), msg)
}

// Warn stops the spinner and prints a warning message.
// This function is safe to call on a nil Spinner.
func (sp *Spinner) Warn(msg ...string) {
	sp.finish(color.HiYellowString("!"), msg)
}

// Fail stops the spinner and prints a failure message.
// This function is safe to call on a nil Spinner.
func (sp *Spinner) Fail(msg ...string) {
	sp.finish(color.HiRedString("✗"), msg)
}

func (sp *Spinner) finish(mark string, msg []string) {
	if sp == nil {
		return
	}
	if len(msg) == 0 {
		msg = []string{sp.msg}
	}
	line := fmt.Sprintf("%s %s\n", mark, msg[0])
	if sp.s != nil {
		sp.s.FinalMSG = line
		sp.s.Stop()
	} else {
		fmt.Fprint(os.Stderr, line)
	}
}
