// Package termlog prints color-coded operator output.
//
// Lines carry a short "[area]" prefix the same way the rest of the tool logs,
// with a glyph whose color encodes severity. Colors switch off automatically
// when the writer is not a terminal (fatih/color checks NO_COLOR and isatty).
package termlog

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Logger writes human-readable progress lines.
type Logger struct {
	out     io.Writer
	verbose bool
	spin    bool

	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	red    func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	faint  func(a ...interface{}) string
	bold   func(a ...interface{}) string
}

// New returns a Logger writing to out. Spinners are only shown when out is
// the process stdout or stderr and colors are enabled.
func New(out io.Writer, verbose bool) *Logger {
	if out == nil {
		out = os.Stdout
	}
	return &Logger{
		out:     out,
		verbose: verbose,
		spin:    !color.NoColor && (out == os.Stdout || out == os.Stderr),
		green:   color.New(color.FgGreen).SprintFunc(),
		yellow:  color.New(color.FgYellow).SprintFunc(),
		red:     color.New(color.FgRed).SprintFunc(),
		cyan:    color.New(color.FgCyan).SprintFunc(),
		faint:   color.New(color.Faint).SprintFunc(),
		bold:    color.New(color.Bold).SprintFunc(),
	}
}

// Discard returns a Logger that prints nothing.
func Discard() *Logger { return New(io.Discard, false) }

// Writer exposes the underlying writer for tabular output.
func (l *Logger) Writer() io.Writer { return l.out }

func (l *Logger) Info(area, format string, args ...any) {
	l.line(l.cyan("•"), area, format, args...)
}

func (l *Logger) Success(area, format string, args ...any) {
	l.line(l.green("✓"), area, format, args...)
}

func (l *Logger) Warn(area, format string, args ...any) {
	l.line(l.yellow("!"), area, format, args...)
}

func (l *Logger) Error(area, format string, args ...any) {
	l.line(l.red("✗"), area, format, args...)
}

// Debug only prints in verbose mode.
func (l *Logger) Debug(area, format string, args ...any) {
	if !l.verbose {
		return
	}
	l.line(l.faint("·"), area, format, args...)
}

// Section prints a bold heading followed by an underline.
func (l *Logger) Section(title string) {
	fmt.Fprintln(l.out)
	fmt.Fprintln(l.out, l.bold(title))
	for range title {
		fmt.Fprint(l.out, "-")
	}
	fmt.Fprintln(l.out)
}

// Spin shows a spinner with msg until the returned stop func is called.
// It is a no-op on non-terminal writers.
func (l *Logger) Spin(msg string) (stop func()) {
	if !l.spin {
		l.Debug("wait", "%s", msg)
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(l.out))
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}

func (l *Logger) line(glyph, area, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if area != "" {
		fmt.Fprintf(l.out, "%s [%s] %s\n", glyph, area, msg)
		return
	}
	fmt.Fprintf(l.out, "%s %s\n", glyph, msg)
}
