// internal/executil/executil.go
package executil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// Cmd describes one external process invocation.
type Cmd struct {
	Name  string
	Args  []string
	Dir   string
	Env   map[string]string // appended to os.Environ()
	Stdin io.Reader

	// Display, when set, is printed instead of Args (e.g. with secrets masked).
	Display []string
}

// String renders the command line the way it is echoed to the operator.
func (c Cmd) String() string {
	args := c.Args
	if c.Display != nil {
		args = c.Display
	}
	if len(args) == 0 {
		return c.Name
	}
	return c.Name + " " + ShellQuoteArgs(args)
}

// Runner executes external commands. Shell is the real implementation;
// Recorder is the test double.
type Runner interface {
	// Run streams the child's output to the runner's writers.
	Run(ctx context.Context, cmd Cmd) error
	// Output captures stdout and returns it trimmed.
	Output(ctx context.Context, cmd Cmd) (string, error)
}

// Shell runs commands with os/exec. With DryRun set, Run only prints what it
// would execute; Output still executes since it is used for read-only queries.
type Shell struct {
	DryRun bool
	Stdout io.Writer
	Stderr io.Writer
}

// NewShell returns a Shell bound to the process stdout/stderr.
func NewShell(dryRun bool) *Shell {
	return &Shell{DryRun: dryRun, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (s *Shell) Run(ctx context.Context, cmd Cmd) error {
	return s.runCore(ctx, cmd, s.DryRun, nil)
}

func (s *Shell) Output(ctx context.Context, cmd Cmd) (string, error) {
	var buf bytes.Buffer
	if err := s.runCore(ctx, cmd, false, &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func (s *Shell) runCore(ctx context.Context, c Cmd, dry bool, capture io.Writer) error {
	stdout, stderr := s.writers()
	fullCmd := c.String()
	prefix := ""
	if c.Dir != "" {
		prefix = " in " + c.Dir
	}

	if dry {
		fmt.Fprintf(stdout, "[DRY RUN%s] %s\n", prefix, fullCmd)
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stderr = stderr
	cmd.Env = os.Environ()
	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	if capture != nil {
		cmd.Stdout = capture
	} else {
		cmd.Stdout = stdout
		fmt.Fprintf(stdout, "Running%s: %s\n", prefix, fullCmd)
	}

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			return fmt.Errorf("command canceled: %s", fullCmd)
		} else if errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("command timed out: %s", fullCmd)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
				return fmt.Errorf("command failed (exit=%d): %s: %w", status.ExitStatus(), fullCmd, err)
			}
		}
		return fmt.Errorf("failed to run command: %s: %w", fullCmd, err)
	}
	return nil
}

func (s *Shell) writers() (io.Writer, io.Writer) {
	out, errw := s.Stdout, s.Stderr
	if out == nil {
		out = os.Stdout
	}
	if errw == nil {
		errw = os.Stderr
	}
	return out, errw
}

// ShellQuoteArgs returns a printable, shell-safe representation of args.
func ShellQuoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n\"'`$\\*?[]{}()<>|&;") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}

var _ Runner = (*Shell)(nil)
