package executil

import (
	"context"
	"io"
	"strings"
	"sync"
)

// Recorder is a Runner test double. It records every call and answers from
// registered results keyed by "name arg1 arg2 ...". Prefix matches are tried
// after exact ones, in registration order, so "docker buildx" can fail every
// buildx call.
type Recorder struct {
	mu      sync.Mutex
	calls   []Cmd
	stdin   []string
	outputs map[string]string
	errs    map[string]error
	order   []string
}

// NewRecorder creates an empty Recorder; unregistered commands succeed.
func NewRecorder() *Recorder {
	return &Recorder{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
	}
}

// AddOutput registers stdout returned by Output for a command line.
func (r *Recorder) AddOutput(line, out string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[line] = out
}

// AddError registers an error for a command line or line prefix.
func (r *Recorder) AddError(line string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.errs[line]; !ok {
		r.order = append(r.order, line)
	}
	r.errs[line] = err
}

func (r *Recorder) Run(_ context.Context, cmd Cmd) error {
	_, err := r.record(cmd)
	return err
}

func (r *Recorder) Output(_ context.Context, cmd Cmd) (string, error) {
	return r.record(cmd)
}

func (r *Recorder) record(cmd Cmd) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	in := ""
	if cmd.Stdin != nil {
		b, _ := io.ReadAll(cmd.Stdin)
		in = string(b)
	}
	r.calls = append(r.calls, cmd)
	r.stdin = append(r.stdin, in)

	line := key(cmd)
	if err, ok := r.errs[line]; ok {
		return "", err
	}
	for _, prefix := range r.order {
		if strings.HasPrefix(line, prefix) {
			return "", r.errs[prefix]
		}
	}
	return r.outputs[line], nil
}

// Calls returns a copy of the recorded commands.
func (r *Recorder) Calls() []Cmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Cmd, len(r.calls))
	copy(out, r.calls)
	return out
}

// Lines returns the recorded commands as "name arg1 arg2 ..." strings.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = key(c)
	}
	return out
}

// Stdin returns what the i-th call received on stdin.
func (r *Recorder) Stdin(i int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.stdin) {
		return ""
	}
	return r.stdin[i]
}

// Matching returns recorded lines that start with prefix.
func (r *Recorder) Matching(prefix string) []string {
	var out []string
	for _, l := range r.Lines() {
		if strings.HasPrefix(l, prefix) {
			out = append(out, l)
		}
	}
	return out
}

func key(c Cmd) string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

var _ Runner = (*Recorder)(nil)
