package executil

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellQuoteArgs(t *testing.T) {
	got := ShellQuoteArgs([]string{"build", "-t", "a b", "", "it's"})
	assert.Equal(t, `build -t 'a b' '' 'it'\''s'`, got)
}

func TestCmdString_UsesDisplay(t *testing.T) {
	c := Cmd{Name: "docker", Args: []string{"login", "-p", "secret"}, Display: []string{"login", "-p", "REDACTED"}}
	assert.Equal(t, "docker login -p REDACTED", c.String())
	assert.NotContains(t, c.String(), "secret")
}

func TestCmdString_QuotesDisplayMetacharacters(t *testing.T) {
	c := Cmd{Name: "docker", Args: []string{"login"}, Display: []string{"login", "-p", "[hidden]"}}
	assert.Equal(t, "docker login -p '[hidden]'", c.String())
}

func TestShell_DryRunPrintsOnly(t *testing.T) {
	var out bytes.Buffer
	s := &Shell{DryRun: true, Stdout: &out, Stderr: &out}

	err := s.Run(context.Background(), Cmd{Name: "definitely-not-a-binary", Args: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "[DRY RUN] definitely-not-a-binary x\n", out.String())
}

func TestShell_Output(t *testing.T) {
	s := &Shell{}
	out, err := s.Output(context.Background(), Cmd{Name: "echo", Args: []string{"hello"}})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestShell_RunFailureIncludesExitCode(t *testing.T) {
	var out bytes.Buffer
	s := &Shell{Stdout: &out, Stderr: &out}
	err := s.Run(context.Background(), Cmd{Name: "sh", Args: []string{"-c", "exit 3"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit=3")
	assert.True(t, strings.HasPrefix(out.String(), "Running: sh -c"))
}

func TestShell_StdinIsForwarded(t *testing.T) {
	s := &Shell{}
	out, err := s.Output(context.Background(), Cmd{Name: "cat", Stdin: strings.NewReader("token")})
	require.NoError(t, err)
	assert.Equal(t, "token", out)
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	boom := errors.New("boom")
	r.AddError("docker buildx", boom)
	r.AddOutput("git tag --list", "v1.0.0")

	out, err := r.Output(context.Background(), Cmd{Name: "git", Args: []string{"tag", "--list"}})
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", out)

	err = r.Run(context.Background(), Cmd{Name: "docker", Args: []string{"buildx", "build", "."}})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, r.Run(context.Background(), Cmd{Name: "docker", Args: []string{"login"}, Stdin: strings.NewReader("pw")}))
	assert.Equal(t, []string{"git tag --list", "docker buildx build .", "docker login"}, r.Lines())
	assert.Equal(t, "pw", r.Stdin(2))
	assert.Len(t, r.Matching("docker"), 2)
}

func TestRecorder_PrefixErrorsMatchInRegistrationOrder(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	cmd := Cmd{Name: "docker", Args: []string{"buildx", "build", "."}}

	for i := 0; i < 20; i++ {
		r := NewRecorder()
		r.AddError("docker buildx build", first)
		r.AddError("docker", second)
		assert.ErrorIs(t, r.Run(context.Background(), cmd), first)
	}

	r := NewRecorder()
	r.AddError("docker", second)
	r.AddError("docker buildx build", first)
	assert.ErrorIs(t, r.Run(context.Background(), cmd), second)

	// Exact lines still win over earlier prefixes.
	r.AddError("docker buildx build .", first)
	assert.ErrorIs(t, r.Run(context.Background(), cmd), first)
}
