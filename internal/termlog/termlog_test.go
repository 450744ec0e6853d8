package termlog

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestLogger_Lines(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	l := New(&buf, false)
	l.Info("docker", "building %s", "base")
	l.Success("", "done")
	l.Warn("registry", "lookup failed")
	l.Error("build", "boom")
	l.Debug("x", "hidden")

	assert.Equal(t,
		"• [docker] building base\n✓ done\n! [registry] lookup failed\n✗ [build] boom\n",
		buf.String())
}

func TestLogger_VerboseDebug(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	l := New(&buf, true)
	l.Debug("x", "shown")
	stop := l.Spin("waiting")
	stop()

	assert.Contains(t, buf.String(), "· [x] shown")
	assert.Contains(t, buf.String(), "· [wait] waiting")
}

func TestLogger_Section(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	New(&buf, false).Section("Plan")
	assert.Equal(t, "\nPlan\n----\n", buf.String())
}
