package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/harvest/internal/ui/output"
	"go.trai.ch/harvest/internal/ui/style"
)

func TestColorProfile_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	assert.Equal(t, termenv.Ascii, output.ColorProfile())
	assert.Equal(t, termenv.Ascii, output.ColorProfileANSI())
}

func TestColorProfileANSI(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	assert.Equal(t, termenv.ANSI, output.ColorProfileANSI())
}

func TestIsTerminal_Buffer(t *testing.T) {
	assert.False(t, output.IsTerminal(&bytes.Buffer{}))
}

func TestNewForWriter_NonTerminalIsPlain(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	buf := &bytes.Buffer{}
	out := output.NewForWriter(buf)

	_, err := out.WriteString(out.String("hello").Foreground(termenv.ANSIRed).String())
	assert.NoError(t, err)
	assert.Equal(t, "hello", buf.String())
}

func TestNewRenderer_NonTerminalIsPlain(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	r := output.NewRenderer(&bytes.Buffer{})

	assert.Equal(t, termenv.Ascii, r.ColorProfile())
	assert.Equal(t, "✓", r.NewStyle().Bold(true).Foreground(style.Green).Render(style.Check))
}

func TestNewRenderer_ColoredProfile(t *testing.T) {
	r := output.NewRenderer(&bytes.Buffer{})
	r.SetColorProfile(termenv.ANSI)

	rendered := r.NewStyle().Foreground(style.Red).Render(style.Cross)
	assert.Contains(t, rendered, "\x1b[")
	assert.Contains(t, rendered, style.Cross)
}
