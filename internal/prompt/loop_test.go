package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bnema/stretchres/internal/display"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type setCall struct {
	index, width, height int
}

// recordingSetter reports success for every index below displays
type recordingSetter struct {
	displays int
	err      error
	calls    []setCall
}

func (r *recordingSetter) SetResolution(index, width, height int) (display.Outcome, error) {
	r.calls = append(r.calls, setCall{index, width, height})
	if r.err != nil {
		return display.Outcome{}, r.err
	}
	out := display.Outcome{Display: index + 1, Width: width, Height: height}
	if index >= r.displays {
		out.Status = display.StatusNotFound
		out.Message = fmt.Sprintf("Display %d not found.", index+1)
		return out, nil
	}
	out.Message = fmt.Sprintf("Display %d resolution changed to %dx%d.", index+1, width, height)
	return out, nil
}

func runLoop(t *testing.T, setter Setter, lines []string, opts ...Option) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, New(setter, in, &out, opts...).Run())
	return out.String()
}

const displayPrompt = "Enter the display number (1, 2, or 3) to set resolution, or 'q' to quit:"

func TestLoopScenarios(t *testing.T) {
	t.Run("successful change then quit", func(t *testing.T) {
		setter := &recordingSetter{displays: 2}
		output := runLoop(t, setter, []string{"2", "1920", "1080", "q"})

		require.Len(t, setter.calls, 1)
		assert.Equal(t, setCall{1, 1920, 1080}, setter.calls[0])
		assert.Contains(t, output, "Display 2 resolution changed to 1920x1080.")
		assert.Equal(t, 2, strings.Count(output, displayPrompt))
	})

	t.Run("out of range display re-prompts for display", func(t *testing.T) {
		setter := &recordingSetter{displays: 3}
		output := runLoop(t, setter, []string{"5", "q"})

		assert.Empty(t, setter.calls)
		assert.Contains(t, output, "Invalid display number. Please enter 1, 2, or 3.")
		assert.NotContains(t, output, "width")
		assert.Equal(t, 2, strings.Count(output, displayPrompt))
	})

	t.Run("zero width rejected before any call", func(t *testing.T) {
		setter := &recordingSetter{displays: 3}
		output := runLoop(t, setter, []string{"1", "0", "q"})

		assert.Empty(t, setter.calls)
		assert.Contains(t, output, "Invalid width. Please enter a positive number.")
		assert.NotContains(t, output, "height in pixels")
		assert.Equal(t, 2, strings.Count(output, displayPrompt))
	})
}

func TestLoopRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		message string
	}{
		{"non-numeric display", []string{"two"}, "Invalid display number"},
		{"display zero", []string{"0"}, "Invalid display number"},
		{"negative display", []string{"-1"}, "Invalid display number"},
		{"display four", []string{"4"}, "Invalid display number"},
		{"empty display", []string{""}, "Invalid display number"},
		{"non-numeric width", []string{"1", "wide"}, "Invalid width"},
		{"negative width", []string{"1", "-1920"}, "Invalid width"},
		{"fractional width", []string{"1", "19.5"}, "Invalid width"},
		{"width beyond 32 bits", []string{"1", "4294968216"}, "Invalid width"},
		{"width just past int32", []string{"1", "2147483648"}, "Invalid width"},
		{"height beyond 32 bits", []string{"1", "1920", "4294968376"}, "Invalid height"},
		{"display beyond 32 bits", []string{"4294967297"}, "Invalid display number"},
		{"zero height", []string{"1", "1920", "0"}, "Invalid height"},
		{"non-numeric height", []string{"3", "1920", "tall"}, "Invalid height"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setter := &recordingSetter{displays: 3}
			output := runLoop(t, setter, append(tt.lines, "q"))

			assert.Empty(t, setter.calls, "malformed input must not reach the setter")
			assert.Contains(t, output, tt.message)
			assert.Equal(t, 2, strings.Count(output, displayPrompt))
		})
	}
}

func TestLoopOverlongLine(t *testing.T) {
	setter := &recordingSetter{displays: 3}
	long := strings.Repeat("7", 70000)

	output := runLoop(t, setter, []string{long, "1", long, "1", "1920", long, "q"})

	assert.Empty(t, setter.calls)
	assert.Contains(t, output, "Invalid display number. Please enter 1, 2, or 3.")
	assert.Contains(t, output, "Invalid width. Please enter a positive number.")
	assert.Contains(t, output, "Invalid height. Please enter a positive number.")
	assert.Equal(t, 4, strings.Count(output, displayPrompt))
}

func TestLoopLastLineWithoutNewline(t *testing.T) {
	setter := &recordingSetter{displays: 3}
	var out bytes.Buffer

	err := New(setter, strings.NewReader("1\r\n1280\r\n720"), &out).Run()
	require.NoError(t, err)

	require.Len(t, setter.calls, 1)
	assert.Equal(t, setCall{0, 1280, 720}, setter.calls[0])
}

func TestLoopQuit(t *testing.T) {
	for _, token := range []string{"q", "Q", "  q  "} {
		t.Run(fmt.Sprintf("%q", token), func(t *testing.T) {
			setter := &recordingSetter{displays: 3}
			output := runLoop(t, setter, []string{token, "1", "1920", "1080"})

			assert.Empty(t, setter.calls, "nothing after the quit token is read")
			assert.Equal(t, 1, strings.Count(output, displayPrompt))
		})
	}

	t.Run("quit only at display prompt", func(t *testing.T) {
		setter := &recordingSetter{displays: 3}
		output := runLoop(t, setter, []string{"1", "q", "q"})

		assert.Empty(t, setter.calls)
		assert.Contains(t, output, "Invalid width")
	})

	t.Run("end of input", func(t *testing.T) {
		setter := &recordingSetter{displays: 3}
		var out bytes.Buffer
		err := New(setter, strings.NewReader("1\n1920\n"), &out).Run()
		require.NoError(t, err)
		assert.Empty(t, setter.calls)
	})
}

func TestLoopIndexConversion(t *testing.T) {
	setter := &recordingSetter{displays: 3}
	runLoop(t, setter, []string{"1", "800", "600", " 3 ", " 1024 ", "768", "q"})

	require.Len(t, setter.calls, 2)
	assert.Equal(t, setCall{0, 800, 600}, setter.calls[0])
	assert.Equal(t, setCall{2, 1024, 768}, setter.calls[1])
}

func TestLoopContinuesAfterFailures(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		setter := &recordingSetter{displays: 1}
		output := runLoop(t, setter, []string{"3", "1920", "1080", "1", "1280", "720", "q"})

		require.Len(t, setter.calls, 2)
		assert.Contains(t, output, "Display 3 not found.")
		assert.Contains(t, output, "Display 1 resolution changed to 1280x720.")
	})

	t.Run("backend error", func(t *testing.T) {
		setter := &recordingSetter{displays: 3, err: errors.New("X connection lost")}
		output := runLoop(t, setter, []string{"1", "1920", "1080", "q"})

		assert.Contains(t, output, "Error: X connection lost")
		assert.Equal(t, 2, strings.Count(output, displayPrompt))
	})
}

func TestLoopOptions(t *testing.T) {
	setter := &recordingSetter{displays: 4}
	output := runLoop(t, setter,
		[]string{"4", "640", "480", "EXIT"},
		WithMaxDisplays(4),
		WithQuitToken("exit"),
		WithOutcomeFormatter(func(o display.Outcome) string { return "** " + o.Message }),
	)

	require.Len(t, setter.calls, 1)
	assert.Equal(t, 3, setter.calls[0].index)
	assert.Contains(t, output, "Enter the display number (1, 2, 3, or 4) to set resolution, or 'exit' to quit:")
	assert.Contains(t, output, "** Display 4 resolution changed to 640x480.")
}

func TestChoices(t *testing.T) {
	assert.Equal(t, "1", Choices(1))
	assert.Equal(t, "1 or 2", Choices(2))
	assert.Equal(t, "1, 2, or 3", Choices(3))
	assert.Equal(t, "1, 2, 3, 4, or 5", Choices(5))
}

func TestParseDisplayNumber(t *testing.T) {
	n, err := ParseDisplayNumber(" 2 ", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = ParseDisplayNumber("4", 3)
	assert.ErrorIs(t, err, ErrInvalidDisplay)
}

func TestParseDimension(t *testing.T) {
	n, err := ParseDimension("2147483647")
	require.NoError(t, err)
	assert.Equal(t, 2147483647, n)

	for _, s := range []string{"2147483648", "4294968216", "0", "-1", "1e3"} {
		_, err := ParseDimension(s)
		assert.ErrorIs(t, err, ErrInvalidDimension, s)
	}
}
