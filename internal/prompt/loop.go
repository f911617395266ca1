package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/stretchres/internal/display"
	"github.com/bnema/stretchres/internal/logger"
)

// Setter is the part of display.Setter the loop drives
type Setter interface {
	SetResolution(index, width, height int) (display.Outcome, error)
}

// Loop prompts for a display number, width and height until the operator
// quits. It holds no state between iterations.
type Loop struct {
	setter      Setter
	in          *bufio.Reader
	out         io.Writer
	maxDisplays int
	quitToken   string
	format      func(display.Outcome) string
}

// Option configures a Loop
type Option func(*Loop)

// WithMaxDisplays sets the highest display number accepted
func WithMaxDisplays(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxDisplays = n
		}
	}
}

// WithQuitToken sets the token that ends the loop at the display prompt
func WithQuitToken(token string) Option {
	return func(l *Loop) {
		if token != "" {
			l.quitToken = token
		}
	}
}

// WithOutcomeFormatter changes how setter outcomes are printed
func WithOutcomeFormatter(f func(display.Outcome) string) Option {
	return func(l *Loop) {
		if f != nil {
			l.format = f
		}
	}
}

// New creates a loop reading lines from in and writing prompts to out
func New(setter Setter, in io.Reader, out io.Writer, opts ...Option) *Loop {
	l := &Loop{
		setter:      setter,
		in:          bufio.NewReader(in),
		out:         out,
		maxDisplays: 3,
		quitToken:   "q",
		format:      func(o display.Outcome) string { return o.Message },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var (
	errQuit = errors.New("quit")

	// errEOF marks the end of input, which ends the loop like the quit token
	errEOF = errors.New("end of input")
)

func (l *Loop) ask(question string) (string, error) {
	fmt.Fprintln(l.out, question)
	// Lines of any length are read whole so oversized input is just invalid
	line, err := l.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		if line == "" {
			return "", errEOF
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Run blocks until the quit token or end of input. It only returns an
// error when reading input fails.
func (l *Loop) Run() error {
	for {
		err := l.iterate()
		if errors.Is(err, errQuit) || errors.Is(err, errEOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// iterate runs one prompt cycle. Validation failures print a diagnostic and
// return nil so the next cycle starts over at the display prompt.
func (l *Loop) iterate() error {
	choices := Choices(l.maxDisplays)

	line, err := l.ask(fmt.Sprintf("Enter the display number (%s) to set resolution, or '%s' to quit:", choices, l.quitToken))
	if err != nil {
		return err
	}
	if IsQuit(line, l.quitToken) {
		return errQuit
	}

	number, err := ParseDisplayNumber(line, l.maxDisplays)
	if err != nil {
		logger.Debugf("Rejected display input: %v", err)
		fmt.Fprintf(l.out, "Invalid display number. Please enter %s.\n", choices)
		return nil
	}

	line, err = l.ask("Enter the desired width in pixels:")
	if err != nil {
		return err
	}
	width, err := ParseDimension(line)
	if err != nil {
		logger.Debugf("Rejected width input: %v", err)
		fmt.Fprintln(l.out, "Invalid width. Please enter a positive number.")
		return nil
	}

	line, err = l.ask("Enter the desired height in pixels:")
	if err != nil {
		return err
	}
	height, err := ParseDimension(line)
	if err != nil {
		logger.Debugf("Rejected height input: %v", err)
		fmt.Fprintln(l.out, "Invalid height. Please enter a positive number.")
		return nil
	}

	outcome, err := l.setter.SetResolution(number-1, width, height)
	if err != nil {
		logger.Errorf("Resolution change failed: %v", err)
		fmt.Fprintf(l.out, "Error: %v\n", err)
		return nil
	}
	fmt.Fprintln(l.out, l.format(outcome))
	return nil
}
