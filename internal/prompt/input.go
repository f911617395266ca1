// Package prompt runs the line-oriented resolution prompt
package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidDisplay   = errors.New("invalid display number")
	ErrInvalidDimension = errors.New("invalid dimension")
)

// ParseDisplayNumber parses a 1-based display number in [1, max]
func ParseDisplayNumber(s string, max int) (int, error) {
	n, err := parseInt32(s)
	if err != nil || n < 1 || n > max {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDisplay, s)
	}
	return n, nil
}

// ParseDimension parses a positive pixel count that fits a 32-bit signed
// integer
func ParseDimension(s string) (int, error) {
	n, err := parseInt32(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDimension, s)
	}
	return n, nil
}

func parseInt32(s string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	return int(n), err
}

// Choices renders the valid display numbers for messages: "1", "1 or 2",
// "1, 2, or 3"
func Choices(max int) string {
	switch {
	case max <= 1:
		return "1"
	case max == 2:
		return "1 or 2"
	}
	nums := make([]string, max)
	for i := range nums {
		nums[i] = strconv.Itoa(i + 1)
	}
	return strings.Join(nums[:max-1], ", ") + ", or " + nums[max-1]
}

// IsQuit reports whether the line is the quit token, ignoring case and
// surrounding whitespace
func IsQuit(line, token string) bool {
	return strings.EqualFold(strings.TrimSpace(line), strings.TrimSpace(token))
}
