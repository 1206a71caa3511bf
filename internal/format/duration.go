// Package format implements the text handling rules shared by the YouTrack
// tools: free-text duration parsing, epoch timestamp decoration, and issue
// ID / search query normalization.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	hoursPattern   = regexp.MustCompile(`(\d+)\s*h(?:ours?)?`)
	minutesPattern = regexp.MustCompile(`(\d+)\s*m(?:in(?:utes?)?)?`)
	numberPattern  = regexp.MustCompile(`\d+`)
	allDigits      = regexp.MustCompile(`^\d+$`)
)

// ParseError is returned when a duration string cannot be interpreted.
// It carries the original input so callers can echo it back to the user.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse time string: %q. Use formats like '1h', '30m', '2h 15m', or plain minutes", e.Input)
}

// ParseDuration converts a free-text duration into minutes.
//
// Accepted forms:
//   - plain digits: "90" means 90 minutes
//   - hour units: "2h", "2 hours"
//   - minute units: "30m", "30 min", "30 minutes"
//   - combinations: "2h 15m"
//
// Unit matching is case-insensitive and tolerant of surrounding whitespace.
// As a last resort the first run of digits anywhere in the input is taken as
// minutes, so "about 45" parses to 45. Input with no usable number returns a
// *ParseError.
func ParseDuration(text string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return 0, &ParseError{Input: text}
	}

	// Bare numbers are minutes, including an explicit "0".
	if allDigits.MatchString(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, &ParseError{Input: text}
		}
		return n, nil
	}

	total := 0
	if m := hoursPattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		total += h * 60
	}
	if m := minutesPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += n
	}

	// No unit matched: fall back to the first number in the string.
	if total == 0 {
		if m := numberPattern.FindString(s); m != "" {
			total, _ = strconv.Atoi(m)
		}
	}

	if total == 0 {
		return 0, &ParseError{Input: text}
	}
	return total, nil
}

// FormatMinutes renders a minute count the way work item summaries expect it.
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%d minutes", minutes)
}
