package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"hours and minutes", "2h 15m", 135},
		{"hours only", "1h", 60},
		{"minutes only", "30m", 30},
		{"plain minutes", "90", 90},
		{"zero minutes", "0", 0},
		{"long hour unit", "2 hours", 120},
		{"long minute unit", "45 minutes", 45},
		{"min abbreviation", "30 min", 30},
		{"mixed case", "1H 30M", 90},
		{"surrounding whitespace", "  1h  ", 60},
		{"compact combination", "2h15m", 135},
		{"fallback to first number", "about 45", 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDurationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no numbers", "code review"},
		{"empty", ""},
		{"whitespace only", "   "},
		{"zero with unit", "0m"},
		{"zero hours", "0h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDuration(tt.input)
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.input, parseErr.Input)
			assert.Contains(t, err.Error(), "2h 15m")
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "135 minutes", FormatMinutes(135))
	assert.Equal(t, "1 minutes", FormatMinutes(1))
}
