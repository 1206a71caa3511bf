package format

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampToISO8601(t *testing.T) {
	tests := []struct {
		name string
		ms   int64
		want string
	}{
		{"epoch", 0, "1970-01-01T00:00:00+00:00"},
		{"whole second", 1700000000000, "2023-11-14T22:13:20+00:00"},
		{"with milliseconds", 1700000000123, "2023-11-14T22:13:20.123+00:00"},
		{"before epoch", -1000, "1969-12-31T23:59:59+00:00"},
		{"far future overflows to decimal", 300000000000000, "300000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimestampToISO8601(tt.ms))
		})
	}
}

func TestAddISO8601Timestamps(t *testing.T) {
	in := map[string]interface{}{
		"id":      "DEMO-1",
		"created": int64(0),
		"updated": json.Number("1700000000000"),
		"summary": "test issue",
	}

	out, ok := AddISO8601Timestamps(in).(map[string]interface{})
	require.True(t, ok)

	assert.Equal(t, "1970-01-01T00:00:00+00:00", out["created_iso8601"])
	assert.Equal(t, "2023-11-14T22:13:20+00:00", out["updated_iso8601"])
	assert.Equal(t, "test issue", out["summary"])

	// Input map is never mutated.
	assert.NotContains(t, in, "created_iso8601")
}

func TestAddISO8601TimestampsNested(t *testing.T) {
	in := map[string]interface{}{
		"issue": map[string]interface{}{
			"created": int64(0),
			"comments": []interface{}{
				map[string]interface{}{"created": int64(1000), "text": "hi"},
			},
		},
	}

	out := AddISO8601Timestamps(in).(map[string]interface{})
	issue := out["issue"].(map[string]interface{})
	assert.Equal(t, "1970-01-01T00:00:00+00:00", issue["created_iso8601"])

	comment := issue["comments"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "1970-01-01T00:00:01+00:00", comment["created_iso8601"])
	assert.Equal(t, "hi", comment["text"])
}

func TestAddISO8601TimestampsSkipsNonIntegers(t *testing.T) {
	in := map[string]interface{}{
		"created": "2023-11-14",
		"updated": json.Number("1.5"),
	}

	out := AddISO8601Timestamps(in).(map[string]interface{})
	assert.NotContains(t, out, "created_iso8601")
	assert.NotContains(t, out, "updated_iso8601")
}

func TestAddISO8601TimestampsScalars(t *testing.T) {
	assert.Equal(t, "plain", AddISO8601Timestamps("plain"))
	assert.Equal(t, 42, AddISO8601Timestamps(42))
	assert.Nil(t, AddISO8601Timestamps(nil))
}
