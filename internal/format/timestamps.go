package format

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// timestampFields are the keys whose integer values are treated as epoch
// millisecond timestamps when decorating API responses.
var timestampFields = []string{"created", "updated"}

// TimestampToISO8601 renders an epoch millisecond timestamp as an ISO8601
// string in UTC, e.g. 0 becomes "1970-01-01T00:00:00+00:00". A millisecond
// fraction is appended only when present. Values that fall outside the
// representable year range 0-9999 are returned as their decimal string
// instead of an error, so response decoration never fails on garbage data.
func TimestampToISO8601(ms int64) string {
	t := time.UnixMilli(ms).UTC()
	if y := t.Year(); y < 0 || y > 9999 {
		return strconv.FormatInt(ms, 10)
	}

	s := t.Format("2006-01-02T15:04:05")
	if msec := t.Nanosecond() / int(time.Millisecond); msec != 0 {
		s += fmt.Sprintf(".%03d", msec)
	}
	return s + "+00:00"
}

// AddISO8601Timestamps walks a decoded JSON value and, for every map entry
// named "created" or "updated" holding an integer, adds a sibling entry
// "<name>_iso8601" with the human-readable form. Maps and slices are copied,
// never mutated in place; scalars pass through unchanged.
func AddISO8601Timestamps(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val)+len(timestampFields))
		for k, inner := range val {
			out[k] = inner
		}
		for _, field := range timestampFields {
			if ms, ok := epochMillis(out[field]); ok {
				out[field+"_iso8601"] = TimestampToISO8601(ms)
			}
		}
		for k, inner := range out {
			out[k] = AddISO8601Timestamps(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = AddISO8601Timestamps(inner)
		}
		return out
	default:
		return v
	}
}

// epochMillis reports whether v is an integer usable as an epoch timestamp.
// Responses decoded with json.Decoder.UseNumber arrive as json.Number;
// values built in tests or tool code may be native ints.
func epochMillis(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
