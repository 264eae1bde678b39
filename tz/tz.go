// Package tz renders backend UTC timestamps in the dashboard's display zone.
//
// The display zone is a fixed UTC+3 offset (Asia/Kuwait observes no DST).
// Formats are strftime patterns.
package tz

import (
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mbolis/survey-admin/model"
	"github.com/ncruces/go-strftime"
)

const (
	DefaultDisplayFormat = "%Y-%m-%d %H:%M"
	DefaultDateFormat    = "%Y-%m-%d"

	// InvalidDate is rendered for input that cannot be read as a timestamp.
	InvalidDate = "Invalid Date"
)

var DisplayZone = time.FixedZone("UTC+3", 3*60*60)

// Now is replaced in tests.
var Now = time.Now

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parse reads v as a UTC instant. Strings without an offset are taken as UTC;
// numbers are Unix milliseconds.
func Parse(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range layouts {
			if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return ts, true
			}
		}
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(t)).UTC(), true
	case int64:
		return time.UnixMilli(t).UTC(), true
	case int:
		return time.UnixMilli(int64(t)).UTC(), true
	case json.Number:
		if ms, err := t.Int64(); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
	}
	return time.Time{}, false
}

// ToDisplay converts a UTC timestamp to the display zone and formats it.
// Falsy input (nil, "", 0, false) renders as "".
func ToDisplay(v any, format string) string {
	if !model.Truthy(v) {
		return ""
	}
	if format == "" {
		format = DefaultDisplayFormat
	}
	t, ok := Parse(v)
	if !ok {
		return InvalidDate
	}
	return strftime.Format(format, t.In(DisplayZone))
}

// CurrentDateInDisplayZone formats the current instant in the display zone.
func CurrentDateInDisplayZone(format string) string {
	if format == "" {
		format = DefaultDateFormat
	}
	return strftime.Format(format, Now().In(DisplayZone))
}

// DateForAPI returns the display-zone date unchanged: the backend treats a
// YYYY-MM-DD filter as the whole day in the display zone.
func DateForAPI(date string) string {
	return date
}
