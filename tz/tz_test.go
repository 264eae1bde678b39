package tz

import (
	"testing"
	"time"
)

func TestToDisplay(t *testing.T) {
	cases := []struct {
		name   string
		in     any
		format string
		want   string
	}{
		{"nil", nil, "", ""},
		{"empty", "", "", ""},
		{"zero", 0.0, "", ""},
		{"false", false, "", ""},
		{"rfc3339", "2024-01-15T22:30:00Z", "", "2024-01-16 01:30"},
		{"fraction", "2024-01-15T10:00:00.123Z", "%H:%M:%S", "13:00:00"},
		{"offset", "2024-01-15T10:00:00+01:00", "", "2024-01-15 12:00"},
		{"no offset is utc", "2024-01-15 10:00:00", "", "2024-01-15 13:00"},
		{"date only", "2024-01-15", DefaultDateFormat, "2024-01-15"},
		{"unix millis", float64(1705314600000), "", "2024-01-15 13:30"},
		{"time", time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC), "%d/%m/%Y", "16/01/2024"},
		{"garbage", "not a date", "", InvalidDate},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ToDisplay(c.in, c.format); got != c.want {
				t.Fatalf("ToDisplay(%v, %q) = %q, want %q", c.in, c.format, got, c.want)
			}
		})
	}
}

func TestCurrentDateInDisplayZone(t *testing.T) {
	defer func(orig func() time.Time) { Now = orig }(Now)
	Now = func() time.Time { return time.Date(2024, 1, 15, 22, 0, 0, 0, time.UTC) }

	if got := CurrentDateInDisplayZone(""); got != "2024-01-16" {
		t.Fatalf("got %q, want next day in UTC+3", got)
	}
}

func TestDateForAPI(t *testing.T) {
	if DateForAPI("") != "" {
		t.Fatal("empty must stay empty")
	}
	if DateForAPI("2024-01-15") != "2024-01-15" {
		t.Fatal("date must pass through unchanged")
	}
}
