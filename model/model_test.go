package model

import (
	"math"
	"testing"
)

func TestLookup(t *testing.T) {
	row := Row{
		"sysId": "A",
		"profile": map[string]any{
			"name": "Ada",
			"address": map[string]any{
				"city": "Kuwait City",
			},
		},
		"score": nil,
	}

	cases := []struct {
		path   string
		want   any
		wantOK bool
	}{
		{"sysId", "A", true},
		{"profile.name", "Ada", true},
		{"profile.address.city", "Kuwait City", true},
		{"profile.missing.city", nil, false},
		{"sysId.length", nil, false},
		{"score", nil, true},
		{"nope", nil, false},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			got, ok := row.Get(c.path)
			if ok != c.wantOK || got != c.want {
				t.Fatalf("Get(%q) = %v, %v; want %v, %v", c.path, got, ok, c.want, c.wantOK)
			}
		})
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{true, "true"},
		{float64(5), "5"},
		{12.5, "12.5"},
		{math.Inf(1), "Infinity"},
		{[]any{1.0, "a"}, `[1,"a"]`},
		{map[string]any{"a": 1.0}, `{"a":1}`},
		{map[string]any{"a": "x&y", "b": "<b>"}, `{"a":"x&y","b":"<b>"}`},
		{[]any{"Zoë > Tom"}, `["Zoë > Tom"]`},
	}
	for _, c := range cases {
		if got := String(c.in); got != c.want {
			t.Errorf("String(%#v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTruthy(t *testing.T) {
	falsy := []any{nil, false, "", 0.0, math.NaN(), 0}
	for _, v := range falsy {
		if Truthy(v) {
			t.Errorf("Truthy(%#v) = true, want false", v)
		}
	}
	truthy := []any{true, "0", 1.0, -1.0, map[string]any{}, []any{}}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Errorf("Truthy(%#v) = false, want true", v)
		}
	}
}

func TestQuizKey(t *testing.T) {
	key := QuizKey(Row{"qrId": "QR1", "submittedAt": "2024-01-15T10:00:00Z"})
	if key != "QR1|2024-01-15T10:00:00Z" {
		t.Fatalf("bad key: %s", key)
	}
	if got := QuizKey(Row{"qrId": "QR1"}); got != "QR1|" {
		t.Fatalf("missing submittedAt should render empty, got %q", got)
	}

	qr, at, ok := SplitQuizKey(key)
	if !ok || qr != "QR1" || at != "2024-01-15T10:00:00Z" {
		t.Fatalf("SplitQuizKey = %q, %q, %v", qr, at, ok)
	}
}

func TestEntityKeys(t *testing.T) {
	if _, ok := UserKey(Row{"sysId": ""}); ok {
		t.Error("empty sysId must not be a key")
	}
	if k, ok := SurveyKey(Row{"surveyId": 42.0}); !ok || k != "42" {
		t.Errorf("SurveyKey = %q, %v", k, ok)
	}
}
