package model

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Row is one record of tabular data as decoded from the backend.
type Row map[string]any

// Get navigates path on the row. See Lookup.
func (r Row) Get(path string) (any, bool) {
	return Lookup(map[string]any(r), path)
}

// Has reports whether the top-level key is present, even when its value is null.
func (r Row) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Lookup walks a dot-separated path through nested objects.
// A missing segment, or a segment that is not an object, yields (nil, false).
func Lookup(v any, path string) (any, bool) {
	cur := v
	for _, part := range strings.Split(path, ".") {
		var obj map[string]any
		switch o := cur.(type) {
		case map[string]any:
			obj = o
		case Row:
			obj = o
		default:
			return nil, false
		}
		next, ok := obj[part]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// String renders a scalar the way a browser would print it in a table cell.
// Objects and arrays are rendered as compact JSON, nil as the empty string.
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return formatNumber(s)
	case float32:
		return formatNumber(float64(s))
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case json.Number:
		return s.String()
	}
	b, err := json.MarshalNoEscape(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Truthy mirrors JavaScript truthiness for decoded JSON values.
func Truthy(v any) bool {
	switch s := v.(type) {
	case nil:
		return false
	case bool:
		return s
	case string:
		return s != ""
	case float64:
		return s != 0 && !math.IsNaN(s)
	case int:
		return s != 0
	case int64:
		return s != 0
	}
	return true
}

// UserKey returns the user identifier (sysId).
func UserKey(r Row) (string, bool) {
	v := r["sysId"]
	if !Truthy(v) {
		return "", false
	}
	return String(v), true
}

// SurveyKey returns the survey identifier (surveyId).
func SurveyKey(r Row) (string, bool) {
	v := r["surveyId"]
	if !Truthy(v) {
		return "", false
	}
	return String(v), true
}

// QuizKey builds the composite quiz submission key "qrId|submittedAt".
// Falsy parts render as empty strings.
func QuizKey(r Row) string {
	return JoinQuizKey(orEmpty(r["qrId"]), orEmpty(r["submittedAt"]))
}

func JoinQuizKey(qrId, submittedAt string) string {
	return qrId + "|" + submittedAt
}

// SplitQuizKey is the inverse of JoinQuizKey.
func SplitQuizKey(key string) (qrId, submittedAt string, ok bool) {
	return strings.Cut(key, "|")
}

func orEmpty(v any) string {
	if !Truthy(v) {
		return ""
	}
	return String(v)
}
