package listview

import (
	"math"
	"strconv"
	"strings"

	"github.com/mbolis/survey-admin/model"
	"github.com/mbolis/survey-admin/tz"
	"golang.org/x/text/collate"
)

// compare orders a against b for ascending direction dir=1 or descending
// dir=-1. Null values, and unparseable dates for date keys, sort last in
// both directions.
func compare(av, bv any, dir int, isDate bool, col *collate.Collator) int {
	if av == nil && bv == nil {
		return 0
	}
	if av == nil {
		return 1
	}
	if bv == nil {
		return -1
	}

	if isDate {
		at, aok := tz.Parse(av)
		bt, bok := tz.Parse(bv)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		return at.Compare(bt) * dir
	}

	an, aok := toNumber(av)
	bn, bok := toNumber(bv)
	if aok && bok {
		return cmpFloat(an, bn) * dir
	}

	return col.CompareString(model.String(av), model.String(bv)) * dir
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// toNumber reports whether v reads as a number. The empty string does not,
// even though it would coerce to zero.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		if n == "" {
			return 0, false
		}
		return parseNumber(strings.TrimSpace(n))
	}
	return 0, false
}

func parseNumber(s string) (float64, bool) {
	switch s {
	case "":
		return 0, true
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	if len(s) > 2 && s[0] == '0' && strings.ContainsRune("xXoObB", rune(s[1])) {
		i, err := strconv.ParseInt(s, 0, 64)
		return float64(i), err == nil
	}
	// ParseFloat also accepts inf/nan spellings, underscores and hex floats
	for _, r := range s {
		if !strings.ContainsRune("0123456789+-.eE", r) {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
