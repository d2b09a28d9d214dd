package fallback

import (
	"math"
	"strconv"
	"strings"
	"time"

	"roofio/internal/schema"
)

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// coerce normalizes a decoded JSON scalar to the field's kind.
// It reports false when the value is empty or cannot be converted.
func coerce(spec schema.FieldSpec, raw any) (any, bool) {
	switch spec.Kind {
	case schema.KindInteger:
		f, ok := toNumber(raw)
		if !ok || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return nil, false
		}
		return int(f), true
	case schema.KindCurrency, schema.KindPercentage:
		return toNumber(raw)
	case schema.KindDate:
		s, ok := toText(raw)
		if !ok {
			return nil, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format("2006-01-02"), true
			}
		}
		return nil, false
	case schema.KindEnum:
		s, ok := toText(raw)
		if !ok {
			return nil, false
		}
		if v, ok := spec.Canonical(s); ok {
			return v, true
		}
		return s, true
	default:
		return toText(raw)
	}
}

// toNumber accepts JSON numbers and numeric strings. Infinities, NaN and
// overflowing values are rejected; they cannot be serialized back to JSON.
func toNumber(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case string:
		s := strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(strings.TrimSpace(v))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func toText(raw any) (string, bool) {
	var s string
	switch v := raw.(type) {
	case string:
		s = strings.TrimSpace(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(v)
	}
	return s, s != ""
}
