package rules

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"roofio/internal/schema"
)

func first(groups []string) string {
	if len(groups) == 0 {
		return ""
	}
	return strings.TrimSpace(groups[0])
}

func stripCommas(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

// currencyAbove parses a dollar amount and rejects values at or below min.
func currencyAbove(min float64) Converter {
	return func(groups []string) (any, bool) {
		v, err := strconv.ParseFloat(stripCommas(first(groups)), 64)
		if err != nil || v <= min {
			return nil, false
		}
		return v, true
	}
}

func toInt(groups []string) (any, bool) {
	v, err := strconv.Atoi(stripCommas(first(groups)))
	if err != nil {
		return nil, false
	}
	return v, true
}

func toFloat(groups []string) (any, bool) {
	v, err := strconv.ParseFloat(stripCommas(first(groups)), 64)
	if err != nil {
		return nil, false
	}
	return v, true
}

func toUpper(groups []string) (any, bool) {
	s := first(groups)
	if s == "" {
		return nil, false
	}
	return strings.ToUpper(s), true
}

// canonical normalizes an enum capture through the field's schema entry so both
// tiers report the same spelling.
func canonical(field string) Converter {
	spec := schema.Spec(field)
	return func(groups []string) (any, bool) {
		v, ok := spec.Canonical(first(groups))
		if !ok {
			return nil, false
		}
		return v, true
	}
}

func prefixed(prefix string) Converter {
	return func(groups []string) (any, bool) {
		s := first(groups)
		if s == "" {
			return nil, false
		}
		return prefix + s, true
	}
}

func warrantyType(groups []string) (any, bool) {
	s := strings.ToUpper(first(groups))
	switch {
	case s == "":
		return nil, false
	case strings.Contains(s, "NDL") || strings.Contains(s, "NO DOLLAR"):
		return "NDL", true
	case strings.Contains(s, "MATERIAL") && !strings.Contains(s, "LABOR"):
		return "Material Only", true
	default:
		return "Labor & Material", true
	}
}

var submittalStatuses = map[string]string{
	"approved":          "Approved",
	"approved as noted": "Approved as Noted",
	"revise & resubmit": "Revise & Resubmit",
	"rejected":          "Rejected",
	"pending":           "Pending",
}

func submittalStatus(groups []string) (any, bool) {
	s := strings.ToLower(strings.Join(strings.Fields(first(groups)), " "))
	s = strings.ReplaceAll(s, " and ", " & ")
	v, ok := submittalStatuses[s]
	return v, ok
}

func specSection(groups []string) (any, bool) {
	if len(groups) < 3 {
		return nil, false
	}
	return strings.Join(groups[:3], " "), true
}

func slope(groups []string) (any, bool) {
	s := first(groups)
	if s == "" {
		return nil, false
	}
	return s + ":12", true
}

// dateMDY normalizes month/day/year captures. Two-digit years are 20YY.
func dateMDY(groups []string) (any, bool) {
	if len(groups) < 3 {
		return nil, false
	}
	return isoDate(groups[2], groups[0], groups[1])
}

var months = map[string]string{
	"january": "1", "february": "2", "march": "3", "april": "4",
	"may": "5", "june": "6", "july": "7", "august": "8",
	"september": "9", "october": "10", "november": "11", "december": "12",
}

func dateWritten(groups []string) (any, bool) {
	if len(groups) < 3 {
		return nil, false
	}
	month, ok := months[strings.ToLower(groups[0])]
	if !ok {
		return nil, false
	}
	return isoDate(groups[2], month, groups[1])
}

func dateISO(groups []string) (any, bool) {
	if len(groups) < 3 {
		return nil, false
	}
	return isoDate(groups[0], groups[1], groups[2])
}

func isoDate(year, month, day string) (any, bool) {
	if len(year) == 2 {
		year = "20" + year
	}
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil || len(year) != 4 {
		return nil, false
	}
	s := fmt.Sprintf("%04d-%02d-%02d", y, m, d)
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return nil, false
	}
	return s, true
}
