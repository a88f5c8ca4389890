package contract

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// stripSpaces removes every whitespace rune, including the non-breaking and
// narrow non-breaking spaces used as thousands separators in French locales.
func stripSpaces(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\u00a0' || r == '\u202f' {
			return -1
		}
		return r
	}, raw)
}

// plainNumber reports whether s only holds an optional sign, digits and dots
func plainNumber(s string) bool {
	if s == "" {
		return false
	}
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
		case (r == '-' || r == '+') && i == 0:
		default:
			return false
		}
	}
	return digits > 0
}

func parseFinite(s string) (float64, bool) {
	if !plainNumber(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseFloat accepts "0,4", "0.4" and " 0.4 " alike. The comma is always a
// decimal separator. It returns false instead of an error on bad input.
func ParseFloat(raw string) (float64, bool) {
	s := strings.ReplaceAll(stripSpaces(raw), ",", ".")
	return parseFinite(s)
}

// FloatOr is ParseFloat with a default for unparseable input
func FloatOr(raw string, def float64) float64 {
	if v, ok := ParseFloat(raw); ok {
		return v
	}
	return def
}

// ParseInt accepts "7 000", "7,000" and "7000" alike. Commas are thousands
// separators.
func ParseInt(raw string) (int, bool) {
	s := strings.ReplaceAll(stripSpaces(raw), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseAmount parses a money amount written with either convention.
// When both separators occur the rightmost one is the decimal mark. A single
// comma followed by exactly three digits, or several commas, group thousands;
// otherwise the comma is the decimal mark. Several dots group thousands.
func ParseAmount(raw string) (float64, bool) {
	s := stripSpaces(raw)
	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")

	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") > 1 || len(s)-comma-1 == 3 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	return parseFinite(s)
}

// FormatAmount renders an amount without trailing zeros ("7000", "1500.5")
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
