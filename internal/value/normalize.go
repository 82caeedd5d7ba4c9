// Package value coerces raw table cells into numbers.
package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/leengari/labcheck/internal/domain/table"
)

// Number is a normalized cell: a finite float or the absent marker
type Number struct {
	Value   float64
	Present bool
}

// Absent is the not-a-number sentinel
var Absent = Number{}

// Of wraps a float, treating NaN and ±Inf as absent
func Of(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Absent
	}
	return Number{Value: v, Present: true}
}

// Normalize converts a cell into a Number. It never fails; unparseable
// content yields Absent.
func Normalize(c table.Cell) Number {
	switch c.Kind {
	case table.KindNumber:
		return Of(c.Num)
	case table.KindString:
		return ParseString(c.Str)
	default:
		return Absent
	}
}

// ParseString parses a locale-formatted numeral.
//
// A lone comma is a decimal comma ("12,5"). When both separators appear the
// rightmost one is the decimal point and the other is a grouping separator
// ("1.234,5" and "1,234.5" are both 1234.5).
func ParseString(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Absent
	}

	canon, ok := canonicalDecimal(s)
	if !ok {
		return Absent
	}

	// strconv accepts "inf", "nan" and hex floats; lab data never means those
	if !looksNumeric(canon) {
		return Absent
	}

	f, err := strconv.ParseFloat(canon, 64)
	if err != nil {
		return Absent
	}
	return Of(f)
}

func canonicalDecimal(s string) (string, bool) {
	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')

	switch {
	case lastComma < 0:
		return s, true
	case lastDot < 0:
		if strings.Count(s, ",") > 1 {
			return "", false
		}
		return strings.Replace(s, ",", ".", 1), true
	case lastComma > lastDot:
		// 1.234,5
		s = strings.ReplaceAll(s, ".", "")
		if strings.Count(s, ",") > 1 {
			return "", false
		}
		return strings.Replace(s, ",", ".", 1), true
	default:
		// 1,234.5
		return strings.ReplaceAll(s, ",", ""), true
	}
}

func looksNumeric(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
		case r == '+' || r == '-':
			if i != 0 && s[i-1] != 'e' && s[i-1] != 'E' {
				return false
			}
		case r == 'e' || r == 'E':
			if digits == 0 {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}
