package typing

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseNumeric attempts a best-effort numeric parse of the given text.
// Handles the formats present in the source exports: thousands separators,
// Brazilian/European comma decimals (1.234,56 / 1 234,56), parentheses for
// negatives, and a trailing percent sign.
func ParseNumeric(raw string) (float64, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return 0, false
	}

	// Parentheses for negative numbers: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	cleanVal = strings.TrimSuffix(strings.TrimSpace(cleanVal), "%")
	cleanVal = strings.TrimSpace(cleanVal)

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56: comma is the decimal separator when it is
		// followed by a short digit run.
		commaIdx := strings.LastIndex(cleanVal, ",")
		afterComma := cleanVal[commaIdx+1:]
		if len(afterComma) <= 3 && allDigits(afterComma) {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		}
	case hasComma:
		// Only a comma: decimal separator in the data's locale.
		cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// datetimeFormats is ordered day-first to resolve ambiguity consistently
// with the data's locale (02/01/2006 is the 2nd of January).
var datetimeFormats = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
}

// ParseDatetime attempts a best-effort date/time parse with day-first
// ambiguity resolution.
func ParseDatetime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range datetimeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// booleanTokens is the fixed token table for boolean coercion.
var booleanTokens = map[string]bool{
	"true": true, "1": true, "yes": true, "sim": true,
	"false": false, "0": false, "no": false, "nao": false,
}

// ParseBoolean performs a case-insensitive lookup against the fixed
// boolean token table. Unknown tokens are not booleans.
func ParseBoolean(raw string) (bool, bool) {
	v, ok := booleanTokens[strings.ToLower(strings.TrimSpace(raw))]
	return v, ok
}
