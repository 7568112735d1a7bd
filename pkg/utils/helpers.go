package utils

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// RoundTo rounds a float to specified decimal places
func RoundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

// Capitalize upper-cases the first letter and lower-cases the rest,
// so "clear SKY" becomes "Clear sky"
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// FormatDecimal renders f in its shortest form but always with a fractional
// part: 15 -> "15.0", 15.25 -> "15.25"
func FormatDecimal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
