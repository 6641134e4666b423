package util

import (
	"math"
	"strconv"
	"strings"
)

// CoerceNumber parses user-entered numeric input. Blank, non-numeric and
// non-finite input yields 0 instead of an error.
func CoerceNumber(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
