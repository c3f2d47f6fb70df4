package domain

import (
	"math"
	"strconv"
	"strings"
)

// ParseFloat coerces attribute text into a number. Absent, empty or unparseable
// input yields nil; the caller decides whether to keep the text instead.
func ParseFloat(value *string) *float64 {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil
	}
	return &parsed
}
