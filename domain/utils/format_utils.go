package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatCoins formats an amount with thousand separators (e.g., 1,234,567)
func FormatCoins(value int64) string {
	digits := strconv.FormatInt(value, 10)
	sign := ""
	if value < 0 {
		sign, digits = "-", digits[1:]
	}

	n := len(digits)
	if n <= 3 {
		return sign + digits
	}

	var b strings.Builder
	b.WriteString(sign)
	for i, digit := range digits {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteRune(',')
		}
		b.WriteRune(digit)
	}
	return b.String()
}

// FormatShortNotation formats a number using short notation (e.g., 50k instead of 50000)
func FormatShortNotation(value int64) string {
	absValue := value
	sign := ""
	if value < 0 {
		absValue = -value
		sign = "-"
	}

	switch {
	case absValue >= 1_000_000_000:
		return fmt.Sprintf("%s%.2fB", sign, float64(absValue)/1_000_000_000)
	case absValue >= 1_000_000:
		return fmt.Sprintf("%s%.2fM", sign, float64(absValue)/1_000_000)
	case absValue >= 10_000:
		return fmt.Sprintf("%s%dk", sign, absValue/1_000)
	case absValue >= 1_000:
		return fmt.Sprintf("%s%.1fk", sign, float64(absValue)/1_000)
	default:
		return fmt.Sprintf("%s%d", sign, absValue)
	}
}
