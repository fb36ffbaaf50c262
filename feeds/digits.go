package feeds

import (
	"math"
	"strconv"
)

// ValidPrice reports whether a tick price can be used for digit extraction
func ValidPrice(price float64) bool {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return false
	}
	return price > 0
}

// LastDigit returns the final digit of the price quoted with two decimals.
// 1234.5 -> "1234.50" -> 0, 0.07 -> "0.07" -> 7.
func LastDigit(price float64) int {
	quoted := strconv.FormatFloat(price, 'f', 2, 64)
	for i := len(quoted) - 1; i >= 0; i-- {
		if c := quoted[i]; c >= '0' && c <= '9' {
			return int(c - '0')
		}
	}
	return 0
}

// IsEven reports digit parity
func IsEven(digit int) bool {
	return digit%2 == 0
}

// IsLow reports whether the digit sits in the low zone (0-4)
func IsLow(digit int) bool {
	return digit <= 4
}
