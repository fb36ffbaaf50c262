package feeds

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastDigit(t *testing.T) {
	tests := map[string]struct {
		price float64
		digit int
	}{
		"two-decimals":  {price: 1234.56, digit: 6},
		"one-decimal":   {price: 1234.5, digit: 0},
		"integer":       {price: 987, digit: 0},
		"small":         {price: 0.07, digit: 7},
		"rounded-up":    {price: 10.129, digit: 3},
		"three-decimal": {price: 6543.211, digit: 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.digit, LastDigit(tt.price))
		})
	}
}

func TestValidPrice(t *testing.T) {
	assert.True(t, ValidPrice(1234.56))
	assert.True(t, ValidPrice(0.01))
	assert.False(t, ValidPrice(0))
	assert.False(t, ValidPrice(-5))
	assert.False(t, ValidPrice(math.NaN()))
	assert.False(t, ValidPrice(math.Inf(1)))
	assert.False(t, ValidPrice(math.Inf(-1)))
}

func TestDigitZones(t *testing.T) {
	for d := 0; d <= 9; d++ {
		assert.Equal(t, d%2 == 0, IsEven(d))
		assert.Equal(t, d < 5, IsLow(d))
	}
}
