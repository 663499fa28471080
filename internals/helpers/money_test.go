package helper

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNumberToWords(t *testing.T) {
	cases := map[int64]string{
		0:         "",
		7:         "Seven",
		19:        "Nineteen",
		40:        "Forty",
		85:        "Eighty Five",
		100:       "One Hundred",
		305:       "Three Hundred Five",
		1000:      "One Thousand",
		25450:     "Twenty Five Thousand Four Hundred Fifty",
		100000:    "One Lakh",
		1250000:   "Twelve Lakh Fifty Thousand",
		10000000:  "One Crore",
		120005001: "Twelve Crore Five Thousand One",
		120050001: "Twelve Crore Fifty Thousand One",
	}
	for n, want := range cases {
		assert.Equal(t, want, NumberToWords(n), "n=%d", n)
	}
}

func TestAmountInWords(t *testing.T) {
	assert.Equal(t, "Zero Rupees Only", AmountInWords(decimal.Zero))
	assert.Equal(t, "Forty Five Thousand Rupees Only", AmountInWords(decimal.NewFromInt(45000)))
	assert.Equal(t, "One Thousand Rupees and Fifty Paise Only", AmountInWords(decimal.RequireFromString("1000.50")))
	assert.Equal(t, "Twenty Five Paise Only", AmountInWords(decimal.RequireFromString("0.25")))
}

func TestFormatINR(t *testing.T) {
	assert.Equal(t, "0.00", FormatINR(decimal.Zero))
	assert.Equal(t, "999.00", FormatINR(decimal.NewFromInt(999)))
	assert.Equal(t, "1,000.00", FormatINR(decimal.NewFromInt(1000)))
	assert.Equal(t, "12,34,567.50", FormatINR(decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "1,00,00,000.00", FormatINR(decimal.NewFromInt(10000000)))
	assert.Equal(t, "-45,000.00", FormatINR(decimal.NewFromInt(-45000)))
}
