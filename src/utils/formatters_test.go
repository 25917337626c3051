package utils

import (
	"encoding/json"
	"math"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"market-dashboard/src/models"
)

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		in       any
		decimals int
		want     string
	}{
		{1234.5678, 2, "1,234.57"},
		{0.123456, 4, "0.1235"},
		{1000000, 2, "1,000,000.00"},
		{-1234.5678, 2, "-1,234.57"},
		{-0.123456, 4, "-0.1235"},
		{"98765.4321", 2, "98,765.43"},
		{json.Number("12.5"), 0, "13"},
		{decimal.RequireFromString("0.00001234"), 8, "0.00001234"},
		{-0.001, 2, "0.00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatPrice(tc.in, tc.decimals), "input %v", tc.in)
	}
}

func TestFormatPriceInvalidInput(t *testing.T) {
	for _, in := range []any{nil, "", "invalid", math.NaN(), math.Inf(1), struct{}{}} {
		assert.Equal(t, "0.00", FormatPrice(in, 2), "input %v", in)
	}
}

func TestFormatVolume(t *testing.T) {
	cases := map[any]string{
		1500000:   "1.5M",
		2000000:   "2.0M",
		1000000.0: "1.0M",
		1500:      "1.5K",
		"2000":    "2.0K",
		1000:      "1.0K",
		999:       "999.00",
		500.5:     "500.50",
		1.005:     "1.00",
		0.125:     "0.13",
		0:         "0.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatVolume(in), "input %v", in)
	}

	for _, in := range []any{nil, "", "invalid", math.NaN()} {
		assert.Equal(t, "0", FormatVolume(in))
	}
}

func TestGetDecimalPlaces(t *testing.T) {
	assert.Equal(t, 2, GetDecimalPlaces(2000))
	assert.Equal(t, 4, GetDecimalPlaces(1000))
	assert.Equal(t, 4, GetDecimalPlaces(100))
	assert.Equal(t, 5, GetDecimalPlaces(1))
	assert.Equal(t, 5, GetDecimalPlaces(0.1))
	assert.Equal(t, 8, GetDecimalPlaces(0.01))
	assert.Equal(t, 8, GetDecimalPlaces(0.001))
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "+5.25%", FormatPercentage("5.25", models.DirectionUp))
	assert.Equal(t, "-3.75%", FormatPercentage("3.75", models.DirectionDown))
	assert.Equal(t, "+0%", FormatPercentage("0", models.DirectionUp))
}

func TestFormatTime(t *testing.T) {
	const ts = 1640995200 // 2022-01-01T00:00:00Z

	hhmm := regexp.MustCompile(`^\d{2}:\d{2}$`)
	assert.Regexp(t, hhmm, FormatTime(ts, false))
	assert.Equal(t, FormatTime(ts, false), FormatChartTime(ts))
	assert.Regexp(t, `^[A-Z][a-z]{2} \d{1,2}, \d{2}:\d{2}$`, FormatTime(ts, true))
	assert.NotEmpty(t, Timezone())
}

func TestFormatCurrencyPair(t *testing.T) {
	assert.Equal(t, "BTC/USD", FormatCurrencyPair("btc", "usd"))
	assert.Equal(t, "ETH/AUD", FormatCurrencyPair("eth", "Aud"))
}

func TestParseNumber(t *testing.T) {
	n, ok := ParseNumber("  42.5 ")
	assert.True(t, ok)
	assert.Equal(t, 42.5, n)

	_, ok = ParseNumber((*decimal.Decimal)(nil))
	assert.False(t, ok)

	assert.Equal(t, 0.0, ParseNumberOrZero("abc"))
	assert.Equal(t, 7.0, ParseNumberOrZero(int64(7)))
}
