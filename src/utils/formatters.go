package utils

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Formatters are pure functions over numbers that arrive either as JSON
// numbers or as decimal strings. Anything that does not parse formats as zero.
// -----------------------------------------------------------------------------

// ParseNumber converts a float, integer, decimal or numeric string into a
// float64. ok is false for nil, empty strings, garbage, NaN and infinities.
func ParseNumber(v any) (n float64, ok bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case int32:
		n = float64(x)
	case decimal.Decimal:
		n = x.InexactFloat64()
	case *decimal.Decimal:
		if x == nil {
			return 0, false
		}
		n = x.InexactFloat64()
	case json.Number:
		return ParseNumber(string(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, false
		}
		n = d.InexactFloat64()
	default:
		return 0, false
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// ParseNumberOrZero is ParseNumber without the ok flag
func ParseNumberOrZero(v any) float64 {
	n, _ := ParseNumber(v)
	return n
}

// -----------------------------------------------------------------------------

// FormatPrice groups thousands with commas and fixes the fraction to decimals
// digits: 1234.5678 -> "1,234.57". Invalid input yields "0.00".
func FormatPrice(price any, decimals int) string {
	n, ok := ParseNumber(price)
	if !ok {
		return "0.00"
	}
	if decimals < 0 {
		decimals = 0
	}
	return groupFixed(n, decimals)
}

// FormatVolume abbreviates volumes: >= 1e6 as "x.xM", >= 1e3 as "x.xK",
// otherwise two decimals. Invalid input yields "0".
func FormatVolume(volume any) string {
	n, ok := ParseNumber(volume)
	if !ok {
		return "0"
	}

	switch {
	case n >= 1_000_000:
		return toFixed(n/1_000_000, 1) + "M"
	case n >= 1_000:
		return toFixed(n/1_000, 1) + "K"
	default:
		return toFixed(n, 2)
	}
}

// GetDecimalPlaces picks the display precision for a price by magnitude
func GetDecimalPlaces(price float64) int {
	switch {
	case price > 1000:
		return 2
	case price > 1:
		return 4
	case price > 0.01:
		return 5
	default:
		return 8
	}
}

// FormatPercentage prefixes percent with "+" for Up and "-" otherwise
func FormatPercentage(percent string, direction models.MDirection) string {
	sign := "-"
	if direction == models.DirectionUp {
		sign = "+"
	}
	return sign + percent + "%"
}

// FormatTime renders a unix timestamp (seconds) in local time as "15:04",
// or "Jan 2, 15:04" when includeDate is set.
func FormatTime(timestamp int64, includeDate bool) string {
	t := time.Unix(timestamp, 0).In(time.Local)
	if includeDate {
		return t.Format("Jan 2, 15:04")
	}
	return t.Format("15:04")
}

// FormatChartTime is the chart axis label for a point
func FormatChartTime(timestamp int64) string {
	return FormatTime(timestamp, false)
}

// FormatCurrencyPair renders "PRIMARY/SECONDARY"
func FormatCurrencyPair(primary, secondary string) string {
	return strings.ToUpper(primary) + "/" + strings.ToUpper(secondary)
}

// Timezone names the zone FormatTime renders in
func Timezone() string {
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	zone, _ := time.Now().Zone()
	return zone
}

// -----------------------------------------------------------------------------

// toFixed rounds the exact binary value half away from zero, so 1.005 gives
// "1.00" at two places
func toFixed(n float64, places int) string {
	exact := new(big.Rat).SetFloat64(n)
	if exact == nil {
		return strconv.FormatFloat(n, 'f', places, 64)
	}
	return decimal.NewFromBigRat(exact, int32(places)).StringFixed(int32(places))
}

func groupFixed(n float64, places int) string {
	fixed := toFixed(math.Abs(n), places)

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	whole, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return fixed
	}

	out := humanize.BigComma(whole)
	if fracPart != "" {
		out += "." + fracPart
	}
	if n < 0 && strings.Trim(fixed, "0.") != "" {
		out = "-" + out
	}
	return out
}
