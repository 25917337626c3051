package core

import "math"

// -----------------------------------------------------------------------------

// CalculateMeanStd computes mean and population standard deviation.
func CalculateMeanStd(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(len(data))

	if len(data) == 1 {
		return mean, 0
	}

	varianceSum := 0.0
	for _, v := range data {
		varianceSum += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(varianceSum / float64(len(data)))
}

// -----------------------------------------------------------------------------

// CalculateReturns converts a price series into period-over-period percent
// changes. Periods starting from a zero price yield 0.
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out[i-1] = CalculateChangePercent(prices[i], prices[i-1])
	}
	return out
}
