package feature

import (
	"math"
	"time"

	"trade-brain/src/models"
)

// -----------------------------------------------------------------------------
// Window codec: pure, deterministic transforms between raw price windows and
// normalized model samples.
// -----------------------------------------------------------------------------

// StdFloor is the minimum standard deviation used for z-scoring. A flat
// window would otherwise divide by zero.
const StdFloor = 1e-6

// -----------------------------------------------------------------------------

// MeanStd computes mean and population standard deviation.
func MeanStd(data []float64) (float64, float64) {
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
	std := math.Sqrt(varianceSum / float64(len(data)))
	return mean, std
}

// -----------------------------------------------------------------------------

// Normalize z-scores a price window and returns the statistics used, with
// std clamped to StdFloor.
func Normalize(window []float64) ([]float64, float64, float64) {
	mean, std := MeanStd(window)
	if std < StdFloor {
		std = StdFloor
	}

	values := make([]float64, len(window))
	for i, v := range window {
		values[i] = (v - mean) / std
	}
	return values, mean, std
}

// -----------------------------------------------------------------------------

// Denormalize maps a normalized path back to price space. Exact algebraic
// inverse of Normalize for the same (mean, std).
func Denormalize(pathZ []float64, mean, std float64) []float64 {
	prices := make([]float64, len(pathZ))
	for i, z := range pathZ {
		prices[i] = z*std + mean
	}
	return prices
}

// -----------------------------------------------------------------------------

// ToRelative converts absolute predicted prices to offsets from currentPrice.
func ToRelative(prices []float64, currentPrice float64) []float64 {
	rel := make([]float64, len(prices))
	for i, p := range prices {
		rel[i] = p - currentPrice
	}
	return rel
}

// -----------------------------------------------------------------------------

// TimeFeatures derives the UTC hour and weekday of a unix timestamp.
// Weekday is 0=Monday..4=Friday; weekend timestamps clamp to Friday.
func TimeFeatures(timestamp float64) models.MTimeFeatures {
	t := time.Unix(int64(timestamp), 0).UTC()

	// Go weekday starts on Sunday, shift to Monday=0
	weekday := (int(t.Weekday()) + 6) % 7
	if weekday > 4 {
		weekday = 4
	}

	return models.MTimeFeatures{
		Hour:    t.Hour(),
		Weekday: weekday,
	}
}
