package feature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func TestNormalizeDenormalizeRoundTrip(t *testing.T) {
	window := []float64{1.1, 1.2, 1.15, 1.3, 1.25, 1.18}

	values, mean, std := Normalize(window)

	// Normalized window has zero mean and unit variance
	vMean, vStd := MeanStd(values)
	assert.InDelta(t, 0.0, vMean, 1e-9)
	assert.InDelta(t, 1.0, vStd, 1e-9)

	// Denormalize is the exact algebraic inverse
	restored := Denormalize(values, mean, std)
	for i := range window {
		assert.InDelta(t, window[i], restored[i], 1e-9)
	}
}

// -----------------------------------------------------------------------------

func TestNormalizeConstantWindow(t *testing.T) {
	window := []float64{1.5, 1.5, 1.5, 1.5}

	values, mean, std := Normalize(window)

	assert.Equal(t, 1.5, mean)
	assert.Equal(t, StdFloor, std)
	for _, v := range values {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
		assert.Equal(t, 0.0, v)
	}
}

// -----------------------------------------------------------------------------

func TestMeanStd(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-9)
	assert.InDelta(t, 2.0, std, 1e-9)

	mean, std = MeanStd(nil)
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0.0, std)

	mean, std = MeanStd([]float64{42})
	assert.Equal(t, 42.0, mean)
	assert.Equal(t, 0.0, std)
}

// -----------------------------------------------------------------------------

func TestToRelative(t *testing.T) {
	rel := ToRelative([]float64{1.2, 1.25, 1.1}, 1.2)
	assert.InDelta(t, 0.0, rel[0], 1e-12)
	assert.InDelta(t, 0.05, rel[1], 1e-12)
	assert.InDelta(t, -0.1, rel[2], 1e-12)
}

// -----------------------------------------------------------------------------

func TestTimeFeatures(t *testing.T) {
	// Monday 2024-01-01 15:00 UTC
	tf := TimeFeatures(1704121200)
	assert.Equal(t, 15, tf.Hour)
	assert.Equal(t, 0, tf.Weekday)

	// Friday 2024-01-05 23:00 UTC
	tf = TimeFeatures(1704495600)
	assert.Equal(t, 23, tf.Hour)
	assert.Equal(t, 4, tf.Weekday)
}

// -----------------------------------------------------------------------------

func TestTimeFeaturesWeekendClampsToFriday(t *testing.T) {
	// Saturday 2024-01-06 00:00 UTC
	tf := TimeFeatures(1704499200)
	assert.Equal(t, 0, tf.Hour)
	assert.Equal(t, 4, tf.Weekday)

	// Sunday 2024-01-07 12:00 UTC
	tf = TimeFeatures(1704628800)
	assert.Equal(t, 12, tf.Hour)
	assert.Equal(t, 4, tf.Weekday)
}
