package feature

import (
	"trade-brain/src/helpers"
	"trade-brain/src/models"
)

// -----------------------------------------------------------------------------
// TrainingSetBuilder turns an ordered tick history into stride-sampled
// (window, future-path) training pairs.
// -----------------------------------------------------------------------------

type TrainingSetBuilder struct {
	Window        int // W, input window length
	Horizon       int // future ticks covered by one target
	PredictStride int // subsample step inside the horizon
	SampleStride  int // step between successive training windows
	Margin        int // safety buffer against edge effects
}

// -----------------------------------------------------------------------------

func NewTrainingSetBuilder(model models.MModelConfig, training models.MTrainingConfig) *TrainingSetBuilder {
	return &TrainingSetBuilder{
		Window:        model.InputWindow,
		Horizon:       model.PredictHorizon,
		PredictStride: model.PredictStride,
		SampleStride:  training.SampleStride,
		Margin:        training.Margin,
	}
}

// -----------------------------------------------------------------------------

// Build slides a window over prices in SampleStride steps. Each sample's
// target is the future horizon subsampled every PredictStride ticks (a
// subsample, not an average) and z-scored with the input window's own
// mean/std. When timestamps covers prices, the hour/weekday of the tick
// just before the forecast horizon is attached.
//
// Samples come back in ascending window order, so a given history always
// produces the same set.
func (b *TrainingSetBuilder) Build(prices []float64, timestamps []float64) ([]models.MTrainingSample, error) {
	need := b.Window + b.Horizon + b.Margin
	limit := len(prices) - b.Window - b.Horizon
	if limit <= 0 || len(prices) < need {
		return nil, helpers.NewInsufficientDataError(len(prices), need)
	}

	withTime := len(timestamps) == len(prices)
	samples := make([]models.MTrainingSample, 0, (limit+b.SampleStride-1)/b.SampleStride)

	for i := 0; i < limit; i += b.SampleStride {
		window := prices[i : i+b.Window]
		values, mean, std := Normalize(window)

		target := make([]float64, 0, b.Horizon/b.PredictStride)
		for j := i + b.Window; j < i+b.Window+b.Horizon; j += b.PredictStride {
			target = append(target, (prices[j]-mean)/std)
		}

		sample := models.MTrainingSample{
			Input:  models.MNormalizedSample{Values: values},
			Target: target,
		}
		if withTime {
			tf := TimeFeatures(timestamps[i+b.Window-1])
			sample.Input.Time = &tf
		}

		samples = append(samples, sample)
	}

	return samples, nil
}
