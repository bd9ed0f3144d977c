package predictor

import (
	"math"
	"path/filepath"
	"testing"

	"trade-brain/src/feature"
	"trade-brain/src/helpers"
	"trade-brain/src/logger"
	"trade-brain/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func testModelConfig(artifactDir string) models.MModelConfig {
	return models.MModelConfig{
		InputWindow:    8,
		PredictHorizon: 4,
		PredictStride:  2, // 2 output steps
		ArtifactPath:   filepath.Join(artifactDir, "linear.json"),
		LearningRate:   0.05,
	}
}

func testTrainingConfig() models.MTrainingConfig {
	return models.MTrainingConfig{
		TrainLimit:   1000,
		BatchSize:    8,
		Epochs:       200,
		SampleStride: 1,
		Margin:       0,
	}
}

// syntheticSamples builds windows from a slow sine wave; the targets follow
// the same curve so a linear readout can fit them.
func syntheticSamples(model models.MModelConfig, n int) []models.MTrainingSample {
	series := make([]float64, n+model.InputWindow+model.PredictHorizon)
	for i := range series {
		series[i] = 1.2 + 0.01*math.Sin(float64(i)/15)
	}

	samples := make([]models.MTrainingSample, 0, n)
	for i := 0; i < n; i++ {
		window := series[i : i+model.InputWindow]
		values, mean, std := feature.Normalize(window)

		target := make([]float64, 0, model.OutputSteps())
		for j := i + model.InputWindow; j < i+model.InputWindow+model.PredictHorizon; j += model.PredictStride {
			target = append(target, (series[j]-mean)/std)
		}

		samples = append(samples, models.MTrainingSample{
			Input:  models.MNormalizedSample{Values: values},
			Target: target,
		})
	}
	return samples
}

// -----------------------------------------------------------------------------

func TestTrainProducesFiniteValLoss(t *testing.T) {
	model := testModelConfig(t.TempDir())
	p, err := NewLinearPredictor(model, testTrainingConfig(), logger.NewLogger("ERROR", "test"))
	require.NoError(t, err)
	assert.False(t, p.IsReady())

	metrics, err := p.Train(syntheticSamples(model, 40))
	require.NoError(t, err)

	assert.True(t, p.IsReady())
	assert.Equal(t, 40, metrics.Samples)
	assert.False(t, math.IsNaN(metrics.FinalValLoss))
	assert.False(t, math.IsInf(metrics.FinalValLoss, 0))
	assert.GreaterOrEqual(t, metrics.FinalValLoss, 0.0)
}

// -----------------------------------------------------------------------------

func TestPredictBeforeTrainFails(t *testing.T) {
	model := testModelConfig(t.TempDir())
	p, err := NewLinearPredictor(model, testTrainingConfig(), logger.NewLogger("ERROR", "test"))
	require.NoError(t, err)

	_, err = p.Predict(models.MNormalizedSample{Values: make([]float64, model.InputWindow)})
	require.Error(t, err)

	var pe *helpers.PredictorError
	assert.ErrorAs(t, err, &pe)
}

// -----------------------------------------------------------------------------

func TestPredictRejectsWrongWindowLength(t *testing.T) {
	model := testModelConfig(t.TempDir())
	p, err := NewLinearPredictor(model, testTrainingConfig(), logger.NewLogger("ERROR", "test"))
	require.NoError(t, err)

	_, err = p.Train(syntheticSamples(model, 20))
	require.NoError(t, err)

	_, err = p.Predict(models.MNormalizedSample{Values: make([]float64, 3)})
	require.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestPredictReturnsOutputSteps(t *testing.T) {
	model := testModelConfig(t.TempDir())
	p, err := NewLinearPredictor(model, testTrainingConfig(), logger.NewLogger("ERROR", "test"))
	require.NoError(t, err)

	samples := syntheticSamples(model, 30)
	_, err = p.Train(samples)
	require.NoError(t, err)

	path, err := p.Predict(samples[0].Input)
	require.NoError(t, err)
	assert.Len(t, path, model.OutputSteps())
	for _, v := range path {
		assert.False(t, math.IsNaN(v))
	}
}

// -----------------------------------------------------------------------------

func TestArtifactRoundTrip(t *testing.T) {
	dir := t.TempDir()
	model := testModelConfig(dir)
	log := logger.NewLogger("ERROR", "test")

	p, err := NewLinearPredictor(model, testTrainingConfig(), log)
	require.NoError(t, err)

	samples := syntheticSamples(model, 30)
	_, err = p.Train(samples)
	require.NoError(t, err)

	want, err := p.Predict(samples[0].Input)
	require.NoError(t, err)

	// A fresh predictor picks the artifact up and predicts identically
	reloaded, err := NewLinearPredictor(model, testTrainingConfig(), log)
	require.NoError(t, err)
	assert.True(t, reloaded.IsReady())

	got, err := reloaded.Predict(samples[0].Input)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// -----------------------------------------------------------------------------

func TestArtifactShapeMismatchIsIgnored(t *testing.T) {
	dir := t.TempDir()
	model := testModelConfig(dir)
	log := logger.NewLogger("ERROR", "test")

	p, err := NewLinearPredictor(model, testTrainingConfig(), log)
	require.NoError(t, err)
	_, err = p.Train(syntheticSamples(model, 30))
	require.NoError(t, err)

	// Same artifact path, different window: must start untrained
	other := model
	other.InputWindow = 16
	reloaded, err := NewLinearPredictor(other, testTrainingConfig(), log)
	require.NoError(t, err)
	assert.False(t, reloaded.IsReady())
}

// -----------------------------------------------------------------------------

func TestTrainRejectsEmptyAndMismatchedSamples(t *testing.T) {
	model := testModelConfig(t.TempDir())
	p, err := NewLinearPredictor(model, testTrainingConfig(), logger.NewLogger("ERROR", "test"))
	require.NoError(t, err)

	_, err = p.Train(nil)
	require.Error(t, err)

	bad := syntheticSamples(model, 5)
	bad[2].Target = bad[2].Target[:1]
	_, err = p.Train(bad)
	require.Error(t, err)
	assert.False(t, p.IsReady())
}
