package predictor

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"trade-brain/src/helpers"
	"trade-brain/src/logger"
	"trade-brain/src/models"
)

// -----------------------------------------------------------------------------
// LinearPredictor is the baseline model backend: one linear readout per
// output step over the normalized window (plus hour/weekday inputs in the
// time-features variant), fit with mini-batch gradient descent on MSE.
// Deliberately simple; anything satisfying IPredictor can replace it.
// -----------------------------------------------------------------------------

type LinearPredictor struct {
	model    models.MModelConfig
	training models.MTrainingConfig
	Logger   *logger.Logger

	// One mutex covers both training and inference: Train overwrites the
	// weights and the artifact file, so a second TRAIN queues behind the
	// first and Predict waits out any in-flight training.
	mu      sync.Mutex
	weights [][]float64 // [output][1+features], bias first
	ready   bool
}

// -----------------------------------------------------------------------------

// artifact is the persisted model state.
type artifact struct {
	InputWindow  int         `json:"input_window"`
	OutputSteps  int         `json:"output_steps"`
	TimeFeatures bool        `json:"time_features"`
	Weights      [][]float64 `json:"weights"`
	TrainedAt    int64       `json:"trained_at"`
}

// -----------------------------------------------------------------------------

// NewLinearPredictor creates the predictor and loads the artifact from
// model.ArtifactPath when one exists and matches the configured shape.
func NewLinearPredictor(model models.MModelConfig, training models.MTrainingConfig, log *logger.Logger) (*LinearPredictor, error) {
	p := &LinearPredictor{
		model:    model,
		training: training,
		Logger:   log,
	}

	if err := p.loadArtifact(); err != nil {
		return nil, err
	}
	return p, nil
}

// -----------------------------------------------------------------------------

func (p *LinearPredictor) featureCount() int {
	n := p.model.InputWindow
	if p.model.TimeFeatures {
		n += 2
	}
	return n
}

// -----------------------------------------------------------------------------

// featureVector flattens a normalized sample into the model input. Time
// features are scaled into [0,1] so they live on the same scale as the
// z-scored prices.
func (p *LinearPredictor) featureVector(sample models.MNormalizedSample) ([]float64, error) {
	if len(sample.Values) != p.model.InputWindow {
		return nil, helpers.NewPredictorError(
			fmt.Sprintf("window length %d does not match model input %d", len(sample.Values), p.model.InputWindow), nil)
	}

	features := make([]float64, 0, p.featureCount())
	features = append(features, sample.Values...)

	if p.model.TimeFeatures {
		if sample.Time == nil {
			return nil, helpers.NewPredictorError("time features required but missing from sample", nil)
		}
		features = append(features,
			float64(sample.Time.Hour)/float64(models.HourBuckets-1),
			float64(sample.Time.Weekday)/float64(models.WeekdayBuckets-1),
		)
	}

	return features, nil
}

// -----------------------------------------------------------------------------

func (p *LinearPredictor) forward(weights []float64, features []float64) float64 {
	out := weights[0]
	for j, f := range features {
		out += weights[j+1] * f
	}
	return out
}

// -----------------------------------------------------------------------------

// Train fits fresh weights on the samples and atomically replaces the
// artifact on success. Holds the predictor lock for the whole run.
func (p *LinearPredictor) Train(samples []models.MTrainingSample) (models.MTrainingMetrics, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var zero models.MTrainingMetrics

	if len(samples) == 0 {
		return zero, helpers.NewPredictorError("no training samples", nil)
	}

	outputs := p.model.OutputSteps()
	inputs := make([][]float64, len(samples))
	for i, s := range samples {
		if len(s.Target) != outputs {
			return zero, helpers.NewPredictorError(
				fmt.Sprintf("sample %d has %d targets, expected %d", i, len(s.Target), outputs), nil)
		}
		features, err := p.featureVector(s.Input)
		if err != nil {
			return zero, err
		}
		inputs[i] = features
	}

	// Last 20% of samples are held out for validation, mirroring the
	// chronological split the history comes in with.
	valCount := len(samples) / 5
	trainCount := len(samples) - valCount
	if trainCount == 0 {
		trainCount = len(samples)
		valCount = 0
	}

	nFeatures := p.featureCount()
	weights := make([][]float64, outputs)
	for k := range weights {
		weights[k] = make([]float64, nFeatures+1)
	}

	p.Logger.Info("Training on %d samples (%d validation), %d epochs", trainCount, valCount, p.training.Epochs)

	batchSize := p.training.BatchSize
	if batchSize > trainCount {
		batchSize = trainCount
	}

	grad := make([]float64, nFeatures+1)
	var valLoss float64

	for epoch := 0; epoch < p.training.Epochs; epoch++ {
		for start := 0; start < trainCount; start += batchSize {
			end := start + batchSize
			if end > trainCount {
				end = trainCount
			}

			for k := 0; k < outputs; k++ {
				for j := range grad {
					grad[j] = 0
				}

				for i := start; i < end; i++ {
					residual := p.forward(weights[k], inputs[i]) - samples[i].Target[k]
					grad[0] += residual
					for j, f := range inputs[i] {
						grad[j+1] += residual * f
					}
				}

				scale := p.model.LearningRate / float64(end-start)
				for j := range weights[k] {
					weights[k][j] -= scale * grad[j]
				}
			}
		}

		if valCount > 0 {
			valLoss = p.meanSquaredError(weights, inputs, samples, trainCount, len(samples))
		} else {
			valLoss = p.meanSquaredError(weights, inputs, samples, 0, trainCount)
		}

		if math.IsNaN(valLoss) || math.IsInf(valLoss, 0) {
			return zero, helpers.NewPredictorError("training diverged", nil)
		}

		p.Logger.Debug("Epoch %d/%d val_loss=%.6f", epoch+1, p.training.Epochs, valLoss)
	}

	p.weights = weights
	p.ready = true

	if err := p.saveArtifact(); err != nil {
		return zero, err
	}

	return models.MTrainingMetrics{FinalValLoss: valLoss, Samples: len(samples)}, nil
}

// -----------------------------------------------------------------------------

func (p *LinearPredictor) meanSquaredError(weights [][]float64, inputs [][]float64, samples []models.MTrainingSample, from, to int) float64 {
	if to <= from {
		return 0
	}

	sum := 0.0
	count := 0
	for i := from; i < to; i++ {
		for k := range weights {
			diff := p.forward(weights[k], inputs[i]) - samples[i].Target[k]
			sum += diff * diff
			count++
		}
	}
	return sum / float64(count)
}

// -----------------------------------------------------------------------------

// Predict returns the normalized-space path for one window. Blocks while a
// training run holds the lock.
func (p *LinearPredictor) Predict(sample models.MNormalizedSample) ([]float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return nil, helpers.NewPredictorError("model not trained yet", nil)
	}

	features, err := p.featureVector(sample)
	if err != nil {
		return nil, err
	}

	path := make([]float64, len(p.weights))
	for k := range p.weights {
		out := p.forward(p.weights[k], features)
		if math.IsNaN(out) || math.IsInf(out, 0) {
			return nil, helpers.NewPredictorError("inference produced a non-finite value", nil)
		}
		path[k] = out
	}

	return path, nil
}

// -----------------------------------------------------------------------------

func (p *LinearPredictor) IsReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// -----------------------------------------------------------------------------
// Artifact persistence
// -----------------------------------------------------------------------------

func (p *LinearPredictor) loadArtifact() error {
	data, err := os.ReadFile(p.model.ArtifactPath)
	if os.IsNotExist(err) {
		p.Logger.Info("No artifact at %s, starting untrained", p.model.ArtifactPath)
		return nil
	}
	if err != nil {
		return helpers.NewPredictorError("failed to read artifact", err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return helpers.NewPredictorError("artifact is corrupt", err)
	}

	if art.InputWindow != p.model.InputWindow ||
		art.OutputSteps != p.model.OutputSteps() ||
		art.TimeFeatures != p.model.TimeFeatures {
		p.Logger.Warning("Artifact shape (%d->%d, time=%v) does not match config, ignoring it",
			art.InputWindow, art.OutputSteps, art.TimeFeatures)
		return nil
	}

	p.weights = art.Weights
	p.ready = true
	p.Logger.Info("Loaded artifact trained at %s", time.Unix(art.TrainedAt, 0).UTC().Format(time.RFC3339))
	return nil
}

// -----------------------------------------------------------------------------

// saveArtifact writes to a temp file in the artifact directory and renames
// it into place, so readers never observe a partially written model.
func (p *LinearPredictor) saveArtifact() error {
	art := artifact{
		InputWindow:  p.model.InputWindow,
		OutputSteps:  p.model.OutputSteps(),
		TimeFeatures: p.model.TimeFeatures,
		Weights:      p.weights,
		TrainedAt:    time.Now().Unix(),
	}

	data, err := json.Marshal(art)
	if err != nil {
		return helpers.NewPredictorError("failed to encode artifact", err)
	}

	dir := filepath.Dir(p.model.ArtifactPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return helpers.NewPredictorError("failed to create artifact dir", err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return helpers.NewPredictorError("failed to create temp artifact", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return helpers.NewPredictorError("failed to write artifact", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return helpers.NewPredictorError("failed to close artifact", err)
	}

	if err := os.Rename(tmp.Name(), p.model.ArtifactPath); err != nil {
		os.Remove(tmp.Name())
		return helpers.NewPredictorError("failed to replace artifact", err)
	}

	return nil
}
