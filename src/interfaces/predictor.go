package interfaces

import "trade-brain/src/models"

// -----------------------------------------------------------------------------
// IPredictor defines the contract for the trainable model backend.
// -----------------------------------------------------------------------------

type IPredictor interface {

	// -----------------------------------------------------------------------------

	// Train fits the model on the given samples and persists the artifact
	// on success. Exactly one Train runs at a time system-wide; a second
	// TRAIN request issued while one is running blocks until the first
	// finishes. Predict is excluded for the duration.
	Train(samples []models.MTrainingSample) (models.MTrainingMetrics, error)

	// -----------------------------------------------------------------------------

	// Predict returns the path for one normalized window, in normalized
	// space (the caller denormalizes with the window's mean/std).
	Predict(sample models.MNormalizedSample) ([]float64, error)

	// -----------------------------------------------------------------------------

	// IsReady reports whether a trained artifact is loaded.
	IsReady() bool
}
