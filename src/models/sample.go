package models

// -----------------------------------------------------------------------------
// Model input/output structures
// -----------------------------------------------------------------------------

// Embedding cardinalities for the time tower.
const (
	HourBuckets    = 24
	WeekdayBuckets = 5
)

// MTimeFeatures holds the time-of-day encoding of a window's last tick.
// Weekday is 0=Monday..4=Friday; weekend timestamps are clamped to Friday.
type MTimeFeatures struct {
	Hour    int `json:"hour"`
	Weekday int `json:"weekday"`
}

// -----------------------------------------------------------------------------

// MNormalizedSample is a z-scored price window ready for inference.
// Time is nil unless the time-features variant is enabled.
type MNormalizedSample struct {
	Values []float64      `json:"values"`
	Time   *MTimeFeatures `json:"time,omitempty"`
}

// -----------------------------------------------------------------------------

// MTrainingSample pairs a normalized input window with its future targets.
// Target is z-scored with the input window's own mean/std, not its own.
type MTrainingSample struct {
	Input  MNormalizedSample `json:"input"`
	Target []float64         `json:"target"`
}

// -----------------------------------------------------------------------------

// MTrainingMetrics summarizes one completed training run.
type MTrainingMetrics struct {
	FinalValLoss float64 `json:"final_val_loss"`
	Samples      int     `json:"samples"`
}
