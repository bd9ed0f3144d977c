package models

// -----------------------------------------------------------------------------
// Monitor server state (pushed to websocket clients, served on /api/metrics)
// -----------------------------------------------------------------------------

type MMonitorState struct {
	Type             string  `json:"type"` // "INITIAL" or "UPDATE"
	TicksStored      int64   `json:"ticks_stored"`
	TicksIngested    int64   `json:"ticks_ingested"`
	WindowFill       int     `json:"window_fill"`
	WindowCapacity   int     `json:"window_capacity"`
	ModelReady       bool    `json:"model_ready"`
	LastValLoss      float64 `json:"last_val_loss"`
	LastPredictionAt int64   `json:"last_prediction_at"`
	Timestamp        int64   `json:"timestamp"`
}
