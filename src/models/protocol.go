package models

import "encoding/json"

// -----------------------------------------------------------------------------
// Wire protocol (one JSON object per line, both directions)
// -----------------------------------------------------------------------------

// Request types accepted on the TCP socket.
const (
	ReqFeedData = "FEED_DATA"
	ReqPredict  = "PREDICT"
	ReqTrain    = "TRAIN"
)

// MRequest is one framed client message. Data items stay raw because feed
// batches may mix [timestamp, price] arrays with string-encoded arrays; the
// orchestrator filters malformed items without failing the batch.
type MRequest struct {
	Type      string            `json:"type"`
	Data      []json.RawMessage `json:"data,omitempty"`
	Price     *float64          `json:"price,omitempty"`
	Timestamp *float64          `json:"timestamp,omitempty"`
}

// -----------------------------------------------------------------------------
// Responses
// -----------------------------------------------------------------------------

// MFeedResponse acknowledges a committed FEED_DATA batch.
type MFeedResponse struct {
	Status string `json:"status"` // "saved"
	Count  int    `json:"count"`
}

// MErrorResponse is the uniform failure shape for every request kind.
type MErrorResponse struct {
	Status string `json:"status"` // "error"
	Msg    string `json:"msg"`
}

// MWaitResponse signals that the live window is still filling. Msg is
// "<have>/<want>".
type MWaitResponse struct {
	Type string `json:"type"` // "WAIT"
	Msg  string `json:"msg"`
}

// MPathResponse carries a predicted price path as offsets from Price.
type MPathResponse struct {
	Type  string    `json:"type"` // "PATH"
	Price float64   `json:"price"`
	Path  []float64 `json:"path"`
}

// MTrainResponse acknowledges a completed training run.
type MTrainResponse struct {
	Status  string  `json:"status"` // "ok"
	ValLoss float64 `json:"val_loss"`
}
