package models

// MTick represents one stored market observation.
// Timestamp is unix seconds (fractional allowed); ticks are immutable once
// stored and duplicates are permitted.
type MTick struct {
	Timestamp float64 `json:"timestamp"`
	Price     float64 `json:"price"`
}
