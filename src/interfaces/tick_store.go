package interfaces

import "trade-brain/src/models"

// -----------------------------------------------------------------------------
// ITickStore defines the contract for the durable tick log.
// -----------------------------------------------------------------------------

type ITickStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveTicksBulk inserts a batch of ticks in one transaction (all or
	// nothing) and returns the number inserted. Callers pass already
	// validated ticks; a storage fault rolls the whole batch back.
	SaveTicksBulk(ticks []models.MTick) (int, error)

	// -----------------------------------------------------------------------------

	// FetchRecentPrices returns the prices of the limit most-recent ticks
	// by timestamp, in ascending chronological order.
	FetchRecentPrices(limit int) ([]float64, error)

	// -----------------------------------------------------------------------------

	// FetchRecentTicks is FetchRecentPrices with timestamps included, for
	// the time-features model variant.
	FetchRecentTicks(limit int) ([]models.MTick, error)

	// -----------------------------------------------------------------------------

	// CountTicks returns the total number of stored ticks.
	CountTicks() (int64, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
