package interfaces

import "trade-brain/src/models"

// -----------------------------------------------------------------------------
// IStatePublisher receives state snapshots for external observers (Server/Push).
// -----------------------------------------------------------------------------

type IStatePublisher interface {

	// -----------------------------------------------------------------------------

	// Publish pushes a new state snapshot to connected observers.
	// Implementations must not block the caller.
	Publish(state models.MMonitorState)
}
