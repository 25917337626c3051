package interfaces

import (
	"context"

	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IDataExchanger pushes dashboard snapshots to connected views.
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// Broadcast queues state for every connected view.
	Broadcast(state *models.MDashboardState)

	// -----------------------------------------------------------------------------

	// Start serves until Stop is called.
	Start() error

	// -----------------------------------------------------------------------------

	// Stop shuts the server down gracefully.
	Stop(ctx context.Context) error
}
