// Package interfaces defines service contracts for Milhas
package interfaces

import (
	"context"

	"github.com/bobmcallan/milhas/internal/models"
)

// OperationStore persists saved operations
type OperationStore interface {
	// Initialize creates the operations table if it does not exist
	Initialize(ctx context.Context) error

	// Migrate brings an older table up to the current schema. Idempotent.
	Migrate(ctx context.Context) error

	// Save appends an operation and returns it with its id and timestamp
	Save(ctx context.Context, op models.Operation) (*models.Operation, error)

	// List returns the user's operations, newest first. Read failures
	// produce an empty list.
	List(ctx context.Context, user string) []models.Operation

	// Delete removes the operation with the given id, if present
	Delete(ctx context.Context, id int64) error

	// DeleteForUser removes the operation with the given id when it is owned
	// by user. Absent or foreign ids are a no-op.
	DeleteForUser(ctx context.Context, user string, id int64) error

	// LatestID returns the id of the user's most recent operation
	LatestID(ctx context.Context, user string) (int64, bool, error)

	// Summary aggregates the user's operations
	Summary(ctx context.Context, user string) (*models.PortfolioSummary, error)
}
