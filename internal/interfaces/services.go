// Package interfaces defines service contracts for Milhas
package interfaces

import (
	"context"

	"github.com/bobmcallan/milhas/internal/models"
)

// QuoteService provides market quotes per loyalty program
type QuoteService interface {
	// GetQuotes returns the current quote table. It never fails: on source
	// failure the previous or fallback values are returned.
	GetQuotes(ctx context.Context) models.Quotes
}

// OpportunityService provides promotional headlines
type OpportunityService interface {
	// GetOpportunities returns at most five deduplicated headlines, or an
	// empty list when the source is unavailable.
	GetOpportunities(ctx context.Context) []models.Opportunity
}

// PortfolioService manages saved operations for a user
type PortfolioService interface {
	// Simulate computes metrics for a scenario without saving it
	Simulate(ctx context.Context, scenario models.TradeScenario) (*models.Simulation, error)

	// Record computes and saves a scenario as an operation for the user
	Record(ctx context.Context, user string, scenario models.TradeScenario) (*models.Operation, error)

	// ListOperations returns the user's operations, newest first
	ListOperations(ctx context.Context, user string) []models.Operation

	// DeleteOperation removes one of the user's operations by id. Absent ids
	// and ids owned by another user are a no-op.
	DeleteOperation(ctx context.Context, user string, id int64) error

	// DeleteLatest removes the user's most recent operation
	DeleteLatest(ctx context.Context, user string) (bool, error)

	// Summary aggregates the user's operations
	Summary(ctx context.Context, user string) (*models.PortfolioSummary, error)

	// RenderProfitChart draws the user's cumulative profit as a PNG
	RenderProfitChart(ctx context.Context, user string) ([]byte, error)
}

// AdvisoryService produces narrative guidance for a scenario
type AdvisoryService interface {
	// Advise builds a prompt from the request and returns the generated text
	Advise(ctx context.Context, req models.AdvisoryRequest) (*models.AdvisoryResponse, error)

	// Available reports whether a generation backend is configured
	Available() bool
}
