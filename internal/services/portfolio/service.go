// Package portfolio records simulated trades and reports on them
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bobmcallan/milhas/internal/common"
	"github.com/bobmcallan/milhas/internal/interfaces"
	"github.com/bobmcallan/milhas/internal/models"
	"github.com/bobmcallan/milhas/internal/services/calculator"
)

var (
	// ErrInvalidScenario is returned for scenarios that cannot be simulated.
	ErrInvalidScenario = errors.New("invalid scenario")
	// ErrNotEnoughOperations is returned when a chart needs more history.
	ErrNotEnoughOperations = errors.New("not enough operations")
)

// minChartOperations is the smallest history that can be drawn as a line.
const minChartOperations = 2

// Service implements PortfolioService
type Service struct {
	store  interfaces.OperationStore
	quotes interfaces.QuoteService
	logger *common.Logger
}

// NewService creates a new portfolio service.
// quotes may be nil; the suggested sale price then falls back to the default.
func NewService(store interfaces.OperationStore, quotes interfaces.QuoteService, logger *common.Logger) *Service {
	return &Service{
		store:  store,
		quotes: quotes,
		logger: logger,
	}
}

// ValidateScenario checks a scenario against the supported programs and
// rejects negative amounts. Zero amounts are valid and produce the
// calculator's sentinel metrics.
func ValidateScenario(s models.TradeScenario) error {
	if strings.TrimSpace(s.Program) == "" {
		return fmt.Errorf("%w: program is required", ErrInvalidScenario)
	}
	if !slices.Contains(models.Programs, s.Program) {
		return fmt.Errorf("%w: unknown program %q", ErrInvalidScenario, s.Program)
	}
	if s.Investment.IsNegative() {
		return fmt.Errorf("%w: investment must not be negative", ErrInvalidScenario)
	}
	if s.BasePoints < 0 {
		return fmt.Errorf("%w: base_points must not be negative", ErrInvalidScenario)
	}
	if s.BonusPercent.IsNegative() {
		return fmt.Errorf("%w: bonus_percent must not be negative", ErrInvalidScenario)
	}
	if s.SalePrice.IsNegative() {
		return fmt.Errorf("%w: sale_price must not be negative", ErrInvalidScenario)
	}
	return nil
}

func (s *Service) marketQuotes(ctx context.Context) models.Quotes {
	if s.quotes == nil {
		return nil
	}
	return s.quotes.GetQuotes(ctx)
}

// Simulate computes metrics for a scenario without saving it.
func (s *Service) Simulate(ctx context.Context, scenario models.TradeScenario) (*models.Simulation, error) {
	if err := ValidateScenario(scenario); err != nil {
		return nil, err
	}

	suggested := calculator.SuggestSalePrice(s.marketQuotes(ctx), scenario.Program)

	return &models.Simulation{
		Scenario:           scenario,
		Metrics:            calculator.Compute(scenario),
		SuggestedSalePrice: suggested.InexactFloat64(),
	}, nil
}

// Record computes a scenario and saves it as an operation. The stored points
// are the total after the transfer bonus.
func (s *Service) Record(ctx context.Context, user string, scenario models.TradeScenario) (*models.Operation, error) {
	if err := ValidateScenario(scenario); err != nil {
		return nil, err
	}

	m := calculator.Compute(scenario)
	op := models.Operation{
		User:       user,
		Program:    scenario.Program,
		Investment: scenario.Investment.InexactFloat64(),
		Points:     m.TotalPoints.Round(0).IntPart(),
		SalePrice:  scenario.SalePrice.InexactFloat64(),
		Profit:     m.Profit.Round(2).InexactFloat64(),
		ROI:        m.ROI.Round(4).InexactFloat64(),
	}

	saved, err := s.store.Save(ctx, op)
	if err != nil {
		return nil, fmt.Errorf("failed to save operation: %w", err)
	}

	s.logger.Info().Int64("id", saved.ID).Str("user", saved.User).Str("program", saved.Program).
		Float64("profit", saved.Profit).Msg("Operation recorded")
	return saved, nil
}

// ListOperations returns the user's operations, newest first.
func (s *Service) ListOperations(ctx context.Context, user string) []models.Operation {
	return s.store.List(ctx, user)
}

// DeleteOperation removes one of the user's operations by id.
func (s *Service) DeleteOperation(ctx context.Context, user string, id int64) error {
	if err := s.store.DeleteForUser(ctx, user, id); err != nil {
		return fmt.Errorf("failed to delete operation: %w", err)
	}
	return nil
}

// DeleteLatest removes the user's newest operation. It reports false when
// the user has none.
func (s *Service) DeleteLatest(ctx context.Context, user string) (bool, error) {
	id, ok, err := s.store.LatestID(ctx, user)
	if err != nil {
		return false, fmt.Errorf("failed to find latest operation: %w", err)
	}
	if !ok {
		return false, nil
	}
	if err := s.DeleteOperation(ctx, user, id); err != nil {
		return false, err
	}
	s.logger.Info().Int64("id", id).Str("user", user).Msg("Latest operation removed")
	return true, nil
}

// Summary aggregates the user's operations.
func (s *Service) Summary(ctx context.Context, user string) (*models.PortfolioSummary, error) {
	sum, err := s.store.Summary(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise portfolio: %w", err)
	}
	return sum, nil
}

// RenderProfitChart draws the user's cumulative projected profit in the
// order the operations were recorded.
func (s *Service) RenderProfitChart(ctx context.Context, user string) ([]byte, error) {
	ops := s.store.List(ctx, user)
	if len(ops) < minChartOperations {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughOperations, len(ops), minChartOperations)
	}
	slices.Reverse(ops)
	return RenderProfitChart(ops)
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
