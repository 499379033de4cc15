package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/milhas/internal/common"
	"github.com/bobmcallan/milhas/internal/models"
	"github.com/bobmcallan/milhas/internal/services/advisory"
	"github.com/bobmcallan/milhas/internal/services/calculator"
	"github.com/bobmcallan/milhas/internal/services/portfolio"
)

// scenarioRequest is the JSON body for simulate, record and advisory.
// A missing sale_price is filled with the suggested market price.
type scenarioRequest struct {
	Program      string           `json:"program"`
	Investment   decimal.Decimal  `json:"investment"`
	BasePoints   int64            `json:"base_points"`
	BonusPercent decimal.Decimal  `json:"bonus_percent"`
	SalePrice    *decimal.Decimal `json:"sale_price,omitempty"`
}

type advisoryRequest struct {
	scenarioRequest
	IncludePortfolio bool `json:"include_portfolio"`
}

// toScenario resolves the request into a scenario, pricing it from the
// market when no sale price was given.
func (s *Server) toScenario(ctx context.Context, req scenarioRequest, quotes models.Quotes) models.TradeScenario {
	sc := models.TradeScenario{
		Program:      req.Program,
		Investment:   req.Investment,
		BasePoints:   req.BasePoints,
		BonusPercent: req.BonusPercent,
	}
	if req.SalePrice != nil {
		sc.SalePrice = *req.SalePrice
	} else {
		if quotes == nil {
			quotes = s.app.QuoteService.GetQuotes(ctx)
		}
		sc.SalePrice = calculator.SuggestSalePrice(quotes, req.Program)
	}
	return sc
}

// handlePrograms handles GET /api/programs.
func (s *Server) handlePrograms(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"programs":      models.Programs,
		"bonus_presets": models.BonusPresets,
	})
}

// handleQuotes handles GET /api/quotes.
func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := s.app.QuoteService.GetQuotes(r.Context())
	WriteJSON(w, http.StatusOK, models.QuoteSnapshot{Quotes: q, Items: q.List()})
}

// handleOpportunities handles GET /api/opportunities.
func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ops := s.app.OpportunityService.GetOpportunities(r.Context())
	WriteJSON(w, http.StatusOK, map[string]interface{}{"opportunities": ops})
}

// handleSimulate handles POST /api/simulate.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req scenarioRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	sim, err := s.app.PortfolioService.Simulate(r.Context(), s.toScenario(r.Context(), req, nil))
	if err != nil {
		s.writeScenarioError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sim)
}

// handleAdvisory handles POST /api/advisory.
func (s *Server) handleAdvisory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if !s.app.AdvisoryService.Available() {
		WriteErrorWithCode(w, http.StatusServiceUnavailable, advisory.ErrUnavailable.Error(), "advisory_unavailable")
		return
	}

	var req advisoryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	quotes := s.app.QuoteService.GetQuotes(ctx)
	sc := s.toScenario(ctx, req.scenarioRequest, quotes)
	if err := portfolio.ValidateScenario(sc); err != nil {
		s.writeScenarioError(w, err)
		return
	}

	advReq := models.AdvisoryRequest{
		Scenario: sc,
		Metrics:  calculator.Compute(sc),
		Market:   quotes,
	}
	if req.IncludePortfolio {
		user := common.ResolveUserID(ctx)
		if sum, err := s.app.PortfolioService.Summary(ctx, user); err == nil {
			advReq.Portfolio = sum
		} else {
			s.logger.Warn().Err(err).Str("user", user).Msg("Portfolio summary unavailable for advisory")
		}
	}

	resp, err := s.app.AdvisoryService.Advise(ctx, advReq)
	switch {
	case errors.Is(err, advisory.ErrUnavailable):
		WriteErrorWithCode(w, http.StatusServiceUnavailable, err.Error(), "advisory_unavailable")
	case err != nil:
		WriteErrorWithCode(w, http.StatusBadGateway, "Advisory service failed: "+err.Error(), "advisory_failed")
	default:
		WriteJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) writeScenarioError(w http.ResponseWriter, err error) {
	if errors.Is(err, portfolio.ErrInvalidScenario) {
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "invalid_scenario")
		return
	}
	s.logger.Error().Err(err).Msg("Scenario request failed")
	WriteError(w, http.StatusInternalServerError, err.Error())
}
