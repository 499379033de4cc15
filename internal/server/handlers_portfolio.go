package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bobmcallan/milhas/internal/common"
	"github.com/bobmcallan/milhas/internal/services/portfolio"
)

// handlePortfolio handles GET and POST /api/portfolio.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	ctx := r.Context()
	user := common.ResolveUserID(ctx)

	if r.Method == http.MethodGet {
		ops := s.app.PortfolioService.ListOperations(ctx, user)
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"user":       user,
			"operations": ops,
		})
		return
	}

	var req scenarioRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	op, err := s.app.PortfolioService.Record(ctx, user, s.toScenario(ctx, req, nil))
	if err != nil {
		s.writeScenarioError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, op)
}

// handlePortfolioDelete handles DELETE /api/portfolio/{id}.
func (s *Server) handlePortfolioDelete(w http.ResponseWriter, r *http.Request, rawID string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "Invalid operation id: "+rawID)
		return
	}

	user := common.ResolveUserID(r.Context())
	if err := s.app.PortfolioService.DeleteOperation(r.Context(), user, id); err != nil {
		s.logger.Error().Err(err).Int64("id", id).Str("user", user).Msg("Delete operation failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePortfolioDeleteLatest handles DELETE /api/portfolio/latest.
func (s *Server) handlePortfolioDeleteLatest(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	user := common.ResolveUserID(r.Context())
	if _, err := s.app.PortfolioService.DeleteLatest(r.Context(), user); err != nil {
		s.logger.Error().Err(err).Str("user", user).Msg("Delete latest operation failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePortfolioSummary handles GET /api/portfolio/summary.
func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	sum, err := s.app.PortfolioService.Summary(r.Context(), common.ResolveUserID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, sum)
}

// handlePortfolioChart handles GET /api/portfolio/chart.
func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.app.PortfolioService.RenderProfitChart(r.Context(), common.ResolveUserID(r.Context()))
	if errors.Is(err, portfolio.ErrNotEnoughOperations) {
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "not_enough_operations")
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
