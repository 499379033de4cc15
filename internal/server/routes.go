package server

import (
	"net/http"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Market
	mux.HandleFunc("/api/programs", s.handlePrograms)
	mux.HandleFunc("/api/quotes", s.handleQuotes)
	mux.HandleFunc("/api/opportunities", s.handleOpportunities)

	// Simulation
	mux.HandleFunc("/api/simulate", s.handleSimulate)
	mux.HandleFunc("/api/advisory", s.handleAdvisory)

	// Portfolio
	mux.HandleFunc("/api/portfolio/", s.routePortfolio)
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)
}

// routePortfolio dispatches /api/portfolio/{summary|chart|latest|id}.
// Deeper paths are not routes.
func (s *Server) routePortfolio(w http.ResponseWriter, r *http.Request) {
	seg, ok := PathSegment(r, "/api/portfolio/")
	if !ok {
		WriteError(w, http.StatusNotFound, "Not found: "+r.URL.Path)
		return
	}
	switch seg {
	case "":
		s.handlePortfolio(w, r)
	case "summary":
		s.handlePortfolioSummary(w, r)
	case "chart":
		s.handlePortfolioChart(w, r)
	case "latest":
		s.handlePortfolioDeleteLatest(w, r)
	default:
		s.handlePortfolioDelete(w, r, seg)
	}
}
