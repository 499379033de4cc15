// Package server exposes the quote, opportunity, simulation and portfolio
// services over a JSON REST API.
package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/bobmcallan/milhas/internal/app"
	"github.com/bobmcallan/milhas/internal/common"
)

// Timeouts for the listener. Writes get the longest budget because advisory
// requests wait on the Gemini call.
const (
	readTimeout  = 30 * time.Second
	writeTimeout = 120 * time.Second
	idleTimeout  = 60 * time.Second
)

// Server serves the milhas API for one App.
type Server struct {
	app    *app.App
	server *http.Server
	logger *common.Logger
}

// NewServer registers the routes and wraps them in the middleware stack.
// Nothing listens until Start is called.
func NewServer(a *app.App) *Server {
	s := &Server{
		app:    a,
		logger: a.Logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.server = &http.Server{
		Addr:         net.JoinHostPort(a.Config.Server.Host, strconv.Itoa(a.Config.Server.Port)),
		Handler:      applyMiddleware(mux, a.Logger, a.Config),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return s
}

// Handler is the fully wrapped handler, used by tests with httptest.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Addr() string {
	return s.server.Addr
}

// Start blocks serving requests. It returns http.ErrServerClosed after
// Shutdown.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Milhas API listening")
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
