package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/Esysc/ansible-ws-logging/internal/app"
)

// Server manages the HTTP server and routes
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server
}

// New creates a new HTTP server with the given app
func New(application *app.App) *Server {
	s := &Server{
		app: application,
	}

	s.router = s.setupRoutes()

	s.server = &http.Server{
		Handler:     s.withConditionalMiddleware(s.router),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		// No WriteTimeout: WebSocket connections are long-lived.
	}

	return s
}

// Start binds and serves. When the configured port is already in use
// the next ports are probed, up to max_port_tries, matching the
// original deployment behavior behind Ansible playbooks.
func (s *Server) Start() error {
	host := s.app.Config.Server.Host
	port := s.app.Config.Server.Port
	maxTries := s.app.Config.Server.MaxPortTries

	for attempt := 1; attempt <= maxTries; attempt++ {
		addr := fmt.Sprintf("%s:%d", host, port)

		listener, err := net.Listen("tcp", addr)
		if err != nil {
			if errors.Is(err, syscall.EADDRINUSE) {
				s.app.Logger.Warn().
					Str("address", addr).
					Int("attempt", attempt).
					Int("max_tries", maxTries).
					Msg("Port in use, trying next port")
				port++
				continue
			}
			return fmt.Errorf("failed to bind %s: %w", addr, err)
		}

		s.server.Addr = addr
		s.app.Logger.Info().
			Str("address", addr).
			Str("url", fmt.Sprintf("http://%s:%d", host, port)).
			Msg("HTTP server starting")

		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}

	return fmt.Errorf("failed to bind to any port in range %d-%d", s.app.Config.Server.Port, port-1)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
