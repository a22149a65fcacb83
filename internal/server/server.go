package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal/config"
	"github.com/raminperspolisi/MafiaVERSE-backend/internal/game"
)

type Server struct {
	cfg      config.Config
	log      zerolog.Logger
	registry *game.Registry
	hub      *Hub
}

func New(cfg config.Config, log zerolog.Logger, registry *game.Registry, hub *Hub) *Server {
	return &Server{
		cfg:      cfg,
		log:      log.With().Str("component", "server").Logger(),
		registry: registry,
		hub:      hub,
	}
}

// HTTPServer wraps the route handler in an http.Server with sane timeouts.
// Websocket connections outlive the idle timeout; the upgrade hijacks the
// connection out of the server's bookkeeping.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
