// Package server exposes the read-only HTTP surface: health and metrics
// endpoints, the snapshot API, and the WebSocket upgrade for live frames.
package server

import (
	"context"
	"fmt"

	"github.com/jishubasak/tweetpulse/internal/config"
	"github.com/jishubasak/tweetpulse/internal/domain"
	"github.com/jishubasak/tweetpulse/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// FrameSource provides the most recently completed tick frame, nil before
// the first tick. Frames are immutable.
type FrameSource interface {
	Frame() *domain.TrendFrame
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	frames FrameSource
	hub    *websocket.Hub
}

// NewServer builds the echo server and registers all routes.
func NewServer(cfg *config.Config, frames FrameSource, hub *websocket.Hub) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:   e,
		config: cfg,
		frames: frames,
		hub:    hub,
	}
	srv.registerRoutes()

	return srv
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
