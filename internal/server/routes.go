package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Read-only snapshot API
	s.echo.GET("/api/trends", s.handleTrends)
	s.echo.GET("/api/comparison", s.handleComparison)

	// Live frame push
	s.echo.GET("/ws/trends", s.handleWebSocket)
}
