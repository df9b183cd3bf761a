package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// handleLiveness reports that the process is up.
func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadiness reports ready once the first aggregation tick has
// completed, so load balancers don't route dashboards to an instance that
// cannot serve a frame yet.
func (s *Server) handleReadiness(c echo.Context) error {
	if s.frames.Frame() == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "waiting for first tick"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
