package server

import (
	"log/slog"
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/jishubasak/tweetpulse/internal/domain"
	"github.com/labstack/echo/v4"
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is same-origin in production; origin policy sits at the
	// reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// emptyFrame is what consumers get before the first tick completes: a
// well-formed frame with no data, never a partial one.
func emptyFrame() *domain.TrendFrame {
	return &domain.TrendFrame{
		Trend:      []domain.KeywordCount{},
		Comparison: []domain.KeywordCount{},
		Series:     []domain.KeywordSeries{},
		Axis:       []time.Time{},
	}
}

// handleTrends returns the full current frame: top-N tables, keyword
// series, and the axis window.
func (s *Server) handleTrends(c echo.Context) error {
	frame := s.frames.Frame()
	if frame == nil {
		frame = emptyFrame()
	}
	return c.JSON(http.StatusOK, frame)
}

// handleComparison returns only the wide top-N frequency table.
func (s *Server) handleComparison(c echo.Context) error {
	frame := s.frames.Frame()
	if frame == nil {
		frame = emptyFrame()
	}
	return c.JSON(http.StatusOK, map[string]any{
		"at":         frame.At,
		"comparison": frame.Comparison,
	})
}

// handleWebSocket upgrades the connection and hands it to the hub. The read
// loop exists only to notice the client going away.
func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	if err := s.hub.Register(conn); err != nil {
		slog.Warn("WebSocket registration rejected", "error", err)
		return nil
	}

	go func() {
		defer s.hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return nil
}
