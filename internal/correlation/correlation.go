// Package correlation tags each unit of work — an aggregation tick, a feed
// connection — with a short random ID carried through context, so every log
// line belonging to one tick or one connection can be grepped together.
package correlation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
)

type idKey struct{}

// idBytes keeps IDs readable in log output. Eight hex characters are plenty
// for the tick and connection volume a single instance produces.
const idBytes = 4

// NewID returns a fresh random correlation ID.
func NewID() string {
	var b [idBytes]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// WithID attaches id to ctx.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// ID reads the correlation ID from ctx; ok is false when none is attached.
func ID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(idKey{}).(string)
	return id, ok && id != ""
}

// Handler decorates a slog.Handler so records logged with an ID-carrying
// context get a correlation_id attribute, without call sites threading the
// ID through themselves.
type Handler struct {
	inner slog.Handler
}

// NewHandler wraps inner with correlation-ID injection.
func NewHandler(inner slog.Handler) *Handler {
	return &Handler{inner: inner}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if id, ok := ID(ctx); ok {
		record.AddAttrs(slog.String("correlation_id", id))
	}
	if err := h.inner.Handle(ctx, record); err != nil {
		return fmt.Errorf("handle log record: %w", err)
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name)}
}
