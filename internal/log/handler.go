package log

import (
	"context"
	"log/slog"

	"github.com/meowfish/shop-api/internal/auth"
	"github.com/meowfish/shop-api/internal/requestid"
)

// ContextHandler wraps an slog.Handler and enriches every record with
// request-scoped values: the request ID, and the authenticated employee when
// the request carries a valid token.
type ContextHandler struct {
	inner slog.Handler
}

func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := requestid.FromContext(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	if email := auth.SubjectFromContext(ctx); email != "" {
		r.AddAttrs(slog.String("employee", email))
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}
