// Package correlation ties log lines to the request or connection that
// produced them. An ID enters through the X-Request-ID header or is minted
// at the edge, travels in the context, and is stamped onto every log record
// by the slog handler wrapper.
package correlation

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type ctxKey struct{}

// attrKey matches the X-Request-ID header the server middleware speaks.
const attrKey = "request_id"

// NewID mints a fresh request ID.
func NewID() string {
	return uuid.NewString()
}

// WithID stores the request ID in the context.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request ID carried by ctx, if any.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// Handler decorates log records with the request ID from the context.
// Records logged without a context, or with one that carries no ID, pass
// through untouched.
type Handler struct {
	next slog.Handler
}

// NewHandler wraps next with request ID stamping.
func NewHandler(next slog.Handler) *Handler {
	return &Handler{next: next}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, rec slog.Record) error {
	if id, ok := FromContext(ctx); ok {
		rec.AddAttrs(slog.String(attrKey, id))
	}
	return h.next.Handle(ctx, rec)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{next: h.next.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name)}
}
