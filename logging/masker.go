// Package logging contains slog plumbing shared by the bot components
package logging

import (
	"context"
	"log/slog"
	"regexp"
)

// Bot tokens look like 123456789:AAH... and also appear inside Bot API URLs as bot123456789:AAH...
var botTokenRegex = regexp.MustCompile(`\b(bot)?\d{6,}:[A-Za-z0-9_-]{30,}`)

const tokenMask = "***:***masked-token***"

func maskTokens(text string) string {
	return botTokenRegex.ReplaceAllString(text, tokenMask)
}

// TokenMaskerHandler wraps a slog.Handler and hides bot tokens in messages and attributes
type TokenMaskerHandler struct {
	handler slog.Handler
}

func NewTokenMaskerHandler(handler slog.Handler) *TokenMaskerHandler {
	return &TokenMaskerHandler{handler: handler}
}

func (h *TokenMaskerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *TokenMaskerHandler) Handle(ctx context.Context, record slog.Record) error {
	// The original record may be reused by slog, so masked values go into a new one
	r := slog.NewRecord(record.Time, record.Level, maskTokens(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(maskAttr(a))
		return true
	})

	return h.handler.Handle(ctx, r)
}

func (h *TokenMaskerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = maskAttr(a)
	}
	return &TokenMaskerHandler{handler: h.handler.WithAttrs(masked)}
}

func (h *TokenMaskerHandler) WithGroup(name string) slog.Handler {
	return &TokenMaskerHandler{handler: h.handler.WithGroup(name)}
}

func maskAttr(a slog.Attr) slog.Attr {
	return slog.Attr{Key: a.Key, Value: maskValue(a.Value)}
}

func maskValue(v slog.Value) slog.Value {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return slog.StringValue(maskTokens(v.String()))
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.StringValue(maskTokens(err.Error()))
		}
		return v
	case slog.KindGroup:
		group := v.Group()
		masked := make([]slog.Attr, len(group))
		for i, a := range group {
			masked[i] = maskAttr(a)
		}
		return slog.GroupValue(masked...)
	default:
		return v
	}
}

// New wraps handler with token masking
func New(handler slog.Handler) *slog.Logger {
	return slog.New(NewTokenMaskerHandler(handler))
}
