package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type Options struct {
	Level  string
	Format string
}

// ParseLevel maps a config level name onto slog. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func HandlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{Level: level}
}

// New builds a logger writing text or JSON to w, with [component] message
// prefixes.
func New(opts Options, w io.Writer) *slog.Logger {
	handlerOpts := HandlerOptions(ParseLevel(opts.Level))
	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(&ComponentHandler{Handler: handler})
}

// Component returns a child logger whose messages are prefixed with name.
func Component(logger *slog.Logger, name string) *slog.Logger {
	return logger.With("component", name)
}

// ComponentHandler moves a "component" attribute into a [component] message
// prefix.
type ComponentHandler struct {
	slog.Handler
	component string
}

func (h *ComponentHandler) Handle(ctx context.Context, r slog.Record) error {
	component := h.component
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			component = a.Value.String()
			return false
		}
		return true
	})
	if component == "" {
		return h.Handler.Handle(ctx, r)
	}

	out := slog.NewRecord(r.Time, r.Level, fmt.Sprintf("[%s] %s", component, r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		if a.Key != "component" {
			out.AddAttrs(a)
		}
		return true
	})
	return h.Handler.Handle(ctx, out)
}

func (h *ComponentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	component := h.component
	kept := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Key == "component" {
			component = a.Value.String()
			continue
		}
		kept = append(kept, a)
	}
	return &ComponentHandler{Handler: h.Handler.WithAttrs(kept), component: component}
}

func (h *ComponentHandler) WithGroup(name string) slog.Handler {
	return &ComponentHandler{Handler: h.Handler.WithGroup(name), component: h.component}
}
