// Package slogbridge adapts the standard library's log/slog to the
// asynchronous pipeline, so code written against slog can feed a
// hierarchy logger without changes.
package slogbridge

import (
	"context"
	"log/slog"

	"github.com/Indosaram/logxide/core"
	"github.com/Indosaram/logxide/logger"
)

// Handler implements slog.Handler on top of a pipeline logger.
// Attributes become record extra fields; groups flatten into
// dot-prefixed keys.
//
// Attributes from WithAttrs are qualified with the group open at the
// time of the call, so a group opened later never renames them.
type Handler struct {
	logger *logger.Logger
	fields map[string]any
	group  string
}

// New wraps a pipeline logger as a slog.Handler.
func New(l *logger.Logger) *Handler {
	return &Handler{logger: l}
}

// Enabled defers to the logger's effective level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.IsEnabledFor(toCoreLevel(level))
}

// Handle converts the slog record and enqueues it. The slog message
// is passed through verbatim; attrs land in the extra map.
func (h *Handler) Handle(_ context.Context, rec slog.Record) error {
	extra := make(map[string]any, len(h.fields)+rec.NumAttrs())
	for k, v := range h.fields {
		extra[k] = v
	}
	rec.Attrs(func(a slog.Attr) bool {
		addAttr(extra, h.group, a)
		return true
	})
	h.logger.LogExtra(toCoreLevel(rec.Level), extra, rec.Message)
	return nil
}

// WithAttrs returns a handler that includes the given attributes on
// every record, qualified with the group currently in effect.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	fields := make(map[string]any, len(h.fields)+len(attrs))
	for k, v := range h.fields {
		fields[k] = v
	}
	for _, a := range attrs {
		addAttr(fields, h.group, a)
	}
	return &Handler{logger: h.logger, fields: fields, group: h.group}
}

// WithGroup returns a handler that prefixes subsequent attribute
// keys with the group name. Fields already accumulated keep the
// qualification they were added with.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &Handler{logger: h.logger, fields: h.fields, group: group}
}

// toCoreLevel maps slog's small-integer scale onto the 0-50 scale.
// Levels above slog.LevelError map to CRITICAL.
func toCoreLevel(level slog.Level) core.Level {
	switch {
	case level > slog.LevelError:
		return core.CRITICAL
	case level >= slog.LevelError:
		return core.ERROR
	case level >= slog.LevelWarn:
		return core.WARNING
	case level >= slog.LevelInfo:
		return core.INFO
	default:
		return core.DEBUG
	}
}

// addAttr flattens one attribute into the extra map, recursing into
// groups with a dotted prefix.
func addAttr(extra map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		// A group with an empty key inlines its members.
		inner := prefix
		if a.Key != "" {
			inner = a.Key
			if prefix != "" {
				inner = prefix + "." + a.Key
			}
		}
		for _, m := range a.Value.Group() {
			addAttr(extra, inner, m)
		}
		return
	}
	if a.Key == "" {
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + a.Key
	}
	extra[key] = a.Value.Any()
}
