package logger

import (
	"errors"
	"io"

	"github.com/Indosaram/logxide/core"
	"github.com/Indosaram/logxide/formatter"
	"github.com/Indosaram/logxide/handler"
)

// ErrStreamAndFilename is returned by BasicConfig when both output
// destinations are set.
var ErrStreamAndFilename = errors.New("basic config: Stream and Filename are mutually exclusive")

// BasicConfig configures the root logger in one call.
type BasicConfig struct {
	// Level sets the root level when non-zero.
	Level core.Level
	// Format is the template for the root handler
	// (default: formatter.DefaultFormat).
	Format string
	// DateFmt overrides the asctime layout.
	DateFmt string
	// Style selects the template placeholder style.
	Style formatter.Style
	// Stream directs output to a writer. Mutually exclusive with
	// Filename. When neither is set, stderr is used.
	Stream io.Writer
	// Filename directs output to an appending file handler.
	Filename string
	// Handlers attaches caller-built handlers instead of one
	// derived from Stream or Filename.
	Handlers []handler.Handler
	// Force flushes, closes, and removes existing root handlers
	// first. Without it, a root that already has handlers is left
	// alone.
	Force bool
}

// Configure applies a BasicConfig to the registry's root logger.
func (r *Registry) Configure(cfg BasicConfig) error {
	if cfg.Stream != nil && cfg.Filename != "" {
		return ErrStreamAndFilename
	}

	root := r.root
	if cfg.Force {
		r.core.Flush()
		for _, h := range root.Handlers() {
			root.RemoveHandler(h)
			_ = h.Close()
		}
	} else if len(root.Handlers()) > 0 {
		if cfg.Level != 0 {
			return root.SetLevel(cfg.Level)
		}
		return nil
	}

	handlers := cfg.Handlers
	if len(handlers) == 0 {
		var h handler.Handler
		switch {
		case cfg.Filename != "":
			fh, err := handler.NewFileHandler(cfg.Filename)
			if err != nil {
				return err
			}
			h = fh
		case cfg.Stream != nil:
			h = handler.NewStreamHandler(cfg.Stream)
		default:
			h = handler.Stderr()
		}
		handlers = []handler.Handler{h}
	}

	format := cfg.Format
	if format == "" {
		format = formatter.DefaultFormat
	}
	f := formatter.New(format, cfg.DateFmt, cfg.Style)

	type formattable interface{ SetFormatter(formatter.Formatter) }
	for _, h := range handlers {
		if fh, ok := h.(formattable); ok {
			fh.SetFormatter(f)
		}
		root.AddHandler(h)
	}

	if cfg.Level != 0 {
		return root.SetLevel(cfg.Level)
	}
	return nil
}
