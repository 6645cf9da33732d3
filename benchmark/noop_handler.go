package benchmark

import (
	"github.com/Indosaram/logxide/core"
	"github.com/Indosaram/logxide/handler"
)

type noopHandler struct{}

func newNoopHandler() handler.Handler {
	return &noopHandler{}
}

func (h *noopHandler) Emit(r *core.Record) error {
	_ = len(r.Message())
	return nil
}

func (h *noopHandler) Flush() error { return nil }

func (h *noopHandler) Close() error { return nil }
