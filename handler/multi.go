package handler

import (
	"go.uber.org/multierr"

	"github.com/Indosaram/logxide/core"
)

// MultiHandler fans a single record out to multiple child handlers.
// Each child applies its own level threshold and filters.
type MultiHandler struct {
	Base
	handlers []Handler
}

// NewMultiHandler creates a fan-out over the given handlers.
func NewMultiHandler(handlers ...Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Emit forwards the record to every child. Child failures are
// collected; one failing child does not stop the others.
func (h *MultiHandler) Emit(r *core.Record) error {
	if h.State() != StateOpen {
		return h.rejectClosed()
	}
	if !h.Enabled(r) {
		return nil
	}
	var err error
	for _, child := range h.handlers {
		err = multierr.Append(err, child.Emit(r))
	}
	return err
}

// Flush flushes every child.
func (h *MultiHandler) Flush() error {
	var err error
	for _, child := range h.handlers {
		err = multierr.Append(err, child.Flush())
	}
	return err
}

// Close closes every child, collecting their errors.
func (h *MultiHandler) Close() error {
	if !h.beginClose() {
		return nil
	}
	var err error
	for _, child := range h.handlers {
		err = multierr.Append(err, child.Close())
	}
	h.finishClose()
	return err
}
