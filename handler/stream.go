package handler

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/Indosaram/logxide/core"
)

// StreamHandler writes formatted records to an io.Writer, one line
// per record. Writes are synchronous on the consumer goroutine and
// serialized by a mutex so the handler can be shared across loggers.
type StreamHandler struct {
	Base
	mu     sync.Mutex
	writer io.Writer
}

// syncer is implemented by *os.File and similar writers that can
// force data to the underlying medium.
type syncer interface {
	Sync() error
}

// NewStreamHandler creates a handler writing to w. A nil writer
// defaults to stdout.
func NewStreamHandler(w io.Writer) *StreamHandler {
	if w == nil {
		w = os.Stdout
	}
	return &StreamHandler{writer: w}
}

// Stdout returns a handler writing to standard output.
func Stdout() *StreamHandler { return NewStreamHandler(os.Stdout) }

// Stderr returns a handler writing to standard error.
func Stderr() *StreamHandler { return NewStreamHandler(os.Stderr) }

// Emit formats the record and writes it followed by a newline.
func (h *StreamHandler) Emit(r *core.Record) error {
	if h.State() != StateOpen {
		return h.rejectClosed()
	}
	if !h.Enabled(r) {
		return nil
	}
	line := h.FormatRecord(r)

	h.mu.Lock()
	_, err := io.WriteString(h.writer, line+"\n")
	h.mu.Unlock()
	if err != nil {
		h.ReportError(fmt.Errorf("stream write failed: %w", err))
	}
	return err
}

// Flush syncs the underlying writer when it supports it.
func (h *StreamHandler) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.writer.(syncer); ok {
		return s.Sync()
	}
	return nil
}

// Close flushes and marks the handler closed. The writer itself is
// not closed: stdout and stderr are not ours to close.
func (h *StreamHandler) Close() error {
	if !h.beginClose() {
		return nil
	}
	err := h.Flush()
	h.finishClose()
	return err
}
