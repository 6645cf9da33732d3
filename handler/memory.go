package handler

import (
	"strings"
	"sync"

	"github.com/Indosaram/logxide/core"
)

// MemoryHandler captures records in a bounded in-memory ring.
// It is designed for test assertions and exposes three read views:
// full records, concatenated text, and (name, level, message) tuples.
type MemoryHandler struct {
	Base
	mu      sync.Mutex
	records []core.Record
	head    int
	max     int
}

// RecordTuple is the compact capture view: logger name, numeric
// level, resolved message.
type RecordTuple struct {
	Name    string
	LevelNo core.Level
	Message string
}

// NewMemoryHandler creates an unbounded capture handler.
func NewMemoryHandler() *MemoryHandler { return &MemoryHandler{} }

// NewBoundedMemoryHandler creates a capture handler that retains at
// most max records, discarding the oldest when full.
func NewBoundedMemoryHandler(max int) *MemoryHandler {
	return &MemoryHandler{max: max}
}

// Emit stores an independent copy of the record. Copying is required
// because the record returns to the pool after the consumer pass.
func (h *MemoryHandler) Emit(r *core.Record) error {
	if h.State() != StateOpen {
		return h.rejectClosed()
	}
	if !h.Enabled(r) {
		return nil
	}
	c := r.Clone()

	h.mu.Lock()
	if h.max > 0 && len(h.records) == h.max {
		h.records[h.head] = c
		h.head = (h.head + 1) % h.max
	} else {
		h.records = append(h.records, c)
	}
	h.mu.Unlock()
	return nil
}

// Records returns the captured records, oldest first.
func (h *MemoryHandler) Records() []core.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]core.Record, 0, len(h.records))
	out = append(out, h.records[h.head:]...)
	out = append(out, h.records[:h.head]...)
	return out
}

// Text returns all captured messages joined by newlines, formatted
// with the handler's formatter when one is set.
func (h *MemoryHandler) Text() string {
	records := h.Records()
	lines := make([]string, len(records))
	for i := range records {
		lines[i] = h.FormatRecord(&records[i])
	}
	return strings.Join(lines, "\n")
}

// RecordTuples returns the capture in (name, level, message) form.
func (h *MemoryHandler) RecordTuples() []RecordTuple {
	records := h.Records()
	tuples := make([]RecordTuple, len(records))
	for i, r := range records {
		tuples[i] = RecordTuple{Name: r.Name, LevelNo: r.LevelNo, Message: r.Message()}
	}
	return tuples
}

// Clear discards all captured records.
func (h *MemoryHandler) Clear() {
	h.mu.Lock()
	h.records = h.records[:0]
	h.head = 0
	h.mu.Unlock()
}

// Flush is a no-op; captures are immediately visible.
func (h *MemoryHandler) Flush() error { return nil }

// Close marks the handler closed. Captured records stay readable so
// tests can assert after shutdown.
func (h *MemoryHandler) Close() error {
	if h.beginClose() {
		h.finishClose()
	}
	return nil
}
