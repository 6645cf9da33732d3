package handler

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/Indosaram/logxide/core"
	"github.com/Indosaram/logxide/formatter"
)

// Handler is a sink that performs actual record output. Emit is
// called from the dispatch consumer goroutine; a handler attached to
// multiple loggers must tolerate concurrent Emit calls.
type Handler interface {
	// Emit processes one record. The record is only valid for the
	// duration of the call; handlers that retain data must Clone.
	Emit(r *core.Record) error

	// Flush forces buffered output to the underlying medium.
	Flush() error

	// Close flushes buffered records and releases resources.
	// Closing is idempotent.
	Close() error
}

// ErrClosed is reported when a record reaches a handler after its
// Close has begun.
var ErrClosed = errors.New("handler is closed")

// State tracks the handler lifecycle: Open -> Closing -> Closed.
// Closing drains internal buffers before the transition to Closed;
// emits after Closing begins are rejected through the error callback.
type State int32

const (
	StateOpen State = iota
	StateClosing
	StateClosed
)

// Base carries the configuration shared by every handler variant:
// the minimum level threshold, the optional formatter and filter
// chain, the error callback, and the lifecycle state. It is embedded
// by the concrete handlers.
type Base struct {
	level   atomic.Int32
	state   atomic.Int32
	dropped atomic.Uint64

	mu        sync.Mutex
	formatter formatter.Formatter
	filters   []core.Filter
	errCb     func(error)
}

// SetLevel sets the minimum severity this handler emits. Unknown
// level values fail with core.ErrInvalidLevel.
func (b *Base) SetLevel(level core.Level) error {
	if err := core.CheckLevel(level); err != nil {
		return err
	}
	b.level.Store(int32(level))
	return nil
}

// Level returns the handler's minimum severity threshold.
func (b *Base) Level() core.Level {
	return core.Level(b.level.Load())
}

// SetFormatter installs the formatter. Safe to call while the
// handler is in use.
func (b *Base) SetFormatter(f formatter.Formatter) {
	b.mu.Lock()
	b.formatter = f
	b.mu.Unlock()
}

// AddFilter appends a predicate to the handler's filter chain.
func (b *Base) AddFilter(f core.Filter) {
	b.mu.Lock()
	b.filters = append(b.filters, f)
	b.mu.Unlock()
}

// RemoveFilter removes a previously added filter. Removing a filter
// that is not present is a no-op.
func (b *Base) RemoveFilter(f core.Filter) {
	b.mu.Lock()
	for i, existing := range b.filters {
		if core.SameFilter(existing, f) {
			b.filters = append(b.filters[:i], b.filters[i+1:]...)
			break
		}
	}
	b.mu.Unlock()
}

// SetErrorCallback installs the callback invoked when the handler
// fails to process a record. Without a callback, failures are logged
// to stderr and counted.
func (b *Base) SetErrorCallback(cb func(error)) {
	b.mu.Lock()
	b.errCb = cb
	b.mu.Unlock()
}

// Enabled reports whether the record passes the handler's level
// threshold and filter chain.
func (b *Base) Enabled(r *core.Record) bool {
	if r.LevelNo < core.Level(b.level.Load()) {
		return false
	}
	b.mu.Lock()
	filters := b.filters
	b.mu.Unlock()
	for _, f := range filters {
		if !f.Filter(r) {
			return false
		}
	}
	return true
}

// FormatRecord renders the record with the configured formatter, or
// returns the resolved raw message when no formatter is set.
func (b *Base) FormatRecord(r *core.Record) string {
	b.mu.Lock()
	f := b.formatter
	b.mu.Unlock()
	if f != nil {
		return f.Format(r)
	}
	return r.Message()
}

// ReportError routes a handler failure to the error callback,
// falling back to stderr. The drop counter is incremented either
// way; a panicking callback is contained here and never unwinds into
// the dispatch core.
func (b *Base) ReportError(err error) {
	b.dropped.Add(1)
	b.mu.Lock()
	cb := b.errCb
	b.mu.Unlock()
	if cb != nil {
		func() {
			defer func() { _ = recover() }()
			cb(err)
		}()
		return
	}
	fmt.Fprintf(os.Stderr, "[logxide] %v\n", err)
}

// Dropped returns the number of records this handler failed to
// process.
func (b *Base) Dropped() uint64 {
	return b.dropped.Load()
}

// State returns the current lifecycle state.
func (b *Base) State() State {
	return State(b.state.Load())
}

// beginClose transitions Open -> Closing. It returns false when the
// handler is already closing or closed, making Close idempotent.
func (b *Base) beginClose() bool {
	return b.state.CompareAndSwap(int32(StateOpen), int32(StateClosing))
}

// finishClose transitions to Closed.
func (b *Base) finishClose() {
	b.state.Store(int32(StateClosed))
}

// rejectClosed reports an emit that arrived after Close began.
func (b *Base) rejectClosed() error {
	err := fmt.Errorf("emit rejected: %w", ErrClosed)
	b.ReportError(err)
	return err
}

// NullHandler discards every record. Attaching it to a logger
// silences the "no handlers" fallback without producing output.
type NullHandler struct {
	Base
}

// NewNullHandler creates a discarding handler.
func NewNullHandler() *NullHandler { return &NullHandler{} }

// Emit discards the record.
func (h *NullHandler) Emit(*core.Record) error { return nil }

// Flush is a no-op.
func (h *NullHandler) Flush() error { return nil }

// Close is a no-op.
func (h *NullHandler) Close() error {
	if h.beginClose() {
		h.finishClose()
	}
	return nil
}
