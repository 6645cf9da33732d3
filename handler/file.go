package handler

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/Indosaram/logxide/core"
)

// maxConsecutiveFailures is the number of back-to-back write errors
// after which a file handler enters the degraded state. Degraded
// handlers fast-fail emits into the error callback instead of
// retrying the file on every record.
const maxConsecutiveFailures = 8

// FileHandler appends formatted records to a file through a buffered
// writer. Records at or above the flush level force the buffer to
// the OS immediately, so severe events survive a crash even with
// buffering enabled.
type FileHandler struct {
	Base
	mu         sync.Mutex
	path       string
	file       *os.File
	w          *bufio.Writer
	failures   int
	degraded   atomic.Bool
	flushLevel atomic.Int32
}

// NewFileHandler opens path for appending, creating it if needed.
func NewFileHandler(path string) (*FileHandler, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	h := &FileHandler{
		path: path,
		file: file,
		w:    bufio.NewWriter(file),
	}
	h.flushLevel.Store(int32(core.ERROR))
	return h, nil
}

// SetFlushLevel sets the severity at or above which each emit
// flushes the buffer immediately. Default is ERROR.
func (h *FileHandler) SetFlushLevel(level core.Level) {
	h.flushLevel.Store(int32(level))
}

// FlushLevel returns the current flush level.
func (h *FileHandler) FlushLevel() core.Level {
	return core.Level(h.flushLevel.Load())
}

// Emit writes the formatted record. After repeated write failures
// the handler degrades and fast-fails subsequent emits into the
// error callback.
func (h *FileHandler) Emit(r *core.Record) error {
	if h.State() != StateOpen {
		return h.rejectClosed()
	}
	if !h.Enabled(r) {
		return nil
	}
	if h.degraded.Load() {
		err := fmt.Errorf("file handler degraded: %s unwritable", h.path)
		h.ReportError(err)
		return err
	}
	line := h.FormatRecord(r)

	h.mu.Lock()
	_, err := h.w.WriteString(line + "\n")
	if err == nil && r.LevelNo >= core.Level(h.flushLevel.Load()) {
		err = h.w.Flush()
	}
	if err != nil {
		h.failures++
		if h.failures >= maxConsecutiveFailures {
			h.degraded.Store(true)
		}
	} else {
		h.failures = 0
	}
	h.mu.Unlock()

	if err != nil {
		h.ReportError(fmt.Errorf("file write failed: %w", err))
	}
	return err
}

// Flush writes buffered data through to the file.
func (h *FileHandler) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.w.Flush()
}

// Close flushes remaining data and releases the file descriptor.
func (h *FileHandler) Close() error {
	if !h.beginClose() {
		return nil
	}
	h.mu.Lock()
	flushErr := h.w.Flush()
	closeErr := h.file.Close()
	h.mu.Unlock()
	h.finishClose()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
