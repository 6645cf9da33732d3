package handler

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/Indosaram/logxide/core"
)

// RotatingFileHandler appends records to a file and rotates it by
// size. When the current size plus the pending write would exceed
// maxBytes, existing backups shift up one index (base.1 -> base.2,
// ...), the backup beyond backupCount is deleted, the active file
// becomes base.1, and a fresh active file is opened.
type RotatingFileHandler struct {
	Base
	mu          sync.Mutex
	path        string
	maxBytes    int64
	backupCount int
	file        *os.File
	w           *bufio.Writer
	size        int64
	flushLevel  atomic.Int32
}

// NewRotatingFileHandler opens path for appending and arms rotation
// at maxBytes with backupCount numbered backups. maxBytes <= 0
// disables rotation.
func NewRotatingFileHandler(path string, maxBytes int64, backupCount int) (*RotatingFileHandler, error) {
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	h := &RotatingFileHandler{
		path:        path,
		maxBytes:    maxBytes,
		backupCount: backupCount,
		file:        file,
		w:           bufio.NewWriter(file),
		size:        size,
	}
	h.flushLevel.Store(int32(core.ERROR))
	return h, nil
}

// SetFlushLevel sets the severity at or above which each emit
// flushes the buffer immediately. Default is ERROR.
func (h *RotatingFileHandler) SetFlushLevel(level core.Level) {
	h.flushLevel.Store(int32(level))
}

// Emit writes the formatted record, rotating first when the write
// would push the file over maxBytes.
func (h *RotatingFileHandler) Emit(r *core.Record) error {
	if h.State() != StateOpen {
		return h.rejectClosed()
	}
	if !h.Enabled(r) {
		return nil
	}
	// Format outside the lock to keep the critical section short.
	line := h.FormatRecord(r) + "\n"

	h.mu.Lock()
	if h.maxBytes > 0 && h.size+int64(len(line)) > h.maxBytes {
		if err := h.rotateLocked(); err != nil {
			h.mu.Unlock()
			h.ReportError(fmt.Errorf("rotation failed: %w", err))
			return err
		}
	}
	n, err := h.w.WriteString(line)
	if err == nil {
		h.size += int64(n)
		if r.LevelNo >= core.Level(h.flushLevel.Load()) {
			err = h.w.Flush()
		}
	}
	h.mu.Unlock()

	if err != nil {
		h.ReportError(fmt.Errorf("file write failed: %w", err))
	}
	return err
}

// backupName returns "<base>.<index>".
func (h *RotatingFileHandler) backupName(index int) string {
	return fmt.Sprintf("%s.%d", h.path, index)
}

// rotateLocked performs the rotation. Callers hold h.mu.
func (h *RotatingFileHandler) rotateLocked() error {
	if err := h.w.Flush(); err != nil {
		return err
	}
	if err := h.file.Close(); err != nil {
		return err
	}

	// With no backups configured the active file is truncated in
	// place.
	if h.backupCount == 0 {
		file, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}
		h.file = file
		h.w.Reset(file)
		h.size = 0
		return nil
	}

	// Remove backups beyond the configured count.
	for i := h.backupCount; ; i++ {
		name := h.backupName(i)
		if _, err := os.Stat(name); err != nil {
			break
		}
		os.Remove(name)
	}

	// Shift remaining backups up one index, highest first.
	for i := h.backupCount - 1; i >= 1; i-- {
		src := h.backupName(i)
		if _, err := os.Stat(src); err == nil {
			os.Rename(src, h.backupName(i+1))
		}
	}

	if err := os.Rename(h.path, h.backupName(1)); err != nil {
		return err
	}

	file, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	h.file = file
	h.w.Reset(file)
	h.size = 0
	return nil
}

// Flush writes buffered data through to the active file.
func (h *RotatingFileHandler) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.w.Flush()
}

// Close flushes remaining data and releases the file descriptor.
func (h *RotatingFileHandler) Close() error {
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
