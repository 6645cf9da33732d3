package logger

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Indosaram/logxide/core"
	"github.com/Indosaram/logxide/handler"
)

// effectiveUnset marks a stale cached effective level.
const effectiveUnset = int32(-1)

// callerSkip covers the public log method, log, and newRecord frames.
const callerSkip = 3

// Logger is a named node in the hierarchy. Loggers are created
// through a Registry and live for the life of the process; all
// methods are safe for concurrent use.
type Logger struct {
	name     string
	parent   *Logger
	registry *Registry

	level     atomic.Int32
	effective atomic.Int32
	propagate atomic.Bool
	caller    atomic.Bool

	mu       sync.RWMutex
	handlers []handler.Handler
	filters  []core.Filter
}

func newLogger(name string, parent *Logger, reg *Registry) *Logger {
	l := &Logger{
		name:     name,
		parent:   parent,
		registry: reg,
	}
	l.propagate.Store(true)
	l.effective.Store(effectiveUnset)
	return l
}

// Name returns the logger's dotted name.
func (l *Logger) Name() string { return l.name }

// Parent returns the logger's parent, or nil for the root.
func (l *Logger) Parent() *Logger { return l.parent }

// SetLevel sets the logger's own level. NOTSET makes the logger
// inherit from its nearest configured ancestor again. Unregistered
// levels are rejected.
func (l *Logger) SetLevel(level core.Level) error {
	if err := core.CheckLevel(level); err != nil {
		return err
	}
	l.level.Store(int32(level))
	l.registry.invalidateEffective(l.name)
	return nil
}

// Level returns the logger's own level, NOTSET if never set.
func (l *Logger) Level() core.Level {
	return core.Level(l.level.Load())
}

// EffectiveLevel returns the logger's own level if set, otherwise
// the nearest ancestor's. A root left at NOTSET reports WARNING.
// The result is cached until a SetLevel on this logger or an
// ancestor invalidates it.
func (l *Logger) EffectiveLevel() core.Level {
	if cached := l.effective.Load(); cached != effectiveUnset {
		return core.Level(cached)
	}
	eff := core.WARNING
	for c := l; c != nil; c = c.parent {
		if lv := c.Level(); lv != core.NOTSET {
			eff = lv
			break
		}
	}
	l.effective.Store(int32(eff))
	return eff
}

// IsEnabledFor reports whether a record at the given level would be
// dispatched. This is the fast path: no allocation, two atomic loads
// in the common case.
func (l *Logger) IsEnabledFor(level core.Level) bool {
	return level >= l.EffectiveLevel()
}

// SetPropagate controls whether records reaching this logger
// continue to ancestor handlers.
func (l *Logger) SetPropagate(p bool) { l.propagate.Store(p) }

// Propagate reports the propagation setting.
func (l *Logger) Propagate() bool { return l.propagate.Load() }

// SetCaptureCaller enables call-site capture (pathname, lineno,
// funcName) on records from this logger. Off by default: capture
// costs a runtime.Caller per record.
func (l *Logger) SetCaptureCaller(enabled bool) { l.caller.Store(enabled) }

// AddHandler attaches a handler. Adding the same handler twice is a
// no-op.
func (l *Logger) AddHandler(h handler.Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.handlers {
		if existing == h {
			return
		}
	}
	l.handlers = append(l.handlers, h)
}

// RemoveHandler detaches a handler. Removing one that is not
// attached is a no-op. The handler is not closed.
func (l *Logger) RemoveHandler(h handler.Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.handlers {
		if existing == h {
			l.handlers = append(l.handlers[:i], l.handlers[i+1:]...)
			return
		}
	}
}

// Handlers returns a snapshot of the attached handlers.
func (l *Logger) Handlers() []handler.Handler {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]handler.Handler(nil), l.handlers...)
}

// AddFilter attaches a filter evaluated on the consumer goroutine
// for records originating at this logger.
func (l *Logger) AddFilter(f core.Filter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filters = append(l.filters, f)
}

// RemoveFilter detaches a filter; a no-op when it is not attached.
func (l *Logger) RemoveFilter(f core.Filter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.filters {
		if core.SameFilter(existing, f) {
			l.filters = append(l.filters[:i], l.filters[i+1:]...)
			return
		}
	}
}

// Debug logs at DEBUG. Args are fmt.Sprintf arguments applied
// lazily: formatting happens on the consumer goroutine, and only if
// a handler renders the record.
func (l *Logger) Debug(msg string, args ...any) { l.log(core.DEBUG, msg, args, nil, nil) }

// Info logs at INFO.
func (l *Logger) Info(msg string, args ...any) { l.log(core.INFO, msg, args, nil, nil) }

// Warning logs at WARNING.
func (l *Logger) Warning(msg string, args ...any) { l.log(core.WARNING, msg, args, nil, nil) }

// Error logs at ERROR.
func (l *Logger) Error(msg string, args ...any) { l.log(core.ERROR, msg, args, nil, nil) }

// Critical logs at CRITICAL.
func (l *Logger) Critical(msg string, args ...any) { l.log(core.CRITICAL, msg, args, nil, nil) }

// Log logs at an arbitrary level, including custom registered ones.
func (l *Logger) Log(level core.Level, msg string, args ...any) {
	l.log(level, msg, args, nil, nil)
}

// LogExtra logs with extra fields attached to the record. Extra keys
// that collide with built-in record fields are dropped.
func (l *Logger) LogExtra(level core.Level, extra map[string]any, msg string, args ...any) {
	l.log(level, msg, args, extra, nil)
}

// Exception logs at ERROR with the error attached as exception info.
func (l *Logger) Exception(err error, msg string, args ...any) {
	l.log(core.ERROR, msg, args, nil, err)
}

func (l *Logger) log(level core.Level, msg string, args []any, extra map[string]any, exc error) {
	if !l.IsEnabledFor(level) {
		return
	}
	rec := core.NewRecord(l.name, level, msg, args)
	if l.caller.Load() {
		rec.CaptureCaller(callerSkip)
	}
	rec.SetExtra(extra)
	if exc != nil {
		rec.ExcInfo = exc
		rec.ExcText = fmt.Sprintf("%+v", exc)
	}
	l.registry.core.Enqueue(l, rec)
}

// Deliver runs on the dispatch consumer: it applies this logger's
// filters, then walks up the hierarchy emitting to every attached
// handler until propagation stops at a logger with Propagate off.
// It implements dispatch.Target.
func (l *Logger) Deliver(rec *core.Record) {
	l.mu.RLock()
	for _, f := range l.filters {
		if !f.Filter(rec) {
			l.mu.RUnlock()
			return
		}
	}
	l.mu.RUnlock()

	// Emit failures are the handler's own concern: every handler
	// routes them through its error callback and drop counter, so
	// the walk only tracks whether any handler was found at all.
	emitted := false
	for c := l; c != nil; c = c.parent {
		c.mu.RLock()
		handlers := c.handlers
		for _, h := range handlers {
			emitted = true
			_ = h.Emit(rec)
		}
		c.mu.RUnlock()
		if !c.propagate.Load() {
			break
		}
	}
	if !emitted {
		if lr := l.registry.lastResort(); lr != nil {
			_ = lr.Emit(rec)
		}
	}
}
