package logger

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/Indosaram/logxide/core"
	"github.com/Indosaram/logxide/dispatch"
	"github.com/Indosaram/logxide/handler"
)

// rootName is the registry key and reported name of the root logger.
const rootName = "root"

// Registry owns a logger hierarchy and the dispatch core behind it.
// Most programs use the package-level default registry; independent
// registries exist so tests and embedded uses can isolate their
// pipelines.
type Registry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
	root    *Logger
	core    *dispatch.Core

	resortMu sync.RWMutex
	resort   handler.Handler

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewRegistry creates a registry with its own dispatch core. The
// root logger starts at WARNING with no handlers.
func NewRegistry(cfg dispatch.Config) *Registry {
	r := &Registry{
		loggers: make(map[string]*Logger),
		core:    dispatch.NewCore(cfg),
	}
	r.root = newLogger(rootName, nil, r)
	r.root.level.Store(int32(core.WARNING))
	r.loggers[rootName] = r.root
	r.resort = lastResortHandler()
	return r
}

// lastResortHandler mirrors the stdlib logging fallback: WARNING and
// above to stderr, message only.
func lastResortHandler() handler.Handler {
	h := handler.Stderr()
	_ = h.SetLevel(core.WARNING)
	return h
}

// Root returns the root logger.
func (r *Registry) Root() *Logger { return r.root }

// Stats returns the dispatch counters for this registry.
func (r *Registry) Stats() *dispatch.Stats { return r.core.Stats() }

// GetLogger returns the logger for the dotted name, creating it and
// any missing ancestors on first use. The empty name and "root"
// both return the root logger. Calls with the same name return the
// same instance.
func (r *Registry) GetLogger(name string) *Logger {
	if name == "" || name == rootName {
		return r.root
	}

	r.mu.RLock()
	l, ok := r.loggers[name]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(name)
}

func (r *Registry) getLocked(name string) *Logger {
	if name == "" || name == rootName {
		return r.root
	}
	if l, ok := r.loggers[name]; ok {
		return l
	}
	parentName := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		parentName = name[:i]
	}
	parent := r.getLocked(parentName)
	l := newLogger(name, parent, r)
	r.loggers[name] = l
	return l
}

// invalidateEffective clears cached effective levels for the named
// logger and everything below it.
func (r *Registry) invalidateEffective(name string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == rootName {
		for _, l := range r.loggers {
			l.effective.Store(effectiveUnset)
		}
		return
	}
	prefix := name + "."
	for n, l := range r.loggers {
		if n == name || strings.HasPrefix(n, prefix) {
			l.effective.Store(effectiveUnset)
		}
	}
}

// SetLastResort replaces the fallback handler used when a record
// reaches no attached handler anywhere on its propagation chain.
// Pass nil to silence unhandled records.
func (r *Registry) SetLastResort(h handler.Handler) {
	r.resortMu.Lock()
	r.resort = h
	r.resortMu.Unlock()
}

func (r *Registry) lastResort() handler.Handler {
	r.resortMu.RLock()
	defer r.resortMu.RUnlock()
	return r.resort
}

// Flush blocks until every record accepted before the call has been
// delivered, then flushes every attached handler.
func (r *Registry) Flush() error {
	r.core.Flush()

	var err error
	for _, h := range r.allHandlers() {
		err = multierr.Append(err, h.Flush())
	}
	return err
}

// Shutdown drains the pipeline and closes every attached handler.
// Records logged after Shutdown are dropped and counted. Repeat
// calls return the first call's error.
func (r *Registry) Shutdown() error {
	r.shutdownOnce.Do(func() {
		r.core.Shutdown()

		var err error
		for _, h := range r.allHandlers() {
			err = multierr.Append(err, h.Close())
		}
		r.shutdownErr = err
	})
	return r.shutdownErr
}

// allHandlers collects each distinct attached handler once, in a
// stable order (by owning logger name, root first).
func (r *Registry) allHandlers() []handler.Handler {
	r.mu.RLock()
	names := make([]string, 0, len(r.loggers))
	for n := range r.loggers {
		names = append(names, n)
	}
	r.mu.RUnlock()

	sort.Slice(names, func(i, j int) bool {
		if names[i] == rootName {
			return true
		}
		if names[j] == rootName {
			return false
		}
		return names[i] < names[j]
	})

	seen := make(map[handler.Handler]struct{})
	var out []handler.Handler
	for _, n := range names {
		r.mu.RLock()
		l := r.loggers[n]
		r.mu.RUnlock()
		if l == nil {
			continue
		}
		for _, h := range l.Handlers() {
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
			out = append(out, h)
		}
	}
	return out
}
