package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Level represents the numeric severity of a log record. The values
// mirror the conventional 0-50 scale where higher means more severe.
type Level int32

const (
	// NOTSET means the level is inherited from the nearest ancestor logger.
	NOTSET Level = 0
	// DEBUG for detailed diagnostic information
	DEBUG Level = 10
	// INFO for general informational messages
	INFO Level = 20
	// WARNING for potentially harmful situations (the root default)
	WARNING Level = 30
	// ERROR for failures that still allow the application to continue
	ERROR Level = 40
	// CRITICAL for severe failures
	CRITICAL Level = 50
)

// ErrInvalidLevel is returned when an unknown level name or value is
// supplied to a configuration call such as Logger.SetLevel.
var ErrInvalidLevel = errors.New("invalid log level")

// levelRegistry maps levels to names and back. Custom levels can be
// registered at runtime with AddLevelName.
type levelRegistry struct {
	mu      sync.RWMutex
	toName  map[Level]string
	toLevel map[string]Level
}

var levels = &levelRegistry{
	toName: map[Level]string{
		NOTSET:   "NOTSET",
		DEBUG:    "DEBUG",
		INFO:     "INFO",
		WARNING:  "WARNING",
		ERROR:    "ERROR",
		CRITICAL: "CRITICAL",
	},
	toLevel: map[string]Level{
		"NOTSET":   NOTSET,
		"DEBUG":    DEBUG,
		"INFO":     INFO,
		"WARNING":  WARNING,
		"WARN":     WARNING,
		"ERROR":    ERROR,
		"CRITICAL": CRITICAL,
		"FATAL":    CRITICAL,
	},
}

// String returns the registered name of the level, or "Level N" for
// levels without a registered name.
func (l Level) String() string {
	levels.mu.RLock()
	name, ok := levels.toName[l]
	levels.mu.RUnlock()
	if ok {
		return name
	}
	return "Level " + strconv.Itoa(int(l))
}

// AddLevelName registers a custom severity level under the given name.
// Registering an existing level replaces its name; lookups by the old
// name keep working.
func AddLevelName(level Level, name string) {
	levels.mu.Lock()
	defer levels.mu.Unlock()
	levels.toName[level] = name
	levels.toLevel[strings.ToUpper(name)] = level
}

// ParseLevel converts a level name (case-insensitive) to its numeric
// value. It returns ErrInvalidLevel for unregistered names.
func ParseLevel(name string) (Level, error) {
	levels.mu.RLock()
	level, ok := levels.toLevel[strings.ToUpper(name)]
	levels.mu.RUnlock()
	if !ok {
		return NOTSET, fmt.Errorf("%w: %q", ErrInvalidLevel, name)
	}
	return level, nil
}

// CheckLevel validates that the numeric value is a registered level.
// NOTSET is accepted: it clears an explicit level on a logger.
func CheckLevel(level Level) error {
	levels.mu.RLock()
	_, ok := levels.toName[level]
	levels.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	return nil
}
