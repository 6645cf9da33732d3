package dispatch

import (
	"sync/atomic"

	"github.com/Indosaram/logxide/core"
)

// OverflowPolicy defines how to handle a full dispatch queue.
type OverflowPolicy int

const (
	// DropNewest drops the incoming record when the queue is full.
	DropNewest OverflowPolicy = iota
	// DropOldest evicts the oldest queued record to make room.
	DropOldest
	// Block waits for queue space up to a timeout, then delivers
	// the record synchronously on the producer goroutine.
	Block
)

// String returns the string representation of the policy.
func (p OverflowPolicy) String() string {
	switch p {
	case DropNewest:
		return "DropNewest"
	case DropOldest:
		return "DropOldest"
	case Block:
		return "Block"
	default:
		return "Unknown"
	}
}

// DefaultLevelPolicy returns the default per-level overflow
// policies: routine records are droppable, errors block briefly so
// they are never lost to a momentary burst.
func DefaultLevelPolicy() map[core.Level]OverflowPolicy {
	return map[core.Level]OverflowPolicy{
		core.DEBUG:    DropNewest,
		core.INFO:     DropNewest,
		core.WARNING:  DropNewest,
		core.ERROR:    Block,
		core.CRITICAL: Block,
	}
}

// Stats tracks dispatch counters. All fields are manipulated
// atomically and safe to read while the core is running.
type Stats struct {
	droppedDebug    atomic.Uint64
	droppedInfo     atomic.Uint64
	droppedWarning  atomic.Uint64
	droppedError    atomic.Uint64
	droppedCritical atomic.Uint64
	droppedOther    atomic.Uint64
	blockedTotal    atomic.Uint64
	processedTotal  atomic.Uint64
}

// NewStats creates a zeroed Stats instance.
func NewStats() *Stats { return &Stats{} }

func (s *Stats) droppedCounter(level core.Level) *atomic.Uint64 {
	switch {
	case level >= core.CRITICAL:
		return &s.droppedCritical
	case level >= core.ERROR:
		return &s.droppedError
	case level >= core.WARNING:
		return &s.droppedWarning
	case level >= core.INFO:
		return &s.droppedInfo
	case level >= core.DEBUG:
		return &s.droppedDebug
	default:
		return &s.droppedOther
	}
}

// IncrementDropped counts one dropped record at the given level.
func (s *Stats) IncrementDropped(level core.Level) {
	s.droppedCounter(level).Add(1)
}

// IncrementBlocked counts one producer that hit the block timeout.
func (s *Stats) IncrementBlocked() {
	s.blockedTotal.Add(1)
}

// IncrementProcessed counts one record delivered to its target.
func (s *Stats) IncrementProcessed() {
	s.processedTotal.Add(1)
}

// Dropped returns the drop count for the level's severity bucket.
func (s *Stats) Dropped(level core.Level) uint64 {
	return s.droppedCounter(level).Load()
}

// Blocked returns the number of block-timeout fallbacks.
func (s *Stats) Blocked() uint64 {
	return s.blockedTotal.Load()
}

// Processed returns the number of records delivered.
func (s *Stats) Processed() uint64 {
	return s.processedTotal.Load()
}

// TotalDropped returns the drop count across all severity buckets.
func (s *Stats) TotalDropped() uint64 {
	return s.droppedDebug.Load() +
		s.droppedInfo.Load() +
		s.droppedWarning.Load() +
		s.droppedError.Load() +
		s.droppedCritical.Load() +
		s.droppedOther.Load()
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Dropped   map[core.Level]uint64
	Blocked   uint64
	Processed uint64
}

// GetSnapshot returns a snapshot of the current statistics.
func (s *Stats) GetSnapshot() Snapshot {
	return Snapshot{
		Dropped: map[core.Level]uint64{
			core.DEBUG:    s.droppedDebug.Load(),
			core.INFO:     s.droppedInfo.Load(),
			core.WARNING:  s.droppedWarning.Load(),
			core.ERROR:    s.droppedError.Load(),
			core.CRITICAL: s.droppedCritical.Load(),
		},
		Blocked:   s.blockedTotal.Load(),
		Processed: s.processedTotal.Load(),
	}
}
