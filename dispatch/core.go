package dispatch

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Indosaram/logxide/core"
)

// Target receives records on the consumer goroutine. The logger
// package implements it: Deliver applies the logger's filter chain,
// walks the propagate chain, and emits to handlers.
type Target interface {
	Deliver(r *core.Record)
}

// Config configures a dispatch Core. Zero values fall back to the
// documented defaults.
type Config struct {
	// QueueSize bounds the dispatch queue (default: 10000).
	QueueSize int
	// Policy maps severity buckets to overflow behavior
	// (default: DefaultLevelPolicy).
	Policy map[core.Level]OverflowPolicy
	// BlockTimeout limits how long a Block-policy producer waits
	// for queue space (default: 100ms).
	BlockTimeout time.Duration
}

// item is one queue element: a record bound to its target, or a
// flush token when done is non-nil.
type item struct {
	rec    *core.Record
	target Target
	done   chan struct{}
}

// Core is the asynchronous heart of the engine: a bounded
// multi-producer queue drained by a single consumer goroutine.
// Producers enqueue and return; all filtering, formatting, and I/O
// happen on the consumer side. The single consumer guarantees FIFO
// delivery per queue.
type Core struct {
	queue        chan item
	policy       map[core.Level]OverflowPolicy
	blockTimeout time.Duration
	stats        *Stats

	// gate serializes Enqueue against Shutdown's close of the
	// queue channel. Producers take the read side.
	gate     sync.RWMutex
	shutdown bool

	consumerGID atomic.Uint64
	wg          sync.WaitGroup
}

// NewCore creates the core and starts its consumer goroutine.
func NewCore(cfg Config) *Core {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.Policy == nil {
		cfg.Policy = DefaultLevelPolicy()
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 100 * time.Millisecond
	}
	c := &Core{
		queue:        make(chan item, cfg.QueueSize),
		policy:       cfg.Policy,
		blockTimeout: cfg.BlockTimeout,
		stats:        NewStats(),
	}
	c.wg.Add(1)
	go c.run()
	return c
}

// Stats returns the core's counters.
func (c *Core) Stats() *Stats { return c.stats }

// Enqueue hands a record to the consumer. The call never performs
// I/O; when the queue is full the level's overflow policy decides
// between dropping and a bounded wait. After Shutdown the record is
// dropped and counted.
func (c *Core) Enqueue(target Target, rec *core.Record) {
	c.gate.RLock()
	defer c.gate.RUnlock()
	if c.shutdown {
		c.stats.IncrementDropped(rec.LevelNo)
		core.Free(rec)
		return
	}

	it := item{rec: rec, target: target}
	select {
	case c.queue <- it:
		return
	default:
	}

	policy, ok := c.policy[bucket(rec.LevelNo)]
	if !ok {
		policy = DropNewest
	}
	switch policy {
	case Block:
		timer := time.NewTimer(c.blockTimeout)
		select {
		case c.queue <- it:
			timer.Stop()
		case <-timer.C:
			// Timed out waiting for space: deliver on the
			// producer so the record is not lost.
			c.stats.IncrementBlocked()
			target.Deliver(rec)
			core.Free(rec)
		}

	case DropOldest:
		select {
		case old := <-c.queue:
			if old.done != nil {
				// Never evict a flush token; put the waiter
				// out of its wait and drop the new record
				// instead.
				close(old.done)
				c.stats.IncrementDropped(rec.LevelNo)
				core.Free(rec)
				return
			}
			c.stats.IncrementDropped(old.rec.LevelNo)
			core.Free(old.rec)
		default:
		}
		select {
		case c.queue <- it:
		default:
			c.stats.IncrementDropped(rec.LevelNo)
			core.Free(rec)
		}

	default: // DropNewest
		c.stats.IncrementDropped(rec.LevelNo)
		core.Free(rec)
	}
}

// bucket normalizes a level to its severity bucket so custom levels
// inherit the policy of the nearest standard level below them.
func bucket(level core.Level) core.Level {
	switch {
	case level >= core.CRITICAL:
		return core.CRITICAL
	case level >= core.ERROR:
		return core.ERROR
	case level >= core.WARNING:
		return core.WARNING
	case level >= core.INFO:
		return core.INFO
	default:
		return core.DEBUG
	}
}

// Flush blocks until every record enqueued before the call has been
// delivered. It is safe from any goroutine; a flush issued from
// within a consumer-invoked callback drains the queue inline instead
// of deadlocking on its own token.
func (c *Core) Flush() {
	if core.GoroutineID() == c.consumerGID.Load() {
		c.drainInline()
		return
	}

	done := make(chan struct{})
	c.gate.RLock()
	if c.shutdown {
		c.gate.RUnlock()
		return
	}
	c.queue <- item{done: done}
	c.gate.RUnlock()
	<-done
}

// drainInline processes queued items on the current (consumer)
// goroutine until the queue is momentarily empty.
func (c *Core) drainInline() {
	for {
		select {
		case it := <-c.queue:
			c.process(it)
		default:
			return
		}
	}
}

// Shutdown stops accepting records, drains the queue through the
// consumer, and returns once the consumer goroutine exits. It is
// idempotent. Handler closing is the caller's responsibility and
// happens after Shutdown returns.
func (c *Core) Shutdown() {
	c.gate.Lock()
	if c.shutdown {
		c.gate.Unlock()
		return
	}
	c.shutdown = true
	close(c.queue)
	c.gate.Unlock()
	c.wg.Wait()
}

// run is the consumer loop. Closing the queue drains the remaining
// items and stops the loop.
func (c *Core) run() {
	defer c.wg.Done()
	c.consumerGID.Store(core.GoroutineID())
	for it := range c.queue {
		c.process(it)
	}
}

func (c *Core) process(it item) {
	if it.done != nil {
		close(it.done)
		return
	}
	it.target.Deliver(it.rec)
	core.Free(it.rec)
	c.stats.IncrementProcessed()
}
