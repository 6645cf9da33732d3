// Package dispatch implements the asynchronous core that decouples
// log-call latency from I/O latency.
//
// Producers push records onto a bounded multi-producer queue and
// return immediately; a single consumer goroutine pulls records and
// delivers them to their target (the logger's handler chain). The
// single consumer gives per-queue FIFO ordering: records from one
// producer goroutine through one logger reach a handler in the order
// they were logged.
//
// When the queue is full, the record's severity bucket selects an
// OverflowPolicy: DropNewest (the default for DEBUG through
// WARNING), DropOldest, or Block (the default for ERROR and
// CRITICAL), which waits up to a timeout and then delivers the
// record synchronously on the producer rather than losing it. Drops
// and blocked producers are counted in Stats; a full queue is never
// a fatal condition.
//
// Flush enqueues a token and waits for the consumer to reach it,
// guaranteeing every record enqueued before the call has been
// handed to its handlers. Shutdown stops intake, drains the queue,
// and is idempotent.
package dispatch
