// Package logger implements the hierarchical logger registry and the
// producer-side API.
//
// Loggers form a tree keyed by dotted names: "svc.db.pool" is a
// child of "svc.db", which is a child of "svc", which is a child of
// the root. A logger with no level of its own inherits the nearest
// configured ancestor's, and records propagate upward through every
// ancestor's handlers unless a logger on the path turns propagation
// off.
//
// Logging calls never perform I/O. They run a level check, build a
// record, and hand it to the registry's dispatch core; filtering,
// formatting, and handler emission happen on the consumer goroutine.
// Call Flush to wait for in-flight records and Shutdown before exit
// to drain the pipeline and close handlers.
package logger
