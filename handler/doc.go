// Package handler provides the Handler interface and its built-in
// implementations for writing log records to their final outputs.
//
// Handlers run on the dispatch consumer goroutine, never on a
// producer. Every handler carries a minimum level threshold, an
// optional formatter, an optional filter chain, and an error
// callback, all provided by the embedded Base type.
//
// Handlers follow the lifecycle Open -> Closing -> Closed. Close
// first drains any internal buffer, then releases resources, and is
// idempotent. A record emitted after Closing begins is rejected
// through the error callback, never silently lost.
//
// Built-in handlers:
//
//   - StreamHandler writes formatted lines to any io.Writer.
//   - FileHandler appends to a file via a buffered writer, flushing
//     immediately for records at or above its flush level.
//   - RotatingFileHandler rotates the file by size into numbered
//     backups (base.1 .. base.N).
//   - HTTPHandler batches records and POSTs them as JSON from a
//     background goroutine, with global/per-batch context fields,
//     an optional payload transform, and a flush level that forces
//     out-of-band transmission of severe events.
//   - OTLPHandler batches records and POSTs them protobuf-encoded
//     to an OpenTelemetry collector.
//   - MemoryHandler captures records in a bounded ring for tests.
//   - NullHandler discards records.
//   - MultiHandler fans one record out to several children.
//
// Steady-state failures (I/O errors, rejected batches) are contained
// here: they reach the error callback or the drop counter and never
// propagate back to the producer.
package handler
