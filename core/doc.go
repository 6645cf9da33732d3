// Package core defines the shared types used across logxide.
//
// It provides the Level type with its dynamic name registry, the
// Record type that represents a single log event, the Filter
// interface for record predicates, and the goroutine-name side-table
// consulted during record construction.
//
// Record objects are pooled via sync.Pool to keep the hot path
// allocation-free: NewRecord draws from the pool and the dispatch
// consumer returns records with Free once every handler has seen
// them. Handlers that retain a record past their Emit call must take
// a Clone, because the record's lifetime ends after the consumer
// pass.
//
// Message templates are resolved lazily: NewRecord stores the raw
// template and arguments, and the first Message call on the consumer
// side pays the fmt.Sprintf cost. Disabled log calls therefore never
// format anything.
package core
