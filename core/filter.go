package core

// Filter decides whether a record proceeds through the pipeline.
// Filters run on the consumer goroutine, never on the producer.
type Filter interface {
	// Filter reports whether the record should be processed.
	Filter(r *Record) bool
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(r *Record) bool

// Filter calls f(r).
func (f FilterFunc) Filter(r *Record) bool { return f(r) }

// SameFilter reports whether two filters are equal, for use by
// RemoveFilter implementations. Filters of uncomparable dynamic
// types (such as FilterFunc) never compare equal.
func SameFilter(a, b Filter) (same bool) {
	defer func() { _ = recover() }()
	return a == b
}

// NameFilter passes records from the named logger and its children,
// mirroring the prefix semantics of hierarchical logger names.
type NameFilter struct {
	Prefix string
}

// Filter reports whether the record's logger name matches the prefix.
func (f NameFilter) Filter(r *Record) bool {
	if f.Prefix == "" || r.Name == f.Prefix {
		return true
	}
	return len(r.Name) > len(f.Prefix) &&
		r.Name[:len(f.Prefix)] == f.Prefix &&
		r.Name[len(f.Prefix)] == '.'
}
