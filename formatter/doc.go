// Package formatter defines how log records are serialized into
// output strings.
//
// TemplateFormatter supports three mutually exclusive template
// syntaxes: percent (%(levelname)-8s, with alignment and width),
// brace ({levelname}), and dollar ($levelname). Templates are
// compiled into segments once at construction, so formatting a
// record never re-parses the template.
//
// Field references resolve against the record's reserved attributes
// first and its extra fields second; reserved names always win on a
// collision. Formatting is total: a reference to a missing field or
// an internal panic degrades to the record's raw message instead of
// failing the consumer goroutine.
//
// Scratch buffers come from a pool; buffers larger than 64 KiB are
// not returned to it so a single huge log line cannot permanently
// inflate memory usage.
package formatter
