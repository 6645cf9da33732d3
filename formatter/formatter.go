package formatter

import (
	"bytes"
	"sync"

	"github.com/Indosaram/logxide/core"
)

// Formatter converts a record into its output string. Formatting is
// total: implementations never panic outward and degrade to the raw
// message when the template cannot be applied.
type Formatter interface {
	Format(r *core.Record) string
}

// Style selects the template syntax. The three styles are mutually
// exclusive; a formatter is constructed with exactly one.
type Style int

const (
	// StylePercent uses %(field)s placeholders with optional
	// alignment and width, e.g. %(levelname)-8s.
	StylePercent Style = iota
	// StyleBrace uses {field} placeholders.
	StyleBrace
	// StyleDollar uses $field or ${field} placeholders.
	StyleDollar
)

// DefaultFormat is the template applied when BasicConfig is called
// without an explicit format string.
const DefaultFormat = "%(levelname)s:%(name)s:%(message)s"

// DefaultDateFormat renders timestamps as "2006-01-02 15:04:05,123"
// with the millisecond fraction appended by the formatter.
const DefaultDateFormat = "2006-01-02 15:04:05"

// bufferPool recycles the scratch buffers used while expanding
// templates.
var bufferPool = &sync.Pool{
	New: func() any {
		b := new(bytes.Buffer)
		b.Grow(256)
		return b
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 { // Don't keep very large buffers
		return
	}
	bufferPool.Put(buf)
}
