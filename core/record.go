package core

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Record is the unit of data produced by one log call. The identity
// fields (level, timestamp, goroutine, process) are set once during
// construction and never mutated afterwards; the resolved message is
// computed lazily on the consumer side.
//
// Ownership passes from the producer to the dispatch core and then to
// each handler in turn. A handler that needs to retain record data
// beyond its Emit call must copy it (see Clone); after the consumer
// pass the record goes back to the pool.
type Record struct {
	Name      string
	LevelNo   Level
	LevelName string

	// Msg is the raw message template; Args are the fmt-style
	// arguments applied lazily by Message.
	Msg  string
	Args []any

	Created         time.Time
	Msecs           int
	RelativeCreated time.Duration

	Goroutine     uint64
	GoroutineName string
	Process       int
	ProcessName   string

	// Source location, present only when the logger captures callers.
	Pathname string
	Filename string
	Lineno   int
	FuncName string

	// ExcInfo carries an attached error and its formatted text.
	ExcInfo error
	ExcText string

	// Extra holds user-supplied fields. Reserved record attributes
	// always win on a name collision.
	Extra map[string]any

	message  string
	resolved bool
}

var startTime = time.Now()

var processName = filepath.Base(os.Args[0])

// recordPool recycles Record values to keep the producer path cheap.
var recordPool = sync.Pool{
	New: func() any { return new(Record) },
}

// NewRecord builds a record for the given logger name and level,
// capturing timestamp, goroutine and process identity.
func NewRecord(name string, level Level, msg string, args []any) *Record {
	r := recordPool.Get().(*Record)
	now := time.Now()
	*r = Record{
		Name:            name,
		LevelNo:         level,
		LevelName:       level.String(),
		Msg:             msg,
		Args:            args,
		Created:         now,
		Msecs:           now.Nanosecond() / int(time.Millisecond),
		RelativeCreated: now.Sub(startTime),
		Goroutine:       GoroutineID(),
		GoroutineName:   GoroutineName(),
		Process:         os.Getpid(),
		ProcessName:     processName,
	}
	return r
}

// Free returns the record to the pool. Only the dispatch core calls
// this, after every handler has processed the record.
func Free(r *Record) {
	if r == nil {
		return
	}
	*r = Record{}
	recordPool.Put(r)
}

// Message resolves the message template against the record's
// arguments and caches the result. Records without arguments return
// the raw template unchanged.
func (r *Record) Message() string {
	if r.resolved {
		return r.message
	}
	if len(r.Args) == 0 {
		r.message = r.Msg
	} else {
		r.message = fmt.Sprintf(r.Msg, r.Args...)
	}
	r.resolved = true
	return r.message
}

// Clone returns an independent copy of the record with the message
// resolved and the extra map duplicated. Handlers that retain records
// past their Emit call use this.
func (r *Record) Clone() Record {
	r.Message()
	c := *r
	c.Args = nil
	if len(r.Extra) > 0 {
		c.Extra = make(map[string]any, len(r.Extra))
		for k, v := range r.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// reservedFields are the record attribute names that user-supplied
// extra fields may never override.
var reservedFields = map[string]struct{}{
	"name": {}, "levelno": {}, "levelname": {},
	"msg": {}, "message": {}, "asctime": {},
	"created": {}, "msecs": {}, "relativeCreated": {},
	"thread": {}, "threadName": {},
	"process": {}, "processName": {},
	"pathname": {}, "filename": {}, "module": {},
	"lineno": {}, "funcName": {},
	"exc_info": {}, "exc_text": {},
}

// IsReservedField reports whether the name is a reserved record
// attribute.
func IsReservedField(name string) bool {
	_, ok := reservedFields[name]
	return ok
}

// SetExtra merges user-supplied fields into the record, dropping any
// key that collides with a reserved attribute.
func (r *Record) SetExtra(extra map[string]any) {
	if len(extra) == 0 {
		return
	}
	if r.Extra == nil {
		r.Extra = make(map[string]any, len(extra))
	}
	for k, v := range extra {
		if IsReservedField(k) {
			continue
		}
		r.Extra[k] = v
	}
}

// FieldMap returns the record as a flat map of its reserved fields
// plus extras. Used for wire payloads; reserved names win on
// collision with extras.
func (r *Record) FieldMap() map[string]any {
	m := make(map[string]any, len(reservedFields)+len(r.Extra))
	for k, v := range r.Extra {
		m[k] = v
	}
	m["name"] = r.Name
	m["levelno"] = int(r.LevelNo)
	m["levelname"] = r.LevelName
	m["msg"] = r.Msg
	m["message"] = r.Message()
	m["created"] = float64(r.Created.UnixNano()) / float64(time.Second)
	m["msecs"] = r.Msecs
	m["relativeCreated"] = r.RelativeCreated.Seconds() * 1000
	m["thread"] = r.Goroutine
	m["threadName"] = r.GoroutineName
	m["process"] = r.Process
	m["processName"] = r.ProcessName
	m["pathname"] = r.Pathname
	m["filename"] = r.Filename
	m["lineno"] = r.Lineno
	m["funcName"] = r.FuncName
	if r.ExcText != "" {
		m["exc_text"] = r.ExcText
	}
	return m
}

// CaptureCaller fills the source-location fields from the call stack.
// skip counts frames above the log call site.
func (r *Record) CaptureCaller(skip int) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return
	}
	r.Pathname = file
	r.Filename = filepath.Base(file)
	r.Lineno = line
	if fn := runtime.FuncForPC(pc); fn != nil {
		r.FuncName = fn.Name()
	}
}
