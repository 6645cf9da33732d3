package core

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// goroutineNames is the side-table mapping goroutine ids to
// human-readable names. Entries are set via SetGoroutineName and read
// during record construction.
var goroutineNames sync.Map

// GoroutineID returns the id of the calling goroutine. The id is
// parsed from the first line of the stack header; this costs one
// small stack dump per call but no allocation beyond the fixed
// buffer.
func GoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// Header looks like "goroutine 123 [running]:".
	s := buf[len("goroutine "):n]
	if i := bytes.IndexByte(s, ' '); i > 0 {
		id, err := strconv.ParseUint(string(s[:i]), 10, 64)
		if err == nil {
			return id
		}
	}
	return 0
}

// SetGoroutineName associates a human-readable name with the calling
// goroutine. Records constructed on this goroutine carry the name.
func SetGoroutineName(name string) {
	goroutineNames.Store(GoroutineID(), name)
}

// GoroutineName returns the name registered for the calling
// goroutine, or "unnamed" when none is set.
func GoroutineName() string {
	if v, ok := goroutineNames.Load(GoroutineID()); ok {
		return v.(string)
	}
	return "unnamed"
}

// ClearGoroutineName removes the calling goroutine's entry from the
// side-table. Long-lived worker pools call this before releasing a
// goroutine so the table does not grow without bound.
func ClearGoroutineName() {
	goroutineNames.Delete(GoroutineID())
}
