package handler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Indosaram/logxide/core"
	"github.com/Indosaram/logxide/formatter"
)

func record(level core.Level, msg string, args ...any) *core.Record {
	return core.NewRecord("test", level, msg, args)
}

func TestBaseSetLevelValidation(t *testing.T) {
	var b Base
	require.NoError(t, b.SetLevel(core.INFO))
	assert.Equal(t, core.INFO, b.Level())

	err := b.SetLevel(core.Level(999))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidLevel)
	assert.Equal(t, core.INFO, b.Level(), "failed SetLevel must not change the level")
}

func TestBaseEnabledRespectsLevelAndFilters(t *testing.T) {
	var b Base
	require.NoError(t, b.SetLevel(core.WARNING))

	assert.False(t, b.Enabled(record(core.INFO, "low")))
	assert.True(t, b.Enabled(record(core.ERROR, "high")))

	only := &core.NameFilter{Prefix: "test"}
	b.AddFilter(only)
	assert.True(t, b.Enabled(record(core.ERROR, "matching name")))

	other := core.NewRecord("other", core.ERROR, "mismatched name", nil)
	assert.False(t, b.Enabled(other))

	b.RemoveFilter(only)
	assert.True(t, b.Enabled(other))

	// Removing a filter that is not attached is a no-op.
	b.RemoveFilter(&core.NameFilter{Prefix: "absent"})
}

func TestBaseFormatRecordFallsBackToMessage(t *testing.T) {
	var b Base
	assert.Equal(t, "bare 7", b.FormatRecord(record(core.INFO, "bare %d", 7)))

	b.SetFormatter(formatter.New("%(levelname)s %(message)s", "", formatter.StylePercent))
	assert.Equal(t, "INFO bare 7", b.FormatRecord(record(core.INFO, "bare %d", 7)))
}

func TestBaseReportErrorCountsAndCallsBack(t *testing.T) {
	var b Base
	var got error
	b.SetErrorCallback(func(err error) { got = err })

	cause := errors.New("sink unavailable")
	b.ReportError(cause)

	assert.Equal(t, cause, got)
	assert.Equal(t, uint64(1), b.Dropped())
}

func TestBaseReportErrorSurvivesPanickyCallback(t *testing.T) {
	var b Base
	b.SetErrorCallback(func(error) { panic("callback bug") })

	assert.NotPanics(t, func() { b.ReportError(errors.New("x")) })
	assert.Equal(t, uint64(1), b.Dropped())
}

func TestNullHandlerLifecycle(t *testing.T) {
	h := NewNullHandler()
	assert.NoError(t, h.Emit(record(core.CRITICAL, "discarded")))
	assert.NoError(t, h.Flush())
	assert.NoError(t, h.Close())
	assert.NoError(t, h.Close())
	assert.Equal(t, StateClosed, h.State())
}

func TestMultiHandlerFansOut(t *testing.T) {
	a := NewMemoryHandler()
	b := NewMemoryHandler()
	m := NewMultiHandler(a, b)

	require.NoError(t, m.Emit(record(core.INFO, "both")))
	assert.Len(t, a.Records(), 1)
	assert.Len(t, b.Records(), 1)

	require.NoError(t, m.Flush())
	require.NoError(t, m.Close())
	assert.Equal(t, StateClosed, a.State())
	assert.Equal(t, StateClosed, b.State())
}

func TestMultiHandlerAggregatesChildErrors(t *testing.T) {
	closed := NewMemoryHandler()
	require.NoError(t, closed.Close())
	open := NewMemoryHandler()
	m := NewMultiHandler(closed, open)

	err := m.Emit(record(core.INFO, "partial"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Len(t, open.Records(), 1, "open child still receives the record")
}

func TestEmitAfterCloseIsRejected(t *testing.T) {
	h := NewMemoryHandler()
	require.NoError(t, h.Close())
	assert.ErrorIs(t, h.Emit(record(core.INFO, "late")), ErrClosed)
}
