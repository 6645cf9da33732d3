package handler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Indosaram/logxide/core"
	"github.com/Indosaram/logxide/formatter"
)

func messageOnly() formatter.Formatter {
	return formatter.New("%(message)s", "", formatter.StylePercent)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestFileHandlerAppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	h, err := NewFileHandler(path)
	require.NoError(t, err)
	h.SetFormatter(messageOnly())
	require.NoError(t, h.Emit(record(core.INFO, "first")))
	require.NoError(t, h.Close())

	h, err = NewFileHandler(path)
	require.NoError(t, err)
	h.SetFormatter(messageOnly())
	require.NoError(t, h.Emit(record(core.INFO, "second")))
	require.NoError(t, h.Close())

	assert.Equal(t, "first\nsecond\n", readFile(t, path))
}

func TestFileHandlerBuffersUntilFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := NewFileHandler(path)
	require.NoError(t, err)
	defer h.Close()
	h.SetFormatter(messageOnly())

	require.NoError(t, h.Emit(record(core.INFO, "buffered")))
	require.NoError(t, h.Flush())
	assert.Equal(t, "buffered\n", readFile(t, path))
}

func TestFileHandlerFlushLevelForcesWriteThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := NewFileHandler(path)
	require.NoError(t, err)
	defer h.Close()
	h.SetFormatter(messageOnly())

	// ERROR is at the default flush level: visible without Flush.
	require.NoError(t, h.Emit(record(core.ERROR, "urgent")))
	assert.Contains(t, readFile(t, path), "urgent")
}

func TestFileHandlerCreateFailure(t *testing.T) {
	_, err := NewFileHandler(filepath.Join(t.TempDir(), "missing", "app.log"))
	assert.Error(t, err)
}

func TestRotatingHandlerKeepsBackupCountFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rot.log")
	h, err := NewRotatingFileHandler(path, 1024, 2)
	require.NoError(t, err)
	h.SetFormatter(messageOnly())

	line := strings.Repeat("x", 100)
	for i := 0; i < 100; i++ {
		require.NoError(t, h.Emit(record(core.INFO, line)))
	}
	require.NoError(t, h.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(entries), 3, "base file plus at most backup_count backups")

	for _, e := range entries {
		info, err := e.Info()
		require.NoError(t, err)
		assert.LessOrEqual(t, info.Size(), int64(1024+101))
	}
}

func TestRotatingHandlerShiftsBackupsInOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rot.log")
	h, err := NewRotatingFileHandler(path, 200, 1)
	require.NoError(t, err)
	h.SetFormatter(messageOnly())

	for i := 0; i < 50; i++ {
		require.NoError(t, h.Emit(record(core.INFO, "payload-entry-%02d", i)))
	}
	require.NoError(t, h.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2, "base file and exactly one backup")

	// The newest record is always in the active file, and the
	// backup holds strictly older entries.
	active := readFile(t, path)
	backup := readFile(t, path+".1")
	assert.Contains(t, active, "payload-entry-49")
	assert.NotContains(t, backup, "payload-entry-49")
	assert.Less(t, lastEntry(backup), firstEntry(active))
}

func firstEntry(content string) string {
	return strings.SplitN(strings.TrimSpace(content), "\n", 2)[0]
}

func lastEntry(content string) string {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	return lines[len(lines)-1]
}

func TestRotatingHandlerZeroBackupsTruncatesInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rot.log")
	h, err := NewRotatingFileHandler(path, 100, 0)
	require.NoError(t, err)
	h.SetFormatter(messageOnly())

	for i := 0; i < 30; i++ {
		require.NoError(t, h.Emit(record(core.INFO, "entry %d", i)))
	}
	require.NoError(t, h.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no backups with backup_count zero")
}

func TestRotatingHandlerUnlimitedWhenMaxBytesZero(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rot.log")
	h, err := NewRotatingFileHandler(path, 0, 3)
	require.NoError(t, err)
	h.SetFormatter(messageOnly())

	for i := 0; i < 200; i++ {
		require.NoError(t, h.Emit(record(core.INFO, strings.Repeat("y", 64))))
	}
	require.NoError(t, h.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "max_bytes zero disables rotation")
}

func TestRotatingHandlerResumesFromExistingSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rot.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("z", 190)+"\n"), 0o644))

	h, err := NewRotatingFileHandler(path, 200, 1)
	require.NoError(t, err)
	h.SetFormatter(messageOnly())

	// The pre-existing size counts: this write must rotate first.
	require.NoError(t, h.Emit(record(core.INFO, "fresh after restart")))
	require.NoError(t, h.Close())

	assert.Equal(t, "fresh after restart\n", readFile(t, path))
	assert.Contains(t, readFile(t, path+".1"), strings.Repeat("z", 190))
}
