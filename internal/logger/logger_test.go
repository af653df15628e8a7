package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_LevelThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "WARN")

	l.Debug("TEST", "debug line")
	l.Info("TEST", "info line")
	l.Warn("test", "warn line")
	l.Error("TEST", "error line")

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "warn line")
	assert.Contains(t, out, "error line")
	assert.Contains(t, out, "[TEST      ]", "category is upper-cased and padded")
}

func TestLogger_FatalUsesExitHook(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "INFO")
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatal("CONFIG", "missing value")

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "missing value")
}

func TestLogger_WritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger("DEBUG", dir)
	l.out = &bytes.Buffer{}
	l.LogPurchase("BUY", "p-1", "confirmed")
	l.Close()

	matches, err := filepath.Glob(filepath.Join(dir, "boleteria-*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	f, err := os.Open(matches[0])
	require.NoError(t, err)
	defer f.Close()

	var found bool
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry LogEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		if entry.Category == "PURCHASE" {
			found = true
			assert.Equal(t, "INFO", entry.Level)
			assert.Equal(t, "[BUY] p-1 - confirmed", entry.Message)
		}
	}
	assert.True(t, found)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, INFO, ParseLevel("unknown"))
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Info("X", "y")
		l.Close()
	})
}
