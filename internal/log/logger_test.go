package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentLedger, Output: &buf})

	l.Info("day added", FieldUser, "alice", FieldDate, "01-01-2024")
	out := buf.String()
	assert.Contains(t, out, "component=ledger")
	assert.Contains(t, out, "user=alice")
	assert.Contains(t, out, "date=01-01-2024")
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf}).WithComponent(ComponentStorage)
	l.Warn("row skipped", FieldLine, 3)
	assert.Contains(t, buf.String(), "component=storage")
	assert.Contains(t, buf.String(), "line=3")
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})
	l.Info("hidden")
	l.Debug("hidden too")
	assert.Empty(t, buf.String())
	l.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, "ParseLevel(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
