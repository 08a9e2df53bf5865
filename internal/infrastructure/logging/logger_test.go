package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbertone/inventario/internal/infrastructure/config"
)

func restoreDefault(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestNewSlogLogger_JSON(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer

	logger := NewSlogLogger(&buf, config.LogConfig{Level: "info", Format: config.LogFormatJSON})
	logger.Debug("hidden")
	slog.Info("product added", "fields", 3)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &record))
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "product added", record["msg"])
	assert.Equal(t, 3.0, record["fields"])
}

func TestNewSlogLogger_Text(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer

	logger := NewSlogLogger(&buf, config.LogConfig{Level: "warn", Format: config.LogFormatText})
	logger.Info("hidden")
	logger.Warn("document unreadable", "error", errors.New("bad json"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "document unreadable")
	assert.Contains(t, out, "bad json")
}
