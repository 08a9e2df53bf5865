package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, basePath, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(ConfigDir(basePath), 0755))
	require.NoError(t, os.WriteFile(ConfigFilePath(basePath), []byte(content), 0644))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, BackendJSON, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(dir, DefaultDataDir), cfg.Storage.DataDir)
	assert.Equal(t, filepath.Join(dir, DefaultDataDir, DefaultSQLiteFile), cfg.Storage.SQLitePath)
	assert.Equal(t, 30, cfg.RecycleBin.TTLDays)
	assert.Equal(t, 30*24*time.Hour, cfg.BinTTL())
	assert.Equal(t, slog.LevelWarn, cfg.Log.SlogLevel())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
storage:
  backend: sqlite
  data_dir: /var/lib/inventario
recycle_bin:
  ttl_days: 7
log:
  level: debug
  format: json
`)

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/inventario", cfg.Storage.DataDir)
	assert.Equal(t, "/var/lib/inventario/inventario.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 7, cfg.RecycleBin.TTLDays)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
	assert.Equal(t, LogFormatJSON, cfg.Log.Format)
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "recycle_bin:\n  ttl_days: 10\n")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 10, cfg.RecycleBin.TTLDays)
	assert.Equal(t, BackendJSON, cfg.Storage.Backend)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "storage:\n  backend: json\n")
	t.Setenv("INVENTARIO_STORAGE", "SQLite")
	t.Setenv("INVENTARIO_DATA_DIR", "otros")
	t.Setenv("INVENTARIO_SQLITE_PATH", "db/inv.db")
	t.Setenv("INVENTARIO_BIN_TTL_DAYS", "5")
	t.Setenv("INVENTARIO_LOG_LEVEL", "info")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(dir, "otros"), cfg.Storage.DataDir)
	assert.Equal(t, filepath.Join(dir, "db/inv.db"), cfg.Storage.SQLitePath)
	assert.Equal(t, 5, cfg.RecycleBin.TTLDays)
	assert.Equal(t, slog.LevelInfo, cfg.Log.SlogLevel())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		errMsg  string
	}{
		{name: "bad yaml", content: "storage: [", errMsg: "parsing config file"},
		{name: "unknown backend", content: "storage:\n  backend: postgres\n", errMsg: "must be one of"},
		{name: "zero ttl", content: "recycle_bin:\n  ttl_days: 0\n", errMsg: "must be at least 1"},
		{name: "bad log format", content: "log:\n  format: xml\n", errMsg: "Format"},
		{name: "bad env ttl", env: map[string]string{"INVENTARIO_BIN_TTL_DAYS": "muchos"}, errMsg: "parsing environment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.content != "" {
				writeConfig(t, dir, tt.content)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(dir)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteDefault(dir))
	assert.True(t, Exists(dir))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, BackendJSON, cfg.Storage.Backend)
	assert.Equal(t, 30, cfg.RecycleBin.TTLDays)

	err = WriteDefault(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Storage.Backend = BackendSQLite
	cfg.RecycleBin.TTLDays = 14

	require.NoError(t, Write(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, loaded.Storage.Backend)
	assert.Equal(t, 14, loaded.RecycleBin.TTLDays)
}

func TestResolve_MemorySQLite(t *testing.T) {
	cfg := Default()
	cfg.Storage.SQLitePath = ":memory:"

	cfg.Resolve("/base")

	assert.Equal(t, ":memory:", cfg.Storage.SQLitePath)
	assert.Equal(t, "/base/datos", cfg.Storage.DataDir)
}

func TestLogConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{level: "debug", expected: slog.LevelDebug},
		{level: "info", expected: slog.LevelInfo},
		{level: "warn", expected: slog.LevelWarn},
		{level: "error", expected: slog.LevelError},
		{level: "nonsense", expected: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, LogConfig{Level: tt.level}.SlogLevel())
		})
	}
}
