package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotEmpty(t, cfg.BaseDir)
	assert.Equal(t, 30, cfg.Server.RateLimit)
	assert.False(t, cfg.Server.Messaging)
	assert.Equal(t, 30, cfg.Server.ProbeInterval)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.False(t, cfg.ForceOffline)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("SATCHEL_BASE_DIR", tmpDir)
	t.Setenv("SATCHEL_SERVER", "https://school.example.org")
	t.Setenv("SATCHEL_TOKEN", "abc123")
	t.Setenv("SATCHEL_MESSAGING", "true")
	t.Setenv("SATCHEL_OFFLINE", "true")
	t.Setenv("SATCHEL_RETENTION_DAYS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, tmpDir, cfg.BaseDir)
	assert.Equal(t, "https://school.example.org", cfg.Server.URL)
	assert.Equal(t, "abc123", cfg.Server.Token)
	assert.True(t, cfg.Server.Messaging)
	assert.True(t, cfg.ForceOffline)
	assert.Equal(t, 7, cfg.RetentionDays)
}

func TestLoad_InvalidRetentionIgnored(t *testing.T) {
	t.Setenv("SATCHEL_BASE_DIR", t.TempDir())
	t.Setenv("SATCHEL_RETENTION_DAYS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.RetentionDays)

	t.Setenv("SATCHEL_RETENTION_DAYS", "-5")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.RetentionDays, "non-positive retention falls back to default")
}

func TestLoad_CreatesDirectories(t *testing.T) {
	base := filepath.Join(t.TempDir(), "satchel-home")
	t.Setenv("SATCHEL_BASE_DIR", base)

	cfg, err := Load()
	require.NoError(t, err)

	for _, dir := range []string{cfg.BaseDir, LogDir(cfg)} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestGetPaths(t *testing.T) {
	cfg := &Config{BaseDir: "/data/satchel"}
	paths := GetPaths(cfg)

	assert.Equal(t, filepath.Join("/data/satchel", "satchel.db"), paths.Database)
	assert.Equal(t, filepath.Join("/data/satchel", "logs"), paths.Logs)
}
