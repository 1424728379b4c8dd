package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cbudget/internal/model"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.API.Timeout.Duration)
	assert.Equal(t, model.BasisDeclaredBudget, cfg.Basis())
}

func TestLoadFile_MissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cbudget", "config.toml")
	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://budget.example.com"
	cfg.API.Timeout = Duration{45 * time.Second}
	cfg.Planner.PercentBasis = "sum"
	cfg.Defaults.City = "Austin"
	cfg.Defaults.Budget = 3000

	require.NoError(t, SaveTo(path, cfg))
	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	assert.Equal(t, model.BasisBreakdownSum, got.Basis())
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\ntimeout = \"5s\"\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout.Duration)
	assert.Equal(t, "http://localhost:5000", cfg.API.BaseURL)
	assert.Equal(t, "flexoki-dark", cfg.Appearance.Theme)
}

func TestLoadFile_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api\n"), 0o600))
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CBUDGET_API_URL", "http://env.example")
	t.Setenv("CBUDGET_TIMEOUT", "2m")
	t.Setenv("CBUDGET_PERCENT_BASIS", "sum")
	t.Setenv("CBUDGET_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CBUDGET_SESSION_SOURCE", "redis")

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnv(&cfg))
	assert.Equal(t, "http://env.example", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Minute, cfg.API.Timeout.Duration)
	assert.Equal(t, "sum", cfg.Planner.PercentBasis)
	assert.Equal(t, "redis", cfg.Session.Source)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnv_BadTimeout(t *testing.T) {
	t.Setenv("CBUDGET_TIMEOUT", "soon")
	cfg := DefaultConfig()
	assert.Error(t, ApplyEnv(&cfg))
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CBUDGET_THEME=catppuccin-mocha\n"), 0o600))
	t.Setenv("CBUDGET_THEME", "")
	os.Unsetenv("CBUDGET_THEME")

	LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path)
	cfg := DefaultConfig()
	require.NoError(t, ApplyEnv(&cfg))
	assert.Equal(t, "catppuccin-mocha", cfg.Appearance.Theme)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Timeout = Duration{}
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Planner.PercentBasis = "mode"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Session.Source = "keychain"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Session.Source = "redis"
	assert.Error(t, cfg.Validate())
}

func TestPaths_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "cbudget", "config.toml"), ConfigPath())
	assert.Equal(t, filepath.Join(dir, "cbudget", "history.db"), HistoryPath())
	assert.Equal(t, filepath.Join(dir, "cbudget", "session.json"), SessionPath(DefaultConfig()))

	cfg := DefaultConfig()
	cfg.Session.File = "/tmp/s.json"
	assert.Equal(t, "/tmp/s.json", SessionPath(cfg))
}
