package tui

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

func TestValidateURL(t *testing.T) {
	assert.NoError(t, validateURL("http://localhost:5000"))
	assert.Error(t, validateURL("localhost"))
	assert.Error(t, validateURL(""))
}

func TestSaveSetup_WritesConfigAndToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	files := session.NewFileStore(filepath.Join(dir, "session.json"))
	defer theme.SetActive("flexoki-dark")

	vals := SetupValues{
		apiURL: " http://budget.test ",
		token:  "tok-123",
		theme:  "tokyo-night",
		basis:  "sum",
	}
	cfg, err := saveSetup(vals, config.DefaultConfig(), files, path)
	require.NoError(t, err)
	assert.Equal(t, "http://budget.test", cfg.API.BaseURL)

	saved, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tokyo-night", saved.Appearance.Theme)
	assert.Equal(t, "sum", saved.Planner.PercentBasis)

	info, err := files.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", info.Token)
	assert.Equal(t, "tokyo-night", theme.Active.Name)
}

func TestSaveSetup_EmptyTokenKeepsSession(t *testing.T) {
	dir := t.TempDir()
	files := session.NewFileStore(filepath.Join(dir, "session.json"))
	require.NoError(t, files.Save(session.UserInfo{Token: "old"}))

	vals := SetupValues{apiURL: "http://localhost:5000"}
	_, err := saveSetup(vals, config.DefaultConfig(), files, filepath.Join(dir, "config.toml"))
	require.NoError(t, err)

	info, err := files.Load()
	require.NoError(t, err)
	assert.Equal(t, "old", info.Token)
}
