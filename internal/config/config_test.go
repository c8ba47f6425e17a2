package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdate/internal/config"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `listen: ":9000"
log_level: loud
refresh: "not a cron"
horizon_days: -3
fields_file: events.yaml
ics:
  - url: https://example.com/a.ics
    name: club
  - url: ./b.ics
basic_auth:
  username: admin
  password: ""
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, config.DefaultRefreshCron, cfg.RefreshCron)
	assert.Equal(t, config.DefaultHorizonDays, cfg.HorizonDays)
	assert.Equal(t, config.DefaultCacheDir, cfg.CacheDir)
	assert.Equal(t, "events.yaml", cfg.FieldsFile)
	require.Len(t, cfg.ICS, 2)
	assert.Equal(t, "club", cfg.ICS[0].ID)
	assert.Equal(t, "feed2", cfg.ICS[1].ID)
	assert.Nil(t, cfg.BasicAuth, "incomplete credentials disable auth")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [\n"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.DefaultConfig()
	cfg.RefreshCron = "0 * * * *"
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "u", Password: "p"}
	require.NoError(t, cfg.Save(path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0 * * * *", loaded.RefreshCron)
	require.NotNil(t, loaded.BasicAuth)
	assert.Equal(t, "u", loaded.BasicAuth.Username)
}

func TestSaveRejectsEmpty(t *testing.T) {
	assert.Error(t, config.Save("", config.DefaultConfig()))
	assert.Error(t, config.Save(filepath.Join(t.TempDir(), "c.yaml"), nil))
}
