package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "test.yaml"), []byte(content), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("APP_ENV", "test")
}

func TestLoadAppliesDefaults(t *testing.T) {
	writeConfig(t, `
bot:
  token: "123:abc"
`)

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.AppEnv)
	assert.Equal(t, "123:abc", cfg.Bot.Token)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 20*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.AI.Enabled())
}

func TestLoadRequiresBotToken(t *testing.T) {
	writeConfig(t, `
log:
  level: debug
`)

	_, _, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}

func TestLoadTokenFromEnvironment(t *testing.T) {
	writeConfig(t, `
bot:
  token: ""
`)
	t.Setenv("BOT_TOKEN", "999:env")

	cfg, _, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "999:env", cfg.Bot.Token)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	writeConfig(t, `
bot:
  token: "123:abc"
session:
  backend: cassandra
`)

	_, _, err := Load()
	require.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "localhost", Port: "5432",
		User: "edubot", Password: "secret", Name: "edubot", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=edubot password=secret dbname=edubot sslmode=disable",
		db.DSN())
}

func TestIsAdmin(t *testing.T) {
	bot := BotConfig{AdminIDs: []int64{1, 2}}
	assert.True(t, bot.IsAdmin(1))
	assert.False(t, bot.IsAdmin(3))
}
