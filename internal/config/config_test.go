package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DAYLIST_HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, filepath.Join(home, "daylist.db"), cfg.Database.Path)
	assert.Equal(t, "file", cfg.KeyStore.Backend)
	assert.Equal(t, filepath.Join(home, "keychain.json"), cfg.KeyStore.Path)
	assert.True(t, cfg.Tasks.AllowOrphans)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DAYLIST_HOME", home)

	path := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /var/lib/daylist/tasks.db
keystore:
  backend: redis
  redis:
    addr: redis.internal:6379
    db: 2
tasks:
  allow_orphans: false
auth:
  bcrypt_cost: 12
log:
  level: debug
  development: true
`), 0644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/daylist/tasks.db", cfg.Database.Path)
	assert.Equal(t, "redis", cfg.KeyStore.Backend)
	assert.Equal(t, "redis.internal:6379", cfg.KeyStore.Redis.Addr)
	assert.Equal(t, 2, cfg.KeyStore.Redis.DB)
	assert.Equal(t, "daylist:keystore:", cfg.KeyStore.Redis.Prefix, "unset keys keep their defaults")
	assert.False(t, cfg.Tasks.AllowOrphans)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DAYLIST_HOME", home)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0644))

	t.Setenv("DAYLIST_CONFIG", path)
	t.Setenv("DAYLIST_LOG_LEVEL", "error")
	t.Setenv("DAYLIST_DB_PATH", "/tmp/other.db")
	t.Setenv("DAYLIST_KEYSTORE_BACKEND", "memory")
	t.Setenv("DAYLIST_REDIS_DB", "5")
	t.Setenv("DAYLIST_ALLOW_ORPHANS", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, "memory", cfg.KeyStore.Backend)
	assert.Equal(t, 5, cfg.KeyStore.Redis.DB)
	assert.False(t, cfg.Tasks.AllowOrphans)
}

func TestLoad_Invalid(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DAYLIST_HOME", home)

	bad := filepath.Join(home, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("database: [unclosed"), 0644))
	_, err := Load(bad)
	assert.Error(t, err)

	backend := filepath.Join(home, "backend.yaml")
	require.NoError(t, os.WriteFile(backend, []byte("keystore:\n  backend: keychain\n"), 0644))
	_, err = Load(backend)
	assert.ErrorContains(t, err, "keystore.backend")

	cost := filepath.Join(home, "cost.yaml")
	require.NoError(t, os.WriteFile(cost, []byte("auth:\n  bcrypt_cost: 2\n"), 0644))
	_, err = Load(cost)
	assert.ErrorContains(t, err, "bcrypt_cost")
}

func TestExpandHome(t *testing.T) {
	userHome, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(userHome, "tasks.db"), expandHome("~/tasks.db"))
	assert.Equal(t, "/abs/tasks.db", expandHome("/abs/tasks.db"))
	assert.Equal(t, "rel/~x", expandHome("rel/~x"))
}
