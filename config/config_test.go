package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
env:
  serviceName: warbler-test
  log:
    level: debug
database:
  driver: sqlite
  dsn: "file::memory:?_foreign_keys=1"
  connMaxLifetime: 30m
accounts:
  userDeletion: restrict
`

func TestLoadWithEnv_ReadsYAMLAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testYAML), 0o600))
	t.Chdir(dir)
	t.Setenv("DATABASE_MAXOPENCONNS", "3")
	t.Setenv("ACCOUNTS_USERDELETION", "cascade")

	cfg, err := LoadWithEnv[Config]("config")
	require.NoError(t, err)

	assert.Equal(t, "warbler-test", cfg.Env.ServiceName)
	assert.Equal(t, "debug", cfg.Env.Log.Level)
	require.NotNil(t, cfg.Database)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 3, cfg.Database.MaxOpenConns)
	require.NotNil(t, cfg.Accounts)
	assert.Equal(t, UserDeletionCascade, cfg.Accounts.UserDeletion)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("config")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config.yaml not found")
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.applyDefaults())

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, defaultBcryptCost, cfg.Auth.BcryptCost)
	assert.Equal(t, UserDeletionCascade, cfg.Accounts.UserDeletion)
	assert.Equal(t, PlaceholderImageURL, cfg.Accounts.DefaultImageURL)
	assert.Equal(t, PlaceholderHeaderImageURL, cfg.Accounts.DefaultHeaderImageURL)
	assert.Equal(t, DefaultTimelineLimit, cfg.Timeline.Limit)
	assert.NotNil(t, cfg.PasswordStrength)
}

func TestApplyDefaults_RejectsUnknownValues(t *testing.T) {
	cfg := &Config{Database: &DatabaseConfig{Driver: "mysql"}}
	assert.Error(t, cfg.applyDefaults())

	cfg = &Config{Accounts: &AccountsConfig{UserDeletion: "orphan"}}
	assert.Error(t, cfg.applyDefaults())
}

func TestBuildReplicasFromEnv(t *testing.T) {
	t.Setenv("DATABASE_REPLICAS_0_DSN", "host=replica-0")
	t.Setenv("DATABASE_REPLICAS_1_DSN", "host=replica-1")

	assert.Equal(t, []string{"host=replica-0", "host=replica-1"}, buildReplicasFromEnv())
}
