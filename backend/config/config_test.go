package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
storage:
  data_dir: /var/lib/dashboard
auth:
  jwt_secret: test-secret-key-for-unit-testing
study:
  required_credits: 210
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("DASHBOARD_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/var/lib/dashboard", cfg.Storage.DataDir)
	assert.Equal(t, 210, cfg.Study.RequiredCredits)
	assert.Equal(t, "debug", cfg.Log.Level)
	// 未配置项取默认值
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "Europe/Berlin", cfg.Study.Timezone)
}

func TestLoad_MissingSecret(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8080\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8080},
			Storage: StorageConfig{DataDir: "./data"},
			Auth:    AuthConfig{JWTSecret: "0123456789abcdef"},
			Study:   StudyConfig{RequiredCredits: 180, Timezone: "UTC"},
		}
	}
	assert.NoError(t, valid().Validate())

	c := valid()
	c.Auth.JWTSecret = "short"
	assert.Error(t, c.Validate())

	c = valid()
	c.Server.Port = 70000
	assert.Error(t, c.Validate())

	c = valid()
	c.Study.Timezone = "Mars/Olympus"
	assert.Error(t, c.Validate())
}
