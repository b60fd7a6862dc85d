package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/fieldbridge/internal/domain"
)

// inTempDir keeps LoadConfig from picking up a developer's .env file.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
	return dir
}

func TestDefaultConfig_IsValidAndLocal(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Remote())
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 4, cfg.Breaker.Failures)
}

func TestLoadConfig_YAMLThenEnv(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "fieldbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: https://office.example.test
request_timeout_ms: 2500
user_id: u-7
user_role: foreman
breaker:
  failures: 2
`), 0o600))
	t.Setenv("FIELDBRIDGE_USER_ID", "u-override")
	t.Setenv("FIELDBRIDGE_POLL_INTERVAL_S", "15")
	t.Setenv("FIELDBRIDGE_MAX_RETRIES", "not-a-number")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Remote())
	assert.Equal(t, 2500*time.Millisecond, cfg.RequestTimeout())
	assert.Equal(t, 15*time.Second, cfg.PollInterval())
	assert.Equal(t, 2, cfg.MaxRetries, "unparsable override keeps the default")
	assert.Equal(t, 2, cfg.Breaker.Failures)
	assert.Equal(t, 10, cfg.Breaker.OpenTimeoutS)
	assert.Equal(t, domain.Actor{UserID: "u-override", Role: domain.RoleForeman}, cfg.Actor())
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FIELDBRIDGE_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("FIELDBRIDGE_LOG_LEVEL") })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := inTempDir(t)

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("base_url: [unclosed"), 0o600))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	t.Setenv("FIELDBRIDGE_BASE_URL", "office.example.test")
	_, err = LoadConfig("")
	assert.ErrorContains(t, err, "base_url")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no target", func(c *Config) { c.DBPath = "" }},
		{"zero timeout", func(c *Config) { c.RequestTimeoutMs = 0 }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"zero poll", func(c *Config) { c.PollIntervalS = 0 }},
		{"bad level", func(c *Config) { c.LogLevel = "verbose" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
