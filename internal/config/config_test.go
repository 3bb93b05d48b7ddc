package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Store:  StoreConfig{DataPath: "/var/lib/locallibrary"},
		Server: ServerConfig{
			QueryTimeout:  10 * time.Second,
			FormRateLimit: 2,
			FormRateBurst: 10,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_LogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "INFO"} {
		cfg := validConfig()
		cfg.Logger.Level = level
		assert.NoError(t, cfg.Validate(), "level %q", level)
	}

	cfg := validConfig()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_LogFormats(t *testing.T) {
	for _, format := range []string{"", "json", "pretty"} {
		cfg := validConfig()
		cfg.Logger.Format = format
		assert.NoError(t, cfg.Validate(), "format %q", format)
	}

	cfg := validConfig()
	cfg.Logger.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsNonPositiveLimits(t *testing.T) {
	cfg := validConfig()
	cfg.Server.QueryTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Server.FormRateBurst = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Store.DataPath = ""
	assert.Error(t, cfg.Validate())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("~/library", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "library"), got)

	got, err = expandPath("/abs/../abs/path", "")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)

	got, err = expandPath("relative", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("CATALOG_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "CATALOG_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "CATALOG_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "CATALOG_TEST_UNSET", "default"))
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_PATH", dir)

	cfg, err := Load([]string{"-env-file", filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.QueryTimeout)
	assert.Equal(t, 2.0, cfg.Server.FormRateLimit)
	assert.Equal(t, 10, cfg.Server.FormRateBurst)
	assert.Equal(t, dir, cfg.Store.DataPath)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	content := "SERVER_PORT=4000\nQUERY_TIMEOUT=3s\nLOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Setenv("DATA_PATH", dir)
	t.Setenv("LOG_LEVEL", "warn")
	// Registered with t.Setenv so values loaded from the file are restored afterwards.
	t.Setenv("SERVER_PORT", "")
	t.Setenv("QUERY_TIMEOUT", "")
	require.NoError(t, os.Unsetenv("SERVER_PORT"))
	require.NoError(t, os.Unsetenv("QUERY_TIMEOUT"))

	cfg, err := Load([]string{"-env-file", envFile})
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.QueryTimeout)
	assert.Equal(t, "warn", cfg.Logger.Level)
}

func TestLoad_FlagsWin(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_PATH", dir)
	t.Setenv("SERVER_PORT", "4000")

	cfg, err := Load([]string{"-port", "5000", "-env", "production", "-env-file", filepath.Join(dir, "none")})
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "production", cfg.App.Environment)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_PATH", dir)

	_, err := Load([]string{"-query-timeout", "soon", "-env-file", filepath.Join(dir, "none")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUERY_TIMEOUT")
}
