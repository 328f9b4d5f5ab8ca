package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a config that passes Validate.
func validConfig() *Config {
	return &Config{
		App:       AppConfig{Environment: "development"},
		Logger:    LoggerConfig{Level: "info"},
		Storage:   StorageConfig{DataPath: "/some/path"},
		Server:    ServerConfig{Port: "8080"},
		RateLimit: RateLimitConfig{RPS: 20, Burst: 40},
		Alignment: AlignmentConfig{FallbackSlot: 5 * time.Second, MatchThreshold: 0.5},
		Cache:     CacheConfig{MaxEntries: 100},
	}
}

// clearEnv blanks every key Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "LOG_LEVEL", "DATA_PATH", "IMPORT_PATH", "SERVER_PORT",
		"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
		"CORS_ALLOWED_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"ALIGN_FALLBACK_SLOT", "ALIGN_MATCH_THRESHOLD", "CACHE_MAX_ENTRIES", "CACHE_PERSIST",
	} {
		t.Setenv(key, "")
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
		{"DEVELOPMENT", false}, // case sensitive
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

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true}, // case insensitive
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty data path", func(c *Config) { c.Storage.DataPath = "" }, "data path"},
		{"non numeric port", func(c *Config) { c.Server.Port = "http" }, "server port"},
		{"port out of range", func(c *Config) { c.Server.Port = "70000" }, "server port"},
		{"zero rps", func(c *Config) { c.RateLimit.RPS = 0 }, "rate limit"},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }, "rate limit"},
		{"zero slot", func(c *Config) { c.Alignment.FallbackSlot = 0 }, "fallback slot"},
		{"zero threshold", func(c *Config) { c.Alignment.MatchThreshold = 0 }, "match threshold"},
		{"threshold above one", func(c *Config) { c.Alignment.MatchThreshold = 1.5 }, "match threshold"},
		{"zero cache", func(c *Config) { c.Cache.MaxEntries = 0 }, "cache size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_ThresholdOfOneAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.Alignment.MatchThreshold = 1
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()

	cfg, err := Load([]string{"-env-file", filepath.Join(dataDir, "missing.env"), "-data-path", dataDir})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, dataDir, cfg.Storage.DataPath)
	assert.Empty(t, cfg.Import.Path)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.InDelta(t, 20.0, cfg.RateLimit.RPS, 1e-9)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
	assert.Equal(t, 5*time.Second, cfg.Alignment.FallbackSlot)
	assert.InDelta(t, 0.5, cfg.Alignment.MatchThreshold, 1e-9)
	assert.Equal(t, 10000, cfg.Cache.MaxEntries)
	assert.True(t, cfg.Cache.Persist)

	assert.Equal(t, filepath.Join(dataDir, "evals.db"), cfg.DatabasePath())
	assert.Equal(t, filepath.Join(dataDir, "search"), cfg.SearchPath())
	assert.Equal(t, filepath.Join(dataDir, "cache"), cfg.CachePath())
}

func TestLoad_EnvAndFlags(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()
	importDir := t.TempDir()

	t.Setenv("ENV", "staging")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("ALIGN_FALLBACK_SLOT", "2500ms")
	t.Setenv("ALIGN_MATCH_THRESHOLD", "0.75")
	t.Setenv("CACHE_PERSIST", "no")
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := Load([]string{
		"-env-file", filepath.Join(dataDir, "missing.env"),
		"-data-path", dataDir,
		"-import-path", importDir,
		"-port", "9100",
	})
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, importDir, cfg.Import.Path)
	assert.Equal(t, "9100", cfg.Server.Port, "flag wins over env")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 2500*time.Millisecond, cfg.Alignment.FallbackSlot)
	assert.InDelta(t, 0.75, cfg.Alignment.MatchThreshold, 1e-9)
	assert.False(t, cfg.Cache.Persist)
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()
	t.Setenv("ALIGN_FALLBACK_SLOT", "five seconds")

	_, err := Load([]string{"-env-file", filepath.Join(dataDir, "missing.env"), "-data-path", dataDir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALIGN_FALLBACK_SLOT")
}

func TestLoad_ValidationFailure(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()

	_, err := Load([]string{"-env-file", filepath.Join(dataDir, "missing.env"), "-data-path", dataDir, "-env", "test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("~/evals/data", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "evals", "data"), got)

	got, err = expandPath("/abs/../abs/path", "")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)

	got, err = expandPath("relative", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("TEST_ENV_KEY", "env-value")

	assert.Equal(t, "flag-value", getConfigValue("flag-value", "TEST_ENV_KEY", "default-value"))
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default-value"))
	assert.Equal(t, "default-value", getConfigValue("", "NONEXISTENT_KEY_FOR_TEST", "default-value"))
}

func TestTypedConfigValues(t *testing.T) {
	t.Setenv("TEST_INT", "12")
	t.Setenv("TEST_BAD_INT", "twelve")
	t.Setenv("TEST_FLOAT", "0.25")
	t.Setenv("TEST_BOOL", "YES")

	assert.Equal(t, 12, getIntConfigValue("", "TEST_INT", 1))
	assert.Equal(t, 1, getIntConfigValue("", "TEST_BAD_INT", 1))
	assert.InDelta(t, 0.25, getFloatConfigValue("", "TEST_FLOAT", 1), 1e-9)
	assert.True(t, getBoolConfigValue("", "TEST_BOOL", false))
	assert.False(t, getBoolConfigValue("0", "TEST_BOOL", true))
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `# Test env file
ENV=staging
LOG_LEVEL=debug

QUOTED_VALUE="some value"
SINGLE_QUOTED='another value'
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	for _, key := range []string{"ENV", "LOG_LEVEL", "QUOTED_VALUE", "SINGLE_QUOTED"} {
		t.Setenv(key, "")
	}

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "staging", os.Getenv("ENV"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "some value", os.Getenv("QUOTED_VALUE"))
	assert.Equal(t, "another value", os.Getenv("SINGLE_QUOTED"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `VALID_KEY=valid_value
INVALID LINE WITHOUT EQUALS
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	err := loadEnvFile(envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format at line 2")
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/file/.env"))
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	t.Setenv("TEST_VAR", "original-value")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(`TEST_VAR=new-value`), 0o644))

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "original-value", os.Getenv("TEST_VAR"))
}
