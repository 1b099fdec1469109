package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"CONFIG_FILE", "PORT", "DB_PATH", "TZ", "SECRET_KEY", "COOLDOWN_WINDOW",
	"CLASSIFIER_URL", "CLASSIFIER_TIMEOUT", "HISTORY_REMOTE_TIMEOUT",
	"REDIS_ADDR", "LOCK_TTL", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", config.Port)
	assert.Equal(t, filepath.Join("data", "innercalm.db"), config.DBPath)
	assert.Equal(t, time.UTC, config.Location)
	assert.Equal(t, 12*time.Hour, config.CooldownWindow)
	assert.Equal(t, 3*time.Second, config.ClassifierTimeout)
	assert.Equal(t, 2*time.Second, config.HistoryRemoteTimeout)
	assert.Equal(t, 10*time.Second, config.LockTTL)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "json", config.LogFormat)
	assert.Empty(t, config.RedisAddr)
	assert.Empty(t, config.ClassifierURL)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("COOLDOWN_WINDOW", "30m")
	t.Setenv("CLASSIFIER_URL", "http://scorer:5000/")
	t.Setenv("LOG_FORMAT", "Console")

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", config.Port)
	assert.Equal(t, 30*time.Minute, config.CooldownWindow)
	assert.Equal(t, "http://scorer:5000", config.ClassifierURL)
	assert.Equal(t, "console", config.LogFormat)
}

func TestLoadFileIsOverriddenByEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "innercalm.yaml")
	content := "port: \"7070\"\ncooldown_window: 6h\nredis_addr: redis:6379\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", config.Port)
	assert.Equal(t, 6*time.Hour, config.CooldownWindow)
	assert.Equal(t, "redis:6379", config.RedisAddr)
	assert.Equal(t, "warn", config.LogLevel)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":               "70000",
		"COOLDOWN_WINDOW":    "-1h",
		"CLASSIFIER_TIMEOUT": "soon",
		"LOCK_TTL":           "0s",
		"TZ":                 "Mars/Olympus",
		"LOG_FORMAT":         "xml",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsLockTTLShorterThanClassifierTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLASSIFIER_TIMEOUT", "5s")
	t.Setenv("LOCK_TTL", "6s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOCK_TTL")

	t.Setenv("LOCK_TTL", "7s")
	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, config.LockTTL)
}

func TestLoadRejectsMissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestRequireSecretKey(t *testing.T) {
	cases := []struct {
		secret string
		valid  bool
	}{
		{"", false},
		{"change_me_in_production", false},
		{"replace_with_at_least_32_random_characters", false},
		{"too-short-secret", false},
		{"0123456789abcdef0123456789abcdef", true},
	}
	for _, tc := range cases {
		err := Config{SecretKey: tc.secret}.RequireSecretKey()
		if tc.valid {
			assert.NoError(t, err, tc.secret)
		} else {
			assert.Error(t, err, tc.secret)
		}
	}
}
