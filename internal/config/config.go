// Package config resolves runtime settings from the environment and an
// optional YAML file named by CONFIG_FILE. Environment values win.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	minSecretKeyLength = 32

	DefaultPort                 = "8080"
	DefaultCooldownWindow       = 12 * time.Hour
	DefaultClassifierTimeout    = 3 * time.Second
	DefaultHistoryRemoteTimeout = 2 * time.Second
	DefaultLockTTL              = 10 * time.Second

	// lockTTLHeadroom covers the store reads and the insert that share the
	// submission lock with the classifier call.
	lockTTLHeadroom = 2 * time.Second
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type Config struct {
	Port                 string
	DBPath               string
	Location             *time.Location
	SecretKey            string
	CooldownWindow       time.Duration
	ClassifierURL        string
	ClassifierTimeout    time.Duration
	HistoryRemoteTimeout time.Duration
	RedisAddr            string
	LockTTL              time.Duration
	LogLevel             string
	LogFormat            string
}

// fileValues mirrors the environment keys in lower case.
type fileValues struct {
	Port                 string `yaml:"port"`
	DBPath               string `yaml:"db_path"`
	TZ                   string `yaml:"tz"`
	SecretKey            string `yaml:"secret_key"`
	CooldownWindow       string `yaml:"cooldown_window"`
	ClassifierURL        string `yaml:"classifier_url"`
	ClassifierTimeout    string `yaml:"classifier_timeout"`
	HistoryRemoteTimeout string `yaml:"history_remote_timeout"`
	RedisAddr            string `yaml:"redis_addr"`
	LockTTL              string `yaml:"lock_ttl"`
	LogLevel             string `yaml:"log_level"`
	LogFormat            string `yaml:"log_format"`
}

func (values fileValues) lookup(key string) string {
	switch key {
	case "PORT":
		return values.Port
	case "DB_PATH":
		return values.DBPath
	case "TZ":
		return values.TZ
	case "SECRET_KEY":
		return values.SecretKey
	case "COOLDOWN_WINDOW":
		return values.CooldownWindow
	case "CLASSIFIER_URL":
		return values.ClassifierURL
	case "CLASSIFIER_TIMEOUT":
		return values.ClassifierTimeout
	case "HISTORY_REMOTE_TIMEOUT":
		return values.HistoryRemoteTimeout
	case "REDIS_ADDR":
		return values.RedisAddr
	case "LOCK_TTL":
		return values.LockTTL
	case "LOG_LEVEL":
		return values.LogLevel
	case "LOG_FORMAT":
		return values.LogFormat
	default:
		return ""
	}
}

type resolver struct {
	file fileValues
}

func (r resolver) get(key string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	if value := strings.TrimSpace(r.file.lookup(key)); value != "" {
		return value
	}
	return fallback
}

func (r resolver) duration(key string, fallback time.Duration) (time.Duration, error) {
	raw := r.get(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return value, nil
}

// Load resolves every setting. The secret key is read but only checked by
// RequireSecretKey, so storage-only commands can run without one.
func Load() (Config, error) {
	file, err := readFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}
	r := resolver{file: file}

	port, err := resolvePort(r.get("PORT", DefaultPort))
	if err != nil {
		return Config{}, err
	}

	location, err := time.LoadLocation(r.get("TZ", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TZ: %w", err)
	}

	config := Config{
		Port:          port,
		DBPath:        r.get("DB_PATH", filepath.Join("data", "innercalm.db")),
		Location:      location,
		SecretKey:     r.get("SECRET_KEY", ""),
		ClassifierURL: strings.TrimRight(r.get("CLASSIFIER_URL", ""), "/"),
		RedisAddr:     r.get("REDIS_ADDR", ""),
		LogLevel:      strings.ToLower(r.get("LOG_LEVEL", "info")),
		LogFormat:     strings.ToLower(r.get("LOG_FORMAT", "json")),
	}

	if config.CooldownWindow, err = r.duration("COOLDOWN_WINDOW", DefaultCooldownWindow); err != nil {
		return Config{}, err
	}
	if config.ClassifierTimeout, err = r.duration("CLASSIFIER_TIMEOUT", DefaultClassifierTimeout); err != nil {
		return Config{}, err
	}
	if config.HistoryRemoteTimeout, err = r.duration("HISTORY_REMOTE_TIMEOUT", DefaultHistoryRemoteTimeout); err != nil {
		return Config{}, err
	}
	if config.LockTTL, err = r.duration("LOCK_TTL", DefaultLockTTL); err != nil {
		return Config{}, err
	}

	if config.LockTTL < config.ClassifierTimeout+lockTTLHeadroom {
		return Config{}, fmt.Errorf("invalid LOCK_TTL %s: must be at least CLASSIFIER_TIMEOUT (%s) plus %s",
			config.LockTTL, config.ClassifierTimeout, lockTTLHeadroom)
	}
	if config.LogFormat != "json" && config.LogFormat != "console" {
		return Config{}, fmt.Errorf("invalid LOG_FORMAT %q: expected json or console", config.LogFormat)
	}
	return config, nil
}

// RequireSecretKey rejects empty, placeholder and short token secrets.
func (config Config) RequireSecretKey() error {
	secret := strings.TrimSpace(config.SecretKey)
	if secret == "" {
		return errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[secret]; insecure {
		return errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return nil
}

func resolvePort(raw string) (string, error) {
	port, err := strconv.Atoi(raw)
	if err != nil {
		return "", fmt.Errorf("invalid PORT %q: %w", raw, err)
	}
	if port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid PORT %q: must be between 1 and 65535", raw)
	}
	return strconv.Itoa(port), nil
}

func readFile(path string) (fileValues, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return fileValues{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fileValues{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var values fileValues
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fileValues{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return values, nil
}
