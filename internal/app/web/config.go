package web

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/pet-community/internal/platform/uploads"
)

const (
	DefaultPort            = "8080"
	DefaultSessionTTLHours = 24
	DefaultDraftMaxAgeDays = 7
	configFileEnvKey       = "COMMUNITY_CONFIG"
)

// TemporalConfig selects the cluster account deletions run on.
type TemporalConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Disabled  bool   `toml:"disabled"`
}

// Config carries settings for the community web process and its helpers.
type Config struct {
	Port string `toml:"port"`
	// AppRoot holds the data/ tables and the uploads/ tree.
	AppRoot         string         `toml:"app_root"`
	PostgresDSN     string         `toml:"postgres_dsn"`
	SessionTTLHours int            `toml:"session_ttl_hours"`
	DraftMaxAgeDays int            `toml:"draft_max_age_days"`
	CookieSecure    bool           `toml:"cookie_secure"`
	MaxUploadBytes  int64          `toml:"max_upload_bytes"`
	Temporal        TemporalConfig `toml:"temporal"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() Config {
	return Config{
		Port:            DefaultPort,
		AppRoot:         ".",
		SessionTTLHours: DefaultSessionTTLHours,
		DraftMaxAgeDays: DefaultDraftMaxAgeDays,
		MaxUploadBytes:  uploads.DefaultMaxBytes,
		Temporal: TemporalConfig{
			Address:   client.DefaultHostPort,
			Namespace: client.DefaultNamespace,
		},
	}
}

// LoadConfig applies defaults, then the TOML file named by COMMUNITY_CONFIG,
// then environment variables, and validates the result.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if path := strings.TrimSpace(os.Getenv(configFileEnvKey)); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = envDefault("PORT", cfg.Port)
	cfg.AppRoot = envDefault("APP_ROOT", cfg.AppRoot)
	cfg.PostgresDSN = envDefault("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.Temporal.Address = envDefault("TEMPORAL_ADDRESS", cfg.Temporal.Address)
	cfg.Temporal.Namespace = envDefault("TEMPORAL_NAMESPACE", cfg.Temporal.Namespace)
	if raw, ok := lookup("TEMPORAL_DISABLED"); ok {
		cfg.Temporal.Disabled = isTruthy(raw)
	}
	if raw, ok := lookup("COOKIE_SECURE"); ok {
		cfg.CookieSecure = isTruthy(raw)
	}
	if raw, ok := lookup("SESSION_TTL_HOURS"); ok {
		hours, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("SESSION_TTL_HOURS must be a positive integer")
		}
		cfg.SessionTTLHours = hours
	}
	if raw, ok := lookup("DRAFT_MAX_AGE_DAYS"); ok {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("DRAFT_MAX_AGE_DAYS must be a positive integer")
		}
		cfg.DraftMaxAgeDays = days
	}
	if raw, ok := lookup("MAX_UPLOAD_BYTES"); ok {
		size, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_BYTES must be a positive integer")
		}
		cfg.MaxUploadBytes = size
	}
	return nil
}

// Validate reports every setting outside its allowed range.
func (c Config) Validate() error {
	var errs []error
	if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("port %q is not a valid TCP port", c.Port))
	}
	if strings.TrimSpace(c.AppRoot) == "" {
		errs = append(errs, errors.New("app root is required"))
	}
	if c.SessionTTLHours <= 0 {
		errs = append(errs, errors.New("session TTL must be a positive number of hours"))
	}
	if c.DraftMaxAgeDays <= 0 {
		errs = append(errs, errors.New("draft max age must be a positive number of days"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max upload size must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c Config) DraftMaxAge() time.Duration {
	return time.Duration(c.DraftMaxAgeDays) * 24 * time.Hour
}

// DataDir is where the flat-file tables live.
func (c Config) DataDir() string {
	return filepath.Join(c.AppRoot, "data")
}

// UsePostgres reports whether records live in PostgreSQL instead of flat files.
func (c Config) UsePostgres() bool {
	return strings.TrimSpace(c.PostgresDSN) != ""
}

func lookup(key string) (string, bool) {
	val, ok := os.LookupEnv(key)
	val = strings.TrimSpace(val)
	return val, ok && val != ""
}

func envDefault(key, fallback string) string {
	if val, ok := lookup(key); ok {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
