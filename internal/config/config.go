// Package config loads cbudget settings from config.toml, .env files and
// CBUDGET_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/theirongolddev/cbudget/internal/model"
)

const envPrefix = "CBUDGET"

// Config holds all cbudget configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Session    SessionConfig    `toml:"session"`
	Planner    PlannerConfig    `toml:"planner"`
	Defaults   DefaultsConfig   `toml:"defaults"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
}

// APIConfig locates the backend.
type APIConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

// SessionConfig selects where the bearer token is read from.
type SessionConfig struct {
	// Source is one of auto, file, redis, env.
	Source   string `toml:"source"`
	File     string `toml:"file,omitempty"`
	RedisURL string `toml:"redis_url,omitempty"`
	Key      string `toml:"key,omitempty"`
}

// PlannerConfig holds derivation settings.
type PlannerConfig struct {
	PercentBasis string `toml:"percent_basis"`
	SaveHistory  bool   `toml:"save_history"`
}

// DefaultsConfig pre-fills the input form.
type DefaultsConfig struct {
	City   string  `toml:"city,omitempty"`
	Budget float64 `toml:"budget,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration is a time.Duration that reads and writes as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// envOverrides maps CBUDGET_* variables onto config fields.
type envOverrides struct {
	APIURL        string `envconfig:"API_URL"`
	Timeout       string `envconfig:"TIMEOUT"`
	SessionSource string `envconfig:"SESSION_SOURCE"`
	SessionFile   string `envconfig:"SESSION_FILE"`
	RedisURL      string `envconfig:"REDIS_URL"`
	PercentBasis  string `envconfig:"PERCENT_BASIS"`
	Theme         string `envconfig:"THEME"`
	LogLevel      string `envconfig:"LOG_LEVEL"`
	LogFormat     string `envconfig:"LOG_FORMAT"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:5000",
			Timeout: Duration{30 * time.Second},
		},
		Session: SessionConfig{
			Source: "auto",
			Key:    "userInfo",
		},
		Planner: PlannerConfig{
			PercentBasis: "declared",
			SaveHistory:  true,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cbudget")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cbudget")
}

// CacheDir returns the XDG-compliant cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "cbudget")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "cbudget")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// SessionPath returns the session file path, honoring the config override.
func SessionPath(cfg Config) string {
	if cfg.Session.File != "" {
		return cfg.Session.File
	}
	return filepath.Join(ConfigDir(), "session.json")
}

// HistoryPath returns the plan history database path.
func HistoryPath() string {
	return filepath.Join(CacheDir(), "history.db")
}

// LogPath returns the log file used while the TUI owns the terminal.
func LogPath() string {
	return filepath.Join(CacheDir(), "cbudget.log")
}

// Load reads the config file, .env files and environment overrides.
func Load() (Config, error) {
	LoadDotEnv(".env", filepath.Join(ConfigDir(), ".env"))
	cfg, err := LoadFile(ConfigPath())
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadFile reads one config file, returning defaults if it doesn't exist.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads each existing file into the environment without
// overriding variables that are already set.
func LoadDotEnv(paths ...string) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "warning: reading %s: %v\n", p, err)
		}
	}
}

// ApplyEnv overlays CBUDGET_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var ov envOverrides
	if err := envconfig.Process(envPrefix, &ov); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	if ov.APIURL != "" {
		cfg.API.BaseURL = ov.APIURL
	}
	if ov.Timeout != "" {
		if err := cfg.API.Timeout.UnmarshalText([]byte(ov.Timeout)); err != nil {
			return fmt.Errorf("%s_TIMEOUT: %w", envPrefix, err)
		}
	}
	if ov.SessionSource != "" {
		cfg.Session.Source = ov.SessionSource
	}
	if ov.SessionFile != "" {
		cfg.Session.File = ov.SessionFile
	}
	if ov.RedisURL != "" {
		cfg.Session.RedisURL = ov.RedisURL
	}
	if ov.PercentBasis != "" {
		cfg.Planner.PercentBasis = ov.PercentBasis
	}
	if ov.Theme != "" {
		cfg.Appearance.Theme = ov.Theme
	}
	if ov.LogLevel != "" {
		cfg.Log.Level = ov.LogLevel
	}
	if ov.LogFormat != "" {
		cfg.Log.Format = ov.LogFormat
	}
	return nil
}

// Validate checks values that cannot be caught by the TOML decoder.
func (c Config) Validate() error {
	if c.API.Timeout.Duration <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if _, err := model.ParsePercentBasis(c.Planner.PercentBasis); err != nil {
		return fmt.Errorf("planner.percent_basis: %w", err)
	}
	switch strings.ToLower(c.Session.Source) {
	case "", "auto", "file", "redis", "env":
	default:
		return fmt.Errorf("session.source must be auto, file, redis or env, got %q", c.Session.Source)
	}
	if strings.EqualFold(c.Session.Source, "redis") && c.Session.RedisURL == "" {
		return errors.New("session.source is redis but session.redis_url is empty")
	}
	return nil
}

// Basis returns the parsed percent basis, falling back to the declared budget.
func (c Config) Basis() model.PercentBasis {
	b, _ := model.ParsePercentBasis(c.Planner.PercentBasis)
	return b
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
