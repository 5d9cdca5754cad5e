// Package config loads client configuration.
//
// Sources, lowest precedence first: built-in defaults, a YAML file, a .env
// file in the working directory, CINEMA_* environment variables, and finally
// command line flags applied by the caller through Overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"cinema-booking-cli/service"
)

const (
	AppName         = "cinema-booking-cli"
	DefaultBaseURL  = service.DefaultBaseURL
	DefaultTimeout  = service.DefaultTimeout
	DefaultLogLevel = "info"

	EnvConfig   = "CINEMA_CONFIG"
	EnvBaseURL  = "CINEMA_BASE_URL"
	EnvTimeout  = "CINEMA_TIMEOUT_SEC"
	EnvLogLevel = "CINEMA_LOG_LEVEL"
	EnvLogFile  = "CINEMA_LOG_FILE"
)

type Config struct {
	// BaseURL is the backend root, e.g. http://localhost:4444.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds every request, connection included.
	Timeout time.Duration `yaml:"timeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFile receives the log. Empty means the default under the user cache dir.
	LogFile string `yaml:"log_file"`

	// Path is the file the config was read from, if any.
	Path string `yaml:"-"`
}

// Overrides carries command line values; nil fields are left alone.
type Overrides struct {
	BaseURL  *string
	Timeout  *time.Duration
	LogLevel *string
	LogFile  *string
}

func Default() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		Timeout:  DefaultTimeout,
		LogLevel: DefaultLogLevel,
	}
}

// Load reads configuration from path, or from CINEMA_CONFIG, or from the
// default location when that file exists. An explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if !explicit {
		if defaultPath, err := DefaultPath(); err == nil {
			path = defaultPath
		}
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		} else {
			cfg.Path = path
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Apply copies the set overrides into cfg and validates the result.
func (cfg Config) Apply(o Overrides) (Config, error) {
	if o.BaseURL != nil {
		cfg.BaseURL = *o.BaseURL
	}
	if o.Timeout != nil {
		cfg.Timeout = *o.Timeout
	}
	if o.LogLevel != nil {
		cfg.LogLevel = *o.LogLevel
	}
	if o.LogFile != nil {
		cfg.LogFile = *o.LogFile
	}
	return cfg, cfg.Validate()
}

func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return errors.New("base_url must not be empty")
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("base_url %q must be an absolute http(s) URL", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %s", cfg.Timeout)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a configured level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q (use debug, info, warn or error)", name)
	}
}

// DefaultPath is <user config dir>/cinema-booking-cli/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, "config.yaml"), nil
}

// DefaultLogFile is <user cache dir>/cinema-booking-cli/client.log.
func DefaultLogFile() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, "client.log"), nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// loadDotEnv exports variables from a .env file without overriding the
// environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %q", EnvTimeout, v)
		}
		cfg.Timeout = time.Duration(secs) * time.Second
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.LogFile = v
	}
	return nil
}
