package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/bedrock-up/internal/domain/release"
	"github.com/oshokin/bedrock-up/internal/logger"
	"github.com/oshokin/bedrock-up/internal/repository/cache"
)

// Config holds the settings of an update run.
type Config struct {
	// DownloadType is the command line name of the tracked build (e.g. "linux").
	DownloadType string `yaml:"download_type"`
	// ServerPath is the installation directory the archive is applied to.
	ServerPath string `yaml:"server_path"`
	// CachePath is the file holding the catalog of the last applied update.
	CachePath string `yaml:"cache_path"`
	// Exclude lists relative paths preserved when they already exist.
	// A missing key means the defaults, an empty list means no exclusions.
	Exclude []string `yaml:"exclude"`
	// ManifestURL is the download catalog endpoint.
	ManifestURL string `yaml:"manifest_url"`
	// Timeout bounds every HTTP request. Zero disables the timeout.
	Timeout time.Duration `yaml:"timeout"`
	// Retries is how many times a failed catalog request is retried.
	Retries int `yaml:"retries"`
	// LogLevel is the minimum level of printed messages.
	LogLevel string `yaml:"log_level"`
	// StopServer kills a running dedicated server before the archive is applied.
	StopServer bool `yaml:"stop_server"`
	// Force applies the update even if the cached version matches. Never persisted.
	Force bool `yaml:"-"`
}

const (
	// DefaultManifestURL is the public catalog of dedicated server downloads.
	DefaultManifestURL = "https://net-secondary.web.minecraft-services.net/api/v1.0/download/links"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// maxRetries caps the retry count to keep a run bounded.
	maxRetries = 10
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerPathRequired is returned when the installation directory is missing.
	errServerPathRequired = errors.New("server path must be provided")
	// errDownloadTypeRequired is returned when the tracked build is missing.
	errDownloadTypeRequired = errors.New("download type must be provided")
	// errInvalidRetries is returned for a retry count out of range.
	errInvalidRetries = errors.New("retries out of range")
	// errInvalidLogLevel is returned for an unknown log level.
	errInvalidLogLevel = errors.New("invalid log level")
	// errInvalidTimeout is returned for a negative timeout.
	errInvalidTimeout = errors.New("timeout must not be negative")
)

// Default returns settings with every optional field filled in.
func Default() *Config {
	return &Config{
		CachePath:   cache.DefaultPath,
		Exclude:     slices.Clone(release.DefaultExclusions),
		ManifestURL: DefaultManifestURL,
		LogLevel:    DefaultLogLevel,
	}
}

// Load reads settings from path on top of the defaults.
// Fields are not validated here; call Validate once flags are merged in.
func Load(path string) (*Config, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	return cfg, nil
}

// Save writes settings to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// filling defaults for empty optional fields.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if strings.TrimSpace(settings.DownloadType) == "" {
		return errDownloadTypeRequired
	}

	if _, err := release.ParseDownloadType(settings.DownloadType); err != nil {
		return err
	}

	if strings.TrimSpace(settings.ServerPath) == "" {
		return errServerPathRequired
	}

	if settings.CachePath == "" {
		settings.CachePath = cache.DefaultPath
	}

	if settings.Exclude == nil {
		settings.Exclude = slices.Clone(release.DefaultExclusions)
	}

	if settings.ManifestURL == "" {
		settings.ManifestURL = DefaultManifestURL
	}

	if _, err := url.ParseRequestURI(settings.ManifestURL); err != nil {
		return fmt.Errorf("invalid manifest URL: %w", err)
	}

	if settings.Timeout < 0 {
		return errInvalidTimeout
	}

	if settings.Retries < 0 || settings.Retries > maxRetries {
		return fmt.Errorf("%d: %w (0..%d)", settings.Retries, errInvalidRetries, maxRetries)
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%q: %w", settings.LogLevel, errInvalidLogLevel)
	}

	return nil
}
