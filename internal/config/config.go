// internal/config/config.go
//
// This package handles configuration and the .storefront directory.
// Every directory the storefront runs from gets a .storefront/ folder holding
// config.yaml, the session log and (optionally) a fixture menu.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// StorefrontDir is the name of the directory created in the working directory.
	StorefrontDir = ".storefront"

	DefaultBaseURL        = "http://127.0.0.1:8080"
	DefaultVenueID        = "9"
	DefaultTimeout        = 15 * time.Second
	DefaultCurrencySymbol = "$"
	DefaultLogLines       = 6
	DefaultFixtureHost    = "127.0.0.1"
	DefaultFixturePort    = 8080
)

const defaultConfigYAML = `# storefront configuration
version: 1

# Catalog API. The menu is read from <base_url>/challenge/menu and the banner
# from <base_url>/challenge/venue/<venue_id>.
api:
  base_url: http://127.0.0.1:8080
  venue_id: "9"
  timeout: 15s

display:
  currency_symbol: "$"
  log_lines: 6

# Local fixture backend (storefront-fixture). Leave path empty to serve the
# bundled sample menu.
fixture:
  host: 127.0.0.1
  port: 8080
  # path: fixtures/menu.yaml
`

// APIConfig locates the catalog endpoints.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	VenueID string        `yaml:"venue_id"`
	Timeout time.Duration `yaml:"timeout"`
}

// DisplayConfig holds presentation preferences.
type DisplayConfig struct {
	CurrencySymbol string `yaml:"currency_symbol"`
	LogLines       int    `yaml:"log_lines"`
}

// FixtureConfig configures the local fixture backend.
type FixtureConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Path string `yaml:"path,omitempty"`
}

// ProjectConfig models .storefront/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version"`
	API     APIConfig     `yaml:"api"`
	Display DisplayConfig `yaml:"display"`
	Fixture FixtureConfig `yaml:"fixture"`
}

// Config holds the runtime configuration.
type Config struct {
	// ProjectDir is the directory the storefront was started from
	ProjectDir string

	// StorefrontProjectDir is ProjectDir/.storefront
	StorefrontProjectDir string

	Project ProjectConfig
}

// InitDir creates the .storefront directory structure and a default
// config.yaml if none exists.
//
// .storefront/
// ├── config.yaml
// ├── logs/       <- session.log, fixture.log
// └── fixtures/   <- optional fixture menus
func InitDir(projectDir string) error {
	root := filepath.Join(projectDir, StorefrontDir)
	for _, dir := range []string{
		filepath.Join(root, "logs"),
		filepath.Join(root, "fixtures"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	return ensureConfigFile(filepath.Join(root, "config.yaml"))
}

// NewConfig loads .storefront/config.yaml (defaults when absent) and applies
// STOREFRONT_* environment overrides.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:           projectDir,
		StorefrontProjectDir: filepath.Join(projectDir, StorefrontDir),
		Project:              defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.Project.applyEnvOverrides()
	cfg.Project.normalize(cfg.StorefrontProjectDir)
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ConfigPath returns the on-disk location of config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.StorefrontProjectDir, "config.yaml")
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.StorefrontProjectDir, "logs")
}

// SessionLogPath is the logbook tailed by the TUI.
func (c *Config) SessionLogPath() string {
	return filepath.Join(c.LogsDir(), "session.log")
}

// FixturePath returns the configured fixture file, or "" for the bundled one.
func (c *Config) FixturePath() string {
	return c.Project.Fixture.Path
}

// BaseURL returns the catalog API base URL.
func (c *Config) BaseURL() string {
	return c.Project.API.BaseURL
}

// VenueID returns the configured venue identifier.
func (c *Config) VenueID() string {
	return c.Project.API.VenueID
}

// Timeout returns the per-request catalog timeout.
func (c *Config) Timeout() time.Duration {
	return c.Project.API.Timeout
}

// CurrencySymbol returns the symbol prefixed to prices.
func (c *Config) CurrencySymbol() string {
	return c.Project.Display.CurrencySymbol
}

// LogLines returns how many logbook lines the TUI shows.
func (c *Config) LogLines() int {
	return c.Project.Display.LogLines
}

// Override applies command-line values on top of file and environment
// settings. Empty values are ignored.
func (c *Config) Override(baseURL, venueID string) error {
	if v := strings.TrimSpace(baseURL); v != "" {
		c.Project.API.BaseURL = v
	}
	if v := strings.TrimSpace(venueID); v != "" {
		c.Project.API.VenueID = v
	}
	c.Project.normalize(c.StorefrontProjectDir)
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) loadProjectConfig() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			VenueID: DefaultVenueID,
			Timeout: DefaultTimeout,
		},
		Display: DisplayConfig{
			CurrencySymbol: DefaultCurrencySymbol,
			LogLines:       DefaultLogLines,
		},
		Fixture: FixtureConfig{
			Host: DefaultFixtureHost,
			Port: DefaultFixturePort,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.API.BaseURL) == "" {
		pc.API.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(pc.API.VenueID) == "" {
		pc.API.VenueID = DefaultVenueID
	}
	if pc.API.Timeout == 0 {
		pc.API.Timeout = DefaultTimeout
	}
	if pc.Display.CurrencySymbol == "" {
		pc.Display.CurrencySymbol = DefaultCurrencySymbol
	}
	if pc.Display.LogLines == 0 {
		pc.Display.LogLines = DefaultLogLines
	}
	if strings.TrimSpace(pc.Fixture.Host) == "" {
		pc.Fixture.Host = DefaultFixtureHost
	}
}

func (pc *ProjectConfig) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("STOREFRONT_API_URL")); v != "" {
		pc.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("STOREFRONT_VENUE_ID")); v != "" {
		pc.API.VenueID = v
	}
	if v := strings.TrimSpace(os.Getenv("STOREFRONT_API_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			pc.API.Timeout = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("STOREFRONT_LOG_LINES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			pc.Display.LogLines = n
		}
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.API.BaseURL = strings.TrimRight(strings.TrimSpace(pc.API.BaseURL), "/")
	pc.API.VenueID = strings.TrimSpace(pc.API.VenueID)
	pc.Display.CurrencySymbol = strings.TrimSpace(pc.Display.CurrencySymbol)
	pc.Fixture.Host = strings.TrimSpace(pc.Fixture.Host)
	pc.Fixture.Path = resolvePath(base, pc.Fixture.Path)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	parsed, err := url.Parse(pc.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", pc.API.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("api.base_url must include a host")
	}
	if pc.API.VenueID == "" {
		return fmt.Errorf("api.venue_id is required")
	}
	if pc.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if pc.Display.LogLines < 0 {
		return fmt.Errorf("display.log_lines must not be negative")
	}
	if pc.Fixture.Port < 0 || pc.Fixture.Port > 65535 {
		return fmt.Errorf("fixture.port must be between 0 and 65535")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
