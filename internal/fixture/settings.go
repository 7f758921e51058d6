package fixture

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/storefront/internal/config"
)

const (
	// DefaultReadTimeout guards hung clients.
	DefaultReadTimeout = 15 * time.Second
	// DefaultWriteTimeout bounds handler writes.
	DefaultWriteTimeout = 15 * time.Second
	// DefaultIdleTimeout bounds keep-alive connections.
	DefaultIdleTimeout = 60 * time.Second
)

// Settings captures runtime configuration for the fixture server.
type Settings struct {
	Host         string
	Port         int
	FixturePath  string
	FailMenu     bool
	FailVenue    bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SettingsFromConfig builds Settings from the storefront config and
// STOREFRONT_FIXTURE_* environment overrides.
func SettingsFromConfig(cfg *config.Config) Settings {
	settings := Settings{
		Host:         config.DefaultFixtureHost,
		Port:         config.DefaultFixturePort,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}
	if cfg != nil {
		raw := cfg.Project.Fixture
		if host := strings.TrimSpace(raw.Host); host != "" {
			settings.Host = host
		}
		if isValidPort(raw.Port) {
			settings.Port = raw.Port
		}
		settings.FixturePath = cfg.FixturePath()
	}
	settings.applyEnvOverrides()
	settings.normalize()
	return settings
}

func (s *Settings) applyEnvOverrides() {
	if host := strings.TrimSpace(os.Getenv("STOREFRONT_FIXTURE_HOST")); host != "" {
		s.Host = host
	}
	if port := strings.TrimSpace(os.Getenv("STOREFRONT_FIXTURE_PORT")); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil && (parsed == 0 || isValidPort(parsed)) {
			s.Port = parsed
		}
	}
	if path := strings.TrimSpace(os.Getenv("STOREFRONT_FIXTURE_PATH")); path != "" {
		s.FixturePath = path
	}
	// STOREFRONT_FIXTURE_FAIL=menu,venue makes those endpoints answer 503.
	for _, part := range strings.Split(os.Getenv("STOREFRONT_FIXTURE_FAIL"), ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "menu":
			s.FailMenu = true
		case "venue":
			s.FailVenue = true
		}
	}
}

func (s *Settings) normalize() {
	s.Host = strings.TrimSpace(s.Host)
	if s.Host == "" {
		s.Host = config.DefaultFixtureHost
	}
	if s.Port != 0 && !isValidPort(s.Port) {
		s.Port = config.DefaultFixturePort
	}
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
}

// Address returns the TCP bind address in host:port form.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL returns the HTTP base URL for the server.
func (s Settings) URL() string {
	return "http://" + s.Address()
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}
