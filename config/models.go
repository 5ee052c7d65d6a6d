package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	GitHub  GitHubConfig  `mapstructure:"github"`
	Server  ServerConfig  `mapstructure:"server"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// GitHubConfig identifies the repository under analysis and the access token
// passed through to the API.
type GitHubConfig struct {
	Token      string `mapstructure:"token"`
	Owner      string `mapstructure:"owner"`
	Repo       string `mapstructure:"repo"`
	WindowDays int    `mapstructure:"window_days"`
	// API selects the fetch client, "rest" or "graphql".
	API string `mapstructure:"api"`
}

// ServerConfig contains HTTP server options.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HTTPConfig contains transport settings.
type HTTPConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.GitHub.Token == "" {
		return errors.New("github.token is required (set GITHUB_TOKEN)")
	}
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		return errors.New("repository is required (set GITHUB_REPOSITORY=owner/repo, or GITHUB_OWNER and GITHUB_REPO)")
	}
	if strings.Contains(c.GitHub.Owner, "/") || strings.Contains(c.GitHub.Repo, "/") {
		return fmt.Errorf("invalid repository %q: expected owner/repo", c.Repository())
	}
	if c.Server.Port == 0 {
		return errors.New("server.port is required")
	}
	if c.GitHub.WindowDays < 1 {
		return errors.New("github.window_days must be at least 1")
	}
	if c.GitHub.API != "rest" && c.GitHub.API != "graphql" {
		return fmt.Errorf("github.api must be \"rest\" or \"graphql\", got %q", c.GitHub.API)
	}
	return nil
}

// Repository returns the owner/name form of the configured repository.
func (c Config) Repository() string {
	return fmt.Sprintf("%s/%s", c.GitHub.Owner, c.GitHub.Repo)
}

/// ServerAddr returns host:port for HTTP server binding.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DefaultWindow returns the analysis window ending now and spanning the
// configured number of days.
func (c Config) DefaultWindow(now time.Time) Window {
	return Window{Start: now.AddDate(0, 0, -c.GitHub.WindowDays), End: now}
}

// TokenLooksValid reports whether a token has a plausible personal access
// token shape. An odd shape is worth a warning, not a refusal.
func TokenLooksValid(token string) bool {
	if strings.HasPrefix(token, "ghp_") || strings.HasPrefix(token, "github_pat_") {
		return true
	}
	return len(token) >= 20
}

// SplitRepository parses a repository string in the format "owner/name".
func SplitRepository(repo string) (string, string, error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format, expected 'owner/name', got %q", repo)
	}
	return parts[0], parts[1], nil
}

// Window is a date range constrained to start ≤ end with a span of at least
// one day.
type Window struct {
	Start time.Time
	End   time.Time
}

// ErrBadWindow signals an invalid date range.
var ErrBadWindow = errors.New("invalid date window")

// Validate enforces the window constraints.
func (w Window) Validate() error {
	if w.Start.After(w.End) {
		return fmt.Errorf("%w: start must not be after end", ErrBadWindow)
	}
	if w.End.Sub(w.Start) < 24*time.Hour {
		return fmt.Errorf("%w: span must be at least 1 day", ErrBadWindow)
	}
	return nil
}

// Key renders the window for use in cache keys and logs.
func (w Window) Key() string {
	return fmt.Sprintf("%s..%s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}
