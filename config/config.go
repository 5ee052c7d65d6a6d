// Package config loads application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envFile = ".env"

// Environment variables that identify the repository, matching the surface
// the dashboard has always exposed.
const (
	EnvGithubToken      = "GITHUB_TOKEN"
	EnvGithubRepository = "GITHUB_REPOSITORY"
	EnvGithubOwner      = "GITHUB_OWNER"
	EnvGithubRepo       = "GITHUB_REPO"
)

// NewConfig loads configuration from the environment using viper with typed
// defaults and validation. A local .env file is read first; variables already
// present in the process environment win.
func NewConfig() (*Config, error) {
	v := viper.New()
	if envMap, err := godotenv.Read(envFile); err == nil {
		for key, value := range envMap {
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, value)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// GITHUB_REPOSITORY=owner/repo overrides the split owner/repo variables.
	if repo := os.Getenv(EnvGithubRepository); repo != "" {
		owner, name, err := SplitRepository(repo)
		if err != nil {
			return nil, err
		}
		cfg.GitHub.Owner = owner
		cfg.GitHub.Repo = name
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("http.request_timeout", 30*time.Second)

	v.SetDefault("github.window_days", 30)
	v.SetDefault("github.api", "rest")
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"logging.level",
		"server.host",
		"server.port",
		"server.shutdown_timeout",
		"http.request_timeout",
		"github.token",
		"github.owner",
		"github.repo",
		"github.window_days",
		"github.api",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}
