package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	GitHub   GitHubConfig   `mapstructure:"github"`
	Approval ApprovalConfig `mapstructure:"approval"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.GitHub.Owner == "" {
		return errors.New("github.owner is required")
	}
	if len(c.GitHub.RepoList()) == 0 {
		return errors.New("github.repos is required")
	}
	if c.Server.Port == 0 {
		return errors.New("server.port is required")
	}
	return nil
}

// ServerAddr returns host:port for HTTP server binding.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GitHubConfig describes the upstream API: credential, repository set and
// the tracked usernames. Repos and Usernames are comma-separated lists.
// An empty token degrades to unauthenticated rate limits; an empty username
// list is valid and yields no issues.
type GitHubConfig struct {
	Token     string `mapstructure:"token"`
	Owner     string `mapstructure:"owner"`
	Repos     string `mapstructure:"repos"`
	Usernames string `mapstructure:"usernames"`
}

// RepoList returns the configured repositories, trimmed, empties dropped.
func (g GitHubConfig) RepoList() []string {
	return splitCSV(g.Repos)
}

// UsernameList returns the tracked usernames, trimmed, empties dropped.
func (g GitHubConfig) UsernameList() []string {
	return splitCSV(g.Usernames)
}

// ApprovalConfig selects the comment approval detection strategy.
// Strict switches from substring to whole-word matching.
type ApprovalConfig struct {
	Strict bool `mapstructure:"strict"`
}

// FetchConfig bounds the per-username fan-out.
type FetchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// CacheConfig sets the freshness window and size bound of the issue cache.
type CacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// ServerConfig contains HTTP server options.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
