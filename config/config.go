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

const envFile = "config/.env"

// NewConfig loads configuration from environment using viper with typed defaults and validation.
func NewConfig() (*Config, error) {
	v := viper.New()
	if envMap, err := godotenv.Read(envFile); err == nil {
		for k, val := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, val)
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "debug")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("github.token", "")
	v.SetDefault("github.owner", "")
	v.SetDefault("github.repos", "")
	v.SetDefault("github.usernames", "")

	v.SetDefault("approval.strict", false)
	v.SetDefault("fetch.concurrency", 4)

	v.SetDefault("cache.ttl", 5*time.Second)
	v.SetDefault("cache.max_entries", 64)
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"logging.level",
		"server.host",
		"server.port",
		"server.shutdown_timeout",
		"github.token",
		"github.owner",
		"github.repos",
		"github.usernames",
		"approval.strict",
		"fetch.concurrency",
		"cache.ttl",
		"cache.max_entries",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}
