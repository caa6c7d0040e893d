package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envFile = ".env"

// Config holds one run's configuration, read from the environment.
type Config struct {
	GitHub  GitHubConfig  `mapstructure:"github"`
	Gist    GistConfig    `mapstructure:"gist"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// GitHubConfig selects the repository to survey and how to reach it.
type GitHubConfig struct {
	RepoOwner string `mapstructure:"repo_owner"`
	RepoName  string `mapstructure:"repo_name"`
	Token     string `mapstructure:"token"`
	APIURL    string `mapstructure:"api_url"`
}

// GistConfig selects where the report is published. An empty ID means a new
// gist is created; a set ID means that gist is updated in place.
type GistConfig struct {
	ID     string `mapstructure:"id"`
	Token  string `mapstructure:"token"`
	APIURL string `mapstructure:"api_url"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// SlogLevel maps the configured level name onto a slog level.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.GitHub.RepoOwner == "" || c.GitHub.RepoName == "" {
		return errors.New("github.repo_owner and github.repo_name are required")
	}
	if c.GitHub.Token == "" {
		return errors.New("github.token is required")
	}
	return nil
}

// NewConfig loads configuration from environment using viper with typed
// defaults and validation. A .env file in the working directory seeds
// variables that are not already set.
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

	// The sink credential may differ from the source credential, but one
	// token with gist scope covers both.
	if cfg.Gist.Token == "" {
		cfg.Gist.Token = cfg.GitHub.Token
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")

	v.SetDefault("github.repo_owner", "awslabs")
	v.SetDefault("github.repo_name", "aws-athena-query-federation")
	v.SetDefault("github.api_url", "https://api.github.com")

	v.SetDefault("gist.api_url", "https://api.github.com")
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"logging.level",
		"github.repo_owner",
		"github.repo_name",
		"github.token",
		"github.api_url",
		"gist.id",
		"gist.token",
		"gist.api_url",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}
