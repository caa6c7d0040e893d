package main

import (
	"log/slog"
	"testing"
)

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("GITHUB_REPO_OWNER", "acme")
	t.Setenv("GITHUB_REPO_NAME", "widgets")
	t.Setenv("GITHUB_TOKEN", "source-token")
	t.Setenv("GIST_ID", "abc123")
	t.Setenv("GIST_TOKEN", "")
	t.Setenv("LOGGING_LEVEL", "warn")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.GitHub.RepoOwner != "acme" {
		t.Errorf("Expected repo owner acme, got %q", cfg.GitHub.RepoOwner)
	}
	if cfg.GitHub.RepoName != "widgets" {
		t.Errorf("Expected repo name widgets, got %q", cfg.GitHub.RepoName)
	}
	if cfg.Gist.ID != "abc123" {
		t.Errorf("Expected gist id abc123, got %q", cfg.Gist.ID)
	}
	if cfg.Gist.Token != "source-token" {
		t.Errorf("Expected sink token to fall back to source token, got %q", cfg.Gist.Token)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected logging level warn, got %q", cfg.Logging.Level)
	}
}

func TestNewConfigSinkTokenOverride(t *testing.T) {
	t.Setenv("GITHUB_REPO_OWNER", "acme")
	t.Setenv("GITHUB_REPO_NAME", "widgets")
	t.Setenv("GITHUB_TOKEN", "source-token")
	t.Setenv("GIST_TOKEN", "sink-token")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Gist.Token != "sink-token" {
		t.Errorf("Expected dedicated sink token, got %q", cfg.Gist.Token)
	}
}

func TestNewConfigRequiresToken(t *testing.T) {
	t.Setenv("GITHUB_REPO_OWNER", "acme")
	t.Setenv("GITHUB_REPO_NAME", "widgets")
	t.Setenv("GITHUB_TOKEN", "")

	if _, err := NewConfig(); err == nil {
		t.Error("Expected an error for a missing source token")
	}
}

func TestLoggingConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "info", want: slog.LevelInfo},
		{level: "WARN", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
		{level: "", want: slog.LevelInfo},
		{level: "bogus", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := LoggingConfig{Level: tt.level}
			if got := cfg.SlogLevel(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
