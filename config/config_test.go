package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestProcessConfigDefaults(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		viper.Reset()
		cfg := Config{}
		processConfigDefaults(&cfg)

		if cfg.DataDir != "." {
			t.Errorf("Expected DataDir to be '.', got %s", cfg.DataDir)
		}
		if cfg.QbitCategory != "gamearr" {
			t.Errorf("Expected QbitCategory to be gamearr, got %s", cfg.QbitCategory)
		}
		if cfg.FitGirlFeedURL == "" {
			t.Error("Expected FitGirlFeedURL to have a default value")
		}
		if cfg.UserAgent == "" {
			t.Error("Expected UserAgent to have a default value")
		}
	})

	t.Run("respects existing values", func(t *testing.T) {
		viper.Reset()
		cfg := Config{
			DataDir:      "/var/lib/gamearr",
			QbitCategory: "pc-games",
			UserAgent:    "custom-agent",
		}
		processConfigDefaults(&cfg)

		if cfg.DataDir != "/var/lib/gamearr" {
			t.Errorf("Expected DataDir to stay /var/lib/gamearr, got %s", cfg.DataDir)
		}
		if cfg.QbitCategory != "pc-games" {
			t.Errorf("Expected QbitCategory to stay pc-games, got %s", cfg.QbitCategory)
		}
		if cfg.UserAgent != "custom-agent" {
			t.Errorf("Expected UserAgent to stay custom-agent, got %s", cfg.UserAgent)
		}
	})
}

func TestValidateAndEnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("missing library path", func(t *testing.T) {
		cfg := Config{LibraryPath: ""}
		err := validateAndEnsureDirectories(&cfg)
		if err == nil {
			t.Error("Expected error for missing LibraryPath")
		}
	})

	t.Run("creates directories and derives paths", func(t *testing.T) {
		cfg := Config{
			DataDir:     filepath.Join(tmpDir, "data"),
			LibraryPath: filepath.Join(tmpDir, "games"),
		}
		err := validateAndEnsureDirectories(&cfg)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if cfg.DownloadsPath != filepath.Join(cfg.LibraryPath, "_downloads") {
			t.Errorf("Unexpected derived DownloadsPath: %s", cfg.DownloadsPath)
		}
		for _, dir := range []string{cfg.DataDir, cfg.LibraryPath, cfg.DownloadsPath, cfg.NfoDir} {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				t.Errorf("Directory %s was not created", dir)
			}
		}
		if cfg.DatabasePath != filepath.Join(cfg.DataDir, "gamearr.db") {
			t.Errorf("Unexpected derived DatabasePath: %s", cfg.DatabasePath)
		}
	})
}

func TestSourceConfiguredHelpers(t *testing.T) {
	cfg := Config{}
	if cfg.RedditConfigured() {
		t.Error("Expected RedditConfigured to be false without credentials")
	}
	if cfg.IGDBConfigured() {
		t.Error("Expected IGDBConfigured to be false without credentials")
	}

	cfg.RedditClientID = "id"
	cfg.RedditClientSecret = "secret"
	cfg.RedditUsername = "user"
	cfg.RedditPassword = "pass"
	if !cfg.RedditConfigured() {
		t.Error("Expected RedditConfigured to be true with full credentials")
	}

	cfg.TwitchClientID = "id"
	cfg.TwitchClientSecret = "secret"
	if !cfg.IGDBConfigured() {
		t.Error("Expected IGDBConfigured to be true with credentials")
	}
}
