package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Values are loaded by Viper from a config file and/or environment variables.
type Config struct {
	TwitchClientID     string `mapstructure:"TWITCH_CLIENT_ID"`
	TwitchClientSecret string `mapstructure:"TWITCH_CLIENT_SECRET"`

	QbitHost     string `mapstructure:"QBITTORRENT_HOST"`
	QbitUser     string `mapstructure:"QBITTORRENT_USER"`
	QbitPass     string `mapstructure:"QBITTORRENT_PASS"`
	QbitCategory string `mapstructure:"QBITTORRENT_CATEGORY"`

	RedditClientID     string `mapstructure:"REDDIT_CLIENT_ID"`
	RedditClientSecret string `mapstructure:"REDDIT_CLIENT_SECRET"`
	RedditUsername     string `mapstructure:"REDDIT_USERNAME"`
	RedditPassword     string `mapstructure:"REDDIT_PASSWORD"`

	LibraryPath   string `mapstructure:"LIBRARY_PATH"`
	DownloadsPath string `mapstructure:"DOWNLOADS_PATH"`
	DataDir       string `mapstructure:"DATA_DIR"`

	FitGirlFeedURL string `mapstructure:"FITGIRL_FEED_URL"`
	UserAgent      string `mapstructure:"USERAGENT"`

	DatabasePath string `mapstructure:"-"` // Not from env, derived
	NfoDir       string `mapstructure:"-"` // Not from env, derived
}

var envKeys = []string{
	"TWITCH_CLIENT_ID", "TWITCH_CLIENT_SECRET",
	"QBITTORRENT_HOST", "QBITTORRENT_USER", "QBITTORRENT_PASS", "QBITTORRENT_CATEGORY",
	"REDDIT_CLIENT_ID", "REDDIT_CLIENT_SECRET", "REDDIT_USERNAME", "REDDIT_PASSWORD",
	"LIBRARY_PATH", "DOWNLOADS_PATH", "DATA_DIR", "FITGIRL_FEED_URL", "USERAGENT",
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)   // Path to look for the config file in
	viper.SetConfigName(".env") // Name of config file (without extension)
	viper.SetConfigType("env")  // REQUIRED if the config file does not have the extension in the name

	vipErr := viper.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		slog.Info("Config file (.env) not found, relying on environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	// Bind environment variables automatically.
	// Viper will check for an environment variable matching the key name (e.g., TWITCH_CLIENT_ID)
	viper.AutomaticEnv()

	for _, key := range envKeys {
		if bindErr := viper.BindEnv(key); bindErr != nil {
			slog.Warn("Unable to bind env var", "key", key, "error", bindErr)
		}
	}

	// Unmarshal the config
	if vipErr = viper.Unmarshal(&config); vipErr != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", vipErr)
	}

	processConfigDefaults(&config)

	if err := validateAndEnsureDirectories(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

// processConfigDefaults fills in defaults for optional settings.
func processConfigDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	if cfg.FitGirlFeedURL == "" {
		cfg.FitGirlFeedURL = "https://fitgirl-repacks.site/feed/"
	}
	if cfg.QbitCategory == "" {
		cfg.QbitCategory = "gamearr"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "gamearr/dev (unknown-user)"
		slog.Warn("USERAGENT not set in config or environment, using default.")
	}
}

// validateAndEnsureDirectories checks required paths and creates derived directories.
func validateAndEnsureDirectories(cfg *Config) error {
	if cfg.LibraryPath == "" {
		slog.Error("LIBRARY_PATH is not set")
		return fmt.Errorf("LIBRARY_PATH is required")
	}
	if cfg.DownloadsPath == "" {
		cfg.DownloadsPath = filepath.Join(cfg.LibraryPath, "_downloads")
	}

	for _, dir := range []string{cfg.DataDir, cfg.LibraryPath, cfg.DownloadsPath} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			slog.Info("Directory does not exist, creating it", "path", dir)
			if err := os.MkdirAll(dir, 0755); err != nil {
				slog.Error("Failed to create directory", "path", dir, "error", err)
				return err
			}
		} else if err != nil {
			slog.Error("Failed to check directory", "path", dir, "error", err)
			return err
		}
	}

	// Derive storage paths (keep them next to the database for portability)
	cfg.DatabasePath = filepath.Join(cfg.DataDir, "gamearr.db")
	cfg.NfoDir = filepath.Join(cfg.DataDir, "nfo_storage")
	if err := os.MkdirAll(cfg.NfoDir, 0755); err != nil {
		slog.Error("Failed to create NFO storage directory", "path", cfg.NfoDir, "error", err)
		return err
	}

	return nil
}

// RedditConfigured reports whether all Reddit credentials are present.
// An unconfigured source is treated as disabled, not as an error.
func (c Config) RedditConfigured() bool {
	return c.RedditClientID != "" && c.RedditClientSecret != "" &&
		c.RedditUsername != "" && c.RedditPassword != ""
}

// IGDBConfigured reports whether the Twitch/IGDB credentials are present.
func (c Config) IGDBConfigured() bool {
	return c.TwitchClientID != "" && c.TwitchClientSecret != ""
}
