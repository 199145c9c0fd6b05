package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type FallbackConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Enabled bool   `mapstructure:"enabled"`
}

type SearchConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
}

type Config struct {
	// DataDir holds the persisted normalized dataset (records, partitions,
	// search projection, examples).
	DataDir string `mapstructure:"data_dir"`
	// DocsDir holds the extracted raw documentation pages, addressed by
	// each record's source page path.
	DocsDir string `mapstructure:"docs_dir"`

	Fallback FallbackConfig `mapstructure:"fallback"`
	Search   SearchConfig   `mapstructure:"search"`
}

// dataBase returns the base data directory for tekladoc.
// Checks XDG_DATA_HOME, then ~/.local/share, then /tmp/tekladoc as fallback.
func dataBase() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "tekladoc")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "tekladoc")
	}
	return filepath.Join(os.TempDir(), "tekladoc")
}

func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "tekladoc")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "tekladoc")
	}
	return filepath.Join(os.TempDir(), "tekladoc")
}

// PageCacheDir returns the directory for the compressed remote page cache.
func PageCacheDir() string {
	return filepath.Join(cacheBase(), "pages")
}

// LogPath returns the path to the server's log file.
func LogPath() string {
	return filepath.Join(cacheBase(), "tekladoc.log")
}

func InitializeViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "tekladoc"))
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "tekladoc"))
	}

	viper.SetDefault("data_dir", filepath.Join(dataBase(), "data"))
	viper.SetDefault("docs_dir", filepath.Join(dataBase(), "docs"))
	viper.SetDefault("fallback.base_url", "https://developer.tekla.com")
	viper.SetDefault("fallback.enabled", true)
	viper.SetDefault("search.default_limit", 10)

	viper.SetEnvPrefix("TEKLADOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

func Load() (*Config, error) {
	if err := InitializeViper(); err != nil {
		return nil, err
	}

	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
