package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TODOKEEPER_STORAGE_PATH.
const EnvPrefix = "TODOKEEPER"

// StorageConfig locates the database file.
type StorageConfig struct {
	// Path is the SQLite database file. ":memory:" keeps everything in RAM.
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	DarkMode      bool   `mapstructure:"dark_mode" yaml:"dark_mode"`
	DefaultSort   string `mapstructure:"default_sort" yaml:"default_sort"`
	DefaultFilter string `mapstructure:"default_filter" yaml:"default_filter"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// underHome joins elem onto the user's home directory, or onto "." when
// there is none.
func underHome(elem ...string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(append([]string{home}, elem...)...)
}

// DefaultConfigPath returns ~/.config/todokeeper/config.yaml.
func DefaultConfigPath() string {
	return underHome(".config", "todokeeper", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{
			Path: underHome(".local", "share", "todokeeper", "todokeeper.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   underHome(".local", "state", "todokeeper", "todokeeper.log"),
		},
		Display: DisplayConfig{
			DarkMode:      false,
			DefaultSort:   "createdAt",
			DefaultFilter: "all",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("display.dark_mode", d.Display.DarkMode)
	v.SetDefault("display.default_sort", d.Display.DefaultSort)
	v.SetDefault("display.default_filter", d.Display.DefaultFilter)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file yields the defaults. Environment variables prefixed with
// TODOKEEPER_ override file values.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage.path", cfg.Storage.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.file", cfg.Log.File)
	v.Set("display.dark_mode", cfg.Display.DarkMode)
	v.Set("display.default_sort", cfg.Display.DefaultSort)
	v.Set("display.default_filter", cfg.Display.DefaultFilter)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
