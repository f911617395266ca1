// Package config handles configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	appName   = "stretchres"
	envPrefix = "STRETCHRES"
)

// Config represents the application configuration
type Config struct {
	Display DisplayConfig `mapstructure:"display"`
	Prompt  PromptConfig  `mapstructure:"prompt"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// DisplayConfig controls backend selection and how changes are applied
type DisplayConfig struct {
	Backend     string `mapstructure:"backend"`      // auto, windows, x11, wlr-randr
	MaxDisplays int    `mapstructure:"max_displays"` // highest display number the prompt accepts
	Persist     bool   `mapstructure:"persist"`      // store changes in the OS configuration

	// Re-apply an empty mode when the pre-change mode could not be read
	RevertWithoutSnapshot bool `mapstructure:"revert_without_snapshot"`
}

// PromptConfig contains interactive loop settings
type PromptConfig struct {
	QuitToken string `mapstructure:"quit_token"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Display: DisplayConfig{
			Backend:     "auto",
			MaxDisplays: 3,
			Persist:     true,
		},
		Prompt: PromptConfig{
			QuitToken: "q",
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName(appName)
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		// Add config paths in order of precedence
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, appName))
		viper.AddConfigPath(".")
	}

	// STRETCHRES_DISPLAY_BACKEND overrides display.backend, and so on
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit --config path that does not exist yet behaves like no file
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c

	return nil
}

func setDefaults() {
	viper.SetDefault("display.backend", DefaultConfig.Display.Backend)
	viper.SetDefault("display.max_displays", DefaultConfig.Display.MaxDisplays)
	viper.SetDefault("display.persist", DefaultConfig.Display.Persist)
	viper.SetDefault("display.revert_without_snapshot", DefaultConfig.Display.RevertWithoutSnapshot)

	viper.SetDefault("prompt.quit_token", DefaultConfig.Prompt.QuitToken)

	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)
}

// Validate rejects settings the prompt and backends cannot work with
func (c *Config) Validate() error {
	if c.Display.MaxDisplays < 1 {
		return fmt.Errorf("display.max_displays must be at least 1, got %d", c.Display.MaxDisplays)
	}
	token := strings.TrimSpace(c.Prompt.QuitToken)
	if token == "" {
		return fmt.Errorf("prompt.quit_token must not be empty")
	}
	if strings.IndexFunc(token, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0 {
		return fmt.Errorf("prompt.quit_token %q must not contain digits", token)
	}
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		d := DefaultConfig
		return &d
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save writes the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Make sure every key is written even when only defaults are loaded
	setDefaults()

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	return filepath.Join(xdg.ConfigHome, appName, appName+".toml")
}
