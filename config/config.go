// Package config loads the demo's settings and the preference lists handed to
// presentkit from TOML and PRESENTKIT_* environment variables.
package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "PRESENTKIT"

type Config struct {
	Window     WindowConfig     `mapstructure:"window"`
	Validation ValidationConfig `mapstructure:"validation"`

	InstanceExtensions []string `mapstructure:"instance_extensions"`
	DeviceExtensions   []string `mapstructure:"device_extensions"`

	// Ranked lists, best first. Empty lists select the built-in defaults.
	SurfaceFormats []string `mapstructure:"surface_formats"`
	ColorSpaces    []string `mapstructure:"color_spaces"`
	CompositeAlpha []string `mapstructure:"composite_alpha"`
	DepthFormats   []string `mapstructure:"depth_formats"`

	// PresentMode is "synced", "unsynced", or "explicit". PresentModes is
	// only read for "explicit".
	PresentMode  string   `mapstructure:"present_mode"`
	PresentModes []string `mapstructure:"present_modes"`

	Swapchain SwapchainConfig `mapstructure:"swapchain"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

type ValidationConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Layers  []string `mapstructure:"layers"`
}

type SwapchainConfig struct {
	PreferredImageCount int `mapstructure:"preferred_image_count"`
	MaxImageCount       int `mapstructure:"max_image_count"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  800,
			Height: 600,
			Title:  "presentkit",
		},
		PresentMode: "synced",
		Swapchain: SwapchainConfig{
			MaxImageCount: 8,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path, if it exists, on top of the defaults, applies environment
// overrides, and validates the result. An empty path reads nothing.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, errors.Wrapf(err, "read config file %s", path)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config file %s", v.ConfigFileUsed())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Every key needs a default so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("window.width", defaults.Window.Width)
	v.SetDefault("window.height", defaults.Window.Height)
	v.SetDefault("window.title", defaults.Window.Title)

	v.SetDefault("validation.enabled", defaults.Validation.Enabled)
	v.SetDefault("validation.layers", []string{})

	v.SetDefault("instance_extensions", []string{})
	v.SetDefault("device_extensions", []string{})
	v.SetDefault("surface_formats", []string{})
	v.SetDefault("color_spaces", []string{})
	v.SetDefault("composite_alpha", []string{})
	v.SetDefault("depth_formats", []string{})

	v.SetDefault("present_mode", defaults.PresentMode)
	v.SetDefault("present_modes", []string{})

	v.SetDefault("swapchain.preferred_image_count", defaults.Swapchain.PreferredImageCount)
	v.SetDefault("swapchain.max_image_count", defaults.Swapchain.MaxImageCount)

	v.SetDefault("logging.level", defaults.Logging.Level)
}

// Validate checks ranges and that every enum name is known.
func (c *Config) Validate() error {
	var problems []string

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		problems = append(problems, "window.width and window.height must be positive")
	}
	if c.Swapchain.PreferredImageCount < 0 {
		problems = append(problems, "swapchain.preferred_image_count must be non-negative")
	}
	if c.Swapchain.MaxImageCount < 0 {
		problems = append(problems, "swapchain.max_image_count must be non-negative")
	}
	if c.Swapchain.MaxImageCount > 0 && c.Swapchain.PreferredImageCount > c.Swapchain.MaxImageCount {
		problems = append(problems, "swapchain.preferred_image_count must not exceed swapchain.max_image_count")
	}

	if _, err := c.PresentModePreference(); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := c.SurfaceFormatList(); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := c.ColorSpaceList(); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := c.CompositeAlphaList(); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := c.DepthFormatList(); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := c.LogLevel(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return errors.Newf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ValidationLayers returns the configured layers, or nil for the defaults.
func (c *Config) ValidationLayers() []string {
	return nilIfEmpty(c.Validation.Layers)
}

// InstanceExtensionList returns the configured instance extensions, or nil
// for the defaults.
func (c *Config) InstanceExtensionList() []string {
	return nilIfEmpty(c.InstanceExtensions)
}

// DeviceExtensionList returns the configured device extensions, or nil for
// the defaults.
func (c *Config) DeviceExtensionList() []string {
	return nilIfEmpty(c.DeviceExtensions)
}

func nilIfEmpty(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	return list
}
