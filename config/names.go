package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/presentkit/prefs"
	"golang.org/x/exp/slog"
)

// Names follow the Vulkan enum suffixes and are matched case-insensitively.
var (
	surfaceFormatNames = map[string]core1_0.Format{
		"R8G8B8A8_UNORM":           core1_0.FormatR8G8B8A8UnsignedNormalized,
		"B8G8R8A8_UNORM":           core1_0.FormatB8G8R8A8UnsignedNormalized,
		"R8G8B8A8_SRGB":            core1_0.FormatR8G8B8A8SRGB,
		"B8G8R8A8_SRGB":            core1_0.FormatB8G8R8A8SRGB,
		"A2B10G10R10_UNORM_PACK32": core1_0.FormatA2B10G10R10UnsignedNormalizedPacked,
		"A2R10G10B10_UNORM_PACK32": core1_0.FormatA2R10G10B10UnsignedNormalizedPacked,
		"R16G16B16A16_SFLOAT":      core1_0.FormatR16G16B16A16SignedFloat,
	}

	colorSpaceNames = map[string]khr_surface.ColorSpace{
		"SRGB_NONLINEAR": khr_surface.ColorSpaceSRGBNonlinear,
	}

	presentModeNames = map[string]khr_surface.PresentMode{
		"IMMEDIATE":    khr_surface.PresentModeImmediate,
		"MAILBOX":      khr_surface.PresentModeMailbox,
		"FIFO":         khr_surface.PresentModeFIFO,
		"FIFO_RELAXED": khr_surface.PresentModeFIFORelaxed,
	}

	compositeAlphaNames = map[string]khr_surface.CompositeAlphaFlags{
		"OPAQUE":          khr_surface.CompositeAlphaOpaque,
		"PRE_MULTIPLIED":  khr_surface.CompositeAlphaPreMultiplied,
		"POST_MULTIPLIED": khr_surface.CompositeAlphaPostMultiplied,
		"INHERIT":         khr_surface.CompositeAlphaInherit,
	}

	depthFormatNames = map[string]core1_0.Format{
		"D16_UNORM":          core1_0.FormatD16UnsignedNormalized,
		"D32_SFLOAT":         core1_0.FormatD32SignedFloat,
		"D16_UNORM_S8_UINT":  core1_0.FormatD16UnsignedNormalizedS8UnsignedInt,
		"D24_UNORM_S8_UINT":  core1_0.FormatD24UnsignedNormalizedS8UnsignedInt,
		"D32_SFLOAT_S8_UINT": core1_0.FormatD32SignedFloatS8UnsignedInt,
	}
)

func lookup[T any](table map[string]T, key string, names []string) ([]T, error) {
	if len(names) == 0 {
		return nil, nil
	}

	values := make([]T, 0, len(names))
	for _, name := range names {
		value, ok := table[strings.ToUpper(strings.TrimSpace(name))]
		if !ok {
			return nil, errors.Newf("%s: unknown name %q", key, name)
		}
		values = append(values, value)
	}
	return values, nil
}

func (c *Config) SurfaceFormatList() ([]core1_0.Format, error) {
	return lookup(surfaceFormatNames, "surface_formats", c.SurfaceFormats)
}

func (c *Config) ColorSpaceList() ([]khr_surface.ColorSpace, error) {
	return lookup(colorSpaceNames, "color_spaces", c.ColorSpaces)
}

func (c *Config) CompositeAlphaList() ([]khr_surface.CompositeAlphaFlags, error) {
	return lookup(compositeAlphaNames, "composite_alpha", c.CompositeAlpha)
}

func (c *Config) DepthFormatList() ([]core1_0.Format, error) {
	return lookup(depthFormatNames, "depth_formats", c.DepthFormats)
}

func (c *Config) PresentModePreference() (prefs.PresentModePreference, error) {
	switch strings.ToLower(strings.TrimSpace(c.PresentMode)) {
	case "", "synced":
		return prefs.PresentModesSynced(), nil
	case "unsynced":
		return prefs.PresentModesUnsynced(), nil
	case "explicit":
		if len(c.PresentModes) == 0 {
			return prefs.PresentModePreference{}, errors.New("present_mode explicit needs a non-empty present_modes list")
		}
		modes, err := lookup(presentModeNames, "present_modes", c.PresentModes)
		if err != nil {
			return prefs.PresentModePreference{}, err
		}
		return prefs.PresentModes(modes...), nil
	}
	return prefs.PresentModePreference{}, errors.Newf("present_mode must be one of: synced, unsynced, explicit (got: %s)", c.PresentMode)
}

func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return level, errors.Wrapf(err, "logging.level")
	}
	return level, nil
}
