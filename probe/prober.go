// Package probe queries instance, device, and surface capabilities. Queries
// are read-only and fresh on every call; the only state a Prober keeps is its
// staging buffers.
package probe

import (
	"sort"
	"strings"

	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/presentkit/fault"
	"github.com/vkngwrapper/presentkit/internal/logging"
	"golang.org/x/exp/slog"
)

type Prober struct {
	reporter fault.Reporter
	logger   *slog.Logger

	layers     Scratch[string]
	instExts   Scratch[string]
	deviceExts Scratch[string]
}

// New creates a Prober. Either argument may be nil.
func New(reporter fault.Reporter, logger *slog.Logger) *Prober {
	return &Prober{reporter: reporter, logger: logging.OrDiscard(logger)}
}

// InstanceLayers returns the sorted names of the available instance layers.
// The slice is reused by the next call.
func (p *Prober) InstanceLayers(src InstanceSource) ([]string, error) {
	layers, _, err := src.AvailableLayers()
	if err != nil {
		return nil, fault.Check(p.reporter, err, "enumerate instance layers")
	}

	names := p.layers.Reset(len(layers))
	for name := range layers {
		names = append(names, name)
	}
	sort.Strings(names)

	p.logger.Debug("Prober::InstanceLayers", slog.Int("Count", len(names)))
	return names, nil
}

// InstanceExtensions returns the sorted names of the available instance
// extensions. The slice is reused by the next call.
func (p *Prober) InstanceExtensions(src InstanceSource) ([]string, error) {
	extensions, _, err := src.AvailableExtensions()
	if err != nil {
		return nil, fault.Check(p.reporter, err, "enumerate instance extensions")
	}

	names := p.instExts.Reset(len(extensions))
	for name := range extensions {
		names = append(names, name)
	}
	sort.Strings(names)

	p.logger.Debug("Prober::InstanceExtensions", slog.Int("Count", len(names)))
	return names, nil
}

// DeviceExtensions returns the sorted names of the extensions the device
// supports. The slice is reused by the next call.
func (p *Prober) DeviceExtensions(src DeviceSource) ([]string, error) {
	extensions, _, err := src.EnumerateDeviceExtensionProperties()
	if err != nil {
		return nil, fault.Check(p.reporter, err, "enumerate device extensions")
	}

	names := p.deviceExts.Reset(len(extensions))
	for name := range extensions {
		names = append(names, name)
	}
	sort.Strings(names)

	p.logger.Debug("Prober::DeviceExtensions", slog.Int("Count", len(names)))
	return names, nil
}

func (p *Prober) QueueFamilies(src DeviceSource) []*core1_0.QueueFamily {
	return src.QueueFamilyProperties()
}

func (p *Prober) MemoryProperties(src MemoryPropertiesSource) *core1_0.PhysicalDeviceMemoryProperties {
	return src.MemoryProperties()
}

func (p *Prober) SurfaceCapabilities(src SurfaceSource) (*khr_surface.Capabilities, error) {
	caps, err := src.Capabilities()
	if err != nil {
		return nil, fault.Check(p.reporter, err, "query surface capabilities")
	}
	return caps, nil
}

func (p *Prober) SurfaceFormats(src SurfaceSource) ([]khr_surface.Format, error) {
	formats, err := src.Formats()
	if err != nil {
		return nil, fault.Check(p.reporter, err, "query surface formats")
	}
	return formats, nil
}

func (p *Prober) PresentModes(src SurfaceSource) ([]khr_surface.PresentMode, error) {
	modes, err := src.PresentModes()
	if err != nil {
		return nil, fault.Check(p.reporter, err, "query surface present modes")
	}
	return modes, nil
}

// FormatSupports reports whether format has every feature bit in features for
// the given tiling.
func FormatSupports(src DeviceSource, format core1_0.Format, tiling core1_0.ImageTiling, features core1_0.FormatFeatureFlags) bool {
	props := src.FormatProperties(format)
	if props == nil {
		return false
	}

	switch tiling {
	case core1_0.ImageTilingLinear:
		return props.LinearTilingFeatures&features == features
	case core1_0.ImageTilingOptimal:
		return props.OptimalTilingFeatures&features == features
	}
	return false
}

// RequireAll fails with kind, naming every entry of required that is missing
// from the sorted available list.
func RequireAll(r fault.Reporter, kind error, what string, required, available []string) error {
	var missing []string
	for _, name := range required {
		if !Contains(available, name) {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 {
		return nil
	}
	return fault.Fail(r, kind, "required %s not found: %s", what, strings.Join(missing, ", "))
}

// Contains reports whether name is in the sorted list available.
func Contains(available []string, name string) bool {
	i := sort.SearchStrings(available, name)
	return i < len(available) && available[i] == name
}
