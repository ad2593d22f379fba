package probe

import (
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
)

// InstanceSource is satisfied by core.Loader.
type InstanceSource interface {
	AvailableLayers() (map[string]*core1_0.LayerProperties, common.VkResult, error)
	AvailableExtensions() (map[string]*core1_0.ExtensionProperties, common.VkResult, error)
}

type MemoryPropertiesSource interface {
	MemoryProperties() *core1_0.PhysicalDeviceMemoryProperties
}

// DeviceSource is satisfied by core1_0.PhysicalDevice.
type DeviceSource interface {
	MemoryPropertiesSource
	EnumerateDeviceExtensionProperties() (map[string]*core1_0.ExtensionProperties, common.VkResult, error)
	QueueFamilyProperties() []*core1_0.QueueFamily
	FormatProperties(format core1_0.Format) *core1_0.FormatProperties
}

// SurfaceSource answers surface queries for one physical device.
type SurfaceSource interface {
	Capabilities() (*khr_surface.Capabilities, error)
	Formats() ([]khr_surface.Format, error)
	PresentModes() ([]khr_surface.PresentMode, error)
	PresentSupport(queueFamilyIndex int) (bool, error)
}

type boundSurface struct {
	surface        khr_surface.Surface
	physicalDevice core1_0.PhysicalDevice
}

// BindSurface pairs a vkngwrapper surface with the physical device it is
// queried against.
func BindSurface(surface khr_surface.Surface, physicalDevice core1_0.PhysicalDevice) SurfaceSource {
	return &boundSurface{surface: surface, physicalDevice: physicalDevice}
}

func (s *boundSurface) Capabilities() (*khr_surface.Capabilities, error) {
	caps, _, err := s.surface.PhysicalDeviceSurfaceCapabilities(s.physicalDevice)
	return caps, err
}

func (s *boundSurface) Formats() ([]khr_surface.Format, error) {
	formats, _, err := s.surface.PhysicalDeviceSurfaceFormats(s.physicalDevice)
	return formats, err
}

func (s *boundSurface) PresentModes() ([]khr_surface.PresentMode, error) {
	modes, _, err := s.surface.PhysicalDeviceSurfacePresentModes(s.physicalDevice)
	return modes, err
}

func (s *boundSurface) PresentSupport(queueFamilyIndex int) (bool, error) {
	supported, _, err := s.surface.PhysicalDeviceSurfaceSupport(s.physicalDevice, queueFamilyIndex)
	return supported, err
}
