package prefs

import (
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

var DefaultValidationLayers = []string{"VK_LAYER_KHRONOS_validation"}

// DefaultInstanceExtensions lists the platform-independent instance
// extensions. Window systems append their own surface extension.
var DefaultInstanceExtensions = []string{khr_surface.ExtensionName}

var DefaultDeviceExtensions = []string{khr_swapchain.ExtensionName}

var DefaultSurfaceFormats = []core1_0.Format{
	core1_0.FormatR8G8B8A8UnsignedNormalized,
	core1_0.FormatB8G8R8A8UnsignedNormalized,
	core1_0.FormatA2B10G10R10UnsignedNormalizedPacked,
	core1_0.FormatA2R10G10B10UnsignedNormalizedPacked,
	core1_0.FormatR16G16B16A16SignedFloat,
}

var DefaultColorSpaces = []khr_surface.ColorSpace{
	khr_surface.ColorSpaceSRGBNonlinear,
}

// FIFO is guaranteed by the presentation API, so both present mode defaults
// end with it.
var (
	DefaultSyncedPresentModes = []khr_surface.PresentMode{
		khr_surface.PresentModeFIFORelaxed,
		khr_surface.PresentModeFIFO,
	}
	DefaultUnsyncedPresentModes = []khr_surface.PresentMode{
		khr_surface.PresentModeMailbox,
		khr_surface.PresentModeImmediate,
		khr_surface.PresentModeFIFO,
	}
)

// At least one of these is supported by every surface.
var DefaultCompositeAlpha = []khr_surface.CompositeAlphaFlags{
	khr_surface.CompositeAlphaOpaque,
	khr_surface.CompositeAlphaPreMultiplied,
	khr_surface.CompositeAlphaPostMultiplied,
	khr_surface.CompositeAlphaInherit,
}

var DefaultDepthFormats = []core1_0.Format{
	core1_0.FormatD32SignedFloat,
	core1_0.FormatD32SignedFloatS8UnsignedInt,
	core1_0.FormatD24UnsignedNormalizedS8UnsignedInt,
}
