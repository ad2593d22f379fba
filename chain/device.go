package chain

import (
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/presentkit/probe"
)

// Device is the part of the device API the Provisioner drives. Surface
// queries go through the embedded SurfaceSource and are never cached.
type Device interface {
	probe.SurfaceSource
	probe.MemoryPropertiesSource

	// CreateSwapchain creates a swapchain for spec. A non-nil old swapchain is
	// passed to the driver as the replacement hint and stays valid.
	CreateSwapchain(spec SwapchainSpec, old Swapchain) (Swapchain, error)
	CreateImage(spec ImageSpec) (Image, error)
	AllocateMemory(typeIndex int, size int) (Memory, error)
	CreateImageView(image Image, format core1_0.Format, aspect core1_0.ImageAspectFlags) (ImageView, error)
	CreateFramebuffer(renderPass core1_0.RenderPass, attachments []ImageView, extent core1_0.Extent2D) (Framebuffer, error)
}

type Swapchain interface {
	// Images returns the swapchain's images. They belong to the swapchain and
	// must not be destroyed individually.
	Images() ([]Image, error)
	Destroy()
}

type Image interface {
	MemoryRequirements() *core1_0.MemoryRequirements
	BindMemory(memory Memory) error
	Destroy()
}

type Memory interface {
	Free()
}

type ImageView interface {
	Destroy()
}

type Framebuffer interface {
	Destroy()
}

// SwapchainSpec holds every resolved swapchain parameter.
type SwapchainSpec struct {
	Format         core1_0.Format
	ColorSpace     khr_surface.ColorSpace
	Extent         core1_0.Extent2D
	MinImageCount  int
	Usage          core1_0.ImageUsageFlags
	PresentMode    khr_surface.PresentMode
	CompositeAlpha khr_surface.CompositeAlphaFlags
	PreTransform   khr_surface.SurfaceTransformFlags
}

// ImageSpec describes a 2D, single mip, single layer, optimally tiled image
// with exclusive sharing.
type ImageSpec struct {
	Format core1_0.Format
	Extent core1_0.Extent2D
	Usage  core1_0.ImageUsageFlags
}
