package chain

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
	"github.com/vkngwrapper/presentkit/probe"
)

// VulkanDevice implements Device on vkngwrapper.
type VulkanDevice struct {
	probe.SurfaceSource

	device         core1_0.Device
	physicalDevice core1_0.PhysicalDevice
	surface        khr_surface.Surface
	extension      khr_swapchain.Extension
}

func NewVulkanDevice(device core1_0.Device, physicalDevice core1_0.PhysicalDevice, surface khr_surface.Surface) *VulkanDevice {
	return &VulkanDevice{
		SurfaceSource:  probe.BindSurface(surface, physicalDevice),
		device:         device,
		physicalDevice: physicalDevice,
		surface:        surface,
		extension:      khr_swapchain.CreateExtensionFromDevice(device),
	}
}

// Extension returns the swapchain extension, for acquiring and presenting.
func (d *VulkanDevice) Extension() khr_swapchain.Extension {
	return d.extension
}

func (d *VulkanDevice) MemoryProperties() *core1_0.PhysicalDeviceMemoryProperties {
	return d.physicalDevice.MemoryProperties()
}

func (d *VulkanDevice) CreateSwapchain(spec SwapchainSpec, old Swapchain) (Swapchain, error) {
	var oldSwapchain khr_swapchain.Swapchain
	if old != nil {
		oldSwapchain = VulkanSwapchain(old)
	}

	swapchain, _, err := d.extension.CreateSwapchain(d.device, nil, khr_swapchain.SwapchainCreateInfo{
		Surface: d.surface,

		MinImageCount:    spec.MinImageCount,
		ImageFormat:      spec.Format,
		ImageColorSpace:  spec.ColorSpace,
		ImageExtent:      spec.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       spec.Usage,
		ImageSharingMode: core1_0.SharingModeExclusive,

		PreTransform:   spec.PreTransform,
		CompositeAlpha: spec.CompositeAlpha,
		PresentMode:    spec.PresentMode,
		Clipped:        true,
		OldSwapchain:   oldSwapchain,
	})
	if err != nil {
		return nil, err
	}
	return &vulkanSwapchain{swapchain: swapchain}, nil
}

func (d *VulkanDevice) CreateImage(spec ImageSpec) (Image, error) {
	image, _, err := d.device.CreateImage(nil, core1_0.ImageCreateOptions{
		ImageType: core1_0.ImageType2D,
		Extent: core1_0.Extent3D{
			Width:  spec.Extent.Width,
			Height: spec.Extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        spec.Format,
		Tiling:        core1_0.ImageTilingOptimal,
		InitialLayout: core1_0.ImageLayoutUndefined,
		Usage:         spec.Usage,
		SharingMode:   core1_0.SharingModeExclusive,
		Samples:       core1_0.Samples1,
	})
	if err != nil {
		return nil, err
	}
	return &vulkanImage{image: image, owned: true}, nil
}

func (d *VulkanDevice) AllocateMemory(typeIndex int, size int) (Memory, error) {
	memory, _, err := d.device.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  size,
		MemoryTypeIndex: typeIndex,
	})
	if err != nil {
		return nil, err
	}
	return &vulkanMemory{memory: memory}, nil
}

func (d *VulkanDevice) CreateImageView(image Image, format core1_0.Format, aspect core1_0.ImageAspectFlags) (ImageView, error) {
	view, _, err := d.device.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    VulkanImage(image),
		ViewType: core1_0.ImageViewType2D,
		Format:   format,
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	if err != nil {
		return nil, err
	}
	return &vulkanImageView{view: view}, nil
}

func (d *VulkanDevice) CreateFramebuffer(renderPass core1_0.RenderPass, attachments []ImageView, extent core1_0.Extent2D) (Framebuffer, error) {
	views := make([]core1_0.ImageView, 0, len(attachments))
	for _, attachment := range attachments {
		views = append(views, attachment.(*vulkanImageView).view)
	}

	framebuffer, _, err := d.device.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
		RenderPass:  renderPass,
		Layers:      1,
		Attachments: views,
		Width:       extent.Width,
		Height:      extent.Height,
	})
	if err != nil {
		return nil, err
	}
	return &vulkanFramebuffer{framebuffer: framebuffer}, nil
}

type vulkanSwapchain struct {
	swapchain khr_swapchain.Swapchain
}

func (s *vulkanSwapchain) Images() ([]Image, error) {
	images, _, err := s.swapchain.SwapchainImages()
	if err != nil {
		return nil, err
	}

	wrapped := make([]Image, 0, len(images))
	for _, image := range images {
		wrapped = append(wrapped, &vulkanImage{image: image})
	}
	return wrapped, nil
}

func (s *vulkanSwapchain) Destroy() {
	s.swapchain.Destroy(nil)
}

type vulkanImage struct {
	image core1_0.Image
	// Swapchain images are not owned and are never destroyed directly.
	owned bool
}

func (i *vulkanImage) MemoryRequirements() *core1_0.MemoryRequirements {
	return i.image.MemoryRequirements()
}

func (i *vulkanImage) BindMemory(memory Memory) error {
	m, ok := memory.(*vulkanMemory)
	if !ok {
		return errors.Newf("cannot bind %T to a vulkan image", memory)
	}
	_, err := i.image.BindImageMemory(m.memory, 0)
	return err
}

func (i *vulkanImage) Destroy() {
	if i.owned {
		i.image.Destroy(nil)
	}
}

type vulkanMemory struct {
	memory core1_0.DeviceMemory
}

func (m *vulkanMemory) Free() {
	m.memory.Free(nil)
}

type vulkanImageView struct {
	view core1_0.ImageView
}

func (v *vulkanImageView) Destroy() {
	v.view.Destroy(nil)
}

type vulkanFramebuffer struct {
	framebuffer core1_0.Framebuffer
}

func (f *vulkanFramebuffer) Destroy() {
	f.framebuffer.Destroy(nil)
}

// VulkanSwapchain unwraps a swapchain created by a VulkanDevice.
func VulkanSwapchain(s Swapchain) khr_swapchain.Swapchain {
	return s.(*vulkanSwapchain).swapchain
}

// VulkanImage unwraps an image created by, or read from a swapchain of, a
// VulkanDevice.
func VulkanImage(i Image) core1_0.Image {
	return i.(*vulkanImage).image
}

// VulkanFramebuffer unwraps a framebuffer created by a VulkanDevice.
func VulkanFramebuffer(f Framebuffer) core1_0.Framebuffer {
	return f.(*vulkanFramebuffer).framebuffer
}
