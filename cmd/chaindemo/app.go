package main

import (
	"log"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/loov/hrtime"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2"
	"github.com/vkngwrapper/presentkit/chain"
	"github.com/vkngwrapper/presentkit/config"
	"github.com/vkngwrapper/presentkit/devsel"
	"github.com/vkngwrapper/presentkit/fault"
	"github.com/vkngwrapper/presentkit/prefs"
	"github.com/vkngwrapper/presentkit/probe"
	"github.com/vkngwrapper/presentkit/vkutil"
	"golang.org/x/exp/slog"
)

const MaxFramesInFlight = 2

// One full turn of the clear colour.
const colourPeriod = 6 * time.Second

// frameSync is the per-frame-in-flight set of sync objects.
type frameSync struct {
	imageAvailable core1_0.Semaphore
	renderFinished core1_0.Semaphore
	inFlight       core1_0.Fence
}

type ChainDemo struct {
	cfg      *config.Config
	logger   *slog.Logger
	reporter fault.Reporter

	// release runs in reverse order on cleanup.
	release []func()

	window   *sdl.Window
	loader   core.Loader
	instance core1_0.Instance
	surface  khr_surface.Surface

	physicalDevice core1_0.PhysicalDevice
	surfaceSource  probe.SurfaceSource
	device         core1_0.Device
	queues         devsel.QueueFamilyAssignment
	queue          core1_0.Queue
	helper         *vkutil.Helper

	surfaceFormat khr_surface.Format
	depthFormat   core1_0.Format
	renderPass    core1_0.RenderPass
	commandPool   core1_0.CommandPool

	vulkanDevice   *chain.VulkanDevice
	provisioner    *chain.Provisioner
	current        chain.Chain
	commandBuffers []core1_0.CommandBuffer
	rendering      bool

	frames         []frameSync
	imagesInFlight []core1_0.Fence
	currentFrame   int
	frameStart     time.Duration
}

func (app *ChainDemo) onCleanup(f func()) {
	app.release = append(app.release, f)
}

func (app *ChainDemo) Run() error {
	defer app.cleanup()

	steps := []func() error{
		app.initWindow,
		app.createInstance,
		app.setupDebugMessenger,
		app.createSurface,
		app.pickPhysicalDevice,
		app.createLogicalDevice,
		app.chooseFormats,
		app.createRenderPass,
		app.createCommandPool,
		app.createSyncObjects,
		app.createChain,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	app.frameStart = hrtime.Now()
	return app.mainLoop()
}

func (app *ChainDemo) cleanup() {
	if app.device != nil {
		app.device.WaitIdle()
	}
	for i := len(app.release) - 1; i >= 0; i-- {
		app.release[i]()
	}
	app.release = nil
}

func (app *ChainDemo) initWindow() error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return errors.Wrap(err, "sdl init")
	}
	app.onCleanup(sdl.Quit)

	flags := uint32(sdl.WINDOW_SHOWN | sdl.WINDOW_VULKAN | sdl.WINDOW_RESIZABLE)
	window, err := sdl.CreateWindow(app.cfg.Window.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(app.cfg.Window.Width), int32(app.cfg.Window.Height), flags)
	if err != nil {
		return errors.Wrap(err, "create window")
	}
	app.window = window
	app.onCleanup(func() { window.Destroy() })

	app.loader, err = core.CreateLoaderFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	return err
}

func (app *ChainDemo) mainLoop() error {
	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			quit, err := app.handleEvent(event)
			if err != nil {
				return err
			}
			if quit {
				_, err = app.device.WaitIdle()
				return err
			}
		}

		if !app.rendering {
			sdl.Delay(16)
			continue
		}
		if err := app.drawFrame(); err != nil {
			return err
		}
	}
}

// handleEvent pauses on minimize and rebuilds the chain on any size change.
func (app *ChainDemo) handleEvent(event sdl.Event) (bool, error) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return true, nil
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_MINIMIZED:
			app.rendering = false
		case sdl.WINDOWEVENT_RESTORED, sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			return false, app.rebuildChain()
		}
	}
	return false, nil
}

func (app *ChainDemo) createInstance() error {
	extensions := app.cfg.InstanceExtensionList()
	if extensions == nil {
		extensions = prefs.DefaultInstanceExtensions
	}
	extensions = append([]string(nil), extensions...)

	// The window system needs its own surface extension on top.
	for _, ext := range app.window.VulkanGetInstanceExtensions() {
		if !containsName(extensions, ext) {
			extensions = append(extensions, ext)
		}
	}

	opts := devsel.InstanceOptions{
		ApplicationName:    app.cfg.Window.Title,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "presentkit",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		MinimumVersion:     common.Vulkan1_0,
		EnableValidation:   app.cfg.Validation.Enabled,
		ValidationLayers:   app.cfg.ValidationLayers(),
		Extensions:         extensions,
		Reporter:           app.reporter,
		Logger:             app.logger,
	}
	if app.cfg.Validation.Enabled {
		messenger := app.debugMessengerOptions()
		opts.DebugMessenger = &messenger
	}

	instance, err := devsel.CreateInstance(app.loader, opts)
	if err != nil {
		return err
	}
	app.instance = instance
	app.onCleanup(func() { instance.Destroy(nil) })
	return nil
}

func (app *ChainDemo) debugMessengerOptions() ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback:    app.logDebug,
	}
}

func (app *ChainDemo) setupDebugMessenger() error {
	if !app.cfg.Validation.Enabled {
		return nil
	}

	messenger, _, err := ext_debug_utils.CreateExtensionFromInstance(app.instance).
		CreateDebugUtilsMessenger(app.instance, nil, app.debugMessengerOptions())
	if err != nil {
		return fault.Check(app.reporter, err, "vkCreateDebugUtilsMessengerEXT")
	}
	app.onCleanup(func() { messenger.Destroy(nil) })
	return nil
}

func (app *ChainDemo) createSurface() error {
	surface, _, err := vkng_sdl2.CreateExtensionFromInstance(app.instance).CreateSurface(app.instance, app.window)
	if err != nil {
		return fault.Check(app.reporter, err, "vkCreateSurfaceKHR")
	}
	app.surface = surface
	app.onCleanup(func() { surface.Destroy(nil) })
	return nil
}

func (app *ChainDemo) pickPhysicalDevice() error {
	physicalDevices, _, err := app.instance.EnumeratePhysicalDevices()
	if err != nil {
		return fault.Check(app.reporter, err, "vkEnumeratePhysicalDevices")
	}

	required := app.cfg.DeviceExtensionList()
	if required == nil {
		required = prefs.DefaultDeviceExtensions
	}

	suitable := devsel.HasExtensions[core1_0.PhysicalDevice](probe.New(app.reporter, app.logger), required)
	app.physicalDevice, err = devsel.ChoosePhysicalDevice(physicalDevices, suitable)
	if err != nil {
		fault.Report(app.reporter, err)
		return err
	}

	properties, err := app.physicalDevice.Properties()
	if err != nil {
		return err
	}
	log.Printf("using %s (%s)", properties.DriverName, properties.DriverType)

	app.surfaceSource = probe.BindSurface(app.surface, app.physicalDevice)
	return nil
}

func (app *ChainDemo) createLogicalDevice() error {
	device, queues, err := devsel.CreateDevice(app.physicalDevice, app.surfaceSource, devsel.DeviceOptions{
		Extensions: app.cfg.DeviceExtensionList(),
		Roles:      devsel.RoleGraphics,
		Reporter:   app.reporter,
		Logger:     app.logger,
	})
	if err != nil {
		return err
	}

	app.device = device
	app.queues = queues
	app.queue = device.GetQueue(queues.Graphics, 0)
	app.helper = vkutil.New(device, app.reporter)
	app.onCleanup(func() { device.Destroy(nil) })
	return nil
}

func (app *ChainDemo) chooseFormats() error {
	available, err := probe.New(app.reporter, app.logger).SurfaceFormats(app.surfaceSource)
	if err != nil {
		return err
	}

	// Lists were checked when the config was loaded.
	formats, _ := app.cfg.SurfaceFormatList()
	spaces, _ := app.cfg.ColorSpaceList()
	depthFormats, _ := app.cfg.DepthFormatList()

	app.surfaceFormat, err = prefs.ChooseSurfaceFormat(formats, spaces, available)
	if err != nil {
		return fault.Check(app.reporter, err, "choose surface format")
	}

	app.depthFormat, err = prefs.ChooseDepthFormat(depthFormats, app.physicalDevice)
	if err != nil {
		return fault.Check(app.reporter, err, "choose depth format")
	}

	app.logger.Info("formats chosen",
		slog.Any("Surface", app.surfaceFormat.Format),
		slog.Any("ColorSpace", app.surfaceFormat.ColorSpace),
		slog.Any("Depth", app.depthFormat))
	return nil
}

// createRenderPass builds a single subpass that clears a colour and a depth
// attachment. Depth images are transitioned by rebuildChain before first use,
// so both depth layouts are attachment-optimal.
func (app *ChainDemo) createRenderPass() error {
	const depthLayout = core1_0.ImageLayoutDepthStencilAttachmentOptimal
	cleared := func(format core1_0.Format, store core1_0.AttachmentStoreOp, initial, final core1_0.ImageLayout) core1_0.AttachmentDescription {
		return core1_0.AttachmentDescription{
			Format:         format,
			Samples:        core1_0.Samples1,
			LoadOp:         core1_0.AttachmentLoadOpClear,
			StoreOp:        store,
			StencilLoadOp:  core1_0.AttachmentLoadOpClear,
			StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
			InitialLayout:  initial,
			FinalLayout:    final,
		}
	}
	stages := core1_0.PipelineStageColorAttachmentOutput | core1_0.PipelineStageEarlyFragmentTests

	renderPass, _, err := app.device.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			cleared(app.surfaceFormat.Format, core1_0.AttachmentStoreOpStore, core1_0.ImageLayoutUndefined, khr_swapchain.ImageLayoutPresentSrc),
			cleared(app.depthFormat, core1_0.AttachmentStoreOpDontCare, depthLayout, depthLayout),
		},
		Subpasses: []core1_0.SubpassDescription{{
			PipelineBindPoint:      core1_0.PipelineBindPointGraphics,
			ColorAttachments:       []core1_0.AttachmentReference{{Attachment: 0, Layout: core1_0.ImageLayoutColorAttachmentOptimal}},
			DepthStencilAttachment: &core1_0.AttachmentReference{Attachment: 1, Layout: depthLayout},
		}},
		SubpassDependencies: []core1_0.SubpassDependency{{
			SrcSubpass:    core1_0.SubpassExternal,
			DstSubpass:    0,
			SrcStageMask:  stages,
			DstStageMask:  stages,
			DstAccessMask: core1_0.AccessColorAttachmentWrite | core1_0.AccessDepthStencilAttachmentWrite,
		}},
	})
	if err != nil {
		return fault.Check(app.reporter, err, "vkCreateRenderPass")
	}

	app.renderPass = renderPass
	app.onCleanup(func() { renderPass.Destroy(nil) })
	return nil
}

func (app *ChainDemo) createCommandPool() error {
	pool, err := app.helper.CreateCommandPool(core1_0.CommandPoolCreateResetBuffer, app.queues.Graphics)
	if err != nil {
		return err
	}
	app.commandPool = pool
	app.onCleanup(func() { pool.Destroy(nil) })
	return nil
}

func (app *ChainDemo) createSyncObjects() error {
	app.frames = make([]frameSync, MaxFramesInFlight)
	for i := range app.frames {
		frame := &app.frames[i]

		var err error
		if frame.imageAvailable, err = app.helper.CreateSemaphore(); err != nil {
			return err
		}
		app.onCleanup(func() { frame.imageAvailable.Destroy(nil) })

		if frame.renderFinished, err = app.helper.CreateSemaphore(); err != nil {
			return err
		}
		app.onCleanup(func() { frame.renderFinished.Destroy(nil) })

		if frame.inFlight, err = app.helper.CreateFence(true); err != nil {
			return err
		}
		app.onCleanup(func() { frame.inFlight.Destroy(nil) })
	}
	return nil
}

func (app *ChainDemo) createChain() error {
	// Both lists were checked when the config was loaded.
	presentModes, _ := app.cfg.PresentModePreference()
	compositeAlpha, _ := app.cfg.CompositeAlphaList()

	app.vulkanDevice = chain.NewVulkanDevice(app.device, app.physicalDevice, app.surface)
	app.provisioner = chain.New(app.vulkanDevice, chain.Options{
		SurfaceFormat:       app.surfaceFormat,
		DepthFormat:         app.depthFormat,
		RenderPass:          app.renderPass,
		PreferredImageCount: app.cfg.Swapchain.PreferredImageCount,
		MaxImageCount:       app.cfg.Swapchain.MaxImageCount,
		PresentModes:        presentModes,
		CompositeAlpha:      compositeAlpha,
		Reporter:            app.reporter,
		Logger:              app.logger,
	})
	app.onCleanup(func() {
		app.freeCommandBuffers()
		app.provisioner.Destroy()
	})

	return app.rebuildChain()
}

func (app *ChainDemo) freeCommandBuffers() {
	if len(app.commandBuffers) > 0 {
		app.device.FreeCommandBuffers(app.commandBuffers)
		app.commandBuffers = nil
	}
}

// rebuildChain provisions the chain for the window's current size. A window
// with no area pauses rendering until the next resize.
func (app *ChainDemo) rebuildChain() error {
	if _, err := app.device.WaitIdle(); err != nil {
		return fault.Check(app.reporter, err, "vkDeviceWaitIdle")
	}

	w, h := app.window.VulkanGetDrawableSize()
	current, err := app.provisioner.Build(core1_0.Extent2D{Width: int(w), Height: int(h)})
	if errors.Is(err, fault.ErrNotReady) {
		app.rendering = false
		return nil
	} else if err != nil {
		return err
	}
	app.current = current

	err = app.helper.TransitionDepthImage(app.commandPool, app.queue, chain.VulkanImage(current.DepthImage), app.depthFormat)
	if err != nil {
		return err
	}

	app.freeCommandBuffers()
	app.commandBuffers, err = app.helper.AllocateCommandBuffers(app.commandPool, core1_0.CommandBufferLevelPrimary, current.ImageCount)
	if err != nil {
		return err
	}

	app.imagesInFlight = make([]core1_0.Fence, current.ImageCount)
	app.rendering = true

	log.Printf("chain %dx%d, %d images, %s, built in %s",
		current.Extent.Width, current.Extent.Height, current.ImageCount, current.PresentMode, current.BuildTime)
	return nil
}

func (app *ChainDemo) drawFrame() error {
	frame := app.frames[app.currentFrame]
	if _, err := frame.inFlight.Wait(common.NoTimeout); err != nil {
		return err
	}

	swapchain := chain.VulkanSwapchain(app.current.Swapchain)
	imageIndex, res, err := swapchain.AcquireNextImage(common.NoTimeout, frame.imageAvailable, nil)
	if res == khr_swapchain.VKErrorOutOfDate {
		return app.rebuildChain()
	} else if err != nil {
		return err
	}

	// An image still owned by an older frame has to finish before reuse.
	if owner := app.imagesInFlight[imageIndex]; owner != nil {
		if _, err := owner.Wait(common.NoTimeout); err != nil {
			return err
		}
	}
	app.imagesInFlight[imageIndex] = frame.inFlight

	if _, err := frame.inFlight.Reset(); err != nil {
		return err
	}
	if err := app.recordCommandBuffer(imageIndex); err != nil {
		return err
	}

	_, err = app.queue.Submit(frame.inFlight, []core1_0.SubmitInfo{{
		WaitSemaphores:   []core1_0.Semaphore{frame.imageAvailable},
		WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
		CommandBuffers:   []core1_0.CommandBuffer{app.commandBuffers[imageIndex]},
		SignalSemaphores: []core1_0.Semaphore{frame.renderFinished},
	}})
	if err != nil {
		return fault.Check(app.reporter, err, "vkQueueSubmit")
	}

	app.currentFrame = (app.currentFrame + 1) % MaxFramesInFlight

	res, err = app.vulkanDevice.Extension().QueuePresent(app.queue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{frame.renderFinished},
		Swapchains:     []khr_swapchain.Swapchain{swapchain},
		ImageIndices:   []int{imageIndex},
	})
	if res == khr_swapchain.VKErrorOutOfDate || res == khr_swapchain.VKSuboptimal {
		return app.rebuildChain()
	}
	return err
}

func (app *ChainDemo) recordCommandBuffer(imageIndex int) error {
	buffer := app.commandBuffers[imageIndex]
	if _, err := buffer.Reset(0); err != nil {
		return err
	}
	if _, err := buffer.Begin(core1_0.CommandBufferBeginInfo{Flags: core1_0.CommandBufferUsageOneTimeSubmit}); err != nil {
		return err
	}

	colour := app.clearColour()
	err := buffer.CmdBeginRenderPass(core1_0.SubpassContentsInline, core1_0.RenderPassBeginInfo{
		RenderPass:  app.renderPass,
		Framebuffer: chain.VulkanFramebuffer(app.current.Framebuffers[imageIndex]),
		RenderArea:  core1_0.Rect2D{Extent: app.current.Extent},
		ClearValues: []core1_0.ClearValue{
			core1_0.ClearValueFloat{colour[0], colour[1], colour[2], 1},
			core1_0.ClearValueDepthStencil{Depth: 1.0},
		},
	})
	if err != nil {
		return err
	}
	buffer.CmdEndRenderPass()

	_, err = buffer.End()
	return err
}

// clearColour walks the hue circle once per colourPeriod.
func (app *ChainDemo) clearColour() mgl32.Vec3 {
	elapsed := hrtime.Since(app.frameStart)
	turn := math.Mod(elapsed.Seconds(), colourPeriod.Seconds()) / colourPeriod.Seconds()

	axis := mgl32.Vec3{1, 1, 1}.Normalize()
	rotation := mgl32.HomogRotate3D(float32(turn)*2*math.Pi, axis)
	red := rotation.Mul4x1(mgl32.Vec4{1, 0, 0, 0}).Vec3()

	return red.Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5})
}

func (app *ChainDemo) logDebug(msgType ext_debug_utils.MessageTypes, severity ext_debug_utils.MessageSeverities, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	log.Printf("[%s %s] - %s", severity, msgType, data.Message)
	return false
}

func containsName(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}
