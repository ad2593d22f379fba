// Package chain provisions the presentation chain: the swapchain, one shared
// depth image with its memory and view, and a color view and framebuffer per
// swapchain image. The chain is built, rebuilt, and destroyed as one unit.
//
// A Provisioner is not safe for concurrent use. Callers must make sure the
// device no longer uses the current chain before calling Build or Destroy.
package chain

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/presentkit/devsel"
	"github.com/vkngwrapper/presentkit/fault"
	"github.com/vkngwrapper/presentkit/internal/logging"
	"github.com/vkngwrapper/presentkit/prefs"
	"github.com/vkngwrapper/presentkit/probe"
	"golang.org/x/exp/slog"
)

type State int

const (
	// StateAbsent: nothing is live.
	StateAbsent State = iota
	// StateProvisioned: the swapchain and all of its dependents are live.
	StateProvisioned
	// StateBroken: a rebuild created its swapchain but failed on the
	// dependents. Only the swapchain is live, and the next Build uses it as
	// the replacement hint.
	StateBroken
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateProvisioned:
		return "provisioned"
	case StateBroken:
		return "broken"
	}
	return "unknown"
}

type Options struct {
	SurfaceFormat khr_surface.Format
	DepthFormat   core1_0.Format
	RenderPass    core1_0.RenderPass

	// ImageUsage defaults to color attachment.
	ImageUsage core1_0.ImageUsageFlags

	// PreferredImageCount of 0 asks for one image more than the surface
	// minimum.
	PreferredImageCount int
	// MaxImageCount is the most images the caller is prepared to handle. 0
	// means no bound.
	MaxImageCount int

	PresentModes   prefs.PresentModePreference
	CompositeAlpha []khr_surface.CompositeAlphaFlags

	Reporter fault.Reporter
	Logger   *slog.Logger
}

// Chain is a snapshot of the provisioned chain. Its slices are owned by the
// Provisioner and must not be modified.
type Chain struct {
	Extent         core1_0.Extent2D
	ImageCount     int
	PresentMode    khr_surface.PresentMode
	CompositeAlpha khr_surface.CompositeAlphaFlags
	PreTransform   khr_surface.SurfaceTransformFlags

	Swapchain    Swapchain
	Images       []Image
	Views        []ImageView
	Framebuffers []Framebuffer

	DepthImage  Image
	DepthMemory Memory
	DepthView   ImageView

	BuildTime time.Duration
}

type Provisioner struct {
	device Device
	opts   Options
	prober *probe.Prober
	logger *slog.Logger

	state   State
	current Chain
}

func New(device Device, opts Options) *Provisioner {
	logger := logging.OrDiscard(opts.Logger)
	if opts.ImageUsage == 0 {
		opts.ImageUsage = core1_0.ImageUsageColorAttachment
	}

	return &Provisioner{
		device: device,
		opts:   opts,
		prober: probe.New(opts.Reporter, logger),
		logger: logger,
	}
}

func (p *Provisioner) State() State {
	return p.state
}

func (p *Provisioner) Chain() Chain {
	return p.current
}

// Build provisions the chain for the current surface state, replacing any
// existing chain. suggested is only used when the surface leaves the extent
// undefined.
//
// Nothing is released until the new swapchain exists, so a failure before
// that point leaves the previous chain exactly as it was. A failure after it
// destroys whatever this call created besides the swapchain and leaves the
// Provisioner in StateBroken.
//
// A zero-area surface returns an error marked fault.ErrNotReady. It is not
// reported and changes nothing; callers retry on a later resize.
func (p *Provisioner) Build(suggested core1_0.Extent2D) (Chain, error) {
	start := hrtime.Now()

	next, spec, err := p.plan(suggested)
	if err != nil {
		return p.current, err
	}

	swapchain, err := p.device.CreateSwapchain(spec, p.current.Swapchain)
	if err != nil {
		return p.current, fault.Check(p.opts.Reporter, err, "vkCreateSwapchainKHR")
	}

	// The new swapchain exists. The old one and every dependent go now.
	p.release(p.current)
	if p.current.Swapchain != nil {
		p.current.Swapchain.Destroy()
	}
	next.Swapchain = swapchain
	p.current = Chain{Swapchain: swapchain}
	p.state = StateBroken

	if err := p.buildDependents(&next); err != nil {
		p.release(next)
		p.logger.Debug("Provisioner::Build",
			slog.String("State", p.state.String()),
			slog.Any("Error", err))
		return p.current, err
	}

	next.BuildTime = hrtime.Since(start)
	p.current = next
	p.state = StateProvisioned

	p.logger.Debug("Provisioner::Build",
		slog.Int("Width", next.Extent.Width),
		slog.Int("Height", next.Extent.Height),
		slog.Int("Images", next.ImageCount),
		slog.Any("PresentMode", next.PresentMode),
		slog.Duration("BuildTime", next.BuildTime))

	return next, nil
}

// plan resolves every swapchain parameter without touching any resource.
func (p *Provisioner) plan(suggested core1_0.Extent2D) (Chain, SwapchainSpec, error) {
	var next Chain
	r := p.opts.Reporter

	caps, err := p.prober.SurfaceCapabilities(p.device)
	if err != nil {
		return next, SwapchainSpec{}, err
	}
	modes, err := p.prober.PresentModes(p.device)
	if err != nil {
		return next, SwapchainSpec{}, err
	}

	next.PresentMode, err = prefs.ChoosePresentMode(p.opts.PresentModes, modes)
	if err != nil {
		return next, SwapchainSpec{}, fault.Check(r, err, "resolve present mode")
	}

	next.Extent = ResolveExtent(caps, suggested)
	if next.Extent.Width == 0 || next.Extent.Height == 0 {
		err = fault.Mark(errors.Newf("surface extent is %dx%d", next.Extent.Width, next.Extent.Height), fault.ErrNotReady)
		p.logger.Debug("Provisioner::Build", slog.String("Skipped", err.Error()))
		return next, SwapchainSpec{}, err
	}

	imageCount, err := ResolveImageCount(caps, p.opts.PreferredImageCount, p.opts.MaxImageCount)
	if err != nil {
		return next, SwapchainSpec{}, fault.Check(r, err, "resolve image count")
	}

	next.CompositeAlpha, err = prefs.ChooseCompositeAlpha(p.opts.CompositeAlpha, caps.SupportedCompositeAlpha)
	if err != nil {
		return next, SwapchainSpec{}, fault.Check(r, err, "resolve composite alpha")
	}

	next.PreTransform = ResolvePreTransform(caps)

	spec := SwapchainSpec{
		Format:         p.opts.SurfaceFormat.Format,
		ColorSpace:     p.opts.SurfaceFormat.ColorSpace,
		Extent:         next.Extent,
		MinImageCount:  imageCount,
		Usage:          p.opts.ImageUsage,
		PresentMode:    next.PresentMode,
		CompositeAlpha: next.CompositeAlpha,
		PreTransform:   next.PreTransform,
	}
	return next, spec, nil
}

// buildDependents fills in next as it goes, so a failure leaves exactly the
// created members for release.
func (p *Provisioner) buildDependents(next *Chain) error {
	r := p.opts.Reporter

	image, err := p.device.CreateImage(ImageSpec{
		Format: p.opts.DepthFormat,
		Extent: next.Extent,
		Usage:  core1_0.ImageUsageDepthStencilAttachment,
	})
	if err != nil {
		return fault.Check(r, err, "vkCreateImage")
	}
	next.DepthImage = image

	reqs := image.MemoryRequirements()
	typeIndex := devsel.FindMemoryType(p.prober.MemoryProperties(p.device), reqs.MemoryTypeBits, core1_0.MemoryPropertyDeviceLocal)
	if typeIndex == devsel.NoMemoryType {
		return fault.Fail(r, fault.ErrNoMemoryType, "no device-local memory type in mask %#x for the depth image", reqs.MemoryTypeBits)
	}

	memory, err := p.device.AllocateMemory(typeIndex, reqs.Size)
	if err != nil {
		return fault.Check(r, err, "vkAllocateMemory")
	}
	next.DepthMemory = memory

	if err := image.BindMemory(memory); err != nil {
		return fault.Check(r, err, "vkBindImageMemory")
	}

	next.DepthView, err = p.device.CreateImageView(image, p.opts.DepthFormat, prefs.DepthAspect(p.opts.DepthFormat))
	if err != nil {
		return fault.Check(r, err, "vkCreateImageView")
	}

	// The driver may create more images than requested.
	images, err := next.Swapchain.Images()
	if err != nil {
		return fault.Check(r, err, "vkGetSwapchainImagesKHR")
	}

	views := make([]ImageView, 0, len(images))
	for _, image := range images {
		view, err := p.device.CreateImageView(image, p.opts.SurfaceFormat.Format, core1_0.ImageAspectColor)
		if err != nil {
			next.Views = views
			return fault.Check(r, err, "vkCreateImageView")
		}
		views = append(views, view)
	}

	framebuffers := make([]Framebuffer, 0, len(images))
	for _, view := range views {
		framebuffer, err := p.device.CreateFramebuffer(p.opts.RenderPass, []ImageView{view, next.DepthView}, next.Extent)
		if err != nil {
			next.Views = views
			next.Framebuffers = framebuffers
			return fault.Check(r, err, "vkCreateFramebuffer")
		}
		framebuffers = append(framebuffers, framebuffer)
	}

	next.Images = images
	next.ImageCount = len(images)
	next.Views = views
	next.Framebuffers = framebuffers
	return nil
}

// release destroys every dependent in c, leaving the swapchain alone.
func (p *Provisioner) release(c Chain) {
	for _, framebuffer := range c.Framebuffers {
		framebuffer.Destroy()
	}
	for _, view := range c.Views {
		view.Destroy()
	}
	if c.DepthView != nil {
		c.DepthView.Destroy()
	}
	if c.DepthImage != nil {
		c.DepthImage.Destroy()
	}
	if c.DepthMemory != nil {
		c.DepthMemory.Free()
	}
}

// Destroy tears the whole chain down. It is safe to call more than once.
func (p *Provisioner) Destroy() {
	p.release(p.current)
	if p.current.Swapchain != nil {
		p.current.Swapchain.Destroy()
	}

	p.current = Chain{}
	p.state = StateAbsent
}
