package chain

import (
	"fmt"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/mock"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
)

type mockReporter struct {
	mock.Mock
}

func (m *mockReporter) Report(message string) {
	m.Called(message)
}

var errDeviceLost = errors.New("device lost")

// tracker records every create and destroy so tests can check ordering and
// leaks.
type tracker struct {
	serial     int
	live       map[string]bool
	events     []string
	violations []string
}

func newTracker() *tracker {
	return &tracker{live: map[string]bool{}}
}

func (t *tracker) create(kind string) string {
	t.serial++
	id := fmt.Sprintf("%s#%d", kind, t.serial)
	t.live[id] = true
	t.events = append(t.events, "create "+id)
	return id
}

func (t *tracker) destroy(id string) {
	if !t.live[id] {
		t.violations = append(t.violations, "destroy dead "+id)
		return
	}
	delete(t.live, id)
	t.events = append(t.events, "destroy "+id)
}

func (t *tracker) liveIDs() []string {
	var ids []string
	for id := range t.live {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// index returns the position of event in the log, or -1.
func (t *tracker) index(event string) int {
	for i, e := range t.events {
		if e == event {
			return i
		}
	}
	return -1
}

type handle struct {
	id string
	t  *tracker
}

func (h *handle) Destroy() { h.t.destroy(h.id) }
func (h *handle) Free()    { h.t.destroy(h.id) }

type fakeSwapchain struct {
	handle
	images []Image
	err    error
}

func (s *fakeSwapchain) Images() ([]Image, error) {
	return s.images, s.err
}

type fakeImage struct {
	handle
	device *fakeDevice
	owned  bool
	bound  Memory
}

func (i *fakeImage) MemoryRequirements() *core1_0.MemoryRequirements {
	return &core1_0.MemoryRequirements{Size: 4096, Alignment: 256, MemoryTypeBits: i.device.memoryTypeBits}
}

func (i *fakeImage) BindMemory(memory Memory) error {
	if err := i.device.call("bind"); err != nil {
		return err
	}
	i.bound = memory
	return nil
}

func (i *fakeImage) Destroy() {
	if !i.owned {
		i.t.violations = append(i.t.violations, "destroy swapchain image "+i.id)
		return
	}
	i.handle.Destroy()
}

type viewCall struct {
	image  Image
	format core1_0.Format
	aspect core1_0.ImageAspectFlags
}

type fakeDevice struct {
	*tracker

	caps           khr_surface.Capabilities
	modes          []khr_surface.PresentMode
	memory         *core1_0.PhysicalDeviceMemoryProperties
	memoryTypeBits uint32
	// extraImages is how many more images than requested the driver creates.
	extraImages int

	// failOn makes the nth call (1-based, counted per operation) fail.
	failOn map[string]int
	calls  map[string]int

	specs       []SwapchainSpec
	hints       []Swapchain
	allocations []int
	views       []viewCall
	attachments [][]ImageView
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		tracker: newTracker(),
		caps: khr_surface.Capabilities{
			MinImageCount:           2,
			MaxImageCount:           8,
			CurrentExtent:           core1_0.Extent2D{Width: 800, Height: 600},
			MinImageExtent:          core1_0.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:          core1_0.Extent2D{Width: 4096, Height: 4096},
			SupportedTransforms:     khr_surface.TransformIdentity,
			CurrentTransform:        khr_surface.TransformIdentity,
			SupportedCompositeAlpha: khr_surface.CompositeAlphaOpaque,
		},
		modes: []khr_surface.PresentMode{khr_surface.PresentModeMailbox, khr_surface.PresentModeFIFO},
		memory: &core1_0.PhysicalDeviceMemoryProperties{
			MemoryTypes: []core1_0.MemoryType{
				{PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent},
				{PropertyFlags: core1_0.MemoryPropertyDeviceLocal},
			},
		},
		memoryTypeBits: 0b11,
		failOn:         map[string]int{},
		calls:          map[string]int{},
	}
}

func (d *fakeDevice) call(op string) error {
	d.calls[op]++
	if n, ok := d.failOn[op]; ok && n == d.calls[op] {
		return errDeviceLost
	}
	return nil
}

func (d *fakeDevice) Capabilities() (*khr_surface.Capabilities, error) {
	if err := d.call("caps"); err != nil {
		return nil, err
	}
	caps := d.caps
	return &caps, nil
}

func (d *fakeDevice) Formats() ([]khr_surface.Format, error) {
	return []khr_surface.Format{{Format: core1_0.FormatB8G8R8A8UnsignedNormalized, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear}}, nil
}

func (d *fakeDevice) PresentModes() ([]khr_surface.PresentMode, error) {
	if err := d.call("modes"); err != nil {
		return nil, err
	}
	return d.modes, nil
}

func (d *fakeDevice) PresentSupport(int) (bool, error) {
	return true, nil
}

func (d *fakeDevice) MemoryProperties() *core1_0.PhysicalDeviceMemoryProperties {
	return d.memory
}

func (d *fakeDevice) CreateSwapchain(spec SwapchainSpec, old Swapchain) (Swapchain, error) {
	d.specs = append(d.specs, spec)
	d.hints = append(d.hints, old)
	if err := d.call("swapchain"); err != nil {
		return nil, err
	}

	s := &fakeSwapchain{handle: handle{id: d.create("swapchain"), t: d.tracker}}
	for i := 0; i < spec.MinImageCount+d.extraImages; i++ {
		s.images = append(s.images, &fakeImage{
			handle: handle{id: fmt.Sprintf("%s/image%d", s.id, i), t: d.tracker},
			device: d,
		})
	}
	if d.failOn["images"] != 0 {
		s.err = errDeviceLost
	}
	return s, nil
}

func (d *fakeDevice) CreateImage(spec ImageSpec) (Image, error) {
	if err := d.call("image"); err != nil {
		return nil, err
	}
	return &fakeImage{handle: handle{id: d.create("image"), t: d.tracker}, device: d, owned: true}, nil
}

func (d *fakeDevice) AllocateMemory(typeIndex int, size int) (Memory, error) {
	d.allocations = append(d.allocations, typeIndex)
	if err := d.call("memory"); err != nil {
		return nil, err
	}
	return &handle{id: d.create("memory"), t: d.tracker}, nil
}

func (d *fakeDevice) CreateImageView(image Image, format core1_0.Format, aspect core1_0.ImageAspectFlags) (ImageView, error) {
	d.views = append(d.views, viewCall{image: image, format: format, aspect: aspect})
	if err := d.call("view"); err != nil {
		return nil, err
	}
	return &handle{id: d.create("view"), t: d.tracker}, nil
}

func (d *fakeDevice) CreateFramebuffer(renderPass core1_0.RenderPass, attachments []ImageView, extent core1_0.Extent2D) (Framebuffer, error) {
	d.attachments = append(d.attachments, attachments)
	if err := d.call("framebuffer"); err != nil {
		return nil, err
	}
	return &handle{id: d.create("framebuffer"), t: d.tracker}, nil
}

func idOf(v interface{}) string {
	switch h := v.(type) {
	case *handle:
		return h.id
	case *fakeSwapchain:
		return h.id
	case *fakeImage:
		return h.id
	}
	return ""
}
