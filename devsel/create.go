package devsel

import (
	"github.com/vkngwrapper/core"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/extensions/khr_portability_subset"
	"github.com/vkngwrapper/presentkit/fault"
	"github.com/vkngwrapper/presentkit/internal/logging"
	"github.com/vkngwrapper/presentkit/prefs"
	"github.com/vkngwrapper/presentkit/probe"
	"golang.org/x/exp/slog"
)

const defaultName = "presentkit"

// VK_KHR_portability_enumeration has no wrapper package in extensions v0.1.x,
// so its name and flag bit come from the Vulkan registry.
const (
	PortabilityEnumerationExtensionName                            = "VK_KHR_portability_enumeration"
	InstanceCreateEnumeratePortability  core1_0.InstanceCreateFlags = 0x00000001
)

type InstanceOptions struct {
	MinimumVersion common.APIVersion

	ApplicationName    string
	ApplicationVersion common.Version
	EngineName         string
	EngineVersion      common.Version

	// EnableValidation turns on ValidationLayers, or the default layers when
	// nil.
	EnableValidation bool
	ValidationLayers []string

	// Extensions defaults to prefs.DefaultInstanceExtensions when nil.
	Extensions []string

	// DebugMessenger is chained into instance creation when validation is
	// enabled, which also enables the debug utils extension.
	DebugMessenger *ext_debug_utils.DebugUtilsMessengerCreateInfo

	Reporter fault.Reporter
	Logger   *slog.Logger
}

// CreateInstance checks the loader's API version and the availability of
// every requested layer and extension, then creates the instance.
func CreateInstance(loader core.Loader, opts InstanceOptions) (core1_0.Instance, error) {
	logger := logging.OrDiscard(opts.Logger)

	if opts.MinimumVersion != 0 && uint32(loader.APIVersion()) < uint32(opts.MinimumVersion) {
		return nil, fault.Fail(opts.Reporter, fault.ErrAPIVersion, "loader supports api %s, need %s", loader.APIVersion(), opts.MinimumVersion)
	}

	prober := probe.New(opts.Reporter, logger)
	layers, err := prober.InstanceLayers(loader)
	if err != nil {
		return nil, err
	}
	extensions, err := prober.InstanceExtensions(loader)
	if err != nil {
		return nil, err
	}

	info, err := opts.createInfo(layers, extensions)
	if err != nil {
		return nil, err
	}

	logger.Debug("CreateInstance",
		slog.Any("Layers", info.EnabledLayerNames),
		slog.Any("Extensions", info.EnabledExtensionNames))

	instance, _, err := loader.CreateInstance(nil, info)
	if err != nil {
		return nil, fault.Check(opts.Reporter, err, "vkCreateInstance")
	}
	return instance, nil
}

// createInfo builds the instance create info from the sorted lists of
// available layers and extensions.
func (o InstanceOptions) createInfo(availableLayers, availableExtensions []string) (core1_0.InstanceCreateInfo, error) {
	info := core1_0.InstanceCreateInfo{
		ApplicationName:    o.ApplicationName,
		ApplicationVersion: o.ApplicationVersion,
		EngineName:         o.EngineName,
		EngineVersion:      o.EngineVersion,
		APIVersion:         o.MinimumVersion,
	}
	if info.ApplicationName == "" {
		info.ApplicationName = defaultName
	}
	if info.EngineName == "" {
		info.EngineName = defaultName
	}
	if info.APIVersion == 0 {
		info.APIVersion = common.Vulkan1_0
	}

	extensions := o.Extensions
	if extensions == nil {
		extensions = prefs.DefaultInstanceExtensions
	}
	extensions = append([]string(nil), extensions...)

	if o.EnableValidation {
		layers := o.ValidationLayers
		if layers == nil {
			layers = prefs.DefaultValidationLayers
		}
		if err := probe.RequireAll(o.Reporter, fault.ErrMissingLayer, "validation layer", layers, availableLayers); err != nil {
			return info, err
		}
		info.EnabledLayerNames = append(info.EnabledLayerNames, layers...)

		if o.DebugMessenger != nil {
			extensions = append(extensions, ext_debug_utils.ExtensionName)
			info.Next = *o.DebugMessenger
		}
	}

	if err := probe.RequireAll(o.Reporter, fault.ErrMissingExtension, "instance extension", extensions, availableExtensions); err != nil {
		return info, err
	}

	if probe.Contains(availableExtensions, PortabilityEnumerationExtensionName) {
		extensions = append(extensions, PortabilityEnumerationExtensionName)
		info.Flags |= InstanceCreateEnumeratePortability
	}

	info.EnabledExtensionNames = extensions
	return info, nil
}

type DeviceOptions struct {
	// Extensions defaults to prefs.DefaultDeviceExtensions when nil.
	Extensions []string
	Features   *core1_0.PhysicalDeviceFeatures

	// Roles defaults to RoleGraphics.
	Roles Role

	Reporter fault.Reporter
	Logger   *slog.Logger
}

// CreateDevice requires the device extensions, assigns queue families
// against surface, and creates a logical device with one queue per assigned
// family.
func CreateDevice(physicalDevice core1_0.PhysicalDevice, surface probe.SurfaceSource, opts DeviceOptions) (core1_0.Device, QueueFamilyAssignment, error) {
	logger := logging.OrDiscard(opts.Logger)
	prober := probe.New(opts.Reporter, logger)

	available, err := prober.DeviceExtensions(physicalDevice)
	if err != nil {
		return nil, QueueFamilyAssignment{}, err
	}

	extensions, err := deviceExtensions(opts.Reporter, opts.Extensions, available)
	if err != nil {
		return nil, QueueFamilyAssignment{}, err
	}

	roles := opts.Roles
	if roles == 0 {
		roles = RoleGraphics
	}

	assignment, err := AssignQueueFamilies(prober.QueueFamilies(physicalDevice), surface.PresentSupport, roles)
	if err != nil {
		fault.Report(opts.Reporter, err)
		return nil, assignment, err
	}

	logger.Debug("CreateDevice",
		slog.Int("Graphics", assignment.Graphics),
		slog.Int("Compute", assignment.Compute),
		slog.Int("Transfer", assignment.Transfer),
		slog.Any("Extensions", extensions))

	features := opts.Features
	if features == nil {
		features = &core1_0.PhysicalDeviceFeatures{}
	}

	device, _, err := physicalDevice.CreateDevice(nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      QueueCreateInfos(assignment),
		EnabledFeatures:       features,
		EnabledExtensionNames: extensions,
	})
	if err != nil {
		return nil, assignment, fault.Check(opts.Reporter, err, "vkCreateDevice")
	}

	return device, assignment, nil
}

func deviceExtensions(r fault.Reporter, required, available []string) ([]string, error) {
	if required == nil {
		required = prefs.DefaultDeviceExtensions
	}
	if err := probe.RequireAll(r, fault.ErrMissingExtension, "device extension", required, available); err != nil {
		return nil, err
	}

	extensions := append([]string(nil), required...)
	// Portability implementations must have the subset extension enabled.
	if probe.Contains(available, khr_portability_subset.ExtensionName) && !contains(extensions, khr_portability_subset.ExtensionName) {
		extensions = append(extensions, khr_portability_subset.ExtensionName)
	}
	return extensions, nil
}

// QueueCreateInfos requests one queue, at full priority, from each assigned
// family.
func QueueCreateInfos(a QueueFamilyAssignment) []core1_0.DeviceQueueCreateInfo {
	var infos []core1_0.DeviceQueueCreateInfo
	for _, family := range a.Unique() {
		infos = append(infos, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: family,
			QueuePriorities:  []float32{1.0},
		})
	}
	return infos
}

// HasExtensions returns a suitability check for ChoosePhysicalDevice that
// accepts devices supporting every extension in required.
func HasExtensions[D probe.DeviceSource](prober *probe.Prober, required []string) func(D) bool {
	return func(device D) bool {
		available, err := prober.DeviceExtensions(device)
		if err != nil {
			return false
		}
		for _, name := range required {
			if !probe.Contains(available, name) {
				return false
			}
		}
		return true
	}
}

func contains(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}

