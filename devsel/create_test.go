package devsel

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/extensions/khr_portability_subset"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
	"github.com/vkngwrapper/presentkit/fault"
)

func sorted(names ...string) []string {
	sort.Strings(names)
	return names
}

func TestInstanceCreateInfoDefaults(t *testing.T) {
	info, err := InstanceOptions{}.createInfo(nil, sorted(khr_surface.ExtensionName))
	require.NoError(t, err)
	assert.Equal(t, "presentkit", info.ApplicationName)
	assert.Equal(t, "presentkit", info.EngineName)
	assert.Equal(t, common.Vulkan1_0, info.APIVersion)
	assert.Equal(t, []string{khr_surface.ExtensionName}, info.EnabledExtensionNames)
	assert.Empty(t, info.EnabledLayerNames)
}

func TestInstanceCreateInfoValidation(t *testing.T) {
	opts := InstanceOptions{
		EnableValidation: true,
		Extensions:       []string{khr_surface.ExtensionName},
		DebugMessenger:   &ext_debug_utils.DebugUtilsMessengerCreateInfo{},
	}

	_, err := opts.createInfo(nil, sorted(khr_surface.ExtensionName, ext_debug_utils.ExtensionName))
	assert.ErrorIs(t, err, fault.ErrMissingLayer)

	info, err := opts.createInfo(sorted("VK_LAYER_KHRONOS_validation"), sorted(khr_surface.ExtensionName, ext_debug_utils.ExtensionName))
	require.NoError(t, err)
	assert.Equal(t, []string{"VK_LAYER_KHRONOS_validation"}, info.EnabledLayerNames)
	assert.Contains(t, info.EnabledExtensionNames, ext_debug_utils.ExtensionName)
}

func TestInstanceCreateInfoMissingExtension(t *testing.T) {
	_, err := InstanceOptions{Extensions: []string{"VK_KHR_xlib_surface"}}.createInfo(nil, sorted(khr_surface.ExtensionName))
	assert.ErrorIs(t, err, fault.ErrMissingExtension)
}

func TestInstanceCreateInfoPortability(t *testing.T) {
	info, err := InstanceOptions{}.createInfo(nil, sorted(khr_surface.ExtensionName, PortabilityEnumerationExtensionName))
	require.NoError(t, err)
	assert.Contains(t, info.EnabledExtensionNames, PortabilityEnumerationExtensionName)
	assert.NotZero(t, info.Flags&InstanceCreateEnumeratePortability)
}

func TestDeviceExtensions(t *testing.T) {
	extensions, err := deviceExtensions(nil, nil, sorted(khr_swapchain.ExtensionName))
	require.NoError(t, err)
	assert.Equal(t, []string{khr_swapchain.ExtensionName}, extensions)

	extensions, err = deviceExtensions(nil, nil, sorted(khr_swapchain.ExtensionName, khr_portability_subset.ExtensionName))
	require.NoError(t, err)
	assert.Equal(t, []string{khr_swapchain.ExtensionName, khr_portability_subset.ExtensionName}, extensions)

	_, err = deviceExtensions(nil, nil, nil)
	assert.ErrorIs(t, err, fault.ErrMissingExtension)
}
