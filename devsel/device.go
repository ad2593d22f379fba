// Package devsel picks the physical device, assigns queue families, resolves
// memory types, and creates the instance and logical device around those
// choices.
package devsel

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/presentkit/fault"
)

// PropertiesSource is satisfied by core1_0.PhysicalDevice.
type PropertiesSource interface {
	Properties() (*core1_0.PhysicalDeviceProperties, error)
}

// TypePriority is the order device types are preferred in.
var TypePriority = []core1_0.PhysicalDeviceType{
	core1_0.PhysicalDeviceTypeDiscreteGPU,
	core1_0.PhysicalDeviceTypeIntegratedGPU,
	core1_0.PhysicalDeviceTypeVirtualGPU,
	core1_0.PhysicalDeviceTypeCPU,
	core1_0.PhysicalDeviceTypeOther,
}

// ChoosePhysicalDevice returns the first device, in enumeration order, of the
// most preferred device type present.
//
// When suitable is non-nil, devices it rejects are skipped: selection falls
// through to later devices of the same type, then to less preferred types.
func ChoosePhysicalDevice[D PropertiesSource](devices []D, suitable func(D) bool) (D, error) {
	var zero D
	if len(devices) == 0 {
		return zero, fault.Mark(errors.New("enumeration returned no physical devices"), fault.ErrNoDevice)
	}

	types := make([]core1_0.PhysicalDeviceType, len(devices))
	for i, device := range devices {
		props, err := device.Properties()
		if err != nil {
			return zero, errors.Wrapf(err, "read properties of physical device %d", i)
		}
		types[i] = props.DriverType
	}

	for _, want := range TypePriority {
		for i, device := range devices {
			if types[i] != want {
				continue
			}
			if suitable != nil && !suitable(device) {
				continue
			}
			return device, nil
		}
	}

	return zero, fault.Mark(errors.Newf("none of %d physical devices is suitable", len(devices)), fault.ErrNoDevice)
}
