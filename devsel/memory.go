package devsel

import "github.com/vkngwrapper/core/core1_0"

// NoMemoryType is returned by FindMemoryType when nothing qualifies.
const NoMemoryType = -1

// FindMemoryType returns the lowest memory type index that is set in typeBits
// and whose property flags include every flag in required, or NoMemoryType.
func FindMemoryType(props *core1_0.PhysicalDeviceMemoryProperties, typeBits uint32, required core1_0.MemoryPropertyFlags) int {
	if props == nil {
		return NoMemoryType
	}

	for index, memoryType := range props.MemoryTypes {
		if index >= 32 {
			break
		}
		if typeBits&(1<<uint(index)) == 0 {
			continue
		}
		if memoryType.PropertyFlags&required == required {
			return index
		}
	}

	return NoMemoryType
}
