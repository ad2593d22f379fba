package prefs

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
)

// FormatPropertiesSource is satisfied by core1_0.PhysicalDevice.
type FormatPropertiesSource interface {
	FormatProperties(format core1_0.Format) *core1_0.FormatProperties
}

// ChooseDepthFormat returns the best ranked format whose optimal tiling
// supports depth-stencil attachments. A nil list uses DefaultDepthFormats.
func ChooseDepthFormat(preferred []core1_0.Format, src FormatPropertiesSource) (core1_0.Format, error) {
	preferred = orDefault(preferred, DefaultDepthFormats)

	var available []core1_0.Format
	for _, format := range preferred {
		props := src.FormatProperties(format)
		if props != nil && props.OptimalTilingFeatures&core1_0.FormatFeatureDepthStencilAttachment != 0 {
			available = append(available, format)
		}
	}

	format, err := MatchComparable(preferred, available)
	if err != nil {
		return format, errors.Wrap(err, "choose depth format")
	}
	return format, nil
}

// HasStencil reports whether format carries a stencil component.
func HasStencil(format core1_0.Format) bool {
	switch format {
	case core1_0.FormatD16UnsignedNormalizedS8UnsignedInt,
		core1_0.FormatD24UnsignedNormalizedS8UnsignedInt,
		core1_0.FormatD32SignedFloatS8UnsignedInt,
		core1_0.FormatS8UnsignedInt:
		return true
	}
	return false
}

// DepthAspect returns the view aspect mask for a depth/stencil format.
func DepthAspect(format core1_0.Format) core1_0.ImageAspectFlags {
	switch {
	case format == core1_0.FormatS8UnsignedInt:
		return core1_0.ImageAspectStencil
	case HasStencil(format):
		return core1_0.ImageAspectDepth | core1_0.ImageAspectStencil
	default:
		return core1_0.ImageAspectDepth
	}
}
