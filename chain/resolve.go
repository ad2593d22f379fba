package chain

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/presentkit/fault"
)

// ExtentUndefined reports whether the surface leaves the extent to the
// swapchain, which it signals with a current extent of 0xFFFFFFFF.
func ExtentUndefined(caps *khr_surface.Capabilities) bool {
	return uint32(caps.CurrentExtent.Width) == math.MaxUint32 || uint32(caps.CurrentExtent.Height) == math.MaxUint32
}

// ResolveExtent returns the surface's current extent, or suggested clamped
// into the supported range when the surface leaves the extent undefined.
func ResolveExtent(caps *khr_surface.Capabilities, suggested core1_0.Extent2D) core1_0.Extent2D {
	if !ExtentUndefined(caps) {
		return caps.CurrentExtent
	}

	return core1_0.Extent2D{
		Width:  clamp(suggested.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(suggested.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ResolveImageCount clamps preferred into the surface's image count range, so
// a preferred count of 0 gets the minimum. A maximum of 0 means no upper
// limit. A result above bound fails with ErrImageCountBound unless bound is 0.
func ResolveImageCount(caps *khr_surface.Capabilities, preferred, bound int) (int, error) {
	count := preferred
	if count < caps.MinImageCount {
		count = caps.MinImageCount
	}
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}

	if bound > 0 && count > bound {
		return count, fault.Mark(errors.Newf("resolved image count %d exceeds bound %d", count, bound), fault.ErrImageCountBound)
	}
	return count, nil
}

// ResolvePreTransform keeps images untransformed when the surface allows it,
// otherwise it uses the surface's current transform.
func ResolvePreTransform(caps *khr_surface.Capabilities) khr_surface.SurfaceTransformFlags {
	if caps.SupportedTransforms&khr_surface.TransformIdentity != 0 {
		return khr_surface.TransformIdentity
	}
	return caps.CurrentTransform
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
