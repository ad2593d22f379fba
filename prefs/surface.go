package prefs

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/presentkit/fault"
)

// ChooseSurfaceFormat selects a (format, color space) pair jointly. Over the
// whole available set it minimizes the format rank first and the color space
// rank second. Pairs with an unranked format or color space are ignored. Nil
// lists use DefaultSurfaceFormats and DefaultColorSpaces.
func ChooseSurfaceFormat(formats []core1_0.Format, spaces []khr_surface.ColorSpace, available []khr_surface.Format) (khr_surface.Format, error) {
	formats = orDefault(formats, DefaultSurfaceFormats)
	spaces = orDefault(spaces, DefaultColorSpaces)

	bestFormat, bestSpace := len(formats), len(spaces)
	var best khr_surface.Format

	for _, pair := range available {
		formatRank := rankOf(formats, pair.Format)
		if formatRank < 0 || formatRank > bestFormat {
			continue
		}

		spaceRank := rankOf(spaces, pair.ColorSpace)
		if spaceRank < 0 {
			continue
		}

		if formatRank < bestFormat || spaceRank < bestSpace {
			bestFormat, bestSpace = formatRank, spaceRank
			best = pair
		}
	}

	if bestFormat == len(formats) {
		return best, fault.Mark(errors.Newf("no surface format among %d available matches %d formats and %d color spaces", len(available), len(formats), len(spaces)), fault.ErrNoMatch)
	}

	return best, nil
}
