package prefs

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/extensions/khr_surface"
)

// CompositeAlphaBits splits a composite alpha bitset into its single bits,
// lowest first.
func CompositeAlphaBits(flags khr_surface.CompositeAlphaFlags) []khr_surface.CompositeAlphaFlags {
	var bits []khr_surface.CompositeAlphaFlags
	for bit := khr_surface.CompositeAlphaFlags(1); bit != 0 && bit <= flags; bit <<= 1 {
		if flags&bit != 0 {
			bits = append(bits, bit)
		}
	}
	return bits
}

// ChooseCompositeAlpha picks the best ranked single composite alpha bit that
// the surface supports. A nil list uses DefaultCompositeAlpha.
func ChooseCompositeAlpha(preferred []khr_surface.CompositeAlphaFlags, supported khr_surface.CompositeAlphaFlags) (khr_surface.CompositeAlphaFlags, error) {
	alpha, err := MatchComparable(orDefault(preferred, DefaultCompositeAlpha), CompositeAlphaBits(supported))
	if err != nil {
		return alpha, errors.Wrapf(err, "choose composite alpha from %s", supported)
	}
	return alpha, nil
}
