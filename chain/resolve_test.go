package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/presentkit/fault"
)

func TestResolveExtent(t *testing.T) {
	undefined := &khr_surface.Capabilities{
		CurrentExtent:  core1_0.Extent2D{Width: -1, Height: -1},
		MinImageExtent: core1_0.Extent2D{Width: 64, Height: 64},
		MaxImageExtent: core1_0.Extent2D{Width: 4096, Height: 4096},
	}
	fixed := &khr_surface.Capabilities{
		CurrentExtent:  core1_0.Extent2D{Width: 1920, Height: 1080},
		MinImageExtent: core1_0.Extent2D{Width: 64, Height: 64},
		MaxImageExtent: core1_0.Extent2D{Width: 4096, Height: 4096},
	}

	cases := []struct {
		name      string
		caps      *khr_surface.Capabilities
		suggested core1_0.Extent2D
		want      core1_0.Extent2D
	}{
		{"undefined in range", undefined, core1_0.Extent2D{Width: 100, Height: 100}, core1_0.Extent2D{Width: 100, Height: 100}},
		{"undefined below min", undefined, core1_0.Extent2D{Width: 10, Height: 10}, core1_0.Extent2D{Width: 64, Height: 64}},
		{"undefined above max", undefined, core1_0.Extent2D{Width: 9000, Height: 300}, core1_0.Extent2D{Width: 4096, Height: 300}},
		{"current is authoritative", fixed, core1_0.Extent2D{Width: 100, Height: 100}, core1_0.Extent2D{Width: 1920, Height: 1080}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveExtent(tc.caps, tc.suggested))
		})
	}
}

func TestExtentUndefined(t *testing.T) {
	assert.True(t, ExtentUndefined(&khr_surface.Capabilities{CurrentExtent: core1_0.Extent2D{Width: -1, Height: -1}}))
	assert.False(t, ExtentUndefined(&khr_surface.Capabilities{CurrentExtent: core1_0.Extent2D{Width: 0, Height: 720}}))
}

func TestResolveImageCount(t *testing.T) {
	cases := []struct {
		name      string
		min, max  int
		preferred int
		bound     int
		want      int
	}{
		{"zero gets min", 2, 8, 0, 0, 2},
		{"zero within a bound of min", 2, 8, 0, 2, 2},
		{"clamped up to min", 3, 8, 1, 0, 3},
		{"clamped down to max", 2, 4, 6, 0, 4},
		{"unbounded max", 2, 0, 16, 0, 16},
		{"within bound", 2, 8, 3, 3, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			count, err := ResolveImageCount(&khr_surface.Capabilities{MinImageCount: tc.min, MaxImageCount: tc.max}, tc.preferred, tc.bound)
			require.NoError(t, err)
			assert.Equal(t, tc.want, count)
		})
	}

	_, err := ResolveImageCount(&khr_surface.Capabilities{MinImageCount: 4}, 2, 3)
	assert.ErrorIs(t, err, fault.ErrImageCountBound)
}

func TestResolvePreTransform(t *testing.T) {
	assert.Equal(t, khr_surface.TransformIdentity, ResolvePreTransform(&khr_surface.Capabilities{
		SupportedTransforms: khr_surface.TransformIdentity | khr_surface.TransformRotate90,
		CurrentTransform:    khr_surface.TransformRotate90,
	}))
	assert.Equal(t, khr_surface.TransformRotate90, ResolvePreTransform(&khr_surface.Capabilities{
		SupportedTransforms: khr_surface.TransformRotate90,
		CurrentTransform:    khr_surface.TransformRotate90,
	}))
}
