package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/presentkit/fault"
)

type formatTable map[core1_0.Format]core1_0.FormatFeatureFlags

func (f formatTable) FormatProperties(format core1_0.Format) *core1_0.FormatProperties {
	return &core1_0.FormatProperties{OptimalTilingFeatures: f[format]}
}

func TestChooseDepthFormatSkipsUnsupported(t *testing.T) {
	src := formatTable{
		core1_0.FormatD32SignedFloat:                     core1_0.FormatFeatureSampledImage,
		core1_0.FormatD24UnsignedNormalizedS8UnsignedInt: core1_0.FormatFeatureDepthStencilAttachment,
	}

	format, err := ChooseDepthFormat([]core1_0.Format{core1_0.FormatD32SignedFloat, core1_0.FormatD24UnsignedNormalizedS8UnsignedInt}, src)
	require.NoError(t, err)
	assert.Equal(t, core1_0.FormatD24UnsignedNormalizedS8UnsignedInt, format)
	assert.NotZero(t, DepthAspect(format)&core1_0.ImageAspectStencil)
	assert.NotZero(t, DepthAspect(format)&core1_0.ImageAspectDepth)
}

func TestChooseDepthFormatDefaults(t *testing.T) {
	src := formatTable{
		core1_0.FormatD32SignedFloat:                     core1_0.FormatFeatureDepthStencilAttachment,
		core1_0.FormatD24UnsignedNormalizedS8UnsignedInt: core1_0.FormatFeatureDepthStencilAttachment,
	}

	format, err := ChooseDepthFormat(nil, src)
	require.NoError(t, err)
	assert.Equal(t, core1_0.FormatD32SignedFloat, format)
	assert.Equal(t, core1_0.ImageAspectDepth, DepthAspect(format))
}

func TestChooseDepthFormatNone(t *testing.T) {
	_, err := ChooseDepthFormat(nil, formatTable{})
	assert.ErrorIs(t, err, fault.ErrNoMatch)
}

func TestDepthAspect(t *testing.T) {
	assert.Equal(t, core1_0.ImageAspectDepth, DepthAspect(core1_0.FormatD16UnsignedNormalized))
	assert.Equal(t, core1_0.ImageAspectDepth|core1_0.ImageAspectStencil, DepthAspect(core1_0.FormatD16UnsignedNormalizedS8UnsignedInt))
	assert.Equal(t, core1_0.ImageAspectDepth|core1_0.ImageAspectStencil, DepthAspect(core1_0.FormatD32SignedFloatS8UnsignedInt))
	assert.Equal(t, core1_0.ImageAspectStencil, DepthAspect(core1_0.FormatS8UnsignedInt))
	assert.False(t, HasStencil(core1_0.FormatD32SignedFloat))
}
