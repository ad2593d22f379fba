// Package vkutil wraps the one-call device operations the rest of presentkit
// and its callers lean on. Every failure is reported through the Helper's
// reporter.
package vkutil

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/presentkit/fault"
	"github.com/vkngwrapper/presentkit/prefs"
)

type Helper struct {
	device   core1_0.Device
	reporter fault.Reporter
}

func New(device core1_0.Device, reporter fault.Reporter) *Helper {
	return &Helper{device: device, reporter: reporter}
}

func (h *Helper) CreateSemaphore() (core1_0.Semaphore, error) {
	semaphore, _, err := h.device.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return nil, fault.Check(h.reporter, err, "vkCreateSemaphore")
	}
	return semaphore, nil
}

func (h *Helper) CreateFence(signaled bool) (core1_0.Fence, error) {
	var info core1_0.FenceCreateInfo
	if signaled {
		info.Flags = core1_0.FenceCreateSignaled
	}

	fence, _, err := h.device.CreateFence(nil, info)
	if err != nil {
		return nil, fault.Check(h.reporter, err, "vkCreateFence")
	}
	return fence, nil
}

// CreateShaderModule creates a shader module from little-endian SPIR-V bytes.
func (h *Helper) CreateShaderModule(spirv []byte) (core1_0.ShaderModule, error) {
	code, err := BytesToBytecode(spirv)
	if err != nil {
		fault.Report(h.reporter, err)
		return nil, err
	}

	module, _, err := h.device.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{Code: code})
	if err != nil {
		return nil, fault.Check(h.reporter, err, "vkCreateShaderModule")
	}
	return module, nil
}

// BytesToBytecode packs little-endian bytes into SPIR-V words.
func BytesToBytecode(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, errors.Newf("spir-v length %d is not a multiple of 4", len(b))
	}

	byteCode := make([]uint32, len(b)/4)
	for i := range byteCode {
		byteIndex := i * 4
		byteCode[i] = uint32(b[byteIndex]) |
			uint32(b[byteIndex+1])<<8 |
			uint32(b[byteIndex+2])<<16 |
			uint32(b[byteIndex+3])<<24
	}
	return byteCode, nil
}

func (h *Helper) CreateCommandPool(flags core1_0.CommandPoolCreateFlags, queueFamilyIndex int) (core1_0.CommandPool, error) {
	pool, _, err := h.device.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            flags,
		QueueFamilyIndex: &queueFamilyIndex,
	})
	if err != nil {
		return nil, fault.Check(h.reporter, err, "vkCreateCommandPool")
	}
	return pool, nil
}

func (h *Helper) AllocateCommandBuffers(pool core1_0.CommandPool, level core1_0.CommandBufferLevel, count int) ([]core1_0.CommandBuffer, error) {
	buffers, _, err := h.device.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        pool,
		Level:              level,
		CommandBufferCount: count,
	})
	if err != nil {
		return nil, fault.Check(h.reporter, err, "vkAllocateCommandBuffers")
	}
	return buffers, nil
}

// BeginOneOff allocates a primary command buffer from pool and begins it for
// a single submission.
func (h *Helper) BeginOneOff(pool core1_0.CommandPool) (core1_0.CommandBuffer, error) {
	buffers, err := h.AllocateCommandBuffers(pool, core1_0.CommandBufferLevelPrimary, 1)
	if err != nil {
		return nil, err
	}

	buffer := buffers[0]
	_, err = buffer.Begin(core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		h.device.FreeCommandBuffers(buffers)
		return nil, fault.Check(h.reporter, err, "vkBeginCommandBuffer")
	}
	return buffer, nil
}

// FinishOneOff ends buffer, submits it to queue, and blocks until it has
// executed. The buffer is freed whether or not that succeeds.
func (h *Helper) FinishOneOff(queue core1_0.Queue, buffer core1_0.CommandBuffer) error {
	defer h.device.FreeCommandBuffers([]core1_0.CommandBuffer{buffer})

	if _, err := buffer.End(); err != nil {
		return fault.Check(h.reporter, err, "vkEndCommandBuffer")
	}

	fence, err := h.CreateFence(false)
	if err != nil {
		return err
	}
	defer fence.Destroy(nil)

	_, err = queue.Submit(fence, []core1_0.SubmitInfo{
		{
			CommandBuffers: []core1_0.CommandBuffer{buffer},
		},
	})
	if err != nil {
		return fault.Check(h.reporter, err, "vkQueueSubmit")
	}

	if _, err := fence.Wait(common.NoTimeout); err != nil {
		return fault.Check(h.reporter, err, "vkWaitForFences")
	}
	return nil
}

// TransitionDepthImage moves a freshly created depth image into the
// depth-stencil attachment layout.
func (h *Helper) TransitionDepthImage(pool core1_0.CommandPool, queue core1_0.Queue, image core1_0.Image, format core1_0.Format) error {
	buffer, err := h.BeginOneOff(pool)
	if err != nil {
		return err
	}

	err = buffer.CmdPipelineBarrier(core1_0.PipelineStageTopOfPipe, core1_0.PipelineStageEarlyFragmentTests, 0, nil, nil, []core1_0.ImageMemoryBarrier{
		DepthBarrier(image, format),
	})
	if err != nil {
		h.device.FreeCommandBuffers([]core1_0.CommandBuffer{buffer})
		return fault.Check(h.reporter, err, "vkCmdPipelineBarrier")
	}

	return h.FinishOneOff(queue, buffer)
}

// DepthBarrier is the image barrier TransitionDepthImage records.
func DepthBarrier(image core1_0.Image, format core1_0.Format) core1_0.ImageMemoryBarrier {
	return core1_0.ImageMemoryBarrier{
		OldLayout:           core1_0.ImageLayoutUndefined,
		NewLayout:           core1_0.ImageLayoutDepthStencilAttachmentOptimal,
		SrcQueueFamilyIndex: -1,
		DstQueueFamilyIndex: -1,
		Image:               image,
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     prefs.DepthAspect(format),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		SrcAccessMask: 0,
		DstAccessMask: core1_0.AccessDepthStencilAttachmentRead | core1_0.AccessDepthStencilAttachmentWrite,
	}
}
