// Package vulkan implements the pipeline and bind collaborator interfaces on
// top of goki/vulkan. It creates shader modules, layouts and pipelines,
// writes descriptor sets, records bind commands and forwards validation
// layer messages to a diag.Reporter. Instance, device and memory
// management stay with the caller.
package vulkan

import (
	"context"
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/spvkit/internal/logger"
	"github.com/gogpu/spvkit/pipeline"
	"github.com/gogpu/spvkit/shader"
	"github.com/gogpu/spvkit/spirv"
)

func newError(op string, ret vk.Result) error {
	if err := vk.Error(ret); err != nil {
		return fmt.Errorf("vulkan: %s: %w", op, err)
	}
	return nil
}

// Device creates pipeline objects on a logical device.
type Device struct {
	Device   vk.Device
	Features vk.PhysicalDeviceFeatures
	Cache    vk.PipelineCache
}

// NewDevice wraps dev, whose features are queried from gpu.
func NewDevice(gpu vk.PhysicalDevice, dev vk.Device) *Device {
	var f vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(gpu, &f)
	f.Deref()
	return &Device{Device: dev, Features: f, Cache: vk.NullPipelineCache}
}

var _ pipeline.Device = (*Device)(nil)

func (d *Device) SupportsCapability(c spirv.Capability) bool {
	return supports(&d.Features, c)
}

// supports maps a capability to the device feature that enables it.
// Capabilities core to every Vulkan shader device are always supported.
func supports(f *vk.PhysicalDeviceFeatures, c spirv.Capability) bool {
	on := func(b vk.Bool32) bool { return b == vk.True }
	switch c {
	case spirv.CapabilityFloat64:
		return on(f.ShaderFloat64)
	case spirv.CapabilityInt64:
		return on(f.ShaderInt64)
	case spirv.CapabilityInt16:
		return on(f.ShaderInt16)
	case spirv.CapabilityFloat16:
		// shaderFloat16 lives in VkPhysicalDeviceShaderFloat16Int8Features.
		return false
	case spirv.CapabilityUniformBufferArrayDynamicIndexing:
		return on(f.ShaderUniformBufferArrayDynamicIndexing)
	case spirv.CapabilitySampledImageArrayDynamicIndexing:
		return on(f.ShaderSampledImageArrayDynamicIndexing)
	case spirv.CapabilityStorageBufferArrayDynamicIndexing:
		return on(f.ShaderStorageBufferArrayDynamicIndexing)
	case spirv.CapabilityStorageImageArrayDynamicIndexing:
		return on(f.ShaderStorageImageArrayDynamicIndexing)
	case spirv.CapabilityImageCubeArray:
		return on(f.ImageCubeArray)
	case spirv.CapabilityStorageImageExtendedFormats:
		return on(f.ShaderStorageImageExtendedFormats)
	case spirv.CapabilityStorageImageReadWithoutFormat:
		return on(f.ShaderStorageImageReadWithoutFormat)
	case spirv.CapabilityStorageImageWriteWithoutFormat:
		return on(f.ShaderStorageImageWriteWithoutFormat)
	}
	return true
}

func stageBit(m spirv.ExecutionModel) vk.ShaderStageFlagBits {
	switch m {
	case spirv.ExecutionModelVertex:
		return vk.ShaderStageVertexBit
	case spirv.ExecutionModelFragment:
		return vk.ShaderStageFragmentBit
	}
	return vk.ShaderStageComputeBit
}

// shaderModuleInfo describes m for vkCreateShaderModule. CodeSize counts
// bytes, not words.
func shaderModuleInfo(m *shader.Module) *vk.ShaderModuleCreateInfo {
	return &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(m.Words) * 4),
		PCode:    m.Words,
	}
}

func (d *Device) CreateShaderModule(_ context.Context, m *shader.Module) (pipeline.Handle, error) {
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(d.Device, shaderModuleInfo(m), nil, &module)
	if err := newError("create shader module", ret); err != nil {
		return nil, err
	}
	return module, nil
}

func setLayoutBindings(l pipeline.SetLayout) []vk.DescriptorSetLayoutBinding {
	binds := make([]vk.DescriptorSetLayoutBinding, 0, len(l.Bindings))
	for _, b := range l.Bindings {
		binds = append(binds, vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  vk.DescriptorType(b.Type),
			DescriptorCount: b.Count,
			StageFlags:      vk.ShaderStageFlags(b.Stages),
		})
	}
	return binds
}

func (d *Device) CreateSetLayout(_ context.Context, l pipeline.SetLayout) (pipeline.Handle, error) {
	binds := setLayoutBindings(l)
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(d.Device, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(binds)),
		PBindings:    binds,
	}, nil, &layout)
	if err := newError("create descriptor set layout", ret); err != nil {
		return nil, err
	}
	return layout, nil
}

func pushRanges(push []pipeline.PushRange) []vk.PushConstantRange {
	ranges := make([]vk.PushConstantRange, 0, len(push))
	for _, p := range push {
		ranges = append(ranges, vk.PushConstantRange{
			StageFlags: vk.ShaderStageFlags(p.Stages),
			Offset:     p.Offset,
			Size:       p.Size,
		})
	}
	return ranges
}

// handle asserts that h holds a T.
func handle[T any](h any, what string) (T, error) {
	v, ok := h.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("vulkan: %s is %T, not %T", what, h, zero)
	}
	return v, nil
}

func (d *Device) CreatePipelineLayout(_ context.Context, sets []pipeline.Handle, push []pipeline.PushRange) (pipeline.Handle, error) {
	layouts := make([]vk.DescriptorSetLayout, len(sets))
	for i, s := range sets {
		l, err := handle[vk.DescriptorSetLayout](s, fmt.Sprintf("set layout %d", i))
		if err != nil {
			return nil, err
		}
		layouts[i] = l
	}
	ranges := pushRanges(push)
	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(d.Device, &vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(layouts)),
		PSetLayouts:            layouts,
		PushConstantRangeCount: uint32(len(ranges)),
		PPushConstantRanges:    ranges,
	}, nil, &layout)
	if err := newError("create pipeline layout", ret); err != nil {
		return nil, err
	}
	return layout, nil
}

func shaderStages(p *pipeline.Program, modules []pipeline.Handle) ([]vk.PipelineShaderStageCreateInfo, error) {
	stages := make([]vk.PipelineShaderStageCreateInfo, len(p.Modules))
	for i, m := range p.Modules {
		module, err := handle[vk.ShaderModule](modules[i], m.Stage.String()+" module")
		if err != nil {
			return nil, err
		}
		stages[i] = vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  stageBit(m.Stage),
			Module: module,
			PName:  m.EntryPoint + "\x00",
		}
	}
	return stages, nil
}

func (d *Device) CreateGraphicsPipeline(_ context.Context, desc pipeline.GraphicsDesc) (pipeline.Handle, error) {
	info, err := graphicsInfo(desc)
	if err != nil {
		return nil, err
	}
	pipelines := make([]vk.Pipeline, 1)
	ret := vk.CreateGraphicsPipelines(d.Device, d.Cache, 1, []vk.GraphicsPipelineCreateInfo{info}, nil, pipelines)
	if err := newError("create graphics pipeline", ret); err != nil {
		return nil, err
	}
	logger.Debug("created graphics pipeline", "program", desc.Program.ID, "stages", len(info.PStages))
	return pipelines[0], nil
}

func (d *Device) CreateComputePipeline(_ context.Context, desc pipeline.ComputeDesc) (pipeline.Handle, error) {
	stages, err := shaderStages(desc.Program, []pipeline.Handle{desc.Module})
	if err != nil {
		return nil, err
	}
	layout, err := handle[vk.PipelineLayout](desc.Layout, "pipeline layout")
	if err != nil {
		return nil, err
	}
	pipelines := make([]vk.Pipeline, 1)
	ret := vk.CreateComputePipelines(d.Device, d.Cache, 1, []vk.ComputePipelineCreateInfo{{
		SType:  vk.StructureTypeComputePipelineCreateInfo,
		Stage:  stages[0],
		Layout: layout,
	}}, nil, pipelines)
	if err := newError("create compute pipeline", ret); err != nil {
		return nil, err
	}
	return pipelines[0], nil
}

// Destroy releases every object Compile created for pl.
func (d *Device) Destroy(pl *pipeline.Pipeline) {
	if p, ok := pl.Handle.(vk.Pipeline); ok {
		vk.DestroyPipeline(d.Device, p, nil)
	}
	if l, ok := pl.Layout.(vk.PipelineLayout); ok {
		vk.DestroyPipelineLayout(d.Device, l, nil)
	}
	for _, h := range pl.SetLayouts {
		if l, ok := h.(vk.DescriptorSetLayout); ok {
			vk.DestroyDescriptorSetLayout(d.Device, l, nil)
		}
	}
	for _, h := range pl.Modules {
		if m, ok := h.(vk.ShaderModule); ok {
			vk.DestroyShaderModule(d.Device, m, nil)
		}
	}
}
