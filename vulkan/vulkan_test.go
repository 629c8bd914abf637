package vulkan

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvkit/bind"
	"github.com/gogpu/spvkit/diag"
	"github.com/gogpu/spvkit/format"
	"github.com/gogpu/spvkit/pipeline"
	"github.com/gogpu/spvkit/shader"
	"github.com/gogpu/spvkit/spirv"
)

func TestSupports(t *testing.T) {
	f := vk.PhysicalDeviceFeatures{
		ShaderFloat64:                          vk.True,
		ShaderSampledImageArrayDynamicIndexing: vk.True,
	}
	assert.True(t, supports(&f, spirv.CapabilityShader))
	assert.True(t, supports(&f, spirv.CapabilityImageQuery))
	assert.True(t, supports(&f, spirv.CapabilityFloat64))
	assert.True(t, supports(&f, spirv.CapabilitySampledImageArrayDynamicIndexing))
	assert.False(t, supports(&f, spirv.CapabilityInt64))
	assert.False(t, supports(&f, spirv.CapabilityStorageImageArrayDynamicIndexing))
	assert.False(t, supports(&f, spirv.CapabilityFloat16))

	d := &Device{Features: f}
	assert.False(t, d.SupportsCapability(spirv.CapabilityStorageImageWriteWithoutFormat))
}

func TestSetLayoutBindings(t *testing.T) {
	binds := setLayoutBindings(pipeline.SetLayout{Set: 1, Bindings: []pipeline.SetBinding{
		{Name: "albedo", Binding: 0, Type: pipeline.DescriptorCombinedImageSampler, Count: 1, Stages: shader.StageFragment},
		{Name: "lights", Binding: 2, Type: pipeline.DescriptorUniformBuffer, Count: 4, Stages: shader.StageVertex | shader.StageFragment},
	}})
	require.Len(t, binds, 2)
	assert.Equal(t, vk.DescriptorTypeCombinedImageSampler, binds[0].DescriptorType)
	assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageFragmentBit), binds[0].StageFlags)
	assert.Equal(t, uint32(2), binds[1].Binding)
	assert.Equal(t, uint32(4), binds[1].DescriptorCount)
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, binds[1].DescriptorType)
	assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageVertexBit|vk.ShaderStageFragmentBit), binds[1].StageFlags)

	ranges := pushRanges([]pipeline.PushRange{{Name: "push", Stages: shader.StageCompute, Size: 16}})
	assert.Equal(t, []vk.PushConstantRange{{StageFlags: vk.ShaderStageFlags(vk.ShaderStageComputeBit), Size: 16}}, ranges)
}

func testLayout() pipeline.Layout {
	rgba8 := format.Of[format.RGBA8Unorm]()
	return pipeline.Layout{
		VertexBindings: []pipeline.VertexBinding{
			{Binding: 0, Stride: 20},
			{Binding: 1, Stride: 16, PerInstance: true},
		},
		VertexAttributes: []pipeline.VertexAttribute{
			{Name: "verts.Pos", Location: 0, Binding: 0, Offset: 0, Format: format.Of[format.RGB32Float]()},
			{Name: "verts.UV", Location: 1, Binding: 0, Offset: 12, Format: format.Of[format.RG32Float]()},
		},
		ColorAttachments: []pipeline.ColorAttachment{
			{Name: "color", Location: 0, Format: rgba8},
			{Name: "normal", Location: 1, Format: rgba8},
		},
	}
}

func TestVertexInput(t *testing.T) {
	l := testLayout()
	vi := vertexInput(&l)
	assert.Equal(t, uint32(2), vi.VertexBindingDescriptionCount)
	assert.Equal(t, vk.VertexInputRateVertex, vi.PVertexBindingDescriptions[0].InputRate)
	assert.Equal(t, vk.VertexInputRateInstance, vi.PVertexBindingDescriptions[1].InputRate)
	require.Len(t, vi.PVertexAttributeDescriptions, 2)
	assert.Equal(t, vk.FormatR32g32b32Sfloat, vi.PVertexAttributeDescriptions[0].Format)
	assert.Equal(t, vk.FormatR32g32Sfloat, vi.PVertexAttributeDescriptions[1].Format)
	assert.Equal(t, uint32(12), vi.PVertexAttributeDescriptions[1].Offset)
}

func TestFixedFunction(t *testing.T) {
	r := rasterization(pipeline.State{})
	assert.Equal(t, vk.PolygonModeFill, r.PolygonMode)
	assert.Equal(t, vk.CullModeFlags(vk.CullModeNone), r.CullMode)
	assert.Equal(t, vk.FrontFaceCounterClockwise, r.FrontFace)

	r = rasterization(pipeline.State{Cull: pipeline.CullBack, Clockwise: true, Wireframe: true})
	assert.Equal(t, vk.PolygonModeLine, r.PolygonMode)
	assert.Equal(t, vk.CullModeFlags(vk.CullModeBackBit), r.CullMode)
	assert.Equal(t, vk.FrontFaceClockwise, r.FrontFace)

	l := testLayout()
	b := colorBlend(&l, pipeline.Blend{})
	require.Len(t, b.PAttachments, 2)
	assert.Equal(t, vk.Bool32(vk.False), b.PAttachments[0].BlendEnable)

	b = colorBlend(&l, pipeline.AlphaBlend)
	for _, a := range b.PAttachments {
		assert.Equal(t, vk.Bool32(vk.True), a.BlendEnable)
		assert.Equal(t, vk.BlendFactorSrcAlpha, a.SrcColorBlendFactor)
		assert.Equal(t, vk.BlendFactorOneMinusSrcAlpha, a.DstColorBlendFactor)
		assert.Equal(t, vk.BlendOpAdd, a.ColorBlendOp)
		assert.Equal(t, vk.BlendFactorOne, a.SrcAlphaBlendFactor)
	}

	ds := depthStencil(pipeline.State{DepthTest: true})
	assert.Equal(t, vk.Bool32(vk.True), ds.DepthTestEnable)
	assert.Equal(t, vk.Bool32(vk.False), ds.DepthWriteEnable)
}

func TestGraphicsInfo(t *testing.T) {
	var (
		vs, fs vk.ShaderModule
		layout vk.PipelineLayout
		pass   vk.RenderPass
	)
	prog := &pipeline.Program{
		Modules: []*shader.Module{
			{Stage: spirv.ExecutionModelVertex, EntryPoint: shader.EntryPointName},
			{Stage: spirv.ExecutionModelFragment, EntryPoint: shader.EntryPointName},
		},
		Layout: testLayout(),
	}
	desc := pipeline.GraphicsDesc{
		Program: prog,
		Modules: []pipeline.Handle{vs, fs},
		Layout:  layout,
		State:   pipeline.State{Topology: pipeline.LineStrip, RenderPass: pass},
	}
	info, err := graphicsInfo(desc)
	require.NoError(t, err)
	require.Len(t, info.PStages, 2)
	assert.Equal(t, vk.ShaderStageVertexBit, info.PStages[0].Stage)
	assert.Equal(t, vk.ShaderStageFragmentBit, info.PStages[1].Stage)
	assert.Equal(t, "main\x00", info.PStages[0].PName)
	assert.Equal(t, vk.PrimitiveTopologyLineStrip, info.PInputAssemblyState.Topology)
	assert.Equal(t, uint32(2), info.PColorBlendState.AttachmentCount)
	assert.Equal(t, uint32(2), info.PDynamicState.DynamicStateCount)

	bad := desc
	bad.State.RenderPass = nil
	_, err = graphicsInfo(bad)
	assert.ErrorContains(t, err, "render pass")

	bad = desc
	bad.Modules = []pipeline.Handle{vs, "fragment"}
	_, err = graphicsInfo(bad)
	assert.ErrorContains(t, err, "is string")

	bad = desc
	bad.State.Topology = 99
	_, err = graphicsInfo(bad)
	assert.Error(t, err)
}

func TestDescriptorWrites(t *testing.T) {
	var (
		set     vk.DescriptorSet
		buf     vk.Buffer
		view    vk.ImageView
		sampler vk.Sampler
	)
	wds, err := descriptorWrites(set, []bind.Write{
		{Name: "params", Binding: 0, Type: pipeline.DescriptorUniformBuffer,
			Buffer: &bind.BufferInfo{Buffer: buf, Offset: 64, Range: 32}},
		{Name: "target", Binding: 1, ArrayElement: 2, Type: pipeline.DescriptorStorageImage,
			Image: &bind.ImageInfo{View: view}},
		{Name: "linear", Binding: 2, Type: pipeline.DescriptorSampler,
			Image: &bind.ImageInfo{Sampler: sampler}},
	})
	require.NoError(t, err)
	require.Len(t, wds, 3)
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, wds[0].DescriptorType)
	assert.Equal(t, vk.DeviceSize(64), wds[0].PBufferInfo[0].Offset)
	assert.Equal(t, vk.DeviceSize(32), wds[0].PBufferInfo[0].Range)
	assert.Equal(t, uint32(2), wds[1].DstArrayElement)
	assert.Equal(t, vk.ImageLayoutGeneral, wds[1].PImageInfo[0].ImageLayout)
	assert.Equal(t, vk.ImageLayoutShaderReadOnlyOptimal, wds[2].PImageInfo[0].ImageLayout)

	_, err = descriptorWrites(set, []bind.Write{{Name: "params", Buffer: &bind.BufferInfo{Buffer: 7}}})
	assert.ErrorContains(t, err, "params is int")

	_, err = descriptorWrites(set, []bind.Write{{Name: "empty"}})
	assert.Error(t, err)

	assert.Error(t, Writer{}.WriteDescriptors("set", nil))
}

func TestDebugReport(t *testing.T) {
	var col diag.Collector
	fn := reportFunc(&col)
	ret := fn(vk.DebugReportFlags(vk.DebugReportErrorBit), 0, 0, 0, 42, "Validation", "bad layout", nil)
	assert.Equal(t, vk.Bool32(vk.False), ret)
	fn(vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit), 0, 0, 0, 7, "Validation", "slow path", nil)
	fn(vk.DebugReportFlags(vk.DebugReportInformationBit), 0, 0, 0, 0, "Loader", "hello", nil)

	require.Len(t, col.Messages, 3)
	assert.Equal(t, diag.Message{Severity: diag.SeverityError, Source: "Validation", Code: 42, Text: "bad layout"}, col.Messages[0])
	assert.Equal(t, diag.SeverityWarning, col.Messages[1].Severity)
	assert.Equal(t, diag.SeverityInfo, col.Messages[2].Severity)

	abort := &diag.LogReporter{Logger: log.New(io.Discard), AbortAt: diag.SeverityWarning}
	ret = reportFunc(abort)(vk.DebugReportFlags(vk.DebugReportWarningBit), 0, 0, 0, 1, "Validation", "stop", nil)
	assert.Equal(t, vk.Bool32(vk.True), ret)
}
