package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/spvkit/pipeline"
)

var topologies = map[pipeline.Topology]vk.PrimitiveTopology{
	pipeline.TriangleList:  vk.PrimitiveTopologyTriangleList,
	pipeline.TriangleStrip: vk.PrimitiveTopologyTriangleStrip,
	pipeline.LineList:      vk.PrimitiveTopologyLineList,
	pipeline.LineStrip:     vk.PrimitiveTopologyLineStrip,
	pipeline.PointList:     vk.PrimitiveTopologyPointList,
}

var blendFactors = [...]vk.BlendFactor{
	pipeline.BlendZero:             vk.BlendFactorZero,
	pipeline.BlendOne:              vk.BlendFactorOne,
	pipeline.BlendSrcColor:         vk.BlendFactorSrcColor,
	pipeline.BlendOneMinusSrcColor: vk.BlendFactorOneMinusSrcColor,
	pipeline.BlendSrcAlpha:         vk.BlendFactorSrcAlpha,
	pipeline.BlendOneMinusSrcAlpha: vk.BlendFactorOneMinusSrcAlpha,
	pipeline.BlendDstAlpha:         vk.BlendFactorDstAlpha,
	pipeline.BlendOneMinusDstAlpha: vk.BlendFactorOneMinusDstAlpha,
}

func blendFactor(f pipeline.BlendFactor) vk.BlendFactor {
	if int(f) < len(blendFactors) {
		return blendFactors[f]
	}
	return vk.BlendFactorOne
}

func boolean(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

func vertexInput(l *pipeline.Layout) vk.PipelineVertexInputStateCreateInfo {
	binds := make([]vk.VertexInputBindingDescription, 0, len(l.VertexBindings))
	for _, b := range l.VertexBindings {
		rate := vk.VertexInputRateVertex
		if b.PerInstance {
			rate = vk.VertexInputRateInstance
		}
		binds = append(binds, vk.VertexInputBindingDescription{
			Binding:   b.Binding,
			Stride:    b.Stride,
			InputRate: rate,
		})
	}
	attrs := make([]vk.VertexInputAttributeDescription, 0, len(l.VertexAttributes))
	for _, a := range l.VertexAttributes {
		attrs = append(attrs, vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  a.Binding,
			Format:   vk.Format(a.Format.Wire),
			Offset:   a.Offset,
		})
	}
	return vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(binds)),
		PVertexBindingDescriptions:      binds,
		VertexAttributeDescriptionCount: uint32(len(attrs)),
		PVertexAttributeDescriptions:    attrs,
	}
}

func rasterization(s pipeline.State) vk.PipelineRasterizationStateCreateInfo {
	info := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vk.PolygonModeFill,
		CullMode:    vk.CullModeFlags(vk.CullModeNone),
		FrontFace:   vk.FrontFaceCounterClockwise,
		LineWidth:   1,
	}
	if s.Wireframe {
		info.PolygonMode = vk.PolygonModeLine
	}
	switch s.Cull {
	case pipeline.CullBack:
		info.CullMode = vk.CullModeFlags(vk.CullModeBackBit)
	case pipeline.CullFront:
		info.CullMode = vk.CullModeFlags(vk.CullModeFrontBit)
	}
	if s.Clockwise {
		info.FrontFace = vk.FrontFaceClockwise
	}
	return info
}

// colorBlend returns one attachment state per color attachment of l.
func colorBlend(l *pipeline.Layout, b pipeline.Blend) vk.PipelineColorBlendStateCreateInfo {
	mask := vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit)
	atts := make([]vk.PipelineColorBlendAttachmentState, len(l.ColorAttachments))
	for i := range atts {
		atts[i] = vk.PipelineColorBlendAttachmentState{ColorWriteMask: mask}
		if !b.Enabled {
			continue
		}
		atts[i].BlendEnable = vk.True
		atts[i].SrcColorBlendFactor = blendFactor(b.SrcColor)
		atts[i].DstColorBlendFactor = blendFactor(b.DstColor)
		atts[i].ColorBlendOp = vk.BlendOp(b.ColorOp)
		atts[i].SrcAlphaBlendFactor = blendFactor(b.SrcAlpha)
		atts[i].DstAlphaBlendFactor = blendFactor(b.DstAlpha)
		atts[i].AlphaBlendOp = vk.BlendOp(b.AlphaOp)
	}
	return vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: uint32(len(atts)),
		PAttachments:    atts,
	}
}

func depthStencil(s pipeline.State) vk.PipelineDepthStencilStateCreateInfo {
	return vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  boolean(s.DepthTest),
		DepthWriteEnable: boolean(s.DepthWrite),
		DepthCompareOp:   vk.CompareOpLess,
	}
}

// graphicsInfo assembles the create info of a graphics pipeline. Viewport
// and scissor are dynamic.
func graphicsInfo(d pipeline.GraphicsDesc) (vk.GraphicsPipelineCreateInfo, error) {
	stages, err := shaderStages(d.Program, d.Modules)
	if err != nil {
		return vk.GraphicsPipelineCreateInfo{}, err
	}
	layout, err := handle[vk.PipelineLayout](d.Layout, "pipeline layout")
	if err != nil {
		return vk.GraphicsPipelineCreateInfo{}, err
	}
	pass, err := handle[vk.RenderPass](d.State.RenderPass, "render pass")
	if err != nil {
		return vk.GraphicsPipelineCreateInfo{}, err
	}
	topology, ok := topologies[d.State.Topology]
	if !ok {
		return vk.GraphicsPipelineCreateInfo{}, fmt.Errorf("vulkan: unknown topology %d", d.State.Topology)
	}

	l := &d.Program.Layout
	vertex := vertexInput(l)
	raster := rasterization(d.State)
	blend := colorBlend(l, d.State.Blend)
	depth := depthStencil(d.State)
	dynamic := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	return vk.GraphicsPipelineCreateInfo{
		SType:             vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:        uint32(len(stages)),
		PStages:           stages,
		PVertexInputState: &vertex,
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: topology,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &raster,
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
			MinSampleShading:     1,
		},
		PDepthStencilState: &depth,
		PColorBlendState:   &blend,
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: uint32(len(dynamic)),
			PDynamicStates:    dynamic,
		},
		Layout:             layout,
		RenderPass:         pass,
		BasePipelineHandle: vk.NullPipeline,
		BasePipelineIndex:  -1,
	}, nil
}
