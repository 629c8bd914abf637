package pipeline

import (
	"errors"
	"fmt"

	"github.com/gogpu/spvkit/format"
)

// ErrInvalidState reports fixed-function state that cannot work with the
// program's attachments.
var ErrInvalidState = errors.New("pipeline: invalid state")

type Topology uint8

const (
	TriangleList Topology = iota
	TriangleStrip
	LineList
	LineStrip
	PointList
)

type CullMode uint8

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

type BlendOp uint8

const (
	BlendAdd BlendOp = iota
	BlendSubtract
	BlendReverseSubtract
	BlendMin
	BlendMax
)

// Blend is the blend equation applied to every color attachment.
type Blend struct {
	Enabled            bool
	SrcColor, DstColor BlendFactor
	ColorOp            BlendOp
	SrcAlpha, DstAlpha BlendFactor
	AlphaOp            BlendOp
}

// AlphaBlend is premultiplied-free "over" blending.
var AlphaBlend = Blend{
	Enabled:  true,
	SrcColor: BlendSrcAlpha, DstColor: BlendOneMinusSrcAlpha, ColorOp: BlendAdd,
	SrcAlpha: BlendOne, DstAlpha: BlendOneMinusSrcAlpha, AlphaOp: BlendAdd,
}

// State is the fixed-function state of a graphics pipeline. The zero value
// draws filled triangle lists without culling, depth or blending.
type State struct {
	Topology  Topology
	Cull      CullMode
	Clockwise bool
	Wireframe bool

	DepthTest  bool
	DepthWrite bool
	// Depth is the depth attachment format; zero when there is none.
	Depth format.Info

	Blend Blend
	// RenderPass is passed through to the device unchanged.
	RenderPass Handle
}

func (s State) validate(p *Program) error {
	if p.Compute() {
		return nil
	}
	if (s.DepthTest || s.DepthWrite) && s.Depth.Aspect&format.AspectDepth == 0 {
		return fmt.Errorf("%w: depth test without a depth attachment format", ErrInvalidState)
	}
	if !s.Blend.Enabled {
		return nil
	}
	for _, op := range []BlendOp{s.Blend.ColorOp, s.Blend.AlphaOp} {
		if op > BlendMax {
			return fmt.Errorf("%w: blend op %d", ErrInvalidState, op)
		}
	}
	for _, a := range p.Layout.ColorAttachments {
		if a.Format.ScalarKind() != format.ScalarFloat {
			return fmt.Errorf("%w: blending integer attachment %s (%s)", ErrInvalidState, a.Name, a.Format.Name)
		}
	}
	return nil
}
