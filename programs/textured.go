// Package programs holds sample shader configurations. The CLI builds them
// and the tests use them end to end.
package programs

import (
	"github.com/gogpu/spvkit/format"
	"github.com/gogpu/spvkit/shader"
)

// Vertex is the vertex layout of Textured.
type Vertex struct {
	Pos [2]float32
	UV  [2]float32
}

// Frame is the per-frame uniform block of Textured.
type Frame struct {
	Transform [4][4]float32
	Tint      [4]float32
}

var (
	vertexPos      = shader.FieldOf[Vertex, shader.Vec2](func(v *Vertex) any { return &v.Pos })
	vertexUV       = shader.FieldOf[Vertex, shader.Vec2](func(v *Vertex) any { return &v.UV })
	frameTransform = shader.FieldOf[Frame, shader.Mat4](func(f *Frame) any { return &f.Transform })
	frameTint      = shader.FieldOf[Frame, shader.Vec4](func(f *Frame) any { return &f.Tint })
)

// AlphaCutoff is the texel alpha below which Textured discards fragments.
const AlphaCutoff = 0.01

// Textured draws transformed, textured and tinted triangles into a BGRA8
// attachment.
type Textured struct {
	shader.Base
	Verts  *shader.VertexInput[Vertex]
	Frame  *shader.UniformBuffer[Frame]
	Albedo *shader.SampledTexture[format.RGBA8Unorm]
	UV     *shader.Varying[shader.Vec2]
	Color  *shader.Output[format.BGRA8Unorm]
	VS, FS *shader.Stage
}

func NewTextured(process, device any) *Textured {
	t := &Textured{}
	t.Init(process, device)
	t.Verts = shader.NewVertexInput[Vertex](&t.Base, "verts")
	t.Frame = shader.NewUniformBuffer[Frame](&t.Base, "frame")
	t.Albedo = shader.NewSampledTexture[format.RGBA8Unorm](&t.Base, "albedo", shader.Set(1))
	t.UV = shader.NewVarying[shader.Vec2](&t.Base, "uv")
	t.Color = shader.NewOutput[format.BGRA8Unorm](&t.Base, "color")
	t.VS = shader.NewVertexShader(&t.Base, t.vertex)
	t.FS = shader.NewFragmentShader(&t.Base, t.fragment)
	return t
}

func (t *Textured) vertex(c *shader.VertexContext) {
	pos := shader.Attr(c, t.Verts, vertexPos)
	transform := shader.Member(shader.Access(c, t.Frame), frameTransform).Load()
	c.SetPosition(transform.MulVec(shader.Vec4f(pos.X(), pos.Y(), c.Float(0), c.Float(1))))
	t.UV.Out(c).Store(shader.Attr(c, t.Verts, vertexUV))
}

func (t *Textured) fragment(c *shader.FragmentContext) {
	texel := shader.Sample[shader.F32](c, t.Albedo, t.UV.In(c))
	c.If(texel.W().Lt(c.Float(AlphaCutoff)))
	c.Discard()
	c.Fi()
	tint := shader.Member(shader.Access(c, t.Frame), frameTint).Load()
	shader.Write(c, t.Color, texel.Mul(tint))
}
