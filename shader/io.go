package shader

import (
	"fmt"
	"reflect"

	"github.com/gogpu/spvkit/format"
	"github.com/gogpu/spvkit/spirv"
)

// VertexInput is a per-vertex buffer whose layout is V. Every exported
// field of V is one attribute at a sequential location; its Vulkan format
// comes from the field's Go type.
type VertexInput[V any] struct {
	*point
	types []Type
}

// InstanceInput is VertexInput advanced per instance.
type InstanceInput[V any] struct {
	*VertexInput[V]
}

func NewVertexInput[V any](b *Base, name string, opts ...Option) *VertexInput[V] {
	return newVertexInput[V](b, name, KindVertexInput, opts)
}

func NewInstanceInput[V any](b *Base, name string, opts ...Option) *InstanceInput[V] {
	return &InstanceInput[V]{newVertexInput[V](b, name, KindInstanceInput, opts)}
}

func newVertexInput[V any](b *Base, name string, kind BindingKind, opts []Option) *VertexInput[V] {
	rt := reflect.TypeFor[V]()
	p := newPoint(name, kind, opts)
	in := &VertexInput[V]{point: p}
	attrs, types, err := attributes(rt)
	if err != nil {
		panic(fmt.Sprintf("shader: vertex input %s: %v", name, err))
	}
	p.info.Attributes = attrs
	p.info.Stride = uint32(rt.Size())
	in.types = types
	b.register(p)
	return in
}

// attributeFormats maps plain Go field types to vertex formats.
var attributeFormats = map[reflect.Type]format.Info{
	reflect.TypeFor[float32]():    format.Of[format.R32Float](),
	reflect.TypeFor[[2]float32](): format.Of[format.RG32Float](),
	reflect.TypeFor[[3]float32](): format.Of[format.RGB32Float](),
	reflect.TypeFor[[4]float32](): format.Of[format.RGBA32Float](),
	reflect.TypeFor[uint32]():     format.Of[format.R32Uint](),
	reflect.TypeFor[[2]uint32]():  format.Of[format.RG32Uint](),
	reflect.TypeFor[[4]uint32]():  format.Of[format.RGBA32Uint](),
	reflect.TypeFor[int32]():      format.Of[format.R32Sint](),
	reflect.TypeFor[[4]int32]():   format.Of[format.RGBA32Sint](),
}

func attributes(rt reflect.Type) ([]Attribute, []Type, error) {
	if rt.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("%w: %s is not a struct", ErrLayout, rt)
	}
	var (
		attrs []Attribute
		types []Type
	)
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.Name == "_" {
			continue
		}
		info, ok := attributeFormats[f.Type]
		if !ok && f.Type.Implements(formatType) {
			info, ok = reflect.Zero(f.Type).Interface().(format.Format).Info(), true
		}
		if !ok {
			return nil, nil, fmt.Errorf("%w: field %s of type %s has no vertex format", ErrLayout, f.Name, f.Type)
		}
		attrs = append(attrs, Attribute{Name: f.Name, Offset: uint32(f.Offset), Format: info})
		types = append(types, formatShaderType(info))
	}
	if len(attrs) == 0 {
		return nil, nil, fmt.Errorf("%w: %s has no attributes", ErrLayout, rt)
	}
	return attrs, types, nil
}

func (in *VertexInput[V]) vars(c *Context) []uint32 {
	return in.variables(c, func() []uint32 {
		ids := make([]uint32, len(in.types))
		for i, t := range in.types {
			a := in.info.Attributes[i]
			ids[i] = c.globalVar(t, spirv.StorageClassInput, in.info.Name+"."+a.Name)
			c.b.AddDecorate(ids[i], spirv.DecorationLocation, a.Location)
		}
		return ids
	})
}

// Attributes is implemented by VertexInput and InstanceInput.
type Attributes[V any] interface {
	vertexInput() *VertexInput[V]
}

func (in *VertexInput[V]) vertexInput() *VertexInput[V] { return in }

// Attr loads one attribute of a vertex or instance input. Vertex shaders
// only.
func Attr[V any, T Wrapped](c Emitter, src Attributes[V], f FieldRef[V, T]) T {
	in := src.vertexInput()
	ctx := c.context()
	t := describe[T]()
	if ctx.model != spirv.ExecutionModelVertex {
		ctx.fail(fmt.Errorf("%w: vertex input %s read outside a vertex shader", ErrType, in.info.Name))
		return wrap[T](ctx, 0, t)
	}
	if len(f.path) != 1 {
		ctx.fail(fmt.Errorf("%w: %s is not a top-level attribute", ErrType, f.name))
		return wrap[T](ctx, 0, t)
	}
	// f.path counts members, which skip padding the same way attributes do.
	i := f.path[0]
	id := in.vars(ctx)[i]
	return wrap[T](ctx, ctx.Emit(spirv.OpLoad, ctx.DeclareType(in.types[i]), id), in.types[i])
}

// Varying passes T from one stage to the next. The producing stage writes
// Out; the consuming stage reads In. Both sides share one location.
type Varying[T Wrapped] struct{ *point }

func NewVarying[T Wrapped](b *Base, name string, opts ...Option) *Varying[T] {
	p := newPoint(name, KindVarying, opts)
	b.register(p)
	return &Varying[T]{p}
}

func (v *Varying[T]) slot(c *Context, class spirv.StorageClass) Var[T] {
	t := describe[T]()
	if t == nil {
		c.fail(fmt.Errorf("%w: varying %s needs a sized type", ErrType, v.info.Name))
		return Var[T]{c: c, t: voidType, class: class}
	}
	id := v.variable(c, func() uint32 {
		id := c.globalVar(t, class, v.info.Name)
		c.b.AddDecorate(id, spirv.DecorationLocation, v.info.Location)
		flat := false
		for _, d := range v.opts.decorations {
			c.b.AddDecorate(id, d)
			flat = flat || d == spirv.DecorationFlat
		}
		// Integer inputs of a fragment shader cannot be interpolated.
		if !flat && class == spirv.StorageClassInput && numKind(t) != NumFloat {
			c.b.AddDecorate(id, spirv.DecorationFlat)
		}
		return id
	})
	return Var[T]{c: c, ptr: id, t: t, class: class}
}

// Out returns the output slot in a vertex (or other producing) stage.
func (v *Varying[T]) Out(c Emitter) Var[T] {
	ctx := c.context()
	if ctx.model == spirv.ExecutionModelFragment {
		ctx.fail(fmt.Errorf("%w: varying %s written in a fragment shader", ErrType, v.info.Name))
	}
	return v.slot(ctx, spirv.StorageClassOutput)
}

// In reads the varying in the fragment stage.
func (v *Varying[T]) In(c Emitter) T {
	ctx := c.context()
	if ctx.model != spirv.ExecutionModelFragment {
		ctx.fail(fmt.Errorf("%w: varying %s read outside a fragment shader", ErrType, v.info.Name))
	}
	return v.slot(ctx, spirv.StorageClassInput).Load()
}

// Output is a color attachment of format F.
type Output[F format.Texel] struct{ *point }

func NewOutput[F format.Texel](b *Base, name string, opts ...Option) *Output[F] {
	p := newPoint(name, KindOutput, opts)
	p.info.Format = format.Of[F]()
	b.register(p)
	return &Output[F]{p}
}

// Write stores the fragment color. K must match the attachment's shader
// kind; channels the format lacks are dropped by the device.
func Write[K Numeric, F format.Texel](c Emitter, o *Output[F], v Vector[K, N4]) {
	ctx := c.context()
	want := shaderKind(o.info.Format.ScalarKind())
	switch {
	case ctx.model != spirv.ExecutionModelFragment:
		ctx.fail(fmt.Errorf("%w: output %s written outside a fragment shader", ErrType, o.info.Name))
		return
	case want.key() != kindOf[K]().key():
		ctx.fail(fmt.Errorf("%w: output %s takes %s texels", ErrType, o.info.Name, want.key()))
		return
	case v.c != ctx:
		ctx.fail(fmt.Errorf("%w: output %s written with a foreign value", ErrType, o.info.Name))
		return
	}
	t := v.t
	id := o.variable(ctx, func() uint32 {
		id := ctx.globalVar(t, spirv.StorageClassOutput, o.info.Name)
		ctx.b.AddDecorate(id, spirv.DecorationLocation, o.info.Location)
		return id
	})
	ctx.EmitVoid(spirv.OpStore, id, v.id)
}
