package shader

import (
	"github.com/gogpu/spvkit/spirv"
)

// Buffer is implemented by the buffer binding points whose block layout
// is S.
type Buffer[S any] interface {
	ref(c *Context) Ref[S]
}

// Access returns the block of b in the stage being emitted. Passing a
// buffer of another struct type does not compile.
func Access[S any](c Emitter, b Buffer[S]) Ref[S] {
	return b.ref(c.context())
}

// UniformBuffer is a std140 uniform block.
type UniformBuffer[S any] struct{ *point }

// StorageBuffer is a std430 storage block. A trailing slice field becomes
// a runtime array.
type StorageBuffer[S any] struct{ *point }

// PushConstant is a std430 push constant block.
type PushConstant[S any] struct{ *point }

// UniformArray is an array of uniform blocks. Select one with At or Index.
type UniformArray[S any] struct{ *point }

// StorageArray is an array of storage blocks.
type StorageArray[S any] struct{ *point }

func NewUniformBuffer[S any](b *Base, name string, opts ...Option) *UniformBuffer[S] {
	return &UniformBuffer[S]{newBufferPoint[S](b, name, KindUniformBuffer, opts)}
}

func NewStorageBuffer[S any](b *Base, name string, opts ...Option) *StorageBuffer[S] {
	return &StorageBuffer[S]{newBufferPoint[S](b, name, KindStorageBuffer, opts)}
}

func NewPushConstant[S any](b *Base, name string) *PushConstant[S] {
	p := newBufferPoint[S](b, name, KindPushConstant, nil)
	if st, err := blockOf[S](LayoutStd430); err == nil {
		p.info.Size = st.Size
	}
	return &PushConstant[S]{p}
}

// NewUniformArray declares count uniform blocks at one binding.
func NewUniformArray[S any](b *Base, name string, count uint32, opts ...Option) *UniformArray[S] {
	return &UniformArray[S]{newBufferPoint[S](b, name, KindUniformBuffer, append(opts, Count(count)))}
}

// NewStorageArray declares count storage blocks at one binding.
func NewStorageArray[S any](b *Base, name string, count uint32, opts ...Option) *StorageArray[S] {
	return &StorageArray[S]{newBufferPoint[S](b, name, KindStorageBuffer, append(opts, Count(count)))}
}

func newBufferPoint[S any](b *Base, name string, kind BindingKind, opts []Option) *point {
	p := newPoint(name, kind, opts)
	b.register(p)
	return p
}

func (u *UniformBuffer[S]) ref(c *Context) Ref[S] { return blockRef[S](c, u.point, -1, nil) }
func (s *StorageBuffer[S]) ref(c *Context) Ref[S] { return blockRef[S](c, s.point, -1, nil) }
func (p *PushConstant[S]) ref(c *Context) Ref[S]  { return blockRef[S](c, p.point, -1, nil) }

// At selects block i with a constant index.
func (u *UniformArray[S]) At(c Emitter, i int) Ref[S] {
	ctx := c.context()
	if !u.checkIndex(ctx, i) {
		return Ref[S]{Var[Struct[S]]{c: ctx, t: voidType}}
	}
	return blockRef[S](ctx, u.point, i, nil)
}

// Index selects a block with a runtime index.
func (u *UniformArray[S]) Index(c Emitter, i Int) Ref[S] {
	return blockRef[S](c.context(), u.point, -1, &i)
}

func (s *StorageArray[S]) At(c Emitter, i int) Ref[S] {
	ctx := c.context()
	if !s.checkIndex(ctx, i) {
		return Ref[S]{Var[Struct[S]]{c: ctx, t: voidType}}
	}
	return blockRef[S](ctx, s.point, i, nil)
}

func (s *StorageArray[S]) Index(c Emitter, i Int) Ref[S] {
	return blockRef[S](c.context(), s.point, -1, &i)
}

// blockRef declares the block variable of p in c and returns a slot for
// element at (constant) or dyn (runtime) of an array form.
func blockRef[S any](c *Context, p *point, at int, dyn *Int) Ref[S] {
	var (
		layout  = LayoutStd430
		class   spirv.StorageClass
		dynamic spirv.Capability
	)
	switch p.info.Kind {
	case KindUniformBuffer:
		layout, class, dynamic = LayoutStd140, spirv.StorageClassUniform, spirv.CapabilityUniformBufferArrayDynamicIndexing
	case KindStorageBuffer:
		class, dynamic = spirv.StorageClassStorageBuffer, spirv.CapabilityStorageBufferArrayDynamicIndexing
	case KindPushConstant:
		class = spirv.StorageClassPushConstant
	}
	st, err := blockOf[S](layout)
	if err != nil {
		c.fail(err)
		return Ref[S]{Var[Struct[S]]{c: c, t: voidType, class: class}}
	}
	if p.info.Kind == KindStorageBuffer && !c.Version().AtLeast(spirv.Version1_3) {
		class = spirv.StorageClassUniform
		st.BufferBlock = true
	}

	var ptr uint32
	switch {
	case p.info.Kind == KindPushConstant:
		ptr = p.variable(c, func() uint32 { return c.globalVar(st, class, p.info.Name) })
	case dyn != nil:
		if dyn.c != c {
			c.fail(errForeignIndex(p.info.Name))
			return Ref[S]{Var[Struct[S]]{c: c, t: voidType, class: class}}
		}
		ptr = p.elementPtr(c, st, class, dyn.id, dynamic)
	case at >= 0:
		ptr = p.elementPtr(c, st, class, c.constI32(int32(at)))
	default:
		ptr = p.elementPtr(c, st, class, 0)
	}
	return Ref[S]{Var[Struct[S]]{c: c, ptr: ptr, t: st, class: class}}
}
