package shader

import (
	"fmt"

	"github.com/gogpu/spvkit/spirv"
)

type param struct {
	t  Type
	id uint32
}

// Func is a SPIR-V function defined inside a shader method. Declare its
// parameters, then Begin, emit the body, and End before calling it.
//
//	f := c.Function("luma", shader.TypeOf[shader.Float]())
//	rgb := shader.Param[shader.Vec3](f, "rgb")
//	f.Begin()
//	f.Return(shader.Dot(rgb, weights))
//	f.End()
//	y := shader.Call[shader.Float](f, color)
//
// For inlining, write an ordinary Go function over typed values instead;
// it is re-emitted at every call site.
type Func struct {
	c      *Context
	name   string
	ret    Type
	params []*param
	id     uint32
	begun  bool
	ended  bool
}

// Function declares a function returning ret, or nothing when ret is nil.
func (c *Context) Function(name string, ret Type) *Func {
	f := &Func{c: c, name: name, ret: ret, id: c.b.AllocID()}
	c.name(f.id, name)
	return f
}

// ID returns the function's result id.
func (f *Func) ID() uint32 { return f.id }

// Param declares the next parameter of f.
func Param[T Wrapped](f *Func, name string) T {
	t := describe[T]()
	switch {
	case f.begun:
		f.c.fail(fmt.Errorf("%w: parameter %q declared after Begin", ErrScopeMismatch, name))
	case t == nil:
		f.c.fail(fmt.Errorf("%w: parameter %q needs a sized type", ErrType, name))
		t = voidType
	}
	p := &param{t: t, id: f.c.b.AllocID()}
	f.params = append(f.params, p)
	f.c.name(p.id, name)
	return wrap[T](f.c, p.id, t)
}

// Begin opens the body. Emission goes to f until End.
func (f *Func) Begin() {
	if f.begun {
		f.c.fail(fmt.Errorf("%w: %s begun twice", ErrScopeMismatch, f.name))
		return
	}
	f.begun = true
	fn := f.c.openFunction(f.id, f.ret, f.params)
	f.c.push(&scope{kind: ScopeFunction, header: fn.entry, def: f})
}

// Return returns v from f.
func (f *Func) Return(v Value) {
	c := f.c
	switch {
	case c.fn == nil || c.fn.id != f.id:
		c.fail(fmt.Errorf("%w: Return of %s outside its body", ErrScopeMismatch, f.name))
		return
	case f.ret == nil:
		c.fail(fmt.Errorf("%w: %s returns nothing", ErrType, f.name))
		return
	case v.Context() != c || v.Type().key() != f.ret.key():
		c.fail(fmt.Errorf("%w: %s returns %s, got %s", ErrType, f.name, f.ret.key(), v.Type().key()))
		return
	}
	c.EmitVoid(spirv.OpReturnValue, v.ID())
}

// End closes the body. Every scope opened inside it must be closed first.
func (f *Func) End() {
	s := f.c.pop(ScopeFunction)
	if s == nil {
		return
	}
	if s.def != f {
		f.c.fail(fmt.Errorf("%w: End of %s closes another function", ErrScopeMismatch, f.name))
		return
	}
	f.ended = true
	f.c.closeFunction(f.c.fn)
}

func (f *Func) call(result Type, args []Value) value {
	c := f.c
	if !f.ended {
		c.fail(fmt.Errorf("%w: call of %s before End", ErrScopeMismatch, f.name))
		return value{c, 0, result}
	}
	if len(args) != len(f.params) {
		c.fail(fmt.Errorf("%w: %s takes %d arguments, got %d", ErrType, f.name, len(f.params), len(args)))
		return value{c, 0, result}
	}
	ops := make([]uint32, 0, len(args)+1)
	ops = append(ops, f.id)
	for i, a := range args {
		if a.Context() != c || a.Type().key() != f.params[i].t.key() {
			c.fail(fmt.Errorf("%w: argument %d of %s", ErrType, i, f.name))
			return value{c, 0, result}
		}
		ops = append(ops, a.ID())
	}
	t := result
	if t == nil {
		t = voidType
	}
	return c.emitT(spirv.OpFunctionCall, t, ops...)
}

// Call calls f, which must return T.
func Call[T Wrapped](f *Func, args ...Value) T {
	t := describe[T]()
	if f.ret == nil || t == nil || t.key() != f.ret.key() {
		f.c.fail(fmt.Errorf("%w: %s does not return the requested type", ErrType, f.name))
		return wrap[T](f.c, 0, t)
	}
	v := f.call(t, args)
	return wrap[T](v.c, v.id, v.t)
}

// CallVoid calls f and discards its result.
func CallVoid(f *Func, args ...Value) {
	f.call(f.ret, args)
}
