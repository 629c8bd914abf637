package shader

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

// Constant describes a module-level constant. Like types, constants are
// memoized by key.
type Constant interface {
	constKey() string
	declareConst(c *Context) uint32
}

// ScalarConst holds the raw bits of a numeric constant.
type ScalarConst struct {
	Type ScalarType
	Bits uint64
}

// BoolConst is OpConstantTrue or OpConstantFalse.
type BoolConst struct {
	Value bool
}

// CompositeConst is a vector, matrix, array or struct constant built from
// other constants.
type CompositeConst struct {
	Type  Type
	Parts []Constant
}

// NullConst is the OpConstantNull of Type.
type NullConst struct {
	Type Type
}

func (k ScalarConst) constKey() string {
	return "c:" + k.Type.key() + ":" + strconv.FormatUint(k.Bits, 16)
}

func (k BoolConst) constKey() string {
	if k.Value {
		return "c:true"
	}
	return "c:false"
}

func (k CompositeConst) constKey() string {
	parts := make([]string, len(k.Parts))
	for i, p := range k.Parts {
		parts[i] = p.constKey()
	}
	return "c:" + k.Type.key() + "{" + strings.Join(parts, ",") + "}"
}

func (k NullConst) constKey() string { return "c:null:" + k.Type.key() }

func (k ScalarConst) declareConst(c *Context) uint32 {
	t := c.DeclareType(k.Type)
	if k.Type.Width == 64 {
		return c.b.AddConstant(t, uint32(k.Bits), uint32(k.Bits>>32))
	}
	return c.b.AddConstant(t, uint32(k.Bits))
}

func (k BoolConst) declareConst(c *Context) uint32 {
	return c.b.AddConstantBool(c.DeclareType(boolType), k.Value)
}

func (k CompositeConst) declareConst(c *Context) uint32 {
	parts := make([]uint32, len(k.Parts))
	for i, p := range k.Parts {
		parts[i] = c.DeclareConstant(p)
	}
	return c.b.AddConstantComposite(c.DeclareType(k.Type), parts...)
}

func (k NullConst) declareConst(c *Context) uint32 {
	return c.b.AddConstantNull(c.DeclareType(k.Type))
}

func f32Const(v float32) ScalarConst {
	return ScalarConst{Type: f32Type, Bits: uint64(math32.Float32bits(v))}
}

func f64Const(v float64) ScalarConst {
	return ScalarConst{Type: ScalarType{Kind: NumFloat, Width: 64}, Bits: math.Float64bits(v)}
}

func i32Const(v int32) ScalarConst {
	return ScalarConst{Type: i32Type, Bits: uint64(uint32(v))}
}

func u32Const(v uint32) ScalarConst {
	return ScalarConst{Type: u32Type, Bits: uint64(v)}
}

func (c *Context) constI32(v int32) uint32  { return c.DeclareConstant(i32Const(v)) }
func (c *Context) constU32(v uint32) uint32 { return c.DeclareConstant(u32Const(v)) }

// Float returns a 32-bit float constant.
func (c *Context) Float(v float32) Float {
	return Float{value{c, c.DeclareConstant(f32Const(v)), f32Type}}
}

// Double returns a 64-bit float constant.
func (c *Context) Double(v float64) Double {
	k := f64Const(v)
	return Double{value{c, c.DeclareConstant(k), k.Type}}
}

// Int returns a signed 32-bit constant.
func (c *Context) Int(v int32) Int {
	return Int{value{c, c.constI32(v), i32Type}}
}

// Uint returns an unsigned 32-bit constant.
func (c *Context) Uint(v uint32) Uint {
	return Uint{value{c, c.constU32(v), u32Type}}
}

// Bool returns a boolean constant.
func (c *Context) Bool(v bool) Bool {
	return Bool{value{c, c.DeclareConstant(BoolConst{Value: v}), boolType}}
}

// ConstVec4 returns a constant vec4.
func (c *Context) ConstVec4(x, y, z, w float32) Vec4 {
	t := VectorType{Elem: f32Type, Size: 4}
	id := c.DeclareConstant(CompositeConst{Type: t, Parts: []Constant{f32Const(x), f32Const(y), f32Const(z), f32Const(w)}})
	return Vec4{value{c, id, t}}
}

// Zero returns the null constant of T.
func Zero[T Wrapped](e Emitter) T {
	c := e.context()
	t := describe[T]()
	if t == nil {
		c.fail(fmt.Errorf("%w: Zero needs a sized type", ErrType))
		return wrap[T](c, 0, t)
	}
	return wrap[T](c, c.DeclareConstant(NullConst{Type: t}), t)
}
