package shader

import (
	"fmt"

	"github.com/gogpu/spvkit/spirv"
)

// Scalar kinds used as type parameters.
type (
	F32 struct{}
	F64 struct{}
	I32 struct{}
	U32 struct{}
)

func (F32) scalar() ScalarType { return f32Type }
func (F64) scalar() ScalarType { return ScalarType{Kind: NumFloat, Width: 64} }
func (I32) scalar() ScalarType { return i32Type }
func (U32) scalar() ScalarType { return u32Type }

// Numeric is satisfied by every scalar kind.
type Numeric interface {
	F32 | F64 | I32 | U32
	scalar() ScalarType
}

// Integer is satisfied by the integer kinds.
type Integer interface {
	I32 | U32
	scalar() ScalarType
}

// Floating is satisfied by the float kinds.
type Floating interface {
	F32 | F64
	scalar() ScalarType
}

// Vector sizes.
type (
	N2 struct{}
	N3 struct{}
	N4 struct{}
)

func (N2) size() uint32 { return 2 }
func (N3) size() uint32 { return 3 }
func (N4) size() uint32 { return 4 }

// Size is satisfied by the vector sizes.
type Size interface {
	N2 | N3 | N4
	size() uint32
}

func kindOf[K Numeric]() ScalarType {
	var k K
	return k.scalar()
}

func sizeOf[N Size]() uint32 {
	var n N
	return n.size()
}

// value is the state every wrapper carries: the owning context, the result
// id and the static type description.
type value struct {
	c  *Context
	id uint32
	t  Type
}

// ID returns the SPIR-V result id.
func (v value) ID() uint32 { return v.id }

// Type returns the type description.
func (v value) Type() Type { return v.t }

// Context returns the context the value was emitted into.
func (v value) Context() *Context { return v.c }

func (v value) typeID() uint32 { return v.c.DeclareType(v.t) }

// Value is implemented by every typed wrapper.
type Value interface {
	ID() uint32
	Type() Type
	Context() *Context
	describe() Type
}

// Wrapped constrains generics to the wrapper types, which all share the
// underlying representation struct{ value }.
type Wrapped interface {
	~struct{ value }
	Value
}

func wrap[T Wrapped](c *Context, id uint32, t Type) T {
	return T(struct{ value }{value{c, id, t}})
}

func unwrap(v Value) value {
	return value{v.Context(), v.ID(), v.Type()}
}

// describe returns the static type of T, or nil when T does not fix one
// (arrays carry their length only at runtime).
func describe[T Wrapped]() Type {
	var zero T
	return zero.describe()
}

// TypeOf returns the type description of T for use with Function.
func TypeOf[T Wrapped]() Type { return describe[T]() }

// Scalar is a numeric scalar.
type Scalar[K Numeric] struct{ value }

// Bool is a boolean scalar.
type Bool struct{ value }

// Vector is a numeric vector of N lanes.
type Vector[K Numeric, N Size] struct{ value }

// BVec is a boolean vector.
type BVec[N Size] struct{ value }

// Matrix has C columns of R rows.
type Matrix[K Floating, C Size, R Size] struct{ value }

// Array is a fixed or runtime array value.
type Array[T Wrapped] struct{ value }

// Struct is a value of the Go struct S mapped to SPIR-V.
type Struct[S any] struct{ value }

func (Scalar[K]) describe() Type { return kindOf[K]() }
func (Bool) describe() Type      { return boolType }
func (Vector[K, N]) describe() Type {
	return VectorType{Elem: kindOf[K](), Size: sizeOf[N]()}
}
func (BVec[N]) describe() Type { return VectorType{Elem: boolType, Size: sizeOf[N]()} }
func (Matrix[K, C, R]) describe() Type {
	return MatrixType{Column: VectorType{Elem: kindOf[K](), Size: sizeOf[R]()}, Columns: sizeOf[C]()}
}
func (Array[T]) describe() Type { return nil }
func (Struct[S]) describe() Type {
	t, err := structOf[S](LayoutNone)
	if err != nil {
		return nil
	}
	return t
}

// Aliases in the shading-language spelling.
type (
	Float  = Scalar[F32]
	Double = Scalar[F64]
	Int    = Scalar[I32]
	Uint   = Scalar[U32]

	Vec2 = Vector[F32, N2]
	Vec3 = Vector[F32, N3]
	Vec4 = Vector[F32, N4]

	DVec2 = Vector[F64, N2]
	DVec3 = Vector[F64, N3]
	DVec4 = Vector[F64, N4]

	IVec2 = Vector[I32, N2]
	IVec3 = Vector[I32, N3]
	IVec4 = Vector[I32, N4]

	UVec2 = Vector[U32, N2]
	UVec3 = Vector[U32, N3]
	UVec4 = Vector[U32, N4]

	Mat2 = Matrix[F32, N2, N2]
	Mat3 = Matrix[F32, N3, N3]
	Mat4 = Matrix[F32, N4, N4]
)

// Var is an addressable slot. Store emits OpStore to the fixed pointer and
// Load emits OpLoad on every read.
type Var[T Wrapped] struct {
	c     *Context
	ptr   uint32
	t     Type
	class spirv.StorageClass
}

// Ptr returns the pointer id.
func (v Var[T]) Ptr() uint32 { return v.ptr }

// Class returns the storage class of the slot.
func (v Var[T]) Class() spirv.StorageClass { return v.class }

// Type returns the pointee type.
func (v Var[T]) Type() Type { return v.t }

// Load reads the slot.
func (v Var[T]) Load() T {
	return wrap[T](v.c, v.c.Emit(spirv.OpLoad, v.c.DeclareType(v.t), v.ptr), v.t)
}

// Store writes x to the slot.
func (v Var[T]) Store(x T) {
	if x.Context() != v.c {
		v.c.fail(fmt.Errorf("%w: store of a value from another context", ErrType))
		return
	}
	v.c.EmitVoid(spirv.OpStore, v.ptr, x.ID())
}

// access returns a pointer to a sub-element of the slot.
func (v Var[T]) access(elem Type, indices ...uint32) uint32 {
	ptr := v.c.DeclareType(PointerType{Class: v.class, Elem: elem})
	return v.c.Emit(spirv.OpAccessChain, ptr, append([]uint32{v.ptr}, indices...)...)
}

// Local declares a function-scope variable, optionally initialized.
func Local[T Wrapped](e Emitter, name string, init ...T) Var[T] {
	c := e.context()
	t := describe[T]()
	if t == nil {
		c.fail(fmt.Errorf("%w: Local needs a sized type, use LocalArray", ErrType))
		return Var[T]{c: c, t: voidType, class: spirv.StorageClassFunction}
	}
	v := Var[T]{c: c, ptr: c.localVar(t, name), t: t, class: spirv.StorageClassFunction}
	if len(init) > 0 {
		v.Store(init[0])
	}
	return v
}

// LocalArray declares a function-scope array of n elements.
func LocalArray[T Wrapped](e Emitter, name string, n uint32) Var[Array[T]] {
	c := e.context()
	elem := describe[T]()
	if elem == nil || n == 0 {
		c.fail(fmt.Errorf("%w: LocalArray needs a sized element and length", ErrType))
		return Var[Array[T]]{c: c, t: voidType, class: spirv.StorageClassFunction}
	}
	t := ArrayType{Elem: elem, Len: n}
	return Var[Array[T]]{c: c, ptr: c.localVar(t, name), t: t, class: spirv.StorageClassFunction}
}

// Elem returns the slot of element i of an array variable.
func Elem[T Wrapped](v Var[Array[T]], i Int) Var[T] {
	elem := elemOf(v.t)
	if elem == nil {
		v.c.fail(fmt.Errorf("%w: Elem on a non-array slot", ErrType))
		return Var[T]{c: v.c, t: voidType, class: v.class}
	}
	return Var[T]{c: v.c, ptr: v.access(elem, i.id), t: elem, class: v.class}
}

// ElemAt is Elem with a constant index.
func ElemAt[T Wrapped](v Var[Array[T]], i int) Var[T] {
	return Elem(v, v.c.Int(int32(i)))
}

// Lane returns the slot of one lane of a vector variable.
func Lane[K Numeric, N Size](v Var[Vector[K, N]], i Int) Var[Scalar[K]] {
	elem := kindOf[K]()
	return Var[Scalar[K]]{c: v.c, ptr: v.access(elem, i.id), t: elem, class: v.class}
}

// LaneAt is Lane with a constant index.
func LaneAt[K Numeric, N Size](v Var[Vector[K, N]], i int) Var[Scalar[K]] {
	return Lane(v, v.c.Int(int32(i)))
}

// Len returns the element count of a fixed array value.
func (a Array[T]) Len() uint32 {
	if at, ok := a.t.(ArrayType); ok {
		return at.Len
	}
	return 0
}

// At extracts element i.
func (a Array[T]) At(i int) T {
	elem := elemOf(a.t)
	return T(struct{ value }{a.extract(elem, uint32(i))})
}

// Index selects an element with a runtime index. The array is a value, so
// every element is extracted and the result chosen with OpSelect.
func (a Array[T]) Index(i Int) T {
	return T(struct{ value }{a.dynamicIndex(a.Len(), elemOf(a.t), i)})
}

func (v value) extract(elem Type, indices ...uint32) value {
	if elem == nil {
		v.c.fail(fmt.Errorf("%w: extract from %s", ErrType, v.t.key()))
		return value{v.c, 0, voidType}
	}
	return v.c.emitT(spirv.OpCompositeExtract, elem, append([]uint32{v.id}, indices...)...)
}

// dynamicIndex lowers a runtime index into a composite value to one
// extract per element and a chain of selects. Elements OpSelect cannot
// produce at the target version go through a spilled local instead.
func (v value) dynamicIndex(n uint32, elem Type, i Int) value {
	if n == 0 || elem == nil {
		v.c.fail(fmt.Errorf("%w: dynamic index into %s", ErrType, v.t.key()))
		return value{v.c, 0, voidType}
	}
	if !selectable(v.c, elem) {
		return v.spillIndex(elem, i)
	}
	res := v.extract(elem, 0)
	for k := uint32(1); k < n; k++ {
		e := v.extract(elem, k)
		eq := v.c.emitT(spirv.OpIEqual, boolType, i.id, v.c.constI32(int32(k)))
		res = v.c.emitT(spirv.OpSelect, elem, selectCond(v.c, eq, elem).id, e.id, res.id)
	}
	return res
}

// spillIndex stores v in a hoisted Function-class local and loads element i
// through an access chain.
func (v value) spillIndex(elem Type, i Int) value {
	ptr := v.c.localVar(v.t, "")
	v.c.EmitVoid(spirv.OpStore, ptr, v.id)
	ep := v.c.Emit(spirv.OpAccessChain, v.c.DeclareType(PointerType{Class: spirv.StorageClassFunction, Elem: elem}), ptr, i.id)
	return v.c.emitT(spirv.OpLoad, elem, ep)
}

// selectable reports whether OpSelect may produce a t. Composite results
// need SPIR-V 1.4.
func selectable(c *Context, t Type) bool {
	switch t.(type) {
	case ScalarType, BoolType, VectorType:
		return true
	}
	return c.Version().AtLeast(spirv.Version1_4)
}

// selectCond widens a scalar condition for OpSelect on vectors, which needs
// a matching boolean vector before SPIR-V 1.4.
func selectCond(c *Context, cond value, t Type) value {
	n := lanes(t)
	_, isVec := t.(VectorType)
	if !isVec || n == 1 || c.Version().AtLeast(spirv.Version1_4) {
		return cond
	}
	parts := make([]uint32, n)
	for i := range parts {
		parts[i] = cond.id
	}
	return c.emitT(spirv.OpCompositeConstruct, VectorType{Elem: boolType, Size: n}, parts...)
}

// sameContext records an error when two operands come from different
// contexts.
func (v value) sameContext(o value) bool {
	if v.c != o.c {
		v.c.fail(fmt.Errorf("%w: operands from different contexts", ErrType))
		return false
	}
	return true
}
