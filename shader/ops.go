package shader

import (
	"fmt"

	"github.com/gogpu/spvkit/spirv"
)

// opFamily picks an opcode by numeric kind: float, signed, unsigned.
type opFamily [3]spirv.OpCode

var (
	opAdd = opFamily{spirv.OpFAdd, spirv.OpIAdd, spirv.OpIAdd}
	opSub = opFamily{spirv.OpFSub, spirv.OpISub, spirv.OpISub}
	opMul = opFamily{spirv.OpFMul, spirv.OpIMul, spirv.OpIMul}
	opDiv = opFamily{spirv.OpFDiv, spirv.OpSDiv, spirv.OpUDiv}
	opMod = opFamily{spirv.OpFMod, spirv.OpSRem, spirv.OpUMod}
	opNeg = opFamily{spirv.OpFNegate, spirv.OpSNegate, spirv.OpSNegate}

	opLt = opFamily{spirv.OpFOrdLessThan, spirv.OpSLessThan, spirv.OpULessThan}
	opLe = opFamily{spirv.OpFOrdLessThanEqual, spirv.OpSLessThanEqual, spirv.OpULessThanEqual}
	opGt = opFamily{spirv.OpFOrdGreaterThan, spirv.OpSGreaterThan, spirv.OpUGreaterThan}
	opGe = opFamily{spirv.OpFOrdGreaterThanEqual, spirv.OpSGreaterThanEqual, spirv.OpUGreaterThanEqual}
	opEq = opFamily{spirv.OpFOrdEqual, spirv.OpIEqual, spirv.OpIEqual}
	opNe = opFamily{spirv.OpFUnordNotEqual, spirv.OpINotEqual, spirv.OpINotEqual}

	opShr = opFamily{spirv.OpShiftRightLogical, spirv.OpShiftRightArithmetic, spirv.OpShiftRightLogical}
)

func (f opFamily) pick(t Type) spirv.OpCode { return f[numKind(t)] }

func (v value) binary(f opFamily, o value) value {
	if !v.sameContext(o) {
		return v
	}
	return v.c.emitT(f.pick(v.t), v.t, v.id, o.id)
}

func (v value) unary(f opFamily) value {
	return v.c.emitT(f.pick(v.t), v.t, v.id)
}

func (v value) compare(f opFamily, o value, result Type) value {
	if !v.sameContext(o) {
		return value{v.c, 0, result}
	}
	return v.c.emitT(f.pick(v.t), result, v.id, o.id)
}

func boolsFor(t Type) Type {
	if n := lanes(t); n > 1 {
		return VectorType{Elem: boolType, Size: n}
	}
	return boolType
}

// Scalar arithmetic. Division and remainder follow the signedness of K.

func (a Scalar[K]) Add(b Scalar[K]) Scalar[K] { return Scalar[K]{a.binary(opAdd, b.value)} }
func (a Scalar[K]) Sub(b Scalar[K]) Scalar[K] { return Scalar[K]{a.binary(opSub, b.value)} }
func (a Scalar[K]) Mul(b Scalar[K]) Scalar[K] { return Scalar[K]{a.binary(opMul, b.value)} }
func (a Scalar[K]) Div(b Scalar[K]) Scalar[K] { return Scalar[K]{a.binary(opDiv, b.value)} }
func (a Scalar[K]) Mod(b Scalar[K]) Scalar[K] { return Scalar[K]{a.binary(opMod, b.value)} }
func (a Scalar[K]) Neg() Scalar[K]            { return Scalar[K]{a.unary(opNeg)} }

func (a Scalar[K]) Lt(b Scalar[K]) Bool { return Bool{a.compare(opLt, b.value, boolType)} }
func (a Scalar[K]) Le(b Scalar[K]) Bool { return Bool{a.compare(opLe, b.value, boolType)} }
func (a Scalar[K]) Gt(b Scalar[K]) Bool { return Bool{a.compare(opGt, b.value, boolType)} }
func (a Scalar[K]) Ge(b Scalar[K]) Bool { return Bool{a.compare(opGe, b.value, boolType)} }
func (a Scalar[K]) Eq(b Scalar[K]) Bool { return Bool{a.compare(opEq, b.value, boolType)} }
func (a Scalar[K]) Ne(b Scalar[K]) Bool { return Bool{a.compare(opNe, b.value, boolType)} }

// Vector arithmetic is component-wise.

func (a Vector[K, N]) Add(b Vector[K, N]) Vector[K, N] { return Vector[K, N]{a.binary(opAdd, b.value)} }
func (a Vector[K, N]) Sub(b Vector[K, N]) Vector[K, N] { return Vector[K, N]{a.binary(opSub, b.value)} }
func (a Vector[K, N]) Mul(b Vector[K, N]) Vector[K, N] { return Vector[K, N]{a.binary(opMul, b.value)} }
func (a Vector[K, N]) Div(b Vector[K, N]) Vector[K, N] { return Vector[K, N]{a.binary(opDiv, b.value)} }
func (a Vector[K, N]) Mod(b Vector[K, N]) Vector[K, N] { return Vector[K, N]{a.binary(opMod, b.value)} }
func (a Vector[K, N]) Neg() Vector[K, N]               { return Vector[K, N]{a.unary(opNeg)} }

func (a Vector[K, N]) Lt(b Vector[K, N]) BVec[N] {
	return BVec[N]{a.compare(opLt, b.value, boolsFor(a.t))}
}
func (a Vector[K, N]) Le(b Vector[K, N]) BVec[N] {
	return BVec[N]{a.compare(opLe, b.value, boolsFor(a.t))}
}
func (a Vector[K, N]) Gt(b Vector[K, N]) BVec[N] {
	return BVec[N]{a.compare(opGt, b.value, boolsFor(a.t))}
}
func (a Vector[K, N]) Ge(b Vector[K, N]) BVec[N] {
	return BVec[N]{a.compare(opGe, b.value, boolsFor(a.t))}
}
func (a Vector[K, N]) Eq(b Vector[K, N]) BVec[N] {
	return BVec[N]{a.compare(opEq, b.value, boolsFor(a.t))}
}
func (a Vector[K, N]) Ne(b Vector[K, N]) BVec[N] {
	return BVec[N]{a.compare(opNe, b.value, boolsFor(a.t))}
}

// Scale multiplies every lane by s.
func (a Vector[K, N]) Scale(s Scalar[K]) Vector[K, N] {
	if !a.sameContext(s.value) {
		return a
	}
	if numKind(a.t) == NumFloat {
		return Vector[K, N]{a.c.emitT(spirv.OpVectorTimesScalar, a.t, a.id, s.id)}
	}
	return a.Mul(Splat[N](s))
}

// X, Y, Z and W extract a single lane.
func (a Vector[K, N]) X() Scalar[K] { return a.At(0) }
func (a Vector[K, N]) Y() Scalar[K] { return a.At(1) }
func (a Vector[K, N]) Z() Scalar[K] { return a.At(2) }
func (a Vector[K, N]) W() Scalar[K] { return a.At(3) }

// At extracts lane i with OpCompositeExtract.
func (a Vector[K, N]) At(i int) Scalar[K] {
	if i < 0 || uint32(i) >= sizeOf[N]() {
		a.c.fail(fmt.Errorf("%w: lane %d of a %d-lane vector", ErrType, i, sizeOf[N]()))
		return Scalar[K]{value{a.c, 0, kindOf[K]()}}
	}
	return Scalar[K]{a.extract(kindOf[K](), uint32(i))}
}

// Index selects a lane with a runtime index. Because the vector is a value,
// not a slot, this lowers to one extract per lane and an OpSelect chain.
// Index through a Var with Lane instead to get an access chain.
func (a Vector[K, N]) Index(i Int) Scalar[K] {
	return Scalar[K]{a.dynamicIndex(sizeOf[N](), kindOf[K](), i)}
}

// With returns a copy of the vector with lane i replaced.
func (a Vector[K, N]) With(i int, s Scalar[K]) Vector[K, N] {
	if !a.sameContext(s.value) {
		return a
	}
	if i < 0 || uint32(i) >= sizeOf[N]() {
		a.c.fail(fmt.Errorf("%w: lane %d of a %d-lane vector", ErrType, i, sizeOf[N]()))
		return a
	}
	return Vector[K, N]{a.c.emitT(spirv.OpCompositeInsert, a.t, s.id, a.id, uint32(i))}
}

// Lane indices for swizzles.
const (
	X = 0
	Y = 1
	Z = 2
	W = 3
)

func (a Vector[K, N]) shuffle(lanesOut []uint32) value {
	n := sizeOf[N]()
	for _, l := range lanesOut {
		if l >= n {
			a.c.fail(fmt.Errorf("%w: swizzle lane %d of a %d-lane vector", ErrType, l, n))
			return value{a.c, 0, VectorType{Elem: kindOf[K](), Size: uint32(len(lanesOut))}}
		}
	}
	if uint32(len(lanesOut)) == n {
		identity := true
		for i, l := range lanesOut {
			identity = identity && l == uint32(i)
		}
		if identity {
			return a.value
		}
	}
	t := VectorType{Elem: kindOf[K](), Size: uint32(len(lanesOut))}
	return a.c.emitT(spirv.OpVectorShuffle, t, append([]uint32{a.id, a.id}, lanesOut...)...)
}

// Swizzle2 builds a 2-lane vector from the given lanes.
func (a Vector[K, N]) Swizzle2(x, y int) Vector[K, N2] {
	return Vector[K, N2]{a.shuffle([]uint32{uint32(x), uint32(y)})}
}

// Swizzle3 builds a 3-lane vector from the given lanes.
func (a Vector[K, N]) Swizzle3(x, y, z int) Vector[K, N3] {
	return Vector[K, N3]{a.shuffle([]uint32{uint32(x), uint32(y), uint32(z)})}
}

// Swizzle4 builds a 4-lane vector. The identity swizzle of a 4-lane vector
// returns the receiver without emitting anything.
func (a Vector[K, N]) Swizzle4(x, y, z, w int) Vector[K, N4] {
	return Vector[K, N4]{a.shuffle([]uint32{uint32(x), uint32(y), uint32(z), uint32(w)})}
}

// Boolean logic.

func (a Bool) And(b Bool) Bool { return Bool{a.logical(spirv.OpLogicalAnd, b.value)} }
func (a Bool) Or(b Bool) Bool  { return Bool{a.logical(spirv.OpLogicalOr, b.value)} }
func (a Bool) Eq(b Bool) Bool  { return Bool{a.logical(spirv.OpLogicalEqual, b.value)} }
func (a Bool) Ne(b Bool) Bool  { return Bool{a.logical(spirv.OpLogicalNotEqual, b.value)} }
func (a Bool) Not() Bool       { return Bool{a.c.emitT(spirv.OpLogicalNot, boolType, a.id)} }

func (v value) logical(op spirv.OpCode, o value) value {
	if !v.sameContext(o) {
		return v
	}
	return v.c.emitT(op, v.t, v.id, o.id)
}

// Any reports whether any lane is true.
func (a BVec[N]) Any() Bool { return Bool{a.c.emitT(spirv.OpAny, boolType, a.id)} }

// All reports whether every lane is true.
func (a BVec[N]) All() Bool { return Bool{a.c.emitT(spirv.OpAll, boolType, a.id)} }

func (a BVec[N]) Not() BVec[N] { return BVec[N]{a.c.emitT(spirv.OpLogicalNot, a.t, a.id)} }

// IntValue is satisfied by integer scalars and vectors.
type IntValue interface {
	Scalar[I32] | Scalar[U32] |
		Vector[I32, N2] | Vector[I32, N3] | Vector[I32, N4] |
		Vector[U32, N2] | Vector[U32, N3] | Vector[U32, N4]
	Value
}

func bitwise[T IntValue](op spirv.OpCode, a, b T) T {
	av, bv := unwrap(a), unwrap(b)
	if !av.sameContext(bv) {
		return a
	}
	return T(struct{ value }{av.c.emitT(op, av.t, av.id, bv.id)})
}

// And is the bitwise and of a and b.
func And[T IntValue](a, b T) T { return bitwise(spirv.OpBitwiseAnd, a, b) }

// Or is the bitwise or of a and b.
func Or[T IntValue](a, b T) T { return bitwise(spirv.OpBitwiseOr, a, b) }

// Xor is the bitwise exclusive or of a and b.
func Xor[T IntValue](a, b T) T { return bitwise(spirv.OpBitwiseXor, a, b) }

// Shl shifts a left by n bits.
func Shl[T IntValue](a, n T) T { return bitwise(spirv.OpShiftLeftLogical, a, n) }

// Shr shifts right: arithmetic for signed kinds, logical for unsigned.
func Shr[T IntValue](a, n T) T {
	return bitwise(opShr.pick(a.Type()), a, n)
}

// Not flips every bit.
func Not[T IntValue](a T) T {
	v := unwrap(a)
	return T(struct{ value }{v.c.emitT(spirv.OpNot, v.t, v.id)})
}

// Select returns a where cond is true and b otherwise. Matrix, array and
// struct operands need SPIR-V 1.4; use If with a Local below that.
func Select[T Wrapped](cond Bool, a, b T) T {
	av, bv := unwrap(a), unwrap(b)
	if !av.sameContext(bv) || !av.sameContext(cond.value) {
		return a
	}
	if !selectable(av.c, av.t) {
		av.c.fail(fmt.Errorf("%w: select of %s needs SPIR-V 1.4", ErrType, av.t.key()))
		return a
	}
	c := selectCond(av.c, cond.value, av.t)
	return T(struct{ value }{av.c.emitT(spirv.OpSelect, av.t, c.id, av.id, bv.id)})
}

// Convert changes the numeric kind of a scalar.
func Convert[To, From Numeric](v Scalar[From]) Scalar[To] {
	return Scalar[To]{convert(v.value, kindOf[To]())}
}

// ConvertVec changes the numeric kind of every lane.
func ConvertVec[To, From Numeric, N Size](v Vector[From, N]) Vector[To, N] {
	return Vector[To, N]{convert(v.value, kindOf[To]())}
}

func convert(v value, to ScalarType) value {
	from := numKind(v.t)
	var fromWidth uint32
	switch t := v.t.(type) {
	case ScalarType:
		fromWidth = t.Width
	case VectorType:
		fromWidth = t.Elem.(ScalarType).Width
	}
	result := Type(to)
	if vt, ok := v.t.(VectorType); ok {
		result = VectorType{Elem: to, Size: vt.Size}
	}
	if from == to.Kind && fromWidth == to.Width {
		return v
	}
	var op spirv.OpCode
	switch {
	case from == NumFloat && to.Kind == NumFloat:
		op = spirv.OpFConvert
	case from == NumFloat && to.Kind == NumSint:
		op = spirv.OpConvertFToS
	case from == NumFloat && to.Kind == NumUint:
		op = spirv.OpConvertFToU
	case from == NumSint && to.Kind == NumFloat:
		op = spirv.OpConvertSToF
	case from == NumUint && to.Kind == NumFloat:
		op = spirv.OpConvertUToF
	default:
		// Integer to integer of the same width keeps the bits.
		op = spirv.OpBitcast
	}
	return v.c.emitT(op, result, v.id)
}
