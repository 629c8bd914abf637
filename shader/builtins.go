package shader

import (
	"fmt"

	"github.com/gogpu/spvkit/spirv"
)

// FloatValue is satisfied by float scalars and vectors.
type FloatValue interface {
	Scalar[F32] | Scalar[F64] |
		Vector[F32, N2] | Vector[F32, N3] | Vector[F32, N4] |
		Vector[F64, N2] | Vector[F64, N3] | Vector[F64, N4]
	Value
}

// NumValue is satisfied by every numeric scalar and vector.
type NumValue interface {
	Scalar[F32] | Scalar[F64] | Scalar[I32] | Scalar[U32] |
		Vector[F32, N2] | Vector[F32, N3] | Vector[F32, N4] |
		Vector[F64, N2] | Vector[F64, N3] | Vector[F64, N4] |
		Vector[I32, N2] | Vector[I32, N3] | Vector[I32, N4] |
		Vector[U32, N2] | Vector[U32, N3] | Vector[U32, N4]
	Value
}

// glslFamily picks a GLSL.std.450 instruction by numeric kind. A zero
// entry means the operation is the identity for that kind.
type glslFamily [3]spirv.GLSLstd450

func (c *Context) extInst(inst spirv.GLSLstd450, t Type, args ...value) value {
	ops := make([]uint32, 0, len(args)+2)
	ops = append(ops, c.glsl, uint32(inst))
	for _, a := range args {
		if a.c != c {
			c.fail(fmt.Errorf("%w: %s operand from another context", ErrType, inst))
			return value{c, 0, t}
		}
		ops = append(ops, a.id)
	}
	return c.emitT(spirv.OpExtInst, t, ops...)
}

func glsl[T Wrapped](inst spirv.GLSLstd450, args ...T) T {
	vs := make([]value, len(args))
	for i, a := range args {
		vs[i] = unwrap(a)
	}
	return T(struct{ value }{vs[0].c.extInst(inst, vs[0].t, vs...)})
}

func glslKind[T Wrapped](f glslFamily, args ...T) T {
	inst := f[numKind(args[0].Type())]
	if inst == 0 {
		return args[0]
	}
	return glsl(inst, args...)
}

func Abs[T NumValue](x T) T  { return glslKind(glslFamily{spirv.GLSLFAbs, spirv.GLSLSAbs, 0}, x) }
func Sign[T NumValue](x T) T { return glslKind(glslFamily{spirv.GLSLFSign, spirv.GLSLSSign, 0}, x) }

func Min[T NumValue](a, b T) T {
	return glslKind(glslFamily{spirv.GLSLFMin, spirv.GLSLSMin, spirv.GLSLUMin}, a, b)
}

func Max[T NumValue](a, b T) T {
	return glslKind(glslFamily{spirv.GLSLFMax, spirv.GLSLSMax, spirv.GLSLUMax}, a, b)
}

// Clamp limits x to [lo, hi]. The result is undefined when lo > hi.
func Clamp[T NumValue](x, lo, hi T) T {
	return glslKind(glslFamily{spirv.GLSLFClamp, spirv.GLSLSClamp, spirv.GLSLUClamp}, x, lo, hi)
}

func Floor[T FloatValue](x T) T       { return glsl(spirv.GLSLFloor, x) }
func Ceil[T FloatValue](x T) T        { return glsl(spirv.GLSLCeil, x) }
func Fract[T FloatValue](x T) T       { return glsl(spirv.GLSLFract, x) }
func Round[T FloatValue](x T) T       { return glsl(spirv.GLSLRound, x) }
func Trunc[T FloatValue](x T) T       { return glsl(spirv.GLSLTrunc, x) }
func Sqrt[T FloatValue](x T) T        { return glsl(spirv.GLSLSqrt, x) }
func InverseSqrt[T FloatValue](x T) T { return glsl(spirv.GLSLInverseSqrt, x) }
func Sin[T FloatValue](x T) T         { return glsl(spirv.GLSLSin, x) }
func Cos[T FloatValue](x T) T         { return glsl(spirv.GLSLCos, x) }
func Tan[T FloatValue](x T) T         { return glsl(spirv.GLSLTan, x) }
func Atan2[T FloatValue](y, x T) T    { return glsl(spirv.GLSLAtan2, y, x) }
func Exp[T FloatValue](x T) T         { return glsl(spirv.GLSLExp, x) }
func Log[T FloatValue](x T) T         { return glsl(spirv.GLSLLog, x) }
func Exp2[T FloatValue](x T) T        { return glsl(spirv.GLSLExp2, x) }
func Log2[T FloatValue](x T) T        { return glsl(spirv.GLSLLog2, x) }
func Pow[T FloatValue](x, y T) T      { return glsl(spirv.GLSLPow, x, y) }

// Mix interpolates linearly: x*(1-a) + y*a.
func Mix[T FloatValue](x, y, a T) T { return glsl(spirv.GLSLFMix, x, y, a) }

// Step returns 0 where x < edge and 1 elsewhere.
func Step[T FloatValue](edge, x T) T { return glsl(spirv.GLSLStep, edge, x) }

func SmoothStep[T FloatValue](lo, hi, x T) T { return glsl(spirv.GLSLSmoothStep, lo, hi, x) }

// Fma computes a*b + c.
func Fma[T FloatValue](a, b, c T) T { return glsl(spirv.GLSLFma, a, b, c) }

// Length returns the Euclidean length of v.
func Length[K Floating, N Size](v Vector[K, N]) Scalar[K] {
	return Scalar[K]{v.c.extInst(spirv.GLSLLength, kindOf[K](), v.value)}
}

// Distance returns the length of a - b.
func Distance[K Floating, N Size](a, b Vector[K, N]) Scalar[K] {
	return Scalar[K]{a.c.extInst(spirv.GLSLDistance, kindOf[K](), a.value, b.value)}
}

func Normalize[K Floating, N Size](v Vector[K, N]) Vector[K, N] {
	return glsl(spirv.GLSLNormalize, v)
}

func Cross[K Floating](a, b Vector[K, N3]) Vector[K, N3] {
	return glsl(spirv.GLSLCross, a, b)
}

// Reflect returns the reflection of i about the normal n, which should be
// normalized.
func Reflect[K Floating, N Size](i, n Vector[K, N]) Vector[K, N] {
	return glsl(spirv.GLSLReflect, i, n)
}

// Dot is the float dot product.
func Dot[K Floating, N Size](a, b Vector[K, N]) Scalar[K] {
	if !a.sameContext(b.value) {
		return Scalar[K]{value{a.c, 0, kindOf[K]()}}
	}
	return Scalar[K]{a.c.emitT(spirv.OpDot, kindOf[K](), a.id, b.id)}
}

// Float32Value is satisfied by 32-bit float scalars and vectors, the
// operand types of the derivative instructions.
type Float32Value interface {
	Scalar[F32] | Vector[F32, N2] | Vector[F32, N3] | Vector[F32, N4]
	Value
}

func derivative[T Float32Value](op spirv.OpCode, x T) T {
	v := unwrap(x)
	if v.c.model != spirv.ExecutionModelFragment {
		v.c.fail(fmt.Errorf("%w: %s outside a fragment shader", ErrType, op))
		return x
	}
	return T(struct{ value }{v.c.emitT(op, v.t, v.id)})
}

// DPdx is the screen-space derivative of x along X. Fragment only.
func DPdx[T Float32Value](x T) T { return derivative(spirv.OpDPdx, x) }

// DPdy is the screen-space derivative of x along Y. Fragment only.
func DPdy[T Float32Value](x T) T { return derivative(spirv.OpDPdy, x) }

// Fwidth is abs(DPdx(x)) + abs(DPdy(x)). Fragment only.
func Fwidth[T Float32Value](x T) T { return derivative(spirv.OpFwidth, x) }
