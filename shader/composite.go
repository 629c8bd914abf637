package shader

import (
	"fmt"

	"github.com/gogpu/spvkit/spirv"
)

func construct(t Type, parts ...value) value {
	c := parts[0].c
	ids := make([]uint32, len(parts))
	for i, p := range parts {
		if p.c != c {
			c.fail(fmt.Errorf("%w: constructor operands from different contexts", ErrType))
			return value{c, 0, t}
		}
		ids[i] = p.id
	}
	return c.emitT(spirv.OpCompositeConstruct, t, ids...)
}

// Vec2f builds a vec2 from two floats.
func Vec2f(x, y Float) Vec2 {
	return Vec2{construct(Vec2{}.describe(), x.value, y.value)}
}

// Vec3f builds a vec3 from three floats.
func Vec3f(x, y, z Float) Vec3 {
	return Vec3{construct(Vec3{}.describe(), x.value, y.value, z.value)}
}

// Vec4f builds a vec4 from four floats.
func Vec4f(x, y, z, w Float) Vec4 {
	return Vec4{construct(Vec4{}.describe(), x.value, y.value, z.value, w.value)}
}

// NewVector builds a vector from exactly N scalars.
func NewVector[K Numeric, N Size](first Scalar[K], rest ...Scalar[K]) Vector[K, N] {
	t := Vector[K, N]{}.describe()
	if n := uint32(len(rest) + 1); n != sizeOf[N]() {
		first.c.fail(fmt.Errorf("%w: %d lanes for a %d-lane vector", ErrType, n, sizeOf[N]()))
		return Vector[K, N]{value{first.c, 0, t}}
	}
	parts := make([]value, 0, len(rest)+1)
	parts = append(parts, first.value)
	for _, r := range rest {
		parts = append(parts, r.value)
	}
	return Vector[K, N]{construct(t, parts...)}
}

// Splat repeats s in every lane.
func Splat[N Size, K Numeric](s Scalar[K]) Vector[K, N] {
	parts := make([]value, sizeOf[N]())
	for i := range parts {
		parts[i] = s.value
	}
	return Vector[K, N]{construct(Vector[K, N]{}.describe(), parts...)}
}

// Extend appends a fourth lane, typically w = 1 for positions.
func Extend[K Numeric](v Vector[K, N3], w Scalar[K]) Vector[K, N4] {
	return Vector[K, N4]{construct(Vector[K, N4]{}.describe(), v.value, w.value)}
}

// Concat joins two 2-lane vectors.
func Concat[K Numeric](a, b Vector[K, N2]) Vector[K, N4] {
	return Vector[K, N4]{construct(Vector[K, N4]{}.describe(), a.value, b.value)}
}

// NewMatrix builds a matrix from exactly C columns.
func NewMatrix[K Floating, C, R Size](first Vector[K, R], rest ...Vector[K, R]) Matrix[K, C, R] {
	t := Matrix[K, C, R]{}.describe()
	if n := uint32(len(rest) + 1); n != sizeOf[C]() {
		first.c.fail(fmt.Errorf("%w: %d columns for a %d-column matrix", ErrType, n, sizeOf[C]()))
		return Matrix[K, C, R]{value{first.c, 0, t}}
	}
	parts := make([]value, 0, len(rest)+1)
	parts = append(parts, first.value)
	for _, r := range rest {
		parts = append(parts, r.value)
	}
	return Matrix[K, C, R]{construct(t, parts...)}
}

// Col extracts column i.
func (m Matrix[K, C, R]) Col(i int) Vector[K, R] {
	if i < 0 || uint32(i) >= sizeOf[C]() {
		m.c.fail(fmt.Errorf("%w: column %d of a %d-column matrix", ErrType, i, sizeOf[C]()))
		return Vector[K, R]{value{m.c, 0, Vector[K, R]{}.describe()}}
	}
	return Vector[K, R]{m.extract(Vector[K, R]{}.describe(), uint32(i))}
}

// Mul multiplies two square matrices. A non-square receiver records
// ErrType; use MatMul for general shapes.
func (m Matrix[K, C, R]) Mul(o Matrix[K, C, R]) Matrix[K, C, R] {
	if sizeOf[C]() != sizeOf[R]() {
		m.c.fail(fmt.Errorf("%w: Mul on a non-square matrix", ErrType))
		return m
	}
	if !m.sameContext(o.value) {
		return m
	}
	return Matrix[K, C, R]{m.c.emitT(spirv.OpMatrixTimesMatrix, m.t, m.id, o.id)}
}

// MulVec computes m * v.
func (m Matrix[K, C, R]) MulVec(v Vector[K, C]) Vector[K, R] {
	t := Vector[K, R]{}.describe()
	if !m.sameContext(v.value) {
		return Vector[K, R]{value{m.c, 0, t}}
	}
	return Vector[K, R]{m.c.emitT(spirv.OpMatrixTimesVector, t, m.id, v.id)}
}

// VecMul computes v * m.
func (m Matrix[K, C, R]) VecMul(v Vector[K, R]) Vector[K, C] {
	t := Vector[K, C]{}.describe()
	if !m.sameContext(v.value) {
		return Vector[K, C]{value{m.c, 0, t}}
	}
	return Vector[K, C]{m.c.emitT(spirv.OpVectorTimesMatrix, t, v.id, m.id)}
}

// Scale multiplies every component by s.
func (m Matrix[K, C, R]) Scale(s Scalar[K]) Matrix[K, C, R] {
	if !m.sameContext(s.value) {
		return m
	}
	return Matrix[K, C, R]{m.c.emitT(spirv.OpMatrixTimesScalar, m.t, m.id, s.id)}
}

// Transpose swaps rows and columns.
func (m Matrix[K, C, R]) Transpose() Matrix[K, R, C] {
	return Matrix[K, R, C]{m.c.emitT(spirv.OpTranspose, Matrix[K, R, C]{}.describe(), m.id)}
}

// MatMul multiplies an R×I matrix by an I×C matrix.
func MatMul[K Floating, C, R, I Size](a Matrix[K, I, R], b Matrix[K, C, I]) Matrix[K, C, R] {
	t := Matrix[K, C, R]{}.describe()
	if !a.sameContext(b.value) {
		return Matrix[K, C, R]{value{a.c, 0, t}}
	}
	return Matrix[K, C, R]{a.c.emitT(spirv.OpMatrixTimesMatrix, t, a.id, b.id)}
}
