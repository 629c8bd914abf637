package shader

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gogpu/spvkit/spirv"
)

// Type describes a SPIR-V type. Descriptions are compared by a normalized
// key, so two structurally identical descriptions declare one type.
type Type interface {
	key() string
	declare(c *Context) uint32
}

// NumKind is the numeric class of a scalar.
type NumKind uint8

const (
	NumFloat NumKind = iota
	NumSint
	NumUint
)

func (k NumKind) String() string {
	switch k {
	case NumSint:
		return "int"
	case NumUint:
		return "uint"
	}
	return "float"
}

// Layout is the offset rule a struct was laid out with.
type Layout uint8

const (
	LayoutNone Layout = iota
	LayoutStd140
	LayoutStd430
)

func (l Layout) String() string {
	switch l {
	case LayoutStd140:
		return "std140"
	case LayoutStd430:
		return "std430"
	}
	return "none"
}

type VoidType struct{}

type BoolType struct{}

type ScalarType struct {
	Kind  NumKind
	Width uint32
}

type VectorType struct {
	Elem Type // ScalarType or BoolType
	Size uint32
}

// MatrixType is a column-major matrix of Columns vectors.
type MatrixType struct {
	Column  VectorType
	Columns uint32
}

// ArrayType is a fixed array, or a runtime array when Len is zero. A zero
// Stride emits no ArrayStride decoration.
type ArrayType struct {
	Elem   Type
	Len    uint32
	Stride uint32
}

// StructMember is one field of a StructType.
type StructMember struct {
	Name         string
	Type         Type
	Offset       uint32
	MatrixStride uint32
}

// StructType is an aggregate. Block marks the outermost struct of a buffer
// or push constant interface. BufferBlock selects the pre-1.3 decoration
// for storage buffers in the Uniform class.
type StructType struct {
	Name        string
	GoType      reflect.Type
	Members     []StructMember
	Layout      Layout
	Block       bool
	BufferBlock bool
	Size        uint32
}

type PointerType struct {
	Class spirv.StorageClass
	Elem  Type
}

type FunctionType struct {
	Result Type
	Params []Type
}

type ImageType struct {
	Sampled      ScalarType
	Dim          spirv.Dim
	Depth        bool
	Arrayed      bool
	Multisampled bool
	Storage      bool
	Format       spirv.ImageFormat
}

type SamplerType struct{}

type SampledImageType struct {
	Image ImageType
}

func (VoidType) key() string { return "void" }
func (BoolType) key() string { return "bool" }

func (t ScalarType) key() string {
	return "scalar:" + strconv.Itoa(int(t.Kind)) + ":" + strconv.FormatUint(uint64(t.Width), 10)
}

func (t VectorType) key() string {
	return "vec:" + strconv.FormatUint(uint64(t.Size), 10) + ":" + t.Elem.key()
}

func (t MatrixType) key() string {
	return "mat:" + strconv.FormatUint(uint64(t.Columns), 10) + ":" + t.Column.key()
}

func (t ArrayType) key() string {
	size := "runtime"
	if t.Len > 0 {
		size = strconv.FormatUint(uint64(t.Len), 10)
	}
	return "array:" + size + ":" + strconv.FormatUint(uint64(t.Stride), 10) + ":" + t.Elem.key()
}

func (t StructType) key() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "struct:%s:%s:%v:%v:%d", t.Name, t.Layout, t.Block, t.BufferBlock, len(t.Members))
	for _, m := range t.Members {
		fmt.Fprintf(&sb, ":m(%s,%d,%d,%s)", m.Name, m.Offset, m.MatrixStride, m.Type.key())
	}
	return sb.String()
}

func (t PointerType) key() string {
	return "ptr:" + strconv.FormatUint(uint64(t.Class), 10) + ":" + t.Elem.key()
}

func (t FunctionType) key() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.key()
	}
	return "fn:" + t.Result.key() + "(" + strings.Join(parts, ",") + ")"
}

func (t ImageType) key() string {
	return fmt.Sprintf("image:%s:%d:%v:%v:%v:%v:%d", t.Sampled.key(), t.Dim, t.Depth, t.Arrayed, t.Multisampled, t.Storage, t.Format)
}

func (SamplerType) key() string { return "sampler" }

func (t SampledImageType) key() string { return "sampled:" + t.Image.key() }

func (VoidType) declare(c *Context) uint32 { return c.b.AddTypeVoid() }
func (BoolType) declare(c *Context) uint32 { return c.b.AddTypeBool() }

func (t ScalarType) declare(c *Context) uint32 {
	if t.Kind == NumFloat {
		if t.Width == 64 {
			c.b.AddCapability(spirv.CapabilityFloat64)
		}
		return c.b.AddTypeFloat(t.Width)
	}
	return c.b.AddTypeInt(t.Width, t.Kind == NumSint)
}

func (t VectorType) declare(c *Context) uint32 {
	return c.b.AddTypeVector(c.DeclareType(t.Elem), t.Size)
}

func (t MatrixType) declare(c *Context) uint32 {
	return c.b.AddTypeMatrix(c.DeclareType(t.Column), t.Columns)
}

func (t ArrayType) declare(c *Context) uint32 {
	elem := c.DeclareType(t.Elem)
	var id uint32
	if t.Len == 0 {
		id = c.b.AddTypeRuntimeArray(elem)
	} else {
		id = c.b.AddTypeArray(elem, c.constU32(t.Len))
	}
	if t.Stride > 0 {
		c.b.AddDecorate(id, spirv.DecorationArrayStride, t.Stride)
	}
	return id
}

func (t StructType) declare(c *Context) uint32 {
	members := make([]uint32, len(t.Members))
	for i, m := range t.Members {
		members[i] = c.DeclareType(m.Type)
	}
	id := c.b.AddTypeStruct(members...)
	switch {
	case t.BufferBlock:
		c.b.AddDecorate(id, spirv.DecorationBufferBlock)
	case t.Block:
		c.b.AddDecorate(id, spirv.DecorationBlock)
	}
	if c.debug && t.Name != "" {
		c.b.AddName(id, t.Name)
	}
	for i, m := range t.Members {
		if c.debug && m.Name != "" {
			c.b.AddMemberName(id, uint32(i), m.Name)
		}
		if t.Layout == LayoutNone {
			continue
		}
		c.b.AddMemberDecorate(id, uint32(i), spirv.DecorationOffset, m.Offset)
		if _, ok := innerMatrix(m.Type); ok {
			c.b.AddMemberDecorate(id, uint32(i), spirv.DecorationColMajor)
			c.b.AddMemberDecorate(id, uint32(i), spirv.DecorationMatrixStride, m.MatrixStride)
		}
	}
	return id
}

func (t PointerType) declare(c *Context) uint32 {
	return c.b.AddTypePointer(t.Class, c.DeclareType(t.Elem))
}

func (t FunctionType) declare(c *Context) uint32 {
	params := make([]uint32, len(t.Params))
	for i, p := range t.Params {
		params[i] = c.DeclareType(p)
	}
	return c.b.AddTypeFunction(c.DeclareType(t.Result), params...)
}

func (t ImageType) declare(c *Context) uint32 {
	sampled := uint32(1)
	if t.Storage {
		sampled = 2
		switch {
		case t.Format == spirv.ImageFormatUnknown:
			c.b.AddCapability(spirv.CapabilityStorageImageReadWithoutFormat)
			c.b.AddCapability(spirv.CapabilityStorageImageWriteWithoutFormat)
		case t.Format.StorageImageExtended():
			c.b.AddCapability(spirv.CapabilityStorageImageExtendedFormats)
		}
	}
	switch {
	case t.Dim == spirv.Dim1D && t.Storage:
		c.b.AddCapability(spirv.CapabilityImage1D)
	case t.Dim == spirv.Dim1D:
		c.b.AddCapability(spirv.CapabilitySampled1D)
	case t.Dim == spirv.DimCube && t.Arrayed:
		c.b.AddCapability(spirv.CapabilityImageCubeArray)
	}
	return c.b.AddTypeImage(c.DeclareType(t.Sampled), t.Dim, t.Depth, t.Arrayed, t.Multisampled, sampled, t.Format)
}

func (SamplerType) declare(c *Context) uint32 { return c.b.AddTypeSampler() }

func (t SampledImageType) declare(c *Context) uint32 {
	return c.b.AddTypeSampledImage(c.DeclareType(t.Image))
}

// innerMatrix unwraps arrays of matrices, which carry the matrix layout
// decorations on the enclosing member.
func innerMatrix(t Type) (MatrixType, bool) {
	for {
		switch tt := t.(type) {
		case MatrixType:
			return tt, true
		case ArrayType:
			t = tt.Elem
		default:
			return MatrixType{}, false
		}
	}
}

// numKind returns the scalar kind underlying a scalar, vector or matrix.
func numKind(t Type) NumKind {
	switch tt := t.(type) {
	case ScalarType:
		return tt.Kind
	case VectorType:
		return numKind(tt.Elem)
	case MatrixType:
		return NumFloat
	}
	return NumFloat
}

// lanes returns the component count of a vector type, or 1.
func lanes(t Type) uint32 {
	if v, ok := t.(VectorType); ok {
		return v.Size
	}
	return 1
}

// elemOf returns the element type of a composite.
func elemOf(t Type) Type {
	switch tt := t.(type) {
	case VectorType:
		return tt.Elem
	case MatrixType:
		return tt.Column
	case ArrayType:
		return tt.Elem
	}
	return nil
}

// memberType follows an index path through nested composite types.
func memberType(t Type, path []uint32) (Type, error) {
	for _, i := range path {
		switch tt := t.(type) {
		case StructType:
			if int(i) >= len(tt.Members) {
				return nil, fmt.Errorf("%w: member %d out of range for %s", ErrType, i, tt.Name)
			}
			t = tt.Members[i].Type
		case VectorType, MatrixType, ArrayType:
			t = elemOf(tt)
		default:
			return nil, fmt.Errorf("%w: cannot index %s", ErrType, t.key())
		}
	}
	return t, nil
}

var (
	f32Type  = ScalarType{Kind: NumFloat, Width: 32}
	i32Type  = ScalarType{Kind: NumSint, Width: 32}
	u32Type  = ScalarType{Kind: NumUint, Width: 32}
	boolType = BoolType{}
	voidType = VoidType{}
)
