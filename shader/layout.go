package shader

import (
	"fmt"
	"reflect"

	"github.com/gogpu/spvkit/format"
)

// Go types map to shader types as follows:
//
//	float32, float64, int32, uint32   scalars
//	[2..4]scalar                      vectors, unless tagged `spv:"array"`
//	[2..4][2..4]float                 column-major matrices, [columns][rows]
//	[N]T                              arrays
//	[]T                               runtime array, last field of a buffer only
//	struct                            nested structs
//	format types                      vectors of the format's shader kind
//	                                  (vertex attributes, not buffers)
//
// Fields named _ are padding and produce no member.

var formatType = reflect.TypeOf((*format.Format)(nil)).Elem()

func scalarOf(k reflect.Kind) (ScalarType, bool) {
	switch k {
	case reflect.Float32:
		return f32Type, true
	case reflect.Float64:
		return ScalarType{Kind: NumFloat, Width: 64}, true
	case reflect.Int32:
		return i32Type, true
	case reflect.Uint32:
		return u32Type, true
	}
	return ScalarType{}, false
}

// shaderKind maps a format's scalar kind to the 32-bit shader scalar.
func shaderKind(k format.ScalarKind) ScalarType {
	switch k {
	case format.ScalarSint:
		return i32Type
	case format.ScalarUint:
		return u32Type
	}
	return f32Type
}

func formatShaderType(info format.Info) Type {
	s := shaderKind(info.ScalarKind())
	if n := info.ChannelCount(); n > 1 {
		return VectorType{Elem: s, Size: uint32(n)}
	}
	return s
}

// goType maps a Go type to a shader type. Under LayoutStd140/Std430 array
// and matrix strides are checked against the Go memory layout.
func goType(rt reflect.Type, tag reflect.StructTag, layout Layout) (Type, error) {
	if layout == LayoutNone && rt.Kind() != reflect.Struct && rt.Implements(formatType) {
		info := reflect.Zero(rt).Interface().(format.Format).Info()
		return formatShaderType(info), nil
	}
	if s, ok := scalarOf(rt.Kind()); ok {
		return s, nil
	}
	switch rt.Kind() {
	case reflect.Bool:
		if layout != LayoutNone {
			return nil, fmt.Errorf("%w: bool is not allowed in %s buffers", ErrLayout, layout)
		}
		return boolType, nil
	case reflect.Struct:
		return structType(rt, layout, false)
	case reflect.Slice:
		return nil, fmt.Errorf("%w: slice %s must be the last field of a buffer", ErrLayout, rt)
	case reflect.Array:
		return arrayType(rt, tag, layout)
	}
	return nil, fmt.Errorf("%w: %s has no shader type", ErrLayout, rt)
}

func arrayType(rt reflect.Type, tag reflect.StructTag, layout Layout) (Type, error) {
	n := rt.Len()
	elem := rt.Elem()
	plain := tag.Get("spv") == "array"
	if !plain && n >= 2 && n <= 4 {
		if s, ok := scalarOf(elem.Kind()); ok {
			return VectorType{Elem: s, Size: uint32(n)}, nil
		}
		if elem.Kind() == reflect.Array && elem.Len() >= 2 && elem.Len() <= 4 {
			if s, ok := scalarOf(elem.Elem().Kind()); ok && s.Kind == NumFloat {
				m := MatrixType{Column: VectorType{Elem: s, Size: uint32(elem.Len())}, Columns: uint32(n)}
				if layout != LayoutNone {
					if want := arrayStride(m.Column, layout); uint32(elem.Size()) != want {
						return nil, fmt.Errorf("%w: %s column stride %d, %s needs %d", ErrLayout, rt, elem.Size(), layout, want)
					}
				}
				return m, nil
			}
		}
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: zero-length array %s", ErrLayout, rt)
	}
	et, err := goType(elem, "", layout)
	if err != nil {
		return nil, err
	}
	at := ArrayType{Elem: et, Len: uint32(n)}
	if layout != LayoutNone {
		at.Stride = arrayStride(et, layout)
		if uint32(elem.Size()) != at.Stride {
			return nil, fmt.Errorf("%w: %s element stride %d, %s needs %d", ErrLayout, rt, elem.Size(), layout, at.Stride)
		}
	}
	return at, nil
}

func roundUp(n, a uint32) uint32 {
	if a == 0 {
		return n
	}
	return (n + a - 1) / a * a
}

// alignOf returns the base alignment of t under layout.
func alignOf(t Type, layout Layout) uint32 {
	switch tt := t.(type) {
	case ScalarType:
		return tt.Width / 8
	case BoolType:
		return 4
	case VectorType:
		s := alignOf(tt.Elem, layout)
		if tt.Size == 2 {
			return 2 * s
		}
		return 4 * s
	case MatrixType:
		return alignOf(ArrayType{Elem: tt.Column, Len: tt.Columns}, layout)
	case ArrayType:
		a := alignOf(tt.Elem, layout)
		if layout == LayoutStd140 {
			a = roundUp(a, 16)
		}
		return a
	case StructType:
		var a uint32
		for _, m := range tt.Members {
			a = max(a, alignOf(m.Type, layout))
		}
		if layout == LayoutStd140 {
			a = roundUp(a, 16)
		}
		return a
	}
	return 4
}

// sizeOfType returns the byte size of t under layout.
func sizeOfType(t Type, layout Layout) uint32 {
	switch tt := t.(type) {
	case ScalarType:
		return tt.Width / 8
	case BoolType:
		return 4
	case VectorType:
		return tt.Size * sizeOfType(tt.Elem, layout)
	case MatrixType:
		return tt.Columns * arrayStride(tt.Column, layout)
	case ArrayType:
		return tt.Len * arrayStride(tt.Elem, layout)
	case StructType:
		return tt.Size
	}
	return 0
}

func arrayStride(elem Type, layout Layout) uint32 {
	return roundUp(sizeOfType(elem, layout), alignOf(ArrayType{Elem: elem, Len: 1}, layout))
}

func structType(rt reflect.Type, layout Layout, block bool) (StructType, error) {
	st := StructType{Name: rt.Name(), GoType: rt, Layout: layout, Block: block, Size: uint32(rt.Size())}
	var end uint32
	var padTo uint32
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.Name == "_" {
			continue
		}
		if !f.IsExported() {
			return StructType{}, fmt.Errorf("%w: %s.%s is unexported", ErrLayout, rt, f.Name)
		}
		var (
			t   Type
			err error
		)
		if f.Type.Kind() == reflect.Slice {
			if !block || i != rt.NumField()-1 {
				return StructType{}, fmt.Errorf("%w: runtime array %s.%s must be the last field of a buffer", ErrLayout, rt, f.Name)
			}
			var et Type
			et, err = goType(f.Type.Elem(), "", layout)
			if err == nil {
				stride := uint32(f.Type.Elem().Size())
				if layout != LayoutNone {
					if want := arrayStride(et, layout); stride != want {
						err = fmt.Errorf("%w: %s.%s element stride %d, %s needs %d", ErrLayout, rt, f.Name, stride, layout, want)
					}
				}
				t = ArrayType{Elem: et, Stride: stride}
			}
		} else {
			t, err = goType(f.Type, f.Tag, layout)
		}
		if err != nil {
			return StructType{}, fmt.Errorf("%s.%s: %w", rt, f.Name, err)
		}
		m := StructMember{Name: f.Name, Type: t, Offset: uint32(f.Offset)}
		if mt, ok := innerMatrix(t); ok {
			m.MatrixStride = arrayStride(mt.Column, layout)
		}
		if layout != LayoutNone {
			align := alignOf(t, layout)
			if m.Offset%align != 0 {
				return StructType{}, fmt.Errorf("%w: %s.%s at offset %d, %s needs alignment %d", ErrLayout, rt, f.Name, m.Offset, layout, align)
			}
			if m.Offset < padTo {
				return StructType{}, fmt.Errorf("%w: %s.%s at offset %d overlaps the padding of the previous member (%s needs %d)", ErrLayout, rt, f.Name, m.Offset, layout, padTo)
			}
			end = m.Offset + sizeOfType(t, layout)
			padTo = end
			if _, isStruct := t.(StructType); layout == LayoutStd140 && isStruct {
				padTo = roundUp(end, 16)
			}
			if _, isArray := t.(ArrayType); layout == LayoutStd140 && isArray {
				padTo = roundUp(end, 16)
			}
		}
		st.Members = append(st.Members, m)
	}
	if len(st.Members) == 0 {
		return StructType{}, fmt.Errorf("%w: %s has no members", ErrLayout, rt)
	}
	// The Go slice header of a trailing runtime array is not part of the
	// block.
	last := st.Members[len(st.Members)-1]
	if at, ok := last.Type.(ArrayType); ok && at.Len == 0 {
		st.Size = last.Offset
	}
	return st, nil
}

// structOf maps S under layout.
func structOf[S any](layout Layout) (StructType, error) {
	rt := reflect.TypeFor[S]()
	if rt.Kind() != reflect.Struct {
		return StructType{}, fmt.Errorf("%w: %s is not a struct", ErrLayout, rt)
	}
	return structType(rt, layout, false)
}

// blockOf maps S as the outermost struct of a buffer interface.
func blockOf[S any](layout Layout) (StructType, error) {
	rt := reflect.TypeFor[S]()
	if rt.Kind() != reflect.Struct {
		return StructType{}, fmt.Errorf("%w: %s is not a struct", ErrLayout, rt)
	}
	return structType(rt, layout, true)
}

// sameShape compares a described type with a layout-mapped one, ignoring
// layout decorations.
func sameShape(want, got Type) bool {
	switch w := want.(type) {
	case StructType:
		g, ok := got.(StructType)
		return ok && w.GoType == g.GoType
	case ArrayType:
		g, ok := got.(ArrayType)
		return ok && w.Len == g.Len && sameShape(w.Elem, g.Elem)
	}
	return want.key() == got.key()
}
