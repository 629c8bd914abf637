package shader

import (
	"fmt"
	"reflect"
	"strings"
	"unsafe"

	"github.com/gogpu/spvkit/spirv"
)

// FieldRef names a field of S, possibly nested or an array element, whose
// shader type is T.
type FieldRef[S any, T Wrapped] struct {
	path []uint32
	name string
}

// Path returns the member index path of the field.
func (f FieldRef[S, T]) Path() []uint32 { return append([]uint32(nil), f.path...) }

func (f FieldRef[S, T]) String() string { return f.name }

// FieldOf resolves the field whose address sel returns:
//
//	mvp := shader.FieldOf[Params, shader.Mat4](func(p *Params) any { return &p.MVP })
//
// Resolve fields once, at package or constructor level. FieldOf panics
// when sel does not return a pointer into S or the field does not map to T.
func FieldOf[S any, T Wrapped](sel func(*S) any) FieldRef[S, T] {
	var s S
	rt := reflect.TypeOf(s)
	if rt.Kind() != reflect.Struct {
		panic(fmt.Sprintf("shader: FieldOf on non-struct %s", rt))
	}
	p := reflect.ValueOf(sel(&s))
	if p.Kind() != reflect.Pointer || p.IsNil() {
		panic(fmt.Sprintf("shader: FieldOf selector on %s must return a field pointer", rt))
	}
	base := uintptr(unsafe.Pointer(&s))
	addr := p.Pointer()
	if addr < base || addr >= base+rt.Size() {
		panic(fmt.Sprintf("shader: FieldOf selector on %s returned a pointer outside the struct", rt))
	}
	ft := p.Type().Elem()
	path, name, ok := fieldPath(rt, addr-base, ft)
	if !ok {
		panic(fmt.Sprintf("shader: no field of type %s at offset %d in %s", ft, addr-base, rt))
	}
	var got Type
	var err error
	if ft.Kind() == reflect.Slice {
		var et Type
		et, err = goType(ft.Elem(), "", LayoutNone)
		got = ArrayType{Elem: et}
	} else {
		got, err = goType(ft, fieldTag(rt, path), LayoutNone)
	}
	if err != nil {
		panic(fmt.Sprintf("shader: field %s.%s: %v", rt, name, err))
	}
	want := describe[T]()
	if a, ok := any(*new(T)).(interface{ arrayElem() Type }); ok {
		if at, ok := got.(ArrayType); ok {
			want = ArrayType{Elem: a.arrayElem(), Len: at.Len}
		}
	}
	if want == nil || !sameShape(want, got) {
		panic(fmt.Sprintf("shader: field %s.%s is %s, not %T", rt, name, got.key(), *new(T)))
	}
	return FieldRef[S, T]{path: path, name: name}
}

func (Array[T]) arrayElem() Type { return describe[T]() }

// fieldPath finds the member index path of the field of type ft at off.
// Padding fields named _ do not count as members.
func fieldPath(rt reflect.Type, off uintptr, ft reflect.Type) ([]uint32, string, bool) {
	switch rt.Kind() {
	case reflect.Struct:
		member := uint32(0)
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if f.Name == "_" {
				continue
			}
			if off >= f.Offset && off < f.Offset+max(f.Type.Size(), 1) {
				if off == f.Offset && f.Type == ft {
					return []uint32{member}, f.Name, true
				}
				rest, name, ok := fieldPath(f.Type, off-f.Offset, ft)
				if ok {
					if !strings.HasPrefix(name, "[") {
						name = "." + name
					}
					return append([]uint32{member}, rest...), f.Name + name, true
				}
				return nil, "", false
			}
			member++
		}
	case reflect.Array:
		es := rt.Elem().Size()
		if es == 0 {
			return nil, "", false
		}
		idx := off / es
		if idx >= uintptr(rt.Len()) {
			return nil, "", false
		}
		label := fmt.Sprintf("[%d]", idx)
		if off%es == 0 && rt.Elem() == ft {
			return []uint32{uint32(idx)}, label, true
		}
		rest, name, ok := fieldPath(rt.Elem(), off-idx*es, ft)
		if ok {
			if !strings.HasPrefix(name, "[") {
				name = "." + name
			}
			return append([]uint32{uint32(idx)}, rest...), label + name, true
		}
	}
	return nil, "", false
}

// fieldTag returns the struct tag of the last struct member on path.
func fieldTag(rt reflect.Type, path []uint32) reflect.StructTag {
	var tag reflect.StructTag
	for _, idx := range path {
		switch rt.Kind() {
		case reflect.Struct:
			member := uint32(0)
			for i := 0; i < rt.NumField(); i++ {
				f := rt.Field(i)
				if f.Name == "_" {
					continue
				}
				if member == idx {
					tag = f.Tag
					rt = f.Type
					break
				}
				member++
			}
		case reflect.Array:
			rt = rt.Elem()
			tag = ""
		default:
			return tag
		}
	}
	return tag
}

// Field extracts a member from a struct value.
func Field[S any, T Wrapped](s Struct[S], f FieldRef[S, T]) T {
	t, err := memberType(s.t, f.path)
	if err != nil {
		s.c.fail(err)
		return wrap[T](s.c, 0, t)
	}
	return T(struct{ value }{s.extract(t, f.path...)})
}

// Member returns the slot of a field of a buffer or struct variable.
func Member[S any, T Wrapped](r Ref[S], f FieldRef[S, T]) Var[T] {
	v := r.Var
	t, err := memberType(v.t, f.path)
	if err != nil {
		v.c.fail(err)
		return Var[T]{c: v.c, t: voidType, class: v.class}
	}
	indices := make([]uint32, len(f.path))
	for i, idx := range f.path {
		indices[i] = v.c.constI32(int32(idx))
	}
	return Var[T]{c: v.c, ptr: v.access(t, indices...), t: t, class: v.class}
}

// MemberOf is Member for a struct variable that is not a buffer.
func MemberOf[S any, T Wrapped](v Var[Struct[S]], f FieldRef[S, T]) Var[T] {
	return Member(Ref[S]{v}, f)
}

// Ref is the slot of a buffer block whose layout is S.
type Ref[S any] struct {
	Var[Struct[S]]
}

// ArrayLength returns the element count of the runtime array field f,
// which must be the last member of the block.
func ArrayLength[S any, T Wrapped](r Ref[S], f FieldRef[S, Array[T]]) Uint {
	c := r.c
	st, ok := r.t.(StructType)
	if !ok || len(f.path) != 1 || int(f.path[0]) != len(st.Members)-1 {
		c.fail(fmt.Errorf("%w: ArrayLength of %s, which is not the trailing runtime array", ErrType, f.name))
		return Uint{value{c, 0, u32Type}}
	}
	if at, ok := st.Members[f.path[0]].Type.(ArrayType); !ok || at.Len != 0 {
		c.fail(fmt.Errorf("%w: ArrayLength of fixed field %s", ErrType, f.name))
		return Uint{value{c, 0, u32Type}}
	}
	return Uint{c.emitT(spirv.OpArrayLength, u32Type, r.ptr, f.path[0])}
}

// AtomicAdd adds x to the integer slot v and returns the previous value.
func AtomicAdd[K Integer](v Var[Scalar[K]], x Scalar[K]) Scalar[K] {
	c := v.c
	if x.c != c {
		c.fail(fmt.Errorf("%w: AtomicAdd operand from another context", ErrType))
		return x
	}
	scope := spirv.ScopeDevice
	if v.class == spirv.StorageClassWorkgroup {
		scope = spirv.ScopeWorkgroup
	}
	t := kindOf[K]()
	return Scalar[K]{c.emitT(spirv.OpAtomicIAdd, t, v.ptr, c.constU32(uint32(scope)), c.constU32(uint32(spirv.MemorySemanticsNone)), x.id)}
}
