// Package bind applies resources to the binding points of a shader
// configuration at run time.
//
// Every builder is generic over the binding point's block or texel type and
// over the resource's usage, so a uniform block bound to a storage-only
// buffer, or an RGBA8 texture bound to an R32Float view, does not compile.
package bind

import (
	"errors"
	"fmt"

	"github.com/gogpu/spvkit/format"
	"github.com/gogpu/spvkit/pipeline"
	"github.com/gogpu/spvkit/resource"
	"github.com/gogpu/spvkit/shader"
)

var (
	ErrSetMismatch = errors.New("bind: binding point belongs to another descriptor set")
	ErrIndexRange  = errors.New("bind: array index out of range")
)

// BufferInfo is the buffer part of a descriptor write.
type BufferInfo struct {
	Buffer resource.Handle
	Offset uint64
	Range  uint64
}

// ImageInfo is the image part of a descriptor write. Sampler is nil for
// sampled and storage images; View is nil for separate samplers.
type ImageInfo struct {
	View    resource.Handle
	Sampler resource.Handle
}

// Write is one descriptor write, as consumed by a Writer.
type Write struct {
	Name         string
	Binding      uint32
	ArrayElement uint32
	Type         pipeline.DescriptorType
	Buffer       *BufferInfo
	Image        *ImageInfo
}

// Writer applies descriptor writes to a native descriptor set.
type Writer interface {
	WriteDescriptors(set resource.Handle, writes []Write) error
}

// target is the part of a binding point Update needs.
type target interface {
	Info() shader.BindingInfo
	Associate(r any)
	Associated() any
}

// Assignment binds one resource to one binding point. Build it with the
// functions of this package.
type Assignment struct {
	point    target
	index    uint32
	array    bool
	resource any
	buffer   *BufferInfo
	image    *ImageInfo
}

// SampledImage is what a combined image-sampler binding point is
// associated with.
type SampledImage struct {
	View    any
	Sampler *resource.Sampler
}

func bufferAssignment[U any](p target, b *resource.Buffer[U], array bool, i uint32) Assignment {
	return Assignment{
		point: p, index: i, array: array, resource: b,
		buffer: &BufferInfo{Buffer: b.Handle, Offset: b.Offset, Range: b.Size},
	}
}

func UniformBuffer[S any, U resource.UniformCapable](p *shader.UniformBuffer[S], b *resource.Buffer[U]) Assignment {
	return bufferAssignment(p, b, false, 0)
}

func UniformBufferAt[S any, U resource.UniformCapable](p *shader.UniformArray[S], i uint32, b *resource.Buffer[U]) Assignment {
	return bufferAssignment(p, b, true, i)
}

func StorageBuffer[S any, U resource.StorageCapable](p *shader.StorageBuffer[S], b *resource.Buffer[U]) Assignment {
	return bufferAssignment(p, b, false, 0)
}

func StorageBufferAt[S any, U resource.StorageCapable](p *shader.StorageArray[S], i uint32, b *resource.Buffer[U]) Assignment {
	return bufferAssignment(p, b, true, i)
}

func imageAssignment(p target, array bool, i uint32, res any, view, sampler resource.Handle) Assignment {
	return Assignment{
		point: p, index: i, array: array, resource: res,
		image: &ImageInfo{View: view, Sampler: sampler},
	}
}

func Texture[F format.Texel, U resource.SampledCapable](p *shader.Texture[F], v *resource.ImageView[F, U]) Assignment {
	return imageAssignment(p, false, 0, v, v.Handle, nil)
}

func TextureAt[F format.Texel, U resource.SampledCapable](p *shader.TextureArray[F], i uint32, v *resource.ImageView[F, U]) Assignment {
	return imageAssignment(p, true, i, v, v.Handle, nil)
}

func Sampler(p *shader.Sampler, s *resource.Sampler) Assignment {
	return imageAssignment(p, false, 0, s, nil, s.Handle)
}

func SamplerAt(p *shader.SamplerArray, i uint32, s *resource.Sampler) Assignment {
	return imageAssignment(p, true, i, s, nil, s.Handle)
}

func SampledTexture[F format.Texel, U resource.SampledCapable](p *shader.SampledTexture[F], v *resource.ImageView[F, U], s *resource.Sampler) Assignment {
	return imageAssignment(p, false, 0, SampledImage{View: v, Sampler: s}, v.Handle, s.Handle)
}

func SampledTextureAt[F format.Texel, U resource.SampledCapable](p *shader.SampledTextureArray[F], i uint32, v *resource.ImageView[F, U], s *resource.Sampler) Assignment {
	return imageAssignment(p, true, i, SampledImage{View: v, Sampler: s}, v.Handle, s.Handle)
}

func StorageImage[F format.Texel, U resource.StorageImageCapable](p *shader.StorageImage[F], v *resource.ImageView[F, U]) Assignment {
	return imageAssignment(p, false, 0, v, v.Handle, nil)
}

func StorageImageAt[F format.Texel, U resource.StorageImageCapable](p *shader.StorageImageArray[F], i uint32, v *resource.ImageView[F, U]) Assignment {
	return imageAssignment(p, true, i, v, v.Handle, nil)
}

// DescriptorSet is a native descriptor set allocated for set number Set.
type DescriptorSet struct {
	Set    uint32
	Handle resource.Handle
}

// Update writes every assignment to s through w in one call, then records
// each resource on its binding point. Array forms record a map from
// element index to resource. Nothing is written or recorded when an
// assignment is invalid. Update is not safe for concurrent use with
// other updates touching the same binding points.
func (s *DescriptorSet) Update(w Writer, as ...Assignment) error {
	writes := make([]Write, 0, len(as))
	for _, a := range as {
		info := a.point.Info()
		if info.Set != s.Set {
			return fmt.Errorf("%w: %s is in set %d, not %d", ErrSetMismatch, info.Name, info.Set, s.Set)
		}
		if a.index >= max(info.Count, 1) {
			return fmt.Errorf("%w: %s[%d] of %d", ErrIndexRange, info.Name, a.index, info.Count)
		}
		dt, _ := pipeline.DescriptorTypeOf(info.Kind)
		writes = append(writes, Write{
			Name:         info.Name,
			Binding:      info.Binding,
			ArrayElement: a.index,
			Type:         dt,
			Buffer:       a.buffer,
			Image:        a.image,
		})
	}
	if len(writes) == 0 {
		return nil
	}
	if err := w.WriteDescriptors(s.Handle, writes); err != nil {
		return fmt.Errorf("bind: update set %d: %w", s.Set, err)
	}
	for _, a := range as {
		if !a.array {
			a.point.Associate(a.resource)
			continue
		}
		elems, _ := a.point.Associated().(map[uint32]any)
		next := make(map[uint32]any, len(elems)+1)
		for k, v := range elems {
			next[k] = v
		}
		next[a.index] = a.resource
		a.point.Associate(next)
	}
	return nil
}
