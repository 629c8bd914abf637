// Package resource types GPU buffers and image views by their usage.
//
// The usage of a resource is a type parameter built by embedding marker
// structs:
//
//	type meshUsage struct {
//		resource.Vertex
//		resource.Index
//		resource.TransferDst
//	}
//	var mesh *resource.Buffer[meshUsage]
//
// Binding operations constrain the parameter with the Capable interfaces,
// so passing a buffer created without the usage a binding needs does not
// compile.
package resource

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvkit/format"
)

// Handle is an opaque native object owned by the caller's allocator.
type Handle any

// Usage markers. Embed the ones a resource is created with.
type (
	Vertex          struct{}
	Index           struct{}
	Uniform         struct{}
	Storage         struct{}
	Sampled         struct{}
	StorageImage    struct{}
	ColorAttachment struct{}
	TransferSrc     struct{}
	TransferDst     struct{}
)

func (Vertex) vertexUsage()                   {}
func (Index) indexUsage()                     {}
func (Uniform) uniformUsage()                 {}
func (Storage) storageUsage()                 {}
func (Sampled) sampledUsage()                 {}
func (StorageImage) storageImageUsage()       {}
func (ColorAttachment) colorAttachmentUsage() {}
func (TransferSrc) transferSrcUsage()         {}
func (TransferDst) transferDstUsage()         {}

type (
	VertexCapable       interface{ vertexUsage() }
	IndexCapable        interface{ indexUsage() }
	UniformCapable      interface{ uniformUsage() }
	StorageCapable      interface{ storageUsage() }
	SampledCapable      interface{ sampledUsage() }
	StorageImageCapable interface{ storageImageUsage() }
	AttachmentCapable   interface{ colorAttachmentUsage() }
	TransferSrcCapable  interface{ transferSrcUsage() }
	TransferDstCapable  interface{ transferDstUsage() }
)

// BufferUsage mirrors VkBufferUsageFlags.
type BufferUsage uint32

const (
	BufferTransferSrc BufferUsage = 0x1
	BufferTransferDst BufferUsage = 0x2
	BufferUniform     BufferUsage = 0x10
	BufferStorage     BufferUsage = 0x20
	BufferIndex       BufferUsage = 0x40
	BufferVertex      BufferUsage = 0x80
)

var bufferUsageNames = []struct {
	bit  BufferUsage
	name string
}{
	{BufferTransferSrc, "transfer-src"},
	{BufferTransferDst, "transfer-dst"},
	{BufferUniform, "uniform"},
	{BufferStorage, "storage"},
	{BufferIndex, "index"},
	{BufferVertex, "vertex"},
}

func (u BufferUsage) String() string {
	var parts []string
	for _, n := range bufferUsageNames {
		if u&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ImageUsage mirrors VkImageUsageFlags.
type ImageUsage uint32

const (
	ImageTransferSrc     ImageUsage = 0x1
	ImageTransferDst     ImageUsage = 0x2
	ImageSampled         ImageUsage = 0x4
	ImageStorage         ImageUsage = 0x8
	ImageColorAttachment ImageUsage = 0x10
)

// BufferUsageOf returns the native usage flags a buffer of usage U must be
// created with.
func BufferUsageOf[U any]() BufferUsage {
	var u any = *new(U)
	var f BufferUsage
	if _, ok := u.(TransferSrcCapable); ok {
		f |= BufferTransferSrc
	}
	if _, ok := u.(TransferDstCapable); ok {
		f |= BufferTransferDst
	}
	if _, ok := u.(UniformCapable); ok {
		f |= BufferUniform
	}
	if _, ok := u.(StorageCapable); ok {
		f |= BufferStorage
	}
	if _, ok := u.(IndexCapable); ok {
		f |= BufferIndex
	}
	if _, ok := u.(VertexCapable); ok {
		f |= BufferVertex
	}
	return f
}

// ImageUsageOf returns the native usage flags an image of usage U must be
// created with.
func ImageUsageOf[U any]() ImageUsage {
	var u any = *new(U)
	var f ImageUsage
	if _, ok := u.(TransferSrcCapable); ok {
		f |= ImageTransferSrc
	}
	if _, ok := u.(TransferDstCapable); ok {
		f |= ImageTransferDst
	}
	if _, ok := u.(SampledCapable); ok {
		f |= ImageSampled
	}
	if _, ok := u.(StorageImageCapable); ok {
		f |= ImageStorage
	}
	if _, ok := u.(AttachmentCapable); ok {
		f |= ImageColorAttachment
	}
	return f
}

// Buffer is a range of a native buffer created with usage U.
type Buffer[U any] struct {
	Handle Handle
	Offset uint64
	Size   uint64
}

// NewBuffer wraps a native buffer of size bytes.
func NewBuffer[U any](h Handle, size uint64) *Buffer[U] {
	return &Buffer[U]{Handle: h, Size: size}
}

// Usage returns the native usage flags of b.
func (b *Buffer[U]) Usage() BufferUsage { return BufferUsageOf[U]() }

// Range returns a sub-range of b sharing its handle and usage.
func (b *Buffer[U]) Range(offset, size uint64) (*Buffer[U], error) {
	if offset > b.Size || size > b.Size-offset {
		return nil, fmt.Errorf("resource: range [%d,+%d) outside buffer of %d bytes", offset, size, b.Size)
	}
	return &Buffer[U]{Handle: b.Handle, Offset: b.Offset + offset, Size: size}, nil
}

func (b *Buffer[U]) String() string {
	return fmt.Sprintf("buffer(%s, %d+%d)", b.Usage(), b.Offset, b.Size)
}

// Extent is an image size in texels.
type Extent struct {
	Width, Height, Depth uint32
}

// ImageView is a view of a native image whose texel format is F, created
// with usage U.
type ImageView[F format.Texel, U any] struct {
	Handle Handle
	Extent Extent
	Layers uint32
}

// NewImageView wraps a native 2D image view.
func NewImageView[F format.Texel, U any](h Handle, width, height uint32) *ImageView[F, U] {
	return &ImageView[F, U]{Handle: h, Extent: Extent{Width: width, Height: height, Depth: 1}, Layers: 1}
}

// Format returns the layout table entry of F.
func (v *ImageView[F, U]) Format() format.Info { return format.Of[F]() }

func (v *ImageView[F, U]) Usage() ImageUsage { return ImageUsageOf[U]() }

// Sampler is a native sampler object.
type Sampler struct {
	Handle Handle
}
