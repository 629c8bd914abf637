package resource

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvkit/format"
)

type meshUsage struct {
	Vertex
	Index
	TransferDst
}

type uniformUsage struct {
	Uniform
	TransferDst
}

type textureUsage struct {
	Sampled
	TransferDst
}

type targetUsage struct {
	ColorAttachment
	Sampled
	StorageImage
}

func capable[C any](u reflect.Type) bool {
	return u.Implements(reflect.TypeFor[C]())
}

func TestUsageCompatibility(t *testing.T) {
	tests := []struct {
		usage   reflect.Type
		vertex  bool
		index   bool
		uniform bool
		storage bool
		sampled bool
		image   bool
		target  bool
	}{
		{usage: reflect.TypeFor[meshUsage](), vertex: true, index: true},
		{usage: reflect.TypeFor[uniformUsage](), uniform: true},
		{usage: reflect.TypeFor[Storage](), storage: true},
		{usage: reflect.TypeFor[textureUsage](), sampled: true},
		{usage: reflect.TypeFor[targetUsage](), sampled: true, image: true, target: true},
		{usage: reflect.TypeFor[struct{}]()},
	}
	for _, tt := range tests {
		t.Run(tt.usage.String(), func(t *testing.T) {
			assert.Equal(t, tt.vertex, capable[VertexCapable](tt.usage), "vertex")
			assert.Equal(t, tt.index, capable[IndexCapable](tt.usage), "index")
			assert.Equal(t, tt.uniform, capable[UniformCapable](tt.usage), "uniform")
			assert.Equal(t, tt.storage, capable[StorageCapable](tt.usage), "storage")
			assert.Equal(t, tt.sampled, capable[SampledCapable](tt.usage), "sampled")
			assert.Equal(t, tt.image, capable[StorageImageCapable](tt.usage), "storage image")
			assert.Equal(t, tt.target, capable[AttachmentCapable](tt.usage), "attachment")
		})
	}
}

func TestBufferUsageOf(t *testing.T) {
	assert.Equal(t, BufferVertex|BufferIndex|BufferTransferDst, BufferUsageOf[meshUsage]())
	assert.Equal(t, BufferUniform|BufferTransferDst, BufferUsageOf[uniformUsage]())
	assert.Equal(t, BufferStorage, BufferUsageOf[Storage]())
	assert.Equal(t, BufferUsage(0), BufferUsageOf[struct{}]())
	assert.Equal(t, "transfer-dst|index|vertex", BufferUsageOf[meshUsage]().String())
	assert.Equal(t, "none", BufferUsage(0).String())
}

func TestImageUsageOf(t *testing.T) {
	assert.Equal(t, ImageSampled|ImageTransferDst, ImageUsageOf[textureUsage]())
	assert.Equal(t, ImageColorAttachment|ImageSampled|ImageStorage, ImageUsageOf[targetUsage]())
}

func TestBufferRange(t *testing.T) {
	b := NewBuffer[meshUsage]("mesh", 256)
	assert.Equal(t, BufferVertex|BufferIndex|BufferTransferDst, b.Usage())

	r, err := b.Range(64, 128)
	require.NoError(t, err)
	assert.Equal(t, "mesh", r.Handle)
	assert.Equal(t, uint64(64), r.Offset)
	assert.Equal(t, uint64(128), r.Size)

	rr, err := r.Range(32, 96)
	require.NoError(t, err)
	assert.Equal(t, uint64(96), rr.Offset)

	_, err = b.Range(200, 100)
	assert.Error(t, err)
	_, err = b.Range(300, 0)
	assert.Error(t, err)
	assert.Equal(t, "buffer(transfer-dst|index|vertex, 0+256)", b.String())
}

func TestImageView(t *testing.T) {
	v := NewImageView[format.RGBA8Unorm, textureUsage]("albedo", 64, 32)
	assert.Equal(t, Extent{64, 32, 1}, v.Extent)
	assert.Equal(t, uint32(1), v.Layers)
	assert.Equal(t, "RGBA8Unorm", v.Format().Name)
	assert.Equal(t, ImageSampled|ImageTransferDst, v.Usage())
}
