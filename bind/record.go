package bind

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/spvkit/pipeline"
	"github.com/gogpu/spvkit/resource"
	"github.com/gogpu/spvkit/shader"
)

// BindPoint mirrors VkPipelineBindPoint.
type BindPoint uint32

const (
	BindGraphics BindPoint = 0
	BindCompute  BindPoint = 1
)

// IndexType mirrors VkIndexType.
type IndexType uint32

const (
	IndexUint16 IndexType = 0
	IndexUint32 IndexType = 1
)

// Recorder records bind commands into a native command buffer.
type Recorder interface {
	BindPipeline(point BindPoint, p pipeline.Handle)
	BindVertexBuffers(first uint32, buffers []resource.Handle, offsets []uint64)
	BindIndexBuffer(buffer resource.Handle, offset uint64, t IndexType)
	PushConstants(layout pipeline.Handle, stages shader.StageFlags, offset uint32, data []byte)
	BindDescriptorSets(point BindPoint, layout pipeline.Handle, first uint32, sets []resource.Handle)
}

func bindPoint(pl *pipeline.Pipeline) BindPoint {
	if pl.Program.Compute() {
		return BindCompute
	}
	return BindGraphics
}

// Pipeline binds pl.
func Pipeline(r Recorder, pl *pipeline.Pipeline) {
	r.BindPipeline(bindPoint(pl), pl.Handle)
}

// Vertices binds b as the vertex buffer of in and returns the number of
// whole vertices it holds.
func Vertices[V any, U resource.VertexCapable](r Recorder, in *shader.VertexInput[V], b *resource.Buffer[U]) uint32 {
	return vertexBuffer(r, in.Info(), b.Handle, b.Offset, b.Size)
}

// Instances binds b as the per-instance buffer of in and returns the
// number of whole instances it holds.
func Instances[V any, U resource.VertexCapable](r Recorder, in *shader.InstanceInput[V], b *resource.Buffer[U]) uint32 {
	return vertexBuffer(r, in.Info(), b.Handle, b.Offset, b.Size)
}

func vertexBuffer(r Recorder, info shader.BindingInfo, h resource.Handle, offset, size uint64) uint32 {
	r.BindVertexBuffers(info.Binding, []resource.Handle{h}, []uint64{offset})
	if info.Stride == 0 {
		return 0
	}
	return uint32(size / uint64(info.Stride))
}

// Indices binds b as the index buffer with indices of type I and returns
// the index count.
func Indices[I uint16 | uint32, U resource.IndexCapable](r Recorder, b *resource.Buffer[U]) uint32 {
	var zero I
	t, size := IndexUint32, uint64(4)
	if _, ok := any(zero).(uint16); ok {
		t, size = IndexUint16, 2
	}
	r.BindIndexBuffer(b.Handle, b.Offset, t)
	return uint32(b.Size / size)
}

// Push records v as the contents of push constant block p. S must lay out
// in host memory as the block does in std430; blank padding fields encode
// as zeros.
func Push[S any](r Recorder, pl *pipeline.Pipeline, p *shader.PushConstant[S], v *S) error {
	info := p.Info()
	if info.Stages == 0 {
		return fmt.Errorf("bind: push constant %s is not used by any stage", info.Name)
	}
	data, err := binary.Append(nil, binary.LittleEndian, v)
	if err != nil {
		return fmt.Errorf("bind: push constant %s: %w", info.Name, err)
	}
	if uint32(len(data)) != info.Size {
		return fmt.Errorf("%w: push constant %s encodes to %d bytes, block is %d",
			shader.ErrLayout, info.Name, len(data), info.Size)
	}
	r.PushConstants(pl.Layout, info.Stages, 0, data)
	return nil
}

// Sets binds descriptor sets for pl. Sets with consecutive numbers are
// bound in one call.
func Sets(r Recorder, pl *pipeline.Pipeline, sets ...*DescriptorSet) {
	point := bindPoint(pl)
	for i := 0; i < len(sets); {
		j := i + 1
		for j < len(sets) && sets[j].Set == sets[j-1].Set+1 {
			j++
		}
		handles := make([]resource.Handle, 0, j-i)
		for _, s := range sets[i:j] {
			handles = append(handles, s.Handle)
		}
		r.BindDescriptorSets(point, pl.Layout, sets[i].Set, handles)
		i = j
	}
}
