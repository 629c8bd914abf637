package programs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvkit/bind"
	"github.com/gogpu/spvkit/diag"
	"github.com/gogpu/spvkit/format"
	"github.com/gogpu/spvkit/pipeline"
	"github.com/gogpu/spvkit/resource"
	"github.com/gogpu/spvkit/shader"
	"github.com/gogpu/spvkit/spirv"
)

func decode(t *testing.T, m *shader.Module) *spirv.Module {
	t.Helper()
	d, err := spirv.DecodeWords(m.Words)
	require.NoError(t, err)
	return d
}

func TestTexturedProgram(t *testing.T) {
	var col diag.Collector
	p, err := pipeline.Translate(NewTextured("test", nil), shader.Options{Reporter: &col})
	require.NoError(t, err)
	require.Len(t, p.Modules, 2)
	assert.Empty(t, col.Messages)

	vs := decode(t, p.Modules[0])
	assert.Equal(t, 1, vs.Count(spirv.OpMatrixTimesVector))

	fs := decode(t, p.Modules[1])
	assert.Equal(t, 1, fs.Count(spirv.OpImageSampleImplicitLod))
	assert.Equal(t, 1, fs.Count(spirv.OpKill))
	assert.Equal(t, 1, fs.Count(spirv.OpSelectionMerge))

	l := p.Layout
	require.Len(t, l.Sets, 2)
	frame, ok := l.Binding(0, 0)
	require.True(t, ok)
	assert.Equal(t, pipeline.DescriptorUniformBuffer, frame.Type)
	assert.Equal(t, shader.StageVertex|shader.StageFragment, frame.Stages)
	albedo, ok := l.Binding(1, 0)
	require.True(t, ok)
	assert.Equal(t, pipeline.DescriptorCombinedImageSampler, albedo.Type)
	assert.Equal(t, shader.StageFragment, albedo.Stages)

	require.Len(t, l.VertexBindings, 1)
	assert.Equal(t, uint32(16), l.VertexBindings[0].Stride)
	require.Len(t, l.VertexAttributes, 2)
	assert.Equal(t, uint32(8), l.VertexAttributes[1].Offset)
	require.Len(t, l.ColorAttachments, 1)
	assert.Equal(t, format.Of[format.BGRA8Unorm](), l.ColorAttachments[0].Format)
}

func TestParticlesProgram(t *testing.T) {
	p, err := pipeline.Translate(NewParticles("test", nil), shader.Options{})
	require.NoError(t, err)
	require.True(t, p.Compute())
	assert.Equal(t, [3]uint32{ParticleGroupSize, 1, 1}, p.Workgroup)

	cs := decode(t, p.Modules[0])
	assert.Equal(t, 1, cs.Count(spirv.OpArrayLength))
	assert.Equal(t, 1, cs.Count(spirv.OpAtomicIAdd))
	assert.Equal(t, 1, cs.Count(spirv.OpConvertFToU))
	assert.Equal(t, 1, cs.Count(spirv.OpSelectionMerge))

	l := p.Layout
	require.Len(t, l.Sets, 1)
	require.Len(t, l.Sets[0].Bindings, 2)
	for _, b := range l.Sets[0].Bindings {
		assert.Equal(t, pipeline.DescriptorStorageBuffer, b.Type)
		assert.Equal(t, shader.StageCompute, b.Stages)
	}
	require.Len(t, l.PushConstants, 1)
	assert.Equal(t, uint32(8), l.PushConstants[0].Size)
}

func TestCatalog(t *testing.T) {
	all := All()
	require.Len(t, all, 2)
	assert.Equal(t, "particles", all[0].Name)
	assert.Equal(t, "textured", all[1].Name)

	s, ok := Lookup("textured")
	require.True(t, ok)
	cfg := s.New("test", nil)
	assert.Len(t, cfg.Stages(), 2)

	_, ok = Lookup("missing")
	assert.False(t, ok)
}

type device struct{ next int }

func (d *device) handle() pipeline.Handle {
	d.next++
	return d.next
}

func (d *device) SupportsCapability(spirv.Capability) bool { return true }

func (d *device) CreateShaderModule(context.Context, *shader.Module) (pipeline.Handle, error) {
	return d.handle(), nil
}

func (d *device) CreateSetLayout(context.Context, pipeline.SetLayout) (pipeline.Handle, error) {
	return d.handle(), nil
}

func (d *device) CreatePipelineLayout(context.Context, []pipeline.Handle, []pipeline.PushRange) (pipeline.Handle, error) {
	return d.handle(), nil
}

func (d *device) CreateGraphicsPipeline(context.Context, pipeline.GraphicsDesc) (pipeline.Handle, error) {
	return d.handle(), nil
}

func (d *device) CreateComputePipeline(context.Context, pipeline.ComputeDesc) (pipeline.Handle, error) {
	return d.handle(), nil
}

type writer struct{ writes []bind.Write }

func (w *writer) WriteDescriptors(_ resource.Handle, writes []bind.Write) error {
	w.writes = append(w.writes, writes...)
	return nil
}

type recorder struct{ push [][]byte }

func (r *recorder) BindPipeline(bind.BindPoint, pipeline.Handle)                                  {}
func (r *recorder) BindVertexBuffers(uint32, []resource.Handle, []uint64)                         {}
func (r *recorder) BindIndexBuffer(resource.Handle, uint64, bind.IndexType)                       {}
func (r *recorder) BindDescriptorSets(bind.BindPoint, pipeline.Handle, uint32, []resource.Handle) {}

func (r *recorder) PushConstants(_ pipeline.Handle, _ shader.StageFlags, _ uint32, data []byte) {
	r.push = append(r.push, data)
}

type (
	meshUsage    struct{ resource.Vertex }
	frameUsage   struct{ resource.Uniform }
	textureUsage struct{ resource.Sampled }
)

func TestTexturedEndToEnd(t *testing.T) {
	tex := NewTextured("test", nil)
	pl, err := pipeline.Compile(context.Background(), &device{}, tex, pipeline.State{}, shader.Options{})
	require.NoError(t, err)
	assert.Len(t, pl.SetLayouts, 2)

	var w writer
	frame := resource.NewBuffer[frameUsage]("frame", 80)
	albedo := resource.NewImageView[format.RGBA8Unorm, textureUsage]("albedo", 256, 256)
	linear := &resource.Sampler{Handle: "linear"}
	require.NoError(t, (&bind.DescriptorSet{Set: 0}).Update(&w, bind.UniformBuffer(tex.Frame, frame)))
	require.NoError(t, (&bind.DescriptorSet{Set: 1}).Update(&w, bind.SampledTexture(tex.Albedo, albedo, linear)))
	assert.Len(t, w.writes, 2)
	assert.Same(t, frame, tex.Frame.Associated())

	var r recorder
	mesh := resource.NewBuffer[meshUsage]("mesh", 3*16)
	bind.Pipeline(&r, pl)
	assert.Equal(t, uint32(3), bind.Vertices(&r, tex.Verts, mesh))
}

func TestParticlesEndToEnd(t *testing.T) {
	ps := NewParticles("test", nil)
	pl, err := pipeline.Compile(context.Background(), &device{}, ps, pipeline.State{}, shader.Options{})
	require.NoError(t, err)

	var w writer
	items := resource.NewBuffer[resource.Storage]("items", 1024*16)
	hist := resource.NewBuffer[resource.Storage]("hist", 32*4)
	require.NoError(t, (&bind.DescriptorSet{Set: 0}).Update(&w,
		bind.StorageBuffer(ps.Particles, items),
		bind.StorageBuffer(ps.Histogram, hist),
	))

	var r recorder
	require.NoError(t, bind.Push(&r, pl, ps.Step, &Step{DT: 0.5, Bins: 32}))
	require.Len(t, r.push, 1)
	assert.Equal(t, []byte{0, 0, 0, 0x3f, 32, 0, 0, 0}, r.push[0])
}
