package bind

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvkit/format"
	"github.com/gogpu/spvkit/pipeline"
	"github.com/gogpu/spvkit/resource"
	"github.com/gogpu/spvkit/shader"
	"github.com/gogpu/spvkit/spirv"
)

type vertex struct {
	Pos [3]float32
	UV  [2]float32
}

type params struct {
	Tint  [4]float32
	Scale float32
	_     [3]float32
}

var (
	posField   = shader.FieldOf[vertex, shader.Vec3](func(v *vertex) any { return &v.Pos })
	scaleField = shader.FieldOf[params, shader.Float](func(p *params) any { return &p.Scale })
)

type scene struct {
	shader.Base
	Verts     *shader.VertexInput[vertex]
	Instances *shader.InstanceInput[vertex]
	Params    *shader.UniformBuffer[params]
	Lights    *shader.UniformArray[params]
	Particles *shader.StorageBuffer[params]
	Albedo    *shader.Texture[format.RGBA8Unorm]
	Linear    *shader.Sampler
	Atlas     *shader.SampledTextureArray[format.RGBA8Unorm]
	Target    *shader.StorageImage[format.R32Float]
	Push      *shader.PushConstant[params]
	Color     *shader.Output[format.RGBA8Unorm]
	VS        *shader.Stage
}

func newScene() *scene {
	s := &scene{}
	s.Init("test", "device")
	s.Verts = shader.NewVertexInput[vertex](&s.Base, "verts")
	s.Instances = shader.NewInstanceInput[vertex](&s.Base, "instances")
	s.Params = shader.NewUniformBuffer[params](&s.Base, "params")
	s.Lights = shader.NewUniformArray[params](&s.Base, "lights", 4)
	s.Particles = shader.NewStorageBuffer[params](&s.Base, "particles")
	s.Albedo = shader.NewTexture[format.RGBA8Unorm](&s.Base, "albedo", shader.Set(1))
	s.Linear = shader.NewSampler(&s.Base, "linear", shader.Set(1))
	s.Atlas = shader.NewSampledTextureArray[format.RGBA8Unorm](&s.Base, "atlas", 3, shader.Set(1))
	s.Target = shader.NewStorageImage[format.R32Float](&s.Base, "target", shader.Set(2))
	s.Push = shader.NewPushConstant[params](&s.Base, "push")
	s.Color = shader.NewOutput[format.RGBA8Unorm](&s.Base, "color")
	s.VS = shader.NewVertexShader(&s.Base, func(c *shader.VertexContext) {
		pos := shader.Attr(c, s.Verts, posField)
		scale := shader.Member(shader.Access(c, s.Push), scaleField).Load()
		c.SetPosition(shader.Extend(pos.Scale(scale), c.Float(1)))
	})
	return s
}

type (
	uniformUsage struct {
		resource.Uniform
		resource.TransferDst
	}
	meshUsage struct {
		resource.Vertex
		resource.Index
	}
	textureUsage struct{ resource.Sampled }
	imageUsage   struct{ resource.StorageImage }
)

type fakeWriter struct {
	set    resource.Handle
	writes []Write
	err    error
}

func (w *fakeWriter) WriteDescriptors(set resource.Handle, writes []Write) error {
	if w.err != nil {
		return w.err
	}
	w.set = set
	w.writes = append(w.writes, writes...)
	return nil
}

func TestUpdate(t *testing.T) {
	s := newScene()
	ubo := resource.NewBuffer[uniformUsage]("ubo", 32)
	ssbo := resource.NewBuffer[resource.Storage]("ssbo", 64)
	var w fakeWriter
	set0 := &DescriptorSet{Set: 0, Handle: "set0"}

	require.NoError(t, set0.Update(&w, UniformBuffer(s.Params, ubo), StorageBuffer(s.Particles, ssbo)))
	assert.Equal(t, "set0", w.set)
	require.Len(t, w.writes, 2)
	assert.Equal(t, Write{
		Name: "params", Binding: 0, Type: pipeline.DescriptorUniformBuffer,
		Buffer: &BufferInfo{Buffer: "ubo", Range: 32},
	}, w.writes[0])
	assert.Equal(t, uint32(2), w.writes[1].Binding)
	assert.Equal(t, pipeline.DescriptorStorageBuffer, w.writes[1].Type)

	assert.Same(t, ubo, s.Params.Associated())
	assert.Same(t, ssbo, s.Particles.Associated())
}

func TestUpdateImages(t *testing.T) {
	s := newScene()
	albedo := resource.NewImageView[format.RGBA8Unorm, textureUsage]("albedo", 64, 64)
	linear := &resource.Sampler{Handle: "linear"}
	var w fakeWriter
	set1 := &DescriptorSet{Set: 1, Handle: "set1"}

	require.NoError(t, set1.Update(&w,
		Texture(s.Albedo, albedo),
		Sampler(s.Linear, linear),
		SampledTextureAt(s.Atlas, 2, albedo, linear),
	))
	require.Len(t, w.writes, 3)
	assert.Equal(t, pipeline.DescriptorSampledImage, w.writes[0].Type)
	assert.Equal(t, &ImageInfo{View: "albedo"}, w.writes[0].Image)
	assert.Equal(t, pipeline.DescriptorSampler, w.writes[1].Type)
	assert.Equal(t, &ImageInfo{Sampler: "linear"}, w.writes[1].Image)
	assert.Equal(t, pipeline.DescriptorCombinedImageSampler, w.writes[2].Type)
	assert.Equal(t, uint32(2), w.writes[2].ArrayElement)
	assert.Equal(t, &ImageInfo{View: "albedo", Sampler: "linear"}, w.writes[2].Image)

	assert.Same(t, albedo, s.Albedo.Associated())
	assert.Equal(t, map[uint32]any{2: SampledImage{View: albedo, Sampler: linear}}, s.Atlas.Associated())

	other := resource.NewImageView[format.RGBA8Unorm, textureUsage]("other", 8, 8)
	require.NoError(t, set1.Update(&w, SampledTextureAt(s.Atlas, 0, other, linear)))
	elems := s.Atlas.Associated().(map[uint32]any)
	assert.Len(t, elems, 2)
	assert.Equal(t, SampledImage{View: other, Sampler: linear}, elems[0])

	target := resource.NewImageView[format.R32Float, imageUsage]("target", 16, 16)
	set2 := &DescriptorSet{Set: 2, Handle: "set2"}
	require.NoError(t, set2.Update(&w, StorageImage(s.Target, target)))
	assert.Equal(t, pipeline.DescriptorStorageImage, w.writes[len(w.writes)-1].Type)
}

func TestUpdateErrors(t *testing.T) {
	s := newScene()
	ubo := resource.NewBuffer[uniformUsage]("ubo", 32)
	var w fakeWriter
	set1 := &DescriptorSet{Set: 1}

	err := set1.Update(&w, UniformBuffer(s.Params, ubo))
	assert.ErrorIs(t, err, ErrSetMismatch)

	set0 := &DescriptorSet{Set: 0}
	err = set0.Update(&w, UniformBuffer(s.Params, ubo), UniformBufferAt(s.Lights, 4, ubo))
	assert.ErrorIs(t, err, ErrIndexRange)
	assert.Empty(t, w.writes)
	assert.Nil(t, s.Params.Associated())

	w.err = errors.New("device lost")
	err = set0.Update(&w, UniformBufferAt(s.Lights, 3, ubo))
	assert.ErrorIs(t, err, w.err)
	assert.Nil(t, s.Lights.Associated())

	assert.NoError(t, set0.Update(&w))
}

// The builders reject usages statically. Reflection over their type
// parameter constraints shows which usage each one demands.
func TestBuilderConstraints(t *testing.T) {
	uniform := reflect.TypeFor[resource.UniformCapable]()
	assert.True(t, reflect.TypeFor[uniformUsage]().Implements(uniform))
	assert.False(t, reflect.TypeFor[meshUsage]().Implements(uniform))
	assert.False(t, reflect.TypeFor[resource.Storage]().Implements(uniform))

	sampled := reflect.TypeFor[resource.SampledCapable]()
	assert.True(t, reflect.TypeFor[textureUsage]().Implements(sampled))
	assert.False(t, reflect.TypeFor[imageUsage]().Implements(sampled))
	assert.True(t, reflect.TypeFor[imageUsage]().Implements(reflect.TypeFor[resource.StorageImageCapable]()))
}

type call struct {
	op   string
	args []any
}

type fakeRecorder struct{ calls []call }

func (r *fakeRecorder) record(op string, args ...any) {
	r.calls = append(r.calls, call{op, args})
}

func (r *fakeRecorder) BindPipeline(point BindPoint, p pipeline.Handle) {
	r.record("pipeline", point, p)
}

func (r *fakeRecorder) BindVertexBuffers(first uint32, buffers []resource.Handle, offsets []uint64) {
	r.record("vertex", first, buffers, offsets)
}

func (r *fakeRecorder) BindIndexBuffer(buffer resource.Handle, offset uint64, t IndexType) {
	r.record("index", buffer, offset, t)
}

func (r *fakeRecorder) PushConstants(layout pipeline.Handle, stages shader.StageFlags, offset uint32, data []byte) {
	r.record("push", layout, stages, offset, data)
}

func (r *fakeRecorder) BindDescriptorSets(point BindPoint, layout pipeline.Handle, first uint32, sets []resource.Handle) {
	r.record("sets", point, layout, first, sets)
}

func graphicsPipeline() *pipeline.Pipeline {
	return &pipeline.Pipeline{Program: &pipeline.Program{}, Layout: "layout", Handle: "pipe"}
}

func TestVerticesAndIndices(t *testing.T) {
	s := newScene()
	mesh := resource.NewBuffer[meshUsage]("mesh", 200)
	var r fakeRecorder

	assert.Equal(t, uint32(10), Vertices(&r, s.Verts, mesh))
	assert.Equal(t, call{"vertex", []any{uint32(0), []resource.Handle{"mesh"}, []uint64{0}}}, r.calls[0])

	part, err := mesh.Range(40, 60)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), Instances(&r, s.Instances, part))
	assert.Equal(t, call{"vertex", []any{uint32(1), []resource.Handle{"mesh"}, []uint64{40}}}, r.calls[1])

	assert.Equal(t, uint32(100), Indices[uint16](&r, mesh))
	assert.Equal(t, call{"index", []any{"mesh", uint64(0), IndexUint16}}, r.calls[2])
	assert.Equal(t, uint32(50), Indices[uint32](&r, mesh))
	assert.Equal(t, IndexUint32, r.calls[3].args[2])
}

func TestPush(t *testing.T) {
	s := newScene()
	pl := graphicsPipeline()
	var r fakeRecorder

	err := Push(&r, pl, s.Push, &params{Scale: 2})
	assert.Error(t, err, "no stage uses the block yet")

	_, err = s.VS.Compile(shader.Options{})
	require.NoError(t, err)
	require.NoError(t, Push(&r, pl, s.Push, &params{Tint: [4]float32{1, 0, 0, 1}, Scale: 2}))
	require.Len(t, r.calls, 1)
	c := r.calls[0]
	assert.Equal(t, "push", c.op)
	assert.Equal(t, "layout", c.args[0])
	assert.Equal(t, shader.StageVertex, c.args[1])
	data := c.args[3].([]byte)
	require.Len(t, data, 32)
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, data[0:4])
	assert.Equal(t, []byte{0, 0, 0, 0x40}, data[16:20])
}

func TestPipelineAndSets(t *testing.T) {
	var r fakeRecorder
	Pipeline(&r, graphicsPipeline())
	assert.Equal(t, call{"pipeline", []any{BindGraphics, "pipe"}}, r.calls[0])

	compute := &pipeline.Pipeline{
		Program: &pipeline.Program{Modules: []*shader.Module{{Stage: spirv.ExecutionModelGLCompute}}},
		Layout:  "clayout",
	}
	r.calls = nil
	Sets(&r, compute,
		&DescriptorSet{Set: 0, Handle: "a"},
		&DescriptorSet{Set: 1, Handle: "b"},
		&DescriptorSet{Set: 3, Handle: "c"},
	)
	require.Len(t, r.calls, 2)
	assert.Equal(t, call{"sets", []any{BindCompute, "clayout", uint32(0), []resource.Handle{"a", "b"}}}, r.calls[0])
	assert.Equal(t, call{"sets", []any{BindCompute, "clayout", uint32(3), []resource.Handle{"c"}}}, r.calls[1])
}
