package shader

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gogpu/spvkit/format"
	"github.com/gogpu/spvkit/spirv"
)

// BindingKind is the resource class of a binding point.
type BindingKind uint8

const (
	KindUniformBuffer BindingKind = iota + 1
	KindStorageBuffer
	KindPushConstant
	KindTexture
	KindSampler
	KindSampledTexture
	KindStorageImage
	KindVertexInput
	KindInstanceInput
	KindVarying
	KindOutput
)

var kindNames = map[BindingKind]string{
	KindUniformBuffer:  "uniform-buffer",
	KindStorageBuffer:  "storage-buffer",
	KindPushConstant:   "push-constant",
	KindTexture:        "texture",
	KindSampler:        "sampler",
	KindSampledTexture: "sampled-texture",
	KindStorageImage:   "storage-image",
	KindVertexInput:    "vertex-input",
	KindInstanceInput:  "instance-input",
	KindVarying:        "varying",
	KindOutput:         "output",
}

func (k BindingKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("BindingKind(%d)", uint8(k))
}

// Descriptor reports whether the kind occupies a descriptor set slot.
func (k BindingKind) Descriptor() bool {
	return k >= KindUniformBuffer && k <= KindStorageImage && k != KindPushConstant
}

// StageFlags mirror VkShaderStageFlags.
type StageFlags uint32

const (
	StageVertex   StageFlags = 0x1
	StageFragment StageFlags = 0x10
	StageCompute  StageFlags = 0x20
)

func stageFlag(m spirv.ExecutionModel) StageFlags {
	switch m {
	case spirv.ExecutionModelVertex:
		return StageVertex
	case spirv.ExecutionModelFragment:
		return StageFragment
	case spirv.ExecutionModelGLCompute:
		return StageCompute
	}
	return 0
}

// Attribute is one vertex attribute of a vertex or instance input.
type Attribute struct {
	Name     string
	Location uint32
	Offset   uint32
	Format   format.Info
}

// BindingInfo is a snapshot of a binding point, as consumed by the
// pipeline layer.
type BindingInfo struct {
	Name     string
	Kind     BindingKind
	Set      uint32
	Binding  uint32
	Location uint32
	// Count is the descriptor count; 1 for non-array forms.
	Count  uint32
	Stages StageFlags
	// Size is the byte size of push constant blocks.
	Size   uint32
	Format format.Info
	// Attributes and Stride describe vertex and instance inputs; Binding
	// is then the vertex buffer binding.
	Attributes []Attribute
	Stride     uint32
}

type options struct {
	set, binding, location *uint32
	count                  uint32
	decorations            []spirv.Decoration
	dim                    spirv.Dim
	arrayed, depth, ms     bool
}

// Option configures a binding point.
type Option func(*options)

// Set places a descriptor in set n instead of the default set 0.
func Set(n uint32) Option { return func(o *options) { o.set = &n } }

// Binding pins a descriptor to binding n within its set.
func Binding(n uint32) Option { return func(o *options) { o.binding = &n } }

// Location pins a vertex attribute, varying or output to location n.
func Location(n uint32) Option { return func(o *options) { o.location = &n } }

// Flat disables interpolation of a varying.
func Flat() Option { return decorate(spirv.DecorationFlat) }

// NoPerspective interpolates a varying linearly in screen space.
func NoPerspective() Option { return decorate(spirv.DecorationNoPerspective) }

// Centroid samples a varying at the centroid of covered samples.
func Centroid() Option { return decorate(spirv.DecorationCentroid) }

func decorate(d spirv.Decoration) Option {
	return func(o *options) { o.decorations = append(o.decorations, d) }
}

// Dim sets the image dimensionality; the default is 2D.
func Dim(d spirv.Dim) Option { return func(o *options) { o.dim = d } }

// Count makes an array form hold n descriptors.
func Count(n uint32) Option { return func(o *options) { o.count = max(n, 1) } }

// Arrayed declares an array image, such as a 2D array texture.
func Arrayed() Option { return func(o *options) { o.arrayed = true } }

// Depth declares a depth image for comparison sampling.
func Depth() Option { return func(o *options) { o.depth = true } }

// Multisampled declares a multisampled image.
func Multisampled() Option { return func(o *options) { o.ms = true } }

func buildOptions(opts []Option) options {
	o := options{dim: spirv.Dim2D, count: 1}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Base is embedded by every shader-configuration struct. It owns the
// binding points and stages declared on the struct.
//
//	type Blit struct {
//		shader.Base
//		Src  *shader.SampledTexture[format.RGBA8Unorm]
//		Dst  *shader.Output[format.BGRA8Unorm]
//		UV   *shader.Varying[shader.Vec2]
//		VS, FS *shader.Stage
//	}
type Base struct {
	ID uuid.UUID

	process, device any

	mu        sync.Mutex
	points    []*point
	stages    []*Stage
	bindings  map[uint32]uint32 // next binding per set
	locations map[BindingKind]uint32
	vertexBuf uint32
}

// Init stores the process and device keys the configuration belongs to
// and assigns it a fresh ID. Call it before declaring binding points.
func (b *Base) Init(process, device any) {
	b.ID = uuid.New()
	b.process, b.device = process, device
}

// Process returns the process key given to Init.
func (b *Base) Process() any { return b.process }

// Device returns the device key given to Init.
func (b *Base) Device() any { return b.device }

// Bindings returns snapshots of every binding point in declaration order.
func (b *Base) Bindings() []BindingInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]BindingInfo, len(b.points))
	for i, p := range b.points {
		out[i] = p.snapshot()
	}
	return out
}

// Stages returns the stages declared on the configuration.
func (b *Base) Stages() []*Stage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Stage(nil), b.stages...)
}

func (b *Base) addStage(s *Stage) {
	b.mu.Lock()
	b.stages = append(b.stages, s)
	b.mu.Unlock()
}

// register assigns set/binding or location defaults and records p.
func (b *Base) register(p *point) {
	o := p.opts
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bindings == nil {
		b.bindings = make(map[uint32]uint32)
		b.locations = make(map[BindingKind]uint32)
	}
	switch {
	case p.info.Kind.Descriptor():
		if o.set != nil {
			p.info.Set = *o.set
		}
		next := b.bindings[p.info.Set]
		if o.binding != nil {
			p.info.Binding = *o.binding
		} else {
			p.info.Binding = next
		}
		b.bindings[p.info.Set] = max(next, p.info.Binding+1)
	case p.info.Kind == KindVertexInput || p.info.Kind == KindInstanceInput:
		p.info.Binding = b.vertexBuf
		if o.binding != nil {
			p.info.Binding = *o.binding
		}
		b.vertexBuf = max(b.vertexBuf, p.info.Binding+1)
		kind := KindVertexInput
		p.info.Location = b.locations[kind]
		if o.location != nil {
			p.info.Location = *o.location
		}
		for i := range p.info.Attributes {
			p.info.Attributes[i].Location = p.info.Location + uint32(i)
		}
		b.locations[kind] = max(b.locations[kind], p.info.Location+uint32(len(p.info.Attributes)))
	case p.info.Kind == KindVarying || p.info.Kind == KindOutput:
		p.info.Location = b.locations[p.info.Kind]
		if o.location != nil {
			p.info.Location = *o.location
		}
		b.locations[p.info.Kind] = max(b.locations[p.info.Kind], p.info.Location+1)
	}
	p.info.Count = o.count
	p.base = b
	b.points = append(b.points, p)
}

// point is the state shared by every binding point type.
type point struct {
	base *Base
	info BindingInfo
	opts options

	assoc any
	// vars maps each open Context to the variable ids declared for it.
	vars map[*Context][]uint32
}

func newPoint(name string, kind BindingKind, opts []Option) *point {
	return &point{info: BindingInfo{Name: name, Kind: kind}, opts: buildOptions(opts), vars: make(map[*Context][]uint32)}
}

func (p *point) snapshot() BindingInfo {
	info := p.info
	info.Attributes = append([]Attribute(nil), p.info.Attributes...)
	return info
}

// Info returns a snapshot of the binding point.
func (p *point) Info() BindingInfo {
	p.base.mu.Lock()
	defer p.base.mu.Unlock()
	return p.snapshot()
}

// Associate records the resource currently bound to the point. It is not
// safe for concurrent use with other calls on the same point.
func (p *point) Associate(r any) { p.assoc = r }

// Associated returns the resource recorded by Associate.
func (p *point) Associated() any { return p.assoc }

// variables returns the ids declared for c, declaring them with declare on
// first use in c. The point is marked as used by c's stage.
// Stages of one configuration may compile concurrently, so the map is
// guarded by the Base mutex; declare itself only touches c.
func (p *point) variables(c *Context, declare func() []uint32) []uint32 {
	mu := &p.base.mu
	mu.Lock()
	ids, ok := p.vars[c]
	mu.Unlock()
	if ok {
		return ids
	}
	ids = declare()
	mu.Lock()
	p.vars[c] = ids
	p.info.Stages |= stageFlag(c.model)
	mu.Unlock()
	c.onFinish(func() {
		mu.Lock()
		delete(p.vars, c)
		mu.Unlock()
	})
	return ids
}

func (p *point) variable(c *Context, declare func() uint32) uint32 {
	return p.variables(c, func() []uint32 { return []uint32{declare()} })[0]
}

// descriptor declares a resource variable with its set and binding.
func (p *point) descriptor(c *Context, t Type, class spirv.StorageClass) uint32 {
	return p.variable(c, func() uint32 {
		if p.info.Count > 1 {
			t = ArrayType{Elem: t, Len: p.info.Count}
		}
		id := c.globalVar(t, class, p.info.Name)
		c.b.AddDecorate(id, spirv.DecorationDescriptorSet, p.info.Set)
		c.b.AddDecorate(id, spirv.DecorationBinding, p.info.Binding)
		return id
	})
}

// elementPtr returns a pointer to descriptor i of an array form, or the
// variable itself for a single descriptor.
func (p *point) elementPtr(c *Context, t Type, class spirv.StorageClass, index uint32, dynamic ...spirv.Capability) uint32 {
	id := p.descriptor(c, t, class)
	if p.info.Count <= 1 {
		return id
	}
	for _, capability := range dynamic {
		c.require(capability)
	}
	return c.Emit(spirv.OpAccessChain, c.DeclareType(PointerType{Class: class, Elem: t}), id, index)
}

// checkIndex validates a constant array index.
func (p *point) checkIndex(c *Context, i int) bool {
	if i < 0 || uint32(i) >= p.info.Count {
		c.fail(fmt.Errorf("%w: index %d out of range for %s[%d]", ErrType, i, p.info.Name, p.info.Count))
		return false
	}
	return true
}

func errForeignIndex(name string) error {
	return fmt.Errorf("%w: index into %s from another context", ErrType, name)
}
