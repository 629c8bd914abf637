package shader

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gogpu/spvkit/spirv"
)

// Emitter is implemented by Context and by the stage contexts embedding
// it. Binding point accessors take an Emitter so they work with either.
type Emitter interface {
	context() *Context
}

// VertexContext is the receiver of vertex shader methods.
type VertexContext struct{ *Context }

// SetPosition writes the clip-space position.
func (c *VertexContext) SetPosition(p Vec4) {
	t := Vec4{}.describe()
	id := c.builtin(spirv.BuiltInPosition, spirv.StorageClassOutput, t)
	c.EmitVoid(spirv.OpStore, id, p.id)
}

func (c *VertexContext) VertexIndex() Int {
	return c.loadBuiltin(spirv.BuiltInVertexIndex, i32Type)
}

func (c *VertexContext) InstanceIndex() Int {
	return c.loadBuiltin(spirv.BuiltInInstanceIndex, i32Type)
}

// FragmentContext is the receiver of fragment shader methods.
type FragmentContext struct{ *Context }

// FragCoord is the window-relative position of the fragment.
func (c *FragmentContext) FragCoord() Vec4 {
	return Vec4{c.loadInput(spirv.BuiltInFragCoord, Vec4{}.describe())}
}

func (c *FragmentContext) FrontFacing() Bool {
	return Bool{c.loadInput(spirv.BuiltInFrontFacing, boolType)}
}

// SetFragDepth overrides the depth of the fragment.
func (c *FragmentContext) SetFragDepth(d Float) {
	id := c.builtin(spirv.BuiltInFragDepth, spirv.StorageClassOutput, f32Type)
	c.addMode(spirv.ExecutionModeDepthReplacing)
	c.EmitVoid(spirv.OpStore, id, d.id)
}

// Discard drops the fragment.
func (c *FragmentContext) Discard() { c.Kill() }

// ComputeContext is the receiver of compute shader methods.
type ComputeContext struct{ *Context }

func (c *ComputeContext) GlobalInvocationID() UVec3 {
	return UVec3{c.loadInput(spirv.BuiltInGlobalInvocationID, UVec3{}.describe())}
}

func (c *ComputeContext) LocalInvocationID() UVec3 {
	return UVec3{c.loadInput(spirv.BuiltInLocalInvocationID, UVec3{}.describe())}
}

func (c *ComputeContext) WorkgroupID() UVec3 {
	return UVec3{c.loadInput(spirv.BuiltInWorkgroupID, UVec3{}.describe())}
}

func (c *ComputeContext) LocalInvocationIndex() Uint {
	return Uint{c.loadInput(spirv.BuiltInLocalInvocationIndex, u32Type)}
}

// Barrier synchronizes the workgroup and its shared memory.
func (c *ComputeContext) Barrier() {
	wg := c.constU32(uint32(spirv.ScopeWorkgroup))
	sem := c.constU32(uint32(spirv.MemorySemanticsAcquireRelease | spirv.MemorySemanticsWorkgroupMemory))
	c.EmitVoid(spirv.OpControlBarrier, wg, wg, sem)
}

// Shared declares a workgroup-shared variable.
func Shared[T Wrapped](c *ComputeContext, name string) Var[T] {
	t := describe[T]()
	if t == nil {
		c.fail(fmt.Errorf("%w: Shared needs a sized type", ErrType))
		return Var[T]{c: c.Context, t: voidType, class: spirv.StorageClassWorkgroup}
	}
	return Var[T]{c: c.Context, ptr: c.globalVar(t, spirv.StorageClassWorkgroup, name), t: t, class: spirv.StorageClassWorkgroup}
}

// SharedArray declares a workgroup-shared array of n elements.
func SharedArray[T Wrapped](c *ComputeContext, name string, n uint32) Var[Array[T]] {
	elem := describe[T]()
	if elem == nil || n == 0 {
		c.fail(fmt.Errorf("%w: SharedArray needs a sized element and length", ErrType))
		return Var[Array[T]]{c: c.Context, t: voidType, class: spirv.StorageClassWorkgroup}
	}
	t := ArrayType{Elem: elem, Len: n}
	return Var[Array[T]]{c: c.Context, ptr: c.globalVar(t, spirv.StorageClassWorkgroup, name), t: t, class: spirv.StorageClassWorkgroup}
}

func (c *Context) loadInput(b spirv.BuiltIn, t Type) value {
	id := c.builtin(b, spirv.StorageClassInput, t)
	return c.emitT(spirv.OpLoad, t, id)
}

func (c *Context) loadBuiltin(b spirv.BuiltIn, t ScalarType) Int {
	return Int{c.loadInput(b, t)}
}

// Stage binds a shader method to its configuration. The method runs once
// per set of options; the module is cached.
type Stage struct {
	base  *Base
	model spirv.ExecutionModel
	run   func(*Context)
	local [3]uint32

	mu    sync.Mutex
	cache map[stageKey]*Module
}

type stageKey struct {
	version spirv.Version
	debug   bool
}

func newStage(b *Base, model spirv.ExecutionModel, run func(*Context)) *Stage {
	s := &Stage{base: b, model: model, run: run, cache: make(map[stageKey]*Module)}
	b.addStage(s)
	return s
}

// NewVertexShader binds fn as the vertex stage of b.
func NewVertexShader(b *Base, fn func(*VertexContext)) *Stage {
	return newStage(b, spirv.ExecutionModelVertex, func(c *Context) { fn(&VertexContext{c}) })
}

// NewFragmentShader binds fn as the fragment stage of b.
func NewFragmentShader(b *Base, fn func(*FragmentContext)) *Stage {
	return newStage(b, spirv.ExecutionModelFragment, func(c *Context) { fn(&FragmentContext{c}) })
}

// NewComputeShader binds fn as a compute stage with the given workgroup
// size. Zero dimensions count as 1.
func NewComputeShader(b *Base, fn func(*ComputeContext), x, y, z uint32) *Stage {
	s := newStage(b, spirv.ExecutionModelGLCompute, func(c *Context) { fn(&ComputeContext{c}) })
	s.local = [3]uint32{max(x, 1), max(y, 1), max(z, 1)}
	return s
}

// Model returns the execution model of the stage.
func (s *Stage) Model() spirv.ExecutionModel { return s.model }

// Flag returns the stage's VkShaderStageFlags bit.
func (s *Stage) Flag() StageFlags { return stageFlag(s.model) }

// WorkgroupSize returns the local size of a compute stage.
func (s *Stage) WorkgroupSize() [3]uint32 { return s.local }

// Compile runs the stage method and returns its module. Results are
// cached per version and debug setting.
func (s *Stage) Compile(opts Options) (*Module, error) {
	key := stageKey{opts.version(), opts.Debug}
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.cache[key]; ok {
		return m, nil
	}
	c := NewContext(s.model, opts)
	if s.model == spirv.ExecutionModelGLCompute {
		c.addMode(spirv.ExecutionModeLocalSize, s.local[0], s.local[1], s.local[2])
	}
	s.run(c)
	words, err := c.Finish()
	if err != nil {
		return nil, fmt.Errorf("shader: %s stage: %w", c.label, err)
	}
	m := &Module{
		Stage:        s.model,
		EntryPoint:   EntryPointName,
		Words:        words,
		Capabilities: c.Capabilities(),
	}
	s.cache[key] = m
	return m, nil
}

// Module is a compiled stage.
type Module struct {
	Stage        spirv.ExecutionModel
	EntryPoint   string
	Words        []uint32
	Capabilities []spirv.Capability
}

// Binary returns the module as little-endian bytes.
func (m *Module) Binary() []byte {
	out := make([]byte, 0, 4*len(m.Words))
	for _, w := range m.Words {
		out = binary.LittleEndian.AppendUint32(out, w)
	}
	return out
}

// Disassemble returns the text form of the module.
func (m *Module) Disassemble() (string, error) {
	return spirv.DisassembleWords(m.Words)
}
