package shader

import (
	"encoding/binary"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvkit/diag"
	"github.com/gogpu/spvkit/format"
	"github.com/gogpu/spvkit/spirv"
)

func decode(t *testing.T, m *Module) *spirv.Module {
	t.Helper()
	d, err := spirv.DecodeWords(m.Words)
	require.NoError(t, err)
	return d
}

func TestCompileCaches(t *testing.T) {
	b := newBase()
	runs := 0
	vs := NewVertexShader(b, func(c *VertexContext) {
		runs++
		c.SetPosition(c.ConstVec4(0, 0, 0, 1))
	})

	m1, err := vs.Compile(Options{})
	require.NoError(t, err)
	m2, err := vs.Compile(Options{Version: spirv.Version1_3})
	require.NoError(t, err)
	assert.Same(t, m1, m2, "zero version means 1.3")
	assert.Equal(t, 1, runs)

	m3, err := vs.Compile(Options{Debug: true})
	require.NoError(t, err)
	assert.NotSame(t, m1, m3)
	m4, err := vs.Compile(Options{Version: spirv.Version1_5})
	require.NoError(t, err)
	assert.NotSame(t, m1, m4)
	assert.Equal(t, 3, runs)

	assert.Equal(t, spirv.ExecutionModelVertex, m1.Stage)
	assert.Equal(t, EntryPointName, m1.EntryPoint)
	assert.Contains(t, m1.Capabilities, spirv.CapabilityShader)
	assert.Equal(t, []*Stage{vs}, b.Stages())
	assert.Equal(t, StageVertex, vs.Flag())
}

func TestCompileError(t *testing.T) {
	b := newBase()
	vs := NewVertexShader(b, func(c *VertexContext) {
		c.If(c.Bool(true))
	})
	_, err := vs.Compile(Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnbalancedScopes)
	assert.Contains(t, err.Error(), "shader: vertex stage:")
}

func TestComputeLocalSize(t *testing.T) {
	b := newBase()
	cs := NewComputeShader(b, func(c *ComputeContext) {
		c.GlobalInvocationID()
	}, 64, 0, 1)
	assert.Equal(t, [3]uint32{64, 1, 1}, cs.WorkgroupSize())

	m, err := cs.Compile(Options{})
	require.NoError(t, err)
	d := decode(t, m)
	var local []uint32
	for _, inst := range d.Find(spirv.OpExecutionMode) {
		if spirv.ExecutionMode(inst.Words[1]) == spirv.ExecutionModeLocalSize {
			local = inst.Words[2:]
		}
	}
	assert.Equal(t, []uint32{64, 1, 1}, local)

	ep := d.Find(spirv.OpEntryPoint)
	require.Len(t, ep, 1)
	assert.Equal(t, uint32(spirv.ExecutionModelGLCompute), ep[0].Words[0])
}

func TestConcurrentStages(t *testing.T) {
	b := newBase()
	u := NewUniformBuffer[packed](b, "params")
	radius := FieldOf[packed, Float](func(p *packed) any { return &p.Radius })
	vs := NewVertexShader(b, func(c *VertexContext) {
		r := Member(Access(c, u), radius).Load()
		c.SetPosition(Vec4f(r, r, r, c.Float(1)))
	})
	fs := NewFragmentShader(b, func(c *FragmentContext) {
		Member(Access(c, u), radius).Load()
	})

	var wg sync.WaitGroup
	for _, s := range []*Stage{vs, fs} {
		for _, v := range []spirv.Version{spirv.Version1_3, spirv.Version1_5} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Compile(Options{Version: v})
				assert.NoError(t, err)
			}()
		}
	}
	wg.Wait()
	assert.Equal(t, StageVertex|StageFragment, u.Info().Stages)
}

func TestBinary(t *testing.T) {
	m := &Module{Words: []uint32{spirv.MagicNumber, 0x00010300}}
	bin := m.Binary()
	require.Len(t, bin, 8)
	assert.Equal(t, uint32(spirv.MagicNumber), binary.LittleEndian.Uint32(bin))
	assert.Equal(t, byte(0x03), bin[5])
}

func TestDisassemble(t *testing.T) {
	b := newBase()
	fs := NewFragmentShader(b, func(c *FragmentContext) {
		c.Discard()
	})
	m, err := fs.Compile(Options{})
	require.NoError(t, err)
	text, err := m.Disassemble()
	require.NoError(t, err)
	assert.Contains(t, text, "OpEntryPoint")
	assert.Contains(t, text, "OpKill")
}

func builtinsOf(d *spirv.Module) map[spirv.BuiltIn]bool {
	out := map[spirv.BuiltIn]bool{}
	for _, inst := range d.Find(spirv.OpDecorate) {
		if spirv.Decoration(inst.Words[1]) == spirv.DecorationBuiltIn {
			out[spirv.BuiltIn(inst.Words[2])] = true
		}
	}
	return out
}

func TestVertexBuiltins(t *testing.T) {
	b := newBase()
	vs := NewVertexShader(b, func(c *VertexContext) {
		i := c.VertexIndex().Add(c.InstanceIndex())
		f := Convert[F32](i)
		c.SetPosition(Vec4f(f, f, c.Float(0), c.Float(1)))
	})
	m, err := vs.Compile(Options{})
	require.NoError(t, err)
	got := builtinsOf(decode(t, m))
	assert.True(t, got[spirv.BuiltInPosition])
	assert.True(t, got[spirv.BuiltInVertexIndex])
	assert.True(t, got[spirv.BuiltInInstanceIndex])
}

func TestFragmentBuiltins(t *testing.T) {
	b := newBase()
	fs := NewFragmentShader(b, func(c *FragmentContext) {
		c.If(c.FrontFacing())
		c.Discard()
		c.Fi()
		c.SetFragDepth(c.FragCoord().Z())
	})
	m, err := fs.Compile(Options{})
	require.NoError(t, err)
	d := decode(t, m)
	got := builtinsOf(d)
	assert.True(t, got[spirv.BuiltInFrontFacing])
	assert.True(t, got[spirv.BuiltInFragCoord])
	assert.True(t, got[spirv.BuiltInFragDepth])
	assert.Equal(t, 1, d.Count(spirv.OpKill))

	var modes []spirv.ExecutionMode
	for _, inst := range d.Find(spirv.OpExecutionMode) {
		modes = append(modes, spirv.ExecutionMode(inst.Words[1]))
	}
	assert.Contains(t, modes, spirv.ExecutionModeOriginUpperLeft)
	assert.Contains(t, modes, spirv.ExecutionModeDepthReplacing)
}

func TestComputeBuiltinsAndBarrier(t *testing.T) {
	b := newBase()
	cs := NewComputeShader(b, func(c *ComputeContext) {
		tile := SharedArray[Float](c, "tile", 64)
		idx := c.LocalInvocationIndex()
		ElemAt(tile, 0).Store(c.Float(0))
		c.Barrier()
		c.LocalInvocationID()
		c.WorkgroupID()
		c.GlobalInvocationID()
		_ = idx
	}, 64, 1, 1)
	m, err := cs.Compile(Options{})
	require.NoError(t, err)
	d := decode(t, m)
	got := builtinsOf(d)
	for _, bi := range []spirv.BuiltIn{
		spirv.BuiltInLocalInvocationIndex, spirv.BuiltInLocalInvocationID,
		spirv.BuiltInWorkgroupID, spirv.BuiltInGlobalInvocationID,
	} {
		assert.True(t, got[bi], "builtin %d", bi)
	}
	assert.Equal(t, 1, d.Count(spirv.OpControlBarrier))

	var workgroup int
	for _, v := range d.Find(spirv.OpVariable) {
		if spirv.StorageClass(v.Words[2]) == spirv.StorageClassWorkgroup {
			workgroup++
		}
	}
	assert.Equal(t, 1, workgroup)
}

func TestSharedNeedsSize(t *testing.T) {
	c := &ComputeContext{NewContext(spirv.ExecutionModelGLCompute, Options{})}
	SharedArray[Float](c, "empty", 0)
	assert.ErrorIs(t, c.Err(), ErrType)
}

func TestStageIRDump(t *testing.T) {
	SetIRDump(true)
	t.Cleanup(func() { SetIRDump(false) })

	b := newBase()
	cs := NewComputeShader(b, func(c *ComputeContext) {
		c.DumpIR()
	}, 1, 1, 1)
	var col diag.Collector
	_, err := cs.Compile(Options{Reporter: &col})
	require.NoError(t, err)
	assert.Contains(t, col.Dumps["compute"], "LocalSize")
}

// A runtime comparison is never folded on the host: both arms and the
// merge are emitted.
func TestSelectionScenario(t *testing.T) {
	b := newBase()
	fs := NewFragmentShader(b, func(c *FragmentContext) {
		x := Local[Int](c, "x")
		a := c.FragCoord().X()
		c.If(a.Lt(c.Float(-1)))
		x.Store(c.Int(1))
		c.Else()
		x.Store(c.Int(2))
		c.Fi()
	})
	m, err := fs.Compile(Options{})
	require.NoError(t, err)
	d := decode(t, m)
	assert.Equal(t, 1, d.Count(spirv.OpSelectionMerge))
	assert.Equal(t, 1, d.Count(spirv.OpBranchConditional))

	var stored []uint32
	for _, st := range d.Find(spirv.OpStore) {
		stored = append(stored, st.Words[1])
	}
	consts := map[uint32]uint32{}
	for _, k := range d.Find(spirv.OpConstant) {
		id, _ := k.Result()
		consts[id] = k.Words[2]
	}
	require.Len(t, stored, 2)
	assert.Equal(t, uint32(1), consts[stored[0]])
	assert.Equal(t, uint32(2), consts[stored[1]])
}

// A counted loop is one structured loop, not unrolled, and leaves the scope
// depth where it found it.
func TestLoopScenario(t *testing.T) {
	b := newBase()
	depths := [2]int{}
	cs := NewComputeShader(b, func(c *ComputeContext) {
		sum := Local[Int](c, "sum", c.Int(0))
		i := Local[Int](c, "i")
		depths[0] = c.Depth()
		c.For(i, c.Int(0), c.Int(5))
		sum.Store(sum.Load().Add(i.Load()))
		c.Rof()
		depths[1] = c.Depth()
	}, 1, 1, 1)
	m, err := cs.Compile(Options{})
	require.NoError(t, err)
	assert.Equal(t, depths[0], depths[1])

	d := decode(t, m)
	assert.Equal(t, 1, d.Count(spirv.OpLoopMerge))
	assert.Equal(t, 1, d.Count(spirv.OpSLessThan))
	assert.Equal(t, 1, d.Count(spirv.OpBranchConditional))

	merge := d.Find(spirv.OpLoopMerge)[0].Words[0]
	found := false
	for _, l := range d.Find(spirv.OpLabel) {
		found = found || l.Words[0] == merge
	}
	assert.True(t, found, "merge block is emitted")
}

// Each stage owns its matrix type; requests within one stage collapse.
func TestMatrixTypeScenario(t *testing.T) {
	b := newBase()
	var vsIDs, fsIDs [2]uint32
	vs := NewVertexShader(b, func(c *VertexContext) {
		vsIDs[0] = c.DeclareType(Mat4{}.describe())
		vsIDs[1] = c.DeclareType(TypeOf[Mat4]())
	})
	fs := NewFragmentShader(b, func(c *FragmentContext) {
		fsIDs[0] = c.DeclareType(TypeOf[Mat4]())
		fsIDs[1] = c.DeclareType(Mat4{}.describe())
	})
	vm, err := vs.Compile(Options{})
	require.NoError(t, err)
	fm, err := fs.Compile(Options{})
	require.NoError(t, err)

	assert.Equal(t, vsIDs[0], vsIDs[1])
	assert.Equal(t, fsIDs[0], fsIDs[1])
	assert.Equal(t, 1, decode(t, vm).Count(spirv.OpTypeMatrix))
	assert.Equal(t, 1, decode(t, fm).Count(spirv.OpTypeMatrix))
	assert.NotEqual(t, vm.Words, fm.Words)
}

// An array binding accepts both a constant and a runtime index; only the
// runtime index needs the dynamic indexing capability.
func TestArrayBindingScenario(t *testing.T) {
	b := newBase()
	texs := NewSampledTextureArray[format.RGBA8Unorm](b, "textures", 4)
	out := NewOutput[format.RGBA8Unorm](b, "color")
	constOnly := NewFragmentShader(b, func(c *FragmentContext) {
		Write(c, out, Sample[F32](c, texs.At(c, 0), Vec2f(c.Float(0), c.Float(0))))
	})
	m, err := constOnly.Compile(Options{})
	require.NoError(t, err)
	assert.NotContains(t, m.Capabilities, spirv.CapabilitySampledImageArrayDynamicIndexing)
	assert.Equal(t, 1, decode(t, m).Count(spirv.OpAccessChain))

	b2 := newBase()
	texs2 := NewSampledTextureArray[format.RGBA8Unorm](b2, "textures", 4)
	out2 := NewOutput[format.RGBA8Unorm](b2, "color")
	dynamic := NewFragmentShader(b2, func(c *FragmentContext) {
		i := Local[Int](c, "i", c.Int(3))
		Write(c, out2, Sample[F32](c, texs2.Index(c, i.Load()), Vec2f(c.Float(0), c.Float(0))))
	})
	m, err = dynamic.Compile(Options{})
	require.NoError(t, err)
	assert.Contains(t, m.Capabilities, spirv.CapabilitySampledImageArrayDynamicIndexing)
	assert.Equal(t, 1, decode(t, m).Count(spirv.OpAccessChain))
}
