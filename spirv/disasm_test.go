package spirv

import (
	"errors"
	"strings"
	"testing"
)

func buildFragmentModule() []byte {
	builder := NewModuleBuilder(Version1_3)
	builder.AddCapability(CapabilityShader)
	glsl := builder.AddExtInstImport(GLSLImportName)
	builder.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)

	voidType := builder.AddTypeVoid()
	funcType := builder.AddTypeFunction(voidType)
	floatType := builder.AddTypeFloat(32)
	vec4Type := builder.AddTypeVector(floatType, 4)
	ptrOut := builder.AddTypePointer(StorageClassOutput, vec4Type)
	half := builder.AddConstantFloat32(floatType, 0.5)
	color := builder.AddVariable(ptrOut, StorageClassOutput)
	builder.AddDecorate(color, DecorationLocation, 0)

	fn := builder.AllocID()
	label := builder.AllocID()
	sqrt := builder.AllocID()
	value := builder.AllocID()
	builder.AddFunctionInstructions(
		NewInstruction(OpFunction, voidType, fn, uint32(FunctionControlNone), funcType),
		NewInstruction(OpLabel, label),
		NewInstruction(OpExtInst, floatType, sqrt, glsl, uint32(GLSLSqrt), half),
		NewInstruction(OpCompositeConstruct, vec4Type, value, sqrt, sqrt, sqrt, sqrt),
		NewInstruction(OpStore, color, value),
		NewInstruction(OpReturn),
		NewInstruction(OpFunctionEnd),
	)
	builder.AddEntryPoint(ExecutionModelFragment, fn, "main", []uint32{color})
	builder.AddExecutionMode(fn, ExecutionModeOriginUpperLeft)
	return builder.Build()
}

func TestDisassemble(t *testing.T) {
	var sb strings.Builder
	if err := Disassemble(&sb, buildFragmentModule()); err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	text := sb.String()

	for _, want := range []string{
		"; Version: 1.3",
		"OpCapability Shader",
		`OpExtInstImport "GLSL.std.450"`,
		"OpMemoryModel Logical GLSL450",
		`OpEntryPoint Fragment %`,
		"OpExecutionMode",
		"OriginUpperLeft",
		"OpDecorate",
		"Location 0",
		"OpTypePointer Output",
		"OpConstant",
		"0.5",
		"Sqrt",
		"OpCompositeConstruct",
		"OpStore",
		"OpReturn",
		"OpFunctionEnd",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("disassembly missing %q\n%s", want, text)
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); !errors.Is(err, ErrTruncated) {
		t.Errorf("odd length: got %v, want ErrTruncated", err)
	}

	bad := make([]byte, 20)
	if _, err := Decode(bad); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("zero magic: got %v, want ErrInvalidMagic", err)
	}

	// Header plus the first word of the two-word OpCapability.
	data := buildFragmentModule()
	if _, err := Decode(data[:24]); !errors.Is(err, ErrTruncated) {
		t.Errorf("cut module: got %v, want ErrTruncated", err)
	}
}

func TestInstruction_Result(t *testing.T) {
	m, err := Decode(buildFragmentModule())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	results := map[uint32]OpCode{}
	for _, inst := range m.Instructions {
		if res, ok := inst.Result(); ok {
			if prev, dup := results[res]; dup {
				t.Errorf("result %d defined by %s and %s", res, prev, inst.Opcode)
			}
			results[res] = inst.Opcode
		}
	}
	if len(results) == 0 {
		t.Fatal("no results found")
	}
	for res := range results {
		if res >= m.Header.Bound {
			t.Errorf("result %d outside bound %d", res, m.Header.Bound)
		}
	}
}
