package spirv

import (
	"encoding/binary"
	"testing"
)

func TestModuleBuilder_MinimalModule(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)

	builder.AddCapability(CapabilityShader)
	builder.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)

	data := builder.Build()

	// Verify header (5 words = 20 bytes)
	if len(data) < 20 {
		t.Fatalf("Module too small: got %d bytes, want at least 20", len(data))
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != MagicNumber {
		t.Errorf("Invalid magic number: got 0x%08X, want 0x%08X", magic, MagicNumber)
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	expectedVersion := uint32(1<<16 | 3<<8) // Version 1.3
	if version != expectedVersion {
		t.Errorf("Invalid version: got 0x%08X, want 0x%08X", version, expectedVersion)
	}

	generator := binary.LittleEndian.Uint32(data[8:12])
	if generator != GeneratorID {
		t.Errorf("Invalid generator: got 0x%08X, want 0x%08X", generator, GeneratorID)
	}

	bound := binary.LittleEndian.Uint32(data[12:16])
	if bound == 0 {
		t.Error("Bound should be > 0")
	}

	// Schema is reserved and must be 0
	schema := binary.LittleEndian.Uint32(data[16:20])
	if schema != 0 {
		t.Errorf("Schema should be 0, got %d", schema)
	}
}

func TestModuleBuilder_WithTypes(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)

	builder.AddCapability(CapabilityShader)
	builder.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)

	voidType := builder.AddTypeVoid()
	floatType := builder.AddTypeFloat(32)
	intType := builder.AddTypeInt(32, true)
	vec4Type := builder.AddTypeVector(floatType, 4)

	m, err := Decode(builder.Build())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	seen := map[uint32]bool{}
	for _, typeID := range []uint32{voidType, floatType, intType, vec4Type} {
		if seen[typeID] {
			t.Errorf("Type ID %d allocated twice", typeID)
		}
		seen[typeID] = true
	}

	vectors := m.Find(OpTypeVector)
	if len(vectors) != 1 {
		t.Fatalf("Expected 1 OpTypeVector, got %d", len(vectors))
	}
	if vectors[0].Words[1] != floatType || vectors[0].Words[2] != 4 {
		t.Errorf("OpTypeVector operands = %v, want [%d %d %d]", vectors[0].Words, vec4Type, floatType, 4)
	}
	if m.Header.Bound != vec4Type+1 {
		t.Errorf("Bound = %d, want %d", m.Header.Bound, vec4Type+1)
	}
}

func TestModuleBuilder_SectionOrder(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)

	// Emit sections out of order; Build must still order them.
	voidType := builder.AddTypeVoid()
	funcType := builder.AddTypeFunction(voidType)
	fn := builder.AllocID()
	label := builder.AllocID()
	builder.AddFunctionInstructions(
		NewInstruction(OpFunction, voidType, fn, uint32(FunctionControlNone), funcType),
		NewInstruction(OpLabel, label),
		NewInstruction(OpReturn),
		NewInstruction(OpFunctionEnd),
	)
	builder.AddName(fn, "main")
	builder.AddEntryPoint(ExecutionModelFragment, fn, "main", nil)
	builder.AddExecutionMode(fn, ExecutionModeOriginUpperLeft)
	builder.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)
	builder.AddCapability(CapabilityShader)

	m, err := Decode(builder.Build())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := []OpCode{
		OpCapability, OpMemoryModel, OpEntryPoint, OpExecutionMode, OpName,
		OpTypeVoid, OpTypeFunction, OpFunction, OpLabel, OpReturn, OpFunctionEnd,
	}
	if len(m.Instructions) != len(want) {
		t.Fatalf("Got %d instructions, want %d", len(m.Instructions), len(want))
	}
	for i, op := range want {
		if m.Instructions[i].Opcode != op {
			t.Errorf("Instruction %d = %s, want %s", i, m.Instructions[i].Opcode, op)
		}
	}
}

func TestModuleBuilder_CapabilityDedup(t *testing.T) {
	builder := NewModuleBuilder(Version1_0)
	builder.AddCapability(CapabilityShader)
	builder.AddCapability(CapabilityImageQuery)
	builder.AddCapability(CapabilityShader)

	caps := builder.Capabilities()
	if len(caps) != 2 {
		t.Fatalf("Capabilities = %v, want 2 entries", caps)
	}
	if caps[0] != CapabilityShader || caps[1] != CapabilityImageQuery {
		t.Errorf("Capabilities = %v", caps)
	}
}

func TestInstructionBuilder_String(t *testing.T) {
	builder := NewInstructionBuilder()
	builder.AddString("hello")

	inst := builder.Build(OpName)
	encoded := inst.Encode()

	opcodeWord := encoded[0]
	wordCount := opcodeWord >> 16
	opcode := OpCode(opcodeWord & 0xFFFF)

	if opcode != OpName {
		t.Errorf("Wrong opcode: got %d, want %d", opcode, OpName)
	}

	// "hello\0" is 6 bytes, padded to 8: two words plus the opcode word.
	if wordCount != 3 {
		t.Errorf("Word count = %d, want 3", wordCount)
	}

	got, n := DecodeString(inst.Words)
	if got != "hello" || n != 2 {
		t.Errorf("DecodeString = %q, %d; want \"hello\", 2", got, n)
	}
}

func TestEncodeString_ExactMultipleOfFour(t *testing.T) {
	// A 4-byte string still needs a full word for its terminator.
	words := EncodeString("main")
	if len(words) != 2 {
		t.Fatalf("len = %d, want 2", len(words))
	}
	if words[1] != 0 {
		t.Errorf("terminator word = 0x%08X, want 0", words[1])
	}
}

func TestModuleBuilder_Float32Constant(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)

	floatType := builder.AddTypeFloat(32)
	constID := builder.AddConstantFloat32(floatType, 3.14159)

	m, err := Decode(builder.Build())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	consts := m.Find(OpConstant)
	if len(consts) != 1 {
		t.Fatalf("Expected 1 OpConstant, got %d", len(consts))
	}
	if consts[0].Words[1] != constID {
		t.Errorf("Constant result = %d, want %d", consts[0].Words[1], constID)
	}
	if consts[0].Words[2] != 0x40490FD0 {
		t.Errorf("Constant bits = 0x%08X, want 0x40490FD0", consts[0].Words[2])
	}
}

func TestModuleBuilder_IDAllocation(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)

	id1 := builder.AllocID()
	id2 := builder.AllocID()
	id3 := builder.AllocID()

	if id1 >= id2 || id2 >= id3 {
		t.Error("IDs should be strictly increasing")
	}

	if id1 == 0 || id2 == 0 || id3 == 0 {
		t.Error("IDs should never be 0")
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{"1.0", Version1_0, false},
		{"1.3", Version1_3, false},
		{"1.6", Version1_6, false},
		{"2.0", Version{}, true},
		{"one", Version{}, true},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVersion(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVersion(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
