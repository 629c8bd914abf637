package spirv

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Disassemble writes a textual listing of a SPIR-V binary to w.
func Disassemble(w io.Writer, data []byte) error {
	m, err := Decode(data)
	if err != nil {
		return err
	}
	return m.Disassemble(w)
}

// DisassembleWords returns the listing of a word stream as a string.
func DisassembleWords(words []uint32) (string, error) {
	m, err := DecodeWords(words)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := m.Disassemble(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Disassemble writes the listing of a decoded module to w.
func (m *Module) Disassemble(w io.Writer) error {
	d := &disassembler{
		floatTypes: make(map[uint32]uint32),
		extSets:    make(map[uint32]string),
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "; SPIR-V\n")
	fmt.Fprintf(&sb, "; Version: %s\n", m.Header.Version)
	fmt.Fprintf(&sb, "; Generator: 0x%08X\n", m.Header.Generator)
	fmt.Fprintf(&sb, "; Bound: %d\n", m.Header.Bound)
	fmt.Fprintf(&sb, "; Schema: %d\n", m.Header.Schema)
	for _, inst := range m.Instructions {
		d.line(&sb, inst)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

type disassembler struct {
	// float type id -> width, used to print float constants
	floatTypes map[uint32]uint32
	extSets    map[uint32]string
}

func id(n uint32) string {
	return fmt.Sprintf("%%%d", n)
}

func ids(ops []uint32) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = id(op)
	}
	return strings.Join(parts, " ")
}

func nums(ops []uint32) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = itoa(op)
	}
	return strings.Join(parts, " ")
}

func join(parts ...string) string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

//nolint:gocyclo,cyclop,funlen // one case per opcode family
func (d *disassembler) line(sb *strings.Builder, inst Instruction) {
	name := inst.Opcode.String()
	ops := inst.Words
	const indent = "               "

	switch inst.Opcode {
	case OpCapability:
		fmt.Fprintf(sb, "%s%s %s\n", indent, name, Capability(ops[0]))

	case OpExtension:
		str, _ := DecodeString(ops)
		fmt.Fprintf(sb, "%s%s \"%s\"\n", indent, name, str)

	case OpExtInstImport:
		str, _ := DecodeString(ops[1:])
		d.extSets[ops[0]] = str
		fmt.Fprintf(sb, "%s = %s \"%s\"\n", lhs(ops[0]), name, str)

	case OpMemoryModel:
		fmt.Fprintf(sb, "%s%s %s %s\n", indent, name,
			lookup(addressingNames, AddressingModel(ops[0])), lookup(memoryModelNames, MemoryModel(ops[1])))

	case OpEntryPoint:
		str, n := DecodeString(ops[2:])
		fmt.Fprintf(sb, "%s%s\n", indent, join(name, ExecutionModel(ops[0]).String(), id(ops[1]),
			"\""+str+"\"", ids(ops[2+n:])))

	case OpExecutionMode:
		fmt.Fprintf(sb, "%s%s\n", indent, join(name, id(ops[0]), ExecutionMode(ops[1]).String(), nums(ops[2:])))

	case OpName:
		str, _ := DecodeString(ops[1:])
		fmt.Fprintf(sb, "%s%s %s \"%s\"\n", indent, name, id(ops[0]), str)

	case OpMemberName:
		str, _ := DecodeString(ops[2:])
		fmt.Fprintf(sb, "%s%s %s %d \"%s\"\n", indent, name, id(ops[0]), ops[1], str)

	case OpDecorate:
		dec := Decoration(ops[1])
		args := nums(ops[2:])
		if dec == DecorationBuiltIn && len(ops) > 2 {
			args = BuiltIn(ops[2]).String()
		}
		fmt.Fprintf(sb, "%s%s\n", indent, join(name, id(ops[0]), dec.String(), args))

	case OpMemberDecorate:
		fmt.Fprintf(sb, "%s%s\n", indent, join(name, id(ops[0]), itoa(ops[1]), Decoration(ops[2]).String(), nums(ops[3:])))

	case OpTypeVoid, OpTypeBool, OpTypeSampler:
		fmt.Fprintf(sb, "%s = %s\n", lhs(ops[0]), name)

	case OpTypeInt:
		fmt.Fprintf(sb, "%s = %s %d %d\n", lhs(ops[0]), name, ops[1], ops[2])

	case OpTypeFloat:
		d.floatTypes[ops[0]] = ops[1]
		fmt.Fprintf(sb, "%s = %s %d\n", lhs(ops[0]), name, ops[1])

	case OpTypeVector, OpTypeMatrix:
		fmt.Fprintf(sb, "%s = %s %s %d\n", lhs(ops[0]), name, id(ops[1]), ops[2])

	case OpTypeImage:
		fmt.Fprintf(sb, "%s = %s %s %s %d %d %d %d %s\n", lhs(ops[0]), name, id(ops[1]),
			Dim(ops[2]), ops[3], ops[4], ops[5], ops[6], ImageFormat(ops[7]))

	case OpTypePointer:
		fmt.Fprintf(sb, "%s = %s %s %s\n", lhs(ops[0]), name, StorageClass(ops[1]), id(ops[2]))

	case OpTypeArray, OpTypeRuntimeArray, OpTypeStruct, OpTypeFunction, OpTypeSampledImage:
		fmt.Fprintf(sb, "%s = %s\n", lhs(ops[0]), join(name, ids(ops[1:])))

	case OpConstant:
		fmt.Fprintf(sb, "%s = %s %s %s\n", lhs(ops[1]), name, id(ops[0]), d.literal(ops[0], ops[2:]))

	case OpVariable:
		fmt.Fprintf(sb, "%s = %s\n", lhs(ops[1]), join(name, id(ops[0]), StorageClass(ops[2]).String(), ids(ops[3:])))

	case OpFunction:
		fmt.Fprintf(sb, "%s = %s %s %s %s\n", lhs(ops[1]), name, id(ops[0]), functionControl(ops[2]), id(ops[3]))

	case OpLabel:
		fmt.Fprintf(sb, "%s = %s\n", lhs(ops[0]), name)

	case OpExtInst:
		inst := itoa(ops[3])
		if d.extSets[ops[2]] == GLSLImportName {
			inst = GLSLstd450(ops[3]).String()
		}
		fmt.Fprintf(sb, "%s = %s\n", lhs(ops[1]), join(name, id(ops[0]), id(ops[2]), inst, ids(ops[4:])))

	case OpCompositeExtract, OpCompositeInsert:
		// Trailing operands are literal indices.
		nIDs := 1
		if inst.Opcode == OpCompositeInsert {
			nIDs = 2
		}
		fmt.Fprintf(sb, "%s = %s\n", lhs(ops[1]), join(name, id(ops[0]), ids(ops[2:2+nIDs]), nums(ops[2+nIDs:])))

	case OpVectorShuffle:
		fmt.Fprintf(sb, "%s = %s\n", lhs(ops[1]), join(name, id(ops[0]), ids(ops[2:4]), nums(ops[4:])))

	case OpSelectionMerge:
		fmt.Fprintf(sb, "%s%s %s %d\n", indent, name, id(ops[0]), ops[1])

	case OpLoopMerge:
		fmt.Fprintf(sb, "%s%s %s %s %d\n", indent, name, id(ops[0]), id(ops[1]), ops[2])

	case OpSwitch:
		parts := []string{name, id(ops[0]), id(ops[1])}
		for i := 2; i+1 < len(ops); i += 2 {
			parts = append(parts, itoa(ops[i]), id(ops[i+1]))
		}
		fmt.Fprintf(sb, "%s%s\n", indent, join(parts...))

	case OpControlBarrier, OpMemoryBarrier:
		fmt.Fprintf(sb, "%s%s\n", indent, join(name, ids(ops)))

	default:
		if inst.Opcode.HasResultType() && len(ops) >= 2 {
			fmt.Fprintf(sb, "%s = %s\n", lhs(ops[1]), join(name, id(ops[0]), ids(ops[2:])))
			return
		}
		fmt.Fprintf(sb, "%s%s\n", indent, join(name, ids(ops)))
	}
}

// lhs right-aligns a result id the way spirv-dis does.
func lhs(n uint32) string {
	return fmt.Sprintf("%12s", id(n))
}

func (d *disassembler) literal(typeID uint32, words []uint32) string {
	switch d.floatTypes[typeID] {
	case 32:
		if len(words) == 1 {
			return fmt.Sprintf("%g", math.Float32frombits(words[0]))
		}
	case 64:
		if len(words) == 2 {
			return fmt.Sprintf("%g", math.Float64frombits(uint64(words[0])|uint64(words[1])<<32))
		}
	}
	return nums(words)
}

func functionControl(v uint32) string {
	switch FunctionControl(v) {
	case FunctionControlNone:
		return "None"
	case FunctionControlInline:
		return "Inline"
	case FunctionControlDontInline:
		return "DontInline"
	}
	return itoa(v)
}

func lookup[K ~uint32](m map[K]string, v K) string {
	if s, ok := m[v]; ok {
		return s
	}
	return itoa(uint32(v))
}
