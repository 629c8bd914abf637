package spirv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// Decoding errors.
var (
	ErrInvalidMagic = errors.New("spirv: invalid magic number")
	ErrTruncated    = errors.New("spirv: truncated module")
)

// Header is the five-word module header.
type Header struct {
	Version   Version
	Generator uint32
	Bound     uint32
	Schema    uint32
}

// Module is a decoded SPIR-V module.
type Module struct {
	Header       Header
	Instructions []Instruction
}

// Decode parses a little-endian SPIR-V binary.
func Decode(data []byte) (*Module, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of words", ErrTruncated, len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return DecodeWords(words)
}

// DecodeWords parses a SPIR-V word stream.
func DecodeWords(words []uint32) (*Module, error) {
	if len(words) < 5 {
		return nil, fmt.Errorf("%w: header needs 5 words, got %d", ErrTruncated, len(words))
	}
	if words[0] != MagicNumber {
		return nil, fmt.Errorf("%w: 0x%08X", ErrInvalidMagic, words[0])
	}
	m := &Module{
		Header: Header{
			Version:   wordToVersion(words[1]),
			Generator: words[2],
			Bound:     words[3],
			Schema:    words[4],
		},
	}
	for offset := 5; offset < len(words); {
		word := words[offset]
		wordCount := int(word >> 16)
		if wordCount == 0 || offset+wordCount > len(words) {
			return nil, fmt.Errorf("%w: invalid word count %d at word %d", ErrTruncated, wordCount, offset)
		}
		operands := make([]uint32, wordCount-1)
		copy(operands, words[offset+1:offset+wordCount])
		m.Instructions = append(m.Instructions, Instruction{
			Opcode: OpCode(word & 0xFFFF),
			Words:  operands,
		})
		offset += wordCount
	}
	return m, nil
}

// Count returns how many instructions carry the given opcode.
func (m *Module) Count(op OpCode) int {
	n := 0
	for _, inst := range m.Instructions {
		if inst.Opcode == op {
			n++
		}
	}
	return n
}

// Find returns all instructions with the given opcode, in module order.
func (m *Module) Find(op OpCode) []Instruction {
	var out []Instruction
	for _, inst := range m.Instructions {
		if inst.Opcode == op {
			out = append(out, inst)
		}
	}
	return out
}

// Decorations returns the decoration operands applied to id, keyed by
// decoration.
func (m *Module) Decorations(id uint32) map[Decoration][]uint32 {
	out := make(map[Decoration][]uint32)
	for _, inst := range m.Find(OpDecorate) {
		if inst.Words[0] == id {
			out[Decoration(inst.Words[1])] = inst.Words[2:]
		}
	}
	return out
}

// Result returns the result id of the instruction, if it has one.
func (i Instruction) Result() (uint32, bool) {
	switch {
	case i.Opcode.HasResultType():
		if len(i.Words) > 1 {
			return i.Words[1], true
		}
	case i.Opcode == OpLabel, i.Opcode == OpExtInstImport, i.Opcode == OpString,
		i.Opcode >= OpTypeVoid && i.Opcode <= OpTypeFunction:
		if len(i.Words) > 0 {
			return i.Words[0], true
		}
	}
	return 0, false
}

// DecodeString reads a literal string starting at words[0] and returns the
// string and the number of words it occupies.
func DecodeString(words []uint32) (string, int) {
	var sb strings.Builder
	for i, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			c := byte(w >> shift)
			if c == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
		}
	}
	return sb.String(), len(words)
}
