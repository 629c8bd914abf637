// Package spirv provides the SPIR-V binary layer used by the shader
// translator: a sectioned module builder, opcode and enum tables, a decoder
// and a disassembler.
//
// # Binary Writer
//
// ModuleBuilder keeps one instruction list per logical module section and
// concatenates them in the order the SPIR-V specification requires:
//
//	builder := spirv.NewModuleBuilder(spirv.Version1_3)
//	builder.AddCapability(spirv.CapabilityShader)
//	builder.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
//
//	floatType := builder.AddTypeFloat(32)
//	vec4Type := builder.AddTypeVector(floatType, 4)
//
//	binary := builder.Build()
//
// Function bodies are assembled by the caller and appended whole with
// AddFunctionInstructions, which lets the caller hoist variables into the
// entry block and patch forward branches before the body is committed.
//
// Words emits the header followed by capabilities, extensions, extended
// instruction imports, the memory model, entry points, execution modes,
// debug names, decorations, types and constants, globals and functions.
// Sections that stay empty are skipped.
//
// # Reading modules
//
// Decode parses a binary back into instructions, and Disassemble renders
// them in a spirv-dis like text form:
//
//	m, err := spirv.Decode(binary)
//	if err != nil {
//		return err
//	}
//	m.Disassemble(os.Stdout)
//
// # References
//
// SPIR-V Specification: https://registry.khronos.org/SPIR-V/specs/unified1/SPIRV.html
package spirv
