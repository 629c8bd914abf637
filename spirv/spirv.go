package spirv

import (
	"fmt"
)

// Version represents a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common SPIR-V versions
var (
	Version1_0 = Version{1, 0}
	Version1_3 = Version{1, 3}
	Version1_4 = Version{1, 4}
	Version1_5 = Version{1, 5}
	Version1_6 = Version{1, 6}
)

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast reports whether v is the same as or newer than o.
func (v Version) AtLeast(o Version) bool {
	if v.Major != o.Major {
		return v.Major > o.Major
	}
	return v.Minor >= o.Minor
}

// ParseVersion parses "major.minor" (e.g. "1.3").
func ParseVersion(s string) (Version, error) {
	var major, minor uint8
	if _, err := fmt.Sscanf(s, "%d.%d", &major, &minor); err != nil {
		return Version{}, fmt.Errorf("spirv: invalid version %q: %w", s, err)
	}
	v := Version{major, minor}
	if major != 1 || minor > 6 {
		return Version{}, fmt.Errorf("spirv: unsupported version %s", v)
	}
	return v, nil
}

// versionToWord converts Version to SPIR-V word format.
func versionToWord(v Version) uint32 {
	return (uint32(v.Major) << 16) | (uint32(v.Minor) << 8)
}

func wordToVersion(w uint32) Version {
	return Version{Major: uint8(w >> 16), Minor: uint8(w >> 8)}
}

// SPIR-V magic number and constants
const (
	MagicNumber = 0x07230203
	GeneratorID = 0x00000000 // Unregistered generator
)

// Capability represents a SPIR-V capability.
type Capability uint32

// Capabilities used by the shader translator.
const (
	CapabilityMatrix                            Capability = 0
	CapabilityShader                            Capability = 1
	CapabilityFloat16                           Capability = 9
	CapabilityFloat64                           Capability = 10
	CapabilityInt64                             Capability = 11
	CapabilityInt16                             Capability = 22
	CapabilityUniformBufferArrayDynamicIndexing Capability = 28
	CapabilitySampledImageArrayDynamicIndexing  Capability = 29
	CapabilityStorageBufferArrayDynamicIndexing Capability = 30
	CapabilityStorageImageArrayDynamicIndexing  Capability = 31
	CapabilityImageCubeArray                    Capability = 34
	CapabilitySampled1D                         Capability = 43
	CapabilityImage1D                           Capability = 44
	CapabilityStorageImageExtendedFormats       Capability = 49
	CapabilityImageQuery                        Capability = 50
	CapabilityDerivativeControl                 Capability = 51
	CapabilityStorageImageReadWithoutFormat     Capability = 55
	CapabilityStorageImageWriteWithoutFormat    Capability = 56
	CapabilityDrawParameters                    Capability = 4427
)

// AddressingModel represents a SPIR-V addressing model.
type AddressingModel uint32

const (
	AddressingModelLogical    AddressingModel = 0
	AddressingModelPhysical32 AddressingModel = 1
	AddressingModelPhysical64 AddressingModel = 2
)

// MemoryModel represents a SPIR-V memory model.
type MemoryModel uint32

const (
	MemoryModelSimple  MemoryModel = 0
	MemoryModelGLSL450 MemoryModel = 1
	MemoryModelVulkan  MemoryModel = 3
)

// ExecutionModel is the shader stage of an entry point.
type ExecutionModel uint32

const (
	ExecutionModelVertex    ExecutionModel = 0
	ExecutionModelGeometry  ExecutionModel = 3
	ExecutionModelFragment  ExecutionModel = 4
	ExecutionModelGLCompute ExecutionModel = 5
)

// ExecutionMode configures an entry point.
type ExecutionMode uint32

const (
	ExecutionModeOriginUpperLeft    ExecutionMode = 7
	ExecutionModeOriginLowerLeft    ExecutionMode = 8
	ExecutionModeEarlyFragmentTests ExecutionMode = 9
	ExecutionModeDepthReplacing     ExecutionMode = 12
	ExecutionModeLocalSize          ExecutionMode = 17
)

// StorageClass represents a SPIR-V storage class.
type StorageClass uint32

const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassWorkgroup       StorageClass = 4
	StorageClassCrossWorkgroup  StorageClass = 5
	StorageClassPrivate         StorageClass = 6
	StorageClassFunction        StorageClass = 7
	StorageClassGeneric         StorageClass = 8
	StorageClassPushConstant    StorageClass = 9
	StorageClassAtomicCounter   StorageClass = 10
	StorageClassImage           StorageClass = 11
	StorageClassStorageBuffer   StorageClass = 12
)

// Dim is the dimensionality of an image type.
type Dim uint32

const (
	Dim1D          Dim = 0
	Dim2D          Dim = 1
	Dim3D          Dim = 2
	DimCube        Dim = 3
	DimRect        Dim = 4
	DimBuffer      Dim = 5
	DimSubpassData Dim = 6
)

// ImageFormat is the texel format operand of OpTypeImage.
type ImageFormat uint32

const (
	ImageFormatUnknown      ImageFormat = 0
	ImageFormatRgba32f      ImageFormat = 1
	ImageFormatRgba16f      ImageFormat = 2
	ImageFormatR32f         ImageFormat = 3
	ImageFormatRgba8        ImageFormat = 4
	ImageFormatRgba8Snorm   ImageFormat = 5
	ImageFormatRg32f        ImageFormat = 6
	ImageFormatRg16f        ImageFormat = 7
	ImageFormatR11fG11fB10f ImageFormat = 8
	ImageFormatR16f         ImageFormat = 9
	ImageFormatRgba16       ImageFormat = 10
	ImageFormatRgb10A2      ImageFormat = 11
	ImageFormatRg16         ImageFormat = 12
	ImageFormatRg8          ImageFormat = 13
	ImageFormatR16          ImageFormat = 14
	ImageFormatR8           ImageFormat = 15
	ImageFormatRgba32i      ImageFormat = 21
	ImageFormatRgba16i      ImageFormat = 22
	ImageFormatRgba8i       ImageFormat = 23
	ImageFormatR32i         ImageFormat = 24
	ImageFormatRg32i        ImageFormat = 25
	ImageFormatRgba32ui     ImageFormat = 30
	ImageFormatRgba16ui     ImageFormat = 31
	ImageFormatRgba8ui      ImageFormat = 32
	ImageFormatR32ui        ImageFormat = 33
	ImageFormatRg32ui       ImageFormat = 35
)

// StorageImageExtended reports whether the format requires the
// StorageImageExtendedFormats capability when used with a storage image.
func (f ImageFormat) StorageImageExtended() bool {
	switch f {
	case ImageFormatUnknown, ImageFormatRgba32f, ImageFormatRgba16f, ImageFormatR32f,
		ImageFormatRgba8, ImageFormatRgba8Snorm, ImageFormatRgba32i, ImageFormatRgba16i,
		ImageFormatRgba8i, ImageFormatR32i, ImageFormatRgba32ui, ImageFormatRgba16ui,
		ImageFormatRgba8ui, ImageFormatR32ui:
		return false
	}
	return true
}

// Decoration represents a SPIR-V decoration.
type Decoration uint32

// Common decorations
const (
	DecorationBlock         Decoration = 2
	DecorationBufferBlock   Decoration = 3
	DecorationRowMajor      Decoration = 4
	DecorationColMajor      Decoration = 5
	DecorationArrayStride   Decoration = 6
	DecorationMatrixStride  Decoration = 7
	DecorationBuiltIn       Decoration = 11
	DecorationNoPerspective Decoration = 13
	DecorationFlat          Decoration = 14
	DecorationCentroid      Decoration = 16
	DecorationSample        Decoration = 17
	DecorationNonWritable   Decoration = 24
	DecorationNonReadable   Decoration = 25
	DecorationLocation      Decoration = 30
	DecorationComponent     Decoration = 31
	DecorationIndex         Decoration = 32
	DecorationBinding       Decoration = 33
	DecorationDescriptorSet Decoration = 34
	DecorationOffset        Decoration = 35
	DecorationNonUniform    Decoration = 5300
)

// BuiltIn identifies a built-in variable.
type BuiltIn uint32

const (
	BuiltInPosition             BuiltIn = 0
	BuiltInPointSize            BuiltIn = 1
	BuiltInFragCoord            BuiltIn = 15
	BuiltInPointCoord           BuiltIn = 16
	BuiltInFrontFacing          BuiltIn = 17
	BuiltInSampleID             BuiltIn = 18
	BuiltInFragDepth            BuiltIn = 22
	BuiltInNumWorkgroups        BuiltIn = 24
	BuiltInWorkgroupSize        BuiltIn = 25
	BuiltInWorkgroupID          BuiltIn = 26
	BuiltInLocalInvocationID    BuiltIn = 27
	BuiltInGlobalInvocationID   BuiltIn = 28
	BuiltInLocalInvocationIndex BuiltIn = 29
	BuiltInVertexIndex          BuiltIn = 42
	BuiltInInstanceIndex        BuiltIn = 43
)

// FunctionControl is the function control mask of OpFunction.
type FunctionControl uint32

const (
	FunctionControlNone       FunctionControl = 0
	FunctionControlInline     FunctionControl = 1
	FunctionControlDontInline FunctionControl = 2
	FunctionControlPure       FunctionControl = 4
	FunctionControlConst      FunctionControl = 8
)

// SelectionControl is the control mask of OpSelectionMerge.
type SelectionControl uint32

const (
	SelectionControlNone        SelectionControl = 0
	SelectionControlFlatten     SelectionControl = 1
	SelectionControlDontFlatten SelectionControl = 2
)

// LoopControl is the control mask of OpLoopMerge.
type LoopControl uint32

const (
	LoopControlNone       LoopControl = 0
	LoopControlUnroll     LoopControl = 1
	LoopControlDontUnroll LoopControl = 2
)

// Scope is an execution or memory scope operand.
type Scope uint32

const (
	ScopeCrossDevice Scope = 0
	ScopeDevice      Scope = 1
	ScopeWorkgroup   Scope = 2
	ScopeSubgroup    Scope = 3
	ScopeInvocation  Scope = 4
)

// MemorySemantics is a memory semantics mask.
type MemorySemantics uint32

const (
	MemorySemanticsNone            MemorySemantics = 0
	MemorySemanticsAcquireRelease  MemorySemantics = 0x8
	MemorySemanticsUniformMemory   MemorySemantics = 0x40
	MemorySemanticsWorkgroupMemory MemorySemantics = 0x100
	MemorySemanticsImageMemory     MemorySemantics = 0x800
)

// ImageOperands is the optional image operand mask.
type ImageOperands uint32

const (
	ImageOperandsNone ImageOperands = 0
	ImageOperandsBias ImageOperands = 0x1
	ImageOperandsLod  ImageOperands = 0x2
	ImageOperandsGrad ImageOperands = 0x4
)

// OpCode represents a SPIR-V opcode.
type OpCode uint16

// Opcodes emitted or decoded by this package.
const (
	OpNop                     OpCode = 0
	OpUndef                   OpCode = 1
	OpSource                  OpCode = 3
	OpName                    OpCode = 5
	OpMemberName              OpCode = 6
	OpString                  OpCode = 7
	OpExtension               OpCode = 10
	OpExtInstImport           OpCode = 11
	OpExtInst                 OpCode = 12
	OpMemoryModel             OpCode = 14
	OpEntryPoint              OpCode = 15
	OpExecutionMode           OpCode = 16
	OpCapability              OpCode = 17
	OpTypeVoid                OpCode = 19
	OpTypeBool                OpCode = 20
	OpTypeInt                 OpCode = 21
	OpTypeFloat               OpCode = 22
	OpTypeVector              OpCode = 23
	OpTypeMatrix              OpCode = 24
	OpTypeImage               OpCode = 25
	OpTypeSampler             OpCode = 26
	OpTypeSampledImage        OpCode = 27
	OpTypeArray               OpCode = 28
	OpTypeRuntimeArray        OpCode = 29
	OpTypeStruct              OpCode = 30
	OpTypePointer             OpCode = 32
	OpTypeFunction            OpCode = 33
	OpConstantTrue            OpCode = 41
	OpConstantFalse           OpCode = 42
	OpConstant                OpCode = 43
	OpConstantComposite       OpCode = 44
	OpConstantNull            OpCode = 46
	OpFunction                OpCode = 54
	OpFunctionParameter       OpCode = 55
	OpFunctionEnd             OpCode = 56
	OpFunctionCall            OpCode = 57
	OpVariable                OpCode = 59
	OpLoad                    OpCode = 61
	OpStore                   OpCode = 62
	OpAccessChain             OpCode = 65
	OpArrayLength             OpCode = 68
	OpDecorate                OpCode = 71
	OpMemberDecorate          OpCode = 72
	OpVectorExtractDynamic    OpCode = 77
	OpVectorInsertDynamic     OpCode = 78
	OpVectorShuffle           OpCode = 79
	OpCompositeConstruct      OpCode = 80
	OpCompositeExtract        OpCode = 81
	OpCompositeInsert         OpCode = 82
	OpCopyObject              OpCode = 83
	OpTranspose               OpCode = 84
	OpSampledImage            OpCode = 86
	OpImageSampleImplicitLod  OpCode = 87
	OpImageSampleExplicitLod  OpCode = 88
	OpImageSampleDrefImplicit OpCode = 89
	OpImageSampleDrefExplicit OpCode = 90
	OpImageFetch              OpCode = 95
	OpImageGather             OpCode = 96
	OpImageRead               OpCode = 98
	OpImageWrite              OpCode = 99
	OpImage                   OpCode = 100
	OpImageQuerySizeLod       OpCode = 103
	OpImageQuerySize          OpCode = 104
	OpImageQueryLevels        OpCode = 106
	OpConvertFToU             OpCode = 109
	OpConvertFToS             OpCode = 110
	OpConvertSToF             OpCode = 111
	OpConvertUToF             OpCode = 112
	OpUConvert                OpCode = 113
	OpSConvert                OpCode = 114
	OpFConvert                OpCode = 115
	OpBitcast                 OpCode = 124
	OpSNegate                 OpCode = 126
	OpFNegate                 OpCode = 127
	OpIAdd                    OpCode = 128
	OpFAdd                    OpCode = 129
	OpISub                    OpCode = 130
	OpFSub                    OpCode = 131
	OpIMul                    OpCode = 132
	OpFMul                    OpCode = 133
	OpUDiv                    OpCode = 134
	OpSDiv                    OpCode = 135
	OpFDiv                    OpCode = 136
	OpUMod                    OpCode = 137
	OpSRem                    OpCode = 138
	OpSMod                    OpCode = 139
	OpFRem                    OpCode = 140
	OpFMod                    OpCode = 141
	OpVectorTimesScalar       OpCode = 142
	OpMatrixTimesScalar       OpCode = 143
	OpVectorTimesMatrix       OpCode = 144
	OpMatrixTimesVector       OpCode = 145
	OpMatrixTimesMatrix       OpCode = 146
	OpOuterProduct            OpCode = 147
	OpDot                     OpCode = 148
	OpAny                     OpCode = 154
	OpAll                     OpCode = 155
	OpIsNan                   OpCode = 156
	OpIsInf                   OpCode = 157
	OpLogicalEqual            OpCode = 164
	OpLogicalNotEqual         OpCode = 165
	OpLogicalOr               OpCode = 166
	OpLogicalAnd              OpCode = 167
	OpLogicalNot              OpCode = 168
	OpSelect                  OpCode = 169
	OpIEqual                  OpCode = 170
	OpINotEqual               OpCode = 171
	OpUGreaterThan            OpCode = 172
	OpSGreaterThan            OpCode = 173
	OpUGreaterThanEqual       OpCode = 174
	OpSGreaterThanEqual       OpCode = 175
	OpULessThan               OpCode = 176
	OpSLessThan               OpCode = 177
	OpULessThanEqual          OpCode = 178
	OpSLessThanEqual          OpCode = 179
	OpFOrdEqual               OpCode = 180
	OpFUnordEqual             OpCode = 181
	OpFOrdNotEqual            OpCode = 182
	OpFUnordNotEqual          OpCode = 183
	OpFOrdLessThan            OpCode = 184
	OpFUnordLessThan          OpCode = 185
	OpFOrdGreaterThan         OpCode = 186
	OpFUnordGreaterThan       OpCode = 187
	OpFOrdLessThanEqual       OpCode = 188
	OpFUnordLessThanEqual     OpCode = 189
	OpFOrdGreaterThanEqual    OpCode = 190
	OpFUnordGreaterThanEqual  OpCode = 191
	OpShiftRightLogical       OpCode = 194
	OpShiftRightArithmetic    OpCode = 195
	OpShiftLeftLogical        OpCode = 196
	OpBitwiseOr               OpCode = 197
	OpBitwiseXor              OpCode = 198
	OpBitwiseAnd              OpCode = 199
	OpNot                     OpCode = 200
	OpBitCount                OpCode = 205
	OpDPdx                    OpCode = 207
	OpDPdy                    OpCode = 208
	OpFwidth                  OpCode = 209
	OpControlBarrier          OpCode = 224
	OpMemoryBarrier           OpCode = 225
	OpAtomicLoad              OpCode = 227
	OpAtomicStore             OpCode = 228
	OpAtomicExchange          OpCode = 229
	OpAtomicIAdd              OpCode = 234
	OpAtomicISub              OpCode = 235
	OpAtomicSMin              OpCode = 236
	OpAtomicUMin              OpCode = 237
	OpAtomicSMax              OpCode = 238
	OpAtomicUMax              OpCode = 239
	OpPhi                     OpCode = 245
	OpLoopMerge               OpCode = 246
	OpSelectionMerge          OpCode = 247
	OpLabel                   OpCode = 248
	OpBranch                  OpCode = 249
	OpBranchConditional       OpCode = 250
	OpSwitch                  OpCode = 251
	OpKill                    OpCode = 252
	OpReturn                  OpCode = 253
	OpReturnValue             OpCode = 254
	OpUnreachable             OpCode = 255
)

// IsTerminator reports whether op ends a basic block.
func (op OpCode) IsTerminator() bool {
	switch op {
	case OpBranch, OpBranchConditional, OpSwitch, OpKill, OpReturn, OpReturnValue, OpUnreachable:
		return true
	}
	return false
}

// HasResultType reports whether the instruction layout of op carries a result
// type word followed by a result id word.
func (op OpCode) HasResultType() bool {
	switch op {
	case OpUndef, OpExtInst, OpConstantTrue, OpConstantFalse, OpConstant,
		OpConstantComposite, OpConstantNull, OpFunction, OpFunctionParameter,
		OpFunctionCall, OpVariable, OpLoad, OpAccessChain, OpArrayLength, OpPhi:
		return true
	}
	if op >= OpVectorExtractDynamic && op <= OpFwidth {
		return op != OpImageWrite
	}
	if op >= OpAtomicLoad && op <= OpAtomicUMax {
		return op != OpAtomicStore
	}
	return false
}

func (op OpCode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op%d", uint16(op))
}
