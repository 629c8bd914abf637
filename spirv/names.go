package spirv

import "strconv"

var opcodeNames = map[OpCode]string{
	OpNop: "OpNop", OpUndef: "OpUndef", OpSource: "OpSource", OpName: "OpName",
	OpMemberName: "OpMemberName", OpString: "OpString", OpExtension: "OpExtension",
	OpExtInstImport: "OpExtInstImport", OpExtInst: "OpExtInst",
	OpMemoryModel: "OpMemoryModel", OpEntryPoint: "OpEntryPoint",
	OpExecutionMode: "OpExecutionMode", OpCapability: "OpCapability",
	OpTypeVoid: "OpTypeVoid", OpTypeBool: "OpTypeBool", OpTypeInt: "OpTypeInt",
	OpTypeFloat: "OpTypeFloat", OpTypeVector: "OpTypeVector", OpTypeMatrix: "OpTypeMatrix",
	OpTypeImage: "OpTypeImage", OpTypeSampler: "OpTypeSampler",
	OpTypeSampledImage: "OpTypeSampledImage", OpTypeArray: "OpTypeArray",
	OpTypeRuntimeArray: "OpTypeRuntimeArray", OpTypeStruct: "OpTypeStruct",
	OpTypePointer: "OpTypePointer", OpTypeFunction: "OpTypeFunction",
	OpConstantTrue: "OpConstantTrue", OpConstantFalse: "OpConstantFalse",
	OpConstant: "OpConstant", OpConstantComposite: "OpConstantComposite",
	OpConstantNull: "OpConstantNull",
	OpFunction:     "OpFunction", OpFunctionParameter: "OpFunctionParameter",
	OpFunctionEnd: "OpFunctionEnd", OpFunctionCall: "OpFunctionCall",
	OpVariable: "OpVariable", OpLoad: "OpLoad", OpStore: "OpStore",
	OpAccessChain: "OpAccessChain", OpArrayLength: "OpArrayLength",
	OpDecorate: "OpDecorate", OpMemberDecorate: "OpMemberDecorate",
	OpVectorExtractDynamic: "OpVectorExtractDynamic", OpVectorInsertDynamic: "OpVectorInsertDynamic",
	OpVectorShuffle: "OpVectorShuffle", OpCompositeConstruct: "OpCompositeConstruct",
	OpCompositeExtract: "OpCompositeExtract", OpCompositeInsert: "OpCompositeInsert",
	OpCopyObject: "OpCopyObject", OpTranspose: "OpTranspose",
	OpSampledImage: "OpSampledImage", OpImageSampleImplicitLod: "OpImageSampleImplicitLod",
	OpImageSampleExplicitLod:  "OpImageSampleExplicitLod",
	OpImageSampleDrefImplicit: "OpImageSampleDrefImplicitLod",
	OpImageSampleDrefExplicit: "OpImageSampleDrefExplicitLod",
	OpImageFetch:              "OpImageFetch", OpImageGather: "OpImageGather",
	OpImageRead: "OpImageRead", OpImageWrite: "OpImageWrite", OpImage: "OpImage",
	OpImageQuerySizeLod: "OpImageQuerySizeLod", OpImageQuerySize: "OpImageQuerySize",
	OpImageQueryLevels: "OpImageQueryLevels",
	OpConvertFToU:      "OpConvertFToU", OpConvertFToS: "OpConvertFToS",
	OpConvertSToF: "OpConvertSToF", OpConvertUToF: "OpConvertUToF",
	OpUConvert: "OpUConvert", OpSConvert: "OpSConvert", OpFConvert: "OpFConvert",
	OpBitcast: "OpBitcast", OpSNegate: "OpSNegate", OpFNegate: "OpFNegate",
	OpIAdd: "OpIAdd", OpFAdd: "OpFAdd", OpISub: "OpISub", OpFSub: "OpFSub",
	OpIMul: "OpIMul", OpFMul: "OpFMul", OpUDiv: "OpUDiv", OpSDiv: "OpSDiv",
	OpFDiv: "OpFDiv", OpUMod: "OpUMod", OpSRem: "OpSRem", OpSMod: "OpSMod",
	OpFRem: "OpFRem", OpFMod: "OpFMod",
	OpVectorTimesScalar: "OpVectorTimesScalar", OpMatrixTimesScalar: "OpMatrixTimesScalar",
	OpVectorTimesMatrix: "OpVectorTimesMatrix", OpMatrixTimesVector: "OpMatrixTimesVector",
	OpMatrixTimesMatrix: "OpMatrixTimesMatrix", OpOuterProduct: "OpOuterProduct",
	OpDot: "OpDot", OpAny: "OpAny", OpAll: "OpAll", OpIsNan: "OpIsNan", OpIsInf: "OpIsInf",
	OpLogicalEqual: "OpLogicalEqual", OpLogicalNotEqual: "OpLogicalNotEqual",
	OpLogicalOr: "OpLogicalOr", OpLogicalAnd: "OpLogicalAnd", OpLogicalNot: "OpLogicalNot",
	OpSelect: "OpSelect", OpIEqual: "OpIEqual", OpINotEqual: "OpINotEqual",
	OpUGreaterThan: "OpUGreaterThan", OpSGreaterThan: "OpSGreaterThan",
	OpUGreaterThanEqual: "OpUGreaterThanEqual", OpSGreaterThanEqual: "OpSGreaterThanEqual",
	OpULessThan: "OpULessThan", OpSLessThan: "OpSLessThan",
	OpULessThanEqual: "OpULessThanEqual", OpSLessThanEqual: "OpSLessThanEqual",
	OpFOrdEqual: "OpFOrdEqual", OpFUnordEqual: "OpFUnordEqual",
	OpFOrdNotEqual: "OpFOrdNotEqual", OpFUnordNotEqual: "OpFUnordNotEqual",
	OpFOrdLessThan: "OpFOrdLessThan", OpFUnordLessThan: "OpFUnordLessThan",
	OpFOrdGreaterThan: "OpFOrdGreaterThan", OpFUnordGreaterThan: "OpFUnordGreaterThan",
	OpFOrdLessThanEqual: "OpFOrdLessThanEqual", OpFUnordLessThanEqual: "OpFUnordLessThanEqual",
	OpFOrdGreaterThanEqual: "OpFOrdGreaterThanEqual", OpFUnordGreaterThanEqual: "OpFUnordGreaterThanEqual",
	OpShiftRightLogical: "OpShiftRightLogical", OpShiftRightArithmetic: "OpShiftRightArithmetic",
	OpShiftLeftLogical: "OpShiftLeftLogical", OpBitwiseOr: "OpBitwiseOr",
	OpBitwiseXor: "OpBitwiseXor", OpBitwiseAnd: "OpBitwiseAnd", OpNot: "OpNot",
	OpBitCount: "OpBitCount", OpDPdx: "OpDPdx", OpDPdy: "OpDPdy", OpFwidth: "OpFwidth",
	OpControlBarrier: "OpControlBarrier", OpMemoryBarrier: "OpMemoryBarrier",
	OpAtomicLoad: "OpAtomicLoad", OpAtomicStore: "OpAtomicStore",
	OpAtomicExchange: "OpAtomicExchange", OpAtomicIAdd: "OpAtomicIAdd",
	OpAtomicISub: "OpAtomicISub", OpAtomicSMin: "OpAtomicSMin", OpAtomicUMin: "OpAtomicUMin",
	OpAtomicSMax: "OpAtomicSMax", OpAtomicUMax: "OpAtomicUMax",
	OpPhi: "OpPhi", OpLoopMerge: "OpLoopMerge", OpSelectionMerge: "OpSelectionMerge",
	OpLabel: "OpLabel", OpBranch: "OpBranch", OpBranchConditional: "OpBranchConditional",
	OpSwitch: "OpSwitch", OpKill: "OpKill", OpReturn: "OpReturn",
	OpReturnValue: "OpReturnValue", OpUnreachable: "OpUnreachable",
}

var capabilityNames = map[Capability]string{
	CapabilityMatrix: "Matrix", CapabilityShader: "Shader", CapabilityFloat16: "Float16",
	CapabilityFloat64: "Float64", CapabilityInt64: "Int64", CapabilityInt16: "Int16",
	CapabilityUniformBufferArrayDynamicIndexing: "UniformBufferArrayDynamicIndexing",
	CapabilitySampledImageArrayDynamicIndexing:  "SampledImageArrayDynamicIndexing",
	CapabilityStorageBufferArrayDynamicIndexing: "StorageBufferArrayDynamicIndexing",
	CapabilityStorageImageArrayDynamicIndexing:  "StorageImageArrayDynamicIndexing",
	CapabilityImageCubeArray:                    "ImageCubeArray",
	CapabilitySampled1D:                         "Sampled1D",
	CapabilityImage1D:                           "Image1D",
	CapabilityStorageImageExtendedFormats:       "StorageImageExtendedFormats",
	CapabilityImageQuery:                        "ImageQuery",
	CapabilityDerivativeControl:                 "DerivativeControl",
	CapabilityStorageImageReadWithoutFormat:     "StorageImageReadWithoutFormat",
	CapabilityStorageImageWriteWithoutFormat:    "StorageImageWriteWithoutFormat",
	CapabilityDrawParameters:                    "DrawParameters",
}

func (c Capability) String() string {
	if s, ok := capabilityNames[c]; ok {
		return s
	}
	return itoa(uint32(c))
}

var storageClassNames = map[StorageClass]string{
	StorageClassUniformConstant: "UniformConstant", StorageClassInput: "Input",
	StorageClassUniform: "Uniform", StorageClassOutput: "Output",
	StorageClassWorkgroup: "Workgroup", StorageClassCrossWorkgroup: "CrossWorkgroup",
	StorageClassPrivate: "Private", StorageClassFunction: "Function",
	StorageClassGeneric: "Generic", StorageClassPushConstant: "PushConstant",
	StorageClassAtomicCounter: "AtomicCounter", StorageClassImage: "Image",
	StorageClassStorageBuffer: "StorageBuffer",
}

func (s StorageClass) String() string {
	if n, ok := storageClassNames[s]; ok {
		return n
	}
	return itoa(uint32(s))
}

var decorationNames = map[Decoration]string{
	DecorationBlock: "Block", DecorationBufferBlock: "BufferBlock",
	DecorationRowMajor: "RowMajor", DecorationColMajor: "ColMajor",
	DecorationArrayStride: "ArrayStride", DecorationMatrixStride: "MatrixStride",
	DecorationBuiltIn: "BuiltIn", DecorationNoPerspective: "NoPerspective",
	DecorationFlat: "Flat", DecorationCentroid: "Centroid", DecorationSample: "Sample",
	DecorationNonWritable: "NonWritable", DecorationNonReadable: "NonReadable",
	DecorationLocation: "Location", DecorationComponent: "Component",
	DecorationIndex: "Index", DecorationBinding: "Binding",
	DecorationDescriptorSet: "DescriptorSet", DecorationOffset: "Offset",
	DecorationNonUniform: "NonUniform",
}

func (d Decoration) String() string {
	if n, ok := decorationNames[d]; ok {
		return n
	}
	return itoa(uint32(d))
}

var builtInNames = map[BuiltIn]string{
	BuiltInPosition: "Position", BuiltInPointSize: "PointSize",
	BuiltInFragCoord: "FragCoord", BuiltInPointCoord: "PointCoord",
	BuiltInFrontFacing: "FrontFacing", BuiltInSampleID: "SampleId",
	BuiltInFragDepth: "FragDepth", BuiltInNumWorkgroups: "NumWorkgroups",
	BuiltInWorkgroupSize: "WorkgroupSize", BuiltInWorkgroupID: "WorkgroupId",
	BuiltInLocalInvocationID: "LocalInvocationId", BuiltInGlobalInvocationID: "GlobalInvocationId",
	BuiltInLocalInvocationIndex: "LocalInvocationIndex",
	BuiltInVertexIndex:          "VertexIndex", BuiltInInstanceIndex: "InstanceIndex",
}

func (b BuiltIn) String() string {
	if n, ok := builtInNames[b]; ok {
		return n
	}
	return itoa(uint32(b))
}

var executionModelNames = map[ExecutionModel]string{
	ExecutionModelVertex: "Vertex", ExecutionModelGeometry: "Geometry",
	ExecutionModelFragment: "Fragment", ExecutionModelGLCompute: "GLCompute",
}

func (m ExecutionModel) String() string {
	if n, ok := executionModelNames[m]; ok {
		return n
	}
	return itoa(uint32(m))
}

var executionModeNames = map[ExecutionMode]string{
	ExecutionModeOriginUpperLeft: "OriginUpperLeft", ExecutionModeOriginLowerLeft: "OriginLowerLeft",
	ExecutionModeEarlyFragmentTests: "EarlyFragmentTests", ExecutionModeDepthReplacing: "DepthReplacing",
	ExecutionModeLocalSize: "LocalSize",
}

func (m ExecutionMode) String() string {
	if n, ok := executionModeNames[m]; ok {
		return n
	}
	return itoa(uint32(m))
}

var dimNames = map[Dim]string{
	Dim1D: "1D", Dim2D: "2D", Dim3D: "3D", DimCube: "Cube", DimRect: "Rect",
	DimBuffer: "Buffer", DimSubpassData: "SubpassData",
}

func (d Dim) String() string {
	if n, ok := dimNames[d]; ok {
		return n
	}
	return itoa(uint32(d))
}

var imageFormatNames = map[ImageFormat]string{
	ImageFormatUnknown: "Unknown", ImageFormatRgba32f: "Rgba32f", ImageFormatRgba16f: "Rgba16f",
	ImageFormatR32f: "R32f", ImageFormatRgba8: "Rgba8", ImageFormatRgba8Snorm: "Rgba8Snorm",
	ImageFormatRg32f: "Rg32f", ImageFormatRg16f: "Rg16f", ImageFormatR11fG11fB10f: "R11fG11fB10f",
	ImageFormatR16f: "R16f", ImageFormatRgba16: "Rgba16", ImageFormatRgb10A2: "Rgb10A2",
	ImageFormatRg16: "Rg16", ImageFormatRg8: "Rg8", ImageFormatR16: "R16", ImageFormatR8: "R8",
	ImageFormatRgba32i: "Rgba32i", ImageFormatRgba16i: "Rgba16i", ImageFormatRgba8i: "Rgba8i",
	ImageFormatR32i: "R32i", ImageFormatRg32i: "Rg32i", ImageFormatRgba32ui: "Rgba32ui",
	ImageFormatRgba16ui: "Rgba16ui", ImageFormatRgba8ui: "Rgba8ui", ImageFormatR32ui: "R32ui",
	ImageFormatRg32ui: "Rg32ui",
}

func (f ImageFormat) String() string {
	if n, ok := imageFormatNames[f]; ok {
		return n
	}
	return itoa(uint32(f))
}

var addressingNames = map[AddressingModel]string{
	AddressingModelLogical: "Logical", AddressingModelPhysical32: "Physical32",
	AddressingModelPhysical64: "Physical64",
}

var memoryModelNames = map[MemoryModel]string{
	MemoryModelSimple: "Simple", MemoryModelGLSL450: "GLSL450", MemoryModelVulkan: "Vulkan",
}

func itoa(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
