package spirv

// GLSLstd450 is an instruction number of the GLSL.std.450 extended
// instruction set, used as the instruction operand of OpExtInst.
type GLSLstd450 uint32

// GLSL.std.450 instructions.
const (
	GLSLRound          GLSLstd450 = 1
	GLSLRoundEven      GLSLstd450 = 2
	GLSLTrunc          GLSLstd450 = 3
	GLSLFAbs           GLSLstd450 = 4
	GLSLSAbs           GLSLstd450 = 5
	GLSLFSign          GLSLstd450 = 6
	GLSLSSign          GLSLstd450 = 7
	GLSLFloor          GLSLstd450 = 8
	GLSLCeil           GLSLstd450 = 9
	GLSLFract          GLSLstd450 = 10
	GLSLRadians        GLSLstd450 = 11
	GLSLDegrees        GLSLstd450 = 12
	GLSLSin            GLSLstd450 = 13
	GLSLCos            GLSLstd450 = 14
	GLSLTan            GLSLstd450 = 15
	GLSLAsin           GLSLstd450 = 16
	GLSLAcos           GLSLstd450 = 17
	GLSLAtan           GLSLstd450 = 18
	GLSLAtan2          GLSLstd450 = 25
	GLSLPow            GLSLstd450 = 26
	GLSLExp            GLSLstd450 = 27
	GLSLLog            GLSLstd450 = 28
	GLSLExp2           GLSLstd450 = 29
	GLSLLog2           GLSLstd450 = 30
	GLSLSqrt           GLSLstd450 = 31
	GLSLInverseSqrt    GLSLstd450 = 32
	GLSLDeterminant    GLSLstd450 = 33
	GLSLMatrixInv      GLSLstd450 = 34
	GLSLFMin           GLSLstd450 = 37
	GLSLUMin           GLSLstd450 = 38
	GLSLSMin           GLSLstd450 = 39
	GLSLFMax           GLSLstd450 = 40
	GLSLUMax           GLSLstd450 = 41
	GLSLSMax           GLSLstd450 = 42
	GLSLFClamp         GLSLstd450 = 43
	GLSLUClamp         GLSLstd450 = 44
	GLSLSClamp         GLSLstd450 = 45
	GLSLFMix           GLSLstd450 = 46
	GLSLStep           GLSLstd450 = 48
	GLSLSmoothStep     GLSLstd450 = 49
	GLSLFma            GLSLstd450 = 50
	GLSLPackUnorm4x8   GLSLstd450 = 55
	GLSLUnpackUnorm4x8 GLSLstd450 = 64
	GLSLLength         GLSLstd450 = 66
	GLSLDistance       GLSLstd450 = 67
	GLSLCross          GLSLstd450 = 68
	GLSLNormalize      GLSLstd450 = 69
	GLSLFaceForward    GLSLstd450 = 70
	GLSLReflect        GLSLstd450 = 71
	GLSLRefract        GLSLstd450 = 72
)

// GLSLImportName is the name passed to OpExtInstImport.
const GLSLImportName = "GLSL.std.450"

var glslNames = map[GLSLstd450]string{
	GLSLRound: "Round", GLSLRoundEven: "RoundEven", GLSLTrunc: "Trunc",
	GLSLFAbs: "FAbs", GLSLSAbs: "SAbs", GLSLFSign: "FSign", GLSLSSign: "SSign",
	GLSLFloor: "Floor", GLSLCeil: "Ceil", GLSLFract: "Fract",
	GLSLRadians: "Radians", GLSLDegrees: "Degrees",
	GLSLSin: "Sin", GLSLCos: "Cos", GLSLTan: "Tan",
	GLSLAsin: "Asin", GLSLAcos: "Acos", GLSLAtan: "Atan", GLSLAtan2: "Atan2",
	GLSLPow: "Pow", GLSLExp: "Exp", GLSLLog: "Log", GLSLExp2: "Exp2", GLSLLog2: "Log2",
	GLSLSqrt: "Sqrt", GLSLInverseSqrt: "InverseSqrt",
	GLSLDeterminant: "Determinant", GLSLMatrixInv: "MatrixInverse",
	GLSLFMin: "FMin", GLSLUMin: "UMin", GLSLSMin: "SMin",
	GLSLFMax: "FMax", GLSLUMax: "UMax", GLSLSMax: "SMax",
	GLSLFClamp: "FClamp", GLSLUClamp: "UClamp", GLSLSClamp: "SClamp",
	GLSLFMix: "FMix", GLSLStep: "Step", GLSLSmoothStep: "SmoothStep", GLSLFma: "Fma",
	GLSLPackUnorm4x8: "PackUnorm4x8", GLSLUnpackUnorm4x8: "UnpackUnorm4x8",
	GLSLLength: "Length", GLSLDistance: "Distance", GLSLCross: "Cross",
	GLSLNormalize: "Normalize", GLSLFaceForward: "FaceForward",
	GLSLReflect: "Reflect", GLSLRefract: "Refract",
}

func (g GLSLstd450) String() string {
	if s, ok := glslNames[g]; ok {
		return s
	}
	return "GLSL" + itoa(uint32(g))
}
