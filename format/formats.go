package format

import (
	"unsafe"

	"github.com/gogpu/spvkit/spirv"
)

// 8-bit channels.
type (
	R8Unorm      [1]uint8
	RG8Unorm     [2]uint8
	RGBA8Unorm   [4]uint8
	RGBA8Snorm   [4]int8
	RGBA8Uscaled [4]uint8
	RGBA8Uint    [4]uint8
	RGBA8Sint    [4]int8
	RGBA8Srgb    [4]uint8
	BGRA8Unorm   [4]uint8
	BGRA8Srgb    [4]uint8
)

// 16-bit channels. Float channels hold IEEE half bit patterns.
type (
	R16Float    [1]uint16
	RG16Float   [2]uint16
	RGBA16Float [4]uint16
	RGBA16Unorm [4]uint16
)

// 32-bit channels.
type (
	R32Float    [1]float32
	RG32Float   [2]float32
	RGB32Float  [3]float32
	RGBA32Float [4]float32
	R32Uint     [1]uint32
	RG32Uint    [2]uint32
	RGBA32Uint  [4]uint32
	R32Sint     [1]int32
	RGBA32Sint  [4]int32
)

// Packed formats share one backing integer. Use Get and Set to reach the
// individual fields.
type (
	// RGB10A2Unorm is VK_FORMAT_A2B10G10R10_UNORM_PACK32.
	RGB10A2Unorm uint32
	// R5G6B5Unorm is VK_FORMAT_R5G6B5_UNORM_PACK16.
	R5G6B5Unorm uint16
	// RGBA4Unorm is VK_FORMAT_R4G4B4A4_UNORM_PACK16.
	RGBA4Unorm uint16
	// RGB5A1Unorm is VK_FORMAT_R5G5B5A1_UNORM_PACK16.
	RGB5A1Unorm uint16
)

// Depth and stencil.
type (
	D16Unorm uint16
	D32Float float32
	// D24UnormS8Uint keeps depth in the low 24 bits and stencil in the top 8.
	D24UnormS8Uint uint32
	S8Uint         uint8
)

// The layout of every type must match its table entry.
var (
	_ = [1]struct{}{}[unsafe.Sizeof(R8Unorm{})-1]
	_ = [1]struct{}{}[unsafe.Sizeof(RG8Unorm{})-2]
	_ = [1]struct{}{}[unsafe.Sizeof(RGBA8Unorm{})-4]
	_ = [1]struct{}{}[unsafe.Sizeof(RGBA8Snorm{})-4]
	_ = [1]struct{}{}[unsafe.Sizeof(BGRA8Unorm{})-4]
	_ = [1]struct{}{}[unsafe.Sizeof(RGBA16Float{})-8]
	_ = [1]struct{}{}[unsafe.Sizeof(RGBA16Unorm{})-8]
	_ = [1]struct{}{}[unsafe.Sizeof(RGB32Float{})-12]
	_ = [1]struct{}{}[unsafe.Sizeof(RGBA32Float{})-16]
	_ = [1]struct{}{}[unsafe.Sizeof(RGBA32Uint{})-16]
	_ = [1]struct{}{}[unsafe.Sizeof(RGBA32Sint{})-16]
	_ = [1]struct{}{}[unsafe.Sizeof(RGB10A2Unorm(0))-4]
	_ = [1]struct{}{}[unsafe.Sizeof(R5G6B5Unorm(0))-2]
	_ = [1]struct{}{}[unsafe.Sizeof(RGBA4Unorm(0))-2]
	_ = [1]struct{}{}[unsafe.Sizeof(RGB5A1Unorm(0))-2]
	_ = [1]struct{}{}[unsafe.Sizeof(D24UnormS8Uint(0))-4]
	_ = [1]struct{}{}[unsafe.Sizeof(S8Uint(0))-1]
)

// linear builds a byte-aligned entry whose channels follow each other in
// memory.
func linear(name string, wire uint32, img spirv.ImageFormat, kind Kind, bits uint8, comps ...Component) Info {
	info := Info{Name: name, Wire: wire, Image: img, Aspect: AspectColor}
	var off uint16
	for _, c := range comps {
		k := kind
		if kind == Srgb && c == A {
			k = Unorm
		}
		info.Channels = append(info.Channels, Channel{Component: c, Kind: k, Bits: bits, Offset: off})
		off += uint16(bits)
	}
	info.Size = int(off / 8)
	if len(comps) == 4 && comps[0] == B {
		info.Order = OrderBGRA
	}
	return info
}

func packed(name string, wire uint32, img spirv.ImageFormat, size int, chans ...Channel) Info {
	return Info{Name: name, Wire: wire, Image: img, Channels: chans, Size: size, Aspect: AspectColor}
}

func ch(c Component, k Kind, bits uint8, off uint16) Channel {
	return Channel{Component: c, Kind: k, Bits: bits, Offset: off}
}

var (
	infoR8Unorm      = linear("R8Unorm", 9, spirv.ImageFormatR8, Unorm, 8, R)
	infoRG8Unorm     = linear("RG8Unorm", 16, spirv.ImageFormatRg8, Unorm, 8, R, G)
	infoRGBA8Unorm   = linear("RGBA8Unorm", 37, spirv.ImageFormatRgba8, Unorm, 8, R, G, B, A)
	infoRGBA8Snorm   = linear("RGBA8Snorm", 38, spirv.ImageFormatRgba8Snorm, Snorm, 8, R, G, B, A)
	infoRGBA8Uscaled = linear("RGBA8Uscaled", 39, spirv.ImageFormatUnknown, Uscaled, 8, R, G, B, A)
	infoRGBA8Uint    = linear("RGBA8Uint", 41, spirv.ImageFormatRgba8ui, Uint, 8, R, G, B, A)
	infoRGBA8Sint    = linear("RGBA8Sint", 42, spirv.ImageFormatRgba8i, Sint, 8, R, G, B, A)
	infoRGBA8Srgb    = linear("RGBA8Srgb", 43, spirv.ImageFormatUnknown, Srgb, 8, R, G, B, A)
	infoBGRA8Unorm   = linear("BGRA8Unorm", 44, spirv.ImageFormatUnknown, Unorm, 8, B, G, R, A)
	infoBGRA8Srgb    = linear("BGRA8Srgb", 50, spirv.ImageFormatUnknown, Srgb, 8, B, G, R, A)

	infoR16Float    = linear("R16Float", 76, spirv.ImageFormatR16f, Float, 16, R)
	infoRG16Float   = linear("RG16Float", 83, spirv.ImageFormatRg16f, Float, 16, R, G)
	infoRGBA16Unorm = linear("RGBA16Unorm", 91, spirv.ImageFormatRgba16, Unorm, 16, R, G, B, A)
	infoRGBA16Float = linear("RGBA16Float", 97, spirv.ImageFormatRgba16f, Float, 16, R, G, B, A)

	infoR32Uint     = linear("R32Uint", 98, spirv.ImageFormatR32ui, Uint, 32, R)
	infoR32Sint     = linear("R32Sint", 99, spirv.ImageFormatR32i, Sint, 32, R)
	infoR32Float    = linear("R32Float", 100, spirv.ImageFormatR32f, Float, 32, R)
	infoRG32Uint    = linear("RG32Uint", 101, spirv.ImageFormatRg32ui, Uint, 32, R, G)
	infoRG32Float   = linear("RG32Float", 103, spirv.ImageFormatRg32f, Float, 32, R, G)
	infoRGB32Float  = linear("RGB32Float", 106, spirv.ImageFormatUnknown, Float, 32, R, G, B)
	infoRGBA32Uint  = linear("RGBA32Uint", 107, spirv.ImageFormatRgba32ui, Uint, 32, R, G, B, A)
	infoRGBA32Sint  = linear("RGBA32Sint", 108, spirv.ImageFormatRgba32i, Sint, 32, R, G, B, A)
	infoRGBA32Float = linear("RGBA32Float", 109, spirv.ImageFormatRgba32f, Float, 32, R, G, B, A)

	infoRGB10A2Unorm = packed("RGB10A2Unorm", 64, spirv.ImageFormatRgb10A2, 4,
		ch(R, Unorm, 10, 0), ch(G, Unorm, 10, 10), ch(B, Unorm, 10, 20), ch(A, Unorm, 2, 30))
	infoR5G6B5Unorm = packed("R5G6B5Unorm", 4, spirv.ImageFormatUnknown, 2,
		ch(R, Unorm, 5, 11), ch(G, Unorm, 6, 5), ch(B, Unorm, 5, 0))
	infoRGBA4Unorm = packed("RGBA4Unorm", 2, spirv.ImageFormatUnknown, 2,
		ch(R, Unorm, 4, 12), ch(G, Unorm, 4, 8), ch(B, Unorm, 4, 4), ch(A, Unorm, 4, 0))
	infoRGB5A1Unorm = packed("RGB5A1Unorm", 6, spirv.ImageFormatUnknown, 2,
		ch(R, Unorm, 5, 11), ch(G, Unorm, 5, 6), ch(B, Unorm, 5, 1), ch(A, Unorm, 1, 0))

	infoD16Unorm = Info{Name: "D16Unorm", Wire: 124, Size: 2, Aspect: AspectDepth,
		Channels: []Channel{ch(Depth, Unorm, 16, 0)}}
	infoD32Float = Info{Name: "D32Float", Wire: 126, Size: 4, Aspect: AspectDepth,
		Channels: []Channel{ch(Depth, Float, 32, 0)}}
	infoS8Uint = Info{Name: "S8Uint", Wire: 127, Size: 1, Aspect: AspectStencil,
		Channels: []Channel{ch(Stencil, Uint, 8, 0)}}
	infoD24UnormS8Uint = Info{Name: "D24UnormS8Uint", Wire: 129, Size: 4, Aspect: AspectDepth | AspectStencil,
		Channels: []Channel{ch(Depth, Unorm, 24, 0), ch(Stencil, Uint, 8, 24)}}
)

var table = []Info{
	infoR8Unorm, infoRG8Unorm,
	infoRGBA8Unorm, infoRGBA8Snorm, infoRGBA8Uscaled, infoRGBA8Uint, infoRGBA8Sint, infoRGBA8Srgb,
	infoBGRA8Unorm, infoBGRA8Srgb,
	infoR16Float, infoRG16Float, infoRGBA16Float, infoRGBA16Unorm,
	infoR32Float, infoRG32Float, infoRGB32Float, infoRGBA32Float,
	infoR32Uint, infoRG32Uint, infoRGBA32Uint, infoR32Sint, infoRGBA32Sint,
	infoRGB10A2Unorm, infoR5G6B5Unorm, infoRGBA4Unorm, infoRGB5A1Unorm,
	infoD16Unorm, infoD32Float, infoD24UnormS8Uint, infoS8Uint,
}

var byWire = func() map[uint32]Info {
	m := make(map[uint32]Info, len(table))
	for _, info := range table {
		m[info.Wire] = info
	}
	return m
}()

func (R8Unorm) Info() Info      { return infoR8Unorm }
func (RG8Unorm) Info() Info     { return infoRG8Unorm }
func (RGBA8Unorm) Info() Info   { return infoRGBA8Unorm }
func (RGBA8Snorm) Info() Info   { return infoRGBA8Snorm }
func (RGBA8Uscaled) Info() Info { return infoRGBA8Uscaled }
func (RGBA8Uint) Info() Info    { return infoRGBA8Uint }
func (RGBA8Sint) Info() Info    { return infoRGBA8Sint }
func (RGBA8Srgb) Info() Info    { return infoRGBA8Srgb }
func (BGRA8Unorm) Info() Info   { return infoBGRA8Unorm }
func (BGRA8Srgb) Info() Info    { return infoBGRA8Srgb }

func (R16Float) Info() Info    { return infoR16Float }
func (RG16Float) Info() Info   { return infoRG16Float }
func (RGBA16Float) Info() Info { return infoRGBA16Float }
func (RGBA16Unorm) Info() Info { return infoRGBA16Unorm }

func (R32Float) Info() Info    { return infoR32Float }
func (RG32Float) Info() Info   { return infoRG32Float }
func (RGB32Float) Info() Info  { return infoRGB32Float }
func (RGBA32Float) Info() Info { return infoRGBA32Float }
func (R32Uint) Info() Info     { return infoR32Uint }
func (RG32Uint) Info() Info    { return infoRG32Uint }
func (RGBA32Uint) Info() Info  { return infoRGBA32Uint }
func (R32Sint) Info() Info     { return infoR32Sint }
func (RGBA32Sint) Info() Info  { return infoRGBA32Sint }

func (RGB10A2Unorm) Info() Info { return infoRGB10A2Unorm }
func (R5G6B5Unorm) Info() Info  { return infoR5G6B5Unorm }
func (RGBA4Unorm) Info() Info   { return infoRGBA4Unorm }
func (RGB5A1Unorm) Info() Info  { return infoRGB5A1Unorm }

func (D16Unorm) Info() Info       { return infoD16Unorm }
func (D32Float) Info() Info       { return infoD32Float }
func (D24UnormS8Uint) Info() Info { return infoD24UnormS8Uint }
func (S8Uint) Info() Info         { return infoS8Uint }

// Get returns the raw value of one packed field.
func (p RGB10A2Unorm) Get(c Component) uint32 { return packedGet(infoRGB10A2Unorm, uint32(p), c) }

// Set replaces one packed field, leaving the others untouched.
func (p *RGB10A2Unorm) Set(c Component, v uint32) {
	*p = RGB10A2Unorm(packedSet(infoRGB10A2Unorm, uint32(*p), c, v))
}

func (p R5G6B5Unorm) Get(c Component) uint16 { return packedGet(infoR5G6B5Unorm, uint16(p), c) }

func (p *R5G6B5Unorm) Set(c Component, v uint16) {
	*p = R5G6B5Unorm(packedSet(infoR5G6B5Unorm, uint16(*p), c, v))
}

func (p RGBA4Unorm) Get(c Component) uint16 { return packedGet(infoRGBA4Unorm, uint16(p), c) }

func (p *RGBA4Unorm) Set(c Component, v uint16) {
	*p = RGBA4Unorm(packedSet(infoRGBA4Unorm, uint16(*p), c, v))
}

func (p RGB5A1Unorm) Get(c Component) uint16 { return packedGet(infoRGB5A1Unorm, uint16(p), c) }

func (p *RGB5A1Unorm) Set(c Component, v uint16) {
	*p = RGB5A1Unorm(packedSet(infoRGB5A1Unorm, uint16(*p), c, v))
}

// Depth returns the 24-bit depth field.
func (p D24UnormS8Uint) Depth() uint32 { return packedGet(infoD24UnormS8Uint, uint32(p), Depth) }

// Stencil returns the stencil byte.
func (p D24UnormS8Uint) Stencil() uint8 {
	return uint8(packedGet(infoD24UnormS8Uint, uint32(p), Stencil))
}

func (p *D24UnormS8Uint) SetDepth(v uint32) {
	*p = D24UnormS8Uint(packedSet(infoD24UnormS8Uint, uint32(*p), Depth, v))
}

func (p *D24UnormS8Uint) SetStencil(v uint8) {
	*p = D24UnormS8Uint(packedSet(infoD24UnormS8Uint, uint32(*p), Stencil, uint32(v)))
}
