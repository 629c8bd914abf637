package format

import (
	"math"
	"testing"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvkit/spirv"
)

func TestRGBA8UnormScenario(t *testing.T) {
	px := Encode[RGBA8Unorm](Color{1, 0.5, 0, 1})
	assert.Equal(t, RGBA8Unorm{255, 128, 0, 255}, px)

	back := Decode(px)
	assert.InDelta(t, 1.0, back[R], 1e-6)
	assert.InDelta(t, 128.0/255.0, back[G], 1e-6)
	assert.InDelta(t, 0.502, back[G], 1e-3)
	assert.InDelta(t, 0.0, back[B], 1e-6)
	assert.InDelta(t, 1.0, back[A], 1e-6)
}

func TestTableMatchesTypeSizes(t *testing.T) {
	sizes := map[string]uintptr{
		"R8Unorm":        unsafe.Sizeof(R8Unorm{}),
		"RGBA8Srgb":      unsafe.Sizeof(RGBA8Srgb{}),
		"RG16Float":      unsafe.Sizeof(RG16Float{}),
		"RGB32Float":     unsafe.Sizeof(RGB32Float{}),
		"RG32Uint":       unsafe.Sizeof(RG32Uint{}),
		"D16Unorm":       unsafe.Sizeof(D16Unorm(0)),
		"D32Float":       unsafe.Sizeof(D32Float(0)),
		"D24UnormS8Uint": unsafe.Sizeof(D24UnormS8Uint(0)),
	}
	for _, info := range All() {
		bits := 0
		for _, ch := range info.Channels {
			bits += int(ch.Bits)
		}
		assert.Equal(t, info.Size*8, bits, "%s channel bits", info.Name)
		if s, ok := sizes[info.Name]; ok {
			assert.Equal(t, int(s), info.Size, info.Name)
		}
	}
}

func TestLookup(t *testing.T) {
	info, ok := Lookup(37)
	require.True(t, ok)
	assert.Equal(t, "RGBA8Unorm", info.Name)
	assert.Equal(t, spirv.ImageFormatRgba8, info.Image)
	assert.Equal(t, 4, info.ChannelCount())
	assert.Equal(t, ScalarFloat, info.ScalarKind())

	info, ok = Lookup(108)
	require.True(t, ok)
	assert.Equal(t, ScalarSint, info.ScalarKind())

	_, ok = Lookup(0)
	assert.False(t, ok)

	seen := map[uint32]string{}
	for _, info := range All() {
		prev, dup := seen[info.Wire]
		assert.False(t, dup, "wire %d shared by %s and %s", info.Wire, prev, info.Name)
		seen[info.Wire] = info.Name
	}
}

func TestOf(t *testing.T) {
	assert.Equal(t, OrderBGRA, Of[BGRA8Srgb]().Order)
	assert.Equal(t, AspectDepth|AspectStencil, Of[D24UnormS8Uint]().Aspect)
	assert.True(t, Of[RGB5A1Unorm]().Packed())
	assert.False(t, Of[RGBA16Float]().Packed())
}

func roundTrip[F Texel](t *testing.T, c Color, tol float32) {
	t.Helper()
	got := Decode(Encode[F](c))
	info := Of[F]()
	for _, ch := range info.Channels {
		assert.InDelta(t, c[ch.Component], got[ch.Component], float64(tol), "%s channel %d", info.Name, ch.Component)
	}
}

func TestRoundTrip(t *testing.T) {
	c := Color{0.25, 0.5, 0.75, 1}
	roundTrip[R8Unorm](t, c, 1.0/255)
	roundTrip[RG8Unorm](t, c, 1.0/255)
	roundTrip[RGBA8Unorm](t, c, 1.0/255)
	roundTrip[BGRA8Unorm](t, c, 1.0/255)
	roundTrip[RGBA16Unorm](t, c, 1.0/65535)
	roundTrip[RGBA16Float](t, c, 1e-3)
	roundTrip[RGBA32Float](t, c, 0)
	roundTrip[RGB32Float](t, c, 0)
	roundTrip[RGB10A2Unorm](t, c, 1.0/1023)
	roundTrip[RGBA4Unorm](t, c, 1.0/15)
	roundTrip[R5G6B5Unorm](t, c, 1.0/31)
	roundTrip[RGBA8Srgb](t, c, 0.01)
	roundTrip[BGRA8Srgb](t, c, 0.01)

	signed := Color{-1, -0.5, 0.5, 1}
	roundTrip[RGBA8Snorm](t, signed, 1.0/127)

	ints := Color{0, 7, 200, 255}
	roundTrip[RGBA8Uint](t, ints, 0)
	roundTrip[RGBA8Uscaled](t, ints, 0)
	roundTrip[RGBA32Uint](t, ints, 0)
	roundTrip[RGBA8Sint](t, Color{-128, -1, 0, 127}, 0)
	roundTrip[RGBA32Sint](t, Color{-70000, -1, 0, 70000}, 0)
}

func TestNormalizedClampAndSaturate(t *testing.T) {
	assert.Equal(t, RGBA8Unorm{0, 255, 255, 0}, Encode[RGBA8Unorm](Color{-3, 2, 1.5, -0.1}))
	assert.Equal(t, RGBA8Snorm{-127, 127, 0, 127}, Encode[RGBA8Snorm](Color{-9, 9, 0, 1}))
	assert.Equal(t, RGBA8Uint{0, 255, 3, 255}, Encode[RGBA8Uint](Color{-4, 1000, 2.6, 255}))
	assert.Equal(t, RGBA8Sint{-128, 127, -3, 0}, Encode[RGBA8Sint](Color{-500, 500, -2.6, 0}))

	// 32-bit channels saturate at their limits instead of wrapping.
	assert.Equal(t, R32Uint{math.MaxUint32}, Encode[R32Uint](Color{1e10}))
	assert.Equal(t, R32Uint{0}, Encode[R32Uint](Color{-1e10}))
	assert.Equal(t, R32Sint{math.MaxInt32}, Encode[R32Sint](Color{3e9}))
	assert.Equal(t, R32Sint{math.MinInt32}, Encode[R32Sint](Color{-3e9}))
	assert.Equal(t, float32(math.MaxInt32), Decode(Encode[R32Sint](Color{3e9}))[R])

	// -128 decodes to -1, not below it.
	assert.Equal(t, float32(-1), Decode(RGBA8Snorm{-128, 0, 0, 0})[R])
}

func TestSRGBAlphaStaysLinear(t *testing.T) {
	px := Encode[RGBA8Srgb](Color{0.5, 0.5, 0.5, 0.5})
	assert.Equal(t, uint8(188), px[0])
	assert.Equal(t, uint8(128), px[3])
}

func TestSRGBTransfer(t *testing.T) {
	for _, v := range []float32{0, 0.001, 0.01, 0.2, 0.5, 0.9, 1} {
		assert.InDelta(t, v, SRGBToLinear(LinearToSRGB(v)), 1e-5)
	}
}

func TestPackedFieldsIndependent(t *testing.T) {
	var p RGB10A2Unorm
	p.Set(R, 1023)
	p.Set(G, 5)
	p.Set(B, 512)
	p.Set(A, 3)
	assert.Equal(t, uint32(1023), p.Get(R))
	assert.Equal(t, uint32(5), p.Get(G))
	assert.Equal(t, uint32(512), p.Get(B))
	assert.Equal(t, uint32(3), p.Get(A))

	p.Set(G, 0)
	assert.Equal(t, uint32(1023), p.Get(R))
	assert.Equal(t, uint32(0), p.Get(G))
	assert.Equal(t, uint32(512), p.Get(B))
	assert.Equal(t, uint32(3), p.Get(A))

	// Values wider than the field are truncated, not spilled into A.
	p.Set(B, 0xfff)
	assert.Equal(t, uint32(3), p.Get(A))
	assert.Equal(t, uint32(0x3ff), p.Get(B))

	var q R5G6B5Unorm
	q.Set(G, 63)
	assert.Equal(t, R5G6B5Unorm(0x07e0), q)
	q.Set(R, 31)
	assert.Equal(t, uint16(63), q.Get(G))

	var s RGB5A1Unorm
	s.Set(A, 1)
	s.Set(R, 31)
	assert.Equal(t, RGB5A1Unorm(0xf801), s)

	var r RGBA4Unorm
	r.Set(R, 0xa)
	r.Set(A, 0x5)
	assert.Equal(t, RGBA4Unorm(0xa005), r)
}

func TestDepthStencil(t *testing.T) {
	var ds D24UnormS8Uint
	ds.SetDepth(0xffffff)
	ds.SetStencil(0x7f)
	assert.Equal(t, uint32(0xffffff), ds.Depth())
	assert.Equal(t, uint8(0x7f), ds.Stencil())
	assert.Equal(t, D24UnormS8Uint(0x7fffffff), ds)

	enc := Encode[D24UnormS8Uint](Color{0.5, 200})
	assert.Equal(t, uint8(200), enc.Stencil())
	assert.InDelta(t, 0.5, Decode(enc)[0], 1e-6)

	assert.Equal(t, D32Float(0.25), Encode[D32Float](Color{0.25}))
	assert.Equal(t, D16Unorm(65535), Encode[D16Unorm](Color{1}))
	assert.Equal(t, S8Uint(9), Encode[S8Uint](Color{0, 9}))
}

func TestBitfield(t *testing.T) {
	f := Bitfield[uint16]{Offset: 4, Bits: 6}
	assert.Equal(t, uint16(0x03f0), f.Mask())
	assert.Equal(t, uint16(63), f.Max())
	assert.Equal(t, uint16(0xfc0f|0x2a<<4), f.With(0xffff, 0x2a))

	full := Bitfield[uint32]{Bits: 32}
	assert.Equal(t, ^uint32(0), full.Max())
	assert.Equal(t, uint32(0xdeadbeef), full.Get(0xdeadbeef))
}

func TestHalfFloat(t *testing.T) {
	tests := []struct {
		in   float32
		want uint16
	}{
		{0, 0x0000},
		{1, 0x3c00},
		{-2, 0xc000},
		{0.5, 0x3800},
		{65504, 0x7bff},
		{1e6, 0x7c00},
		{5.960464477539063e-08, 0x0001},
		{6.103515625e-05, 0x0400},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Float32ToHalf(tt.in), "Float32ToHalf(%g)", tt.in)
		if tt.want != 0x7c00 {
			assert.Equal(t, tt.in, HalfToFloat32(tt.want), "HalfToFloat32(%#x)", tt.want)
		}
	}
	assert.True(t, math32.IsNaN(HalfToFloat32(Float32ToHalf(math32.NaN()))))
}
