package format

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/chewxy/math32"
)

// Color is a linear RGBA value. Depth formats use index 0 for depth and
// index 1 for stencil.
type Color [4]float32

// Encode converts c into the packed representation of F.
func Encode[F Texel](c Color) F {
	var t F
	info := t.Info()
	raw := bytesOf(&t)
	for _, ch := range info.Channels {
		writeBits(raw, ch, encodeChannel(ch, c[ch.Component]))
	}
	return t
}

// Decode converts a packed texel into a color. Missing color channels read
// as zero and missing alpha reads as one.
func Decode[F Texel](t F) Color {
	info := t.Info()
	raw := bytesOf(&t)
	c := Color{0, 0, 0, 1}
	if info.Aspect != AspectColor {
		c[A] = 0
	}
	for _, ch := range info.Channels {
		c[ch.Component] = decodeChannel(ch, readBits(raw, ch))
	}
	return c
}

// bytesOf views a texel as its in-memory bytes. Multi-byte channels are
// read little-endian, which matches the host on every platform Vulkan ships
// for.
func bytesOf[F Texel](t *F) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(t)), unsafe.Sizeof(*t))
}

// window loads up to eight bytes starting at the channel's first byte.
func window(raw []byte, ch Channel) (uint64, Bitfield[uint64], int) {
	start := int(ch.Offset / 8)
	n := (int(ch.Offset%8) + int(ch.Bits) + 7) / 8
	var buf [8]byte
	copy(buf[:], raw[start:start+n])
	return binary.LittleEndian.Uint64(buf[:]), Bitfield[uint64]{Offset: uint8(ch.Offset % 8), Bits: ch.Bits}, n
}

func readBits(raw []byte, ch Channel) uint64 {
	w, f, _ := window(raw, ch)
	return f.Get(w)
}

func writeBits(raw []byte, ch Channel, v uint64) {
	w, f, n := window(raw, ch)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], f.With(w, v))
	copy(raw[int(ch.Offset/8):], buf[:n])
}

func clamp(v, lo, hi float32) float32 {
	if math32.IsNaN(v) {
		return lo
	}
	return math32.Max(lo, math32.Min(hi, v))
}

func clampWide(v float32, lo, hi float64) float64 {
	if math32.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, float64(v)))
}

func encodeChannel(ch Channel, v float32) uint64 {
	f := Bitfield[uint64]{Bits: ch.Bits}
	switch ch.Kind {
	case Unorm, Srgb:
		v = clamp(v, 0, 1)
		if ch.Kind == Srgb {
			v = LinearToSRGB(v)
		}
		return uint64(math32.Round(v * float32(f.Max())))
	case Snorm:
		limit := float32(f.Max() >> 1)
		s := int64(math32.Round(clamp(v, -1, 1) * limit))
		return uint64(s) & f.Max()
	case Uscaled, Uint:
		// float32 cannot hold the 32-bit limits, so saturate in float64.
		return uint64(math.Round(clampWide(v, 0, float64(f.Max()))))
	case Sscaled, Sint:
		hi := float64(f.Max() >> 1)
		s := int64(math.Round(clampWide(v, -hi-1, hi)))
		return uint64(s) & f.Max()
	case Float:
		switch ch.Bits {
		case 16:
			return uint64(Float32ToHalf(v))
		case 64:
			return math.Float64bits(float64(v))
		}
		return uint64(math32.Float32bits(v))
	}
	return 0
}

func decodeChannel(ch Channel, u uint64) float32 {
	f := Bitfield[uint64]{Bits: ch.Bits}
	switch ch.Kind {
	case Unorm:
		return float32(u) / float32(f.Max())
	case Srgb:
		return SRGBToLinear(float32(u) / float32(f.Max()))
	case Snorm:
		return math32.Max(-1, float32(signExtend(u, ch.Bits))/float32(f.Max()>>1))
	case Uscaled, Uint:
		return float32(u)
	case Sscaled, Sint:
		return float32(signExtend(u, ch.Bits))
	case Float:
		switch ch.Bits {
		case 16:
			return HalfToFloat32(uint16(u))
		case 64:
			return float32(math.Float64frombits(u))
		}
		return math32.Float32frombits(uint32(u))
	}
	return 0
}

func signExtend(u uint64, bits uint8) int64 {
	shift := 64 - bits
	return int64(u<<shift) >> shift
}

// LinearToSRGB applies the sRGB encoding transfer function.
func LinearToSRGB(l float32) float32 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math32.Pow(l, 1/2.4) - 0.055
}

// SRGBToLinear applies the sRGB decoding transfer function.
func SRGBToLinear(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math32.Pow((s+0.055)/1.055, 2.4)
}

// Float32ToHalf converts f to an IEEE 754 binary16 bit pattern, rounding to
// nearest even.
func Float32ToHalf(f float32) uint16 {
	b := math32.Float32bits(f)
	sign := uint16(b>>16) & 0x8000
	exp := int32(b>>23&0xff) - 127 + 15
	mant := b & 0x7fffff

	switch {
	case b&0x7fffffff == 0:
		return sign
	case b>>23&0xff == 0xff:
		if mant != 0 {
			return sign | 0x7e00
		}
		return sign | 0x7c00
	case exp >= 0x1f:
		return sign | 0x7c00
	case exp <= 0:
		if exp < -10 {
			return sign
		}
		mant |= 0x800000
		shift := uint32(14 - exp)
		half := mant >> shift
		rem := mant & (1<<shift - 1)
		mid := uint32(1) << (shift - 1)
		if rem > mid || (rem == mid && half&1 != 0) {
			half++
		}
		return sign | uint16(half)
	}

	half := uint32(exp)<<10 | mant>>13
	rem := mant & 0x1fff
	if rem > 0x1000 || (rem == 0x1000 && half&1 != 0) {
		// A carry out of the mantissa correctly bumps the exponent.
		half++
	}
	return sign | uint16(half)
}

// HalfToFloat32 converts an IEEE 754 binary16 bit pattern to float32.
func HalfToFloat32(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h & 0x3ff)

	switch exp {
	case 0:
		if mant == 0 {
			return math32.Float32frombits(sign)
		}
		e := uint32(127 - 15 + 1)
		for mant&0x400 == 0 {
			mant <<= 1
			e--
		}
		mant &= 0x3ff
		return math32.Float32frombits(sign | e<<23 | mant<<13)
	case 0x1f:
		return math32.Float32frombits(sign | 0x7f800000 | mant<<13)
	}
	return math32.Float32frombits(sign | (exp+127-15)<<23 | mant<<13)
}
