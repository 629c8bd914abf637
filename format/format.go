// Package format describes texel and vertex attribute formats.
//
// Every registered channel combination is a distinct Go type whose memory
// layout matches the Vulkan format it stands for. A combination that is not
// registered has no type, so asking for it fails to compile. Info exposes the
// layout table entry of a type; Encode and Decode convert between the packed
// representation and normalized float colors.
package format

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvkit/spirv"
)

// Component names the logical channel a stored field feeds.
type Component uint8

const (
	R Component = iota
	G
	B
	A
	Depth   = R
	Stencil = G
)

// Kind is the numeric interpretation of one channel.
type Kind uint8

const (
	Unorm Kind = iota
	Snorm
	Uscaled
	Sscaled
	Uint
	Sint
	Float
	Srgb
)

var kindNames = [...]string{"unorm", "snorm", "uscaled", "sscaled", "uint", "sint", "float", "srgb"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ScalarKind is the element type a shader sees when it reads the format.
type ScalarKind uint8

const (
	ScalarFloat ScalarKind = iota
	ScalarSint
	ScalarUint
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarSint:
		return "sint"
	case ScalarUint:
		return "uint"
	}
	return "float"
}

// Aspect mirrors VkImageAspectFlags.
type Aspect uint32

const (
	AspectColor   Aspect = 0x1
	AspectDepth   Aspect = 0x2
	AspectStencil Aspect = 0x4
)

func (a Aspect) String() string {
	var parts []string
	if a&AspectColor != 0 {
		parts = append(parts, "color")
	}
	if a&AspectDepth != 0 {
		parts = append(parts, "depth")
	}
	if a&AspectStencil != 0 {
		parts = append(parts, "stencil")
	}
	return strings.Join(parts, "|")
}

// Order is the memory order of the color channels.
type Order uint8

const (
	OrderRGBA Order = iota
	OrderBGRA
)

// Channel is one stored field. Offset counts bits from the least significant
// bit of the little-endian texel.
type Channel struct {
	Component Component
	Kind      Kind
	Bits      uint8
	Offset    uint16
}

// Info is the layout table entry of a format.
type Info struct {
	Name     string
	Wire     uint32
	Image    spirv.ImageFormat
	Channels []Channel
	Size     int
	Aspect   Aspect
	Order    Order
}

// ChannelCount returns the number of stored channels.
func (i Info) ChannelCount() int { return len(i.Channels) }

// ScalarKind returns the element kind of the first channel. Depth/stencil
// formats report the kind of their depth channel.
func (i Info) ScalarKind() ScalarKind {
	if len(i.Channels) == 0 {
		return ScalarFloat
	}
	switch i.Channels[0].Kind {
	case Uint:
		return ScalarUint
	case Sint:
		return ScalarSint
	}
	return ScalarFloat
}

// Packed reports whether any channel is narrower than a byte or not byte
// aligned.
func (i Info) Packed() bool {
	for _, ch := range i.Channels {
		if ch.Bits%8 != 0 || ch.Offset%8 != 0 {
			return true
		}
	}
	return false
}

func (i Info) String() string {
	var sb strings.Builder
	sb.WriteString(i.Name)
	sb.WriteString(" [")
	for n, ch := range i.Channels {
		if n > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%c:%s%d@%d", "RGBA"[ch.Component], ch.Kind, ch.Bits, ch.Offset)
	}
	sb.WriteByte(']')
	return sb.String()
}

// Format is implemented by every registered format type.
type Format interface {
	Info() Info
}

// Texel constrains generic code to the registered format types.
type Texel interface {
	R8Unorm | RG8Unorm |
		RGBA8Unorm | RGBA8Snorm | RGBA8Uscaled | RGBA8Uint | RGBA8Sint | RGBA8Srgb |
		BGRA8Unorm | BGRA8Srgb |
		R16Float | RG16Float | RGBA16Float | RGBA16Unorm |
		R32Float | RG32Float | RGB32Float | RGBA32Float |
		R32Uint | RG32Uint | RGBA32Uint | R32Sint | RGBA32Sint |
		RGB10A2Unorm | R5G6B5Unorm | RGBA4Unorm | RGB5A1Unorm |
		D16Unorm | D32Float | D24UnormS8Uint | S8Uint
	Format
}

// Of returns the Info of the format type F.
func Of[F Texel]() Info {
	var f F
	return f.Info()
}

// Lookup returns the registered format with the given Vulkan code.
func Lookup(wire uint32) (Info, bool) {
	i, ok := byWire[wire]
	return i, ok
}

// All returns every registered format in table order.
func All() []Info {
	out := make([]Info, len(table))
	copy(out, table)
	return out
}
