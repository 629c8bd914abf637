package format

import "golang.org/x/exp/constraints"

// Bitfield is a view of Bits bits starting at Offset inside a word of type W.
type Bitfield[W constraints.Unsigned] struct {
	Offset uint8
	Bits   uint8
}

func (f Bitfield[W]) low() W {
	// W(1)<<Bits wraps to zero for a full-width field.
	return W(1)<<f.Bits - 1
}

// Mask returns the bits the field occupies.
func (f Bitfield[W]) Mask() W { return f.low() << f.Offset }

// Max returns the largest value the field holds.
func (f Bitfield[W]) Max() W { return f.low() }

// Get extracts the field from w.
func (f Bitfield[W]) Get(w W) W { return w >> f.Offset & f.low() }

// With returns w with the field replaced by v. Bits of v above the field
// width are dropped.
func (f Bitfield[W]) With(w, v W) W {
	return w&^f.Mask() | (v&f.low())<<f.Offset
}

// Set stores v into the field of *w.
func (f Bitfield[W]) Set(w *W, v W) { *w = f.With(*w, v) }

func field[W constraints.Unsigned](info Info, c Component) (Bitfield[W], bool) {
	for _, ch := range info.Channels {
		if ch.Component == c {
			return Bitfield[W]{Offset: uint8(ch.Offset), Bits: ch.Bits}, true
		}
	}
	return Bitfield[W]{}, false
}

func packedGet[W constraints.Unsigned](info Info, w W, c Component) W {
	f, ok := field[W](info, c)
	if !ok {
		return 0
	}
	return f.Get(w)
}

func packedSet[W constraints.Unsigned](info Info, w W, c Component, v W) W {
	f, ok := field[W](info, c)
	if !ok {
		return w
	}
	return f.With(w, v)
}
