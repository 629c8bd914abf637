package pipeline

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/gogpu/spvkit/format"
	"github.com/gogpu/spvkit/shader"
)

// DescriptorType mirrors VkDescriptorType.
type DescriptorType uint32

const (
	DescriptorSampler              DescriptorType = 0
	DescriptorCombinedImageSampler DescriptorType = 1
	DescriptorSampledImage         DescriptorType = 2
	DescriptorStorageImage         DescriptorType = 3
	DescriptorUniformBuffer        DescriptorType = 6
	DescriptorStorageBuffer        DescriptorType = 7
)

var descriptorNames = map[DescriptorType]string{
	DescriptorSampler:              "sampler",
	DescriptorCombinedImageSampler: "combined-image-sampler",
	DescriptorSampledImage:         "sampled-image",
	DescriptorStorageImage:         "storage-image",
	DescriptorUniformBuffer:        "uniform-buffer",
	DescriptorStorageBuffer:        "storage-buffer",
}

func (t DescriptorType) String() string {
	if n, ok := descriptorNames[t]; ok {
		return n
	}
	return fmt.Sprintf("DescriptorType(%d)", uint32(t))
}

// DescriptorTypeOf returns the descriptor type of a descriptor binding kind.
func DescriptorTypeOf(k shader.BindingKind) (DescriptorType, bool) {
	switch k {
	case shader.KindUniformBuffer:
		return DescriptorUniformBuffer, true
	case shader.KindStorageBuffer:
		return DescriptorStorageBuffer, true
	case shader.KindTexture:
		return DescriptorSampledImage, true
	case shader.KindSampler:
		return DescriptorSampler, true
	case shader.KindSampledTexture:
		return DescriptorCombinedImageSampler, true
	case shader.KindStorageImage:
		return DescriptorStorageImage, true
	}
	return 0, false
}

// SetBinding is one binding of a descriptor set layout.
type SetBinding struct {
	Name    string
	Binding uint32
	Type    DescriptorType
	Count   uint32
	Stages  shader.StageFlags
}

// SetLayout describes descriptor set Set. Bindings are sorted by binding
// number.
type SetLayout struct {
	Set      uint32
	Bindings []SetBinding
}

// PushRange is a push constant range. Every block starts at offset 0, so
// no two ranges share a stage.
type PushRange struct {
	Name   string
	Stages shader.StageFlags
	Offset uint32
	Size   uint32
}

type VertexBinding struct {
	Binding     uint32
	Stride      uint32
	PerInstance bool
}

type VertexAttribute struct {
	Name     string
	Location uint32
	Binding  uint32
	Offset   uint32
	Format   format.Info
}

type ColorAttachment struct {
	Name     string
	Location uint32
	Format   format.Info
}

// Layout is everything the native pipeline needs besides the modules.
type Layout struct {
	// Sets is dense: gaps in the declared set numbers are filled with
	// empty layouts.
	Sets             []SetLayout
	PushConstants    []PushRange
	VertexBindings   []VertexBinding
	VertexAttributes []VertexAttribute
	ColorAttachments []ColorAttachment
}

// Descriptors returns the total number of descriptors of each type.
func (l *Layout) Descriptors() map[DescriptorType]uint32 {
	out := make(map[DescriptorType]uint32)
	for _, s := range l.Sets {
		for _, b := range s.Bindings {
			out[b.Type] += b.Count
		}
	}
	return out
}

// Binding returns the set binding for set and binding.
func (l *Layout) Binding(set, binding uint32) (SetBinding, bool) {
	if int(set) >= len(l.Sets) {
		return SetBinding{}, false
	}
	bs := l.Sets[set].Bindings
	i := slices.IndexFunc(bs, func(b SetBinding) bool { return b.Binding == binding })
	if i < 0 {
		return SetBinding{}, false
	}
	return bs[i], true
}

// collectLayout builds the layout from binding point snapshots.
func collectLayout(infos []shader.BindingInfo) (Layout, error) {
	var l Layout
	sets := map[uint32][]SetBinding{}
	maxSet := -1
	type slot struct{ set, binding uint32 }
	seen := map[slot]string{}
	buffers := map[uint32]string{}
	outputs := map[uint32]string{}
	var pushStages shader.StageFlags

	for _, info := range infos {
		switch {
		case info.Kind.Descriptor():
			key := slot{info.Set, info.Binding}
			if prev, dup := seen[key]; dup {
				return Layout{}, fmt.Errorf("%w: %s and %s both use set %d binding %d",
					ErrDuplicateBinding, prev, info.Name, info.Set, info.Binding)
			}
			seen[key] = info.Name
			dt, _ := DescriptorTypeOf(info.Kind)
			sets[info.Set] = append(sets[info.Set], SetBinding{
				Name:    info.Name,
				Binding: info.Binding,
				Type:    dt,
				Count:   max(info.Count, 1),
				Stages:  info.Stages,
			})
			maxSet = max(maxSet, int(info.Set))
		case info.Kind == shader.KindPushConstant:
			if info.Stages&pushStages != 0 {
				return Layout{}, fmt.Errorf("%w: push constant %s shares a stage with another block",
					ErrDuplicateBinding, info.Name)
			}
			pushStages |= info.Stages
			if info.Stages != 0 {
				l.PushConstants = append(l.PushConstants, PushRange{Name: info.Name, Stages: info.Stages, Size: info.Size})
			}
		case info.Kind == shader.KindVertexInput || info.Kind == shader.KindInstanceInput:
			if prev, dup := buffers[info.Binding]; dup {
				return Layout{}, fmt.Errorf("%w: %s and %s both use vertex buffer %d",
					ErrDuplicateBinding, prev, info.Name, info.Binding)
			}
			buffers[info.Binding] = info.Name
			l.VertexBindings = append(l.VertexBindings, VertexBinding{
				Binding:     info.Binding,
				Stride:      info.Stride,
				PerInstance: info.Kind == shader.KindInstanceInput,
			})
			for _, a := range info.Attributes {
				l.VertexAttributes = append(l.VertexAttributes, VertexAttribute{
					Name:     info.Name + "." + a.Name,
					Location: a.Location,
					Binding:  info.Binding,
					Offset:   a.Offset,
					Format:   a.Format,
				})
			}
		case info.Kind == shader.KindOutput:
			if prev, dup := outputs[info.Location]; dup {
				return Layout{}, fmt.Errorf("%w: %s and %s both use color attachment %d",
					ErrDuplicateBinding, prev, info.Name, info.Location)
			}
			outputs[info.Location] = info.Name
			l.ColorAttachments = append(l.ColorAttachments, ColorAttachment{
				Name:     info.Name,
				Location: info.Location,
				Format:   info.Format,
			})
		}
	}

	l.Sets = make([]SetLayout, maxSet+1)
	for i := range l.Sets {
		bs := sets[uint32(i)]
		slices.SortFunc(bs, func(a, b SetBinding) int { return int(a.Binding) - int(b.Binding) })
		l.Sets[i] = SetLayout{Set: uint32(i), Bindings: bs}
	}
	slices.SortFunc(l.VertexBindings, func(a, b VertexBinding) int { return int(a.Binding) - int(b.Binding) })
	slices.SortFunc(l.VertexAttributes, func(a, b VertexAttribute) int { return int(a.Location) - int(b.Location) })
	slices.SortFunc(l.ColorAttachments, func(a, b ColorAttachment) int { return int(a.Location) - int(b.Location) })
	return l, nil
}
