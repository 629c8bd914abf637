package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/spvkit/bind"
	"github.com/gogpu/spvkit/pipeline"
	"github.com/gogpu/spvkit/resource"
	"github.com/gogpu/spvkit/shader"
)

// Writer writes descriptor sets allocated on Device.
type Writer struct {
	Device vk.Device
}

var _ bind.Writer = Writer{}

func imageLayout(t pipeline.DescriptorType) vk.ImageLayout {
	if t == pipeline.DescriptorStorageImage {
		return vk.ImageLayoutGeneral
	}
	return vk.ImageLayoutShaderReadOnlyOptimal
}

// nullable is handle that also accepts an untyped nil.
func nullable[T any](h any, what string) (T, error) {
	if h == nil {
		var zero T
		return zero, nil
	}
	return handle[T](h, what)
}

func descriptorWrites(set vk.DescriptorSet, writes []bind.Write) ([]vk.WriteDescriptorSet, error) {
	out := make([]vk.WriteDescriptorSet, 0, len(writes))
	for _, w := range writes {
		wd := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      w.Binding,
			DstArrayElement: w.ArrayElement,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorType(w.Type),
		}
		switch {
		case w.Buffer != nil:
			buf, err := handle[vk.Buffer](w.Buffer.Buffer, w.Name)
			if err != nil {
				return nil, err
			}
			wd.PBufferInfo = []vk.DescriptorBufferInfo{{
				Buffer: buf,
				Offset: vk.DeviceSize(w.Buffer.Offset),
				Range:  vk.DeviceSize(w.Buffer.Range),
			}}
		case w.Image != nil:
			view, err := nullable[vk.ImageView](w.Image.View, w.Name)
			if err != nil {
				return nil, err
			}
			sampler, err := nullable[vk.Sampler](w.Image.Sampler, w.Name)
			if err != nil {
				return nil, err
			}
			wd.PImageInfo = []vk.DescriptorImageInfo{{
				Sampler:     sampler,
				ImageView:   view,
				ImageLayout: imageLayout(w.Type),
			}}
		default:
			return nil, fmt.Errorf("vulkan: write to %s has no resource", w.Name)
		}
		out = append(out, wd)
	}
	return out, nil
}

func (w Writer) WriteDescriptors(set resource.Handle, writes []bind.Write) error {
	ds, err := handle[vk.DescriptorSet](set, "descriptor set")
	if err != nil {
		return err
	}
	wds, err := descriptorWrites(ds, writes)
	if err != nil {
		return err
	}
	vk.UpdateDescriptorSets(w.Device, uint32(len(wds)), wds, 0, nil)
	return nil
}

// Recorder records into Cmd. Handles of the wrong native type panic, as
// any misuse of a command buffer would.
type Recorder struct {
	Cmd vk.CommandBuffer
}

var _ bind.Recorder = Recorder{}

func (r Recorder) BindPipeline(point bind.BindPoint, p pipeline.Handle) {
	vk.CmdBindPipeline(r.Cmd, vk.PipelineBindPoint(point), p.(vk.Pipeline))
}

func (r Recorder) BindVertexBuffers(first uint32, buffers []resource.Handle, offsets []uint64) {
	bufs := make([]vk.Buffer, len(buffers))
	offs := make([]vk.DeviceSize, len(offsets))
	for i, b := range buffers {
		bufs[i] = b.(vk.Buffer)
		offs[i] = vk.DeviceSize(offsets[i])
	}
	vk.CmdBindVertexBuffers(r.Cmd, first, uint32(len(bufs)), bufs, offs)
}

func (r Recorder) BindIndexBuffer(buffer resource.Handle, offset uint64, t bind.IndexType) {
	vk.CmdBindIndexBuffer(r.Cmd, buffer.(vk.Buffer), vk.DeviceSize(offset), vk.IndexType(t))
}

func (r Recorder) PushConstants(layout pipeline.Handle, stages shader.StageFlags, offset uint32, data []byte) {
	if len(data) == 0 {
		return
	}
	vk.CmdPushConstants(r.Cmd, layout.(vk.PipelineLayout), vk.ShaderStageFlags(stages), offset, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (r Recorder) BindDescriptorSets(point bind.BindPoint, layout pipeline.Handle, first uint32, sets []resource.Handle) {
	ds := make([]vk.DescriptorSet, len(sets))
	for i, s := range sets {
		ds[i] = s.(vk.DescriptorSet)
	}
	vk.CmdBindDescriptorSets(r.Cmd, vk.PipelineBindPoint(point), layout.(vk.PipelineLayout), first, uint32(len(ds)), ds, 0, nil)
}
