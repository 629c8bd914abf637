package vulkan

import (
	"context"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvkit/pipeline"
	"github.com/gogpu/spvkit/programs"
	"github.com/gogpu/spvkit/shader"
)

// openDevice creates a headless logical device on the first GPU, skipping
// the test when no Vulkan loader or device is present.
func openDevice(t *testing.T) *Device {
	t.Helper()
	if vk.SetDefaultGetInstanceProcAddr() != nil || vk.Init() != nil {
		t.Skip("vulkan loader not available")
	}

	var inst vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:            vk.StructureTypeApplicationInfo,
			ApiVersion:       vk.MakeVersion(1, 1, 0),
			PApplicationName: "spvkit\x00",
			PEngineName:      "spvkit\x00",
		},
	}, nil, &inst)
	if ret != vk.Success {
		t.Skipf("vulkan instance: %v", vk.Error(ret))
	}
	t.Cleanup(func() { vk.DestroyInstance(inst, nil) })
	require.NoError(t, vk.InitInstance(inst))

	var count uint32
	if vk.EnumeratePhysicalDevices(inst, &count, nil) != vk.Success || count == 0 {
		t.Skip("no vulkan device")
	}
	gpus := make([]vk.PhysicalDevice, count)
	require.Equal(t, vk.Success, vk.EnumeratePhysicalDevices(inst, &count, gpus))

	var dev vk.Device
	ret = vk.CreateDevice(gpus[0], &vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos: []vk.DeviceQueueCreateInfo{{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: 0,
			QueueCount:       1,
			PQueuePriorities: []float32{1},
		}},
	}, nil, &dev)
	if ret != vk.Success {
		t.Skipf("vulkan device: %v", vk.Error(ret))
	}
	t.Cleanup(func() { vk.DestroyDevice(dev, nil) })
	return NewDevice(gpus[0], dev)
}

func particlesModule(t *testing.T) *shader.Module {
	t.Helper()
	p, err := pipeline.Translate(programs.NewParticles("test", nil), shader.Options{})
	require.NoError(t, err)
	require.Len(t, p.Modules, 1)
	return p.Modules[0]
}

func TestShaderModuleInfo(t *testing.T) {
	m := particlesModule(t)
	info := shaderModuleInfo(m)
	assert.Equal(t, vk.StructureTypeShaderModuleCreateInfo, info.SType)
	assert.Equal(t, uint64(len(m.Binary())), info.CodeSize)
	assert.Equal(t, m.Words, info.PCode)
}

func TestCreateShaderModule(t *testing.T) {
	d := openDevice(t)
	h, err := d.CreateShaderModule(context.Background(), particlesModule(t))
	require.NoError(t, err)
	module, ok := h.(vk.ShaderModule)
	require.True(t, ok)
	assert.NotEqual(t, vk.NullShaderModule, module)
	vk.DestroyShaderModule(d.Device, module, nil)
}
