package core

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Ceichert31/VulkanRenderer/model"
)

const defaultFramesInFlight = 2

// NewVulkanRenderer creates a not yet initialised Vulkan API renderer.
// The best available physical device is selected here, once; a failed
// selection is surfaced as NoSuitableDeviceError.
func NewVulkanRenderer(instance Instance, cfg RendererConfiguration, sizer FramebufferSizer, reporter Reporter) (Renderer, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}
	if cfg.FramesInFlight <= 0 {
		cfg.FramesInFlight = defaultFramesInFlight
	}

	physicalDevice, profile, err := instance.SelectPhysicalDevice(cfg.Selection)
	if err != nil {
		return nil, err
	}

	return &VulkanRenderer{
		configuration:  cfg,
		surface:        instance.Surface(),
		physicalDevice: physicalDevice,
		deviceProfile:  profile,
		sizer:          sizer,
		reporter:       reporter,
	}, nil
}

// VulkanRenderer is a Vulkan API renderer
type VulkanRenderer struct {
	configuration RendererConfiguration

	reporter Reporter
	sizer    FramebufferSizer

	surface        vk.Surface
	physicalDevice vk.PhysicalDevice
	deviceProfile  DeviceProfile
	queueFamilies  QueueFamilyIndices

	logicalDevice vk.Device
	graphicsQueue vk.Queue
	presentQueue  vk.Queue

	swapchain *SwapchainLifecycleManager

	shaders []Shader

	viewport vk.Viewport
	scissor  vk.Rect2D

	pipelineLayout vk.PipelineLayout
	pipeline       vk.Pipeline
	pipelineCache  vk.PipelineCache
	renderPass     vk.RenderPass

	vertexBuffer vk.Buffer
	vertexMemory vk.DeviceMemory
	vertexCount  uint32

	commandPool    vk.CommandPool
	commandBuffers []vk.CommandBuffer

	frames       []frameSlot
	currentFrame int

	framebufferResized bool
}

// frameSlot is one bounded in-flight frame: its fence gates reuse,
// the semaphore pair orders acquire before submit before present.
type frameSlot struct {
	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
	inFlight       vk.Fence
}

// Initialise implements interface
func (v *VulkanRenderer) Initialise() error {
	v.queueFamilies = FindQueueFamilies(v.physicalDevice, v.surface)
	if !v.queueFamilies.Complete() {
		return errors.New("selected device lost its graphics or present queue family")
	}

	if err := v.createLogicalDevice(); err != nil {
		return err
	}

	backend := &vulkanSwapchainBackend{renderer: v}
	v.swapchain = NewSwapchainLifecycleManager(backend, v.sizer, v.reporter)
	if err := v.swapchain.Initialize(); err != nil {
		return err
	}

	v.createViewport()

	if err := v.createRenderPass(); err != nil {
		return err
	}

	if err := v.swapchain.CreateFramebuffers(); err != nil {
		return err
	}

	if err := v.loadShaders(); err != nil {
		return err
	}

	if err := v.createPipelineCache(); err != nil {
		return err
	}

	if err := v.createPipelineLayout(); err != nil {
		return err
	}

	if err := v.createPipeline(); err != nil {
		return err
	}

	if err := v.createCommandPool(); err != nil {
		return err
	}

	if err := v.createVertexBuffer(); err != nil {
		return err
	}

	if err := v.allocateCommandBuffers(); err != nil {
		return err
	}

	if err := v.createSynchronization(); err != nil {
		return err
	}

	/* Fill in command buffers */
	if err := v.buildCommandBuffers(); err != nil {
		return err
	}

	return nil
}

func (v *VulkanRenderer) createLogicalDevice() error {
	queueInfos := []vk.DeviceQueueCreateInfo{}
	for _, family := range v.queueFamilies.uniqueQueueFamilies() {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	extensions := safeStrings(v.configuration.Selection.DeviceExtensions)
	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	var vkDevice vk.Device
	if err := vk.Error(vk.CreateDevice(v.physicalDevice, &dci, nil, &vkDevice)); err != nil {
		return errors.New("vk.CreateDevice(): " + err.Error())
	}
	v.logicalDevice = vkDevice

	var graphicsQueue, presentQueue vk.Queue
	vk.GetDeviceQueue(vkDevice, *v.queueFamilies.Graphics, 0, &graphicsQueue)
	vk.GetDeviceQueue(vkDevice, *v.queueFamilies.Present, 0, &presentQueue)
	v.graphicsQueue = graphicsQueue
	v.presentQueue = presentQueue
	return nil
}

func (v *VulkanRenderer) createViewport() {
	extent := v.swapchain.Config().Extent
	v.viewport = vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	v.scissor = vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}
}

func (v *VulkanRenderer) createRenderPass() error {
	colorAttachment := vk.AttachmentDescription{
		Format:         v.swapchain.Config().Format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}

	colorAttachmentRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpassDependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorAttachmentRef)),
		PColorAttachments:    colorAttachmentRef,
	}

	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{colorAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{subpassDependency},
	}

	var renderPass vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(v.logicalDevice, &rpci, nil, &renderPass)); err != nil {
		return errors.New("vk.CreateRenderPass(): " + err.Error())
	}
	v.renderPass = renderPass
	return nil
}

func (v *VulkanRenderer) loadShaders() error {
	var shaders []Shader

	if len(v.configuration.Shaders) > 0 {
		for _, data := range v.configuration.Shaders {
			shader, err := NewVulkanShaderFromBytes(data.Name, data.Type, data.Code, v.logicalDevice)
			if err != nil {
				return err
			}
			shaders = append(shaders, shader)
		}
		v.shaders = shaders
		return nil
	}

	shaderFiles, shaderTypes, err := loadShaderFilesFromDirectory(v.configuration.ShaderDirectory)
	if err != nil {
		return err
	}
	for idx, val := range shaderFiles {
		shader, err := NewVulkanShader(val, shaderTypes[idx], v.logicalDevice)
		if err != nil {
			return err
		}
		shaders = append(shaders, shader)
	}
	v.shaders = shaders
	return nil
}

func (v *VulkanRenderer) createPipelineCache() error {
	pcci := vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}

	var pipelineCache vk.PipelineCache
	if err := vk.Error(vk.CreatePipelineCache(v.logicalDevice, &pcci, nil, &pipelineCache)); err != nil {
		return errors.New("vk.CreatePipelineCache(): " + err.Error())
	}
	v.pipelineCache = pipelineCache
	return nil
}

func (v *VulkanRenderer) createPipelineLayout() error {
	plci := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}

	var pipelineLayout vk.PipelineLayout
	if err := vk.Error(vk.CreatePipelineLayout(v.logicalDevice, &plci, nil, &pipelineLayout)); err != nil {
		return errors.New("vk.CreatePipelineLayout(): " + err.Error())
	}
	v.pipelineLayout = pipelineLayout
	return nil
}

func (v *VulkanRenderer) createPipeline() error {
	pipelineShaderStagesInfo := make([]vk.PipelineShaderStageCreateInfo, len(v.shaders))
	for idx, shader := range v.shaders {
		var stage vk.ShaderStageFlagBits
		switch shader.Type() {
		case VertexShaderType:
			stage = vk.ShaderStageVertexBit
		case FragmentShaderType:
			stage = vk.ShaderStageFragmentBit
		default:
			return errors.New("unsupported shader type attempted creation")
		}

		var shaderModule vk.ShaderModule
		if sm, ok := shader.ShaderModule().(vk.ShaderModule); ok {
			shaderModule = sm
		} else {
			return errors.New("failed to assert shader module to it's original type")
		}

		pipelineShaderStagesInfo[idx].SType = vk.StructureTypePipelineShaderStageCreateInfo
		pipelineShaderStagesInfo[idx].Stage = stage
		pipelineShaderStagesInfo[idx].Module = shaderModule
		pipelineShaderStagesInfo[idx].PName = "main\x00"
	}

	gpci := []vk.GraphicsPipelineCreateInfo{{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(pipelineShaderStagesInfo)),
		PStages:    pipelineShaderStagesInfo,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
			VertexBindingDescriptionCount:   1,
			PVertexBindingDescriptions:      model.VertexBindingDescriptions(),
			VertexAttributeDescriptionCount: uint32(len(model.VertexAttributeDescriptions())),
			PVertexAttributeDescriptions:    model.VertexAttributeDescriptions(),
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopologyTriangleList,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(vk.CullModeBackBit),
			FrontFace:   vk.FrontFaceClockwise,
			LineWidth:   1.0,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: 1,
			PAttachments: []vk.PipelineColorBlendAttachmentState{{
				ColorWriteMask: 0xF,
				BlendEnable:    vk.False,
			}},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates: []vk.DynamicState{
				vk.DynamicStateScissor,
				vk.DynamicStateViewport,
			},
		},
		Layout:     v.pipelineLayout,
		RenderPass: v.renderPass,
	}}

	pipelines := make([]vk.Pipeline, len(gpci))
	if err := vk.Error(vk.CreateGraphicsPipelines(v.logicalDevice, v.pipelineCache, uint32(len(gpci)), gpci, nil, pipelines)); err != nil {
		return errors.New("vk.CreateGraphicsPipelines(): " + err.Error())
	}
	v.pipeline = pipelines[0]
	return nil
}

func (v *VulkanRenderer) createCommandPool() error {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: *v.queueFamilies.Graphics,
	}

	var commandPool vk.CommandPool
	if err := vk.Error(vk.CreateCommandPool(v.logicalDevice, &cpci, nil, &commandPool)); err != nil {
		return errors.New("vk.CreateCommandPool(): " + err.Error())
	}
	v.commandPool = commandPool
	return nil
}

func (v *VulkanRenderer) createVertexBuffer() error {
	vertices := model.TriangleVertices()
	data := model.VertexBytes(vertices)

	bci := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(len(data)),
		Usage:       vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit),
		SharingMode: vk.SharingModeExclusive,
	}

	var buffer vk.Buffer
	if err := vk.Error(vk.CreateBuffer(v.logicalDevice, &bci, nil, &buffer)); err != nil {
		return errors.New("vk.CreateBuffer(): " + err.Error())
	}

	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(v.logicalDevice, buffer, &memoryRequirements)
	memoryRequirements.Deref()

	memoryType, err := v.getMemoryType(memoryRequirements.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return err
	}

	mai := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: memoryType,
	}

	var memory vk.DeviceMemory
	if err := vk.Error(vk.AllocateMemory(v.logicalDevice, &mai, nil, &memory)); err != nil {
		return errors.New("vk.AllocateMemory(): " + err.Error())
	}

	if err := vk.Error(vk.BindBufferMemory(v.logicalDevice, buffer, memory, 0)); err != nil {
		return errors.New("vk.BindBufferMemory(): " + err.Error())
	}

	var mapped unsafe.Pointer
	if err := vk.Error(vk.MapMemory(v.logicalDevice, memory, 0, vk.DeviceSize(len(data)), 0, &mapped)); err != nil {
		return errors.New("vk.MapMemory(): " + err.Error())
	}
	vk.Memcopy(mapped, data)
	vk.UnmapMemory(v.logicalDevice, memory)

	v.vertexBuffer = buffer
	v.vertexMemory = memory
	v.vertexCount = uint32(len(vertices))
	return nil
}

func (v *VulkanRenderer) getMemoryType(typeBits uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(v.physicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for idx := uint32(0); idx < memoryProperties.MemoryTypeCount; idx++ {
		if (typeBits & 1) == 1 {
			memoryProperties.MemoryTypes[idx].Deref()
			if (memoryProperties.MemoryTypes[idx].PropertyFlags & properties) == properties {
				return idx, nil
			}
		}
		typeBits >>= 1
	}
	return 0, errors.New("requested memory type not found")
}

func (v *VulkanRenderer) allocateCommandBuffers() error {
	count := len(v.swapchain.Resources().Framebuffers)
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        v.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}

	commandBuffers := make([]vk.CommandBuffer, count)
	if err := vk.Error(vk.AllocateCommandBuffers(v.logicalDevice, &cbai, commandBuffers)); err != nil {
		return errors.New("vk.AllocateCommandBuffers(): " + err.Error())
	}
	v.commandBuffers = commandBuffers
	return nil
}

func (v *VulkanRenderer) buildCommandBuffers() error {
	for idx, commandBuffer := range v.commandBuffers {
		cbbi := vk.CommandBufferBeginInfo{
			SType: vk.StructureTypeCommandBufferBeginInfo,
			Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit),
		}
		if err := vk.Error(vk.BeginCommandBuffer(commandBuffer, &cbbi)); err != nil {
			return fmt.Errorf("vk.BeginCommandBuffer()[%d]: %s", idx, err.Error())
		}

		clearValues := make([]vk.ClearValue, 1)
		clearValues[0].SetColor([]float32{0.0, 0.0, 0.0, 1.0})

		rpbi := vk.RenderPassBeginInfo{
			SType:       vk.StructureTypeRenderPassBeginInfo,
			RenderPass:  v.renderPass,
			Framebuffer: v.swapchain.Resources().Framebuffers[idx],
			RenderArea: vk.Rect2D{
				Offset: vk.Offset2D{X: 0, Y: 0},
				Extent: v.swapchain.Config().Extent,
			},
			ClearValueCount: 1,
			PClearValues:    clearValues,
		}
		vk.CmdBeginRenderPass(commandBuffer, &rpbi, vk.SubpassContentsInline)
		vk.CmdBindPipeline(commandBuffer, vk.PipelineBindPointGraphics, v.pipeline)
		vk.CmdSetViewport(commandBuffer, 0, 1, []vk.Viewport{v.viewport})
		vk.CmdSetScissor(commandBuffer, 0, 1, []vk.Rect2D{v.scissor})
		vk.CmdBindVertexBuffers(commandBuffer, 0, 1, []vk.Buffer{v.vertexBuffer}, []vk.DeviceSize{0})
		vk.CmdDraw(commandBuffer, v.vertexCount, 1, 0, 0)
		vk.CmdEndRenderPass(commandBuffer)

		if err := vk.Error(vk.EndCommandBuffer(commandBuffer)); err != nil {
			return fmt.Errorf("vk.EndCommandBuffer()[%d]: %s", idx, err.Error())
		}
	}
	return nil
}

func (v *VulkanRenderer) createSynchronization() error {
	sci := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	fci := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}

	frames := make([]frameSlot, v.configuration.FramesInFlight)
	for i := range frames {
		if err := vk.Error(vk.CreateSemaphore(v.logicalDevice, &sci, nil, &frames[i].imageAvailable)); err != nil {
			return errors.New("vk.CreateSemaphore(): " + err.Error())
		}
		if err := vk.Error(vk.CreateSemaphore(v.logicalDevice, &sci, nil, &frames[i].renderFinished)); err != nil {
			return errors.New("vk.CreateSemaphore(): " + err.Error())
		}
		if err := vk.Error(vk.CreateFence(v.logicalDevice, &fci, nil, &frames[i].inFlight)); err != nil {
			return errors.New("vk.CreateFence(): " + err.Error())
		}
	}
	v.frames = frames
	return nil
}

// ResizeNotify implements interface
func (v *VulkanRenderer) ResizeNotify() {
	v.framebufferResized = true
	v.swapchain.Invalidate()
}

// refreshPresentation recreates the swapchain resources and everything
// recorded against them after an invalidation.
func (v *VulkanRenderer) refreshPresentation() error {
	if width, height := v.sizer.FramebufferSize(); width == 0 || height == 0 {
		// Minimized; nothing to present to until the window comes back.
		return nil
	}

	v.swapchain.Invalidate()
	if err := v.swapchain.Recreate(); err != nil {
		return err
	}

	v.createViewport()

	vk.FreeCommandBuffers(v.logicalDevice, v.commandPool, uint32(len(v.commandBuffers)), v.commandBuffers)
	if err := v.allocateCommandBuffers(); err != nil {
		return err
	}
	return v.buildCommandBuffers()
}

// Draw implements interface
func (v *VulkanRenderer) Draw() error {
	frame := &v.frames[v.currentFrame]

	vk.WaitForFences(v.logicalDevice, 1, []vk.Fence{frame.inFlight}, vk.True, math.MaxUint64)

	var imageIndex uint32
	result := vk.AcquireNextImage(v.logicalDevice, v.swapchain.Resources().Swapchain,
		math.MaxUint64, frame.imageAvailable, vk.NullFence, &imageIndex)
	if result == vk.ErrorOutOfDate {
		return v.refreshPresentation()
	}
	if result != vk.Success && result != vk.Suboptimal {
		return errors.New("vk.AcquireNextImage(): " + vk.Error(result).Error())
	}

	vk.ResetFences(v.logicalDevice, 1, []vk.Fence{frame.inFlight})

	submit := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{frame.imageAvailable},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{v.commandBuffers[imageIndex]},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{frame.renderFinished},
	}}

	if err := vk.Error(vk.QueueSubmit(v.graphicsQueue, 1, submit, frame.inFlight)); err != nil {
		return errors.New("vk.QueueSubmit(): " + err.Error())
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{frame.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{v.swapchain.Resources().Swapchain},
		PImageIndices:      []uint32{imageIndex},
	}

	presentResult := vk.QueuePresent(v.presentQueue, &presentInfo)
	v.currentFrame = (v.currentFrame + 1) % len(v.frames)

	if presentResult == vk.ErrorOutOfDate || presentResult == vk.Suboptimal || v.framebufferResized {
		v.framebufferResized = false
		return v.refreshPresentation()
	}
	if err := vk.Error(presentResult); err != nil {
		return errors.New("vk.QueuePresent(): " + err.Error())
	}
	return nil
}

// DeviceIsSuitable implements interface
func (v *VulkanRenderer) DeviceIsSuitable(device vk.PhysicalDevice) (bool, string) {
	profile := profilePhysicalDevice(device, v.surface)
	if score := scoreDevice(profile, v.configuration.Selection); score <= 0 {
		return false, fmt.Sprintf("device %q fails a hard rendering requirement", profile.Name)
	}
	return true, ""
}

// Destroy implements interface
func (v *VulkanRenderer) Destroy() {
	vk.DeviceWaitIdle(v.logicalDevice)

	for _, frame := range v.frames {
		vk.DestroySemaphore(v.logicalDevice, frame.imageAvailable, nil)
		vk.DestroySemaphore(v.logicalDevice, frame.renderFinished, nil)
		vk.DestroyFence(v.logicalDevice, frame.inFlight, nil)
	}

	vk.DestroyCommandPool(v.logicalDevice, v.commandPool, nil)

	vk.DestroyBuffer(v.logicalDevice, v.vertexBuffer, nil)
	vk.FreeMemory(v.logicalDevice, v.vertexMemory, nil)

	vk.DestroyPipeline(v.logicalDevice, v.pipeline, nil)
	vk.DestroyPipelineCache(v.logicalDevice, v.pipelineCache, nil)
	vk.DestroyPipelineLayout(v.logicalDevice, v.pipelineLayout, nil)

	for _, shader := range v.shaders {
		shader.Destroy()
	}

	v.swapchain.Destroy()
	vk.DestroyRenderPass(v.logicalDevice, v.renderPass, nil)

	vk.DestroyDevice(v.logicalDevice, nil)
}

// vulkanSwapchainBackend drives the real device for the lifecycle
// manager.
type vulkanSwapchainBackend struct {
	renderer *VulkanRenderer
}

func (b *vulkanSwapchainBackend) QuerySupport() (SwapchainSupportDetails, error) {
	return QuerySwapchainSupport(b.renderer.physicalDevice, b.renderer.surface)
}

func (b *vulkanSwapchainBackend) CreateSwapchain(cfg SwapchainConfig, old vk.Swapchain) (vk.Swapchain, []vk.Image, error) {
	r := b.renderer

	scci := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          r.surface,
		MinImageCount:    cfg.ImageCount,
		ImageFormat:      cfg.Format,
		ImageColorSpace:  cfg.ColorSpace,
		ImageExtent:      cfg.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     vk.SurfaceTransformIdentityBit,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      cfg.PresentMode,
		Clipped:          vk.True,
		OldSwapchain:     old,
	}

	if *r.queueFamilies.Graphics != *r.queueFamilies.Present {
		scci.ImageSharingMode = vk.SharingModeConcurrent
		scci.QueueFamilyIndexCount = 2
		scci.PQueueFamilyIndices = []uint32{*r.queueFamilies.Graphics, *r.queueFamilies.Present}
	} else {
		scci.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapchain vk.Swapchain
	if result := vk.CreateSwapchain(r.logicalDevice, &scci, nil, &swapchain); result != vk.Success {
		return vk.NullSwapchain, nil, SwapchainCreationError{Op: "vk.CreateSwapchain", Result: result}
	}

	var imageCount uint32
	if result := vk.GetSwapchainImages(r.logicalDevice, swapchain, &imageCount, nil); result != vk.Success {
		vk.DestroySwapchain(r.logicalDevice, swapchain, nil)
		return vk.NullSwapchain, nil, SwapchainCreationError{Op: "vk.GetSwapchainImages", Result: result}
	}
	images := make([]vk.Image, imageCount)
	if result := vk.GetSwapchainImages(r.logicalDevice, swapchain, &imageCount, images); result != vk.Success {
		vk.DestroySwapchain(r.logicalDevice, swapchain, nil)
		return vk.NullSwapchain, nil, SwapchainCreationError{Op: "vk.GetSwapchainImages", Result: result}
	}
	return swapchain, images, nil
}

func (b *vulkanSwapchainBackend) CreateImageView(image vk.Image, format vk.Format) (vk.ImageView, error) {
	ivci := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	var view vk.ImageView
	if result := vk.CreateImageView(b.renderer.logicalDevice, &ivci, nil, &view); result != vk.Success {
		return vk.NullImageView, SwapchainCreationError{Op: "vk.CreateImageView", Result: result}
	}
	return view, nil
}

func (b *vulkanSwapchainBackend) CreateFramebuffer(view vk.ImageView, extent vk.Extent2D) (vk.Framebuffer, error) {
	fci := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      b.renderer.renderPass,
		AttachmentCount: 1,
		PAttachments:    []vk.ImageView{view},
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}

	var framebuffer vk.Framebuffer
	if result := vk.CreateFramebuffer(b.renderer.logicalDevice, &fci, nil, &framebuffer); result != vk.Success {
		return vk.NullFramebuffer, SwapchainCreationError{Op: "vk.CreateFramebuffer", Result: result}
	}
	return framebuffer, nil
}

func (b *vulkanSwapchainBackend) DestroySwapchain(swapchain vk.Swapchain) {
	vk.DestroySwapchain(b.renderer.logicalDevice, swapchain, nil)
}

func (b *vulkanSwapchainBackend) DestroyImageView(view vk.ImageView) {
	vk.DestroyImageView(b.renderer.logicalDevice, view, nil)
}

func (b *vulkanSwapchainBackend) DestroyFramebuffer(framebuffer vk.Framebuffer) {
	vk.DestroyFramebuffer(b.renderer.logicalDevice, framebuffer, nil)
}

func (b *vulkanSwapchainBackend) WaitIdle() {
	vk.DeviceWaitIdle(b.renderer.logicalDevice)
}
