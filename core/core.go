package core

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Instance describes a Vulkan instance and supporting methods.
// Once created it is ready to use.
type Instance interface {
	// PhysicalDevicesInfo returns a struct for each Physical Device
	// along with info about those devices
	PhysicalDevicesInfo() []PhysicalDeviceInfo

	// AvailableDevices returns handles of Physical Devices
	// from the Vulkan API
	AvailableDevices() []vk.PhysicalDevice

	// SelectPhysicalDevice ranks available devices against the surface
	// and the selection configuration, returning the best candidate.
	// Fails with NoSuitableDeviceError when nothing qualifies
	SelectPhysicalDevice(SelectionConfiguration) (vk.PhysicalDevice, DeviceProfile, error)

	// SetSurface sets the window surface for rendering
	SetSurface(unsafe.Pointer)

	// Surface returns the window surface, if it's not set
	// it should return a valid but empty surface
	Surface() vk.Surface

	// Extensions returns available instance extensions
	Extensions() []string

	// Inner returns the inner handle of the underlying API
	Inner() interface{}

	// Destroy destroys internal members
	Destroy()
}

// Renderer describes the rendering machinery.
// It's created only with internal values set,
// it needs to be initialised with Initialise() before use.
type Renderer interface {
	// Initialise sets up the configured rendering pipeline
	Initialise() error

	// DeviceIsSuitable checks if the device given is suitable
	// for the rendering pipeline. If not suitable string contains the reason
	DeviceIsSuitable(vk.PhysicalDevice) (bool, string)

	// Draw submits one frame and presents it
	Draw() error

	// ResizeNotify tells the renderer the window framebuffer changed
	// size, presentation resources are rebuilt on the next Draw
	ResizeNotify()

	// Destroy destroys internal members
	Destroy()
}

// Severity grades diagnostic messages.
type Severity int

// Diagnostic message severities, mildest first
const (
	SeverityVerbose Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

// Reporter receives diagnostic messages from the Vulkan validation
// layers and from the selection and swapchain machinery. It is injected
// at construction time so tests can capture output.
type Reporter interface {
	Report(severity Severity, message string)
}

// FramebufferSizer reports the current window framebuffer size in
// pixels. The windowing layer implements it.
type FramebufferSizer interface {
	FramebufferSize() (width, height uint32)
}

// Shader describes a shader object
type Shader interface {
	// Type returns the type of the shader
	Type() ShaderType

	// ShaderModule is an accessor to the underlying module handle
	ShaderModule() interface{}

	// Name returns the name of the shader
	Name() string

	// Destroy destroys internal members
	Destroy()
}

// ShaderType represents the type of shader thats loaded
type ShaderType int

// Identifies shader objects with their types
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
	UnknownShaderType
)
