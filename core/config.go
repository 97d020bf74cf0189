package core

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Renderer RendererConfiguration
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the window event poll interval in milliseconds
	EventPollDelay int
}

// InstanceConfiguration is used to configure the Vulkan instance
type InstanceConfiguration struct {
	DebugMode  bool
	Extensions []string
	Layers     []string
}

// SelectionConfiguration drives physical device selection. It is
// immutable once handed to SelectPhysicalDevice, there is no
// process-wide extension or layer state.
type SelectionConfiguration struct {
	// DeviceExtensions that a candidate must expose to qualify,
	// typically the swapchain extension
	DeviceExtensions []string

	// RequireGeometryShader disqualifies devices without geometry
	// shading support when set
	RequireGeometryShader bool
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	Selection SelectionConfiguration

	// FramesInFlight bounds how many frames may be recorded ahead of
	// GPU completion. Defaults to 2 when zero
	FramesInFlight int

	ScreenWidth  uint32
	ScreenHeight uint32

	// ShaderDirectory is scanned for compiled .spv shaders
	ShaderDirectory string

	// Shaders are pre-loaded SPIR-V blobs, used instead of
	// ShaderDirectory when non-empty
	Shaders []ShaderData
}

// ShaderData is a compiled SPIR-V shader held in memory.
type ShaderData struct {
	Name string
	Type ShaderType
	Code []byte
}
