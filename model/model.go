package model

import (
	"unsafe"

	glm "github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

// Vertex is a renderer vertex: clip-space position and color,
// laid out exactly as the vertex shader expects
type Vertex struct {
	Pos   glm.Vec2
	Color glm.Vec3
}

// TriangleVertices returns the canonical colored triangle
func TriangleVertices() []Vertex {
	return []Vertex{
		{Pos: glm.Vec2{0.0, -0.5}, Color: glm.Vec3{1.0, 0.0, 0.0}},
		{Pos: glm.Vec2{0.5, 0.5}, Color: glm.Vec3{0.0, 1.0, 0.0}},
		{Pos: glm.Vec2{-0.5, 0.5}, Color: glm.Vec3{0.0, 0.0, 1.0}},
	}
}

// VertexBindingDescriptions return Vulkan Vertex descriptors
func VertexBindingDescriptions() []vk.VertexInputBindingDescription {
	return []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    uint32(unsafe.Sizeof(Vertex{})),
		InputRate: vk.VertexInputRateVertex,
	}}
}

// VertexAttributeDescriptions return Vulkan attribute descriptors
func VertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Pos)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Color)),
		},
	}
}

type sliceHeader struct {
	Data uintptr
	Len  int
	Cap  int
}

// VertexBytes reslices vertices into raw bytes for upload into a
// host-visible buffer
func VertexBytes(vertices []Vertex) []byte {
	const m = 0x7fffffff
	size := len(vertices) * int(unsafe.Sizeof(Vertex{}))
	return (*[m]byte)(unsafe.Pointer((*sliceHeader)(unsafe.Pointer(&vertices)).Data))[:size:size]
}
