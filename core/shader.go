package core

import (
	"fmt"
	"os"
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

// NewVulkanShader creates a Vulkan specific shader wrapper from a
// compiled SPIR-V file on disk
func NewVulkanShader(path string, shaderType ShaderType, device vk.Device) (Shader, error) {
	splitPath := strings.Split(path, "/")
	filename := splitPath[len(splitPath)-1]
	shaderName := strings.Split(filename, ".")[0]

	shaderContents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return NewVulkanShaderFromBytes(shaderName, shaderType, shaderContents, device)
}

// NewVulkanShaderFromBytes creates a Vulkan specific shader wrapper
// from SPIR-V already held in memory, eg. out of an asset bundle
func NewVulkanShaderFromBytes(name string, shaderType ShaderType, code []byte, device vk.Device) (Shader, error) {
	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceUint32(code),
	}

	var shader vk.ShaderModule
	if err := vk.Error(vk.CreateShaderModule(device, &smci, nil, &shader)); err != nil {
		return nil, fmt.Errorf("vk.CreateShaderModule(type %d): %s", shaderType, err.Error())
	}

	return &VulkanShader{
		shader:         shader,
		shaderType:     shaderType,
		shaderContents: code,
		name:           name,
		device:         device,
	}, nil
}

// VulkanShader is a Vulkan specific shader
type VulkanShader struct {
	name           string
	shaderType     ShaderType
	device         vk.Device
	shader         vk.ShaderModule
	shaderContents []byte
}

// Type implements interface
func (v VulkanShader) Type() ShaderType {
	return v.shaderType
}

// ShaderModule is an accssor to the internal vk.ShaderModule
func (v VulkanShader) ShaderModule() interface{} {
	return v.shader
}

// Name implements interface
func (v VulkanShader) Name() string {
	return v.name
}

// Destroy implements interface
func (v VulkanShader) Destroy() {
	vk.DestroyShaderModule(v.device, v.shader, nil)
}
