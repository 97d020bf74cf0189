package core

import (
	"errors"

	vk "github.com/vulkan-go/vulkan"
)

// SwapchainSupportDetails is what a device/surface pair supports.
// Queried fresh before every swapchain build and read-only afterward.
// Empty format or present mode lists are legitimate, they only mean
// the device cannot present to the surface.
type SwapchainSupportDetails struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// QuerySwapchainSupport probes the surface capabilities, formats and
// present modes of a device/surface pair. The capability struct and
// its nested extents are dereferenced here so downstream decisions
// read plain values.
func QuerySwapchainSupport(device vk.PhysicalDevice, surface vk.Surface) (SwapchainSupportDetails, error) {
	var details SwapchainSupportDetails

	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(device, surface, &details.Capabilities)); err != nil {
		return details, errors.New("vk.GetPhysicalDeviceSurfaceCapabilities(): " + err.Error())
	}
	details.Capabilities.Deref()
	details.Capabilities.CurrentExtent.Deref()
	details.Capabilities.MinImageExtent.Deref()
	details.Capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, nil)); err != nil {
		return details, errors.New("vk.GetPhysicalDeviceSurfaceFormats(): " + err.Error())
	}
	if formatCount > 0 {
		details.Formats = make([]vk.SurfaceFormat, formatCount)
		if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, details.Formats)); err != nil {
			return details, errors.New("vk.GetPhysicalDeviceSurfaceFormats(): " + err.Error())
		}
		for i := range details.Formats {
			details.Formats[i].Deref()
		}
	}

	var presentModeCount uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &presentModeCount, nil)); err != nil {
		return details, errors.New("vk.GetPhysicalDeviceSurfacePresentModes(): " + err.Error())
	}
	if presentModeCount > 0 {
		details.PresentModes = make([]vk.PresentMode, presentModeCount)
		if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &presentModeCount, details.PresentModes)); err != nil {
			return details, errors.New("vk.GetPhysicalDeviceSurfacePresentModes(): " + err.Error())
		}
	}

	return details, nil
}

// Adequate reports whether the surface can be presented to at all.
func (d SwapchainSupportDetails) Adequate() bool {
	return len(d.Formats) > 0 || len(d.PresentModes) > 0
}

func supportedDeviceExtensions(device vk.PhysicalDevice) []string {
	var count uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(device, "", &count, nil)); err != nil {
		return nil
	}
	extensions := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(device, "", &count, extensions)); err != nil {
		return nil
	}

	names := make([]string, 0, count)
	for _, ext := range extensions {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names
}

// hasAllExtensions checks that every required extension name appears
// in the supported list. Required names may carry the \x00 terminator
// Vulkan expects, it is stripped before comparison.
func hasAllExtensions(supported, required []string) bool {
	available := make(map[string]struct{}, len(supported))
	for _, name := range supported {
		available[name] = struct{}{}
	}
	for _, name := range required {
		if _, ok := available[trimNul(name)]; !ok {
			return false
		}
	}
	return true
}
