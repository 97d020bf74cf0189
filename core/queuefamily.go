package core

import (
	vk "github.com/vulkan-go/vulkan"
)

// QueueFamilyIndices holds the queue family indices the renderer
// needs. A nil field means no family with that capability was found,
// which keeps index 0 unambiguous.
type QueueFamilyIndices struct {
	Graphics *uint32
	Present  *uint32
}

// Complete reports whether both families were located.
func (q QueueFamilyIndices) Complete() bool {
	return q.Graphics != nil && q.Present != nil
}

// QueueFamilyTraits is the capability summary of one queue family,
// in device enumeration order.
type QueueFamilyTraits struct {
	Graphics bool
	Present  bool
}

// locateQueueFamilies scans families in index order. The first
// graphics-capable family and the first present-capable family win,
// the scan stops once both are found. A device with no queue families
// yields an incomplete result, callers treat that as not suitable.
func locateQueueFamilies(families []QueueFamilyTraits) QueueFamilyIndices {
	var indices QueueFamilyIndices
	for i := range families {
		if indices.Graphics == nil && families[i].Graphics {
			idx := uint32(i)
			indices.Graphics = &idx
		}
		if indices.Present == nil && families[i].Present {
			idx := uint32(i)
			indices.Present = &idx
		}
		if indices.Complete() {
			break
		}
	}
	return indices
}

func queueFamilyTraits(device vk.PhysicalDevice, surface vk.Surface) []QueueFamilyTraits {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, nil)
	if count == 0 {
		return nil
	}
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, families)

	traits := make([]QueueFamilyTraits, count)
	for i := range families {
		families[i].Deref()
		traits[i].Graphics = families[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0

		var supported vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), surface, &supported)
		traits[i].Present = supported == vk.True
	}
	return traits
}

// FindQueueFamilies locates the graphics and presentation queue
// families of device against surface. Incompleteness is signaled
// through the nil fields, never as an error.
func FindQueueFamilies(device vk.PhysicalDevice, surface vk.Surface) QueueFamilyIndices {
	return locateQueueFamilies(queueFamilyTraits(device, surface))
}

// uniqueQueueFamilies returns the distinct family indices of a
// complete set, graphics first.
func (q QueueFamilyIndices) uniqueQueueFamilies() []uint32 {
	indices := []uint32{*q.Graphics}
	if *q.Present != *q.Graphics {
		indices = append(indices, *q.Present)
	}
	return indices
}
