package core

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// NoSuitableDeviceError is returned by device selection when no
// physical device was enumerated or every candidate failed a hard
// requirement. The condition cannot self-resolve, callers should not
// retry.
type NoSuitableDeviceError struct {
	// Scanned is how many devices were considered
	Scanned int
}

func (e NoSuitableDeviceError) Error() string {
	if e.Scanned == 0 {
		return "no physical devices with Vulkan support found"
	}
	return fmt.Sprintf("none of %d physical devices meet the rendering requirements", e.Scanned)
}

// SwapchainCreationError is returned when creating the swapchain or
// one of its dependent resources reports a non-success status. Fatal
// at startup; during recreation the caller may retry once conditions
// change, this package never retries on its own.
type SwapchainCreationError struct {
	// Op is the failing Vulkan call, eg. "vk.CreateSwapchain"
	Op string

	// Result is the status code the call reported
	Result vk.Result
}

func (e SwapchainCreationError) Error() string {
	if err := vk.Error(e.Result); err != nil {
		return fmt.Sprintf("%s(): %s", e.Op, err.Error())
	}
	return fmt.Sprintf("%s(): unexpected status %d", e.Op, e.Result)
}
