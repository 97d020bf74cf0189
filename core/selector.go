package core

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// DeviceProfile is everything device scoring needs to know about one
// candidate, gathered in a single pass so the ranking itself touches
// no driver state.
type DeviceProfile struct {
	Name                string
	Discrete            bool
	MaxImageDimension2D uint32
	GeometryShader      bool
	Extensions          []string
	QueueFamilies       QueueFamilyIndices
	FormatCount         int
	PresentModeCount    int
}

const discreteGPUBonus = 1000

// scoreDevice rates a candidate. Zero means disqualified. Discrete
// adapters get a flat bonus, the maximum 2D image dimension stands in
// for raw capability, and richer surface support adds a little more.
func scoreDevice(p DeviceProfile, cfg SelectionConfiguration) int {
	if cfg.RequireGeometryShader && !p.GeometryShader {
		return 0
	}
	if !p.QueueFamilies.Complete() {
		return 0
	}
	if !hasAllExtensions(p.Extensions, cfg.DeviceExtensions) {
		return 0
	}
	if p.FormatCount == 0 && p.PresentModeCount == 0 {
		return 0
	}

	score := 0
	if p.Discrete {
		score += discreteGPUBonus
	}
	score += int(p.MaxImageDimension2D)
	score += p.FormatCount + p.PresentModeCount
	return score
}

// rankDevices returns the index of the strictly highest scoring
// profile, ties broken by enumeration order. Every device is scored
// rather than taking the first match so multi-GPU systems end up on
// the best adapter, not merely an acceptable one.
func rankDevices(profiles []DeviceProfile, cfg SelectionConfiguration) (int, error) {
	best := -1
	bestScore := 0
	for i, p := range profiles {
		if score := scoreDevice(p, cfg); score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return 0, NoSuitableDeviceError{Scanned: len(profiles)}
	}
	return best, nil
}

// profilePhysicalDevice gathers a DeviceProfile from the driver.
func profilePhysicalDevice(device vk.PhysicalDevice, surface vk.Surface) DeviceProfile {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device, &properties)
	properties.Deref()
	properties.Limits.Deref()

	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(device, &features)
	features.Deref()

	profile := DeviceProfile{
		Name:                vk.ToString(properties.DeviceName[:]),
		Discrete:            properties.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu,
		MaxImageDimension2D: properties.Limits.MaxImageDimension2D,
		GeometryShader:      features.GeometryShader == vk.True,
		Extensions:          supportedDeviceExtensions(device),
		QueueFamilies:       FindQueueFamilies(device, surface),
	}

	if details, err := QuerySwapchainSupport(device, surface); err == nil {
		profile.FormatCount = len(details.Formats)
		profile.PresentModeCount = len(details.PresentModes)
	}
	return profile
}

// SelectPhysicalDevice implements interface
func (v *VulkanInstance) SelectPhysicalDevice(cfg SelectionConfiguration) (vk.PhysicalDevice, DeviceProfile, error) {
	devices := v.AvailableDevices()
	if len(devices) == 0 {
		return nil, DeviceProfile{}, NoSuitableDeviceError{}
	}

	profiles := make([]DeviceProfile, len(devices))
	for i, device := range devices {
		profiles[i] = profilePhysicalDevice(device, v.Surface())
	}

	best, err := rankDevices(profiles, cfg)
	if err != nil {
		return nil, DeviceProfile{}, err
	}

	v.reporter.Report(SeverityInfo, fmt.Sprintf("selected physical device %q (%d candidates)", profiles[best].Name, len(profiles)))
	return devices[best], profiles[best], nil
}
