package core

import (
	"errors"
	"fmt"
	"math"

	vk "github.com/vulkan-go/vulkan"
)

// SwapchainConfig is the presentation setup derived from one
// capability query. Immutable until the next recreation cycle.
type SwapchainConfig struct {
	Format      vk.Format
	ColorSpace  vk.ColorSpace
	PresentMode vk.PresentMode
	Extent      vk.Extent2D
	ImageCount  uint32
}

// chooseSurfaceFormat prefers 8-bit BGRA in the sRGB non-linear color
// space, matched exactly. Falls back to the first candidate, the
// caller has already verified the list is non-empty.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Srgb && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return formats[0]
}

// choosePresentMode prefers the low-latency mailbox mode. FIFO is the
// fallback, the platform guarantees it so this cannot fail.
func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent uses the surface-reported extent verbatim unless the
// surface leaves the decision to us with the max-uint32 sentinel, in
// which case the window framebuffer size is clamped per axis into the
// allowed range.
func chooseExtent(capabilities vk.SurfaceCapabilities, sizer FramebufferSizer) vk.Extent2D {
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		return capabilities.CurrentExtent
	}

	width, height := sizer.FramebufferSize()
	return vk.Extent2D{
		Width:  clampUint32(width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clampUint32(height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one image more than the minimum so the
// renderer never waits on the driver, clamped when the surface caps
// the total. Zero max means unbounded.
func chooseImageCount(capabilities vk.SurfaceCapabilities) uint32 {
	count := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && count > capabilities.MaxImageCount {
		count = capabilities.MaxImageCount
	}
	return count
}

// Configure derives the full swapchain setup from the support details.
func (d SwapchainSupportDetails) Configure(sizer FramebufferSizer) SwapchainConfig {
	format := chooseSurfaceFormat(d.Formats)
	return SwapchainConfig{
		Format:      format.Format,
		ColorSpace:  format.ColorSpace,
		PresentMode: choosePresentMode(d.PresentModes),
		Extent:      chooseExtent(d.Capabilities, sizer),
		ImageCount:  chooseImageCount(d.Capabilities),
	}
}

// SwapchainResources is the live swapchain with its dependent
// per-image resources. Created together, destroyed together, always
// in reverse dependency order.
type SwapchainResources struct {
	Swapchain    vk.Swapchain
	Images       []vk.Image
	Views        []vk.ImageView
	Framebuffers []vk.Framebuffer
}

// SwapchainBackend abstracts the device-level primitives the
// lifecycle manager drives. The production implementation wraps the
// Vulkan device, tests substitute a fake.
type SwapchainBackend interface {
	QuerySupport() (SwapchainSupportDetails, error)
	CreateSwapchain(cfg SwapchainConfig, old vk.Swapchain) (vk.Swapchain, []vk.Image, error)
	CreateImageView(image vk.Image, format vk.Format) (vk.ImageView, error)
	CreateFramebuffer(view vk.ImageView, extent vk.Extent2D) (vk.Framebuffer, error)
	DestroySwapchain(vk.Swapchain)
	DestroyImageView(vk.ImageView)
	DestroyFramebuffer(vk.Framebuffer)
	WaitIdle()
}

// SwapchainState is the lifecycle manager state.
type SwapchainState int

// Lifecycle states
const (
	SwapchainUninitialized SwapchainState = iota
	SwapchainLive
	SwapchainInvalidated
	SwapchainDestroyed
)

func (s SwapchainState) String() string {
	switch s {
	case SwapchainUninitialized:
		return "uninitialized"
	case SwapchainLive:
		return "live"
	case SwapchainInvalidated:
		return "invalidated"
	case SwapchainDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("SwapchainState(%d)", int(s))
}

// NewSwapchainLifecycleManager creates a manager over backend. The
// manager exclusively owns the swapchain and every dependent image,
// view and framebuffer, nothing else mutates them.
func NewSwapchainLifecycleManager(backend SwapchainBackend, sizer FramebufferSizer, reporter Reporter) *SwapchainLifecycleManager {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &SwapchainLifecycleManager{
		backend:  backend,
		sizer:    sizer,
		reporter: reporter,
	}
}

// SwapchainLifecycleManager owns creation, invalidation, recreation
// and teardown of the swapchain and its dependent resources.
type SwapchainLifecycleManager struct {
	backend  SwapchainBackend
	sizer    FramebufferSizer
	reporter Reporter

	state        SwapchainState
	config       SwapchainConfig
	resources    SwapchainResources
	framebuffers bool
}

// State returns the current lifecycle state.
func (m *SwapchainLifecycleManager) State() SwapchainState {
	return m.state
}

// Config returns the configuration of the live swapchain.
func (m *SwapchainLifecycleManager) Config() SwapchainConfig {
	return m.config
}

// Resources returns the live resource set. Callers must not destroy
// any handle in it.
func (m *SwapchainLifecycleManager) Resources() SwapchainResources {
	return m.resources
}

// Initialize builds the swapchain and one image view per image,
// moving Uninitialized to Live. Either the full resource set exists
// afterwards or none of it does.
func (m *SwapchainLifecycleManager) Initialize() error {
	if m.state != SwapchainUninitialized {
		return fmt.Errorf("swapchain init in %s state", m.state)
	}
	if err := m.build(vk.NullSwapchain); err != nil {
		return err
	}
	m.state = SwapchainLive
	return nil
}

func (m *SwapchainLifecycleManager) build(old vk.Swapchain) error {
	support, err := m.backend.QuerySupport()
	if err != nil {
		return err
	}
	if !support.Adequate() {
		return errors.New("surface reports no formats and no present modes")
	}
	// Configuration needs a concrete format and present mode; a device
	// may score as presentable with only one of the two lists populated.
	if len(support.Formats) == 0 {
		return errors.New("surface reports no surface formats")
	}
	if len(support.PresentModes) == 0 {
		return errors.New("surface reports no present modes")
	}

	config := support.Configure(m.sizer)

	swapchain, images, err := m.backend.CreateSwapchain(config, old)
	if err != nil {
		return err
	}

	views := make([]vk.ImageView, 0, len(images))
	for _, image := range images {
		view, err := m.backend.CreateImageView(image, config.Format)
		if err != nil {
			for _, v := range views {
				m.backend.DestroyImageView(v)
			}
			m.backend.DestroySwapchain(swapchain)
			return err
		}
		views = append(views, view)
	}

	m.config = config
	m.resources = SwapchainResources{
		Swapchain: swapchain,
		Images:    images,
		Views:     views,
	}

	m.reporter.Report(SeverityVerbose, fmt.Sprintf("swapchain built: %dx%d, %d images",
		config.Extent.Width, config.Extent.Height, len(images)))

	if m.framebuffers {
		return m.CreateFramebuffers()
	}
	return nil
}

// CreateFramebuffers creates one framebuffer per image view. Called
// once the render pass exists; recreation repeats it automatically
// from then on.
func (m *SwapchainLifecycleManager) CreateFramebuffers() error {
	if m.state == SwapchainDestroyed {
		return fmt.Errorf("swapchain framebuffer creation in %s state", m.state)
	}
	framebuffers := make([]vk.Framebuffer, 0, len(m.resources.Views))
	for _, view := range m.resources.Views {
		framebuffer, err := m.backend.CreateFramebuffer(view, m.config.Extent)
		if err != nil {
			for _, fb := range framebuffers {
				m.backend.DestroyFramebuffer(fb)
			}
			return err
		}
		framebuffers = append(framebuffers, framebuffer)
	}
	m.resources.Framebuffers = framebuffers
	m.framebuffers = true
	return nil
}

// Invalidate marks the swapchain stale after a resize notification or
// an out-of-date/suboptimal report from the presentation engine.
func (m *SwapchainLifecycleManager) Invalidate() {
	if m.state == SwapchainLive {
		m.state = SwapchainInvalidated
	}
}

// release destroys the dependent resources and the swapchain in exact
// reverse dependency order: framebuffers, then views, then the chain.
func (m *SwapchainLifecycleManager) release() {
	for _, framebuffer := range m.resources.Framebuffers {
		m.backend.DestroyFramebuffer(framebuffer)
	}
	for _, view := range m.resources.Views {
		m.backend.DestroyImageView(view)
	}
	m.backend.DestroySwapchain(m.resources.Swapchain)
	m.resources = SwapchainResources{}
}

// Recreate rebuilds the swapchain against the current surface state,
// moving Invalidated back to Live. It blocks until the device is idle
// so no in-flight work references the old resources; there is no
// timeout and no cancellation.
func (m *SwapchainLifecycleManager) Recreate() error {
	if m.state != SwapchainInvalidated {
		return fmt.Errorf("swapchain recreate in %s state", m.state)
	}

	m.backend.WaitIdle()
	m.release()

	if err := m.build(vk.NullSwapchain); err != nil {
		return err
	}
	m.state = SwapchainLive
	return nil
}

// Destroy tears everything down in reverse dependency order. Single
// ownership path only: destroying twice is a state error, never a
// double free.
func (m *SwapchainLifecycleManager) Destroy() error {
	if m.state != SwapchainLive && m.state != SwapchainInvalidated {
		return fmt.Errorf("swapchain destroy in %s state", m.state)
	}
	m.backend.WaitIdle()
	m.release()
	m.state = SwapchainDestroyed
	return nil
}

type nopReporter struct{}

func (nopReporter) Report(Severity, string) {}
