package core

import (
	"math"
	"testing"
	"unsafe"

	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp/cmpopts"
	vk "github.com/vulkan-go/vulkan"
)

// vkEquals compares vulkan structs by their exported fields; the
// c-for-go generated types carry unexported cgo bookkeeping fields
// that go-cmp refuses to access.
var vkEquals = qt.CmpEquals(cmpopts.IgnoreUnexported(vk.Extent2D{}, vk.SurfaceFormat{}))

type stubSizer struct {
	width  uint32
	height uint32
}

func (s stubSizer) FramebufferSize() (uint32, uint32) {
	return s.width, s.height
}

func TestChooseSurfaceFormatPrefersBGRASrgb(t *testing.T) {
	c := qt.New(t)

	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}

	chosen := chooseSurfaceFormat(formats)
	c.Assert(chosen.Format, qt.Equals, vk.FormatB8g8r8a8Srgb)
	c.Assert(chosen.ColorSpace, qt.Equals, vk.ColorSpaceSrgbNonlinear)
}

func TestChooseSurfaceFormatFallsBackToFirst(t *testing.T) {
	c := qt.New(t)

	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatR5g6b5UnormPack16, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}

	c.Assert(chooseSurfaceFormat(formats).Format, qt.Equals, vk.FormatR8g8b8a8Unorm)
}

func TestChooseSurfaceFormatIdempotent(t *testing.T) {
	c := qt.New(t)

	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}

	first := chooseSurfaceFormat(formats)
	second := chooseSurfaceFormat(formats)
	c.Assert(second, vkEquals, first)
}

func TestChoosePresentMode(t *testing.T) {
	c := qt.New(t)

	c.Assert(choosePresentMode([]vk.PresentMode{vk.PresentModeFifo}), qt.Equals, vk.PresentModeFifo)
	c.Assert(choosePresentMode([]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}), qt.Equals, vk.PresentModeMailbox)
	c.Assert(choosePresentMode(nil), qt.Equals, vk.PresentModeFifo)
}

func TestChooseExtentUsesSurfaceExtent(t *testing.T) {
	c := qt.New(t)

	capabilities := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 800, Height: 600},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}

	extent := chooseExtent(capabilities, stubSizer{width: 1920, height: 1080})
	c.Assert(extent, vkEquals, vk.Extent2D{Width: 800, Height: 600})
}

func TestChooseExtentQueriesWindowOnSentinel(t *testing.T) {
	c := qt.New(t)

	capabilities := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}

	extent := chooseExtent(capabilities, stubSizer{width: 1920, height: 1080})
	c.Assert(extent, vkEquals, vk.Extent2D{Width: 1920, Height: 1080})
}

func TestChooseExtentClampsToMax(t *testing.T) {
	c := qt.New(t)

	capabilities := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}

	extent := chooseExtent(capabilities, stubSizer{width: 10000, height: 10000})
	c.Assert(extent, vkEquals, vk.Extent2D{Width: 4096, Height: 4096})
}

func TestChooseImageCount(t *testing.T) {
	c := qt.New(t)

	unbounded := vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 0}
	c.Assert(chooseImageCount(unbounded), qt.Equals, uint32(3))

	capped := vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}
	c.Assert(chooseImageCount(capped), qt.Equals, uint32(2))
}

// fakeBackend mints distinct handles from retained allocations, so
// recreated resources can never alias destroyed ones.
type fakeBackend struct {
	support SwapchainSupportDetails

	allocs    []*byte
	destroyed map[unsafe.Pointer]bool

	createdSwapchains []unsafe.Pointer
	createdViews      []unsafe.Pointer

	failSwapchain bool
	failViewAt    int // 1-based CreateImageView call that fails, 0 never
	viewCalls     int
	waitIdleCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		support: SwapchainSupportDetails{
			Capabilities: vk.SurfaceCapabilities{
				MinImageCount:  2,
				MaxImageCount:  0,
				CurrentExtent:  vk.Extent2D{Width: 800, Height: 600},
				MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
				MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
			},
			Formats: []vk.SurfaceFormat{
				{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			},
			PresentModes: []vk.PresentMode{vk.PresentModeFifo},
		},
		destroyed: map[unsafe.Pointer]bool{},
	}
}

func (f *fakeBackend) handle() unsafe.Pointer {
	b := new(byte)
	f.allocs = append(f.allocs, b)
	return unsafe.Pointer(b)
}

func (f *fakeBackend) QuerySupport() (SwapchainSupportDetails, error) {
	return f.support, nil
}

func (f *fakeBackend) CreateSwapchain(cfg SwapchainConfig, old vk.Swapchain) (vk.Swapchain, []vk.Image, error) {
	if f.failSwapchain {
		return vk.NullSwapchain, nil, SwapchainCreationError{Op: "vk.CreateSwapchain", Result: vk.ErrorDeviceLost}
	}
	images := make([]vk.Image, cfg.ImageCount)
	for i := range images {
		images[i] = vk.Image(f.handle())
	}
	swapchain := vk.Swapchain(f.handle())
	f.createdSwapchains = append(f.createdSwapchains, unsafe.Pointer(swapchain))
	return swapchain, images, nil
}

func (f *fakeBackend) CreateImageView(image vk.Image, format vk.Format) (vk.ImageView, error) {
	f.viewCalls++
	if f.failViewAt > 0 && f.viewCalls == f.failViewAt {
		return vk.NullImageView, SwapchainCreationError{Op: "vk.CreateImageView", Result: vk.ErrorDeviceLost}
	}
	view := vk.ImageView(f.handle())
	f.createdViews = append(f.createdViews, unsafe.Pointer(view))
	return view, nil
}

func (f *fakeBackend) CreateFramebuffer(view vk.ImageView, extent vk.Extent2D) (vk.Framebuffer, error) {
	return vk.Framebuffer(f.handle()), nil
}

func (f *fakeBackend) DestroySwapchain(s vk.Swapchain) {
	f.destroyed[unsafe.Pointer(s)] = true
}

func (f *fakeBackend) DestroyImageView(v vk.ImageView) {
	f.destroyed[unsafe.Pointer(v)] = true
}

func (f *fakeBackend) DestroyFramebuffer(fb vk.Framebuffer) {
	f.destroyed[unsafe.Pointer(fb)] = true
}

func (f *fakeBackend) WaitIdle() {
	f.waitIdleCalls++
}

func TestLifecycleInitialize(t *testing.T) {
	c := qt.New(t)

	backend := newFakeBackend()
	manager := NewSwapchainLifecycleManager(backend, stubSizer{width: 800, height: 600}, nil)

	c.Assert(manager.State(), qt.Equals, SwapchainUninitialized)
	c.Assert(manager.Initialize(), qt.IsNil)
	c.Assert(manager.State(), qt.Equals, SwapchainLive)

	resources := manager.Resources()
	c.Assert(len(resources.Images), qt.Equals, 3)
	c.Assert(len(resources.Views), qt.Equals, len(resources.Images))
	c.Assert(len(resources.Framebuffers), qt.Equals, 0)

	c.Assert(manager.CreateFramebuffers(), qt.IsNil)
	resources = manager.Resources()
	c.Assert(len(resources.Framebuffers), qt.Equals, len(resources.Views))

	config := manager.Config()
	c.Assert(config.Format, qt.Equals, vk.FormatB8g8r8a8Srgb)
	c.Assert(config.PresentMode, qt.Equals, vk.PresentModeFifo)
	c.Assert(config.Extent, vkEquals, vk.Extent2D{Width: 800, Height: 600})
	c.Assert(config.ImageCount, qt.Equals, uint32(3))
}

func TestLifecycleInitializeTwiceFails(t *testing.T) {
	c := qt.New(t)

	manager := NewSwapchainLifecycleManager(newFakeBackend(), stubSizer{width: 800, height: 600}, nil)
	c.Assert(manager.Initialize(), qt.IsNil)
	c.Assert(manager.Initialize(), qt.ErrorMatches, "swapchain init in live state")
}

func TestLifecycleCreationFailurePropagates(t *testing.T) {
	c := qt.New(t)

	backend := newFakeBackend()
	backend.failSwapchain = true
	manager := NewSwapchainLifecycleManager(backend, stubSizer{width: 800, height: 600}, nil)

	err := manager.Initialize()
	c.Assert(err, qt.Not(qt.IsNil))
	_, ok := err.(SwapchainCreationError)
	c.Assert(ok, qt.Equals, true)
	c.Assert(manager.State(), qt.Equals, SwapchainUninitialized)
}

func TestLifecycleRejectsFormatlessSurface(t *testing.T) {
	c := qt.New(t)

	// Presentable per device scoring, yet unusable for configuration.
	backend := newFakeBackend()
	backend.support.Formats = nil
	manager := NewSwapchainLifecycleManager(backend, stubSizer{width: 800, height: 600}, nil)

	err := manager.Initialize()
	c.Assert(err, qt.ErrorMatches, "surface reports no surface formats")
	c.Assert(manager.State(), qt.Equals, SwapchainUninitialized)
}

func TestLifecycleRejectsModelessSurface(t *testing.T) {
	c := qt.New(t)

	backend := newFakeBackend()
	backend.support.PresentModes = nil
	manager := NewSwapchainLifecycleManager(backend, stubSizer{width: 800, height: 600}, nil)

	err := manager.Initialize()
	c.Assert(err, qt.ErrorMatches, "surface reports no present modes")
	c.Assert(manager.State(), qt.Equals, SwapchainUninitialized)
}

func TestLifecycleViewFailureRollsBack(t *testing.T) {
	c := qt.New(t)

	backend := newFakeBackend()
	backend.failViewAt = 3
	manager := NewSwapchainLifecycleManager(backend, stubSizer{width: 800, height: 600}, nil)

	err := manager.Initialize()
	c.Assert(err, qt.Not(qt.IsNil))
	_, ok := err.(SwapchainCreationError)
	c.Assert(ok, qt.Equals, true)
	c.Assert(manager.State(), qt.Equals, SwapchainUninitialized)

	// The two views that did come up and the new swapchain are gone,
	// nothing half-built survives.
	c.Assert(len(backend.createdViews), qt.Equals, 2)
	for _, view := range backend.createdViews {
		c.Assert(backend.destroyed[view], qt.Equals, true)
	}
	c.Assert(len(backend.createdSwapchains), qt.Equals, 1)
	c.Assert(backend.destroyed[backend.createdSwapchains[0]], qt.Equals, true)

	c.Assert(manager.Resources().Swapchain, qt.Equals, vk.NullSwapchain)
	c.Assert(len(manager.Resources().Views), qt.Equals, 0)
}

func TestLifecycleRecreate(t *testing.T) {
	c := qt.New(t)

	backend := newFakeBackend()
	manager := NewSwapchainLifecycleManager(backend, stubSizer{width: 800, height: 600}, nil)
	c.Assert(manager.Initialize(), qt.IsNil)
	c.Assert(manager.CreateFramebuffers(), qt.IsNil)

	old := manager.Resources()
	oldHandles := map[unsafe.Pointer]bool{unsafe.Pointer(old.Swapchain): true}
	for i := range old.Views {
		oldHandles[unsafe.Pointer(old.Views[i])] = true
		oldHandles[unsafe.Pointer(old.Framebuffers[i])] = true
	}

	// Surface grew and allows one more image now.
	backend.support.Capabilities.CurrentExtent = vk.Extent2D{Width: 1024, Height: 768}
	backend.support.Capabilities.MinImageCount = 3

	manager.Invalidate()
	c.Assert(manager.State(), qt.Equals, SwapchainInvalidated)
	c.Assert(manager.Recreate(), qt.IsNil)
	c.Assert(manager.State(), qt.Equals, SwapchainLive)
	c.Assert(backend.waitIdleCalls, qt.Equals, 1)

	fresh := manager.Resources()
	c.Assert(len(fresh.Images), qt.Equals, 4)
	c.Assert(len(fresh.Views), qt.Equals, 4)
	c.Assert(len(fresh.Framebuffers), qt.Equals, 4)
	c.Assert(manager.Config().Extent, vkEquals, vk.Extent2D{Width: 1024, Height: 768})

	// Nothing of the old generation may be reused.
	c.Assert(oldHandles[unsafe.Pointer(fresh.Swapchain)], qt.Equals, false)
	for i := range fresh.Views {
		c.Assert(oldHandles[unsafe.Pointer(fresh.Views[i])], qt.Equals, false)
		c.Assert(oldHandles[unsafe.Pointer(fresh.Framebuffers[i])], qt.Equals, false)
	}

	// And every old handle was actually destroyed.
	for handle := range oldHandles {
		c.Assert(backend.destroyed[handle], qt.Equals, true)
	}
}

func TestLifecycleRecreateRequiresInvalidation(t *testing.T) {
	c := qt.New(t)

	manager := NewSwapchainLifecycleManager(newFakeBackend(), stubSizer{width: 800, height: 600}, nil)
	c.Assert(manager.Initialize(), qt.IsNil)
	c.Assert(manager.Recreate(), qt.ErrorMatches, "swapchain recreate in live state")
}

func TestLifecycleDestroy(t *testing.T) {
	c := qt.New(t)

	backend := newFakeBackend()
	manager := NewSwapchainLifecycleManager(backend, stubSizer{width: 800, height: 600}, nil)
	c.Assert(manager.Initialize(), qt.IsNil)
	c.Assert(manager.CreateFramebuffers(), qt.IsNil)

	resources := manager.Resources()
	c.Assert(manager.Destroy(), qt.IsNil)
	c.Assert(manager.State(), qt.Equals, SwapchainDestroyed)

	c.Assert(backend.destroyed[unsafe.Pointer(resources.Swapchain)], qt.Equals, true)
	for i := range resources.Views {
		c.Assert(backend.destroyed[unsafe.Pointer(resources.Views[i])], qt.Equals, true)
		c.Assert(backend.destroyed[unsafe.Pointer(resources.Framebuffers[i])], qt.Equals, true)
	}

	// Teardown is a single ownership path, a second destroy is refused.
	c.Assert(manager.Destroy(), qt.ErrorMatches, "swapchain destroy in destroyed state")
}

func TestLifecycleInvalidateBeforeInitializeIsNoop(t *testing.T) {
	c := qt.New(t)

	manager := NewSwapchainLifecycleManager(newFakeBackend(), stubSizer{width: 800, height: 600}, nil)
	manager.Invalidate()
	c.Assert(manager.State(), qt.Equals, SwapchainUninitialized)
}
