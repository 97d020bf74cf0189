package main

import (
	"os"
	"runtime"
	"strconv"
	"unsafe"

	"github.com/gobuffalo/envy"
	"github.com/gobuffalo/packr"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Ceichert31/VulkanRenderer/asset"
	"github.com/Ceichert31/VulkanRenderer/core"
)

func init() {
	runtime.LockOSThread()
}

// Essential globals
var (
	vkInstance core.Instance
	vkRenderer core.Renderer
	sdlWindow  *sdl.Window
	sdlSurface unsafe.Pointer

	// ShaderResources carries compiled shaders embedded at build time.
	// In development it reads straight from the directory on disk.
	ShaderResources = packr.NewBox("./shaders")
)

var (
	configuration core.Configuration
	debugMode     bool
)

func envInt(key string, fallback int) int {
	value, err := strconv.Atoi(envy.Get(key, strconv.Itoa(fallback)))
	if err != nil {
		log.Warnf("%s is not a number, using %d", key, fallback)
		return fallback
	}
	return value
}

func configure() {
	if err := godotenv.Load(); err == nil {
		log.Info("Loaded configuration from .env")
	}

	debugMode = envy.Get("RENDERER_DEBUG", "false") == "true"
	configuration = core.Configuration{
		Time: core.TimeConfiguration{
			FramesPerSecond: envInt("RENDERER_FPS", 60),
			EventPollDelay:  envInt("RENDERER_POLL_DELAY", 1),
		},
		Renderer: core.RendererConfiguration{
			Selection: core.SelectionConfiguration{
				DeviceExtensions:      []string{"VK_KHR_swapchain"},
				RequireGeometryShader: envy.Get("RENDERER_REQUIRE_GEOMETRY", "true") == "true",
			},
			FramesInFlight:  envInt("RENDERER_FRAMES_IN_FLIGHT", 2),
			ScreenWidth:     uint32(envInt("RENDERER_WIDTH", 800)),
			ScreenHeight:    uint32(envInt("RENDERER_HEIGHT", 600)),
			ShaderDirectory: envy.Get("RENDERER_SHADER_DIR", "./shaders"),
			Shaders:         loadShaders(envy.Get("RENDERER_SHADER_BUNDLE", "shaders.spk")),
		},
	}
}

// loadShaders prefers a packed shader bundle, then the embedded box.
// When both come up empty the renderer falls back to scanning
// ShaderDirectory itself.
func loadShaders(bundlePath string) []core.ShaderData {
	if file, err := os.Open(bundlePath); err == nil {
		defer file.Close()
		if bundle, err := asset.Open(file); err != nil {
			log.Warnf("Shader bundle %s unreadable: %v", bundlePath, err)
		} else if shaders := bundleShaders(bundle); len(shaders) > 0 {
			log.Infof("Loaded %d shaders from %s", len(shaders), bundlePath)
			return shaders
		}
	}

	var shaders []core.ShaderData
	for _, entry := range []struct {
		file string
		kind core.ShaderType
	}{
		{"triangle.vert.spv", core.VertexShaderType},
		{"triangle.frag.spv", core.FragmentShaderType},
	} {
		code, err := ShaderResources.Find(entry.file)
		if err != nil {
			return nil
		}
		shaders = append(shaders, core.ShaderData{
			Name: entry.file,
			Type: entry.kind,
			Code: code,
		})
	}
	log.Infof("Loaded %d embedded shaders", len(shaders))
	return shaders
}

func bundleShaders(bundle *asset.Bundle) []core.ShaderData {
	var shaders []core.ShaderData
	for _, entry := range bundle.Index() {
		code, err := bundle.ReadAll(entry.Name)
		if err != nil {
			log.Warnf("Skipping bundle entry %s: %v", entry.Name, err)
			continue
		}
		kind := core.UnknownShaderType
		switch entry.Stage {
		case asset.StageVertex:
			kind = core.VertexShaderType
		case asset.StageFragment:
			kind = core.FragmentShaderType
		}
		shaders = append(shaders, core.ShaderData{
			Name: entry.Name,
			Type: kind,
			Code: code,
		})
	}
	return shaders
}

type logReporter struct{}

func (logReporter) Report(severity core.Severity, message string) {
	switch severity {
	case core.SeverityError:
		log.Error(message)
	case core.SeverityWarning:
		log.Warn(message)
	case core.SeverityInfo:
		log.Info(message)
	default:
		log.Debug(message)
	}
}

// windowSizer answers framebuffer size queries with the drawable size
// of the SDL window, which may differ from the window size on high-DPI
// displays.
type windowSizer struct {
	window *sdl.Window
}

func (s windowSizer) FramebufferSize() (uint32, uint32) {
	width, height := s.window.VulkanGetDrawableSize()
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return uint32(width), uint32(height)
}

func newWindow() *sdl.Window {
	window, err := sdl.CreateWindow("Triangle",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(configuration.Renderer.ScreenWidth),
		int32(configuration.Renderer.ScreenHeight),
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		panic(err)
	}
	return window
}

func main() {
	configure()

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		panic(err)
	}
	defer sdl.Quit()

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		panic(err)
	}
	defer sdl.VulkanUnloadLibrary()

	sdlWindow = newWindow()
	defer sdlWindow.Destroy()

	{
		cfg := core.InstanceConfiguration{
			DebugMode:  debugMode,
			Extensions: sdlWindow.VulkanGetInstanceExtensions(),
			Layers:     []string{},
		}

		if vi, err := core.NewVulkanInstance(core.DefaultVulkanApplicationInfo, sdl.VulkanGetVkGetInstanceProcAddr(), cfg, logReporter{}); err != nil {
			panic(err)
		} else {
			vkInstance = vi
		}
	}

	for _, info := range vkInstance.PhysicalDevicesInfo() {
		log.Info("Found adapter ", info)
	}

	if srf, err := sdlWindow.VulkanCreateSurface(vkInstance.Inner()); err != nil {
		panic(err)
	} else {
		sdlSurface = srf
		vkInstance.SetSurface(sdlSurface)
	}

	var rendererErr error
	vkRenderer, rendererErr = core.NewVulkanRenderer(vkInstance, configuration.Renderer, windowSizer{window: sdlWindow}, logReporter{})
	if rendererErr != nil {
		panic(rendererErr)
	}

	if err := vkRenderer.Initialise(); err != nil {
		panic(err)
	}

	time := core.NewTime(configuration.Time)
	exitC := make(chan struct{}, 2)

EventLoop:
	for {
		select {
		case <-exitC:
			log.Info("Event loop exited")
			break EventLoop
		case <-time.FpsTicker().C:
			if err := vkRenderer.Draw(); err != nil {
				log.Error("Draw failed: ", err)
				exitC <- struct{}{}
				continue EventLoop
			}
		case <-time.EventTicker().C:
			var event sdl.Event
			for event = sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				switch et := event.(type) {
				case *sdl.WindowEvent:
					if et.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
						vkRenderer.ResizeNotify()
					}
				case *sdl.KeyboardEvent:
					if et.Keysym.Sym == sdl.K_ESCAPE {
						exitC <- struct{}{}
						continue EventLoop
					}
				case *sdl.QuitEvent:
					exitC <- struct{}{}
					continue EventLoop
				}
			}
		}
	}

	vkRenderer.Destroy()
	vkInstance.Destroy()
}
