// Package gpu creates textures on an OpenGL device through a hidden SDL2
// window.
package gpu

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Config selects the GL context version and the hidden window size.
type Config struct {
	GLMajor int
	GLMinor int
	Debug   bool
	Width   int
	Height  int
}

// Info describes the driver behind a context.
type Info struct {
	Version  string
	Renderer string
	Vendor   string
}

// Context owns a hidden window and its GL context. All methods must be
// called from the goroutine that created it.
type Context struct {
	window    *sdl.Window
	glContext sdl.GLContext
	info      Info
	creator   *TextureCreator
	log       *zap.Logger
}

// NewContext initializes SDL2 and OpenGL.
func NewContext(cfg Config, log *zap.Logger) (*Context, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 64, 64
	}

	log.Debug("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, cfg.GLMajor)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, cfg.GLMinor)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	if cfg.Debug {
		sdl.GLSetAttribute(sdl.GL_CONTEXT_FLAGS, sdl.GL_CONTEXT_DEBUG_FLAG)
	}

	window, err := sdl.CreateWindow("meshforge",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width), int32(cfg.Height),
		sdl.WINDOW_OPENGL|sdl.WINDOW_HIDDEN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	glContext, err := window.GLCreateContext()
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	c := &Context{
		window:    window,
		glContext: glContext,
		creator:   &TextureCreator{log: log.Named("textures")},
		log:       log,
	}
	if err := gl.Init(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	c.info = Info{
		Version:  gl.GoStr(gl.GetString(gl.VERSION)),
		Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
		Vendor:   gl.GoStr(gl.GetString(gl.VENDOR)),
	}
	log.Info("OpenGL initialized",
		zap.String("version", c.info.Version),
		zap.String("renderer", c.info.Renderer),
		zap.String("vendor", c.info.Vendor))
	return c, nil
}

// Info returns the driver strings read at startup.
func (c *Context) Info() Info {
	return c.info
}

// Creator returns the texture creator bound to this context.
func (c *Context) Creator() *TextureCreator {
	return c.creator
}

// Close deletes pending textures, destroys the context and shuts SDL2 down.
func (c *Context) Close() {
	c.log.Debug("closing GL context")
	if c.glContext != nil {
		c.creator.Collect()
		sdl.GLDeleteContext(c.glContext)
		c.glContext = nil
	}
	if c.window != nil {
		c.window.Destroy()
		c.window = nil
	}
	sdl.Quit()
}
