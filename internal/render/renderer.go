package render

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/charmbracelet/log"
	"github.com/danielfvm/shadow/internal/gfx"
	"github.com/danielfvm/shadow/internal/options"
	"github.com/danielfvm/shadow/internal/x11"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

// State is a renderer's lifecycle stage.
type State int

const (
	Uninitialized State = iota
	Initialized
	Rendering
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Rendering:
		return "rendering"
	case Destroyed:
		return "destroyed"
	}
	return "unknown"
}

// ErrState is returned when an operation is called in the wrong state.
var ErrState = errors.New("invalid renderer state")

type operation string

const (
	opInitialize operation = "initialize"
	opRender     operation = "render"
	opResize     operation = "resize"
	opDestroy    operation = "destroy"
)

// allowed reports whether op may run in state s.
func allowed(op operation, s State) bool {
	switch op {
	case opInitialize:
		return s == Uninitialized
	case opRender, opResize:
		return s == Initialized || s == Rendering
	case opDestroy:
		return s != Destroyed
	}
	return false
}

func checkState(op operation, s State) error {
	if allowed(op, s) {
		return nil
	}
	return errors.Wrapf(ErrState, "cannot %s a renderer that is %s", op, s)
}

// Renderer draws one shader onto one destination.
type Renderer struct {
	ctx      *Context
	monitor  x11.Monitor
	fragment string
	state    State

	window  *glfw.Window
	comp    *gfx.Compositor
	overlay *gfx.TextOverlay
	status  string

	// root mode only
	output    *gfx.RenderTarget
	pixels    gfx.PixelBuffer
	pixmap    rootPixmap
	publisher *x11.Publisher
	newPixmap func(w, h int) (rootPixmap, error)
}

// rootPixmap is the primary-connection pixmap frames are uploaded into.
type rootPixmap interface {
	x11.Uploader
	Free()
}

// New returns an uninitialized renderer for fragment on monitor.
func New(ctx *Context, monitor x11.Monitor, fragment string) *Renderer {
	r := &Renderer{ctx: ctx, monitor: monitor, fragment: fragment}
	r.newPixmap = func(w, h int) (rootPixmap, error) {
		pixmap, err := x11.NewRootPixmap(ctx.Conn, w, h)
		if err != nil {
			return nil, err
		}
		return pixmap, nil
	}
	return r
}

// State returns the current lifecycle stage.
func (r *Renderer) State() State {
	return r.state
}

// Initialize creates the destination, compiles the shader and allocates
// every render target. On failure everything created so far is released.
func (r *Renderer) Initialize() error {
	if err := checkState(opInitialize, r.state); err != nil {
		return err
	}
	if err := r.initialize(); err != nil {
		r.release()
		return err
	}
	r.state = Initialized
	log.Info("renderer ready",
		"mode", r.ctx.Options.Mode,
		"monitor", r.monitor.Name,
		"quality", r.ctx.Options.Quality)
	return nil
}

func (r *Renderer) initialize() error {
	win, err := r.createWindow()
	if err != nil {
		return err
	}
	r.window = win
	win.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return errors.Wrap(err, "initializing OpenGL")
	}
	log.Debug("OpenGL context", "version", gl.GoStr(gl.GetString(gl.VERSION)), "renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	w, h := r.destinationSize()
	opts := r.ctx.Options
	r.comp, err = gfx.NewCompositor(r.fragment, w, h, opts.Quality, opts.Filter)
	if err != nil {
		return err
	}
	rw, rh := r.comp.RenderSize()
	log.Debug("render targets", "destination", [2]int{w, h}, "shader", [2]int{rw, rh})

	if opts.Mode == options.ModeRoot {
		if err := r.allocateRoot(w, h); err != nil {
			return err
		}
	}
	if r.ctx.Stats {
		if r.overlay, err = gfx.NewTextOverlay(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) allocateRoot(w, h int) error {
	if err := r.replacePixmap(w, h); err != nil {
		return err
	}
	return r.resizeOutput(w, h)
}

// replacePixmap swaps in a w x h root pixmap. The old pixmap and its
// publisher stay in place when the new one cannot be created.
func (r *Renderer) replacePixmap(w, h int) error {
	pixmap, err := r.newPixmap(w, h)
	if err != nil {
		return err
	}
	if r.pixmap != nil {
		r.pixmap.Free()
	}
	r.pixmap = pixmap
	r.publisher = x11.NewPublisher(pixmap, x11.RetainedDialer(r.ctx.Display))
	return nil
}

func (r *Renderer) resizeOutput(w, h int) error {
	var err error
	if r.output == nil {
		if r.output, err = gfx.NewRenderTarget(w, h, gl.NEAREST); err != nil {
			return err
		}
	} else if err = r.output.Resize(w, h); err != nil {
		return err
	}
	r.pixels.Resize(w, h)
	return nil
}

// createWindow opens the GL window for the configured mode. In root mode the
// window stays hidden and only carries the GL context.
func (r *Renderer) createWindow() (*glfw.Window, error) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Visible, glfw.False)

	m := r.monitor
	mode := r.ctx.Options.Mode
	switch mode {
	case options.ModeRoot:
		glfw.WindowHint(glfw.Resizable, glfw.False)
		win, err := glfw.CreateWindow(1, 1, "shadow", nil, nil)
		return win, errors.Wrap(err, "creating context window")

	case options.ModeBackground:
		glfw.WindowHint(glfw.Decorated, glfw.False)
		glfw.WindowHint(glfw.Resizable, glfw.False)
		glfw.WindowHint(glfw.Focused, glfw.False)
		glfw.WindowHint(glfw.FocusOnShow, glfw.False)
		win, err := glfw.CreateWindow(m.Width, m.Height, "shadow", nil, nil)
		if err != nil {
			return nil, errors.Wrap(err, "creating background window")
		}
		win.SetPos(m.X, m.Y)
		if err := r.decorate(win, true); err != nil {
			win.Destroy()
			return nil, err
		}
		win.Show()
		return win, nil

	case options.ModeWindow:
		glfw.WindowHint(glfw.Resizable, glfw.True)
		w, h := r.ctx.WindowWidth, r.ctx.WindowHeight
		win, err := glfw.CreateWindow(w, h, "shadow", nil, nil)
		if err != nil {
			return nil, errors.Wrap(err, "creating window")
		}
		win.SetPos(x11.Center(m.Rect(), w, h))
		if err := r.decorate(win, false); err != nil {
			win.Destroy()
			return nil, err
		}
		win.Show()
		return win, nil
	}
	return nil, errors.Errorf("unknown mode %s", mode)
}

// decorate sets X11 properties on a GLFW window before it is mapped.
func (r *Renderer) decorate(win *glfw.Window, desktop bool) error {
	// Flush GLFW's own connection so the window exists server-side before
	// it is touched through ours.
	glfw.PollEvents()

	xu, err := r.ctx.Conn.Util()
	if err != nil {
		return err
	}
	xid := xproto.Window(win.GetX11Window())
	if desktop {
		if err := x11.MakeDesktopWindow(xu, xid); err != nil {
			return err
		}
	}
	if r.ctx.Options.Opacity < 1 {
		if err := x11.SetOpacity(xu, xid, r.ctx.Options.Opacity); err != nil {
			return err
		}
	}
	r.ctx.Conn.Sync()
	return nil
}

// destinationSize is the live framebuffer size in window mode and the
// monitor size otherwise.
func (r *Renderer) destinationSize() (int, int) {
	switch r.ctx.Options.Mode {
	case options.ModeWindow:
		return r.window.GetFramebufferSize()
	case options.ModeBackground, options.ModeRoot:
		return r.monitor.Width, r.monitor.Height
	}
	return r.monitor.Width, r.monitor.Height
}

// SetStatus replaces the text of the statistics overlay.
func (r *Renderer) SetStatus(text string) {
	r.status = text
}

// ShouldClose reports whether the user asked to close the window.
func (r *Renderer) ShouldClose() bool {
	return r.window != nil && r.window.ShouldClose()
}

// Render draws one frame at shader time t.
func (r *Renderer) Render(t float32) error {
	if err := checkState(opRender, r.state); err != nil {
		return err
	}
	r.state = Rendering
	r.window.MakeContextCurrent()

	mode := r.ctx.Options.Mode
	if mode == options.ModeWindow {
		w, h := r.window.GetFramebufferSize()
		if w == 0 || h == 0 {
			return nil // minimized
		}
		if err := r.Resize(w, h); err != nil {
			return err
		}
	}

	mouse := r.mouse()
	switch mode {
	case options.ModeRoot:
		r.comp.Draw(r.output.FBO(), t, mouse)
		r.drawOverlay()
		r.pixels.ReadFramebuffer(r.output.FBO())
		frame := x11.Frame{Pix: r.pixels.Pix, Width: r.pixels.Width, Height: r.pixels.Height}
		if err := r.publisher.Publish(frame); err != nil {
			log.Error("publishing frame", "err", err)
		} else {
			log.Debug("published root frame", "published", r.publisher.Published(), "evicted", r.publisher.Evicted())
		}
	case options.ModeWindow, options.ModeBackground:
		r.comp.Draw(0, t, mouse)
		r.drawOverlay()
		r.window.SwapBuffers()
	}
	return nil
}

func (r *Renderer) drawOverlay() {
	if r.overlay == nil || r.status == "" {
		return
	}
	w, h := r.comp.Size()
	r.overlay.Draw(r.status, 8, 8, w, h)
}

func (r *Renderer) mouse() [2]float32 {
	x, y, err := r.ctx.Conn.Pointer()
	if err != nil {
		log.Debug("pointer unavailable", "err", err)
		return [2]float32{}
	}
	sw, sh := r.ctx.Conn.ScreenSize()
	return gfx.NormalizeMouse(x, y, sw, sh)
}

// Resize changes the destination size. In root mode the root pixmap and
// read-back buffer are replaced as well.
func (r *Renderer) Resize(w, h int) error {
	if err := checkState(opResize, r.state); err != nil {
		return err
	}
	cw, ch := r.comp.Size()
	if w == cw && h == ch {
		return nil
	}
	root := r.ctx.Options.Mode == options.ModeRoot
	if root {
		if err := r.replacePixmap(w, h); err != nil {
			return err
		}
	}
	if err := r.comp.Resize(w, h); err != nil {
		return err
	}
	log.Debug("resized", "width", w, "height", h)
	if root {
		return r.resizeOutput(w, h)
	}
	return nil
}

// Destroy releases the renderer. The published root pixmap stays with the
// desktop.
func (r *Renderer) Destroy() error {
	if err := checkState(opDestroy, r.state); err != nil {
		return err
	}
	r.release()
	r.state = Destroyed
	return nil
}

func (r *Renderer) release() {
	if r.window != nil {
		r.window.MakeContextCurrent()
	}
	if r.overlay != nil {
		r.overlay.Delete()
		r.overlay = nil
	}
	if r.comp != nil {
		r.comp.Delete()
		r.comp = nil
	}
	if r.output != nil {
		r.output.Delete()
		r.output = nil
	}
	r.pixels.Release()
	r.pixmap = nil
	r.publisher = nil
	if r.window != nil {
		r.window.Destroy()
		r.window = nil
	}
}

var _ Target = (*Renderer)(nil)
