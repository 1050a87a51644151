// Package render drives shader frames to their destination: a window, a
// desktop-type background window or the root window pixmap.
package render

import (
	"github.com/danielfvm/shadow/internal/options"
	"github.com/danielfvm/shadow/internal/x11"
)

// Context is the process-wide state shared by every renderer. It is built
// once at startup and never modified.
type Context struct {
	Options options.RenderOptions
	Conn    *x11.TransientConn

	// Display is the X display name handed to secondary connections; empty
	// means $DISPLAY.
	Display string

	WindowWidth  int
	WindowHeight int
	Stats        bool
}

// NewContext derives a Context from the parsed command line.
func NewContext(cfg options.Config, conn *x11.TransientConn, display string) *Context {
	return &Context{
		Options:      cfg.Render,
		Conn:         conn,
		Display:      display,
		WindowWidth:  cfg.Width,
		WindowHeight: cfg.Height,
		Stats:        cfg.Stats,
	}
}
