// Package x11 talks to the X server over xgb: the primary connection used by
// the renderer, the short-lived connections that hand a wallpaper pixmap to
// the desktop, and monitor enumeration through RandR.
package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// TransientConn is the renderer's own connection. Everything it creates is
// released by the server when it closes.
type TransientConn struct {
	X      *xgb.Conn
	Setup  *xproto.SetupInfo
	Screen *xproto.ScreenInfo

	xu       *xgbutil.XUtil
	monitors []Monitor
}

// Dial opens the primary connection. An empty display uses $DISPLAY.
func Dial(display string) (*TransientConn, error) {
	X, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, errors.Wrap(err, "opening X display")
	}
	setup := xproto.Setup(X)
	return &TransientConn{
		X:      X,
		Setup:  setup,
		Screen: setup.DefaultScreen(X),
	}, nil
}

// Root returns the root window of the default screen.
func (c *TransientConn) Root() xproto.Window {
	return c.Screen.Root
}

// ScreenSize returns the size of the whole virtual screen.
func (c *TransientConn) ScreenSize() (int, int) {
	return int(c.Screen.WidthInPixels), int(c.Screen.HeightInPixels)
}

// Util returns an xgbutil handle sharing this connection.
func (c *TransientConn) Util() (*xgbutil.XUtil, error) {
	if c.xu != nil {
		return c.xu, nil
	}
	xu, err := xgbutil.NewConnXgb(c.X)
	if err != nil {
		return nil, errors.Wrap(err, "wrapping X connection")
	}
	c.xu = xu
	return xu, nil
}

// Pointer returns the pointer position relative to the root window.
func (c *TransientConn) Pointer() (int, int, error) {
	reply, err := xproto.QueryPointer(c.X, c.Root()).Reply()
	if err != nil {
		return 0, 0, errors.Wrap(err, "querying pointer")
	}
	return int(reply.RootX), int(reply.RootY), nil
}

// Monitors enumerates connected RandR outputs. The result is cached.
func (c *TransientConn) Monitors() ([]Monitor, error) {
	if c.monitors != nil {
		return c.monitors, nil
	}
	if err := randr.Init(c.X); err != nil {
		return nil, errors.Wrap(err, "initializing RandR")
	}
	monitors, err := randrMonitors(c.X, c.Root())
	if err != nil {
		return nil, err
	}
	c.monitors = monitors
	return monitors, nil
}

// Sync blocks until the server has processed every request sent so far.
func (c *TransientConn) Sync() {
	c.X.Sync()
}

// Close disconnects.
func (c *TransientConn) Close() {
	c.X.Close()
}

// RetainedConn is a connection whose resources outlive it: Close switches the
// close-down mode to RetainPermanent first. The desktop owns what it created
// until another client kills it.
type RetainedConn struct {
	X      *xgb.Conn
	Screen *xproto.ScreenInfo

	closed bool
}

// DialRetained opens a secondary connection.
func DialRetained(display string) (*RetainedConn, error) {
	X, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, errors.Wrap(err, "opening secondary X display")
	}
	return &RetainedConn{X: X, Screen: xproto.Setup(X).DefaultScreen(X)}, nil
}

// TilePixmap creates a w x h pixmap on this connection and fills it by
// tiling src.
func (c *RetainedConn) TilePixmap(src xproto.Pixmap, w, h int) (xproto.Pixmap, error) {
	pix, err := xproto.NewPixmapId(c.X)
	if err != nil {
		return 0, errors.Wrap(err, "allocating pixmap id")
	}
	drawable := xproto.Drawable(c.Screen.Root)
	if err := xproto.CreatePixmapChecked(c.X, c.Screen.RootDepth, pix, drawable, uint16(w), uint16(h)).Check(); err != nil {
		return 0, errors.Wrap(err, "creating pixmap")
	}

	gc, err := xproto.NewGcontextId(c.X)
	if err != nil {
		return 0, errors.Wrap(err, "allocating gc id")
	}
	// Value order follows the mask bit order: FillStyle before Tile.
	mask := uint32(xproto.GcFillStyle | xproto.GcTile)
	values := []uint32{xproto.FillStyleTiled, uint32(src)}
	if err := xproto.CreateGCChecked(c.X, gc, xproto.Drawable(pix), mask, values).Check(); err != nil {
		return 0, errors.Wrap(err, "creating tile gc")
	}
	rect := xproto.Rectangle{Width: uint16(w), Height: uint16(h)}
	if err := xproto.PolyFillRectangleChecked(c.X, xproto.Drawable(pix), gc, []xproto.Rectangle{rect}).Check(); err != nil {
		return 0, errors.Wrap(err, "tiling pixmap")
	}
	xproto.FreeGC(c.X, gc)
	return pix, nil
}

// LookupAtom resolves name without creating it.
func (c *RetainedConn) LookupAtom(name string) (xproto.Atom, bool, error) {
	reply, err := xproto.InternAtom(c.X, true, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, false, errors.Wrapf(err, "looking up atom %s", name)
	}
	return reply.Atom, reply.Atom != xproto.AtomNone, nil
}

// InternAtom resolves name, creating it when missing.
func (c *RetainedConn) InternAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(c.X, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, errors.Wrapf(err, "interning atom %s", name)
	}
	return reply.Atom, nil
}

// PixmapProperty reads a root window property holding a single PIXMAP. ok
// is false when the property is missing or has another type.
func (c *RetainedConn) PixmapProperty(atom xproto.Atom) (xproto.Pixmap, bool, error) {
	reply, err := xproto.GetProperty(c.X, false, c.Screen.Root, atom, xproto.GetPropertyTypeAny, 0, 1).Reply()
	if err != nil {
		return 0, false, errors.Wrap(err, "reading root property")
	}
	if reply.Type != xproto.AtomPixmap || reply.Format != 32 || len(reply.Value) < 4 {
		return 0, false, nil
	}
	return xproto.Pixmap(xgb.Get32(reply.Value)), true, nil
}

// KillClient destroys the client that owns resource, along with everything
// it retained.
func (c *RetainedConn) KillClient(resource uint32) error {
	return errors.Wrap(xproto.KillClientChecked(c.X, resource).Check(), "killing previous owner")
}

// SetPixmapProperty stores pix in a root window property.
func (c *RetainedConn) SetPixmapProperty(atom xproto.Atom, pix xproto.Pixmap) error {
	data := make([]byte, 4)
	xgb.Put32(data, uint32(pix))
	err := xproto.ChangePropertyChecked(c.X, xproto.PropModeReplace, c.Screen.Root, atom,
		xproto.AtomPixmap, 32, 1, data).Check()
	return errors.Wrap(err, "setting root property")
}

// SetRootBackground makes pix the root window background and repaints it.
func (c *RetainedConn) SetRootBackground(pix xproto.Pixmap) error {
	root := c.Screen.Root
	if err := xproto.ChangeWindowAttributesChecked(c.X, root, xproto.CwBackPixmap, []uint32{uint32(pix)}).Check(); err != nil {
		return errors.Wrap(err, "setting root background")
	}
	xproto.ClearArea(c.X, false, root, 0, 0, 0, 0)
	return nil
}

// RetainAndClose keeps every resource created on c alive and disconnects.
func (c *RetainedConn) RetainAndClose() error {
	err := xproto.SetCloseDownModeChecked(c.X, xproto.CloseDownRetainPermanent).Check()
	c.Close()
	if err != nil {
		return errors.Wrap(err, "setting close-down mode")
	}
	log.Debug("retained wallpaper connection closed")
	return nil
}

// Close disconnects without retaining, releasing everything created on c.
// Closing twice is a no-op.
func (c *RetainedConn) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.X.Close()
}
