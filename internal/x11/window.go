package x11

import (
	"math"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xrect"
	"github.com/pkg/errors"
)

// allDesktops is the _NET_WM_DESKTOP value for a window shown on every desktop.
const allDesktops = 0xFFFFFFFF

// MakeDesktopWindow marks win as a desktop window kept below everything else
// and out of taskbars and pagers. It must run before the window is mapped.
func MakeDesktopWindow(xu *xgbutil.XUtil, win xproto.Window) error {
	if err := ewmh.WmWindowTypeSet(xu, win, []string{"_NET_WM_WINDOW_TYPE_DESKTOP"}); err != nil {
		return errors.Wrap(err, "setting window type")
	}
	state := []string{
		"_NET_WM_STATE_BELOW",
		"_NET_WM_STATE_STICKY",
		"_NET_WM_STATE_SKIP_TASKBAR",
		"_NET_WM_STATE_SKIP_PAGER",
	}
	if err := ewmh.WmStateSet(xu, win, state); err != nil {
		return errors.Wrap(err, "setting window state")
	}
	return errors.Wrap(ewmh.WmDesktopSet(xu, win, allDesktops), "setting window desktop")
}

// OpacityValue scales an opacity in [0,1] to the CARDINAL stored in
// _NET_WM_WINDOW_OPACITY.
func OpacityValue(opacity float64) uint {
	opacity = math.Min(math.Max(opacity, 0), 1)
	return uint(math.Round(opacity * 0xFFFFFFFF))
}

// SetOpacity asks the compositor to draw win with the given opacity.
func SetOpacity(xu *xgbutil.XUtil, win xproto.Window, opacity float64) error {
	err := xprop.ChangeProp32(xu, win, "_NET_WM_WINDOW_OPACITY", "CARDINAL", OpacityValue(opacity))
	return errors.Wrap(err, "setting window opacity")
}

// Center returns the top-left corner that centers a w x h window on m.
func Center(m xrect.Rect, w, h int) (int, int) {
	return m.X() + (m.Width()-w)/2, m.Y() + (m.Height()-h)/2
}
