package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xrect"
	"github.com/danielfvm/shadow/internal/options"
	"github.com/pkg/errors"
)

// Monitor is one output's rectangle in virtual screen coordinates.
type Monitor struct {
	Name      string
	X, Y      int
	Width     int
	Height    int
	Primary   bool
	Automatic bool
}

// Rect returns the monitor as an xrect.
func (m Monitor) Rect() xrect.Rect {
	return xrect.New(m.X, m.Y, m.Width, m.Height)
}

func (m Monitor) String() string {
	s := fmt.Sprintf("%s %dx%d+%d+%d", m.Name, m.Width, m.Height, m.X, m.Y)
	if m.Primary {
		s += " primary"
	}
	if m.Automatic {
		s += " automatic"
	}
	return s
}

// MonitorSource enumerates monitors and reports the virtual screen size.
type MonitorSource interface {
	Monitors() ([]Monitor, error)
	ScreenSize() (int, int)
}

// UnknownMonitorError is returned when no monitor carries the requested name.
type UnknownMonitorError struct {
	Name      string
	Available []Monitor
}

func (e *UnknownMonitorError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "monitor '%s' not found, available monitors:", e.Name)
	for _, m := range e.Available {
		b.WriteString("\n  ")
		b.WriteString(m.String())
	}
	return b.String()
}

// Resolve maps a monitor name to its geometry. options.FullDisplay selects
// the whole virtual screen.
func Resolve(src MonitorSource, name string) (Monitor, error) {
	if name == options.FullDisplay {
		w, h := src.ScreenSize()
		return Monitor{Name: options.FullDisplay, Width: w, Height: h}, nil
	}
	monitors, err := src.Monitors()
	if err != nil {
		return Monitor{}, err
	}
	for _, m := range monitors {
		if m.Name == name {
			return m, nil
		}
	}
	return Monitor{}, &UnknownMonitorError{Name: name, Available: monitors}
}

// randrMonitors lists connected outputs that drive an active CRTC.
func randrMonitors(X *xgb.Conn, root xproto.Window) ([]Monitor, error) {
	resources, err := randr.GetScreenResourcesCurrent(X, root).Reply()
	if err != nil {
		return nil, errors.Wrap(err, "reading screen resources")
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(X, root).Reply(); err == nil {
		primary = reply.Output
	}

	monitors := []Monitor{}
	for _, output := range resources.Outputs {
		info, err := randr.GetOutputInfo(X, output, resources.ConfigTimestamp).Reply()
		if err != nil {
			return nil, errors.Wrap(err, "reading output info")
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(X, info.Crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			return nil, errors.Wrap(err, "reading crtc info")
		}
		monitors = append(monitors, Monitor{
			Name:      string(info.Name),
			X:         int(crtc.X),
			Y:         int(crtc.Y),
			Width:     int(crtc.Width),
			Height:    int(crtc.Height),
			Primary:   output == primary,
			Automatic: true,
		})
	}
	return monitors, nil
}
