package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/charmbracelet/log"
)

// Root window properties through which wallpaper setters advertise the
// current background pixmap.
const (
	RootPixmapAtom     = "_XROOTPMAP_ID"
	EsetrootPixmapAtom = "ESETROOT_PMAP_ID"
)

// Uploader owns the primary pixmap frames are written into.
type Uploader interface {
	Upload(f Frame) error
	Pixmap() xproto.Pixmap
	Size() (int, int)
}

// PublishConn is a secondary connection that copies the primary pixmap and
// leaves the copy behind as the desktop background.
type PublishConn interface {
	TilePixmap(src xproto.Pixmap, w, h int) (xproto.Pixmap, error)
	LookupAtom(name string) (xproto.Atom, bool, error)
	InternAtom(name string) (xproto.Atom, error)
	PixmapProperty(atom xproto.Atom) (xproto.Pixmap, bool, error)
	KillClient(resource uint32) error
	SetPixmapProperty(atom xproto.Atom, pix xproto.Pixmap) error
	SetRootBackground(pix xproto.Pixmap) error
	// RetainAndClose disconnects whether or not it fails; the connection
	// must not be used or closed afterwards.
	RetainAndClose() error
	Close()
}

// Dialer opens a fresh secondary connection.
type Dialer func() (PublishConn, error)

// RetainedDialer dials display with DialRetained.
func RetainedDialer(display string) Dialer {
	return func() (PublishConn, error) {
		return DialRetained(display)
	}
}

// Publisher installs rendered frames as the root window background.
type Publisher struct {
	up   Uploader
	dial Dialer

	published int
	evicted   int
}

// NewPublisher returns a publisher writing through up and handing off over
// connections from dial.
func NewPublisher(up Uploader, dial Dialer) *Publisher {
	return &Publisher{up: up, dial: dial}
}

// Publish uploads f and makes it the desktop background. The previous
// background owner, if any, is killed so its pixmap does not leak.
func (p *Publisher) Publish(f Frame) error {
	if err := p.up.Upload(f); err != nil {
		return err
	}

	conn, err := p.dial()
	if err != nil {
		return err
	}
	if err := p.handOff(conn); err != nil {
		conn.Close()
		return err
	}
	if err := conn.RetainAndClose(); err != nil {
		return err
	}
	p.published++
	return nil
}

func (p *Publisher) handOff(conn PublishConn) error {
	w, h := p.up.Size()
	pix, err := conn.TilePixmap(p.up.Pixmap(), w, h)
	if err != nil {
		return err
	}

	if err := p.evictPrevious(conn); err != nil {
		return err
	}

	for _, name := range []string{RootPixmapAtom, EsetrootPixmapAtom} {
		atom, err := conn.InternAtom(name)
		if err != nil {
			return err
		}
		if err := conn.SetPixmapProperty(atom, pix); err != nil {
			return err
		}
	}

	return conn.SetRootBackground(pix)
}

// evictPrevious kills the owner of the current background when both
// properties exist and agree on the same pixmap.
func (p *Publisher) evictPrevious(conn PublishConn) error {
	rootAtom, ok, err := conn.LookupAtom(RootPixmapAtom)
	if err != nil || !ok {
		return err
	}
	esetAtom, ok, err := conn.LookupAtom(EsetrootPixmapAtom)
	if err != nil || !ok {
		return err
	}

	rootPix, ok, err := conn.PixmapProperty(rootAtom)
	if err != nil || !ok {
		return err
	}
	esetPix, ok, err := conn.PixmapProperty(esetAtom)
	if err != nil || !ok {
		return err
	}
	if rootPix != esetPix {
		return nil
	}

	// A stale property whose owner is already gone is overwritten below.
	if err := conn.KillClient(uint32(rootPix)); err != nil {
		log.Warn("could not evict previous background owner", "pixmap", uint32(rootPix), "err", err)
		return nil
	}
	p.evicted++
	log.Debug("evicted previous background owner", "pixmap", uint32(rootPix))
	return nil
}

// Published reports how many frames have been handed off.
func (p *Publisher) Published() int {
	return p.published
}

// Evicted reports how many previous owners were killed.
func (p *Publisher) Evicted() int {
	return p.evicted
}
