package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/pkg/errors"
)

// putImageHeader is the fixed part of a PutImage request in bytes.
const putImageHeader = 24

// Frame is a rendered image in BGRA byte order with rows bottom-up, the
// layout glReadPixels produces.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
}

// ToZPixmap converts f into a 32 bits-per-pixel ZPixmap with rows top-down
// and pixel bytes in the server's image byte order. dst is reused when it
// has room.
func ToZPixmap(dst []byte, f Frame, order byte) []byte {
	stride := f.Width * 4
	n := stride * f.Height
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]

	for y := 0; y < f.Height; y++ {
		src := f.Pix[(f.Height-1-y)*stride : (f.Height-y)*stride]
		out := dst[y*stride : (y+1)*stride]
		if order == xproto.ImageOrderLSBFirst {
			copy(out, src)
			for x := 3; x < stride; x += 4 {
				out[x] = 0xff
			}
			continue
		}
		for x := 0; x < stride; x += 4 {
			out[x] = 0xff
			out[x+1] = src[x+2]
			out[x+2] = src[x+1]
			out[x+3] = src[x]
		}
	}
	return dst
}

type rowSpan struct {
	y    int
	rows int
}

// splitRows cuts an image into bands of whole rows that each fit in a single
// request of at most maxRequest bytes.
func splitRows(height, stride, maxRequest int) ([]rowSpan, error) {
	per := (maxRequest - putImageHeader) / stride
	if per < 1 {
		return nil, errors.Errorf("a %d byte row does not fit in a %d byte request", stride, maxRequest)
	}
	spans := make([]rowSpan, 0, (height+per-1)/per)
	for y := 0; y < height; y += per {
		spans = append(spans, rowSpan{y: y, rows: min(per, height-y)})
	}
	return spans, nil
}

// RootPixmap is the renderer's persistent pixmap on the primary connection.
// Frames are uploaded into it and copied from there onto the desktop.
type RootPixmap struct {
	conn   *TransientConn
	pix    xproto.Pixmap
	gc     xproto.Gcontext
	width  int
	height int
	spans  []rowSpan
	buf    []byte
}

// NewRootPixmap creates a w x h pixmap at the root depth. Only 32 bits per
// pixel ZPixmap formats are supported.
func NewRootPixmap(c *TransientConn, w, h int) (*RootPixmap, error) {
	if err := checkPixmapFormat(c.Setup, c.Screen.RootDepth); err != nil {
		return nil, err
	}
	maxRequest := int(c.Setup.MaximumRequestLength) * 4
	spans, err := splitRows(h, w*4, maxRequest)
	if err != nil {
		return nil, err
	}

	pix, err := xproto.NewPixmapId(c.X)
	if err != nil {
		return nil, errors.Wrap(err, "allocating pixmap id")
	}
	root := xproto.Drawable(c.Root())
	if err := xproto.CreatePixmapChecked(c.X, c.Screen.RootDepth, pix, root, uint16(w), uint16(h)).Check(); err != nil {
		return nil, errors.Wrap(err, "creating root pixmap")
	}
	gc, err := xproto.NewGcontextId(c.X)
	if err != nil {
		return nil, errors.Wrap(err, "allocating gc id")
	}
	if err := xproto.CreateGCChecked(c.X, gc, xproto.Drawable(pix), 0, nil).Check(); err != nil {
		return nil, errors.Wrap(err, "creating gc")
	}

	return &RootPixmap{
		conn:   c,
		pix:    pix,
		gc:     gc,
		width:  w,
		height: h,
		spans:  spans,
	}, nil
}

func checkPixmapFormat(setup *xproto.SetupInfo, depth byte) error {
	for _, f := range setup.PixmapFormats {
		if f.Depth == depth {
			if f.BitsPerPixel != 32 {
				return errors.Errorf("unsupported pixmap format: depth %d uses %d bits per pixel", depth, f.BitsPerPixel)
			}
			return nil
		}
	}
	return errors.Errorf("no pixmap format for depth %d", depth)
}

// Pixmap returns the server-side pixmap id.
func (p *RootPixmap) Pixmap() xproto.Pixmap {
	return p.pix
}

// Size returns the pixmap size.
func (p *RootPixmap) Size() (int, int) {
	return p.width, p.height
}

// Upload converts f and writes it into the pixmap in request-sized bands,
// then waits until the server has applied every band.
func (p *RootPixmap) Upload(f Frame) error {
	if f.Width != p.width || f.Height != p.height {
		return errors.Errorf("frame is %dx%d, pixmap is %dx%d", f.Width, f.Height, p.width, p.height)
	}
	if len(f.Pix) < f.Width*f.Height*4 {
		return errors.Errorf("frame buffer holds %d bytes, want %d", len(f.Pix), f.Width*f.Height*4)
	}
	p.buf = ToZPixmap(p.buf, f, p.conn.Setup.ImageByteOrder)

	stride := p.width * 4
	cookies := make([]xproto.PutImageCookie, 0, len(p.spans))
	for _, s := range p.spans {
		data := p.buf[s.y*stride : (s.y+s.rows)*stride]
		cookies = append(cookies, xproto.PutImageChecked(p.conn.X, xproto.ImageFormatZPixmap,
			xproto.Drawable(p.pix), p.gc, uint16(p.width), uint16(s.rows),
			0, int16(s.y), 0, p.conn.Screen.RootDepth, data))
	}
	for _, c := range cookies {
		if err := c.Check(); err != nil {
			return errors.Wrap(err, "uploading frame")
		}
	}
	p.conn.Sync()
	return nil
}

// Free releases the pixmap and its gc.
func (p *RootPixmap) Free() {
	xproto.FreeGC(p.conn.X, p.gc)
	xproto.FreePixmap(p.conn.X, p.pix)
	p.buf = nil
}
