package compositor

import (
	"image"
	"image/color"

	"github.com/meadori/dualscreen/layout"
)

// Palette.
var (
	Black            = color.RGBA{0, 0, 0, 0xff}
	FooterTint       = color.RGBA{0x1a, 0x2a, 0x3a, 0xff}
	ControlTint      = color.RGBA{0x1a, 0x1a, 0x1a, 0xff}
	ButtonFallback   = color.RGBA{0xff, 0xd7, 0x00, 0xff}
	PressedHighlight = color.NRGBA{0xff, 0xff, 0x00, 0x88}
	HotSpotHighlight = color.NRGBA{0x00, 0xff, 0x00, 0xaa}
)

// BorderPlies are the footer frame colours from the outermost ply inwards.
var BorderPlies = [...]color.RGBA{
	{0x60, 0x51, 0x17, 0xff},
	{0x92, 0x7b, 0x18, 0xff},
	{0xc7, 0xa8, 0x14, 0xff},
	{0xff, 0xd7, 0x00, 0xff},
	{0xc7, 0xa8, 0x14, 0xff},
	{0x92, 0x7b, 0x18, 0xff},
	{0x60, 0x51, 0x17, 0xff},
}

// Scene is everything one composition reads. Nil images are treated as not
// loaded.
type Scene struct {
	Frame  image.Image
	Layout *layout.Model

	Overlay    *image.NRGBA
	Background *image.NRGBA
	// Icons is indexed like Layout.Buttons.
	Icons []*image.NRGBA

	Pressed []bool
	Active  []int
}

// Compositor assembles the workspace image. The output buffer is reused
// between calls.
type Compositor struct {
	out *image.RGBA
}

// New creates a new Compositor.
func New() *Compositor {
	return &Compositor{}
}

// Compose draws a full workspace for s and returns it. The returned image is
// owned by the Compositor and overwritten by the next call.
func (c *Compositor) Compose(s Scene) *image.RGBA {
	m := s.Layout
	bounds := m.Bounds()
	if c.out == nil || c.out.Bounds() != bounds {
		c.out = image.NewRGBA(bounds)
	}

	c.fill(bounds, Black)
	c.fill(m.FooterRect(), FooterTint)
	c.blitFrame(s.Frame, m.PaneOffset(layout.PrimaryPane))

	control := m.PaneRect(layout.ControlPane)
	c.fill(control, ControlTint)
	c.drawCentered(s.Overlay, control)
	c.drawCentered(s.Background, control)

	c.drawButtons(s)
	c.drawBorder(m.FooterRect())

	for _, i := range s.Active {
		if i < 0 || i >= len(m.HotSpots) {
			continue
		}
		c.blendRect(m.HotSpotRect(i), HotSpotHighlight)
	}

	return c.out
}

// Blend composites src over dst with straight alpha. The result is opaque.
func Blend(dst color.RGBA, src color.NRGBA) color.RGBA {
	switch src.A {
	case 0:
		return dst
	case 0xff:
		return color.RGBA{src.R, src.G, src.B, 0xff}
	}
	a := uint32(src.A)
	ia := 0xff - a
	return color.RGBA{
		R: uint8((uint32(src.R)*a + uint32(dst.R)*ia) / 0xff),
		G: uint8((uint32(src.G)*a + uint32(dst.G)*ia) / 0xff),
		B: uint8((uint32(src.B)*a + uint32(dst.B)*ia) / 0xff),
		A: 0xff,
	}
}

func (c *Compositor) set(x, y int, col color.RGBA) {
	if !image.Pt(x, y).In(c.out.Rect) {
		return
	}
	i := c.out.PixOffset(x, y)
	p := c.out.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = col.R, col.G, col.B, col.A
}

func (c *Compositor) at(x, y int) color.RGBA {
	i := c.out.PixOffset(x, y)
	p := c.out.Pix[i : i+4 : i+4]
	return color.RGBA{p[0], p[1], p[2], p[3]}
}

func (c *Compositor) fill(r image.Rectangle, col color.RGBA) {
	r = r.Intersect(c.out.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := c.out.Pix[c.out.PixOffset(r.Min.X, y):c.out.PixOffset(r.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			row[i], row[i+1], row[i+2], row[i+3] = col.R, col.G, col.B, col.A
		}
	}
}

func (c *Compositor) blendRect(r image.Rectangle, col color.NRGBA) {
	r = r.Intersect(c.out.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c.set(x, y, Blend(c.at(x, y), col))
		}
	}
}

// blitFrame scales the console frame into the primary pane with nearest
// neighbour sampling.
func (c *Compositor) blitFrame(frame image.Image, xoff int) {
	dst := image.Rect(xoff, 0, xoff+layout.PrimaryWidth, layout.PrimaryHeight).Intersect(c.out.Rect)
	if frame == nil {
		c.fill(dst, Black)
		return
	}
	fb := frame.Bounds()
	rgba, fast := frame.(*image.RGBA)

	for y := dst.Min.Y; y < dst.Max.Y; y++ {
		sy := fb.Min.Y + y/layout.FrameScale
		for x := dst.Min.X; x < dst.Max.X; x++ {
			sx := fb.Min.X + (x-xoff)/layout.FrameScale
			if !image.Pt(sx, sy).In(fb) {
				c.set(x, y, Black)
				continue
			}
			var px color.RGBA
			if fast {
				px = rgba.RGBAAt(sx, sy)
			} else {
				px = color.RGBAModel.Convert(frame.At(sx, sy)).(color.RGBA)
			}
			px.A = 0xff
			c.set(x, y, px)
		}
	}
}

// drawCentered places img at the top of pane, centred by its own width.
// Transparent pixels are skipped; everything else replaces the destination.
func (c *Compositor) drawCentered(img *image.NRGBA, pane image.Rectangle) {
	if img == nil {
		return
	}
	b := img.Bounds()
	x0 := pane.Min.X + (pane.Dx()-b.Dx())/2
	y0 := pane.Min.Y
	clip := pane.Intersect(c.out.Rect)

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			p := image.Pt(x0+x, y0+y)
			if !p.In(clip) {
				continue
			}
			s := img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			if s.A == 0 {
				continue
			}
			c.set(p.X, p.Y, color.RGBA{s.R, s.G, s.B, 0xff})
		}
	}
}

func (c *Compositor) drawButtons(s Scene) {
	m := s.Layout
	anyIcon := false
	for _, icon := range s.Icons {
		if icon != nil {
			anyIcon = true
			break
		}
	}

	for i, b := range m.Buttons {
		if !b.Enabled {
			continue
		}
		r := m.ButtonRect(i)
		if !anyIcon {
			c.fill(r, ButtonFallback)
			continue
		}
		if i < len(s.Icons) && s.Icons[i] != nil {
			c.drawIcon(s.Icons[i], r.Min)
		}
	}

	for i, b := range m.Buttons {
		if b.Enabled && i < len(s.Pressed) && s.Pressed[i] {
			c.blendRect(m.ButtonRect(i), PressedHighlight)
		}
	}
}

// drawIcon blends an icon at its native size with its top-left corner at at.
func (c *Compositor) drawIcon(img *image.NRGBA, at image.Point) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			p := at.Add(image.Pt(x, y))
			if !p.In(c.out.Rect) {
				continue
			}
			s := img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			if s.A == 0 {
				continue
			}
			c.set(p.X, p.Y, Blend(c.at(p.X, p.Y), s))
		}
	}
}

// drawBorder frames r with one 1-pixel ply per palette entry, outermost
// first. Ply n is inset by n and its corners are cut at 45 degrees over n
// pixels.
func (c *Compositor) drawBorder(r image.Rectangle) {
	x1, y1, x2, y2 := r.Min.X, r.Min.Y, r.Max.X, r.Max.Y

	for n, col := range BorderPlies {
		for x := x1 + n; x < x2-n; x++ {
			c.set(x, y1+n, col)
			c.set(x, y2-1-n, col)
		}
		for y := y1 + n; y < y2-n; y++ {
			c.set(x1+n, y, col)
			c.set(x2-1-n, y, col)
		}
		for i := 0; i < n; i++ {
			c.set(x1+i, y1+n+i, col)
			c.set(x2-1-i, y1+n+i, col)
			c.set(x1+i, y2-1-n-i, col)
			c.set(x2-1-i, y2-1-n-i, col)
		}
	}
}
