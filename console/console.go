package console

import (
	"image"
	"image/color"
	"math/rand"

	"github.com/meadori/dualscreen/cartridge"
	"github.com/meadori/dualscreen/controller"
	"github.com/meadori/dualscreen/layout"
)

// Engine is the emulation core driven once per tick.
type Engine interface {
	// Load inserts a title. A nil cartridge ejects the current one.
	Load(c *cartridge.Cartridge) error
	// SetInput presents a packed input word on a controller port.
	SetInput(port int, word uint16)
	// RunFrame advances emulation by one video frame.
	RunFrame()
	// Frame returns the last completed frame. The image is reused by the
	// engine and must not be retained across ticks.
	Frame() *image.RGBA
}

var bars = [...]color.RGBA{
	{192, 192, 192, 255},
	{192, 192, 0, 255},
	{0, 192, 192, 255},
	{0, 192, 0, 255},
	{192, 0, 192, 255},
	{192, 0, 0, 255},
	{0, 0, 192, 255},
}

var (
	lampOff = color.RGBA{40, 40, 40, 255}
	lampOn  = color.RGBA{255, 215, 0, 255}
)

// TestPattern is a stand-in Engine. With no title it shows static; with a
// title it shows colour bars, a sweeping line and one lamp per bit of the
// port 0 input word.
type TestPattern struct {
	ctrl   *controller.Controller
	cart   *cartridge.Cartridge
	frame  *image.RGBA
	frames int
	rng    *rand.Rand
}

// NewTestPattern creates a new TestPattern instance.
func NewTestPattern() *TestPattern {
	return &TestPattern{
		ctrl:  controller.New(),
		frame: image.NewRGBA(image.Rect(0, 0, layout.FrameWidth, layout.FrameHeight)),
		rng:   rand.New(rand.NewSource(1)),
	}
}

func (p *TestPattern) Load(c *cartridge.Cartridge) error {
	p.cart = c
	p.frames = 0
	p.ctrl.Clear()
	return nil
}

func (p *TestPattern) SetInput(port int, word uint16) {
	p.ctrl.Set(port, word)
}

// Input returns the word last presented on a port.
func (p *TestPattern) Input(port int) uint16 {
	return p.ctrl.Word(port)
}

// Frames returns the number of frames run since the last Load.
func (p *TestPattern) Frames() int {
	return p.frames
}

func (p *TestPattern) RunFrame() {
	p.frames++
	if p.cart == nil {
		p.drawStatic()
		return
	}
	p.drawBars()
	p.drawLamps(p.ctrl.Word(0))
}

func (p *TestPattern) Frame() *image.RGBA {
	return p.frame
}

func (p *TestPattern) drawStatic() {
	pix := p.frame.Pix
	for i := 0; i < len(pix); i += 4 {
		v := byte(p.rng.Intn(256))
		pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, 255
	}
}

func (p *TestPattern) drawBars() {
	w, h := layout.FrameWidth, layout.FrameHeight
	barW := w / len(bars)
	sweep := p.frames % h
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := x / barW
			if i >= len(bars) {
				i = len(bars) - 1
			}
			c := bars[i]
			if y == sweep {
				c = color.RGBA{255, 255, 255, 255}
			}
			p.frame.SetRGBA(x, y, c)
		}
	}
}

// Lamp geometry for the input word display.
const (
	lampSize = 16
	lampGap  = 4
	lampTop  = layout.FrameHeight - lampSize - 8
)

// LampRect returns the rectangle of the lamp for bit n of the input word.
func LampRect(n int) image.Rectangle {
	x0 := layout.CenterGrid(layout.FrameWidth, 16, lampSize, lampGap)
	// Most significant bit on the left.
	x := x0 + (15-n)*(lampSize+lampGap)
	return image.Rect(x, lampTop, x+lampSize, lampTop+lampSize)
}

func (p *TestPattern) drawLamps(word uint16) {
	for n := 0; n < 16; n++ {
		c := lampOff
		if word&(1<<n) != 0 {
			c = lampOn
		}
		r := LampRect(n)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				p.frame.SetRGBA(x, y, c)
			}
		}
	}
}
