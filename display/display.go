package display

import (
	"image"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sqweek/dialog"

	"github.com/meadori/dualscreen/cartridge"
	"github.com/meadori/dualscreen/controller"
	"github.com/meadori/dualscreen/hittest"
	"github.com/meadori/dualscreen/script"
	"github.com/meadori/dualscreen/session"
)

// keypadKeys maps keyboard keys onto keypad runes.
var keypadKeys = map[ebiten.Key]rune{
	ebiten.KeyDigit0: '0', ebiten.KeyNumpad0: '0',
	ebiten.KeyDigit1: '1', ebiten.KeyNumpad1: '1',
	ebiten.KeyDigit2: '2', ebiten.KeyNumpad2: '2',
	ebiten.KeyDigit3: '3', ebiten.KeyNumpad3: '3',
	ebiten.KeyDigit4: '4', ebiten.KeyNumpad4: '4',
	ebiten.KeyDigit5: '5', ebiten.KeyNumpad5: '5',
	ebiten.KeyDigit6: '6', ebiten.KeyNumpad6: '6',
	ebiten.KeyDigit7: '7', ebiten.KeyNumpad7: '7',
	ebiten.KeyDigit8: '8', ebiten.KeyNumpad8: '8',
	ebiten.KeyDigit9: '9', ebiten.KeyNumpad9: '9',
	ebiten.KeyBracketLeft:  '[',
	ebiten.KeyBracketRight: ']',
}

// Display is the ebiten host for a Session.
type Display struct {
	session  *session.Session
	screen   *ebiten.Image
	pix      []byte
	keys     []ebiten.Key
	touches  []ebiten.TouchID
	recorder *script.Recorder
	quit     bool

	titleLoadChan chan string
	log           *slog.Logger
}

// New creates a new Display instance. recFile, when not nil, receives a
// pointer script of the session.
func New(s *session.Session, recFile *os.File) *Display {
	d := &Display{
		session:       s,
		titleLoadChan: make(chan string, 1),
		log:           slog.Default().With(slog.String("component", "display")),
	}
	if recFile != nil {
		d.recorder = script.NewRecorder(recFile)
	}
	s.OnQuit(func() { d.quit = true })
	return d
}

// OpenTitleDialog asks for a title file without blocking the game loop.
func (d *Display) OpenTitleDialog() {
	go func() {
		filename, err := dialog.File().Title("Load title").Filter("Cartridge images", cartridge.Extensions...).Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				d.log.Warn("title dialog failed", "err", err)
			}
			return
		}
		d.titleLoadChan <- filename
	}()
}

// Close flushes the pointer recording.
func (d *Display) Close() error {
	if d.recorder == nil {
		return nil
	}
	return d.recorder.Flush()
}

func (d *Display) pointer(w, h int) (hittest.Sample, int, int) {
	d.touches = ebiten.AppendTouchIDs(d.touches[:0])
	var x, y int
	contact := false
	if len(d.touches) > 0 {
		x, y = ebiten.TouchPosition(d.touches[0])
		contact = true
	} else {
		x, y = ebiten.CursorPosition()
		contact = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	}
	// The cursor reports positions outside the window once it leaves it.
	x, y = script.Clamp(x, y, w, h)
	return hittest.Sample{
		X:       hittest.Denormalize(x, w),
		Y:       hittest.Denormalize(y, h),
		Contact: contact,
	}, x, y
}

func (d *Display) keypad() uint16 {
	d.keys = inpututil.AppendPressedKeys(d.keys[:0])
	var word uint16
	for _, k := range d.keys {
		if r, ok := keypadKeys[k]; ok {
			code, _ := controller.KeyForRune(r)
			word |= code
		}
	}
	return word
}

// Update is called every tick (1/60 [s] by default).
func (d *Display) Update() error {
	select {
	case filename := <-d.titleLoadChan:
		if err := d.session.LoadTitle(filename); err != nil {
			d.log.Error("title load failed", "path", filename, "err", err)
		}
	default:
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF1):
		d.OpenTitleDialog()
	case inpututil.IsKeyJustPressed(ebiten.KeyF2):
		on := !d.session.State().DualScreen
		d.session.SetDualScreen(on)
		d.log.Info("dual screen toggled", "enabled", on)
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		d.quit = true
	}

	g := d.session.Geometry()
	sample, x, y := d.pointer(g.BaseWidth, g.BaseHeight)
	if d.recorder != nil {
		if err := d.recorder.Record(x, y, sample.Contact); err != nil {
			d.log.Warn("recording stopped", "err", err)
			d.recorder = nil
		}
	}

	out := d.session.Tick(session.Input{Pointer: sample, Keys: d.keypad()})
	d.present(out)

	if d.quit {
		return ebiten.Termination
	}
	return nil
}

// present uploads the session output into the screen texture.
func (d *Display) present(out session.Output) {
	if out.Image == nil {
		return
	}
	if d.screen == nil || d.screen.Bounds().Dx() != out.Width || d.screen.Bounds().Dy() != out.Height {
		if d.screen != nil {
			d.screen.Deallocate()
		}
		d.screen = ebiten.NewImage(out.Width, out.Height)
		ebiten.SetWindowSize(out.Width, out.Height)
	}
	d.screen.WritePixels(packed(out, &d.pix))
}

// packed returns the output pixels without row padding.
func packed(out session.Output, buf *[]byte) []byte {
	row := out.Width * 4
	if out.Stride == row {
		return out.Image.Pix[:row*out.Height]
	}
	if cap(*buf) < row*out.Height {
		*buf = make([]byte, row*out.Height)
	}
	pix := (*buf)[:row*out.Height]
	b := out.Image.Bounds()
	for y := 0; y < out.Height; y++ {
		off := out.Image.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*row:(y+1)*row], out.Image.Pix[off:off+row])
	}
	return pix
}

// Draw is called every frame (typically 1/60[s] for 60Hz display).
func (d *Display) Draw(screen *ebiten.Image) {
	if d.screen == nil {
		return
	}
	screen.DrawImage(d.screen, nil)
}

// Layout returns the session's output size; ebiten scales it to the window.
func (d *Display) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g := d.session.Geometry()
	return g.BaseWidth, g.BaseHeight
}

// Bounds returns the initial window size.
func (d *Display) Bounds() image.Rectangle {
	g := d.session.Geometry()
	return image.Rect(0, 0, g.BaseWidth, g.BaseHeight)
}
