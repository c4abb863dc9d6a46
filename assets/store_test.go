package assets

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, dir, name string, w, h int, c color.NRGBA) {
	t.Helper()
	sub := filepath.Join(dir, Subdir)
	require.NoError(t, os.MkdirAll(sub, 0o755))
	img := imaging.New(w, h, c)
	require.NoError(t, imaging.Save(img, filepath.Join(sub, name)))
}

type countingDecoder struct {
	calls []string
	next  Decoder
}

func (d *countingDecoder) Decode(path string) (*image.NRGBA, error) {
	d.calls = append(d.calls, path)
	return d.next.Decode(path)
}

func TestControlBackgroundChain(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, DefaultFile, 446, 620, color.NRGBA{10, 20, 30, 255})

	s := New(dir, nil)
	l := s.Load(ControlBackground, "")
	require.True(t, l.IsLoaded())
	assert.Equal(t, 446, l.Width())
	assert.Equal(t, 620, l.Height())

	writeImage(t, dir, ControlBackgroundFile, 400, 600, color.NRGBA{1, 2, 3, 255})
	s2 := New(dir, nil)
	l2 := s2.Load(ControlBackground, "")
	assert.Equal(t, 400, l2.Width(), "controller_base.png wins over default.png")
}

func TestControlBackgroundMissing(t *testing.T) {
	s := New(t.TempDir(), nil)
	l := s.Load(ControlBackground, "")
	assert.False(t, l.IsLoaded())
	assert.Equal(t, 0, l.Width())
}

func TestOverlayChain(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "Astrosmash.jpg", 370, 600, color.NRGBA{200, 0, 0, 255})
	writeImage(t, dir, DefaultFile, 300, 500, color.NRGBA{0, 0, 0, 255})

	s := New(dir, nil)
	l := s.Load(TitleOverlay, filepath.Join("roms", "Astrosmash.int"))
	require.True(t, l.IsLoaded())
	assert.Equal(t, 370, l.Width(), "jpg overlay for the title")

	l = s.Load(TitleOverlay, "/roms/Unknown.rom")
	require.True(t, l.IsLoaded())
	assert.Equal(t, 300, l.Width(), "default.png when the title has no art")
}

func TestOverlayPlaceholder(t *testing.T) {
	s := New("", nil)
	l := s.Load(TitleOverlay, "game.int")
	require.True(t, l.IsLoaded())
	assert.Equal(t, PlaceholderWidth, l.Width())
	assert.Equal(t, PlaceholderHeight, l.Height())

	img := l.Image
	assert.Equal(t, placeholderTopLeft, img.NRGBAAt(0, 0))
	assert.Equal(t, placeholderTopRight, img.NRGBAAt(PlaceholderWidth-1, 0))
	assert.Equal(t, placeholderBottomLeft, img.NRGBAAt(0, PlaceholderHeight-1))
	assert.Equal(t, placeholderBottomRight, img.NRGBAAt(PlaceholderWidth-1, PlaceholderHeight-1))
	assert.Equal(t, placeholderTopRight, img.NRGBAAt(PlaceholderWidth/2, PlaceholderHeight/2-1))
}

func TestOneChainPerTransition(t *testing.T) {
	dir := t.TempDir()
	dec := &countingDecoder{next: ImagingDecoder{}}
	s := New(dir, dec)

	s.Load(TitleOverlay, "a.int")
	// a.png, a.jpg, default.png
	assert.Len(t, dec.calls, 3)

	s.Load(TitleOverlay, "a.int")
	s.Load(TitleOverlay, "a.int")
	assert.Len(t, dec.calls, 3, "unchanged identifier does not decode again")

	s.Load(TitleOverlay, "b.int")
	assert.Len(t, dec.calls, 6)

	s.Load(ButtonIcon, "button_swapscreen.png")
	s.Load(ButtonIcon, "button_swapscreen.png")
	assert.Len(t, dec.calls, 7, "icons are attempted once")

	s.Load(ControlBackground, "")
	s.Load(ControlBackground, "")
	assert.Len(t, dec.calls, 9)
}

func TestEmptyDirFailsImmediately(t *testing.T) {
	dec := &countingDecoder{next: ImagingDecoder{}}
	s := New("", dec)

	assert.False(t, s.Load(ControlBackground, "").IsLoaded())
	assert.False(t, s.Load(ButtonIcon, "button_quit.png").IsLoaded())
	assert.True(t, s.Load(TitleOverlay, "x.int").IsLoaded())
	assert.Empty(t, dec.calls)
}

func TestIcons(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "button_swapscreen.png", 200, 50, color.NRGBA{255, 215, 0, 128})

	s := New(dir, nil)
	assert.False(t, s.AnyIconLoaded())

	swap := s.Load(ButtonIcon, "button_swapscreen.png")
	quit := s.Load(ButtonIcon, "button_quit.png")
	assert.True(t, swap.IsLoaded())
	assert.False(t, quit.IsLoaded())
	assert.True(t, s.AnyIconLoaded())
	assert.Equal(t, uint8(128), swap.Image.NRGBAAt(0, 0).A)
	assert.Same(t, swap, s.Icon("button_swapscreen.png"))
}

func TestClose(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, DefaultFile, 10, 10, color.NRGBA{A: 255})

	s := New(dir, nil)
	bg := s.Load(ControlBackground, "")
	ov := s.Load(TitleOverlay, "t.int")
	s.Load(ButtonIcon, DefaultFile)
	s.Close()

	assert.False(t, bg.IsLoaded())
	assert.False(t, ov.IsLoaded())
	assert.Nil(t, s.Icon(DefaultFile))
	assert.True(t, s.Load(ControlBackground, "").IsLoaded(), "load after Close starts over")
}

func TestDecoderRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(p, []byte("not an image"), 0o644))

	_, err := ImagingDecoder{}.Decode(p)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bad.png")
}

func TestDecoderFunc(t *testing.T) {
	want := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	s := New("/assets", DecoderFunc(func(path string) (*image.NRGBA, error) {
		assert.Equal(t, "/assets/dualscreen-overlays/controller_base.png", path)
		return want, nil
	}))
	assert.Same(t, want, s.Load(ControlBackground, "").Image)
}
