package assets

import (
	"image"
	"image/color"
)

// Layer is a decoded image owned by the Store.
type Layer struct {
	Image  *image.NRGBA
	Loaded bool
}

func (l *Layer) Width() int {
	if l == nil || l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dx()
}

func (l *Layer) Height() int {
	if l == nil || l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dy()
}

// IsLoaded reports whether the layer holds pixels. It is safe on a nil layer.
func (l *Layer) IsLoaded() bool {
	return l != nil && l.Loaded && l.Image != nil
}

// Release drops the pixel buffer.
func (l *Layer) Release() {
	if l == nil {
		return
	}
	l.Image = nil
	l.Loaded = false
}

func (l *Layer) replace(img *image.NRGBA) {
	l.Image = img
	l.Loaded = img != nil
}

// Placeholder dimensions for a title overlay that could not be loaded.
const (
	PlaceholderWidth  = 370
	PlaceholderHeight = 600
)

var (
	placeholderTopLeft     = color.NRGBA{0, 0, 255, 255}
	placeholderTopRight    = color.NRGBA{0, 255, 0, 255}
	placeholderBottomLeft  = color.NRGBA{255, 0, 0, 255}
	placeholderBottomRight = color.NRGBA{255, 255, 255, 255}
)

// Placeholder synthesises the four-quadrant overlay used when no overlay art
// could be decoded.
func Placeholder() *image.NRGBA {
	w, h := PlaceholderWidth, PlaceholderHeight
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var c color.NRGBA
			switch {
			case y < h/2 && x < w/2:
				c = placeholderTopLeft
			case y < h/2:
				c = placeholderTopRight
			case x < w/2:
				c = placeholderBottomLeft
			default:
				c = placeholderBottomRight
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
