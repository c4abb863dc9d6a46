package assets

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	// Registered with image.Decode for overlays shipped as webp.
	_ "golang.org/x/image/webp"
)

// Decoder turns a file into 8-bit non-premultiplied pixels.
type Decoder interface {
	Decode(path string) (*image.NRGBA, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(path string) (*image.NRGBA, error)

func (f DecoderFunc) Decode(path string) (*image.NRGBA, error) {
	return f(path)
}

// ImagingDecoder decodes png, jpeg, gif, bmp, tiff and webp files.
type ImagingDecoder struct{}

func (ImagingDecoder) Decode(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	out := imaging.Clone(img)
	if out.Bounds().Empty() {
		return nil, errors.Errorf("decode %s: empty image", path)
	}
	return out, nil
}
