package io

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/markstack/pkg/errors"
)

// Decoded is a decoded source image.
type Decoded struct {
	Image image.Image
	// Format is the registered decoder name: jpeg, png, gif, bmp, tiff or webp.
	Format string
	// Opaque reports whether every pixel has full alpha.
	Opaque bool
}

// DecodeFile opens and decodes the image at path.
func DecodeFile(path string) (*Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeImageDecode, err, "open %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads an image from r and applies its EXIF orientation.
func Decode(r io.Reader) (*Decoded, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageDecode, err, "read image")
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageDecode, err, "unrecognized image")
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageDecode, err, "decode %s", format)
	}

	return &Decoded{Image: img, Format: format, Opaque: isOpaque(img)}, nil
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}
