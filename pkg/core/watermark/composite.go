package watermark

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
)

// ScaleAlpha multiplies every pixel's alpha by opacity in place. Opacity 1
// leaves the image untouched; the existing alpha gradient is preserved.
func ScaleAlpha(img *image.NRGBA, opacity float64) {
	if opacity >= 1 {
		return
	}
	opacity = max(opacity, 0)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(math.Round(float64(img.Pix[i]) * opacity))
	}
}

// Composite blends layer over dst with its top-left corner at `at`.
// The layer is copied before its alpha is scaled, so the caller's layer is
// not modified. Pixels falling outside dst are clipped.
func Composite(dst *image.NRGBA, layer image.Image, at image.Point, opacity float64) {
	src := imaging.Clone(layer)
	ScaleAlpha(src, opacity)
	r := image.Rectangle{Min: at, Max: at.Add(src.Bounds().Size())}
	draw.Draw(dst, r, src, image.Point{}, draw.Over)
}
