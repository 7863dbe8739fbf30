package watermark

import (
	"image"

	"github.com/disintegration/imaging"
)

// ScaleFactor returns min(maxW/w, maxH/h, 1) where maxW and maxH are the
// target dimensions multiplied by ratio and truncated to whole pixels.
func ScaleFactor(natural, target image.Point, ratio SizeRatio) float64 {
	if natural.X <= 0 || natural.Y <= 0 {
		return 1
	}
	maxW := float64(int(float64(target.X) * ratio.Width))
	maxH := float64(int(float64(target.Y) * ratio.Height))
	return min(maxW/float64(natural.X), maxH/float64(natural.Y), 1)
}

// ScaleGraphic shrinks img with a Lanczos filter so it fits the budget on
// target. Images already inside the budget are returned unchanged.
func ScaleGraphic(img image.Image, target image.Point, ratio SizeRatio) image.Image {
	size := img.Bounds().Size()
	s := ScaleFactor(size, target, ratio)
	if s >= 1 {
		return img
	}
	w := max(int(float64(size.X)*s), 1)
	h := max(int(float64(size.Y)*s), 1)
	return imaging.Resize(img, w, h, imaging.Lanczos)
}
