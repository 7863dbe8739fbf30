package watermark

import (
	"image"
	"image/color"
	"testing"
)

func alphaRamp() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 256, 1))
	for i := 0; i < 256; i++ {
		img.SetNRGBA(i, 0, color.NRGBA{10, 20, 30, uint8(i)})
	}
	return img
}

func TestScaleAlphaIdentityAtOne(t *testing.T) {
	img := alphaRamp()
	ScaleAlpha(img, 1)
	for i := 0; i < 256; i++ {
		if a := img.NRGBAAt(i, 0).A; a != uint8(i) {
			t.Fatalf("alpha[%d] = %d after opacity 1", i, a)
		}
	}
}

func TestScaleAlphaMonotonic(t *testing.T) {
	opacities := []float64{0.1, 0.25, 0.5, 0.7, 0.9, 1}
	prev := make([]uint8, 256)

	for _, op := range opacities {
		img := alphaRamp()
		ScaleAlpha(img, op)
		for i := 0; i < 256; i++ {
			a := img.NRGBAAt(i, 0).A
			if a < prev[i] {
				t.Fatalf("opacity %v: alpha[%d] = %d < %d at lower opacity", op, i, a, prev[i])
			}
			if a > uint8(i) {
				t.Fatalf("opacity %v: alpha[%d] = %d grew", op, i, a)
			}
			prev[i] = a
		}
	}
}

func TestScaleAlphaKeepsColor(t *testing.T) {
	img := alphaRamp()
	ScaleAlpha(img, 0.5)
	if c := img.NRGBAAt(200, 0); c.R != 10 || c.G != 20 || c.B != 30 || c.A != 100 {
		t.Errorf("pixel = %v, want {10 20 30 100}", c)
	}
}

func TestCompositeLeavesLayerUntouched(t *testing.T) {
	layer := solid(10, 10, color.NRGBA{255, 0, 0, 200})
	dst := solid(50, 50, color.NRGBA{255, 255, 255, 255})

	Composite(dst, layer, image.Pt(5, 5), 0.5)

	if c := layer.NRGBAAt(0, 0); c.A != 200 {
		t.Errorf("layer alpha changed to %d", c.A)
	}
}

func TestCompositeBlends(t *testing.T) {
	layer := solid(10, 10, color.NRGBA{255, 0, 0, 255})
	dst := solid(50, 50, color.NRGBA{255, 255, 255, 255})

	Composite(dst, layer, image.Pt(20, 20), 1)
	if c := dst.NRGBAAt(25, 25); c != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("opaque composite = %v, want red", c)
	}
	if c := dst.NRGBAAt(19, 19); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("pixel outside layer changed to %v", c)
	}

	dst = solid(50, 50, color.NRGBA{255, 255, 255, 255})
	Composite(dst, layer, image.Pt(20, 20), 0.5)
	c := dst.NRGBAAt(25, 25)
	if c.R != 255 || c.G < 120 || c.G > 135 || c.A != 255 {
		t.Errorf("half opacity composite = %v, want about {255 128 128 255}", c)
	}
}

func TestCompositePreservesGradient(t *testing.T) {
	// Transparent pixels inside a layer must stay transparent after
	// opacity scaling, not be raised to a uniform alpha.
	layer := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	layer.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 0})
	layer.SetNRGBA(1, 0, color.NRGBA{0, 0, 0, 255})
	dst := solid(2, 1, color.NRGBA{255, 255, 255, 255})

	Composite(dst, layer, image.Pt(0, 0), 0.8)

	if c := dst.NRGBAAt(0, 0); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("transparent layer pixel altered target: %v", c)
	}
	if c := dst.NRGBAAt(1, 0); c.R > 60 {
		t.Errorf("opaque layer pixel too light: %v", c)
	}
}

func TestCompositeClipsOutsideBounds(t *testing.T) {
	layer := solid(20, 20, color.NRGBA{0, 0, 255, 255})
	dst := solid(30, 30, color.NRGBA{255, 255, 255, 255})

	Composite(dst, layer, image.Pt(-10, 20), 1)
	if c := dst.NRGBAAt(0, 29); c != (color.NRGBA{0, 0, 255, 255}) {
		t.Errorf("visible part not composited: %v", c)
	}
	if c := dst.NRGBAAt(15, 29); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("pixel beyond layer changed: %v", c)
	}

	// Entirely outside: no panic, no change.
	Composite(dst, layer, image.Pt(100, 100), 1)
	Composite(dst, layer, image.Pt(-100, -100), 1)
}
