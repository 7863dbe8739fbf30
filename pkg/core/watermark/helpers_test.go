package watermark

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type goFaces struct{ f *opentype.Font }

func (g goFaces) Face(size float64) (font.Face, error) {
	return opentype.NewFace(g.f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

func testFaces(t *testing.T) FaceSource {
	t.Helper()
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("parse embedded font: %v", err)
	}
	return goFaces{f: f}
}

func testFace(t *testing.T, size float64) font.Face {
	t.Helper()
	face, err := testFaces(t).Face(size)
	if err != nil {
		t.Fatalf("create face: %v", err)
	}
	t.Cleanup(func() { face.Close() })
	return face
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// changedBounds returns the smallest rectangle containing every pixel that
// differs between a and b.
func changedBounds(a, b *image.NRGBA) image.Rectangle {
	var r image.Rectangle
	bounds := a.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if a.NRGBAAt(x, y) != b.NRGBAAt(x, y) {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}
