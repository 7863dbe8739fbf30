package watermark

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/markstack/pkg/errors"
)

// Padding holds the constants that size a text layer around its shadow.
type Padding struct {
	// BlurFactor multiplies the blur radius; 3 covers the blur kernel.
	BlurFactor int `json:"blur_factor"`
	// MinPad is the smallest pad added beyond the shadow offset.
	MinPad int `json:"min_pad"`
	// ExtraHeadroom is added below the content on top of the shadow offset.
	ExtraHeadroom int `json:"extra_headroom"`
}

// DefaultPadding is used when a Config leaves Padding zero.
var DefaultPadding = Padding{BlurFactor: 3, MinPad: 20}

func (p Padding) validate() error {
	if p.BlurFactor < 3 || p.MinPad < 0 || p.ExtraHeadroom < 0 {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid padding (blur_factor must be >= 3, min_pad and extra_headroom >= 0)")
	}
	return nil
}

// For returns the pad applied on every side of a layer carrying shadow s.
func (p Padding) For(s ShadowSpec) int {
	return s.Offset + max(p.BlurFactor*s.Blur, p.MinPad)
}

// Headroom returns the extra rows reserved below the content for shadow s.
func (p Padding) Headroom(s ShadowSpec) int {
	return s.Offset + p.ExtraHeadroom
}

// Shadow is a ShadowSpec with its color already resolved.
type Shadow struct {
	Color  color.NRGBA
	Offset int
	Blur   int
}

// Spec returns the geometric part of s as a ShadowSpec.
func (s Shadow) Spec() ShadowSpec {
	return ShadowSpec{Offset: s.Offset, Blur: s.Blur}
}

// Layer is a rendered mark on a transparent canvas.
type Layer struct {
	Image *image.NRGBA
	// Content is the area covered by the mark itself, excluding padding.
	Content image.Rectangle
	Padding int
}

// Size returns the full canvas size, which is what anchors align.
func (l *Layer) Size() image.Point {
	return l.Image.Bounds().Size()
}

// Canvas renders marks into layers.
type Canvas struct {
	Padding Padding
}

// RenderText draws text in main over its shadow on a padded canvas.
//
// Glyphs are measured with font.BoundString, so the content rectangle is the
// exact ink box. When the shadow has a blur it is drawn alone, blurred with
// sigma = Blur and placed under the text; otherwise it is drawn directly at
// (content.x + offset, content.y + offset).
func (c Canvas) RenderText(face font.Face, text string, main color.NRGBA, shadow Shadow) *Layer {
	spec := shadow.Spec()
	pad := c.Padding.For(spec)

	bounds, _ := font.BoundString(face, text)
	minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	w := max(bounds.Max.X.Ceil()-minX, 1)
	h := max(bounds.Max.Y.Ceil()-minY, 1)

	width := w + 2*pad
	height := h + 2*pad + c.Padding.Headroom(spec)

	// Dot position that puts the ink box's top-left corner at (pad, pad).
	x := float64(pad - minX)
	y := float64(pad - minY)

	dc := gg.NewContext(width, height)
	dc.SetFontFace(face)

	sx, sy := x+float64(shadow.Offset), y+float64(shadow.Offset)
	if shadow.Blur > 0 {
		sdc := gg.NewContext(width, height)
		sdc.SetFontFace(face)
		sdc.SetColor(shadow.Color)
		sdc.DrawString(text, sx, sy)
		dc.DrawImage(imaging.Blur(sdc.Image(), float64(shadow.Blur)), 0, 0)
	} else {
		dc.SetColor(shadow.Color)
		dc.DrawString(text, sx, sy)
	}

	dc.SetColor(main)
	dc.DrawString(text, x, y)

	return &Layer{
		Image:   imaging.Clone(dc.Image()),
		Content: image.Rect(pad, pad, pad+w, pad+h),
		Padding: pad,
	}
}

// RenderGraphic wraps an already scaled graphic in a layer without padding.
func (c Canvas) RenderGraphic(img image.Image) *Layer {
	dst := imaging.Clone(img)
	return &Layer{Image: dst, Content: dst.Bounds()}
}
