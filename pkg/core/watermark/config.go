package watermark

import (
	"image"
	"strings"

	"github.com/matzehuels/markstack/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTextSizeRatio is the text mark font size relative to image height.
	DefaultTextSizeRatio = 0.04

	// DefaultNumberSizeRatio is the numeric mark font size relative to image height.
	DefaultNumberSizeRatio = 0.03

	// MinTextFontSize and MinNumberFontSize are the smallest font sizes used
	// regardless of image height.
	MinTextFontSize   = 16
	MinNumberFontSize = 12

	// DefaultMargin is the distance in pixels between a mark and the image edge.
	DefaultMargin = 20

	// DefaultGraphicOpacity is the opacity applied to graphic and text marks.
	DefaultGraphicOpacity = 0.7

	// DefaultNumberOpacity is the opacity applied to numeric marks.
	DefaultNumberOpacity = 0.8

	// DefaultNumberPattern matches the first run of digits in a file stem.
	DefaultNumberPattern = `\d+`

	// MinOpacity and MaxOpacity bound every opacity value.
	MinOpacity = 0.1
	MaxOpacity = 1.0
)

// DefaultGraphicSize is the largest fraction of the image a graphic mark may cover.
var DefaultGraphicSize = SizeRatio{Width: 0.20, Height: 0.15}

// DefaultShadow is the drop shadow used when none is configured.
var DefaultShadow = ShadowSpec{Color: "#FFFFFF", Offset: 3, Blur: 1, Opacity: 1}

// =============================================================================
// Positions
// =============================================================================

// Position names an anchor point on the target image.
type Position string

const (
	TopLeft      Position = "top-left"
	TopRight     Position = "top-right"
	BottomLeft   Position = "bottom-left"
	BottomRight  Position = "bottom-right"
	Center       Position = "center"
	CenterBottom Position = "center-bottom"
)

// Positions lists every supported anchor in display order.
var Positions = []Position{TopLeft, TopRight, BottomLeft, BottomRight, Center, CenterBottom}

// ParsePosition parses an anchor name. Matching is case-insensitive and
// accepts underscores in place of dashes.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	if _, ok := anchorTable[p]; !ok {
		return "", errors.New(errors.ErrCodeInvalidPosition,
			"invalid position %q (must be one of: top-left, top-right, bottom-left, bottom-right, center, center-bottom)", s)
	}
	return p, nil
}

// =============================================================================
// Mark Specs
// =============================================================================

// AnchorSpec places a layer relative to the image.
type AnchorSpec struct {
	Position Position `json:"position"`
	Margin   int      `json:"margin"`
	XOffset  int      `json:"x_offset"`
	YOffset  int      `json:"y_offset"`
}

// ShadowSpec describes a drop shadow. Offset shifts the shadow right and
// down; Blur is the Gaussian sigma in pixels.
type ShadowSpec struct {
	Color   string  `json:"color"`
	Offset  int     `json:"offset"`
	Blur    int     `json:"blur"`
	Opacity float64 `json:"opacity"`
}

// SizeRatio is a budget expressed as fractions of the image width and height.
type SizeRatio struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TextMark renders a string with a drop shadow.
type TextMark struct {
	Text      string     `json:"text"`
	Color     string     `json:"color"`
	SizeRatio float64    `json:"size_ratio"`
	Shadow    ShadowSpec `json:"shadow"`
	Opacity   float64    `json:"opacity"`
	Anchor    AnchorSpec `json:"anchor"`
}

// GraphicMark composites a decoded image, typically a transparent PNG.
type GraphicMark struct {
	Image   image.Image `json:"-"`
	Opacity float64     `json:"opacity"`
	MaxSize SizeRatio   `json:"max_size"`
	Anchor  AnchorSpec  `json:"anchor"`
}

// NumberMark renders the number extracted from each file name.
type NumberMark struct {
	Enabled   bool       `json:"enabled"`
	Pattern   string     `json:"pattern"`
	Color     string     `json:"color"`
	SizeRatio float64    `json:"size_ratio"`
	Shadow    ShadowSpec `json:"shadow"`
	Opacity   float64    `json:"opacity"`
	Anchor    AnchorSpec `json:"anchor"`
}

// Config is the validated input of an [Engine]. At least one of Graphic
// and Text must be set; when both are set the graphic is composited first.
type Config struct {
	Graphic *GraphicMark `json:"graphic,omitempty"`
	Text    *TextMark    `json:"text,omitempty"`
	Number  NumberMark   `json:"number"`
	Padding Padding      `json:"padding"`

	validated bool
}

// NewTextMark returns a text mark with default styling.
func NewTextMark(text string) *TextMark {
	return &TextMark{
		Text:      text,
		Color:     "#000000",
		SizeRatio: DefaultTextSizeRatio,
		Shadow:    DefaultShadow,
		Opacity:   DefaultGraphicOpacity,
		Anchor:    AnchorSpec{Position: CenterBottom, Margin: DefaultMargin},
	}
}

// NewGraphicMark returns a graphic mark with default styling.
func NewGraphicMark(img image.Image) *GraphicMark {
	return &GraphicMark{
		Image:   img,
		Opacity: DefaultGraphicOpacity,
		MaxSize: DefaultGraphicSize,
		Anchor:  AnchorSpec{Position: CenterBottom, Margin: DefaultMargin},
	}
}

// DefaultNumberMark returns a disabled numeric mark with default styling.
func DefaultNumberMark() NumberMark {
	return NumberMark{
		Pattern:   DefaultNumberPattern,
		Color:     "#000000",
		SizeRatio: DefaultNumberSizeRatio,
		Shadow:    DefaultShadow,
		Opacity:   DefaultNumberOpacity,
		Anchor:    AnchorSpec{Position: BottomRight, Margin: DefaultMargin},
	}
}

// ClampOpacity limits v to [MinOpacity, MaxOpacity].
func ClampOpacity(v float64) float64 {
	return min(max(v, MinOpacity), MaxOpacity)
}

// ValidateAndSetDefaults checks the configuration, fills zero values with
// defaults and clamps every opacity to [MinOpacity, MaxOpacity]. Opacity is
// never defaulted here: a zero opacity clamps to MinOpacity, so start from
// [NewTextMark], [NewGraphicMark] or [DefaultNumberMark] for default values.
// It is idempotent.
//
// A configuration with neither a graphic nor a text mark fails with
// MISSING_MARK_SOURCE: there is nothing to render.
func (c *Config) ValidateAndSetDefaults() error {
	if c.validated {
		return nil
	}
	if c.Graphic == nil && c.Text == nil {
		return errors.New(errors.ErrCodeMissingMarkSource, "no graphic or text mark configured")
	}

	if g := c.Graphic; g != nil {
		if g.Image == nil {
			return errors.New(errors.ErrCodeMissingMarkSource, "graphic mark has no image")
		}
		if g.MaxSize.Width <= 0 {
			g.MaxSize.Width = DefaultGraphicSize.Width
		}
		if g.MaxSize.Height <= 0 {
			g.MaxSize.Height = DefaultGraphicSize.Height
		}
		g.Opacity = ClampOpacity(g.Opacity)
		if err := validateAnchor(&g.Anchor, CenterBottom); err != nil {
			return err
		}
	}

	if t := c.Text; t != nil {
		if strings.TrimSpace(t.Text) == "" {
			return errors.New(errors.ErrCodeMissingMarkSource, "text mark is empty")
		}
		if t.SizeRatio <= 0 {
			t.SizeRatio = DefaultTextSizeRatio
		}
		if t.Color == "" {
			t.Color = "#000000"
		}
		t.Opacity = ClampOpacity(t.Opacity)
		if err := validateShadow(&t.Shadow); err != nil {
			return err
		}
		if err := validateAnchor(&t.Anchor, CenterBottom); err != nil {
			return err
		}
	}

	if n := &c.Number; n.Enabled {
		if n.Pattern == "" {
			n.Pattern = DefaultNumberPattern
		}
		if _, err := errors.ValidateNumberPattern(n.Pattern); err != nil {
			return err
		}
		if n.SizeRatio <= 0 {
			n.SizeRatio = DefaultNumberSizeRatio
		}
		if n.Color == "" {
			n.Color = "#000000"
		}
		n.Opacity = ClampOpacity(n.Opacity)
		if err := validateShadow(&n.Shadow); err != nil {
			return err
		}
		if err := validateAnchor(&n.Anchor, BottomRight); err != nil {
			return err
		}
	}

	if c.Padding == (Padding{}) {
		c.Padding = DefaultPadding
	}
	if err := c.Padding.validate(); err != nil {
		return err
	}

	c.validated = true
	return nil
}

func validateAnchor(a *AnchorSpec, fallback Position) error {
	if a.Position == "" {
		a.Position = fallback
	}
	p, err := ParsePosition(string(a.Position))
	if err != nil {
		return err
	}
	a.Position = p
	if a.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "margin must be >= 0, got %d", a.Margin)
	}
	return nil
}

func validateShadow(s *ShadowSpec) error {
	if s.Offset < 0 || s.Blur < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "shadow offset and blur must be >= 0, got %d and %d", s.Offset, s.Blur)
	}
	if s.Color == "" {
		s.Color = DefaultShadow.Color
	}
	s.Opacity = ClampOpacity(s.Opacity)
	return nil
}
