package presets

import (
	"image"
	"reflect"

	"github.com/matzehuels/markstack/pkg/core/watermark"
	"github.com/matzehuels/markstack/pkg/errors"
	"github.com/matzehuels/markstack/pkg/fonts"
)

// Preset is a named set of optional watermark settings. A nil field keeps
// the package watermark default.
type Preset struct {
	Name        string `toml:"-" json:"name"`
	Description string `toml:"description" json:"description,omitempty"`

	Text              *string  `toml:"text" json:"text,omitempty"`
	TextPosition      *string  `toml:"text_position" json:"text_position,omitempty"`
	TextSizeRatio     *float64 `toml:"text_size_ratio" json:"text_size_ratio,omitempty"`
	TextColor         *string  `toml:"text_color" json:"text_color,omitempty"`
	TextOpacity       *float64 `toml:"text_opacity" json:"text_opacity,omitempty"`
	TextShadowColor   *string  `toml:"text_shadow_color" json:"text_shadow_color,omitempty"`
	TextShadowOffset  *int     `toml:"text_shadow_offset" json:"text_shadow_offset,omitempty"`
	TextShadowBlur    *int     `toml:"text_shadow_blur" json:"text_shadow_blur,omitempty"`
	TextShadowOpacity *float64 `toml:"text_shadow_opacity" json:"text_shadow_opacity,omitempty"`

	Graphic          *string  `toml:"graphic" json:"graphic,omitempty"`
	GraphicPosition  *string  `toml:"graphic_position" json:"graphic_position,omitempty"`
	GraphicOpacity   *float64 `toml:"graphic_opacity" json:"graphic_opacity,omitempty"`
	GraphicXOffset   *int     `toml:"graphic_x_offset" json:"graphic_x_offset,omitempty"`
	GraphicYOffset   *int     `toml:"graphic_y_offset" json:"graphic_y_offset,omitempty"`
	GraphicMaxWidth  *float64 `toml:"graphic_max_width" json:"graphic_max_width,omitempty"`
	GraphicMaxHeight *float64 `toml:"graphic_max_height" json:"graphic_max_height,omitempty"`

	Margin     *int    `toml:"margin" json:"margin,omitempty"`
	GoogleFont *string `toml:"google_font" json:"google_font,omitempty"`
	FontPath   *string `toml:"font_path" json:"font_path,omitempty"`

	Numbering       *bool    `toml:"numbering" json:"numbering,omitempty"`
	NumberPattern   *string  `toml:"number_pattern" json:"number_pattern,omitempty"`
	NumberPosition  *string  `toml:"number_position" json:"number_position,omitempty"`
	NumberColor     *string  `toml:"number_color" json:"number_color,omitempty"`
	NumberOpacity   *float64 `toml:"number_opacity" json:"number_opacity,omitempty"`
	NumberSizeRatio *float64 `toml:"number_size_ratio" json:"number_size_ratio,omitempty"`
	ShadowColor     *string  `toml:"shadow_color" json:"shadow_color,omitempty"`
	ShadowOffset    *int     `toml:"shadow_offset" json:"shadow_offset,omitempty"`
	ShadowBlur      *int     `toml:"shadow_blur" json:"shadow_blur,omitempty"`
	ShadowOpacity   *float64 `toml:"shadow_opacity" json:"shadow_opacity,omitempty"`
}

// Kind values reported by [Preset.Kind].
const (
	KindText    = "text"
	KindGraphic = "graphic"
)

// Kind reports whether the preset's primary mark is a graphic or text.
func (p Preset) Kind() string {
	if p.Graphic != nil && *p.Graphic != "" {
		return KindGraphic
	}
	return KindText
}

// Font returns the font sources named by the preset.
func (p Preset) Font() fonts.Source {
	return fonts.Source{Path: deref(p.FontPath), Google: deref(p.GoogleFont)}
}

// Merge returns a copy of p with every field set in o applied on top.
// The name is kept; a non-empty description replaces p's.
func (p Preset) Merge(o Preset) Preset {
	out := p
	dst := reflect.ValueOf(&out).Elem()
	src := reflect.ValueOf(o)
	for i := 0; i < src.NumField(); i++ {
		if f := src.Field(i); f.Kind() == reflect.Pointer && !f.IsNil() {
			dst.Field(i).Set(f)
		}
	}
	if o.Description != "" {
		out.Description = o.Description
	}
	return out
}

// Config converts the preset into a validated watermark configuration.
// loadGraphic decodes the graphic file when the preset names one.
//
// The margin applies to every mark. Numbering shadow settings use the
// shadow_* keys; text shadow settings use text_shadow_*.
func (p Preset) Config(loadGraphic func(path string) (image.Image, error)) (watermark.Config, error) {
	var cfg watermark.Config

	if path := deref(p.Graphic); path != "" {
		if loadGraphic == nil {
			return cfg, errors.New(errors.ErrCodeMissingMarkSource, "preset %s: no graphic loader", p.Name)
		}
		img, err := loadGraphic(path)
		if err != nil {
			return cfg, err
		}
		g := watermark.NewGraphicMark(img)
		set((*string)(&g.Anchor.Position), p.GraphicPosition)
		set(&g.Opacity, p.GraphicOpacity)
		set(&g.Anchor.XOffset, p.GraphicXOffset)
		set(&g.Anchor.YOffset, p.GraphicYOffset)
		set(&g.MaxSize.Width, p.GraphicMaxWidth)
		set(&g.MaxSize.Height, p.GraphicMaxHeight)
		set(&g.Anchor.Margin, p.Margin)
		cfg.Graphic = g
	}

	if text := deref(p.Text); text != "" {
		t := watermark.NewTextMark(text)
		set((*string)(&t.Anchor.Position), p.TextPosition)
		set(&t.SizeRatio, p.TextSizeRatio)
		set(&t.Color, p.TextColor)
		set(&t.Opacity, p.TextOpacity)
		set(&t.Shadow.Color, p.TextShadowColor)
		set(&t.Shadow.Offset, p.TextShadowOffset)
		set(&t.Shadow.Blur, p.TextShadowBlur)
		set(&t.Shadow.Opacity, p.TextShadowOpacity)
		set(&t.Anchor.Margin, p.Margin)
		cfg.Text = t
	}

	n := watermark.DefaultNumberMark()
	if p.Numbering != nil {
		n.Enabled = *p.Numbering
	}
	set(&n.Pattern, p.NumberPattern)
	set((*string)(&n.Anchor.Position), p.NumberPosition)
	set(&n.Color, p.NumberColor)
	set(&n.Opacity, p.NumberOpacity)
	set(&n.SizeRatio, p.NumberSizeRatio)
	set(&n.Shadow.Color, p.ShadowColor)
	set(&n.Shadow.Offset, p.ShadowOffset)
	set(&n.Shadow.Blur, p.ShadowBlur)
	set(&n.Shadow.Opacity, p.ShadowOpacity)
	set(&n.Anchor.Margin, p.Margin)
	cfg.Number = n

	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return watermark.Config{}, err
	}
	return cfg, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
