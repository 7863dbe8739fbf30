package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/markstack/pkg/core/watermark"
	"github.com/matzehuels/markstack/pkg/presets"
)

// markFlags holds the watermark style flags shared by run and folders.
// Only flags set on the command line override the chosen preset.
type markFlags struct {
	text              string
	textPosition      string
	textSizeRatio     float64
	textColor         string
	textOpacity       float64
	textShadowColor   string
	textShadowOffset  int
	textShadowBlur    int
	textShadowOpacity float64

	graphic          string
	graphicPosition  string
	graphicOpacity   float64
	graphicXOffset   int
	graphicYOffset   int
	graphicMaxWidth  float64
	graphicMaxHeight float64

	margin     int
	googleFont string
	fontPath   string

	numbering       bool
	numberPattern   string
	numberPosition  string
	numberColor     string
	numberOpacity   float64
	numberSizeRatio float64
	shadowColor     string
	shadowOffset    int
	shadowBlur      int
	shadowOpacity   float64
}

func (f *markFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	text := watermark.NewTextMark("")
	graphic := watermark.NewGraphicMark(nil)
	number := watermark.DefaultNumberMark()

	fs.StringVar(&f.text, "text", "", "text watermark")
	fs.StringVar(&f.textPosition, "text-position", string(text.Anchor.Position), "text position")
	fs.Float64Var(&f.textSizeRatio, "text-size-ratio", text.SizeRatio, "text size relative to image height")
	fs.StringVar(&f.textColor, "text-color", text.Color, "text color (hex or name)")
	fs.Float64Var(&f.textOpacity, "text-opacity", text.Opacity, "text opacity (0.1-1.0)")
	fs.StringVar(&f.textShadowColor, "text-shadow-color", text.Shadow.Color, "text shadow color")
	fs.IntVar(&f.textShadowOffset, "text-shadow-offset", text.Shadow.Offset, "text shadow offset in pixels")
	fs.IntVar(&f.textShadowBlur, "text-shadow-blur", text.Shadow.Blur, "text shadow blur radius")
	fs.Float64Var(&f.textShadowOpacity, "text-shadow-opacity", text.Shadow.Opacity, "text shadow opacity")

	fs.StringVar(&f.graphic, "graphic", "", "graphic watermark (transparent PNG)")
	fs.StringVar(&f.graphicPosition, "graphic-position", string(graphic.Anchor.Position), "graphic position")
	fs.Float64Var(&f.graphicOpacity, "graphic-opacity", graphic.Opacity, "graphic opacity (0.1-1.0)")
	fs.IntVar(&f.graphicXOffset, "graphic-x-offset", 0, "graphic horizontal offset in pixels")
	fs.IntVar(&f.graphicYOffset, "graphic-y-offset", 0, "graphic vertical offset in pixels")
	fs.Float64Var(&f.graphicMaxWidth, "graphic-max-width", graphic.MaxSize.Width, "graphic width budget relative to image width")
	fs.Float64Var(&f.graphicMaxHeight, "graphic-max-height", graphic.MaxSize.Height, "graphic height budget relative to image height")

	fs.IntVar(&f.margin, "margin", watermark.DefaultMargin, "distance from the image edge in pixels")
	fs.StringVar(&f.googleFont, "google-font", "", "Google Fonts family for text marks")
	fs.StringVar(&f.fontPath, "font-path", "", "TrueType font file for text marks")

	fs.BoolVar(&f.numbering, "numbering", false, "stamp the number found in each file name")
	fs.StringVar(&f.numberPattern, "number-pattern", number.Pattern, "regular expression that finds the number")
	fs.StringVar(&f.numberPosition, "number-position", string(number.Anchor.Position), "number position")
	fs.StringVar(&f.numberColor, "number-color", number.Color, "number color")
	fs.Float64Var(&f.numberOpacity, "number-opacity", number.Opacity, "number opacity (0.1-1.0)")
	fs.Float64Var(&f.numberSizeRatio, "number-size-ratio", number.SizeRatio, "number size relative to image height")
	fs.StringVar(&f.shadowColor, "shadow-color", number.Shadow.Color, "number shadow color")
	fs.IntVar(&f.shadowOffset, "shadow-offset", number.Shadow.Offset, "number shadow offset in pixels")
	fs.IntVar(&f.shadowBlur, "shadow-blur", number.Shadow.Blur, "number shadow blur radius")
	fs.Float64Var(&f.shadowOpacity, "shadow-opacity", number.Shadow.Opacity, "number shadow opacity")

	cmd.MarkFlagsMutuallyExclusive("text", "graphic")
	cmd.MarkFlagsMutuallyExclusive("font-path", "google-font")
	_ = cmd.RegisterFlagCompletionFunc("text-position", completePositions)
	_ = cmd.RegisterFlagCompletionFunc("graphic-position", completePositions)
	_ = cmd.RegisterFlagCompletionFunc("number-position", completePositions)
}

// overrides returns a preset holding only the flags set on cmd.
func (f *markFlags) overrides(cmd *cobra.Command) presets.Preset {
	return presets.Preset{
		Text:              changed(cmd, "text", f.text),
		TextPosition:      changed(cmd, "text-position", f.textPosition),
		TextSizeRatio:     changed(cmd, "text-size-ratio", f.textSizeRatio),
		TextColor:         changed(cmd, "text-color", f.textColor),
		TextOpacity:       changed(cmd, "text-opacity", f.textOpacity),
		TextShadowColor:   changed(cmd, "text-shadow-color", f.textShadowColor),
		TextShadowOffset:  changed(cmd, "text-shadow-offset", f.textShadowOffset),
		TextShadowBlur:    changed(cmd, "text-shadow-blur", f.textShadowBlur),
		TextShadowOpacity: changed(cmd, "text-shadow-opacity", f.textShadowOpacity),

		Graphic:          changed(cmd, "graphic", f.graphic),
		GraphicPosition:  changed(cmd, "graphic-position", f.graphicPosition),
		GraphicOpacity:   changed(cmd, "graphic-opacity", f.graphicOpacity),
		GraphicXOffset:   changed(cmd, "graphic-x-offset", f.graphicXOffset),
		GraphicYOffset:   changed(cmd, "graphic-y-offset", f.graphicYOffset),
		GraphicMaxWidth:  changed(cmd, "graphic-max-width", f.graphicMaxWidth),
		GraphicMaxHeight: changed(cmd, "graphic-max-height", f.graphicMaxHeight),

		Margin:     changed(cmd, "margin", f.margin),
		GoogleFont: changed(cmd, "google-font", f.googleFont),
		FontPath:   changed(cmd, "font-path", f.fontPath),

		Numbering:       changed(cmd, "numbering", f.numbering),
		NumberPattern:   changed(cmd, "number-pattern", f.numberPattern),
		NumberPosition:  changed(cmd, "number-position", f.numberPosition),
		NumberColor:     changed(cmd, "number-color", f.numberColor),
		NumberOpacity:   changed(cmd, "number-opacity", f.numberOpacity),
		NumberSizeRatio: changed(cmd, "number-size-ratio", f.numberSizeRatio),
		ShadowColor:     changed(cmd, "shadow-color", f.shadowColor),
		ShadowOffset:    changed(cmd, "shadow-offset", f.shadowOffset),
		ShadowBlur:      changed(cmd, "shadow-blur", f.shadowBlur),
		ShadowOpacity:   changed(cmd, "shadow-opacity", f.shadowOpacity),
	}
}

// resolvePreset merges the style flags over the named preset. With no name
// the flags alone describe the watermark.
func (f *markFlags) resolvePreset(cmd *cobra.Command, set presets.Set, name string) (presets.Preset, error) {
	base := presets.Preset{Name: "custom"}
	if name != "" {
		p, err := set.Get(name)
		if err != nil {
			return presets.Preset{}, err
		}
		base = p
	}
	return base.Merge(f.overrides(cmd)), nil
}

func changed[T any](cmd *cobra.Command, name string, v T) *T {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func completePositions(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, len(watermark.Positions))
	for i, p := range watermark.Positions {
		names[i] = string(p)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
