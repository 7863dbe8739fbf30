package watermark

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/markstack/pkg/errors"
)

var palette = map[string]color.NRGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"orange":  {255, 165, 0, 255},
	"purple":  {128, 0, 128, 255},
	"brown":   {165, 42, 42, 255},
}

// ResolveColor converts a palette name or a #RRGGBB hex string into a color
// whose alpha is round(255 * opacity), with opacity clamped first.
//
// Unknown tokens resolve to black with the same alpha and an INVALID_COLOR
// error. The returned color is always usable; callers log the error and go on.
func ResolveColor(token string, opacity float64) (color.NRGBA, error) {
	alpha := uint8(math.Round(255 * ClampOpacity(opacity)))

	t := strings.ToLower(strings.TrimSpace(token))
	if c, ok := palette[t]; ok {
		c.A = alpha
		return c, nil
	}
	if c, ok := parseHex(t); ok {
		c.A = alpha
		return c, nil
	}
	return color.NRGBA{A: alpha}, errors.New(errors.ErrCodeInvalidColor, "unknown color %q, using black", token)
}

func parseHex(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}
