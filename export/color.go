package export

import (
	"image/color"
	"strconv"
	"strings"
)

var namedColors = map[string]color.NRGBA{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"orange":      {255, 165, 0, 255},
	"purple":      {128, 0, 128, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"transparent": {0, 0, 0, 0},
}

// parseColor reads #rgb, #rgba, #rrggbb, #rrggbbaa or a basic colour name.
// Anything else yields fallback.
func parseColor(s string, fallback color.NRGBA) color.NRGBA {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := namedColors[s]; ok {
		return c
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return fallback
	}

	var parts []string
	short := false
	switch len(hex) {
	case 3, 4:
		short = true
		for i := range hex {
			parts = append(parts, hex[i:i+1])
		}
	case 6, 8:
		for i := 0; i < len(hex); i += 2 {
			parts = append(parts, hex[i:i+2])
		}
	default:
		return fallback
	}

	vals := [4]uint8{0, 0, 0, 255}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return fallback
		}
		if short {
			v *= 17
		}
		vals[i] = uint8(v)
	}
	return color.NRGBA{R: vals[0], G: vals[1], B: vals[2], A: vals[3]}
}

// withOpacity scales the alpha channel. Opacity outside (0, 1] is treated as 1,
// since elements created without one carry the zero value.
func withOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	if opacity > 0 && opacity < 1 {
		c.A = uint8(float64(c.A) * opacity)
	}
	return c
}
