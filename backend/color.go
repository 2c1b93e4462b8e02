package backend

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"math"
	"strings"
)

// Palette returns n distinguishable colors spaced around the hue wheel by
// the golden angle.
func Palette(n int) []color.NRGBA {
	out := make([]color.NRGBA, 0, n)
	for i := 0; i < n; i++ {
		h := math.Mod(float64(i+1)*math.Phi, 1)
		out = append(out, hsl(h, .65, .45))
	}
	return out
}

// PaletteColor returns the i'th palette color.
func PaletteColor(i int) color.NRGBA {
	return Palette(i + 1)[i]
}

func hsl(h, s, l float64) color.NRGBA {
	c := (1 - math.Abs(2*l-1)) * s
	hp := h * 6
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r, g, b float64
	switch {
	case hp < 1:
		r, g = c, x
	case hp < 2:
		r, g = x, c
	case hp < 3:
		g, b = c, x
	case hp < 4:
		g, b = x, c
	case hp < 5:
		r, b = x, c
	default:
		r, b = c, x
	}
	m := l - c/2
	return color.NRGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 0xff,
	}
}

// ParseHexColor parses #rrggbb.
func ParseHexColor(s string) (color.NRGBA, error) {
	raw, ok := strings.CutPrefix(s, "#")
	if !ok || len(raw) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: b[0], G: b[1], B: b[2], A: 0xff}, nil
}

// splitHeading separates an optional trailing #rrggbb color from a
// column heading.
func splitHeading(heading string) (name string, c color.NRGBA, hasColor bool) {
	heading = strings.TrimSpace(heading)
	idx := strings.LastIndexByte(heading, ' ')
	if idx < 0 {
		return heading, color.NRGBA{}, false
	}
	c, err := ParseHexColor(heading[idx+1:])
	if err != nil {
		return heading, color.NRGBA{}, false
	}
	return strings.TrimSpace(heading[:idx]), c, true
}
