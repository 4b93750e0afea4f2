package render

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// ParseColor parses a #rgb, #rrggbb or #rrggbbaa hex color.
func ParseColor(raw string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", raw)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", raw)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// hsl converts hue in degrees, saturation and lightness in [0, 1] to an
// opaque color.
func hsl(h, s, l float64) color.NRGBA {
	c := (1 - math.Abs(2*l-1)) * s
	hp := math.Mod(h, 360) / 60
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
	return color.NRGBA{R: toByte(r + m), G: toByte(g + m), B: toByte(b + m), A: 255}
}
