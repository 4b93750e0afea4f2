package render

import (
	"image"
	"math"

	"github.com/louisbranch/dnaforge/internal/engine/catalog"
)

// composite draws src over dst in place with separable blend mode blend and
// a global alpha of opacity. Both images share the same bounds.
func composite(dst, src *image.NRGBA, blend catalog.Blend, opacity float64) {
	opacity = math.Max(0, math.Min(1, opacity))
	mix := blendFunc(blend)

	for i := 0; i+3 < len(dst.Pix) && i+3 < len(src.Pix); i += 4 {
		as := float64(src.Pix[i+3]) / 255 * opacity
		if blend == catalog.BlendCopy {
			for c := 0; c < 3; c++ {
				dst.Pix[i+c] = src.Pix[i+c]
			}
			dst.Pix[i+3] = toByte(as)
			continue
		}
		if as == 0 {
			continue
		}

		ab := float64(dst.Pix[i+3]) / 255
		ao := as + ab*(1-as)
		for c := 0; c < 3; c++ {
			cs := float64(src.Pix[i+c]) / 255
			cb := float64(dst.Pix[i+c]) / 255
			co := as*(1-ab)*cs + as*ab*mix(cb, cs) + (1-as)*ab*cb
			dst.Pix[i+c] = toByte(co / ao)
		}
		dst.Pix[i+3] = toByte(ao)
	}
}

func blendFunc(blend catalog.Blend) func(cb, cs float64) float64 {
	switch blend {
	case catalog.BlendMultiply:
		return func(cb, cs float64) float64 { return cb * cs }
	case catalog.BlendScreen:
		return func(cb, cs float64) float64 { return cb + cs - cb*cs }
	case catalog.BlendDarken:
		return math.Min
	case catalog.BlendLighten:
		return math.Max
	default:
		return func(_, cs float64) float64 { return cs }
	}
}

func toByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
