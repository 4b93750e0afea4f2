package render

import (
	"image"

	"github.com/louisbranch/dnaforge/internal/engine/dna"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawText writes one "layer<spacer>trait" line per selection. Lines are
// YGap apart starting YGap from the top.
func (c *Compositor) drawText(canvas *image.NRGBA, selections []dna.Selection) {
	d := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(c.fgColor),
		Face: basicfont.Face7x13,
	}
	text := c.opts.Text
	for i, selection := range selections {
		d.Dot = fixed.P(text.XGap, text.YGap*(i+1))
		d.DrawString(selection.Layer.Name + text.Spacer + selection.Element.Name)
	}
}
