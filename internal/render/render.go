// Package render composites the selected trait images of an edition into a
// single canvas.
package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io/fs"
	"math/rand"

	"github.com/louisbranch/dnaforge/internal/engine/dna"
	"golang.org/x/image/draw"
)

// DefaultConcurrency bounds concurrent trait image decodes per edition.
const DefaultConcurrency = 4

// Format sets the canvas size. Smoothing selects bilinear scaling instead of
// nearest neighbor, which keeps pixel art crisp when off.
type Format struct {
	Width     int  `yaml:"width"`
	Height    int  `yaml:"height"`
	Smoothing bool `yaml:"smoothing"`
}

// Background fills the canvas before any layer is drawn.
type Background struct {
	Generate   bool    `yaml:"generate"`
	Brightness float64 `yaml:"brightness"` // HSL lightness in [0, 1] for generated colors
	Static     bool    `yaml:"static"`
	Default    string  `yaml:"default"`
}

// TextOptions configures text-only editions, which list each layer and its
// trait instead of drawing images.
type TextOptions struct {
	Only   bool   `yaml:"only"`
	Color  string `yaml:"color"`
	XGap   int    `yaml:"xGap"`
	YGap   int    `yaml:"yGap"`
	Spacer string `yaml:"spacer"`
}

// Options configures a Compositor.
type Options struct {
	Format      Format
	Background  Background
	Text        TextOptions
	Seed        int64
	Concurrency int
}

// Compositor renders editions from trait images stored in an fs.FS.
// Generated background colors draw from a source seeded with Options.Seed,
// so a Compositor is not safe for concurrent use.
type Compositor struct {
	fsys    fs.FS
	opts    Options
	rng     *rand.Rand
	scaler  draw.Scaler
	bgColor color.Color
	fgColor color.Color
}

// New creates a Compositor reading trait files from fsys.
func New(fsys fs.FS, opts Options) (*Compositor, error) {
	if fsys == nil {
		return nil, errors.New("trait file system is required")
	}
	if opts.Format.Width <= 0 || opts.Format.Height <= 0 {
		return nil, errors.New("canvas width and height must be positive")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Text.Spacer == "" {
		opts.Text.Spacer = " => "
	}

	c := &Compositor{
		fsys:   fsys,
		opts:   opts,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		scaler: draw.NearestNeighbor,
	}
	if opts.Format.Smoothing {
		c.scaler = draw.ApproxBiLinear
	}

	var err error
	if opts.Background.Generate && opts.Background.Static {
		if c.bgColor, err = ParseColor(opts.Background.Default); err != nil {
			return nil, err
		}
	}
	if opts.Text.Only {
		textColor := opts.Text.Color
		if textColor == "" {
			textColor = "#ffffff"
		}
		if c.fgColor, err = ParseColor(textColor); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Render draws the background and then each selection in layer order.
func (c *Compositor) Render(ctx context.Context, selections []dna.Selection) (*image.NRGBA, error) {
	canvas := image.NewNRGBA(image.Rect(0, 0, c.opts.Format.Width, c.opts.Format.Height))
	c.drawBackground(canvas)

	if c.opts.Text.Only {
		c.drawText(canvas, selections)
		return canvas, nil
	}

	layers, err := LoadSelections(ctx, c.fsys, selections, c.opts.Concurrency)
	if err != nil {
		return nil, err
	}
	for _, layer := range layers {
		scaled := image.NewNRGBA(canvas.Bounds())
		c.scaler.Scale(scaled, scaled.Bounds(), layer.Image, layer.Image.Bounds(), draw.Src, nil)
		composite(canvas, scaled, layer.Selection.Layer.Blend, layer.Selection.Layer.Opacity)
	}
	return canvas, nil
}

func (c *Compositor) drawBackground(canvas *image.NRGBA) {
	if !c.opts.Background.Generate {
		return
	}
	fill := c.bgColor
	if fill == nil {
		fill = hsl(c.rng.Float64()*360, 1, c.opts.Background.Brightness)
	}
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
}
