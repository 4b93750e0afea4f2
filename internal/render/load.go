package render

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io/fs"

	"github.com/louisbranch/dnaforge/internal/engine/dna"
	"golang.org/x/sync/errgroup"
)

// Loaded is a selection with its decoded trait image.
type Loaded struct {
	Selection dna.Selection
	Image     image.Image
}

// LoadSelections decodes the trait image of every selection with at most
// limit decodes in flight. The result keeps the order of selections.
func LoadSelections(ctx context.Context, fsys fs.FS, selections []dna.Selection, limit int) ([]Loaded, error) {
	loaded := make([]Loaded, len(selections))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, selection := range selections {
		i, selection := i, selection
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := decode(fsys, selection.Element.Path)
			if err != nil {
				return fmt.Errorf("load %s trait %q: %w", selection.Layer.Name, selection.Element.Name, err)
			}
			loaded[i] = Loaded{Selection: selection, Image: img}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return loaded, nil
}

func decode(fsys fs.FS, name string) (image.Image, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}
