package dna

import (
	"strconv"

	"github.com/louisbranch/dnaforge/internal/engine/catalog"
	apperrors "github.com/louisbranch/dnaforge/internal/platform/errors"
)

// Selection pairs a layer with the element a sequence chose for it.
type Selection struct {
	Layer   catalog.Layer
	Element catalog.Element
}

// Resolve maps each entry back to the element of the layer at the same index.
func Resolve(seq Sequence, layers []catalog.Layer) ([]Selection, error) {
	if len(seq) != len(layers) {
		return nil, apperrors.WithMetadata(ErrLayerMismatch.Code, ErrLayerMismatch.Message, map[string]string{
			"entries": strconv.Itoa(len(seq)),
			"layers":  strconv.Itoa(len(layers)),
		})
	}
	selections := make([]Selection, 0, len(seq))
	for i, entry := range seq {
		layer := layers[i]
		element, ok := layer.FindByID(entry.ElementID)
		if !ok || element.Filename != entry.Filename {
			return nil, apperrors.WithMetadata(ErrLayerMismatch.Code, "dna entry does not belong to its layer", map[string]string{
				"entry": entry.String(),
				"layer": layer.Name,
			})
		}
		selections = append(selections, Selection{Layer: layer, Element: element})
	}
	return selections, nil
}
