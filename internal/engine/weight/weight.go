// Package weight computes the conditional sampling weights used when a child
// layer's candidate pool is restricted by a parent selection.
package weight

import (
	"github.com/louisbranch/dnaforge/internal/engine/catalog"
	"github.com/louisbranch/dnaforge/internal/engine/pairing"
	apperrors "github.com/louisbranch/dnaforge/internal/platform/errors"
)

// Scale turns adjusted probabilities into fixed-point weights with four
// significant figures.
const Scale = 10000

// ErrUnreachableChildTrait indicates no parent trait can select a child trait,
// so its combined parent probability is zero.
var ErrUnreachableChildTrait = apperrors.New(apperrors.CodePairingUnreachableTrait, "child trait is unreachable by any parent trait")

// IndependentProb returns trait's weight divided by the total weight of the
// unrestricted layer. Unknown layers or traits yield 0.
func IndependentProb(trait, layer string, layers []catalog.Layer) float64 {
	for _, candidate := range layers {
		if candidate.Name != layer {
			continue
		}
		total := candidate.TotalWeight()
		if total <= 0 {
			return 0
		}
		element, ok := candidate.FindByName(trait)
		if !ok {
			return 0
		}
		return element.Weight / total
	}
	return 0
}

// Adjuster rebalances child trait weights against the probability of the
// parent traits that select them.
type Adjuster struct {
	layers   []catalog.Layer
	resolver *pairing.Resolver
}

// NewAdjuster returns an adjuster over the unrestricted catalog layers.
func NewAdjuster(layers []catalog.Layer, resolver *pairing.Resolver) *Adjuster {
	return &Adjuster{layers: layers, resolver: resolver}
}

// ParentProb sums IndependentProb over every parent trait able to select
// childTrait in childLayer.
func (a *Adjuster) ParentProb(childTrait, childLayer string) float64 {
	sum := 0.0
	for _, parent := range a.resolver.ParentTraitsFor(childTrait, childLayer) {
		sum += IndependentProb(parent.Trait, parent.Layer, a.layers)
	}
	return sum
}

// AdjustedWeight returns (P(child) / ΣP(parents)) * Scale, where both
// probabilities are taken over the unrestricted pools. A child trait with no
// reachable parent returns ErrUnreachableChildTrait.
func (a *Adjuster) AdjustedWeight(childTrait, childLayer string) (float64, error) {
	parentProb := a.ParentProb(childTrait, childLayer)
	if parentProb <= 0 {
		return 0, apperrors.WithMetadata(ErrUnreachableChildTrait.Code, ErrUnreachableChildTrait.Message, map[string]string{
			"trait": childTrait,
			"layer": childLayer,
		})
	}
	childProb := IndependentProb(childTrait, childLayer, a.layers)
	return childProb / parentProb * Scale, nil
}
