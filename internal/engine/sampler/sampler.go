// Package sampler draws one DNA sequence per pass over the configured layers
// using weighted inverse-CDF selection, with parent selections restricting
// and reweighting the next child layer.
package sampler

import (
	"errors"
	"slices"

	"github.com/louisbranch/dnaforge/internal/engine/catalog"
	"github.com/louisbranch/dnaforge/internal/engine/dna"
	"github.com/louisbranch/dnaforge/internal/engine/pairing"
	"github.com/louisbranch/dnaforge/internal/engine/weight"
	apperrors "github.com/louisbranch/dnaforge/internal/platform/errors"
)

// ErrEmptyCandidatePool indicates no element of a child layer matches the
// staged child traits.
var ErrEmptyCandidatePool = apperrors.New(apperrors.CodePairingEmptyCandidatePool, "no trait in child layer matches the paired traits")

// ErrNoLayers indicates Sample was called without layers.
var ErrNoLayers = errors.New("at least one layer is required")

// Source is the deterministic random source consumed by a session.
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Attribute is one trait_type/value pair destined for edition metadata.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// Result is the outcome of one sampling pass.
type Result struct {
	Sequence   dna.Sequence
	Attributes []Attribute
}

// DNA returns the encoded sequence.
func (r Result) DNA() string {
	return r.Sequence.String()
}

// Session carries the run-scoped sampling state: the random source and the
// child traits staged by the last parent draw.
//
// # Determinism
//
// Every pass consumes exactly one value from the source per layer, in layer
// order, so a fixed seed reproduces the same sequence of passes.
//
// A Session is not safe for concurrent use.
type Session struct {
	rng      Source
	resolver *pairing.Resolver
	staged   []string
}

// NewSession returns a session drawing from rng under the given pairing rules.
// A nil resolver disables pairing.
func NewSession(rng Source, resolver *pairing.Resolver) *Session {
	if resolver == nil {
		resolver = pairing.NewResolver(nil)
	}
	return &Session{rng: rng, resolver: resolver}
}

// Staged returns the child traits currently staged for the next child layer.
func (s *Session) Staged() []string {
	return append([]string{}, s.staged...)
}

// Sample performs one full pass over layers and returns the drawn sequence.
//
// A child layer reached while traits are staged draws only from elements
// named in the staged set, weighted by weight.Adjuster; the staged set is
// cleared by that draw. The catalog layers are never modified, so the
// restriction applies to that single draw only.
func (s *Session) Sample(layers []catalog.Layer) (Result, error) {
	if len(layers) == 0 {
		return Result{}, ErrNoLayers
	}
	s.staged = nil
	adjuster := weight.NewAdjuster(layers, s.resolver)

	result := Result{
		Sequence:   make(dna.Sequence, 0, len(layers)),
		Attributes: make([]Attribute, 0, len(layers)),
	}
	for _, layer := range layers {
		element, err := s.drawLayer(layer, adjuster)
		if err != nil {
			return Result{}, err
		}
		if s.resolver.IsParentLayer(layer.Name) {
			s.stage(element.Name, layer.Name)
		}

		result.Sequence = append(result.Sequence, dna.Entry{
			ElementID: element.ID,
			Filename:  element.Filename,
			BypassDNA: layer.BypassDNA,
		})
		result.Attributes = append(result.Attributes, Attribute{
			TraitType: layer.Label(),
			Value:     element.Name,
		})
	}
	return result, nil
}

type candidate struct {
	element catalog.Element
	weight  float64
}

func (s *Session) drawLayer(layer catalog.Layer, adjuster *weight.Adjuster) (catalog.Element, error) {
	pool, err := s.candidates(layer, adjuster)
	if err != nil {
		return catalog.Element{}, err
	}
	return pick(pool, s.rng.Float64()), nil
}

// candidates returns the per-draw pool for layer. Only a child layer with
// staged traits is restricted; everything else uses the full catalog.
func (s *Session) candidates(layer catalog.Layer, adjuster *weight.Adjuster) ([]candidate, error) {
	if !s.resolver.IsChildLayer(layer.Name) || len(s.staged) == 0 {
		pool := make([]candidate, 0, len(layer.Elements))
		for _, element := range layer.Elements {
			pool = append(pool, candidate{element: element, weight: element.Weight})
		}
		if len(pool) == 0 {
			return nil, apperrors.WithMetadata(catalog.ErrLayerMissing.Code, "layer has no trait files", map[string]string{"layer": layer.Name})
		}
		return pool, nil
	}

	staged := s.staged
	s.staged = nil

	pool := make([]candidate, 0, len(staged))
	for _, element := range layer.Elements {
		if !slices.Contains(staged, element.Name) {
			continue
		}
		w, err := adjuster.AdjustedWeight(element.Name, layer.Name)
		if err != nil {
			return nil, err
		}
		pool = append(pool, candidate{element: element, weight: w})
	}
	if len(pool) == 0 {
		return nil, apperrors.WithMetadata(ErrEmptyCandidatePool.Code, ErrEmptyCandidatePool.Message, map[string]string{"layer": layer.Name})
	}
	return pool, nil
}

// pick performs inverse-CDF selection with u in [0, 1). Rounding can leave a
// remainder after the last subtraction; the last candidate absorbs it.
func pick(pool []candidate, u float64) catalog.Element {
	total := 0.0
	for _, c := range pool {
		total += c.weight
	}
	r := u * total
	for _, c := range pool {
		r -= c.weight
		if r < 0 {
			return c.element
		}
	}
	return pool[len(pool)-1].element
}

func (s *Session) stage(parentTrait, parentLayer string) {
	for _, set := range s.resolver.ChildTraitsFor(parentTrait, parentLayer) {
		for _, trait := range set.Traits {
			if !slices.Contains(s.staged, trait) {
				s.staged = append(s.staged, trait)
			}
		}
	}
}
