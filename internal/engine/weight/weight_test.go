package weight

import (
	"errors"
	"math"
	"testing"

	"github.com/louisbranch/dnaforge/internal/engine/catalog"
	"github.com/louisbranch/dnaforge/internal/engine/pairing"
)

func fixtureLayers() []catalog.Layer {
	return []catalog.Layer{
		{ID: 0, Name: "P", Elements: []catalog.Element{
			{ID: 0, Name: "A", Weight: 10},
			{ID: 1, Name: "B", Weight: 20},
		}},
		{ID: 1, Name: "C", Elements: []catalog.Element{
			{ID: 0, Name: "X", Weight: 5},
			{ID: 1, Name: "Y", Weight: 3},
			{ID: 2, Name: "Z", Weight: 2},
		}},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestIndependentProb(t *testing.T) {
	layers := fixtureLayers()
	tests := []struct {
		trait, layer string
		want         float64
	}{
		{trait: "A", layer: "P", want: 1.0 / 3.0},
		{trait: "B", layer: "P", want: 2.0 / 3.0},
		{trait: "X", layer: "C", want: 0.5},
		{trait: "Missing", layer: "C", want: 0},
		{trait: "A", layer: "Missing", want: 0},
	}
	for _, tt := range tests {
		if got := IndependentProb(tt.trait, tt.layer, layers); !almostEqual(got, tt.want) {
			t.Fatalf("IndependentProb(%q, %q) = %v, want %v", tt.trait, tt.layer, got, tt.want)
		}
	}
}

func TestAdjustedWeightSingleParent(t *testing.T) {
	resolver := pairing.NewResolver([]pairing.Rule{{
		ParentLayer: "P",
		ChildLayer:  "C",
		Pairs:       []pairing.Pair{{ParentTrait: "A", ChildTraits: []string{"X"}}},
	}})
	adjuster := NewAdjuster(fixtureLayers(), resolver)

	got, err := adjuster.AdjustedWeight("X", "C")
	if err != nil {
		t.Fatalf("AdjustedWeight returned error: %v", err)
	}
	if !almostEqual(got, 15000) {
		t.Fatalf("AdjustedWeight = %v, want 15000", got)
	}
}

func TestAdjustedWeightSumsEveryParent(t *testing.T) {
	resolver := pairing.NewResolver([]pairing.Rule{{
		ParentLayer: "P",
		ChildLayer:  "C",
		Pairs: []pairing.Pair{
			{ParentTrait: "A", ChildTraits: []string{"Y"}},
			{ParentTrait: "B", ChildTraits: []string{"Y", "Z"}},
		},
	}})
	adjuster := NewAdjuster(fixtureLayers(), resolver)

	if got := adjuster.ParentProb("Y", "C"); !almostEqual(got, 1) {
		t.Fatalf("ParentProb(Y) = %v, want 1", got)
	}
	got, err := adjuster.AdjustedWeight("Y", "C")
	if err != nil {
		t.Fatalf("AdjustedWeight returned error: %v", err)
	}
	if !almostEqual(got, 3000) {
		t.Fatalf("AdjustedWeight(Y) = %v, want 3000", got)
	}

	got, err = adjuster.AdjustedWeight("Z", "C")
	if err != nil {
		t.Fatalf("AdjustedWeight returned error: %v", err)
	}
	if !almostEqual(got, 0.2/(2.0/3.0)*Scale) {
		t.Fatalf("AdjustedWeight(Z) = %v, want %v", got, 0.2/(2.0/3.0)*Scale)
	}
}

func TestAdjustedWeightRejectsUnreachableTrait(t *testing.T) {
	resolver := pairing.NewResolver([]pairing.Rule{{
		ParentLayer: "P",
		ChildLayer:  "C",
		Pairs:       []pairing.Pair{{ParentTrait: "A", ChildTraits: []string{"X"}}},
	}})
	adjuster := NewAdjuster(fixtureLayers(), resolver)

	_, err := adjuster.AdjustedWeight("Z", "C")
	if !errors.Is(err, ErrUnreachableChildTrait) {
		t.Fatalf("AdjustedWeight error = %v, want %v", err, ErrUnreachableChildTrait)
	}
}

func TestAdjustedWeightRejectsParentMissingFromCatalog(t *testing.T) {
	resolver := pairing.NewResolver([]pairing.Rule{{
		ParentLayer: "Typo",
		ChildLayer:  "C",
		Pairs:       []pairing.Pair{{ParentTrait: "A", ChildTraits: []string{"X"}}},
	}})
	adjuster := NewAdjuster(fixtureLayers(), resolver)

	if _, err := adjuster.AdjustedWeight("X", "C"); !errors.Is(err, ErrUnreachableChildTrait) {
		t.Fatalf("AdjustedWeight error = %v, want %v", err, ErrUnreachableChildTrait)
	}
}
