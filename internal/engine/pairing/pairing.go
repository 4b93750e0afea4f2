// Package pairing resolves parent/child dependencies between layers: a trait
// chosen in a parent layer restricts which traits of a child layer are
// eligible for the next draw.
package pairing

import (
	"slices"

	"github.com/louisbranch/dnaforge/internal/engine/catalog"
)

// Pair maps one parent trait to the child trait names it makes eligible.
type Pair struct {
	ParentTrait string   `yaml:"parentTrait" json:"parentTrait"`
	ChildTraits []string `yaml:"childTrait" json:"childTrait"`
}

// Rule declares that ParentLayer constrains ChildLayer.
type Rule struct {
	ParentLayer string `yaml:"parentLayer" json:"parentLayer"`
	ChildLayer  string `yaml:"childLayer" json:"childLayer"`
	Pairs       []Pair `yaml:"pairConfig" json:"pairConfig"`
}

// ChildTraits is one candidate set staged for a child layer.
type ChildTraits struct {
	Traits []string
	Layer  string
}

// ParentTrait names a parent trait able to select a child trait.
type ParentTrait struct {
	Trait string
	Layer string
}

// Resolver answers dependency questions over a fixed rule table.
//
// Lookups on unknown layer or trait names yield empty results; Validate
// reports such references.
type Resolver struct {
	rules []Rule
}

// NewResolver copies rules into a resolver, normalizing every name the way
// the catalog normalizes trait file names.
func NewResolver(rules []Rule) *Resolver {
	copied := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		pairs := make([]Pair, 0, len(rule.Pairs))
		for _, pair := range rule.Pairs {
			children := make([]string, 0, len(pair.ChildTraits))
			for _, child := range pair.ChildTraits {
				children = append(children, catalog.NormalizeName(child))
			}
			pairs = append(pairs, Pair{
				ParentTrait: catalog.NormalizeName(pair.ParentTrait),
				ChildTraits: children,
			})
		}
		copied = append(copied, Rule{
			ParentLayer: catalog.NormalizeName(rule.ParentLayer),
			ChildLayer:  catalog.NormalizeName(rule.ChildLayer),
			Pairs:       pairs,
		})
	}
	return &Resolver{rules: copied}
}

// IsParentLayer reports whether any rule uses layer as its parent.
func (r *Resolver) IsParentLayer(layer string) bool {
	if r == nil {
		return false
	}
	return slices.ContainsFunc(r.rules, func(rule Rule) bool { return rule.ParentLayer == layer })
}

// IsChildLayer reports whether any rule uses layer as its child.
func (r *Resolver) IsChildLayer(layer string) bool {
	if r == nil {
		return false
	}
	return slices.ContainsFunc(r.rules, func(rule Rule) bool { return rule.ChildLayer == layer })
}

// ChildTraitsFor returns every child-trait set configured for parentTrait in
// parentLayer, one entry per matching pair across all rules.
func (r *Resolver) ChildTraitsFor(parentTrait, parentLayer string) []ChildTraits {
	if r == nil {
		return nil
	}
	var out []ChildTraits
	for _, rule := range r.rules {
		if rule.ParentLayer != parentLayer {
			continue
		}
		for _, pair := range rule.Pairs {
			if pair.ParentTrait == parentTrait {
				out = append(out, ChildTraits{Traits: pair.ChildTraits, Layer: rule.ChildLayer})
			}
		}
	}
	return out
}

// ParentTraitsFor returns every parent trait whose pair designates
// childTrait as eligible in childLayer.
func (r *Resolver) ParentTraitsFor(childTrait, childLayer string) []ParentTrait {
	if r == nil {
		return nil
	}
	var out []ParentTrait
	for _, rule := range r.rules {
		if rule.ChildLayer != childLayer {
			continue
		}
		for _, pair := range rule.Pairs {
			if slices.Contains(pair.ChildTraits, childTrait) {
				out = append(out, ParentTrait{Trait: pair.ParentTrait, Layer: rule.ParentLayer})
			}
		}
	}
	return out
}
