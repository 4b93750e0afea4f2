package pairing

import (
	"fmt"
	"log"
	"strings"

	"github.com/louisbranch/dnaforge/internal/engine/catalog"
	apperrors "github.com/louisbranch/dnaforge/internal/platform/errors"
)

// Mode selects how unresolved rule references are handled.
type Mode string

const (
	// ModeLenient logs unresolved references; affected traits draw unconditioned.
	ModeLenient Mode = "lenient"
	// ModeStrict fails on the first unresolved reference.
	ModeStrict Mode = "strict"
)

// ErrUnknownReference indicates a rule names a layer or trait absent from the catalog.
var ErrUnknownReference = apperrors.New(apperrors.CodePairingUnknownReference, "pairing rule references an unknown layer or trait")

// ParseMode resolves a mode name; empty selects ModeLenient.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeLenient:
		return ModeLenient, nil
	case ModeStrict:
		return ModeStrict, nil
	default:
		return "", fmt.Errorf("unknown pairing mode %q", raw)
	}
}

// Problem describes one unresolved reference.
type Problem struct {
	Rule    int
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("pairing rule %d: %s", p.Rule, p.Message)
}

// Check lists every rule reference that does not resolve against layers.
func (r *Resolver) Check(layers []catalog.Layer) []Problem {
	if r == nil {
		return nil
	}
	byName := make(map[string]catalog.Layer, len(layers))
	for _, layer := range layers {
		byName[layer.Name] = layer
	}

	var problems []Problem
	for index, rule := range r.rules {
		parent, parentOK := byName[rule.ParentLayer]
		if !parentOK {
			problems = append(problems, Problem{Rule: index, Message: fmt.Sprintf("unknown parent layer %q", rule.ParentLayer)})
		}
		child, childOK := byName[rule.ChildLayer]
		if !childOK {
			problems = append(problems, Problem{Rule: index, Message: fmt.Sprintf("unknown child layer %q", rule.ChildLayer)})
		}
		if parentOK && childOK && parent.ID >= child.ID {
			problems = append(problems, Problem{Rule: index, Message: fmt.Sprintf("parent layer %q must come before child layer %q", rule.ParentLayer, rule.ChildLayer)})
		}
		for _, pair := range rule.Pairs {
			if parentOK {
				if _, ok := parent.FindByName(pair.ParentTrait); !ok {
					problems = append(problems, Problem{Rule: index, Message: fmt.Sprintf("unknown parent trait %q in layer %q", pair.ParentTrait, rule.ParentLayer)})
				}
			}
			if !childOK {
				continue
			}
			for _, trait := range pair.ChildTraits {
				if _, ok := child.FindByName(trait); !ok {
					problems = append(problems, Problem{Rule: index, Message: fmt.Sprintf("unknown child trait %q in layer %q", trait, rule.ChildLayer)})
				}
			}
		}
	}
	return problems
}

// Validate checks rule references against layers. ModeStrict returns the
// first problem as ErrUnknownReference; ModeLenient logs each problem.
func (r *Resolver) Validate(layers []catalog.Layer, mode Mode) error {
	problems := r.Check(layers)
	if len(problems) == 0 {
		return nil
	}
	if mode == ModeStrict {
		return apperrors.WithMetadata(ErrUnknownReference.Code, ErrUnknownReference.Message, map[string]string{
			"problem": problems[0].String(),
		})
	}
	for _, problem := range problems {
		log.Printf("warning: %s; pairing is disabled for it", problem)
	}
	return nil
}
