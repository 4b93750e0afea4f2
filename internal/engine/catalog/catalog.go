// Package catalog models the trait catalog: ordered layers, each an ordered
// list of named, weighted trait elements enumerated from one directory per
// layer.
package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/dnaforge/internal/platform/errors"
	"golang.org/x/text/unicode/norm"
)

// DNADelimiter separates layer entries in a DNA sequence. Trait file names
// must not contain it.
const DNADelimiter = "-"

// OptionsDelimiter starts the options suffix of a DNA entry. Trait file names
// must not contain it either.
const OptionsDelimiter = "?"

// DefaultRarityDelimiter separates a trait name from its weight suffix.
const DefaultRarityDelimiter = "#"

// ErrReservedDelimiter indicates a trait file name contains DNADelimiter or
// OptionsDelimiter.
var ErrReservedDelimiter = apperrors.New(apperrors.CodeCatalogReservedDelimiter, "trait file name can not contain dashes or question marks")

// ErrInvalidWeight indicates a trait weight suffix is numeric but not positive.
var ErrInvalidWeight = apperrors.New(apperrors.CodeCatalogInvalidWeight, "trait weight must be positive")

// Element is one concrete trait option within a layer.
type Element struct {
	ID       int
	Name     string
	Filename string
	Path     string
	Weight   float64
}

// Layer is a named axis of variation with its candidate elements.
type Layer struct {
	ID          int
	Name        string
	DisplayName string
	Elements    []Element
	Blend       Blend
	Opacity     float64
	BypassDNA   bool
}

// TotalWeight sums the catalog weight of every element in the layer.
func (l Layer) TotalWeight() float64 {
	total := 0.0
	for _, element := range l.Elements {
		total += element.Weight
	}
	return total
}

// FindByName returns the first element with the given trait name.
func (l Layer) FindByName(name string) (Element, bool) {
	for _, element := range l.Elements {
		if element.Name == name {
			return element, true
		}
	}
	return Element{}, false
}

// FindByID returns the element with the given sequence index.
func (l Layer) FindByID(id int) (Element, bool) {
	for _, element := range l.Elements {
		if element.ID == id {
			return element, true
		}
	}
	return Element{}, false
}

// Label returns the name used for attributes: the display name when set.
func (l Layer) Label() string {
	if l.DisplayName != "" {
		return l.DisplayName
	}
	return l.Name
}

// NormalizeName trims and NFC-normalizes a trait or layer name so names read
// from file systems that store decomposed forms compare equal to configured
// names.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ParseElement parses a trait file name of the form
// <name><delimiter><weight>.<ext>. The weight defaults to 1 when the suffix
// is absent or not numeric.
func ParseElement(filename, rarityDelimiter string, id int) (Element, error) {
	if strings.ContainsAny(filename, DNADelimiter+OptionsDelimiter) {
		return Element{}, apperrors.WithMetadata(ErrReservedDelimiter.Code,
			ErrReservedDelimiter.Message+", please fix", map[string]string{"file": filename})
	}
	if rarityDelimiter == "" {
		rarityDelimiter = DefaultRarityDelimiter
	}

	stem := trimExtension(filename)
	name := stem
	if idx := strings.Index(stem, rarityDelimiter); idx >= 0 {
		name = stem[:idx]
	}

	weight := 1.0
	if idx := strings.LastIndex(stem, rarityDelimiter); idx >= 0 {
		if parsed, ok := parseWeight(stem[idx+len(rarityDelimiter):]); ok {
			if parsed <= 0 {
				return Element{}, apperrors.WithMetadata(ErrInvalidWeight.Code,
					ErrInvalidWeight.Message, map[string]string{"file": filename})
			}
			weight = parsed
		}
	}

	return Element{
		ID:       id,
		Name:     NormalizeName(name),
		Filename: filename,
		Weight:   weight,
	}, nil
}

func trimExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx <= 0 {
		return filename
	}
	return filename[:idx]
}

func parseWeight(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// String renders the element the way it appears in diagnostics.
func (e Element) String() string {
	return fmt.Sprintf("%d:%s", e.ID, e.Filename)
}
