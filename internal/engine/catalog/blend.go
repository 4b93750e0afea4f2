package catalog

import (
	"strings"

	apperrors "github.com/louisbranch/dnaforge/internal/platform/errors"
)

// Blend is a canvas composite mode applied when a layer is drawn.
type Blend string

const (
	BlendSourceOver Blend = "source-over"
	BlendCopy       Blend = "copy"
	BlendMultiply   Blend = "multiply"
	BlendScreen     Blend = "screen"
	BlendDarken     Blend = "darken"
	BlendLighten    Blend = "lighten"
)

// ErrInvalidBlend indicates an unsupported composite mode.
var ErrInvalidBlend = apperrors.New(apperrors.CodeCatalogInvalidBlend, "unsupported blend mode")

// ParseBlend resolves a composite mode name; empty selects source-over.
func ParseBlend(raw string) (Blend, error) {
	value := Blend(strings.ToLower(strings.TrimSpace(raw)))
	switch value {
	case "":
		return BlendSourceOver, nil
	case BlendSourceOver, BlendCopy, BlendMultiply, BlendScreen, BlendDarken, BlendLighten:
		return value, nil
	default:
		return "", apperrors.WithMetadata(ErrInvalidBlend.Code, ErrInvalidBlend.Message, map[string]string{"blend": raw})
	}
}
