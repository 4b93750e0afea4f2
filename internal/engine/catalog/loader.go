package catalog

import (
	"errors"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/dnaforge/internal/platform/errors"
)

// ErrLayerMissing indicates a configured layer has no readable directory.
var ErrLayerMissing = apperrors.New(apperrors.CodeCatalogLayerMissing, "layer directory not found")

// ErrInvalidOpacity indicates an opacity outside [0, 1].
var ErrInvalidOpacity = apperrors.New(apperrors.CodeCatalogInvalidOpacity, "layer opacity must be between 0 and 1")

// LayerOptions overrides per-layer defaults.
type LayerOptions struct {
	DisplayName string   `yaml:"displayName"`
	Blend       string   `yaml:"blend"`
	Opacity     *float64 `yaml:"opacity"`
	BypassDNA   bool     `yaml:"bypassDNA"`
}

// LayerSpec is one entry of a configured layer order.
type LayerSpec struct {
	Name    string       `yaml:"name"`
	Options LayerOptions `yaml:"options"`
}

// LoadLayers enumerates one directory per spec, in spec order, into layers.
//
// Element ids are sequence indexes over the sorted directory listing after
// hidden files and sub-directories are skipped, so the same catalog always
// yields the same ids.
func LoadLayers(fsys fs.FS, specs []LayerSpec, rarityDelimiter string) ([]Layer, error) {
	if fsys == nil {
		return nil, errors.New("catalog file system is required")
	}
	layers := make([]Layer, 0, len(specs))
	for index, spec := range specs {
		layer, err := loadLayer(fsys, index, spec, rarityDelimiter)
		if err != nil {
			return nil, err
		}
		layers = append(layers, layer)
	}
	return layers, nil
}

func loadLayer(fsys fs.FS, index int, spec LayerSpec, rarityDelimiter string) (Layer, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return Layer{}, apperrors.WithMetadata(ErrLayerMissing.Code, "layer name is required", map[string]string{"index": strconv.Itoa(index)})
	}

	blend, err := ParseBlend(spec.Options.Blend)
	if err != nil {
		return Layer{}, err
	}
	opacity := 1.0
	if spec.Options.Opacity != nil {
		opacity = *spec.Options.Opacity
	}
	if opacity < 0 || opacity > 1 {
		return Layer{}, apperrors.WithMetadata(ErrInvalidOpacity.Code, ErrInvalidOpacity.Message, map[string]string{"layer": name})
	}

	elements, err := readElements(fsys, name, rarityDelimiter)
	if err != nil {
		return Layer{}, err
	}

	displayName := strings.TrimSpace(spec.Options.DisplayName)
	if displayName == "" {
		displayName = name
	}

	return Layer{
		ID:          index,
		Name:        NormalizeName(name),
		DisplayName: displayName,
		Elements:    elements,
		Blend:       blend,
		Opacity:     opacity,
		BypassDNA:   spec.Options.BypassDNA,
	}, nil
}

func readElements(fsys fs.FS, dir, rarityDelimiter string) ([]Element, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, apperrors.Wrap(ErrLayerMissing.Code, "read layer "+dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	elements := make([]Element, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || isHidden(entry.Name()) {
			continue
		}
		element, err := ParseElement(entry.Name(), rarityDelimiter, len(elements))
		if err != nil {
			var domainErr *apperrors.Error
			if errors.As(err, &domainErr) && domainErr.Metadata != nil {
				domainErr.Metadata["layer"] = dir
			}
			return nil, err
		}
		element.Path = path.Join(dir, entry.Name())
		elements = append(elements, element)
	}
	if len(elements) == 0 {
		return nil, apperrors.WithMetadata(ErrLayerMissing.Code, "layer has no trait files", map[string]string{"layer": dir})
	}
	return elements, nil
}

// isHidden matches dot-files such as .DS_Store but not names like "..".
func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.' && name[1] != '.'
}
