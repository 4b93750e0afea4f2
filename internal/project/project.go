// Package project loads the YAML project file that describes a collection:
// where the trait layers live, how editions grow, pairing rules, metadata
// and the output canvas.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/louisbranch/dnaforge/internal/engine/catalog"
	"github.com/louisbranch/dnaforge/internal/engine/pairing"
	"github.com/louisbranch/dnaforge/internal/generator"
	"github.com/louisbranch/dnaforge/internal/metadata"
	"github.com/louisbranch/dnaforge/internal/render"
	apperrors "github.com/louisbranch/dnaforge/internal/platform/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalid indicates a project file that can not drive a run.
var ErrInvalid = apperrors.New(apperrors.CodeProjectInvalid, "invalid project")

// Background mirrors render.Background with brightness written as a
// percentage, for example "80%".
type Background struct {
	Generate   bool   `yaml:"generate"`
	Brightness string `yaml:"brightness"`
	Static     bool   `yaml:"static"`
	Default    string `yaml:"default"`
}

// Project is the decoded project file.
type Project struct {
	LayersDir                  string                         `yaml:"layersDir"`
	BuildDir                   string                         `yaml:"buildDir"`
	LayerConfigurations        []generator.LayerConfiguration `yaml:"layerConfigurations"`
	PairTraitConfig            []pairing.Rule                 `yaml:"pairTraitConfig"`
	PairingMode                string                         `yaml:"pairingMode"`
	RarityDelimiter            string                         `yaml:"rarityDelimiter"`
	UniqueDNATolerance         int                            `yaml:"uniqueDnaTorrance"`
	ShuffleLayerConfigurations bool                           `yaml:"shuffleLayerConfigurations"`
	Network                    string                         `yaml:"network"`
	Metadata                   metadata.Config                `yaml:"metadata"`
	Format                     render.Format                  `yaml:"format"`
	Background                 Background                     `yaml:"background"`
	Text                       render.TextOptions             `yaml:"text"`
	DebugLogs                  bool                           `yaml:"debugLogs"`

	// dir is the directory of the project file; relative paths resolve
	// against it.
	dir string
}

// Default returns the settings of a new project.
func Default() Project {
	return Project{
		LayersDir:          "layers",
		BuildDir:           "build",
		RarityDelimiter:    catalog.DefaultRarityDelimiter,
		UniqueDNATolerance: 200,
		Network:            string(metadata.NetworkEth),
		PairingMode:        string(pairing.ModeLenient),
		Metadata: metadata.Config{
			NamePrefix:  "Your Collection",
			Description: "Remember to replace this description",
			BaseURI:     "ipfs://NewUriToReplace",
		},
		Format: render.Format{Width: 512, Height: 512},
		Background: Background{
			Generate:   true,
			Brightness: "80%",
			Default:    "#000000",
		},
		Text: render.TextOptions{
			Color:  "#ffffff",
			XGap:   40,
			YGap:   40,
			Spacer: " => ",
		},
	}
}

// Load reads and validates the project file at path. Fields missing from the
// file keep their Default values.
func Load(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("read project: %w", err)
	}
	p, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Project{}, err
	}
	p.dir = filepath.Dir(path)
	return p, nil
}

// Decode reads and validates a project document.
func Decode(r io.Reader) (Project, error) {
	p := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Project{}, apperrors.Wrap(ErrInvalid.Code, "decode project", err)
	}
	if err := p.Validate(); err != nil {
		return Project{}, err
	}
	return p, nil
}

// Validate reports the first setting that can not drive a run.
func (p Project) Validate() error {
	if len(p.LayerConfigurations) == 0 {
		return invalid("at least one layer configuration is required", nil)
	}
	previous := 0
	for i, layerConfig := range p.LayerConfigurations {
		index := strconv.Itoa(i)
		if layerConfig.GrowEditionSizeTo <= previous {
			return invalid("growEditionSizeTo must increase across layer configurations", map[string]string{"configuration": index})
		}
		if len(layerConfig.LayersOrder) == 0 {
			return invalid("layersOrder is empty", map[string]string{"configuration": index})
		}
		for _, spec := range layerConfig.LayersOrder {
			if strings.TrimSpace(spec.Name) == "" {
				return invalid("layer name is required", map[string]string{"configuration": index})
			}
		}
		previous = layerConfig.GrowEditionSizeTo
	}
	if p.RarityDelimiter == catalog.DNADelimiter {
		return invalid("rarityDelimiter can not be the dna delimiter", nil)
	}
	if _, err := metadata.ParseNetwork(p.Network); err != nil {
		return invalid(err.Error(), nil)
	}
	if _, err := pairing.ParseMode(p.PairingMode); err != nil {
		return invalid(err.Error(), nil)
	}
	if _, err := p.brightness(); err != nil {
		return invalid(err.Error(), nil)
	}
	if p.Format.Width <= 0 || p.Format.Height <= 0 {
		return invalid("format width and height must be positive", nil)
	}
	return nil
}

func invalid(message string, fields map[string]string) error {
	return apperrors.WithMetadata(ErrInvalid.Code, ErrInvalid.Message+": "+message, fields)
}

// Path resolves a project-relative path.
func (p Project) Path(rel string) string {
	if filepath.IsAbs(rel) || p.dir == "" {
		return rel
	}
	return filepath.Join(p.dir, rel)
}

// LayersPath returns the resolved layers directory.
func (p Project) LayersPath() string {
	return p.Path(p.LayersDir)
}

// BuildPath returns the resolved build directory.
func (p Project) BuildPath() string {
	return p.Path(p.BuildDir)
}

// brightness parses "80%" or "0.8" as a lightness in [0, 1].
func (p Project) brightness() (float64, error) {
	raw := strings.TrimSpace(p.Background.Brightness)
	if raw == "" {
		return 0.8, nil
	}
	percent := strings.HasSuffix(raw, "%")
	value, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid background brightness %q", p.Background.Brightness)
	}
	if percent {
		value /= 100
	}
	if value < 0 || value > 1 {
		return 0, fmt.Errorf("background brightness %q out of range", p.Background.Brightness)
	}
	return value, nil
}

// GeneratorConfig returns the generator settings of the project. Layers and
// Seed are left for the caller.
func (p Project) GeneratorConfig() generator.Config {
	network, _ := metadata.ParseNetwork(p.Network)
	mode, _ := pairing.ParseMode(p.PairingMode)
	cfg := generator.DefaultConfig()
	cfg.LayerConfigurations = p.LayerConfigurations
	cfg.RarityDelimiter = p.RarityDelimiter
	cfg.UniqueDNATolerance = p.UniqueDNATolerance
	cfg.ShuffleLayerConfigurations = p.ShuffleLayerConfigurations
	cfg.StartIndex = network.StartIndex()
	cfg.Pairing = p.PairTraitConfig
	cfg.PairingMode = mode
	cfg.Verbose = p.DebugLogs
	return cfg
}

// MetadataConfig returns the metadata settings with the network applied.
func (p Project) MetadataConfig() metadata.Config {
	network, _ := metadata.ParseNetwork(p.Network)
	cfg := p.Metadata
	cfg.Network = network
	return cfg
}

// RenderOptions returns the compositor settings of the project.
func (p Project) RenderOptions(seed int64) render.Options {
	brightness, _ := p.brightness()
	return render.Options{
		Format: p.Format,
		Background: render.Background{
			Generate:   p.Background.Generate,
			Brightness: brightness,
			Static:     p.Background.Static,
			Default:    p.Background.Default,
		},
		Text: p.Text,
		Seed: seed,
	}
}
