package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/dnaforge/internal/engine/pairing"
	"github.com/louisbranch/dnaforge/internal/metadata"
	apperrors "github.com/louisbranch/dnaforge/internal/platform/errors"
)

const sampleProject = `
layersDir: art/layers
buildDir: out
network: sol
pairingMode: strict
uniqueDnaTorrance: 50
layerConfigurations:
  - growEditionSizeTo: 10
    layersOrder:
      - name: Background
      - name: Type
      - name: Hand
        options:
          displayName: Accessory
          blend: multiply
          opacity: 0.7
  - growEditionSizeTo: 20
    layersOrder:
      - name: Background
      - name: Type
pairTraitConfig:
  - parentLayer: Type
    childLayer: Hand
    pairConfig:
      - parentTrait: Biege Y
        childTrait: [Shhh Y, Nothing]
      - parentTrait: Earth Z
        childTrait: [Shhh Z, Nothing]
metadata:
  namePrefix: Lazynaire
  extraMetadata:
    artist: someone
  solana:
    symbol: LZ
    sellerFeeBasisPoints: 500
background:
  brightness: 100%
format:
  width: 100
  height: 100
`

func TestDecodeSample(t *testing.T) {
	p, err := Decode(strings.NewReader(sampleProject))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(p.LayerConfigurations) != 2 || p.LayerConfigurations[1].GrowEditionSizeTo != 20 {
		t.Fatalf("unexpected layer configurations: %+v", p.LayerConfigurations)
	}
	hand := p.LayerConfigurations[0].LayersOrder[2]
	if hand.Options.DisplayName != "Accessory" || hand.Options.Blend != "multiply" || hand.Options.Opacity == nil || *hand.Options.Opacity != 0.7 {
		t.Fatalf("unexpected layer options: %+v", hand.Options)
	}
	if len(p.PairTraitConfig) != 1 || len(p.PairTraitConfig[0].Pairs) != 2 {
		t.Fatalf("unexpected pairing: %+v", p.PairTraitConfig)
	}
	if got := p.PairTraitConfig[0].Pairs[1].ChildTraits; len(got) != 2 || got[0] != "Shhh Z" {
		t.Fatalf("unexpected child traits: %v", got)
	}

	gen := p.GeneratorConfig()
	if gen.StartIndex != 0 || gen.PairingMode != pairing.ModeStrict || gen.UniqueDNATolerance != 50 {
		t.Fatalf("unexpected generator config: %+v", gen)
	}
	if gen.RarityDelimiter != "#" {
		t.Fatalf("expected default rarity delimiter, got %q", gen.RarityDelimiter)
	}

	meta := p.MetadataConfig()
	if meta.Network != metadata.NetworkSol || meta.Solana.SellerFeeBasisPoints != 500 || meta.Extra["artist"] != "someone" {
		t.Fatalf("unexpected metadata config: %+v", meta)
	}
	if meta.Description != "Remember to replace this description" {
		t.Fatalf("expected default description, got %q", meta.Description)
	}

	opts := p.RenderOptions(9)
	if opts.Background.Brightness != 1 || !opts.Background.Generate || opts.Format.Width != 100 || opts.Seed != 9 {
		t.Fatalf("unexpected render options: %+v", opts)
	}
	if opts.Text.Spacer != " => " {
		t.Fatalf("expected default spacer, got %q", opts.Text.Spacer)
	}
}

func TestDecodeRejectsInvalidProjects(t *testing.T) {
	base := "layerConfigurations:\n  - growEditionSizeTo: 5\n    layersOrder:\n      - name: Eyes\n"
	tests := []struct {
		name string
		doc  string
	}{
		{name: "empty", doc: ""},
		{name: "unknown field", doc: base + "colour: red\n"},
		{name: "shrinking growth", doc: base + "  - growEditionSizeTo: 3\n    layersOrder:\n      - name: Eyes\n"},
		{name: "empty layer order", doc: "layerConfigurations:\n  - growEditionSizeTo: 5\n"},
		{name: "dash rarity delimiter", doc: base + "rarityDelimiter: \"-\"\n"},
		{name: "unknown network", doc: base + "network: btc\n"},
		{name: "unknown pairing mode", doc: base + "pairingMode: loose\n"},
		{name: "bad brightness", doc: base + "background:\n  brightness: bright\n"},
		{name: "brightness out of range", doc: base + "background:\n  brightness: 150%\n"},
		{name: "zero width", doc: base + "format:\n  width: 0\n  height: 10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("error = %v, want %v", err, ErrInvalid)
			}
			if apperrors.ExitCode(err) != apperrors.ExitConfiguration {
				t.Fatalf("expected configuration exit code, got %d", apperrors.ExitCode(err))
			}
		})
	}
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dnaforge.yaml")
	if err := os.WriteFile(path, []byte(sampleProject), 0o644); err != nil {
		t.Fatalf("write project: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got, want := p.LayersPath(), filepath.Join(dir, "art", "layers"); got != want {
		t.Fatalf("LayersPath() = %q, want %q", got, want)
	}
	if got, want := p.BuildPath(), filepath.Join(dir, "out"); got != want {
		t.Fatalf("BuildPath() = %q, want %q", got, want)
	}
	if got := p.Path("/abs/dir"); got != "/abs/dir" {
		t.Fatalf("Path() should keep absolute paths, got %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing project file")
	}
}
