package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/louisbranch/dnaforge/internal/engine/catalog"
	"github.com/louisbranch/dnaforge/internal/engine/dna"
)

func solidPNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func selection(layer, trait, path string, blend catalog.Blend, opacity float64) dna.Selection {
	return dna.Selection{
		Layer:   catalog.Layer{Name: layer, Blend: blend, Opacity: opacity},
		Element: catalog.Element{Name: trait, Path: path},
	}
}

func assertPixel(t *testing.T, img *image.NRGBA, x, y int, want color.NRGBA) {
	t.Helper()
	got := img.NRGBAAt(x, y)
	diff := func(a, b uint8) int {
		if a > b {
			return int(a - b)
		}
		return int(b - a)
	}
	if diff(got.R, want.R) > 1 || diff(got.G, want.G) > 1 || diff(got.B, want.B) > 1 || diff(got.A, want.A) > 1 {
		t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
	}
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.NRGBA{A: 255}
)

func TestNewValidatesOptions(t *testing.T) {
	fsys := fstest.MapFS{}
	if _, err := New(nil, Options{Format: Format{Width: 1, Height: 1}}); err == nil {
		t.Fatal("expected error for nil file system")
	}
	if _, err := New(fsys, Options{}); err == nil {
		t.Fatal("expected error for empty format")
	}
	opts := Options{
		Format:     Format{Width: 1, Height: 1},
		Background: Background{Generate: true, Static: true, Default: "not-a-color"},
	}
	if _, err := New(fsys, opts); err == nil {
		t.Fatal("expected error for invalid background color")
	}
}

func TestLoadSelectionsKeepsLayerOrder(t *testing.T) {
	fsys := fstest.MapFS{}
	var selections []dna.Selection
	for i, name := range []string{"a", "b", "c", "d", "e", "f"} {
		path := name + "/trait.png"
		fsys[path] = &fstest.MapFile{Data: solidPNG(t, i+1, 1, red)}
		selections = append(selections, selection(name, "trait", path, catalog.BlendSourceOver, 1))
	}

	loaded, err := LoadSelections(context.Background(), fsys, selections, 2)
	if err != nil {
		t.Fatalf("LoadSelections returned error: %v", err)
	}
	for i, layer := range loaded {
		if layer.Selection.Layer.Name != selections[i].Layer.Name {
			t.Fatalf("layer %d = %s, want %s", i, layer.Selection.Layer.Name, selections[i].Layer.Name)
		}
		if layer.Image.Bounds().Dx() != i+1 {
			t.Fatalf("layer %d width = %d, want %d", i, layer.Image.Bounds().Dx(), i+1)
		}
	}
}

func TestLoadSelectionsMissingFile(t *testing.T) {
	selections := []dna.Selection{selection("Eyes", "Blue", "Eyes/Blue.png", catalog.BlendSourceOver, 1)}
	if _, err := LoadSelections(context.Background(), fstest.MapFS{}, selections, 1); err == nil {
		t.Fatal("expected error for missing trait file")
	}
}

func TestRenderBlendModes(t *testing.T) {
	fsys := fstest.MapFS{
		"base/red.png":     {Data: solidPNG(t, 2, 2, red)},
		"top/white.png":    {Data: solidPNG(t, 2, 2, white)},
		"top/black.png":    {Data: solidPNG(t, 2, 2, black)},
		"top/clear.png":    {Data: solidPNG(t, 2, 2, color.NRGBA{})},
		"top/halfblue.png": {Data: solidPNG(t, 2, 2, color.NRGBA{B: 255, A: 128})},
	}
	base := selection("Base", "Red", "base/red.png", catalog.BlendSourceOver, 1)

	tests := []struct {
		name string
		top  dna.Selection
		want color.NRGBA
	}{
		{name: "source over", top: selection("Top", "White", "top/white.png", catalog.BlendSourceOver, 1), want: white},
		{name: "transparent source", top: selection("Top", "Clear", "top/clear.png", catalog.BlendSourceOver, 1), want: red},
		{name: "opacity", top: selection("Top", "White", "top/white.png", catalog.BlendSourceOver, 0.5), want: color.NRGBA{R: 255, G: 128, B: 128, A: 255}},
		{name: "multiply", top: selection("Top", "White", "top/white.png", catalog.BlendMultiply, 1), want: red},
		{name: "screen", top: selection("Top", "Black", "top/black.png", catalog.BlendScreen, 1), want: red},
		{name: "darken", top: selection("Top", "Black", "top/black.png", catalog.BlendDarken, 1), want: black},
		{name: "lighten", top: selection("Top", "Black", "top/black.png", catalog.BlendLighten, 1), want: red},
		{name: "copy", top: selection("Top", "Half", "top/halfblue.png", catalog.BlendCopy, 1), want: color.NRGBA{B: 255, A: 128}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(fsys, Options{Format: Format{Width: 2, Height: 2}})
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			img, err := c.Render(context.Background(), []dna.Selection{base, tt.top})
			if err != nil {
				t.Fatalf("Render returned error: %v", err)
			}
			assertPixel(t, img, 1, 1, tt.want)
		})
	}
}

func TestRenderScalesToFormat(t *testing.T) {
	fsys := fstest.MapFS{"base/red.png": {Data: solidPNG(t, 1, 1, red)}}
	for _, smoothing := range []bool{false, true} {
		c, err := New(fsys, Options{Format: Format{Width: 8, Height: 4, Smoothing: smoothing}})
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		img, err := c.Render(context.Background(), []dna.Selection{selection("Base", "Red", "base/red.png", catalog.BlendSourceOver, 1)})
		if err != nil {
			t.Fatalf("Render returned error: %v", err)
		}
		if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
			t.Fatalf("bounds = %v, want 8x4", img.Bounds())
		}
		assertPixel(t, img, 7, 3, red)
	}
}

func TestRenderBackground(t *testing.T) {
	static, err := New(fstest.MapFS{}, Options{
		Format:     Format{Width: 2, Height: 2},
		Background: Background{Generate: true, Static: true, Default: "#000"},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	img, err := static.Render(context.Background(), nil)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	assertPixel(t, img, 0, 0, black)

	generated := func(seed int64) color.NRGBA {
		c, err := New(fstest.MapFS{}, Options{
			Format:     Format{Width: 1, Height: 1},
			Background: Background{Generate: true, Brightness: 0.8},
			Seed:       seed,
		})
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		img, err := c.Render(context.Background(), nil)
		if err != nil {
			t.Fatalf("Render returned error: %v", err)
		}
		return img.NRGBAAt(0, 0)
	}
	first, second := generated(7), generated(7)
	if first != second {
		t.Fatalf("expected seeded backgrounds to match, got %v and %v", first, second)
	}
	if first.A != 255 {
		t.Fatalf("expected opaque background, got %v", first)
	}
}

func TestRenderTextOnly(t *testing.T) {
	c, err := New(fstest.MapFS{}, Options{
		Format: Format{Width: 200, Height: 60},
		Text:   TextOptions{Only: true, Color: "#ffffff", XGap: 5, YGap: 20},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	img, err := c.Render(context.Background(), []dna.Selection{
		selection("Eyes", "Blue", "missing.png", catalog.BlendSourceOver, 1),
		selection("Mouth", "Smile", "missing.png", catalog.BlendSourceOver, 1),
	})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	inked := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			inked++
		}
	}
	if inked == 0 {
		t.Fatal("expected text pixels to be drawn")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		raw     string
		want    color.NRGBA
		wantErr bool
	}{
		{raw: "#fff", want: white},
		{raw: "#ff0000", want: red},
		{raw: "0000ff80", want: color.NRGBA{B: 255, A: 128}},
		{raw: "#12", wantErr: true},
		{raw: "#gggggg", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseColor(%q) expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseColor(%q) returned error: %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("ParseColor(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1.png")
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	if err := WritePNG(path, img); err != nil {
		t.Fatalf("WritePNG returned error: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
}
