package presets

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/markstack/pkg/core/watermark"
	"github.com/matzehuels/markstack/pkg/errors"
)

func fakeGraphic(path string) (image.Image, error) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	return img, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuiltinNames(t *testing.T) {
	want := []string{"dramatic_shadow", "final_v2", "final_v3", "glow_effect"}
	if got := Builtin().Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestBuiltinConfigs(t *testing.T) {
	set := Builtin()
	for _, name := range set.Names() {
		t.Run(name, func(t *testing.T) {
			p, err := set.Get(name)
			if err != nil {
				t.Fatal(err)
			}
			if p.Name != name || p.Description == "" {
				t.Errorf("preset = %+v", p)
			}
			cfg, err := p.Config(fakeGraphic)
			if err != nil {
				t.Fatalf("Config() = %v", err)
			}
			if !cfg.Number.Enabled {
				t.Error("numbering disabled")
			}
			if p.Font().Google != "Rubik" {
				t.Errorf("font = %+v", p.Font())
			}
		})
	}
}

func TestFinalV2(t *testing.T) {
	p, _ := Builtin().Get("final_v2")
	cfg, err := p.Config(nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind() != KindText || cfg.Graphic != nil {
		t.Fatalf("final_v2 kind = %s", p.Kind())
	}
	tm := cfg.Text
	if tm.Text != "hamacak1.com" || tm.SizeRatio != 0.05 || tm.Opacity != 0.5 {
		t.Errorf("text = %+v", tm)
	}
	if tm.Shadow.Offset != 8 || tm.Shadow.Blur != 4 {
		t.Errorf("text shadow = %+v", tm.Shadow)
	}
	if tm.Anchor.Position != watermark.CenterBottom || tm.Anchor.Margin != 120 {
		t.Errorf("text anchor = %+v", tm.Anchor)
	}
	n := cfg.Number
	if n.Opacity != 0.4 || n.Shadow.Offset != 0 || n.Shadow.Blur != 8 || n.Anchor.Margin != 120 {
		t.Errorf("number = %+v", n)
	}
}

func TestFinalV3(t *testing.T) {
	p, _ := Builtin().Get("final_v3")
	if p.Kind() != KindGraphic {
		t.Fatalf("kind = %s", p.Kind())
	}

	var loaded string
	cfg, err := p.Config(func(path string) (image.Image, error) {
		loaded = path
		return fakeGraphic(path)
	})
	if err != nil {
		t.Fatal(err)
	}
	if loaded != "k1_watermark.png" {
		t.Errorf("loaded %q", loaded)
	}
	g := cfg.Graphic
	if g.Opacity != 1 || g.Anchor.Position != watermark.BottomLeft || g.Anchor.YOffset != 250 || g.Anchor.Margin != 100 {
		t.Errorf("graphic = %+v", g)
	}
	if cfg.Number.Color != "#ffffff" || cfg.Number.Shadow.Color != "#000000" || cfg.Number.Shadow.Opacity != 0.9 {
		t.Errorf("number = %+v", cfg.Number)
	}

	if _, err := p.Config(nil); !errors.Is(err, errors.ErrCodeMissingMarkSource) {
		t.Errorf("nil loader: err = %v", err)
	}
}

func TestGetUnknown(t *testing.T) {
	_, err := Builtin().Get("nope")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestMerge(t *testing.T) {
	p, _ := Builtin().Get("glow_effect")
	text := "OVERRIDE"
	margin := 5
	merged := p.Merge(Preset{Text: &text, Margin: &margin})

	if *merged.Text != "OVERRIDE" || *merged.Margin != 5 {
		t.Errorf("overrides not applied: %+v", merged)
	}
	if *merged.TextShadowBlur != 8 || merged.Name != "glow_effect" {
		t.Errorf("base values lost: %+v", merged)
	}
	if *p.Text != "K1-PRINT" {
		t.Error("Merge modified the receiver")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, FileName, `
[mine]
description = "custom"
graphic = "logo.png"
graphic_opacity = 0.5

[final_v2]
text = "example.com"
`)

	extra, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	mine := extra["mine"]
	if *mine.Graphic != filepath.Join(dir, "logo.png") {
		t.Errorf("graphic path = %s", *mine.Graphic)
	}

	set := Builtin().Overlay(extra)
	if len(set) != 5 {
		t.Errorf("len = %d, want 5", len(set))
	}
	v2, _ := set.Get("final_v2")
	if *v2.Text != "example.com" || *v2.Margin != 120 {
		t.Errorf("final_v2 overlay = text %q margin %d", *v2.Text, *v2.Margin)
	}
}

func TestLoadDefaultExplicitPath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "p.toml", "[extra]\ntext = \"x\"\n")
	set, err := LoadDefault(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := set.Get("extra"); err != nil {
		t.Error(err)
	}
	if _, err := set.Get("final_v3"); err != nil {
		t.Error(err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"syntax", "[broken\n", errors.ErrCodeInvalidPreset},
		{"unknown key", "[a]\ntxet = \"typo\"\n", errors.ErrCodeInvalidPreset},
		{"bad name", "['bad name!']\ntext = \"x\"\n", errors.ErrCodeInvalidPreset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, dir, "p.toml", tt.content))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v", err)
	}
}

func TestConfigInvalidPosition(t *testing.T) {
	text, pos := "x", "middle"
	_, err := Preset{Text: &text, TextPosition: &pos}.Config(nil)
	if !errors.Is(err, errors.ErrCodeInvalidPosition) {
		t.Errorf("err = %v, want INVALID_POSITION", err)
	}
}

func TestConfigNoMark(t *testing.T) {
	_, err := Preset{}.Config(nil)
	if !errors.Is(err, errors.ErrCodeMissingMarkSource) {
		t.Errorf("err = %v, want MISSING_MARK_SOURCE", err)
	}
}

func TestConfigZeroOpacityClamps(t *testing.T) {
	text, numbering, zero := "K1", true, 0.0
	cfg, err := Preset{
		Text:              &text,
		TextOpacity:       &zero,
		TextShadowOpacity: &zero,
		Numbering:         &numbering,
		NumberOpacity:     &zero,
		ShadowOpacity:     &zero,
	}.Config(nil)
	if err != nil {
		t.Fatal(err)
	}
	for name, v := range map[string]float64{
		"text":          cfg.Text.Opacity,
		"text shadow":   cfg.Text.Shadow.Opacity,
		"number":        cfg.Number.Opacity,
		"number shadow": cfg.Number.Shadow.Opacity,
	} {
		if v != watermark.MinOpacity {
			t.Errorf("%s opacity = %v, want %v", name, v, watermark.MinOpacity)
		}
	}
}

func TestExamplePresetsFile(t *testing.T) {
	set, err := LoadDefault(filepath.Join("..", "..", "examples", FileName))
	if err != nil {
		t.Fatalf("LoadDefault() = %v", err)
	}
	for _, name := range []string{"studio_text", "proof_numbers"} {
		p, err := set.Get(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := p.Config(fakeGraphic); err != nil {
			t.Errorf("%s: Config() = %v", name, err)
		}
	}
	v2, _ := set.Get("final_v2")
	if *v2.Margin != 60 || v2.Numbering == nil || !*v2.Numbering {
		t.Errorf("final_v2 overlay should change only the margin: %+v", v2)
	}
}
