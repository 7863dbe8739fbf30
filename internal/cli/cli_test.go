package cli

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/markstack/pkg/presets"
)

func testCLI() *CLI {
	return New(&bytes.Buffer{}, log.WarnLevel)
}

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := testCLI().RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(t.Context())
}

func TestRootCommandSubcommands(t *testing.T) {
	root := testCLI().RootCommand()
	want := []string{"run", "folders", "presets", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRunCommandGraphic(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out")
	logo := filepath.Join(dir, "logo.png")
	writePNG(t, filepath.Join(in, "IMG_0001.png"), 200, 150, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	writePNG(t, filepath.Join(in, "IMG_0002.png"), 160, 120, color.NRGBA{R: 50, G: 80, B: 120, A: 255})
	writePNG(t, logo, 40, 20, color.NRGBA{R: 255, A: 200})

	err := execute(t, "run", "-i", in, "-o", out, "--graphic", logo, "--graphic-position", "top-left", "--no-cache")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range []string{"IMG_0001.png", "IMG_0002.png"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
}

func TestRunCommandDryRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out")
	logo := filepath.Join(dir, "logo.png")
	writePNG(t, filepath.Join(in, "a.png"), 100, 100, color.NRGBA{A: 255})
	writePNG(t, logo, 10, 10, color.NRGBA{G: 255, A: 255})

	if err := execute(t, "run", "-i", in, "-o", out, "--graphic", logo, "--dry-run", "--no-cache"); err != nil {
		t.Fatalf("run --dry-run: %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("dry run created %s", out)
	}
}

func TestRunCommandErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	writePNG(t, filepath.Join(in, "a.png"), 50, 50, color.NRGBA{A: 255})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no mark", []string{"run", "-i", in, "-o", filepath.Join(dir, "out")}, "MISSING_MARK_SOURCE"},
		{"unknown preset", []string{"run", "-i", in, "-o", filepath.Join(dir, "out"), "--preset", "nope"}, "nope"},
		{"text and graphic", []string{"run", "-i", in, "-o", filepath.Join(dir, "out"), "--text", "x", "--graphic", "y.png"}, "none of the others"},
		{"missing input flag", []string{"run", "-o", filepath.Join(dir, "out"), "--text", "x"}, "input"},
		{"bad position", []string{"run", "-i", in, "-o", filepath.Join(dir, "out"), "--graphic", filepath.Join(in, "a.png"), "--graphic-position", "middle"}, "position"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(t, append(tt.args, "--no-cache")...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestFoldersCommand(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "shoots")
	out := filepath.Join(dir, "out")
	logo := filepath.Join(dir, "logo.png")
	writePNG(t, filepath.Join(base, "day1", "IMG_0001.png"), 120, 90, color.NRGBA{R: 90, A: 255})
	writePNG(t, filepath.Join(base, "day2", "IMG_0002.png"), 120, 90, color.NRGBA{B: 90, A: 255})
	writePNG(t, logo, 30, 30, color.NRGBA{R: 255, G: 255, B: 255, A: 180})

	presetsFile := filepath.Join(dir, "presets.toml")
	if err := os.WriteFile(presetsFile, []byte("[logo]\ngraphic = \"logo.png\"\ngraphic_position = \"center\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := execute(t, "folders", "--base-input", base, "--base-output", out, "--preset", "logo", "--presets", presetsFile, "--no-cache")
	if err != nil {
		t.Fatalf("folders: %v", err)
	}
	for _, path := range []string{
		filepath.Join(out, "day1_logo", "IMG_0001.png"),
		filepath.Join(out, "day2_logo", "IMG_0002.png"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing output %s: %v", path, err)
		}
	}
}

func TestFoldersCommandRequiresPreset(t *testing.T) {
	dir := t.TempDir()
	err := execute(t, "folders", "--base-input", dir, "--base-output", filepath.Join(dir, "out"), "--no-cache")
	if err == nil || !strings.Contains(err.Error(), "preset") {
		t.Errorf("error = %v, want preset required", err)
	}
}

func TestMarkFlagsOverrides(t *testing.T) {
	var f markFlags
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	f.register(cmd)
	if err := cmd.ParseFlags([]string{"--text", "K1", "--margin", "40", "--numbering"}); err != nil {
		t.Fatal(err)
	}

	o := f.overrides(cmd)
	if o.Text == nil || *o.Text != "K1" {
		t.Errorf("Text = %v", o.Text)
	}
	if o.Margin == nil || *o.Margin != 40 {
		t.Errorf("Margin = %v", o.Margin)
	}
	if o.Numbering == nil || !*o.Numbering {
		t.Errorf("Numbering = %v", o.Numbering)
	}
	if o.TextColor != nil || o.Graphic != nil || o.NumberPosition != nil {
		t.Error("unset flags should not override preset keys")
	}
}

func TestResolvePresetKeepsUnsetKeys(t *testing.T) {
	var f markFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	if err := cmd.ParseFlags([]string{"--number-color", "#ff0000"}); err != nil {
		t.Fatal(err)
	}

	p, err := f.resolvePreset(cmd, presets.Builtin(), "final_v2")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "final_v2" {
		t.Errorf("Name = %q", p.Name)
	}
	if p.NumberColor == nil || *p.NumberColor != "#ff0000" {
		t.Errorf("NumberColor = %v", p.NumberColor)
	}
	if p.Numbering == nil || !*p.Numbering {
		t.Error("preset numbering should survive the override")
	}
}

func TestPresetTOML(t *testing.T) {
	p, err := presets.Builtin().Get("final_v3")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := writePresetTOML(&buf, p); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"[final_v3]", `graphic_position = "bottom-left"`, "numbering = true"} {
		if !strings.Contains(out, want) {
			t.Errorf("TOML output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "text_color") {
		t.Errorf("unset keys should be omitted:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "presets.toml")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	set, err := presets.Load(path)
	if err != nil {
		t.Fatalf("written TOML does not load: %v", err)
	}
	if _, err := set.Get("final_v3"); err != nil {
		t.Error(err)
	}
}

func TestPresetTable(t *testing.T) {
	out := presetTable(presets.Builtin())
	for _, name := range presets.Builtin().Names() {
		if !strings.Contains(out, name) {
			t.Errorf("table missing %s", name)
		}
	}
}

func TestCacheClear(t *testing.T) {
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	dir := filepath.Join(cacheHome, appName, "ab")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "abcd.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	root := testCLI().RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.ExecuteContext(t.Context()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("shard dir should be removed, stat err = %v", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		root := testCLI().RootCommand()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs([]string{"completion", shell})
		if err := root.Execute(); err != nil {
			t.Fatalf("%s: %v", shell, err)
		}
		if !strings.Contains(out.String(), appName) {
			t.Errorf("%s completion does not mention %s", shell, appName)
		}
	}
}
