package presets

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/markstack/pkg/errors"
)

// FileName is the presets file looked up in the user config directory.
const FileName = "presets.toml"

// builtinTOML holds the presets shipped with markstack.
const builtinTOML = `
[final_v2]
description = 'Text "hamacak1.com" in Rubik, center-bottom, soft blurred shadow'
text = "hamacak1.com"
google_font = "Rubik"
text_position = "center-bottom"
text_size_ratio = 0.05
margin = 120
text_shadow_offset = 8
text_shadow_blur = 4
text_opacity = 0.5
numbering = true
shadow_offset = 0
shadow_blur = 8
number_opacity = 0.4

[final_v3]
description = "PNG graphic k1_watermark.png, bottom-left, white numbers"
graphic = "k1_watermark.png"
graphic_position = "bottom-left"
graphic_opacity = 1.0
margin = 100
graphic_x_offset = 0
graphic_y_offset = 250
google_font = "Rubik"
numbering = true
shadow_offset = 0
shadow_blur = 4
number_opacity = 0.4
number_color = "#ffffff"
shadow_color = "#000000"
shadow_opacity = 0.9

[glow_effect]
description = 'Text "K1-PRINT" with a white glow'
text = "K1-PRINT"
google_font = "Rubik"
text_position = "center-bottom"
text_size_ratio = 0.06
margin = 150
text_shadow_offset = 0
text_shadow_blur = 8
text_shadow_color = "#FFFFFF"
text_opacity = 0.8
numbering = true
shadow_offset = 0
shadow_blur = 4
number_opacity = 0.3

[dramatic_shadow]
description = 'Text "K1-PRINT" with a long offset shadow'
text = "K1-PRINT"
google_font = "Rubik"
text_position = "center-bottom"
text_size_ratio = 0.05
margin = 200
text_shadow_offset = 25
text_shadow_blur = 12
text_opacity = 0.5
numbering = true
shadow_offset = 0
shadow_blur = 8
number_opacity = 0.25
`

// Set maps preset names to presets.
type Set map[string]Preset

// Builtin returns a fresh copy of the built-in presets.
func Builtin() Set {
	s, err := decode([]byte(builtinTOML), "")
	if err != nil {
		panic("presets: built-in presets: " + err.Error())
	}
	return s
}

// Load reads presets from a TOML file. Relative graphic and font paths are
// resolved against the file's directory.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "presets file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPreset, err, "read %s", path)
	}
	return decode(data, filepath.Dir(path))
}

// UserPath returns the presets file in the user config directory.
func UserPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "markstack", FileName), nil
}

// LoadDefault returns the built-in presets overlaid with path, or with the
// user presets file when path is empty. A missing user file is not an error.
func LoadDefault(path string) (Set, error) {
	set := Builtin()
	if path == "" {
		p, err := UserPath()
		if err != nil {
			return set, nil
		}
		if _, err := os.Stat(p); err != nil {
			return set, nil
		}
		path = p
	}
	extra, err := Load(path)
	if err != nil {
		return nil, err
	}
	return set.Overlay(extra), nil
}

func decode(data []byte, dir string) (Set, error) {
	var raw map[string]Preset
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPreset, err, "parse presets")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidPreset, "unknown preset keys: %s", strings.Join(keys, ", "))
	}

	set := make(Set, len(raw))
	for name, p := range raw {
		if err := errors.ValidatePresetName(name); err != nil {
			return nil, err
		}
		p.Name = name
		if dir != "" {
			p.Graphic = resolvePath(dir, p.Graphic)
			p.FontPath = resolvePath(dir, p.FontPath)
		}
		set[name] = p
	}
	return set, nil
}

func resolvePath(dir string, p *string) *string {
	if p == nil || *p == "" || filepath.IsAbs(*p) {
		return p
	}
	abs := filepath.Join(dir, *p)
	return &abs
}

// Get returns the named preset. Unknown names fail with NOT_FOUND.
func (s Set) Get(name string) (Preset, error) {
	p, ok := s[name]
	if !ok {
		return Preset{}, errors.New(errors.ErrCodeNotFound, "unknown preset %q (available: %s)", name, strings.Join(s.Names(), ", "))
	}
	return p, nil
}

// Names returns the preset names in lexical order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Overlay returns a new set with other's presets added. A preset present
// in both is merged key by key, other winning.
func (s Set) Overlay(other Set) Set {
	out := make(Set, len(s)+len(other))
	for name, p := range s {
		out[name] = p
	}
	for name, p := range other {
		if base, ok := out[name]; ok {
			p = base.Merge(p)
		}
		out[name] = p
	}
	return out
}
