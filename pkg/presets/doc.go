// Package presets provides named watermark configurations.
//
// A [Preset] is a flat set of optional settings, stored as a TOML table:
//
//	[final_v2]
//	description = "Text mark with soft shadow"
//	text = "hamacak1.com"
//	google_font = "Rubik"
//	text_position = "center-bottom"
//	margin = 120
//	numbering = true
//
// Unset keys keep the defaults of package watermark. Four presets are built
// in (see [Builtin]); a presets.toml in the user config directory, or a file
// passed with --presets, adds presets or overrides built-in keys.
//
// [Preset.Config] turns a preset into a validated [watermark.Config].
package presets
