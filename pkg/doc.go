// Package pkg provides the core libraries for Markstack watermarking.
//
// # Overview
//
// Markstack composites a graphic or text watermark, plus an optional number
// taken from each file name, onto folders of photos. Marks scale with the
// image and are rendered on padded canvases so drop shadows never clip.
// The pkg directory is organized into four main areas:
//
//  1. [core/watermark] - Domain logic (layout, rendering, compositing)
//  2. Infrastructure - [io], [fonts], [cache], [httputil], [jobs]
//  3. [presets] - Named watermark settings in TOML
//  4. [pipeline] - Orchestration (decode → mark → encode) and [server]
//
// # Architecture
//
// The typical data flow through Markstack:
//
//	preset (TOML) + flags
//	         ↓
//	    [presets] package (merge, convert to watermark.Config)
//	         ↓
//	    [fonts] package (file → Google Fonts → system → embedded)
//	         ↓
//	    [core/watermark] package (scale, render, anchor, composite)
//	         ↓
//	    [pipeline] package (discover, worker pool, atomic save)
//
// # Quick Start
//
// Watermark a folder with a built-in preset:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/markstack/pkg/pipeline"
//	    "github.com/matzehuels/markstack/pkg/presets"
//	)
//
//	p, _ := presets.Builtin().Get("final_v2")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	engine, _ := runner.PresetEngine(ctx, p)
//	report, _ := runner.Run(ctx, engine, pipeline.Options{
//	    Input:  "photos",
//	    Output: "marked",
//	})
//
// # Main Packages
//
// [core/watermark] - The engine. Computes graphic scale factors, renders
// text with blurred drop shadows onto padded canvases, resolves anchor
// positions so the visible glyphs sit exactly one margin from the edge, and
// alpha-composites layers onto the image.
//
// [io] - Image decoding with EXIF orientation, atomic encoding, folder
// discovery and output path mirroring.
//
// [fonts] - Font resolution with a fallback chain ending in the embedded
// Go font, so text marks always render.
//
// [cache] - Byte caches for downloaded fonts: file (CLI), Redis (server),
// null (disabled).
//
// [jobs] - Batch job records for the HTTP API, in memory or MongoDB.
//
// [server] - HTTP API over [pipeline] for the web front end.
//
// [errors] - Structured errors with stable codes.
//
// [observability] - Hooks for progress reporting and metrics.
package pkg
