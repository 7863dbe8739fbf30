// Package watermark implements the layout and compositing engine that places
// graphic, text and numeric marks on raster images.
//
// # Overview
//
// A mark goes through four steps:
//
//  1. Render: [Canvas] draws text (with an optional blurred drop shadow) or
//     copies a graphic onto a transparent [Layer]. Text layers are padded so
//     the shadow never touches the canvas edge.
//  2. Scale: graphic marks are shrunk by [ScaleGraphic] to fit a budget
//     relative to the target image. They are never enlarged.
//  3. Anchor: [ResolveAnchor] turns a named position plus margin and offset
//     into the layer's top-left pixel. Right and bottom anchors reference the
//     layer's far edge, so marks of different sizes stay aligned.
//  4. Composite: [Composite] scales the layer's own alpha by the mark opacity
//     and blends it over the target, clipping at the image bounds.
//
// [Engine] runs these steps for one image. It holds no mutable state after
// construction and may be shared by any number of goroutines.
//
// # Shadow padding
//
// A text layer is padded by
//
//	pad = offset + max(BlurFactor*blur, MinPad)
//
// on every side, with Headroom extra rows at the bottom. The Gaussian blur
// used for shadows has a kernel radius of ceil(3*sigma), so BlurFactor 3
// keeps the blurred shadow strictly inside the canvas. The same pad is used
// as the safety margin for corner anchors.
//
// The package performs no I/O: decoding, encoding and font acquisition are
// handled by pkg/io and pkg/fonts.
package watermark
