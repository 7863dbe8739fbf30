// Package io reads and writes the raster images processed by markstack.
//
// # Decoding
//
// [DecodeFile] and [Decode] accept JPEG, PNG, GIF, BMP, TIFF and WebP. EXIF
// orientation is applied on load, so a portrait photo taken with a rotated
// camera is marked in its visual orientation. The returned [Decoded] records
// the source format and whether the image is fully opaque.
//
// # Encoding
//
// [EncodeFile] picks the format from the output extension. JPEG is written
// at quality 100 with the alpha channel dropped. Every write goes to a
// temporary file in the destination directory that is renamed into place
// only after the encoder succeeds, so a failed image never leaves a partial
// file behind.
//
// WebP has no encoder; [OutputPath] maps .webp inputs to .png outputs.
//
// # Discovery
//
// [Discover] lists supported images in a directory (optionally recursive)
// in lexical order. Hidden files are skipped.
package io
