// Package fonts resolves the font used for text and number marks.
//
// A font is represented by a [Handle], which creates sized faces on demand
// and may be shared between goroutines. [Resolve] walks a chain of
// [Resolver] values and returns the first handle that loads:
//
//  1. [FileResolver]: a TTF/OTF file on disk (--font-path)
//  2. [GoogleResolver]: a Google Fonts family, downloaded once and cached
//  3. [SystemResolver]: common system fonts located with go-findfont
//
// When every resolver fails the embedded Go Regular face from
// golang.org/x/image is used, so rendering never stops for lack of a font.
package fonts
