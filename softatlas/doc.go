// Package softatlas is a software implementation of fontcore.Atlas.
//
// Glyph coverage comes from the font's character map (go-text), outlines
// are rasterized with golang.org/x/image/font/opentype and all bitmaps and
// custom rects are packed on shelves into a single alpha8 page whose width
// is fixed (or chosen from the total glyph area) and whose height is the
// next power of two that fits.
//
// Font sizes follow pixel-height semantics: SizePixels is the distance from
// the ascender to the descender line, not the em size.
package softatlas
