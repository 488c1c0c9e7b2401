// Package fontcore defines the data model shared by the atlas builder and
// atlas implementations: font configurations, built fonts with their glyph
// and kerning tables, custom rectangles, texture pages and the Atlas
// contract a packer fulfils.
//
// A Font is filled by an Atlas during Build and then post-processed by the
// builder (metric adjustment, glyph copying, fallback selection). Lookups
// go through a codepoint-indexed table that BuildLookupTable refreshes;
// callers mutating Glyphs directly must call it again before querying.
//
// Nothing in this package is safe for concurrent mutation. A built font is
// safe for concurrent reads.
package fontcore
