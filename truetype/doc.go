// Package truetype reads the subset of TrueType and OpenType tables that an
// atlas builder needs: the table directory (including TrueType collections),
// character to glyph maps, and horizontal pair adjustments from the kern and
// GPOS tables.
//
// All reads go through a bounds-checked big-endian cursor over the caller's
// byte slice. Malformed data produces an error, never a panic, and the
// high-level helpers (ExtractHorizontalPairAdjustments) fail soft by
// returning an empty result.
package truetype
