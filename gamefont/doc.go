// Package gamefont reads the prebaked bitmap fonts shipped with the game
// client: FDT glyph and kerning tables, channel-packed TEX textures and the
// family/size catalogue that ties them together.
//
// Each TEX file packs four single-channel alpha pages into its B, G, R and A
// channels. A glyph's texture index selects the file (index / 4) and the
// channel (index % 4, mapped through ChannelOrder).
//
// Style describes a requested rendition of a family: pixel size plus
// synthetic weight and skew, which the atlas builder applies when it blits
// glyphs into its own pages.
package gamefont
