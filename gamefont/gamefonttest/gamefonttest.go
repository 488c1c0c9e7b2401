// Package gamefonttest builds synthetic FDT and TEX files for tests.
package gamefonttest

import (
	"encoding/binary"
	"math"
	"sort"
	"testing/fstest"

	"github.com/gogpu/fontatlas/gamefont"
)

// Glyph describes one FDT glyph entry.
type Glyph struct {
	Char         rune
	TextureIndex uint16
	X, Y         uint16
	W, H         uint8
	NextOffsetX  int8
	OffsetY      int8
}

// Kern describes one FDT kerning entry.
type Kern struct {
	Left, Right rune
	Offset      int32
}

// FDT describes a font definition table.
type FDT struct {
	Size       float32
	LineHeight int32
	Ascent     int32
	TexW, TexH uint16
	Glyphs     []Glyph
	Kerning    []Kern
}

// Bytes encodes f. Glyphs and kerning pairs are sorted the way the game
// stores them.
func (f FDT) Bytes() []byte {
	le := binary.LittleEndian
	glyphs := append([]Glyph(nil), f.Glyphs...)
	sort.Slice(glyphs, func(i, j int) bool {
		return gamefont.CodepointToUTF8Int(glyphs[i].Char) < gamefont.CodepointToUTF8Int(glyphs[j].Char)
	})
	kerns := append([]Kern(nil), f.Kerning...)
	sort.Slice(kerns, func(i, j int) bool {
		li, lj := gamefont.CodepointToUTF8Int(kerns[i].Left), gamefont.CodepointToUTF8Int(kerns[j].Left)
		if li != lj {
			return li < lj
		}
		return gamefont.CodepointToUTF8Int(kerns[i].Right) < gamefont.CodepointToUTF8Int(kerns[j].Right)
	})

	fontOff := 0x20
	kernOff := fontOff + 0x20 + 0x10*len(glyphs)
	out := make([]byte, kernOff+0x10+0x10*len(kerns))

	copy(out, "fcsv0100")
	le.PutUint32(out[8:], uint32(fontOff))
	le.PutUint32(out[12:], uint32(kernOff))

	h := out[fontOff:]
	copy(h, "fthd")
	le.PutUint32(h[4:], uint32(len(glyphs)))
	le.PutUint32(h[8:], uint32(len(kerns)))
	le.PutUint16(h[16:], f.TexW)
	le.PutUint16(h[18:], f.TexH)
	le.PutUint32(h[20:], math.Float32bits(f.Size))
	le.PutUint32(h[24:], uint32(f.LineHeight))
	le.PutUint32(h[28:], uint32(f.Ascent))

	for i, g := range glyphs {
		b := out[fontOff+0x20+0x10*i:]
		le.PutUint32(b, gamefont.CodepointToUTF8Int(g.Char))
		le.PutUint16(b[6:], g.TextureIndex)
		le.PutUint16(b[8:], g.X)
		le.PutUint16(b[10:], g.Y)
		b[12] = g.W
		b[13] = g.H
		b[14] = byte(g.NextOffsetX)
		b[15] = byte(g.OffsetY)
	}

	k := out[kernOff:]
	copy(k, "knhd")
	le.PutUint32(k[4:], uint32(len(kerns)))
	for i, p := range kerns {
		b := k[0x10+0x10*i:]
		le.PutUint32(b, gamefont.CodepointToUTF8Int(p.Left))
		le.PutUint32(b[4:], gamefont.CodepointToUTF8Int(p.Right))
		le.PutUint32(b[12:], uint32(p.Offset))
	}
	return out
}

// Tex encodes a TEX file with a single surface.
func Tex(format gamefont.TexFormat, w, h int, pixels []byte) []byte {
	out := make([]byte, 80, 80+len(pixels))
	le := binary.LittleEndian
	le.PutUint32(out[4:], uint32(format))
	le.PutUint16(out[8:], uint16(w))
	le.PutUint16(out[10:], uint16(h))
	le.PutUint16(out[12:], 1)
	out[14] = 1
	le.PutUint32(out[28:], 80)
	return append(out, pixels...)
}

// Standard fixture layout.
const (
	TexSize    = 64
	CellW      = 8
	CellH      = 12
	GlyphW     = 6
	GlyphH     = 10
	LineHeight = 16
	Ascent     = 12
)

// StandardChars are the codepoints of the standard fixture.
var StandardChars = []rune{' ', '?', 'A', 'B', 'C', 'T', 'V', 'a', '〓'}

// StandardGlyph returns the fixture entry of the k-th standard char. Glyphs
// alternate between texture indices 0 and 1.
func StandardGlyph(k int) Glyph {
	return Glyph{
		Char:         StandardChars[k],
		TextureIndex: uint16(k % 2),
		X:            uint16((k % 8) * CellW),
		Y:            uint16((k / 8) * CellH),
		W:            GlyphW,
		H:            GlyphH,
		NextOffsetX:  1,
		OffsetY:      2,
	}
}

// StandardAlpha is the coverage painted into glyph k's cell; the space
// glyph stays empty.
func StandardAlpha(k int) byte {
	if StandardChars[k] == ' ' {
		return 0
	}
	return byte(0x80 + k)
}

// StandardFDT is the fixture font: every standard char, 'A','V' kerned by
// -2, with sizePt as its nominal size.
func StandardFDT(sizePt float32) FDT {
	f := FDT{
		Size:       sizePt,
		LineHeight: LineHeight,
		Ascent:     Ascent,
		TexW:       TexSize,
		TexH:       TexSize,
		Kerning:    []Kern{{Left: 'A', Right: 'V', Offset: -2}},
	}
	for k := range StandardChars {
		f.Glyphs = append(f.Glyphs, StandardGlyph(k))
	}
	return f
}

// StandardTex paints the standard glyphs into a B8G8R8A8 texture.
func StandardTex() []byte {
	px := make([]byte, TexSize*TexSize*4)
	for k := range StandardChars {
		g := StandardGlyph(k)
		ch := gamefont.ChannelOrder[g.TextureIndex%4]
		for y := range int(g.H) {
			for x := range int(g.W) {
				px[4*((int(g.Y)+y)*TexSize+int(g.X)+x)+ch] = StandardAlpha(k)
			}
		}
	}
	return Tex(gamefont.TexB8G8R8A8, TexSize, TexSize, px)
}

// Assets returns a file system holding the standard FDT for each of
// families, at the family's own point size, and the shared texture.
func Assets(families ...gamefont.FamilyAndSize) fstest.MapFS {
	fsys := fstest.MapFS{
		gamefont.TexPath(gamefont.TexPathFormat, 0): {Data: StandardTex()},
	}
	for _, f := range families {
		fsys[f.Path()] = &fstest.MapFile{Data: StandardFDT(f.BaseSizePt()).Bytes()}
	}
	return fsys
}
