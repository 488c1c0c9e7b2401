package gamefont

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/japanese"
)

const (
	fileHeaderSize    = 0x20
	fontHeaderSize    = 0x20
	entrySize         = 0x10
	kerningHeaderSize = 0x10
	kerningEntrySize  = 0x10
)

// ChannelOrder maps a texture index modulo 4 to the byte offset of its
// channel inside a B8G8R8A8 pixel.
var ChannelOrder = [4]int{2, 1, 0, 3}

// FileHeader is the FDT file header.
type FileHeader struct {
	Signature          [8]byte
	FontTableOffset    int32
	KerningTableOffset int32
}

// FontHeader describes the glyph table and the font metrics.
type FontHeader struct {
	Signature         [4]byte
	EntryCount        int32
	KerningEntryCount int32
	TextureWidth      uint16
	TextureHeight     uint16
	Size              float32
	LineHeight        int32
	Ascent            int32
}

// Descent is LineHeight - Ascent.
func (h FontHeader) Descent() int32 { return h.LineHeight - h.Ascent }

// Entry is one glyph of an FDT file.
type Entry struct {
	CharUTF8       uint32
	CharSJIS       uint16
	TextureIndex   uint16
	TextureOffsetX uint16
	TextureOffsetY uint16
	BoundingWidth  uint8
	BoundingHeight uint8
	NextOffsetX    int8
	CurrentOffsetY int8
}

// Codepoint decodes CharUTF8.
func (e Entry) Codepoint() rune { return UTF8IntToCodepoint(e.CharUTF8) }

// AdvanceWidth is the horizontal advance in pixels at the prebaked size.
func (e Entry) AdvanceWidth() int { return int(e.BoundingWidth) + int(e.NextOffsetX) }

// TextureFileIndex is the zero-based TEX file the glyph lives in.
func (e Entry) TextureFileIndex() int { return int(e.TextureIndex) / 4 }

// TextureChannelIndex is the channel slot (0 to 3) inside the TEX file.
func (e Entry) TextureChannelIndex() int { return int(e.TextureIndex) % 4 }

// TextureChannelByteIndex is the byte offset of the glyph's channel inside
// a B8G8R8A8 pixel.
func (e Entry) TextureChannelByteIndex() int { return ChannelOrder[e.TextureChannelIndex()] }

// SJIS decodes the Shift-JIS code of the glyph. It returns the empty string
// when the entry carries no Shift-JIS code.
func (e Entry) SJIS() string {
	return decodeSJIS(e.CharSJIS)
}

// KerningEntry is one pair adjustment of an FDT file.
type KerningEntry struct {
	LeftUTF8    uint32
	RightUTF8   uint32
	LeftSJIS    uint16
	RightSJIS   uint16
	RightOffset int32
}

// Left decodes the left codepoint.
func (k KerningEntry) Left() rune { return UTF8IntToCodepoint(k.LeftUTF8) }

// Right decodes the right codepoint.
func (k KerningEntry) Right() rune { return UTF8IntToCodepoint(k.RightUTF8) }

// FDT is a parsed font definition table. Glyphs and Kerning keep the file
// order, which is ascending by UTF-8 integer.
type FDT struct {
	FileHeader FileHeader
	FontHeader FontHeader
	Glyphs     []Entry
	Kerning    []KerningEntry
}

// ParseFDT decodes an FDT file.
func ParseFDT(data []byte) (*FDT, error) {
	le := binary.LittleEndian
	if len(data) < fileHeaderSize {
		return nil, errors.Wrapf(ErrDataTooShort, "fdt file header: %d bytes", len(data))
	}
	f := &FDT{}
	copy(f.FileHeader.Signature[:], data)
	f.FileHeader.FontTableOffset = int32(le.Uint32(data[8:]))
	f.FileHeader.KerningTableOffset = int32(le.Uint32(data[12:]))

	fo := int(f.FileHeader.FontTableOffset)
	fh, err := span(data, fo, fontHeaderSize, "font table header")
	if err != nil {
		return nil, err
	}
	copy(f.FontHeader.Signature[:], fh)
	f.FontHeader.EntryCount = int32(le.Uint32(fh[4:]))
	f.FontHeader.KerningEntryCount = int32(le.Uint32(fh[8:]))
	f.FontHeader.TextureWidth = le.Uint16(fh[16:])
	f.FontHeader.TextureHeight = le.Uint16(fh[18:])
	f.FontHeader.Size = math.Float32frombits(le.Uint32(fh[20:]))
	f.FontHeader.LineHeight = int32(le.Uint32(fh[24:]))
	f.FontHeader.Ascent = int32(le.Uint32(fh[28:]))

	n := int(f.FontHeader.EntryCount)
	if n < 0 {
		return nil, errors.Wrapf(ErrDataTooShort, "fdt entry count %d", n)
	}
	entries, err := span(data, fo+fontHeaderSize, n*entrySize, "glyph table")
	if err != nil {
		return nil, err
	}
	f.Glyphs = make([]Entry, n)
	for i := range f.Glyphs {
		b := entries[i*entrySize:]
		f.Glyphs[i] = Entry{
			CharUTF8:       le.Uint32(b),
			CharSJIS:       le.Uint16(b[4:]),
			TextureIndex:   le.Uint16(b[6:]),
			TextureOffsetX: le.Uint16(b[8:]),
			TextureOffsetY: le.Uint16(b[10:]),
			BoundingWidth:  b[12],
			BoundingHeight: b[13],
			NextOffsetX:    int8(b[14]),
			CurrentOffsetY: int8(b[15]),
		}
	}

	ko := int(f.FileHeader.KerningTableOffset)
	kh, err := span(data, ko, kerningHeaderSize, "kerning table header")
	if err != nil {
		return nil, err
	}
	kn := min(int(f.FontHeader.KerningEntryCount), int(int32(le.Uint32(kh[4:]))))
	if kn < 0 {
		kn = 0
	}
	pairs, err := span(data, ko+kerningHeaderSize, kn*kerningEntrySize, "kerning table")
	if err != nil {
		return nil, err
	}
	f.Kerning = make([]KerningEntry, kn)
	for i := range f.Kerning {
		b := pairs[i*kerningEntrySize:]
		f.Kerning[i] = KerningEntry{
			LeftUTF8:    le.Uint32(b),
			RightUTF8:   le.Uint32(b[4:]),
			LeftSJIS:    le.Uint16(b[8:]),
			RightSJIS:   le.Uint16(b[10:]),
			RightOffset: int32(le.Uint32(b[12:])),
		}
	}
	return f, nil
}

func span(data []byte, off, n int, what string) ([]byte, error) {
	if off < 0 || n < 0 || off > len(data) || n > len(data)-off {
		return nil, errors.Wrapf(ErrDataTooShort, "fdt %s at %#x+%#x, file is %#x bytes", what, off, n, len(data))
	}
	return data[off : off+n], nil
}

// FindGlyphIndex returns the index of codepoint in Glyphs, or -1.
func (f *FDT) FindGlyphIndex(codepoint rune) int {
	key := CodepointToUTF8Int(codepoint)
	i := sort.Search(len(f.Glyphs), func(i int) bool { return f.Glyphs[i].CharUTF8 >= key })
	if i < len(f.Glyphs) && f.Glyphs[i].CharUTF8 == key {
		return i
	}
	return -1
}

// FindGlyph returns the glyph for codepoint.
func (f *FDT) FindGlyph(codepoint rune) (Entry, bool) {
	i := f.FindGlyphIndex(codepoint)
	if i < 0 {
		return Entry{}, false
	}
	return f.Glyphs[i], true
}

// Glyph returns the glyph for codepoint, falling back to 〓, '?' and '='.
func (f *FDT) Glyph(codepoint rune) (Entry, bool) {
	for _, c := range [...]rune{codepoint, '〓', '?', '='} {
		if e, ok := f.FindGlyph(c); ok {
			return e, true
		}
	}
	return Entry{}, false
}

// Distance returns the kerning between left and right in pixels at the
// prebaked size.
func (f *FDT) Distance(left, right rune) int {
	l, r := CodepointToUTF8Int(left), CodepointToUTF8Int(right)
	i := sort.Search(len(f.Kerning), func(i int) bool {
		k := f.Kerning[i]
		return k.LeftUTF8 > l || (k.LeftUTF8 == l && k.RightUTF8 >= r)
	})
	if i < len(f.Kerning) && f.Kerning[i].LeftUTF8 == l && f.Kerning[i].RightUTF8 == r {
		return int(f.Kerning[i].RightOffset)
	}
	return 0
}

// MaxTextureIndex is the largest TextureIndex referenced, or -1 without
// glyphs.
func (f *FDT) MaxTextureIndex() int {
	m := -1
	for _, g := range f.Glyphs {
		m = max(m, int(g.TextureIndex))
	}
	return m
}

// Ranges returns the BMP codepoints of f as zero-terminated inclusive
// [from, to] pairs, leaving out codepoints for which exclude reports true.
func (f *FDT) Ranges(exclude func(rune) bool) []uint16 {
	var out []uint16
	for _, g := range f.Glyphs {
		c := g.Codepoint()
		if c >= 0x10000 {
			break
		}
		if c == 0 || (exclude != nil && exclude(c)) {
			continue
		}
		c16 := uint16(c)
		n := len(out)
		switch {
		case n > 0 && int(out[n-1])+1 == int(c16):
			out[n-1] = c16
		case n > 0 && c16 <= out[n-1]:
		default:
			out = append(out, c16, c16)
		}
	}
	return append(out, 0)
}

// CodepointToUTF8Int packs the UTF-8 encoding of c into an integer, first
// byte most significant. Codepoints above U+10FFFF map to 0xFFFE.
func CodepointToUTF8Int(c rune) uint32 {
	u := uint32(c)
	switch {
	case c < 0:
		return 0xFFFE
	case u <= 0x7F:
		return u
	case u <= 0x7FF:
		return (0xC0|u>>6)<<8 | (0x80 | u&0x3F)
	case u <= 0xFFFF:
		return (0xE0|u>>12)<<16 | (0x80|(u>>6)&0x3F)<<8 | (0x80 | u&0x3F)
	case u <= 0x10FFFF:
		return (0xF0|u>>18)<<24 | (0x80|(u>>12)&0x3F)<<16 | (0x80|(u>>6)&0x3F)<<8 | (0x80 | u&0x3F)
	}
	return 0xFFFE
}

// UTF8IntToCodepoint reverses CodepointToUTF8Int. Malformed values map to
// 0xFFFF, which is not a character.
func UTF8IntToCodepoint(n uint32) rune {
	switch {
	case n&0xFFFFFF80 == 0:
		return rune(n & 0x7F)
	case n&0xFFFFE0C0 == 0xC080:
		return rune((n>>8)&0x1F<<6 | n&0x3F)
	case n&0xFFF0C0C0 == 0xE08080:
		return rune((n>>16)&0x0F<<12 | (n>>8)&0x3F<<6 | n&0x3F)
	case n&0xF8C0C0C0 == 0xF0808080:
		return rune((n>>24)&0x07<<18 | (n>>16)&0x3F<<12 | (n>>8)&0x3F<<6 | n&0x3F)
	}
	return 0xFFFF
}

func decodeSJIS(code uint16) string {
	if code == 0 {
		return ""
	}
	var raw []byte
	if code > 0xFF {
		raw = []byte{byte(code >> 8), byte(code)}
	} else {
		raw = []byte{byte(code)}
	}
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err != nil {
		return ""
	}
	return string(out)
}
