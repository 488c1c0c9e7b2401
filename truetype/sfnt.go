package truetype

import "fmt"

// Tag is a four byte OpenType table or script tag.
type Tag uint32

// MakeTag builds a Tag from the first four bytes of s, padding with spaces.
func MakeTag(s string) Tag {
	var b [4]byte
	for i := range b {
		if i < len(s) {
			b[i] = s[i]
		} else {
			b[i] = ' '
		}
	}
	return Tag(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}

func (t Tag) String() string {
	return string([]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)})
}

// Known table tags.
var (
	TagCmap = MakeTag("cmap")
	TagHead = MakeTag("head")
	TagKern = MakeTag("kern")
	TagGPOS = MakeTag("GPOS")
	TagGlyf = MakeTag("glyf")
	TagCFF  = MakeTag("CFF ")
	TagHhea = MakeTag("hhea")
	TagMaxp = MakeTag("maxp")
)

var (
	sigTTC      = MakeTag("ttcf")
	sigOTTO     = MakeTag("OTTO")
	sigTrue     = MakeTag("true")
	sigTyp1     = MakeTag("typ1")
	sigTrueType = Tag(0x00010000)
)

type tableRecord struct {
	offset uint32
	length uint32
}

// Font is a parsed table directory of one font inside a file. Table
// offsets are file-absolute, so the whole file stays referenced.
type Font struct {
	data   segment
	index  int
	tables map[Tag]tableRecord
}

// Open parses the table directory of the font at fontIndex. For a TrueType
// collection fontIndex selects the sub-font; plain fonts only accept 0.
func Open(data []byte, fontIndex int) (*Font, error) {
	seg := segment(data)
	sig, err := seg.u32(0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotSFNT, err)
	}

	dirOffset := 0
	switch Tag(sig) {
	case sigTTC:
		numFonts, err := seg.u32(8)
		if err != nil {
			return nil, err
		}
		if fontIndex < 0 || uint32(fontIndex) >= numFonts {
			return nil, fmt.Errorf("%w: %d of %d", ErrFontIndex, fontIndex, numFonts)
		}
		off, err := seg.u32(12 + 4*fontIndex)
		if err != nil {
			return nil, err
		}
		dirOffset = int(off)
		if sig, err = seg.u32(dirOffset); err != nil {
			return nil, err
		}
		if !isFontSignature(Tag(sig)) {
			return nil, fmt.Errorf("%w: sub-font %d signature %q", ErrNotSFNT, fontIndex, Tag(sig))
		}
	case sigTrueType, sigOTTO, sigTrue, sigTyp1:
		if fontIndex != 0 {
			return nil, fmt.Errorf("%w: %d for a single font", ErrFontIndex, fontIndex)
		}
	default:
		return nil, fmt.Errorf("%w: signature %q", ErrNotSFNT, Tag(sig))
	}

	r := &reader{seg: seg}
	numTables := int(r.u16(dirOffset + 4))
	if !r.need(dirOffset+12, numTables*16) {
		return nil, r.err
	}
	f := &Font{data: seg, index: fontIndex, tables: make(map[Tag]tableRecord, numTables)}
	for i := range numTables {
		rec := dirOffset + 12 + i*16
		tag := Tag(r.u32(rec))
		f.tables[tag] = tableRecord{offset: r.u32(rec + 8), length: r.u32(rec + 12)}
	}
	return f, r.err
}

func isFontSignature(t Tag) bool {
	return t == sigTrueType || t == sigOTTO || t == sigTrue || t == sigTyp1
}

// NumFonts reports how many fonts data holds: the TTC font count, or 1 for
// a plain SFNT.
func NumFonts(data []byte) (int, error) {
	seg := segment(data)
	sig, err := seg.u32(0)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNotSFNT, err)
	}
	switch {
	case Tag(sig) == sigTTC:
		n, err := seg.u32(8)
		return int(n), err
	case isFontSignature(Tag(sig)):
		return 1, nil
	}
	return 0, fmt.Errorf("%w: signature %q", ErrNotSFNT, Tag(sig))
}

// Index returns the collection index this font was opened with.
func (f *Font) Index() int { return f.index }

// HasTable reports whether the directory lists tag.
func (f *Font) HasTable(tag Tag) bool {
	_, ok := f.tables[tag]
	return ok
}

// Table returns the bytes of the table tagged tag. It reports false when the
// table is absent or its record points outside the data.
func (f *Font) Table(tag Tag) ([]byte, bool) {
	s, err := f.table(tag)
	if err != nil {
		return nil, false
	}
	return s, true
}

func (f *Font) table(tag Tag) (segment, error) {
	rec, ok := f.tables[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tag)
	}
	if uint64(rec.offset)+uint64(rec.length) > uint64(len(f.data)) {
		return nil, fmt.Errorf("%w: table %s", ErrTableBounds, tag)
	}
	return f.data[rec.offset : rec.offset+rec.length], nil
}

// UnitsPerEm reads the design units per em from the head table.
func (f *Font) UnitsPerEm() (uint16, error) {
	head, err := f.table(TagHead)
	if err != nil {
		return 0, err
	}
	upem, err := head.u16(18)
	if err != nil {
		return 0, err
	}
	if upem == 0 {
		return 0, fmt.Errorf("%w: head.unitsPerEm is zero", ErrUnsupportedFormat)
	}
	return upem, nil
}
