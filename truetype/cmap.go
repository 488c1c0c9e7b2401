package truetype

import (
	"fmt"
	"iter"
	"sort"
)

// GlyphID is a glyph index inside a font.
type GlyphID uint16

// CMap maps Unicode codepoints to glyph ids.
type CMap interface {
	// Format returns the cmap subtable format number.
	Format() int

	// Lookup returns the glyph for r. The second result is false when the
	// subtable does not map r or maps it to glyph 0.
	Lookup(r rune) (GlyphID, bool)

	// All yields every mapped codepoint in ascending order. Every pair it
	// yields agrees with Lookup.
	All() iter.Seq2[rune, GlyphID]
}

type encodingKey struct {
	platform, encoding uint16
}

// cmapPreference is the (platform, encoding) search order. Unicode full
// repertoire subtables come before the BMP-only Windows one.
var cmapPreference = []encodingKey{
	{0, 3}, {0, 4}, {0, 6}, {3, 1}, {3, 10},
}

// CMap selects and decodes the preferred Unicode subtable.
func (f *Font) CMap() (CMap, error) {
	tbl, err := f.table(TagCmap)
	if err != nil {
		return nil, err
	}
	return parseCMapTable(tbl)
}

func parseCMapTable(tbl segment) (CMap, error) {
	r := &reader{seg: tbl}
	n := int(r.u16(2))
	if !r.need(4, n*8) {
		return nil, r.err
	}
	offsets := make(map[encodingKey]uint32, n)
	for i := range n {
		rec := 4 + 8*i
		key := encodingKey{r.u16(rec), r.u16(rec + 2)}
		if _, dup := offsets[key]; !dup {
			offsets[key] = r.u32(rec + 4)
		}
	}
	for _, key := range cmapPreference {
		off, ok := offsets[key]
		if !ok {
			continue
		}
		sub, err := tbl.from(int(off))
		if err != nil {
			continue
		}
		if cm, err := parseCMapSubtable(sub); err == nil {
			return cm, nil
		}
	}
	return nil, ErrNoSupportedCMap
}

func parseCMapSubtable(s segment) (CMap, error) {
	format, err := s.u16(0)
	if err != nil {
		return nil, err
	}
	switch format {
	case 0:
		return parseCMap0(s)
	case 2:
		return parseCMap2(s)
	case 4:
		return parseCMap4(s)
	case 6:
		return parseCMap6(s)
	case 8:
		return parseCMap8(s)
	case 10:
		return parseCMap10(s)
	case 12, 13:
		return parseCMapGroups(s, int(format))
	}
	return nil, fmt.Errorf("%w: cmap format %d", ErrUnsupportedFormat, format)
}

// ascending wraps a candidate enumeration so that only strictly increasing
// codepoints with a non-zero Lookup result are yielded.
func ascending(cm CMap, candidates func(yield func(rune) bool)) iter.Seq2[rune, GlyphID] {
	return func(yield func(rune, GlyphID) bool) {
		last := rune(-1)
		candidates(func(c rune) bool {
			if c <= last {
				return true
			}
			g, ok := cm.Lookup(c)
			if !ok {
				return true
			}
			last = c
			return yield(c, g)
		})
	}
}

// Format 0: byte encoding table.

type cmap0 struct {
	ids [256]byte
}

func parseCMap0(s segment) (CMap, error) {
	ids, err := s.view(6, 256)
	if err != nil {
		return nil, err
	}
	cm := &cmap0{}
	copy(cm.ids[:], ids)
	return cm, nil
}

func (*cmap0) Format() int { return 0 }

func (cm *cmap0) Lookup(r rune) (GlyphID, bool) {
	if r < 0 || r > 0xFF || cm.ids[r] == 0 {
		return 0, false
	}
	return GlyphID(cm.ids[r]), true
}

func (cm *cmap0) All() iter.Seq2[rune, GlyphID] {
	return ascending(cm, func(yield func(rune) bool) {
		for c := range rune(256) {
			if !yield(c) {
				return
			}
		}
	})
}

// Format 2: high-byte mapping through table.

type cmap2SubHeader struct {
	firstCode, entryCount uint16
	idDelta               int16
	// rangeBase is the absolute offset of the first glyph id of the range.
	rangeBase int
}

type cmap2 struct {
	seg     segment
	keys    [256]uint16
	headers []cmap2SubHeader
}

const cmap2SubHeaders = 6 + 256*2

func parseCMap2(s segment) (CMap, error) {
	r := &reader{seg: s}
	cm := &cmap2{seg: s}
	maxKey := 0
	for i := range cm.keys {
		k := r.u16(6 + 2*i) / 8
		cm.keys[i] = k
		maxKey = max(maxKey, int(k))
	}
	if !r.need(cmap2SubHeaders, (maxKey+1)*8) {
		return nil, r.err
	}
	cm.headers = make([]cmap2SubHeader, maxKey+1)
	for i := range cm.headers {
		off := cmap2SubHeaders + 8*i
		cm.headers[i] = cmap2SubHeader{
			firstCode:  r.u16(off),
			entryCount: r.u16(off + 2),
			idDelta:    r.i16(off + 4),
			rangeBase:  off + 6 + int(r.u16(off+6)),
		}
	}
	return cm, r.err
}

func (*cmap2) Format() int { return 2 }

func (cm *cmap2) Lookup(r rune) (GlyphID, bool) {
	if r < 0 || r > 0xFFFF {
		return 0, false
	}
	var sub, lo int
	if r < 0x100 {
		// A byte with a non-zero key is a lead byte, not a character.
		if cm.keys[r] != 0 {
			return 0, false
		}
		lo = int(r)
	} else {
		sub = int(cm.keys[r>>8])
		if sub == 0 {
			return 0, false
		}
		lo = int(r & 0xFF)
	}
	h := cm.headers[sub]
	idx := lo - int(h.firstCode)
	if idx < 0 || idx >= int(h.entryCount) {
		return 0, false
	}
	g, err := cm.seg.u16(h.rangeBase + 2*idx)
	if err != nil || g == 0 {
		return 0, false
	}
	g = uint16(int(g) + int(h.idDelta))
	return GlyphID(g), g != 0
}

func (cm *cmap2) All() iter.Seq2[rune, GlyphID] {
	return ascending(cm, func(yield func(rune) bool) {
		for c := range rune(256) {
			if !yield(c) {
				return
			}
		}
		for hi := 1; hi < 256; hi++ {
			if cm.keys[hi] == 0 {
				continue
			}
			h := cm.headers[cm.keys[hi]]
			for i := range int(h.entryCount) {
				lo := int(h.firstCode) + i
				if lo > 0xFF {
					break
				}
				if !yield(rune(hi<<8 | lo)) {
					return
				}
			}
		}
	})
}

// Format 4: segment mapping to delta values.

type cmap4 struct {
	seg       segment
	segCount  int
	endCodes  int
	startCode int
	idDelta   int
	idRange   int
}

func parseCMap4(s segment) (CMap, error) {
	segX2, err := s.u16(6)
	if err != nil {
		return nil, err
	}
	n := int(segX2 / 2)
	cm := &cmap4{
		seg:       s,
		segCount:  n,
		endCodes:  14,
		startCode: 16 + 2*n,
		idDelta:   16 + 4*n,
		idRange:   16 + 6*n,
	}
	if _, err := s.view(14, 8*n+2); err != nil {
		return nil, err
	}
	return cm, nil
}

func (*cmap4) Format() int { return 4 }

func (cm *cmap4) at(base, i int) uint16 {
	// Bounds were verified in parseCMap4.
	v, _ := cm.seg.u16(base + 2*i)
	return v
}

func (cm *cmap4) Lookup(r rune) (GlyphID, bool) {
	if r < 0 || r > 0xFFFF {
		return 0, false
	}
	c := uint16(r)
	i := sort.Search(cm.segCount, func(i int) bool { return cm.at(cm.endCodes, i) >= c })
	if i == cm.segCount {
		return 0, false
	}
	start := cm.at(cm.startCode, i)
	if start > c {
		return 0, false
	}
	delta := cm.at(cm.idDelta, i)
	ro := cm.at(cm.idRange, i)
	if ro == 0 {
		g := c + delta
		return GlyphID(g), g != 0
	}
	g, err := cm.seg.u16(cm.idRange + 2*i + int(ro) + 2*int(c-start))
	if err != nil || g == 0 {
		return 0, false
	}
	g += delta
	return GlyphID(g), g != 0
}

func (cm *cmap4) All() iter.Seq2[rune, GlyphID] {
	return ascending(cm, func(yield func(rune) bool) {
		for i := range cm.segCount {
			start, end := int(cm.at(cm.startCode, i)), int(cm.at(cm.endCodes, i))
			for c := start; c <= end; c++ {
				if !yield(rune(c)) {
					return
				}
			}
		}
	})
}

// Format 6: trimmed table mapping.

type cmap6 struct {
	seg        segment
	firstCode  int
	entryCount int
}

func parseCMap6(s segment) (CMap, error) {
	r := &reader{seg: s}
	cm := &cmap6{seg: s, firstCode: int(r.u16(6)), entryCount: int(r.u16(8))}
	r.need(10, 2*cm.entryCount)
	return cm, r.err
}

func (*cmap6) Format() int { return 6 }

func (cm *cmap6) Lookup(r rune) (GlyphID, bool) {
	i := int(r) - cm.firstCode
	if i < 0 || i >= cm.entryCount {
		return 0, false
	}
	g, _ := cm.seg.u16(10 + 2*i)
	return GlyphID(g), g != 0
}

func (cm *cmap6) All() iter.Seq2[rune, GlyphID] {
	return ascending(cm, func(yield func(rune) bool) {
		for i := range cm.entryCount {
			if !yield(rune(cm.firstCode + i)) {
				return
			}
		}
	})
}

// Format 10: trimmed array.

type cmap10 struct {
	seg      segment
	start    uint32
	numChars uint32
}

func parseCMap10(s segment) (CMap, error) {
	r := &reader{seg: s}
	cm := &cmap10{seg: s, start: r.u32(12), numChars: r.u32(16)}
	if r.err == nil && uint64(cm.numChars)*2 > uint64(len(s)) {
		return nil, fmt.Errorf("%w: cmap10 numChars %d", ErrTableBounds, cm.numChars)
	}
	r.need(20, 2*int(cm.numChars))
	return cm, r.err
}

func (*cmap10) Format() int { return 10 }

func (cm *cmap10) Lookup(r rune) (GlyphID, bool) {
	if r < 0 || uint32(r) < cm.start {
		return 0, false
	}
	i := uint32(r) - cm.start
	if i >= cm.numChars {
		return 0, false
	}
	g, _ := cm.seg.u16(20 + 2*int(i))
	return GlyphID(g), g != 0
}

func (cm *cmap10) All() iter.Seq2[rune, GlyphID] {
	return ascending(cm, func(yield func(rune) bool) {
		for i := range cm.numChars {
			c := uint64(cm.start) + uint64(i)
			if c > maxRune || !yield(rune(c)) {
				return
			}
		}
	})
}

// Formats 8, 12 and 13: sequential or constant groups.

const maxRune = 0x10FFFF

type cmapGroup struct {
	start, end, glyph uint32
}

type cmapGroups struct {
	format   int
	constant bool
	groups   []cmapGroup
}

func parseCMap8(s segment) (CMap, error) {
	return readGroups(s, 8, 8204, 8208, false)
}

func parseCMapGroups(s segment, format int) (CMap, error) {
	return readGroups(s, format, 12, 16, format == 13)
}

func readGroups(s segment, format, countAt, groupsAt int, constant bool) (CMap, error) {
	n, err := s.u32(countAt)
	if err != nil {
		return nil, err
	}
	if uint64(n)*12 > uint64(len(s)) {
		return nil, fmt.Errorf("%w: cmap%d numGroups %d", ErrTableBounds, format, n)
	}
	r := &reader{seg: s}
	if !r.need(groupsAt, int(n)*12) {
		return nil, r.err
	}
	cm := &cmapGroups{format: format, constant: constant, groups: make([]cmapGroup, n)}
	for i := range cm.groups {
		off := groupsAt + 12*i
		cm.groups[i] = cmapGroup{start: r.u32(off), end: r.u32(off + 4), glyph: r.u32(off + 8)}
	}
	return cm, r.err
}

func (cm *cmapGroups) Format() int { return cm.format }

func (cm *cmapGroups) Lookup(r rune) (GlyphID, bool) {
	if r < 0 || r > maxRune {
		return 0, false
	}
	c := uint32(r)
	i := sort.Search(len(cm.groups), func(i int) bool { return cm.groups[i].end >= c })
	if i == len(cm.groups) || cm.groups[i].start > c {
		return 0, false
	}
	g := cm.groups[i].glyph
	if !cm.constant {
		g += c - cm.groups[i].start
	}
	if g == 0 || g > 0xFFFF {
		return 0, false
	}
	return GlyphID(g), true
}

func (cm *cmapGroups) All() iter.Seq2[rune, GlyphID] {
	return ascending(cm, func(yield func(rune) bool) {
		for _, grp := range cm.groups {
			for c := uint64(grp.start); c <= uint64(min(grp.end, maxRune)); c++ {
				if !yield(rune(c)) {
					return
				}
			}
		}
	})
}

// ReverseMap groups the codepoints of cm by glyph.
func ReverseMap(cm CMap) map[GlyphID][]rune {
	rev := make(map[GlyphID][]rune)
	for c, g := range cm.All() {
		rev[g] = append(rev[g], c)
	}
	return rev
}
