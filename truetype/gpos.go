package truetype

import (
	"fmt"
	"math/bits"
)

const (
	lookupPairAdjustment = 2
	lookupExtension      = 9
)

// Value record field flags.
const (
	valueXPlacement = 0x0001
	valueXAdvance   = 0x0004
)

// GPOSPairs collects horizontal pair adjustments from the pair positioning
// lookups of the GPOS table, including lookups wrapped in extensions. The
// value of a pair is the first glyph's XAdvance plus the second glyph's
// XPlacement. Within a lookup the first subtable that covers a pair wins;
// separate lookups accumulate.
func (f *Font) GPOSPairs() ([]GlyphPair, error) {
	tbl, err := f.table(TagGPOS)
	if err != nil {
		return nil, err
	}
	return parseGPOS(tbl)
}

func parseGPOS(tbl segment) ([]GlyphPair, error) {
	r := &reader{seg: tbl}
	major := r.u16(0)
	listOff := int(r.u16(8))
	if r.err != nil {
		return nil, r.err
	}
	if major != 1 {
		return nil, fmt.Errorf("%w: GPOS version %d", ErrUnsupportedFormat, major)
	}
	list, err := tbl.from(listOff)
	if err != nil {
		return nil, err
	}
	lr := &reader{seg: list}
	count := int(lr.u16(0))
	if !lr.need(2, 2*count) {
		return nil, lr.err
	}

	total := newPairAccumulator()
	for i := range count {
		lookup, err := list.from(int(lr.u16(2 + 2*i)))
		if err != nil {
			return nil, err
		}
		acc := newPairAccumulator()
		if err := readPairLookup(lookup, acc); err != nil {
			return nil, err
		}
		for _, p := range acc.pairs() {
			total.add(p.Left, p.Right, p.Value, combineSum)
		}
	}
	return total.pairs(), nil
}

func readPairLookup(lookup segment, acc *pairAccumulator) error {
	r := &reader{seg: lookup}
	kind := r.u16(0)
	n := int(r.u16(4))
	if !r.need(6, 2*n) {
		return r.err
	}
	if kind != lookupPairAdjustment && kind != lookupExtension {
		return nil
	}
	for i := range n {
		sub, err := lookup.from(int(r.u16(6 + 2*i)))
		if err != nil {
			return err
		}
		if kind == lookupExtension {
			sr := &reader{seg: sub}
			format := sr.u16(0)
			extKind := sr.u16(2)
			extOff := sr.u32(4)
			if sr.err != nil {
				return sr.err
			}
			if format != 1 || extKind != lookupPairAdjustment {
				continue
			}
			if sub, err = sub.from(int(extOff)); err != nil {
				return err
			}
		}
		if err := readPairPos(sub, acc); err != nil {
			return err
		}
	}
	return nil
}

func valueRecordSize(format uint16) int {
	return 2 * bits.OnesCount16(format&0xFF)
}

// valueField reads the field selected by flag from the value record at off,
// or 0 when the record does not carry it.
func valueField(r *reader, off int, format, flag uint16) int32 {
	if format&flag == 0 {
		return 0
	}
	return int32(r.i16(off + 2*bits.OnesCount16(format&(flag-1))))
}

func readPairPos(sub segment, acc *pairAccumulator) error {
	r := &reader{seg: sub}
	format := r.u16(0)
	covOff := int(r.u16(2))
	vf1 := r.u16(4)
	vf2 := r.u16(6)
	if r.err != nil {
		return r.err
	}
	covSeg, err := sub.from(covOff)
	if err != nil {
		return err
	}
	coverage, err := parseCoverage(covSeg)
	if err != nil {
		return err
	}
	size1, size2 := valueRecordSize(vf1), valueRecordSize(vf2)

	switch format {
	case 1:
		n := int(r.u16(8))
		if !r.need(10, 2*n) {
			return r.err
		}
		for i := range min(n, len(coverage)) {
			set, err := sub.from(int(r.u16(10 + 2*i)))
			if err != nil {
				return err
			}
			sr := &reader{seg: set}
			count := int(sr.u16(0))
			rec := 2 + size1 + size2
			if !sr.need(2, count*rec) {
				return sr.err
			}
			for j := range count {
				off := 2 + j*rec
				second := GlyphID(sr.u16(off))
				v := valueField(sr, off+2, vf1, valueXAdvance) + valueField(sr, off+2+size1, vf2, valueXPlacement)
				if !acc.has(coverage[i], second) {
					acc.add(coverage[i], second, v, combineOverride)
				}
			}
		}
		return nil

	case 2:
		cd1Off := int(r.u16(8))
		cd2Off := int(r.u16(10))
		n1 := int(r.u16(12))
		n2 := int(r.u16(14))
		rec := size1 + size2
		if !r.need(16, n1*n2*rec) {
			return r.err
		}
		cd1Seg, err := sub.from(cd1Off)
		if err != nil {
			return err
		}
		cd2Seg, err := sub.from(cd2Off)
		if err != nil {
			return err
		}
		cd1, err := parseClassDef(cd1Seg)
		if err != nil {
			return err
		}
		cd2, err := parseClassDef(cd2Seg)
		if err != nil {
			return err
		}

		// Covered glyphs missing from ClassDef1 are class 0.
		firsts := make(map[uint16][]GlyphID)
		for _, g := range coverage {
			c := cd1[g]
			firsts[c] = append(firsts[c], g)
		}
		// Second glyphs are taken only from explicit ClassDef2 entries.
		seconds := make(map[uint16][]GlyphID)
		for g, c := range cd2 {
			seconds[c] = append(seconds[c], g)
		}

		for c1 := range n1 {
			lefts := firsts[uint16(c1)]
			if len(lefts) == 0 {
				continue
			}
			for c2 := range n2 {
				rights := seconds[uint16(c2)]
				if len(rights) == 0 {
					continue
				}
				off := 16 + (c1*n2+c2)*rec
				v := valueField(r, off, vf1, valueXAdvance) + valueField(r, off+size1, vf2, valueXPlacement)
				if v == 0 {
					continue
				}
				for _, left := range lefts {
					for _, right := range rights {
						if !acc.has(left, right) {
							acc.add(left, right, v, combineOverride)
						}
					}
				}
			}
		}
		return r.err
	}
	return fmt.Errorf("%w: PairPos format %d", ErrUnsupportedFormat, format)
}

// parseCoverage returns the covered glyphs indexed by coverage index.
func parseCoverage(s segment) ([]GlyphID, error) {
	r := &reader{seg: s}
	format := r.u16(0)
	n := int(r.u16(2))
	if r.err != nil {
		return nil, r.err
	}
	switch format {
	case 1:
		if !r.need(4, 2*n) {
			return nil, r.err
		}
		out := make([]GlyphID, n)
		for i := range out {
			out[i] = GlyphID(r.u16(4 + 2*i))
		}
		return out, r.err
	case 2:
		if !r.need(4, 6*n) {
			return nil, r.err
		}
		var out []GlyphID
		for i := range n {
			start, end, idx := int(r.u16(4+6*i)), int(r.u16(6+6*i)), int(r.u16(8+6*i))
			for g := start; g <= end; g++ {
				at := idx + g - start
				if at >= 0x10000 {
					break
				}
				for len(out) <= at {
					out = append(out, 0)
				}
				out[at] = GlyphID(g)
			}
		}
		return out, r.err
	}
	return nil, fmt.Errorf("%w: coverage format %d", ErrUnsupportedFormat, format)
}

// parseClassDef returns the explicitly classified glyphs.
func parseClassDef(s segment) (map[GlyphID]uint16, error) {
	r := &reader{seg: s}
	format := r.u16(0)
	if r.err != nil {
		return nil, r.err
	}
	out := make(map[GlyphID]uint16)
	switch format {
	case 1:
		start := int(r.u16(2))
		n := int(r.u16(4))
		if !r.need(6, 2*n) {
			return nil, r.err
		}
		for i := range n {
			if start+i > 0xFFFF {
				break
			}
			out[GlyphID(start+i)] = r.u16(6 + 2*i)
		}
		return out, r.err
	case 2:
		n := int(r.u16(2))
		if !r.need(4, 6*n) {
			return nil, r.err
		}
		for i := range n {
			start, end, class := int(r.u16(4+6*i)), int(r.u16(6+6*i)), r.u16(8+6*i)
			for g := start; g <= end; g++ {
				out[GlyphID(g)] = class
			}
		}
		return out, r.err
	}
	return nil, fmt.Errorf("%w: class definition format %d", ErrUnsupportedFormat, format)
}
