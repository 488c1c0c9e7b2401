package truetype

import (
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
)

// GlyphPair is a horizontal adjustment between two glyphs, in font units.
type GlyphPair struct {
	Left, Right GlyphID
	Value       int32
}

// kern table coverage flags (version 0).
const (
	kernHorizontal  = 0x01
	kernMinimum     = 0x02
	kernCrossStream = 0x04
	kernOverride    = 0x08
)

type combineMode int

const (
	combineSum combineMode = iota
	combineMinimum
	combineOverride
)

// pairAccumulator collects pair values ordered by (left, right).
type pairAccumulator struct {
	m *treemap.Map
}

func newPairAccumulator() *pairAccumulator {
	return &pairAccumulator{m: treemap.NewWithIntComparator()}
}

func pairKey(l, r GlyphID) int { return int(l)<<16 | int(r) }

func (a *pairAccumulator) add(l, r GlyphID, v int32, mode combineMode) {
	k := pairKey(l, r)
	old, found := a.m.Get(k)
	switch {
	case !found || mode == combineOverride:
		a.m.Put(k, v)
	case mode == combineMinimum:
		a.m.Put(k, max(old.(int32), v))
	default:
		a.m.Put(k, old.(int32)+v)
	}
}

func (a *pairAccumulator) has(l, r GlyphID) bool {
	_, found := a.m.Get(pairKey(l, r))
	return found
}

// pairs returns the non-zero entries in key order.
func (a *pairAccumulator) pairs() []GlyphPair {
	out := make([]GlyphPair, 0, a.m.Size())
	it := a.m.Iterator()
	for it.Next() {
		v := it.Value().(int32)
		if v == 0 {
			continue
		}
		k := it.Key().(int)
		out = append(out, GlyphPair{Left: GlyphID(k >> 16), Right: GlyphID(k), Value: v})
	}
	return out
}

// KernPairs decodes the horizontal format 0 subtables of the kern table.
// Both the OpenType (version 0) and the Apple (version 1) headers are read.
func (f *Font) KernPairs() ([]GlyphPair, error) {
	tbl, err := f.table(TagKern)
	if err != nil {
		return nil, err
	}
	return parseKern(tbl)
}

func parseKern(tbl segment) ([]GlyphPair, error) {
	version, err := tbl.u16(0)
	if err != nil {
		return nil, err
	}
	acc := newPairAccumulator()
	switch version {
	case 0:
		err = parseKernV0(tbl, acc)
	case 1:
		err = parseKernV1(tbl, acc)
	default:
		err = fmt.Errorf("%w: kern version %d", ErrUnsupportedFormat, version)
	}
	if err != nil {
		return nil, err
	}
	return acc.pairs(), nil
}

func parseKernV0(tbl segment, acc *pairAccumulator) error {
	r := &reader{seg: tbl}
	n := int(r.u16(2))
	off := 4
	for range n {
		length := int(r.u16(off + 2))
		format := r.u8(off + 4)
		coverage := r.u8(off + 5)
		if r.err != nil {
			return r.err
		}
		size := length
		if format == 0 && coverage&kernHorizontal != 0 && coverage&kernCrossStream == 0 {
			mode := combineSum
			switch {
			case coverage&kernOverride != 0:
				mode = combineOverride
			case coverage&kernMinimum != 0:
				mode = combineMinimum
			}
			used, err := readKernFormat0(tbl, off+6, acc, mode)
			if err != nil {
				return err
			}
			// The u16 length overflows for large subtables.
			size = max(size, 6+used)
		}
		if size <= 0 {
			break
		}
		off += size
	}
	return nil
}

func parseKernV1(tbl segment, acc *pairAccumulator) error {
	r := &reader{seg: tbl}
	if v := r.u32(0); r.err == nil && v != 0x00010000 {
		return fmt.Errorf("%w: kern version %#x", ErrUnsupportedFormat, v)
	}
	n := r.u32(4)
	if r.err != nil {
		return r.err
	}
	off := 8
	for i := uint32(0); i < n; i++ {
		length := int(r.u32(off))
		coverage := r.u8(off + 4)
		format := r.u8(off + 5)
		if r.err != nil {
			return r.err
		}
		if coverage == 0 && format == 0 {
			if _, err := readKernFormat0(tbl, off+8, acc, combineSum); err != nil {
				return err
			}
		}
		if length <= 0 {
			break
		}
		off += length
	}
	return nil
}

// readKernFormat0 reads the pair list starting at off (the nPairs field)
// and returns the number of bytes consumed.
func readKernFormat0(tbl segment, off int, acc *pairAccumulator, mode combineMode) (int, error) {
	r := &reader{seg: tbl}
	n := int(r.u16(off))
	if !r.need(off+8, 6*n) {
		return 0, r.err
	}
	for i := range n {
		p := off + 8 + 6*i
		acc.add(GlyphID(r.u16(p)), GlyphID(r.u16(p+2)), int32(r.i16(p+4)), mode)
	}
	return 8 + 6*n, r.err
}
