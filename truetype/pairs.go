package truetype

import "fmt"

// PairAdjustment is a horizontal kerning distance between two codepoints,
// measured in em units.
type PairAdjustment struct {
	Left, Right rune
	Distance    float32
}

// ExtractHorizontalPairAdjustments reads the kern table, or the GPOS table
// when no kern table exists, and maps the glyph pairs back to codepoints
// through the font's cmap. Each glyph pair expands to every codepoint pair
// that maps to it.
//
// Malformed or unsupported data yields nil.
func ExtractHorizontalPairAdjustments(data []byte, fontIndex int) (out []PairAdjustment) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()

	f, err := Open(data, fontIndex)
	if err != nil {
		return nil
	}
	upem, err := f.UnitsPerEm()
	if err != nil {
		return nil
	}
	cm, err := f.CMap()
	if err != nil {
		return nil
	}

	var pairs []GlyphPair
	switch {
	case f.HasTable(TagKern):
		pairs, err = f.KernPairs()
	case f.HasTable(TagGPOS):
		pairs, err = f.GPOSPairs()
	}
	if err != nil || len(pairs) == 0 {
		return nil
	}

	rev := ReverseMap(cm)
	for _, p := range pairs {
		lefts, rights := rev[p.Left], rev[p.Right]
		if len(lefts) == 0 || len(rights) == 0 {
			continue
		}
		d := float32(p.Value) / float32(upem)
		for _, l := range lefts {
			for _, r := range rights {
				out = append(out, PairAdjustment{Left: l, Right: r, Distance: d})
			}
		}
	}
	return out
}

// CheckCompatible reports whether the font at fontIndex can be loaded by an
// atlas: it must open, carry a head table, a supported Unicode cmap and glyf
// or CFF outlines.
func CheckCompatible(data []byte, fontIndex int) error {
	f, err := Open(data, fontIndex)
	if err != nil {
		return err
	}
	if _, err := f.UnitsPerEm(); err != nil {
		return fmt.Errorf("truetype: head: %w", err)
	}
	if _, err := f.CMap(); err != nil {
		return err
	}
	if !f.HasTable(TagGlyf) && !f.HasTable(TagCFF) {
		return ErrNoOutlines
	}
	return nil
}
