package glyphrange

import "iter"

// FallbackCodepoints lists, in priority order, the glyphs a font uses for
// codepoints it does not map: geta mark, replacement character, '?', '-'.
var FallbackCodepoints = []rune{'\u3013', '\uFFFD', '?', '-'}

// EllipsisCodepoints lists, in priority order, the glyphs a font uses to
// mark truncated text.
var EllipsisCodepoints = []rune{'\u2026', '\u0085'}

// Default returns the range list used when a font config specifies none:
// everything in the BMP but the noncharacter U+FFFF.
func Default() []uint16 { return []uint16{1, 0xFFFE, 0} }

// Validate checks the shape of a range list. A nil or empty list is valid
// and means "use the default".
func Validate(ranges []uint16) error {
	if len(ranges) == 0 {
		return nil
	}
	if ranges[0] == 0 {
		return ErrStartsWithZero
	}
	if ranges[(len(ranges)-1)&^1] != 0 {
		return ErrUnterminated
	}
	return nil
}

// Contains reports whether r lies in one of the ranges. Codepoint 0 and
// U+FFFF are never contained.
func Contains(ranges []uint16, r rune) bool {
	if r <= 0 || r >= MaxCodepoint {
		return false
	}
	for from, to := range Pairs(ranges) {
		if from <= r && r <= to {
			return true
		}
	}
	return false
}

// Pairs yields the [from, to] pairs of a range list up to its terminator.
func Pairs(ranges []uint16) iter.Seq2[rune, rune] {
	return func(yield func(rune, rune) bool) {
		for i := 0; i+1 < len(ranges) && ranges[i] != 0; i += 2 {
			if !yield(rune(ranges[i]), rune(ranges[i+1])) {
				return
			}
		}
	}
}

// Codepoints yields each codepoint of a range list once, in ascending
// order, regardless of overlaps in the list.
func Codepoints(ranges []uint16) iter.Seq[rune] {
	b := New().WithRanges(ranges)
	return func(yield func(rune) bool) {
		for r := rune(1); r <= MaxCodepoint; r++ {
			if b.Has(r) && !yield(r) {
				return
			}
		}
	}
}
