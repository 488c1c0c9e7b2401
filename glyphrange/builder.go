package glyphrange

import (
	"math/bits"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/language"
)

// MaxCodepoint is the largest codepoint a range list can carry.
const MaxCodepoint = 0xFFFF

const words = (MaxCodepoint + 1) / 64

// Builder accumulates a set of BMP codepoints. The zero value is an empty
// set ready for use. Methods return the receiver so calls can be chained.
// Codepoints outside [1, MaxCodepoint] are ignored.
//
// Builder is not safe for concurrent use.
type Builder struct {
	set [words]uint64
}

// New returns an empty builder.
func New() *Builder { return &Builder{} }

// Clear empties the set.
func (b *Builder) Clear() *Builder {
	b.set = [words]uint64{}
	return b
}

func (b *Builder) add(r rune) {
	if r < 1 || r > MaxCodepoint {
		return
	}
	b.set[r>>6] |= 1 << (uint(r) & 63)
}

// Has reports whether r is in the set.
func (b *Builder) Has(r rune) bool {
	if r < 1 || r > MaxCodepoint {
		return false
	}
	return b.set[r>>6]&(1<<(uint(r)&63)) != 0
}

// Len returns the number of codepoints in the set.
func (b *Builder) Len() int {
	n := 0
	for _, w := range b.set {
		n += bits.OnesCount64(w)
	}
	return n
}

// With adds the given codepoints.
func (b *Builder) With(runes ...rune) *Builder {
	for _, r := range runes {
		b.add(r)
	}
	return b
}

// WithRange adds every codepoint in the inclusive range. Both ends are
// clamped into [1, MaxCodepoint] and swapped when reversed.
func (b *Builder) WithRange(from, to rune) *Builder {
	from = min(max(from, 1), MaxCodepoint)
	to = min(max(to, 1), MaxCodepoint)
	if from > to {
		from, to = to, from
	}
	for r := from; r <= to; r++ {
		b.add(r)
	}
	return b
}

// WithBlocks adds whole Unicode blocks.
func (b *Builder) WithBlocks(blocks ...Block) *Builder {
	for _, blk := range blocks {
		b.WithRange(blk.First, blk.Last)
	}
	return b
}

// WithString adds every codepoint of s. Invalid UTF-8 bytes are skipped.
func (b *Builder) WithString(s string) *Builder {
	for len(s) > 0 {
		r, n := utf8.DecodeRuneInString(s)
		if r != utf8.RuneError || n > 1 {
			b.add(r)
		}
		s = s[n:]
	}
	return b
}

// WithBytes adds every codepoint of the UTF-8 sequence p. Invalid bytes are
// skipped.
func (b *Builder) WithBytes(p []byte) *Builder {
	for len(p) > 0 {
		r, n := utf8.DecodeRune(p)
		if r != utf8.RuneError || n > 1 {
			b.add(r)
		}
		p = p[n:]
	}
	return b
}

// WithUTF16 adds every BMP code unit of s. Surrogates are skipped since the
// characters they encode lie outside the representable range.
func (b *Builder) WithUTF16(s []uint16) *Builder {
	for _, u := range s {
		if !utf16.IsSurrogate(rune(u)) {
			b.add(rune(u))
		}
	}
	return b
}

// WithRanges adds every range of a zero-terminated range list. Values after
// the terminator are ignored.
func (b *Builder) WithRanges(ranges []uint16) *Builder {
	for i := 0; i+1 < len(ranges) && ranges[i] != 0; i += 2 {
		b.WithRange(rune(ranges[i]), rune(ranges[i+1]))
	}
	return b
}

// Without removes the given codepoints.
func (b *Builder) Without(runes ...rune) *Builder {
	for _, r := range runes {
		if r >= 1 && r <= MaxCodepoint {
			b.set[r>>6] &^= 1 << (uint(r) & 63)
		}
	}
	return b
}

// WithoutRanges removes every range of a zero-terminated range list.
func (b *Builder) WithoutRanges(ranges []uint16) *Builder {
	for from, to := range Pairs(ranges) {
		for r := from; r <= to; r++ {
			b.Without(r)
		}
	}
	return b
}

// WithLanguage adds the script blocks commonly needed to display text in
// the language of tag. Only Japanese, Chinese (both scripts) and Korean
// carry presets; other languages leave the set unchanged.
func (b *Builder) WithLanguage(tag language.Tag) *Builder {
	base, _ := tag.Base()
	switch base.String() {
	case "ja":
		return b.WithBlocks(
			CJKSymbolsAndPunctuation,
			Hiragana,
			Katakana,
			HalfwidthAndFullwidthForms,
			CJKUnifiedIdeographs,
			CJKUnifiedIdeographsExtA,
			EnclosedCJKLettersAndMonths,
		)
	case "zh":
		return b.WithBlocks(CJKUnifiedIdeographs, CJKUnifiedIdeographsExtA)
	case "ko":
		return b.WithBlocks(
			HangulJamo,
			HangulCompatibilityJamo,
			HangulSyllables,
			HangulJamoExtendedA,
			HangulJamoExtendedB,
		)
	}
	return b
}

// Build adds the fallback codepoints and the ellipsis codepoints (plus '.')
// as requested, then returns BuildExact.
func (b *Builder) Build(addFallback, addEllipsis bool) []uint16 {
	if addFallback {
		b.With(FallbackCodepoints...)
	}
	if addEllipsis {
		b.With(EllipsisCodepoints...).With('.')
	}
	return b.BuildExact()
}

// BuildExact returns the set as a zero-terminated list of inclusive ranges
// in ascending order. An empty set yields {0}.
func (b *Builder) BuildExact() []uint16 {
	var out []uint16
	start := rune(-1)
	for r := rune(1); r <= MaxCodepoint; r++ {
		if b.set[r>>6] == 0 && r&63 == 0 && start < 0 {
			r += 63
			continue
		}
		switch in := b.Has(r); {
		case in && start < 0:
			start = r
		case !in && start >= 0:
			out = append(out, uint16(start), uint16(r-1))
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, uint16(start), MaxCodepoint)
	}
	return append(out, 0)
}

// ForLanguage parses a BCP 47 tag and returns the exact preset ranges for
// it.
func ForLanguage(tag string) ([]uint16, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return nil, err
	}
	return New().WithLanguage(t).BuildExact(), nil
}
