package fontcore

import "slices"

// Glyph is one positioned glyph quad of a built font. Coordinates are in
// pixels relative to the pen position at the top of the line; UVs are
// normalized to the glyph's texture page.
type Glyph struct {
	Codepoint    rune
	Visible      bool
	TextureIndex int

	X0, Y0, X1, Y1 float32
	U0, V0, U1, V1 float32

	AdvanceX float32
}

// KerningPair is a horizontal advance adjustment between two codepoints.
type KerningPair struct {
	Left, Right rune
	AdvanceX    float32
}

const (
	tabSize = 4

	noGlyph = -1
)

// Font is a built font: metrics, glyph quads and kerning.
type Font struct {
	FontSize float32
	Ascent   float32
	Descent  float32

	// Config is the first config that created the font.
	Config *FontConfig

	Glyphs []Glyph

	// FallbackChar is the codepoint drawn for unmapped codepoints, or -1
	// before BuildLookupTable resolves one.
	FallbackChar rune

	// EllipsisChar is the codepoint used to mark truncation, or -1.
	EllipsisChar rune

	index    []int32
	advance  []float32
	fallback int
	built    bool

	kerning   []KerningPair
	kernIndex map[uint64]int
}

// NewFont returns an empty font created from cfg, which may be nil.
func NewFont(cfg *FontConfig) *Font {
	f := &Font{
		Config:       cfg,
		FallbackChar: -1,
		EllipsisChar: -1,
		fallback:     noGlyph,
	}
	if cfg != nil {
		f.FontSize = cfg.SizePixels
		f.EllipsisChar = cfg.EllipsisChar
	}
	return f
}

// Loaded reports whether f is non-nil and has been built by an atlas.
func (f *Font) Loaded() bool { return f != nil && f.Config != nil && f.built }

// AddGlyph appends g, replacing an existing glyph of the same codepoint.
// When cfg is non-nil its advance clamp, pixel snapping and extra spacing
// are applied to g first. Pointers returned by lookups are invalidated.
func (f *Font) AddGlyph(cfg *FontConfig, g Glyph) {
	if cfg != nil {
		orig := g.AdvanceX
		g.AdvanceX = min(max(g.AdvanceX, cfg.GlyphMinAdvanceX), cfg.GlyphMaxAdvanceX)
		if g.AdvanceX != orig {
			off := (g.AdvanceX - orig) * 0.5
			if cfg.PixelSnapH {
				off = floor32(off)
			}
			g.X0 += off
			g.X1 += off
		}
		if cfg.PixelSnapH {
			g.AdvanceX = round32(g.AdvanceX)
		}
		g.AdvanceX += cfg.GlyphExtraSpacing.X()
	}
	g.Visible = g.X0 != g.X1 && g.Y0 != g.Y1

	if i := f.lookup(g.Codepoint); i != noGlyph {
		f.Glyphs[i] = g
		return
	}
	f.Glyphs = append(f.Glyphs, g)
	f.setIndex(g.Codepoint, len(f.Glyphs)-1)
}

func (f *Font) lookup(r rune) int {
	if r < 0 || int(r) >= len(f.index) {
		return noGlyph
	}
	return int(f.index[r])
}

func (f *Font) setIndex(r rune, i int) {
	if r < 0 {
		return
	}
	if n := int(r) + 1; n > len(f.index) {
		old := len(f.index)
		f.index = slices.Grow(f.index, n-old)[:n]
		for j := old; j < n; j++ {
			f.index[j] = noGlyph
		}
	}
	f.index[r] = int32(i)
}

// FindGlyphNoFallback returns the glyph for r, or nil.
func (f *Font) FindGlyphNoFallback(r rune) *Glyph {
	if i := f.lookup(r); i != noGlyph {
		return &f.Glyphs[i]
	}
	return nil
}

// FindGlyph returns the glyph for r, or the fallback glyph.
func (f *Font) FindGlyph(r rune) *Glyph {
	if g := f.FindGlyphNoFallback(r); g != nil {
		return g
	}
	return f.FallbackGlyph()
}

// FallbackGlyph returns the resolved fallback glyph, or nil.
func (f *Font) FallbackGlyph() *Glyph {
	if f.fallback == noGlyph || f.fallback >= len(f.Glyphs) {
		return nil
	}
	return &f.Glyphs[f.fallback]
}

// ClearFallback forgets the resolved fallback glyph. It must be called
// before the glyph slice is reordered or truncated.
func (f *Font) ClearFallback() { f.fallback = noGlyph }

// SetFallbackChar makes r the fallback if f has a glyph for it.
func (f *Font) SetFallbackChar(r rune) bool {
	i := f.lookup(r)
	if i == noGlyph {
		return false
	}
	f.FallbackChar = r
	f.fallback = i
	return true
}

// AdvanceX returns the advance of r, using the fallback advance for
// unmapped codepoints.
func (f *Font) AdvanceX(r rune) float32 {
	if r >= 0 && int(r) < len(f.advance) {
		return f.advance[r]
	}
	if g := f.FallbackGlyph(); g != nil {
		return g.AdvanceX
	}
	return 0
}

// BuildLookupTable reindexes Glyphs, synthesizes a tab glyph from the
// space glyph, resolves the fallback and ellipsis glyphs and refreshes the
// advance table.
func (f *Font) BuildLookupTable() {
	top := rune(-1)
	for i := range f.Glyphs {
		top = max(top, f.Glyphs[i].Codepoint)
	}
	f.index = f.index[:0]
	f.setIndex(top, noGlyph)
	for i := range f.Glyphs {
		f.setIndex(f.Glyphs[i].Codepoint, i)
	}

	if space := f.FindGlyphNoFallback(' '); space != nil && f.FindGlyphNoFallback('\t') == nil {
		tab := *space
		tab.Codepoint = '\t'
		tab.AdvanceX *= tabSize
		f.Glyphs = append(f.Glyphs, tab)
		f.setIndex('\t', len(f.Glyphs)-1)
	}

	f.fallback = noGlyph
	if !f.SetFallbackChar(f.FallbackChar) {
		f.FallbackChar = -1
		for _, r := range []rune{'\uFFFD', '?', ' '} {
			if f.SetFallbackChar(r) {
				break
			}
		}
		if f.fallback == noGlyph && len(f.Glyphs) > 0 {
			f.fallback = len(f.Glyphs) - 1
			f.FallbackChar = f.Glyphs[f.fallback].Codepoint
		}
	}

	if f.EllipsisChar < 0 || f.lookup(f.EllipsisChar) == noGlyph {
		f.EllipsisChar = -1
		for _, r := range []rune{'\u2026', '\u0085'} {
			if f.lookup(r) != noGlyph {
				f.EllipsisChar = r
				break
			}
		}
	}

	f.refreshAdvance()
	f.built = true
}

func (f *Font) refreshAdvance() {
	var fallbackAdvance float32
	if g := f.FallbackGlyph(); g != nil {
		fallbackAdvance = g.AdvanceX
	}
	f.advance = slices.Grow(f.advance[:0], len(f.index))[:len(f.index)]
	for r, i := range f.index {
		if i == noGlyph {
			f.advance[r] = fallbackAdvance
		} else {
			f.advance[r] = f.Glyphs[i].AdvanceX
		}
	}
}

func kernKey(left, right rune) uint64 { return uint64(uint32(left))<<32 | uint64(uint32(right)) }

// AddKerningPair sets the adjustment between left and right.
func (f *Font) AddKerningPair(left, right rune, advanceX float32) {
	if f.kernIndex == nil {
		f.kernIndex = make(map[uint64]int)
	}
	k := kernKey(left, right)
	if i, ok := f.kernIndex[k]; ok {
		f.kerning[i].AdvanceX = advanceX
		return
	}
	f.kernIndex[k] = len(f.kerning)
	f.kerning = append(f.kerning, KerningPair{Left: left, Right: right, AdvanceX: advanceX})
}

// Distance returns the kerning adjustment between left and right.
func (f *Font) Distance(left, right rune) float32 {
	if i, ok := f.kernIndex[kernKey(left, right)]; ok {
		return f.kerning[i].AdvanceX
	}
	return 0
}

// KerningPairs returns the kerning pairs in insertion order. The slice is
// owned by f.
func (f *Font) KerningPairs() []KerningPair { return f.kerning }
